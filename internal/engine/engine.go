package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"

	"github.com/hailam/zebra/internal/board"
)

// ErrSearchInProgress is returned when a search is started while another
// is still running.
var ErrSearchInProgress = errors.New("search in progress")

// Engine runs searches on a background goroutine and fans PV updates out
// to subscribers.
type Engine struct {
	searcher *Searcher
	logger   *log.Logger

	mu      sync.Mutex
	running bool
	done    chan struct{}
	result  Result

	subMu       sync.Mutex
	subscribers map[int]chan PVUpdate
	nextSub     int
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for search progress.
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// NewEngine creates an idle engine.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		logger:      log.New(io.Discard, "", 0),
		subscribers: make(map[int]chan PVUpdate),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.searcher = NewSearcher(e.logger)
	e.searcher.OnPV = e.publish
	return e
}

// Start launches a search of pos to maxDepth on its own goroutine. pos is
// searched in place and must not be touched until Wait returns. Cancelling
// ctx stops the search the same way Stop does.
func (e *Engine) Start(ctx context.Context, pos *board.Position, maxDepth int) error {
	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		return ErrSearchInProgress
	}
	e.running = true
	e.result = Result{}
	done := make(chan struct{})
	e.done = done
	e.searcher.Reset()
	e.mu.Unlock()

	stopOnCancel := context.AfterFunc(ctx, e.Stop)

	go func() {
		defer close(done)
		defer stopOnCancel()

		e.logger.Printf("search started: depth %d fen %s", maxDepth, pos.FEN())
		res := e.searcher.Search(pos, maxDepth)
		e.logger.Printf("search finished: move %v score %s depth %d nodes %d stopped %v",
			res.Move, ScoreString(res.Score), res.Depth, res.Nodes, res.Stopped)

		e.mu.Lock()
		e.result = res
		e.running = false
		e.mu.Unlock()
	}()
	return nil
}

// Stop asks the running search to finish. The result of the deepest
// completed iteration is still delivered by Wait.
func (e *Engine) Stop() {
	e.searcher.Stop()
}

// Wait blocks until the current search finishes and returns its result. It
// returns the last result immediately when no search is running.
func (e *Engine) Wait() Result {
	e.mu.Lock()
	done := e.done
	e.mu.Unlock()
	if done != nil {
		<-done
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.result
}

// Search runs a search synchronously.
func (e *Engine) Search(ctx context.Context, pos *board.Position, maxDepth int) (Result, error) {
	if err := e.Start(ctx, pos, maxDepth); err != nil {
		return Result{}, err
	}
	return e.Wait(), nil
}

// Searching reports whether a search is running.
func (e *Engine) Searching() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.running
}

// Nodes returns the node count of the current or last search.
func (e *Engine) Nodes() uint64 {
	return e.searcher.Nodes()
}

// Subscribe registers a listener for PV updates. Updates are dropped when
// the channel's buffer is full, so a slow listener never blocks the search.
// The returned cancel function unregisters and closes the channel.
func (e *Engine) Subscribe(buffer int) (<-chan PVUpdate, func()) {
	ch := make(chan PVUpdate, buffer)

	e.subMu.Lock()
	id := e.nextSub
	e.nextSub++
	e.subscribers[id] = ch
	e.subMu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			e.subMu.Lock()
			delete(e.subscribers, id)
			close(ch)
			e.subMu.Unlock()
		})
	}
	return ch, cancel
}

func (e *Engine) publish(u PVUpdate) {
	e.subMu.Lock()
	defer e.subMu.Unlock()
	for _, ch := range e.subscribers {
		select {
		case ch <- u:
		default:
		}
	}
}

// ScoreString converts a score to a human-readable string.
func ScoreString(score int) string {
	if score > MateScore-MaxPly {
		return fmt.Sprintf("Mate in %d", (MateScore-score+1)/2)
	}
	if score < -MateScore+MaxPly {
		return fmt.Sprintf("Mated in %d", (MateScore+score+1)/2)
	}
	return fmt.Sprintf("%.2f", float64(score)/100)
}
