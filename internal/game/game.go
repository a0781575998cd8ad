// Package game is the boundary around a position and its search engine: it
// applies user moves, keeps the move history for undo and redo, and runs
// searches on the engine's worker goroutine.
package game

import (
	"context"
	"fmt"
	"io"
	"log"
	"sync"

	"golang.org/x/exp/constraints"

	"github.com/hailam/zebra/internal/board"
	"github.com/hailam/zebra/internal/engine"
	"github.com/hailam/zebra/internal/storage"
)

// Status describes whether the game can continue.
type Status uint8

const (
	Playing Status = iota
	Checkmate
	Stalemate
	FiftyMoveDraw
)

func (s Status) String() string {
	switch s {
	case Playing:
		return "Playing"
	case Checkmate:
		return "Checkmate"
	case Stalemate:
		return "Stalemate"
	case FiftyMoveDraw:
		return "FiftyMoveDraw"
	default:
		return "Unknown"
	}
}

// Candidate is a user move request. Promotion is only consulted for pawn
// moves to the last rank; anything other than a knight, bishop or rook
// promotes to a queen.
type Candidate struct {
	From      board.Square
	To        board.Square
	Promotion board.PieceType
}

// Entry is one played half-move.
type Entry struct {
	Move board.Move
	Text string // SAN with check or mate suffix
	Ply  int    // game ply before the move
}

// Game owns a position, its history and an engine.
//
// Reads (Hash, Ply, LegalMoves, Status, ...) are served from state cached
// after every change, so they are safe while a search is running. Mutating
// calls fail with engine.ErrSearchInProgress until the search finishes.
type Game struct {
	mu     sync.Mutex
	engine *engine.Engine
	logger *log.Logger

	pos      *board.Position
	startFEN string
	entries  []Entry // played moves followed by the redo tail

	// cached after every change
	snapshot *board.Position
	legal    []board.Move
	hash     uint64
	ply      int
	inCheck  bool
	status   Status

	searching  bool
	searchDone chan struct{}
	lastResult engine.Result
}

// Option configures a Game.
type Option func(*Game)

// WithLogger sets the logger for game events.
func WithLogger(l *log.Logger) Option {
	return func(g *Game) {
		g.logger = l
	}
}

// WithEngine makes the game search with e.
func WithEngine(e *engine.Engine) Option {
	return func(g *Game) {
		g.engine = e
	}
}

// New creates a game at the standard starting position.
func New(opts ...Option) *Game {
	g := &Game{logger: log.New(io.Discard, "", 0)}
	for _, opt := range opts {
		opt(g)
	}
	if g.engine == nil {
		g.engine = engine.NewEngine(engine.WithLogger(g.logger))
	}
	g.reset(board.NewPosition(), board.StartFEN, nil)
	return g
}

func clamp[T constraints.Integer](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// reset installs a new position and history. Caller holds mu or owns g.
func (g *Game) reset(pos *board.Position, fen string, entries []Entry) {
	g.pos = pos
	g.startFEN = fen
	g.entries = entries
	g.refresh()
}

// refresh regenerates the cached view of the position.
func (g *Game) refresh() {
	g.legal = append(g.legal[:0:0], g.pos.GenerateLegalMoves().Slice()...)
	g.hash = g.pos.Hash()
	g.ply = g.pos.GamePly()
	g.inCheck = g.pos.InCheck()
	g.snapshot = g.pos.Copy()

	switch {
	case len(g.legal) == 0 && g.inCheck:
		g.status = Checkmate
	case len(g.legal) == 0:
		g.status = Stalemate
	case g.pos.HalfMoveClock() >= 100:
		g.status = FiftyMoveDraw
	default:
		g.status = Playing
	}
}

func (g *Game) busy() error {
	if g.searching {
		return engine.ErrSearchInProgress
	}
	return nil
}

// LoadFEN replaces the game with the position described by fen. On error
// the game is unchanged.
func (g *Game) LoadFEN(fen string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.busy(); err != nil {
		return err
	}

	pos, err := board.ParseFEN(fen)
	if err != nil {
		return fmt.Errorf("load position: %w", err)
	}
	g.reset(pos, fen, nil)
	g.logger.Printf("loaded %s", fen)
	return nil
}

// NewGame resets to the standard starting position.
func (g *Game) NewGame() error {
	return g.LoadFEN(board.StartFEN)
}

// resolve finds the legal move matching c.
func resolve(legal []board.Move, c Candidate) (board.Move, bool) {
	promo := c.Promotion
	switch promo {
	case board.Knight, board.Bishop, board.Rook:
	default:
		promo = board.Queen
	}
	for _, m := range legal {
		if m.From() != c.From || m.To() != c.To {
			continue
		}
		if m.IsPromotion() && m.Promotion() != promo {
			continue
		}
		return m, true
	}
	return board.NoMove, false
}

// ApplyMove plays the legal move matching c, discarding any redo tail.
func (g *Game) ApplyMove(c Candidate) (Entry, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.busy(); err != nil {
		return Entry{}, err
	}

	m, ok := resolve(g.legal, c)
	if !ok {
		return Entry{}, fmt.Errorf("%w: %s%s", board.ErrIllegalMove, c.From, c.To)
	}
	return g.play(m), nil
}

// ApplyResult plays the best move of a finished search.
func (g *Game) ApplyResult(res engine.Result) (Entry, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.busy(); err != nil {
		return Entry{}, err
	}

	for _, m := range g.legal {
		if m == res.Move {
			return g.play(m), nil
		}
	}
	return Entry{}, fmt.Errorf("%w: search result %v", board.ErrIllegalMove, res.Move)
}

// play makes the legal move m, discarding any redo tail. Caller holds mu.
func (g *Game) play(m board.Move) Entry {
	e := Entry{Move: m, Text: g.pos.SANWithStatus(m), Ply: g.pos.GamePly()}
	g.entries = append(g.entries[:g.pos.GamePly()-g.pos.StartPly()], e)
	g.pos.MakeMove(m)
	g.refresh()
	return e
}

// ParseCandidate parses coordinate text such as "e2e4" or "e7e8q".
func ParseCandidate(s string) (Candidate, error) {
	if len(s) != 4 && len(s) != 5 {
		return Candidate{}, fmt.Errorf("%w: malformed move %q", board.ErrIllegalMove, s)
	}
	from, err := board.ParseSquare(s[0:2])
	if err != nil {
		return Candidate{}, fmt.Errorf("%w: %v", board.ErrIllegalMove, err)
	}
	to, err := board.ParseSquare(s[2:4])
	if err != nil {
		return Candidate{}, fmt.Errorf("%w: %v", board.ErrIllegalMove, err)
	}

	c := Candidate{From: from, To: to, Promotion: board.NoPieceType}
	if len(s) == 5 {
		switch s[4] {
		case 'n':
			c.Promotion = board.Knight
		case 'b':
			c.Promotion = board.Bishop
		case 'r':
			c.Promotion = board.Rook
		case 'q':
			c.Promotion = board.Queen
		default:
			return Candidate{}, fmt.Errorf("%w: invalid promotion piece %q", board.ErrIllegalMove, s[4])
		}
	}
	return c, nil
}

// gotoPly moves through the recorded history to ply n, clamped to the
// recorded range. It reports whether the position changed.
func (g *Game) gotoPly(n int) bool {
	start := g.pos.StartPly()
	n = clamp(n, start, start+len(g.entries))
	if n == g.pos.GamePly() {
		return false
	}
	for g.pos.GamePly() > n {
		g.pos.UnmakeMove()
	}
	for g.pos.GamePly() < n {
		g.pos.MakeMove(g.entries[g.pos.GamePly()-start].Move)
	}
	g.refresh()
	return true
}

// GotoPly moves to ply n of the recorded history, keeping the redo tail.
func (g *Game) GotoPly(n int) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.busy(); err != nil {
		return false, err
	}
	return g.gotoPly(n), nil
}

// UndoToPly takes back moves until ply n. Later plies stay available to
// RedoToPly.
func (g *Game) UndoToPly(n int) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.busy(); err != nil {
		return err
	}
	if n < g.pos.GamePly() {
		g.gotoPly(n)
	}
	return nil
}

// RedoToPly replays recorded moves until ply n.
func (g *Game) RedoToPly(n int) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.busy(); err != nil {
		return err
	}
	if n > g.pos.GamePly() {
		g.gotoPly(n)
	}
	return nil
}

// StartSearch searches the current position to depth on the engine's
// goroutine. The game rejects changes until the search ends.
func (g *Game) StartSearch(ctx context.Context, depth int) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.busy(); err != nil {
		return err
	}
	if err := g.engine.Start(ctx, g.pos, depth); err != nil {
		return err
	}

	g.searching = true
	done := make(chan struct{})
	g.searchDone = done
	go func() {
		res := g.engine.Wait()
		g.mu.Lock()
		g.lastResult = res
		g.searching = false
		g.mu.Unlock()
		close(done)
	}()
	return nil
}

// RequestStop asks a running search to finish.
func (g *Game) RequestStop() {
	g.engine.Stop()
}

// WaitSearch blocks until the running search ends and returns its result,
// or returns the last result when none is running.
func (g *Game) WaitSearch() engine.Result {
	g.mu.Lock()
	done := g.searchDone
	g.mu.Unlock()
	if done != nil {
		<-done
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	return g.lastResult
}

// Searching reports whether a search is running.
func (g *Game) Searching() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.searching
}

// Updates subscribes to the engine's PV updates.
func (g *Game) Updates(buffer int) (<-chan engine.PVUpdate, func()) {
	return g.engine.Subscribe(buffer)
}

// LegalMoves returns a copy of the legal moves in the current position.
func (g *Game) LegalMoves() []board.Move {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]board.Move(nil), g.legal...)
}

// Hash returns the Zobrist hash of the current position.
func (g *Game) Hash() uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.hash
}

// Nodes returns the node count of the current or last search.
func (g *Game) Nodes() uint64 {
	return g.engine.Nodes()
}

// Ply returns the current game ply.
func (g *Game) Ply() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.ply
}

// StartPly returns the ply of the loaded position.
func (g *Game) StartPly() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.snapshot.StartPly()
}

// LastPly returns the ply reached by replaying the whole recorded history.
func (g *Game) LastPly() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.snapshot.StartPly() + len(g.entries)
}

// History returns the moves played up to the current ply.
func (g *Game) History() []Entry {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]Entry(nil), g.entries[:g.ply-g.snapshot.StartPly()]...)
}

// Position returns a copy of the current position.
func (g *Game) Position() *board.Position {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.snapshot.Copy()
}

// Status reports whether the side to move is mated, stalemated, drawn by
// the fifty-move rule or still playing.
func (g *Game) Status() Status {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.status
}

// InCheck reports whether the side to move is in check.
func (g *Game) InCheck() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.inCheck
}

// Result returns the game result in PGN form.
func (g *Game) Result() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.result()
}

func (g *Game) result() string {
	switch g.status {
	case Checkmate:
		if g.snapshot.SideToMove() == board.White {
			return "0-1"
		}
		return "1-0"
	case Stalemate, FiftyMoveDraw:
		return "1/2-1/2"
	}
	return "*"
}

// Record converts the moves played so far into an archive record.
func (g *Game) Record() *storage.GameRecord {
	g.mu.Lock()
	defer g.mu.Unlock()

	played := g.entries[:g.ply-g.snapshot.StartPly()]
	rec := &storage.GameRecord{
		StartFEN: g.startFEN,
		Moves:    make([]string, len(played)),
		Text:     make([]string, len(played)),
		Result:   g.result(),
	}
	for i, e := range played {
		rec.Moves[i] = e.Move.String()
		rec.Text[i] = e.Text
	}
	return rec
}

// Replay replaces the game with the one in rec. On error the game is
// unchanged.
func (g *Game) Replay(rec *storage.GameRecord) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.busy(); err != nil {
		return err
	}

	fen := rec.StartFEN
	if fen == "" {
		fen = board.StartFEN
	}
	pos, err := board.ParseFEN(fen)
	if err != nil {
		return fmt.Errorf("replay game %d: %w", rec.ID, err)
	}

	entries := make([]Entry, 0, len(rec.Moves))
	for i, text := range rec.Moves {
		c, err := ParseCandidate(text)
		if err != nil {
			return fmt.Errorf("replay game %d move %d: %w", rec.ID, i+1, err)
		}
		m, ok := resolve(pos.GenerateLegalMoves().Slice(), c)
		if !ok {
			return fmt.Errorf("replay game %d move %d: %w: %s", rec.ID, i+1, board.ErrIllegalMove, text)
		}
		entries = append(entries, Entry{Move: m, Text: pos.SANWithStatus(m), Ply: pos.GamePly()})
		pos.MakeMove(m)
	}

	g.reset(pos, fen, entries)
	g.logger.Printf("replayed game %d: %d moves", rec.ID, len(entries))
	return nil
}
