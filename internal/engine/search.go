package engine

import (
	"io"
	"log"
	"sync/atomic"

	"golang.org/x/exp/maps"

	"github.com/hailam/zebra/internal/board"
)

// Search constants
const (
	Infinity  = 99999
	MateScore = 50000
	MaxPly    = 64
	MaxDepth  = 32
)

// Result is the outcome of an iterative-deepening search.
type Result struct {
	Move    board.Move
	Score   int
	Depth   int // deepest completed iteration
	PV      []board.Move
	Nodes   uint64
	Stopped bool
}

// PVUpdate is a snapshot of the root principal variation, published every
// time the root best move improves.
type PVUpdate struct {
	Depth int
	Score int
	Nodes uint64
	Hash  uint64
	Line  []board.Move
	Text  []string
}

// Searcher performs a single-threaded iterative-deepening negamax search on
// a position it mutates in place and restores before returning.
type Searcher struct {
	pos     *board.Position
	orderer *Orderer
	logger  *log.Logger

	// hints maps a position hash to the from|to<<8 key of its last PV move.
	hints map[uint64]uint16

	pv    [MaxPly][MaxPly]board.Move
	pvLen [MaxPly]int
	lists [MaxPly]board.MoveList

	depth     int
	rootMove  board.Move
	rootScore int

	nodes    atomic.Uint64
	stopFlag atomic.Bool

	// OnPV, when set, receives each root PV improvement.
	OnPV func(PVUpdate)
}

// NewSearcher creates a searcher that logs to logger, or nowhere if nil.
func NewSearcher(logger *log.Logger) *Searcher {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Searcher{
		orderer: NewOrderer(),
		logger:  logger,
		hints:   make(map[uint64]uint16),
	}
}

// Stop signals the search to stop. It is safe to call from any goroutine.
func (s *Searcher) Stop() {
	s.stopFlag.Store(true)
}

// Reset clears the stop flag for a new search.
func (s *Searcher) Reset() {
	s.stopFlag.Store(false)
}

// IsStopped returns true if the search has been stopped.
func (s *Searcher) IsStopped() bool {
	return s.stopFlag.Load()
}

// Nodes returns the number of static evaluations of the current or last
// search.
func (s *Searcher) Nodes() uint64 {
	return s.nodes.Load()
}

// Search runs iterative deepening from depth 1 to maxDepth and returns the
// result of the deepest completed iteration. When stopped before depth 1
// completes, the best root move found so far is returned. pos is left as
// it was given.
func (s *Searcher) Search(pos *board.Position, maxDepth int) Result {
	maxDepth = min(max(maxDepth, 1), MaxDepth)

	s.pos = pos
	s.orderer.Clear()
	maps.Clear(s.hints)
	s.nodes.Store(0)
	s.rootMove = board.NoMove

	var res Result
	for depth := 1; depth <= maxDepth; depth++ {
		s.depth = depth
		score := s.negamax(depth, -Infinity, Infinity, 0)

		if s.stopFlag.Load() {
			res.Stopped = true
			if res.Depth == 0 && s.rootMove != board.NoMove {
				res.Move = s.rootMove
				res.Score = s.rootScore
				res.PV = []board.Move{s.rootMove}
			}
			break
		}

		res.Depth = depth
		res.Score = score
		res.PV = s.line()
		res.Move = board.NoMove
		if len(res.PV) > 0 {
			res.Move = res.PV[0]
		}
		s.logger.Printf("depth %d score %d nodes %d pv %v", depth, score, s.nodes.Load(), res.PV)

		if res.Move == board.NoMove {
			// Checkmate or stalemate at the root; deeper iterations find nothing new.
			break
		}
	}

	res.Nodes = s.nodes.Load()
	return res
}

// line returns a copy of the root principal variation.
func (s *Searcher) line() []board.Move {
	pv := make([]board.Move, s.pvLen[0])
	copy(pv, s.pv[0][:s.pvLen[0]])
	return pv
}

func (s *Searcher) evaluate() int {
	s.nodes.Add(1)
	return Evaluate(s.pos)
}

func hintKey(m board.Move) uint16 {
	return uint16(m.From()) | uint16(m.To())<<8
}

// updatePV makes m followed by the child's line the PV at ply, and records
// m as the hint for the current position.
func (s *Searcher) updatePV(m board.Move, ply int) {
	s.pv[ply][ply] = m
	for i := ply + 1; i < s.pvLen[ply+1]; i++ {
		s.pv[ply][i] = s.pv[ply+1][i]
	}
	s.pvLen[ply] = max(s.pvLen[ply+1], ply+1)
	s.hints[s.pos.Hash()] = hintKey(m)
}

func (s *Searcher) rootImproved(m board.Move, score int) {
	s.rootMove = m
	s.rootScore = score
	if s.OnPV == nil {
		return
	}
	line := s.pv[0][:s.pvLen[0]]
	u := PVUpdate{
		Depth: s.depth,
		Score: score,
		Nodes: s.nodes.Load(),
		Hash:  s.pos.Hash(),
		Line:  make([]board.Move, len(line)),
	}
	copy(u.Line, line)
	u.Text = board.MovesToSAN(s.pos, u.Line)
	s.OnPV(u)
}

// generate fills the move list of ply with scored pseudo-legal moves. The
// hinted move of the current position, if any, gets PVScore.
func (s *Searcher) generate(ply int) *board.MoveList {
	ml := &s.lists[ply]
	s.orderer.SetPly(ply)
	s.pos.GeneratePseudoLegal(ml, s.orderer)

	if hint, ok := s.hints[s.pos.Hash()]; ok {
		for i := 0; i < ml.Len(); i++ {
			if hintKey(ml.Get(i)) == hint {
				ml.SetScore(i, PVScore)
			}
		}
	}
	return ml
}

// negamax implements fail-hard negamax with alpha-beta pruning.
func (s *Searcher) negamax(depth, alpha, beta, ply int) int {
	if depth == 0 {
		return s.quiescence(alpha, beta, ply)
	}
	s.pvLen[ply] = ply
	ml := s.generate(ply)

	legal := 0
	for i := 0; i < ml.Len(); i++ {
		m := ml.PickBest(i)
		piece := s.pos.PieceAt(m.From())
		quiet := !m.IsCapture(s.pos)

		s.pos.MakeMove(m)
		if s.pos.KingAttackedAfterMove() {
			s.pos.UnmakeMove()
			continue
		}
		legal++

		var score int
		if s.pos.HashSeen(s.pos.Hash()) {
			// Repetition scores as a draw without searching further.
			s.pvLen[ply+1] = ply + 1
		} else {
			score = -s.negamax(depth-1, -beta, -alpha, ply+1)
		}
		s.pos.UnmakeMove()

		if s.stopFlag.Load() {
			return 0
		}

		if score >= beta {
			if quiet {
				s.orderer.AddKiller(ply, piece, m)
			}
			return beta
		}

		if score > alpha {
			alpha = score
			s.updatePV(m, ply)
			if quiet {
				s.orderer.AddHistory(piece, m.To(), depth)
			}
			if ply == 0 {
				s.rootImproved(m, score)
			}
		}
	}

	if legal == 0 {
		if s.pos.InCheck() {
			return -MateScore + ply
		}
		return 0
	}
	return alpha
}

// quiescence searches captures only until the position is quiet.
func (s *Searcher) quiescence(alpha, beta, ply int) int {
	s.pvLen[ply] = ply

	standPat := s.evaluate()
	if ply >= MaxPly-1 {
		return standPat
	}
	if standPat >= beta {
		return beta
	}
	if standPat > alpha {
		alpha = standPat
	}

	ml := &s.lists[ply]
	s.orderer.SetPly(ply)
	s.pos.GenerateCaptures(ml, s.orderer)

	for i := 0; i < ml.Len(); i++ {
		m := ml.PickBest(i)
		s.pos.MakeMove(m)
		if s.pos.KingAttackedAfterMove() {
			s.pos.UnmakeMove()
			continue
		}
		score := -s.quiescence(-beta, -alpha, ply+1)
		s.pos.UnmakeMove()

		if s.stopFlag.Load() {
			return 0
		}
		if score >= beta {
			return beta
		}
		if score > alpha {
			alpha = score
		}
	}
	return alpha
}
