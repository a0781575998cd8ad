package engine

import (
	"github.com/hailam/zebra/internal/board"
)

// Move ordering priorities
const (
	PVScore      = 2000000 // move stored in the PV hint table
	CaptureBase  = 1000000 // plus MVV-LVA
	KillerScore1 = 900000  // most recent killer
	KillerScore2 = 800000
)

// MVV-LVA (Most Valuable Victim - Least Valuable Attacker) scores.
// Score = (victim+1)*100 + 5 - attacker
var mvvLva [6][6]int

func init() {
	for victim := board.Pawn; victim <= board.King; victim++ {
		for attacker := board.Pawn; attacker <= board.King; attacker++ {
			mvvLva[victim][attacker] = (int(victim)+1)*100 + 5 - int(attacker)
		}
	}
}

// killer is a quiet move that caused a beta cutoff, remembered with the
// piece that made it.
type killer struct {
	piece board.Piece
	move  board.Move
}

func (k killer) matches(piece board.Piece, m board.Move) bool {
	return k.move != board.NoMove && k.piece == piece && k.move.From() == m.From() && k.move.To() == m.To()
}

// Orderer scores moves for the search. It implements board.Scorer; the
// searcher sets the current ply before each generation so killers are
// looked up for the right node.
type Orderer struct {
	ply int

	// Killer moves (two per ply, most recent first)
	killers [MaxPly][2]killer

	// History heuristic indexed by [piece][to]
	history [12][64]int
}

// NewOrderer creates an empty move orderer.
func NewOrderer() *Orderer {
	return &Orderer{}
}

// Clear resets killers and history for a new search.
func (o *Orderer) Clear() {
	o.ply = 0
	o.killers = [MaxPly][2]killer{}
	o.history = [12][64]int{}
}

// SetPly selects the killer slots used by subsequent ScoreMove calls.
func (o *Orderer) SetPly(ply int) {
	o.ply = ply
}

// ScoreMove returns the ordering score of m in pos.
func (o *Orderer) ScoreMove(pos *board.Position, m board.Move) int {
	piece := pos.PieceAt(m.From())

	if m.IsCapture(pos) {
		victim := board.Pawn
		if !m.IsEnPassant() {
			victim = pos.PieceAt(m.To()).Type()
		}
		return CaptureBase + mvvLva[victim][piece.Type()]
	}

	if o.killers[o.ply][0].matches(piece, m) {
		return KillerScore1
	}
	if o.killers[o.ply][1].matches(piece, m) {
		return KillerScore2
	}

	return o.History(piece, m.To())
}

// AddKiller records a quiet move that caused a cutoff at ply, displacing
// the older killer.
func (o *Orderer) AddKiller(ply int, piece board.Piece, m board.Move) {
	if ply >= MaxPly {
		return
	}
	if o.killers[ply][0].matches(piece, m) {
		return
	}
	o.killers[ply][1] = o.killers[ply][0]
	o.killers[ply][0] = killer{piece: piece, move: m}
}

// AddHistory credits a quiet move that raised alpha.
func (o *Orderer) AddHistory(piece board.Piece, to board.Square, depth int) {
	o.history[piece.Index()][to] += depth
}

// History returns the history score of piece moving to to.
func (o *Orderer) History(piece board.Piece, to board.Square) int {
	return o.history[piece.Index()][to]
}
