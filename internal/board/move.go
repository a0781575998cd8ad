package board

// MoveKind classifies how a move changes the board beyond relocating a piece.
type MoveKind uint8

const (
	Normal MoveKind = iota
	PawnPush
	DoublePawnPush
	Promotion
	EnPassant
	CastleKingSide
	CastleQueenSide
)

func (k MoveKind) String() string {
	switch k {
	case Normal:
		return "Normal"
	case PawnPush:
		return "PawnPush"
	case DoublePawnPush:
		return "DoublePawnPush"
	case Promotion:
		return "Promotion"
	case EnPassant:
		return "EnPassant"
	case CastleKingSide:
		return "CastleKingSide"
	case CastleQueenSide:
		return "CastleQueenSide"
	default:
		return "Unknown"
	}
}

// Move encodes a chess move in 18 bits:
// bits 0-5:   from square
// bits 6-11:  to square
// bits 12-14: MoveKind
// bits 15-17: promotion piece type (NoPieceType unless Kind is Promotion)
//
// Captures are not encoded; whether a move captures is a property of the
// position it is played in.
type Move uint32

// NoMove represents an invalid or null move.
const NoMove Move = 0

// NewMove creates a move of the given kind without promotion.
func NewMove(from, to Square, kind MoveKind) Move {
	return Move(from) | Move(to)<<6 | Move(kind)<<12 | Move(NoPieceType)<<15
}

// NewPromotion creates a promotion to the given piece type.
func NewPromotion(from, to Square, promo PieceType) Move {
	return Move(from) | Move(to)<<6 | Move(Promotion)<<12 | Move(promo)<<15
}

// From returns the origin square.
func (m Move) From() Square {
	return Square(m & 0x3F)
}

// To returns the destination square.
func (m Move) To() Square {
	return Square((m >> 6) & 0x3F)
}

// Kind returns the move kind.
func (m Move) Kind() MoveKind {
	return MoveKind((m >> 12) & 7)
}

// Promotion returns the promotion piece type, NoPieceType for other kinds.
func (m Move) Promotion() PieceType {
	return PieceType((m >> 15) & 7)
}

// IsPromotion returns true if this is a promotion move.
func (m Move) IsPromotion() bool {
	return m.Kind() == Promotion
}

// IsCastling returns true for either castling kind.
func (m Move) IsCastling() bool {
	k := m.Kind()
	return k == CastleKingSide || k == CastleQueenSide
}

// IsEnPassant returns true if this is an en passant capture.
func (m Move) IsEnPassant() bool {
	return m.Kind() == EnPassant
}

// IsCapture returns true if this move captures a piece in pos.
func (m Move) IsCapture(pos *Position) bool {
	if m.IsEnPassant() {
		return true
	}
	return pos.PieceAt(m.To()) != NoPiece
}

// String returns the coordinate form of the move (e.g., "e2e4", "e7e8q").
func (m Move) String() string {
	if m == NoMove {
		return "0000"
	}
	s := m.From().String() + m.To().String()
	if m.IsPromotion() {
		s += string("pnbrqk"[m.Promotion()])
	}
	return s
}

// MaxMoves bounds the number of pseudo-legal moves in any reachable position.
const MaxMoves = 256

// MoveList is a fixed-size list of moves with parallel ordering scores.
type MoveList struct {
	moves  [MaxMoves]Move
	scores [MaxMoves]int
	count  int
}

// NewMoveList creates an empty move list.
func NewMoveList() *MoveList {
	return &MoveList{}
}

// Add appends a move with a zero score.
func (ml *MoveList) Add(m Move) {
	ml.moves[ml.count] = m
	ml.scores[ml.count] = 0
	ml.count++
}

// Len returns the number of moves in the list.
func (ml *MoveList) Len() int {
	return ml.count
}

// Get returns the move at index i.
func (ml *MoveList) Get(i int) Move {
	return ml.moves[i]
}

// Score returns the ordering score at index i.
func (ml *MoveList) Score(i int) int {
	return ml.scores[i]
}

// SetScore sets the ordering score at index i.
func (ml *MoveList) SetScore(i, score int) {
	ml.scores[i] = score
}

// Swap swaps two moves together with their scores.
func (ml *MoveList) Swap(i, j int) {
	ml.moves[i], ml.moves[j] = ml.moves[j], ml.moves[i]
	ml.scores[i], ml.scores[j] = ml.scores[j], ml.scores[i]
}

// Clear empties the list.
func (ml *MoveList) Clear() {
	ml.count = 0
}

// Contains returns true if the list contains the move.
func (ml *MoveList) Contains(m Move) bool {
	for i := 0; i < ml.count; i++ {
		if ml.moves[i] == m {
			return true
		}
	}
	return false
}

// Slice returns the moves as a slice sharing the list's storage.
func (ml *MoveList) Slice() []Move {
	return ml.moves[:ml.count]
}

// PickBest moves the highest-scored move in [i, Len) to index i and returns it.
// Ties keep the earliest generated move.
func (ml *MoveList) PickBest(i int) Move {
	best := i
	for j := i + 1; j < ml.count; j++ {
		if ml.scores[j] > ml.scores[best] {
			best = j
		}
	}
	if best != i {
		ml.Swap(i, best)
	}
	return ml.moves[i]
}

// filter keeps only the moves for which keep returns true, preserving order.
func (ml *MoveList) filter(keep func(Move) bool) {
	n := 0
	for i := 0; i < ml.count; i++ {
		if keep(ml.moves[i]) {
			ml.moves[n] = ml.moves[i]
			ml.scores[n] = ml.scores[i]
			n++
		}
	}
	ml.count = n
}
