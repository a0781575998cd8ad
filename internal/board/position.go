package board

import (
	"fmt"
	"strings"
)

// CastlingRights represents the available castling options.
type CastlingRights uint8

const (
	WhiteKingSideCastle  CastlingRights = 1 << iota // K
	WhiteQueenSideCastle                            // Q
	BlackKingSideCastle                             // k
	BlackQueenSideCastle                            // q
	NoCastling           CastlingRights = 0
	AllCastling          CastlingRights = WhiteKingSideCastle | WhiteQueenSideCastle | BlackKingSideCastle | BlackQueenSideCastle
)

// String returns the FEN castling field ("KQkq", "-", ...).
func (cr CastlingRights) String() string {
	if cr == NoCastling {
		return "-"
	}
	var sb strings.Builder
	for i, c := range "KQkq" {
		if cr&(1<<i) != 0 {
			sb.WriteRune(c)
		}
	}
	return sb.String()
}

// CanCastle returns true if the given side holds the right to castle in the
// given direction.
func (cr CastlingRights) CanCastle(c Color, kingSide bool) bool {
	return cr&castleRight(c, kingSide) != 0
}

func castleRight(c Color, kingSide bool) CastlingRights {
	r := WhiteQueenSideCastle
	if kingSide {
		r = WhiteKingSideCastle
	}
	if c == Black {
		r <<= 2
	}
	return r
}

// castleMask holds the rights lost when a piece leaves or lands on a square.
var castleMask [64]CastlingRights

func init() {
	castleMask[A1] = WhiteQueenSideCastle
	castleMask[H1] = WhiteKingSideCastle
	castleMask[E1] = WhiteKingSideCastle | WhiteQueenSideCastle
	castleMask[A8] = BlackQueenSideCastle
	castleMask[H8] = BlackKingSideCastle
	castleMask[E8] = BlackKingSideCastle | BlackQueenSideCastle
}

// sideInfo holds the colour-dependent geometry used by generation and
// make/unmake.
type sideInfo struct {
	pawnDir   int // rank delta of a pawn push
	startRank int // rank from which a double push is allowed
	promoRank int // rank on which a pawn promotes
	backRank  int
}

var sides = [2]sideInfo{
	White: {pawnDir: 1, startRank: 1, promoRank: 7, backRank: 0},
	Black: {pawnDir: -1, startRank: 6, promoRank: 0, backRank: 7},
}

// Cell is one board square: the occupying piece and, when occupied, the
// neighbouring squares in its colour's circular occupancy list.
type Cell struct {
	Piece Piece
	Prev  Square
	Next  Square
}

var emptyCell = Cell{Piece: NoPiece, Prev: NoSquare, Next: NoSquare}

// UndoRecord stores everything needed to reverse one MakeMove.
type UndoRecord struct {
	Move           Move
	Piece          Piece  // moving piece before promotion
	Captured       Cell   // captured cell with its list links
	CapturedSquare Square // NoSquare when nothing was captured
	Hash           uint64 // hash before the move
	CastlingRights CastlingRights
	EnPassant      Square
	HalfMoveClock  int
}

// Position is a complete chess position with its move history.
//
// Each colour's pieces form a circular doubly linked list threaded through
// the cells and starting at that colour's king, so generation visits only
// occupied squares.
type Position struct {
	cells          [64]Cell
	kingSquare     [2]Square
	sideToMove     Color
	castlingRights CastlingRights
	enPassant      Square
	halfMoveClock  int
	hash           uint64
	startPly       int
	undo           []UndoRecord
}

// NewPosition creates the starting position.
func NewPosition() *Position {
	pos, err := ParseFEN(StartFEN)
	if err != nil {
		panic(err)
	}
	return pos
}

func newEmptyPosition() *Position {
	p := &Position{
		enPassant:  NoSquare,
		kingSquare: [2]Square{NoSquare, NoSquare},
		undo:       make([]UndoRecord, 0, 128),
	}
	for sq := range p.cells {
		p.cells[sq] = emptyCell
	}
	return p
}

// Copy creates a deep copy of the position, undo stack included.
func (p *Position) Copy() *Position {
	np := *p
	np.undo = make([]UndoRecord, len(p.undo), max(cap(p.undo), 128))
	copy(np.undo, p.undo)
	return &np
}

// PieceAt returns the piece at the given square, or NoPiece if empty.
func (p *Position) PieceAt(sq Square) Piece {
	return p.cells[sq].Piece
}

// CellAt returns the cell at the given square.
func (p *Position) CellAt(sq Square) Cell {
	return p.cells[sq]
}

// IsEmpty returns true if the square is empty.
func (p *Position) IsEmpty(sq Square) bool {
	return p.cells[sq].Piece == NoPiece
}

// SideToMove returns the colour whose turn it is.
func (p *Position) SideToMove() Color { return p.sideToMove }

// CastlingRights returns the castling rights still available.
func (p *Position) CastlingRights() CastlingRights { return p.castlingRights }

// HalfMoveClock returns the number of plies since the last capture or pawn move.
func (p *Position) HalfMoveClock() int { return p.halfMoveClock }

// Hash returns the incrementally maintained Zobrist hash.
func (p *Position) Hash() uint64 { return p.hash }

// StartPly returns the game ply of the FEN the position was loaded from.
func (p *Position) StartPly() int { return p.startPly }

// EnPassant returns the en-passant target square, NoSquare if none.
func (p *Position) EnPassant() Square { return p.enPassant }

// KingSquare returns the square of the given colour's king.
func (p *Position) KingSquare(c Color) Square { return p.kingSquare[c] }

// GamePly returns the number of half-moves played since the start of the
// game, counting the plies implied by the FEN the position was loaded from.
func (p *Position) GamePly() int {
	return p.startPly + len(p.undo)
}

// FullMoveNumber returns the FEN full-move number.
func (p *Position) FullMoveNumber() int {
	return p.GamePly()/2 + 1
}

// ForEachPiece calls fn for every piece of colour c, king first, in list order.
func (p *Position) ForEachPiece(c Color, fn func(sq Square, pc Piece)) {
	head := p.kingSquare[c]
	if head == NoSquare {
		return
	}
	sq := head
	for {
		fn(sq, p.cells[sq].Piece)
		sq = p.cells[sq].Next
		if sq == head {
			return
		}
	}
}

// Pieces returns the squares occupied by colour c, king first.
func (p *Position) Pieces(c Color) []Square {
	squares := make([]Square, 0, 16)
	p.ForEachPiece(c, func(sq Square, _ Piece) {
		squares = append(squares, sq)
	})
	return squares
}

// LastMove returns the most recently made move, NoMove if none.
func (p *Position) LastMove() Move {
	if len(p.undo) == 0 {
		return NoMove
	}
	return p.undo[len(p.undo)-1].Move
}

// History returns the moves made since the position was loaded, oldest first.
func (p *Position) History() []Move {
	moves := make([]Move, len(p.undo))
	for i, rec := range p.undo {
		moves[i] = rec.Move
	}
	return moves
}

// HashSeen reports whether h equals the pre-move hash of any move on the
// undo stack.
func (p *Position) HashSeen(h uint64) bool {
	for i := len(p.undo) - 1; i >= 0; i-- {
		if p.undo[i].Hash == h {
			return true
		}
	}
	return false
}

// link appends sq to the tail of colour c's list. The king must be linked
// first.
func (p *Position) link(sq Square, c Color) {
	head := p.kingSquare[c]
	if head == sq {
		p.cells[sq].Prev, p.cells[sq].Next = sq, sq
		return
	}
	tail := p.cells[head].Prev
	p.cells[tail].Next = sq
	p.cells[sq].Prev = tail
	p.cells[sq].Next = head
	p.cells[head].Prev = sq
}

// unlink removes the piece on sq from its list and empties the cell. The
// removed cell keeps its links so relink can restore it.
func (p *Position) unlink(sq Square) {
	c := p.cells[sq]
	p.cells[c.Prev].Next = c.Next
	p.cells[c.Next].Prev = c.Prev
	p.cells[sq] = emptyCell
}

// relink reinserts a cell removed by unlink. Its neighbours must be the same
// as when it was removed.
func (p *Position) relink(sq Square, c Cell) {
	p.cells[sq] = c
	p.cells[c.Prev].Next = sq
	p.cells[c.Next].Prev = sq
}

// relocate moves the piece on from to the empty square to, carrying its
// list links.
func (p *Position) relocate(from, to Square) {
	c := p.cells[from]
	p.cells[from] = emptyCell
	if c.Prev == from {
		c.Prev, c.Next = to, to
	} else {
		p.cells[c.Prev].Next = to
		p.cells[c.Next].Prev = to
	}
	p.cells[to] = c
	if c.Piece.Type() == King {
		p.kingSquare[c.Piece.Color()] = to
	}
}

// Validate checks list integrity, king squares and the incremental hash.
func (p *Position) Validate() error {
	var count [2]int
	for sq := A1; sq <= H8; sq++ {
		c := p.cells[sq]
		if c.Piece == NoPiece {
			if c.Prev != NoSquare || c.Next != NoSquare {
				return fmt.Errorf("empty %s carries links", sq)
			}
			continue
		}
		count[c.Piece.Color()]++
	}

	for c := White; c <= Black; c++ {
		ksq := p.kingSquare[c]
		if !ksq.IsValid() || p.cells[ksq].Piece != NewPiece(King, c) {
			return fmt.Errorf("%s king not on %s", c, ksq)
		}
		visited := 0
		sq := ksq
		for {
			cell := p.cells[sq]
			if cell.Piece.Color() != c {
				return fmt.Errorf("%s list reaches %s holding %q", c, sq, cell.Piece)
			}
			if !cell.Next.IsValid() || p.cells[cell.Next].Prev != sq {
				return fmt.Errorf("%s list broken after %s", c, sq)
			}
			if sq != ksq && cell.Piece.Type() == King {
				return fmt.Errorf("%s has a second king on %s", c, sq)
			}
			visited++
			if visited > count[c] {
				return fmt.Errorf("%s list does not return to the king", c)
			}
			sq = cell.Next
			if sq == ksq {
				break
			}
		}
		if visited != count[c] {
			return fmt.Errorf("%s list visits %d of %d pieces", c, visited, count[c])
		}
	}

	if h := p.ComputeHash(); h != p.hash {
		return fmt.Errorf("hash %016x, recomputed %016x", p.hash, h)
	}
	return nil
}

// String returns a visual representation of the position.
func (p *Position) String() string {
	var sb strings.Builder
	sb.WriteByte('\n')
	for rank := 7; rank >= 0; rank-- {
		fmt.Fprintf(&sb, "%d  ", rank+1)
		for file := 0; file < 8; file++ {
			if pc := p.PieceAt(NewSquare(file, rank)); pc == NoPiece {
				sb.WriteString(". ")
			} else {
				sb.WriteString(pc.String() + " ")
			}
		}
		sb.WriteByte('\n')
	}
	sb.WriteString("\n   a b c d e f g h\n\n")
	fmt.Fprintf(&sb, "Side to move: %s\n", p.sideToMove)
	fmt.Fprintf(&sb, "Castling: %s\n", p.castlingRights)
	fmt.Fprintf(&sb, "En passant: %s\n", p.enPassant)
	fmt.Fprintf(&sb, "Half-move clock: %d\n", p.halfMoveClock)
	fmt.Fprintf(&sb, "Full move: %d\n", p.FullMoveNumber())
	fmt.Fprintf(&sb, "Hash: %016x\n", p.hash)
	return sb.String()
}
