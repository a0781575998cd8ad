package board

import "strings"

// Color is the colour of a piece or of the side to move.
type Color uint8

const (
	White Color = iota
	Black
	NoColor Color = 2
)

// Other returns the opposing colour.
func (c Color) Other() Color {
	return c ^ 1
}

var colorNames = [...]string{"White", "Black", "NoColor"}

func (c Color) String() string {
	if c > NoColor {
		return "NoColor"
	}
	return colorNames[c]
}

// PieceType is the kind of a piece, independent of colour.
type PieceType uint8

const (
	Pawn PieceType = iota
	Knight
	Bishop
	Rook
	Queen
	King
	NoPieceType PieceType = 6
)

var pieceTypeNames = [...]string{"Pawn", "Knight", "Bishop", "Rook", "Queen", "King", "None"}

func (pt PieceType) String() string {
	if pt > NoPieceType {
		return "None"
	}
	return pieceTypeNames[pt]
}

// Letter returns the upper-case notation letter ('P', 'N', ... 'K').
func (pt PieceType) Letter() byte {
	if pt >= NoPieceType {
		return ' '
	}
	return pieceLetters[pt]
}

// PieceValue is the material value of each piece type in centipawns.
var PieceValue = [7]int{100, 300, 330, 500, 900, 10000, 0}

// Piece combines a PieceType and a Color, encoded as type + 6*colour.
type Piece uint8

const (
	WhitePawn, WhiteKnight, WhiteBishop, WhiteRook, WhiteQueen, WhiteKing Piece = 0, 1, 2, 3, 4, 5
	BlackPawn, BlackKnight, BlackBishop, BlackRook, BlackQueen, BlackKing Piece = 6, 7, 8, 9, 10, 11

	NoPiece Piece = 12
)

// pieceLetters holds the FEN letter of every piece, indexed by Piece.
const pieceLetters = "PNBRQKpnbrqk"

// NewPiece creates a Piece from a type and colour.
func NewPiece(pt PieceType, c Color) Piece {
	if pt >= NoPieceType || c >= NoColor {
		return NoPiece
	}
	return Piece(pt) + Piece(c)*6
}

// Type returns the piece type, NoPieceType for NoPiece.
func (p Piece) Type() PieceType {
	if p >= NoPiece {
		return NoPieceType
	}
	return PieceType(p % 6)
}

// Color returns the piece colour, NoColor for NoPiece.
func (p Piece) Color() Color {
	if p >= NoPiece {
		return NoColor
	}
	return Color(p / 6)
}

// Index returns 0-11 for table lookups (white pawn .. black king).
func (p Piece) Index() int {
	return int(p)
}

// Value returns the material value of the piece in centipawns.
func (p Piece) Value() int {
	return PieceValue[p.Type()]
}

// String returns the FEN letter: upper case for White, lower case for Black.
func (p Piece) String() string {
	if p >= NoPiece {
		return " "
	}
	return pieceLetters[p : p+1]
}

// PieceFromChar converts a FEN letter to a Piece.
func PieceFromChar(c byte) Piece {
	if i := strings.IndexByte(pieceLetters, c); i >= 0 {
		return Piece(i)
	}
	return NoPiece
}
