package engine

import "github.com/hailam/zebra/internal/board"

// Positional bonus tables from White's point of view, a1 first. Black reads
// them through a vertical mirror.
var (
	pawnTable = [64]int{
		0, 0, 0, 0, 0, 0, 0, 0,
		10, 10, 0, -10, -10, 0, 10, 10,
		5, 0, 0, 5, 5, 0, 0, 5,
		0, 0, 10, 20, 20, 10, 0, 0,
		5, 5, 5, 10, 10, 5, 5, 5,
		10, 10, 10, 20, 20, 10, 10, 10,
		20, 20, 20, 30, 30, 20, 20, 20,
		0, 0, 0, 0, 0, 0, 0, 0,
	}

	knightTable = [64]int{
		0, -10, 0, 0, 0, 0, -10, 0,
		0, 0, 0, 5, 5, 0, 0, 0,
		0, 0, 10, 10, 10, 10, 0, 0,
		0, 0, 10, 20, 20, 10, 5, 0,
		5, 10, 15, 20, 20, 15, 10, 5,
		5, 10, 10, 20, 20, 10, 10, 5,
		0, 0, 5, 10, 10, 5, 0, 0,
		0, 0, 0, 0, 0, 0, 0, 0,
	}

	bishopTable = [64]int{
		0, 0, -10, 0, 0, -10, 0, 0,
		0, 0, 0, 10, 10, 0, 0, 0,
		0, 0, 10, 15, 15, 10, 0, 0,
		0, 10, 15, 20, 20, 15, 10, 0,
		0, 10, 15, 20, 20, 15, 10, 0,
		0, 0, 10, 15, 15, 10, 0, 0,
		0, 0, 0, 10, 10, 0, 0, 0,
		0, 0, 0, 0, 0, 0, 0, 0,
	}

	// Queens use the rook table.
	rookTable = [64]int{
		0, 0, 5, 10, 10, 5, 0, 0,
		0, 0, 5, 10, 10, 5, 0, 0,
		0, 0, 5, 10, 10, 5, 0, 0,
		0, 0, 5, 10, 10, 5, 0, 0,
		0, 0, 5, 10, 10, 5, 0, 0,
		0, 0, 5, 10, 10, 5, 0, 0,
		25, 25, 25, 25, 25, 25, 25, 25,
		0, 0, 5, 10, 10, 5, 0, 0,
	}
)

var pieceTables = [6]*[64]int{
	board.Pawn:   &pawnTable,
	board.Knight: &knightTable,
	board.Bishop: &bishopTable,
	board.Rook:   &rookTable,
	board.Queen:  &rookTable,
}

// sideValue sums material and table bonuses for one colour.
func sideValue(pos *board.Position, c board.Color) int {
	value := 0
	pos.ForEachPiece(c, func(sq board.Square, pc board.Piece) {
		pt := pc.Type()
		value += board.PieceValue[pt]
		if table := pieceTables[pt]; table != nil {
			if c == board.Black {
				sq = sq.Mirror()
			}
			value += table[sq]
		}
	})
	return value
}

// Evaluate returns the static evaluation of pos from the side to move's
// point of view.
func Evaluate(pos *board.Position) int {
	us := pos.SideToMove()
	return sideValue(pos, us) - sideValue(pos, us.Other())
}
