package board

// Direction indices into rays. The first four are orthogonal, the last four
// diagonal.
const (
	north = iota
	south
	east
	west
	northEast
	northWest
	southEast
	southWest
)

var directionDelta = [8][2]int{
	north:     {0, 1},
	south:     {0, -1},
	east:      {1, 0},
	west:      {-1, 0},
	northEast: {1, 1},
	northWest: {-1, 1},
	southEast: {1, -1},
	southWest: {-1, -1},
}

var (
	knightTargets [64][]Square
	kingTargets   [64][]Square
	// rays[sq][dir] lists the squares from sq outward to the board edge.
	rays [64][8][]Square
)

var knightDelta = [8][2]int{{1, 2}, {2, 1}, {2, -1}, {1, -2}, {-1, -2}, {-2, -1}, {-2, 1}, {-1, 2}}

func init() {
	for sq := A1; sq <= H8; sq++ {
		for _, d := range knightDelta {
			if t, ok := sq.Offset(d[0], d[1]); ok {
				knightTargets[sq] = append(knightTargets[sq], t)
			}
		}
		for dir, d := range directionDelta {
			if t, ok := sq.Offset(d[0], d[1]); ok {
				kingTargets[sq] = append(kingTargets[sq], t)
			}
			for t, ok := sq.Offset(d[0], d[1]); ok; t, ok = t.Offset(d[0], d[1]) {
				rays[sq][dir] = append(rays[sq][dir], t)
			}
		}
	}
}

func isDiagonal(dir int) bool {
	return dir >= northEast
}

// slides reports whether a piece of type pt moves along direction dir.
func slides(pt PieceType, dir int) bool {
	switch pt {
	case Queen:
		return true
	case Rook:
		return !isDiagonal(dir)
	case Bishop:
		return isDiagonal(dir)
	}
	return false
}

// IsSquareAttacked returns true if any piece of colour by attacks sq.
func (p *Position) IsSquareAttacked(sq Square, by Color) bool {
	// A pawn of colour by attacks sq from one rank behind it.
	pawn := NewPiece(Pawn, by)
	for _, df := range [2]int{-1, 1} {
		if from, ok := sq.Offset(df, -sides[by].pawnDir); ok && p.cells[from].Piece == pawn {
			return true
		}
	}

	knight := NewPiece(Knight, by)
	for _, from := range knightTargets[sq] {
		if p.cells[from].Piece == knight {
			return true
		}
	}

	king := NewPiece(King, by)
	for _, from := range kingTargets[sq] {
		if p.cells[from].Piece == king {
			return true
		}
	}

	for dir := range rays[sq] {
		for _, from := range rays[sq][dir] {
			pc := p.cells[from].Piece
			if pc == NoPiece {
				continue
			}
			if pc.Color() == by && slides(pc.Type(), dir) {
				return true
			}
			break
		}
	}
	return false
}

// InCheck returns true if the side to move is in check.
func (p *Position) InCheck() bool {
	us := p.sideToMove
	return p.IsSquareAttacked(p.kingSquare[us], us.Other())
}

// KingAttackedAfterMove reports whether the side that just moved left its
// own king attacked, i.e. whether the last move was illegal.
func (p *Position) KingAttackedAfterMove() bool {
	mover := p.sideToMove.Other()
	return p.IsSquareAttacked(p.kingSquare[mover], p.sideToMove)
}
