package board

// GenerateLegalMoves returns the legal moves of the side to move: every
// pseudo-legal move is made, tested and unmade, and kept only when the
// mover's king is not left attacked.
func (p *Position) GenerateLegalMoves() *MoveList {
	pseudo := NewMoveList()
	p.GeneratePseudoLegal(pseudo, nil)
	pseudo.filter(p.isLegal)
	return pseudo
}

func (p *Position) isLegal(m Move) bool {
	p.MakeMove(m)
	illegal := p.KingAttackedAfterMove()
	p.UnmakeMove()
	return !illegal
}

// HasLegalMoves returns true if the side to move has at least one legal move.
func (p *Position) HasLegalMoves() bool {
	var ml MoveList
	p.GeneratePseudoLegal(&ml, nil)
	for i := 0; i < ml.Len(); i++ {
		if p.isLegal(ml.Get(i)) {
			return true
		}
	}
	return false
}

// IsCheckmate returns true if the side to move is checkmated.
func (p *Position) IsCheckmate() bool {
	return p.InCheck() && !p.HasLegalMoves()
}

// IsStalemate returns true if the side to move has no legal move and is not
// in check.
func (p *Position) IsStalemate() bool {
	return !p.InCheck() && !p.HasLegalMoves()
}
