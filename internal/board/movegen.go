package board

// Scorer assigns an ordering score to each generated move.
type Scorer interface {
	ScoreMove(p *Position, m Move) int
}

var promotionTypes = [4]PieceType{Queen, Rook, Bishop, Knight}

// add appends m to ml, scoring it when a scorer is given.
func (p *Position) add(ml *MoveList, scorer Scorer, m Move) {
	ml.Add(m)
	if scorer != nil {
		ml.SetScore(ml.Len()-1, scorer.ScoreMove(p, m))
	}
}

// canLand reports whether a piece of colour us may move onto sq: the square
// is empty or holds an enemy piece other than the king.
func (p *Position) canLand(sq Square, us Color) bool {
	pc := p.cells[sq].Piece
	return pc == NoPiece || (pc.Color() != us && pc.Type() != King)
}

// GeneratePseudoLegal fills ml with every pseudo-legal move for the side to
// move, walking its occupancy list once. Castling comes last. Moves may
// leave the mover's king attacked; see GenerateLegalMoves.
func (p *Position) GeneratePseudoLegal(ml *MoveList, scorer Scorer) {
	ml.Clear()
	us := p.sideToMove

	p.ForEachPiece(us, func(from Square, pc Piece) {
		switch pt := pc.Type(); pt {
		case Pawn:
			p.genPawn(ml, scorer, from, us)
		case Knight:
			for _, to := range knightTargets[from] {
				if p.canLand(to, us) {
					p.add(ml, scorer, NewMove(from, to, Normal))
				}
			}
		case King:
			for _, to := range kingTargets[from] {
				if p.canLand(to, us) {
					p.add(ml, scorer, NewMove(from, to, Normal))
				}
			}
		default:
			for dir := range rays[from] {
				if !slides(pt, dir) {
					continue
				}
				for _, to := range rays[from][dir] {
					target := p.cells[to].Piece
					if target == NoPiece {
						p.add(ml, scorer, NewMove(from, to, Normal))
						continue
					}
					if target.Color() != us && target.Type() != King {
						p.add(ml, scorer, NewMove(from, to, Normal))
					}
					break
				}
			}
		}
	})

	p.genCastling(ml, scorer, us)
}

func (p *Position) genPawn(ml *MoveList, scorer Scorer, from Square, us Color) {
	side := sides[us]

	addPawnMove := func(to Square, kind MoveKind) {
		if to.Rank() == side.promoRank {
			for _, pt := range promotionTypes {
				p.add(ml, scorer, NewPromotion(from, to, pt))
			}
			return
		}
		p.add(ml, scorer, NewMove(from, to, kind))
	}

	if one, ok := from.Offset(0, side.pawnDir); ok && p.IsEmpty(one) {
		addPawnMove(one, PawnPush)
		if from.Rank() == side.startRank {
			if two, ok := one.Offset(0, side.pawnDir); ok && p.IsEmpty(two) {
				p.add(ml, scorer, NewMove(from, two, DoublePawnPush))
			}
		}
	}

	for _, df := range [2]int{-1, 1} {
		to, ok := from.Offset(df, side.pawnDir)
		if !ok {
			continue
		}
		target := p.cells[to].Piece
		if target != NoPiece {
			if target.Color() != us && target.Type() != King {
				addPawnMove(to, Normal)
			}
			continue
		}
		if to == p.enPassant {
			victim, _ := to.Offset(0, -side.pawnDir)
			if p.cells[victim].Piece == NewPiece(Pawn, us.Other()) {
				p.add(ml, scorer, NewMove(from, to, EnPassant))
			}
		}
	}
}

// genCastling adds castling moves whose rights are held, whose king and
// rook stand on their home squares with an empty path between them, and
// whose king neither starts on nor crosses an attacked square. The
// destination square is left to the legality filter.
func (p *Position) genCastling(ml *MoveList, scorer Scorer, us Color) {
	back := sides[us].backRank
	kingFrom := NewSquare(4, back)
	if p.kingSquare[us] != kingFrom {
		return
	}
	them := us.Other()
	rook := NewPiece(Rook, us)

	if p.castlingRights.CanCastle(us, true) &&
		p.cells[NewSquare(7, back)].Piece == rook &&
		p.IsEmpty(NewSquare(5, back)) && p.IsEmpty(NewSquare(6, back)) &&
		!p.IsSquareAttacked(kingFrom, them) && !p.IsSquareAttacked(NewSquare(5, back), them) {
		p.add(ml, scorer, NewMove(kingFrom, NewSquare(6, back), CastleKingSide))
	}

	if p.castlingRights.CanCastle(us, false) &&
		p.cells[NewSquare(0, back)].Piece == rook &&
		p.IsEmpty(NewSquare(3, back)) && p.IsEmpty(NewSquare(2, back)) && p.IsEmpty(NewSquare(1, back)) &&
		!p.IsSquareAttacked(kingFrom, them) && !p.IsSquareAttacked(NewSquare(3, back), them) {
		p.add(ml, scorer, NewMove(kingFrom, NewSquare(2, back), CastleQueenSide))
	}
}

// GenerateCaptures fills ml with the pseudo-legal captures, en passant
// included, of the side to move.
func (p *Position) GenerateCaptures(ml *MoveList, scorer Scorer) {
	p.GeneratePseudoLegal(ml, scorer)
	ml.filter(func(m Move) bool {
		return m.IsCapture(p)
	})
}

// castleRookSquares returns the rook's origin and destination for a
// castling move.
func castleRookSquares(m Move) (from, to Square) {
	rank := m.From().Rank()
	if m.Kind() == CastleKingSide {
		return NewSquare(7, rank), NewSquare(5, rank)
	}
	return NewSquare(0, rank), NewSquare(3, rank)
}
