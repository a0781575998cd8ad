package board

// MakeMove plays m, which must be pseudo-legal in the position, and pushes
// an UndoRecord. The hash is updated incrementally.
func (p *Position) MakeMove(m Move) {
	from, to := m.From(), m.To()
	mover := p.cells[from].Piece
	us := p.sideToMove

	rec := UndoRecord{
		Move:           m,
		Piece:          mover,
		Captured:       emptyCell,
		CapturedSquare: NoSquare,
		Hash:           p.hash,
		CastlingRights: p.castlingRights,
		EnPassant:      p.enPassant,
		HalfMoveClock:  p.halfMoveClock,
	}

	capSq := to
	if m.Kind() == EnPassant {
		capSq, _ = to.Offset(0, -sides[us].pawnDir)
	}
	if victim := p.cells[capSq].Piece; victim != NoPiece {
		rec.Captured = p.cells[capSq]
		rec.CapturedSquare = capSq
		p.unlink(capSq)
		p.hash ^= zobristPiece[victim][capSq]
	}

	p.relocate(from, to)
	p.hash ^= zobristPiece[mover][from] ^ zobristPiece[mover][to]

	p.enPassant = NoSquare
	switch m.Kind() {
	case DoublePawnPush:
		p.enPassant, _ = from.Offset(0, sides[us].pawnDir)
	case Promotion:
		promoted := NewPiece(m.Promotion(), us)
		p.cells[to].Piece = promoted
		p.hash ^= zobristPiece[mover][to] ^ zobristPiece[promoted][to]
	case CastleKingSide, CastleQueenSide:
		rf, rt := castleRookSquares(m)
		rook := p.cells[rf].Piece
		p.relocate(rf, rt)
		p.hash ^= zobristPiece[rook][rf] ^ zobristPiece[rook][rt]
	}

	p.castlingRights &^= castleMask[from] | castleMask[to]

	if mover.Type() == Pawn || rec.CapturedSquare != NoSquare {
		p.halfMoveClock = 0
	} else {
		p.halfMoveClock++
	}

	p.sideToMove = us.Other()
	p.hash ^= zobristCastling[rec.CastlingRights] ^ zobristCastling[p.castlingRights] ^ zobristSideToMove

	p.undo = append(p.undo, rec)
}

// UnmakeMove reverses the most recent MakeMove. It panics with
// ErrEmptyHistory when there is nothing to undo.
func (p *Position) UnmakeMove() {
	n := len(p.undo)
	if n == 0 {
		panic(ErrEmptyHistory)
	}
	rec := p.undo[n-1]
	p.undo = p.undo[:n-1]

	m := rec.Move
	from, to := m.From(), m.To()

	switch m.Kind() {
	case Promotion:
		p.cells[to].Piece = rec.Piece
	case CastleKingSide, CastleQueenSide:
		rf, rt := castleRookSquares(m)
		p.relocate(rt, rf)
	}
	p.relocate(to, from)

	if rec.CapturedSquare != NoSquare {
		p.relink(rec.CapturedSquare, rec.Captured)
	}

	p.sideToMove = p.sideToMove.Other()
	p.castlingRights = rec.CastlingRights
	p.enPassant = rec.EnPassant
	p.halfMoveClock = rec.HalfMoveClock
	p.hash = rec.Hash
}
