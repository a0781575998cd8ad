package board

import "strings"

// SAN returns the Standard Algebraic Notation of m, which must be legal in
// the position, without a check suffix.
func (p *Position) SAN(m Move) string {
	if m == NoMove {
		return "-"
	}

	from, to := m.From(), m.To()
	pc := p.PieceAt(from)
	if pc == NoPiece {
		return m.String()
	}

	switch m.Kind() {
	case CastleKingSide:
		return "O-O"
	case CastleQueenSide:
		return "O-O-O"
	}

	var sb strings.Builder
	pt := pc.Type()
	if pt != Pawn {
		sb.WriteByte(pt.Letter())
		sb.WriteString(p.disambiguation(m, pc))
	}

	if m.IsCapture(p) {
		if pt == Pawn {
			sb.WriteByte('a' + byte(from.File()))
		}
		sb.WriteByte('x')
	}

	sb.WriteString(to.String())

	if m.IsPromotion() {
		sb.WriteByte('=')
		sb.WriteByte(m.Promotion().Letter())
	}
	return sb.String()
}

// SANWithStatus returns SAN(m) followed by "#" when m mates or "+" when it
// gives check.
func (p *Position) SANWithStatus(m Move) string {
	san := p.SAN(m)
	if m == NoMove {
		return san
	}
	p.MakeMove(m)
	check := p.InCheck()
	mate := check && !p.HasLegalMoves()
	p.UnmakeMove()

	switch {
	case mate:
		return san + "#"
	case check:
		return san + "+"
	}
	return san
}

// disambiguation returns the origin file, rank or square needed to tell m
// apart from other legal moves of the same piece kind to the same square.
func (p *Position) disambiguation(m Move, pc Piece) string {
	from, to := m.From(), m.To()

	var rivals []Square
	legal := p.GenerateLegalMoves()
	for i := 0; i < legal.Len(); i++ {
		other := legal.Get(i)
		if other.To() != to || other.From() == from {
			continue
		}
		if p.PieceAt(other.From()) == pc {
			rivals = append(rivals, other.From())
		}
	}
	if len(rivals) == 0 {
		return ""
	}

	sameFile, sameRank := false, false
	for _, sq := range rivals {
		if sq.File() == from.File() {
			sameFile = true
		}
		if sq.Rank() == from.Rank() {
			sameRank = true
		}
	}
	switch {
	case !sameFile:
		return string(rune('a' + from.File()))
	case !sameRank:
		return string(rune('1' + from.Rank()))
	}
	return from.String()
}

// MovesToSAN renders a line of moves starting from pos, with check suffixes.
// pos is left unchanged.
func MovesToSAN(pos *Position, moves []Move) []string {
	text := make([]string, len(moves))
	for i, m := range moves {
		text[i] = pos.SANWithStatus(m)
		pos.MakeMove(m)
	}
	for range moves {
		pos.UnmakeMove()
	}
	return text
}
