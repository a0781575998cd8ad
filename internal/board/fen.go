package board

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// StartFEN is the FEN string for the starting position.
const StartFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// ParseFEN parses a FEN string and returns a Position. The half-move clock
// and full-move number fields are optional. Every failure wraps
// ErrMalformedFEN.
func ParseFEN(fen string) (*Position, error) {
	parts := strings.Fields(fen)
	if len(parts) < 4 || len(parts) > 6 {
		return nil, fmt.Errorf("%w: need 4 to 6 fields, got %d", ErrMalformedFEN, len(parts))
	}

	pos := newEmptyPosition()

	if err := parsePiecePlacement(pos, parts[0]); err != nil {
		return nil, err
	}

	switch parts[1] {
	case "w":
		pos.sideToMove = White
	case "b":
		pos.sideToMove = Black
	default:
		return nil, fmt.Errorf("%w: invalid side to move %q", ErrMalformedFEN, parts[1])
	}

	if err := parseCastlingRights(pos, parts[2]); err != nil {
		return nil, err
	}

	if parts[3] != "-" {
		sq, err := ParseSquare(parts[3])
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedFEN, err)
		}
		if sq.Rank() != sides[pos.sideToMove].startRank+4*sides[pos.sideToMove].pawnDir {
			return nil, fmt.Errorf("%w: en passant square %s on the wrong rank", ErrMalformedFEN, sq)
		}
		pos.enPassant = sq
	}

	if len(parts) > 4 {
		hmc, err := strconv.Atoi(parts[4])
		if err != nil || hmc < 0 {
			return nil, fmt.Errorf("%w: invalid half-move clock %q", ErrMalformedFEN, parts[4])
		}
		pos.halfMoveClock = hmc
	}

	fullMove := 1
	if len(parts) > 5 {
		fmn, err := strconv.Atoi(parts[5])
		if err != nil || fmn < 1 {
			return nil, fmt.Errorf("%w: invalid full-move number %q", ErrMalformedFEN, parts[5])
		}
		fullMove = fmn
	}
	pos.startPly = (fullMove - 1) * 2
	if pos.sideToMove == Black {
		pos.startPly++
	}

	pos.hash = pos.ComputeHash()
	return pos, nil
}

// parsePiecePlacement fills the cells, then threads each colour's list from
// its king through the remaining pieces in square order.
func parsePiecePlacement(pos *Position, placement string) error {
	ranks := strings.Split(placement, "/")
	if len(ranks) != 8 {
		return fmt.Errorf("%w: need 8 ranks, got %d", ErrMalformedFEN, len(ranks))
	}

	for i, rankStr := range ranks {
		rank := 7 - i
		file := 0
		for _, c := range rankStr {
			if file > 7 {
				return fmt.Errorf("%w: too many squares in rank %d", ErrMalformedFEN, rank+1)
			}
			if c >= '1' && c <= '8' {
				file += int(c - '0')
				continue
			}
			if c >= utf8.RuneSelf {
				return fmt.Errorf("%w: invalid piece character %q", ErrMalformedFEN, c)
			}
			pc := PieceFromChar(byte(c))
			if pc == NoPiece {
				return fmt.Errorf("%w: invalid piece character %q", ErrMalformedFEN, c)
			}
			if pc.Type() == Pawn && (rank == 0 || rank == 7) {
				return fmt.Errorf("%w: pawn on back rank", ErrMalformedFEN)
			}
			sq := NewSquare(file, rank)
			pos.cells[sq].Piece = pc
			if pc.Type() == King {
				if pos.kingSquare[pc.Color()] != NoSquare {
					return fmt.Errorf("%w: more than one %s king", ErrMalformedFEN, pc.Color())
				}
				pos.kingSquare[pc.Color()] = sq
			}
			file++
		}
		if file != 8 {
			return fmt.Errorf("%w: rank %d has %d squares", ErrMalformedFEN, rank+1, file)
		}
	}

	for c := White; c <= Black; c++ {
		if pos.kingSquare[c] == NoSquare {
			return fmt.Errorf("%w: no %s king", ErrMalformedFEN, c)
		}
		pos.link(pos.kingSquare[c], c)
	}
	for sq := A1; sq <= H8; sq++ {
		pc := pos.cells[sq].Piece
		if pc != NoPiece && pc.Type() != King {
			pos.link(sq, pc.Color())
		}
	}
	return nil
}

// parseCastlingRights parses the castling field. Rights whose king or rook
// is not on its home square are dropped.
func parseCastlingRights(pos *Position, castling string) error {
	if castling == "-" {
		return nil
	}
	for _, c := range castling {
		switch c {
		case 'K':
			pos.castlingRights |= WhiteKingSideCastle
		case 'Q':
			pos.castlingRights |= WhiteQueenSideCastle
		case 'k':
			pos.castlingRights |= BlackKingSideCastle
		case 'q':
			pos.castlingRights |= BlackQueenSideCastle
		default:
			return fmt.Errorf("%w: invalid castling character %q", ErrMalformedFEN, c)
		}
	}
	for c := White; c <= Black; c++ {
		back := sides[c].backRank
		king := pos.cells[NewSquare(4, back)].Piece == NewPiece(King, c)
		rook := NewPiece(Rook, c)
		if !king || pos.cells[NewSquare(7, back)].Piece != rook {
			pos.castlingRights &^= castleRight(c, true)
		}
		if !king || pos.cells[NewSquare(0, back)].Piece != rook {
			pos.castlingRights &^= castleRight(c, false)
		}
	}
	return nil
}

// FEN returns the FEN representation of the position.
func (p *Position) FEN() string {
	var sb strings.Builder

	for rank := 7; rank >= 0; rank-- {
		empty := 0
		for file := 0; file < 8; file++ {
			pc := p.PieceAt(NewSquare(file, rank))
			if pc == NoPiece {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteString(strconv.Itoa(empty))
				empty = 0
			}
			sb.WriteString(pc.String())
		}
		if empty > 0 {
			sb.WriteString(strconv.Itoa(empty))
		}
		if rank > 0 {
			sb.WriteByte('/')
		}
	}

	side := "w"
	if p.sideToMove == Black {
		side = "b"
	}
	fmt.Fprintf(&sb, " %s %s %s %d %d", side, p.castlingRights, p.enPassant, p.halfMoveClock, p.FullMoveNumber())
	return sb.String()
}
