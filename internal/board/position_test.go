package board

import (
	"errors"
	"testing"
)

type snapshot struct {
	cells    [64]Cell
	kings    [2]Square
	side     Color
	castling CastlingRights
	ep       Square
	clock    int
	hash     uint64
	plies    int
}

func takeSnapshot(p *Position) snapshot {
	return snapshot{p.cells, p.kingSquare, p.sideToMove, p.castlingRights, p.enPassant, p.halfMoveClock, p.hash, p.GamePly()}
}

var walkFENs = []string{
	StartFEN,
	"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
	"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
	"r3k2r/Pppp1ppp/1b3nbN/nP6/BBP1P3/q4N2/Pp1P2PP/R2Q1RK1 w kq - 0 1",
}

// walk makes and unmakes every legal move to the given depth, checking that
// each make leaves a valid position and each unmake restores the previous
// one exactly.
func walk(t *testing.T, p *Position, depth int) {
	if depth == 0 {
		return
	}
	moves := p.GenerateLegalMoves()
	for i := 0; i < moves.Len(); i++ {
		m := moves.Get(i)
		before := takeSnapshot(p)
		p.MakeMove(m)
		if err := p.Validate(); err != nil {
			t.Fatalf("after %v: %v\n%s", m, err, p)
		}
		if p.KingAttackedAfterMove() {
			t.Fatalf("legal move %v leaves the king attacked\n%s", m, p)
		}
		walk(t, p, depth-1)
		p.UnmakeMove()
		if after := takeSnapshot(p); after != before {
			t.Fatalf("unmake of %v did not restore the position\n%s", m, p)
		}
	}
}

func TestMakeUnmakeRoundTrip(t *testing.T) {
	for _, fen := range walkFENs {
		pos, err := ParseFEN(fen)
		if err != nil {
			t.Fatalf("ParseFEN(%q): %v", fen, err)
		}
		walk(t, pos, 3)
	}
}

func TestOccupancyListStartsAtKing(t *testing.T) {
	pos := NewPosition()
	for c := White; c <= Black; c++ {
		squares := pos.Pieces(c)
		if len(squares) != 16 {
			t.Errorf("%s has %d pieces, want 16", c, len(squares))
		}
		if squares[0] != pos.KingSquare(c) {
			t.Errorf("%s list starts at %s, want the king", c, squares[0])
		}

		// Every cell links back to its predecessor and the list closes on the king.
		for i, sq := range squares {
			cell := pos.CellAt(sq)
			if cell.Piece.Color() != c {
				t.Errorf("cell %s holds %s, want a %s piece", sq, cell.Piece, c)
			}
			next := squares[(i+1)%len(squares)]
			if cell.Next != next || pos.CellAt(next).Prev != sq {
				t.Errorf("%s: next %s, want %s linked both ways", sq, cell.Next, next)
			}
		}
	}

	if cell := pos.CellAt(E4); cell.Piece != NoPiece || cell.Prev != NoSquare || cell.Next != NoSquare {
		t.Errorf("empty e4 = %+v, want an unlinked empty cell", cell)
	}
}

func TestCaptureRelinksVictim(t *testing.T) {
	// White has king and rook only, so its list degenerates to king <-> rook.
	pos, err := ParseFEN("4k3/8/8/8/8/8/r6R/4K3 b - - 0 1")
	if err != nil {
		t.Fatal(err)
	}
	pos.MakeMove(NewMove(A2, H2, Normal))
	if got := pos.Pieces(White); len(got) != 1 || got[0] != E1 {
		t.Errorf("white pieces after Rxh2 = %v, want [e1]", got)
	}
	if err := pos.Validate(); err != nil {
		t.Fatal(err)
	}

	// A lone king relocates onto itself.
	pos.MakeMove(NewMove(E1, D1, Normal))
	if err := pos.Validate(); err != nil {
		t.Fatal(err)
	}
	pos.UnmakeMove()
	pos.UnmakeMove()

	if got := len(pos.Pieces(White)); got != 2 {
		t.Errorf("white has %d pieces after unmake, want 2", got)
	}
	if err := pos.Validate(); err != nil {
		t.Fatal(err)
	}
}

// TestHashFromKeys rebuilds the hash from the published keys after a
// capture and a castling-rights change.
func TestHashFromKeys(t *testing.T) {
	pos, err := ParseFEN("r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1")
	if err != nil {
		t.Fatal(err)
	}
	pos.MakeMove(NewMove(A1, A8, Normal))

	want := ZobristCastling(pos.CastlingRights()) ^ ZobristSideToMove()
	for _, sq := range []Square{A8, E1, H1, E8, H8} {
		want ^= ZobristPiece(pos.PieceAt(sq), sq)
	}
	if pos.Hash() != want {
		t.Errorf("hash = %016x, want %016x", pos.Hash(), want)
	}
	if pos.CastlingRights() != WhiteKingSideCastle|BlackKingSideCastle {
		t.Errorf("rights = %s, want Kk", pos.CastlingRights())
	}
}

func TestHashIgnoresEnPassant(t *testing.T) {
	pos := NewPosition()
	pos.MakeMove(NewMove(E2, E4, DoublePawnPush))
	if pos.EnPassant() != E3 {
		t.Fatalf("en passant = %s, want e3", pos.EnPassant())
	}

	same, err := ParseFEN("rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq - 0 1")
	if err != nil {
		t.Fatal(err)
	}
	if pos.Hash() != same.Hash() {
		t.Errorf("hash %016x differs from the same placement without en passant %016x", pos.Hash(), same.Hash())
	}
}

func TestRepetitionHash(t *testing.T) {
	pos := NewPosition()
	start := pos.Hash()
	for _, m := range []Move{
		NewMove(G1, F3, Normal), NewMove(G8, F6, Normal),
		NewMove(F3, G1, Normal), NewMove(F6, G8, Normal),
	} {
		pos.MakeMove(m)
	}
	if pos.Hash() != start {
		t.Errorf("hash after knight shuffle %016x, want %016x", pos.Hash(), start)
	}
	if !pos.HashSeen(pos.Hash()) {
		t.Error("HashSeen missed the repeated position")
	}
	if pos.HalfMoveClock() != 4 {
		t.Errorf("half-move clock = %d, want 4", pos.HalfMoveClock())
	}
	if pos.GamePly() != 4 || pos.FullMoveNumber() != 3 {
		t.Errorf("ply %d move %d, want 4 and 3", pos.GamePly(), pos.FullMoveNumber())
	}
}

func TestCastlingRightsRevokedByRookCapture(t *testing.T) {
	pos, err := ParseFEN("r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1")
	if err != nil {
		t.Fatal(err)
	}
	pos.MakeMove(NewMove(A1, A8, Normal))
	if want := WhiteKingSideCastle | BlackKingSideCastle; pos.CastlingRights() != want {
		t.Errorf("rights after Rxa8 = %s, want %s", pos.CastlingRights(), want)
	}
	pos.UnmakeMove()
	if pos.CastlingRights() != AllCastling {
		t.Errorf("rights after unmake = %s, want KQkq", pos.CastlingRights())
	}
	pos.MakeMove(NewMove(E1, F1, Normal))
	if want := BlackKingSideCastle | BlackQueenSideCastle; pos.CastlingRights() != want {
		t.Errorf("rights after king move = %s, want %s", pos.CastlingRights(), want)
	}
}

func TestCastlingGating(t *testing.T) {
	tests := []struct {
		name      string
		fen       string
		kingSide  bool
		queenSide bool
	}{
		{"both available", "4k3/8/8/8/8/8/8/R3K2R w KQ - 0 1", true, true},
		{"crossing square attacked", "4k3/8/8/8/8/8/5r2/R3K2R w KQ - 0 1", false, true},
		{"destination attacked", "4k3/8/8/8/8/8/6r1/R3K2R w KQ - 0 1", false, true},
		{"in check", "4k3/8/8/8/8/8/4r3/R3K2R w KQ - 0 1", false, false},
		{"b-file blocked", "4k3/8/8/8/8/8/8/RN2K2R w KQ - 0 1", true, false},
		{"b-file attacked only", "4k3/8/8/8/8/8/1r6/R3K2R w KQ - 0 1", true, true},
		{"no rights", "4k3/8/8/8/8/8/8/R3K2R w - - 0 1", false, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			pos, err := ParseFEN(tc.fen)
			if err != nil {
				t.Fatal(err)
			}
			moves := pos.GenerateLegalMoves()
			if got := moves.Contains(NewMove(E1, G1, CastleKingSide)); got != tc.kingSide {
				t.Errorf("O-O legal = %v, want %v", got, tc.kingSide)
			}
			if got := moves.Contains(NewMove(E1, C1, CastleQueenSide)); got != tc.queenSide {
				t.Errorf("O-O-O legal = %v, want %v", got, tc.queenSide)
			}
		})
	}
}

func TestEnPassantWindow(t *testing.T) {
	pos, err := ParseFEN("4k3/8/8/8/3p4/8/4P3/4K2N w - - 0 1")
	if err != nil {
		t.Fatal(err)
	}
	capture := NewMove(D4, E3, EnPassant)

	pos.MakeMove(NewMove(E2, E4, DoublePawnPush))
	if !pos.GenerateLegalMoves().Contains(capture) {
		t.Fatal("dxe3 e.p. missing right after the double push")
	}

	pos.MakeMove(capture)
	if pos.PieceAt(E4) != NoPiece || pos.PieceAt(E3) != BlackPawn {
		t.Errorf("en passant left e4=%q e3=%q", pos.PieceAt(E4), pos.PieceAt(E3))
	}
	pos.UnmakeMove()
	if pos.PieceAt(E4) != WhitePawn {
		t.Error("unmake did not restore the captured pawn")
	}

	pos.MakeMove(NewMove(E8, D8, Normal))
	pos.MakeMove(NewMove(H1, G3, Normal))
	for _, m := range pos.GenerateLegalMoves().Slice() {
		if m.IsEnPassant() {
			t.Errorf("en passant %v still offered a move later", m)
		}
	}
}

func TestUnmakeEmptyHistoryPanics(t *testing.T) {
	defer func() {
		r := recover()
		err, ok := r.(error)
		if !ok || !errors.Is(err, ErrEmptyHistory) {
			t.Errorf("recovered %v, want ErrEmptyHistory", r)
		}
	}()
	NewPosition().UnmakeMove()
}

func TestParseFENErrors(t *testing.T) {
	bad := []string{
		"",
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP w KQkq - 0 1",
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR x KQkq - 0 1",
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQxq - 0 1",
		"rnbqkbnr/pppppppp/9/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1",
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQ1BNR w kq - 0 1",
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBKKBNR w kq - 0 1",
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq e4 0 1",
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - -1 1",
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 0",
		"rnbqkbnP/pppppppp/8/8/8/8/PPPPPPP1/RNBQKBNR w KQkq - 0 1",
		// U+0150 has 'P' as its low byte.
		"4k3/8/8/8/8/8/\u0150\u0150\u0150\u0150\u0150\u0150\u0150\u0150/4K3 w - - 0 1",
	}
	for _, fen := range bad {
		if _, err := ParseFEN(fen); !errors.Is(err, ErrMalformedFEN) {
			t.Errorf("ParseFEN(%q) error = %v, want ErrMalformedFEN", fen, err)
		}
	}
}

func TestFENRoundTrip(t *testing.T) {
	fens := []string{
		StartFEN,
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
		"8/8/8/8/k2Pp2R/8/8/4K3 b - d3 0 1",
		"4k3/8/8/8/8/8/8/4K3 w - - 12 40",
	}
	for _, fen := range fens {
		pos, err := ParseFEN(fen)
		if err != nil {
			t.Fatalf("ParseFEN(%q): %v", fen, err)
		}
		if got := pos.FEN(); got != fen {
			t.Errorf("FEN() = %q, want %q", got, fen)
		}
	}
}

func TestStartPlyFromFEN(t *testing.T) {
	pos, err := ParseFEN("4k3/8/8/8/8/8/8/4K3 b - - 0 20")
	if err != nil {
		t.Fatal(err)
	}
	if pos.StartPly() != 39 {
		t.Errorf("StartPly = %d, want 39", pos.StartPly())
	}
	pos.MakeMove(NewMove(E8, D8, Normal))
	if pos.GamePly() != 40 || pos.FullMoveNumber() != 21 {
		t.Errorf("ply %d move %d, want 40 and 21", pos.GamePly(), pos.FullMoveNumber())
	}
}

func TestCopyIsIndependent(t *testing.T) {
	pos := NewPosition()
	pos.MakeMove(NewMove(E2, E4, DoublePawnPush))
	cp := pos.Copy()
	cp.MakeMove(NewMove(E7, E5, DoublePawnPush))
	cp.UnmakeMove()
	cp.UnmakeMove()

	if pos.LastMove() != NewMove(E2, E4, DoublePawnPush) {
		t.Errorf("original history changed: %v", pos.History())
	}
	if pos.PieceAt(E4) != WhitePawn || cp.PieceAt(E2) != WhitePawn {
		t.Error("copy shares board state with the original")
	}
}
