package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hailam/zebra/internal/board"
)

func mustFEN(t *testing.T, fen string) *board.Position {
	t.Helper()
	pos, err := board.ParseFEN(fen)
	require.NoError(t, err)
	return pos
}

func TestEvaluateSymmetric(t *testing.T) {
	pos := board.NewPosition()
	assert.Equal(t, 0, Evaluate(pos))

	pos.MakeMove(board.NewMove(board.E2, board.E4, board.DoublePawnPush))
	assert.Equal(t, -30, Evaluate(pos), "e4 moves a pawn from -10 to +20, scored for Black")
}

func TestEvaluateMaterial(t *testing.T) {
	// White is a rook up; the rook stands on a zero-bonus square.
	pos := mustFEN(t, "4k3/8/8/8/8/8/8/R3K3 w - - 0 1")
	assert.Equal(t, 500, Evaluate(pos))

	pos = mustFEN(t, "4k3/8/8/8/8/8/8/R3K3 b - - 0 1")
	assert.Equal(t, -500, Evaluate(pos))
}

func TestSearchMateInOne(t *testing.T) {
	pos := mustFEN(t, "6k1/5ppp/8/8/8/8/8/R5K1 w - - 0 1")
	eng := NewEngine()

	res, err := eng.Search(context.Background(), pos, 3)
	require.NoError(t, err)
	assert.Equal(t, board.NewMove(board.A1, board.A8, board.Normal), res.Move)
	assert.Equal(t, MateScore-1, res.Score)
	assert.Equal(t, 3, res.Depth)
	assert.False(t, res.Stopped)
	assert.Equal(t, "Mate in 1", ScoreString(res.Score))
}

func TestSearchNoLegalMoves(t *testing.T) {
	tests := []struct {
		name  string
		fen   string
		score int
	}{
		{"checkmated", "R6k/6pp/8/8/8/8/8/K7 b - - 0 1", -MateScore},
		{"stalemated", "7k/5Q2/6K1/8/8/8/8/8 b - - 0 1", 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			res, err := NewEngine().Search(context.Background(), mustFEN(t, tc.fen), 4)
			require.NoError(t, err)
			assert.Equal(t, board.NoMove, res.Move)
			assert.Equal(t, tc.score, res.Score)
			assert.Empty(t, res.PV)
		})
	}
}

func TestSearchWinsMaterial(t *testing.T) {
	// The black queen on d5 hangs to the knight.
	pos := mustFEN(t, "4k3/8/8/3q4/8/4N3/8/4K3 w - - 0 1")
	res, err := NewEngine().Search(context.Background(), pos, 3)
	require.NoError(t, err)
	assert.Equal(t, board.NewMove(board.E3, board.D5, board.Normal), res.Move)
	assert.Greater(t, res.Score, 0)
}

func TestSearchDeterministicAndRestoresPosition(t *testing.T) {
	const fen = "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1"

	pos := mustFEN(t, fen)
	eng := NewEngine()
	first, err := eng.Search(context.Background(), pos, 3)
	require.NoError(t, err)
	assert.Equal(t, fen, pos.FEN())
	require.NoError(t, pos.Validate())

	second, err := NewEngine().Search(context.Background(), mustFEN(t, fen), 3)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	// The same engine gives the same answer again: no state leaks between searches.
	third, err := eng.Search(context.Background(), pos, 3)
	require.NoError(t, err)
	assert.Equal(t, first, third)
}

func TestSearchPVIsLegal(t *testing.T) {
	pos := board.NewPosition()
	res, err := NewEngine().Search(context.Background(), pos, 4)
	require.NoError(t, err)
	require.NotEmpty(t, res.PV)
	assert.Equal(t, res.Move, res.PV[0])

	for _, m := range res.PV {
		require.True(t, pos.GenerateLegalMoves().Contains(m), "PV move %v not legal", m)
		pos.MakeMove(m)
	}
}

func TestStartWhileSearching(t *testing.T) {
	eng := NewEngine()
	updates, cancel := eng.Subscribe(16)
	defer cancel()

	pos := board.NewPosition()
	require.NoError(t, eng.Start(context.Background(), pos, MaxDepth))
	assert.True(t, eng.Searching())

	// The first root PV update proves the search is under way.
	<-updates
	err := eng.Start(context.Background(), board.NewPosition(), 2)
	assert.ErrorIs(t, err, ErrSearchInProgress)

	eng.Stop()
	res := eng.Wait()
	assert.True(t, res.Stopped)
	assert.False(t, eng.Searching())
	assert.NotEqual(t, board.NoMove, res.Move)
	assert.Equal(t, board.StartFEN, pos.FEN())
}

func TestContextCancelStopsSearch(t *testing.T) {
	eng := NewEngine()
	updates, cancelSub := eng.Subscribe(1)
	defer cancelSub()

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, eng.Start(ctx, board.NewPosition(), MaxDepth))
	<-updates
	cancel()

	res := eng.Wait()
	assert.True(t, res.Stopped)
	assert.Less(t, res.Depth, MaxDepth)
	assert.NotEqual(t, board.NoMove, res.Move)
}

func TestSubscribeReceivesRootUpdates(t *testing.T) {
	eng := NewEngine()
	updates, cancel := eng.Subscribe(256)

	pos := board.NewPosition()
	res, err := eng.Search(context.Background(), pos, 3)
	require.NoError(t, err)
	cancel()

	var got []PVUpdate
	for u := range updates {
		got = append(got, u)
	}
	require.NotEmpty(t, got)

	last := got[len(got)-1]
	assert.Equal(t, 3, last.Depth)
	assert.Equal(t, res.Move, last.Line[0])
	assert.Equal(t, pos.Hash(), last.Hash)
	for _, u := range got {
		assert.Len(t, u.Text, len(u.Line))
		assert.GreaterOrEqual(t, u.Depth, 1)
	}

	// Cancelling twice is harmless.
	cancel()
}

func TestWaitWithoutSearch(t *testing.T) {
	assert.Equal(t, Result{}, NewEngine().Wait())
}

func TestScoreString(t *testing.T) {
	assert.Equal(t, "0.00", ScoreString(0))
	assert.Equal(t, "1.05", ScoreString(105))
	assert.Equal(t, "-0.30", ScoreString(-30))
	assert.Equal(t, "Mate in 2", ScoreString(MateScore-3))
	assert.Equal(t, "Mated in 1", ScoreString(-MateScore+2))
}
