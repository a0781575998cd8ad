package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hailam/zebra/internal/board"
)

func TestOrdererScores(t *testing.T) {
	pos := mustFEN(t, "4k3/8/8/3q4/4P3/8/p7/Q3K3 w - - 0 1")
	o := NewOrderer()

	pxq := board.NewMove(board.E4, board.D5, board.Normal)
	qxp := board.NewMove(board.A1, board.A2, board.Normal)
	assert.Equal(t, CaptureBase+505, o.ScoreMove(pos, pxq))
	assert.Equal(t, CaptureBase+101, o.ScoreMove(pos, qxp))

	kf1 := board.NewMove(board.E1, board.F1, board.Normal)
	kf2 := board.NewMove(board.E1, board.F2, board.Normal)
	assert.Zero(t, o.ScoreMove(pos, kf1))

	o.AddKiller(0, board.WhiteKing, kf1)
	assert.Equal(t, KillerScore1, o.ScoreMove(pos, kf1))
	o.AddKiller(0, board.WhiteKing, kf2)
	assert.Equal(t, KillerScore1, o.ScoreMove(pos, kf2))
	assert.Equal(t, KillerScore2, o.ScoreMove(pos, kf1))

	// Re-adding the newest killer must not push out the older one.
	o.AddKiller(0, board.WhiteKing, kf2)
	assert.Equal(t, KillerScore2, o.ScoreMove(pos, kf1))

	// Killers belong to their ply.
	o.SetPly(1)
	assert.Zero(t, o.ScoreMove(pos, kf1))
	o.SetPly(0)

	qb1 := board.NewMove(board.A1, board.B1, board.Normal)
	o.AddHistory(board.WhiteQueen, board.B1, 3)
	o.AddHistory(board.WhiteQueen, board.B1, 2)
	assert.Equal(t, 5, o.ScoreMove(pos, qb1))

	o.Clear()
	assert.Zero(t, o.ScoreMove(pos, qb1))
	assert.Zero(t, o.ScoreMove(pos, kf1))
}

func TestOrdererEnPassantVictimIsPawn(t *testing.T) {
	pos := mustFEN(t, "4k3/8/8/3pP3/8/8/8/4K3 w - d6 0 1")
	ep := board.NewMove(board.E5, board.D6, board.EnPassant)
	assert.Equal(t, CaptureBase+105, NewOrderer().ScoreMove(pos, ep))
}

func TestGeneratedMovesAreScored(t *testing.T) {
	pos := mustFEN(t, "4k3/8/8/3q4/4P3/8/p7/Q3K3 w - - 0 1")
	var ml board.MoveList
	pos.GeneratePseudoLegal(&ml, NewOrderer())

	best := ml.PickBest(0)
	assert.Equal(t, board.NewMove(board.E4, board.D5, board.Normal), best)
	assert.Equal(t, CaptureBase+505, ml.Score(0))
}

func TestSearchScoresRepetitionAsDraw(t *testing.T) {
	// Black is a queen down; stepping back to f8 repeats an earlier position.
	pos := mustFEN(t, "4k3/8/8/8/8/8/8/3QK3 b - - 0 1")
	for _, m := range []board.Move{
		board.NewMove(board.E8, board.F8, board.Normal),
		board.NewMove(board.D1, board.D2, board.Normal),
		board.NewMove(board.F8, board.E8, board.Normal),
		board.NewMove(board.D2, board.D1, board.Normal),
	} {
		pos.MakeMove(m)
	}

	res, err := NewEngine().Search(context.Background(), pos, 2)
	require.NoError(t, err)
	assert.Equal(t, board.NewMove(board.E8, board.F8, board.Normal), res.Move)
	assert.Equal(t, 0, res.Score)
	assert.Equal(t, []board.Move{res.Move}, res.PV)
}
