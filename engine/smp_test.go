package engine

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPlayParallelFindsMove(t *testing.T) {
	pos, err := PositionFromFEN(FENStartPos)
	require.NoError(t, err)

	tc := NewFixedDepthTimeControl(pos, 3)
	tc.Start(false)

	pv := PlayParallel(pos, tc, nil, Options{}, 4)
	require.NotEmpty(t, pv)
}

func TestVoteBestMovePrefersHigherWeight(t *testing.T) {
	pos, err := PositionFromFEN(FENStartPos)
	require.NoError(t, err)

	var moves []Move
	pos.GenerateMoves(All, &moves)
	require.True(t, len(moves) >= 2)
	a, b := moves[0], moves[1]

	// b is proposed by two threads at depth 6-7 with good scores; a is a
	// single deep outlier but its weight (depth alone, score==worst) loses
	// to b's summed weight.
	results := []threadResult{
		{pv: []Move{a}, depth: 9, score: 0},
		{pv: []Move{b}, depth: 7, score: 50},
		{pv: []Move{b}, depth: 6, score: 50},
	}
	got := voteBestMove(results)
	require.Equal(t, b, got[0])

	// Equal total weight (6 each): tie-break picks the deeper thread.
	results = []threadResult{
		{pv: []Move{a}, depth: 5, score: 0},
		{pv: []Move{b}, depth: 6, score: -10},
	}
	got = voteBestMove(results)
	require.Equal(t, b, got[0])
}

func TestVoteBestMoveEmptyResults(t *testing.T) {
	require.Nil(t, voteBestMove(nil))
	require.Nil(t, voteBestMove([]threadResult{{pv: nil}}))
}
