// Copyright 2014-2016 The Zurichess Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package engine

import (
	"strings"
	"testing"
)

func TestGame(t *testing.T) {
	pos, _ := PositionFromFEN(FENStartPos)
	eng := NewEngine(pos, nil, Options{})
	for i := 0; i < 1; i++ {
		tc := NewFixedDepthTimeControl(pos, 3)
		tc.Start(false)
		pv := eng.Play(tc)
		eng.DoMove(pv[0])
	}
}

func TestMateIn1(t *testing.T) {
	for i, d := range mateIn1 {
		pos, _ := PositionFromFEN(d.fen)
		bm := pos.UCIToMove(d.bm)

		tc := NewFixedDepthTimeControl(pos, 2)
		tc.Start(false)
		eng := NewEngine(pos, nil, Options{})
		pv := eng.Play(tc)

		if len(pv) != 1 {
			t.Errorf("#%d Expected exactly one move, got %d", i, len(pv))
			t.Errorf("position is %v", pos)
			continue
		}

		if pv[0] != bm {
			t.Errorf("#%d expected move %v, got %v", i, bm, pv[0])
			t.Errorf("position is %v", pos)
			continue
		}
	}
}

// TestScore checks the score is the same whether we reach a position by
// playing moves or by setting it directly.
func TestScore(t *testing.T) {
	for _, game := range testGames {
		pos, _ := PositionFromFEN(FENStartPos)
		dynamic := NewEngine(pos, nil, Options{})
		static := NewEngine(pos, nil, Options{})

		moves := strings.Fields(game)
		for _, move := range moves {
			m := pos.UCIToMove(move)
			dynamic.DoMove(m)
			fromFEN, _ := PositionFromFEN(pos.String())
			static.SetPosition(fromFEN)
			if dynamic.Score() != static.Score() {
				t.Fatalf("expected static score %v, got dynamic score %v", static.Score(), dynamic.Score())
			}
		}
	}
}

func TestEndGamePosition(t *testing.T) {
	pos, _ := PositionFromFEN("6k1/5p1p/4p1p1/3p4/5P1P/8/3r2q1/6K1 w - - 2 55")
	tc := NewFixedDepthTimeControl(pos, 3)
	tc.Start(false)
	eng := NewEngine(pos, nil, Options{})
	pv := eng.Play(tc)
	if pv != nil {
		t.Errorf("got %d moves (nonnil pv), expected nil pv", len(pv))
	}
}

// TestLMRReductionFormula checks the exact base/+1/+1/+1, capped-at-3-and-
// depth-1 late move reduction formula.
func TestLMRReductionFormula(t *testing.T) {
	cases := []struct {
		depth, numMoves int32
		pvNode          bool
		want            int32
	}{
		{depth: 4, numMoves: 1, pvNode: true, want: 1},   // base only
		{depth: 4, numMoves: 7, pvNode: true, want: 2},   // +1 numMoves>6
		{depth: 7, numMoves: 1, pvNode: true, want: 2},   // +1 depth>6
		{depth: 4, numMoves: 1, pvNode: false, want: 2},  // +1 non-PV
		{depth: 7, numMoves: 7, pvNode: false, want: 3},  // all three bonuses, capped at 3
		{depth: 3, numMoves: 7, pvNode: false, want: 2},  // capped at depth-1
	}
	for i, c := range cases {
		got := lmrReduction(c.depth, c.numMoves, c.pvNode)
		if got != c.want {
			t.Errorf("#%d lmrReduction(%d, %d, %v) = %d, want %d", i, c.depth, c.numMoves, c.pvNode, got, c.want)
		}
	}
}

// TestNullMoveReductionFormula checks the 3(+1 depth>6)(+1 static-β>200)
// null-move reduction formula, capped by nullMoveMaxReduction and depth-1.
func TestNullMoveReductionFormula(t *testing.T) {
	cases := []struct {
		depth            int32
		haveStatic       bool
		static, β        int32
		want             int32
	}{
		{depth: 4, haveStatic: false, want: 3},
		{depth: 7, haveStatic: false, want: 4},
		{depth: 4, haveStatic: true, static: 300, β: 0, want: 3}, // +1 static-β>200, then capped by depth-1
		{depth: 7, haveStatic: true, static: 300, β: 0, want: 5},
		{depth: 4, haveStatic: true, static: 100, β: 0, want: 3}, // margin not cleared
		{depth: 2, haveStatic: false, want: 1},                  // capped by depth-1
	}
	for i, c := range cases {
		got := nullMoveReductionFor(c.depth, c.haveStatic, c.static, c.β)
		if got != c.want {
			t.Errorf("#%d nullMoveReductionFor(%d, %v, %d, %d) = %d, want %d",
				i, c.depth, c.haveStatic, c.static, c.β, got, c.want)
		}
	}
}

// TestAspirationWindowDoubles checks that the initial aspiration window is
// 25, that a window built around a bogus estimate fails low in searchTree,
// and that the widening step search uses after a fail (δ += δ) doubles δ.
// It does not call search itself.
func TestAspirationWindowDoubles(t *testing.T) {
	if initialAspirationWindow != 25 {
		t.Errorf("expected initial aspiration window 25, got %d", initialAspirationWindow)
	}

	pos, _ := PositionFromFEN(FENStartPos)
	eng := NewEngine(pos, nil, Options{})
	tc := NewFixedDepthTimeControl(pos, 4)
	tc.Start(false)
	eng.timeControl = tc
	eng.rootPly = pos.Ply
	eng.stack.Reset(pos)

	// A wildly wrong estimate forces at least one aspiration failure; the
	// widened window after a fail must be exactly double the previous one.
	estimated := int32(MateScore)
	γ, δ := estimated, int32(initialAspirationWindow)
	α, β := max(γ-δ, -InfinityScore), min(γ+δ, InfinityScore)

	score := eng.searchTree(α, β, 4)
	if score > α {
		t.Fatalf("expected the bogus estimate to fail low, got score %d with α=%d", score, α)
	}

	prevδ := δ
	α = max(α-δ, -InfinityScore)
	δ += δ
	if δ != 2*prevδ {
		t.Errorf("expected δ to double from %d, got %d", prevδ, δ)
	}
}

// TestQuiescenceSearchesEvasionsInCheck checks that a checkmate reached
// exactly at the quiescence horizon is reported as a mate score rather
// than a stand-pat static eval: searchTree's own mate detection only runs
// for its move loop at depth > 0, so a mate found at depth <= 0 depends
// entirely on searchQuiescence noticing there are no legal evasions.
func TestQuiescenceSearchesEvasionsInCheck(t *testing.T) {
	// Fool's mate: 1. f3 e5 2. g4 Qh4#. White to move, in check, no legal
	// replies — a stand-pat bug would return an ordinary static eval
	// instead of a mate score, since it never even computes inCheck before
	// standing pat and only generates captures (of which there are none).
	pos, err := PositionFromFEN("rnb1kbnr/pppp1ppp/8/4p3/6Pq/5P2/PPPPP2P/RNBQKBNR w KQkq - 1 3")
	if err != nil {
		t.Fatal(err)
	}
	eng := NewEngine(pos, nil, Options{})
	eng.rootPly = pos.Ply
	eng.stack.Reset(pos)
	if !pos.IsChecked(pos.Us()) {
		t.Fatal("expected white to be in check")
	}

	score := eng.searchQuiescence(-InfinityScore, InfinityScore)
	if score > KnownLossScore {
		t.Errorf("expected a mate score for checkmate at the quiescence horizon, got %d", score)
	}
}

// TestReverseFutilityPruning checks that a position whose static eval
// already clears β by the depth-scaled margin is pruned at shallow depth.
func TestReverseFutilityPruning(t *testing.T) {
	// White is up a queen with no compensation for black; at depth 1 the
	// static eval should clear any reasonable β by over 80*depth.
	pos, err := PositionFromFEN("4k3/8/8/8/8/8/8/3QK3 w - - 0 1")
	if err != nil {
		t.Fatal(err)
	}
	eng := NewEngine(pos, nil, Options{})
	tc := NewFixedDepthTimeControl(pos, 1)
	tc.Start(false)
	eng.timeControl = tc
	eng.rootPly = pos.Ply
	eng.stack.Reset(pos)

	β := int32(50)
	score := eng.searchTree(β-1, β, 1)
	if score < β {
		t.Errorf("expected reverse futility pruning to return a score >= β (%d), got %d", β, score)
	}
}

// TestRazoring checks that a hopeless position at shallow depth is pruned
// by a quiescence-backed razoring return rather than a full search.
func TestRazoring(t *testing.T) {
	// White to move is down a queen with nothing to show for it; at depth 1
	// the static eval should fall well short of any reasonable α.
	pos, err := PositionFromFEN("3qk3/8/8/8/8/8/8/4K3 w - - 0 1")
	if err != nil {
		t.Fatal(err)
	}
	eng := NewEngine(pos, nil, Options{})
	tc := NewFixedDepthTimeControl(pos, 1)
	tc.Start(false)
	eng.timeControl = tc
	eng.rootPly = pos.Ply
	eng.stack.Reset(pos)

	α := int32(50)
	score := eng.searchTree(α, α+1, 1)
	if score > α {
		t.Errorf("expected razoring to confirm a fail low (<=%d), got %d", α, score)
	}
}

func BenchmarkGame(b *testing.B) {
	for i := 0; i < b.N; i++ {
		pos, _ := PositionFromFEN(FENStartPos)
		eng := NewEngine(pos, nil, Options{})
		for j := 0; j < 20; j++ {
			tc := NewFixedDepthTimeControl(pos, 4)
			tc.Start(false)
			pv := eng.Play(tc)
			eng.DoMove(pv[0])
		}
	}
}
