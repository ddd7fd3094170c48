// smp.go implements Lazy SMP: several search threads clone the current
// position, share the transposition table, and search independently under
// a single stop flag. The main thread's own iterative deepening determines
// when the search ends; helpers are joined afterwards and contribute only
// to move voting and node counts.

package engine

import (
	"math"
	"sync"

	"golang.org/x/sync/errgroup"
)

// threadResult is one search thread's contribution to Lazy SMP voting.
type threadResult struct {
	pv    []Move
	depth int32
	score int32
	nodes uint64
}

// PlayParallel runs a Lazy SMP search with the given number of threads and
// returns the voted-best principal variation. threads <= 1 behaves exactly
// like a single eng.Play(tc) call. tc must already be started; PlayParallel
// stops it once the main thread's iterative deepening completes and waits
// for every helper to notice.
func PlayParallel(pos *Position, tc *TimeControl, log Logger, options Options, threads int) []Move {
	if threads < 1 {
		threads = 1
	}
	GlobalHashTable.NextAge()

	main := NewEngine(pos.Clone(), log, options)
	if threads == 1 {
		return main.Play(tc)
	}

	results := make([]threadResult, threads)
	var mu sync.Mutex
	var g errgroup.Group

	for i := 1; i < threads; i++ {
		i := i
		g.Go(func() error {
			helper := NewEngine(pos.Clone(), &NulLogger{}, options)
			pv := helper.Play(tc)
			mu.Lock()
			results[i] = threadResult{pv: pv, depth: helper.Stats.Depth, score: helper.Stats.Score, nodes: helper.Stats.Nodes}
			mu.Unlock()
			return nil
		})
	}

	mainPV := main.Play(tc)
	tc.Stop()
	g.Wait()

	mu.Lock()
	results[0] = threadResult{pv: mainPV, depth: main.Stats.Depth, score: main.Stats.Score, nodes: main.Stats.Nodes}
	mu.Unlock()

	return voteBestMove(results)
}

// voteBestMove sums, per unique first move, the vote weight
// depth + (score-worst_score)/10 across every thread that proposed it, and
// returns the pv of the thread reporting the highest-voted move. Ties break
// by maximum depth, then maximum score, matching the engine's Lazy SMP
// best-move vote.
func voteBestMove(results []threadResult) []Move {
	nonEmpty := results[:0:0]
	for _, r := range results {
		if len(r.pv) > 0 {
			nonEmpty = append(nonEmpty, r)
		}
	}
	if len(nonEmpty) == 0 {
		return nil
	}

	worst := nonEmpty[0].score
	for _, r := range nonEmpty[1:] {
		if r.score < worst {
			worst = r.score
		}
	}

	weight := make(map[Move]int32)
	for _, r := range nonEmpty {
		weight[r.pv[0]] += r.depth + (r.score-worst)/10
	}

	var best threadResult
	bestWeight := int32(math.MinInt32)
	for _, r := range nonEmpty {
		w := weight[r.pv[0]]
		switch {
		case w > bestWeight:
			best, bestWeight = r, w
		case w == bestWeight && r.depth > best.depth:
			best, bestWeight = r, w
		case w == bestWeight && r.depth == best.depth && r.score > best.score:
			best, bestWeight = r, w
		}
	}
	return best.pv
}
