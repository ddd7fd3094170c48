// Copyright 2014-2016 The Zurichess Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// move_ordering generates and orders moves for an engine.
// Generation is done in several phases and many times
// actual generation or sorting can be eliminated.

package engine

const (
	// Move generation states.

	msHash          = iota // return hash move
	msGenViolent           // generate violent moves
	msReturnViolent        // return violent moves in order
	msGenKiller            // generate killer moves
	msReturnKiller         // return killer moves  in order
	msGenRest              // generate remaining moves
	msReturnRest           // return remaining moves in order
	msReturnBad            // return deferred bad captures in order
	msDone                 // all moves returned
)

const (
	goodCaptureBase = 1 << 20
	badCaptureBase  = -(1 << 20)
	seeScale        = 64
)

// captureScore scores a capture (or promotion) for move ordering: good
// captures (SEE >= 0) and bad captures (SEE < 0) occupy disjoint ranges,
// with SEE, a Most Valuable Victim / Least Valuable Aggressor term, and
// any promotion gain ordering moves within each range.
// https://chessprogramming.wikispaces.com/MVV-LVA
// https://chessprogramming.wikispaces.com/Static+Exchange+Evaluation
func captureScore(pos *Position, m Move) int32 {
	s := see(pos, m)

	base := int32(goodCaptureBase)
	if s < 0 {
		base = badCaptureBase
	}

	victim := int32(m.Capture().Figure())
	attacker := int32(m.Piece().Figure())
	mvvlva := 12*victim - attacker

	score := base + s*seeScale + mvvlva
	if m.MoveType() == Promotion {
		score += seeBonus[m.Promotion().Figure()] - seeBonus[Pawn]
	}
	return score
}

// mvvlva scores m for move ordering: quiet moves by history, captures and
// promotions by SEE-based exchange evaluation.
func mvvlva(pos *Position, h *historyTable, m Move) int32 {
	if m.IsQuiet() {
		// Sort quiet moves by how well they performed.
		// Start at a very low score so it doesn't overlap the capture ranges.
		return -20000 + h.get(m)
	}
	return captureScore(pos, m)
}

// movesStack is a stack of moves.
type moveStack struct {
	moves []Move  // list of moves
	order []int32 // weight of each move for comparison

	// badMoves holds captures with a negative SEE, deferred until after
	// killers and quiets have all been returned.
	badMoves []Move
	badOrder []int32

	kind   int     // violent or all
	state  int     // current generation state
	hash   Move    // hash move
	killer [3]Move // two killer moves and one counter move
}

// stack is a stack of plies (movesStack).
type stack struct {
	position *Position
	moves    []moveStack
	history  *historyTable
	counter  *[1 << 11]Move // counter moves table
}

// Reset clear the stack for a new position.
func (st *stack) Reset(pos *Position) {
	st.position = pos
	st.moves = st.moves[:0]
}

// get returns the moveStack for current ply.
// allocates memory if necessary.
func (st *stack) get() *moveStack {
	for len(st.moves) <= st.position.Ply {
		st.moves = append(st.moves, moveStack{
			moves: make([]Move, 0, 16),
			order: make([]int32, 0, 16),
		})
	}
	return &st.moves[st.position.Ply]
}

// GenerateMoves generates all moves of kind.
func (st *stack) GenerateMoves(kind int, hash Move) {
	ms := st.get()
	ms.moves = ms.moves[:0] // clear the array, but keep the backing memory
	ms.order = ms.order[:0]
	ms.badMoves = ms.badMoves[:0]
	ms.badOrder = ms.badOrder[:0]
	ms.kind = kind
	ms.state = msHash
	ms.hash = hash
	ms.killer[2] = NullMove
	// ms.killer = ms.killer // keep killers
}

// generateMoves generates all moves. Violent moves with a negative SEE are
// set aside in badMoves, to be returned only after killers and quiets.
func (st *stack) generateMoves(kind int) {
	ms := &st.moves[st.position.Ply]
	if len(ms.moves) != 0 || len(ms.order) != 0 {
		panic("expected no moves")
	}
	if ms.kind&kind == 0 {
		return
	}

	var generated []Move
	st.position.GenerateMoves(ms.kind&kind, &generated)
	for _, m := range generated {
		score := mvvlva(st.position, st.history, m)
		if kind == Violent && score < 0 {
			ms.badMoves = append(ms.badMoves, m)
			ms.badOrder = append(ms.badOrder, score)
			continue
		}
		ms.moves = append(ms.moves, m)
		ms.order = append(ms.order, score)
	}
	st.sort()
}

// Gaps from Best Increments for the Average Case of Shellsort, Marcin Ciura.
var shellSortGaps = [...]int{132, 57, 23, 10, 4, 1}

func (st *stack) sort() {
	ms := &st.moves[st.position.Ply]
	sortByOrder(ms.moves, ms.order)
	sortByOrder(ms.badMoves, ms.badOrder)
}

// sortByOrder sorts moves ascending by order, keeping the two in lockstep.
func sortByOrder(moves []Move, order []int32) {
	for _, gap := range shellSortGaps {
		for i := gap; i < len(order); i++ {
			j := i
			to, tm := order[j], moves[j]
			for ; j >= gap && order[j-gap] > to; j -= gap {
				order[j] = order[j-gap]
				moves[j] = moves[j-gap]
			}
			order[j], moves[j] = to, tm
		}
	}
}

// popFrom pops the highest-scored move from moves/order.
func popFrom(moves *[]Move, order *[]int32) Move {
	if len(*moves) == 0 {
		return NullMove
	}
	last := len(*moves) - 1
	move := (*moves)[last]
	*moves = (*moves)[:last]
	*order = (*order)[:last]
	return move
}

// popFront pops the move from the front
func (st *stack) popFront() Move {
	ms := &st.moves[st.position.Ply]
	return popFrom(&ms.moves, &ms.order)
}

// popBad pops the next deferred bad capture.
func (st *stack) popBad() Move {
	ms := &st.moves[st.position.Ply]
	return popFrom(&ms.badMoves, &ms.badOrder)
}

// Pop pops a new move.
// Returns NullMove if there are no moves.
// Moves are generated in several phases:
//	first the hash move,
//      then the violent moves, except captures with a negative score,
//      then the killer moves,
//      then the remaining moves,
//      then the deferred captures with a negative score.
func (st *stack) PopMove() Move {
	ms := &st.moves[st.position.Ply]
	for {
		switch ms.state {
		// Return the hash move.
		case msHash:
			// Return the hash move directly without generating the pseudo legal moves.
			ms.state = msGenViolent
			if st.position.IsPseudoLegal(ms.hash) {
				return ms.hash
			}

		// Return the violent moves.
		case msGenViolent:
			ms.state = msReturnViolent
			st.generateMoves(Violent)

		case msReturnViolent:
			if m := st.popFront(); m == NullMove {
				if ms.kind&Quiet == 0 {
					// Skip killers and quiets if only violent moves are searched,
					// but bad captures are still owed.
					ms.state = msReturnBad
				} else {
					ms.state = msGenKiller
				}
			} else if m != ms.hash && m != NullMove {
				return m
			}

		// Return two killer moves and one counter move.
		case msGenKiller:
			// ms.moves is a stack so moves are pushed in the reversed order.
			ms.state = msReturnKiller
			cm := st.counter[st.counterIndex()]
			if cm != ms.killer[0] && cm != ms.killer[1] && cm != NullMove {
				ms.killer[2] = cm
				ms.moves = append(ms.moves, cm)
				ms.order = append(ms.order, -2)
			}
			if m := ms.killer[1]; m != NullMove {
				ms.moves = append(ms.moves, m)
				ms.order = append(ms.order, -1)
			}
			if m := ms.killer[0]; m != NullMove {
				ms.moves = append(ms.moves, m)
				ms.order = append(ms.order, 0)
			}

		case msReturnKiller:
			if m := st.popFront(); m == NullMove {
				ms.state = msGenRest
			} else if m != ms.hash && st.position.IsPseudoLegal(m) {
				return m
			}

		// Return remaining quiet and tactical moves.
		case msGenRest:
			ms.state = msReturnRest
			st.generateMoves(Quiet)

		case msReturnRest:
			if m := st.popFront(); m == NullMove {
				ms.state = msReturnBad
			} else if m == ms.hash || st.IsKiller(m) {
				break
			} else {
				return m
			}

		// Return captures with a negative SEE, deferred until now.
		case msReturnBad:
			if m := st.popBad(); m == NullMove {
				ms.state = msDone
			} else if m != ms.hash {
				return m
			}

		case msDone:
			// Just in case another move is requested.
			return NullMove
		}
	}
}

// IsKiller returns true if m is a killer move for currenty ply.
func (st *stack) IsKiller(m Move) bool {
	ms := &st.moves[st.position.Ply]
	return m == ms.killer[0] || m == ms.killer[1] || m == ms.killer[2]
}

// SaveKiller saves a killer move, m.
func (st *stack) SaveKiller(m Move) {
	ms := &st.moves[st.position.Ply]
	if !m.IsViolent() {
		st.counter[st.counterIndex()] = m
		// Move the newly found killer first.
		if m != ms.killer[0] {
			ms.killer[1] = ms.killer[0]
			ms.killer[0] = m
		}
	}
}

// counterIndex returns the index of the counter move in the counter table.
// The hash is computed based on the last move.
func (st *stack) counterIndex() int {
	pos := st.position
	last := pos.LastMove()
	key := uint64(last.From()) | uint64(last.To())<<6 | uint64(last.MoveType())<<12
	hash := murmurMix(murmurSeed[pos.Us()], key)
	return int(hash % uint64(len(st.counter)))
}
