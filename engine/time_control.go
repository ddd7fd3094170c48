package engine

import (
	"sync"
	"time"
)

const (
	// movesToGoOpening/Middlegame/Endgame implement the phase heuristic:
	// fullmove < openingLimit uses movesToGoOpening, fullmove < middlegameLimit
	// uses movesToGoMiddlegame, otherwise movesToGoEndgame.
	movesToGoOpening    = 30
	movesToGoMiddlegame = 24
	movesToGoEndgame    = 18
	openingLimit        = 20
	middlegameLimit     = 40

	// jitterReserveFraction and jitterReserveCap bound the slice of
	// remaining time held back against clock jitter: min(cap, fraction*remaining).
	jitterReserveFraction = 0.05
	jitterReserveCap      = 250 * time.Millisecond

	// incrementSpendFraction is how much of the increment is added to
	// each move's time budget on top of the even split of remaining time.
	incrementSpendFraction = 0.75

	// usableFraction caps how much of the (jitter-reduced) remaining time
	// a single move may spend. It tightens when little time is left.
	usableFractionDefault = 0.125
	usableFractionTight   = 0.056
	usableFractionCutoff  = 2 * time.Second

	// movetimeSoftFraction is the soft/hard split for a fixed `go movetime`.
	movetimeSoftFraction = 0.9

	// hardOverheadFraction and hardOverheadFloor compute the hard deadline
	// from the soft one: hard = soft + max(hardOverheadFloor, soft*hardOverheadFraction).
	hardOverheadFraction = 0.5
	hardOverheadFloor    = 25 * time.Millisecond
)

// atomicFlag is an atomic bool that can only be set.
type atomicFlag struct {
	lock sync.Mutex
	flag bool
}

func (af *atomicFlag) set() {
	af.lock.Lock()
	af.flag = true
	af.lock.Unlock()
}

func (af *atomicFlag) get() bool {
	af.lock.Lock()
	tmp := af.flag
	af.lock.Unlock()
	return tmp
}

// TimeControl turns a `go` command's clock/increment/movestogo/movetime
// arguments into a soft deadline (stop starting new iterations) and a hard
// deadline (abort mid-iteration), per the engine's time management.
type TimeControl struct {
	WTime, WInc time.Duration // time and increment for white.
	BTime, BInc time.Duration // time and increment for black
	Depth       int           // maximum depth search (including)
	MovesToGo   int           // number of remaining moves, 0 if unknown
	MoveTime    time.Duration // if > 0, `go movetime` was used: a fixed budget, no clock

	fullMove   int
	sideToMove Color
	stopped    atomicFlag // true to stop the search
	ponderhit  atomicFlag // true if ponder was successful

	softTime       time.Duration
	softDeadline   time.Time
	hardDeadline   time.Time
	ponderTime     time.Duration
	ponderDeadline time.Time
}

// NewTimeControl returns a new time control with no time limit,
// no depth limit, zero time increment and zero moves to go.
func NewTimeControl(pos *Position) *TimeControl {
	return &TimeControl{
		WTime:      time.Duration(1<<62 - 1),
		WInc:       0,
		BTime:      time.Duration(1<<62 - 1),
		BInc:       0,
		Depth:      64,
		MovesToGo:  0,
		fullMove:   pos.FullMoveNumber,
		sideToMove: pos.SideToMove,
	}
}

func NewFixedDepthTimeControl(pos *Position, depth int) *TimeControl {
	tc := NewTimeControl(pos)
	tc.Depth = depth
	tc.MovesToGo = 1
	return tc
}

func NewDeadlineTimeControl(pos *Position, deadline time.Duration) *TimeControl {
	tc := NewTimeControl(pos)
	tc.MoveTime = deadline
	return tc
}

// movesToGoEstimate returns the GUI-provided moves-to-go if any, otherwise
// the fullmove-based phase heuristic: 30/24/18 moves left for the
// opening/middlegame/endgame.
func (tc *TimeControl) movesToGoEstimate() int {
	if tc.MovesToGo > 0 {
		return tc.MovesToGo
	}
	switch {
	case tc.fullMove < openingLimit:
		return movesToGoOpening
	case tc.fullMove < middlegameLimit:
		return movesToGoMiddlegame
	default:
		return movesToGoEndgame
	}
}

// allot computes the soft time budget for one move given the remaining
// time t and increment i on the clock being spent.
func allot(t, i time.Duration, movesToGo int) time.Duration {
	jitter := time.Duration(float64(t) * jitterReserveFraction)
	if jitter > jitterReserveCap {
		jitter = jitterReserveCap
	}
	usable := t - jitter
	if usable < 0 {
		usable = 0
	}

	spend := usable/time.Duration(movesToGo+3) + time.Duration(float64(i)*incrementSpendFraction)

	fraction := usableFractionDefault
	if usable < usableFractionCutoff {
		fraction = usableFractionTight
	}
	if ceiling := time.Duration(float64(usable) * fraction); spend > ceiling {
		spend = ceiling
	}
	if spend > t {
		spend = t
	}
	return spend
}

// Start starts the timer. Should start as soon as possible to set the
// correct time.
func (tc *TimeControl) Start(ponder bool) {
	var otime, oinc time.Duration // our time, inc
	var ttime, tinc time.Duration // their time, inc
	if tc.sideToMove == White {
		otime, oinc = tc.WTime, tc.WInc
		ttime, tinc = tc.BTime, tc.BInc
	} else {
		otime, oinc = tc.BTime, tc.BInc
		ttime, tinc = tc.WTime, tc.WInc
	}

	tc.stopped = atomicFlag{}
	tc.ponderhit = atomicFlag{flag: !ponder}

	if tc.MoveTime > 0 {
		tc.softTime = time.Duration(float64(tc.MoveTime) * movetimeSoftFraction)
	} else {
		tc.softTime = allot(otime, oinc, tc.movesToGoEstimate())
	}

	hardOverhead := time.Duration(float64(tc.softTime) * hardOverheadFraction)
	if hardOverhead < hardOverheadFloor {
		hardOverhead = hardOverheadFloor
	}
	hardTime := tc.softTime + hardOverhead
	if tc.MoveTime > 0 && hardTime > tc.MoveTime {
		hardTime = tc.MoveTime
	}

	// Pondering stops based on other's time plus some of our time.
	tc.ponderTime = allot(ttime, tinc, tc.movesToGoEstimate()) + tc.softTime/2

	now := time.Now()
	tc.ponderDeadline = now.Add(tc.ponderTime)
	tc.softDeadline = now.Add(tc.softTime)
	tc.hardDeadline = now.Add(hardTime)
}

// NextDepth returns true if search can start at depth. Only completed
// iterations return a best move; NextDepth gates starting a new one on the
// soft deadline (or, while still pondering, the ponder deadline) so an
// iteration already running is never interrupted here — that's Stopped's job.
func (tc *TimeControl) NextDepth(depth int) bool {
	// If maximum search is not reached then at least some plies is searched.
	// This avoids an issue when under the clock the engine does not return
	// any move because it stops at depth 0. We also want to stop the search
	// early for `go depth 0`.
	if depth > tc.Depth {
		return false
	}
	if depth <= 2 {
		return true
	}
	if tc.stopped.get() {
		return false
	}
	if !tc.ponderhit.get() {
		return time.Now().Before(tc.ponderDeadline)
	}
	return time.Now().Before(tc.softDeadline)
}

// PonderHit switches to our own time control.
func (tc *TimeControl) PonderHit() {
	now := time.Now()
	tc.softDeadline = now.Add(tc.softTime)
	overhead := tc.softTime / 2
	if overhead < hardOverheadFloor {
		overhead = hardOverheadFloor
	}
	tc.hardDeadline = now.Add(tc.softTime + overhead)
	tc.ponderhit.set()
}

// Aborted returns true if pondering was aborted.
func (tc *TimeControl) Aborted() bool {
	// tc.ponderhit.get() is true if the engine is currently thinking on its own time.
	return !tc.ponderhit.get() && tc.stopped.get()
}

// Stop marks the search as stopped.
// The result of the search is going to be used.
func (tc *TimeControl) Stop() {
	tc.stopped.set()
}

// Stopped returns true if the search has been aborted mid-iteration. While
// still pondering it polls the single ponder deadline, matching the way
// NextDepth treats that phase; once on our own clock it polls the hard
// deadline, not the soft one, so a running iteration is allowed past the
// soft budget up to the hard one.
func (tc *TimeControl) Stopped() bool {
	if tc.stopped.get() {
		return true
	}
	if !tc.ponderhit.get() {
		if time.Now().After(tc.ponderDeadline) {
			tc.stopped.set()
			return true
		}
		return false
	}
	if time.Now().After(tc.hardDeadline) {
		tc.stopped.set()
		return true
	}
	return false
}
