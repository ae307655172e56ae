package engine

import (
	"context"
	"time"
)

// TimeManager handles the time budget of one decision.
type TimeManager struct {
	optimumTime time.Duration // Don't start an iteration after this
	maximumTime time.Duration // Hard stop
	startTime   time.Time     // When search started
}

// NewTimeManager creates a new time manager.
func NewTimeManager() *TimeManager {
	return &TimeManager{}
}

// Init starts the clock. A zero moveTime means no limit.
func (tm *TimeManager) Init(moveTime time.Duration) {
	tm.startTime = time.Now()
	if moveTime <= 0 {
		tm.optimumTime = 0
		tm.maximumTime = 0
		return
	}
	tm.maximumTime = moveTime
	// Iterations grow by roughly the branching factor, so one started past
	// half the budget rarely finishes.
	tm.optimumTime = moveTime / 2
}

// Context derives a context that expires at the maximum time.
func (tm *TimeManager) Context(parent context.Context) (context.Context, context.CancelFunc) {
	if tm.maximumTime <= 0 {
		return context.WithCancel(parent)
	}
	return context.WithDeadline(parent, tm.startTime.Add(tm.maximumTime))
}

// Elapsed returns the time elapsed since search started.
func (tm *TimeManager) Elapsed() time.Duration {
	return time.Since(tm.startTime)
}

// Limited reports whether a time budget is set.
func (tm *TimeManager) Limited() bool {
	return tm.maximumTime > 0
}

// PastOptimum returns true if no further iteration should be started.
func (tm *TimeManager) PastOptimum() bool {
	return tm.Limited() && tm.Elapsed() >= tm.optimumTime
}
