// Package progress implements the per-job progress tracker (C3): a
// plain value updated by the executor under the job's guard.
package progress

import (
	"time"

	"github.com/codelintio/codelint/pkg/issue"
)

// Tracker accumulates unit-completion timing and issue tallies for a
// single job. It is not itself safe for concurrent use — callers hold
// the owning job's guard around every method call, per the shared-
// resource policy.
type Tracker struct {
	totalUnits     int
	completedUnits int
	currentFile    string
	startedAt      time.Time
	unitStartedAt  time.Time
	totalUnitTime  time.Duration
	tally          issue.Tally
	now            func() time.Time
}

// New creates a tracker whose clock starts at `start`. Passing the
// creation time keeps ElapsedSeconds meaningful even before the first
// unit begins.
func New(start time.Time) *Tracker {
	return &Tracker{startedAt: start, now: time.Now}
}

// NewWithClock is New with an injectable clock, for deterministic tests.
func NewWithClock(start time.Time, clock func() time.Time) *Tracker {
	return &Tracker{startedAt: start, now: clock}
}

// SetTotalUnits fixes total_units at plan-commit time (invariant 2).
func (t *Tracker) SetTotalUnits(n int) {
	t.totalUnits = n
}

// RecordUnitStart sets the current-file label and starts the per-unit
// timer.
func (t *Tracker) RecordUnitStart(file string) {
	t.currentFile = file
	t.unitStartedAt = t.clock()
}

// RecordUnitFinish increments completed_units, folds issues into the
// live tally, and updates the rolling average per-unit time.
func (t *Tracker) RecordUnitFinish(issues []issue.Issue) {
	if !t.unitStartedAt.IsZero() {
		t.totalUnitTime += t.clock().Sub(t.unitStartedAt)
	}
	t.completedUnits++
	for _, iss := range issues {
		t.tally.Add(iss.Severity)
	}
}

// Snapshot returns a stable copy of the current progress. Safe to call
// alongside RecordUnitStart/RecordUnitFinish as long as the caller holds
// the same guard those calls are made under.
type Snapshot struct {
	TotalUnits       int
	CompletedUnits   int
	CurrentFile      string
	ElapsedSeconds   float64
	RemainingSeconds *float64
	Tally            issue.Tally
	UpdatedAt        time.Time
}

func (t *Tracker) Snapshot() Snapshot {
	now := t.clock()
	snap := Snapshot{
		TotalUnits:     t.totalUnits,
		CompletedUnits: t.completedUnits,
		CurrentFile:    t.currentFile,
		ElapsedSeconds: now.Sub(t.startedAt).Seconds(),
		Tally:          t.tally,
		UpdatedAt:      now,
	}
	if remaining, ok := t.estimateRemaining(); ok {
		snap.RemainingSeconds = &remaining
	}
	return snap
}

// estimateRemaining computes average_unit_time * (total - completed),
// clamped at zero. Undefined (ok=false) until at least one unit has
// completed.
func (t *Tracker) estimateRemaining() (float64, bool) {
	if t.completedUnits == 0 {
		return 0, false
	}
	avg := t.totalUnitTime.Seconds() / float64(t.completedUnits)
	remainingUnits := t.totalUnits - t.completedUnits
	if remainingUnits < 0 {
		remainingUnits = 0
	}
	remaining := avg * float64(remainingUnits)
	if remaining < 0 {
		remaining = 0
	}
	return remaining, true
}

func (t *Tracker) clock() time.Time {
	if t.now != nil {
		return t.now()
	}
	return time.Now()
}
