package jobspec

import (
	"strconv"
	"sync"
	"time"

	"github.com/codelintio/codelint/pkg/issue"
	"github.com/codelintio/codelint/pkg/progress"
)

// Input describes what a job was asked to analyze.
type Input struct {
	ProjectRoot string
	Files       []string // project-relative, submission order preserved
	Analyzers   []string // enabled analyzer names
	Categories  []issue.Category
}

// Warning is a non-fatal, driver- or plan-level fault recorded on a job.
// Warnings never change job state (see spec §7 driver_warning).
type Warning struct {
	Analyzer string    `json:"analyzer,omitempty"`
	File     string    `json:"file,omitempty"`
	Message  string    `json:"message"`
	At       time.Time `json:"at"`
}

// ProgressSnapshot is a torn-free copy of a job's observable progress,
// safe to hand to a caller outside the job's guard.
type ProgressSnapshot struct {
	TotalUnits       int         `json:"total_units"`
	CompletedUnits   int         `json:"completed_units"`
	CurrentFile      string      `json:"current_file,omitempty"`
	ElapsedSeconds   float64     `json:"elapsed_seconds"`
	RemainingSeconds *float64    `json:"estimated_remaining_seconds"`
	Tally            issue.Tally `json:"tally"`
	UpdatedAt        time.Time   `json:"updated_at"`
}

// Fraction returns completed/total in [0,1], or 0 when there is no
// planned work.
func (p ProgressSnapshot) Fraction() float64 {
	if p.TotalUnits <= 0 {
		return 0
	}
	return float64(p.CompletedUnits) / float64(p.TotalUnits)
}

func fromTrackerSnapshot(s progress.Snapshot) ProgressSnapshot {
	return ProgressSnapshot{
		TotalUnits:       s.TotalUnits,
		CompletedUnits:   s.CompletedUnits,
		CurrentFile:      s.CurrentFile,
		ElapsedSeconds:   s.ElapsedSeconds,
		RemainingSeconds: s.RemainingSeconds,
		Tally:            s.Tally,
		UpdatedAt:        s.UpdatedAt,
	}
}

// Job is the registry's unit of work. All mutation happens under Guard,
// which is also the mutex covering State, the progress tracker, Issues
// and Warnings (spec §5 "shared-resource policy").
type Job struct {
	Guard sync.Mutex

	ID    string
	Input Input

	State State

	CreatedAt  time.Time
	StartedAt  *time.Time
	FinishedAt *time.Time

	Tracker *progress.Tracker

	// mutated only under Guard by the owning executor
	issues   []issue.Issue
	warnings []Warning
	nextSeq  int

	FailureMessage string

	Control Control
}

// NewJob constructs a pending job. The caller (registry) assigns ID.
func NewJob(id string, input Input, now time.Time) *Job {
	return &Job{
		ID:        id,
		Input:     input,
		State:     StatePending,
		CreatedAt: now,
		Tracker:   progress.New(now),
	}
}

// Transition moves the job to `to`, returning a *TransitionError if the
// edge is illegal. Caller must hold Guard.
func (j *Job) Transition(to State) error {
	if !CanTransition(j.State, to) {
		return &TransitionError{From: j.State, To: to}
	}
	j.State = to
	return nil
}

// SetTotalUnits fixes total_units at plan-commit time. Caller must hold
// Guard. Per invariant 2, total_units is thereafter monotonic only by
// completed_units.
func (j *Job) SetTotalUnits(n int) {
	j.Tracker.SetTotalUnits(n)
}

// Snapshot returns a copy of the job's progress. Caller must hold Guard.
func (j *Job) Snapshot() ProgressSnapshot {
	return fromTrackerSnapshot(j.Tracker.Snapshot())
}

// Issues returns a copy of the accumulated issue list. Caller must hold
// Guard.
func (j *Job) Issues() []issue.Issue {
	out := make([]issue.Issue, len(j.issues))
	copy(out, j.issues)
	return out
}

// Warnings returns a copy of the accumulated warnings. Caller must hold
// Guard.
func (j *Job) Warnings() []Warning {
	out := make([]Warning, len(j.warnings))
	copy(out, j.warnings)
	return out
}

// AppendIssue assigns the next sequential id within the job and appends
// the issue. Caller must hold Guard. It does not fold the issue into the
// live tally — that happens per work unit via RecordUnitFinish so the
// tally and completed_units advance together.
func (j *Job) AppendIssue(iss issue.Issue) issue.Issue {
	j.nextSeq++
	iss.ID = idFor(j.ID, j.nextSeq)
	j.issues = append(j.issues, iss)
	return iss
}

// AppendWarning records a non-fatal fault. Caller must hold Guard.
func (j *Job) AppendWarning(w Warning) {
	j.warnings = append(j.warnings, w)
}

func idFor(jobID string, seq int) string {
	short := jobID
	if len(short) > 8 {
		short = short[:8]
	}
	return short + "-" + strconv.Itoa(seq)
}
