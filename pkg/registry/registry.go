// Package registry implements the job registry (C5): a process-wide map
// from job id to job record, with create/status/pause/resume/cancel/
// result operations and a bounded-retention eviction policy.
package registry

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/codelintio/codelint/pkg/analyzer"
	"github.com/codelintio/codelint/pkg/executor"
	"github.com/codelintio/codelint/pkg/issue"
	"github.com/codelintio/codelint/pkg/jobspec"
)

// DefaultMaxRetainedTerminalJobs bounds how many finished jobs the
// registry keeps before evicting the oldest — an LRU over terminal
// jobs only, so a long-running job is never evicted out from under its
// caller. Zero disables eviction.
const DefaultMaxRetainedTerminalJobs = 500

// Registry owns every job created in this process. It is safe for
// concurrent use; the map guard is never held while calling into
// executor code (spec §4.5 concurrency).
type Registry struct {
	mu   sync.Mutex
	jobs map[string]*jobspec.Job

	// terminalLRU tracks terminal jobs only; eviction removes the entry
	// from jobs too. A running/paused job is never placed in it.
	terminalLRU *lru.Cache[string, struct{}]

	drivers *analyzer.Set
	execCfg executor.Config

	newID func() string
	now   func() time.Time
}

// New builds a registry backed by the given driver set. maxRetained <= 0
// disables terminal-job eviction.
func New(drivers *analyzer.Set, execCfg executor.Config, maxRetained int) *Registry {
	r := &Registry{
		jobs:    make(map[string]*jobspec.Job),
		drivers: drivers,
		execCfg: execCfg,
		newID:   func() string { return uuid.NewString() },
		now:     time.Now,
	}
	if maxRetained > 0 {
		cache, err := lru.NewWithEvict[string, struct{}](maxRetained, func(jobID string, _ struct{}) {
			r.mu.Lock()
			delete(r.jobs, jobID)
			r.mu.Unlock()
		})
		if err == nil {
			r.terminalLRU = cache
		}
	}
	return r
}

// Create validates input and begins running a new job in the
// background. It returns immediately with the new job's id.
func (r *Registry) Create(ctx context.Context, input jobspec.Input) (string, error) {
	if err := r.validateInput(input); err != nil {
		return "", err
	}

	id := r.newID()
	job := jobspec.NewJob(id, input, r.now())

	r.mu.Lock()
	r.jobs[id] = job
	r.mu.Unlock()

	exec := executor.New(r.drivers, r.execCfg)
	go func() {
		exec.Run(ctx, job)
		r.noteTerminal(job)
	}()

	return id, nil
}

func (r *Registry) validateInput(input jobspec.Input) error {
	if input.ProjectRoot == "" {
		return illegalInput("create", "project root is required")
	}
	info, err := os.Stat(input.ProjectRoot)
	if err != nil || !info.IsDir() {
		return illegalInput("create", "project root %q is not a directory", input.ProjectRoot)
	}
	if len(input.Analyzers) == 0 {
		return illegalInput("create", "at least one analyzer must be enabled")
	}
	if _, err := r.drivers.Resolve(input.Analyzers); err != nil {
		return illegalInput("create", "%v", err)
	}
	if len(input.Categories) == 0 {
		return illegalInput("create", "at least one category must be selected")
	}
	for _, c := range input.Categories {
		if !c.Valid() {
			return illegalInput("create", "unknown category %q", c)
		}
	}
	return nil
}

func (r *Registry) noteTerminal(job *jobspec.Job) {
	if r.terminalLRU == nil {
		return
	}
	r.terminalLRU.Add(job.ID, struct{}{})
}

func (r *Registry) lookup(op, jobID string) (*jobspec.Job, error) {
	r.mu.Lock()
	job, ok := r.jobs[jobID]
	r.mu.Unlock()
	if !ok {
		return nil, notFound(op, jobID)
	}
	return job, nil
}

// StatusView is the shape returned by Status (spec §6 status snapshot).
type StatusView struct {
	JobID      string
	State      jobspec.State
	Progress   jobspec.ProgressSnapshot
	CreatedAt  time.Time
	StartedAt  *time.Time
	FinishedAt *time.Time
	Issues     []issue.Issue // populated only in a terminal state
	Warnings   []jobspec.Warning
	Error      string // populated only when State == failed
}

func (r *Registry) Status(jobID string) (StatusView, error) {
	job, err := r.lookup("status", jobID)
	if err != nil {
		return StatusView{}, err
	}

	job.Guard.Lock()
	defer job.Guard.Unlock()

	view := StatusView{
		JobID:      job.ID,
		State:      job.State,
		Progress:   job.Snapshot(),
		CreatedAt:  job.CreatedAt,
		StartedAt:  job.StartedAt,
		FinishedAt: job.FinishedAt,
		Warnings:   job.Warnings(),
	}
	if job.State.Terminal() {
		view.Issues = job.Issues()
		view.Error = job.FailureMessage
	}
	return view, nil
}

// Pause requests a pause; valid only from running. The job's state
// flips to paused immediately so Status reflects the request right
// away, even though the executor only actually stops dispatching new
// batches at the next batch boundary (spec's pause granularity — see
// DESIGN.md's Open Question decisions).
func (r *Registry) Pause(jobID string) error {
	job, err := r.lookup("pause", jobID)
	if err != nil {
		return err
	}
	job.Guard.Lock()
	err = job.Transition(jobspec.StatePaused)
	job.Guard.Unlock()

	if err != nil {
		return illegalState("pause", "job %s: %v", jobID, err)
	}
	job.Control.RequestPause()
	return nil
}

// Resume clears a pause; valid only from paused.
func (r *Registry) Resume(jobID string) error {
	job, err := r.lookup("resume", jobID)
	if err != nil {
		return err
	}
	job.Guard.Lock()
	err = job.Transition(jobspec.StateRunning)
	job.Guard.Unlock()

	if err != nil {
		return illegalState("resume", "job %s: %v", jobID, err)
	}
	job.Control.Resume()
	return nil
}

// Cancel requests cancellation; valid from any non-terminal state, a
// no-op in a terminal state per spec §4.4 edge cases — but the registry
// still reports illegal_state so callers can distinguish "already done"
// from "successfully canceled."
func (r *Registry) Cancel(jobID string) error {
	job, err := r.lookup("cancel", jobID)
	if err != nil {
		return err
	}
	job.Guard.Lock()
	state := job.State
	job.Guard.Unlock()

	if state.Terminal() {
		return illegalState("cancel", "job %s is already %s", jobID, state)
	}
	job.Control.RequestCancel()
	if state == jobspec.StatePaused {
		job.Control.Resume() // wake the paused dispatch loop so it observes cancel
	}
	return nil
}

// ResultView is the shape returned by Result (spec §6 final result, §9
// warnings-by-analyzer).
type ResultView struct {
	JobID              string
	State              jobspec.State
	Summary            issue.Summary
	Issues             []issue.Issue
	Warnings           []jobspec.Warning
	WarningsByAnalyzer map[string][]jobspec.Warning
	ElapsedSeconds     float64
	CompletedAt        time.Time
	ProjectRoot        string
}

var ErrPending = fmt.Errorf("registry: job is not yet terminal")

// Result returns the full result for a terminal job, or ErrPending if
// the job has not yet finished.
func (r *Registry) Result(jobID string) (ResultView, error) {
	job, err := r.lookup("result", jobID)
	if err != nil {
		return ResultView{}, err
	}

	job.Guard.Lock()
	defer job.Guard.Unlock()

	if !job.State.Terminal() {
		return ResultView{}, ErrPending
	}

	issues := job.Issues()
	warnings := job.Warnings()
	var completedAt time.Time
	if job.FinishedAt != nil {
		completedAt = *job.FinishedAt
	}
	elapsed := job.Snapshot().ElapsedSeconds

	return ResultView{
		JobID:              job.ID,
		State:              job.State,
		Summary:            issue.Summarize(issues),
		Issues:             issues,
		Warnings:           warnings,
		WarningsByAnalyzer: groupWarningsByAnalyzer(warnings),
		ElapsedSeconds:     elapsed,
		CompletedAt:        completedAt,
		ProjectRoot:        job.Input.ProjectRoot,
	}, nil
}

func groupWarningsByAnalyzer(warnings []jobspec.Warning) map[string][]jobspec.Warning {
	if len(warnings) == 0 {
		return nil
	}
	out := make(map[string][]jobspec.Warning)
	for _, w := range warnings {
		out[w.Analyzer] = append(out[w.Analyzer], w)
	}
	return out
}
