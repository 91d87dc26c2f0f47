// Package executor implements the job executor (C4): plans a job's
// work units, dispatches analyzer batches under a concurrency bound,
// honors pause/cancel, and aggregates issues as drivers return.
package executor

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/codelintio/codelint/pkg/analyzer"
	"github.com/codelintio/codelint/pkg/issue"
	"github.com/codelintio/codelint/pkg/jobspec"
)

// DefaultBatchSize bounds files per subprocess invocation to a small
// multiple of the host's CPU count.
func DefaultBatchSize() int {
	n := runtime.NumCPU() * 4
	if n < 8 {
		return 8
	}
	return n
}

// Config tunes one executor's resource usage. Zero values fall back to
// spec-recommended defaults.
type Config struct {
	Concurrency     int           // N: max analyzer subprocesses in flight. Default 3.
	BatchSize       int           // files per batch. Default DefaultBatchSize().
	PerBatchTimeout time.Duration // deadline on the context each Analyze call gets. Default 60s.
	SpawnRate       *rate.Limiter // optional: throttles subprocess spawn bursts.
}

func (c Config) withDefaults() Config {
	if c.Concurrency <= 0 {
		c.Concurrency = 3
	}
	if c.BatchSize <= 0 {
		c.BatchSize = DefaultBatchSize()
	}
	if c.PerBatchTimeout <= 0 {
		c.PerBatchTimeout = 60 * time.Second
	}
	return c
}

// Executor owns the driving of a single job from pending to a terminal
// state. One Executor may run many jobs concurrently; it holds no
// per-job state itself.
type Executor struct {
	Drivers *analyzer.Set
	Config  Config
}

func New(drivers *analyzer.Set, cfg Config) *Executor {
	return &Executor{Drivers: drivers, Config: cfg.withDefaults()}
}

// Run drives job from pending to a terminal state and returns once it
// gets there. It never returns an error: all failure paths are recorded
// on the job itself (state=failed, FailureMessage) per spec §7.
func (e *Executor) Run(ctx context.Context, job *jobspec.Job) {
	job.Guard.Lock()
	if err := job.Transition(jobspec.StateRunning); err != nil {
		job.Guard.Unlock()
		return
	}
	started := time.Now()
	job.StartedAt = &started
	job.Guard.Unlock()

	drivers, err := e.Drivers.Resolve(job.Input.Analyzers)
	if err != nil {
		e.fail(job, fmt.Sprintf("planning failed: %v", err))
		return
	}

	p := buildPlan(job.Input.Files, drivers, e.Config.BatchSize)

	job.Guard.Lock()
	job.SetTotalUnits(p.totalUnits)
	job.Guard.Unlock()

	if len(p.batches) == 0 {
		e.complete(job)
		return
	}

	runCtx, cancelRun := context.WithCancel(ctx)
	defer cancelRun()
	go func() {
		select {
		case <-job.Control.Done():
			cancelRun()
		case <-runCtx.Done():
		}
	}()

	byName := analyzer.ByName(drivers)
	sem := make(chan struct{}, e.Config.Concurrency)
	var wg sync.WaitGroup

	// Batches of the same analyzer dispatch from a single goroutine, one
	// at a time, so issues from a file submitted earlier are always
	// appended before issues from a file submitted later within that
	// analyzer (spec §5 ordering guarantee). Different analyzers still
	// run concurrently, bounded by the shared semaphore.
	for _, g := range groupByAnalyzer(p.batches) {
		wg.Add(1)
		go func(g analyzerGroup) {
			defer wg.Done()
			d := byName[g.analyzer]
			for _, b := range g.batches {
				if job.Control.Canceled() {
					return
				}
				job.Control.WaitWhilePaused()
				if job.Control.Canceled() {
					return
				}

				if e.Config.SpawnRate != nil {
					if waitErr := e.Config.SpawnRate.Wait(runCtx); waitErr != nil {
						return // context canceled while waiting for a token
					}
				}

				sem <- struct{}{}
				if job.Control.Canceled() {
					<-sem
					return
				}
				e.runBatch(runCtx, job, d, b)
				<-sem
			}
		}(g)
	}
	wg.Wait()

	if job.Control.Canceled() {
		e.cancelTerminal(job)
		return
	}
	e.complete(job)
}

// runBatch invokes one driver on one batch and folds the result into the
// job, attributing each file's issues to that file's work unit so
// completed_units and the live tally advance together.
func (e *Executor) runBatch(ctx context.Context, job *jobspec.Job, d analyzer.Driver, b batch) {
	for _, f := range b.files {
		job.Guard.Lock()
		job.Tracker.RecordUnitStart(f)
		job.Guard.Unlock()
	}

	batchCtx, cancelBatch := context.WithTimeout(ctx, e.Config.PerBatchTimeout)
	outcome, err := d.Analyze(batchCtx, b.files, job.Input.ProjectRoot)
	cancelBatch()
	filtered := filterByCategory(outcome.Issues, job.Input.Categories)
	byFile := groupByFile(filtered)

	job.Guard.Lock()
	defer job.Guard.Unlock()

	if err != nil {
		job.AppendWarning(jobspec.Warning{Analyzer: b.analyzer, Message: err.Error(), At: time.Now()})
	}
	for _, w := range outcome.Warnings {
		job.AppendWarning(jobspec.Warning{Analyzer: b.analyzer, File: w.File, Message: w.Message, At: time.Now()})
	}

	for _, f := range b.files {
		unitIssues := byFile[f]
		for _, iss := range unitIssues {
			job.AppendIssue(iss)
		}
		job.Tracker.RecordUnitFinish(unitIssues)
	}
}

func groupByFile(issues []issue.Issue) map[string][]issue.Issue {
	out := make(map[string][]issue.Issue, len(issues))
	for _, iss := range issues {
		out[iss.File] = append(out[iss.File], iss)
	}
	return out
}

func filterByCategory(issues []issue.Issue, allowed []issue.Category) []issue.Issue {
	if len(allowed) == 0 {
		return issues
	}
	set := make(map[issue.Category]struct{}, len(allowed))
	for _, c := range allowed {
		set[c] = struct{}{}
	}
	out := make([]issue.Issue, 0, len(issues))
	for _, iss := range issues {
		if _, ok := set[iss.Category]; ok {
			out = append(out, iss)
		}
	}
	return out
}

// fail, complete and cancelTerminal are the only paths that move a job
// into a terminal state. Each checks Transition's error and only stamps
// FinishedAt on success — paused->terminal is a legal edge (see
// jobspec.CanTransition) precisely so these always land even if a
// concurrent Pause call won the race to flip State first; if Transition
// still fails (job already terminal), the job is left exactly as it was.
func (e *Executor) fail(job *jobspec.Job, message string) {
	job.Guard.Lock()
	defer job.Guard.Unlock()
	if err := job.Transition(jobspec.StateFailed); err != nil {
		return
	}
	job.FailureMessage = message
	finished := time.Now()
	job.FinishedAt = &finished
}

func (e *Executor) complete(job *jobspec.Job) {
	job.Guard.Lock()
	defer job.Guard.Unlock()
	if err := job.Transition(jobspec.StateCompleted); err != nil {
		return
	}
	finished := time.Now()
	job.FinishedAt = &finished
}

func (e *Executor) cancelTerminal(job *jobspec.Job) {
	job.Guard.Lock()
	defer job.Guard.Unlock()
	if err := job.Transition(jobspec.StateCancelled); err != nil {
		return
	}
	finished := time.Now()
	job.FinishedAt = &finished
}
