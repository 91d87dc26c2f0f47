package executor_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codelintio/codelint/pkg/analyzer"
	"github.com/codelintio/codelint/pkg/classify"
	"github.com/codelintio/codelint/pkg/executor"
	"github.com/codelintio/codelint/pkg/issue"
	"github.com/codelintio/codelint/pkg/jobspec"
)

// stubDriver lets tests control exactly what a batch produces without a
// real subprocess.
type stubDriver struct {
	name    string
	ext     string
	analyze func(ctx context.Context, batch []string, root string) (analyzer.Outcome, error)
}

func (s stubDriver) Descriptor() analyzer.Descriptor {
	return analyzer.Descriptor{
		Name:     s.name,
		Acceptor: classify.NewExtensionSet(s.name, s.ext),
	}
}

func (s stubDriver) Analyze(ctx context.Context, batch []string, root string) (analyzer.Outcome, error) {
	return s.analyze(ctx, batch, root)
}

func newJob(id string, files []string, analyzers []string) *jobspec.Job {
	return jobspec.NewJob(id, jobspec.Input{
		ProjectRoot: "/tmp/proj",
		Files:       files,
		Analyzers:   analyzers,
		Categories:  issue.AllCategories(),
	}, time.Now())
}

func TestRunHappyPath(t *testing.T) {
	js := stubDriver{name: "js", ext: ".js", analyze: func(ctx context.Context, batch []string, root string) (analyzer.Outcome, error) {
		var out analyzer.Outcome
		for _, f := range batch {
			out.Issues = append(out.Issues, issue.Issue{File: f, Line: 3, Severity: issue.SeverityHigh, Category: issue.CategoryQuality, Rule: "r1"})
		}
		return out, nil
	}}
	py := stubDriver{name: "py", ext: ".py", analyze: func(ctx context.Context, batch []string, root string) (analyzer.Outcome, error) {
		return analyzer.Outcome{Issues: []issue.Issue{{File: batch[0], Line: 12, Severity: issue.SeverityCritical, Category: issue.CategorySecurity}}}, nil
	}}

	set := analyzer.NewSet(js, py)
	ex := executor.New(set, executor.Config{Concurrency: 2})
	job := newJob("job-1", []string{"a.js", "b.py", "c.md"}, []string{"js", "py"})

	ex.Run(context.Background(), job)

	job.Guard.Lock()
	defer job.Guard.Unlock()
	assert.Equal(t, jobspec.StateCompleted, job.State)
	issues := job.Issues()
	assert.Len(t, issues, 2)
	snap := job.Snapshot()
	assert.Equal(t, snap.TotalUnits, snap.CompletedUnits)
}

func TestRunEmptyFilesetCompletesWithZeroUnits(t *testing.T) {
	set := analyzer.NewSet(stubDriver{name: "js", ext: ".js", analyze: noopAnalyze})
	ex := executor.New(set, executor.Config{})
	job := newJob("job-2", nil, []string{"js"})

	ex.Run(context.Background(), job)

	job.Guard.Lock()
	defer job.Guard.Unlock()
	assert.Equal(t, jobspec.StateCompleted, job.State)
	assert.Empty(t, job.Issues())
	assert.Equal(t, 0, job.Snapshot().TotalUnits)
}

func TestRunUnknownAnalyzerFailsJob(t *testing.T) {
	set := analyzer.NewSet(stubDriver{name: "js", ext: ".js", analyze: noopAnalyze})
	ex := executor.New(set, executor.Config{})
	job := newJob("job-3", []string{"a.js"}, []string{"does-not-exist"})

	ex.Run(context.Background(), job)

	job.Guard.Lock()
	defer job.Guard.Unlock()
	assert.Equal(t, jobspec.StateFailed, job.State)
	assert.NotEmpty(t, job.FailureMessage)
	require.NotNil(t, job.FinishedAt)
}

func TestRunDriverWarningDoesNotFailJob(t *testing.T) {
	failing := stubDriver{name: "py", ext: ".py", analyze: func(ctx context.Context, batch []string, root string) (analyzer.Outcome, error) {
		var out analyzer.Outcome
		for _, f := range batch {
			out.Warnings = append(out.Warnings, analyzer.Warning{File: f, Message: "binary missing"})
		}
		return out, nil
	}}
	ok := stubDriver{name: "js", ext: ".js", analyze: func(ctx context.Context, batch []string, root string) (analyzer.Outcome, error) {
		return analyzer.Outcome{Issues: []issue.Issue{{File: batch[0], Severity: issue.SeverityLow, Category: issue.CategoryQuality}}}, nil
	}}

	set := analyzer.NewSet(failing, ok)
	ex := executor.New(set, executor.Config{})
	job := newJob("job-4", []string{"a.py", "b.js"}, []string{"py", "js"})

	ex.Run(context.Background(), job)

	job.Guard.Lock()
	defer job.Guard.Unlock()
	assert.Equal(t, jobspec.StateCompleted, job.State)
	assert.Len(t, job.Warnings(), 1)
	assert.Len(t, job.Issues(), 1)
}

func TestRunCancelMidFlightReachesCancelled(t *testing.T) {
	release := make(chan struct{})
	slow := stubDriver{name: "js", ext: ".js", analyze: func(ctx context.Context, batch []string, root string) (analyzer.Outcome, error) {
		select {
		case <-ctx.Done():
			return analyzer.Outcome{}, nil
		case <-release:
			return analyzer.Outcome{}, nil
		}
	}}
	set := analyzer.NewSet(slow)
	ex := executor.New(set, executor.Config{Concurrency: 1, BatchSize: 1})

	files := make([]string, 20)
	for i := range files {
		files[i] = fmt.Sprintf("f%d.js", i)
	}
	job := newJob("job-5", files, []string{"js"})

	done := make(chan struct{})
	go func() {
		ex.Run(context.Background(), job)
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	job.Control.RequestCancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	close(release)

	job.Guard.Lock()
	defer job.Guard.Unlock()
	assert.Equal(t, jobspec.StateCancelled, job.State)
	require.NotNil(t, job.FinishedAt)
}

func noopAnalyze(ctx context.Context, batch []string, root string) (analyzer.Outcome, error) {
	return analyzer.Outcome{}, nil
}
