package cmd

import (
	"context"
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codelintio/codelint/internal/observability"
	"github.com/codelintio/codelint/pkg/analyzer"
	"github.com/codelintio/codelint/pkg/classify"
	"github.com/codelintio/codelint/pkg/executor"
	"github.com/codelintio/codelint/pkg/issue"
	"github.com/codelintio/codelint/pkg/jobspec"
	"github.com/codelintio/codelint/pkg/registry"
)

// blockingDriver holds Analyze open until release is closed, giving the
// test a window in which the job is guaranteed to be running.
type blockingDriver struct{ release chan struct{} }

func (b blockingDriver) Descriptor() analyzer.Descriptor {
	return analyzer.Descriptor{Name: "slow", Acceptor: classify.NewExtensionSet("slow", ".js")}
}

func (b blockingDriver) Analyze(ctx context.Context, batch []string, root string) (analyzer.Outcome, error) {
	select {
	case <-b.release:
	case <-ctx.Done():
	}
	return analyzer.Outcome{}, nil
}

func TestWatchPauseToggleAltersJobState(t *testing.T) {
	release := make(chan struct{})
	defer close(release)

	set := analyzer.NewSet(blockingDriver{release: release})
	reg := registry.New(set, executor.Config{Concurrency: 1, BatchSize: 1}, 0)

	jobID, err := reg.Create(context.Background(), jobspec.Input{
		ProjectRoot: t.TempDir(),
		Files:       []string{"a.js"},
		Analyzers:   []string{"slow"},
		Categories:  issue.AllCategories(),
	})
	require.NoError(t, err)

	stop := watchPauseToggle(reg, jobID, observability.Noop())
	defer stop()

	require.Eventually(t, func() bool {
		view, err := reg.Status(jobID)
		return err == nil && view.State == jobspec.StateRunning
	}, time.Second, 5*time.Millisecond, "job should reach running before any signal")

	require.NoError(t, syscall.Kill(os.Getpid(), syscall.SIGUSR1))
	require.Eventually(t, func() bool {
		view, err := reg.Status(jobID)
		return err == nil && view.State == jobspec.StatePaused
	}, time.Second, 5*time.Millisecond, "first SIGUSR1 should pause the job")

	require.NoError(t, syscall.Kill(os.Getpid(), syscall.SIGUSR1))
	require.Eventually(t, func() bool {
		view, err := reg.Status(jobID)
		return err == nil && view.State == jobspec.StateRunning
	}, time.Second, 5*time.Millisecond, "second SIGUSR1 should resume the job")

	assert.NoError(t, reg.Cancel(jobID))
}
