package jobspec_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codelintio/codelint/pkg/issue"
	"github.com/codelintio/codelint/pkg/jobspec"
)

func TestJobTransition(t *testing.T) {
	j := jobspec.NewJob("job-1", jobspec.Input{ProjectRoot: "/tmp/proj"}, time.Unix(0, 0))
	require.Equal(t, jobspec.StatePending, j.State)

	require.NoError(t, j.Transition(jobspec.StateRunning))
	assert.Equal(t, jobspec.StateRunning, j.State)

	err := j.Transition(jobspec.StatePending)
	require.Error(t, err)
	var transErr *jobspec.TransitionError
	assert.ErrorAs(t, err, &transErr)
}

func TestJobAppendIssueAssignsSequentialIDs(t *testing.T) {
	j := jobspec.NewJob("abcdef1234", jobspec.Input{}, time.Unix(0, 0))

	first := j.AppendIssue(issue.Issue{File: "a.py", Severity: issue.SeverityCritical})
	second := j.AppendIssue(issue.Issue{File: "b.py", Severity: issue.SeverityLow})

	assert.Equal(t, "abcdef12-1", first.ID)
	assert.Equal(t, "abcdef12-2", second.ID)

	issues := j.Issues()
	assert.Len(t, issues, 2)
}

func TestJobSnapshotReflectsTrackerTally(t *testing.T) {
	j := jobspec.NewJob("job-3", jobspec.Input{}, time.Unix(0, 0))
	j.SetTotalUnits(2)

	j.Tracker.RecordUnitStart("a.py")
	j.Tracker.RecordUnitFinish([]issue.Issue{{Severity: issue.SeverityCritical}})

	snap := j.Snapshot()
	assert.Equal(t, 1, snap.Tally.Critical)
	assert.Equal(t, 1, snap.CompletedUnits)
	assert.Equal(t, 2, snap.TotalUnits)
}

func TestJobWarnings(t *testing.T) {
	j := jobspec.NewJob("job-2", jobspec.Input{}, time.Unix(0, 0))
	j.AppendWarning(jobspec.Warning{Analyzer: "eslint", Message: "binary not found"})

	got := j.Warnings()
	require.Len(t, got, 1)
	assert.Equal(t, "eslint", got[0].Analyzer)
}

func TestProgressSnapshotFraction(t *testing.T) {
	assert.Equal(t, float64(0), jobspec.ProgressSnapshot{}.Fraction())

	p := jobspec.ProgressSnapshot{TotalUnits: 4, CompletedUnits: 1}
	assert.Equal(t, 0.25, p.Fraction())
}

func TestControlPauseResumeCancel(t *testing.T) {
	var c jobspec.Control
	assert.False(t, c.Paused())
	assert.False(t, c.Canceled())

	c.RequestPause()
	assert.True(t, c.Paused())

	done := make(chan struct{})
	go func() {
		c.WaitWhilePaused()
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("WaitWhilePaused returned before resume or cancel")
	case <-time.After(20 * time.Millisecond):
	}

	c.Resume()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("WaitWhilePaused did not wake on Resume")
	}

	c.RequestPause()
	done2 := make(chan struct{})
	go func() {
		c.WaitWhilePaused()
		close(done2)
	}()
	c.RequestCancel()
	select {
	case <-done2:
	case <-time.After(time.Second):
		t.Fatal("WaitWhilePaused did not wake on RequestCancel")
	}
	assert.True(t, c.Canceled())
}

func TestControlDoneClosesOnCancelAndIsIdempotent(t *testing.T) {
	var c jobspec.Control
	done := c.Done()

	select {
	case <-done:
		t.Fatal("Done channel closed before cancel requested")
	default:
	}

	c.RequestCancel()
	assert.NotPanics(t, func() { c.RequestCancel() })

	select {
	case <-done:
	default:
		t.Fatal("Done channel not closed after RequestCancel")
	}
}
