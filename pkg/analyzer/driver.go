// Package analyzer defines the driver contract shared by every analyzer
// plugin (C1) and the subprocess plumbing they're built on.
package analyzer

import (
	"context"

	"github.com/codelintio/codelint/pkg/classify"
	"github.com/codelintio/codelint/pkg/issue"
)

// Descriptor is the static metadata the executor and classifier need
// about a driver, independent of its invocation details.
type Descriptor struct {
	Name       string
	Acceptor   classify.Acceptor
	Categories []issue.Category
}

// Outcome is what a driver hands back for one batch. Issues is the
// complete normalized finding list; Warnings carries non-fatal faults
// (missing binary, timeout, parse failure) the executor folds onto the
// job without affecting its state, per the driver failure semantics.
type Outcome struct {
	Issues   []issue.Issue
	Warnings []Warning
}

// Warning is a driver-level fault tied to the batch (and optionally a
// single file within it) that produced it.
type Warning struct {
	File    string
	Message string
}

// Driver wraps one external analyzer. Analyze must never return an
// error for tool-level faults (missing binary, timeout, bad output) —
// those become Warnings. A non-nil error signals a caller-programming
// mistake (e.g. an empty batch) and should be rare in practice.
type Driver interface {
	Descriptor() Descriptor
	Analyze(ctx context.Context, batch []string, projectRoot string) (Outcome, error)
}
