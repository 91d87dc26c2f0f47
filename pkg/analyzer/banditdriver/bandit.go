// Package banditdriver wraps a Python security scanner that emits
// Bandit's JSON report format.
package banditdriver

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/codelintio/codelint/pkg/analyzer"
	"github.com/codelintio/codelint/pkg/classify"
	"github.com/codelintio/codelint/pkg/issue"
)

const defaultName = "bandit"

// Driver invokes the scanner once per file (Bandit's native contract),
// not per batch — the executor still groups the batch, but this driver
// fans out internally and merges results, so a single slow or crashing
// file only costs that file's findings.
type Driver struct {
	BinaryPath string
	Deadline   time.Duration
	Name_      string
}

func New(binaryPath string) *Driver {
	return &Driver{BinaryPath: binaryPath, Deadline: 10 * time.Second}
}

func (d *Driver) name() string {
	if d.Name_ != "" {
		return d.Name_
	}
	return defaultName
}

func (d *Driver) Descriptor() analyzer.Descriptor {
	return analyzer.Descriptor{
		Name:       d.name(),
		Acceptor:   classify.NewExtensionSet(d.name(), ".py"),
		Categories: []issue.Category{issue.CategorySecurity},
	}
}

type banditReport struct {
	Results []banditResult `json:"results"`
}

type banditResult struct {
	Filename      string `json:"filename"`
	LineNumber    int    `json:"line_number"`
	ColOffset     int    `json:"col_offset"`
	IssueSeverity string `json:"issue_severity"`
	TestID        string `json:"test_id"`
	IssueText     string `json:"issue_text"`
}

func (d *Driver) Analyze(ctx context.Context, batch []string, projectRoot string) (analyzer.Outcome, error) {
	if len(batch) == 0 {
		return analyzer.Outcome{}, fmt.Errorf("%s: empty batch", d.name())
	}

	var out analyzer.Outcome
	for _, file := range batch {
		stdout, _, err := analyzer.RunCommand(ctx, d.Deadline, analyzer.CommandSpec{
			Path: d.BinaryPath,
			Args: []string{"-f", "json", "-ll", file},
			Dir:  projectRoot,
		})

		if err == analyzer.ErrTimedOut {
			out.Warnings = append(out.Warnings, analyzer.Warning{
				File:    file,
				Message: fmt.Sprintf("%s: timed out after %s", d.name(), d.Deadline),
			})
			continue
		}
		if err != nil {
			out.Warnings = append(out.Warnings, analyzer.Warning{
				File:    file,
				Message: fmt.Sprintf("%s: failed to spawn: %v", d.name(), err),
			})
			continue
		}

		var report banditReport
		if jsonErr := json.Unmarshal(stdout, &report); jsonErr != nil {
			out.Warnings = append(out.Warnings, analyzer.Warning{
				File:    file,
				Message: fmt.Sprintf("%s: unparseable output: %v", d.name(), jsonErr),
			})
			continue
		}

		for _, r := range report.Results {
			out.Issues = append(out.Issues, issue.Issue{
				File:     file,
				Line:     r.LineNumber,
				Column:   r.ColOffset,
				Severity: mapSeverity(r.IssueSeverity),
				Category: issue.CategorySecurity,
				Rule:     r.TestID,
				Message:  r.IssueText,
				Analyzer: d.name(),
			})
		}
	}
	return out, nil
}

func mapSeverity(native string) issue.Severity {
	switch native {
	case "HIGH":
		return issue.SeverityCritical
	case "MEDIUM":
		return issue.SeverityHigh
	default:
		return issue.SeverityMedium
	}
}
