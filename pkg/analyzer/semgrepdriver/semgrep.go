// Package semgrepdriver wraps a generic multi-language pattern scanner
// that emits Semgrep's JSON report format. It is a supplemental driver,
// disabled by default — callers opt in by including its name in the
// enabled-analyzer set.
package semgrepdriver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/codelintio/codelint/pkg/analyzer"
	"github.com/codelintio/codelint/pkg/classify"
	"github.com/codelintio/codelint/pkg/issue"
)

const defaultName = "semgrep"

type Driver struct {
	BinaryPath string
	Deadline   time.Duration
	ConfigRule string // e.g. "auto", or a path/registry ruleset id
	Name_      string
}

func New(binaryPath string) *Driver {
	return &Driver{BinaryPath: binaryPath, Deadline: 60 * time.Second, ConfigRule: "auto"}
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
		Acceptor:   classify.AllFiles{AnalyzerName: d.name()},
		Categories: issue.AllCategories(),
	}
}

type semgrepReport struct {
	Results []semgrepResult `json:"results"`
}

type semgrepResult struct {
	CheckID string `json:"check_id"`
	Path    string `json:"path"`
	Start   struct {
		Line int `json:"line"`
		Col  int `json:"col"`
	} `json:"start"`
	Extra struct {
		Severity string `json:"severity"`
		Message  string `json:"message"`
	} `json:"extra"`
}

func (d *Driver) Analyze(ctx context.Context, batch []string, projectRoot string) (analyzer.Outcome, error) {
	if len(batch) == 0 {
		return analyzer.Outcome{}, fmt.Errorf("%s: empty batch", d.name())
	}

	args := append([]string{"--json", "--config", d.ConfigRule}, batch...)
	stdout, stderr, err := analyzer.RunCommand(ctx, d.Deadline, analyzer.CommandSpec{
		Path: d.BinaryPath,
		Args: args,
		Dir:  projectRoot,
	})

	if err == analyzer.ErrTimedOut {
		return analyzer.Outcome{Warnings: []analyzer.Warning{
			{Message: fmt.Sprintf("%s: timed out after %s", d.name(), d.Deadline)},
		}}, nil
	}
	if err != nil {
		return analyzer.Outcome{Warnings: []analyzer.Warning{
			{Message: fmt.Sprintf("%s: failed to spawn: %v", d.name(), err)},
		}}, nil
	}

	var report semgrepReport
	if jsonErr := json.Unmarshal(stdout, &report); jsonErr != nil {
		msg := fmt.Sprintf("%s: unparseable output: %v", d.name(), jsonErr)
		if len(stderr) > 0 {
			msg += fmt.Sprintf(" (stderr: %s)", truncate(stderr, 200))
		}
		return analyzer.Outcome{Warnings: []analyzer.Warning{{Message: msg}}}, nil
	}

	var out analyzer.Outcome
	for _, r := range report.Results {
		out.Issues = append(out.Issues, issue.Issue{
			File:     r.Path,
			Line:     r.Start.Line,
			Column:   r.Start.Col,
			Severity: mapSeverity(r.Extra.Severity),
			Category: mapCategory(r.CheckID),
			Rule:     r.CheckID,
			Message:  r.Extra.Message,
			Analyzer: d.name(),
		})
	}
	return out, nil
}

func mapSeverity(native string) issue.Severity {
	switch strings.ToUpper(native) {
	case "ERROR":
		return issue.SeverityHigh
	case "WARNING":
		return issue.SeverityMedium
	default:
		return issue.SeverityLow
	}
}

func mapCategory(checkID string) issue.Category {
	lower := strings.ToLower(checkID)
	switch {
	case strings.Contains(lower, "security"):
		return issue.CategorySecurity
	case strings.Contains(lower, "performance"):
		return issue.CategoryPerformance
	default:
		return issue.CategoryQuality
	}
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
