// Package eslintdriver wraps a JavaScript/TypeScript linter that emits
// ESLint's JSON report format.
package eslintdriver

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/codelintio/codelint/pkg/analyzer"
	"github.com/codelintio/codelint/pkg/classify"
	"github.com/codelintio/codelint/pkg/issue"
)

const defaultName = "eslint"

// securityRules are rule ids whose findings map to the security category
// regardless of the linter's own severity.
var securityRules = map[string]struct{}{
	"security/detect-eval-with-expression":        {},
	"security/detect-non-literal-fs-filename":     {},
	"security/detect-non-literal-regexp":          {},
	"security/detect-non-literal-require":         {},
	"security/detect-object-injection":            {},
	"security/detect-possible-timing-attacks":     {},
	"security/detect-pseudoRandomBytes":           {},
	"security/detect-unsafe-regex":                {},
	"security/detect-buffer-noassert":             {},
	"security/detect-child-process":               {},
	"security/detect-disable-mustache-escape":     {},
	"security/detect-new-buffer":                  {},
	"security/detect-no-csrf-before-method-override": {},
	"no-eval":                                     {},
	"no-implied-eval":                              {},
}

// performanceRules are rule ids that map to the performance category.
var performanceRules = map[string]struct{}{
	"no-loop-func":       {},
	"no-await-in-loop":   {},
}

// Driver runs the configured linter binary once per batch, with every
// file of the batch on one command line, and normalizes its JSON report.
// Analyze does not split a batch; its size is set by the caller.
type Driver struct {
	BinaryPath string // resolved executable, e.g. "eslint" or an absolute path
	Deadline   time.Duration
	Name_      string // overrides defaultName when non-empty, for testing/aliasing
}

// MaxBatchFiles is a per-invocation file count for this driver. Analyze
// does not apply it: one invocation is given the whole batch.
const MaxBatchFiles = 32

func New(binaryPath string) *Driver {
	return &Driver{BinaryPath: binaryPath, Deadline: 60 * time.Second}
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
		Acceptor:   classify.NewExtensionSet(d.name(), ".js", ".jsx", ".ts", ".tsx"),
		Categories: issue.AllCategories(),
	}
}

// eslintFileResult mirrors the subset of ESLint's JSON report this
// driver depends on.
type eslintFileResult struct {
	FilePath string          `json:"filePath"`
	Messages []eslintMessage `json:"messages"`
}

type eslintMessage struct {
	RuleID   string `json:"ruleId"`
	Severity int    `json:"severity"`
	Message  string `json:"message"`
	Line     int    `json:"line"`
	Column   int    `json:"column"`
}

func (d *Driver) Analyze(ctx context.Context, batch []string, projectRoot string) (analyzer.Outcome, error) {
	if len(batch) == 0 {
		return analyzer.Outcome{}, fmt.Errorf("%s: empty batch", d.name())
	}

	args := append([]string{"--format", "json"}, batch...)
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

	var results []eslintFileResult
	if jsonErr := json.Unmarshal(stdout, &results); jsonErr != nil {
		msg := fmt.Sprintf("%s: unparseable output: %v", d.name(), jsonErr)
		if len(stderr) > 0 {
			msg += fmt.Sprintf(" (stderr: %s)", truncate(stderr, 200))
		}
		return analyzer.Outcome{Warnings: []analyzer.Warning{{Message: msg}}}, nil
	}

	var out analyzer.Outcome
	for _, fr := range results {
		file := fr.FilePath
		if rel, relErr := filepath.Rel(projectRoot, fr.FilePath); relErr == nil {
			file = rel
		}
		for _, m := range fr.Messages {
			out.Issues = append(out.Issues, issue.Issue{
				File:     file,
				Line:     m.Line,
				Column:   m.Column,
				Severity: mapSeverity(m.Severity),
				Category: mapCategory(m.RuleID),
				Rule:     m.RuleID,
				Message:  m.Message,
				Analyzer: d.name(),
			})
		}
	}
	return out, nil
}

func mapSeverity(native int) issue.Severity {
	switch native {
	case 2:
		return issue.SeverityHigh
	default:
		return issue.SeverityMedium
	}
}

func mapCategory(ruleID string) issue.Category {
	if _, ok := securityRules[ruleID]; ok {
		return issue.CategorySecurity
	}
	if _, ok := performanceRules[ruleID]; ok {
		return issue.CategoryPerformance
	}
	return issue.CategoryQuality
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
