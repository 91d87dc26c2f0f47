// Package patterndriver implements the custom-pattern analyzer: a fixed
// table of regular expressions evaluated line-by-line against every
// accepted file, run in-process with no subprocess involved.
package patterndriver

import (
	"bufio"
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/codelintio/codelint/pkg/analyzer"
	"github.com/codelintio/codelint/pkg/classify"
	"github.com/codelintio/codelint/pkg/issue"
)

const defaultName = "patterns"

// Rule is one entry in the pattern table: a compiled regex plus the
// severity/category/message it carries into any matching Issue.
type Rule struct {
	ID       string
	Regex    *regexp.Regexp
	Severity issue.Severity
	Category issue.Category
	Message  string
	// FileTypes restricts the rule to files with one of these lowercase
	// extensions; empty means every text file.
	FileTypes map[string]struct{}
}

func (r Rule) appliesTo(lowerExt string) bool {
	if len(r.FileTypes) == 0 {
		return true
	}
	_, ok := r.FileTypes[lowerExt]
	return ok
}

func extSet(exts ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(exts))
	for _, e := range exts {
		m[e] = struct{}{}
	}
	return m
}

// DefaultRules is the mandatory three-rule table plus the supplemental
// rules carried over from the source analyzer's broader pattern set.
func DefaultRules() []Rule {
	return []Rule{
		{
			ID:       "debug-print",
			Regex:    regexp.MustCompile(`console\.log\s*\(|print\s*\(`),
			Severity: issue.SeverityLow,
			Category: issue.CategoryQuality,
			Message:  "debug print statement left in code",
		},
		{
			ID:       "inline-todo",
			Regex:    regexp.MustCompile(`(?i)//\s*TODO|#\s*TODO`),
			Severity: issue.SeverityLow,
			Category: issue.CategoryQuality,
			Message:  "unresolved TODO comment",
		},
		{
			ID:       "hardcoded-secret",
			Regex:    regexp.MustCompile(`(?i)(password|api[_-]?key|secret)\s*=\s*["'][^"']+["']`),
			Severity: issue.SeverityCritical,
			Category: issue.CategorySecurity,
			Message:  "hardcoded credential",
		},
		{
			ID:       "debugger-statement",
			Regex:    regexp.MustCompile(`\bdebugger\b`),
			Severity: issue.SeverityMedium,
			Category: issue.CategoryQuality,
			Message:  "debugger statement left in code",
			FileTypes: extSet(".js", ".jsx", ".ts", ".tsx"),
		},
		{
			ID:       "sql-string-concat",
			Regex:    regexp.MustCompile(`(?i)(SELECT|INSERT|UPDATE|DELETE)\b.*["']\s*\+`),
			Severity: issue.SeverityHigh,
			Category: issue.CategorySecurity,
			Message:  "SQL statement built via string concatenation",
		},
		{
			ID:       "eval-exec-usage",
			Regex:    regexp.MustCompile(`\b(eval|exec)\s*\(`),
			Severity: issue.SeverityHigh,
			Category: issue.CategorySecurity,
			Message:  "dynamic code execution",
		},
		{
			ID:       "bare-except",
			Regex:    regexp.MustCompile(`^\s*except\s*:\s*$`),
			Severity: issue.SeverityLow,
			Category: issue.CategoryQuality,
			Message:  "bare except clause swallows all errors",
			FileTypes: extSet(".py"),
		},
	}
}

// defaultExcludes keeps the pattern driver — which otherwise accepts
// every file — off vendored and generated trees, where matches would be
// noise rather than findings about this project's own code.
var defaultExcludes = []string{"vendor/**", "node_modules/**", "dist/**", "**/*.min.js"}

// Driver evaluates Rules against every line of every file in a batch.
type Driver struct {
	Rules    []Rule
	Name_    string
	Excludes []string
}

func New() *Driver {
	return &Driver{Rules: DefaultRules(), Excludes: defaultExcludes}
}

func (d *Driver) name() string {
	if d.Name_ != "" {
		return d.Name_
	}
	return defaultName
}

func (d *Driver) Descriptor() analyzer.Descriptor {
	return analyzer.Descriptor{
		Name: d.name(),
		Acceptor: classify.Scoped{
			Acceptor: classify.AllFiles{AnalyzerName: d.name()},
			Exclude:  d.Excludes,
		},
		Categories: issue.AllCategories(),
	}
}

// Analyze reads each file in batch from projectRoot and checks every
// line against every rule that applies to the file's extension. A file
// that cannot be opened produces a warning, not an error — the batch as
// a whole still proceeds.
func (d *Driver) Analyze(ctx context.Context, batch []string, projectRoot string) (analyzer.Outcome, error) {
	if len(batch) == 0 {
		return analyzer.Outcome{}, fmt.Errorf("%s: empty batch", d.name())
	}

	var out analyzer.Outcome
	for _, file := range batch {
		select {
		case <-ctx.Done():
			return out, nil
		default:
		}

		issues, warn := d.scanFile(file, projectRoot)
		out.Issues = append(out.Issues, issues...)
		if warn != "" {
			out.Warnings = append(out.Warnings, analyzer.Warning{File: file, Message: warn})
		}
	}
	return out, nil
}

func (d *Driver) scanFile(relPath, projectRoot string) ([]issue.Issue, string) {
	abs := joinRoot(projectRoot, relPath)
	f, err := openFile(abs)
	if err != nil {
		return nil, fmt.Sprintf("%s: unreadable file: %v", d.name(), err)
	}
	defer f.Close()

	ext := strings.ToLower(extOf(relPath))
	applicable := make([]Rule, 0, len(d.Rules))
	for _, r := range d.Rules {
		if r.appliesTo(ext) {
			applicable = append(applicable, r)
		}
	}
	if len(applicable) == 0 {
		return nil, ""
	}

	var found []issue.Issue
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		for _, r := range applicable {
			if r.Regex.MatchString(line) {
				found = append(found, issue.Issue{
					File:        relPath,
					Line:        lineNo,
					Column:      1,
					Severity:    r.Severity,
					Category:    r.Category,
					Rule:        r.ID,
					Message:     r.Message,
					CodeSnippet: strings.TrimSpace(line),
					Analyzer:    d.name(),
				})
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return found, fmt.Sprintf("%s: error reading file: %v", d.name(), err)
	}
	return found, ""
}
