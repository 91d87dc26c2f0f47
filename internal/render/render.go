// Package render draws job status and results to a terminal: colored
// severity labels and a live progress line when stdout is a TTY, plain
// tab-aligned text otherwise.
package render

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"gopkg.in/yaml.v3"

	"github.com/codelintio/codelint/pkg/issue"
	"github.com/codelintio/codelint/pkg/jobspec"
)

var severityStyle = map[issue.Severity]lipgloss.Style{
	issue.SeverityCritical: lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
	issue.SeverityHigh:     lipgloss.NewStyle().Foreground(lipgloss.Color("203")),
	issue.SeverityMedium:   lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
	issue.SeverityLow:      lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
}

var dimStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))

// IsInteractive reports whether w is a TTY worth coloring for. Plain
// rendering is used otherwise (pipes, redirects, CI logs).
func IsInteractive(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// SeverityLabel renders sev, colored when interactive is true.
func SeverityLabel(sev issue.Severity, interactive bool) string {
	if !interactive {
		return strings.ToUpper(string(sev))
	}
	style, ok := severityStyle[sev]
	if !ok {
		return strings.ToUpper(string(sev))
	}
	return style.Render(strings.ToUpper(string(sev)))
}

// ProgressLine renders a single-line progress summary for p.
func ProgressLine(state jobspec.State, p jobspec.ProgressSnapshot, interactive bool) string {
	pct := int(p.Fraction() * 100)
	remaining := "?"
	if p.RemainingSeconds != nil {
		remaining = fmt.Sprintf("%.0fs", *p.RemainingSeconds)
	}
	line := fmt.Sprintf("[%3d%%] %s  %d/%d units  elapsed %.1fs  remaining %s  (critical=%d high=%d medium=%d low=%d)",
		pct, state, p.CompletedUnits, p.TotalUnits, p.ElapsedSeconds, remaining,
		p.Tally.Critical, p.Tally.High, p.Tally.Medium, p.Tally.Low)
	if !interactive {
		return line
	}
	return dimStyle.Render(fmt.Sprintf("[%3d%%] ", pct)) + fmt.Sprintf("%s  %d/%d units  elapsed %.1fs  remaining %s  (critical=%d high=%d medium=%d low=%d)",
		state, p.CompletedUnits, p.TotalUnits, p.ElapsedSeconds, remaining,
		p.Tally.Critical, p.Tally.High, p.Tally.Medium, p.Tally.Low)
}

// WriteYAML writes v as YAML to w, for callers that want a structured
// result document instead of (or alongside) the table rendering — e.g.
// piping a job's result into another tool.
func WriteYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(v)
}

// IssueTable writes a tab-aligned table of issues to w. Column widths
// adapt to content via text/tabwriter; this is the same rendering in
// both interactive and non-interactive modes, with severity colored
// only when interactive.
func IssueTable(w io.Writer, issues []issue.Issue, interactive bool) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "FILE\tLINE\tSEVERITY\tCATEGORY\tRULE\tMESSAGE")
	for _, iss := range issues {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\t%s\n",
			iss.File, iss.Line, SeverityLabel(iss.Severity, interactive), iss.Category, iss.Rule, iss.Message)
	}
	return tw.Flush()
}
