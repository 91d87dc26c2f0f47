package issue_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/codelintio/codelint/pkg/issue"
)

func TestSeverityValid(t *testing.T) {
	assert.True(t, issue.SeverityCritical.Valid())
	assert.True(t, issue.SeverityLow.Valid())
	assert.False(t, issue.Severity("catastrophic").Valid())
}

func TestCategoryValid(t *testing.T) {
	assert.True(t, issue.CategorySecurity.Valid())
	assert.False(t, issue.Category("style").Valid())
}

func TestTallyAdd(t *testing.T) {
	var tally issue.Tally
	tally.Add(issue.SeverityCritical)
	tally.Add(issue.SeverityCritical)
	tally.Add(issue.SeverityLow)
	tally.Add(issue.Severity("bogus"))

	assert.Equal(t, 2, tally.Critical)
	assert.Equal(t, 1, tally.Low)
	assert.Equal(t, 3, tally.Total, "unknown severities must not be counted")
}

func TestSummarize(t *testing.T) {
	issues := []issue.Issue{
		{File: "a.js", Severity: issue.SeverityHigh, Category: issue.CategoryQuality},
		{File: "a.js", Severity: issue.SeverityMedium, Category: issue.CategoryQuality},
		{File: "b.py", Severity: issue.SeverityCritical, Category: issue.CategorySecurity},
	}

	sum := issue.Summarize(issues)

	assert.Equal(t, 3, sum.Total)
	assert.Equal(t, 1, sum.Critical)
	assert.Equal(t, 1, sum.High)
	assert.Equal(t, 1, sum.Medium)
	assert.Equal(t, 2, sum.Quality)
	assert.Equal(t, 1, sum.Security)
	assert.Equal(t, 2, sum.AffectedFiles)
}
