package analyzer_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codelintio/codelint/pkg/analyzer"
	"github.com/codelintio/codelint/pkg/classify"
	"github.com/codelintio/codelint/pkg/issue"
)

type stubDriver struct {
	name string
	ext  string
}

func (s stubDriver) Descriptor() analyzer.Descriptor {
	return analyzer.Descriptor{
		Name:       s.name,
		Acceptor:   classify.NewExtensionSet(s.name, s.ext),
		Categories: issue.AllCategories(),
	}
}

func (s stubDriver) Analyze(context.Context, []string, string) (analyzer.Outcome, error) {
	return analyzer.Outcome{}, nil
}

func TestSetResolveKnownAndUnknown(t *testing.T) {
	set := analyzer.NewSet(stubDriver{name: "eslint", ext: ".js"}, stubDriver{name: "bandit", ext: ".py"})

	drivers, err := set.Resolve([]string{"bandit", "eslint"})
	require.NoError(t, err)
	require.Len(t, drivers, 2)
	assert.Equal(t, "bandit", drivers[0].Descriptor().Name)

	_, err = set.Resolve([]string{"missing"})
	require.Error(t, err)
	var unknown *analyzer.UnknownAnalyzerError
	assert.ErrorAs(t, err, &unknown)
}

func TestSetResolveEmptyIsError(t *testing.T) {
	set := analyzer.NewSet(stubDriver{name: "eslint", ext: ".js"})
	_, err := set.Resolve(nil)
	assert.Error(t, err)
}

func TestSetNamesSorted(t *testing.T) {
	set := analyzer.NewSet(stubDriver{name: "zeta", ext: ".z"}, stubDriver{name: "alpha", ext: ".a"})
	assert.Equal(t, []string{"alpha", "zeta"}, set.Names())
}

func TestAcceptorsAndByName(t *testing.T) {
	set := analyzer.NewSet(stubDriver{name: "eslint", ext: ".js"}, stubDriver{name: "bandit", ext: ".py"})
	drivers, err := set.Resolve([]string{"eslint", "bandit"})
	require.NoError(t, err)

	acceptors := analyzer.Acceptors(drivers)
	require.Len(t, acceptors, 2)
	assert.True(t, acceptors[0].Accepts(".js"))

	byName := analyzer.ByName(drivers)
	assert.Contains(t, byName, "bandit")
}

func TestNewSetPanicsOnDuplicateName(t *testing.T) {
	assert.Panics(t, func() {
		analyzer.NewSet(stubDriver{name: "eslint", ext: ".js"}, stubDriver{name: "eslint", ext: ".ts"})
	})
}
