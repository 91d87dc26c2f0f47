package classify_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/codelintio/codelint/pkg/classify"
)

func TestClassifyRoutesByExtension(t *testing.T) {
	eslint := classify.NewExtensionSet("eslint", ".js", ".jsx", ".ts", ".tsx")
	bandit := classify.NewExtensionSet("bandit", ".py")
	patterns := classify.AllFiles{AnalyzerName: "patterns"}

	enabled := []classify.Acceptor{eslint, bandit, patterns}

	assert.Equal(t, []string{"eslint", "patterns"}, classify.Names("src/app.tsx", enabled))
	assert.Equal(t, []string{"bandit", "patterns"}, classify.Names("scripts/run.py", enabled))
	assert.Equal(t, []string{"patterns"}, classify.Names("README.md", enabled))
}

func TestClassifyIsCaseInsensitive(t *testing.T) {
	eslint := classify.NewExtensionSet("eslint", ".js")
	assert.Equal(t, []string{"eslint"}, classify.Names("Weird.JS", []classify.Acceptor{eslint}))
}

func TestClassifyZeroMatches(t *testing.T) {
	eslint := classify.NewExtensionSet("eslint", ".js")
	got := classify.Classify("image.png", []classify.Acceptor{eslint})
	assert.Empty(t, got)
	assert.Nil(t, classify.Names("image.png", []classify.Acceptor{eslint}))
}

func TestClassifyEmptyEnabledSet(t *testing.T) {
	assert.Empty(t, classify.Classify("a.js", nil))
}

func TestClassifyScopedExcludesGlobMatch(t *testing.T) {
	patterns := classify.Scoped{
		Acceptor: classify.AllFiles{AnalyzerName: "patterns"},
		Exclude:  []string{"vendor/**", "**/*.min.js"},
	}
	enabled := []classify.Acceptor{patterns}

	assert.Equal(t, []string{"patterns"}, classify.Names("src/app.js", enabled))
	assert.Empty(t, classify.Names("vendor/lib/util.js", enabled))
	assert.Empty(t, classify.Names("static/bundle.min.js", enabled))
}

func TestClassifyScopedStillHonorsExtension(t *testing.T) {
	scoped := classify.Scoped{
		Acceptor: classify.NewExtensionSet("eslint", ".js"),
		Exclude:  []string{"vendor/**"},
	}
	assert.Empty(t, classify.Names("app.py", []classify.Acceptor{scoped}))
}
