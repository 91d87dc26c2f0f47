package semgrepdriver_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codelintio/codelint/pkg/analyzer/semgrepdriver"
)

func TestDescriptorAcceptsAllFiles(t *testing.T) {
	d := semgrepdriver.New("semgrep")
	assert.True(t, d.Descriptor().Acceptor.Accepts(".rb"))
}

func TestAnalyzeMissingBinaryYieldsWarning(t *testing.T) {
	d := semgrepdriver.New("/no/such/semgrep-binary")
	out, err := d.Analyze(context.Background(), []string{"a.rb"}, "/tmp")
	require.NoError(t, err)
	assert.Empty(t, out.Issues)
	require.Len(t, out.Warnings, 1)
}

func TestAnalyzeEmptyBatchIsError(t *testing.T) {
	d := semgrepdriver.New("semgrep")
	_, err := d.Analyze(context.Background(), nil, "/tmp")
	assert.Error(t, err)
}
