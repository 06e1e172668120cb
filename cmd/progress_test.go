package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/naka-gawa/gh-review-activity/internal/logger"
)

func TestSpinnerWriter_ClearsLineBeforeLogs(t *testing.T) {
	var buf bytes.Buffer
	bar := newSpinner(&buf, "Fetching review activity for octocat", true)
	require.NotNil(t, bar)
	require.Contains(t, buf.String(), "Fetching review activity for octocat")

	log, err := logger.New("info", newSpinnerWriter(bar, &buf))
	require.NoError(t, err)
	log.Info("Searching pull requests")
	finishBar(bar)

	out := buf.String()
	idx := strings.Index(out, "INFO")
	require.Positive(t, idx)
	assert.Equal(t, byte('\r'), out[idx-1], "log line must start after the spinner line is cleared")
	assert.NotContains(t, out[:idx], "\n")
}

func TestNewSpinnerWriter_Disabled(t *testing.T) {
	var buf bytes.Buffer
	assert.Nil(t, newSpinner(&buf, "Fetching", false))
	assert.Same(t, &buf, newSpinnerWriter(nil, &buf))
	assert.Empty(t, buf.String())
}
