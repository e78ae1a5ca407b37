package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNew_AppendsToFile verifies entries land in the transcript file and
// that a second logger appends instead of truncating.
func TestNew_AppendsToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "voxdeploy.log")

	New(path).Info("first run")
	New(path).Info("second run")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "first run")
	assert.Contains(t, string(data), "second run")
}

// TestNew_BadPathDiscards verifies an unopenable path degrades to a
// discarding logger instead of failing.
func TestNew_BadPathDiscards(t *testing.T) {
	logger := New(filepath.Join(t.TempDir(), "no-such-dir", "voxdeploy.log"))

	// Must not panic or error.
	logger.Info("dropped")
}
