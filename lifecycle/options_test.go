package lifecycle

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeOptions(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "options.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()
	assert.Equal(t, 5*time.Second, opts.ShutdownTimeout.Std())
	assert.Equal(t, 10, opts.HistoryLimit)
	assert.Equal(t, 2*time.Second, opts.WatchInterval.Std())
}

func TestLoadOptions(t *testing.T) {
	path := writeOptions(t, `
shutdown_timeout: 30s
history_limit: 25
watch_interval: 500ms
`)

	opts, err := LoadOptions(path)
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, opts.ShutdownTimeout.Std())
	assert.Equal(t, 25, opts.HistoryLimit)
	assert.Equal(t, 500*time.Millisecond, opts.WatchInterval.Std())
}

func TestLoadOptionsPartialFileKeepsDefaults(t *testing.T) {
	path := writeOptions(t, "history_limit: 3\n")

	opts, err := LoadOptions(path)
	require.NoError(t, err)
	assert.Equal(t, 3, opts.HistoryLimit)
	assert.Equal(t, DefaultOptions().ShutdownTimeout, opts.ShutdownTimeout)
	assert.Equal(t, DefaultOptions().WatchInterval, opts.WatchInterval)
}

func TestLoadOptionsMissingFile(t *testing.T) {
	opts, err := LoadOptions(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
	assert.Equal(t, DefaultOptions(), opts, "defaults returned alongside the error")
}

func TestLoadOptionsBadDuration(t *testing.T) {
	path := writeOptions(t, "shutdown_timeout: soon\n")

	opts, err := LoadOptions(path)
	assert.Error(t, err)
	assert.Equal(t, DefaultOptions(), opts)
}

func TestLoadOptionsBadYAML(t *testing.T) {
	path := writeOptions(t, "history_limit: [not a number\n")

	_, err := LoadOptions(path)
	assert.Error(t, err)
}
