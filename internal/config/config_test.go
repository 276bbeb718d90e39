package config

import (
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/riahtu/pmtrain/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_FromEnvironment(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("PMTRAIN_DATA_DIR", dir)
	t.Setenv("PMTRAIN_LOG_LEVEL", "debug")
	t.Setenv("PMTRAIN_LOG_FORMAT", "json")

	c, err := New()
	require.NoError(t, err)
	assert.Equal(t, dir, c.DataDir)
	assert.Equal(t, filepath.Join(dir, "pmtrain.db"), c.DBPath)
	assert.Equal(t, filepath.Join(dir, "workspaces"), c.WorkspacesDir())
	assert.Equal(t, []string{filepath.Join(dir, "pipelines"), filepath.Join(".pmtrain", "pipelines")}, c.PipelineDirs())
	assert.Equal(t, slog.LevelDebug, c.LogLevel)
	assert.Equal(t, logging.FormatJSON, c.LogFormat)
	assert.NotNil(t, c.Logger())

	require.NoError(t, c.EnsureDataDir())
	assert.DirExists(t, c.UserPipelineDir)
}

func TestNew_RejectsBadLogSettings(t *testing.T) {
	t.Setenv("PMTRAIN_DATA_DIR", t.TempDir())

	t.Setenv("PMTRAIN_LOG_LEVEL", "loud")
	_, err := New()
	assert.ErrorContains(t, err, "PMTRAIN_LOG_LEVEL")

	t.Setenv("PMTRAIN_LOG_LEVEL", "info")
	t.Setenv("PMTRAIN_LOG_FORMAT", "xml")
	_, err = New()
	assert.ErrorContains(t, err, "PMTRAIN_LOG_FORMAT")
}
