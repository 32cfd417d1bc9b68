package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "uploads", cfg.UploadsDir)
	assert.Equal(t, "json", cfg.JSONDir)
	assert.True(t, cfg.KeepUploads)
	assert.Equal(t, 0.6, cfg.ScoreFloor)
	assert.Equal(t, 3, cfg.MaxResultsPerField)
	assert.Equal(t, 0.5, cfg.WindowStepFraction)
	assert.Equal(t, time.Duration(0), cfg.Deadline)
	assert.Equal(t, int64(16<<20), cfg.MaxUploadBytes)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("SCORE_FLOOR", "0.75")
	t.Setenv("MAX_RESULTS_PER_FIELD", "5")
	t.Setenv("DEADLINE_MS", "1500")
	t.Setenv("KEEP_UPLOADS", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 0.75, cfg.ScoreFloor)
	assert.Equal(t, 5, cfg.MaxResultsPerField)
	assert.Equal(t, 1500*time.Millisecond, cfg.Deadline)
	assert.False(t, cfg.KeepUploads)
}

func TestLoadYAMLOverlayWinsOverEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("score_floor: 0.8\nuploads_dir: /data/uploads\n"), 0o644))

	t.Setenv("SCORE_FLOOR", "0.7")
	t.Setenv("EVIDENCE_MCP_CONFIG", path)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 0.8, cfg.ScoreFloor)
	assert.Equal(t, "/data/uploads", cfg.UploadsDir)
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("SCORE_FLOOR", "1.5")

	_, err := Load()
	assert.Error(t, err)
}
