package files

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"forecastwb/internal/config"
)

func TestSweepOnceRemovesOnlyExpiredCSVs(t *testing.T) {
	paths, err := config.NewPaths(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, paths.EnsureDirectories())

	stale := filepath.Join(paths.UploadsDir, "stale.csv")
	fresh := filepath.Join(paths.UploadsDir, "fresh.csv")
	marker := filepath.Join(paths.UploadsDir, "latest_upload.json")
	require.NoError(t, os.WriteFile(stale, []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(fresh, []byte("y"), 0o644))
	require.NoError(t, os.WriteFile(marker, []byte("{}"), 0o644))

	old := time.Now().Add(-3 * time.Hour)
	require.NoError(t, os.Chtimes(stale, old, old))
	require.NoError(t, os.Chtimes(marker, old, old))

	sweeper := NewRetentionSweeper(nil, paths, config.UploadsConfig{
		RetentionWindow: 2 * time.Hour,
		SweepInterval:   time.Minute,
	})
	sweeper.SweepOnce(context.Background())

	assert.NoFileExists(t, stale)
	assert.FileExists(t, fresh)
	assert.FileExists(t, marker, "only CSVs are swept")
}

func TestSweeperStartStop(t *testing.T) {
	paths, err := config.NewPaths(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, paths.EnsureDirectories())

	stale := filepath.Join(paths.UploadsDir, "stale.csv")
	require.NoError(t, os.WriteFile(stale, []byte("x"), 0o644))
	old := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(stale, old, old))

	sweeper := NewRetentionSweeper(nil, paths, config.UploadsConfig{
		RetentionWindow: time.Minute,
		SweepInterval:   time.Hour,
	})
	sweeper.Start(context.Background())
	sweeper.Start(context.Background()) // second call is a no-op
	sweeper.Stop()

	assert.NoFileExists(t, stale, "initial sweep runs before the first tick")

	// Stopping twice must not panic.
	sweeper.Stop()
}
