package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPaths(t *testing.T) {
	base := t.TempDir()
	paths, err := NewPaths(base)
	require.NoError(t, err)

	assert.Equal(t, base, paths.BaseDir)
	assert.Equal(t, filepath.Join(base, "data", "uploads"), paths.UploadsDir)
	assert.Equal(t, filepath.Join(base, "data", "validated", "validated_raw_data.csv"), paths.ValidatedFile)
	assert.Equal(t, filepath.Join(base, "configs", "audit.log"), paths.AuditLogFile)
}

func TestEnsureDirectories(t *testing.T) {
	paths, err := NewPaths(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, paths.EnsureDirectories())

	for _, dir := range []string{
		paths.UploadsDir,
		paths.ValidatedDir,
		paths.EnvDir("dev"),
		paths.EnvDir("prod"),
		paths.LogsDir,
	} {
		info, err := os.Stat(dir)
		require.NoError(t, err, dir)
		assert.True(t, info.IsDir(), dir)
	}
}

func TestGrainFile(t *testing.T) {
	paths, err := NewPaths(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, paths.WeeklyFile, paths.GrainFile("weekly"))
	assert.Equal(t, paths.MonthlyFile, paths.GrainFile("monthly"))
	assert.Equal(t, paths.DailyFile, paths.GrainFile("daily"))
	assert.Equal(t, paths.DailyFile, paths.GrainFile("anything"))
}

func TestRelativeToBase(t *testing.T) {
	paths, err := NewPaths(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "data/validated/weekly_data.csv", paths.RelativeToBase(paths.WeeklyFile))
}

func TestFileExists(t *testing.T) {
	dir := t.TempDir()

	assert.False(t, FileExists(filepath.Join(dir, "missing.csv")))
	assert.False(t, FileExists(dir))

	path := filepath.Join(dir, "present.csv")
	require.NoError(t, os.WriteFile(path, []byte("a,b\n"), 0o644))
	assert.True(t, FileExists(path))
}
