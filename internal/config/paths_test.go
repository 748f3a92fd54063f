package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolvePaths(t *testing.T) {
	dataDir := t.TempDir()
	cfg := Default().Paths
	cfg.DataDir = dataDir
	cfg.OutputDir = "out"

	paths, err := ResolvePaths(cfg)
	require.NoError(t, err)

	assert.Equal(t, dataDir, paths.DataDir)
	assert.Equal(t, filepath.Join(dataDir, "FuelCheck"), paths.SnapshotDir)
	assert.Equal(t, filepath.Join(dataDir, "out"), paths.OutputDir)
	assert.Equal(t, filepath.Join(dataDir, "PostcodeRanges.csv"), paths.PostcodeRangesFile)
	assert.Equal(t, filepath.Join(dataDir, "PostcodeRegArea.csv"), paths.PostcodeLookupFile)
	assert.Equal(t, filepath.Join(dataDir, "out", "PriceNew_15.csv"), paths.CombinedFile)
	assert.Equal(t, filepath.Join(dataDir, "out", "PriceRank15.csv"), paths.RankedFile)

	assert.Equal(t, filepath.Join(dataDir, "FuelCheck", "pricehist_201706.xlsx"), paths.SnapshotPath("1706"))
	assert.Equal(t, filepath.Join(dataDir, "out", "PriceNew_201808.csv"), paths.MonthlyOutputPath("1808"))
	assert.Equal(t, filepath.Join(dataDir, "logs", "run.log"), paths.GetLogPath("run.log"))
}

func TestResolvePathsAbsoluteOverrides(t *testing.T) {
	dataDir := t.TempDir()
	elsewhere := t.TempDir()

	cfg := Default().Paths
	cfg.DataDir = dataDir
	cfg.SnapshotDir = elsewhere
	cfg.RankedFile = filepath.Join(elsewhere, "ranked.csv")

	paths, err := ResolvePaths(cfg)
	require.NoError(t, err)
	assert.Equal(t, elsewhere, paths.SnapshotDir)
	assert.Equal(t, filepath.Join(elsewhere, "ranked.csv"), paths.RankedFile)
}

func TestEnsureDirectories(t *testing.T) {
	dataDir := t.TempDir()
	cfg := Default().Paths
	cfg.DataDir = dataDir
	cfg.OutputDir = "out"
	cfg.PostcodeLookupFile = "derived/PostcodeRegArea.csv"

	paths, err := ResolvePaths(cfg)
	require.NoError(t, err)
	require.NoError(t, paths.EnsureDirectories())

	assert.DirExists(t, filepath.Join(dataDir, "out"))
	assert.DirExists(t, filepath.Join(dataDir, "derived"))
	// Input directories are never created
	assert.NoDirExists(t, paths.SnapshotDir)
}

func TestFileExists(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "vDiff.csv")
	require.NoError(t, os.WriteFile(file, []byte("Pdate,vDiff\n"), 0644))

	assert.True(t, FileExists(file))
	assert.True(t, FileExists(dir))
	assert.False(t, FileExists(filepath.Join(dir, "missing.csv")))
}
