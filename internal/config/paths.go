package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Paths contains every resolved input and artifact path.
// This is the single source of truth for file locations in the pipeline.
type Paths struct {
	DataDir     string
	SnapshotDir string
	OutputDir   string
	LogsDir     string

	PostcodeRangesFile string
	RegionAreaFile     string
	PostcodeLookupFile string
	AdjustmentsFile    string
	CombinedFile       string
	RankedFile         string

	snapshotPattern string
	monthlyPattern  string
}

// ResolvePaths resolves the configured paths. DataDir is taken relative to
// the working directory; everything else relative to DataDir.
func ResolvePaths(cfg PathsConfig) (*Paths, error) {
	dataDir, err := filepath.Abs(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data dir %s: %w", cfg.DataDir, err)
	}

	snapshotDir := under(dataDir, cfg.SnapshotDir)
	outputDir := under(dataDir, cfg.OutputDir)

	return &Paths{
		DataDir:     dataDir,
		SnapshotDir: snapshotDir,
		OutputDir:   outputDir,
		LogsDir:     under(dataDir, cfg.LogsDir),

		PostcodeRangesFile: under(dataDir, cfg.PostcodeRangesFile),
		RegionAreaFile:     under(dataDir, cfg.RegionAreaFile),
		PostcodeLookupFile: under(dataDir, cfg.PostcodeLookupFile),
		AdjustmentsFile:    under(dataDir, cfg.AdjustmentsFile),
		CombinedFile:       under(outputDir, cfg.CombinedFile),
		RankedFile:         under(outputDir, cfg.RankedFile),

		snapshotPattern: cfg.SnapshotPattern,
		monthlyPattern:  cfg.MonthlyPattern,
	}, nil
}

func under(base, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}

// SnapshotPath returns the raw snapshot file for a yymm month id.
func (p *Paths) SnapshotPath(month string) string {
	return filepath.Join(p.SnapshotDir, fmt.Sprintf(p.snapshotPattern, month))
}

// MonthlyOutputPath returns the per-month enriched artifact for a yymm month id.
func (p *Paths) MonthlyOutputPath(month string) string {
	return filepath.Join(p.OutputDir, fmt.Sprintf(p.monthlyPattern, month))
}

// GetLogPath returns the path for a log file
func (p *Paths) GetLogPath(filename string) string {
	return filepath.Join(p.LogsDir, filename)
}

// EnsureDirectories creates the artifact directories if they don't exist.
// Input directories are never created.
func (p *Paths) EnsureDirectories() error {
	directories := []string{
		p.OutputDir,
		filepath.Dir(p.PostcodeLookupFile),
		filepath.Dir(p.CombinedFile),
		filepath.Dir(p.RankedFile),
	}

	for _, dir := range directories {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %v", dir, err)
		}
		slog.Debug("Ensured directory exists", slog.String("directory", dir))
	}

	return nil
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}

// LogPathResolution logs detailed path resolution information for debugging
func (p *Paths) LogPathResolution(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("Path resolution summary",
		slog.Group("directories",
			slog.String("data", p.DataDir),
			slog.String("snapshots", p.SnapshotDir),
			slog.String("output", p.OutputDir),
			slog.String("logs", p.LogsDir),
		),
		slog.Group("inputs",
			slog.String("postcode_ranges", p.PostcodeRangesFile),
			slog.String("region_area", p.RegionAreaFile),
			slog.String("adjustments", p.AdjustmentsFile),
			slog.String("snapshot_pattern", p.snapshotPattern),
		),
		slog.Group("artifacts",
			slog.String("postcode_lookup", p.PostcodeLookupFile),
			slog.String("monthly_pattern", p.monthlyPattern),
			slog.String("combined", p.CombinedFile),
			slog.String("ranked", p.RankedFile),
		))
}
