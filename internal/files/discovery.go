package files

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"fuelcli/internal/dataprocessing"
	apperrors "fuelcli/internal/errors"
	"fuelcli/pkg/contracts/domain"
)

// snapshotExtensions are tried, in order, when the configured snapshot file is
// absent.
var snapshotExtensions = []string{".xlsx", ".csv"}

// FileInfo represents information about a discovered file
type FileInfo struct {
	Path    string
	Name    string
	Size    int64
	ModTime time.Time
}

// SnapshotPather resolves the configured snapshot path for a month.
type SnapshotPather interface {
	SnapshotPath(month string) string
}

// Discovery locates and loads monthly snapshots.
type Discovery struct {
	paths  SnapshotPather
	logger *slog.Logger
}

// NewDiscovery creates a new file discovery instance
func NewDiscovery(paths SnapshotPather, logger *slog.Logger) *Discovery {
	if logger == nil {
		logger = slog.Default()
	}
	return &Discovery{paths: paths, logger: logger}
}

// FindSnapshot returns the snapshot file for month. The configured path is
// preferred; otherwise the same name with another supported extension.
func (d *Discovery) FindSnapshot(month string) (FileInfo, error) {
	configured := d.paths.SnapshotPath(month)

	candidates := []string{configured}
	base := strings.TrimSuffix(configured, filepath.Ext(configured))
	for _, ext := range snapshotExtensions {
		if alt := base + ext; alt != configured {
			candidates = append(candidates, alt)
		}
	}

	for _, path := range candidates {
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			continue
		}
		if path != configured {
			d.logger.Debug("Using alternate snapshot file",
				slog.String("month", month),
				slog.String("configured", configured),
				slog.String("found", path))
		}
		return FileInfo{
			Path:    path,
			Name:    filepath.Base(path),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		}, nil
	}

	return FileInfo{}, apperrors.NewMissingSnapshotError(month, configured)
}

// MissingSnapshots returns the months, in order, that have no snapshot file.
func (d *Discovery) MissingSnapshots(months []string) []string {
	var missing []string
	for _, month := range months {
		if _, err := d.FindSnapshot(month); err != nil {
			missing = append(missing, month)
		}
	}
	return missing
}

// LoadSnapshot finds and parses the snapshot for month. It satisfies
// dataprocessing.SnapshotLoader.
func (d *Discovery) LoadSnapshot(ctx context.Context, month string) (*domain.PriceSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	file, err := d.FindSnapshot(month)
	if err != nil {
		return nil, err
	}

	d.logger.InfoContext(ctx, "Reading snapshot",
		slog.String("month", month),
		slog.String("file", file.Name),
		slog.Int64("size", file.Size))

	return dataprocessing.ParseSnapshotFile(file.Path, month)
}

var _ dataprocessing.SnapshotLoader = (*Discovery)(nil)
