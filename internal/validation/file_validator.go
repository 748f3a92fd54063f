package validation

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	apperrors "fuelcli/internal/errors"
)

// SnapshotExtensions lists the snapshot formats the parser reads.
var SnapshotExtensions = []string{".xlsx", ".csv"}

// FileValidator checks pipeline inputs and output directories before a step
// starts, so a step fails without writing anything.
type FileValidator struct {
	logger *slog.Logger
}

// NewFileValidator creates a new file validator
func NewFileValidator(logger *slog.Logger) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileValidator{
		logger: logger,
	}
}

// ValidateFile checks that path exists, is a regular file and can be opened.
// A missing file is a NOT_FOUND error.
func (v *FileValidator) ValidateFile(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		v.logger.Error("File does not exist",
			slog.String("file", path))
		return apperrors.NewNotFoundError(path)
	}
	if err != nil {
		v.logger.Error("Failed to stat file",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return apperrors.NewStorageError(fmt.Sprintf("failed to stat file %s", path), err)
	}
	if info.IsDir() {
		v.logger.Error("Path is a directory, not a file",
			slog.String("path", path))
		return apperrors.NewAppValidationError(fmt.Sprintf("%s is a directory, not a file", path))
	}

	file, err := os.Open(path)
	if err != nil {
		v.logger.Error("File is not readable",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return apperrors.NewStorageError(fmt.Sprintf("file %s is not readable", path), err)
	}
	file.Close()

	v.logger.Debug("File validated",
		slog.String("file", path),
		slog.Int64("size", info.Size()))
	return nil
}

// ValidateCSVFile checks a CSV input table
func (v *FileValidator) ValidateCSVFile(path string) error {
	if err := v.ValidateFile(path); err != nil {
		return err
	}

	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".csv" {
		v.logger.Error("File is not a CSV file",
			slog.String("file", path),
			slog.String("extension", ext))
		return apperrors.NewAppValidationError(fmt.Sprintf("file %s is not a CSV file (extension: %s)", path, ext))
	}
	return nil
}

// RequireCSVFiles validates each path in turn and returns the first failure.
func (v *FileValidator) RequireCSVFiles(paths ...string) error {
	for _, p := range paths {
		if err := v.ValidateCSVFile(p); err != nil {
			return err
		}
	}
	return nil
}

// ValidateSnapshotFile checks a monthly snapshot. Spreadsheet lock files
// ("~$" prefix) are rejected.
func (v *FileValidator) ValidateSnapshotFile(path string) error {
	if err := v.ValidateFile(path); err != nil {
		return err
	}

	base := filepath.Base(path)
	if strings.HasPrefix(base, "~$") {
		v.logger.Warn("Rejecting temporary spreadsheet file",
			slog.String("file", path))
		return apperrors.NewAppValidationError(fmt.Sprintf("file %s is a temporary spreadsheet file", path))
	}

	ext := strings.ToLower(filepath.Ext(path))
	for _, allowed := range SnapshotExtensions {
		if ext == allowed {
			return nil
		}
	}
	v.logger.Error("Unsupported snapshot format",
		slog.String("file", path),
		slog.String("extension", ext))
	return apperrors.NewAppValidationError(fmt.Sprintf("file %s is not a supported snapshot (extension: %s)", path, ext))
}

// ValidateOutputDirectory ensures dir exists and is writable
func (v *FileValidator) ValidateOutputDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		v.logger.Error("Failed to create output directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return apperrors.NewStorageError(fmt.Sprintf("failed to create output directory %s", dir), err)
	}

	file, err := os.CreateTemp(dir, ".write_test_*")
	if err != nil {
		v.logger.Error("Output directory is not writable",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return apperrors.NewStorageError(fmt.Sprintf("output directory %s is not writable", dir), err)
	}
	name := file.Name()
	file.Close()
	os.Remove(name)

	v.logger.Debug("Output directory validated",
		slog.String("directory", dir))
	return nil
}

// CountSnapshots counts snapshot files in dir, ignoring subdirectories and
// lock files.
func (v *FileValidator) CountSnapshots(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, apperrors.NewStorageError(fmt.Sprintf("failed to read directory %s", dir), err)
	}

	count := 0
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), "~$") {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		for _, allowed := range SnapshotExtensions {
			if ext == allowed {
				count++
				break
			}
		}
	}

	v.logger.Debug("Snapshots counted",
		slog.String("directory", dir),
		slog.Int("count", count))
	return count, nil
}
