package exporter

import (
	"fmt"
	"log/slog"

	"fuelcli/internal/dataprocessing"
	"fuelcli/pkg/contracts/domain"
)

// ArtifactExporter writes the pipeline's tabular artifacts.
type ArtifactExporter struct {
	writer *CSVWriter
	logger *slog.Logger
}

// NewArtifactExporter creates an exporter. A nil logger uses slog.Default.
func NewArtifactExporter(logger *slog.Logger) *ArtifactExporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &ArtifactExporter{writer: NewCSVWriter(logger), logger: logger}
}

// ExportLookup writes Postcode,Region,Area and returns the row count.
func (e *ArtifactExporter) ExportLookup(path string, lookup *domain.PostcodeLookup) (int, error) {
	stream, err := e.writer.CreateStreamWriter(path, lookupHeaders)
	if err != nil {
		return 0, err
	}
	for _, entry := range lookup.Entries {
		if err := stream.WriteRecord(formatLookupEntry(entry)); err != nil {
			stream.Abort()
			return 0, fmt.Errorf("failed to write postcode %d: %w", entry.Postcode, err)
		}
	}
	return e.finish(path, stream)
}

// ExportEnriched writes one month's enriched table: the source columns then
// the enrichment columns.
func (e *ArtifactExporter) ExportEnriched(path string, table *domain.EnrichedTable) (int, error) {
	stream, err := e.writer.CreateStreamWriter(path, dataprocessing.EnrichedHeader(table))
	if err != nil {
		return 0, err
	}
	for i, row := range table.Rows {
		if err := stream.WriteRecord(dataprocessing.EnrichedRecord(row)); err != nil {
			stream.Abort()
			return 0, fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}
	return e.finish(path, stream)
}

// ExportCombined writes the combined table.
func (e *ArtifactExporter) ExportCombined(path string, table *domain.CombinedTable) (int, error) {
	stream, err := e.writer.CreateStreamWriter(path, table.Columns)
	if err != nil {
		return 0, err
	}
	for i, row := range table.Rows {
		if err := stream.WriteRecord(row.Cells); err != nil {
			stream.Abort()
			return 0, fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}
	return e.finish(path, stream)
}

// ExportRanked writes the ranked table without MonthYear and with the
// Weeknum, WeekRank and MonthRank columns.
func (e *ArtifactExporter) ExportRanked(path string, table *domain.RankedTable) (int, error) {
	records := dataprocessing.RankedRecords(table)
	if err := e.writer.WriteSimpleCSV(path, dataprocessing.RankedHeader(table), records); err != nil {
		return 0, err
	}
	return len(records), nil
}

func (e *ArtifactExporter) finish(path string, stream *StreamWriter) (int, error) {
	if err := stream.Close(); err != nil {
		return 0, err
	}
	e.logger.Info("Artifact written",
		slog.String("file_path", path),
		slog.Int("rows", stream.Count()))
	return stream.Count(), nil
}
