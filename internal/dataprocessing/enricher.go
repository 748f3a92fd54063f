package dataprocessing

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	apperrors "fuelcli/internal/errors"
	"fuelcli/pkg/contracts/domain"
)

// maxLoggedMisses caps how many distinct missing keys are logged per month.
const maxLoggedMisses = 20

// Columns dropped from the combined table.
var finalizeDroppedColumns = map[string]bool{
	domain.ColumnPriceUpdatedDate: true,
	domain.ColumnAddress:          true,
	domain.ColumnRegion:           true,
	domain.ColumnVDiff:            true,
}

// SnapshotLoader loads the raw snapshot for one window month.
type SnapshotLoader interface {
	LoadSnapshot(ctx context.Context, month string) (*domain.PriceSnapshot, error)
}

// SnapshotLoaderFunc adapts a function to SnapshotLoader.
type SnapshotLoaderFunc func(ctx context.Context, month string) (*domain.PriceSnapshot, error)

// LoadSnapshot calls f.
func (f SnapshotLoaderFunc) LoadSnapshot(ctx context.Context, month string) (*domain.PriceSnapshot, error) {
	return f(ctx, month)
}

// TableSink receives each enriched month as soon as it is complete.
type TableSink func(ctx context.Context, table *domain.EnrichedTable) error

// JoinMissStats counts left-join misses. Misses are not errors: the affected
// attributes are nil and the row is kept.
type JoinMissStats struct {
	Rows             int
	PostcodeMisses   int
	AdjustmentMisses int
	MissedPostcodes  []int
	MissedDates      []string
}

// Add accumulates other into s.
func (s *JoinMissStats) Add(other *JoinMissStats) {
	if other == nil {
		return
	}
	s.Rows += other.Rows
	s.PostcodeMisses += other.PostcodeMisses
	s.AdjustmentMisses += other.AdjustmentMisses
	s.MissedPostcodes = append(s.MissedPostcodes, other.MissedPostcodes...)
	s.MissedDates = append(s.MissedDates, other.MissedDates...)
}

// Enricher adds temporal, seasonal, regional and price-adjustment attributes
// to monthly snapshots.
type Enricher struct {
	seasons     *SeasonTable
	lookup      *domain.PostcodeLookup
	adjustments map[string]float64
	logger      *slog.Logger
}

// NewEnricher creates an Enricher. Adjustment dates must be unique.
func NewEnricher(seasons *SeasonTable, lookup *domain.PostcodeLookup, adjustments []domain.PriceAdjustment, logger *slog.Logger) *Enricher {
	if logger == nil {
		logger = slog.Default()
	}
	byDate := make(map[string]float64, len(adjustments))
	for _, a := range adjustments {
		byDate[a.Date] = a.VDiff
	}
	return &Enricher{
		seasons:     seasons,
		lookup:      lookup,
		adjustments: byDate,
		logger:      logger,
	}
}

// Enrich derives the enrichment attributes for every row of one snapshot.
// A month outside the season table fails; join misses leave nil attributes.
func (e *Enricher) Enrich(ctx context.Context, snapshot *domain.PriceSnapshot) (*domain.EnrichedTable, *JoinMissStats, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	seasonCode, seasonName, err := e.seasons.Lookup(snapshot.Month)
	if err != nil {
		return nil, nil, err
	}

	stats := &JoinMissStats{Rows: len(snapshot.Rows)}
	seenPostcode := make(map[int]bool)
	seenDate := make(map[string]bool)

	rows := make([]domain.EnrichedPriceRow, len(snapshot.Rows))
	for i, raw := range snapshot.Rows {
		ts := raw.PriceUpdatedDate
		row := domain.EnrichedPriceRow{
			RawPriceRow: raw,
			Pdate:       ts.Format(PdateLayout),
			Ptime:       ts.Format(PtimeLayout),
			MonthYear:   ts.Format(MonthYearLayout),
			YearMonth:   ts.Format(YearMonthLayout),
			Weekday:     ts.Weekday().String(),
			AMPM:        ts.Format(AMPMLayout),
			SeasonCode:  seasonCode,
			SeasonName:  seasonName,
		}

		if entry, ok := e.lookup.Get(raw.Postcode); ok {
			region := entry.Region
			row.Region = &region
			row.Area = entry.Area
		} else {
			stats.PostcodeMisses++
			if !seenPostcode[raw.Postcode] {
				seenPostcode[raw.Postcode] = true
				stats.MissedPostcodes = append(stats.MissedPostcodes, raw.Postcode)
			}
		}

		if vDiff, ok := e.adjustments[row.Pdate]; ok {
			adj := RoundTenths(raw.Price + vDiff)
			row.VDiff = &vDiff
			row.AdjPrice = &adj
		} else {
			stats.AdjustmentMisses++
			if !seenDate[row.Pdate] {
				seenDate[row.Pdate] = true
				stats.MissedDates = append(stats.MissedDates, row.Pdate)
			}
		}

		rows[i] = row
	}

	e.logMisses(ctx, snapshot.Month, stats)

	return &domain.EnrichedTable{
		Months:  []string{snapshot.Month},
		Columns: append([]string(nil), snapshot.Columns...),
		Rows:    rows,
	}, stats, nil
}

func (e *Enricher) logMisses(ctx context.Context, month string, stats *JoinMissStats) {
	for i, pc := range stats.MissedPostcodes {
		if i == maxLoggedMisses {
			break
		}
		e.logger.DebugContext(ctx, "Join miss",
			slog.String("month", month),
			slog.Any("error", apperrors.NewJoinMissError("postcode", strconv.Itoa(pc))))
	}
	for i, d := range stats.MissedDates {
		if i == maxLoggedMisses {
			break
		}
		e.logger.DebugContext(ctx, "Join miss",
			slog.String("month", month),
			slog.Any("error", apperrors.NewJoinMissError("adjustment date", d)))
	}
	if stats.PostcodeMisses > 0 || stats.AdjustmentMisses > 0 {
		e.logger.WarnContext(ctx, "Rows with unmatched joins",
			slog.String("month", month),
			slog.Int("rows", stats.Rows),
			slog.Int("postcode_misses", stats.PostcodeMisses),
			slog.Int("adjustment_misses", stats.AdjustmentMisses))
	}
}

// EnrichWindow enriches every window month in order. Each month is handed to
// sink before the next is loaded; the per-month tables are returned in order.
func (e *Enricher) EnrichWindow(ctx context.Context, loader SnapshotLoader, sink TableSink) ([]*domain.EnrichedTable, *JoinMissStats, error) {
	months := e.seasons.Months()
	tables := make([]*domain.EnrichedTable, 0, len(months))
	total := &JoinMissStats{}

	for _, month := range months {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}

		snapshot, err := loader.LoadSnapshot(ctx, month)
		if err != nil {
			return nil, nil, err
		}

		e.logger.InfoContext(ctx, "Snapshot loaded",
			slog.String("month", month),
			slog.Int("rows", len(snapshot.Rows)))
		e.logger.DebugContext(ctx, "Column headings",
			slog.String("month", month),
			slog.Any("columns", snapshot.Columns))

		table, stats, err := e.Enrich(ctx, snapshot)
		if err != nil {
			return nil, nil, err
		}
		total.Add(stats)

		if sink != nil {
			if err := sink(ctx, table); err != nil {
				return nil, nil, fmt.Errorf("month %s: %w", month, err)
			}
		}

		tables = append(tables, table)
	}

	return tables, total, nil
}

// Combine concatenates enriched tables in order. Source columns are unioned in
// first-seen order; cells missing from a table are empty.
func Combine(tables ...*domain.EnrichedTable) *domain.EnrichedTable {
	combined := &domain.EnrichedTable{}

	index := make(map[string]int)
	for _, t := range tables {
		for _, c := range t.Columns {
			if _, ok := index[c]; !ok {
				index[c] = len(combined.Columns)
				combined.Columns = append(combined.Columns, c)
			}
		}
	}

	for _, t := range tables {
		combined.Months = append(combined.Months, t.Months...)
		aligned := sameColumns(t.Columns, combined.Columns)
		for _, row := range t.Rows {
			if !aligned {
				cells := make([]string, len(combined.Columns))
				for j, c := range t.Columns {
					if j < len(row.Cells) {
						cells[index[c]] = row.Cells[j]
					}
				}
				row.Cells = cells
			}
			combined.Rows = append(combined.Rows, row)
		}
	}

	return combined
}

func sameColumns(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// EnrichedHeader returns the per-month artifact header: source columns then
// the enrichment columns.
func EnrichedHeader(table *domain.EnrichedTable) []string {
	header := make([]string, 0, len(table.Columns)+len(domain.EnrichmentColumns))
	header = append(header, table.Columns...)
	return append(header, domain.EnrichmentColumns...)
}

// EnrichedRecord renders one row aligned with EnrichedHeader.
func EnrichedRecord(row domain.EnrichedPriceRow) []string {
	record := make([]string, 0, len(row.Cells)+len(domain.EnrichmentColumns))
	record = append(record, row.Cells...)
	return append(record, enrichmentCells(row)...)
}

func enrichmentCells(row domain.EnrichedPriceRow) []string {
	return []string{
		row.Pdate,
		row.Ptime,
		row.MonthYear,
		row.YearMonth,
		row.Weekday,
		row.AMPM,
		row.SeasonCode,
		row.SeasonName,
		FormatOptionalString(row.Region),
		FormatOptionalString(row.Area),
		FormatOptionalFloat(row.VDiff),
		FormatOptionalFloat(row.AdjPrice),
	}
}

// Finalize drops the raw timestamp, address, region and vDiff columns and the
// excluded fuel codes. Row order is preserved.
func Finalize(combined *domain.EnrichedTable, exclusions []string) *domain.CombinedTable {
	excluded := make(map[string]bool, len(exclusions))
	for _, code := range exclusions {
		excluded[code] = true
	}

	header := EnrichedHeader(combined)
	keep := make([]int, 0, len(header))
	table := &domain.CombinedTable{}
	for i, c := range header {
		if finalizeDroppedColumns[c] {
			continue
		}
		keep = append(keep, i)
		table.Columns = append(table.Columns, c)
	}

	for _, row := range combined.Rows {
		if excluded[row.FuelCode] {
			continue
		}
		record := EnrichedRecord(row)
		cells := make([]string, len(keep))
		for j, i := range keep {
			if i < len(record) {
				cells[j] = record[i]
			}
		}
		table.Rows = append(table.Rows, domain.CombinedRow{
			Cells:       cells,
			StationName: row.StationName,
			FuelCode:    row.FuelCode,
			Pdate:       row.Pdate,
			YearMonth:   row.YearMonth,
			AdjPrice:    row.AdjPrice,
		})
	}

	return table
}
