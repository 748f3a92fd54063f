package dataprocessing

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	apperrors "fuelcli/internal/errors"
	"fuelcli/pkg/contracts/domain"
)

// WeekLabel formats date as "<yy>W<ww>": two-digit calendar year and
// Monday-based week of year. Days before the year's first Monday are week 00.
func WeekLabel(date time.Time) string {
	mondayIndex := (int(date.Weekday()) + 6) % 7
	week := (date.YearDay() - 1 + 7 - mondayIndex) / 7
	return fmt.Sprintf("%02dW%02d", date.Year()%100, week)
}

// rankKey selects the window a row is ranked within.
type rankKey func(row *domain.RankedPriceRow) string

func weekWindow(row *domain.RankedPriceRow) string  { return row.WeekLabel }
func monthWindow(row *domain.RankedPriceRow) string { return row.YearMonth }

// ComputeWeekRank sorts rows by (station, fuel, week, adjusted price) and sets
// WeekRank to the dense rank within each (station, fuel, week) group. It
// returns the sorted rows and the number left unranked.
func ComputeWeekRank(rows []domain.RankedPriceRow) ([]domain.RankedPriceRow, int) {
	return denseRank(rows, weekWindow, func(row *domain.RankedPriceRow, rank *int) { row.WeekRank = rank })
}

// ComputeMonthRank is ComputeWeekRank over (station, fuel, year-month).
func ComputeMonthRank(rows []domain.RankedPriceRow) ([]domain.RankedPriceRow, int) {
	return denseRank(rows, monthWindow, func(row *domain.RankedPriceRow, rank *int) { row.MonthRank = rank })
}

// denseRank ranks adjusted prices ascending. Rows without an adjusted price
// sort last in their group, get a nil rank and do not consume a rank.
func denseRank(rows []domain.RankedPriceRow, window rankKey, set func(*domain.RankedPriceRow, *int)) ([]domain.RankedPriceRow, int) {
	sorted := append([]domain.RankedPriceRow(nil), rows...)

	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := &sorted[i], &sorted[j]
		if a.StationName != b.StationName {
			return a.StationName < b.StationName
		}
		if a.FuelCode != b.FuelCode {
			return a.FuelCode < b.FuelCode
		}
		if wa, wb := window(a), window(b); wa != wb {
			return wa < wb
		}
		switch {
		case a.AdjPrice == nil:
			return false
		case b.AdjPrice == nil:
			return true
		default:
			return *a.AdjPrice < *b.AdjPrice
		}
	})

	unranked := 0
	rank := 0
	var prevGroup string
	var prevPrice *float64
	for i := range sorted {
		row := &sorted[i]
		group := row.StationName + "\x00" + row.FuelCode + "\x00" + window(row)
		if i == 0 || group != prevGroup {
			rank = 0
			prevPrice = nil
			prevGroup = group
		}

		if row.AdjPrice == nil {
			unranked++
			set(row, nil)
			continue
		}
		if prevPrice == nil || *row.AdjPrice != *prevPrice {
			rank++
			prevPrice = row.AdjPrice
		}
		r := rank
		set(row, &r)
	}

	return sorted, unranked
}

// RankStats summarises one ranking run.
type RankStats struct {
	Rows           int
	UnrankedWeek   int
	UnrankedMonth  int
	UnrankedGroups []string
}

// RankComputer assigns week and month dense ranks to the combined table.
type RankComputer struct {
	logger *slog.Logger
}

// NewRankComputer creates a RankComputer. A nil logger uses slog.Default.
func NewRankComputer(logger *slog.Logger) *RankComputer {
	if logger == nil {
		logger = slog.Default()
	}
	return &RankComputer{logger: logger}
}

// Rank labels each row with its week, ranks by week and then by month. The
// returned rows are in month-pass order.
func (c *RankComputer) Rank(ctx context.Context, table *domain.CombinedTable) (*domain.RankedTable, *RankStats, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	rows := make([]domain.RankedPriceRow, len(table.Rows))
	for i, row := range table.Rows {
		date, err := time.Parse(PdateLayout, strings.TrimSpace(row.Pdate))
		if err != nil {
			return nil, nil, apperrors.NewParsingError(fmt.Sprintf("row %d: invalid %s %q", i+1, domain.ColumnPdate, row.Pdate), err)
		}
		rows[i] = domain.RankedPriceRow{
			CombinedRow: row,
			WeekLabel:   WeekLabel(date),
		}
	}

	rows, unrankedWeek := ComputeWeekRank(rows)
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	rows, unrankedMonth := ComputeMonthRank(rows)

	stats := &RankStats{
		Rows:          len(rows),
		UnrankedWeek:  unrankedWeek,
		UnrankedMonth: unrankedMonth,
	}

	seen := make(map[string]bool)
	for i := range rows {
		if rows[i].AdjPrice != nil {
			continue
		}
		group := rows[i].StationName + "/" + rows[i].FuelCode + "/" + rows[i].YearMonth
		if seen[group] {
			continue
		}
		seen[group] = true
		stats.UnrankedGroups = append(stats.UnrankedGroups, group)
		if len(stats.UnrankedGroups) <= maxLoggedMisses {
			c.logger.DebugContext(ctx, "Unrankable rows",
				slog.Any("error", apperrors.NewRankInputError(group, "adjusted price is missing")))
		}
	}

	if unrankedMonth > 0 {
		c.logger.WarnContext(ctx, "Rows left unranked",
			slog.Int("rows", unrankedMonth),
			slog.Int("groups", len(stats.UnrankedGroups)))
	}

	c.logger.InfoContext(ctx, "Ranking complete",
		slog.Int("rows", stats.Rows),
		slog.Int("unranked_week", unrankedWeek),
		slog.Int("unranked_month", unrankedMonth))

	return &domain.RankedTable{
		Columns: append([]string(nil), table.Columns...),
		Rows:    rows,
	}, stats, nil
}

// RankedHeader returns the ranked artifact header: the combined columns without
// MonthYear, then Weeknum, WeekRank and MonthRank.
func RankedHeader(table *domain.RankedTable) []string {
	header := make([]string, 0, len(table.Columns)+3)
	for _, c := range table.Columns {
		if c == domain.ColumnMonthYear {
			continue
		}
		header = append(header, c)
	}
	return append(header, domain.ColumnWeeknum, domain.ColumnWeekRank, domain.ColumnMonthRank)
}

// RankedRecords renders the rows aligned with RankedHeader.
func RankedRecords(table *domain.RankedTable) [][]string {
	skip := -1
	for i, c := range table.Columns {
		if c == domain.ColumnMonthYear {
			skip = i
			break
		}
	}

	records := make([][]string, 0, len(table.Rows))
	for _, row := range table.Rows {
		record := make([]string, 0, len(row.Cells)+3)
		for i, cell := range row.Cells {
			if i == skip {
				continue
			}
			record = append(record, cell)
		}
		record = append(record,
			row.WeekLabel,
			FormatOptionalInt(row.WeekRank),
			FormatOptionalInt(row.MonthRank),
		)
		records = append(records, record)
	}
	return records
}
