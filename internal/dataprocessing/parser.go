package dataprocessing

import (
	"encoding/csv"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	apperrors "fuelcli/internal/errors"
	"fuelcli/pkg/contracts/domain"
)

// headerScanRows bounds how far down a sheet the header row is searched for.
const headerScanRows = 20

// snapshotRequiredColumns must all be present in a snapshot header row.
var snapshotRequiredColumns = []string{
	domain.ColumnStationName,
	domain.ColumnPostcode,
	domain.ColumnFuelCode,
	domain.ColumnPriceUpdatedDate,
	domain.ColumnPrice,
}

// timestampLayouts are tried in order for text PriceUpdatedDate cells.
var timestampLayouts = []string{
	TimestampLayout,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"02/01/2006 15:04:05",
	"02/01/2006 15:04",
	"2/01/2006 15:04:05",
	"2/01/2006 15:04",
	"02/01/2006 3:04:05 PM",
	"2/01/2006 3:04:05 PM",
	PdateLayout,
}

// ParseSnapshotFile reads one monthly price snapshot from an .xlsx workbook or
// a .csv file.
func ParseSnapshotFile(filePath, month string) (*domain.PriceSnapshot, error) {
	var rows [][]string
	var xlsxDates bool
	var err error

	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".xlsx", ".xlsm":
		rows, err = readWorkbookRows(filePath)
		xlsxDates = true
	case ".csv":
		rows, err = readCSVRows(filePath)
	default:
		return nil, apperrors.NewParsingError(fmt.Sprintf("unsupported snapshot format %s", filepath.Ext(filePath)), nil).
			WithContext("path", filePath)
	}
	if err != nil {
		return nil, err
	}

	snapshot, err := parseSnapshotRows(rows, xlsxDates)
	if err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			appErr.WithContext("path", filePath).WithContext("month", month)
		}
		return nil, err
	}
	snapshot.Month = month
	snapshot.Source = filePath

	slog.Debug("Snapshot parsed",
		slog.String("month", month),
		slog.String("path", filePath),
		slog.Int("rows", len(snapshot.Rows)))

	return snapshot, nil
}

// readWorkbookRows finds the sheet holding price data and returns its rows
// with raw cell values, so dates come back as Excel serial numbers.
func readWorkbookRows(filePath string) ([][]string, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, apperrors.NewParsingError("failed to open workbook", err).WithContext("path", filePath)
	}
	defer f.Close()

	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name, excelize.Options{RawCellValue: true})
		if err != nil {
			continue
		}
		if headerRow, _ := locateHeader(rows, snapshotRequiredColumns); headerRow >= 0 {
			slog.Debug("Found price data in sheet",
				slog.String("sheet_name", name),
				slog.Int("total_rows", len(rows)),
				slog.Int("header_row", headerRow))
			return rows, nil
		}
	}

	return nil, apperrors.NewParsingError("could not find a sheet with price data", nil).
		WithContext("path", filePath).
		WithContext("required_columns", snapshotRequiredColumns)
}

func readCSVRows(filePath string) ([][]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, apperrors.NewStorageError("failed to open file", err).WithContext("path", filePath)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, apperrors.NewParsingError("failed to read CSV", err).WithContext("path", filePath)
	}
	if len(rows) > 0 && len(rows[0]) > 0 {
		rows[0][0] = strings.TrimPrefix(rows[0][0], "\ufeff")
	}
	return rows, nil
}

// locateHeader returns the first row, within headerScanRows, that names every
// required column, and a map from normalised column name to index.
func locateHeader(rows [][]string, required []string) (int, map[string]int) {
	for i := 0; i < len(rows) && i < headerScanRows; i++ {
		columnMap := make(map[string]int, len(rows[i]))
		for j, header := range rows[i] {
			key := normalizeHeader(header)
			if _, exists := columnMap[key]; !exists && key != "" {
				columnMap[key] = j
			}
		}

		found := true
		for _, col := range required {
			if _, ok := columnMap[normalizeHeader(col)]; !ok {
				found = false
				break
			}
		}
		if found {
			return i, columnMap
		}
	}
	return -1, nil
}

func normalizeHeader(h string) string {
	return strings.ToLower(strings.TrimSpace(h))
}

func parseSnapshotRows(rows [][]string, xlsxDates bool) (*domain.PriceSnapshot, error) {
	headerRow, columnMap := locateHeader(rows, snapshotRequiredColumns)
	if headerRow == -1 {
		return nil, apperrors.NewParsingError("could not find header row in snapshot", nil).
			WithContext("required_columns", snapshotRequiredColumns)
	}

	columns := make([]string, len(rows[headerRow]))
	for i, h := range rows[headerRow] {
		columns[i] = strings.TrimSpace(h)
	}
	// Trailing blank header cells carry no column
	for len(columns) > 0 && columns[len(columns)-1] == "" {
		columns = columns[:len(columns)-1]
	}

	col := func(name string) int { return columnMap[normalizeHeader(name)] }
	stationIdx := col(domain.ColumnStationName)
	postcodeIdx := col(domain.ColumnPostcode)
	fuelIdx := col(domain.ColumnFuelCode)
	dateIdx := col(domain.ColumnPriceUpdatedDate)
	priceIdx := col(domain.ColumnPrice)
	addressIdx, hasAddress := columnMap[normalizeHeader(domain.ColumnAddress)]

	snapshot := &domain.PriceSnapshot{Columns: columns}

	for i := headerRow + 1; i < len(rows); i++ {
		row := rows[i]
		if isBlankRow(row) {
			continue
		}
		line := i + 1

		cells := make([]string, len(columns))
		for j := range cells {
			if j < len(row) {
				cells[j] = strings.TrimSpace(row[j])
			}
		}

		postcode, err := parseIntCell(cells[postcodeIdx])
		if err != nil {
			return nil, apperrors.NewParsingError(fmt.Sprintf("row %d: invalid %s %q", line, domain.ColumnPostcode, cells[postcodeIdx]), err)
		}

		price, err := strconv.ParseFloat(strings.ReplaceAll(cells[priceIdx], ",", ""), 64)
		if err != nil {
			return nil, apperrors.NewParsingError(fmt.Sprintf("row %d: invalid %s %q", line, domain.ColumnPrice, cells[priceIdx]), err)
		}

		updated, err := parseTimestampCell(cells[dateIdx], xlsxDates)
		if err != nil {
			return nil, apperrors.NewParsingError(fmt.Sprintf("row %d: invalid %s %q", line, domain.ColumnPriceUpdatedDate, cells[dateIdx]), err)
		}
		cells[dateIdx] = FormatTimestamp(updated)

		raw := domain.RawPriceRow{
			StationName:      cells[stationIdx],
			FuelCode:         cells[fuelIdx],
			Price:            price,
			Postcode:         postcode,
			PriceUpdatedDate: updated,
			Cells:            cells,
		}
		if hasAddress && addressIdx < len(cells) {
			raw.Address = cells[addressIdx]
		}
		snapshot.Rows = append(snapshot.Rows, raw)
	}

	return snapshot, nil
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// parseIntCell accepts "2000" and the float rendering "2000.0" spreadsheets
// produce for numeric cells.
func parseIntCell(s string) (int, error) {
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if f != float64(int(f)) {
		return 0, fmt.Errorf("not an integer: %s", s)
	}
	return int(f), nil
}

// parseTimestampCell parses an Excel serial date (workbooks) or one of the
// accepted text layouts. Times keep their wall-clock value and are rounded to
// the second.
func parseTimestampCell(s string, xlsxDates bool) (time.Time, error) {
	if xlsxDates {
		if serial, err := strconv.ParseFloat(s, 64); err == nil {
			t, err := excelize.ExcelDateToTime(serial, false)
			if err != nil {
				return time.Time{}, err
			}
			return t.Round(time.Second), nil
		}
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp")
}

// tableReader reads a headed CSV file and resolves required columns.
type tableReader struct {
	path    string
	header  []string
	columns map[string]int
	rows    [][]string
}

func openTable(filePath string, required ...string) (*tableReader, error) {
	rows, err := readCSVRows(filePath)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, apperrors.NewParsingError("file is empty", nil).WithContext("path", filePath)
	}

	t := &tableReader{path: filePath, header: rows[0], columns: make(map[string]int), rows: rows[1:]}
	for i, h := range rows[0] {
		key := normalizeHeader(h)
		if _, exists := t.columns[key]; !exists {
			t.columns[key] = i
		}
	}
	for _, col := range required {
		if _, ok := t.columns[normalizeHeader(col)]; !ok {
			return nil, apperrors.NewParsingError(fmt.Sprintf("missing required column %s", col), nil).
				WithContext("path", filePath)
		}
	}
	return t, nil
}

// cell returns the trimmed value of column name in row, or "".
func (t *tableReader) cell(row []string, name string) string {
	i, ok := t.columns[normalizeHeader(name)]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func (t *tableReader) parseError(line int, format string, args ...interface{}) *apperrors.AppError {
	return apperrors.NewParsingError(fmt.Sprintf("line %d: %s", line, fmt.Sprintf(format, args...)), nil).
		WithContext("path", t.path).
		WithContext("line", line)
}

// ReadPostcodeRanges reads the Range,Region declarations. Line numbers count
// the header as line 1.
func ReadPostcodeRanges(filePath string) ([]domain.PostcodeRange, error) {
	t, err := openTable(filePath, "Range", "Region")
	if err != nil {
		return nil, err
	}

	ranges := make([]domain.PostcodeRange, 0, len(t.rows))
	for i, row := range t.rows {
		if isBlankRow(row) {
			continue
		}
		line := i + 2
		value := t.cell(row, "Range")
		start, end, err := ParseRange(value)
		if err != nil {
			return nil, apperrors.NewRangeParseError(line, value, err).WithContext("path", filePath)
		}
		ranges = append(ranges, domain.PostcodeRange{
			Start:  start,
			End:    end,
			Region: t.cell(row, "Region"),
			Line:   line,
		})
	}

	slog.Debug("Postcode ranges read", slog.String("path", filePath), slog.Int("ranges", len(ranges)))
	return ranges, nil
}

// ReadRegionAreas reads the Region,Area table. Other columns are ignored.
func ReadRegionAreas(filePath string) ([]domain.RegionArea, error) {
	t, err := openTable(filePath, "Region", "Area")
	if err != nil {
		return nil, err
	}

	areas := make([]domain.RegionArea, 0, len(t.rows))
	for _, row := range t.rows {
		if isBlankRow(row) {
			continue
		}
		areas = append(areas, domain.RegionArea{
			Region: t.cell(row, "Region"),
			Area:   t.cell(row, "Area"),
		})
	}
	return areas, nil
}

// ReadPostcodeLookup reads a Postcode,Region,Area artifact. An empty Area is
// nil. Duplicate postcodes are rejected.
func ReadPostcodeLookup(filePath string) (*domain.PostcodeLookup, error) {
	t, err := openTable(filePath, "Postcode", "Region", "Area")
	if err != nil {
		return nil, err
	}

	seen := make(map[int]bool, len(t.rows))
	entries := make([]domain.PostcodeEntry, 0, len(t.rows))
	for i, row := range t.rows {
		if isBlankRow(row) {
			continue
		}
		line := i + 2
		pc, err := parseIntCell(t.cell(row, "Postcode"))
		if err != nil {
			return nil, t.parseError(line, "invalid Postcode %q", t.cell(row, "Postcode"))
		}
		if seen[pc] {
			return nil, t.parseError(line, "duplicate Postcode %d", pc)
		}
		seen[pc] = true

		entry := domain.PostcodeEntry{Postcode: pc, Region: t.cell(row, "Region")}
		if area := t.cell(row, "Area"); area != "" {
			entry.Area = &area
		}
		entries = append(entries, entry)
	}

	return domain.NewPostcodeLookup(entries), nil
}

// ReadAdjustments reads the Pdate,vDiff table. A date listed twice would
// duplicate rows in the join, so it is rejected.
func ReadAdjustments(filePath string) ([]domain.PriceAdjustment, error) {
	t, err := openTable(filePath, domain.ColumnPdate, domain.ColumnVDiff)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(t.rows))
	adjustments := make([]domain.PriceAdjustment, 0, len(t.rows))
	for i, row := range t.rows {
		if isBlankRow(row) {
			continue
		}
		line := i + 2
		date := t.cell(row, domain.ColumnPdate)
		if _, err := time.Parse(PdateLayout, date); err != nil {
			return nil, t.parseError(line, "invalid Pdate %q", date)
		}
		if seen[date] {
			return nil, t.parseError(line, "duplicate Pdate %s", date)
		}
		seen[date] = true

		raw := t.cell(row, domain.ColumnVDiff)
		vDiff, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, t.parseError(line, "invalid vDiff %q", raw)
		}
		adjustments = append(adjustments, domain.PriceAdjustment{Date: date, VDiff: vDiff})
	}

	return adjustments, nil
}

// ReadCombinedTable reads the combined enriched artifact. Cells are kept
// verbatim; an empty AdjPrice is nil.
func ReadCombinedTable(filePath string) (*domain.CombinedTable, error) {
	t, err := openTable(filePath,
		domain.ColumnStationName, domain.ColumnFuelCode, domain.ColumnPdate,
		domain.ColumnYearMonth, domain.ColumnAdjPrice)
	if err != nil {
		return nil, err
	}

	table := &domain.CombinedTable{
		Columns: append([]string(nil), t.header...),
		Rows:    make([]domain.CombinedRow, 0, len(t.rows)),
	}
	for i, row := range t.rows {
		if isBlankRow(row) {
			continue
		}
		line := i + 2

		cells := make([]string, len(t.header))
		copy(cells, row)

		combined := domain.CombinedRow{
			Cells:       cells,
			StationName: t.cell(row, domain.ColumnStationName),
			FuelCode:    t.cell(row, domain.ColumnFuelCode),
			Pdate:       t.cell(row, domain.ColumnPdate),
			YearMonth:   t.cell(row, domain.ColumnYearMonth),
		}
		if raw := t.cell(row, domain.ColumnAdjPrice); raw != "" {
			adj, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return nil, t.parseError(line, "invalid AdjPrice %q", raw)
			}
			combined.AdjPrice = &adj
		}
		table.Rows = append(table.Rows, combined)
	}

	slog.Debug("Combined table read", slog.String("path", filePath), slog.Int("rows", len(table.Rows)))
	return table, nil
}
