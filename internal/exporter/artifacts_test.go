package exporter

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fuelcli/pkg/contracts/domain"
)

func testExporter() *ArtifactExporter {
	return NewArtifactExporter(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestExportLookup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "PostcodeRegArea.csv")
	metro := "Metro"
	lookup := domain.NewPostcodeLookup([]domain.PostcodeEntry{
		{Postcode: 2000, Region: "Sydney", Area: &metro},
		{Postcode: 2830, Region: "Dubbo"},
	})

	n, err := testExporter().ExportLookup(path, lookup)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Postcode,Region,Area\n2000,Sydney,Metro\n2830,Dubbo,\n", string(raw))
}

func TestExportEnriched(t *testing.T) {
	path := filepath.Join(t.TempDir(), "PriceNew_201706.csv")
	region, area := "Sydney", "Metro"
	vDiff, adj := -2.34, 148.6

	table := &domain.EnrichedTable{
		Months:  []string{"1706"},
		Columns: []string{"ServiceStationName", "Price"},
		Rows: []domain.EnrichedPriceRow{
			{
				RawPriceRow: domain.RawPriceRow{Cells: []string{"Caltex", "150.9"}},
				Pdate:       "2017-06-05", Ptime: "14:30:15", MonthYear: "Jun-17", YearMonth: "2017-06",
				Weekday: "Monday", AMPM: "PM", SeasonCode: "17B", SeasonName: "Winter",
				Region: &region, Area: &area, VDiff: &vDiff, AdjPrice: &adj,
			},
			{
				RawPriceRow: domain.RawPriceRow{Cells: []string{"BP", "140"}},
				Pdate:       "2017-06-06", Ptime: "09:00:00", MonthYear: "Jun-17", YearMonth: "2017-06",
				Weekday: "Tuesday", AMPM: "AM", SeasonCode: "17B", SeasonName: "Winter",
			},
		},
	}

	n, err := testExporter().ExportEnriched(path, table)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	records := readCSV(t, path)
	require.Len(t, records, 3)
	assert.Equal(t, []string{
		"ServiceStationName", "Price", "Pdate", "Ptime", "MonthYear", "YearMonth", "Weekday", "AMPM",
		"SeasonCode", "SeasonName", "Region", "Area", "vDiff", "AdjPrice",
	}, records[0])
	assert.Equal(t, []string{
		"Caltex", "150.9", "2017-06-05", "14:30:15", "Jun-17", "2017-06", "Monday", "PM",
		"17B", "Winter", "Sydney", "Metro", "-2.34", "148.6",
	}, records[1])
	assert.Equal(t, []string{"", "", "", ""}, records[2][10:])
}

func TestExportCombinedAndRanked(t *testing.T) {
	dir := t.TempDir()
	adj := 148.6
	one := 1

	combined := &domain.CombinedTable{
		Columns: []string{"ServiceStationName", "FuelCode", "Pdate", "MonthYear", "YearMonth", "AdjPrice"},
		Rows: []domain.CombinedRow{{
			Cells:       []string{"S", "U91", "2017-06-05", "Jun-17", "2017-06", "148.6"},
			StationName: "S", FuelCode: "U91", Pdate: "2017-06-05", YearMonth: "2017-06", AdjPrice: &adj,
		}},
	}

	n, err := testExporter().ExportCombined(filepath.Join(dir, "PriceNew_15.csv"), combined)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, [][]string{combined.Columns, combined.Rows[0].Cells}, readCSV(t, filepath.Join(dir, "PriceNew_15.csv")))

	ranked := &domain.RankedTable{
		Columns: combined.Columns,
		Rows: []domain.RankedPriceRow{{
			CombinedRow: combined.Rows[0], WeekLabel: "17W23", WeekRank: &one, MonthRank: &one,
		}},
	}

	n, err = testExporter().ExportRanked(filepath.Join(dir, "PriceRank15.csv"), ranked)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	raw, err := os.ReadFile(filepath.Join(dir, "PriceRank15.csv"))
	require.NoError(t, err)
	assert.Equal(t,
		"ServiceStationName,FuelCode,Pdate,YearMonth,AdjPrice,Weeknum,WeekRank,MonthRank\n"+
			"S,U91,2017-06-05,2017-06,148.6,17W23,1,1\n",
		string(raw))
}
