package domain

import (
	"time"
)

// Source columns read from a FuelCheck price history snapshot.
const (
	ColumnStationName      = "ServiceStationName"
	ColumnAddress          = "Address"
	ColumnPostcode         = "Postcode"
	ColumnFuelCode         = "FuelCode"
	ColumnPriceUpdatedDate = "PriceUpdatedDate"
	ColumnPrice            = "Price"
)

// Columns added by enrichment, in output order.
const (
	ColumnPdate      = "Pdate"
	ColumnPtime      = "Ptime"
	ColumnMonthYear  = "MonthYear"
	ColumnYearMonth  = "YearMonth"
	ColumnWeekday    = "Weekday"
	ColumnAMPM       = "AMPM"
	ColumnSeasonCode = "SeasonCode"
	ColumnSeasonName = "SeasonName"
	ColumnRegion     = "Region"
	ColumnArea       = "Area"
	ColumnVDiff      = "vDiff"
	ColumnAdjPrice   = "AdjPrice"
)

// Columns added by ranking.
const (
	ColumnWeeknum   = "Weeknum"
	ColumnWeekRank  = "WeekRank"
	ColumnMonthRank = "MonthRank"
)

// EnrichmentColumns lists the derived columns appended to every per-month artifact.
var EnrichmentColumns = []string{
	ColumnPdate, ColumnPtime, ColumnMonthYear, ColumnYearMonth, ColumnWeekday, ColumnAMPM,
	ColumnSeasonCode, ColumnSeasonName, ColumnRegion, ColumnArea, ColumnVDiff, ColumnAdjPrice,
}

// PriceAdjustment is a per-date price correction.
type PriceAdjustment struct {
	Date  string  `json:"date" validate:"required,datetime=2006-01-02"`
	VDiff float64 `json:"v_diff"`
}

// RawPriceRow is one observed price at a station and time.
// Cells holds every source column verbatim, aligned with PriceSnapshot.Columns.
type RawPriceRow struct {
	StationName      string    `json:"station_name"`
	Address          string    `json:"address"`
	FuelCode         string    `json:"fuel_code"`
	Price            float64   `json:"price"`
	Postcode         int       `json:"postcode"`
	PriceUpdatedDate time.Time `json:"price_updated_date"`
	Cells            []string  `json:"-"`
}

// PriceSnapshot is one month of raw price observations.
type PriceSnapshot struct {
	Month   string        `json:"month"` // yymm
	Source  string        `json:"source"`
	Columns []string      `json:"columns"`
	Rows    []RawPriceRow `json:"rows"`
}

// EnrichedPriceRow is a raw row plus the derived temporal, seasonal, regional and
// price-adjustment attributes. Nil pointers are join misses.
type EnrichedPriceRow struct {
	RawPriceRow

	Pdate      string   `json:"pdate"`
	Ptime      string   `json:"ptime"`
	MonthYear  string   `json:"month_year"`
	YearMonth  string   `json:"year_month"`
	Weekday    string   `json:"weekday"`
	AMPM       string   `json:"ampm"`
	SeasonCode string   `json:"season_code"`
	SeasonName string   `json:"season_name"`
	Region     *string  `json:"region,omitempty"`
	Area       *string  `json:"area,omitempty"`
	VDiff      *float64 `json:"v_diff,omitempty"`
	AdjPrice   *float64 `json:"adj_price,omitempty"`
}

// EnrichedTable is the enriched form of one or more snapshots.
// Columns are the source columns shared by every row's Cells.
type EnrichedTable struct {
	Months  []string           `json:"months"`
	Columns []string           `json:"columns"`
	Rows    []EnrichedPriceRow `json:"rows"`
}

// CombinedRow is one row of the combined artifact. Cells are aligned with
// CombinedTable.Columns; the remaining fields are the keys ranking needs.
type CombinedRow struct {
	Cells       []string `json:"-"`
	StationName string   `json:"station_name"`
	FuelCode    string   `json:"fuel_code"`
	Pdate       string   `json:"pdate"`
	YearMonth   string   `json:"year_month"`
	AdjPrice    *float64 `json:"adj_price,omitempty"`
}

// CombinedTable is the multi-month enriched table after column pruning and
// fuel-code exclusion.
type CombinedTable struct {
	Columns []string      `json:"columns"`
	Rows    []CombinedRow `json:"rows"`
}

// RankedPriceRow is a combined row with its week label and dense ranks.
// A nil rank marks a row whose AdjPrice is null and therefore unrankable.
type RankedPriceRow struct {
	CombinedRow

	WeekLabel string `json:"week_label"`
	WeekRank  *int   `json:"week_rank,omitempty"`
	MonthRank *int   `json:"month_rank,omitempty"`
}

// RankedTable is the final ranked dataset. Columns are the combined columns the
// row cells are aligned with; MonthYear is dropped when the table is written.
type RankedTable struct {
	Columns []string         `json:"columns"`
	Rows    []RankedPriceRow `json:"rows"`
}
