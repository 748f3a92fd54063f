package dataprocessing

import (
	"math"
	"strconv"
	"time"
)

// TimestampLayout is how PriceUpdatedDate is rendered in artifacts.
const TimestampLayout = "2006-01-02 15:04:05"

// Layouts for the derived temporal columns.
const (
	PdateLayout     = "2006-01-02"
	PtimeLayout     = "15:04:05"
	MonthYearLayout = "Jan-06"
	YearMonthLayout = "2006-01"
	AMPMLayout      = "PM"
)

// RoundTenths rounds to one decimal place, half to even.
func RoundTenths(f float64) float64 {
	return math.RoundToEven(f*10) / 10
}

// FormatFloat renders f with the fewest digits that round-trip.
func FormatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// FormatOptionalFloat renders nil as an empty cell.
func FormatOptionalFloat(f *float64) string {
	if f == nil {
		return ""
	}
	return FormatFloat(*f)
}

// FormatOptionalString renders nil as an empty cell.
func FormatOptionalString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// FormatOptionalInt renders nil as an empty cell.
func FormatOptionalInt(i *int) string {
	if i == nil {
		return ""
	}
	return strconv.Itoa(*i)
}

// FormatTimestamp renders a price update time in artifact form.
func FormatTimestamp(t time.Time) string {
	return t.Format(TimestampLayout)
}
