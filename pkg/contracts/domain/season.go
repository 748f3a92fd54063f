package domain

// SeasonMonth assigns a season code to one processing-window month.
type SeasonMonth struct {
	Month string `json:"month" yaml:"month" validate:"required,len=4,numeric"` // yymm
	Code  string `json:"code" yaml:"code" validate:"required,len=3"`          // e.g. "17B"
}

// DefaultSeasonNames maps the season letter (third character of a season code)
// to its name.
var DefaultSeasonNames = map[string]string{
	"A": "Autumn",
	"B": "Winter",
	"C": "Spring",
	"D": "Summer",
}

// DefaultExcludedFuelCodes are dropped from the combined and ranked artifacts.
var DefaultExcludedFuelCodes = []string{"CNG", "LPG", "E85", "B20", "EV"}
