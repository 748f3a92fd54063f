package dataprocessing

import (
	"fmt"

	apperrors "fuelcli/internal/errors"
	"fuelcli/pkg/contracts/domain"
)

// seasonLetterIndex is the position of the season letter in a code like "17B".
const seasonLetterIndex = 2

// SeasonTable maps window months to season codes and season letters to names.
type SeasonTable struct {
	months []string
	codes  map[string]string
	names  map[string]string
}

// NewSeasonTable builds the table from the ordered processing window.
func NewSeasonTable(window []domain.SeasonMonth, names map[string]string) (*SeasonTable, error) {
	t := &SeasonTable{
		months: make([]string, 0, len(window)),
		codes:  make(map[string]string, len(window)),
		names:  make(map[string]string, len(names)),
	}
	for _, m := range window {
		if _, dup := t.codes[m.Month]; dup {
			return nil, apperrors.NewConfigError(fmt.Sprintf("month %s appears twice in the processing window", m.Month), nil)
		}
		t.codes[m.Month] = m.Code
		t.months = append(t.months, m.Month)
	}
	for k, v := range names {
		t.names[k] = v
	}
	return t, nil
}

// Months returns the window months in processing order.
func (t *SeasonTable) Months() []string {
	return append([]string(nil), t.months...)
}

// Lookup returns the season code and name for a month.
func (t *SeasonTable) Lookup(month string) (code, name string, err error) {
	code, ok := t.codes[month]
	if !ok {
		return "", "", apperrors.NewSeasonLookupError(month, "month is outside the processing window")
	}
	if len(code) <= seasonLetterIndex {
		return "", "", apperrors.NewSeasonLookupError(month, fmt.Sprintf("season code %q is too short", code))
	}
	letter := code[seasonLetterIndex : seasonLetterIndex+1]
	name, ok = t.names[letter]
	if !ok {
		return "", "", apperrors.NewSeasonLookupError(month, fmt.Sprintf("season letter %q has no name", letter))
	}
	return code, name, nil
}
