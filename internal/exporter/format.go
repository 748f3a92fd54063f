package exporter

import (
	"strconv"

	"fuelcli/internal/dataprocessing"
	"fuelcli/pkg/contracts/domain"
)

// lookupHeaders is the postcode lookup artifact header.
var lookupHeaders = []string{domain.ColumnPostcode, domain.ColumnRegion, domain.ColumnArea}

// formatLookupEntry renders one postcode lookup row.
func formatLookupEntry(e domain.PostcodeEntry) []string {
	return []string{
		strconv.Itoa(e.Postcode),
		e.Region,
		dataprocessing.FormatOptionalString(e.Area),
	}
}
