// Package dataprocessing implements the three pipeline stages of fuelcli and the
// readers for their inputs.
//
// # Architecture
//
// The package is organized into three stages, each consuming the artifact the
// previous one wrote:
//
// 1. RangeExpander: expands "A - B" postcode range declarations into a
// postcode → region → area lookup, later declarations overriding earlier ones
// 2. Enricher: derives date, time, month, weekday, season, region, area and
// adjusted price for each monthly snapshot, then Combine and Finalize fold the
// months into one table without the excluded fuel codes
// 3. RankComputer: labels each row with its Monday-based week and assigns dense
// ranks of the adjusted price per (station, fuel, week) and (station, fuel, month)
//
// # Usage
//
//	ranges, err := dataprocessing.ReadPostcodeRanges("PostcodeRanges.csv")
//	areas, err := dataprocessing.ReadRegionAreas("RegionArea.csv")
//	result, err := dataprocessing.NewRangeExpander(logger).Expand(ctx, ranges, areas)
//
//	seasons, err := dataprocessing.NewSeasonTable(cfg.Pipeline.Window, cfg.Pipeline.SeasonNames)
//	enricher := dataprocessing.NewEnricher(seasons, result.Lookup, adjustments, logger)
//	tables, stats, err := enricher.EnrichWindow(ctx, loader, sink)
//	combined := dataprocessing.Finalize(dataprocessing.Combine(tables...), cfg.Pipeline.ExcludedFuelCodes)
//
//	ranked, rankStats, err := dataprocessing.NewRankComputer(logger).Rank(ctx, combined)
//
// # Missing values
//
// A postcode absent from the lookup or a date absent from the adjustment table
// is not an error: the dependent attributes are nil, the row is kept and the
// miss is counted. A nil adjusted price is never ranked and never consumes a
// rank.
//
// # Error Handling
//
// Malformed inputs, months outside the season table and missing snapshots are
// returned as *errors.AppError values whose Type identifies the failure.
package dataprocessing
