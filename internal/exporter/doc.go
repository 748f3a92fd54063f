// Package exporter writes the fuelcli pipeline artifacts as CSV.
//
// CSVWriter is the core writer. Files are written to a temporary file in the
// destination directory and renamed on success; StreamWriter exposes the same
// behaviour row by row.
//
// ArtifactExporter renders each domain table in its artifact layout:
//
//	exp := exporter.NewArtifactExporter(logger)
//	n, err := exp.ExportLookup(paths.PostcodeLookupFile, result.Lookup)
//	n, err = exp.ExportEnriched(paths.MonthlyOutputPath("1706"), table)
//	n, err = exp.ExportCombined(paths.CombinedFile, combined)
//	n, err = exp.ExportRanked(paths.RankedFile, ranked)
//
// Nil values are written as empty cells. Artifacts carry no BOM and no
// timestamps, so rerunning a stage over the same inputs reproduces them byte
// for byte.
package exporter
