// Package files locates the monthly price snapshots the enrich stage reads.
//
// Discovery resolves a month id to its snapshot file through the configured
// name pattern. When that file is absent the same name with another supported
// extension (.xlsx or .csv) is accepted. A month with no file at all is a
// MISSING_SNAPSHOT error.
//
// Example usage:
//
//	discovery := files.NewDiscovery(paths, logger)
//	if missing := discovery.MissingSnapshots(months); len(missing) > 0 {
//	    // fail before any month is processed
//	}
//	snapshot, err := discovery.LoadSnapshot(ctx, "1706")
package files
