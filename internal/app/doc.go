// Package app provides application initialization and lifecycle management
// for the fuelcli executables.
//
// # Initialization Flow
//
//  1. Load configuration from defaults, YAML and environment
//  2. Initialize logging and telemetry
//  3. Resolve paths and create artifact directories
//  4. Register the pipeline steps with an operations manager
//
// # Usage
//
// Every executable is a thin main around Main:
//
//	os.Exit(app.Main(app.Options{Command: "pricerank", Steps: []string{operations.StageIDRank}}))
//
// # Shutdown
//
// SIGINT and SIGTERM cancel the running step. Metrics are written and trace
// output flushed whether the run succeeded or not.
//
// # Error Handling
//
// Initialization errors are returned to the caller. Main maps them to exit
// codes; it never calls os.Exit itself.
package app
