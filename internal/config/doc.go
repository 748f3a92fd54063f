// Package config provides centralized configuration management for fuelcli.
// It loads configuration from multiple sources, validates it, and resolves
// every input and artifact path the pipeline stages use.
//
// # Configuration Sources
//
// Configuration is layered in order of increasing precedence:
//
//	1. Default values (Default)
//	2. A YAML file (FUEL_CONFIG_FILE, or fuelcli.yaml / config.yaml / configs/config.yaml)
//	3. Environment variables, optionally seeded from a .env file
//
// # Environment Variables
//
// All environment variables follow the pattern FUEL_<SECTION>_<FIELD>:
//
//	FUEL_PATHS_DATA_DIR=/srv/fuel
//	FUEL_LOGGING_LEVEL=debug
//	FUEL_PIPELINE_EXCLUDED_FUEL_CODES=CNG,LPG,E85,B20,EV
//	FUEL_TELEMETRY_METRICS_FILE=/var/lib/node_exporter/fuelcli.prom
//
// # Processing Window
//
// The month window and its season codes are configuration, not code. They
// live in the YAML file's pipeline.window list:
//
//	pipeline:
//	  window:
//	    - {month: "1706", code: "17B"}
//	    - {month: "1707", code: "17B"}
//
// Months are processed in list order. A month the enricher is asked for that
// is not in the window fails the run.
//
// # Validation
//
// Load validates struct tags with go-playground/validator and rejects a
// window that lists the same month twice.
package config
