package config

// Application constants
const (
	AppName    = "fuelcli"
	AppVersion = "1.0.0"

	// EnvPrefix namespaces every environment variable, e.g. FUEL_PATHS_DATA_DIR.
	EnvPrefix = "FUEL"

	DefaultLogLevel = "info"
	DefaultLogsDir  = "logs"
	DefaultLogFile  = "logs/fuelcli.log"

	// Input files
	DefaultPostcodeRangesFile = "PostcodeRanges.csv"
	DefaultRegionAreaFile     = "RegionArea.csv"
	DefaultAdjustmentsFile    = "vDiff.csv"
	DefaultSnapshotDir        = "FuelCheck"
	DefaultSnapshotPattern    = "pricehist_20%s.xlsx"

	// Artifacts
	DefaultPostcodeLookupFile = "PostcodeRegArea.csv"
	DefaultMonthlyPattern     = "PriceNew_20%s.csv"
	DefaultCombinedFile       = "PriceNew_15.csv"
	DefaultRankedFile         = "PriceRank15.csv"
)
