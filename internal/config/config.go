package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	"fuelcli/pkg/contracts/domain"
)

// Config represents the complete application configuration
type Config struct {
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Paths     PathsConfig     `yaml:"paths" envconfig:"PATHS"`
	Pipeline  PipelineConfig  `yaml:"pipeline" envconfig:"PIPELINE"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn warning error"`
	Format   string `yaml:"format" envconfig:"FORMAT" validate:"oneof=json text"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// PathsConfig contains file system paths configuration. Relative directories
// resolve against DataDir; relative file names resolve against their directory.
type PathsConfig struct {
	DataDir     string `yaml:"data_dir" envconfig:"DATA_DIR" validate:"required"`
	SnapshotDir string `yaml:"snapshot_dir" envconfig:"SNAPSHOT_DIR" validate:"required"`
	OutputDir   string `yaml:"output_dir" envconfig:"OUTPUT_DIR" validate:"required"`
	LogsDir     string `yaml:"logs_dir" envconfig:"LOGS_DIR" validate:"required"`

	PostcodeRangesFile string `yaml:"postcode_ranges_file" envconfig:"POSTCODE_RANGES_FILE" validate:"required"`
	RegionAreaFile     string `yaml:"region_area_file" envconfig:"REGION_AREA_FILE" validate:"required"`
	PostcodeLookupFile string `yaml:"postcode_lookup_file" envconfig:"POSTCODE_LOOKUP_FILE" validate:"required"`
	AdjustmentsFile    string `yaml:"adjustments_file" envconfig:"ADJUSTMENTS_FILE" validate:"required"`

	// Patterns take the yymm month id through a single %s verb.
	SnapshotPattern string `yaml:"snapshot_pattern" envconfig:"SNAPSHOT_PATTERN" validate:"required,contains=%s"`
	MonthlyPattern  string `yaml:"monthly_pattern" envconfig:"MONTHLY_PATTERN" validate:"required,contains=%s"`
	CombinedFile    string `yaml:"combined_file" envconfig:"COMBINED_FILE" validate:"required"`
	RankedFile      string `yaml:"ranked_file" envconfig:"RANKED_FILE" validate:"required"`
}

// PipelineConfig holds the processing window and the fixed lookup tables the
// enricher is given. The window is read from the config file only.
type PipelineConfig struct {
	Window            []domain.SeasonMonth `yaml:"window" ignored:"true" validate:"required,min=1,dive"`
	SeasonNames       map[string]string    `yaml:"season_names" envconfig:"SEASON_NAMES" validate:"required,min=1,dive,keys,len=1,endkeys,required"`
	ExcludedFuelCodes []string             `yaml:"excluded_fuel_codes" envconfig:"EXCLUDED_FUEL_CODES" validate:"dive,required"`
}

// TelemetryConfig controls metrics and tracing output.
type TelemetryConfig struct {
	ServiceName    string  `yaml:"service_name" envconfig:"SERVICE_NAME"`
	Environment    string  `yaml:"environment" envconfig:"ENVIRONMENT"`
	MetricExporter string  `yaml:"metric_exporter" envconfig:"METRIC_EXPORTER" validate:"oneof=prometheus none"`
	TraceExporter  string  `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER" validate:"oneof=stdout none"`
	SampleRatio    float64 `yaml:"sample_ratio" envconfig:"SAMPLE_RATIO" validate:"gte=0,lte=1"`
	MetricsFile    string  `yaml:"metrics_file" envconfig:"METRICS_FILE"`
	TraceFile      string  `yaml:"trace_file" envconfig:"TRACE_FILE"`
}

// Months returns the processing window month ids in order.
func (p PipelineConfig) Months() []string {
	months := make([]string, len(p.Window))
	for i, m := range p.Window {
		months[i] = m.Month
	}
	return months
}

// Load loads configuration from defaults, an optional YAML file and
// environment variables, in increasing order of precedence. A .env file in
// the working directory is read first when present.
func Load() (*Config, error) {
	return LoadFrom("")
}

// LoadFrom is Load with an explicit YAML file. An empty path falls back to
// FUEL_CONFIG_FILE and the default locations.
func LoadFrom(configFile string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()

	if configFile == "" {
		configFile = getConfigFilePath()
	}
	if configFile != "" {
		if err := loadFromFile(configFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file %s: %w", configFile, err)
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// LoadFile loads defaults overlaid with a specific YAML file, without
// consulting the environment.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	if err := loadFromFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from file %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// loadFromFile overlays YAML configuration onto cfg
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// Validate checks struct constraints and cross-field rules.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}

	seen := make(map[string]bool, len(c.Pipeline.Window))
	for _, m := range c.Pipeline.Window {
		if seen[m.Month] {
			return fmt.Errorf("month %s appears twice in the processing window", m.Month)
		}
		seen[m.Month] = true
	}

	if c.Logging.Output != "console" && c.Logging.FilePath == "" {
		c.Logging.FilePath = DefaultLogFile
	}

	return nil
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	if path := strings.TrimSpace(os.Getenv(EnvPrefix + "_CONFIG_FILE")); path != "" {
		return path
	}

	// Check for config file in common locations
	locations := []string{
		"fuelcli.yaml",
		"config.yaml",
		"configs/config.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return "" // No config file found, use env vars only
}

// Default returns default configuration
func Default() *Config {
	names := make(map[string]string, len(domain.DefaultSeasonNames))
	for k, v := range domain.DefaultSeasonNames {
		names[k] = v
	}

	return &Config{
		Logging: LoggingConfig{
			Level:    DefaultLogLevel,
			Format:   "json",
			Output:   "console",
			FilePath: DefaultLogFile,
		},
		Paths: PathsConfig{
			DataDir:            ".",
			SnapshotDir:        DefaultSnapshotDir,
			OutputDir:          DefaultSnapshotDir,
			LogsDir:            DefaultLogsDir,
			PostcodeRangesFile: DefaultPostcodeRangesFile,
			RegionAreaFile:     DefaultRegionAreaFile,
			PostcodeLookupFile: DefaultPostcodeLookupFile,
			AdjustmentsFile:    DefaultAdjustmentsFile,
			SnapshotPattern:    DefaultSnapshotPattern,
			MonthlyPattern:     DefaultMonthlyPattern,
			CombinedFile:       DefaultCombinedFile,
			RankedFile:         DefaultRankedFile,
		},
		Pipeline: PipelineConfig{
			Window:            DefaultWindow(),
			SeasonNames:       names,
			ExcludedFuelCodes: append([]string(nil), domain.DefaultExcludedFuelCodes...),
		},
		Telemetry: TelemetryConfig{
			ServiceName:    AppName,
			Environment:    "development",
			MetricExporter: "prometheus",
			TraceExporter:  "none",
			SampleRatio:    1.0,
		},
	}
}

// DefaultWindow returns the fifteen-month window June 2017 to August 2018 with
// its season codes.
func DefaultWindow() []domain.SeasonMonth {
	return []domain.SeasonMonth{
		{Month: "1706", Code: "17B"},
		{Month: "1707", Code: "17B"},
		{Month: "1708", Code: "17B"},
		{Month: "1709", Code: "17C"},
		{Month: "1710", Code: "17C"},
		{Month: "1711", Code: "17C"},
		{Month: "1712", Code: "17D"},
		{Month: "1801", Code: "17D"},
		{Month: "1802", Code: "17D"},
		{Month: "1803", Code: "18A"},
		{Month: "1804", Code: "18A"},
		{Month: "1805", Code: "18A"},
		{Month: "1806", Code: "18B"},
		{Month: "1807", Code: "18B"},
		{Month: "1808", Code: "18B"},
	}
}
