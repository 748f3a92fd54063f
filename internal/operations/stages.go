package operations

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"fuelcli/internal/config"
	"fuelcli/internal/dataprocessing"
	"fuelcli/internal/exporter"
	"fuelcli/internal/files"
	"fuelcli/internal/infrastructure"
	"fuelcli/internal/validation"
	"fuelcli/pkg/contracts/domain"
)

// StageOptions carries what every step needs: resolved paths, the pipeline
// settings, metrics and a logger.
type StageOptions struct {
	Paths    *config.Paths
	Pipeline config.PipelineConfig
	Metrics  *infrastructure.PipelineMetrics
	Logger   *slog.Logger
}

func (o *StageOptions) logger(stageID string) *slog.Logger {
	logger := o.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return logger.With(slog.String("step", stageID))
}

// ExpandStage expands postcode ranges into the postcode → region/area lookup.
type ExpandStage struct {
	BaseStage
	options   *StageOptions
	logger    *slog.Logger
	expander  *dataprocessing.RangeExpander
	exporter  *exporter.ArtifactExporter
	validator *validation.FileValidator
}

// NewExpandStage creates the expand step
func NewExpandStage(options *StageOptions) *ExpandStage {
	logger := options.logger(StageIDExpand)
	return &ExpandStage{
		BaseStage: NewBaseStage(StageIDExpand, StageNameExpand, nil),
		options:   options,
		logger:    logger,
		expander:  dataprocessing.NewRangeExpander(logger),
		exporter:  exporter.NewArtifactExporter(logger),
		validator: validation.NewFileValidator(logger),
	}
}

// Validate checks both input tables exist
func (s *ExpandStage) Validate(state *OperationState) error {
	paths := s.options.Paths
	if err := s.validator.RequireCSVFiles(paths.PostcodeRangesFile, paths.RegionAreaFile); err != nil {
		return err
	}
	return s.validator.ValidateOutputDirectory(filepath.Dir(paths.PostcodeLookupFile))
}

// Execute reads the range and region tables and writes the lookup artifact
func (s *ExpandStage) Execute(ctx context.Context, state *OperationState) error {
	stepState := state.GetStage(s.ID())
	paths := s.options.Paths
	metrics := s.options.Metrics

	// The two inputs are independent
	var (
		ranges []domain.PostcodeRange
		areas  []domain.RegionArea
	)
	var g errgroup.Group
	g.Go(func() error {
		var err error
		ranges, err = dataprocessing.ReadPostcodeRanges(paths.PostcodeRangesFile)
		return err
	})
	g.Go(func() error {
		var err error
		areas, err = dataprocessing.ReadRegionAreas(paths.RegionAreaFile)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}
	metrics.RecordRowsRead(ctx, StageIDExpand, len(ranges)+len(areas))

	result, err := s.expander.Expand(ctx, ranges, areas)
	if err != nil {
		return err
	}
	metrics.RecordJoinMisses(ctx, "region", result.Join.UnmatchedPostcodes)

	written, err := s.exporter.ExportLookup(paths.PostcodeLookupFile, result.Lookup)
	if err != nil {
		return err
	}
	metrics.RecordRowsWritten(ctx, "lookup", written)
	infrastructure.AddSpanEvent(ctx, "lookup_written", map[string]interface{}{
		"path": paths.PostcodeLookupFile,
		"rows": written,
	})

	state.SetContext(ContextKeyLookup, result.Lookup)
	if stepState != nil {
		stepState.SetMetadata(MetadataRowsRead, len(ranges))
		stepState.SetMetadata(MetadataRowsWritten, written)
		stepState.SetMetadata(MetadataJoinMisses, result.Join.UnmatchedPostcodes)
		stepState.SetMetadata(MetadataArtifacts, []string{paths.PostcodeLookupFile})
	}
	return nil
}

// EnrichStage enriches every window month and writes the per-month and
// combined artifacts.
type EnrichStage struct {
	BaseStage
	options   *StageOptions
	logger    *slog.Logger
	discovery *files.Discovery
	exporter  *exporter.ArtifactExporter
	validator *validation.FileValidator
}

// NewEnrichStage creates the enrich step
func NewEnrichStage(options *StageOptions) *EnrichStage {
	logger := options.logger(StageIDEnrich)
	return &EnrichStage{
		BaseStage: NewBaseStage(StageIDEnrich, StageNameEnrich, []string{StageIDExpand}),
		options:   options,
		logger:    logger,
		discovery: files.NewDiscovery(options.Paths, logger),
		exporter:  exporter.NewArtifactExporter(logger),
		validator: validation.NewFileValidator(logger),
	}
}

// Validate fails before any month is processed when a snapshot is missing.
// The lookup file is only required when this run did not just build it.
func (s *EnrichStage) Validate(state *OperationState) error {
	if missing := s.discovery.MissingSnapshots(s.options.Pipeline.Months()); len(missing) > 0 {
		_, err := s.discovery.FindSnapshot(missing[0])
		if len(missing) > 1 {
			return fmt.Errorf("%d snapshots missing (%s): %w", len(missing), strings.Join(missing, ", "), err)
		}
		return err
	}

	for _, month := range s.options.Pipeline.Months() {
		snapshot, err := s.discovery.FindSnapshot(month)
		if err != nil {
			return err
		}
		if err := s.validator.ValidateSnapshotFile(snapshot.Path); err != nil {
			return err
		}
	}

	paths := s.options.Paths
	required := []string{paths.AdjustmentsFile}
	if _, ok := state.GetContext(ContextKeyLookup); !ok {
		required = append(required, paths.PostcodeLookupFile)
	}
	if err := s.validator.RequireCSVFiles(required...); err != nil {
		return err
	}
	return s.validator.ValidateOutputDirectory(filepath.Dir(paths.CombinedFile))
}

// Execute enriches the window month by month
func (s *EnrichStage) Execute(ctx context.Context, state *OperationState) error {
	stepState := state.GetStage(s.ID())
	paths := s.options.Paths
	metrics := s.options.Metrics

	lookup, err := s.lookup(state)
	if err != nil {
		return err
	}
	adjustments, err := dataprocessing.ReadAdjustments(paths.AdjustmentsFile)
	if err != nil {
		return err
	}
	seasons, err := dataprocessing.NewSeasonTable(s.options.Pipeline.Window, s.options.Pipeline.SeasonNames)
	if err != nil {
		return err
	}

	enricher := dataprocessing.NewEnricher(seasons, lookup, adjustments, s.logger)

	var artifacts []string
	written := 0
	sink := func(ctx context.Context, table *domain.EnrichedTable) error {
		month := table.Months[0]
		metrics.RecordRowsRead(ctx, StageIDEnrich, len(table.Rows))

		path := paths.MonthlyOutputPath(month)
		n, err := s.exporter.ExportEnriched(path, table)
		if err != nil {
			return err
		}
		metrics.RecordRowsWritten(ctx, "monthly", n)
		artifacts = append(artifacts, path)
		written += n
		infrastructure.AddSpanEvent(ctx, "month_enriched", map[string]interface{}{
			"month": month,
			"rows":  n,
		})
		return nil
	}

	tables, misses, err := enricher.EnrichWindow(ctx, s.discovery, sink)
	if err != nil {
		return err
	}
	metrics.RecordJoinMisses(ctx, "postcode", misses.PostcodeMisses)
	metrics.RecordJoinMisses(ctx, "adjustment", misses.AdjustmentMisses)

	combined := dataprocessing.Finalize(dataprocessing.Combine(tables...), s.options.Pipeline.ExcludedFuelCodes)
	n, err := s.exporter.ExportCombined(paths.CombinedFile, combined)
	if err != nil {
		return err
	}
	metrics.RecordRowsWritten(ctx, "combined", n)
	artifacts = append(artifacts, paths.CombinedFile)

	s.logger.InfoContext(ctx, "Combined table written",
		slog.String("path", paths.CombinedFile),
		slog.Int("rows", n),
		slog.Int("excluded", misses.Rows-n))

	state.SetContext(ContextKeyCombined, combined)
	if stepState != nil {
		stepState.SetMetadata(MetadataRowsRead, misses.Rows)
		stepState.SetMetadata(MetadataRowsWritten, written+n)
		stepState.SetMetadata(MetadataJoinMisses, misses.PostcodeMisses+misses.AdjustmentMisses)
		stepState.SetMetadata(MetadataArtifacts, artifacts)
	}
	return nil
}

func (s *EnrichStage) lookup(state *OperationState) (*domain.PostcodeLookup, error) {
	if v, ok := state.GetContext(ContextKeyLookup); ok {
		if lookup, ok := v.(*domain.PostcodeLookup); ok {
			return lookup, nil
		}
	}
	return dataprocessing.ReadPostcodeLookup(s.options.Paths.PostcodeLookupFile)
}

// RankStage ranks the combined table and writes the ranked artifact.
type RankStage struct {
	BaseStage
	options   *StageOptions
	logger    *slog.Logger
	ranker    *dataprocessing.RankComputer
	exporter  *exporter.ArtifactExporter
	validator *validation.FileValidator
}

// NewRankStage creates the rank step
func NewRankStage(options *StageOptions) *RankStage {
	logger := options.logger(StageIDRank)
	return &RankStage{
		BaseStage: NewBaseStage(StageIDRank, StageNameRank, []string{StageIDEnrich}),
		options:   options,
		logger:    logger,
		ranker:    dataprocessing.NewRankComputer(logger),
		exporter:  exporter.NewArtifactExporter(logger),
		validator: validation.NewFileValidator(logger),
	}
}

// Validate requires the combined artifact unless this run just built it
func (s *RankStage) Validate(state *OperationState) error {
	if _, ok := state.GetContext(ContextKeyCombined); !ok {
		if err := s.validator.RequireCSVFiles(s.options.Paths.CombinedFile); err != nil {
			return err
		}
	}
	return s.validator.ValidateOutputDirectory(filepath.Dir(s.options.Paths.RankedFile))
}

// Execute ranks the combined table
func (s *RankStage) Execute(ctx context.Context, state *OperationState) error {
	stepState := state.GetStage(s.ID())
	paths := s.options.Paths
	metrics := s.options.Metrics

	combined, err := s.combined(state)
	if err != nil {
		return err
	}
	metrics.RecordRowsRead(ctx, StageIDRank, len(combined.Rows))

	ranked, stats, err := s.ranker.Rank(ctx, combined)
	if err != nil {
		return err
	}
	metrics.RecordUnrankedRows(ctx, "week", stats.UnrankedWeek)
	metrics.RecordUnrankedRows(ctx, "month", stats.UnrankedMonth)

	n, err := s.exporter.ExportRanked(paths.RankedFile, ranked)
	if err != nil {
		return err
	}
	metrics.RecordRowsWritten(ctx, "ranked", n)

	state.SetContext(ContextKeyRanked, ranked)
	if stepState != nil {
		stepState.SetMetadata(MetadataRowsRead, len(combined.Rows))
		stepState.SetMetadata(MetadataRowsWritten, n)
		stepState.SetMetadata(MetadataUnrankedRows, stats.UnrankedMonth)
		stepState.SetMetadata(MetadataArtifacts, []string{paths.RankedFile})
	}
	return nil
}

func (s *RankStage) combined(state *OperationState) (*domain.CombinedTable, error) {
	if v, ok := state.GetContext(ContextKeyCombined); ok {
		if table, ok := v.(*domain.CombinedTable); ok {
			return table, nil
		}
	}
	return dataprocessing.ReadCombinedTable(s.options.Paths.CombinedFile)
}

// StageFactory creates every pipeline step keyed by id
func StageFactory(options *StageOptions) map[string]Step {
	return map[string]Step{
		StageIDExpand: NewExpandStage(options),
		StageIDEnrich: NewEnrichStage(options),
		StageIDRank:   NewRankStage(options),
	}
}

// RegisterPipeline registers the expand, enrich and rank steps in order
func RegisterPipeline(registry *Registry, options *StageOptions) error {
	stages := StageFactory(options)
	for _, id := range []string{StageIDExpand, StageIDEnrich, StageIDRank} {
		if err := registry.Register(stages[id]); err != nil {
			return err
		}
	}
	return nil
}
