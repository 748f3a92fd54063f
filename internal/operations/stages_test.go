package operations_test

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fuelcli/internal/config"
	apperrors "fuelcli/internal/errors"
	"fuelcli/internal/infrastructure"
	"fuelcli/internal/operations"
	"fuelcli/internal/operations/testutil"
	"fuelcli/pkg/contracts/domain"
)

const (
	rangesCSV = "Range,Region\n" +
		"2000 - 2001,Sydney\n" +
		"2830 - 2830,Dubbo\n"

	regionAreaCSV = "Region,Area\n" +
		"Sydney,Metro\n" +
		"Dubbo,Regional\n"

	adjustmentsCSV = "Pdate,vDiff\n" +
		"2017-06-05,-2.34\n" +
		"2017-07-03,1.5\n"

	june = "ServiceStationName,Address,Postcode,FuelCode,PriceUpdatedDate,Price\n" +
		"Caltex,1 Main St,2000,U91,2017-06-05 14:30:15,150.9\n" +
		"BP,2 High St,2001,U91,2017-06-05 08:00:00,140\n" +
		"Shell,3 Low Rd,2830,LPG,2017-06-05 09:00:00,80\n" +
		"Caltex,1 Main St,2000,U91,2017-06-06 10:00:00,151\n"

	july = "ServiceStationName,Address,Postcode,FuelCode,PriceUpdatedDate,Price\n" +
		"Caltex,1 Main St,2000,U91,2017-07-03 07:00:00,145\n" +
		"Ampol,9 Far Way,9999,U91,2017-07-03 12:00:00,146\n"
)

type pipelineFixture struct {
	dir      string
	paths    *config.Paths
	pipeline config.PipelineConfig
}

func newPipelineFixture(t *testing.T, window ...domain.SeasonMonth) *pipelineFixture {
	t.Helper()
	dir := t.TempDir()

	write := func(name, content string) {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
	write("PostcodeRanges.csv", rangesCSV)
	write("RegionArea.csv", regionAreaCSV)
	write("vDiff.csv", adjustmentsCSV)
	write("FuelCheck/pricehist_201706.csv", june)
	write("FuelCheck/pricehist_201707.csv", july)

	cfg := config.Default()
	cfg.Paths.DataDir = dir
	cfg.Paths.SnapshotPattern = "pricehist_20%s.csv"
	cfg.Paths.OutputDir = "out"
	if len(window) == 0 {
		window = []domain.SeasonMonth{{Month: "1706", Code: "17B"}, {Month: "1707", Code: "17B"}}
	}
	cfg.Pipeline.Window = window

	paths, err := config.ResolvePaths(cfg.Paths)
	require.NoError(t, err)
	require.NoError(t, paths.EnsureDirectories())

	return &pipelineFixture{dir: dir, paths: paths, pipeline: cfg.Pipeline}
}

func (f *pipelineFixture) manager(t *testing.T, telemetry *infrastructure.Telemetry) *operations.Manager {
	t.Helper()
	logger, _ := testutil.CreateTestSlogLogger()

	options := &operations.StageOptions{
		Paths:    f.paths,
		Pipeline: f.pipeline,
		Logger:   logger,
	}
	if telemetry != nil {
		options.Metrics = telemetry.Metrics
	}

	registry := operations.NewRegistry()
	require.NoError(t, operations.RegisterPipeline(registry, options))
	return operations.NewManager(registry, nil, operations.NewOperationTracer(telemetry), logger)
}

func (f *pipelineFixture) artifacts() []string {
	return []string{
		f.paths.PostcodeLookupFile,
		f.paths.MonthlyOutputPath("1706"),
		f.paths.MonthlyOutputPath("1707"),
		f.paths.CombinedFile,
		f.paths.RankedFile,
	}
}

func readRecords(t *testing.T, path string) (map[string]int, [][]string) {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.NotEmpty(t, records)

	index := make(map[string]int, len(records[0]))
	for i, h := range records[0] {
		index[h] = i
	}
	return index, records[1:]
}

func column(index map[string]int, records [][]string, name string) []string {
	values := make([]string, len(records))
	for i, r := range records {
		values[i] = r[index[name]]
	}
	return values
}

func TestPipeline_FullRun(t *testing.T) {
	f := newPipelineFixture(t)

	resp, err := f.manager(t, nil).Execute(context.Background(), operations.OperationRequest{})
	require.NoError(t, err)
	assert.Equal(t, operations.OperationStatusCompleted, resp.Status)
	for _, id := range []string{operations.StageIDExpand, operations.StageIDEnrich, operations.StageIDRank} {
		assert.Equal(t, operations.StepStatusCompleted, resp.Steps[id].GetStatus(), id)
	}

	for _, path := range f.artifacts() {
		assert.FileExists(t, path)
	}

	lookup, err := os.ReadFile(f.paths.PostcodeLookupFile)
	require.NoError(t, err)
	assert.Equal(t, "Postcode,Region,Area\n2000,Sydney,Metro\n2001,Sydney,Metro\n2830,Dubbo,Regional\n", string(lookup))

	// LPG is kept per month and excluded from the combined and ranked tables
	index, monthly := readRecords(t, f.paths.MonthlyOutputPath("1706"))
	assert.Contains(t, column(index, monthly, domain.ColumnFuelCode), "LPG")

	index, combined := readRecords(t, f.paths.CombinedFile)
	assert.NotContains(t, column(index, combined, domain.ColumnFuelCode), "LPG")
	assert.Len(t, combined, 5)
	for _, dropped := range []string{domain.ColumnPriceUpdatedDate, domain.ColumnAddress, domain.ColumnRegion, domain.ColumnVDiff} {
		assert.NotContains(t, index, dropped)
	}

	index, ranked := readRecords(t, f.paths.RankedFile)
	assert.NotContains(t, column(index, ranked, domain.ColumnFuelCode), "LPG")
	assert.NotContains(t, index, domain.ColumnMonthYear)
	require.Len(t, ranked, 5)

	byKey := make(map[string][]string)
	for _, r := range ranked {
		byKey[r[index[domain.ColumnStationName]]+"/"+r[index[domain.ColumnPdate]]] = r
	}

	caltexJune := byKey["Caltex/2017-06-05"]
	require.NotNil(t, caltexJune)
	assert.Equal(t, "148.6", caltexJune[index[domain.ColumnAdjPrice]])
	assert.Equal(t, "17W23", caltexJune[index[domain.ColumnWeeknum]])
	assert.Equal(t, "1", caltexJune[index[domain.ColumnWeekRank]])
	assert.Equal(t, "1", caltexJune[index[domain.ColumnMonthRank]])

	// No adjustment for the date: no adjusted price and no rank
	unadjusted := byKey["Caltex/2017-06-06"]
	require.NotNil(t, unadjusted)
	assert.Equal(t, "", unadjusted[index[domain.ColumnAdjPrice]])
	assert.Equal(t, "", unadjusted[index[domain.ColumnWeekRank]])
	assert.Equal(t, "", unadjusted[index[domain.ColumnMonthRank]])

	caltexJuly := byKey["Caltex/2017-07-03"]
	require.NotNil(t, caltexJuly)
	assert.Equal(t, "146.5", caltexJuly[index[domain.ColumnAdjPrice]])
	assert.Equal(t, "17W27", caltexJuly[index[domain.ColumnWeeknum]])

	// Unknown postcode keeps the row with an empty area
	ampol := byKey["Ampol/2017-07-03"]
	require.NotNil(t, ampol)
	assert.Equal(t, "", ampol[index[domain.ColumnArea]])
	assert.Equal(t, "1", ampol[index[domain.ColumnMonthRank]])

	enrich := resp.Steps[operations.StageIDEnrich]
	rowsRead, ok := enrich.GetMetadata(operations.MetadataRowsRead)
	require.True(t, ok)
	assert.Equal(t, 6, rowsRead)
}

func TestPipeline_Idempotent(t *testing.T) {
	f := newPipelineFixture(t)
	manager := f.manager(t, nil)

	_, err := manager.Execute(context.Background(), operations.OperationRequest{})
	require.NoError(t, err)

	first := make(map[string][]byte)
	for _, path := range f.artifacts() {
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		first[path] = data
	}

	_, err = manager.Execute(context.Background(), operations.OperationRequest{})
	require.NoError(t, err)

	for _, path := range f.artifacts() {
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, first[path], data, path)
	}
}

func TestPipeline_SingleStepReadsArtifacts(t *testing.T) {
	f := newPipelineFixture(t)
	manager := f.manager(t, nil)

	_, err := manager.Execute(context.Background(), operations.OperationRequest{})
	require.NoError(t, err)
	full, err := os.ReadFile(f.paths.RankedFile)
	require.NoError(t, err)

	require.NoError(t, os.Remove(f.paths.RankedFile))

	resp, err := manager.Execute(context.Background(), operations.OperationRequest{Steps: []string{operations.StageIDRank}})
	require.NoError(t, err)
	assert.Len(t, resp.Steps, 1)

	ranked, err := os.ReadFile(f.paths.RankedFile)
	require.NoError(t, err)
	assert.Equal(t, full, ranked)
}

func TestPipeline_RankWithoutCombinedArtifact(t *testing.T) {
	f := newPipelineFixture(t)

	resp, err := f.manager(t, nil).Execute(context.Background(), operations.OperationRequest{Steps: []string{operations.StageIDRank}})
	require.Error(t, err)
	assert.Equal(t, operations.ErrorTypeValidation, operations.GetErrorType(err))
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeNotFound))
	assert.Equal(t, operations.OperationStatusFailed, resp.Status)
}

func TestPipeline_MissingSnapshotFailsBeforeAnyMonth(t *testing.T) {
	f := newPipelineFixture(t,
		domain.SeasonMonth{Month: "1706", Code: "17B"},
		domain.SeasonMonth{Month: "1707", Code: "17B"},
		domain.SeasonMonth{Month: "1708", Code: "17B"},
	)

	resp, err := f.manager(t, nil).Execute(context.Background(), operations.OperationRequest{})
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeMissingSnapshot))
	assert.Equal(t, operations.StageIDEnrich, operations.FailedStep(err))

	assert.Equal(t, operations.StepStatusCompleted, resp.Steps[operations.StageIDExpand].GetStatus())
	assert.Equal(t, operations.StepStatusFailed, resp.Steps[operations.StageIDEnrich].GetStatus())
	assert.Equal(t, operations.StepStatusSkipped, resp.Steps[operations.StageIDRank].GetStatus())

	assert.NoFileExists(t, f.paths.MonthlyOutputPath("1706"))
	assert.NoFileExists(t, f.paths.CombinedFile)
	assert.NoFileExists(t, f.paths.RankedFile)
}

func TestPipeline_UnknownSeasonLetter(t *testing.T) {
	f := newPipelineFixture(t, domain.SeasonMonth{Month: "1706", Code: "17X"})

	_, err := f.manager(t, nil).Execute(context.Background(), operations.OperationRequest{})
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeSeasonLookup))
	assert.NoFileExists(t, f.paths.CombinedFile)
}

func TestPipeline_WritesMetrics(t *testing.T) {
	f := newPipelineFixture(t)
	metricsFile := filepath.Join(f.dir, "metrics.prom")

	logger, _ := testutil.CreateTestSlogLogger()
	telemetry, err := infrastructure.InitializeTelemetry(config.TelemetryConfig{
		ServiceName:    config.AppName,
		Environment:    "test",
		MetricExporter: "prometheus",
		TraceExporter:  "none",
		SampleRatio:    1,
		MetricsFile:    metricsFile,
	}, logger)
	require.NoError(t, err)

	_, err = f.manager(t, telemetry).Execute(context.Background(), operations.OperationRequest{})
	require.NoError(t, err)
	require.NoError(t, telemetry.Shutdown(context.Background()))

	data, err := os.ReadFile(metricsFile)
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, `fuel_rows_written_total{artifact="ranked"} 5`)
	assert.Contains(t, text, `fuel_rows_written_total{artifact="lookup"} 3`)
	assert.Contains(t, text, `fuel_join_misses_total{kind="postcode"} 1`)
	assert.Contains(t, text, `fuel_join_misses_total{kind="adjustment"} 1`)
	assert.Contains(t, text, `fuel_unranked_rows_total{window="month"} 1`)
	assert.Contains(t, text, "fuel_step_duration_seconds_count")
}
