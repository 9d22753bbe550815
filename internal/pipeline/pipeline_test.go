package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ajitpratap0/carflow/pkg/config"
	chartdest "github.com/ajitpratap0/carflow/pkg/connector/destinations/chart"
	"github.com/ajitpratap0/carflow/pkg/connector/core"
	"github.com/ajitpratap0/carflow/pkg/connector/registry"
	"github.com/ajitpratap0/carflow/pkg/errors"
	"github.com/ajitpratap0/carflow/pkg/metrics"
	"github.com/ajitpratap0/carflow/pkg/models"
	"github.com/ajitpratap0/carflow/pkg/testutil"
)

const literalScenario = `{"cars":[{"manufacturer":"Ford Shelby","color":"Dark Blue","image":"x.png"},{"manufacturer":"Toyota","color":"Red","countryOfOrigin":"Japan"}]}`

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := config.NewConfig()
	cfg.Converter.Input = filepath.Join(dir, "data.json")
	cfg.Converter.Output = filepath.Join(dir, "data.csv")
	cfg.Visualizer.Input = filepath.Join(dir, "data.csv")
	cfg.Visualizer.OutputDir = filepath.Join(dir, "charts")
	cfg.Visualizer.Format = "svg"
	return cfg
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestConvert_LiteralScenario(t *testing.T) {
	cfg := testConfig(t)
	writeFile(t, cfg.Converter.Input, literalScenario)

	result, err := Convert(testutil.TestContext(t), cfg, Deps{Logger: testutil.TestLogger(t)})
	require.NoError(t, err)

	assert.Equal(t, ConvertPipeline, result.Pipeline)
	assert.Equal(t, 2, result.Rows)
	assert.Equal(t, []string{"manufacturer", "color", "countryOfOrigin"}, result.Columns)
	assert.Equal(t, []string{cfg.Converter.Output}, result.Outputs)
	assert.Equal(t, cfg.Converter.Input, result.Input)

	assert.Equal(t,
		"manufacturer,color,countryOfOrigin\nFord Shelby,Dark Blue,\nToyota,Red,Japan\n",
		readFile(t, cfg.Converter.Output))
}

func TestConvert_NFlatRecords(t *testing.T) {
	for _, n := range []int{1, 5, 50} {
		t.Run(fmt.Sprint(n), func(t *testing.T) {
			cfg := testConfig(t)
			var recs []string
			for i := 0; i < n; i++ {
				recs = append(recs, fmt.Sprintf(`{"id":%d,"make":"m%d","f%d":true}`, i, i%3, i%4))
			}
			writeFile(t, cfg.Converter.Input, `{"cars":[`+strings.Join(recs, ",")+`]}`)

			result, err := Convert(context.Background(), cfg, Deps{})
			require.NoError(t, err)

			lines := strings.Split(strings.TrimSuffix(readFile(t, cfg.Converter.Output), "\n"), "\n")
			assert.Len(t, lines, n+1)
			assert.Equal(t, n, result.Rows)

			want := []string{"id", "make"}
			for i := 0; i < n && i < 4; i++ {
				want = append(want, fmt.Sprintf("f%d", i))
			}
			assert.Equal(t, strings.Join(want, ","), lines[0])
		})
	}
}

func TestConvert_ImageNeverInHeader(t *testing.T) {
	for _, doc := range []string{
		`{"cars":[{"image":"a.png","make":"Kia"}]}`,
		`{"cars":[{"make":"Kia","image":null}]}`,
		`{"cars":[{"make":"Kia","image":[1,2]}]}`,
		`{"cars":[{"make":"Kia"},{"image":"late.png"}]}`,
	} {
		cfg := testConfig(t)
		writeFile(t, cfg.Converter.Input, doc)

		result, err := Convert(context.Background(), cfg, Deps{})
		require.NoError(t, err, doc)
		assert.NotContains(t, result.Columns, "image", doc)
	}
}

func TestConvert_Idempotent(t *testing.T) {
	for _, name := range []string{"data.csv", "data.csv.gz", "data.csv.zst", "data.csv.lz4", "data.csv.sz"} {
		t.Run(name, func(t *testing.T) {
			cfg := testConfig(t)
			cfg.Converter.Output = filepath.Join(filepath.Dir(cfg.Converter.Output), name)
			writeFile(t, cfg.Converter.Input, literalScenario)

			_, err := Convert(context.Background(), cfg, Deps{})
			require.NoError(t, err)
			first := readFile(t, cfg.Converter.Output)

			_, err = Convert(context.Background(), cfg, Deps{})
			require.NoError(t, err)
			assert.Equal(t, first, readFile(t, cfg.Converter.Output))
		})
	}
}

func TestConvert_MissingCarsKey(t *testing.T) {
	cfg := testConfig(t)
	writeFile(t, cfg.Converter.Input, `{"trucks":[{"a":1}]}`)

	result, err := Convert(context.Background(), cfg, Deps{})
	require.NoError(t, err)
	assert.Zero(t, result.Rows)
	assert.Equal(t, "\n", readFile(t, cfg.Converter.Output))
}

func TestConvert_SingleColumnEmptyCellsReadBack(t *testing.T) {
	cfg := testConfig(t)
	writeFile(t, cfg.Converter.Input,
		`{"cars":[{"manufacturer":"Ford"},{"manufacturer":null},{"manufacturer":"Kia","image":"a.png"},{}]}`)

	result, err := Convert(context.Background(), cfg, Deps{})
	require.NoError(t, err)
	assert.Equal(t, 4, result.Rows)
	assert.Equal(t, "manufacturer\nFord\n\"\"\nKia\n\"\"\n", readFile(t, cfg.Converter.Output))

	ctx := context.Background()
	src, err := registry.CreateSource("csv", cfg)
	require.NoError(t, err)
	require.NoError(t, src.Initialize(ctx))
	defer src.Close(ctx)

	tbl, err := src.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, tbl.Len())
	assert.Equal(t, [][]string{{"Ford"}, {""}, {"Kia"}, {""}}, tbl.Rows)
}

func TestExcludeColumns(t *testing.T) {
	tbl := models.NewTable([]string{"make", "image", "image.url"})
	tbl.Rows = [][]string{{"Kia", "a.png", "u"}}

	out, err := ExcludeColumns("image", "absent")(context.Background(), tbl)
	require.NoError(t, err)
	assert.Equal(t, []string{"make", "image.url"}, out.Columns)
	assert.Equal(t, [][]string{{"Kia", "u"}}, out.Rows)
}

func TestConvert_ConnectorsLogThroughPipelineLogger(t *testing.T) {
	cfg := testConfig(t)
	writeFile(t, cfg.Converter.Input, literalScenario)

	obs, logs := observer.New(zap.DebugLevel)
	result, err := Convert(context.Background(), cfg, Deps{Logger: zap.New(obs)})
	require.NoError(t, err)
	assert.NotContains(t, result.Columns, "image")

	for _, msg := range []string{"json document flattened", "csv table written"} {
		entries := logs.FilterMessage(msg).All()
		require.Len(t, entries, 1, msg)
		assert.Equal(t, ConvertPipeline, entries[0].ContextMap()["pipeline"], msg)
	}
	assert.Equal(t, 1, logs.FilterMessage("starting pipeline").Len())
	assert.EqualValues(t, 1, logs.FilterMessage("starting pipeline").All()[0].ContextMap()["transforms"])
}

func TestConvert_Errors(t *testing.T) {
	t.Run("file not found", func(t *testing.T) {
		cfg := testConfig(t)
		_, err := Convert(context.Background(), cfg, Deps{})
		require.Error(t, err)
		assert.True(t, errors.IsType(err, errors.ErrorTypeFileNotFound))

		_, statErr := os.Stat(cfg.Converter.Output)
		assert.True(t, os.IsNotExist(statErr), "output must not be created")
	})

	t.Run("invalid json", func(t *testing.T) {
		cfg := testConfig(t)
		writeFile(t, cfg.Converter.Input, `{"cars": [}`)
		writeFile(t, cfg.Converter.Output, "previous\n")

		_, err := Convert(context.Background(), cfg, Deps{})
		require.Error(t, err)
		assert.True(t, errors.IsType(err, errors.ErrorTypeInvalidFormat))
		assert.Equal(t, "previous\n", readFile(t, cfg.Converter.Output))
	})

	t.Run("unexpected", func(t *testing.T) {
		cfg := testConfig(t)
		writeFile(t, cfg.Converter.Input, `{"cars":"none"}`)

		_, err := Convert(context.Background(), cfg, Deps{})
		require.Error(t, err)
		assert.True(t, errors.IsType(err, errors.ErrorTypeUnexpected))
	})
}

func TestVisualize_DefaultCharts(t *testing.T) {
	cfg := testConfig(t)
	writeFile(t, cfg.Visualizer.Input, strings.Join([]string{
		"manufacturer,countryOfOrigin,color",
		"Ford Shelby,USA,Dark Blue",
		"Ford Shelby,USA,Dark Green",
		"Ford Shelby,,White",
		"",
	}, "\n"))

	collector := metrics.NewCollector()
	result, err := Visualize(context.Background(), cfg, Deps{Metrics: collector})
	require.NoError(t, err)

	assert.Equal(t, 3, result.Rows)
	require.Len(t, result.Outputs, 3)
	assert.Equal(t, filepath.Join(cfg.Visualizer.OutputDir, "manufacturer.svg"), result.Outputs[0])
	for _, p := range result.Outputs {
		_, err := os.Stat(p)
		assert.NoError(t, err)
	}

	// Ford Shelby collapses into a single Ford bar
	manufacturers := readFile(t, result.Outputs[0])
	assert.Contains(t, manufacturers, "Ford")
	assert.NotContains(t, manufacturers, "Shelby")
	assert.Contains(t, manufacturers, "Total Entries: 3")

	expected := `
# HELP carflow_chart_categories Number of distinct categories in the last chart rendered for a column
# TYPE carflow_chart_categories gauge
carflow_chart_categories{column="color"} 2
carflow_chart_categories{column="countryOfOrigin"} 1
carflow_chart_categories{column="manufacturer"} 1
`
	assert.NoError(t, promtest.GatherAndCompare(collector.Registry(), strings.NewReader(expected), "carflow_chart_categories"))
	assert.Equal(t, 3.0, promtest.ToFloat64(collector.RowsCounter(VisualizePipeline)))
}

func TestVisualize_CategoryRewrites(t *testing.T) {
	cfg := testConfig(t)
	writeFile(t, cfg.Visualizer.Input, "manufacturer,countryOfOrigin,color\n"+
		"Ford Shelby,USA,Dark Blue\n"+
		"Ford Shelby,USA,Dark Green\n"+
		"Ford Shelby,USA,Red\n")

	source, err := registry.CreateSource("csv", cfg)
	require.NoError(t, err)
	destination, err := registry.CreateDestination("chart", cfg)
	require.NoError(t, err)

	_, err = NewSimplePipeline(VisualizePipeline, source, destination, Deps{}).Run(context.Background())
	require.NoError(t, err)

	rendered := destination.(*chartdest.ChartDestination).Rendered()
	require.Len(t, rendered, 3)

	manufacturers := rendered[0].Spec
	require.Len(t, manufacturers.Bars, 1)
	assert.Equal(t, "Ford", manufacturers.Bars[0].Category)
	assert.Equal(t, 3, manufacturers.Bars[0].Count)

	colors := rendered[2].Spec
	assert.Equal(t, []string{"Dark", "Red"}, colors.Categories())
	assert.Equal(t, 2, colors.Bars[0].Count)
}

func TestVisualize_BareQuoteInField(t *testing.T) {
	cfg := testConfig(t)
	writeFile(t, cfg.Visualizer.Input, "manufacturer,countryOfOrigin,color\nFord 5\" wheel,USA,Red\nKia,Korea,Blue\n")

	result, err := Visualize(context.Background(), cfg, Deps{})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Rows)
	assert.Len(t, result.Outputs, 3)
}

func TestVisualize_Errors(t *testing.T) {
	t.Run("file not found", func(t *testing.T) {
		cfg := testConfig(t)
		_, err := Visualize(context.Background(), cfg, Deps{})
		assert.True(t, errors.IsType(err, errors.ErrorTypeFileNotFound))
	})

	t.Run("ragged rows", func(t *testing.T) {
		cfg := testConfig(t)
		writeFile(t, cfg.Visualizer.Input, "manufacturer,countryOfOrigin,color\nFord,USA,Red,extra\n")
		_, err := Visualize(context.Background(), cfg, Deps{})
		assert.True(t, errors.IsType(err, errors.ErrorTypeParse))
	})

	t.Run("missing column", func(t *testing.T) {
		cfg := testConfig(t)
		writeFile(t, cfg.Visualizer.Input, "manufacturer,color\nFord,Red\n")
		collector := metrics.NewCollector()

		_, err := Visualize(context.Background(), cfg, Deps{Metrics: collector})
		require.Error(t, err)
		assert.True(t, errors.IsType(err, errors.ErrorTypeUnexpected))
		assert.Contains(t, err.Error(), "countryOfOrigin")
		assert.Equal(t, 1.0, promtest.ToFloat64(collector.ErrorsCounter(VisualizePipeline, string(errors.ErrorTypeUnexpected))))
	})

	t.Run("wrong delimiter", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.Visualizer.Delimiter = ";"
		writeFile(t, cfg.Visualizer.Input, "manufacturer,countryOfOrigin,color\nFord,USA,Red\n")
		_, err := Visualize(context.Background(), cfg, Deps{})
		assert.True(t, errors.IsType(err, errors.ErrorTypeUnexpected))
	})
}

func TestConvertAndVisualize(t *testing.T) {
	cfg := testConfig(t)
	cfg.Converter.Output = filepath.Join(filepath.Dir(cfg.Converter.Output), "data.csv.gz")
	writeFile(t, cfg.Converter.Input, literalScenario)

	results, err := ConvertAndVisualize(context.Background(), cfg, Deps{})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, cfg.Converter.Output, results[1].Input)
	assert.Equal(t, 2, results[1].Rows)
	assert.Len(t, results[1].Outputs, 3)
}

type stubSource struct {
	table  *models.Table
	err    error
	closed bool
}

func (s *stubSource) Name() string { return "stub" }
func (s *stubSource) Initialize(ctx context.Context) error { return nil }
func (s *stubSource) Read(ctx context.Context) (*models.Table, error) {
	return s.table, s.err
}
func (s *stubSource) Close(ctx context.Context) error {
	s.closed = true
	return nil
}

type stubDestination struct {
	written     *models.Table
	initialized bool
	closed      bool
}

func (d *stubDestination) Name() string { return "stub" }
func (d *stubDestination) Initialize(ctx context.Context) error {
	d.initialized = true
	return nil
}
func (d *stubDestination) Write(ctx context.Context, table *models.Table) error {
	d.written = table
	return nil
}
func (d *stubDestination) Outputs() []string { return []string{"stub://out"} }
func (d *stubDestination) Close(ctx context.Context) error {
	d.closed = true
	return nil
}

func TestSimplePipeline_Transforms(t *testing.T) {
	tbl := models.NewTable([]string{"a", "b"})
	tbl.Rows = [][]string{{"1", "2"}}
	src := &stubSource{table: tbl}
	dst := &stubDestination{}

	obs, logs := observer.New(zap.InfoLevel)
	p := NewSimplePipeline("test", src, dst, Deps{Logger: zap.New(obs)})
	p.AddTransform(func(ctx context.Context, table *models.Table) (*models.Table, error) {
		table.DropColumns("b")
		return table, nil
	})

	result, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"a"}, dst.written.Columns)
	assert.Equal(t, []string{"a"}, result.Columns)
	assert.Equal(t, []string{"stub://out"}, result.Outputs)
	assert.True(t, src.closed)
	assert.True(t, dst.closed)

	completed := logs.FilterMessage("pipeline completed").All()
	require.Len(t, completed, 1)
	assert.Equal(t, "test", completed[0].ContextMap()["pipeline"])
}

func TestSimplePipeline_SourceFailure(t *testing.T) {
	src := &stubSource{err: errors.New(errors.ErrorTypeParse, "bad row")}
	dst := &stubDestination{}

	obs, logs := observer.New(zap.InfoLevel)
	_, err := NewSimplePipeline("test", src, dst, Deps{Logger: zap.New(obs)}).Run(context.Background())
	require.Error(t, err)

	assert.True(t, src.closed)
	assert.False(t, dst.initialized, "destination must not be touched when the source fails")
	assert.Equal(t, 1, logs.FilterMessage("pipeline failed").Len())
}

func TestSimplePipeline_TransformFailure(t *testing.T) {
	src := &stubSource{table: models.NewTable([]string{"a"})}
	dst := &stubDestination{}

	p := NewSimplePipeline("test", src, dst, Deps{})
	p.AddTransform(func(ctx context.Context, table *models.Table) (*models.Table, error) {
		return nil, fmt.Errorf("nope")
	})

	_, err := p.Run(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeUnexpected))
	assert.True(t, src.closed)
}

func TestSimplePipeline_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewSimplePipeline("test", &stubSource{}, &stubDestination{}, Deps{}).Run(ctx)
	require.Error(t, err)
}

var _ core.Source = (*stubSource)(nil)
var _ core.Destination = (*stubDestination)(nil)
