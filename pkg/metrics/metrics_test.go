package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_Counters(t *testing.T) {
	c := NewCollector()

	c.RowsProcessed("convert", 3)
	c.RowsProcessed("convert", 2)
	c.PipelineError("visualize", "parse")
	c.ChartCategories("color", 4)

	assert.Equal(t, 5.0, testutil.ToFloat64(c.rowsProcessed.WithLabelValues("convert")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.pipelineErrors.WithLabelValues("visualize", "parse")))
	assert.Equal(t, 4.0, testutil.ToFloat64(c.chartCategories.WithLabelValues("color")))
}

func TestCollector_SeparateRegistries(t *testing.T) {
	a, b := NewCollector(), NewCollector()
	a.RowsProcessed("convert", 1)

	assert.Equal(t, 1.0, testutil.ToFloat64(a.rowsProcessed.WithLabelValues("convert")))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.rowsProcessed.WithLabelValues("convert")))
}

func TestCollector_WriteTextfile(t *testing.T) {
	c := NewCollector()
	c.RowsProcessed("convert", 7)
	c.ObserveDuration("convert", 20*time.Millisecond)

	path := filepath.Join(t.TempDir(), "carflow.prom")
	require.NoError(t, c.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	assert.True(t, strings.Contains(text, `carflow_rows_processed_total{pipeline="convert"} 7`), text)
	assert.Contains(t, text, "carflow_pipeline_duration_seconds_count")
}

func TestTimer(t *testing.T) {
	timer := NewTimer("convert")
	assert.Equal(t, "convert", timer.Name())
	assert.GreaterOrEqual(t, timer.Stop(), time.Duration(0))
}
