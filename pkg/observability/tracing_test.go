package observability

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
)

func TestInitTracing_Disabled(t *testing.T) {
	tr, err := InitTracing(TracingConfig{})
	require.NoError(t, err)

	_, span := StartSpan(context.Background(), tr.Tracer(), "convert")
	span.SetAttribute("rows", 3)
	span.End()

	assert.NoError(t, tr.Shutdown(context.Background()))
}

func TestInitTracing_ExportsSpans(t *testing.T) {
	var buf bytes.Buffer
	tr, err := InitTracing(TracingConfig{Enabled: true, ServiceName: "carflow", ServiceVersion: "test", Writer: &buf})
	require.NoError(t, err)

	_, span := StartSpan(context.Background(), tr.Tracer(), "visualize", attribute.String("input", "data.csv"))
	span.SetAttribute("outputs", []string{"color.png"})
	span.Fail(fmt.Errorf("boom"))
	span.End()
	require.NoError(t, tr.Shutdown(context.Background()))

	out := buf.String()
	assert.Contains(t, out, `"Name": "visualize"`)
	assert.Contains(t, out, "boom")
	assert.Contains(t, out, "data.csv")
}

func TestStartSpan_NilTracer(t *testing.T) {
	ctx, span := StartSpan(context.Background(), nil, "noop")
	assert.NotNil(t, ctx)
	span.AddEvent("nothing")
	span.End()
}
