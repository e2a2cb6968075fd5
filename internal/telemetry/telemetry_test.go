package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

// recordSpans installs a recording tracer for the duration of the test.
func recordSpans(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))

	prev := active.Load()
	useTracer(tp.Tracer("test"))
	t.Cleanup(func() {
		active.Store(prev)
		_ = tp.Shutdown(context.Background())
	})
	return rec
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.False(t, cfg.Enabled)
	assert.Equal(t, "idrecon", cfg.ServiceName)
	assert.Equal(t, "dev", cfg.ServiceVersion)
	assert.Equal(t, "localhost:4317", cfg.Endpoint)
	assert.True(t, cfg.Insecure)
	assert.Equal(t, 1.0, cfg.SampleRate)
}

func TestConfigValidate(t *testing.T) {
	cfg := DefaultConfig()
	assert.NoError(t, cfg.Validate(), "disabled config is always valid")

	cfg.Enabled = true
	assert.NoError(t, cfg.Validate())

	cfg.SampleRate = 1.5
	assert.Error(t, cfg.Validate())

	cfg.SampleRate = 0.5
	cfg.Endpoint = ""
	_, err := Init(context.Background(), cfg)
	assert.Error(t, err)
}

func TestInitDisabled(t *testing.T) {
	ctx := context.Background()

	shutdown, err := Init(ctx, DefaultConfig())
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	assert.NoError(t, shutdown(ctx))
	assert.False(t, IsEnabled())

	_, span := StartSpan(ctx, "noop")
	assert.False(t, span.SpanContext().IsValid())
	span.End()
}

func TestSampler(t *testing.T) {
	tests := []struct {
		rate float64
		want string
	}{
		{1.0, "AlwaysOnSampler"},
		{2.0, "AlwaysOnSampler"},
		{0.0, "AlwaysOffSampler"},
		{0.25, "TraceIDRatioBased{0.25}"},
	}
	for _, tt := range tests {
		assert.Contains(t, samplerFor(tt.rate).Description(), tt.want)
	}
}

func TestHelpersWithoutSpan(t *testing.T) {
	ctx := context.Background()

	require.NotPanics(t, func() {
		SetAttributes(ctx, ClientIP("192.168.1.1"))
	})
	assert.Empty(t, TraceID(ctx))
	assert.Empty(t, SpanID(ctx))
}

func TestStartReconSpan(t *testing.T) {
	rec := recordSpans(t)

	ctx, span := StartReconSpan(context.Background(), SpanConsolidate, Rows(12), Domain("izhevsk"))
	assert.NotEmpty(t, TraceID(ctx))
	assert.NotEmpty(t, SpanID(ctx))
	EndSpan(span, nil)

	ended := rec.Ended()
	require.Len(t, ended, 1)
	got := ended[0]
	assert.Equal(t, SpanConsolidate, got.Name())
	assert.Equal(t, trace.SpanKindInternal, got.SpanKind())
	assert.Contains(t, got.Attributes(), attribute.Int(AttrRows, 12))
	assert.Contains(t, got.Attributes(), attribute.String(AttrDomain, "izhevsk"))
	assert.Equal(t, codes.Unset, got.Status().Code)
}

func TestEndSpanRecordsError(t *testing.T) {
	rec := recordSpans(t)

	_, span := StartClientSpan(context.Background(), SpanDirSync, LDAPServer("dc1:636"), LDAPBind("simple"))
	EndSpan(span, errors.New("invalid credentials"))

	ended := rec.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, trace.SpanKindClient, ended[0].SpanKind())
	assert.Equal(t, codes.Error, ended[0].Status().Code)
	assert.Equal(t, "invalid credentials", ended[0].Status().Description)
	require.Len(t, ended[0].Events(), 1)
	assert.Equal(t, "exception", ended[0].Events()[0].Name)
}

func TestAttributeHelpers(t *testing.T) {
	tests := []struct {
		attr attribute.KeyValue
		key  string
	}{
		{ClientIP("10.0.0.1"), AttrClientIP},
		{Route("/api/v1/stats"), AttrRoute},
		{Source("hr"), AttrSource},
		{Filename("hr.xlsx"), AttrFilename},
		{Format("xlsx"), AttrFormat},
		{Skipped(1), AttrSkipped},
		{IdentityKey("e1"), AttrKey},
		{Findings(3), AttrFindings},
		{Bucket("reports"), AttrBucket},
		{StorageKey("a/b.xlsx"), AttrObjectKey},
		{Region("eu-west-1"), AttrRegion},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			assert.Equal(t, tt.key, string(tt.attr.Key))
		})
	}
}

func TestProfilingDisabled(t *testing.T) {
	shutdown, err := InitProfiling(ProfilingConfig{Enabled: false})
	require.NoError(t, err)
	assert.NoError(t, shutdown())
	assert.False(t, IsProfilingEnabled())
}

func TestParseProfileTypes(t *testing.T) {
	types, err := parseProfileTypes([]string{"cpu", " Alloc_Space ", "inuse_space", "goroutines",
		"mutex_count", "mutex_duration", "block_count", "block_duration", "alloc_objects", "inuse_objects"})
	require.NoError(t, err)
	assert.Len(t, types, 10)

	_, err = parseProfileTypes([]string{"cpu", "heap"})
	assert.ErrorContains(t, err, `"heap"`)

	types, err = parseProfileTypes(defaultProfileTypes)
	require.NoError(t, err)
	assert.Len(t, types, 3)
}

func TestSetAttributesOnActiveSpan(t *testing.T) {
	rec := recordSpans(t)

	ctx, span := StartReconSpan(context.Background(), SpanAudit)
	SetAttributes(ctx, Findings(4))
	EndSpan(span, nil)

	require.Len(t, rec.Ended(), 1)
	assert.Contains(t, rec.Ended()[0].Attributes(), attribute.Int(AttrFindings, 4))
}
