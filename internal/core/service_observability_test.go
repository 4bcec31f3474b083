package core

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

type metricsCall struct {
	op       string
	success  bool
	duration time.Duration
}

type captureMetricsRecorder struct {
	calls []metricsCall
}

func (c *captureMetricsRecorder) Observe(_ context.Context, op string, success bool, duration time.Duration) {
	c.calls = append(c.calls, metricsCall{op: op, success: success, duration: duration})
}

func (c *captureMetricsRecorder) has(op string, success bool) bool {
	for _, call := range c.calls {
		if call.op == op && call.success == success {
			return true
		}
	}
	return false
}

type spanRecord struct {
	op  string
	err error
}

type captureTracer struct {
	started []string
	ended   []spanRecord
}

func (c *captureTracer) Start(ctx context.Context, op string) (context.Context, TraceSpan) {
	c.started = append(c.started, op)
	return ctx, &captureSpan{tracer: c, op: op}
}

type captureSpan struct {
	tracer *captureTracer
	op     string
}

func (s *captureSpan) End(err error) {
	s.tracer.ended = append(s.tracer.ended, spanRecord{op: s.op, err: err})
}

func TestServiceRecordsMetricsAndSpans(t *testing.T) {
	metrics := &captureMetricsRecorder{}
	tracer := &captureTracer{}
	svc := newSeededService(t, WithMetricsRecorder(metrics), WithTracer(tracer))
	ctx := context.Background()

	_, _, err := svc.CreateDoctor(ctx, Doctor{Name: "Dr. Asha", Specialization: "Oncology"})
	require.NoError(t, err)
	_, err = svc.DeleteRoom(ctx, 1)
	require.Error(t, err)

	assert.True(t, metrics.has("create_doctor", true))
	assert.True(t, metrics.has("delete_room", false))
	assert.Equal(t, []string{"reset_to_seed", "create_doctor", "delete_room"}, tracer.started)
	require.Len(t, tracer.ended, 3)
	assert.NoError(t, tracer.ended[1].err)
	assert.Error(t, tracer.ended[2].err)
}

func TestTriggeredBillsAreLoggedAndNotified(t *testing.T) {
	var logs bytes.Buffer
	notifier := &capturingNotifier{err: errors.New("broker down")}
	svc := newSeededService(t, WithLogger(zerolog.New(&logs)), WithBillNotifier(notifier))

	_, _, err := svc.CreateAppointment(context.Background(), Appointment{
		Date: "2025-05-07", Time: "09:00", Reason: "Review", DoctorID: 2, PatientID: 2,
	})
	require.NoError(t, err, "notification failures do not fail the operation")

	bills := notifier.received()
	require.Len(t, bills, 1)
	assert.Equal(t, "Consultation with Dr. Arjun", bills[0].Description)
	out := logs.String()
	assert.Contains(t, out, "Consultation with Dr. Arjun")
	assert.Contains(t, out, "bill notification failed")
}

func TestPrometheusMetricsRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec, err := NewPrometheusMetricsRecorder(reg)
	require.NoError(t, err)
	svc := newSeededService(t, WithMetricsRecorder(rec))
	ctx := context.Background()

	_, _, err = svc.AssignRoom(ctx, 5, 19)
	require.NoError(t, err)
	_, _, err = svc.AssignRoom(ctx, 1, 19)
	require.Error(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(rec.results.WithLabelValues("assign_room", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.results.WithLabelValues("assign_room", "error")))
	assert.Equal(t, 2, testutil.CollectAndCount(rec.durations, "poms_service_operation_duration_seconds"))

	expected := `
# HELP poms_service_operations_total Service operations by outcome.
# TYPE poms_service_operations_total counter
poms_service_operations_total{operation="assign_room",status="error"} 1
poms_service_operations_total{operation="assign_room",status="success"} 1
poms_service_operations_total{operation="reset_to_seed",status="success"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "poms_service_operations_total"))

	_, err = NewPrometheusMetricsRecorder(reg)
	assert.Error(t, err, "collectors register once per registry")
}

func TestOTelTracerRecordsErrors(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	svc := newSeededService(t, WithTracer(NewOTelTracer(tp)))
	ctx := context.Background()
	_, _, err := svc.VacateRoom(ctx, 5)
	require.Error(t, err)

	spans := recorder.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, "reset_to_seed", spans[0].Name())
	assert.Equal(t, codes.Unset, spans[0].Status().Code)
	last := spans[1]
	assert.Equal(t, "vacate_room", last.Name())
	assert.Equal(t, codes.Error, last.Status().Code)
	require.NotEmpty(t, last.Events())
	assert.Equal(t, "exception", last.Events()[0].Name)
}
