package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/trace"

	"loan-approval-client/internal/common/logger"
)

// Observability holds the session-level OpenTelemetry instruments.
type Observability struct {
	meterProvider *metric.MeterProvider
	tracer        trace.Tracer
	submissions   otelmetric.Int64Counter
	roundTrip     otelmetric.Float64Histogram
	chatReplies   otelmetric.Int64Counter
}

// New registers a Prometheus-backed meter provider as the global provider.
// On exporter failure it returns a recorder that drops everything.
func New(serviceName string, log logger.Logger) *Observability {
	exporter, err := prometheus.New()
	if err != nil {
		log.Warn("failed to create prometheus exporter", map[string]interface{}{"error": err.Error()})
		return &Observability{tracer: otel.Tracer(serviceName)}
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	o := NewWithProvider(serviceName, provider)
	o.meterProvider = provider
	return o
}

// NewWithProvider builds the instruments on an explicit provider without touching globals.
func NewWithProvider(serviceName string, provider otelmetric.MeterProvider) *Observability {
	meter := provider.Meter(serviceName)

	submissions, _ := meter.Int64Counter(
		"loan.submissions",
		otelmetric.WithDescription("Loan applications settled, by outcome"),
	)

	roundTrip, _ := meter.Float64Histogram(
		"loan.submission.duration",
		otelmetric.WithDescription("Time from submit to a settled session state"),
		otelmetric.WithUnit("ms"),
	)

	chatReplies, _ := meter.Int64Counter(
		"loan.chat.replies",
		otelmetric.WithDescription("Assistant replies, by whether the fallback was used"),
	)

	return &Observability{
		tracer:      otel.Tracer(serviceName),
		submissions: submissions,
		roundTrip:   roundTrip,
		chatReplies: chatReplies,
	}
}

// NewNoOp returns an Observability whose instruments record nothing.
func NewNoOp() *Observability {
	return &Observability{}
}

func (o *Observability) RecordSubmission(ctx context.Context, outcome string) {
	if o != nil && o.submissions != nil {
		o.submissions.Add(ctx, 1, otelmetric.WithAttributes(
			attribute.String("outcome", outcome),
		))
	}
}

func (o *Observability) RecordRoundTrip(ctx context.Context, duration time.Duration, outcome string) {
	if o != nil && o.roundTrip != nil {
		o.roundTrip.Record(ctx, float64(duration.Milliseconds()), otelmetric.WithAttributes(
			attribute.String("outcome", outcome),
		))
	}
}

func (o *Observability) RecordChatReply(ctx context.Context, fallback bool) {
	if o != nil && o.chatReplies != nil {
		o.chatReplies.Add(ctx, 1, otelmetric.WithAttributes(
			attribute.Bool("fallback", fallback),
		))
	}
}

// StartSpan starts a span on the global tracer provider.
func (o *Observability) StartSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	tracer := otel.Tracer("loan-approval-client")
	if o != nil && o.tracer != nil {
		tracer = o.tracer
	}
	return tracer.Start(ctx, name)
}

func (o *Observability) Shutdown() {
	if o != nil && o.meterProvider != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = o.meterProvider.Shutdown(ctx)
	}
}
