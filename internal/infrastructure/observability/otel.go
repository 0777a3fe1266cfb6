package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
)

// Metrics holds all application metrics
type Metrics struct {
	PredictionsServed   metric.Int64Counter
	PredictionsFailed   metric.Int64Counter
	OutcomesRecorded    metric.Int64Counter
	TrainingJobsStarted metric.Int64Counter
	TrainingJobsFailed  metric.Int64Counter
	TrainingDuration    metric.Float64Histogram
	ModelAccuracy       metric.Float64Gauge
}

// Setup initializes OpenTelemetry
func Setup(ctx context.Context, serviceName, serviceVersion, endpoint string) (func(context.Context) error, error) {
	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(serviceVersion),
		),
	)
	if err != nil {
		return nil, err
	}

	traceExporter, err := otlptracegrpc.New(ctx,
		otlptracegrpc.WithEndpoint(endpoint),
		otlptracegrpc.WithInsecure(),
	)
	if err != nil {
		return nil, err
	}

	tracerProvider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(traceExporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tracerProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	shutdown := func(ctx context.Context) error {
		return tracerProvider.Shutdown(ctx)
	}

	return shutdown, nil
}

// InitMetrics initializes application metrics
func InitMetrics() (*Metrics, error) {
	meter := otel.Meter("github.com/healthsphere/noshow/backend")

	predictionsServed, err := meter.Int64Counter(
		"noshow.predictions.served",
		metric.WithDescription("Number of predictions served"),
	)
	if err != nil {
		return nil, err
	}

	predictionsFailed, err := meter.Int64Counter(
		"noshow.predictions.failed",
		metric.WithDescription("Number of prediction requests that failed"),
	)
	if err != nil {
		return nil, err
	}

	outcomesRecorded, err := meter.Int64Counter(
		"noshow.outcomes.recorded",
		metric.WithDescription("Number of visit outcomes recorded"),
	)
	if err != nil {
		return nil, err
	}

	trainingJobsStarted, err := meter.Int64Counter(
		"noshow.training.jobs.started",
		metric.WithDescription("Number of training jobs started"),
	)
	if err != nil {
		return nil, err
	}

	trainingJobsFailed, err := meter.Int64Counter(
		"noshow.training.jobs.failed",
		metric.WithDescription("Number of training jobs that failed"),
	)
	if err != nil {
		return nil, err
	}

	trainingDuration, err := meter.Float64Histogram(
		"noshow.training.duration",
		metric.WithDescription("Duration of training jobs in seconds"),
	)
	if err != nil {
		return nil, err
	}

	modelAccuracy, err := meter.Float64Gauge(
		"noshow.model.accuracy",
		metric.WithDescription("Held-out accuracy of the active model"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		PredictionsServed:   predictionsServed,
		PredictionsFailed:   predictionsFailed,
		OutcomesRecorded:    outcomesRecorded,
		TrainingJobsStarted: trainingJobsStarted,
		TrainingJobsFailed:  trainingJobsFailed,
		TrainingDuration:    trainingDuration,
		ModelAccuracy:       modelAccuracy,
	}, nil
}
