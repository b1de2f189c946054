package rtflow

import (
	"github.com/viant/afs/storage"
	"github.com/viant/rtflow/internal/allocguard"
	"github.com/viant/rtflow/internal/clock"
	"github.com/viant/rtflow/observer"
	"github.com/viant/rtflow/policy"
	"github.com/viant/rtflow/tracing"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Option customises the Service
type Option func(s *Service)

// WithConfig sets the engine configuration; the service keeps a copy
func WithConfig(config *Config) Option {
	return func(s *Service) {
		if config != nil {
			clone := *config
			s.config = &clone
		}
	}
}

// WithLogger sets the logger shared by all components
func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock sets the monotonic clock used by the scheduler and the loop
func WithClock(clk clock.Clock) Option {
	return func(s *Service) {
		s.clock = clk
	}
}

// WithGuard sets the allocation guard used in deterministic mode
func WithGuard(guard allocguard.Guard) Option {
	return func(s *Service) {
		s.guard = guard
	}
}

// WithSinks adds observability sinks next to the built-in metric registry
// and audit log
func WithSinks(sinks ...observer.Sink) Option {
	return func(s *Service) {
		s.sinks = append(s.sinks, sinks...)
	}
}

// WithTracer enables the OpenTelemetry sink with the supplied tracer
func WithTracer(tracer trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tracer
	}
}

// WithTracing configures OpenTelemetry tracing with the stdout exporter. If
// outputFile is empty traces go to stdout. It takes precedence over the
// tracing section of WithConfig regardless of option order. The first
// successful initialisation wins.
func WithTracing(serviceName, serviceVersion, outputFile string) Option {
	return func(s *Service) {
		s.tracing = &TracingConfig{Enabled: true, ServiceName: serviceName, ServiceVersion: serviceVersion, OutputFile: outputFile}
	}
}

// WithTracingExporter configures OpenTelemetry tracing using a custom
// SpanExporter (OTLP, Jaeger, Zipkin …). The first successful initialisation
// wins.
func WithTracingExporter(serviceName, serviceVersion string, exporter sdktrace.SpanExporter) Option {
	return func(s *Service) {
		if err := tracing.InitWithExporter(serviceName, serviceVersion, exporter); err != nil {
			s.logger.Warn("failed to init tracing", zap.Error(err))
			return
		}
		s.tracer = tracing.Tracer()
	}
}

// WithMetaBaseURL sets the base URL for relative definition locations
func WithMetaBaseURL(URL string) Option {
	return func(s *Service) {
		s.metaBaseURL = URL
	}
}

// WithMetaFsOptions sets storage options used to load definitions
func WithMetaFsOptions(options ...storage.Option) Option {
	return func(s *Service) {
		s.metaFsOptions = options
	}
}

// WithPolicy sets the default command policy used by Handle
func WithPolicy(p *policy.Policy) Option {
	return func(s *Service) {
		s.policy = p
	}
}
