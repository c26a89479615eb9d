package core

import (
	"context"
	"log/slog"
	"time"
)

// Logger receives structured key/value events from the service. The zero
// default is a no-op so instrumentation never becomes a hard dependency.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// SlogLogger adapts a *slog.Logger to the service Logger interface.
type SlogLogger struct {
	L *slog.Logger
}

// Debug forwards to slog at debug level.
func (s SlogLogger) Debug(msg string, args ...any) { s.L.Debug(msg, args...) }

// Info forwards to slog at info level.
func (s SlogLogger) Info(msg string, args ...any) { s.L.Info(msg, args...) }

// Warn forwards to slog at warn level.
func (s SlogLogger) Warn(msg string, args ...any) { s.L.Warn(msg, args...) }

// Error forwards to slog at error level.
func (s SlogLogger) Error(msg string, args ...any) { s.L.Error(msg, args...) }

// MetricsRecorder aggregates operation outcomes and latencies.
type MetricsRecorder interface {
	Observe(ctx context.Context, operation string, success bool, duration time.Duration)
}

// TraceSpan terminates a single traced operation.
type TraceSpan interface {
	End(err error)
}

// Tracer opens spans around service operations.
type Tracer interface {
	Start(ctx context.Context, operation string) (context.Context, TraceSpan)
}

type noopSpan struct{}

func (noopSpan) End(error) {}

type noopTracer struct{}

func (noopTracer) Start(ctx context.Context, _ string) (context.Context, TraceSpan) {
	return ctx, noopSpan{}
}

// Option configures optional service collaborators.
type Option func(*Service)

// WithLogger wires a structured logger into the service.
func WithLogger(logger Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics wires a metrics recorder into the service.
func WithMetrics(recorder MetricsRecorder) Option {
	return func(s *Service) {
		if recorder != nil {
			s.metrics = recorder
		}
	}
}

// WithTracer wires a tracer into the service.
func WithTracer(tracer Tracer) Option {
	return func(s *Service) {
		if tracer != nil {
			s.tracer = tracer
		}
	}
}

// instrument wraps a service operation with tracing, timing, metrics and
// outcome logging.
func (s *Service) instrument(ctx context.Context, operation string, fn func(context.Context) error) error {
	ctx, span := s.tracer.Start(ctx, operation)
	started := time.Now()
	err := fn(ctx)
	duration := time.Since(started)
	span.End(err)
	if s.metrics != nil {
		s.metrics.Observe(ctx, operation, err == nil, duration)
	}
	if err != nil {
		s.logger.Warn("operation failed", "operation", operation, "error", err, "duration_ms", duration.Milliseconds())
	} else {
		s.logger.Debug("operation completed", "operation", operation, "duration_ms", duration.Milliseconds())
	}
	return err
}
