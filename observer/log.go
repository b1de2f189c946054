package observer

import (
	"context"

	"go.uber.org/zap"
)

// Log writes metrics and events to a zap logger at debug level
type Log struct {
	logger *zap.Logger
}

// NewLog creates a logging sink
func NewLog(logger *zap.Logger) *Log {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Log{logger: logger}
}

// Metric implements Sink
func (l *Log) Metric(name string, value float64) {
	l.logger.Debug("metric", zap.String("name", name), zap.Float64("value", value))
}

// Trace implements Sink
func (l *Log) Trace(_ context.Context, event Event) {
	if ce := l.logger.Check(zap.DebugLevel, event.Kind.String()); ce != nil {
		ce.Write(
			zap.Uint32("graph", event.Graph),
			zap.Int("operator", event.Operator),
			zap.String("name", event.Name),
			zap.Int("channel", event.Channel),
			zap.Int("depth", event.Depth),
			zap.Duration("elapsed", event.Elapsed),
			zap.Error(event.Err))
	}
}
