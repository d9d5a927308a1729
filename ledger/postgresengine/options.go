package postgresengine

import (
	"github.com/bookledger/lendingledger/ledger"
)

// Option defines a functional option for configuring LedgerStore.
type Option func(*LedgerStore) error

// WithTableName sets the table name for the LedgerStore.
func WithTableName(tableName string) Option {
	return func(s *LedgerStore) error {
		if tableName == "" {
			return ledger.ErrEmptyTableName
		}

		s.tableName = tableName

		return nil
	}
}

// WithLogger sets the logger for the LedgerStore.
// The logger will receive messages at different levels based on the logger's configured level:
//
// Debug level: SQL queries with execution timing (development use)
// Info level: action counts, durations, concurrency conflicts (production-safe)
// Warn level: non-critical issues like cleanup failures
// Error level: critical failures that cause operation failures.
func WithLogger(logger ledger.Logger) Option {
	return func(s *LedgerStore) error {
		s.observer.Logger = logger
		return nil
	}
}

// WithContextualLogger sets the contextual logger for the LedgerStore.
// Log records then carry the trace and span of the current operation.
func WithContextualLogger(logger ledger.ContextualLogger) Option {
	return func(s *LedgerStore) error {
		s.observer.ContextualLogger = logger
		return nil
	}
}

// WithMetrics sets the metrics collector for the LedgerStore.
func WithMetrics(collector ledger.MetricsCollector) Option {
	return func(s *LedgerStore) error {
		s.observer.Metrics = collector
		return nil
	}
}

// WithTracing sets the tracing collector for the LedgerStore.
func WithTracing(collector ledger.TracingCollector) Option {
	return func(s *LedgerStore) error {
		s.observer.Tracing = collector
		return nil
	}
}
