package fileengine

import (
	"github.com/bookledger/lendingledger/ledger"
)

// Option defines a functional option for configuring LedgerStore.
type Option func(*LedgerStore) error

// WithCreateIfMissing creates the ledger file with its header when NewLedgerStore does not find it.
func WithCreateIfMissing() Option {
	return func(s *LedgerStore) error {
		s.createIfMissing = true
		return nil
	}
}

// WithLogger sets the logger for the LedgerStore.
//
// Debug level: file operations with timing
// Info level: action counts, durations, concurrency conflicts
// Error level: failures that cause the operation to fail.
func WithLogger(logger ledger.Logger) Option {
	return func(s *LedgerStore) error {
		s.observer.Logger = logger
		return nil
	}
}

// WithContextualLogger sets a context-aware logger for the LedgerStore.
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
