// Package observe wraps the optional logging, metrics, and tracing collectors of a ledger engine.
//
// Every collector is optional; an Observer without collectors does nothing.
package observe

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/bookledger/lendingledger/ledger"
)

const (
	MetricQueryDuration        = "ledger_query_duration_seconds"
	MetricAppendDuration       = "ledger_append_duration_seconds"
	MetricActionsQueried       = "ledger_actions_queried"
	MetricActionsAppended      = "ledger_actions_appended"
	MetricConcurrencyConflicts = "ledger_concurrency_conflicts_total"
	MetricStorageErrors        = "ledger_storage_errors_total"

	SpanNameQuery  = "ledger.query"
	SpanNameAppend = "ledger.append"

	OperationQuery  = "query"
	OperationAppend = "append"

	StatusSuccess  = "success"
	StatusError    = "error"
	StatusConflict = "conflict"

	AttrOperation        = "operation"
	AttrEngine           = "engine"
	AttrStatus           = "status"
	AttrErrorType        = "error_type"
	AttrActionCount      = "action_count"
	AttrMaxSequence      = "max_sequence"
	AttrExpectedSequence = "expected_sequence"
	AttrActualSequence   = "actual_sequence"
	AttrDurationMS       = "duration_ms"
	AttrError            = "error"

	logMsgOperation           = "ledger operation: "
	logMsgQueryCompleted      = "query completed"
	logMsgActionsAppended     = "actions appended"
	logMsgConcurrencyConflict = "concurrency conflict detected"
)

// Observer fans log lines, metrics, and spans out to the configured collectors.
type Observer struct {
	Engine           string
	Logger           ledger.Logger
	ContextualLogger ledger.ContextualLogger
	Metrics          ledger.MetricsCollector
	Tracing          ledger.TracingCollector
}

// Debug logs at debug level to every configured logger.
func (o Observer) Debug(ctx context.Context, msg string, args ...any) {
	if o.Logger != nil {
		o.Logger.Debug(msg, args...)
	}

	if o.ContextualLogger != nil {
		o.ContextualLogger.DebugContext(ctx, msg, args...)
	}
}

// Info logs at info level to every configured logger.
func (o Observer) Info(ctx context.Context, msg string, args ...any) {
	if o.Logger != nil {
		o.Logger.Info(msg, args...)
	}

	if o.ContextualLogger != nil {
		o.ContextualLogger.InfoContext(ctx, msg, args...)
	}
}

// Warn logs at warn level to every configured logger.
func (o Observer) Warn(ctx context.Context, msg string, err error, args ...any) {
	allArgs := append([]any{AttrError, err.Error()}, args...)

	if o.Logger != nil {
		o.Logger.Warn(msg, allArgs...)
	}

	if o.ContextualLogger != nil {
		o.ContextualLogger.WarnContext(ctx, msg, allArgs...)
	}
}

// Error logs err at error level to every configured logger.
func (o Observer) Error(ctx context.Context, msg string, err error, args ...any) {
	allArgs := append([]any{AttrError, err.Error()}, args...)

	if o.Logger != nil {
		o.Logger.Error(msg, allArgs...)
	}

	if o.ContextualLogger != nil {
		o.ContextualLogger.ErrorContext(ctx, msg, allArgs...)
	}
}

// Operation tracks one query or append from start to its outcome.
type Operation struct {
	observer Observer
	ctx      context.Context
	name     string
	span     ledger.SpanContext
	start    time.Time
}

// StartQuery starts observing a query.
func (o Observer) StartQuery(ctx context.Context) (context.Context, *Operation) {
	return o.start(ctx, OperationQuery, SpanNameQuery, map[string]string{
		AttrOperation: OperationQuery,
		AttrEngine:    o.Engine,
	})
}

// StartAppend starts observing an append of actionCount actions.
func (o Observer) StartAppend(
	ctx context.Context,
	actionCount int,
	expectedMaxSequenceNumber ledger.MaxSequenceNumberUint,
) (context.Context, *Operation) {

	return o.start(ctx, OperationAppend, SpanNameAppend, map[string]string{
		AttrOperation:        OperationAppend,
		AttrEngine:           o.Engine,
		AttrActionCount:      fmt.Sprintf("%d", actionCount),
		AttrExpectedSequence: fmt.Sprintf("%d", expectedMaxSequenceNumber),
	})
}

func (o Observer) start(ctx context.Context, operation, spanName string, attrs map[string]string) (context.Context, *Operation) {
	op := &Operation{
		observer: o,
		name:     operation,
		start:    time.Now(),
	}

	if o.Tracing != nil {
		ctx, op.span = o.Tracing.StartSpan(ctx, spanName, attrs)
	}

	op.ctx = ctx

	return ctx, op
}

// Elapsed returns the time passed since the operation started.
func (op *Operation) Elapsed() time.Duration {
	return time.Since(op.start)
}

// QuerySucceeded records a successful query.
func (op *Operation) QuerySucceeded(actionCount int, maxSequenceNumber ledger.MaxSequenceNumberUint) {
	duration := op.Elapsed()

	op.recordDuration(MetricQueryDuration, duration, StatusSuccess)
	op.recordValue(MetricActionsQueried, float64(actionCount), StatusSuccess)
	op.finishSpan(StatusSuccess, map[string]string{
		AttrActionCount: fmt.Sprintf("%d", actionCount),
		AttrMaxSequence: fmt.Sprintf("%d", maxSequenceNumber),
		AttrDurationMS:  fmt.Sprintf("%.2f", ToMilliseconds(duration)),
	})

	op.observer.Info(
		op.ctx,
		logMsgOperation+logMsgQueryCompleted,
		AttrEngine, op.observer.Engine,
		AttrActionCount, actionCount,
		AttrDurationMS, ToMilliseconds(duration),
	)
}

// AppendSucceeded records a successful append.
func (op *Operation) AppendSucceeded(actionCount int) {
	duration := op.Elapsed()

	op.recordDuration(MetricAppendDuration, duration, StatusSuccess)
	op.recordValue(MetricActionsAppended, float64(actionCount), StatusSuccess)
	op.finishSpan(StatusSuccess, map[string]string{
		AttrActionCount: fmt.Sprintf("%d", actionCount),
		AttrDurationMS:  fmt.Sprintf("%.2f", ToMilliseconds(duration)),
	})

	op.observer.Info(
		op.ctx,
		logMsgOperation+logMsgActionsAppended,
		AttrEngine, op.observer.Engine,
		AttrActionCount, actionCount,
		AttrDurationMS, ToMilliseconds(duration),
	)
}

// Conflicted records an append rejected because the ledger changed since it was queried.
func (op *Operation) Conflicted(expected, actual ledger.MaxSequenceNumberUint) {
	duration := op.Elapsed()

	op.recordDuration(MetricAppendDuration, duration, StatusConflict)
	op.incrementCounter(MetricConcurrencyConflicts, map[string]string{
		AttrOperation: op.name,
		AttrEngine:    op.observer.Engine,
	})
	op.finishSpan(StatusConflict, map[string]string{
		AttrExpectedSequence: fmt.Sprintf("%d", expected),
		AttrActualSequence:   fmt.Sprintf("%d", actual),
	})

	op.observer.Info(
		op.ctx,
		logMsgOperation+logMsgConcurrencyConflict,
		AttrEngine, op.observer.Engine,
		AttrExpectedSequence, expected,
		AttrActualSequence, actual,
	)
}

// Failed records a failed operation and logs err with msg.
func (op *Operation) Failed(msg string, errorType string, err error, args ...any) {
	duration := op.Elapsed()

	metric := MetricQueryDuration
	if op.name == OperationAppend {
		metric = MetricAppendDuration
	}

	op.recordDuration(metric, duration, StatusError)
	op.incrementCounter(MetricStorageErrors, map[string]string{
		AttrOperation: op.name,
		AttrEngine:    op.observer.Engine,
		AttrStatus:    StatusError,
		AttrErrorType: errorType,
	})
	op.finishSpan(StatusError, map[string]string{
		AttrErrorType:  errorType,
		AttrDurationMS: fmt.Sprintf("%.2f", ToMilliseconds(duration)),
	})

	op.observer.Error(op.ctx, msg, err, append([]any{AttrErrorType, errorType}, args...)...)
}

func (op *Operation) recordDuration(metric string, duration time.Duration, status string) {
	if op.observer.Metrics == nil {
		return
	}

	labels := map[string]string{
		AttrOperation: op.name,
		AttrEngine:    op.observer.Engine,
		AttrStatus:    status,
	}

	if contextual, ok := op.observer.Metrics.(ledger.ContextualMetricsCollector); ok {
		contextual.RecordDurationContext(op.ctx, metric, duration, labels)
		return
	}

	op.observer.Metrics.RecordDuration(metric, duration, labels)
}

func (op *Operation) recordValue(metric string, value float64, status string) {
	if op.observer.Metrics == nil {
		return
	}

	labels := map[string]string{
		AttrOperation: op.name,
		AttrEngine:    op.observer.Engine,
		AttrStatus:    status,
	}

	if contextual, ok := op.observer.Metrics.(ledger.ContextualMetricsCollector); ok {
		contextual.RecordValueContext(op.ctx, metric, value, labels)
		return
	}

	op.observer.Metrics.RecordValue(metric, value, labels)
}

func (op *Operation) incrementCounter(metric string, labels map[string]string) {
	if op.observer.Metrics == nil {
		return
	}

	if contextual, ok := op.observer.Metrics.(ledger.ContextualMetricsCollector); ok {
		contextual.IncrementCounterContext(op.ctx, metric, labels)
		return
	}

	op.observer.Metrics.IncrementCounter(metric, labels)
}

func (op *Operation) finishSpan(status string, attrs map[string]string) {
	if op.observer.Tracing == nil || op.span == nil {
		return
	}

	op.span.SetStatus(status)
	op.observer.Tracing.FinishSpan(op.span, status, attrs)
}

// ToMilliseconds converts a time.Duration to float64 milliseconds with 3 decimal places.
func ToMilliseconds(d time.Duration) float64 {
	return math.Round(float64(d.Nanoseconds())/1e6*1000) / 1000
}
