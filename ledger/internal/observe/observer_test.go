package observe_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookledger/lendingledger/ledger/internal/observe"
	"github.com/bookledger/lendingledger/ledger/internal/testdoubles"
)

func Test_Observer_WithoutCollectors_DoesNothing(t *testing.T) {
	observer := observe.Observer{Engine: "file"}

	ctx, op := observer.StartQuery(context.Background())

	assert.NotNil(t, ctx)
	assert.NotPanics(t, func() { op.QuerySucceeded(3, 7) })
	assert.NotPanics(t, func() { op.Failed("boom", "io", errors.New("disk gone")) })
}

func Test_Observer_QuerySucceeded_RecordsAllSignals(t *testing.T) {
	// arrange
	metrics := testdoubles.NewMetricsCollectorSpy()
	tracing := testdoubles.NewTracingCollectorSpy()
	logs := testdoubles.NewLogHandlerSpy()
	observer := observe.Observer{
		Engine:  "file",
		Logger:  slog.New(logs),
		Metrics: metrics,
		Tracing: tracing,
	}

	// act
	_, op := observer.StartQuery(context.Background())
	op.QuerySucceeded(3, 7)

	// assert
	assert.True(t, metrics.HasDurationRecord(observe.MetricQueryDuration, observe.StatusSuccess))
	require.Len(t, metrics.ValueRecords(), 1)
	assert.Equal(t, float64(3), metrics.ValueRecords()[0].Value)

	spans := tracing.SpanRecords()
	require.Len(t, spans, 1)
	assert.Equal(t, observe.SpanNameQuery, spans[0].Name)
	assert.True(t, spans[0].Finished)
	assert.Equal(t, observe.StatusSuccess, spans[0].FinishStatus)
	assert.Equal(t, "7", spans[0].EndAttributes[observe.AttrMaxSequence])

	assert.True(t, logs.HasRecord(slog.LevelInfo, "query completed"))
}

func Test_Observer_Conflicted_CountsConflict(t *testing.T) {
	// arrange
	metrics := testdoubles.NewContextualMetricsCollectorSpy()
	tracing := testdoubles.NewTracingCollectorSpy()
	observer := observe.Observer{Engine: "postgres", Metrics: metrics, Tracing: tracing}

	// act
	_, op := observer.StartAppend(context.Background(), 2, 4)
	op.Conflicted(4, 5)

	// assert
	assert.True(t, metrics.HasCounterRecord(observe.MetricConcurrencyConflicts))
	assert.True(t, metrics.HasDurationRecord(observe.MetricAppendDuration, observe.StatusConflict))
	assert.Positive(t, metrics.ContextCalls(), "context-aware collector should be preferred")

	spans := tracing.SpanRecords()
	require.Len(t, spans, 1)
	assert.Equal(t, "2", spans[0].StartAttributes[observe.AttrActionCount])
	assert.Equal(t, observe.StatusConflict, spans[0].FinishStatus)
	assert.Equal(t, observe.StatusConflict, spans[0].SpanContext.Status())
}

func Test_Observer_Failed_LogsAndCountsError(t *testing.T) {
	// arrange
	metrics := testdoubles.NewMetricsCollectorSpy()
	logs := testdoubles.NewLogHandlerSpy()
	observer := observe.Observer{Engine: "file", ContextualLogger: slog.New(logs), Metrics: metrics}

	// act
	_, op := observer.StartAppend(context.Background(), 1, 0)
	op.Failed("writing the ledger file failed", "io", errors.New("read-only file system"))

	// assert
	assert.True(t, metrics.HasCounterRecord(observe.MetricStorageErrors))
	assert.True(t, metrics.HasDurationRecord(observe.MetricAppendDuration, observe.StatusError))
	assert.True(t, logs.HasRecord(slog.LevelError, "writing the ledger file failed"))
}

func Test_ToMilliseconds(t *testing.T) {
	assert.InDelta(t, 1.5, observe.ToMilliseconds(1500000), 0.0001)
}
