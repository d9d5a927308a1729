package shell

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookledger/lendingledger/ledger"
)

func Test_RetryWithExponentialBackoff_Success_NoRetries(t *testing.T) {
	ctx := context.Background()
	callCount := 0

	fn := func(_ context.Context) error {
		callCount++
		return nil
	}

	meta, err := RetryWithExponentialBackoff(ctx, fn)

	assert.NoError(t, err)
	assert.Equal(t, 1, callCount)
	assert.Equal(t, 1, meta.Attempts)
	assert.Equal(t, time.Duration(0), meta.TotalDelay)
	assert.Equal(t, "none", meta.LastErrorType)
	assert.False(t, meta.RetriesExhausted)
}

func Test_RetryWithExponentialBackoff_RetryOnConcurrencyConflict(t *testing.T) {
	ctx := context.Background()
	callCount := 0

	fn := func(_ context.Context) error {
		callCount++
		if callCount < 3 {
			return ledger.ErrConcurrencyConflict
		}
		return nil
	}

	meta, err := RetryWithExponentialBackoff(ctx, fn, WithBaseDelay(time.Millisecond))

	assert.NoError(t, err)
	assert.Equal(t, 3, callCount)
	assert.Equal(t, 3, meta.Attempts)
	assert.Greater(t, meta.TotalDelay, time.Duration(0))
	assert.Equal(t, "none", meta.LastErrorType)
}

func Test_RetryWithExponentialBackoff_OtherErrorsFailFast(t *testing.T) {
	ctx := context.Background()
	callCount := 0
	rejected := errors.New("rejected")

	fn := func(_ context.Context) error {
		callCount++
		return rejected
	}

	meta, err := RetryWithExponentialBackoff(ctx, fn)

	assert.ErrorIs(t, err, rejected)
	assert.Equal(t, 1, callCount)
	assert.Equal(t, "other", meta.LastErrorType)
	assert.False(t, meta.RetriesExhausted)
}

func Test_RetryWithExponentialBackoff_Exhausted(t *testing.T) {
	// arrange
	ctx := context.Background()
	metrics := &countingCollector{}
	callCount := 0

	fn := func(_ context.Context) error {
		callCount++
		return ledger.ErrConcurrencyConflict
	}

	// act
	meta, err := RetryWithExponentialBackoff(ctx, fn,
		WithMaxAttempts(3),
		WithBaseDelay(time.Millisecond),
		WithJitterFactor(0),
		WithMetrics(metrics, "Checkout"),
	)

	// assert
	assert.ErrorIs(t, err, ledger.ErrConcurrencyConflict)
	assert.Equal(t, 3, callCount)
	assert.Equal(t, 3, meta.Attempts)
	assert.True(t, meta.RetriesExhausted)
	assert.Equal(t, "concurrency_conflict", meta.LastErrorType)
	assert.Equal(t, 3*time.Millisecond, meta.TotalDelay)

	assert.Equal(t, 2, metrics.count(CommandHandlerRetriesMetric))
	assert.Equal(t, 2, metrics.count(CommandHandlerRetryDelayMetric))
	assert.Equal(t, 1, metrics.count(CommandHandlerMaxRetriesReachedMetric))
}

func Test_RetryWithExponentialBackoff_CanceledWhileWaiting(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	fn := func(_ context.Context) error {
		cancel()
		return ledger.ErrConcurrencyConflict
	}

	meta, err := RetryWithExponentialBackoff(ctx, fn, WithBaseDelay(time.Hour))

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, meta.Attempts)
	assert.Equal(t, "context_canceled", meta.LastErrorType)
}

func Test_RetryWithExponentialBackoff_InvalidOptions(t *testing.T) {
	ctx := context.Background()
	called := false
	fn := func(_ context.Context) error {
		called = true
		return nil
	}

	_, err := RetryWithExponentialBackoff(ctx, fn, WithMaxAttempts(0))
	assert.ErrorIs(t, err, ErrInvalidMaxAttempts)

	_, err = RetryWithExponentialBackoff(ctx, fn, WithBaseDelay(-1*time.Second))
	assert.ErrorIs(t, err, ErrNegativeBaseDelay)

	_, err = RetryWithExponentialBackoff(ctx, fn, WithJitterFactor(1.5))
	assert.ErrorIs(t, err, ErrInvalidJitterFactor)

	_, err = RetryWithExponentialBackoff(ctx, fn, WithMetrics(nil, "Checkout"))
	assert.ErrorIs(t, err, ErrNilMetricsCollector)

	_, err = RetryWithExponentialBackoff(ctx, fn, WithMetrics(&countingCollector{}, ""))
	assert.ErrorIs(t, err, ErrEmptyCommandType)

	assert.False(t, called)
}

func Test_BuildRetryLabels(t *testing.T) {
	labels := BuildRetryLabels("Reserve", 2, "concurrency_conflict")

	require.Len(t, labels, 3)
	assert.Equal(t, "Reserve", labels[LogAttrCommandType])
	assert.Equal(t, "2", labels["attempt_number"])
	assert.Equal(t, "concurrency_conflict", labels["error_type"])
}

type countingCollector struct {
	mu     sync.Mutex
	counts map[string]int
}

func (c *countingCollector) RecordDuration(metric string, _ time.Duration, _ map[string]string) {
	c.add(metric)
}

func (c *countingCollector) IncrementCounter(metric string, _ map[string]string) {
	c.add(metric)
}

func (c *countingCollector) RecordValue(metric string, _ float64, _ map[string]string) {
	c.add(metric)
}

func (c *countingCollector) add(metric string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.counts == nil {
		c.counts = make(map[string]int)
	}

	c.counts[metric]++
}

func (c *countingCollector) count(metric string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.counts[metric]
}
