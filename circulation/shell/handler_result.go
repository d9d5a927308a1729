package shell

import (
	"time"

	"github.com/bookledger/lendingledger/ledger"
)

// HandlerResult is what a command handler reports besides its error.
type HandlerResult struct {
	// Actions holds the appended records, nil on failure.
	Actions ledger.Actions

	// RetryAttempts counts every Query -> Decide -> Append round, the first one included.
	RetryAttempts int

	// TotalRetryDelay is the time spent sleeping between rounds.
	TotalRetryDelay time.Duration

	// LastErrorType classifies the error of the last failed round ("none" if there was none).
	LastErrorType string

	// RetriesExhausted is set when the handler gave up on repeated concurrency conflicts.
	RetriesExhausted bool
}

// NewSuccessResult reports the appended actions together with the retry metrics.
func NewSuccessResult(retryMetrics RetryMetrics, actions ledger.Actions) HandlerResult {
	result := fromRetryMetrics(retryMetrics)
	result.Actions = actions

	return result
}

// NewErrorResult reports only the retry metrics of a failed command.
func NewErrorResult(retryMetrics RetryMetrics) HandlerResult {
	return fromRetryMetrics(retryMetrics)
}

func fromRetryMetrics(m RetryMetrics) HandlerResult {
	return HandlerResult{
		RetryAttempts:    m.Attempts,
		TotalRetryDelay:  m.TotalDelay,
		LastErrorType:    m.LastErrorType,
		RetriesExhausted: m.RetriesExhausted,
	}
}
