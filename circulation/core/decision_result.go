package core

import (
	"github.com/bookledger/lendingledger/ledger"
)

// DecisionResult represents the outcome of a business decision in a Decide function.
//
// IMPORTANT: DecisionResult should only be constructed using the provided factory methods
// SuccessDecision(action, ...) or ErrorDecision(err).
type DecisionResult struct {
	Outcome string         // "success" or "error"
	Actions ledger.Actions // empty for error decisions
	Err     error
}

const (
	successOutcome = "success"
	errorOutcome   = "error"
)

// SuccessDecision creates a DecisionResult with one or more actions to append atomically.
func SuccessDecision(action ledger.Action, additionalActions ...ledger.Action) DecisionResult {
	return DecisionResult{
		Outcome: successOutcome,
		Actions: append(ledger.Actions{action}, additionalActions...),
	}
}

// ErrorDecision creates a DecisionResult for a rejected command. Nothing must be appended.
func ErrorDecision(err error) DecisionResult {
	return DecisionResult{
		Outcome: errorOutcome,
		Err:     err,
	}
}

// HasActionsToAppend returns true if there are actions to append to the ledger.
func (r DecisionResult) HasActionsToAppend() bool {
	return r.Outcome == successOutcome && len(r.Actions) > 0
}

// HasError returns the error if there is one, otherwise nil.
func (r DecisionResult) HasError() error {
	if r.Outcome == errorOutcome {
		return r.Err
	}

	return nil
}
