package dereserve

import (
	"context"

	"github.com/bookledger/lendingledger/catalog"
	"github.com/bookledger/lendingledger/circulation/shell"
	"github.com/bookledger/lendingledger/ledger"
)

// LedgerStore defines the interface needed by the CommandHandler for ledger operations.
type LedgerStore interface {
	Query(ctx context.Context, filter ledger.Filter) (
		ledger.Actions,
		ledger.MaxSequenceNumberUint,
		error,
	)
	Append(
		ctx context.Context,
		filter ledger.Filter,
		expectedMaxSequenceNumber ledger.MaxSequenceNumberUint,
		action ledger.Action,
		additionalActions ...ledger.Action,
	) error
}

// CommandHandler orchestrates the command processing workflow: Validate -> Query -> Decide -> Append,
// retrying Query -> Decide -> Append on concurrency conflicts.
type CommandHandler struct {
	ledgerStore  LedgerStore
	catalog      catalog.Reader
	retryOptions []shell.RetryOption
}

// Option configures a CommandHandler.
type Option func(*CommandHandler)

// WithRetryOptions sets a custom retry configuration for the handler.
func WithRetryOptions(opts ...shell.RetryOption) Option {
	return func(h *CommandHandler) {
		h.retryOptions = opts
	}
}

// NewCommandHandler creates a new CommandHandler with optional configuration.
func NewCommandHandler(ledgerStore LedgerStore, books catalog.Reader, opts ...Option) CommandHandler {
	handler := CommandHandler{
		ledgerStore: ledgerStore,
		catalog:     books,
	}

	for _, opt := range opts {
		opt(&handler)
	}

	return handler
}

// Handle validates the command, then executes it with retry logic.
//
// An unknown book fails with a core.ValidationError before the ledger is read.
// Without an open reservation it fails with a core.TransactionError matching core.ErrNoOpenReservation.
func (h CommandHandler) Handle(ctx context.Context, command Command) (shell.HandlerResult, error) {
	if err := shell.RequireKnownBook(ctx, h.catalog, command.BookID); err != nil {
		return shell.HandlerResult{}, err
	}

	var appended ledger.Actions

	retryMetrics, err := shell.RetryWithExponentialBackoff(ctx, func(retryCtx context.Context) error {
		actions, execErr := h.executeCommand(retryCtx, command)
		appended = actions

		return execErr
	}, h.retryOptions...)

	if err != nil {
		return shell.NewErrorResult(retryMetrics), err
	}

	return shell.NewSuccessResult(retryMetrics, appended), nil
}

// executeCommand contains the core command processing logic that can be retried.
func (h CommandHandler) executeCommand(ctx context.Context, command Command) (ledger.Actions, error) {
	filter := BuildActionFilter(command.BookID)

	// Query phase
	history, maxSequenceNumber, err := h.ledgerStore.Query(ctx, filter)
	if err != nil {
		return nil, err
	}

	// Business logic phase - delegate to pure core function
	result := Decide(history, command)
	if decisionErr := result.HasError(); decisionErr != nil {
		return nil, decisionErr
	}

	// Append phase
	if appendErr := h.ledgerStore.Append(ctx, filter, maxSequenceNumber, result.Actions[0], result.Actions[1:]...); appendErr != nil {
		return nil, appendErr
	}

	return result.Actions, nil
}
