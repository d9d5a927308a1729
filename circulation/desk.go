package circulation

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/bookledger/lendingledger/catalog"
	"github.com/bookledger/lendingledger/circulation/core"
	"github.com/bookledger/lendingledger/circulation/features/command/checkout"
	"github.com/bookledger/lendingledger/circulation/features/command/dereserve"
	"github.com/bookledger/lendingledger/circulation/features/command/reserve"
	"github.com/bookledger/lendingledger/circulation/features/command/returnbook"
	"github.com/bookledger/lendingledger/circulation/shell"
	"github.com/bookledger/lendingledger/ledger"
)

var (
	// ErrNilLedgerStore is returned when a Desk is created without a ledger store.
	ErrNilLedgerStore = errors.New("ledger store must not be nil")

	// ErrNilCatalog is returned when a Desk is created without a catalog.
	ErrNilCatalog = errors.New("catalog must not be nil")

	// ErrNilClock is returned when WithClock is given a nil function.
	ErrNilClock = errors.New("clock must not be nil")
)

// LedgerStore defines the ledger operations the Desk needs. Both ledger engines implement it.
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

// BatchError reports the item a batch operation stopped at.
// Items before Position were committed, items after it were not attempted.
type BatchError struct {
	Position int // zero-based index into the batch
	BookID   int
	Err      error
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("batch stopped at position %d (book %d): %v", e.Position, e.BookID, e.Err)
}

func (e *BatchError) Unwrap() error {
	return e.Err
}

// Desk is the lending desk: the only component that writes to the ledger.
type Desk struct {
	mu           sync.Mutex
	store        LedgerStore
	catalog      catalog.Reader
	clock        func() time.Time
	retryOptions []shell.RetryOption
	metrics      ledger.MetricsCollector
	projections  *shell.ProjectionCache

	checkout   checkout.CommandHandler
	reserve    reserve.CommandHandler
	dereserve  dereserve.CommandHandler
	returnBook returnbook.CommandHandler
}

// Option defines a functional option for configuring a Desk.
type Option func(*Desk) error

// WithClock sets the source of the date stamped on new records.
func WithClock(clock func() time.Time) Option {
	return func(d *Desk) error {
		if clock == nil {
			return ErrNilClock
		}

		d.clock = clock

		return nil
	}
}

// WithRetryOptions sets the retry configuration of all command handlers.
func WithRetryOptions(opts ...shell.RetryOption) Option {
	return func(d *Desk) error {
		d.retryOptions = opts
		return nil
	}
}

// WithMetrics instruments the retries of every command handler with collector,
// labeled with the command type of the handler.
func WithMetrics(collector ledger.MetricsCollector) Option {
	return func(d *Desk) error {
		d.metrics = collector
		return nil
	}
}

// NewDesk creates a Desk writing to store and validating books against books.
func NewDesk(store LedgerStore, books catalog.Reader, options ...Option) (*Desk, error) {
	if store == nil {
		return nil, ErrNilLedgerStore
	}

	if books == nil {
		return nil, ErrNilCatalog
	}

	d := &Desk{
		store:   store,
		catalog: books,
		clock:   time.Now,
	}

	for _, option := range options {
		if err := option(d); err != nil {
			return nil, err
		}
	}

	d.projections = shell.NewProjectionCache(store)
	d.checkout = checkout.NewCommandHandler(store, books,
		checkout.WithRetryOptions(d.handlerRetryOptions(checkout.Command{}.CommandType())...))
	d.reserve = reserve.NewCommandHandler(store, books,
		reserve.WithRetryOptions(d.handlerRetryOptions(reserve.Command{}.CommandType())...))
	d.dereserve = dereserve.NewCommandHandler(store, books,
		dereserve.WithRetryOptions(d.handlerRetryOptions(dereserve.Command{}.CommandType())...))
	d.returnBook = returnbook.NewCommandHandler(store, books,
		returnbook.WithRetryOptions(d.handlerRetryOptions(returnbook.Command{}.CommandType())...))

	return d, nil
}

func (d *Desk) handlerRetryOptions(commandType string) []shell.RetryOption {
	opts := slices.Clone(d.retryOptions)

	if d.metrics != nil {
		opts = append(opts, shell.WithMetrics(d.metrics, commandType))
	}

	return opts
}

/***** Write API *****/

// Checkout lends a book to a member.
func (d *Desk) Checkout(ctx context.Context, bookID int, memberID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.checkoutLocked(ctx, bookID, memberID)
}

// CheckoutAll checks out the books in order to the same member and stops at the first failure.
func (d *Desk) CheckoutAll(ctx context.Context, bookIDs []int, memberID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	return forEach(bookIDs, func(bookID int) error {
		return d.checkoutLocked(ctx, bookID, memberID)
	})
}

// Reserve records a reservation of a book by a member.
func (d *Desk) Reserve(ctx context.Context, bookID int, memberID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.reserveLocked(ctx, bookID, memberID)
}

// ReserveAll reserves the books in order for the same member and stops at the first failure.
func (d *Desk) ReserveAll(ctx context.Context, bookIDs []int, memberID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	return forEach(bookIDs, func(bookID int) error {
		return d.reserveLocked(ctx, bookID, memberID)
	})
}

// Dereserve cancels the oldest open reservation of a book.
func (d *Desk) Dereserve(ctx context.Context, bookID int) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	_, err := d.dereserve.Handle(ctx, dereserve.BuildCommand(bookID, d.clock()))

	return err
}

// ReturnBook takes back a checked-out book.
func (d *Desk) ReturnBook(ctx context.Context, bookID int) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.returnLocked(ctx, bookID)
}

// ReturnAll takes back the books in order and stops at the first failure.
func (d *Desk) ReturnAll(ctx context.Context, bookIDs []int) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	return forEach(bookIDs, func(bookID int) error {
		return d.returnLocked(ctx, bookID)
	})
}

func (d *Desk) checkoutLocked(ctx context.Context, bookID int, memberID string) error {
	_, err := d.checkout.Handle(ctx, checkout.BuildCommand(bookID, memberID, d.clock()))
	return err
}

func (d *Desk) reserveLocked(ctx context.Context, bookID int, memberID string) error {
	_, err := d.reserve.Handle(ctx, reserve.BuildCommand(bookID, memberID, d.clock()))
	return err
}

func (d *Desk) returnLocked(ctx context.Context, bookID int) error {
	_, err := d.returnBook.Handle(ctx, returnbook.BuildCommand(bookID, d.clock()))
	return err
}

func forEach(bookIDs []int, op func(bookID int) error) error {
	for i, bookID := range bookIDs {
		if err := op(bookID); err != nil {
			return &BatchError{Position: i, BookID: bookID, Err: err}
		}
	}

	return nil
}

/***** Read API *****/

// Status returns the circulation status of a book in the catalog.
func (d *Desk) Status(ctx context.Context, bookID int) (core.Status, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := shell.RequireKnownBook(ctx, d.catalog, bookID); err != nil {
		return "", err
	}

	p, err := d.projections.Current(ctx)
	if err != nil {
		return "", err
	}

	return p.StatusOf(bookID), nil
}

// LoanedIDs returns the ids of all checked-out books in ascending order.
func (d *Desk) LoanedIDs(ctx context.Context) ([]int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	p, err := d.projections.Current(ctx)
	if err != nil {
		return nil, err
	}

	return p.Loaned(), nil
}

// ReservedIDs returns the ids of all books with an open reservation in ascending order.
func (d *Desk) ReservedIDs(ctx context.Context) ([]int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	p, err := d.projections.Current(ctx)
	if err != nil {
		return nil, err
	}

	return p.Reserved(), nil
}

// OpenActions returns the open OUT and RESERVE records of a book in the catalog, in ledger order.
func (d *Desk) OpenActions(ctx context.Context, bookID int) (ledger.Actions, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := shell.RequireKnownBook(ctx, d.catalog, bookID); err != nil {
		return nil, err
	}

	p, err := d.projections.Current(ctx)
	if err != nil {
		return nil, err
	}

	return p.OpenForBook(bookID), nil
}

// AllActions returns the whole ledger in append order.
func (d *Desk) AllActions(ctx context.Context) (ledger.Actions, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	actions, _, err := d.store.Query(ctx, ledger.MatchingAllActions())

	return actions, err
}
