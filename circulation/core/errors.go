package core

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bookledger/lendingledger/ledger"
)

var (
	// ErrValidationFailed is the parent of every rejected input.
	ErrValidationFailed = errors.New("validation failed")

	// ErrInvalidMemberID is returned for a member id that is not exactly 4 digits.
	ErrInvalidMemberID = errors.New("member id must consist of exactly 4 digits")

	// ErrUnknownBook is returned for a book id that the catalog does not know.
	ErrUnknownBook = errors.New("book is not in the catalog")

	// ErrTransactionRejected is the parent of every rejected ledger transaction.
	ErrTransactionRejected = errors.New("transaction rejected")

	// ErrNoOpenReservation is returned when a dereserve finds nothing to cancel.
	ErrNoOpenReservation = errors.New("no open reservation")
)

// ValidationError reports an input that was rejected before the ledger was consulted.
type ValidationError struct {
	BookID   int
	MemberID string
	Cause    error
}

// NewInvalidMemberIDError builds the ValidationError for a malformed member id.
func NewInvalidMemberIDError(memberID string) *ValidationError {
	return &ValidationError{MemberID: memberID, Cause: ErrInvalidMemberID}
}

// NewUnknownBookError builds the ValidationError for a book the catalog does not know.
func NewUnknownBookError(bookID int) *ValidationError {
	return &ValidationError{BookID: bookID, Cause: ErrUnknownBook}
}

func (e *ValidationError) Error() string {
	switch {
	case errors.Is(e.Cause, ErrInvalidMemberID):
		return fmt.Sprintf("%s: %s: %q", ErrValidationFailed, e.Cause, e.MemberID)
	case errors.Is(e.Cause, ErrUnknownBook):
		return fmt.Sprintf("%s: %s: %d", ErrValidationFailed, e.Cause, e.BookID)
	default:
		return fmt.Sprintf("%s: %v", ErrValidationFailed, e.Cause)
	}
}

func (e *ValidationError) Unwrap() []error {
	return []error{ErrValidationFailed, e.Cause}
}

// ValidateMemberID checks that memberID consists of exactly 4 ASCII digits.
func ValidateMemberID(memberID string) error {
	if !ledger.IsValidMemberID(memberID) {
		return NewInvalidMemberIDError(memberID)
	}

	return nil
}

// Reason is the coarse classification of a rejected transaction.
type Reason string

const (
	ReasonCheckoutNotAllowed    Reason = "checkout_not_allowed"
	ReasonReservationNotAllowed Reason = "reservation_not_allowed"
	ReasonNoOpenReservation     Reason = "no_open_reservation"
	ReasonNotReturnable         Reason = "not_returnable"
)

// Cause names one precondition that did not hold.
type Cause string

const (
	CauseAlreadyLoaned         Cause = "already_loaned"
	CauseReservedByOtherMember Cause = "reserved_by_other_member"
	CauseAlreadyReserved       Cause = "already_reserved"
	CauseNoOpenReservation     Cause = "no_open_reservation"
	CauseNoOpenLoan            Cause = "no_open_loan"
)

// TransactionError reports a transaction whose preconditions did not hold against the ledger.
// Nothing was appended.
type TransactionError struct {
	Reason   Reason
	BookID   int
	MemberID string
	Causes   []Cause
}

// NewTransactionError builds a TransactionError with at least one cause.
func NewTransactionError(reason Reason, bookID int, memberID string, cause Cause, causes ...Cause) *TransactionError {
	return &TransactionError{
		Reason:   reason,
		BookID:   bookID,
		MemberID: memberID,
		Causes:   append([]Cause{cause}, causes...),
	}
}

func (e *TransactionError) Error() string {
	causes := make([]string, 0, len(e.Causes))
	for _, c := range e.Causes {
		causes = append(causes, string(c))
	}

	subject := fmt.Sprintf("book %d", e.BookID)
	if e.MemberID != "" {
		subject += fmt.Sprintf(" member %s", e.MemberID)
	}

	return fmt.Sprintf("%s: %s for %s (%s)", ErrTransactionRejected, e.Reason, subject, strings.Join(causes, ", "))
}

func (e *TransactionError) Unwrap() []error {
	if e.Reason == ReasonNoOpenReservation {
		return []error{ErrTransactionRejected, ErrNoOpenReservation}
	}

	return []error{ErrTransactionRejected}
}

// HasCause reports whether cause is among the failed preconditions.
func (e *TransactionError) HasCause(cause Cause) bool {
	for _, c := range e.Causes {
		if c == cause {
			return true
		}
	}

	return false
}
