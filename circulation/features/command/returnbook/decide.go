package returnbook

import (
	"github.com/bookledger/lendingledger/circulation/core"
	"github.com/bookledger/lendingledger/ledger"
)

// state represents the current state of one book projected from its history.
type state struct {
	openLoan           ledger.Action
	isLoaned           bool
	oldestReservation  ledger.Action
	hasOpenReservation bool
}

// Decide implements the business logic to determine whether a book can be returned.
// This is a pure function with no side effects.
//
// Business Rules:
//
//	GIVEN: A book with BookID
//	WHEN: ReturnBook command is received
//	THEN: a RETURN action naming the member of the open checkout is appended,
//	      followed by a DERESERVE for the oldest open reservation if there is one
//	ERROR: not_returnable (no_open_loan) if the book has no open checkout
func Decide(history ledger.Actions, command Command) core.DecisionResult {
	s := project(history, command.BookID)

	if !s.isLoaned {
		return core.ErrorDecision(
			core.NewTransactionError(core.ReasonNotReturnable, command.BookID, "", core.CauseNoOpenLoan),
		)
	}

	ret, err := ledger.BuildAction(ledger.ActionReturn, command.BookID, s.openLoan.MemberID, command.Date)
	if err != nil {
		return core.ErrorDecision(err)
	}

	if !s.hasOpenReservation {
		return core.SuccessDecision(ret)
	}

	cancellation, err := ledger.BuildAction(ledger.ActionDereserve, command.BookID, s.oldestReservation.MemberID, command.Date)
	if err != nil {
		return core.ErrorDecision(err)
	}

	return core.SuccessDecision(ret, cancellation)
}

// project builds the current state by replaying the history of the book.
func project(history ledger.Actions, bookID int) state {
	p := core.NewProjection()
	for _, action := range history {
		p.Apply(action)
	}

	s := state{}
	s.openLoan, s.isLoaned = p.OpenLoan(bookID)

	if reservations := p.OpenReservations(bookID); len(reservations) > 0 {
		s.oldestReservation = reservations[0]
		s.hasOpenReservation = true
	}

	return s
}

// BuildActionFilter creates the filter for querying all records of the book,
// which are relevant for this feature/use-case.
func BuildActionFilter(bookID int) ledger.Filter {
	return ledger.BuildFilter().ForBooks(bookID).Finalize()
}
