package dereserve

import (
	"github.com/bookledger/lendingledger/circulation/core"
	"github.com/bookledger/lendingledger/ledger"
)

// state represents the current state of one book projected from its history.
type state struct {
	oldestReservation  ledger.Action
	hasOpenReservation bool
}

// Decide implements the business logic to determine which reservation of a book is canceled.
// This is a pure function with no side effects.
//
// Business Rules:
//
//	GIVEN: A book with BookID
//	WHEN: Dereserve command is received
//	THEN: a DERESERVE action naming the member of the oldest open reservation is appended
//	ERROR: no_open_reservation if the book has no open reservation
func Decide(history ledger.Actions, command Command) core.DecisionResult {
	s := project(history, command.BookID)

	if !s.hasOpenReservation {
		return core.ErrorDecision(
			core.NewTransactionError(core.ReasonNoOpenReservation, command.BookID, "", core.CauseNoOpenReservation),
		)
	}

	cancellation, err := ledger.BuildAction(ledger.ActionDereserve, command.BookID, s.oldestReservation.MemberID, command.Date)
	if err != nil {
		return core.ErrorDecision(err)
	}

	return core.SuccessDecision(cancellation)
}

// project builds the current state by replaying the history of the book.
func project(history ledger.Actions, bookID int) state {
	p := core.NewProjection()
	for _, action := range history {
		p.Apply(action)
	}

	reservations := p.OpenReservations(bookID)
	if len(reservations) == 0 {
		return state{}
	}

	return state{
		oldestReservation:  reservations[0],
		hasOpenReservation: true,
	}
}

// BuildActionFilter creates the filter for querying all records of the book,
// which are relevant for this feature/use-case.
func BuildActionFilter(bookID int) ledger.Filter {
	return ledger.BuildFilter().ForBooks(bookID).Finalize()
}
