package reserve

import (
	"github.com/bookledger/lendingledger/circulation/core"
	"github.com/bookledger/lendingledger/ledger"
)

// state represents the current state of one book projected from its history.
type state struct {
	bookIsReserved bool
}

// Decide implements the business logic to determine whether a member can reserve a book.
// This is a pure function with no side effects.
//
// Business Rules:
//
//	GIVEN: A book with BookID and a member with MemberID
//	WHEN: Reserve command is received
//	THEN: a RESERVE action is appended
//	ERROR: reservation_not_allowed (already_reserved) if the book has an open reservation
func Decide(history ledger.Actions, command Command) core.DecisionResult {
	s := project(history, command.BookID)

	if s.bookIsReserved {
		return core.ErrorDecision(
			core.NewTransactionError(core.ReasonReservationNotAllowed, command.BookID, command.MemberID, core.CauseAlreadyReserved),
		)
	}

	reservation, err := ledger.BuildAction(ledger.ActionReserve, command.BookID, command.MemberID, command.Date)
	if err != nil {
		return core.ErrorDecision(err)
	}

	return core.SuccessDecision(reservation)
}

// project builds the current state by replaying the history of the book.
func project(history ledger.Actions, bookID int) state {
	p := core.NewProjection()
	for _, action := range history {
		p.Apply(action)
	}

	return state{
		bookIsReserved: len(p.OpenReservations(bookID)) > 0,
	}
}

// BuildActionFilter creates the filter for querying all records of the book,
// which are relevant for this feature/use-case.
func BuildActionFilter(bookID int) ledger.Filter {
	return ledger.BuildFilter().ForBooks(bookID).Finalize()
}
