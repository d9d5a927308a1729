package checkout

import (
	"github.com/bookledger/lendingledger/circulation/core"
	"github.com/bookledger/lendingledger/ledger"
)

// state represents the current state of one book projected from its history.
type state struct {
	bookIsLoaned                 bool
	bookIsReserved               bool
	lastActionIsOwnedReservation bool
}

// Decide implements the business logic to determine whether a book can be checked out to a member.
// This is a pure function with no side effects.
//
// Business Rules:
//
//	GIVEN: A book with BookID and a member with MemberID
//	WHEN: Checkout command is received
//	THEN: an OUT action is appended
//	ERROR: checkout_not_allowed (already_loaned) if the book has an open checkout
//	ERROR: checkout_not_allowed (reserved_by_other_member) if the book is reserved and
//	       its most recent record is not a reservation by this member
func Decide(history ledger.Actions, command Command) core.DecisionResult {
	s := project(history, command.BookID, command.MemberID)

	causes := make([]core.Cause, 0, 2)

	if s.bookIsLoaned {
		causes = append(causes, core.CauseAlreadyLoaned)
	}

	if s.bookIsReserved && !s.lastActionIsOwnedReservation {
		causes = append(causes, core.CauseReservedByOtherMember)
	}

	if len(causes) > 0 {
		return core.ErrorDecision(
			core.NewTransactionError(core.ReasonCheckoutNotAllowed, command.BookID, command.MemberID, causes[0], causes[1:]...),
		)
	}

	out, err := ledger.BuildAction(ledger.ActionOut, command.BookID, command.MemberID, command.Date)
	if err != nil {
		return core.ErrorDecision(err)
	}

	return core.SuccessDecision(out)
}

// project builds the current state by replaying the history of the book.
func project(history ledger.Actions, bookID int, memberID string) state {
	p := core.NewProjection()
	for _, action := range history {
		p.Apply(action)
	}

	_, loaned := p.OpenLoan(bookID)
	last, found := p.LastActionFor(bookID)

	return state{
		bookIsLoaned:                 loaned,
		bookIsReserved:               len(p.OpenReservations(bookID)) > 0,
		lastActionIsOwnedReservation: found && last.Kind == ledger.ActionReserve && last.MemberID == memberID,
	}
}

// BuildActionFilter creates the filter for querying all records of the book,
// which are relevant for this feature/use-case.
func BuildActionFilter(bookID int) ledger.Filter {
	return ledger.BuildFilter().ForBooks(bookID).Finalize()
}
