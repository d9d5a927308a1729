package core

import (
	"slices"

	"github.com/bookledger/lendingledger/ledger"
)

// LoanedBookIDs returns the ids of all books with an open checkout, in ascending order.
//
// An OUT opens a loan and a RETURN closes one. A RETURN without an open loan changes nothing.
func LoanedBookIDs(actions ledger.Actions) []int {
	open := make(map[int]int)

	for _, action := range actions {
		switch action.Kind {
		case ledger.ActionOut:
			open[action.BookID]++
		case ledger.ActionReturn:
			if open[action.BookID] > 0 {
				open[action.BookID]--
			}
		}
	}

	return positiveKeys(open)
}

// ReservedBookIDs returns the ids of all books with at least one open reservation, in ascending order.
//
// A RESERVE opens a reservation. A DERESERVE cancels one and an OUT consumes one.
func ReservedBookIDs(actions ledger.Actions) []int {
	open := make(map[int]int)

	for _, action := range actions {
		switch action.Kind {
		case ledger.ActionReserve:
			open[action.BookID]++
		case ledger.ActionDereserve, ledger.ActionOut:
			if open[action.BookID] > 0 {
				open[action.BookID]--
			}
		}
	}

	return positiveKeys(open)
}

// OpenActions returns the OUT and RESERVE records that no later record has closed, in ledger order.
//
//   - A RETURN closes the most recent open OUT of its book.
//   - A DERESERVE closes the oldest open RESERVE of its book by the same member, or else the oldest one.
//   - An OUT closes the open RESERVE of its book by the same member, or else the oldest one.
func OpenActions(actions ledger.Actions) ledger.Actions {
	open := make(ledger.Actions, 0)

	for _, action := range actions {
		switch action.Kind {
		case ledger.ActionOut:
			if i := matchingReservation(open, action); i >= 0 {
				open = slices.Delete(open, i, i+1)
			}

			open = append(open, action)

		case ledger.ActionReserve:
			open = append(open, action)

		case ledger.ActionReturn:
			if i := mostRecentLoan(open, action.BookID); i >= 0 {
				open = slices.Delete(open, i, i+1)
			}

		case ledger.ActionDereserve:
			if i := matchingReservation(open, action); i >= 0 {
				open = slices.Delete(open, i, i+1)
			}
		}
	}

	return open
}

// FilterByBook returns the records of one book in ledger order.
func FilterByBook(actions ledger.Actions, bookID int) ledger.Actions {
	filtered := make(ledger.Actions, 0)

	for _, action := range actions {
		if action.BookID == bookID {
			filtered = append(filtered, action)
		}
	}

	return filtered
}

// LastActionFor returns the most recent record of one book, if there is any.
func LastActionFor(actions ledger.Actions, bookID int) (ledger.Action, bool) {
	for i := len(actions) - 1; i >= 0; i-- {
		if actions[i].BookID == bookID {
			return actions[i], true
		}
	}

	return ledger.Action{}, false
}

// StatusOf returns the status of one book: OUT while it is loaned,
// otherwise RESERVED while it has an open reservation, otherwise AVAILABLE.
func StatusOf(actions ledger.Actions, bookID int) Status {
	history := FilterByBook(actions, bookID)

	if slices.Contains(LoanedBookIDs(history), bookID) {
		return StatusOut
	}

	if slices.Contains(ReservedBookIDs(history), bookID) {
		return StatusReserved
	}

	return StatusAvailable
}

func matchingReservation(open ledger.Actions, closing ledger.Action) int {
	oldest := -1

	for i, candidate := range open {
		if candidate.Kind != ledger.ActionReserve || candidate.BookID != closing.BookID {
			continue
		}

		if candidate.MemberID == closing.MemberID {
			return i
		}

		if oldest < 0 {
			oldest = i
		}
	}

	return oldest
}

func mostRecentLoan(open ledger.Actions, bookID int) int {
	for i := len(open) - 1; i >= 0; i-- {
		if open[i].Kind == ledger.ActionOut && open[i].BookID == bookID {
			return i
		}
	}

	return -1
}

func positiveKeys(counts map[int]int) []int {
	ids := make([]int, 0, len(counts))

	for id, count := range counts {
		if count > 0 {
			ids = append(ids, id)
		}
	}

	slices.Sort(ids)

	return ids
}
