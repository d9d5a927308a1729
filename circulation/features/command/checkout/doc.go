// Package checkout implements the Checkout use case: lending a book to a member.
//
// It follows the Query-Decide-Append pattern with a separation between
// infrastructure concerns (CommandHandler) and pure business logic (Decide function).
//
// A book can be checked out when it is not loaned and either not reserved at all,
// or its most recent record is a reservation by the same member.
package checkout
