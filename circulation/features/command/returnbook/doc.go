// Package returnbook implements the Return use case: a checked-out book comes back.
//
// The RETURN record names the member the book was checked out to. When the book
// has an open reservation, the oldest one is canceled in the same append, so a
// return never fails for lack of a reservation.
package returnbook
