// Package dereserve implements the Dereserve use case: canceling the oldest open reservation of a book.
//
// The appended DERESERVE record names the member of the reservation it cancels.
package dereserve
