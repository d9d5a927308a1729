// Package reserve implements the Reserve use case: a member reserving a book.
//
// Reservations follow the reserve-ahead policy. Any book that has no open
// reservation can be reserved, whether it is currently checked out or not.
package reserve
