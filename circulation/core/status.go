package core

// Status is the circulation status of a single book.
type Status string

const (
	// StatusAvailable means the book is neither checked out nor reserved.
	StatusAvailable Status = "AVAILABLE"

	// StatusOut means the book is checked out to a member.
	StatusOut Status = "OUT"

	// StatusReserved means the book is not checked out but somebody holds a reservation.
	StatusReserved Status = "RESERVED"
)

func (s Status) String() string {
	return string(s)
}
