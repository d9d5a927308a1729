package ledger

import (
	"errors"
	"fmt"
	"time"
)

// ActionKind is the kind of ledger record.
type ActionKind string

const (
	// ActionOut records a checkout of a book to a member.
	ActionOut ActionKind = "OUT"

	// ActionReturn records the return of a checked-out book.
	ActionReturn ActionKind = "RETURN"

	// ActionReserve records a reservation of a book by a member.
	ActionReserve ActionKind = "RESERVE"

	// ActionDereserve records the cancellation of a reservation.
	ActionDereserve ActionKind = "DERESERVE"
)

// MemberIDLength is the exact number of ASCII digits a member identifier consists of.
const MemberIDLength = 4

var (
	// ErrUnknownActionKind is returned for a kind that is none of OUT, RETURN, RESERVE, DERESERVE.
	ErrUnknownActionKind = errors.New("unknown action kind")

	// ErrNonPositiveBookID is returned for a book identifier below 1.
	ErrNonPositiveBookID = errors.New("book id must be positive")

	// ErrMalformedMemberID is returned for a member identifier that is not exactly 4 ASCII digits.
	ErrMalformedMemberID = errors.New("member id must consist of exactly 4 digits")
)

// AllActionKinds lists every ActionKind in a stable order.
func AllActionKinds() []ActionKind {
	return []ActionKind{ActionOut, ActionReturn, ActionReserve, ActionDereserve}
}

// ParseActionKind converts the textual kind of a record into an ActionKind.
func ParseActionKind(s string) (ActionKind, error) {
	kind := ActionKind(s)
	if !kind.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownActionKind, s)
	}

	return kind, nil
}

// IsValid reports whether k is one of the four known kinds.
func (k ActionKind) IsValid() bool {
	switch k {
	case ActionOut, ActionReturn, ActionReserve, ActionDereserve:
		return true
	default:
		return false
	}
}

// IsOpening reports whether records of this kind open something that a later record closes.
func (k ActionKind) IsOpening() bool {
	return k == ActionOut || k == ActionReserve
}

func (k ActionKind) String() string {
	return string(k)
}

// IsValidMemberID reports whether memberID consists of exactly 4 ASCII digits.
func IsValidMemberID(memberID string) bool {
	if len(memberID) != MemberIDLength {
		return false
	}

	for i := 0; i < len(memberID); i++ {
		if memberID[i] < '0' || memberID[i] > '9' {
			return false
		}
	}

	return true
}

// ToActionDate truncates t to its calendar day and expresses it in UTC.
func ToActionDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Actions is an alias type for a slice of Action.
type Actions = []Action

// Action is one immutable ledger record.
//
// While its properties are exported, it should only be constructed with BuildAction,
// which guarantees that the Action can be written to and read back from any ledger engine.
type Action struct {
	Kind     ActionKind
	BookID   int
	MemberID string
	Date     time.Time
}

// BuildAction is a factory method for Action.
//
// The date is truncated to its calendar day (see ToActionDate).
// Returns an error joined with ErrInvalidAction if any field can not be represented as a record.
func BuildAction(kind ActionKind, bookID int, memberID string, date time.Time) (Action, error) {
	action := Action{
		Kind:     kind,
		BookID:   bookID,
		MemberID: memberID,
		Date:     ToActionDate(date),
	}

	if err := action.Validate(); err != nil {
		return Action{}, err
	}

	return action, nil
}

// Validate checks the record format constraints of the Action.
func (a Action) Validate() error {
	if !a.Kind.IsValid() {
		return errors.Join(ErrInvalidAction, fmt.Errorf("%w: %q", ErrUnknownActionKind, string(a.Kind)))
	}

	if a.BookID < 1 {
		return errors.Join(ErrInvalidAction, fmt.Errorf("%w: %d", ErrNonPositiveBookID, a.BookID))
	}

	if !IsValidMemberID(a.MemberID) {
		return errors.Join(ErrInvalidAction, fmt.Errorf("%w: %q", ErrMalformedMemberID, a.MemberID))
	}

	return nil
}

// Equal reports whether both Actions describe the same record.
func (a Action) Equal(other Action) bool {
	return a.Kind == other.Kind &&
		a.BookID == other.BookID &&
		a.MemberID == other.MemberID &&
		a.Date.Equal(other.Date)
}
