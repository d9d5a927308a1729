package checkout

import (
	"time"

	"github.com/bookledger/lendingledger/ledger"
)

const (
	commandType = "Checkout"
)

// Command represents the intent to check out a book to a member.
type Command struct {
	BookID   int
	MemberID string
	Date     time.Time
}

// CommandType returns the type identifier for this command, used for observability and routing.
func (c Command) CommandType() string {
	return commandType
}

// BuildCommand creates a new Command with the provided parameters.
func BuildCommand(bookID int, memberID string, at time.Time) Command {
	return Command{
		BookID:   bookID,
		MemberID: memberID,
		Date:     ledger.ToActionDate(at),
	}
}
