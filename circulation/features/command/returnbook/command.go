package returnbook

import (
	"time"

	"github.com/bookledger/lendingledger/ledger"
)

const (
	commandType = "ReturnBook"
)

// Command represents the intent to return a checked-out book.
type Command struct {
	BookID int
	Date   time.Time
}

// CommandType returns the type identifier for this command, used for observability and routing.
func (c Command) CommandType() string {
	return commandType
}

// BuildCommand creates a new Command with the provided parameters.
func BuildCommand(bookID int, at time.Time) Command {
	return Command{
		BookID: bookID,
		Date:   ledger.ToActionDate(at),
	}
}
