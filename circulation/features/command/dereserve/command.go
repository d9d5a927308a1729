package dereserve

import (
	"time"

	"github.com/bookledger/lendingledger/ledger"
)

const (
	commandType = "Dereserve"
)

// Command represents the intent to cancel the oldest open reservation of a book.
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
