package ledger

import (
	"errors"
)

var (
	// ErrStorage is the parent of every failure of the ledger medium.
	ErrStorage = errors.New("ledger storage failed")

	// ErrReadingLedgerFailed is returned when the ledger can not be read.
	ErrReadingLedgerFailed = errors.New("reading the ledger failed")

	// ErrAppendingActionFailed is returned when the ledger can not be written.
	ErrAppendingActionFailed = errors.New("appending to the ledger failed")

	// ErrMalformedRecord is returned for a record that does not match the four-field schema.
	ErrMalformedRecord = errors.New("malformed ledger record")

	// ErrInvalidAction is returned when an Action can not be represented as a ledger record.
	ErrInvalidAction = errors.New("invalid action")

	// ErrBuildingQueryFailed is returned when a database engine fails to build its SQL.
	ErrBuildingQueryFailed = errors.New("building the query failed")

	// ErrScanningDBRowFailed is returned when a database row can not be scanned.
	ErrScanningDBRowFailed = errors.New("scanning db row failed")

	// ErrGettingRowsAffectedFailed is returned when the affected row count is unavailable.
	ErrGettingRowsAffectedFailed = errors.New("getting rows affected failed")

	// ErrNilDatabaseConnection is returned when a database engine is built without a connection.
	ErrNilDatabaseConnection = errors.New("database connection must not be nil")

	// ErrEmptyTableName is returned when an empty table name is supplied.
	ErrEmptyTableName = errors.New("empty table name supplied")

	// ErrEmptyLedgerPath is returned when an empty file path is supplied.
	ErrEmptyLedgerPath = errors.New("empty ledger path supplied")
)

// ErrConcurrencyConflict is returned by Append when the ledger changed since it was queried.
var ErrConcurrencyConflict = errors.New("concurrency error, the ledger changed since it was queried")

// MaxSequenceNumberUint is the 1-based position of a record in the ledger; 0 means "no record".
type MaxSequenceNumberUint = uint

// StorageError joins err with ErrStorage and the given more specific sentinel.
func StorageError(sentinel error, err error) error {
	if err == nil {
		return errors.Join(ErrStorage, sentinel)
	}

	return errors.Join(ErrStorage, sentinel, err)
}
