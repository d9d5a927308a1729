package ledger

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	// RecordHeader is the first line of a ledger file, naming its columns.
	RecordHeader = "ACTION BOOK_ID MEMBER_ID DATE"

	// DateLayout is the layout of the DATE column.
	DateLayout = "2006-01-02"

	recordFieldCount = 4
	headerPrefix     = "ACTION"
)

// EncodeRecord renders an Action as one ledger line without the line terminator.
func EncodeRecord(action Action) string {
	return fmt.Sprintf(
		"%s %d %s %s",
		action.Kind,
		action.BookID,
		action.MemberID,
		action.Date.Format(DateLayout),
	)
}

// IsHeader reports whether line is a ledger header line.
//
// Older ledgers carry a three-column header without DATE, so only the leading column is checked.
func IsHeader(line string) bool {
	fields := splitRecord(line)

	return len(fields) > 0 && strings.EqualFold(fields[0], headerPrefix)
}

// DecodeRecord parses one ledger line.
//
// Fields are separated by spaces, tabs, or pipes. Any deviation from the
// four-field schema yields an error joined with ErrMalformedRecord.
func DecodeRecord(line string) (Action, error) {
	fields := splitRecord(line)
	if len(fields) != recordFieldCount {
		return Action{}, malformed(line, fmt.Errorf("expected %d fields, got %d", recordFieldCount, len(fields)))
	}

	kind, kindErr := ParseActionKind(fields[0])
	if kindErr != nil {
		return Action{}, malformed(line, kindErr)
	}

	bookID, bookIDErr := strconv.Atoi(fields[1])
	if bookIDErr != nil {
		return Action{}, malformed(line, bookIDErr)
	}

	date, dateErr := time.Parse(DateLayout, fields[3])
	if dateErr != nil {
		return Action{}, malformed(line, dateErr)
	}

	action, buildErr := BuildAction(kind, bookID, fields[2], date)
	if buildErr != nil {
		return Action{}, malformed(line, buildErr)
	}

	return action, nil
}

func splitRecord(line string) []string {
	return strings.FieldsFunc(line, func(r rune) bool {
		return r == ' ' || r == '\t' || r == '|' || r == '\r'
	})
}

func malformed(line string, err error) error {
	return errors.Join(ErrMalformedRecord, fmt.Errorf("record %q: %w", line, err))
}
