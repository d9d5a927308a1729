package cli

import (
	"errors"
	"fmt"
	"io"

	jsoniter "github.com/json-iterator/go"

	"github.com/bookledger/lendingledger/catalog"
	"github.com/bookledger/lendingledger/circulation/core"
	"github.com/bookledger/lendingledger/ledger"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // The desk rejected the request (validation or transaction error)
	ExitCommandError = 2 // Command error (bad arguments, configuration, storage)
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ExitError represents an error with a specific exit code.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}

	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
//
// Rejected requests map to ExitFailure, everything else to ExitCommandError,
// unless the error carries its own code.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}

	if errors.Is(err, core.ErrTransactionRejected) || errors.Is(err, core.ErrValidationFailed) {
		return ExitFailure
	}

	return ExitCommandError
}

// printer renders command results in the selected format.
type printer struct {
	format string
	w      io.Writer
}

func (p printer) print(data any, text func(w io.Writer) error) error {
	if p.format == formatJSON {
		encoder := json.NewEncoder(p.w)
		encoder.SetIndent("", "  ")

		return encoder.Encode(data)
	}

	return text(p.w)
}

type actionView struct {
	Kind     string `json:"kind"`
	BookID   int    `json:"book_id"`
	MemberID string `json:"member_id"`
	Date     string `json:"date"`
}

func toActionViews(actions ledger.Actions) []actionView {
	views := make([]actionView, 0, len(actions))

	for _, a := range actions {
		views = append(views, actionView{
			Kind:     a.Kind.String(),
			BookID:   a.BookID,
			MemberID: a.MemberID,
			Date:     a.Date.Format(ledger.DateLayout),
		})
	}

	return views
}

type bookView struct {
	ID           int    `json:"id"`
	Genre        string `json:"genre"`
	Title        string `json:"title"`
	Author       string `json:"author"`
	Price        int    `json:"price"`
	PurchaseDate string `json:"purchase_date"`
}

func toBookViews(books []catalog.Book) []bookView {
	views := make([]bookView, 0, len(books))

	for _, b := range books {
		views = append(views, bookView{
			ID:           b.ID,
			Genre:        b.Genre,
			Title:        b.Title,
			Author:       b.Author,
			Price:        b.Price,
			PurchaseDate: b.PurchaseDate.Format(catalog.DateLayout),
		})
	}

	return views
}

type statusView struct {
	BookID int    `json:"book_id"`
	Status string `json:"status"`
}

type bookIDsView struct {
	BookIDs []int `json:"book_ids"`
}

type writeView struct {
	Operation string `json:"operation"`
	BookIDs   []int  `json:"book_ids"`
	MemberID  string `json:"member_id,omitempty"`
}

func writeLines[T any](w io.Writer, items []T, line func(T) string) error {
	for _, item := range items {
		if _, err := fmt.Fprintln(w, line(item)); err != nil {
			return err
		}
	}

	return nil
}
