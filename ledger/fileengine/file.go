package fileengine

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/bookledger/lendingledger/ledger"
	"github.com/bookledger/lendingledger/ledger/internal/observe"
)

const (
	engineName       = "file"
	filePermissions  = 0o644
	dirPermissions   = 0o755
	maxRecordLength  = 1024 * 1024
	initialBufferLen = 64 * 1024

	logMsgInvalidAction = "refusing to append an invalid action"
	logMsgReadFailed    = "reading the ledger file failed"
	logMsgWriteFailed   = "writing the ledger file failed"
	logMsgCanceled      = "ledger operation canceled"
	logAttrPath         = "path"

	errorTypeIO            = "io"
	errorTypeMalformed     = "malformed_record"
	errorTypeInvalidAction = "invalid_action"
	errorTypeCanceled      = "context_canceled"
)

// LedgerStore is a ledger engine backed by a sequential text file.
type LedgerStore struct {
	path            string
	createIfMissing bool
	mu              *sync.Mutex
	observer        observe.Observer
}

// NewLedgerStore creates a LedgerStore for the file at path with optional configuration.
//
// A missing file is treated as an empty ledger and created on the first append,
// or right away when WithCreateIfMissing is given.
func NewLedgerStore(path string, options ...Option) (*LedgerStore, error) {
	if path == "" {
		return nil, ledger.ErrEmptyLedgerPath
	}

	s := &LedgerStore{
		path:     path,
		mu:       &sync.Mutex{},
		observer: observe.Observer{Engine: engineName},
	}

	for _, option := range options {
		if err := option(s); err != nil {
			return nil, err
		}
	}

	if s.createIfMissing {
		if err := s.ensureFile(); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Path returns the location of the ledger file.
func (s *LedgerStore) Path() string {
	return s.path
}

// ReadAll returns every record of the ledger in append order.
func (s *LedgerStore) ReadAll(ctx context.Context) (ledger.Actions, error) {
	actions, _, err := s.Query(ctx, ledger.MatchingAllActions())

	return actions, err
}

// Query returns the records matching filter in append order,
// as well as the sequence number of the last matching record.
func (s *LedgerStore) Query(ctx context.Context, filter ledger.Filter) (
	ledger.Actions,
	ledger.MaxSequenceNumberUint,
	error,
) {

	ctx, op := s.observer.StartQuery(ctx)

	if err := ctx.Err(); err != nil {
		op.Failed(logMsgCanceled, errorTypeCanceled, err)
		return nil, 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	actions, maxSequenceNumber, err := s.scan(filter)
	if err != nil {
		op.Failed(logMsgReadFailed, classify(err), err, logAttrPath, s.path)
		return nil, 0, err
	}

	op.QuerySucceeded(len(actions), maxSequenceNumber)

	return actions, maxSequenceNumber, nil
}

// Append writes one or multiple actions at the end of the ledger file, as long as the
// sequence number of the last record matching filter still equals expectedMaxSequenceNumber.
//
// Otherwise, nothing is written and ledger.ErrConcurrencyConflict is returned.
// The filter should be the same as the one used for the Query the decision was based on.
func (s *LedgerStore) Append(
	ctx context.Context,
	filter ledger.Filter,
	expectedMaxSequenceNumber ledger.MaxSequenceNumberUint,
	action ledger.Action,
	additionalActions ...ledger.Action,
) error {

	allActions := append(ledger.Actions{action}, additionalActions...)

	ctx, op := s.observer.StartAppend(ctx, len(allActions), expectedMaxSequenceNumber)

	for _, a := range allActions {
		if err := a.Validate(); err != nil {
			op.Failed(logMsgInvalidAction, errorTypeInvalidAction, err)
			return err
		}
	}

	if err := ctx.Err(); err != nil {
		op.Failed(logMsgCanceled, errorTypeCanceled, err)
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, actualMaxSequenceNumber, scanErr := s.scan(filter)
	if scanErr != nil {
		op.Failed(logMsgReadFailed, classify(scanErr), scanErr, logAttrPath, s.path)
		return scanErr
	}

	if actualMaxSequenceNumber != expectedMaxSequenceNumber {
		op.Conflicted(expectedMaxSequenceNumber, actualMaxSequenceNumber)
		return ledger.ErrConcurrencyConflict
	}

	if writeErr := s.write(allActions); writeErr != nil {
		op.Failed(logMsgWriteFailed, errorTypeIO, writeErr, logAttrPath, s.path)
		return writeErr
	}

	op.AppendSucceeded(len(allActions))

	return nil
}

// scan reads the whole file and returns the matching records. The caller must hold mu.
func (s *LedgerStore) scan(filter ledger.Filter) (ledger.Actions, ledger.MaxSequenceNumberUint, error) {
	file, openErr := os.Open(s.path)
	if errors.Is(openErr, fs.ErrNotExist) {
		return ledger.Actions{}, 0, nil
	}

	if openErr != nil {
		return nil, 0, ledger.StorageError(ledger.ErrReadingLedgerFailed, openErr)
	}

	defer func() { _ = file.Close() }()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, initialBufferLen), maxRecordLength)

	actions := make(ledger.Actions, 0)
	maxSequenceNumber := ledger.MaxSequenceNumberUint(0)
	sequenceNumber := ledger.MaxSequenceNumberUint(0)
	lineNumber := 0
	firstLine := true

	for scanner.Scan() {
		lineNumber++
		line := scanner.Text()

		if strings.TrimSpace(line) == "" {
			continue
		}

		if firstLine {
			firstLine = false
			if ledger.IsHeader(line) {
				continue
			}
		}

		action, decodeErr := ledger.DecodeRecord(line)
		if decodeErr != nil {
			return nil, 0, ledger.StorageError(ledger.ErrReadingLedgerFailed, fmt.Errorf("line %d: %w", lineNumber, decodeErr))
		}

		sequenceNumber++

		if filter.Matches(sequenceNumber, action) {
			actions = append(actions, action)
			maxSequenceNumber = sequenceNumber
		}
	}

	if scanErr := scanner.Err(); scanErr != nil {
		return nil, 0, ledger.StorageError(ledger.ErrReadingLedgerFailed, scanErr)
	}

	return actions, maxSequenceNumber, nil
}

// write appends all records with one write call and syncs the file. The caller must hold mu.
func (s *LedgerStore) write(actions ledger.Actions) error {
	if err := os.MkdirAll(filepath.Dir(s.path), dirPermissions); err != nil {
		return ledger.StorageError(ledger.ErrAppendingActionFailed, err)
	}

	file, openErr := os.OpenFile(s.path, os.O_RDWR|os.O_APPEND|os.O_CREATE, filePermissions)
	if openErr != nil {
		return ledger.StorageError(ledger.ErrAppendingActionFailed, openErr)
	}

	prefix, prefixErr := recordPrefix(file)
	if prefixErr != nil {
		_ = file.Close()
		return ledger.StorageError(ledger.ErrAppendingActionFailed, prefixErr)
	}

	var buf strings.Builder
	buf.WriteString(prefix)

	for _, action := range actions {
		buf.WriteString(ledger.EncodeRecord(action))
		buf.WriteString("\n")
	}

	if _, err := file.WriteString(buf.String()); err != nil {
		_ = file.Close()
		return ledger.StorageError(ledger.ErrAppendingActionFailed, err)
	}

	if err := file.Sync(); err != nil {
		_ = file.Close()
		return ledger.StorageError(ledger.ErrAppendingActionFailed, err)
	}

	if err := file.Close(); err != nil {
		return ledger.StorageError(ledger.ErrAppendingActionFailed, err)
	}

	return nil
}

// recordPrefix returns what must be written before the first new record:
// the header for an empty file, a line break when the last line is unterminated.
func recordPrefix(file *os.File) (string, error) {
	info, err := file.Stat()
	if err != nil {
		return "", err
	}

	if info.Size() == 0 {
		return ledger.RecordHeader + "\n", nil
	}

	last := make([]byte, 1)
	if _, err := file.ReadAt(last, info.Size()-1); err != nil {
		return "", err
	}

	if last[0] != '\n' {
		return "\n", nil
	}

	return "", nil
}

func (s *LedgerStore) ensureFile() error {
	if _, err := os.Stat(s.path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return ledger.StorageError(ledger.ErrReadingLedgerFailed, err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), dirPermissions); err != nil {
		return ledger.StorageError(ledger.ErrAppendingActionFailed, err)
	}

	if err := os.WriteFile(s.path, []byte(ledger.RecordHeader+"\n"), filePermissions); err != nil {
		return ledger.StorageError(ledger.ErrAppendingActionFailed, err)
	}

	return nil
}

func classify(err error) string {
	if errors.Is(err, ledger.ErrMalformedRecord) {
		return errorTypeMalformed
	}

	return errorTypeIO
}
