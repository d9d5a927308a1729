package shell_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookledger/lendingledger/circulation/core"
	"github.com/bookledger/lendingledger/circulation/shell"
	"github.com/bookledger/lendingledger/ledger"
	"github.com/bookledger/lendingledger/ledger/fileengine"
)

var day = time.Date(2024, 5, 14, 0, 0, 0, 0, time.UTC)

func Test_ProjectionCache_FoldsOnlyNewRecords(t *testing.T) {
	// arrange
	ctx := context.Background()
	store, err := fileengine.NewLedgerStore(filepath.Join(t.TempDir(), "logfile.txt"))
	require.NoError(t, err)
	spy := &queryingSpy{reader: store}
	cache := shell.NewProjectionCache(spy)

	require.NoError(t, store.Append(ctx, ledger.MatchingAllActions(), 0, act(t, ledger.ActionOut, 1, "1111")))

	// act
	first, firstErr := cache.Current(ctx)
	require.NoError(t, store.Append(ctx, ledger.MatchingAllActions(), 1,
		act(t, ledger.ActionReserve, 2, "2222"),
		act(t, ledger.ActionReturn, 1, "1111"),
	))
	second, secondErr := cache.Current(ctx)

	// assert
	require.NoError(t, firstErr)
	require.NoError(t, secondErr)

	assert.Equal(t, []int{1}, first.Loaned())
	assert.Equal(t, uint(1), first.SequenceNumber())

	assert.Empty(t, second.Loaned())
	assert.Equal(t, []int{2}, second.Reserved())
	assert.Equal(t, uint(3), second.SequenceNumber())

	require.Len(t, spy.filters, 2)
	assert.Equal(t, uint(0), spy.filters[0].SequenceNumberHigherThan())
	assert.Equal(t, uint(1), spy.filters[1].SequenceNumberHigherThan())
}

func Test_ProjectionCache_SnapshotIsIndependent(t *testing.T) {
	// arrange
	ctx := context.Background()
	store, err := fileengine.NewLedgerStore(filepath.Join(t.TempDir(), "logfile.txt"))
	require.NoError(t, err)
	cache := shell.NewProjectionCache(store)

	snapshot, snapshotErr := cache.Current(ctx)
	require.NoError(t, snapshotErr)

	// act
	require.NoError(t, store.Append(ctx, ledger.MatchingAllActions(), 0, act(t, ledger.ActionOut, 3, "1111")))
	_, refreshErr := cache.Current(ctx)

	// assert
	require.NoError(t, refreshErr)
	assert.Equal(t, core.StatusAvailable, snapshot.StatusOf(3))
}

func Test_ProjectionCache_Reset_ReplaysWholeLedger(t *testing.T) {
	// arrange
	ctx := context.Background()
	store, err := fileengine.NewLedgerStore(filepath.Join(t.TempDir(), "logfile.txt"))
	require.NoError(t, err)
	spy := &queryingSpy{reader: store}
	cache := shell.NewProjectionCache(spy)
	require.NoError(t, store.Append(ctx, ledger.MatchingAllActions(), 0, act(t, ledger.ActionOut, 3, "1111")))
	_, _ = cache.Current(ctx)

	// act
	cache.Reset()
	current, currentErr := cache.Current(ctx)

	// assert
	require.NoError(t, currentErr)
	assert.Equal(t, []int{3}, current.Loaned())
	assert.Equal(t, uint(0), spy.filters[len(spy.filters)-1].SequenceNumberHigherThan())
}

func Test_ProjectionCache_PropagatesQueryErrors(t *testing.T) {
	failure := ledger.StorageError(ledger.ErrReadingLedgerFailed, errors.New("disk on fire"))
	cache := shell.NewProjectionCache(failingReader{err: failure})

	projection, err := cache.Current(context.Background())

	assert.Nil(t, projection)
	assert.ErrorIs(t, err, ledger.ErrStorage)
}

type queryingSpy struct {
	reader  shell.LedgerReader
	filters []ledger.Filter
}

func (s *queryingSpy) Query(ctx context.Context, filter ledger.Filter) (ledger.Actions, ledger.MaxSequenceNumberUint, error) {
	s.filters = append(s.filters, filter)

	return s.reader.Query(ctx, filter)
}

type failingReader struct {
	err error
}

func (r failingReader) Query(context.Context, ledger.Filter) (ledger.Actions, ledger.MaxSequenceNumberUint, error) {
	return nil, 0, r.err
}

func act(t *testing.T, kind ledger.ActionKind, bookID int, memberID string) ledger.Action {
	t.Helper()

	action, err := ledger.BuildAction(kind, bookID, memberID, day)
	require.NoError(t, err)

	return action
}
