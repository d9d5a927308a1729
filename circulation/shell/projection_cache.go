package shell

import (
	"context"
	"sync"

	"github.com/bookledger/lendingledger/circulation/core"
	"github.com/bookledger/lendingledger/ledger"
)

// LedgerReader defines the interface needed by the ProjectionCache to read the ledger.
type LedgerReader interface {
	Query(ctx context.Context, filter ledger.Filter) (
		ledger.Actions,
		ledger.MaxSequenceNumberUint,
		error,
	)
}

// ProjectionCache keeps a core.Projection of the whole ledger in memory.
//
// On every Current call it only queries the records appended after the last
// sequence number it has seen and folds them into the projection.
type ProjectionCache struct {
	reader     LedgerReader
	mu         sync.Mutex
	projection *core.Projection
}

// NewProjectionCache creates an empty ProjectionCache for reader.
func NewProjectionCache(reader LedgerReader) *ProjectionCache {
	return &ProjectionCache{
		reader:     reader,
		projection: core.NewProjection(),
	}
}

// Current brings the projection up to date and returns a snapshot of it.
// The snapshot is independent of later refreshes.
func (c *ProjectionCache) Current(ctx context.Context) (*core.Projection, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	filter := ledger.BuildFilter().
		WithSequenceNumberHigherThan(c.projection.SequenceNumber()).
		Finalize()

	actions, maxSequenceNumber, err := c.reader.Query(ctx, filter)
	if err != nil {
		return nil, err
	}

	c.projection.ApplyAll(actions, maxSequenceNumber)

	return c.projection.Clone(), nil
}

// Reset drops the cached projection, the next Current call replays the whole ledger.
func (c *ProjectionCache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.projection = core.NewProjection()
}
