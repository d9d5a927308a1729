package oteladapters_test

import (
	"bytes"
	"context"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/bookledger/lendingledger/ledger"
	"github.com/bookledger/lendingledger/ledger/fileengine"
	"github.com/bookledger/lendingledger/ledger/oteladapters"
)

func Test_FileEngine_WithOTelAdapters(t *testing.T) {
	// arrange
	ctx := context.Background()
	tracing, exporter := newTracing()
	metrics, reader := newMetrics()
	var logs bytes.Buffer

	store, err := fileengine.NewLedgerStore(
		filepath.Join(t.TempDir(), "logfile.txt"),
		fileengine.WithContextualLogger(oteladapters.NewSlogBridgeLoggerWithHandler(slog.NewTextHandler(&logs, nil))),
		fileengine.WithMetrics(metrics),
		fileengine.WithTracing(tracing),
	)
	require.NoError(t, err)

	action, err := ledger.BuildAction(ledger.ActionOut, 3, "1234", time.Date(2024, 1, 9, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	// act
	require.NoError(t, store.Append(ctx, ledger.MatchingAllActions(), 0, action))
	conflictErr := store.Append(ctx, ledger.MatchingAllActions(), 0, action)

	// assert
	require.ErrorIs(t, conflictErr, ledger.ErrConcurrencyConflict)

	spans := exporter.GetSpans()
	require.Len(t, spans, 2)
	assert.Equal(t, "ledger.append", spans[0].Name)
	assert.Equal(t, codes.Ok, spans[0].Status.Code)
	assert.Equal(t, codes.Error, spans[1].Status.Code)
	assert.Equal(t, "ledger changed since it was queried", spans[1].Status.Description)

	conflicts := findMetric[metricdata.Sum[int64]](t, reader, "ledger_concurrency_conflicts_total")
	require.Len(t, conflicts.DataPoints, 1)
	assert.Equal(t, int64(1), conflicts.DataPoints[0].Value)

	assert.Contains(t, logs.String(), "actions appended")
	assert.Contains(t, logs.String(), "concurrency conflict detected")
}
