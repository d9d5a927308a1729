// Package oteladapters implements the ledger observability interfaces on top of OpenTelemetry.
//
// Usage:
//
//	store, _ := fileengine.NewLedgerStore(path,
//		fileengine.WithContextualLogger(oteladapters.NewSlogBridgeLogger("lendingledger")),
//		fileengine.WithMetrics(oteladapters.NewMetricsCollector(otel.Meter("lendingledger"))),
//		fileengine.WithTracing(oteladapters.NewTracingCollector(otel.Tracer("lendingledger"))),
//	)
package oteladapters
