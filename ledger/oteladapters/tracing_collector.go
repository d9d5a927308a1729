package oteladapters

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/bookledger/lendingledger/ledger"
	"github.com/bookledger/lendingledger/ledger/internal/observe"
)

type spanStatus struct {
	code        codes.Code
	description string
}

var spanStatuses = map[string]spanStatus{
	observe.StatusSuccess:  {code: codes.Ok},
	observe.StatusError:    {code: codes.Error, description: "ledger operation failed"},
	observe.StatusConflict: {code: codes.Error, description: "ledger changed since it was queried"},
	statusCanceled:         {code: codes.Error, description: "ledger operation canceled"},
}

const statusCanceled = "canceled"

// TracingCollector implements ledger.TracingCollector on the OpenTelemetry tracing API.
type TracingCollector struct {
	tracer trace.Tracer
}

// NewTracingCollector creates a tracing collector starting its spans on tracer.
func NewTracingCollector(tracer trace.Tracer) *TracingCollector {
	return &TracingCollector{tracer: tracer}
}

// StartSpan starts a span named name carrying attrs and returns the context holding it.
func (t *TracingCollector) StartSpan(ctx context.Context, name string, attrs map[string]string) (context.Context, ledger.SpanContext) {
	spanCtx, span := t.tracer.Start(ctx, name, trace.WithAttributes(toAttributes(attrs)...))

	return spanCtx, &OTelSpanContext{span: span}
}

// FinishSpan adds attrs, maps status onto the span status, and ends the span.
// Spans not started by a TracingCollector are ignored.
func (t *TracingCollector) FinishSpan(spanCtx ledger.SpanContext, status string, attrs map[string]string) {
	otelSpanCtx, ok := spanCtx.(*OTelSpanContext)
	if !ok {
		return
	}

	otelSpanCtx.span.SetAttributes(toAttributes(attrs)...)
	otelSpanCtx.setSpanStatus(status)
	otelSpanCtx.span.End()
}

var _ ledger.TracingCollector = (*TracingCollector)(nil)

// OTelSpanContext implements ledger.SpanContext on an OpenTelemetry span.
type OTelSpanContext struct {
	span trace.Span
}

// SetStatus maps status onto the span status.
func (s *OTelSpanContext) SetStatus(status string) {
	s.setSpanStatus(status)
}

// AddAttribute adds a string attribute to the span.
func (s *OTelSpanContext) AddAttribute(key, value string) {
	s.span.SetAttributes(attribute.String(key, value))
}

// setSpanStatus maps the engine outcome onto the span status.
// Statuses it does not know are kept as a "status" attribute and leave the span status unset.
func (s *OTelSpanContext) setSpanStatus(status string) {
	mapped, known := spanStatuses[status]
	if !known {
		s.span.SetAttributes(attribute.String(observe.AttrStatus, status))
		return
	}

	s.span.SetStatus(mapped.code, mapped.description)
}

var _ ledger.SpanContext = (*OTelSpanContext)(nil)
