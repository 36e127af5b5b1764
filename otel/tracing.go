// Package otel provides OpenTelemetry integration for the projection
// engine's startup events, adapted from petal-labs-petalflow's otel
// package (which traced per-run/per-node runtime events) to trace
// per-group startup and projection instead.
package otel

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/petal-labs/dff"
)

// TracingHandler translates startup/projection events into OpenTelemetry
// spans: one span per group, covering the interval between
// EventProjectionStarted and EventFarmBuilt, with edge and config events
// recorded as span events.
type TracingHandler struct {
	tracer trace.Tracer

	mu         sync.Mutex
	groupSpans map[string]trace.Span
}

// NewTracingHandler creates a handler that uses tracer to create spans
// from dff events.
func NewTracingHandler(tracer trace.Tracer) *TracingHandler {
	return &TracingHandler{
		tracer:     tracer,
		groupSpans: make(map[string]trace.Span),
	}
}

// Handle implements dff.EventHandler.
func (h *TracingHandler) Handle(e dff.Event) {
	switch e.Kind {
	case dff.EventProjectionStarted:
		h.handleProjectionStarted(e)
	case dff.EventFarmBuilt:
		h.handleFarmBuilt(e)
	case dff.EventEdgeAppended, dff.EventEdgePromoted, dff.EventConfigLoaded, dff.EventTransportAttached:
		h.handleSpanEvent(e)
	}
}

func (h *TracingHandler) handleProjectionStarted(e dff.Event) {
	_, span := h.tracer.Start(context.Background(), "project:"+e.Group,
		trace.WithAttributes(attribute.String("dff.group", e.Group)),
		trace.WithTimestamp(e.Time),
	)

	h.mu.Lock()
	h.groupSpans[e.Group] = span
	h.mu.Unlock()
}

func (h *TracingHandler) handleFarmBuilt(e dff.Event) {
	h.mu.Lock()
	span, ok := h.groupSpans[e.Group]
	if ok {
		delete(h.groupSpans, e.Group)
	}
	h.mu.Unlock()

	if !ok {
		return
	}

	if workers, found := e.Payload["workers"]; found {
		if n, ok := workers.(int); ok {
			span.SetAttributes(attribute.Int("dff.workers", n))
		}
	}
	span.SetStatus(codes.Ok, "")
	span.End(trace.WithTimestamp(e.Time))
}

func (h *TracingHandler) handleSpanEvent(e dff.Event) {
	h.mu.Lock()
	span, ok := h.groupSpans[e.Group]
	h.mu.Unlock()
	if !ok {
		return
	}

	var attrs []attribute.KeyValue
	for k, v := range e.Payload {
		if s, ok := v.(string); ok {
			attrs = append(attrs, attribute.String(k, s))
		}
	}
	span.AddEvent(string(e.Kind), trace.WithTimestamp(e.Time), trace.WithAttributes(attrs...))
}

// ActiveGroupSpanContext returns the SpanContext for the active projection
// span for group, or an empty SpanContext if none is active.
func (h *TracingHandler) ActiveGroupSpanContext(group string) trace.SpanContext {
	h.mu.Lock()
	span, ok := h.groupSpans[group]
	h.mu.Unlock()
	if !ok {
		return trace.SpanContext{}
	}
	return span.SpanContext()
}
