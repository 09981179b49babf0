package telemetry

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.trai.ch/fake/internal/core/domain"
	"go.trai.ch/fake/internal/core/ports"
)

// LogBufferSize determines the size of the async log channel.
const LogBufferSize = 4096

// logEvent carries a chunk of task output to the renderer.
// An event with a non-nil flushed channel is a barrier: it is closed once
// every event queued before it has been delivered.
type logEvent struct {
	renderer ports.Renderer
	spanID   string
	data     []byte
	flushed  chan struct{}
}

// OTelTracer is a concrete implementation of ports.Tracer using OpenTelemetry.
type OTelTracer struct {
	tracer   trace.Tracer
	renderer ports.Renderer
	runID    string
	logChan  chan logEvent
	mu       sync.RWMutex
	closed   bool
}

// NewOTelTracer creates a new OTelTracer with the given instrumentation name.
func NewOTelTracer(name string) *OTelTracer {
	t := &OTelTracer{
		tracer:  otel.Tracer(name),
		logChan: make(chan logEvent, LogBufferSize),
	}
	go t.runLoop()
	return t
}

func (t *OTelTracer) runLoop() {
	for ev := range t.logChan {
		if ev.flushed != nil {
			close(ev.flushed)
			continue
		}
		ev.renderer.OnTaskLog(ev.spanID, ev.data)
	}
}

// Shutdown stops the background log processor.
func (t *OTelTracer) Shutdown(_ context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return nil
	}
	t.closed = true
	close(t.logChan)
	return nil
}

// WithRenderer sets the renderer that receives plans and task output.
func (t *OTelTracer) WithRenderer(r ports.Renderer) *OTelTracer {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.renderer = r
	return t
}

// WithRunID tags every span started by the tracer with id.
func (t *OTelTracer) WithRunID(id string) *OTelTracer {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.runID = id
	return t
}

// Start creates a new span.
func (t *OTelTracer) Start(ctx context.Context, name string, opts ...ports.SpanOption) (context.Context, ports.Span) {
	cfg := &ports.SpanConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	t.mu.RLock()
	renderer := t.renderer
	runID := t.runID
	t.mu.RUnlock()

	attrs := make([]attribute.KeyValue, 0, len(cfg.Attributes)+1)
	if runID != "" {
		attrs = append(attrs, attribute.String(ports.AttrRunID, runID))
	}
	keys := make([]string, 0, len(cfg.Attributes))
	for k := range cfg.Attributes {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		attrs = append(attrs, attributeOf(k, cfg.Attributes[k]))
	}

	ctx, span := t.tracer.Start(ctx, name, trace.WithAttributes(attrs...))

	s := &OTelSpan{span: span}
	if renderer != nil {
		spanID := span.SpanContext().SpanID().String()
		s.batcher = NewOutputBatcher(0, 0, func(data []byte) {
			t.send(logEvent{renderer: renderer, spanID: spanID, data: data})
		})
		s.flush = t.flush
	}
	return ctx, s
}

// send queues ev, dropping it if the buffer is full so the build never blocks on the renderer.
func (t *OTelTracer) send(ev logEvent) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.closed {
		return
	}
	select {
	case t.logChan <- ev:
	default:
	}
}

// flush blocks until every queued log event has reached the renderer.
func (t *OTelTracer) flush() {
	flushed := make(chan struct{})

	t.mu.RLock()
	if t.closed {
		t.mu.RUnlock()
		return
	}
	t.logChan <- logEvent{flushed: flushed}
	t.mu.RUnlock()

	<-flushed
}

// EmitPlan hands the plan to the renderer and records it as an event on the current span.
func (t *OTelTracer) EmitPlan(ctx context.Context, plan domain.Plan) {
	span := trace.SpanFromContext(ctx)
	if span.IsRecording() {
		span.AddEvent("plan_emitted", trace.WithAttributes(
			attribute.StringSlice("tasks", domain.TargetNameStrings(plan.Order)),
		))
	}

	t.mu.RLock()
	renderer := t.renderer
	t.mu.RUnlock()

	if renderer != nil {
		renderer.OnPlanEmit(plan)
	}
}

// OTelSpan is a concrete implementation of ports.Span using OpenTelemetry.
type OTelSpan struct {
	span    trace.Span
	batcher *OutputBatcher
	flush   func()
}

// End completes the span.
// Buffered output reaches the renderer before the span ends.
func (s *OTelSpan) End() {
	if s.batcher != nil {
		_ = s.batcher.Close()
	}
	if s.flush != nil {
		s.flush()
	}
	s.span.End()
}

// RecordError records an error for the span.
func (s *OTelSpan) RecordError(err error) {
	s.span.RecordError(err)
	s.span.SetStatus(codes.Error, err.Error())
}

// SetAttribute adds a key-value pair to the span.
func (s *OTelSpan) SetAttribute(key string, value any) {
	s.span.SetAttributes(attributeOf(key, value))
}

// Write satisfies io.Writer by adding a log event to the span or writing to the batcher.
func (s *OTelSpan) Write(p []byte) (n int, err error) {
	if s.batcher != nil {
		return s.batcher.Write(p)
	}
	s.span.AddEvent("log", trace.WithAttributes(attribute.String("message", string(p))))
	return len(p), nil
}

func attributeOf(key string, value any) attribute.KeyValue {
	switch v := value.(type) {
	case string:
		return attribute.String(key, v)
	case int:
		return attribute.Int(key, v)
	case int64:
		return attribute.Int64(key, v)
	case float64:
		return attribute.Float64(key, v)
	case bool:
		return attribute.Bool(key, v)
	case []string:
		return attribute.StringSlice(key, v)
	case fmt.Stringer:
		return attribute.String(key, v.String())
	default:
		return attribute.String(key, fmt.Sprintf("%v", v))
	}
}
