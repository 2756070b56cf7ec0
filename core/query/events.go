package query

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// EventType names an event emitted by a Pipeline.
type EventType string

// Pipeline events.
const (
	EventRunStart     EventType = "pipeline:run:start"
	EventRunSuccess   EventType = "pipeline:run:success"
	EventRunFailed    EventType = "pipeline:run:failed"
	EventStageWarning EventType = "pipeline:stage:warning"
)

// Event describes one step of a pipeline run.
type Event struct {
	Type        EventType `json:"type"`                  // The type of event (e.g., 'pipeline:run:start').
	Timestamp   int64     `json:"timestamp"`             // Unix milliseconds.
	RunID       string    `json:"runId"`                 // Shared by every event of one run.
	Pipeline    string    `json:"pipeline"`              // Name of the emitting pipeline.
	Stage       string    `json:"stage,omitempty"`       // Stage involved, for warnings and failures.
	Query       string    `json:"query"`                 // Query the run was invoked with.
	InputCount  int       `json:"inputCount"`            // Records handed to the run.
	OutputCount *int      `json:"outputCount,omitempty"` // Records returned, once known.
	Duration    *int64    `json:"duration,omitempty"`    // Run duration in milliseconds.
	Error       *string   `json:"error,omitempty"`       // Failure message.
	Issue       *Issue    `json:"issue,omitempty"`       // Warning carried by a stage warning event.
}

// EventHandler receives pipeline events.
type EventHandler func(ctx context.Context, event Event) error

// Subscription describes a registered event handler.
type Subscription struct {
	ID          string    `json:"id"`
	Event       EventType `json:"event"`
	Label       string    `json:"label,omitempty"`
	unsubscribe func()
}

// run carries the bookkeeping for one pipeline invocation.
type run struct {
	id    string
	query string
	input int
	start time.Time
}

func newRun(query string, input int) run {
	return run{id: uuid.New().String(), query: query, input: input, start: time.Now()}
}

func (r run) event(p *Pipeline, t EventType) Event {
	return Event{
		Type:       t,
		Timestamp:  time.Now().UnixMilli(),
		RunID:      r.id,
		Pipeline:   p.name,
		Query:      r.query,
		InputCount: r.input,
	}
}

func (r run) finished(p *Pipeline, t EventType, output int, err error) Event {
	e := r.event(p, t)
	duration := time.Since(r.start).Milliseconds()
	e.Duration = &duration
	e.OutputCount = &output
	if err != nil {
		msg := err.Error()
		e.Error = &msg
	}
	return e
}

func (p *Pipeline) emit(e Event) {
	if p.bus != nil {
		p.bus.Emit(string(e.Type), e)
	}
}

// Subscribe registers handler for events of the given type and returns an id
// that can be passed to Unsubscribe.
func (p *Pipeline) Subscribe(event EventType, handler EventHandler) string {
	return p.SubscribeLabeled(event, "", handler)
}

// SubscribeLabeled is Subscribe with a label reported by Subscriptions.
func (p *Pipeline) SubscribeLabeled(event EventType, label string, handler EventHandler) string {
	p.subMu.Lock()
	defer p.subMu.Unlock()

	unsubscribe := p.bus.Subscribe(string(event), handler)
	id := uuid.New().String()
	p.subscriptions[id] = &Subscription{
		ID:          id,
		Event:       event,
		Label:       label,
		unsubscribe: unsubscribe,
	}
	return id
}

// Unsubscribe removes a subscription by its id. Unknown ids are ignored.
func (p *Pipeline) Unsubscribe(id string) {
	p.subMu.Lock()
	defer p.subMu.Unlock()

	if sub, ok := p.subscriptions[id]; ok {
		sub.unsubscribe()
		delete(p.subscriptions, id)
	}
}

// Subscriptions returns the active subscriptions.
func (p *Pipeline) Subscriptions() []Subscription {
	p.subMu.RLock()
	defer p.subMu.RUnlock()

	subs := make([]Subscription, 0, len(p.subscriptions))
	for _, sub := range p.subscriptions {
		subs = append(subs, *sub)
	}
	return subs
}
