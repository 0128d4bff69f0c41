package explore

import (
	"sync"
	"time"
)

// EventKind identifies the type of loop event.
type EventKind string

const (
	EventLoopStart      EventKind = "loop_start"
	EventReasoning      EventKind = "reasoning"
	EventActionPlanned  EventKind = "action_planned"
	EventActionExecuted EventKind = "action_executed"
	EventObservation    EventKind = "observation"
	EventIterationEnd   EventKind = "iteration_end"
	EventStuckLoop      EventKind = "stuck_loop"
	EventRecovery       EventKind = "recovery"
	EventCircuitBreaker EventKind = "circuit_breaker"
	EventBudgetExceeded EventKind = "budget_exceeded"
	EventError          EventKind = "error"
	EventLoopEnd        EventKind = "loop_end"
)

// Event is a typed notification emitted by the loop controller.
type Event struct {
	Kind      EventKind      `json:"kind"`
	Timestamp time.Time      `json:"timestamp"`
	SessionID string         `json:"session_id,omitempty"`
	Iteration int            `json:"iteration"`
	Data      map[string]any `json:"data,omitempty"`
}

// EventEmitter delivers loop events to a host application via a buffered
// channel. Events are dropped rather than blocking the loop when the host
// does not keep up.
type EventEmitter struct {
	ch     chan Event
	closed bool
	mu     sync.Mutex
}

// NewEventEmitter creates an emitter with the given channel buffer.
func NewEventEmitter(bufferSize int) *EventEmitter {
	if bufferSize <= 0 {
		bufferSize = 256
	}
	return &EventEmitter{ch: make(chan Event, bufferSize)}
}

// Emit sends an event. Closed emitters silently drop.
func (e *EventEmitter) Emit(kind EventKind, sessionID string, iteration int, data map[string]any) {
	if e == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	event := Event{
		Kind:      kind,
		Timestamp: time.Now(),
		SessionID: sessionID,
		Iteration: iteration,
		Data:      data,
	}
	select {
	case e.ch <- event:
	default:
		// Channel full; drop rather than stall the loop.
	}
}

// Events returns the read-only event channel.
func (e *EventEmitter) Events() <-chan Event {
	return e.ch
}

// Close closes the event channel. Safe to call multiple times.
func (e *EventEmitter) Close() {
	if e == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.closed {
		e.closed = true
		close(e.ch)
	}
}
