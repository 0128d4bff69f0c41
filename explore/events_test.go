package explore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventEmitterDelivers(t *testing.T) {
	e := NewEventEmitter(4)
	e.Emit(EventLoopStart, "s1", 0, map[string]any{"goal": "g"})
	e.Close()

	var events []Event
	for event := range e.Events() {
		events = append(events, event)
	}
	require.Len(t, events, 1)
	assert.Equal(t, EventLoopStart, events[0].Kind)
	assert.Equal(t, "s1", events[0].SessionID)
	assert.Equal(t, "g", events[0].Data["goal"])
	assert.False(t, events[0].Timestamp.IsZero())
}

func TestEventEmitterDropsWhenFull(t *testing.T) {
	e := NewEventEmitter(2)
	for i := 0; i < 5; i++ {
		e.Emit(EventReasoning, "s1", i, nil)
	}
	e.Close()

	count := 0
	for range e.Events() {
		count++
	}
	assert.Equal(t, 2, count, "overflow events are dropped, not blocked on")
}

func TestEventEmitterNilAndClosedSafe(t *testing.T) {
	var nilEmitter *EventEmitter
	nilEmitter.Emit(EventError, "", 0, nil) // no panic
	nilEmitter.Close()

	e := NewEventEmitter(1)
	e.Close()
	e.Close()                             // idempotent
	e.Emit(EventError, "s1", 0, nil)      // dropped silently
}
