package diagnostic

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrapPreservesSentinelForErrorsIs(t *testing.T) {
	err := Wrap(ErrSpan, "dogleg at gcell (3,4)")
	assert.True(t, errors.Is(err, ErrSpan))
	assert.False(t, errors.Is(err, ErrBadAnchor))
}

func TestFatalAndRecoverableClassification(t *testing.T) {
	assert.True(t, Fatal(ErrCanonicalBug))
	assert.True(t, Fatal(ErrOverflow))
	assert.False(t, Fatal(ErrBadAnchor))

	assert.True(t, Recoverable(ErrBadAnchor))
	assert.True(t, Recoverable(ErrRectilinear))
	assert.False(t, Recoverable(ErrNoSession))
}

func TestEventQueueBroadcastsAndRecordsHistory(t *testing.T) {
	q := NewEventQueue()
	var got []Event
	q.Subscribe(ObserverFunc(func(e Event) { got = append(got, e) }))

	q.Publish(EventCreate, 1)
	q.Publish(EventInvalidate, 1)
	q.Publish(EventRevalidate, 1)

	assert.Len(t, got, 3)
	assert.Equal(t, EventCreate, got[0].Kind)
	assert.Len(t, q.History(), 3)
}

func TestEventQueueSupportsMultipleObservers(t *testing.T) {
	q := NewEventQueue()
	countA, countB := 0, 0
	q.Subscribe(ObserverFunc(func(Event) { countA++ }))
	q.Subscribe(ObserverFunc(func(Event) { countB++ }))

	q.Publish(EventDestroy, 42)

	assert.Equal(t, 1, countA)
	assert.Equal(t, 1, countB)
}
