// Package diagnostic centralises the error taxonomy, structured logger,
// and observer event queue shared by every other package (spec §7 and
// §6.2's "AutoSegments notify registered observers").
//
// Grounded on the teacher's main.go logger bootstrap (log.New with
// log.LstdFlags|log.Lshortfile writing to stderr) and on
// internal/via/classifier.go's typed-detection-result idiom, generalised
// here into sentinel errors compared with errors.Is per spec §7's error
// kinds.
package diagnostic

import (
	"errors"
	"fmt"
	"log"
	"os"
	"sync"
)

// Error kinds from spec §7. Each is a sentinel compared with errors.Is;
// call Wrap to attach the offending entity/context before returning it
// to a caller.
var (
	ErrBadAnchor       = errors.New("diagnostic: bad anchor")
	ErrMisAligned      = errors.New("diagnostic: misaligned axes")
	ErrFixedSegment    = errors.New("diagnostic: fixed segment")
	ErrSpan            = errors.New("diagnostic: span error")
	ErrNoSession       = errors.New("diagnostic: no open session")
	ErrSessionReopen   = errors.New("diagnostic: session reopened with a different owner")
	ErrLayerMismatch   = errors.New("diagnostic: layer mismatch")
	ErrCanonicalBug    = errors.New("diagnostic: canonical bug")
	ErrRectilinear     = errors.New("diagnostic: rectilinear shape rejected")
	ErrOverflow        = errors.New("diagnostic: overflow")
	ErrUnlinkNotLinked = errors.New("diagnostic: unlink called on an entity that is not linked")
)

// Wrap attaches context to a sentinel error while preserving it for
// errors.Is.
func Wrap(sentinel error, context string) error {
	return fmt.Errorf("%s: %w", context, sentinel)
}

// Fatal reports whether err belongs to the class of invariant-violating
// bugs that spec §7 says must abort the current session, as opposed to
// recoverable input errors that are logged and skipped.
func Fatal(err error) bool {
	return errors.Is(err, ErrCanonicalBug) || errors.Is(err, ErrOverflow)
}

// Recoverable reports whether err is a logged-and-skipped input error.
func Recoverable(err error) bool {
	return errors.Is(err, ErrBadAnchor) || errors.Is(err, ErrMisAligned) || errors.Is(err, ErrRectilinear)
}

// Logger wraps a stdlib *log.Logger the way the teacher's main.go
// configures its process-wide logger, kept as an injectable value
// instead of a package-level global so tests can capture output.
type Logger struct {
	*log.Logger
}

// NewLogger creates a logger writing to os.Stderr with the teacher's
// flag set; callers redirect it with SetOutput.
func NewLogger(prefix string) *Logger {
	return &Logger{log.New(os.Stderr, prefix, log.LstdFlags|log.Lshortfile)}
}

// EventKind enumerates the observer notifications an AutoSegment emits
// (spec §6.2).
type EventKind int

const (
	EventCreate EventKind = iota
	EventDestroy
	EventInvalidate
	EventRevalidate
	EventRevalidatePPitch
)

func (k EventKind) String() string {
	switch k {
	case EventCreate:
		return "Create"
	case EventDestroy:
		return "Destroy"
	case EventInvalidate:
		return "Invalidate"
	case EventRevalidate:
		return "Revalidate"
	case EventRevalidatePPitch:
		return "RevalidatePPitch"
	default:
		return "Unknown"
	}
}

// Event is a single observer notification.
type Event struct {
	Kind     EventKind
	EntityID uint64
}

// Observer receives notifications published to an EventQueue.
type Observer interface {
	Notify(Event)
}

// ObserverFunc adapts a plain function to the Observer interface.
type ObserverFunc func(Event)

func (f ObserverFunc) Notify(e Event) { f(e) }

// EventQueue is an append-only broadcast queue: every published event is
// both recorded (for inspection/testing) and fanned out to registered
// observers synchronously, matching spec §5's single-threaded
// cooperative model (no internal thread is spawned).
type EventQueue struct {
	mu        sync.Mutex
	observers []Observer
	log       []Event
}

// NewEventQueue creates an empty queue.
func NewEventQueue() *EventQueue {
	return &EventQueue{}
}

// Subscribe registers an observer. Per spec §6.2, observers must not
// open nested sessions from within Notify; that constraint is enforced
// by convention, not by this type.
func (q *EventQueue) Subscribe(o Observer) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.observers = append(q.observers, o)
}

// Publish records and broadcasts an event.
func (q *EventQueue) Publish(kind EventKind, entityID uint64) {
	q.mu.Lock()
	e := Event{Kind: kind, EntityID: entityID}
	q.log = append(q.log, e)
	observers := append([]Observer(nil), q.observers...)
	q.mu.Unlock()

	for _, o := range observers {
		o.Notify(e)
	}
}

// History returns every event published so far, in publish order.
func (q *EventQueue) History() []Event {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]Event(nil), q.log...)
}
