/*
Package realtime carries engine events to connected clients.

PURPOSE:
  The credit engine emits events after every successful commit: tally
  updates to the thread room, credit/rank updates and notifications to
  individual users, new threads to everyone. Emission is fire-and-forget
  relative to the commit — a failed delivery is logged and dropped, never
  retried into the critical path, and never rolls anything back.

KEY TYPES (events.go):
  - Event:   {Type, Room, UserID, Payload}
  - Emitter: what the engines depend on
  - Recorder/Nop: test and no-op emitters

ADDRESSING:
  Room != ""   -> all clients joined to that thread room
  UserID != "" -> all connections of that user (via the presence registry)
  neither      -> broadcast to every connection

SEE ALSO:
  - hub.go: The websocket implementation
*/
package realtime

import (
	"sync"

	"github.com/peerwise/forum-engine/credit"
)

// EventType names a real-time event. The vocabulary matches what clients
// subscribe to.
type EventType string

const (
	EventNewThread      EventType = "new-thread"
	EventNewResponse    EventType = "new-response"
	EventVotesUpdated   EventType = "update-votes"
	EventCreditsUpdated EventType = "credits-updated"
	EventNotification   EventType = "new-notification"
	EventBestAnswer     EventType = "best-answer"
)

// Event is a single fan-out message.
type Event struct {
	Type    EventType     `json:"type"`
	Room    string        `json:"-"`
	UserID  credit.UserID `json:"-"`
	Payload any           `json:"payload"`
}

// Emitter accepts events for delivery. Implementations must not block
// the caller and must not return delivery failures into it.
type Emitter interface {
	Emit(Event)
}

// =============================================================================
// TEST AND NO-OP EMITTERS
// =============================================================================

// Nop discards all events.
type Nop struct{}

func (Nop) Emit(Event) {}

// Recorder captures emitted events for assertions.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Emit(ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

// Events returns a copy of everything emitted so far.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// OfType returns the captured events of one type.
func (r *Recorder) OfType(t EventType) []Event {
	var out []Event
	for _, ev := range r.Events() {
		if ev.Type == t {
			out = append(out, ev)
		}
	}
	return out
}
