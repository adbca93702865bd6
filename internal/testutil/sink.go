package testutil

import (
	"sync"

	"github.com/wordrace/server/internal/model"
)

// RecordingSink captures emitted events per connection so tests can
// assert on exactly what each client would have received
type RecordingSink struct {
	mu     sync.Mutex
	events map[model.ConnID][]model.Event
}

// NewRecordingSink creates an empty RecordingSink
func NewRecordingSink() *RecordingSink {
	return &RecordingSink{events: make(map[model.ConnID][]model.Event)}
}

var _ model.Sink = (*RecordingSink)(nil)

// ToConn records an event for a single connection
func (s *RecordingSink) ToConn(conn model.ConnID, ev model.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[conn] = append(s.events[conn], ev)
}

// ToConns records an event for each listed connection
func (s *RecordingSink) ToConns(conns []model.ConnID, ev model.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, conn := range conns {
		s.events[conn] = append(s.events[conn], ev)
	}
}

// Events returns everything recorded for a connection, in order
func (s *RecordingSink) Events(conn model.ConnID) []model.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Event, len(s.events[conn]))
	copy(out, s.events[conn])
	return out
}

// EventsOfType returns the recorded events of one type for a connection
func (s *RecordingSink) EventsOfType(conn model.ConnID, t model.EventType) []model.Event {
	var out []model.Event
	for _, ev := range s.Events(conn) {
		if ev.Type == t {
			out = append(out, ev)
		}
	}
	return out
}

// LastOfType returns the most recent event of one type for a
// connection, or nil
func (s *RecordingSink) LastOfType(conn model.ConnID, t model.EventType) *model.Event {
	evs := s.EventsOfType(conn, t)
	if len(evs) == 0 {
		return nil
	}
	return &evs[len(evs)-1]
}

// Reset discards everything recorded so far
func (s *RecordingSink) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = make(map[model.ConnID][]model.Event)
}
