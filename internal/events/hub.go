// Package events is the synchronization hub between the registries.
//
// A registry publishes a typed event after a successful structural change
// (add, delete, loan opened, loan closed). Dependent registries subscribe
// to refresh derived views such as selection lists. There is no ordering
// guarantee between subscribers of the same event and no retry: a handler
// failure is logged and never rolls back the already-committed mutation.
package events

import "log"

// Kind identifies what happened to an entity collection.
type Kind string

const (
	EntityAdded   Kind = "entity_added"
	EntityDeleted Kind = "entity_deleted"
	LoanOpened    Kind = "loan_opened"
	LoanClosed    Kind = "loan_closed"
)

// Event describes one structural change. Entity names the collection
// ("author", "book", "loan"); Key is the row identity (id or ISBN).
type Event struct {
	Kind   Kind
	Entity string
	Key    string
}

// Handler reacts to a published event. Returning an error only causes a
// log line; the mutation that triggered the event is already committed.
type Handler func(Event) error

// Hub holds the subscriber lists per event kind.
type Hub struct {
	subscribers map[Kind][]Handler
}

func NewHub() *Hub {
	return &Hub{subscribers: make(map[Kind][]Handler)}
}

// Subscribe registers handler for every published event of the given kind.
func (h *Hub) Subscribe(kind Kind, handler Handler) {
	h.subscribers[kind] = append(h.subscribers[kind], handler)
}

// Publish invokes every subscriber of ev.Kind. Handler errors are logged
// and do not stop the remaining subscribers.
func (h *Hub) Publish(ev Event) {
	for _, handler := range h.subscribers[ev.Kind] {
		if err := handler(ev); err != nil {
			log.Printf("event %s (%s %s): subscriber failed: %v", ev.Kind, ev.Entity, ev.Key, err)
		}
	}
}
