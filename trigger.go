package solver

import (
	"unsafe"

	"github.com/Jim-Eckerlein/constraints-solver/actor"
)

const (
	CONTACT_ENTER EventType = iota
	CONTACT_STAY
	CONTACT_EXIT
	OVERLAP_ENTER
	OVERLAP_STAY
	OVERLAP_EXIT
)

type pairKey struct {
	bodyA *actor.RigidBody
	bodyB *actor.RigidBody
}

// makePairKey creates a normalized pair key with consistent ordering
func makePairKey(bodyA, bodyB *actor.RigidBody) pairKey {
	ptrA := uintptr(unsafe.Pointer(bodyA))
	ptrB := uintptr(unsafe.Pointer(bodyB))

	if ptrB < ptrA {
		bodyA, bodyB = bodyB, bodyA
	}

	return pairKey{bodyA: bodyA, bodyB: bodyB}
}

type EventType uint8

func (t EventType) String() string {
	switch t {
	case CONTACT_ENTER:
		return "contact_enter"
	case CONTACT_STAY:
		return "contact_stay"
	case CONTACT_EXIT:
		return "contact_exit"
	case OVERLAP_ENTER:
		return "overlap_enter"
	case OVERLAP_STAY:
		return "overlap_stay"
	case OVERLAP_EXIT:
		return "overlap_exit"
	}
	return "unknown"
}

// Event is emitted once per Integrate call for each pair whose state is worth reporting.
// Contact events cover pairs that were corrected; overlap events cover box pairs that
// intersect but are not resolved.
type Event struct {
	Type  EventType
	BodyA *actor.RigidBody
	BodyB *actor.RigidBody
}

// EventListener - callback for events
type EventListener func(event Event)

// Events collects the pairs touched during the sub-steps of one Integrate call and
// turns them into Enter/Stay/Exit notifications when the call ends.
type Events struct {
	listeners map[EventType][]EventListener

	buffer []Event

	previousContacts map[pairKey]bool
	currentContacts  map[pairKey]bool
	previousOverlaps map[pairKey]bool
	currentOverlaps  map[pairKey]bool
}

func NewEvents() *Events {
	return &Events{
		listeners:        make(map[EventType][]EventListener),
		buffer:           make([]Event, 0, 64),
		previousContacts: make(map[pairKey]bool),
		currentContacts:  make(map[pairKey]bool),
		previousOverlaps: make(map[pairKey]bool),
		currentOverlaps:  make(map[pairKey]bool),
	}
}

// Subscribe adds a listener for an event type
func (e *Events) Subscribe(eventType EventType, listener EventListener) {
	e.listeners[eventType] = append(e.listeners[eventType], listener)
}

func (e *Events) recordContact(bodyA, bodyB *actor.RigidBody) {
	e.currentContacts[makePairKey(bodyA, bodyB)] = true
}

func (e *Events) recordOverlap(bodyA, bodyB *actor.RigidBody) {
	e.currentOverlaps[makePairKey(bodyA, bodyB)] = true
}

// diff appends Enter/Stay events for current pairs and Exit events for pairs that vanished,
// then swaps the sets for the next call.
func (e *Events) diff(previous, current map[pairKey]bool, enter, stay, exit EventType) {
	for pair := range current {
		eventType := enter
		if previous[pair] {
			eventType = stay
		}
		e.buffer = append(e.buffer, Event{Type: eventType, BodyA: pair.bodyA, BodyB: pair.bodyB})
	}

	for pair := range previous {
		if !current[pair] {
			e.buffer = append(e.buffer, Event{Type: exit, BodyA: pair.bodyA, BodyB: pair.bodyB})
		}
	}
}

// flush sends all buffered events and clears the buffer
func (e *Events) flush() {
	e.diff(e.previousContacts, e.currentContacts, CONTACT_ENTER, CONTACT_STAY, CONTACT_EXIT)
	e.diff(e.previousOverlaps, e.currentOverlaps, OVERLAP_ENTER, OVERLAP_STAY, OVERLAP_EXIT)

	e.previousContacts, e.currentContacts = e.currentContacts, e.previousContacts
	clear(e.currentContacts)
	e.previousOverlaps, e.currentOverlaps = e.currentOverlaps, e.previousOverlaps
	clear(e.currentOverlaps)

	for _, event := range e.buffer {
		for _, listener := range e.listeners[event.Type] {
			listener(event)
		}
	}
	e.buffer = e.buffer[:0]
}
