package bus

import (
	"sync"

	"github.com/crmlite/leadboard/log"
)

// Topic is a named notification channel. The full set is enumerated in
// topics.go; handlers and publishers agree on the payload type per topic.
type Topic string

// Handler receives the published payload by reference. Handlers must not
// mutate the payload and must not assume exclusive ownership of it.
type Handler func(payload any)

// Bus is a synchronous publish/subscribe mediator. Handlers for a topic run
// in registration order on the publishing goroutine. A panicking handler is
// isolated: it is logged and the remaining handlers still run.
type Bus struct {
	mu     sync.Mutex
	nextID uint64
	topics map[Topic][]*Subscription
}

// Subscription identifies one (topic, handler) registration.
type Subscription struct {
	bus     *Bus
	topic   Topic
	id      uint64
	handler Handler
}

func New() *Bus {
	return &Bus{topics: map[Topic][]*Subscription{}}
}

// Subscribe registers handler for topic. The same handler may be registered
// for any number of topics; each registration is released independently
// through the returned Subscription.
func (b *Bus) Subscribe(topic Topic, handler Handler) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	sub := &Subscription{bus: b, topic: topic, id: b.nextID, handler: handler}
	b.topics[topic] = append(b.topics[topic], sub)
	return sub
}

// Unsubscribe removes one registration. Unsubscribing a subscription that is
// no longer registered is a no-op.
func (b *Bus) Unsubscribe(sub *Subscription) {
	if sub == nil || sub.bus != b {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.topics[sub.topic]
	for i, s := range subs {
		if s.id == sub.id {
			b.topics[sub.topic] = append(subs[:i:i], subs[i+1:]...)
			return
		}
	}
}

// Unsubscribe releases the registration. Safe to call more than once.
func (s *Subscription) Unsubscribe() {
	if s != nil && s.bus != nil {
		s.bus.Unsubscribe(s)
	}
}

// Publish synchronously invokes every handler currently registered for
// topic, in registration order.
func (b *Bus) Publish(topic Topic, payload any) {
	b.mu.Lock()
	subs := make([]*Subscription, len(b.topics[topic]))
	copy(subs, b.topics[topic])
	b.mu.Unlock()

	for _, sub := range subs {
		dispatch(topic, sub.handler, payload)
	}
}

func dispatch(topic Topic, handler Handler, payload any) {
	defer func() {
		if r := recover(); r != nil {
			log.Errorf("bus.dispatch: handler for %q panicked: %v", topic, r)
		}
	}()
	handler(payload)
}

// Clear removes all registrations for all topics. Used on teardown.
func (b *Bus) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.topics = map[Topic][]*Subscription{}
}
