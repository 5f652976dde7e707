package index

import "sync"

// Event is a change notification. Path names the file that changed, or is
// empty for a full refresh. Events are pokes, not state: subscribers must
// re-read the index, which always holds the final state for every path.
type Event struct {
	Path string
}

// Broker fans change notifications out to subscribers on buffered
// channels. When a subscriber's buffer is full the notification is
// dropped — safe, because a queued notification already forces that
// subscriber to re-read the index.
type Broker struct {
	mu         sync.RWMutex
	subs       []chan Event
	bufferSize int
}

func NewBroker() *Broker {
	return &Broker{bufferSize: 16}
}

// Subscribe returns a channel that receives change notifications.
func (b *Broker) Subscribe() <-chan Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan Event, b.bufferSize)
	b.subs = append(b.subs, ch)
	return ch
}

// Unsubscribe removes the subscription and closes its channel.
func (b *Broker) Unsubscribe(target <-chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, ch := range b.subs {
		if ch == target {
			b.subs = append(b.subs[:i], b.subs[i+1:]...)
			close(ch)
			return
		}
	}
}

// Publish delivers an event to every subscriber without blocking.
func (b *Broker) Publish(event Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, ch := range b.subs {
		select {
		case ch <- event:
		default:
		}
	}
}

// Close shuts down all subscriptions.
func (b *Broker) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, ch := range b.subs {
		close(ch)
	}
	b.subs = nil
}
