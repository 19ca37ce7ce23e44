package messaging

import (
	"context"
	"sync"
)

// ChannelPrefix namespaces every published event type.
const ChannelPrefix = "hms.events."

// Channel maps an outbox event type to the pub/sub channel it is published on.
func Channel(eventType string) string {
	return ChannelPrefix + eventType
}

// Broker defines the interface for message brokers
type Broker interface {
	Publish(ctx context.Context, channel string, payload []byte) error
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
	Close() error
}

// InProcessBroker fans messages out to subscribers in the same process. It backs the
// memory storage mode where no Redis is available.
type InProcessBroker struct {
	mu     sync.RWMutex
	subs   map[string][]chan []byte
	closed bool
}

func NewInProcessBroker() *InProcessBroker {
	return &InProcessBroker{subs: make(map[string][]chan []byte)}
}

// Publish drops the message for a subscriber whose buffer is full.
func (b *InProcessBroker) Publish(ctx context.Context, channel string, payload []byte) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return ErrBrokerClosed
	}
	for _, ch := range b.subs[channel] {
		msg := append([]byte(nil), payload...)
		select {
		case ch <- msg:
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
	}
	return nil
}

func (b *InProcessBroker) Subscribe(ctx context.Context, channel string) (<-chan []byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, ErrBrokerClosed
	}
	ch := make(chan []byte, 100)
	b.subs[channel] = append(b.subs[channel], ch)

	go func() {
		<-ctx.Done()
		b.unsubscribe(channel, ch)
	}()
	return ch, nil
}

func (b *InProcessBroker) unsubscribe(channel string, target chan []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	subs := b.subs[channel]
	for i, ch := range subs {
		if ch == target {
			b.subs[channel] = append(subs[:i], subs[i+1:]...)
			close(ch)
			return
		}
	}
}

func (b *InProcessBroker) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	for channel, subs := range b.subs {
		for _, ch := range subs {
			close(ch)
		}
		delete(b.subs, channel)
	}
	return nil
}
