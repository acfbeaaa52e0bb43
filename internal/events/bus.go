// Package events implements the outbound event gateway: an in-process
// fire-and-forget bus with named channels, plus the three producers that
// feed the topology, configuration, and notification channels.
package events

import (
	"sync"

	"go.uber.org/zap"
)

// Envelope wraps a published payload with the channel it was sent on.
type Envelope struct {
	Channel string
	Payload any
}

// Publisher is the minimal contract producers need from the bus.
type Publisher interface {
	Publish(channel string, payload any)
}

// Subscription receives envelopes for a single channel.
type Subscription struct {
	channel string
	ch      chan Envelope
}

// C returns the receive side of the subscription.
func (s *Subscription) C() <-chan Envelope { return s.ch }

// Channel returns the channel key this subscription is bound to.
func (s *Subscription) Channel() string { return s.channel }

// Bus fans published payloads out to channel subscribers. Publish never
// blocks: a subscriber whose buffer is full loses the event, and the bus
// logs a warning. Delivery guarantees belong to adjacent services, not
// to this core.
type Bus struct {
	logger *zap.Logger

	mu   sync.RWMutex
	subs map[string][]*Subscription
}

// NewBus creates an empty Bus logging through the given logger.
//
// Precondition: logger must be non-nil.
func NewBus(logger *zap.Logger) *Bus {
	return &Bus{
		logger: logger,
		subs:   make(map[string][]*Subscription),
	}
}

// Subscribe registers a new subscriber for the channel with the given
// buffer capacity.
//
// Precondition: buffer must be >= 1.
func (b *Bus) Subscribe(channel string, buffer int) *Subscription {
	sub := &Subscription{
		channel: channel,
		ch:      make(chan Envelope, buffer),
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs[channel] = append(b.subs[channel], sub)
	return sub
}

// Unsubscribe removes the subscription and closes its channel.
// Unsubscribing twice is a no-op.
func (b *Bus) Unsubscribe(sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	list := b.subs[sub.channel]
	for i, s := range list {
		if s == sub {
			b.subs[sub.channel] = append(list[:i], list[i+1:]...)
			close(sub.ch)
			return
		}
	}
}

// Publish delivers the payload to every subscriber of the channel
// without blocking the caller.
func (b *Bus) Publish(channel string, payload any) {
	env := Envelope{Channel: channel, Payload: payload}

	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, sub := range b.subs[channel] {
		select {
		case sub.ch <- env:
		default:
			b.logger.Warn("dropping event for slow subscriber",
				zap.String("channel", channel),
			)
		}
	}
	b.logger.Debug("event published",
		zap.String("channel", channel),
		zap.Int("subscribers", len(b.subs[channel])),
	)
}
