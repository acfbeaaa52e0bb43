package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestPublishReachesSubscribers(t *testing.T) {
	bus := NewBus(zaptest.NewLogger(t))
	sub := bus.Subscribe("rooms.core", 4)

	bus.Publish("rooms.core", "payload")

	env := <-sub.C()
	assert.Equal(t, "rooms.core", env.Channel)
	assert.Equal(t, "payload", env.Payload)
}

func TestPublishIsChannelScoped(t *testing.T) {
	bus := NewBus(zaptest.NewLogger(t))
	core := bus.Subscribe("rooms.core", 4)
	config := bus.Subscribe("rooms.config", 4)

	bus.Publish("rooms.config", 42)

	select {
	case env := <-config.C():
		assert.Equal(t, 42, env.Payload)
	default:
		t.Fatal("config subscriber received nothing")
	}

	select {
	case env := <-core.C():
		t.Fatalf("core subscriber received stray event: %+v", env)
	default:
	}
}

func TestPublishNeverBlocksOnFullSubscriber(t *testing.T) {
	bus := NewBus(zaptest.NewLogger(t))
	sub := bus.Subscribe("rooms.notification", 1)

	// Second publish overflows the buffer; it must drop, not block.
	bus.Publish("rooms.notification", 1)
	bus.Publish("rooms.notification", 2)

	env := <-sub.C()
	assert.Equal(t, 1, env.Payload)
	select {
	case env := <-sub.C():
		t.Fatalf("expected overflow drop, got %+v", env)
	default:
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	bus := NewBus(zaptest.NewLogger(t))
	sub := bus.Subscribe("rooms.core", 1)

	bus.Unsubscribe(sub)

	_, open := <-sub.C()
	require.False(t, open)

	// Publishing after unsubscribe must not panic on the closed channel.
	bus.Publish("rooms.core", "late")

	// Double unsubscribe is a no-op.
	bus.Unsubscribe(sub)
}
