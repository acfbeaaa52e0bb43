package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harboat/rooms/internal/game/room"
)

type publishRecorder struct {
	channels []string
	payloads []any
}

func (r *publishRecorder) Publish(channel string, payload any) {
	r.channels = append(r.channels, channel)
	r.payloads = append(r.payloads, payload)
}

func TestCoreProducerPublishesOnCoreChannel(t *testing.T) {
	rec := &publishRecorder{}
	p := NewCoreProducer(rec, "rooms.core")

	p.RoomCreated(room.RoomCreated{RoomID: "r1", PlayerID: "P1"})
	p.PlayerJoined(room.RoomPlayerJoined{RoomID: "r1", PlayerID: "P2"})
	p.GameStart(room.RoomGameStart{RoomID: "r1"})

	require.Len(t, rec.channels, 3)
	for _, ch := range rec.channels {
		assert.Equal(t, "rooms.core", ch)
	}
	assert.Equal(t, room.RoomCreated{RoomID: "r1", PlayerID: "P1"}, rec.payloads[0])
	assert.Equal(t, room.RoomPlayerJoined{RoomID: "r1", PlayerID: "P2"}, rec.payloads[1])
	assert.Equal(t, room.RoomGameStart{RoomID: "r1"}, rec.payloads[2])
}

func TestConfigProducerPublishesOnConfigChannel(t *testing.T) {
	rec := &publishRecorder{}
	p := NewConfigProducer(rec, "rooms.config")

	p.Create(room.ConfigurationCreate{RoomID: "r1", PlayerID: "P1"})
	p.PlayerJoin(room.ConfigurationPlayerJoin{RoomID: "r1", PlayerID: "P2"})
	p.CreateGame(room.CreateGame{RoomID: "r1", PlayerID: "P1"})

	require.Len(t, rec.channels, 3)
	for _, ch := range rec.channels {
		assert.Equal(t, "rooms.config", ch)
	}
	assert.Equal(t, room.CreateGame{RoomID: "r1", PlayerID: "P1"}, rec.payloads[2])
}

func TestNotificationProducerPublishesOnNotificationChannel(t *testing.T) {
	rec := &publishRecorder{}
	p := NewNotificationProducer(rec, "rooms.notification")

	n := room.Notification{PlayerID: "P1", Event: room.EventPlayerReady}
	p.Notify(n)

	require.Len(t, rec.channels, 1)
	assert.Equal(t, "rooms.notification", rec.channels[0])
	assert.Equal(t, n, rec.payloads[0])
}
