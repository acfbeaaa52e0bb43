package room

import "context"

// EventType labels a per-player notification.
type EventType string

// Notification event types consumed by the notification service.
const (
	EventPlayerReady   EventType = "PLAYER_READY"
	EventPlayerUnready EventType = "PLAYER_UNREADY"
	EventException     EventType = "EXCEPTION"
)

// RoomCreated announces a new room on the topology channel.
type RoomCreated struct {
	RoomID   string `json:"roomId"`
	PlayerID string `json:"playerId"`
}

// RoomPlayerJoined announces a second player on the topology channel.
type RoomPlayerJoined struct {
	RoomID   string `json:"roomId"`
	PlayerID string `json:"playerId"`
}

// RoomGameStart announces the start transition on the topology channel.
type RoomGameStart struct {
	RoomID string `json:"roomId"`
}

// ConfigurationCreate tells the configuration service to provision a room.
type ConfigurationCreate struct {
	RoomID   string `json:"roomId"`
	PlayerID string `json:"playerId"`
}

// ConfigurationPlayerJoin tells the configuration service about a join.
type ConfigurationPlayerJoin struct {
	RoomID   string `json:"roomId"`
	PlayerID string `json:"playerId"`
}

// CreateGame tells the configuration service to provision the game itself.
type CreateGame struct {
	RoomID   string `json:"roomId"`
	PlayerID string `json:"playerId"`
}

// Notification is a per-player event addressed to a single recipient.
type Notification struct {
	PlayerID string    `json:"playerId"`
	Event    EventType `json:"event"`
	Payload  any       `json:"payload,omitempty"`
}

// Store is the persistence contract the service consumes. Load returns a
// KindNotFound room Error when no room exists under the id. Save returns
// the persisted representation, assigning the id on first save.
type Store interface {
	Load(ctx context.Context, roomID string) (*Room, error)
	Save(ctx context.Context, r *Room) (*Room, error)
}

// CoreProducer publishes topology events. Emission is fire-and-forget:
// it must not block or fail the transition that produced it.
type CoreProducer interface {
	RoomCreated(ev RoomCreated)
	PlayerJoined(ev RoomPlayerJoined)
	GameStart(ev RoomGameStart)
}

// ConfigProducer publishes configuration-service events.
type ConfigProducer interface {
	Create(ev ConfigurationCreate)
	PlayerJoin(ev ConfigurationPlayerJoin)
	CreateGame(ev CreateGame)
}

// NotificationProducer publishes per-player notification events.
type NotificationProducer interface {
	Notify(n Notification)
}
