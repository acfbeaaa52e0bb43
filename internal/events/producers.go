package events

import (
	"github.com/harboat/rooms/internal/game/room"
)

// CoreProducer publishes topology events on the core channel.
type CoreProducer struct {
	publisher Publisher
	channel   string
}

// NewCoreProducer binds a core producer to its configured channel key.
//
// Precondition: publisher must be non-nil; channel must be non-empty.
func NewCoreProducer(publisher Publisher, channel string) *CoreProducer {
	return &CoreProducer{publisher: publisher, channel: channel}
}

// RoomCreated announces a newly created room.
func (p *CoreProducer) RoomCreated(ev room.RoomCreated) {
	p.publisher.Publish(p.channel, ev)
}

// PlayerJoined announces a player joining a room.
func (p *CoreProducer) PlayerJoined(ev room.RoomPlayerJoined) {
	p.publisher.Publish(p.channel, ev)
}

// GameStart announces a room transitioning to started.
func (p *CoreProducer) GameStart(ev room.RoomGameStart) {
	p.publisher.Publish(p.channel, ev)
}

// ConfigProducer publishes configuration-service events.
type ConfigProducer struct {
	publisher Publisher
	channel   string
}

// NewConfigProducer binds a config producer to its configured channel key.
//
// Precondition: publisher must be non-nil; channel must be non-empty.
func NewConfigProducer(publisher Publisher, channel string) *ConfigProducer {
	return &ConfigProducer{publisher: publisher, channel: channel}
}

// Create asks the configuration service to provision a new room.
func (p *ConfigProducer) Create(ev room.ConfigurationCreate) {
	p.publisher.Publish(p.channel, ev)
}

// PlayerJoin informs the configuration service of a join.
func (p *ConfigProducer) PlayerJoin(ev room.ConfigurationPlayerJoin) {
	p.publisher.Publish(p.channel, ev)
}

// CreateGame asks the configuration service to provision the game.
func (p *ConfigProducer) CreateGame(ev room.CreateGame) {
	p.publisher.Publish(p.channel, ev)
}

// NotificationProducer publishes per-player notification events.
type NotificationProducer struct {
	publisher Publisher
	channel   string
}

// NewNotificationProducer binds a notification producer to its channel.
//
// Precondition: publisher must be non-nil; channel must be non-empty.
func NewNotificationProducer(publisher Publisher, channel string) *NotificationProducer {
	return &NotificationProducer{publisher: publisher, channel: channel}
}

// Notify delivers a per-player event to the notification channel.
func (p *NotificationProducer) Notify(n room.Notification) {
	p.publisher.Publish(p.channel, n)
}
