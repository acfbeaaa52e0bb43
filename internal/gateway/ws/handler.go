// Package ws implements the inbound intent gateway: a websocket endpoint
// that decodes flat JSON intents, dispatches them to the room service,
// and fans notification-channel events out to the connected player.
package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/harboat/rooms/internal/events"
	"github.com/harboat/rooms/internal/game/room"
)

// Intent type discriminators accepted on the wire.
const (
	IntentCreate         = "create"
	IntentJoin           = "join"
	IntentMarkFleetSet   = "markFleetSet"
	IntentUnmarkFleetSet = "unmarkFleetSet"
	IntentChangeReady    = "changeReady"
	IntentMarkStart      = "markStart"
)

// RoomOps is the slice of the room service the gateway dispatches to.
type RoomOps interface {
	Create(ctx context.Context, intent room.CreateRoom) error
	Join(ctx context.Context, intent room.JoinRoom) error
	MarkFleetSet(ctx context.Context, intent room.MarkFleetSet) error
	UnmarkFleetSet(ctx context.Context, intent room.UnmarkFleetSet) error
	ChangeReady(ctx context.Context, intent room.ChangeReadiness) error
	MarkStart(ctx context.Context, intent room.MarkStart) error
}

// intentMessage is the flat wire form of every inbound intent.
type intentMessage struct {
	Type   string `json:"type"`
	RoomID string `json:"roomId"`
}

// exceptionPayload carries a rejected intent's reason back to the actor.
type exceptionPayload struct {
	Message string `json:"message"`
}

// HandlerConfig carries the gateway's collaborators and tuning.
type HandlerConfig struct {
	Service             RoomOps
	Bus                 *events.Bus
	Notifications       room.NotificationProducer
	NotificationChannel string
	SubscriberBuffer    int
	ReadTimeout         time.Duration
	WriteTimeout        time.Duration
	Logger              *zap.Logger
}

// Handler upgrades HTTP requests to websocket connections and runs the
// per-connection intent loop.
type Handler struct {
	service             RoomOps
	bus                 *events.Bus
	notifications       room.NotificationProducer
	notificationChannel string
	subscriberBuffer    int
	readTimeout         time.Duration
	writeTimeout        time.Duration
	logger              *zap.Logger
	upgrader            websocket.Upgrader
}

// NewHandler creates a Handler from the given configuration.
//
// Precondition: Service, Bus, Notifications, and Logger must be non-nil;
// NotificationChannel must be non-empty.
func NewHandler(cfg HandlerConfig) *Handler {
	buffer := cfg.SubscriberBuffer
	if buffer < 1 {
		buffer = 64
	}
	return &Handler{
		service:             cfg.Service,
		bus:                 cfg.Bus,
		notifications:       cfg.Notifications,
		notificationChannel: cfg.NotificationChannel,
		subscriberBuffer:    buffer,
		readTimeout:         cfg.ReadTimeout,
		writeTimeout:        cfg.WriteTimeout,
		logger:              cfg.Logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// Handle upgrades the request and serves the connection until it closes.
// The player identifies itself with the playerId query parameter; every
// intent is stamped with that identity regardless of frame contents.
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	playerID := r.URL.Query().Get("playerId")
	if playerID == "" {
		http.Error(w, "missing playerId", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed",
			zap.String("player_id", playerID),
			zap.Error(err),
		)
		return
	}
	defer conn.Close()

	sub := h.bus.Subscribe(h.notificationChannel, h.subscriberBuffer)
	defer h.bus.Unsubscribe(sub)

	// Notification writer. Only events addressed to this player reach
	// the connection; everything else on the channel is skipped.
	done := make(chan struct{})
	defer close(done)
	go h.writeLoop(conn, sub, playerID, done)

	h.logger.Info("player connected",
		zap.String("player_id", playerID),
	)

	ctx := r.Context()
	for {
		// Each frame refreshes the deadline: an idle connection is
		// reaped after readTimeout, an active one never is.
		if h.readTimeout > 0 {
			_ = conn.SetReadDeadline(time.Now().Add(h.readTimeout))
		}
		_, payload, err := conn.ReadMessage()
		if err != nil {
			h.logger.Info("player disconnected",
				zap.String("player_id", playerID),
				zap.Error(err),
			)
			return
		}

		var msg intentMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			h.logger.Warn("discarding malformed intent",
				zap.String("player_id", playerID),
				zap.Error(err),
			)
			continue
		}

		h.dispatch(ctx, playerID, msg)
	}
}

// dispatch routes one intent to the service. A domain error (either
// kind) becomes an EXCEPTION notification addressed to the actor and is
// not propagated; anything else is an infrastructure fault and is logged.
func (h *Handler) dispatch(ctx context.Context, playerID string, msg intentMessage) {
	var err error
	switch msg.Type {
	case IntentCreate:
		err = h.service.Create(ctx, room.CreateRoom{PlayerID: playerID})
	case IntentJoin:
		err = h.service.Join(ctx, room.JoinRoom{RoomID: msg.RoomID, PlayerID: playerID})
	case IntentMarkFleetSet:
		err = h.service.MarkFleetSet(ctx, room.MarkFleetSet{RoomID: msg.RoomID, PlayerID: playerID})
	case IntentUnmarkFleetSet:
		err = h.service.UnmarkFleetSet(ctx, room.UnmarkFleetSet{RoomID: msg.RoomID, PlayerID: playerID})
	case IntentChangeReady:
		err = h.service.ChangeReady(ctx, room.ChangeReadiness{RoomID: msg.RoomID, PlayerID: playerID})
	case IntentMarkStart:
		err = h.service.MarkStart(ctx, room.MarkStart{RoomID: msg.RoomID, PlayerID: playerID})
	default:
		h.logger.Warn("unknown intent type",
			zap.String("player_id", playerID),
			zap.String("type", msg.Type),
		)
		return
	}

	if err == nil {
		return
	}
	if room.IsDomain(err) {
		h.notifications.Notify(room.Notification{
			PlayerID: playerID,
			Event:    room.EventException,
			Payload:  exceptionPayload{Message: err.Error()},
		})
		return
	}
	h.logger.Error("intent failed",
		zap.String("player_id", playerID),
		zap.String("type", msg.Type),
		zap.String("room_id", msg.RoomID),
		zap.Error(err),
	)
}

// writeLoop forwards this player's notifications to the connection until
// the subscription closes or the connection breaks.
func (h *Handler) writeLoop(conn *websocket.Conn, sub *events.Subscription, playerID string, done <-chan struct{}) {
	for {
		select {
		case env, ok := <-sub.C():
			if !ok {
				return
			}
			n, ok := env.Payload.(room.Notification)
			if !ok || n.PlayerID != playerID {
				continue
			}
			data, err := json.Marshal(n)
			if err != nil {
				h.logger.Error("encoding notification",
					zap.String("player_id", playerID),
					zap.Error(err),
				)
				continue
			}
			if h.writeTimeout > 0 {
				_ = conn.SetWriteDeadline(time.Now().Add(h.writeTimeout))
			}
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				h.logger.Info("notification write failed, closing",
					zap.String("player_id", playerID),
					zap.Error(err),
				)
				return
			}
		case <-done:
			return
		}
	}
}
