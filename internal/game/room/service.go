package room

import (
	"context"
	"fmt"
	"sync"
)

// CreateRoom is the intent to open a new room owned by the sender.
type CreateRoom struct {
	PlayerID string `json:"playerId"`
}

// JoinRoom is the intent to enter an existing room as the second player.
type JoinRoom struct {
	RoomID   string `json:"roomId"`
	PlayerID string `json:"playerId"`
}

// MarkFleetSet is the intent recording that the sender's fleet is final.
type MarkFleetSet struct {
	RoomID   string `json:"roomId"`
	PlayerID string `json:"playerId"`
}

// UnmarkFleetSet is the intent to reopen fleet editing, which clears
// every player's fleet and readiness flags in the room.
type UnmarkFleetSet struct {
	RoomID   string `json:"roomId"`
	PlayerID string `json:"playerId"`
}

// ChangeReadiness is the intent to flip the sender's ready flag.
type ChangeReadiness struct {
	RoomID   string `json:"roomId"`
	PlayerID string `json:"playerId"`
}

// MarkStart is the intent from the owner to begin the game.
type MarkStart struct {
	RoomID   string `json:"roomId"`
	PlayerID string `json:"playerId"`
}

// Service orchestrates room lifecycle intents: each operation loads the
// room, validates its ordered preconditions, mutates, persists, then
// emits outbound events. Validation failures are reported before any
// mutation or persistence, so the stored room is unchanged on error.
//
// A per-room mutex serializes the load-validate-mutate-persist sequence
// for a single room so concurrent intents cannot produce a lost update.
// Intents for different rooms proceed in parallel.
type Service struct {
	store         Store
	core          CoreProducer
	config        ConfigProducer
	notifications NotificationProducer

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewService creates a Service with the given collaborators.
//
// Precondition: all arguments must be non-nil.
func NewService(store Store, core CoreProducer, config ConfigProducer, notifications NotificationProducer) *Service {
	return &Service{
		store:         store,
		core:          core,
		config:        config,
		notifications: notifications,
		locks:         make(map[string]*sync.Mutex),
	}
}

// lockRoom returns the mutex guarding the given room, creating it on
// first use. Locks are never reclaimed; the working set is bounded by
// the number of live rooms this instance has touched.
func (s *Service) lockRoom(roomID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[roomID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[roomID] = l
	}
	return l
}

// Create opens a new room owned by the intent's player and persists it.
// Emits a topology room-created event and a configuration create event.
//
// Postcondition: The stored room has exactly one player, the owner, and
// is not started.
func (s *Service) Create(ctx context.Context, intent CreateRoom) error {
	r, err := s.store.Save(ctx, New(intent.PlayerID))
	if err != nil {
		return fmt.Errorf("saving new room: %w", err)
	}
	s.core.RoomCreated(RoomCreated{RoomID: r.ID(), PlayerID: intent.PlayerID})
	s.config.Create(ConfigurationCreate{RoomID: r.ID(), PlayerID: intent.PlayerID})
	return nil
}

// Join adds the intent's player as the second occupant of the room.
//
// Precondition order: room exists, room not full, player not already in.
func (s *Service) Join(ctx context.Context, intent JoinRoom) error {
	l := s.lockRoom(intent.RoomID)
	l.Lock()
	defer l.Unlock()

	r, err := s.store.Load(ctx, intent.RoomID)
	if err != nil {
		if IsNotFound(err) {
			return NotFound("Couldn't find the room!")
		}
		return fmt.Errorf("loading room %s: %w", intent.RoomID, err)
	}
	if r.PlayerCount() == 2 {
		return InvalidRequest("Room is full!")
	}
	if r.IsPlayerInRoom(intent.PlayerID) {
		return InvalidRequest("You are already in this room!")
	}

	r.AddPlayer(intent.PlayerID)
	if _, err := s.store.Save(ctx, r); err != nil {
		return fmt.Errorf("saving room %s: %w", intent.RoomID, err)
	}

	s.config.PlayerJoin(ConfigurationPlayerJoin{RoomID: intent.RoomID, PlayerID: intent.PlayerID})
	s.core.PlayerJoined(RoomPlayerJoined{RoomID: intent.RoomID, PlayerID: intent.PlayerID})
	return nil
}

// MarkFleetSet records that the intent's player finalized their fleet.
func (s *Service) MarkFleetSet(ctx context.Context, intent MarkFleetSet) error {
	l := s.lockRoom(intent.RoomID)
	l.Lock()
	defer l.Unlock()

	r, err := s.loadMember(ctx, intent.RoomID, intent.PlayerID)
	if err != nil {
		return err
	}
	r.MarkFleetSet(intent.PlayerID)
	if _, err := s.store.Save(ctx, r); err != nil {
		return fmt.Errorf("saving room %s: %w", intent.RoomID, err)
	}
	return nil
}

// UnmarkFleetSet clears every player's fleet and readiness flags in the
// room. Readiness without a confirmed fleet is meaningless, so a fleet
// edit resets the whole ready sub-state.
func (s *Service) UnmarkFleetSet(ctx context.Context, intent UnmarkFleetSet) error {
	l := s.lockRoom(intent.RoomID)
	l.Lock()
	defer l.Unlock()

	r, err := s.loadMember(ctx, intent.RoomID, intent.PlayerID)
	if err != nil {
		return err
	}
	r.UnmarkAllFleetSets()
	if _, err := s.store.Save(ctx, r); err != nil {
		return fmt.Errorf("saving room %s: %w", intent.RoomID, err)
	}
	return nil
}

// ChangeReady flips the intent's player's ready flag and notifies every
// room occupant, the actor included, since readiness is state the other
// player must react to.
//
// Precondition order: room exists, player in room, player's fleet set.
func (s *Service) ChangeReady(ctx context.Context, intent ChangeReadiness) error {
	l := s.lockRoom(intent.RoomID)
	l.Lock()
	defer l.Unlock()

	r, err := s.loadMember(ctx, intent.RoomID, intent.PlayerID)
	if err != nil {
		return err
	}
	if !r.IsPlayerFleetSet(intent.PlayerID) {
		return InvalidRequest("Player fleet is not set yet, you can't change readiness!")
	}

	wasReady := r.ToggleReady(intent.PlayerID)
	if _, err := s.store.Save(ctx, r); err != nil {
		return fmt.Errorf("saving room %s: %w", intent.RoomID, err)
	}

	event := EventPlayerReady
	if wasReady {
		event = EventPlayerUnready
	}
	for _, pid := range r.PlayerIDs() {
		s.notifications.Notify(Notification{PlayerID: pid, Event: event, Payload: intent})
	}
	return nil
}

// MarkStart transitions the room into its terminal started state.
//
// Precondition order: room exists, player in room, player is owner,
// exactly two players, all ready, all fleets set. The ordering is a
// contract; error messages must stay deterministic for a given input.
func (s *Service) MarkStart(ctx context.Context, intent MarkStart) error {
	l := s.lockRoom(intent.RoomID)
	l.Lock()
	defer l.Unlock()

	r, err := s.loadMember(ctx, intent.RoomID, intent.PlayerID)
	if err != nil {
		return err
	}
	if !r.IsOwner(intent.PlayerID) {
		return InvalidRequest("You are not an owner of this game!")
	}
	if r.PlayerCount() != 2 {
		return InvalidRequest("You can't play solo!")
	}
	if !r.AllPlayersReady() {
		return InvalidRequest("Not all players are ready!")
	}
	if !r.AllFleetsSet() {
		return InvalidRequest("Not all players have fleet set!")
	}

	r.MarkStarted()
	if _, err := s.store.Save(ctx, r); err != nil {
		return fmt.Errorf("saving room %s: %w", intent.RoomID, err)
	}

	s.core.GameStart(RoomGameStart{RoomID: intent.RoomID})
	s.config.CreateGame(CreateGame{RoomID: r.ID(), PlayerID: intent.PlayerID})
	return nil
}

// loadMember loads a room and verifies the acting player belongs to it.
// Existence is checked before membership so error messages are stable.
func (s *Service) loadMember(ctx context.Context, roomID, playerID string) (*Room, error) {
	r, err := s.store.Load(ctx, roomID)
	if err != nil {
		if IsNotFound(err) {
			return nil, NotFound("Couldn't find the game!")
		}
		return nil, fmt.Errorf("loading room %s: %w", roomID, err)
	}
	if !r.IsPlayerInRoom(playerID) {
		return nil, InvalidRequest("Player is not in the game!")
	}
	return r, nil
}
