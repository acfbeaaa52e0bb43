// Package room implements the room aggregate: the two-player session
// entity, its state machine, and the service that orchestrates intent
// handling against a backing store.
package room

// Player holds the per-player flags tracked inside a room. A Player has
// no identity of its own outside the room that contains it.
type Player struct {
	// Ready is the player's explicit signal they are prepared to start.
	Ready bool
	// FleetSet reports whether the player has finalized their fleet layout.
	FleetSet bool
}

// Room is a session pairing up to two players before a match starts.
// All fields are unexported; state changes go through the named mutators
// so the invariants hold at the boundary rather than by caller discipline.
type Room struct {
	id      string
	ownerID string
	started bool
	players map[string]Player
}

// New creates a room containing only its owner, not yet started.
// The room id is empty until the store assigns one on first save.
//
// Precondition: ownerID must be non-empty.
func New(ownerID string) *Room {
	return &Room{
		ownerID: ownerID,
		players: map[string]Player{
			ownerID: {},
		},
	}
}

// Rehydrate reconstructs a room from persisted state. Intended for the
// storage layer; it performs no validation beyond copying the player map.
func Rehydrate(id, ownerID string, started bool, players map[string]Player) *Room {
	copied := make(map[string]Player, len(players))
	for pid, p := range players {
		copied[pid] = p
	}
	return &Room{
		id:      id,
		ownerID: ownerID,
		started: started,
		players: copied,
	}
}

// ID returns the store-assigned room identifier, or "" before first save.
func (r *Room) ID() string { return r.id }

// OwnerID returns the identifier of the player that created the room.
func (r *Room) OwnerID() string { return r.ownerID }

// Started reports whether the game has been started.
func (r *Room) Started() bool { return r.started }

// PlayerCount returns the number of players currently in the room.
func (r *Room) PlayerCount() int { return len(r.players) }

// Players returns a copy of the player map keyed by player id.
//
// Postcondition: Mutating the returned map does not affect the room.
func (r *Room) Players() map[string]Player {
	copied := make(map[string]Player, len(r.players))
	for pid, p := range r.players {
		copied[pid] = p
	}
	return copied
}

// PlayerIDs returns the ids of all players in the room (unordered).
func (r *Room) PlayerIDs() []string {
	ids := make([]string, 0, len(r.players))
	for pid := range r.players {
		ids = append(ids, pid)
	}
	return ids
}

// AddPlayer inserts a new player with both flags cleared.
//
// Precondition: the caller has verified the room is not full and the
// player is not already present.
func (r *Room) AddPlayer(playerID string) {
	r.players[playerID] = Player{}
}

// IsPlayerInRoom reports whether playerID is a member of the room.
func (r *Room) IsPlayerInRoom(playerID string) bool {
	_, ok := r.players[playerID]
	return ok
}

// IsOwner reports whether playerID created the room.
func (r *Room) IsOwner(playerID string) bool {
	return r.ownerID == playerID
}

// AllFleetsSet reports whether every player has their fleet set.
// Vacuously true for an empty room; callers guard player count elsewhere.
func (r *Room) AllFleetsSet() bool {
	for _, p := range r.players {
		if !p.FleetSet {
			return false
		}
	}
	return true
}

// IsPlayerFleetSet reports whether the given player's fleet is set.
//
// Precondition: playerID must be a member of the room.
func (r *Room) IsPlayerFleetSet(playerID string) bool {
	return r.players[playerID].FleetSet
}

// MarkFleetSet records that the given player finalized their fleet.
//
// Precondition: playerID must be a member of the room; a missing key is
// a programming error, not a domain error.
func (r *Room) MarkFleetSet(playerID string) {
	p := r.players[playerID]
	p.FleetSet = true
	r.players[playerID] = p
}

// UnmarkAllFleetSets clears FleetSet and Ready for every player. A fleet
// edit invalidates prior readiness claims, so readiness resets with it.
func (r *Room) UnmarkAllFleetSets() {
	for pid, p := range r.players {
		p.FleetSet = false
		p.Ready = false
		r.players[pid] = p
	}
}

// AllPlayersReady reports whether every player has flagged ready.
func (r *Room) AllPlayersReady() bool {
	for _, p := range r.players {
		if !p.Ready {
			return false
		}
	}
	return true
}

// ToggleReady flips the given player's ready flag and returns the
// previous value, which the service uses to pick the notification kind.
//
// Precondition: playerID must be a member of the room.
func (r *Room) ToggleReady(playerID string) bool {
	p := r.players[playerID]
	prev := p.Ready
	p.Ready = !p.Ready
	r.players[playerID] = p
	return prev
}

// MarkStarted transitions the room into its terminal started state.
// The flag never reverts; precondition checks live in the service.
func (r *Room) MarkStarted() {
	r.started = true
}
