package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/harboat/rooms/internal/game/room"
)

// playerRecord is the JSONB shape of a player inside the players column.
type playerRecord struct {
	Ready    bool `json:"ready"`
	FleetSet bool `json:"fleetSet"`
}

// RoomRepository persists rooms in the rooms table. The players map is
// stored as a JSONB column; a version counter bumps on every update so
// concurrent writers are visible in the row history. Serialization of
// the read-modify-write cycle is the room service's responsibility.
type RoomRepository struct {
	db *pgxpool.Pool
}

// NewRoomRepository creates a RoomRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewRoomRepository(db *pgxpool.Pool) *RoomRepository {
	return &RoomRepository{db: db}
}

// Load retrieves a room by id.
//
// Postcondition: Returns the room, or a KindNotFound room error when no
// row exists under the id.
func (r *RoomRepository) Load(ctx context.Context, roomID string) (*room.Room, error) {
	var (
		ownerID string
		started bool
		players []byte
	)
	err := r.db.QueryRow(ctx,
		`SELECT owner_id, started, players
		 FROM rooms WHERE id = $1`,
		roomID,
	).Scan(&ownerID, &started, &players)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, room.NotFound("room not found")
		}
		return nil, fmt.Errorf("querying room %s: %w", roomID, err)
	}

	var records map[string]playerRecord
	if err := json.Unmarshal(players, &records); err != nil {
		return nil, fmt.Errorf("decoding players for room %s: %w", roomID, err)
	}

	state := make(map[string]room.Player, len(records))
	for pid, rec := range records {
		state[pid] = room.Player{Ready: rec.Ready, FleetSet: rec.FleetSet}
	}
	return room.Rehydrate(roomID, ownerID, started, state), nil
}

// Save persists the room, assigning a fresh uuid on first save.
//
// Postcondition: Returns the persisted representation; its ID is always
// non-empty.
func (r *RoomRepository) Save(ctx context.Context, rm *room.Room) (*room.Room, error) {
	players, err := encodePlayers(rm)
	if err != nil {
		return nil, err
	}

	if rm.ID() == "" {
		id := uuid.NewString()
		_, err := r.db.Exec(ctx,
			`INSERT INTO rooms (id, owner_id, started, players)
			 VALUES ($1, $2, $3, $4)`,
			id, rm.OwnerID(), rm.Started(), players,
		)
		if err != nil {
			return nil, fmt.Errorf("inserting room: %w", err)
		}
		return room.Rehydrate(id, rm.OwnerID(), rm.Started(), rm.Players()), nil
	}

	tag, err := r.db.Exec(ctx,
		`UPDATE rooms
		 SET owner_id = $2, started = $3, players = $4,
		     version = version + 1, updated_at = NOW()
		 WHERE id = $1`,
		rm.ID(), rm.OwnerID(), rm.Started(), players,
	)
	if err != nil {
		return nil, fmt.Errorf("updating room %s: %w", rm.ID(), err)
	}
	if tag.RowsAffected() == 0 {
		return nil, room.NotFound("room not found")
	}
	return rm, nil
}

func encodePlayers(rm *room.Room) ([]byte, error) {
	records := make(map[string]playerRecord)
	for pid, p := range rm.Players() {
		records[pid] = playerRecord{Ready: p.Ready, FleetSet: p.FleetSet}
	}
	data, err := json.Marshal(records)
	if err != nil {
		return nil, fmt.Errorf("encoding players for room %s: %w", rm.ID(), err)
	}
	return data, nil
}
