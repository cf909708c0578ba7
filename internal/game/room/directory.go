package room

import (
	"fmt"
	"slices"
	"strconv"

	"github.com/cory-johannsen/ludo/internal/game/dice"
)

// maxIDAttempts bounds the regeneration loop when a generated id is taken.
const maxIDAttempts = 32

// IDGenerator produces candidate room ids.
type IDGenerator interface {
	// Generate returns a candidate id. Collisions are resolved by the Directory.
	Generate() string
}

// numericIDs draws six-digit decimal ids in [100000, 999999].
type numericIDs struct {
	src dice.Source
}

// NewNumericIDs returns an IDGenerator producing six-digit numeric strings from src.
//
// Precondition: src must be non-nil.
func NewNumericIDs(src dice.Source) IDGenerator {
	return numericIDs{src: src}
}

// Generate returns a six-digit numeric id.
func (g numericIDs) Generate() string {
	return strconv.Itoa(100000 + g.src.Intn(900000))
}

// Directory is the registry of live rooms, keyed by id and kept in
// insertion order for listings.
//
// Directory is not safe for concurrent use; callers serialise access.
type Directory struct {
	rooms map[string]*Room
	order []string
	ids   IDGenerator
}

// NewDirectory creates an empty Directory drawing ids from ids.
//
// Precondition: ids must be non-nil.
func NewDirectory(ids IDGenerator) *Directory {
	return &Directory{
		rooms: make(map[string]*Room),
		ids:   ids,
	}
}

// Create registers a new lobby room with creator as its only player.
// Ids already in use are regenerated rather than overwritten.
//
// Precondition: creator must be non-empty; capacity must be in [1, MaxSeats].
// Postcondition: Returns the new room, or ErrIDSpaceExhausted after maxIDAttempts collisions.
func (d *Directory) Create(capacity int, creator string) (*Room, error) {
	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		id := d.ids.Generate()
		if _, taken := d.rooms[id]; taken {
			continue
		}
		r := New(id, capacity, creator)
		d.rooms[id] = r
		d.order = append(d.order, id)
		return r, nil
	}
	return nil, fmt.Errorf("creating room after %d attempts: %w", maxIDAttempts, ErrIDSpaceExhausted)
}

// Lookup returns the room with the given id.
//
// Postcondition: Returns an error wrapping ErrRoomNotFound when absent.
func (d *Directory) Lookup(id string) (*Room, error) {
	r, ok := d.rooms[id]
	if !ok {
		return nil, fmt.Errorf("room %q: %w", id, ErrRoomNotFound)
	}
	return r, nil
}

// ListJoinable returns listing entries for rooms that are neither full nor
// started, in creation order.
//
// Postcondition: Never returns nil.
func (d *Directory) ListJoinable() []Summary {
	out := make([]Summary, 0, len(d.order))
	for _, id := range d.order {
		if r := d.rooms[id]; r.Joinable() {
			out = append(out, r.Summary())
		}
	}
	return out
}

// Delete removes the room with the given id.
//
// Postcondition: Returns false when no such room existed.
func (d *Directory) Delete(id string) bool {
	if _, ok := d.rooms[id]; !ok {
		return false
	}
	delete(d.rooms, id)
	if i := slices.Index(d.order, id); i >= 0 {
		d.order = slices.Delete(d.order, i, i+1)
	}
	return true
}

// RoomsOf returns every room in which connID is seated, in creation order.
// With single-room membership enforced this has at most one element.
func (d *Directory) RoomsOf(connID string) []*Room {
	var out []*Room
	for _, id := range d.order {
		if r := d.rooms[id]; r.HasPlayer(connID) {
			out = append(out, r)
		}
	}
	return out
}

// RoomOf returns the room connID is seated in.
func (d *Directory) RoomOf(connID string) (*Room, bool) {
	rs := d.RoomsOf(connID)
	if len(rs) == 0 {
		return nil, false
	}
	return rs[0], true
}

// Len returns the number of live rooms.
func (d *Directory) Len() int { return len(d.rooms) }
