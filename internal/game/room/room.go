// Package room models game rooms and the process-wide room directory.
//
// Rooms are plain data with invariant-preserving methods. They carry no
// locks: the owner of the Directory serialises every access.
package room

import "slices"

// Summary is the lobby listing entry for a joinable room.
type Summary struct {
	RoomID      string
	PlayerCount int
	MaxPlayers  int
}

// Room is a bounded four-seat session with a lobby phase and a started phase.
//
// Invariants:
//   - len(players) <= maxPlayers.
//   - ready and misses only hold keys present in players.
//   - turn is a valid index into players whenever players is non-empty.
type Room struct {
	id         string
	maxPlayers int
	players    []string
	ready      map[string]bool
	misses     map[string]int
	turn       int
	started    bool
}

// NormalizeCapacity returns requested when it is a playable capacity
// (2..MaxSeats) and fallback otherwise.
func NormalizeCapacity(requested, fallback int) int {
	if requested >= 2 && requested <= MaxSeats {
		return requested
	}
	return fallback
}

// New creates a lobby room whose only player is creator, not ready.
//
// Precondition: id and creator must be non-empty; maxPlayers must be in [1, MaxSeats].
func New(id string, maxPlayers int, creator string) *Room {
	return &Room{
		id:         id,
		maxPlayers: maxPlayers,
		players:    []string{creator},
		ready:      map[string]bool{creator: false},
		misses:     map[string]int{},
	}
}

// ID returns the six-digit room id.
func (r *Room) ID() string { return r.id }

// MaxPlayers returns the capacity fixed at creation.
func (r *Room) MaxPlayers() int { return r.maxPlayers }

// Players returns a copy of the seat order.
func (r *Room) Players() []string { return slices.Clone(r.players) }

// PlayerCount returns the number of seated players.
func (r *Room) PlayerCount() int { return len(r.players) }

// Empty reports whether no players remain.
func (r *Room) Empty() bool { return len(r.players) == 0 }

// Started reports whether the game has been launched.
func (r *Room) Started() bool { return r.started }

// HasPlayer reports whether connID is seated in the room.
func (r *Room) HasPlayer(connID string) bool { return r.IndexOf(connID) >= 0 }

// IndexOf returns connID's seat index, or -1 when absent.
func (r *Room) IndexOf(connID string) int {
	return slices.Index(r.players, connID)
}

// Joinable reports whether the room appears in lobby listings.
func (r *Room) Joinable() bool {
	return len(r.players) < r.maxPlayers && !r.started
}

// Summary returns the lobby listing entry for the room.
func (r *Room) Summary() Summary {
	return Summary{RoomID: r.id, PlayerCount: len(r.players), MaxPlayers: r.maxPlayers}
}

// Join seats connID at the end of the player order with ready=false.
// Joining a room connID already sits in is a no-op.
//
// Postcondition: Returns (true, nil) when connID was appended, (false, nil)
// for a re-join, ErrGameStarted for a started room, or ErrRoomFull when at capacity.
// On error the room is unchanged.
func (r *Room) Join(connID string) (bool, error) {
	if r.HasPlayer(connID) {
		return false, nil
	}
	if r.started {
		return false, ErrGameStarted
	}
	if len(r.players) >= r.maxPlayers {
		return false, ErrRoomFull
	}
	r.players = append(r.players, connID)
	r.ready[connID] = false
	return true, nil
}

// Remove unseats connID and forgets its ready flag and miss streak.
// The turn pointer keeps pointing at the same player when possible; if the
// current player left, the turn passes to whoever now occupies that seat.
//
// Postcondition: Returns false when connID was not seated.
func (r *Room) Remove(connID string) bool {
	i := r.IndexOf(connID)
	if i < 0 {
		return false
	}
	r.players = slices.Delete(r.players, i, i+1)
	delete(r.ready, connID)
	delete(r.misses, connID)

	switch {
	case len(r.players) == 0:
		r.turn = 0
	case i < r.turn:
		r.turn--
	case r.turn >= len(r.players):
		r.turn = 0
	}
	return true
}

// ToggleReady flips connID's ready flag and returns the new value.
func (r *Room) ToggleReady(connID string) (bool, error) {
	if !r.HasPlayer(connID) {
		return false, ErrNotInRoom
	}
	r.ready[connID] = !r.ready[connID]
	return r.ready[connID], nil
}

// Ready reports connID's ready flag; absent players are not ready.
func (r *Room) Ready(connID string) bool { return r.ready[connID] }


// Start launches the game and clears every player's miss streak.
//
// Postcondition: Returns ErrGameStarted, leaving state unchanged, when already started.
func (r *Room) Start() error {
	if r.started {
		return ErrGameStarted
	}
	r.started = true
	clear(r.misses)
	for _, p := range r.players {
		r.misses[p] = 0
	}
	return nil
}

// ColorOf returns connID's positional color.
func (r *Room) ColorOf(connID string) (Color, bool) {
	return ColorAt(r.IndexOf(connID))
}

// CurrentPlayer returns the connection whose turn it is.
//
// Postcondition: Returns ("", false) only when the room is empty.
func (r *Room) CurrentPlayer() (string, bool) {
	if len(r.players) == 0 {
		return "", false
	}
	return r.players[r.turn], true
}

// TurnIndex returns the current turn pointer.
func (r *Room) TurnIndex() int { return r.turn }

// AdvanceTurn moves the turn to the next seat, wrapping around, and returns
// the new current color.
//
// Precondition: the room must not be empty.
func (r *Room) AdvanceTurn() Color {
	r.turn = (r.turn + 1) % len(r.players)
	c, _ := ColorAt(r.turn)
	return c
}

// Misses returns connID's consecutive non-six roll count.
func (r *Room) Misses(connID string) int { return r.misses[connID] }

// SetMisses records connID's streak after a roll. Unseated ids are ignored.
func (r *Room) SetMisses(connID string, n int) {
	if !r.HasPlayer(connID) {
		return
	}
	r.misses[connID] = n
}
