package gameserver

import (
	"errors"

	"github.com/cory-johannsen/ludo/internal/game/room"
	"github.com/cory-johannsen/ludo/internal/protocol"
)

var (
	// ErrNotYourTurn is returned when a player acts outside their turn.
	ErrNotYourTurn = errors.New("not your turn")
	// ErrAlreadyInRoom is returned when a player seated in one room tries to
	// create or join another.
	ErrAlreadyInRoom = errors.New("already in another room")
)

// Error codes carried by outbound error events.
const (
	CodeRoomNotFound  = "room_not_found"
	CodeRoomFull      = "room_full"
	CodeGameStarted   = "game_started"
	CodeNotInRoom     = "not_in_room"
	CodeNotYourTurn   = "not_your_turn"
	CodeAlreadyInRoom = "already_in_room"
	CodeInternal      = "internal"
)

var errorTable = []struct {
	target  error
	code    string
	message string
}{
	{room.ErrRoomNotFound, CodeRoomNotFound, "room not found"},
	{room.ErrRoomFull, CodeRoomFull, "room is full"},
	{room.ErrGameStarted, CodeGameStarted, "game already started"},
	{room.ErrNotInRoom, CodeNotInRoom, "not in this room"},
	{ErrNotYourTurn, CodeNotYourTurn, "not your turn"},
	{ErrAlreadyInRoom, CodeAlreadyInRoom, "already in another room"},
}

// errorEvent maps a handler error to the outbound error event shown to the client.
// Unrecognised errors become CodeInternal so internal details never leak.
//
// Precondition: err must be non-nil.
func errorEvent(err error) protocol.Outbound {
	for _, e := range errorTable {
		if errors.Is(err, e.target) {
			return protocol.NewOutbound(protocol.EventError, protocol.ErrorData{Code: e.code, Message: e.message})
		}
	}
	return protocol.NewOutbound(protocol.EventError, protocol.ErrorData{Code: CodeInternal, Message: "internal error"})
}
