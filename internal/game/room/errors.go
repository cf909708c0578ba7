package room

import "errors"

var (
	// ErrRoomNotFound is returned when a room id has no live room.
	ErrRoomNotFound = errors.New("room not found")
	// ErrRoomFull is returned when a non-member joins a room at capacity.
	ErrRoomFull = errors.New("room is full")
	// ErrGameStarted is returned when a lobby-only action targets a started room.
	ErrGameStarted = errors.New("game already started")
	// ErrNotInRoom is returned when a connection acts on a room it is not part of.
	ErrNotInRoom = errors.New("not in room")
	// ErrIDSpaceExhausted is returned when no free room id was found.
	ErrIDSpaceExhausted = errors.New("no free room id")
)
