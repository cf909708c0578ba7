package protocol

// ProfileData is the profile a client supplies when creating or joining a room.
type ProfileData struct {
	Name   string     `json:"name"`
	Avatar string     `json:"avatar"`
	DBID   FlexString `json:"dbId"`
}

// CreateRoomData is the payload of create_room.
type CreateRoomData struct {
	ProfileData
	MaxPlayers FlexInt `json:"maxPlayers"`
}

// JoinGameData is the payload of join_game.
type JoinGameData struct {
	ProfileData
	RoomID FlexString `json:"roomId"`
}

// RoomRef is the payload of every event that only names a room
// (toggle_ready, start_game_command, roll_dice, pass_turn, leave_game).
type RoomRef struct {
	RoomID FlexString `json:"roomId"`
}

// ChatData is the payload of send_chat_message.
type ChatData struct {
	RoomID     FlexString `json:"roomId"`
	SenderName string     `json:"senderName"`
	Text       string     `json:"text"`
}

// FriendRequestData is the payload of send_friend_request_notification.
type FriendRequestData struct {
	TargetID FlexString `json:"targetId"`
	FromName string     `json:"fromName"`
}

// RoomListEntry is one element of room_list_update.
type RoomListEntry struct {
	RoomID      string `json:"roomId"`
	PlayerCount int    `json:"playerCount"`
	MaxPlayers  int    `json:"maxPlayers"`
}

// RoomAck is the payload of room_created and room_joined.
type RoomAck struct {
	RoomID string `json:"roomId"`
}

// ErrorData is the payload of error.
type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// PlayerState is one seat in player_update.
type PlayerState struct {
	SocketID string `json:"socketId"`
	Color    string `json:"color"`
	IsReady  bool   `json:"isReady"`
	Name     string `json:"name"`
	Avatar   string `json:"avatar"`
	DBID     string `json:"dbId"`
}

// PlayerUpdate is the payload of player_update.
type PlayerUpdate struct {
	Players []PlayerState `json:"players"`
}

// SeatInfo is one seat in the game_launch roster.
type SeatInfo struct {
	Color  string `json:"color"`
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
	DBID   string `json:"dbId"`
}

// GameLaunch is the per-recipient payload of game_launch.
type GameLaunch struct {
	YourColor   string     `json:"yourColor"`
	RoomID      string     `json:"roomId"`
	PlayerCount int        `json:"playerCount"`
	PlayersData []SeatInfo `json:"playersData"`
}

// ChatMessage is the payload of receive_chat_message.
type ChatMessage struct {
	SenderID   string `json:"senderId"`
	SenderName string `json:"senderName"`
	Text       string `json:"text"`
}

// FriendRequest is the payload of receive_friend_request.
type FriendRequest struct {
	FromName string `json:"fromName"`
}

// DiceRolled is the payload of dice_rolled.
type DiceRolled struct {
	Value int `json:"value"`
}

// TurnChanged is the payload of turn_changed.
type TurnChanged struct {
	CurrentTurn string `json:"currentTurn"`
}

// GameOver is the payload of game_over_by_disconnect.
type GameOver struct {
	WinnerID    string `json:"winnerId"`
	WinnerColor string `json:"winnerColor"`
}
