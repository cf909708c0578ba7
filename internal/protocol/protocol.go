// Package protocol defines the JSON event envelope exchanged with game
// clients and the payload of every inbound and outbound event.
package protocol

import "encoding/json"

// Inbound event names (client to server).
const (
	EventGetRoomList   = "get_room_list"
	EventCreateRoom    = "create_room"
	EventJoinGame      = "join_game"
	EventToggleReady   = "toggle_ready"
	EventStartGame     = "start_game_command"
	EventSendChat      = "send_chat_message"
	EventFriendRequest = "send_friend_request_notification"
	EventRollDice      = "roll_dice"
	EventMovePawn      = "move_pawn"
	EventPassTurn      = "pass_turn"
	EventLeaveGame     = "leave_game"
)

// Outbound event names (server to client).
const (
	EventRoomListUpdate       = "room_list_update"
	EventRoomCreated          = "room_created"
	EventRoomJoined           = "room_joined"
	EventError                = "error"
	EventPlayerUpdate         = "player_update"
	EventGameLaunch           = "game_launch"
	EventReceiveChat          = "receive_chat_message"
	EventReceiveFriendRequest = "receive_friend_request"
	EventDiceRolled           = "dice_rolled"
	EventPawnMoved            = "pawn_moved"
	EventTurnChanged          = "turn_changed"
	EventGameOverByDisconnect = "game_over_by_disconnect"
)

// Inbound is the envelope for messages coming from the client.
type Inbound struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Outbound is the envelope for messages sent to the client.
type Outbound struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

// NewOutbound builds an outbound envelope.
func NewOutbound(event string, data any) Outbound {
	return Outbound{Event: event, Data: data}
}

// Decode unmarshals the inbound payload into v. A missing or null payload
// leaves v at its zero value.
func (in Inbound) Decode(v any) error {
	if len(in.Data) == 0 || string(in.Data) == "null" {
		return nil
	}
	return json.Unmarshal(in.Data, v)
}
