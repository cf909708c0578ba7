// Package gameserver coordinates rooms, turns, and dice for connected
// players. Every inbound event is handled synchronously under one lock.
package gameserver

import (
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/ludo/internal/game/dice"
	"github.com/cory-johannsen/ludo/internal/game/room"
	"github.com/cory-johannsen/ludo/internal/observability"
	"github.com/cory-johannsen/ludo/internal/protocol"
	"github.com/cory-johannsen/ludo/internal/session"
)

// defaultRecordTimeout bounds a single match ledger write.
const defaultRecordTimeout = 5 * time.Second

// Rules are the tunable room and turn rules.
type Rules struct {
	// DefaultMaxPlayers is the capacity used when create_room omits one or
	// sends a value outside 2..4.
	DefaultMaxPlayers int
	// EnforceTurnOwner rejects roll_dice and pass_turn from anyone but the current player.
	EnforceTurnOwner bool
}

// DefaultRules returns four seats with turn ownership enforced.
func DefaultRules() Rules {
	return Rules{DefaultMaxPlayers: room.MaxSeats, EnforceTurnOwner: true}
}

// Coordinator owns the room directory and routes inbound events to handlers.
type Coordinator struct {
	mu       sync.Mutex
	rooms    *room.Directory
	sessions *session.Manager
	roller   *dice.Roller
	rules    Rules
	logger   *zap.Logger

	recorder      MatchRecorder
	recordTimeout time.Duration
	pending       sync.WaitGroup
	now           func() time.Time
}

// NewCoordinator creates a Coordinator with the given dependencies.
//
// Precondition: rooms, sessions, roller, and logger must be non-nil.
// recorder may be nil (match results are not persisted).
// Postcondition: Returns a Coordinator with no live rooms.
func NewCoordinator(
	rooms *room.Directory,
	sessions *session.Manager,
	roller *dice.Roller,
	rules Rules,
	recorder MatchRecorder,
	logger *zap.Logger,
) *Coordinator {
	rules.DefaultMaxPlayers = room.NormalizeCapacity(rules.DefaultMaxPlayers, room.MaxSeats)
	return &Coordinator{
		rooms:         rooms,
		sessions:      sessions,
		roller:        roller,
		rules:         rules,
		recorder:      recorder,
		recordTimeout: defaultRecordTimeout,
		logger:        logger,
		now:           time.Now,
	}
}

// Connect registers a new connection and sends it the current room listing.
// Registration and the listing happen under the coordinator lock, so the
// listing is the first event the connection receives.
//
// Precondition: connID must be non-empty and never used before.
// Postcondition: Returns the registered session, whose Entity carries every
// event addressed to the connection.
func (c *Coordinator) Connect(connID string) (*session.Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	sess, err := c.sessions.Connect(connID)
	if err != nil {
		return nil, fmt.Errorf("registering connection: %w", err)
	}
	c.sessions.Send(connID, c.roomList())
	c.logger.Info("player connected", observability.ConnFields(connID, "")...)
	return sess, nil
}

// Disconnect reconciles a departed connection and unregisters it.
// Calling it for an unknown connection is a no-op.
//
// Postcondition: connID holds no seat, profile, or group membership, and its outbox is closed.
func (c *Coordinator) Disconnect(connID string) {
	c.mu.Lock()
	c.reconcile(connID)
	c.mu.Unlock()

	if err := c.sessions.Disconnect(connID); err != nil {
		c.logger.Debug("unregistering connection", observability.ConnFields(connID, "", zap.Error(err))...)
		return
	}
	c.logger.Info("player disconnected", observability.ConnFields(connID, "")...)
}

// Dispatch handles one inbound event from connID. Handler errors are
// reported to the sender as error events. Unknown events and undecodable
// payloads are logged and ignored.
func (c *Coordinator) Dispatch(connID string, in protocol.Inbound) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("panic handling event", observability.ConnFields(connID, "",
				zap.String("event", in.Event),
				zap.Any("panic", r),
				zap.ByteString("stack", debug.Stack()),
			)...)
			c.sessions.Send(connID, errorEvent(fmt.Errorf("panic: %v", r)))
		}
	}()

	c.mu.Lock()
	defer c.mu.Unlock()

	err := c.dispatch(connID, in)
	if err == nil {
		return
	}
	if isDecodeError(err) {
		c.logger.Warn("ignoring undecodable event", observability.ConnFields(connID, "",
			zap.String("event", in.Event),
			zap.Error(err),
		)...)
		return
	}
	c.logger.Debug("event rejected", observability.ConnFields(connID, "",
		zap.String("event", in.Event),
		zap.Error(err),
	)...)
	c.sessions.Send(connID, errorEvent(err))
}

// Wait blocks until every in-flight match recording has finished.
func (c *Coordinator) Wait() {
	c.pending.Wait()
}

// dispatch routes an inbound event to the appropriate handler.
//
// Precondition: c.mu is held.
func (c *Coordinator) dispatch(connID string, in protocol.Inbound) error {
	switch in.Event {
	case protocol.EventGetRoomList:
		c.sessions.Send(connID, c.roomList())
		return nil
	case protocol.EventCreateRoom:
		var data protocol.CreateRoomData
		if err := decode(in, &data); err != nil {
			return err
		}
		return c.handleCreateRoom(connID, data)
	case protocol.EventJoinGame:
		var data protocol.JoinGameData
		if err := decode(in, &data); err != nil {
			return err
		}
		return c.handleJoinGame(connID, data)
	case protocol.EventToggleReady:
		var data protocol.RoomRef
		if err := decode(in, &data); err != nil {
			return err
		}
		return c.handleToggleReady(connID, data)
	case protocol.EventStartGame:
		var data protocol.RoomRef
		if err := decode(in, &data); err != nil {
			return err
		}
		return c.handleStartGame(connID, data)
	case protocol.EventSendChat:
		var data protocol.ChatData
		if err := decode(in, &data); err != nil {
			return err
		}
		return c.handleChat(connID, data)
	case protocol.EventFriendRequest:
		var data protocol.FriendRequestData
		if err := decode(in, &data); err != nil {
			return err
		}
		return c.handleFriendRequest(connID, data)
	case protocol.EventRollDice:
		var data protocol.RoomRef
		if err := decode(in, &data); err != nil {
			return err
		}
		return c.handleRollDice(connID, data)
	case protocol.EventMovePawn:
		var data protocol.RoomRef
		if err := decode(in, &data); err != nil {
			return err
		}
		return c.handleMovePawn(connID, data, in.Data)
	case protocol.EventPassTurn:
		var data protocol.RoomRef
		if err := decode(in, &data); err != nil {
			return err
		}
		return c.handlePassTurn(connID, data)
	case protocol.EventLeaveGame:
		c.reconcile(connID)
		return nil
	default:
		c.logger.Warn("ignoring unknown event", observability.ConnFields(connID, "", zap.String("event", in.Event))...)
		return nil
	}
}

// decodeError marks a payload that could not be decoded.
type decodeError struct {
	event string
	err   error
}

func (e *decodeError) Error() string {
	return fmt.Sprintf("decoding %s payload: %v", e.event, e.err)
}

func (e *decodeError) Unwrap() error { return e.err }

func decode(in protocol.Inbound, v any) error {
	if err := in.Decode(v); err != nil {
		return &decodeError{event: in.Event, err: err}
	}
	return nil
}

func isDecodeError(err error) bool {
	var de *decodeError
	return errors.As(err, &de)
}

// roomList builds the room_list_update event from the directory.
func (c *Coordinator) roomList() protocol.Outbound {
	summaries := c.rooms.ListJoinable()
	entries := make([]protocol.RoomListEntry, 0, len(summaries))
	for _, s := range summaries {
		entries = append(entries, protocol.RoomListEntry{
			RoomID:      s.RoomID,
			PlayerCount: s.PlayerCount,
			MaxPlayers:  s.MaxPlayers,
		})
	}
	return protocol.NewOutbound(protocol.EventRoomListUpdate, entries)
}

// refreshDirectory broadcasts the room listing to every connection.
func (c *Coordinator) refreshDirectory() {
	c.sessions.BroadcastAll(c.roomList())
}

// lookup resolves a client-supplied room id.
func (c *Coordinator) lookup(ref protocol.FlexString) (*room.Room, error) {
	return c.rooms.Lookup(ref.String())
}

// deleteRoom removes a room and its broadcast group.
func (c *Coordinator) deleteRoom(r *room.Room) {
	c.rooms.Delete(r.ID())
	c.sessions.DropGroup(r.ID())
	c.logger.Info("room deleted", zap.String("room_id", r.ID()))
}
