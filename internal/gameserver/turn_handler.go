package gameserver

import (
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/ludo/internal/game/room"
	"github.com/cory-johannsen/ludo/internal/observability"
	"github.com/cory-johannsen/ludo/internal/protocol"
)

// checkTurn verifies that connID may act on its turn in r.
//
// Postcondition: Returns ErrNotInRoom for non-members, and ErrNotYourTurn
// when turn ownership is enforced and connID is not the current player.
func (c *Coordinator) checkTurn(connID string, r *room.Room) error {
	if !r.HasPlayer(connID) {
		return fmt.Errorf("room %s: %w", r.ID(), room.ErrNotInRoom)
	}
	if !c.rules.EnforceTurnOwner {
		return nil
	}
	if current, _ := r.CurrentPlayer(); current != connID {
		return fmt.Errorf("room %s: %w", r.ID(), ErrNotYourTurn)
	}
	return nil
}

// handleRollDice throws the die for connID, applying the pity rule to its
// miss streak, and broadcasts the value to the room.
//
// Precondition: c.mu is held.
func (c *Coordinator) handleRollDice(connID string, data protocol.RoomRef) error {
	r, err := c.lookup(data.RoomID)
	if err != nil {
		return nil
	}
	if err := c.checkTurn(connID, r); err != nil {
		return err
	}

	out := c.roller.Roll(r.Misses(connID), observability.ConnFields(connID, r.ID())...)
	r.SetMisses(connID, out.Misses)
	c.sessions.Broadcast(r.ID(), protocol.NewOutbound(protocol.EventDiceRolled, protocol.DiceRolled{Value: out.Value}))
	return nil
}

// handlePassTurn hands the turn to the next seat and broadcasts its color.
//
// Precondition: c.mu is held.
func (c *Coordinator) handlePassTurn(connID string, data protocol.RoomRef) error {
	r, err := c.lookup(data.RoomID)
	if err != nil {
		return nil
	}
	if err := c.checkTurn(connID, r); err != nil {
		return err
	}

	color := r.AdvanceTurn()
	c.logger.Debug("turn passed", observability.ConnFields(connID, r.ID(),
		zap.String("current_turn", string(color)),
	)...)
	c.sessions.Broadcast(r.ID(), protocol.NewOutbound(protocol.EventTurnChanged, protocol.TurnChanged{CurrentTurn: string(color)}))
	return nil
}

// handleMovePawn relays the raw move payload to the sender's room
// unchanged. Move legality is left to the clients. Moves for unknown rooms
// or from non-members are dropped.
//
// Precondition: c.mu is held.
func (c *Coordinator) handleMovePawn(connID string, data protocol.RoomRef, raw json.RawMessage) error {
	r, err := c.lookup(data.RoomID)
	if err != nil || !r.HasPlayer(connID) {
		c.logger.Debug("dropping pawn move", observability.ConnFields(connID, data.RoomID.String())...)
		return nil
	}
	c.sessions.Broadcast(r.ID(), protocol.NewOutbound(protocol.EventPawnMoved, raw))
	return nil
}
