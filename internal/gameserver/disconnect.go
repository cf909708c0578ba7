package gameserver

import (
	"go.uber.org/zap"

	"github.com/cory-johannsen/ludo/internal/game/room"
	"github.com/cory-johannsen/ludo/internal/observability"
	"github.com/cory-johannsen/ludo/internal/protocol"
)

// reconcile removes connID from every room it occupies. It serves both
// leave_game and transport disconnects, and is idempotent.
//
//   - An emptied room is deleted.
//   - A started room ends: the first remaining player wins and the room is deleted.
//   - A lobby room gets a fresh player_update.
//
// One room_list_update follows if any room changed.
//
// Precondition: c.mu is held.
func (c *Coordinator) reconcile(connID string) {
	leaver, _ := c.sessions.Profile(connID)
	c.sessions.ClearProfile(connID)

	changed := false
	for _, r := range c.rooms.RoomsOf(connID) {
		before := r.Players()
		r.Remove(connID)
		c.sessions.LeaveGroup(r.ID(), connID)
		changed = true

		c.logger.Info("player left room", observability.ConnFields(connID, r.ID(),
			zap.Bool("started", r.Started()),
			zap.Int("remaining", r.PlayerCount()),
		)...)

		switch {
		case r.Empty():
			c.deleteRoom(r)
		case r.Started():
			c.endByDisconnect(r, before, connID, leaver.ExternalID)
		default:
			c.broadcastPlayers(r)
		}
	}

	if changed {
		c.refreshDirectory()
	}
}

// endByDisconnect announces the remaining first player as winner, records
// the result, and deletes the room. before is the seat order prior to the
// departure so the winner keeps the color it played with.
//
// Precondition: r is started and not empty.
func (c *Coordinator) endByDisconnect(r *room.Room, before []string, leaverID, leaverExternalID string) {
	winnerID := r.Players()[0]
	winnerColor := room.Color("")
	for i, pid := range before {
		if pid == winnerID {
			winnerColor, _ = room.ColorAt(i)
			break
		}
	}

	c.sessions.Broadcast(r.ID(), protocol.NewOutbound(protocol.EventGameOverByDisconnect, protocol.GameOver{
		WinnerID:    winnerID,
		WinnerColor: string(winnerColor),
	}))
	c.logger.Info("game over by disconnect",
		zap.String("room_id", r.ID()),
		zap.String("winner_id", winnerID),
		zap.String("winner_color", string(winnerColor)),
		zap.String("leaver_id", leaverID),
	)

	winner, _ := c.sessions.Profile(winnerID)
	c.record(MatchResult{
		RoomID:           r.ID(),
		WinnerID:         winnerID,
		WinnerColor:      winnerColor,
		WinnerExternalID: winner.ExternalID,
		LeaverID:         leaverID,
		LeaverExternalID: leaverExternalID,
		Players:          len(before),
		MaxPlayers:       r.MaxPlayers(),
		Reason:           ReasonDisconnect,
		EndedAt:          c.now().UTC(),
	})
	c.deleteRoom(r)
}
