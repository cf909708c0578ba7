package gameserver

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/ludo/internal/game/room"
	"github.com/cory-johannsen/ludo/internal/observability"
	"github.com/cory-johannsen/ludo/internal/protocol"
	"github.com/cory-johannsen/ludo/internal/session"
)

func profileFrom(p protocol.ProfileData) session.Profile {
	return session.NewProfile(p.Name, p.Avatar, p.DBID.String())
}

// handleCreateRoom opens a new lobby room with connID as its only player.
//
// Precondition: c.mu is held.
// Postcondition: On success the creator receives room_created, the room
// receives player_update, and every connection receives room_list_update.
func (c *Coordinator) handleCreateRoom(connID string, data protocol.CreateRoomData) error {
	if current, ok := c.rooms.RoomOf(connID); ok {
		return fmt.Errorf("create room while seated in %s: %w", current.ID(), ErrAlreadyInRoom)
	}

	capacity := room.NormalizeCapacity(data.MaxPlayers.Int(), c.rules.DefaultMaxPlayers)
	r, err := c.rooms.Create(capacity, connID)
	if err != nil {
		return err
	}
	if err := c.seat(connID, r, profileFrom(data.ProfileData)); err != nil {
		c.deleteRoom(r)
		return err
	}

	c.logger.Info("room created", observability.ConnFields(connID, r.ID(),
		zap.Int("max_players", r.MaxPlayers()),
	)...)
	c.sessions.Send(connID, protocol.NewOutbound(protocol.EventRoomCreated, protocol.RoomAck{RoomID: r.ID()}))
	c.broadcastPlayers(r)
	c.refreshDirectory()
	return nil
}

// handleJoinGame seats connID in an existing lobby room. Re-joining a room
// connID already sits in is answered as a fresh join without adding a seat.
//
// Precondition: c.mu is held.
// Postcondition: On failure nothing changes and the error names the cause.
func (c *Coordinator) handleJoinGame(connID string, data protocol.JoinGameData) error {
	r, err := c.lookup(data.RoomID)
	if err != nil {
		return err
	}
	if current, ok := c.rooms.RoomOf(connID); ok && current != r {
		return fmt.Errorf("join %s while seated in %s: %w", r.ID(), current.ID(), ErrAlreadyInRoom)
	}

	added, err := r.Join(connID)
	if err != nil {
		return fmt.Errorf("join %s: %w", r.ID(), err)
	}
	if err := c.seat(connID, r, profileFrom(data.ProfileData)); err != nil {
		if added {
			r.Remove(connID)
		}
		return err
	}

	c.logger.Info("player joined room", observability.ConnFields(connID, r.ID(),
		zap.Bool("rejoin", !added),
		zap.Int("players", r.PlayerCount()),
	)...)
	c.sessions.Send(connID, protocol.NewOutbound(protocol.EventRoomJoined, protocol.RoomAck{RoomID: r.ID()}))
	c.broadcastPlayers(r)
	c.refreshDirectory()
	return nil
}

// seat records connID's profile and adds it to the room's broadcast group.
func (c *Coordinator) seat(connID string, r *room.Room, p session.Profile) error {
	if err := c.sessions.SetProfile(connID, p); err != nil {
		return err
	}
	return c.sessions.JoinGroup(r.ID(), connID)
}

// handleToggleReady flips connID's ready flag. Unknown rooms and
// non-members are ignored.
//
// Precondition: c.mu is held.
func (c *Coordinator) handleToggleReady(connID string, data protocol.RoomRef) error {
	r, err := c.lookup(data.RoomID)
	if err != nil {
		return nil
	}
	ready, err := r.ToggleReady(connID)
	if err != nil {
		return nil
	}
	c.logger.Debug("ready toggled", observability.ConnFields(connID, r.ID(),
		zap.Bool("ready", ready),
	)...)
	c.broadcastPlayers(r)
	return nil
}

// handleStartGame launches the game in the caller's room and sends each
// member its own color with the full roster.
//
// Precondition: c.mu is held.
// Postcondition: Unknown rooms are ignored; non-members get ErrNotInRoom;
// a second start gets ErrGameStarted.
func (c *Coordinator) handleStartGame(connID string, data protocol.RoomRef) error {
	r, err := c.lookup(data.RoomID)
	if err != nil {
		return nil
	}
	if !r.HasPlayer(connID) {
		return fmt.Errorf("start %s: %w", r.ID(), room.ErrNotInRoom)
	}
	if err := r.Start(); err != nil {
		return fmt.Errorf("start %s: %w", r.ID(), err)
	}

	roster := c.roster(r)
	for _, member := range c.sessions.GroupMembers(r.ID()) {
		color, ok := r.ColorOf(member)
		if !ok {
			continue
		}
		c.sessions.Send(member, protocol.NewOutbound(protocol.EventGameLaunch, protocol.GameLaunch{
			YourColor:   string(color),
			RoomID:      r.ID(),
			PlayerCount: r.MaxPlayers(),
			PlayersData: roster,
		}))
	}

	c.logger.Info("game started", observability.ConnFields(connID, r.ID(),
		zap.Int("players", r.PlayerCount()),
	)...)
	c.refreshDirectory()
	return nil
}

// roster lists every seat in positional order for game_launch.
func (c *Coordinator) roster(r *room.Room) []protocol.SeatInfo {
	players := r.Players()
	out := make([]protocol.SeatInfo, 0, len(players))
	for i, pid := range players {
		color, _ := room.ColorAt(i)
		p, _ := c.sessions.Profile(pid)
		out = append(out, protocol.SeatInfo{
			Color:  string(color),
			Name:   p.Name,
			Avatar: p.Avatar,
			DBID:   p.ExternalID,
		})
	}
	return out
}

// broadcastPlayers sends the room's full player list to its broadcast group.
func (c *Coordinator) broadcastPlayers(r *room.Room) {
	players := r.Players()
	states := make([]protocol.PlayerState, 0, len(players))
	for i, pid := range players {
		color, _ := room.ColorAt(i)
		p, _ := c.sessions.Profile(pid)
		states = append(states, protocol.PlayerState{
			SocketID: pid,
			Color:    string(color),
			IsReady:  r.Ready(pid),
			Name:     p.Name,
			Avatar:   p.Avatar,
			DBID:     p.ExternalID,
		})
	}
	c.sessions.Broadcast(r.ID(), protocol.NewOutbound(protocol.EventPlayerUpdate, protocol.PlayerUpdate{Players: states}))
}
