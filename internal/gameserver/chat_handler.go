package gameserver

import (
	"go.uber.org/zap"

	"github.com/cory-johannsen/ludo/internal/observability"
	"github.com/cory-johannsen/ludo/internal/protocol"
)

// handleChat relays a chat line to the sender's room. Lines for unknown
// rooms or from non-members are dropped.
//
// Precondition: c.mu is held.
func (c *Coordinator) handleChat(connID string, data protocol.ChatData) error {
	r, err := c.lookup(data.RoomID)
	if err != nil || !r.HasPlayer(connID) {
		c.logger.Debug("dropping chat message", observability.ConnFields(connID, data.RoomID.String())...)
		return nil
	}

	name := data.SenderName
	if name == "" {
		p, _ := c.sessions.Profile(connID)
		name = p.Name
	}
	c.sessions.Broadcast(r.ID(), protocol.NewOutbound(protocol.EventReceiveChat, protocol.ChatMessage{
		SenderID:   connID,
		SenderName: name,
		Text:       data.Text,
	}))
	return nil
}

// handleFriendRequest notifies a live connection of a friend request.
// The target is matched by connection id first and then by external profile id.
// Requests for targets that are not online are dropped.
//
// Precondition: c.mu is held.
func (c *Coordinator) handleFriendRequest(connID string, data protocol.FriendRequestData) error {
	target, ok := c.resolveTarget(data.TargetID.String())
	if !ok {
		c.logger.Debug("dropping friend request", observability.ConnFields(connID, "", zap.String("target_id", data.TargetID.String()))...)
		return nil
	}

	from := data.FromName
	if from == "" {
		p, _ := c.sessions.Profile(connID)
		from = p.Name
	}
	c.sessions.Send(target, protocol.NewOutbound(protocol.EventReceiveFriendRequest, protocol.FriendRequest{FromName: from}))
	return nil
}

func (c *Coordinator) resolveTarget(id string) (string, bool) {
	if id == "" {
		return "", false
	}
	if _, ok := c.sessions.Get(id); ok {
		return id, true
	}
	return c.sessions.FindByExternalID(id)
}
