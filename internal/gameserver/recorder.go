package gameserver

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/ludo/internal/game/room"
)

// ReasonDisconnect marks a match that ended because a player left mid-game.
const ReasonDisconnect = "disconnect"

// MatchResult describes a finished match.
type MatchResult struct {
	RoomID           string
	WinnerID         string
	WinnerColor      room.Color
	WinnerExternalID string
	LeaverID         string
	LeaverExternalID string
	// Players is the number of seated players when the match ended, the leaver included.
	Players    int
	MaxPlayers int
	Reason     string
	EndedAt    time.Time
}

// MatchRecorder persists finished match outcomes.
//
// Precondition: result.RoomID and result.WinnerID must be non-empty.
// Postcondition: Returns nil on success or a non-nil error on failure.
type MatchRecorder interface {
	RecordMatch(ctx context.Context, result MatchResult) error
}

// record hands result to the recorder on a separate goroutine so the
// coordinator lock is never held across I/O. Failures are logged only.
func (c *Coordinator) record(result MatchResult) {
	if c.recorder == nil {
		return
	}
	c.pending.Add(1)
	go func() {
		defer c.pending.Done()
		ctx, cancel := context.WithTimeout(context.Background(), c.recordTimeout)
		defer cancel()
		if err := c.recorder.RecordMatch(ctx, result); err != nil {
			c.logger.Warn("recording match result",
				zap.String("room_id", result.RoomID),
				zap.String("winner_id", result.WinnerID),
				zap.Error(err),
			)
			return
		}
		c.logger.Info("match result recorded",
			zap.String("room_id", result.RoomID),
			zap.String("winner_color", string(result.WinnerColor)),
		)
	}()
}
