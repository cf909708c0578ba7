package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/ludo/internal/game/room"
	"github.com/cory-johannsen/ludo/internal/gameserver"
)

// Match is a stored match outcome.
type Match struct {
	ID         int64
	Result     gameserver.MatchResult
	RecordedAt time.Time
}

var _ gameserver.MatchRecorder = (*MatchRepository)(nil)

// MatchRepository persists finished matches.
type MatchRepository struct {
	db *pgxpool.Pool
}

// NewMatchRepository creates a MatchRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewMatchRepository(db *pgxpool.Pool) *MatchRepository {
	return &MatchRepository{db: db}
}

// RecordMatch inserts one match outcome. It implements gameserver.MatchRecorder.
//
// Precondition: result.RoomID, result.WinnerID, and result.LeaverID must be non-empty.
// Postcondition: A matches row exists for result, or a non-nil error is returned.
func (r *MatchRepository) RecordMatch(ctx context.Context, result gameserver.MatchResult) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO matches
			(room_id, winner_conn_id, winner_color, winner_external_id,
			 leaver_conn_id, leaver_external_id, players, max_players, reason, ended_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		result.RoomID, result.WinnerID, string(result.WinnerColor), result.WinnerExternalID,
		result.LeaverID, result.LeaverExternalID, result.Players, result.MaxPlayers,
		result.Reason, result.EndedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting match for room %s: %w", result.RoomID, err)
	}
	return nil
}

// Recent returns up to limit matches, newest first.
//
// Precondition: limit must be > 0.
// Postcondition: Returns a slice (may be empty) or a non-nil error.
func (r *MatchRepository) Recent(ctx context.Context, limit int) ([]Match, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, room_id, winner_conn_id, winner_color, winner_external_id,
		       leaver_conn_id, leaver_external_id, players, max_players, reason,
		       ended_at, recorded_at
		FROM matches ORDER BY ended_at DESC, id DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing matches: %w", err)
	}

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (Match, error) {
		var (
			m     Match
			color string
		)
		err := row.Scan(
			&m.ID, &m.Result.RoomID, &m.Result.WinnerID, &color, &m.Result.WinnerExternalID,
			&m.Result.LeaverID, &m.Result.LeaverExternalID, &m.Result.Players, &m.Result.MaxPlayers,
			&m.Result.Reason, &m.Result.EndedAt, &m.RecordedAt,
		)
		m.Result.WinnerColor = room.Color(color)
		return m, err
	})
}
