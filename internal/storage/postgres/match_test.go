package postgres_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/ludo/internal/game/room"
	"github.com/cory-johannsen/ludo/internal/gameserver"
	"github.com/cory-johannsen/ludo/internal/storage/postgres"
	"github.com/cory-johannsen/ludo/internal/testutil"
)

func sampleResult(roomID string, endedAt time.Time) gameserver.MatchResult {
	return gameserver.MatchResult{
		RoomID:           roomID,
		WinnerID:         "conn-winner",
		WinnerColor:      room.Green,
		WinnerExternalID: "db-1",
		LeaverID:         "conn-leaver",
		Players:          3,
		MaxPlayers:       4,
		Reason:           gameserver.ReasonDisconnect,
		EndedAt:          endedAt,
	}
}

func TestMatchRepository_RecordAndRecent(t *testing.T) {
	pool := testutil.NewMigratedPool(t)
	repo := postgres.NewMatchRepository(pool.DB())
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, repo.RecordMatch(ctx, sampleResult("100001", base)))
	require.NoError(t, repo.RecordMatch(ctx, sampleResult("100002", base.Add(time.Minute))))

	matches, err := repo.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "100002", matches[0].Result.RoomID)
	assert.Equal(t, room.Green, matches[0].Result.WinnerColor)
	assert.Equal(t, "db-1", matches[0].Result.WinnerExternalID)
	assert.Equal(t, "", matches[0].Result.LeaverExternalID)
	assert.Equal(t, 3, matches[0].Result.Players)
	assert.True(t, matches[0].Result.EndedAt.Equal(base.Add(time.Minute)))
	assert.False(t, matches[0].RecordedAt.IsZero())

	matches, err = repo.Recent(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, matches, 1)
}

func TestMatchRepository_RejectsInvalidSeatCount(t *testing.T) {
	pool := testutil.NewMigratedPool(t)
	repo := postgres.NewMatchRepository(pool.DB())

	bad := sampleResult("100003", time.Now())
	bad.Players = 9
	assert.Error(t, repo.RecordMatch(context.Background(), bad))
}

func TestPoolHealth(t *testing.T) {
	pool := testutil.NewMigratedPool(t)
	assert.NoError(t, pool.Health(context.Background(), time.Second))
}

// Property: every recorded result reads back unchanged.
func TestPropertyMatchRoundTrip(t *testing.T) {
	pool := testutil.NewMigratedPool(t)
	repo := postgres.NewMatchRepository(pool.DB())
	ctx := context.Background()
	n := 0

	rapid.Check(t, func(rt *rapid.T) {
		n++
		players := rapid.IntRange(2, 4).Draw(rt, "players")
		want := gameserver.MatchResult{
			RoomID:           fmt.Sprintf("%06d", rapid.IntRange(100000, 999999).Draw(rt, "room")),
			WinnerID:         rapid.StringMatching(`[a-f0-9]{8}`).Draw(rt, "winner"),
			WinnerColor:      rapid.SampledFrom(room.Colors[:]).Draw(rt, "color"),
			WinnerExternalID: rapid.StringMatching(`[a-z0-9]{0,12}`).Draw(rt, "winner_ext"),
			LeaverID:         rapid.StringMatching(`[a-f0-9]{8}`).Draw(rt, "leaver"),
			Players:          players,
			MaxPlayers:       rapid.IntRange(players, 4).Draw(rt, "max"),
			Reason:           gameserver.ReasonDisconnect,
			// Far-future timestamps keep the latest row first.
			EndedAt: time.Date(2100, 1, 1, 0, 0, n, 0, time.UTC),
		}
		if err := repo.RecordMatch(ctx, want); err != nil {
			rt.Fatalf("record: %v", err)
		}
		got, err := repo.Recent(ctx, 1)
		if err != nil || len(got) != 1 {
			rt.Fatalf("recent: %v (%d rows)", err, len(got))
		}
		got[0].Result.EndedAt = got[0].Result.EndedAt.UTC()
		if got[0].Result != want {
			rt.Fatalf("round trip mismatch:\n got %+v\nwant %+v", got[0].Result, want)
		}
	})
}
