package leaderboard

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/sableworks/guildgate/internal/clock"
	"github.com/sableworks/guildgate/internal/leaderboard/domain"
	"github.com/sableworks/guildgate/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLeaderboard(t *testing.T) (domain.Service, *clock.FakeClock) {
	t.Helper()

	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&domain.Entry{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	clk := clock.NewFakeClock(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
	return NewService(conn, node, clk), clk
}

func TestRecordAndTop(t *testing.T) {
	svc, _ := newTestLeaderboard(t)
	ctx := context.Background()

	for _, req := range []domain.RecordRequest{
		{UserID: 1, Username: "nova", Score: 10},
		{UserID: 1, Username: "nova", Score: 5},
		{UserID: 2, Username: "vega", Score: 12},
	} {
		entry, err := svc.Record(ctx, req)
		require.NoError(t, err)
		assert.NotZero(t, entry.ID)
	}

	standings, err := svc.Top(ctx, 10)
	require.NoError(t, err)
	require.Len(t, standings, 2)

	// Scores aggregate per user, highest total first.
	assert.Equal(t, int64(1), standings[0].UserID)
	assert.Equal(t, int64(15), standings[0].Total)
	assert.Equal(t, int64(2), standings[1].UserID)
	assert.Equal(t, int64(12), standings[1].Total)
}

func TestRecordRequiresUser(t *testing.T) {
	svc, _ := newTestLeaderboard(t)

	_, err := svc.Record(context.Background(), domain.RecordRequest{Score: 10})
	assert.Error(t, err)
}

func TestTopClampsLimit(t *testing.T) {
	svc, _ := newTestLeaderboard(t)
	ctx := context.Background()

	for i := int64(1); i <= 3; i++ {
		_, err := svc.Record(ctx, domain.RecordRequest{UserID: i, Username: "user", Score: i})
		require.NoError(t, err)
	}

	standings, err := svc.Top(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, standings, 2)

	standings, err = svc.Top(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, standings, 3)
}

func TestDeleteByUser(t *testing.T) {
	svc, _ := newTestLeaderboard(t)
	ctx := context.Background()

	_, err := svc.Record(ctx, domain.RecordRequest{UserID: 1, Username: "nova", Score: 10})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteByUser(ctx, 1))

	standings, err := svc.Top(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, standings)

	assert.ErrorIs(t, svc.DeleteByUser(ctx, 1), domain.ErrEntryNotFound)
}

func TestDeleteOlderThan(t *testing.T) {
	svc, clk := newTestLeaderboard(t)
	ctx := context.Background()

	_, err := svc.Record(ctx, domain.RecordRequest{UserID: 1, Username: "nova", Score: 10})
	require.NoError(t, err)

	clk.Advance(48 * time.Hour)
	_, err = svc.Record(ctx, domain.RecordRequest{UserID: 2, Username: "vega", Score: 12})
	require.NoError(t, err)

	pruned, err := svc.DeleteOlderThan(ctx, clk.Now().Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), pruned)

	standings, err := svc.Top(ctx, 10)
	require.NoError(t, err)
	require.Len(t, standings, 1)
	assert.Equal(t, int64(2), standings[0].UserID)
}
