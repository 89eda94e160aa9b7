package settings

import (
	"context"
	"testing"
	"time"

	"github.com/sableworks/guildgate/internal/clock"
	"github.com/sableworks/guildgate/internal/settings/domain"
	"github.com/sableworks/guildgate/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSettings(t *testing.T) domain.Service {
	t.Helper()

	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&domain.Setting{}))

	clk := clock.NewFakeClock(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
	return NewService(conn, clk)
}

func TestSetAndGet(t *testing.T) {
	svc := newTestSettings(t)
	ctx := context.Background()

	require.NoError(t, svc.Set(ctx, domain.KeyWelcomeMessage, "Welcome aboard"))

	value, err := svc.Get(ctx, domain.KeyWelcomeMessage)
	require.NoError(t, err)
	assert.Equal(t, "Welcome aboard", value)
}

func TestGetUnknownKey(t *testing.T) {
	svc := newTestSettings(t)

	_, err := svc.Get(context.Background(), "no_such_key")
	assert.ErrorIs(t, err, ErrSettingNotFound)
}

func TestSetUpserts(t *testing.T) {
	svc := newTestSettings(t)
	ctx := context.Background()

	require.NoError(t, svc.Set(ctx, domain.KeyRoleLabel, "Verified"))
	require.NoError(t, svc.Set(ctx, domain.KeyRoleLabel, "Member"))

	value, err := svc.Get(ctx, domain.KeyRoleLabel)
	require.NoError(t, err)
	assert.Equal(t, "Member", value)

	all, err := svc.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestSetRejectsEmptyKey(t *testing.T) {
	svc := newTestSettings(t)

	assert.Error(t, svc.Set(context.Background(), "  ", "value"))
}

func TestGetInt(t *testing.T) {
	svc := newTestSettings(t)
	ctx := context.Background()

	assert.Equal(t, 90, svc.GetInt(ctx, domain.KeyRetentionDays, 90))

	require.NoError(t, svc.Set(ctx, domain.KeyRetentionDays, "30"))
	assert.Equal(t, 30, svc.GetInt(ctx, domain.KeyRetentionDays, 90))

	require.NoError(t, svc.Set(ctx, domain.KeyRetentionDays, "not-a-number"))
	assert.Equal(t, 90, svc.GetInt(ctx, domain.KeyRetentionDays, 90))
}

func TestAllOrdersByKey(t *testing.T) {
	svc := newTestSettings(t)
	ctx := context.Background()

	require.NoError(t, svc.Set(ctx, "zeta", "1"))
	require.NoError(t, svc.Set(ctx, "alpha", "2"))

	all, err := svc.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "alpha", all[0].Key)
	assert.Equal(t, "zeta", all[1].Key)
}
