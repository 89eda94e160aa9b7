package bot

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sableworks/guildgate/internal/clock"
	"github.com/sableworks/guildgate/internal/config"
	"github.com/sableworks/guildgate/internal/discord"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeAPI struct {
	botIdentity    func(ctx context.Context) (discord.Identity, error)
	getGuild       func(ctx context.Context, guildID string) (discord.Guild, error)
	getGuildRoles  func(ctx context.Context, guildID string) ([]discord.Role, error)
	getGuildMember func(ctx context.Context, guildID string, userID int64) (discord.Member, error)
	addMemberRole  func(ctx context.Context, guildID string, userID int64, roleID, reason string) error
}

func (f *fakeAPI) BotIdentity(ctx context.Context) (discord.Identity, error) {
	return f.botIdentity(ctx)
}

func (f *fakeAPI) GetGuild(ctx context.Context, guildID string) (discord.Guild, error) {
	return f.getGuild(ctx, guildID)
}

func (f *fakeAPI) GetGuildRoles(ctx context.Context, guildID string) ([]discord.Role, error) {
	return f.getGuildRoles(ctx, guildID)
}

func (f *fakeAPI) GetGuildMember(ctx context.Context, guildID string, userID int64) (discord.Member, error) {
	return f.getGuildMember(ctx, guildID, userID)
}

func (f *fakeAPI) AddMemberRole(ctx context.Context, guildID string, userID int64, roleID, reason string) error {
	return f.addMemberRole(ctx, guildID, userID, roleID, reason)
}

func newTestRuntime(t *testing.T, api *fakeAPI) *Runtime {
	t.Helper()

	return New(Params{
		API:   api,
		Log:   zap.NewNop(),
		Clock: clock.NewFakeClock(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)),
		Config: config.Config{
			Discord: config.DiscordConfig{
				GuildID: "guild-1",
				RoleID:  "role-9",
			},
			Grant: config.GrantConfig{
				QueueSize:   4,
				MaxAttempts: 3,
				RetryDelay:  time.Millisecond,
			},
		},
	})
}

func newConnectedRuntime(t *testing.T, api *fakeAPI) *Runtime {
	t.Helper()

	r := newTestRuntime(t, api)
	r.guild = discord.Guild{ID: "guild-1", Name: "Test Guild"}
	r.roles = map[string]discord.Role{
		"role-9": {ID: "role-9", Name: "Verified"},
	}
	return r
}

func member(username string) discord.Member {
	var m discord.Member
	m.User.Username = username
	return m
}

func TestProcessAppliesRole(t *testing.T) {
	var gotRoleID, gotReason string
	api := &fakeAPI{
		getGuildMember: func(ctx context.Context, guildID string, userID int64) (discord.Member, error) {
			assert.Equal(t, "guild-1", guildID)
			assert.Equal(t, int64(7), userID)
			return member("nova"), nil
		},
		addMemberRole: func(ctx context.Context, guildID string, userID int64, roleID, reason string) error {
			gotRoleID = roleID
			gotReason = reason
			return nil
		},
	}
	r := newConnectedRuntime(t, api)

	task := &grantTask{UserID: 7}
	r.process(context.Background(), task)

	assert.Equal(t, TaskRoleApplied, task.State)
	assert.Equal(t, 1, task.Attempts)
	assert.Equal(t, "role-9", gotRoleID)
	assert.Equal(t, grantAuditReason, gotReason)
}

func TestProcessReChecksUntilAbandoned(t *testing.T) {
	lookups := 0
	api := &fakeAPI{
		getGuildMember: func(ctx context.Context, guildID string, userID int64) (discord.Member, error) {
			lookups++
			return discord.Member{}, discord.ErrMemberNotFound
		},
		addMemberRole: func(ctx context.Context, guildID string, userID int64, roleID, reason string) error {
			t.Fatal("role must not be applied for an invisible member")
			return nil
		},
	}
	r := newConnectedRuntime(t, api)

	task := &grantTask{UserID: 7}
	for attempt := 1; attempt < r.maxAttempts; attempt++ {
		r.process(context.Background(), task)
		assert.Equal(t, TaskNotYetVisible, task.State)

		// The retry timer re-delivers the task to the loop channel.
		select {
		case redelivered := <-r.tasks:
			assert.Same(t, task, redelivered)
		case <-time.After(time.Second):
			t.Fatal("task was not re-delivered")
		}
	}

	r.process(context.Background(), task)
	assert.Equal(t, TaskAbandoned, task.State)
	assert.Equal(t, r.maxAttempts, task.Attempts)
	assert.Equal(t, r.maxAttempts, lookups)
}

func TestProcessAbandonsWithoutGuild(t *testing.T) {
	api := &fakeAPI{
		getGuildMember: func(ctx context.Context, guildID string, userID int64) (discord.Member, error) {
			t.Fatal("no lookup should happen before the guild is resolved")
			return discord.Member{}, nil
		},
	}
	r := newTestRuntime(t, api)

	task := &grantTask{UserID: 7}
	r.process(context.Background(), task)

	assert.Equal(t, TaskAbandoned, task.State)
}

func TestProcessAbandonsOnLookupFault(t *testing.T) {
	api := &fakeAPI{
		getGuildMember: func(ctx context.Context, guildID string, userID int64) (discord.Member, error) {
			return discord.Member{}, errors.New("connection reset")
		},
	}
	r := newConnectedRuntime(t, api)

	task := &grantTask{UserID: 7}
	r.process(context.Background(), task)

	// Transport faults are terminal: only the not-found case re-checks.
	assert.Equal(t, TaskAbandoned, task.State)
	assert.Empty(t, r.tasks)
}

func TestProcessAbandonsWhenRoleMissing(t *testing.T) {
	api := &fakeAPI{
		getGuildMember: func(ctx context.Context, guildID string, userID int64) (discord.Member, error) {
			return member("nova"), nil
		},
		addMemberRole: func(ctx context.Context, guildID string, userID int64, roleID, reason string) error {
			t.Fatal("role apply must not run when the role is unknown")
			return nil
		},
	}
	r := newConnectedRuntime(t, api)
	r.roles = map[string]discord.Role{}

	task := &grantTask{UserID: 7}
	r.process(context.Background(), task)

	assert.Equal(t, TaskAbandoned, task.State)
}

func TestProcessAbandonsOnRoleApplyFault(t *testing.T) {
	api := &fakeAPI{
		getGuildMember: func(ctx context.Context, guildID string, userID int64) (discord.Member, error) {
			return member("nova"), nil
		},
		addMemberRole: func(ctx context.Context, guildID string, userID int64, roleID, reason string) error {
			return errors.New("missing permissions")
		},
	}
	r := newConnectedRuntime(t, api)

	task := &grantTask{UserID: 7}
	r.process(context.Background(), task)

	assert.Equal(t, TaskAbandoned, task.State)
}

func TestSubmitDropsWhenNotReady(t *testing.T) {
	r := newTestRuntime(t, &fakeAPI{})

	r.Submit(7)

	assert.False(t, r.Ready())
	assert.Empty(t, r.tasks)
}

func TestEnqueueDropsWhenQueueFull(t *testing.T) {
	r := newTestRuntime(t, &fakeAPI{})
	for i := 0; i < cap(r.tasks); i++ {
		r.tasks <- &grantTask{UserID: int64(i)}
	}

	r.enqueue(&grantTask{UserID: 99})

	assert.Len(t, r.tasks, cap(r.tasks))
}

func TestRunProcessesSubmittedGrant(t *testing.T) {
	applied := make(chan int64, 1)
	api := &fakeAPI{
		botIdentity: func(ctx context.Context) (discord.Identity, error) {
			return discord.Identity{ID: 1, Username: "gatekeeper"}, nil
		},
		getGuild: func(ctx context.Context, guildID string) (discord.Guild, error) {
			return discord.Guild{ID: guildID, Name: "Test Guild"}, nil
		},
		getGuildRoles: func(ctx context.Context, guildID string) ([]discord.Role, error) {
			return []discord.Role{{ID: "role-9", Name: "Verified"}}, nil
		},
		getGuildMember: func(ctx context.Context, guildID string, userID int64) (discord.Member, error) {
			return member("nova"), nil
		},
		addMemberRole: func(ctx context.Context, guildID string, userID int64, roleID, reason string) error {
			applied <- userID
			return nil
		},
	}
	r := newTestRuntime(t, api)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		defer close(done)
		r.Run(ctx)
	}()

	require.Eventually(t, r.Ready, time.Second, time.Millisecond)
	r.Submit(7)

	select {
	case userID := <-applied:
		assert.Equal(t, int64(7), userID)
	case <-time.After(time.Second):
		t.Fatal("submitted grant was never processed")
	}

	cancel()
	<-done
	assert.False(t, r.Ready())
}
