package verification

import (
	"context"
	"errors"
	"testing"

	"github.com/sableworks/guildgate/internal/config"
	"github.com/sableworks/guildgate/internal/discord"
	"github.com/sableworks/guildgate/internal/verification/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeExchanger struct {
	exchangeCalls int
	identityCalls int
	exchangeErr   error
	identityErr   error
	token         string
	identity      discord.Identity
	gotCode       string
	gotToken      string
}

func (f *fakeExchanger) ExchangeCode(ctx context.Context, code string) (string, error) {
	f.exchangeCalls++
	f.gotCode = code
	return f.token, f.exchangeErr
}

func (f *fakeExchanger) FetchIdentity(ctx context.Context, accessToken string) (discord.Identity, error) {
	f.identityCalls++
	f.gotToken = accessToken
	return f.identity, f.identityErr
}

type fakeEnroller struct {
	calls    int
	created  bool
	err      error
	gotGuild string
	gotUser  int64
	gotToken string
}

func (f *fakeEnroller) AddGuildMember(ctx context.Context, guildID string, userID int64, accessToken string) (bool, error) {
	f.calls++
	f.gotGuild = guildID
	f.gotUser = userID
	f.gotToken = accessToken
	return f.created, f.err
}

type fakeScheduler struct {
	submitted []int64
}

func (f *fakeScheduler) Submit(userID int64) {
	f.submitted = append(f.submitted, userID)
}

func newTestService(exchanger *fakeExchanger, enroller *fakeEnroller, scheduler *fakeScheduler) domain.Service {
	cfg := config.Config{
		Discord: config.DiscordConfig{GuildID: "guild-1"},
	}
	return NewService(exchanger, enroller, scheduler, cfg, zap.NewNop(), nil)
}

func TestVerifyHappyPath(t *testing.T) {
	exchanger := &fakeExchanger{
		token:    "tok-abc",
		identity: discord.Identity{ID: 7, Username: "nova"},
	}
	enroller := &fakeEnroller{created: true}
	scheduler := &fakeScheduler{}
	svc := newTestService(exchanger, enroller, scheduler)

	identity, err := svc.Verify(context.Background(), "the-code")
	require.NoError(t, err)

	assert.Equal(t, int64(7), identity.UserID)
	assert.Equal(t, "nova", identity.Username)
	assert.Equal(t, "the-code", exchanger.gotCode)
	assert.Equal(t, "tok-abc", exchanger.gotToken)
	assert.Equal(t, "guild-1", enroller.gotGuild)
	assert.Equal(t, int64(7), enroller.gotUser)
	assert.Equal(t, "tok-abc", enroller.gotToken)
	assert.Equal(t, []int64{7}, scheduler.submitted)
}

func TestVerifyMissingCode(t *testing.T) {
	exchanger := &fakeExchanger{}
	enroller := &fakeEnroller{}
	scheduler := &fakeScheduler{}
	svc := newTestService(exchanger, enroller, scheduler)

	_, err := svc.Verify(context.Background(), "  ")
	assert.ErrorIs(t, err, domain.ErrMissingCode)

	// No outbound call of any kind for an empty code.
	assert.Zero(t, exchanger.exchangeCalls)
	assert.Zero(t, exchanger.identityCalls)
	assert.Zero(t, enroller.calls)
	assert.Empty(t, scheduler.submitted)
}

func TestVerifyExchangeFailureAborts(t *testing.T) {
	wantErr := &discord.TokenExchangeError{APIError: &discord.APIError{Operation: "token exchange", Status: 400}}
	exchanger := &fakeExchanger{exchangeErr: wantErr}
	enroller := &fakeEnroller{}
	scheduler := &fakeScheduler{}
	svc := newTestService(exchanger, enroller, scheduler)

	_, err := svc.Verify(context.Background(), "stale-code")
	require.Error(t, err)

	var exchangeErr *discord.TokenExchangeError
	assert.ErrorAs(t, err, &exchangeErr)
	assert.Zero(t, exchanger.identityCalls)
	assert.Zero(t, enroller.calls)
	assert.Empty(t, scheduler.submitted)
}

func TestVerifyIdentityFailureAborts(t *testing.T) {
	exchanger := &fakeExchanger{
		token:       "tok-abc",
		identityErr: &discord.IdentityFetchError{APIError: &discord.APIError{Operation: "identity fetch", Status: 502}},
	}
	enroller := &fakeEnroller{}
	scheduler := &fakeScheduler{}
	svc := newTestService(exchanger, enroller, scheduler)

	_, err := svc.Verify(context.Background(), "the-code")
	require.Error(t, err)
	assert.Zero(t, enroller.calls)
	assert.Empty(t, scheduler.submitted)
}

func TestVerifyEnrollmentFailureStillGrants(t *testing.T) {
	exchanger := &fakeExchanger{
		token:    "tok-abc",
		identity: discord.Identity{ID: 7, Username: "nova"},
	}
	enroller := &fakeEnroller{err: errors.New("guild full")}
	scheduler := &fakeScheduler{}
	svc := newTestService(exchanger, enroller, scheduler)

	identity, err := svc.Verify(context.Background(), "the-code")

	// An enrollment fault is absorbed: the user may already be a
	// member, so verification succeeds and the grant is still handed
	// off.
	require.NoError(t, err)
	assert.Equal(t, "nova", identity.Username)
	assert.Equal(t, []int64{7}, scheduler.submitted)
}

func TestVerifyAlreadyMember(t *testing.T) {
	exchanger := &fakeExchanger{
		token:    "tok-abc",
		identity: discord.Identity{ID: 7, Username: "nova"},
	}
	enroller := &fakeEnroller{created: false}
	scheduler := &fakeScheduler{}
	svc := newTestService(exchanger, enroller, scheduler)

	identity, err := svc.Verify(context.Background(), "the-code")
	require.NoError(t, err)
	assert.Equal(t, int64(7), identity.UserID)
	assert.Equal(t, []int64{7}, scheduler.submitted)
}
