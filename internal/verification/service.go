package verification

import (
	"context"
	"strings"

	"github.com/sableworks/guildgate/internal/config"
	"github.com/sableworks/guildgate/internal/discord"
	obsmetrics "github.com/sableworks/guildgate/internal/observability/metrics"
	"github.com/sableworks/guildgate/internal/verification/domain"
	"go.uber.org/zap"
)

// TokenExchanger converts an authorization code into an access token
// and the identity behind it.
type TokenExchanger interface {
	ExchangeCode(ctx context.Context, code string) (string, error)
	FetchIdentity(ctx context.Context, accessToken string) (discord.Identity, error)
}

// MembershipEnroller joins a consenting user to the managed guild.
type MembershipEnroller interface {
	AddGuildMember(ctx context.Context, guildID string, userID int64, accessToken string) (bool, error)
}

// GrantScheduler hands the role-grant intent to the bot's execution
// context. One-way: there is no completion signal back.
type GrantScheduler interface {
	Submit(userID int64)
}

type service struct {
	exchanger TokenExchanger
	enroller  MembershipEnroller
	scheduler GrantScheduler
	guildID   string
	log       *zap.Logger
	metrics   *obsmetrics.PipelineMetrics
}

func NewService(exchanger TokenExchanger, enroller MembershipEnroller, scheduler GrantScheduler, cfg config.Config, log *zap.Logger, metrics *obsmetrics.PipelineMetrics) domain.Service {
	return &service{
		exchanger: exchanger,
		enroller:  enroller,
		scheduler: scheduler,
		guildID:   cfg.Discord.GuildID,
		log:       log.Named("verification"),
		metrics:   metrics,
	}
}

// Verify sequences the synchronous pipeline. Token exchange and
// identity fetch abort on failure; enrollment failure is logged and
// absorbed, since the user may already be a member and the grant can
// still succeed. The access token never leaves this call.
func (s *service) Verify(ctx context.Context, code string) (*domain.Identity, error) {
	if strings.TrimSpace(code) == "" {
		s.metrics.IncVerification(obsmetrics.VerificationMissingCode)
		return nil, domain.ErrMissingCode
	}

	accessToken, err := s.exchanger.ExchangeCode(ctx, code)
	if err != nil {
		s.metrics.IncVerification(obsmetrics.VerificationExchangeFail)
		return nil, err
	}

	remote, err := s.exchanger.FetchIdentity(ctx, accessToken)
	if err != nil {
		s.metrics.IncVerification(obsmetrics.VerificationIdentityFail)
		return nil, err
	}

	result := s.enroll(ctx, remote, accessToken)
	s.metrics.IncEnrollment(string(result.Status))
	if !result.Succeeded() {
		s.log.Warn("membership enrollment failed, continuing to role grant",
			zap.Int64("user_id", remote.ID),
			zap.String("reason", result.Reason),
		)
	}

	s.scheduler.Submit(remote.ID)
	s.metrics.IncVerification(obsmetrics.VerificationOK)

	return &domain.Identity{UserID: remote.ID, Username: remote.Username}, nil
}

func (s *service) enroll(ctx context.Context, remote discord.Identity, accessToken string) domain.EnrollmentResult {
	created, err := s.enroller.AddGuildMember(ctx, s.guildID, remote.ID, accessToken)
	if err != nil {
		return domain.EnrollmentResult{Status: domain.EnrollmentFailed, Reason: err.Error()}
	}
	if created {
		s.log.Info("user added to guild", zap.Int64("user_id", remote.ID))
		return domain.EnrollmentResult{Status: domain.EnrollmentCreated}
	}
	return domain.EnrollmentResult{Status: domain.EnrollmentAlreadyMember}
}
