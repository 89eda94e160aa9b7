package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/sableworks/guildgate/internal/clock"
	leaderboarddomain "github.com/sableworks/guildgate/internal/leaderboard/domain"
	settingsdomain "github.com/sableworks/guildgate/internal/settings/domain"
	"go.uber.org/zap"
)

var ErrInvalidConfig = errors.New("scheduler requires leaderboard service, settings service, clock and logger")

// Scheduler runs the data-retention cleanup loop: leaderboard rows
// older than the retention window are pruned periodically. The window
// can be overridden at runtime through the settings store.
type Scheduler struct {
	log         *zap.Logger
	cfg         Config
	clock       clock.Clock
	leaderboard leaderboarddomain.Service
	settings    settingsdomain.Service
}

func New(log *zap.Logger, cfg Config, clk clock.Clock, leaderboard leaderboarddomain.Service, settings settingsdomain.Service) (*Scheduler, error) {
	if log == nil || clk == nil || leaderboard == nil || settings == nil {
		return nil, ErrInvalidConfig
	}
	return &Scheduler{
		log:         log.Named("scheduler").With(zap.String("component", "scheduler")),
		cfg:         cfg.withDefaults(),
		clock:       clk,
		leaderboard: leaderboard,
		settings:    settings,
	}, nil
}

// RunForever runs cleanup on the configured interval until ctx ends.
func (s *Scheduler) RunForever(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.RunInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runJob(ctx, "retention_cleanup", s.RunRetentionCleanup)
		}
	}
}

func (s *Scheduler) runJob(parent context.Context, name string, fn func(ctx context.Context) error) {
	start := s.clock.Now()
	ctx, cancel := context.WithTimeout(parent, s.cfg.JobTimeout)
	defer cancel()

	log := s.log.With(zap.String("job", name))
	if err := fn(ctx); err != nil {
		log.Error("job failed",
			zap.Error(err),
			zap.Duration("elapsed", time.Since(start)),
		)
		return
	}
	log.Debug("job finished", zap.Duration("elapsed", time.Since(start)))
}

// RunRetentionCleanup prunes expired leaderboard rows in one pass.
func (s *Scheduler) RunRetentionCleanup(ctx context.Context) error {
	days := s.settings.GetInt(ctx, settingsdomain.KeyRetentionDays, s.cfg.RetentionDays)
	cutoff := s.clock.Now().AddDate(0, 0, -days)

	pruned, err := s.leaderboard.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return err
	}
	if pruned > 0 {
		s.log.Info("pruned expired leaderboard entries",
			zap.Int64("rows", pruned),
			zap.Time("cutoff", cutoff),
		)
	}
	return nil
}
