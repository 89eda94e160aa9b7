package scheduler

import (
	"context"
	"time"

	"github.com/sableworks/guildgate/internal/clock"
	"github.com/sableworks/guildgate/internal/config"
	leaderboarddomain "github.com/sableworks/guildgate/internal/leaderboard/domain"
	settingsdomain "github.com/sableworks/guildgate/internal/settings/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("scheduler",
	fx.Provide(ProvideConfig),
	fx.Provide(provideScheduler),
	fx.Invoke(runScheduler),
)

func ProvideConfig(cfg config.Config) Config {
	return Config{
		RunInterval:   time.Hour,
		JobTimeout:    time.Minute,
		RetentionDays: cfg.RetentionDays,
	}
}

func provideScheduler(log *zap.Logger, cfg Config, clk clock.Clock, leaderboard leaderboarddomain.Service, settings settingsdomain.Service) (*Scheduler, error) {
	return New(log, cfg, clk, leaderboard, settings)
}

func runScheduler(lc fx.Lifecycle, sched *Scheduler) {
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			ctx, cancel := context.WithCancel(context.Background())

			go sched.RunForever(ctx)

			lc.Append(fx.Hook{
				OnStop: func(context.Context) error {
					cancel()
					return nil
				},
			})

			return nil
		},
	})
}
