package bot

import (
	"context"

	"github.com/sableworks/guildgate/internal/clock"
	"github.com/sableworks/guildgate/internal/config"
	"github.com/sableworks/guildgate/internal/discord"
	obsmetrics "github.com/sableworks/guildgate/internal/observability/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("bot",
	fx.Provide(provideRuntime),
	fx.Invoke(runRuntime),
)

func provideRuntime(client *discord.Client, log *zap.Logger, clk clock.Clock, metrics *obsmetrics.PipelineMetrics, cfg config.Config) *Runtime {
	return New(Params{
		API:     client,
		Log:     log,
		Clock:   clk,
		Metrics: metrics,
		Config:  cfg,
	})
}

func runRuntime(lc fx.Lifecycle, runtime *Runtime) {
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			ctx, cancel := context.WithCancel(context.Background())

			go runtime.Run(ctx)

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
