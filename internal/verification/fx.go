package verification

import (
	"github.com/sableworks/guildgate/internal/bot"
	"github.com/sableworks/guildgate/internal/config"
	"github.com/sableworks/guildgate/internal/discord"
	obsmetrics "github.com/sableworks/guildgate/internal/observability/metrics"
	"github.com/sableworks/guildgate/internal/verification/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("verification",
	fx.Provide(provideService),
)

func provideService(client *discord.Client, runtime *bot.Runtime, cfg config.Config, log *zap.Logger, metrics *obsmetrics.PipelineMetrics) domain.Service {
	return NewService(client, client, runtime, cfg, log, metrics)
}
