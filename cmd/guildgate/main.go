package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/sableworks/guildgate/internal/bot"
	"github.com/sableworks/guildgate/internal/clock"
	"github.com/sableworks/guildgate/internal/config"
	"github.com/sableworks/guildgate/internal/discord"
	"github.com/sableworks/guildgate/internal/leaderboard"
	"github.com/sableworks/guildgate/internal/migration"
	"github.com/sableworks/guildgate/internal/observability"
	"github.com/sableworks/guildgate/internal/ratelimit"
	"github.com/sableworks/guildgate/internal/scheduler"
	"github.com/sableworks/guildgate/internal/server"
	"github.com/sableworks/guildgate/internal/session"
	"github.com/sableworks/guildgate/internal/settings"
	"github.com/sableworks/guildgate/internal/verification"
	"github.com/sableworks/guildgate/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core infrastructure
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,

		// Verification pipeline
		discord.Module,
		bot.Module,
		verification.Module,
		session.Module,
		ratelimit.Module,

		// Collaborators
		leaderboard.Module,
		settings.Module,
		scheduler.Module,

		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
