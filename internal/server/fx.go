package server

import (
	"github.com/sableworks/guildgate/internal/bot"
	"go.uber.org/fx"
)

var Module = fx.Module("http.server",
	fx.Provide(NewEngine),
	fx.Provide(
		fx.Annotate(
			func(runtime *bot.Runtime) func() bool { return runtime.Ready },
			fx.ResultTags(`name:"bot_ready"`),
		),
	),
	fx.Provide(NewServer),
	fx.Invoke(func(s *Server) {
		s.RegisterRoutes()
	}),
	fx.Invoke(RunHTTP),
)
