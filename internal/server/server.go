package server

import (
	"context"
	"embed"
	"html/template"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sableworks/guildgate/internal/config"
	"github.com/sableworks/guildgate/internal/discord"
	leaderboarddomain "github.com/sableworks/guildgate/internal/leaderboard/domain"
	"github.com/sableworks/guildgate/internal/observability"
	obslogger "github.com/sableworks/guildgate/internal/observability/logger"
	obsmetrics "github.com/sableworks/guildgate/internal/observability/metrics"
	obstracing "github.com/sableworks/guildgate/internal/observability/tracing"
	"github.com/sableworks/guildgate/internal/ratelimit"
	"github.com/sableworks/guildgate/internal/session"
	settingsdomain "github.com/sableworks/guildgate/internal/settings/domain"
	verificationdomain "github.com/sableworks/guildgate/internal/verification/domain"
	"go.uber.org/fx"
)

//go:embed templates
var templateFS embed.FS

// Server holds the HTTP handlers for the verification flow and the
// CRUD collaborators around it.
type Server struct {
	engine          *gin.Engine
	cfg             config.Config
	discord         *discord.Client
	verificationSvc verificationdomain.Service
	sessions        *session.Manager
	leaderboardSvc  leaderboarddomain.Service
	settingsSvc     settingsdomain.Service
	callbackLimiter ratelimit.Limiter
	botReady        func() bool
}

type ServerParams struct {
	fx.In

	Gin             *gin.Engine
	Cfg             config.Config
	Discord         *discord.Client
	VerificationSvc verificationdomain.Service
	Sessions        *session.Manager
	LeaderboardSvc  leaderboarddomain.Service
	SettingsSvc     settingsdomain.Service
	CallbackLimiter ratelimit.Limiter
	BotReady        func() bool `name:"bot_ready"`
}

func NewServer(p ServerParams) *Server {
	return &Server{
		engine:          p.Gin,
		cfg:             p.Cfg,
		discord:         p.Discord,
		verificationSvc: p.VerificationSvc,
		sessions:        p.Sessions,
		leaderboardSvc:  p.LeaderboardSvc,
		settingsSvc:     p.SettingsSvc,
		callbackLimiter: p.CallbackLimiter,
		botReady:        p.BotReady,
	}
}

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	if !obsCfg.Debug() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obslogger.GinMiddleware(obslogger.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.SetHTMLTemplate(template.Must(template.ParseFS(templateFS, "templates/*.html")))

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

// RegisterRoutes wires every route group.
func (s *Server) RegisterRoutes() {
	s.engine.GET("/health", s.Health)

	s.engine.GET("/", s.Index)
	s.engine.GET("/index", s.Index)
	s.engine.GET("/login", s.Login)
	s.engine.GET("/callback", s.RateLimitCallback(), s.Callback)
	s.engine.GET("/logout", s.Logout)

	api := s.engine.Group("/api/v1")
	{
		api.GET("/leaderboard", s.ListLeaderboard)
		api.POST("/leaderboard", s.RequireSession(), s.RecordLeaderboardEntry)
		api.DELETE("/leaderboard/:user_id", s.RequireSession(), s.DeleteLeaderboardEntries)

		admin := api.Group("/admin", s.RequireSession())
		{
			admin.GET("/settings", s.ListSettings)
			admin.PUT("/settings", s.UpdateSetting)
		}
	}
}

// Health reports process liveness plus the bot runtime's readiness so
// operators can see the degraded "serving but not granting" state.
func (s *Server) Health(c *gin.Context) {
	ready := s.botReady != nil && s.botReady()
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"bot_ready": ready,
	})
}

func RunHTTP(lc fx.Lifecycle, cfg config.Config, r *gin.Engine) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}
