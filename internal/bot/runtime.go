package bot

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/sableworks/guildgate/internal/clock"
	"github.com/sableworks/guildgate/internal/config"
	"github.com/sableworks/guildgate/internal/discord"
	obsmetrics "github.com/sableworks/guildgate/internal/observability/metrics"
	"go.uber.org/zap"
)

const (
	connectRetryDelay = 5 * time.Second
	heartbeatInterval = 5 * time.Minute
)

// API is the slice of the Discord client the runtime drives.
type API interface {
	BotIdentity(ctx context.Context) (discord.Identity, error)
	GetGuild(ctx context.Context, guildID string) (discord.Guild, error)
	GetGuildRoles(ctx context.Context, guildID string) ([]discord.Role, error)
	GetGuildMember(ctx context.Context, guildID string, userID int64) (discord.Member, error)
	AddMemberRole(ctx context.Context, guildID string, userID int64, roleID, reason string) error
}

// Runtime owns the bot's execution context: a single loop goroutine
// that connects the bot credential, maintains the guild's role cache,
// and processes role-grant tasks one at a time. All task and cache
// mutation happens on that goroutine; the only cross-context surface
// is Submit, which writes to the task channel.
type Runtime struct {
	api     API
	log     *zap.Logger
	clock   clock.Clock
	metrics *obsmetrics.PipelineMetrics

	guildID     string
	roleID      string
	maxAttempts int
	retryDelay  time.Duration

	tasks chan *grantTask
	ready atomic.Bool

	// Loop-owned connection state. Never read outside the loop.
	guild discord.Guild
	roles map[string]discord.Role
}

type Params struct {
	API     API
	Log     *zap.Logger
	Clock   clock.Clock
	Metrics *obsmetrics.PipelineMetrics
	Config  config.Config
}

func New(p Params) *Runtime {
	queueSize := p.Config.Grant.QueueSize
	if queueSize <= 0 {
		queueSize = 64
	}
	maxAttempts := p.Config.Grant.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 1
	}
	retryDelay := p.Config.Grant.RetryDelay
	if retryDelay <= 0 {
		retryDelay = 5 * time.Second
	}
	return &Runtime{
		api:         p.API,
		log:         p.Log.Named("bot").With(zap.String("component", "bot")),
		clock:       p.Clock,
		metrics:     p.Metrics,
		guildID:     p.Config.Discord.GuildID,
		roleID:      p.Config.Discord.RoleID,
		maxAttempts: maxAttempts,
		retryDelay:  retryDelay,
		tasks:       make(chan *grantTask, queueSize),
	}
}

// Ready reports whether the runtime has connected and accepts tasks.
func (r *Runtime) Ready() bool {
	return r.ready.Load()
}

// Submit hands a role-grant intent from the request-serving context to
// the runtime's loop. Fire-and-forget: the caller gets no completion
// signal, and the task is dropped when the runtime is not running or
// its queue is full.
func (r *Runtime) Submit(userID int64) {
	if !r.ready.Load() {
		r.log.Warn("grant task dropped, runtime not ready", zap.Int64("user_id", userID))
		r.metrics.IncRoleGrant(obsmetrics.GrantDropped)
		return
	}
	r.enqueue(&grantTask{UserID: userID, CreatedAt: r.clock.Now()})
}

func (r *Runtime) enqueue(task *grantTask) {
	select {
	case r.tasks <- task:
		r.metrics.SetGrantQueueDepth(len(r.tasks))
	default:
		r.log.Warn("grant task dropped, queue full",
			zap.Int64("user_id", task.UserID),
			zap.Int("attempts", task.Attempts),
		)
		r.metrics.IncRoleGrant(obsmetrics.GrantDropped)
	}
}

// Run is the runtime's event loop. It blocks until ctx is canceled.
// In-flight tasks are dropped on shutdown; remote state is the source
// of truth and the user can re-run verification.
func (r *Runtime) Run(ctx context.Context) {
	if !r.connect(ctx) {
		return
	}
	r.ready.Store(true)
	defer r.ready.Store(false)

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case task := <-r.tasks:
			r.metrics.SetGrantQueueDepth(len(r.tasks))
			r.process(ctx, task)
		case <-heartbeat.C:
			r.refreshRoles(ctx)
		}
	}
}

// connect authenticates the bot credential and resolves the managed
// guild and its roles, retrying until it succeeds or ctx ends.
func (r *Runtime) connect(ctx context.Context) bool {
	for {
		err := r.establish(ctx)
		if err == nil {
			return true
		}
		r.log.Error("bot connect failed", zap.Error(err))

		select {
		case <-ctx.Done():
			return false
		case <-time.After(connectRetryDelay):
		}
	}
}

func (r *Runtime) establish(ctx context.Context) error {
	identity, err := r.api.BotIdentity(ctx)
	if err != nil {
		return err
	}
	guild, err := r.api.GetGuild(ctx, r.guildID)
	if err != nil {
		return err
	}
	roles, err := r.api.GetGuildRoles(ctx, r.guildID)
	if err != nil {
		return err
	}

	r.guild = guild
	r.roles = indexRoles(roles)
	r.log.Info("bot ready",
		zap.String("bot_user", identity.Username),
		zap.String("guild", guild.Name),
		zap.Int("roles", len(r.roles)),
	)
	return nil
}

func (r *Runtime) refreshRoles(ctx context.Context) {
	roles, err := r.api.GetGuildRoles(ctx, r.guildID)
	if err != nil {
		r.log.Warn("role cache refresh failed", zap.Error(err))
		return
	}
	r.roles = indexRoles(roles)
}

func indexRoles(roles []discord.Role) map[string]discord.Role {
	indexed := make(map[string]discord.Role, len(roles))
	for _, role := range roles {
		indexed[role.ID] = role
	}
	return indexed
}
