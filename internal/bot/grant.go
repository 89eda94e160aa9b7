package bot

import (
	"context"
	"errors"
	"time"

	"github.com/sableworks/guildgate/internal/discord"
	obsmetrics "github.com/sableworks/guildgate/internal/observability/metrics"
	"go.uber.org/zap"
)

// TaskState tracks a grant task through its lifecycle.
type TaskState string

const (
	TaskPending       TaskState = "pending"
	TaskEnrolled      TaskState = "enrolled"
	TaskRoleApplied   TaskState = "role_applied"
	TaskNotYetVisible TaskState = "not_yet_visible"
	TaskAbandoned     TaskState = "abandoned"
)

const grantAuditReason = "Verified via website"

// grantTask is owned exclusively by the runtime loop after Submit.
// Attempts counts member lookups; the retry timer goroutine only
// re-delivers the pointer, it never touches the fields.
type grantTask struct {
	UserID    int64
	CreatedAt time.Time
	Attempts  int
	State     TaskState
}

// process advances one task as far as it can go in a single pass:
// Pending -> Enrolled -> RoleApplied on the happy path, Abandoned on
// configuration or transport faults, or a delayed re-check when the
// membership write has not propagated to the lookup path yet.
func (r *Runtime) process(ctx context.Context, task *grantTask) {
	task.State = TaskPending
	task.Attempts++
	log := r.log.With(
		zap.Int64("user_id", task.UserID),
		zap.Int("attempts", task.Attempts),
	)

	if r.guild.ID == "" {
		// Configuration fault, not transient. No retry.
		task.State = TaskAbandoned
		log.Error("grant abandoned, guild not resolved")
		r.finish(task)
		return
	}

	member, err := r.api.GetGuildMember(ctx, r.guildID, task.UserID)
	switch {
	case errors.Is(err, discord.ErrMemberNotFound):
		task.State = TaskNotYetVisible
		if task.Attempts < r.maxAttempts {
			log.Info("member not visible yet, scheduling re-check")
			r.retryLater(task)
			return
		}
		task.State = TaskAbandoned
		log.Warn("grant abandoned, member never became visible")
		r.finish(task)
		return
	case err != nil:
		task.State = TaskAbandoned
		log.Error("grant abandoned, member lookup failed", zap.Error(err))
		r.finish(task)
		return
	}

	task.State = TaskEnrolled

	role, ok := r.roles[r.roleID]
	if !ok {
		task.State = TaskAbandoned
		log.Error("grant abandoned, configured role not in guild", zap.String("role_id", r.roleID))
		r.finish(task)
		return
	}

	if err := r.api.AddMemberRole(ctx, r.guildID, task.UserID, role.ID, grantAuditReason); err != nil {
		task.State = TaskAbandoned
		log.Error("grant abandoned, role apply failed", zap.Error(err))
		r.finish(task)
		return
	}

	task.State = TaskRoleApplied
	log.Info("role applied",
		zap.String("role", role.Name),
		zap.String("member", member.DisplayName()),
	)
	r.finish(task)
}

// retryLater re-delivers the task to the loop after the retry delay.
// The timer goroutine only sends on the channel; task state stays
// loop-owned.
func (r *Runtime) retryLater(task *grantTask) {
	time.AfterFunc(r.retryDelay, func() {
		r.enqueue(task)
	})
}

func (r *Runtime) finish(task *grantTask) {
	r.metrics.ObserveGrantAttempts(task.Attempts)
	switch task.State {
	case TaskRoleApplied:
		r.metrics.IncRoleGrant(obsmetrics.GrantApplied)
	case TaskAbandoned:
		r.metrics.IncRoleGrant(obsmetrics.GrantAbandoned)
	}
}
