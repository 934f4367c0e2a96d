package services

import (
	"context"
	"errors"

	types "github.com/MAximeXX/AIEval/internal/domain"
	"github.com/MAximeXX/AIEval/internal/observability"
	domainerrs "github.com/MAximeXX/AIEval/internal/pkg/errors"
	"github.com/MAximeXX/AIEval/internal/platform/logger"
	"github.com/MAximeXX/AIEval/internal/realtime"
)

const unlockedMessage = "解锁成功"

// Notifier pushes change hints after a write has committed. It is fire and
// forget: failures are logged and never reach the caller.
type Notifier interface {
	LockChanged(ctx context.Context, student *types.User, state types.LockState)
	SurveyOverridden(ctx context.Context, student *types.User, section types.Section)
	SectionUpdated(ctx context.Context, student *types.User, section types.Section)
	ReviewReady(ctx context.Context, student *types.User)
}

type notifier struct {
	emit Emitter
	log  *logger.Logger
}

func NewNotifier(emit Emitter, baseLog *logger.Logger) Notifier {
	return &notifier{emit: emit, log: baseLog.With("service", "Notifier")}
}

func (n *notifier) LockChanged(ctx context.Context, student *types.User, state types.LockState) {
	if student == nil {
		return
	}
	msg := unlockedMessage
	if state.IsLocked {
		msg = domainerrs.LockedMessage
	}
	n.send(ctx, realtime.StudentScope(student.ID), realtime.LockChanged(student.ID, state.IsLocked, msg))
	n.send(ctx, realtime.ClassScope(student.ClassKey()), realtime.LockChanged(student.ID, state.IsLocked, ""))
}

func (n *notifier) SurveyOverridden(ctx context.Context, student *types.User, section types.Section) {
	if student == nil {
		return
	}
	n.send(ctx, realtime.StudentScope(student.ID), realtime.SurveyOverridden(student.ID, section))
	n.send(ctx, realtime.ClassScope(student.ClassKey()), realtime.SectionUpdated(student.ID, section))
}

func (n *notifier) SectionUpdated(ctx context.Context, student *types.User, section types.Section) {
	if student == nil {
		return
	}
	n.send(ctx, realtime.ClassScope(student.ClassKey()), realtime.SectionUpdated(student.ID, section))
}

func (n *notifier) ReviewReady(ctx context.Context, student *types.User) {
	if student == nil {
		return
	}
	n.send(ctx, realtime.StudentScope(student.ID), realtime.TeacherReviewReady(student.ID))
	n.send(ctx, realtime.ClassScope(student.ClassKey()), realtime.SectionUpdated(student.ID, types.SectionTeacherReview))
}

func (n *notifier) send(ctx context.Context, scope realtime.Scope, ev realtime.Event) {
	if n == nil || n.emit == nil {
		return
	}
	if err := ev.Validate(); err != nil {
		n.log.Error("Refusing to emit malformed realtime event", "scope", scope, "error", err)
		return
	}
	err := n.emit.Emit(ctx, scope, ev)
	if err == nil {
		observability.Current().ObserveRealtimeEvent(string(ev.Kind), "ok")
		return
	}
	observability.Current().ObserveRealtimeEvent(string(ev.Kind), "failed")
	var cu *domainerrs.ChannelUnavailableError
	if errors.As(err, &cu) {
		n.log.Warn("Realtime channel unavailable", "scope", cu.Scope, "event", ev.Kind, "error", cu.Err)
		return
	}
	n.log.Warn("Realtime emit failed", "scope", scope, "event", ev.Kind, "error", err)
}
