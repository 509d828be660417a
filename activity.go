package auth

import (
	"context"
	"time"
)

// ActivityEventType enumerates supported activity categories.
type ActivityEventType string

const (
	ActivityEventPasswordResetRequested ActivityEventType = "auth.password.reset_requested"
	ActivityEventPasswordResetSuccess   ActivityEventType = "auth.password.reset"
	ActivityEventUserInvited            ActivityEventType = "user.invited"
	ActivityEventInvitationCompleted    ActivityEventType = "user.invitation.completed"
	ActivityEventCookieLoginSuccess     ActivityEventType = "auth.cookie_login.success"
	ActivityEventCookieLoginFailure     ActivityEventType = "auth.cookie_login.failure"
)

// ActivityEvent captures audit-friendly information about an action.
// ActorID is zero for anonymous actions.
type ActivityEvent struct {
	EventType  ActivityEventType
	ActorID    int64
	UserID     int64
	Metadata   map[string]any
	OccurredAt time.Time
}

// ActivitySink consumes activity events for auditing/telemetry purposes.
type ActivitySink interface {
	Record(ctx context.Context, event ActivityEvent) error
}

// ActivitySinkFunc adapts a function to the ActivitySink interface.
type ActivitySinkFunc func(ctx context.Context, event ActivityEvent) error

// Record implements ActivitySink.
func (f ActivitySinkFunc) Record(ctx context.Context, event ActivityEvent) error {
	if f == nil {
		return nil
	}
	return f(ctx, event)
}

type noopActivitySink struct{}

func (noopActivitySink) Record(context.Context, ActivityEvent) error {
	return nil
}

func normalizeActivitySink(s ActivitySink) ActivitySink {
	if s == nil {
		return noopActivitySink{}
	}
	return s
}

// recordActivity is best effort: sink failures are logged and dropped.
func recordActivity(ctx context.Context, sink ActivitySink, logger Logger, event ActivityEvent) {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now()
	}
	if err := sink.Record(ctx, event); err != nil {
		logger.Warn("activity sink rejected %s: %v", event.EventType, err)
	}
}
