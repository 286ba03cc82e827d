package worker

import (
	"context"

	"go.uber.org/zap"

	"github.com/northgate-labs/user-service/internal/events"
)

// StartAuditWorker subscribes a structured-log audit trail to user
// lifecycle events.
func StartAuditWorker(dispatcher events.Dispatcher, logger *zap.Logger) {
	if dispatcher == nil || logger == nil {
		return
	}

	handler := func(_ context.Context, event events.Event) error {
		logger.Info("audit event",
			zap.String("event_id", event.ID),
			zap.String("type", string(event.Type)),
			zap.String("user_id", event.UserID),
			zap.Time("at", event.Timestamp),
		)
		return nil
	}

	for _, eventType := range []events.EventType{
		events.EventUserRegistered,
		events.EventUserCreated,
		events.EventUserUpdated,
		events.EventUserRoleChanged,
		events.EventUserDeleted,
		events.EventPasswordChanged,
	} {
		dispatcher.Subscribe(eventType, handler)
	}
}
