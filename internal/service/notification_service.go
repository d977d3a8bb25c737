package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/bugtrackr/bug-tracker/internal/events"
)

// NotificationService handles emitting notifications for bug events.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventBugCreated, n.handleBugCreated)
	n.dispatcher.Subscribe(events.EventBugUpdated, n.handleBugUpdated)
	n.dispatcher.Subscribe(events.EventBugDeleted, n.handleBugDeleted)
}

func (n *NotificationService) handleBugCreated(_ context.Context, event events.Event) error {
	fields := []zap.Field{zap.String("bug_id", event.BugID)}
	if p, ok := event.Payload.(events.BugCreatedPayload); ok {
		fields = append(fields,
			zap.String("title", p.Title),
			zap.String("priority", string(p.Priority)),
			zap.String("reporter", p.Reporter))
	}
	n.logger.Info("BugCreated", fields...)
	return nil
}

func (n *NotificationService) handleBugUpdated(_ context.Context, event events.Event) error {
	fields := []zap.Field{zap.String("bug_id", event.BugID)}
	if p, ok := event.Payload.(events.BugUpdatedPayload); ok {
		fields = append(fields,
			zap.Strings("fields", p.Fields),
			zap.String("status", string(p.Status)),
			zap.String("priority", string(p.Priority)))
	}
	n.logger.Info("BugUpdated", fields...)
	return nil
}

func (n *NotificationService) handleBugDeleted(_ context.Context, event events.Event) error {
	n.logger.Info("BugDeleted", zap.String("bug_id", event.BugID))
	return nil
}
