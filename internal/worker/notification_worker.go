package worker

import (
	"context"

	"github.com/bugtrackr/bug-tracker/internal/events"
	"github.com/bugtrackr/bug-tracker/internal/observability"
	"github.com/bugtrackr/bug-tracker/internal/service"
)

// StartNotificationWorker registers notification handlers and counts every
// published bug event in metrics.
func StartNotificationWorker(dispatcher events.Dispatcher, notificationService *service.NotificationService, metrics *observability.Metrics) {
	if notificationService != nil {
		notificationService.RegisterHandlers()
	}
	if dispatcher == nil || metrics == nil {
		return
	}
	for _, eventType := range events.AllEventTypes {
		dispatcher.Subscribe(eventType, func(_ context.Context, event events.Event) error {
			metrics.RecordEvent(string(event.Type))
			return nil
		})
	}
}
