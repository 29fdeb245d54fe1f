package worker

import (
	"github.com/spec-kit/ops-desk/internal/events"
	"github.com/spec-kit/ops-desk/internal/service"
)

// StartNotificationWorker registers notification handlers and, when configured,
// the Kafka forwarder on the dispatcher.
func StartNotificationWorker(dispatcher events.Dispatcher, notifications *service.NotificationService, sink *events.KafkaSink) {
	if notifications != nil {
		notifications.RegisterHandlers()
	}
	if sink != nil && dispatcher != nil {
		sink.Register(dispatcher)
	}
}
