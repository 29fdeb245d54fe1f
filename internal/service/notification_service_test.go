package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spec-kit/ops-desk/internal/config"
	"github.com/spec-kit/ops-desk/internal/events"
)

func TestNotificationsRelayConfiguredChannels(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	dispatcher := events.NewInMemoryDispatcher()
	svc := NewNotificationService(dispatcher, zap.New(core), config.NotificationConfig{
		EmailFrom:  "ops@example.com",
		WebhookURL: "https://hooks.example.com/ops",
	})
	svc.RegisterHandlers()

	ctx := context.Background()
	require.NoError(t, dispatcher.Publish(ctx, events.Event{Type: events.EventTicketCreated, EntityID: "t-1"}))
	require.NoError(t, dispatcher.Publish(ctx, events.Event{Type: events.EventPayoutDue, EntityID: "ev-1"}))
	require.NoError(t, dispatcher.Publish(ctx, events.Event{Type: events.EventTicketAssigned, EntityID: "t-1"}))

	assert.Equal(t, 2, logs.FilterMessage("sendEmail").Len())
	assert.Equal(t, 2, logs.FilterMessage("sendWebhook").Len())
	assert.Equal(t, 1, logs.FilterMessage("PayoutDue").FilterField(zap.String("event_id", "ev-1")).Len())
}

func TestNotificationsSkipUnconfiguredChannels(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	dispatcher := events.NewInMemoryDispatcher()
	NewNotificationService(dispatcher, zap.New(core), config.NotificationConfig{}).RegisterHandlers()

	require.NoError(t, dispatcher.Publish(context.Background(), events.Event{Type: events.EventTicketCreated, EntityID: "t-2"}))

	assert.Equal(t, 1, logs.FilterMessage("TicketCreated").Len())
	assert.Zero(t, logs.FilterMessage("sendEmail").Len())
	assert.Zero(t, logs.FilterMessage("sendWebhook").Len())
}

func TestNotificationsWithoutDispatcher(t *testing.T) {
	assert.NotPanics(t, func() {
		NewNotificationService(nil, nil, config.NotificationConfig{}).RegisterHandlers()
	})
}
