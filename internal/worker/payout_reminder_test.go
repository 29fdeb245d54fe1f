package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/ops-desk/internal/domain"
	"github.com/spec-kit/ops-desk/internal/events"
	"github.com/spec-kit/ops-desk/internal/observability"
)

type stubLister struct {
	asOf time.Time
	due  []domain.Event
	err  error
}

func (s *stubLister) ListPayoutsDue(_ context.Context, asOf time.Time) ([]domain.Event, error) {
	s.asOf = asOf
	return s.due, s.err
}

func TestPayoutReminderPublishesDueEvents(t *testing.T) {
	lister := &stubLister{due: []domain.Event{
		{ID: "ev-1", Name: "Jazz Night", TotalPayout: domain.Money(12345)},
		{ID: "ev-2", Name: "Rock Fest"},
	}}
	dispatcher := events.NewInMemoryDispatcher()
	var got []events.Event
	dispatcher.Subscribe(events.EventPayoutDue, func(_ context.Context, e events.Event) error {
		got = append(got, e)
		return nil
	})
	metrics := observability.NewMetrics()

	reminder := NewPayoutReminder(lister, dispatcher, metrics, nil)
	sent, err := reminder.RunOnce(context.Background(), time.Date(2025, 2, 19, 23, 15, 0, 0, time.UTC))
	require.NoError(t, err)

	assert.Equal(t, 2, sent)
	assert.Equal(t, "2025-02-19", domain.FormatDate(lister.asOf))
	require.Len(t, got, 2)
	assert.Equal(t, "ev-1", got[0].EntityID)
	assert.Equal(t, domain.EntityEvent, got[0].EntityType)
	assert.Empty(t, got[0].Actor.ID)
	assert.Equal(t, domain.Money(12345), got[0].Payload.(events.EventPayload).TotalPayout)
	assert.Equal(t, int64(1), metrics.Snapshot().JobRuns[PayoutReminderJob])
}

func TestPayoutReminderSkipsFailedDelivery(t *testing.T) {
	lister := &stubLister{due: []domain.Event{{ID: "ev-1"}, {ID: "ev-2"}}}
	dispatcher := events.NewInMemoryDispatcher()
	dispatcher.Subscribe(events.EventPayoutDue, func(_ context.Context, e events.Event) error {
		if e.EntityID == "ev-1" {
			return errors.New("broker down")
		}
		return nil
	})

	sent, err := NewPayoutReminder(lister, dispatcher, nil, nil).RunOnce(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
}

func TestPayoutReminderReportsListFailure(t *testing.T) {
	lister := &stubLister{err: errors.New("db gone")}

	_, err := NewPayoutReminder(lister, nil, nil, nil).RunOnce(context.Background(), time.Now())
	assert.Error(t, err)
}

func TestPayoutReminderRunStopsWithContext(t *testing.T) {
	lister := &stubLister{}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- NewPayoutReminder(lister, nil, nil, nil).Run(ctx, time.Hour) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("scheduler did not stop")
	}
}
