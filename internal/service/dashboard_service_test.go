package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/ops-desk/internal/cache"
	"github.com/spec-kit/ops-desk/internal/domain"
	"github.com/spec-kit/ops-desk/internal/repository"
)

func TestDashboardSummaryReadsThroughCache(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	now := time.Date(2025, 2, 17, 9, 0, 0, 0, time.UTC)
	tickets, evs := &mockTicketRepo{}, &mockEventRepo{}
	tickets.On("CountByStatus", mock.Anything).Return(repository.TicketStatusCounts{
		ByStatus: map[domain.TicketStatus]int64{domain.TicketStatusOpen: 3},
		Total:    3,
	}, nil)
	evs.On("Totals", mock.Anything, domain.DateOf(now)).Return(repository.EventTotals{
		EventCount:          2,
		GrossSale:           domain.Money(100000),
		PendingPayoutCount:  1,
		PendingPayoutAmount: domain.Money(90000),
		PayoutsDueCount:     1,
	}, nil)

	svc := NewDashboardService(DashboardDependencies{
		TicketRepo: tickets,
		EventRepo:  evs,
		Cache:      cache.NewSummaryCache(client, time.Minute),
		Clock:      fixedClock(now),
	})

	first, err := svc.Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "2025-02-17", first.AsOf)
	assert.Equal(t, int64(3), first.Tickets.Open)
	assert.Equal(t, domain.Money(90000), first.Events.PendingPayoutAmount)

	second, err := svc.Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first.Tickets.Total, second.Tickets.Total)
	assert.Equal(t, first.Events.GrossSale, second.Events.GrossSale)
	tickets.AssertNumberOfCalls(t, "CountByStatus", 1)
	evs.AssertNumberOfCalls(t, "Totals", 1)

	svc.InvalidateSummary(context.Background())
	_, err = svc.Summary(context.Background())
	require.NoError(t, err)
	tickets.AssertNumberOfCalls(t, "CountByStatus", 2)
}

func TestDashboardSummaryWithoutCache(t *testing.T) {
	tickets, evs := &mockTicketRepo{}, &mockEventRepo{}
	tickets.On("CountByStatus", mock.Anything).Return(repository.TicketStatusCounts{}, nil)
	evs.On("Totals", mock.Anything, mock.Anything).Return(repository.EventTotals{}, nil)

	svc := NewDashboardService(DashboardDependencies{TicketRepo: tickets, EventRepo: evs})
	_, err := svc.Summary(context.Background())
	require.NoError(t, err)
	svc.InvalidateSummary(context.Background())
}
