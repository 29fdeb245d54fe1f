package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/ops-desk/internal/domain"
)

func TestAuditRecordSystemActor(t *testing.T) {
	repo := &mockAuditRepo{}
	repo.On("Append", mock.Anything, mock.MatchedBy(func(e *domain.AuditLogEntry) bool {
		return e.ActorID == nil && e.ActorEmail == nil && e.EntityID == "ev-1"
	})).Return(nil)

	NewAuditService(repo, nil).Record(context.Background(), AuditRecord{
		Action:     domain.AuditPayoutExecuted,
		EntityType: domain.EntityEvent,
		EntityID:   "ev-1",
	})
	repo.AssertExpectations(t)
}

func TestAuditStatsTotals(t *testing.T) {
	repo := &mockAuditRepo{}
	repo.On("CountByAction", mock.Anything).Return(map[domain.AuditAction]int64{
		domain.AuditTicketCreated: 4,
		domain.AuditEventUpdated:  2,
	}, nil)

	stats, err := NewAuditService(repo, nil).Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(6), stats.Total)
}

func TestNilAuditServiceIsNoop(t *testing.T) {
	var svc *AuditService
	assert.NotPanics(t, func() {
		svc.Record(context.Background(), AuditRecord{Action: domain.AuditTicketCreated})
	})
}
