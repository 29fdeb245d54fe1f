package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/ops-desk/internal/domain"
	"github.com/spec-kit/ops-desk/internal/repository"
	apperrors "github.com/spec-kit/ops-desk/pkg/util/errorutil"
)

// AuditService appends to and reads the audit log.
type AuditService struct {
	repo   repository.AuditRepository
	logger *zap.Logger
}

// NewAuditService constructs the service.
func NewAuditService(repo repository.AuditRepository, logger *zap.Logger) *AuditService {
	return &AuditService{repo: repo, logger: nopIfNil(logger)}
}

// AuditRecord is one change to be logged.
type AuditRecord struct {
	Actor      domain.Actor
	Action     domain.AuditAction
	EntityType domain.EntityType
	EntityID   string
	OldValue   map[string]any
	NewValue   map[string]any
}

// Record appends an entry. The mutation it describes has already committed,
// so failures are logged and swallowed.
func (s *AuditService) Record(ctx context.Context, rec AuditRecord) {
	if s == nil || s.repo == nil {
		return
	}
	entry := &domain.AuditLogEntry{
		Action:     rec.Action,
		EntityType: rec.EntityType,
		EntityID:   rec.EntityID,
		OldValue:   rec.OldValue,
		NewValue:   rec.NewValue,
	}
	if rec.Actor.ID != "" {
		id, email := rec.Actor.ID, rec.Actor.Email
		entry.ActorID = &id
		entry.ActorEmail = &email
	}
	if err := s.repo.Append(ctx, entry); err != nil {
		s.logger.Error("audit append failed",
			zap.String("action", string(rec.Action)),
			zap.String("entity_type", string(rec.EntityType)),
			zap.String("entity_id", rec.EntityID),
			zap.Error(err))
	}
}

// AuditStats summarizes the log by action.
type AuditStats struct {
	Total    int64                        `json:"total"`
	ByAction map[domain.AuditAction]int64 `json:"by_action"`
}

// List returns entries newest first.
func (s *AuditService) List(ctx context.Context, filter repository.AuditFilter) ([]domain.AuditLogEntry, error) {
	entries, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, apperrors.NewRemoteFailure(err)
	}
	return entries, nil
}

// Stats counts entries per action.
func (s *AuditService) Stats(ctx context.Context) (AuditStats, error) {
	counts, err := s.repo.CountByAction(ctx)
	if err != nil {
		return AuditStats{}, apperrors.NewRemoteFailure(err)
	}
	stats := AuditStats{ByAction: counts}
	for _, n := range counts {
		stats.Total += n
	}
	return stats, nil
}
