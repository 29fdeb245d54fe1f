package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/ops-desk/internal/domain"
	"github.com/spec-kit/ops-desk/internal/repository"
	apperrors "github.com/spec-kit/ops-desk/pkg/util/errorutil"
)

// SummaryStore caches dashboard read models.
type SummaryStore interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any) error
	Invalidate(ctx context.Context, keys ...string) error
}

// DashboardSummary is the landing page read model.
type DashboardSummary struct {
	AsOf        string                 `json:"as_of"`
	Tickets     TicketStats            `json:"tickets"`
	Events      repository.EventTotals `json:"events"`
	GeneratedAt time.Time              `json:"generated_at"`
}

// DashboardService aggregates ticket and event figures.
type DashboardService struct {
	tickets repository.TicketRepository
	events  repository.EventRepository
	cache   SummaryStore
	logger  *zap.Logger
	clock   Clock
}

// DashboardDependencies bundles collaborators.
type DashboardDependencies struct {
	TicketRepo repository.TicketRepository
	EventRepo  repository.EventRepository
	Cache      SummaryStore
	Logger     *zap.Logger
	Clock      Clock
}

// NewDashboardService constructs the service.
func NewDashboardService(deps DashboardDependencies) *DashboardService {
	return &DashboardService{
		tickets: deps.TicketRepo,
		events:  deps.EventRepo,
		cache:   deps.Cache,
		logger:  nopIfNil(deps.Logger),
		clock:   deps.Clock,
	}
}

func summaryKey(day time.Time) string {
	return "dashboard:" + domain.FormatDate(day)
}

// Summary returns the dashboard figures, served from cache when fresh.
func (s *DashboardService) Summary(ctx context.Context) (DashboardSummary, error) {
	now := s.clock.now()
	today := domain.DateOf(now)
	key := summaryKey(today)

	var cached DashboardSummary
	if s.cache != nil {
		hit, err := s.cache.Get(ctx, key, &cached)
		if err != nil {
			s.logger.Warn("summary cache read failed", zap.Error(err))
		} else if hit {
			return cached, nil
		}
	}

	counts, err := s.tickets.CountByStatus(ctx)
	if err != nil {
		return DashboardSummary{}, apperrors.NewRemoteFailure(err)
	}
	totals, err := s.events.Totals(ctx, today)
	if err != nil {
		return DashboardSummary{}, apperrors.NewRemoteFailure(err)
	}
	summary := DashboardSummary{
		AsOf:        domain.FormatDate(today),
		Tickets:     ticketStatsFrom(counts),
		Events:      totals,
		GeneratedAt: now,
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, summary); err != nil {
			s.logger.Warn("summary cache write failed", zap.Error(err))
		}
	}
	return summary, nil
}

// InvalidateSummary drops today's cached summary.
func (s *DashboardService) InvalidateSummary(ctx context.Context) {
	if s == nil || s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, summaryKey(domain.DateOf(s.clock.now()))); err != nil {
		s.logger.Warn("summary cache invalidation failed", zap.Error(err))
	}
}
