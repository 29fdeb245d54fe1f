package service

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/spec-kit/ops-desk/internal/domain"
	"github.com/spec-kit/ops-desk/internal/events"
	"github.com/spec-kit/ops-desk/internal/repository"
)

var (
	adminActor = domain.Actor{ID: "admin-1", Email: "admin@example.com", Role: domain.RoleAdmin}
	staffActor = domain.Actor{ID: "staff-1", Email: "staff@example.com", Role: domain.RoleStaff}
)

func fixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}

type mockEventRepo struct{ mock.Mock }

func (m *mockEventRepo) Create(ctx context.Context, event *domain.Event) error {
	return m.Called(ctx, event).Error(0)
}

func (m *mockEventRepo) Update(ctx context.Context, event *domain.Event) error {
	return m.Called(ctx, event).Error(0)
}

func (m *mockEventRepo) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockEventRepo) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	args := m.Called(ctx, id)
	if e, ok := args.Get(0).(*domain.Event); ok {
		return e, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockEventRepo) List(ctx context.Context, filter repository.EventFilter) ([]domain.Event, error) {
	args := m.Called(ctx, filter)
	list, _ := args.Get(0).([]domain.Event)
	return list, args.Error(1)
}

func (m *mockEventRepo) ListPayoutsDue(ctx context.Context, asOf time.Time) ([]domain.Event, error) {
	args := m.Called(ctx, asOf)
	list, _ := args.Get(0).([]domain.Event)
	return list, args.Error(1)
}

func (m *mockEventRepo) Totals(ctx context.Context, asOf time.Time) (repository.EventTotals, error) {
	args := m.Called(ctx, asOf)
	return args.Get(0).(repository.EventTotals), args.Error(1)
}

type mockTicketRepo struct{ mock.Mock }

func (m *mockTicketRepo) Create(ctx context.Context, ticket *domain.Ticket) error {
	return m.Called(ctx, ticket).Error(0)
}

func (m *mockTicketRepo) Update(ctx context.Context, ticket *domain.Ticket) error {
	return m.Called(ctx, ticket).Error(0)
}

func (m *mockTicketRepo) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockTicketRepo) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	args := m.Called(ctx, id)
	if t, ok := args.Get(0).(*domain.Ticket); ok {
		return t, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockTicketRepo) GetByNumber(ctx context.Context, number string) (*domain.Ticket, error) {
	args := m.Called(ctx, number)
	if t, ok := args.Get(0).(*domain.Ticket); ok {
		return t, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockTicketRepo) List(ctx context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	args := m.Called(ctx, filter)
	list, _ := args.Get(0).([]domain.Ticket)
	return list, args.Error(1)
}

func (m *mockTicketRepo) CountByStatus(ctx context.Context) (repository.TicketStatusCounts, error) {
	args := m.Called(ctx)
	return args.Get(0).(repository.TicketStatusCounts), args.Error(1)
}

type mockAttachmentRepo struct{ mock.Mock }

func (m *mockAttachmentRepo) Create(ctx context.Context, attachment *domain.Attachment) error {
	return m.Called(ctx, attachment).Error(0)
}

func (m *mockAttachmentRepo) ListByTicket(ctx context.Context, ticketID string) ([]domain.Attachment, error) {
	args := m.Called(ctx, ticketID)
	list, _ := args.Get(0).([]domain.Attachment)
	return list, args.Error(1)
}

func (m *mockAttachmentRepo) CountByTicket(ctx context.Context, ticketID string) (int, error) {
	args := m.Called(ctx, ticketID)
	return args.Int(0), args.Error(1)
}

func (m *mockAttachmentRepo) Delete(ctx context.Context, ticketID, id string) error {
	return m.Called(ctx, ticketID, id).Error(0)
}

type mockArticleRepo struct{ mock.Mock }

func (m *mockArticleRepo) Create(ctx context.Context, article *domain.KnowledgeArticle) error {
	return m.Called(ctx, article).Error(0)
}

func (m *mockArticleRepo) Update(ctx context.Context, article *domain.KnowledgeArticle) error {
	return m.Called(ctx, article).Error(0)
}

func (m *mockArticleRepo) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockArticleRepo) GetByID(ctx context.Context, id string) (*domain.KnowledgeArticle, error) {
	args := m.Called(ctx, id)
	if a, ok := args.Get(0).(*domain.KnowledgeArticle); ok {
		return a, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockArticleRepo) List(ctx context.Context, filter repository.ArticleFilter) ([]domain.KnowledgeArticle, error) {
	args := m.Called(ctx, filter)
	list, _ := args.Get(0).([]domain.KnowledgeArticle)
	return list, args.Error(1)
}

func (m *mockArticleRepo) CountByCategory(ctx context.Context) (map[string]int64, error) {
	args := m.Called(ctx)
	counts, _ := args.Get(0).(map[string]int64)
	return counts, args.Error(1)
}

type mockAuditRepo struct{ mock.Mock }

func (m *mockAuditRepo) Append(ctx context.Context, entry *domain.AuditLogEntry) error {
	return m.Called(ctx, entry).Error(0)
}

func (m *mockAuditRepo) List(ctx context.Context, filter repository.AuditFilter) ([]domain.AuditLogEntry, error) {
	args := m.Called(ctx, filter)
	list, _ := args.Get(0).([]domain.AuditLogEntry)
	return list, args.Error(1)
}

func (m *mockAuditRepo) CountByAction(ctx context.Context) (map[domain.AuditAction]int64, error) {
	args := m.Called(ctx)
	counts, _ := args.Get(0).(map[domain.AuditAction]int64)
	return counts, args.Error(1)
}

type mockProfileRepo struct{ mock.Mock }

func (m *mockProfileRepo) Create(ctx context.Context, profile *domain.Profile) error {
	return m.Called(ctx, profile).Error(0)
}

func (m *mockProfileRepo) GetByID(ctx context.Context, id string) (*domain.Profile, error) {
	args := m.Called(ctx, id)
	if p, ok := args.Get(0).(*domain.Profile); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockProfileRepo) GetByEmail(ctx context.Context, email string) (*domain.Profile, error) {
	args := m.Called(ctx, email)
	if p, ok := args.Get(0).(*domain.Profile); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockProfileRepo) UpdateProfile(ctx context.Context, profile *domain.Profile) error {
	return m.Called(ctx, profile).Error(0)
}

func (m *mockProfileRepo) UpdatePassword(ctx context.Context, profileID, hash string) error {
	return m.Called(ctx, profileID, hash).Error(0)
}

func (m *mockProfileRepo) GetRole(ctx context.Context, profileID string) (domain.AppRole, error) {
	args := m.Called(ctx, profileID)
	return args.Get(0).(domain.AppRole), args.Error(1)
}

func (m *mockProfileRepo) SetRole(ctx context.Context, profileID string, role domain.AppRole) error {
	return m.Called(ctx, profileID, role).Error(0)
}

// recordingDispatcher keeps every published event.
type recordingDispatcher struct {
	mu        sync.Mutex
	published []events.Event
}

func (d *recordingDispatcher) Publish(_ context.Context, event events.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.published = append(d.published, event)
	return nil
}

func (d *recordingDispatcher) Subscribe(events.EventType, events.EventHandler) {}

func (d *recordingDispatcher) types() []events.EventType {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]events.EventType, 0, len(d.published))
	for _, e := range d.published {
		out = append(out, e.Type)
	}
	return out
}

type countingInvalidator struct{ calls int }

func (c *countingInvalidator) InvalidateSummary(context.Context) { c.calls++ }

// sequenceNumbers hands out the given numbers in order.
type sequenceNumbers struct {
	values []string
	next   int
}

func (s *sequenceNumbers) Next() (string, error) {
	v := s.values[s.next%len(s.values)]
	s.next++
	return v, nil
}
