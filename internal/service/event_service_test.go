package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/ops-desk/internal/domain"
	"github.com/spec-kit/ops-desk/internal/events"
	apperrors "github.com/spec-kit/ops-desk/pkg/util/errorutil"
)

type eventFixture struct {
	repo        *mockEventRepo
	audit       *mockAuditRepo
	dispatcher  *recordingDispatcher
	invalidator *countingInvalidator
	svc         *EventService
}

func newEventFixture() *eventFixture {
	f := &eventFixture{
		repo:        &mockEventRepo{},
		audit:       &mockAuditRepo{},
		dispatcher:  &recordingDispatcher{},
		invalidator: &countingInvalidator{},
	}
	f.svc = NewEventService(EventDependencies{
		EventRepo:  f.repo,
		Audit:      NewAuditService(f.audit, nil),
		Dispatcher: f.dispatcher,
		Summary:    f.invalidator,
	})
	return f
}

func validEventInput() EventInput {
	return EventInput{
		Name:       "  Summer Fest ",
		Gateway:    domain.GatewayGroovooStripe,
		EventDate:  "2025-02-14",
		GrossSale:  domain.Money(4500000),
		ServiceFee: domain.Money(270000),
		GatewayFee: domain.Money(90000),
	}
}

func TestEventCreateDerivesPayoutAndFinancials(t *testing.T) {
	f := newEventFixture()
	f.repo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Event")).Return(nil)
	f.audit.On("Append", mock.Anything, mock.MatchedBy(func(e *domain.AuditLogEntry) bool {
		return e.Action == domain.AuditEventCreated && *e.ActorID == adminActor.ID
	})).Return(nil)

	event, err := f.svc.Create(context.Background(), adminActor, validEventInput())
	require.NoError(t, err)

	assert.Equal(t, "Summer Fest", event.Name)
	assert.Equal(t, domain.EventStatusAvailable, event.Status)
	assert.Equal(t, "2025-02-19", domain.FormatDate(event.PayoutDate))
	assert.Equal(t, domain.Money(4140000), event.NetSale)
	assert.Equal(t, event.NetSale, event.TotalPayout)
	assert.Equal(t, []events.EventType{events.EventEventCreated}, f.dispatcher.types())
	assert.Equal(t, 1, f.invalidator.calls)
	f.repo.AssertExpectations(t)
	f.audit.AssertExpectations(t)
}

func TestEventCreateForbiddenForStaff(t *testing.T) {
	f := newEventFixture()

	_, err := f.svc.Create(context.Background(), staffActor, validEventInput())
	assert.True(t, apperrors.IsCode(err, apperrors.CodeForbidden))
	f.repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	f.audit.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
}

func TestEventCreateRejectsInvalidInput(t *testing.T) {
	f := newEventFixture()
	in := validEventInput()
	in.Name = "   "
	in.Gateway = "Cash"
	in.EventDate = "2025-02-30"
	in.GrossSale = domain.Money(-1)

	_, err := f.svc.Create(context.Background(), adminActor, in)
	domainErr := apperrors.ToDomainError(err)
	require.Equal(t, apperrors.CodeValidation, domainErr.Code)
	for _, field := range []string{"name", "gateway", "event_date", "gross_sale"} {
		assert.Contains(t, domainErr.Details, field)
	}
	f.repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestEventUpdateRederivesPayoutDate(t *testing.T) {
	f := newEventFixture()
	existing := &domain.Event{ID: "ev-1", Name: "Old", Status: domain.EventStatusAvailable}
	f.repo.On("GetByID", mock.Anything, "ev-1").Return(existing, nil)
	f.repo.On("Update", mock.Anything, existing).Return(nil)
	f.audit.On("Append", mock.Anything, mock.Anything).Return(nil)

	in := validEventInput()
	in.EventDate = "2025-12-31"
	event, err := f.svc.Update(context.Background(), adminActor, "ev-1", in)
	require.NoError(t, err)
	assert.Equal(t, "2026-01-05", domain.FormatDate(event.PayoutDate))
}

func TestEventUpdateNotFound(t *testing.T) {
	f := newEventFixture()
	f.repo.On("GetByID", mock.Anything, "missing").Return(nil, apperrors.NewNotFound("event", nil))

	_, err := f.svc.Update(context.Background(), adminActor, "missing", validEventInput())
	assert.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))
}

func TestSetPayoutExecutedIsIdempotent(t *testing.T) {
	f := newEventFixture()
	existing := &domain.Event{ID: "ev-1", PayoutExecuted: true}
	f.repo.On("GetByID", mock.Anything, "ev-1").Return(existing, nil)

	event, err := f.svc.SetPayoutExecuted(context.Background(), adminActor, "ev-1", true)
	require.NoError(t, err)
	assert.True(t, event.PayoutExecuted)
	f.repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	assert.Empty(t, f.dispatcher.types())
}

func TestSetFeesReceivedAudits(t *testing.T) {
	f := newEventFixture()
	existing := &domain.Event{ID: "ev-1"}
	f.repo.On("GetByID", mock.Anything, "ev-1").Return(existing, nil)
	f.repo.On("Update", mock.Anything, existing).Return(nil)
	f.audit.On("Append", mock.Anything, mock.MatchedBy(func(e *domain.AuditLogEntry) bool {
		return e.Action == domain.AuditFeesReceived && e.NewValue["fees_received"] == true
	})).Return(nil)

	event, err := f.svc.SetFeesReceived(context.Background(), adminActor, "ev-1", true)
	require.NoError(t, err)
	assert.True(t, event.FeesReceived)
	assert.Equal(t, []events.EventType{events.EventFeesReceived}, f.dispatcher.types())
	f.audit.AssertExpectations(t)
}

func TestEventMutationSurvivesAuditFailure(t *testing.T) {
	f := newEventFixture()
	f.repo.On("GetByID", mock.Anything, "ev-1").Return(&domain.Event{ID: "ev-1"}, nil)
	f.repo.On("Delete", mock.Anything, "ev-1").Return(nil)
	f.audit.On("Append", mock.Anything, mock.Anything).Return(errors.New("audit table locked"))

	err := f.svc.Delete(context.Background(), adminActor, "ev-1")
	require.NoError(t, err)
	assert.Equal(t, []events.EventType{events.EventEventDeleted}, f.dispatcher.types())
}

func TestEventPreview(t *testing.T) {
	svc := NewEventService(EventDependencies{})
	preview, err := svc.Preview(PreviewInput{
		EventDate:  "2025-02-15",
		GrossSale:  domain.Money(1000),
		ServiceFee: domain.Money(800),
		GatewayFee: domain.Money(500),
	})
	require.NoError(t, err)
	assert.Equal(t, "2025-02-19", preview.PayoutDate)
	assert.Equal(t, domain.Money(-300), preview.NetSale)
	assert.Equal(t, domain.Money(-300), preview.TotalPayout)
}
