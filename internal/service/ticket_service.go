package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/ops-desk/internal/auth"
	"github.com/spec-kit/ops-desk/internal/backlog"
	"github.com/spec-kit/ops-desk/internal/config"
	"github.com/spec-kit/ops-desk/internal/domain"
	"github.com/spec-kit/ops-desk/internal/events"
	"github.com/spec-kit/ops-desk/internal/repository"
	"github.com/spec-kit/ops-desk/internal/validation"
	apperrors "github.com/spec-kit/ops-desk/pkg/util/errorutil"
)

// NumberGenerator yields candidate ticket numbers.
type NumberGenerator interface {
	Next() (string, error)
}

// ProfileFinder resolves assignees.
type ProfileFinder interface {
	GetByID(ctx context.Context, id string) (*domain.Profile, error)
}

// TicketService coordinates ticket workflows.
type TicketService struct {
	tickets     repository.TicketRepository
	attachments repository.AttachmentRepository
	profiles    ProfileFinder
	numbers     NumberGenerator
	audit       *AuditService
	dispatcher  events.Dispatcher
	summary     SummaryInvalidator
	logger      *zap.Logger
	clock       Clock
	cfg         config.TicketsConfig
}

// TicketDependencies bundles collaborators for ticket service.
type TicketDependencies struct {
	TicketRepo     repository.TicketRepository
	AttachmentRepo repository.AttachmentRepository
	Profiles       ProfileFinder
	Numbers        NumberGenerator
	Audit          *AuditService
	Dispatcher     events.Dispatcher
	Summary        SummaryInvalidator
	Logger         *zap.Logger
	Clock          Clock
	Config         config.TicketsConfig
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	cfg := deps.Config
	if cfg.NumberAttempts <= 0 {
		cfg.NumberAttempts = 5
	}
	if cfg.MaxAttachments <= 0 {
		cfg.MaxAttachments = 5
	}
	if cfg.MaxAttachmentBytes <= 0 {
		cfg.MaxAttachmentBytes = 10 * 1024 * 1024
	}
	numbers := deps.Numbers
	if numbers == nil {
		numbers = NewTicketNumberGenerator()
	}
	return &TicketService{
		tickets:     deps.TicketRepo,
		attachments: deps.AttachmentRepo,
		profiles:    deps.Profiles,
		numbers:     numbers,
		audit:       deps.Audit,
		dispatcher:  deps.Dispatcher,
		summary:     deps.Summary,
		logger:      nopIfNil(deps.Logger),
		clock:       deps.Clock,
		cfg:         cfg,
	}
}

// AttachmentInput describes an uploaded file reference.
type AttachmentInput struct {
	FileName  string `json:"file_name" validate:"required,max=255"`
	FileURL   string `json:"file_url" validate:"required,url"`
	FileType  string `json:"file_type" validate:"max=100"`
	SizeBytes int64  `json:"size_bytes" validate:"gte=0"`
}

// TicketCreateInput is the payload for filing a ticket. Priority defaults to Medium.
type TicketCreateInput struct {
	Subject       string                `json:"subject" validate:"required,max=200"`
	Type          domain.TicketType     `json:"type" validate:"required,ticket_type"`
	Category      domain.TicketCategory `json:"category" validate:"required"`
	Priority      domain.TicketPriority `json:"priority" validate:"required,ticket_priority"`
	Platform      *domain.Platform      `json:"platform" validate:"omitempty,platform"`
	Description   *string               `json:"description" validate:"omitempty,max=2000"`
	MoveToBacklog bool                  `json:"move_to_backlog"`
	Attachments   []AttachmentInput     `json:"attachments" validate:"dive"`
}

// TicketUpdateInput replaces a ticket's descriptive fields.
type TicketUpdateInput struct {
	Subject     string                `json:"subject" validate:"required,max=200"`
	Type        domain.TicketType     `json:"type" validate:"required,ticket_type"`
	Category    domain.TicketCategory `json:"category" validate:"required"`
	Priority    domain.TicketPriority `json:"priority" validate:"required,ticket_priority"`
	Platform    *domain.Platform      `json:"platform" validate:"omitempty,platform"`
	Description *string               `json:"description" validate:"omitempty,max=2000"`
}

type ticketStatusInput struct {
	Status domain.TicketStatus `json:"status" validate:"required,ticket_status"`
}

type ticketAssignInput struct {
	AssigneeID *string `json:"assignee_id" validate:"omitempty,uuid"`
}

func init() {
	validation.RegisterStructRule(ticketCategoryRule, TicketCreateInput{}, TicketUpdateInput{})
}

// ticketCategoryRule rejects a category outside the selected type's list.
func ticketCategoryRule(sl validator.StructLevel) {
	var (
		kind     domain.TicketType
		category domain.TicketCategory
	)
	switch in := sl.Current().Interface().(type) {
	case TicketCreateInput:
		kind, category = in.Type, in.Category
	case TicketUpdateInput:
		kind, category = in.Type, in.Category
	default:
		return
	}
	if category == "" || !kind.Valid() {
		return
	}
	if !category.BelongsTo(kind) {
		sl.ReportError(category, "category", "Category", "category_for_type", "")
	}
}

// TicketStats drives the service desk header cards.
type TicketStats struct {
	Open                   int64                         `json:"open"`
	InProgress             int64                         `json:"in_progress"`
	HighPriorityUnresolved int64                         `json:"high_priority_unresolved"`
	Total                  int64                         `json:"total"`
	ByStatus               map[domain.TicketStatus]int64 `json:"by_status"`
}

// Create files a new ticket with status Open and a unique number.
func (s *TicketService) Create(ctx context.Context, actor domain.Actor, in TicketCreateInput) (*domain.Ticket, error) {
	if err := auth.Authorize(actor, domain.EntityTicket, domain.OpCreate); err != nil {
		return nil, err
	}
	in.Subject = strings.TrimSpace(in.Subject)
	in.Description = trimmedPtr(in.Description)
	if in.Priority == "" {
		in.Priority = domain.TicketPriorityMedium
	}
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	if len(in.Attachments) > s.cfg.MaxAttachments {
		return nil, apperrors.NewFieldError("attachments", fmt.Sprintf("at most %d attachments are allowed", s.cfg.MaxAttachments))
	}
	for i, att := range in.Attachments {
		if err := s.checkAttachmentSize(fmt.Sprintf("attachments[%d].size_bytes", i), att.SizeBytes); err != nil {
			return nil, err
		}
	}

	ticket := &domain.Ticket{
		Subject:       in.Subject,
		Type:          in.Type,
		Category:      in.Category,
		Priority:      in.Priority,
		Status:        domain.TicketStatusOpen,
		Platform:      in.Platform,
		Description:   in.Description,
		MoveToBacklog: in.MoveToBacklog,
	}
	if actor.ID != "" {
		createdBy := actor.ID
		ticket.CreatedBy = &createdBy
	}
	for _, att := range in.Attachments {
		ticket.Attachments = append(ticket.Attachments, s.newAttachment(actor, att))
	}

	if err := s.insertWithUniqueNumber(ctx, ticket); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, AuditRecord{
		Actor:      actor,
		Action:     domain.AuditTicketCreated,
		EntityType: domain.EntityTicket,
		EntityID:   ticket.ID,
		NewValue:   ticketSnapshot(ticket),
	})
	s.afterMutation(ctx, events.New(events.EventTicketCreated, domain.EntityTicket, ticket.ID, actor, events.TicketCreatedPayload{
		Number:   ticket.Number,
		Type:     ticket.Type,
		Category: ticket.Category,
		Priority: ticket.Priority,
		Subject:  ticket.Subject,
	}))
	return ticket, nil
}

func (s *TicketService) insertWithUniqueNumber(ctx context.Context, ticket *domain.Ticket) error {
	for attempt := 1; attempt <= s.cfg.NumberAttempts; attempt++ {
		number, err := s.numbers.Next()
		if err != nil {
			return apperrors.NewInternalError(err)
		}
		ticket.Number = number
		err = s.tickets.Create(ctx, ticket)
		if err == nil {
			return nil
		}
		if !errors.Is(err, repository.ErrTicketNumberTaken) {
			return apperrors.NewRemoteFailure(err)
		}
		s.logger.Warn("ticket number collision", zap.String("ticket_number", number), zap.Int("attempt", attempt))
		ticket.ID = ""
	}
	return apperrors.NewConflict("could not allocate a unique ticket number", map[string]any{
		"attempts": s.cfg.NumberAttempts,
	})
}

// Update replaces subject, type, category, priority, platform and description.
func (s *TicketService) Update(ctx context.Context, actor domain.Actor, id string, in TicketUpdateInput) (*domain.Ticket, error) {
	if err := auth.Authorize(actor, domain.EntityTicket, domain.OpUpdate); err != nil {
		return nil, err
	}
	in.Subject = strings.TrimSpace(in.Subject)
	in.Description = trimmedPtr(in.Description)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	ticket, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	before := ticketSnapshot(ticket)

	ticket.Subject = in.Subject
	ticket.Type = in.Type
	ticket.Category = in.Category
	ticket.Priority = in.Priority
	ticket.Platform = in.Platform
	ticket.Description = in.Description
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.FromRepository(err, "ticket", id)
	}

	s.audit.Record(ctx, AuditRecord{
		Actor:      actor,
		Action:     domain.AuditTicketUpdated,
		EntityType: domain.EntityTicket,
		EntityID:   ticket.ID,
		OldValue:   before,
		NewValue:   ticketSnapshot(ticket),
	})
	invalidate(ctx, s.summary)
	return ticket, nil
}

// allowedTransitions applies only when strict transitions are enabled.
var allowedTransitions = map[domain.TicketStatus][]domain.TicketStatus{
	domain.TicketStatusOpen:       {domain.TicketStatusInProgress},
	domain.TicketStatusInProgress: {domain.TicketStatusWaiting, domain.TicketStatusResolved, domain.TicketStatusClosed},
	domain.TicketStatusWaiting:    {domain.TicketStatusInProgress, domain.TicketStatusResolved, domain.TicketStatusClosed},
	domain.TicketStatusResolved:   {domain.TicketStatusClosed, domain.TicketStatusOpen},
	domain.TicketStatusClosed:     {domain.TicketStatusOpen},
}

func isValidTransition(current, next domain.TicketStatus) bool {
	for _, candidate := range allowedTransitions[current] {
		if candidate == next {
			return true
		}
	}
	return false
}

// UpdateStatus moves a ticket to status. Entering Resolved or Closed stamps the
// resolution time, moving between the two keeps it, and any other status clears it.
func (s *TicketService) UpdateStatus(ctx context.Context, actor domain.Actor, id string, status domain.TicketStatus) (*domain.Ticket, error) {
	if err := auth.Authorize(actor, domain.EntityTicket, domain.OpUpdate); err != nil {
		return nil, err
	}
	if err := validation.Struct(ticketStatusInput{Status: status}); err != nil {
		return nil, err
	}
	ticket, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	old := ticket.Status
	if old == status {
		return ticket, nil
	}
	if s.cfg.StrictTransitions && !isValidTransition(old, status) {
		return nil, apperrors.NewFieldError("status", fmt.Sprintf("cannot move from %s to %s", old, status))
	}

	ticket.Status = status
	if status.Done() {
		if !old.Done() || ticket.ResolvedAt == nil {
			now := s.clock.now()
			ticket.ResolvedAt = &now
		}
	} else {
		ticket.ResolvedAt = nil
	}
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.FromRepository(err, "ticket", id)
	}

	s.audit.Record(ctx, AuditRecord{
		Actor:      actor,
		Action:     domain.AuditStatusChanged,
		EntityType: domain.EntityTicket,
		EntityID:   ticket.ID,
		OldValue:   map[string]any{"status": string(old)},
		NewValue:   map[string]any{"status": string(status)},
	})
	if status == domain.TicketStatusResolved {
		s.audit.Record(ctx, AuditRecord{
			Actor:      actor,
			Action:     domain.AuditTicketResolved,
			EntityType: domain.EntityTicket,
			EntityID:   ticket.ID,
			NewValue:   map[string]any{"ticket_number": ticket.Number, "resolved_at": ticket.ResolvedAt},
		})
	}
	s.afterMutation(ctx, events.New(events.EventTicketStatusChanged, domain.EntityTicket, ticket.ID, actor, events.TicketStatusChangedPayload{
		Number:    ticket.Number,
		OldStatus: old,
		NewStatus: status,
	}))
	return ticket, nil
}

// Assign sets or clears the assignee.
func (s *TicketService) Assign(ctx context.Context, actor domain.Actor, id string, assigneeID *string) (*domain.Ticket, error) {
	if err := auth.Authorize(actor, domain.EntityTicket, domain.OpUpdate); err != nil {
		return nil, err
	}
	assigneeID = trimmedPtr(assigneeID)
	if err := validation.Struct(ticketAssignInput{AssigneeID: assigneeID}); err != nil {
		return nil, err
	}
	if assigneeID != nil && s.profiles != nil {
		if _, err := s.profiles.GetByID(ctx, *assigneeID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, apperrors.NewFieldError("assignee_id", "unknown profile")
			}
			return nil, apperrors.NewRemoteFailure(err)
		}
	}
	ticket, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	var before any
	if ticket.AssigneeID != nil {
		before = *ticket.AssigneeID
	}
	ticket.AssigneeID = assigneeID
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.FromRepository(err, "ticket", id)
	}

	var after any
	if assigneeID != nil {
		after = *assigneeID
	}
	s.audit.Record(ctx, AuditRecord{
		Actor:      actor,
		Action:     domain.AuditTicketAssigned,
		EntityType: domain.EntityTicket,
		EntityID:   ticket.ID,
		OldValue:   map[string]any{"assignee_id": before},
		NewValue:   map[string]any{"assignee_id": after},
	})
	s.afterMutation(ctx, events.New(events.EventTicketAssigned, domain.EntityTicket, ticket.ID, actor, events.TicketAssignedPayload{
		Number:     ticket.Number,
		AssigneeID: assigneeID,
	}))
	return ticket, nil
}

// SetBacklog flags a ticket for the development backlog.
func (s *TicketService) SetBacklog(ctx context.Context, actor domain.Actor, id string, backlogged bool) (*domain.Ticket, error) {
	if err := auth.Authorize(actor, domain.EntityTicket, domain.OpUpdate); err != nil {
		return nil, err
	}
	ticket, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	old := ticket.MoveToBacklog
	if old == backlogged {
		return ticket, nil
	}
	ticket.MoveToBacklog = backlogged
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.FromRepository(err, "ticket", id)
	}
	s.audit.Record(ctx, AuditRecord{
		Actor:      actor,
		Action:     domain.AuditTicketUpdated,
		EntityType: domain.EntityTicket,
		EntityID:   ticket.ID,
		OldValue:   map[string]any{"move_to_backlog": old},
		NewValue:   map[string]any{"move_to_backlog": backlogged},
	})
	return ticket, nil
}

// AddAttachment attaches a file reference to an existing ticket.
func (s *TicketService) AddAttachment(ctx context.Context, actor domain.Actor, ticketID string, in AttachmentInput) (*domain.Attachment, error) {
	if err := auth.Authorize(actor, domain.EntityTicket, domain.OpUpdate); err != nil {
		return nil, err
	}
	in.FileName = strings.TrimSpace(in.FileName)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	if err := s.checkAttachmentSize("size_bytes", in.SizeBytes); err != nil {
		return nil, err
	}
	ticket, err := s.get(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	count, err := s.attachments.CountByTicket(ctx, ticket.ID)
	if err != nil {
		return nil, apperrors.NewRemoteFailure(err)
	}
	if count >= s.cfg.MaxAttachments {
		return nil, apperrors.NewFieldError("attachments", fmt.Sprintf("at most %d attachments are allowed", s.cfg.MaxAttachments))
	}

	attachment := s.newAttachment(actor, in)
	attachment.TicketID = ticket.ID
	if err := s.attachments.Create(ctx, &attachment); err != nil {
		return nil, apperrors.NewRemoteFailure(err)
	}
	s.audit.Record(ctx, AuditRecord{
		Actor:      actor,
		Action:     domain.AuditTicketUpdated,
		EntityType: domain.EntityTicket,
		EntityID:   ticket.ID,
		NewValue:   map[string]any{"attachment_added": attachment.FileName},
	})
	return &attachment, nil
}

// DeleteAttachment removes one attachment from a ticket.
func (s *TicketService) DeleteAttachment(ctx context.Context, actor domain.Actor, ticketID, attachmentID string) error {
	if err := auth.Authorize(actor, domain.EntityTicket, domain.OpUpdate); err != nil {
		return err
	}
	if err := s.attachments.Delete(ctx, ticketID, attachmentID); err != nil {
		return apperrors.FromRepository(err, "attachment", attachmentID)
	}
	s.audit.Record(ctx, AuditRecord{
		Actor:      actor,
		Action:     domain.AuditTicketUpdated,
		EntityType: domain.EntityTicket,
		EntityID:   ticketID,
		OldValue:   map[string]any{"attachment_removed": attachmentID},
	})
	return nil
}

// Delete removes a ticket together with its attachments.
func (s *TicketService) Delete(ctx context.Context, actor domain.Actor, id string) error {
	if err := auth.Authorize(actor, domain.EntityTicket, domain.OpDelete); err != nil {
		return err
	}
	ticket, err := s.get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.tickets.Delete(ctx, id); err != nil {
		return apperrors.FromRepository(err, "ticket", id)
	}
	s.audit.Record(ctx, AuditRecord{
		Actor:      actor,
		Action:     domain.AuditTicketDeleted,
		EntityType: domain.EntityTicket,
		EntityID:   id,
		OldValue:   ticketSnapshot(ticket),
	})
	s.afterMutation(ctx, events.New(events.EventTicketDeleted, domain.EntityTicket, id, actor, nil))
	return nil
}

// Get returns the ticket with its attachments.
func (s *TicketService) Get(ctx context.Context, id string) (*domain.Ticket, error) {
	ticket, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	attachments, err := s.attachments.ListByTicket(ctx, ticket.ID)
	if err != nil {
		return nil, apperrors.NewRemoteFailure(err)
	}
	ticket.Attachments = attachments
	return ticket, nil
}

// List returns tickets matching filter, newest first.
func (s *TicketService) List(ctx context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	list, err := s.tickets.List(ctx, filter)
	if err != nil {
		return nil, apperrors.NewRemoteFailure(err)
	}
	return list, nil
}

// Stats counts tickets by status.
func (s *TicketService) Stats(ctx context.Context) (TicketStats, error) {
	counts, err := s.tickets.CountByStatus(ctx)
	if err != nil {
		return TicketStats{}, apperrors.NewRemoteFailure(err)
	}
	return ticketStatsFrom(counts), nil
}

func ticketStatsFrom(counts repository.TicketStatusCounts) TicketStats {
	return TicketStats{
		Open:                   counts.ByStatus[domain.TicketStatusOpen],
		InProgress:             counts.ByStatus[domain.TicketStatusInProgress],
		HighPriorityUnresolved: counts.HighPriorityUnsolved,
		Total:                  counts.Total,
		ByStatus:               counts.ByStatus,
	}
}

// Categories lists the allowed categories per ticket type.
func (s *TicketService) Categories() map[domain.TicketType][]domain.TicketCategory {
	return map[domain.TicketType][]domain.TicketCategory{
		domain.TicketTypeB2C: domain.CategoriesFor(domain.TicketTypeB2C),
		domain.TicketTypeB2B: domain.CategoriesFor(domain.TicketTypeB2B),
	}
}

// BacklogMarkdown renders a ticket as a backlog issue.
func (s *TicketService) BacklogMarkdown(ctx context.Context, id string, platform *domain.Platform, extra string) (string, error) {
	if platform != nil && !platform.Valid() {
		return "", apperrors.NewFieldError("platform", "must be one of: iOS, Android, Web")
	}
	ticket, err := s.get(ctx, id)
	if err != nil {
		return "", err
	}
	return backlog.Markdown(ticket, platform, extra), nil
}

func (s *TicketService) get(ctx context.Context, id string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.FromRepository(err, "ticket", id)
	}
	return ticket, nil
}

func (s *TicketService) checkAttachmentSize(field string, size int64) error {
	if size > s.cfg.MaxAttachmentBytes {
		return apperrors.NewFieldError(field, fmt.Sprintf("must be at most %d bytes", s.cfg.MaxAttachmentBytes))
	}
	return nil
}

func (s *TicketService) newAttachment(actor domain.Actor, in AttachmentInput) domain.Attachment {
	attachment := domain.Attachment{
		FileName:  strings.TrimSpace(in.FileName),
		FileURL:   in.FileURL,
		FileType:  in.FileType,
		SizeBytes: in.SizeBytes,
	}
	if actor.ID != "" {
		uploadedBy := actor.ID
		attachment.UploadedBy = &uploadedBy
	}
	return attachment
}

func (s *TicketService) afterMutation(ctx context.Context, event events.Event) {
	publish(ctx, s.dispatcher, s.logger, event)
	invalidate(ctx, s.summary)
}
