package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/ops-desk/internal/domain"
)

// ErrTicketNumberTaken is returned by Create when the generated ticket number already exists.
var ErrTicketNumberTaken = errors.New("ticket number already taken")

const ticketNumberConstraint = "tickets_ticket_number_key"

// TicketFilter captures dashboard search parameters.
type TicketFilter struct {
	Search     string
	Type       *domain.TicketType
	Priority   *domain.TicketPriority
	Status     *domain.TicketStatus
	Backlog    *bool
	AssigneeID *string
	Page
}

// TicketStatusCounts holds per-status totals plus unresolved high priority tickets.
type TicketStatusCounts struct {
	ByStatus             map[domain.TicketStatus]int64 `json:"by_status"`
	HighPriorityUnsolved int64                         `json:"high_priority_unresolved"`
	Total                int64                         `json:"total"`
}

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	Update(ctx context.Context, ticket *domain.Ticket) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	GetByNumber(ctx context.Context, number string) (*domain.Ticket, error)
	List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
	CountByStatus(ctx context.Context) (TicketStatusCounts, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

const ticketColumns = `id, ticket_number, subject, type, category, priority, status, platform, description,
               assignee_id, resolved_at, move_to_backlog, created_by, created_at, updated_at`

// Create inserts the ticket and its attachments in one transaction.
func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	if ticket.ID == "" {
		ticket.ID = uuid.NewString()
	}
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	const query = `
        INSERT INTO tickets (id, ticket_number, subject, type, category, priority, status, platform, description,
            assignee_id, resolved_at, move_to_backlog, created_by)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
        RETURNING created_at, updated_at`
	err = tx.QueryRow(ctx, query,
		ticket.ID,
		ticket.Number,
		ticket.Subject,
		string(ticket.Type),
		string(ticket.Category),
		string(ticket.Priority),
		string(ticket.Status),
		platformArg(ticket.Platform),
		ticket.Description,
		ticket.AssigneeID,
		ticket.ResolvedAt,
		ticket.MoveToBacklog,
		ticket.CreatedBy,
	).Scan(&ticket.CreatedAt, &ticket.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err, ticketNumberConstraint) {
			return ErrTicketNumberTaken
		}
		return err
	}

	for i := range ticket.Attachments {
		ticket.Attachments[i].TicketID = ticket.ID
		if err := insertAttachment(ctx, tx, &ticket.Attachments[i]); err != nil {
			return fmt.Errorf("insert attachment %s: %w", ticket.Attachments[i].FileName, err)
		}
	}
	return tx.Commit(ctx)
}

func (r *ticketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        UPDATE tickets SET subject=$1, type=$2, category=$3, priority=$4, status=$5, platform=$6, description=$7,
            assignee_id=$8, resolved_at=$9, move_to_backlog=$10, updated_at=NOW()
        WHERE id=$11
        RETURNING updated_at`
	return r.pool.QueryRow(ctx, query,
		ticket.Subject,
		string(ticket.Type),
		string(ticket.Category),
		string(ticket.Priority),
		string(ticket.Status),
		platformArg(ticket.Platform),
		ticket.Description,
		ticket.AssigneeID,
		ticket.ResolvedAt,
		ticket.MoveToBacklog,
		ticket.ID,
	).Scan(&ticket.UpdatedAt)
}

// Delete removes the ticket; attachments cascade.
func (r *ticketRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM tickets WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	return scanTicket(r.pool.QueryRow(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE id=$1`, id))
}

func (r *ticketRepository) GetByNumber(ctx context.Context, number string) (*domain.Ticket, error) {
	return scanTicket(r.pool.QueryRow(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE ticket_number=$1`, number))
}

func (r *ticketRepository) List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	var w where
	w.search(filter.Search, "subject", "ticket_number")
	if filter.Type != nil {
		w.add("type=$%d", string(*filter.Type))
	}
	if filter.Priority != nil {
		w.add("priority=$%d", string(*filter.Priority))
	}
	if filter.Status != nil {
		w.add("status=$%d", string(*filter.Status))
	}
	if filter.Backlog != nil {
		w.add("move_to_backlog=$%d", *filter.Backlog)
	}
	if filter.AssigneeID != nil {
		w.add("assignee_id=$%d", *filter.AssigneeID)
	}

	query := `SELECT ` + ticketColumns + ` FROM tickets` + w.String() +
		` ORDER BY created_at DESC ` + filter.Page.clause()
	rows, err := r.pool.Query(ctx, query, w.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.Ticket{}
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *ticket)
	}
	return result, rows.Err()
}

func (r *ticketRepository) CountByStatus(ctx context.Context) (TicketStatusCounts, error) {
	counts := TicketStatusCounts{ByStatus: make(map[domain.TicketStatus]int64)}
	for _, status := range domain.TicketStatuses() {
		counts.ByStatus[status] = 0
	}

	rows, err := r.pool.Query(ctx, `SELECT status, COUNT(*) FROM tickets GROUP BY status`)
	if err != nil {
		return counts, err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			status string
			n      int64
		)
		if err := rows.Scan(&status, &n); err != nil {
			return counts, err
		}
		counts.ByStatus[domain.TicketStatus(status)] = n
		counts.Total += n
	}
	if err := rows.Err(); err != nil {
		return counts, err
	}

	const highQuery = `SELECT COUNT(*) FROM tickets WHERE priority=$1 AND status NOT IN ($2, $3)`
	err = r.pool.QueryRow(ctx, highQuery,
		string(domain.TicketPriorityHigh),
		string(domain.TicketStatusResolved),
		string(domain.TicketStatusClosed),
	).Scan(&counts.HighPriorityUnsolved)
	return counts, err
}

func platformArg(p *domain.Platform) *string {
	if p == nil {
		return nil
	}
	s := string(*p)
	return &s
}

func scanTicket(row pgx.Row) (*domain.Ticket, error) {
	var (
		ticket                           domain.Ticket
		kind, category, priority, status string
		platform                         *string
	)
	if err := row.Scan(
		&ticket.ID,
		&ticket.Number,
		&ticket.Subject,
		&kind,
		&category,
		&priority,
		&status,
		&platform,
		&ticket.Description,
		&ticket.AssigneeID,
		&ticket.ResolvedAt,
		&ticket.MoveToBacklog,
		&ticket.CreatedBy,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	); err != nil {
		return nil, err
	}
	ticket.Type = domain.TicketType(kind)
	ticket.Category = domain.TicketCategory(category)
	ticket.Priority = domain.TicketPriority(priority)
	ticket.Status = domain.TicketStatus(status)
	if platform != nil {
		p := domain.Platform(*platform)
		ticket.Platform = &p
	}
	return &ticket, nil
}
