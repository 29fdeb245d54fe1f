package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/ops-desk/internal/domain"
)

// EventFilter narrows the event list.
type EventFilter struct {
	Search        string
	Status        *domain.EventStatus
	Gateway       *domain.Gateway
	PayoutPending *bool
	DateFrom      *time.Time
	DateTo        *time.Time
	Page
}

// EventTotals aggregates the financial columns across events.
type EventTotals struct {
	EventCount          int64        `json:"event_count"`
	GrossSale           domain.Money `json:"gross_sale"`
	NetSale             domain.Money `json:"net_sale"`
	PendingPayoutCount  int64        `json:"pending_payout_count"`
	PendingPayoutAmount domain.Money `json:"pending_payout_amount"`
	PayoutsDueCount     int64        `json:"payouts_due_count"`
}

// EventRepository encapsulates event persistence.
type EventRepository interface {
	Create(ctx context.Context, event *domain.Event) error
	Update(ctx context.Context, event *domain.Event) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Event, error)
	List(ctx context.Context, filter EventFilter) ([]domain.Event, error)
	ListPayoutsDue(ctx context.Context, asOf time.Time) ([]domain.Event, error)
	Totals(ctx context.Context, asOf time.Time) (EventTotals, error)
}

type eventRepository struct {
	pool *pgxpool.Pool
}

// NewEventRepository returns a Postgres-backed implementation.
func NewEventRepository(pool *pgxpool.Pool) EventRepository {
	return &eventRepository{pool: pool}
}

const eventColumns = `id, name, status, gateway, event_date, payout_date, gross_sale_cents, service_fee_cents,
               gateway_fee_cents, processing_fee_cents, net_sale_cents, total_payout_cents,
               payout_executed, fees_received, created_by, created_at, updated_at`

func (r *eventRepository) Create(ctx context.Context, event *domain.Event) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	const query = `
        INSERT INTO events (id, name, status, gateway, event_date, payout_date, gross_sale_cents, service_fee_cents,
            gateway_fee_cents, processing_fee_cents, net_sale_cents, total_payout_cents, payout_executed, fees_received, created_by)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
        RETURNING created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		event.ID,
		event.Name,
		string(event.Status),
		string(event.Gateway),
		event.EventDate,
		event.PayoutDate,
		event.GrossSale.Cents(),
		event.ServiceFee.Cents(),
		event.GatewayFee.Cents(),
		event.ProcessingFee.Cents(),
		event.NetSale.Cents(),
		event.TotalPayout.Cents(),
		event.PayoutExecuted,
		event.FeesReceived,
		event.CreatedBy,
	).Scan(&event.CreatedAt, &event.UpdatedAt)
}

func (r *eventRepository) Update(ctx context.Context, event *domain.Event) error {
	const query = `
        UPDATE events SET name=$1, status=$2, gateway=$3, event_date=$4, payout_date=$5, gross_sale_cents=$6,
            service_fee_cents=$7, gateway_fee_cents=$8, processing_fee_cents=$9, net_sale_cents=$10,
            total_payout_cents=$11, payout_executed=$12, fees_received=$13, updated_at=NOW()
        WHERE id=$14
        RETURNING updated_at`
	return r.pool.QueryRow(ctx, query,
		event.Name,
		string(event.Status),
		string(event.Gateway),
		event.EventDate,
		event.PayoutDate,
		event.GrossSale.Cents(),
		event.ServiceFee.Cents(),
		event.GatewayFee.Cents(),
		event.ProcessingFee.Cents(),
		event.NetSale.Cents(),
		event.TotalPayout.Cents(),
		event.PayoutExecuted,
		event.FeesReceived,
		event.ID,
	).Scan(&event.UpdatedAt)
}

func (r *eventRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM events WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+eventColumns+` FROM events WHERE id=$1`, id)
	return scanEvent(row)
}

func (r *eventRepository) List(ctx context.Context, filter EventFilter) ([]domain.Event, error) {
	var w where
	w.search(filter.Search, "name")
	if filter.Status != nil {
		w.add("status=$%d", string(*filter.Status))
	}
	if filter.Gateway != nil {
		w.add("gateway=$%d", string(*filter.Gateway))
	}
	if filter.PayoutPending != nil {
		w.add("payout_executed=$%d", !*filter.PayoutPending)
	}
	if filter.DateFrom != nil {
		w.add("event_date >= $%d", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		w.add("event_date <= $%d", *filter.DateTo)
	}

	query := `SELECT ` + eventColumns + ` FROM events` + w.String() +
		` ORDER BY event_date DESC, created_at DESC ` + filter.Page.clause()
	rows, err := r.pool.Query(ctx, query, w.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEvents(rows)
}

func (r *eventRepository) ListPayoutsDue(ctx context.Context, asOf time.Time) ([]domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events
        WHERE payout_executed = FALSE AND payout_date <= $1
        ORDER BY payout_date ASC`
	rows, err := r.pool.Query(ctx, query, domain.DateOf(asOf))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEvents(rows)
}

func (r *eventRepository) Totals(ctx context.Context, asOf time.Time) (EventTotals, error) {
	const query = `
        SELECT COUNT(*),
               COALESCE(SUM(gross_sale_cents), 0),
               COALESCE(SUM(net_sale_cents), 0),
               COUNT(*) FILTER (WHERE payout_executed = FALSE),
               COALESCE(SUM(total_payout_cents) FILTER (WHERE payout_executed = FALSE), 0),
               COUNT(*) FILTER (WHERE payout_executed = FALSE AND payout_date <= $1)
        FROM events`
	var (
		totals                    EventTotals
		gross, net, pendingAmount int64
	)
	if err := r.pool.QueryRow(ctx, query, domain.DateOf(asOf)).Scan(
		&totals.EventCount,
		&gross,
		&net,
		&totals.PendingPayoutCount,
		&pendingAmount,
		&totals.PayoutsDueCount,
	); err != nil {
		return EventTotals{}, err
	}
	totals.GrossSale = domain.Money(gross)
	totals.NetSale = domain.Money(net)
	totals.PendingPayoutAmount = domain.Money(pendingAmount)
	return totals, nil
}

func scanEvent(row pgx.Row) (*domain.Event, error) {
	var (
		event                                  domain.Event
		status, gateway                        string
		gross, service, gatewayFee, processing int64
		net, payout                            int64
	)
	if err := row.Scan(
		&event.ID,
		&event.Name,
		&status,
		&gateway,
		&event.EventDate,
		&event.PayoutDate,
		&gross,
		&service,
		&gatewayFee,
		&processing,
		&net,
		&payout,
		&event.PayoutExecuted,
		&event.FeesReceived,
		&event.CreatedBy,
		&event.CreatedAt,
		&event.UpdatedAt,
	); err != nil {
		return nil, err
	}
	event.Status = domain.EventStatus(status)
	event.Gateway = domain.Gateway(gateway)
	event.GrossSale = domain.Money(gross)
	event.ServiceFee = domain.Money(service)
	event.GatewayFee = domain.Money(gatewayFee)
	event.ProcessingFee = domain.Money(processing)
	event.NetSale = domain.Money(net)
	event.TotalPayout = domain.Money(payout)
	return &event, nil
}

func scanEvents(rows pgx.Rows) ([]domain.Event, error) {
	result := []domain.Event{}
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *event)
	}
	return result, rows.Err()
}
