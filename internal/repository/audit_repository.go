package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/ops-desk/internal/domain"
)

// AuditFilter narrows the audit log.
type AuditFilter struct {
	Action     *domain.AuditAction
	EntityType *domain.EntityType
	EntityID   string
	Search     string
	Page
}

// AuditRepository appends and reads audit entries. Entries are never updated or deleted.
type AuditRepository interface {
	Append(ctx context.Context, entry *domain.AuditLogEntry) error
	List(ctx context.Context, filter AuditFilter) ([]domain.AuditLogEntry, error)
	CountByAction(ctx context.Context) (map[domain.AuditAction]int64, error)
}

type auditRepository struct {
	pool *pgxpool.Pool
}

// NewAuditRepository builds repository.
func NewAuditRepository(pool *pgxpool.Pool) AuditRepository {
	return &auditRepository{pool: pool}
}

func (r *auditRepository) Append(ctx context.Context, entry *domain.AuditLogEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	const query = `
        INSERT INTO audit_log (id, actor_id, actor_email, action, entity_type, entity_id, old_value, new_value)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING created_at`
	return r.pool.QueryRow(ctx, query,
		entry.ID,
		entry.ActorID,
		entry.ActorEmail,
		string(entry.Action),
		string(entry.EntityType),
		entry.EntityID,
		entry.OldValue,
		entry.NewValue,
	).Scan(&entry.CreatedAt)
}

func (r *auditRepository) List(ctx context.Context, filter AuditFilter) ([]domain.AuditLogEntry, error) {
	var w where
	if filter.Action != nil {
		w.add("action=$%d", string(*filter.Action))
	}
	if filter.EntityType != nil {
		w.add("entity_type=$%d", string(*filter.EntityType))
	}
	if filter.EntityID != "" {
		w.add("entity_id=$%d", filter.EntityID)
	}
	w.search(filter.Search, "entity_id", "COALESCE(actor_email, '')")

	query := `SELECT id, actor_id, actor_email, action, entity_type, entity_id, old_value, new_value, created_at
        FROM audit_log` + w.String() + ` ORDER BY created_at DESC ` + filter.Page.clause()
	rows, err := r.pool.Query(ctx, query, w.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.AuditLogEntry{}
	for rows.Next() {
		var (
			entry              domain.AuditLogEntry
			action, entityType string
		)
		if err := rows.Scan(
			&entry.ID,
			&entry.ActorID,
			&entry.ActorEmail,
			&action,
			&entityType,
			&entry.EntityID,
			&entry.OldValue,
			&entry.NewValue,
			&entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		entry.Action = domain.AuditAction(action)
		entry.EntityType = domain.EntityType(entityType)
		result = append(result, entry)
	}
	return result, rows.Err()
}

func (r *auditRepository) CountByAction(ctx context.Context) (map[domain.AuditAction]int64, error) {
	rows, err := r.pool.Query(ctx, `SELECT action, COUNT(*) FROM audit_log GROUP BY action`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[domain.AuditAction]int64)
	for rows.Next() {
		var (
			action string
			n      int64
		)
		if err := rows.Scan(&action, &n); err != nil {
			return nil, err
		}
		counts[domain.AuditAction(action)] = n
	}
	return counts, rows.Err()
}
