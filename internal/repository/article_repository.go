package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/ops-desk/internal/domain"
)

// ArticleFilter narrows the knowledge base list.
type ArticleFilter struct {
	Search   string
	Category string
	Tag      string
	Page
}

// ArticleRepository encapsulates knowledge base persistence.
type ArticleRepository interface {
	Create(ctx context.Context, article *domain.KnowledgeArticle) error
	Update(ctx context.Context, article *domain.KnowledgeArticle) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.KnowledgeArticle, error)
	List(ctx context.Context, filter ArticleFilter) ([]domain.KnowledgeArticle, error)
	CountByCategory(ctx context.Context) (map[string]int64, error)
}

type articleRepository struct {
	pool *pgxpool.Pool
}

// NewArticleRepository returns a Postgres-backed implementation.
func NewArticleRepository(pool *pgxpool.Pool) ArticleRepository {
	return &articleRepository{pool: pool}
}

const articleColumns = `id, title, category, content, tags, created_by, created_at, updated_at`

func (r *articleRepository) Create(ctx context.Context, article *domain.KnowledgeArticle) error {
	if article.ID == "" {
		article.ID = uuid.NewString()
	}
	if article.Tags == nil {
		article.Tags = []string{}
	}
	const query = `
        INSERT INTO knowledge_base (id, title, category, content, tags, created_by)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		article.ID,
		article.Title,
		article.Category,
		article.Content,
		article.Tags,
		article.CreatedBy,
	).Scan(&article.CreatedAt, &article.UpdatedAt)
}

func (r *articleRepository) Update(ctx context.Context, article *domain.KnowledgeArticle) error {
	if article.Tags == nil {
		article.Tags = []string{}
	}
	const query = `
        UPDATE knowledge_base SET title=$1, category=$2, content=$3, tags=$4, updated_at=NOW()
        WHERE id=$5
        RETURNING updated_at`
	return r.pool.QueryRow(ctx, query,
		article.Title,
		article.Category,
		article.Content,
		article.Tags,
		article.ID,
	).Scan(&article.UpdatedAt)
}

func (r *articleRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM knowledge_base WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *articleRepository) GetByID(ctx context.Context, id string) (*domain.KnowledgeArticle, error) {
	return scanArticle(r.pool.QueryRow(ctx, `SELECT `+articleColumns+` FROM knowledge_base WHERE id=$1`, id))
}

func (r *articleRepository) List(ctx context.Context, filter ArticleFilter) ([]domain.KnowledgeArticle, error) {
	var w where
	w.search(filter.Search, "title", "content", "array_to_string(tags, ' ')")
	if filter.Category != "" {
		w.add("category=$%d", filter.Category)
	}
	if tag := domain.NormalizeTag(filter.Tag); tag != "" {
		w.add("$%d = ANY(tags)", tag)
	}

	query := `SELECT ` + articleColumns + ` FROM knowledge_base` + w.String() +
		` ORDER BY updated_at DESC ` + filter.Page.clause()
	rows, err := r.pool.Query(ctx, query, w.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.KnowledgeArticle{}
	for rows.Next() {
		article, err := scanArticle(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *article)
	}
	return result, rows.Err()
}

func (r *articleRepository) CountByCategory(ctx context.Context) (map[string]int64, error) {
	rows, err := r.pool.Query(ctx, `SELECT category, COUNT(*) FROM knowledge_base GROUP BY category`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var (
			category string
			n        int64
		)
		if err := rows.Scan(&category, &n); err != nil {
			return nil, err
		}
		counts[category] = n
	}
	return counts, rows.Err()
}

func scanArticle(row pgx.Row) (*domain.KnowledgeArticle, error) {
	var article domain.KnowledgeArticle
	if err := row.Scan(
		&article.ID,
		&article.Title,
		&article.Category,
		&article.Content,
		&article.Tags,
		&article.CreatedBy,
		&article.CreatedAt,
		&article.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if article.Tags == nil {
		article.Tags = []string{}
	}
	return &article, nil
}
