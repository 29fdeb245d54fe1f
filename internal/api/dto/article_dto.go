package dto

import (
	"time"

	"github.com/spec-kit/ops-desk/internal/domain"
)

// ArticleResponse payload.
type ArticleResponse struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Category  string    `json:"category"`
	Content   string    `json:"content"`
	Tags      []string  `json:"tags"`
	CreatedBy *string   `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TagRequest payload.
type TagRequest struct {
	Tag string `json:"tag"`
}

// NewArticleResponse maps an article.
func NewArticleResponse(a *domain.KnowledgeArticle) ArticleResponse {
	tags := a.Tags
	if tags == nil {
		tags = []string{}
	}
	return ArticleResponse{
		ID:        a.ID,
		Title:     a.Title,
		Category:  a.Category,
		Content:   a.Content,
		Tags:      tags,
		CreatedBy: a.CreatedBy,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

// NewArticleList maps a page of articles.
func NewArticleList(list []domain.KnowledgeArticle) []ArticleResponse {
	out := make([]ArticleResponse, 0, len(list))
	for i := range list {
		out = append(out, NewArticleResponse(&list[i]))
	}
	return out
}
