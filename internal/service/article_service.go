package service

import (
	"context"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/ops-desk/internal/auth"
	"github.com/spec-kit/ops-desk/internal/domain"
	"github.com/spec-kit/ops-desk/internal/events"
	"github.com/spec-kit/ops-desk/internal/repository"
	"github.com/spec-kit/ops-desk/internal/validation"
	apperrors "github.com/spec-kit/ops-desk/pkg/util/errorutil"
)

// ArticleService manages the knowledge base.
type ArticleService struct {
	articles   repository.ArticleRepository
	audit      *AuditService
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// ArticleDependencies bundles collaborators for the article service.
type ArticleDependencies struct {
	ArticleRepo repository.ArticleRepository
	Audit       *AuditService
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
}

// NewArticleService constructs the service.
func NewArticleService(deps ArticleDependencies) *ArticleService {
	return &ArticleService{
		articles:   deps.ArticleRepo,
		audit:      deps.Audit,
		dispatcher: deps.Dispatcher,
		logger:     nopIfNil(deps.Logger),
	}
}

// ArticleInput is the editable shape of an article. Category is free text.
type ArticleInput struct {
	Title    string   `json:"title" validate:"required,max=200"`
	Category string   `json:"category" validate:"required,max=100"`
	Content  string   `json:"content" validate:"required,max=10000"`
	Tags     []string `json:"tags" validate:"dive,max=50"`
}

type tagInput struct {
	Tag string `json:"tag" validate:"required,max=50"`
}

// ArticleCategories pairs the suggested list with current usage.
type ArticleCategories struct {
	Suggested []string         `json:"suggested"`
	InUse     []string         `json:"in_use"`
	Counts    map[string]int64 `json:"counts"`
}

func (in *ArticleInput) normalize() {
	in.Title = strings.TrimSpace(in.Title)
	in.Category = strings.TrimSpace(in.Category)
	in.Content = strings.TrimSpace(in.Content)
	in.Tags = domain.NormalizeTags(in.Tags)
}

// Create stores a new article.
func (s *ArticleService) Create(ctx context.Context, actor domain.Actor, in ArticleInput) (*domain.KnowledgeArticle, error) {
	if err := auth.Authorize(actor, domain.EntityArticle, domain.OpCreate); err != nil {
		return nil, err
	}
	in.normalize()
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	article := &domain.KnowledgeArticle{
		Title:    in.Title,
		Category: in.Category,
		Content:  in.Content,
		Tags:     in.Tags,
	}
	if actor.ID != "" {
		createdBy := actor.ID
		article.CreatedBy = &createdBy
	}
	if err := s.articles.Create(ctx, article); err != nil {
		return nil, apperrors.NewRemoteFailure(err)
	}
	s.audit.Record(ctx, AuditRecord{
		Actor:      actor,
		Action:     domain.AuditArticleCreated,
		EntityType: domain.EntityArticle,
		EntityID:   article.ID,
		NewValue:   articleSnapshot(article),
	})
	s.publish(ctx, events.EventArticleCreated, article, actor)
	return article, nil
}

// Update replaces title, category, content and tags.
func (s *ArticleService) Update(ctx context.Context, actor domain.Actor, id string, in ArticleInput) (*domain.KnowledgeArticle, error) {
	if err := auth.Authorize(actor, domain.EntityArticle, domain.OpUpdate); err != nil {
		return nil, err
	}
	in.normalize()
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	article, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	before := articleSnapshot(article)
	article.Title = in.Title
	article.Category = in.Category
	article.Content = in.Content
	article.Tags = in.Tags
	if err := s.save(ctx, actor, article, before); err != nil {
		return nil, err
	}
	return article, nil
}

// AddTag adds a tag. Adding a tag that is already present changes nothing.
func (s *ArticleService) AddTag(ctx context.Context, actor domain.Actor, id, tag string) (*domain.KnowledgeArticle, error) {
	if err := auth.Authorize(actor, domain.EntityArticle, domain.OpUpdate); err != nil {
		return nil, err
	}
	normalized := domain.NormalizeTag(tag)
	if err := validation.Struct(tagInput{Tag: normalized}); err != nil {
		return nil, err
	}
	article, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	before := articleSnapshot(article)
	tags := domain.AddTag(article.Tags, normalized)
	if len(tags) == len(article.Tags) {
		return article, nil
	}
	article.Tags = tags
	if err := s.save(ctx, actor, article, before); err != nil {
		return nil, err
	}
	return article, nil
}

// RemoveTag drops a tag. Removing an absent tag changes nothing.
func (s *ArticleService) RemoveTag(ctx context.Context, actor domain.Actor, id, tag string) (*domain.KnowledgeArticle, error) {
	if err := auth.Authorize(actor, domain.EntityArticle, domain.OpUpdate); err != nil {
		return nil, err
	}
	article, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	before := articleSnapshot(article)
	tags := domain.RemoveTag(article.Tags, tag)
	if len(tags) == len(article.Tags) {
		return article, nil
	}
	article.Tags = tags
	if err := s.save(ctx, actor, article, before); err != nil {
		return nil, err
	}
	return article, nil
}

func (s *ArticleService) save(ctx context.Context, actor domain.Actor, article *domain.KnowledgeArticle, before map[string]any) error {
	if err := s.articles.Update(ctx, article); err != nil {
		return apperrors.FromRepository(err, "article", article.ID)
	}
	s.audit.Record(ctx, AuditRecord{
		Actor:      actor,
		Action:     domain.AuditArticleUpdated,
		EntityType: domain.EntityArticle,
		EntityID:   article.ID,
		OldValue:   before,
		NewValue:   articleSnapshot(article),
	})
	s.publish(ctx, events.EventArticleUpdated, article, actor)
	return nil
}

// Delete removes an article.
func (s *ArticleService) Delete(ctx context.Context, actor domain.Actor, id string) error {
	if err := auth.Authorize(actor, domain.EntityArticle, domain.OpDelete); err != nil {
		return err
	}
	article, err := s.get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.articles.Delete(ctx, id); err != nil {
		return apperrors.FromRepository(err, "article", id)
	}
	s.audit.Record(ctx, AuditRecord{
		Actor:      actor,
		Action:     domain.AuditArticleDeleted,
		EntityType: domain.EntityArticle,
		EntityID:   id,
		OldValue:   articleSnapshot(article),
	})
	s.publish(ctx, events.EventArticleDeleted, article, actor)
	return nil
}

// Get fetches one article.
func (s *ArticleService) Get(ctx context.Context, id string) (*domain.KnowledgeArticle, error) {
	return s.get(ctx, id)
}

// List searches articles.
func (s *ArticleService) List(ctx context.Context, filter repository.ArticleFilter) ([]domain.KnowledgeArticle, error) {
	list, err := s.articles.List(ctx, filter)
	if err != nil {
		return nil, apperrors.NewRemoteFailure(err)
	}
	return list, nil
}

// Categories returns the suggested list and the categories in use.
func (s *ArticleService) Categories(ctx context.Context) (ArticleCategories, error) {
	counts, err := s.articles.CountByCategory(ctx)
	if err != nil {
		return ArticleCategories{}, apperrors.NewRemoteFailure(err)
	}
	inUse := make([]string, 0, len(counts))
	for category := range counts {
		inUse = append(inUse, category)
	}
	sort.Strings(inUse)
	return ArticleCategories{
		Suggested: domain.SuggestedArticleCategories(),
		InUse:     inUse,
		Counts:    counts,
	}, nil
}

func (s *ArticleService) get(ctx context.Context, id string) (*domain.KnowledgeArticle, error) {
	article, err := s.articles.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.FromRepository(err, "article", id)
	}
	return article, nil
}

func (s *ArticleService) publish(ctx context.Context, eventType events.EventType, article *domain.KnowledgeArticle, actor domain.Actor) {
	publish(ctx, s.dispatcher, s.logger, events.New(eventType, domain.EntityArticle, article.ID, actor, events.ArticlePayload{
		Title:    article.Title,
		Category: article.Category,
	}))
}
