package domain

import (
	"strings"
	"time"
)

// KnowledgeArticle is a canned response shared with the support desk.
type KnowledgeArticle struct {
	ID        string
	Title     string
	Category  string
	Content   string
	Tags      []string
	CreatedBy *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// SuggestedArticleCategories is the list offered when filing an article.
// Any non-empty category is accepted.
func SuggestedArticleCategories() []string {
	return []string{
		"Getting Started",
		"Account & Billing",
		"Events",
		"Tickets",
		"Refunds",
		"Technical Support",
		"Organizers",
		"Policies",
		"Other",
	}
}

// NormalizeTag trims and lowercases a tag.
func NormalizeTag(tag string) string {
	return strings.ToLower(strings.TrimSpace(tag))
}

// NormalizeTags lowercases, trims and de-duplicates tags, keeping first-seen order.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		out = AddTag(out, tag)
	}
	return out
}

// AddTag appends tag unless an equal normalized tag is already present.
func AddTag(tags []string, tag string) []string {
	normalized := NormalizeTag(tag)
	if normalized == "" {
		return tags
	}
	for _, existing := range tags {
		if existing == normalized {
			return tags
		}
	}
	return append(tags, normalized)
}

// RemoveTag drops tag if present.
func RemoveTag(tags []string, tag string) []string {
	normalized := NormalizeTag(tag)
	out := make([]string, 0, len(tags))
	for _, existing := range tags {
		if existing != normalized {
			out = append(out, existing)
		}
	}
	return out
}
