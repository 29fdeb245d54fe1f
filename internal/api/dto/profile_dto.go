package dto

import (
	"time"

	"github.com/spec-kit/ops-desk/internal/domain"
)

// ProfileResponse is the caller's account.
type ProfileResponse struct {
	ID        string         `json:"id"`
	Email     string         `json:"email"`
	FullName  *string        `json:"full_name"`
	AvatarURL *string        `json:"avatar_url"`
	Role      domain.AppRole `json:"role"`
	CreatedAt time.Time      `json:"created_at"`
}

// LoginResponse payload.
type LoginResponse struct {
	AccessToken string          `json:"access_token"`
	TokenType   string          `json:"token_type"`
	ExpiresAt   time.Time       `json:"expires_at"`
	Profile     ProfileResponse `json:"profile"`
}

// NewProfileResponse maps a profile with its role.
func NewProfileResponse(p *domain.Profile, role domain.AppRole) ProfileResponse {
	return ProfileResponse{
		ID:        p.ID,
		Email:     p.Email,
		FullName:  p.FullName,
		AvatarURL: p.AvatarURL,
		Role:      role,
		CreatedAt: p.CreatedAt,
	}
}
