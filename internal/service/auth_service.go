package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/ops-desk/internal/auth"
	"github.com/spec-kit/ops-desk/internal/config"
	"github.com/spec-kit/ops-desk/internal/domain"
	"github.com/spec-kit/ops-desk/internal/repository"
	"github.com/spec-kit/ops-desk/internal/validation"
	apperrors "github.com/spec-kit/ops-desk/pkg/util/errorutil"
)

// AuthService coordinates login and profile flows.
type AuthService struct {
	profiles   repository.ProfileRepository
	tokenMgr   *auth.TokenManager
	bcryptCost int
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, profiles repository.ProfileRepository) *AuthService {
	return &AuthService{
		profiles:   profiles,
		tokenMgr:   auth.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTLMinutes),
		bcryptCost: cfg.BcryptCost,
	}
}

// Session is the result of a successful login.
type Session struct {
	Token     string
	ExpiresAt time.Time
	Profile   *domain.Profile
	Role      domain.AppRole
}

// LoginInput holds credentials.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// ProfileUpdateInput edits the caller's display fields.
type ProfileUpdateInput struct {
	FullName  *string `json:"full_name" validate:"omitempty,max=200"`
	AvatarURL *string `json:"avatar_url" validate:"omitempty,url"`
}

// PasswordChangeInput replaces the caller's password.
type PasswordChangeInput struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8,max=72"`
}

// CreateUserInput seeds an operator account.
type CreateUserInput struct {
	Email    string         `json:"email" validate:"required,email"`
	Password string         `json:"password" validate:"required,min=8,max=72"`
	FullName *string        `json:"full_name" validate:"omitempty,max=200"`
	Role     domain.AppRole `json:"role" validate:"required,app_role"`
}

// Login verifies credentials and issues a bearer token.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*Session, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	profile, err := s.profiles.GetByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, apperrors.NewRemoteFailure(err)
	}
	if err := auth.ComparePassword(profile.PasswordHash, in.Password); err != nil {
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}
	return s.session(ctx, profile)
}

// IssueToken signs a token for an existing profile without a password check.
func (s *AuthService) IssueToken(ctx context.Context, profileID string) (*Session, error) {
	profile, err := s.profiles.GetByID(ctx, profileID)
	if err != nil {
		return nil, apperrors.FromRepository(err, "profile", profileID)
	}
	return s.session(ctx, profile)
}

func (s *AuthService) session(ctx context.Context, profile *domain.Profile) (*Session, error) {
	role, err := s.profiles.GetRole(ctx, profile.ID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewForbidden("no role assigned")
		}
		return nil, apperrors.NewRemoteFailure(err)
	}
	token, exp, err := s.tokenMgr.GenerateToken(profile.ID, profile.Email, role)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return &Session{Token: token, ExpiresAt: exp, Profile: profile, Role: role}, nil
}

// Me returns the caller's profile and stored role.
func (s *AuthService) Me(ctx context.Context, actor domain.Actor) (*domain.Profile, domain.AppRole, error) {
	profile, err := s.profiles.GetByID(ctx, actor.ID)
	if err != nil {
		return nil, "", apperrors.FromRepository(err, "profile", actor.ID)
	}
	role, err := s.profiles.GetRole(ctx, profile.ID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", apperrors.NewForbidden("no role assigned")
		}
		return nil, "", apperrors.NewRemoteFailure(err)
	}
	return profile, role, nil
}

// UpdateMe changes the caller's full name and avatar.
func (s *AuthService) UpdateMe(ctx context.Context, actor domain.Actor, in ProfileUpdateInput) (*domain.Profile, error) {
	in.FullName = trimmedPtr(in.FullName)
	in.AvatarURL = trimmedPtr(in.AvatarURL)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	profile, err := s.profiles.GetByID(ctx, actor.ID)
	if err != nil {
		return nil, apperrors.FromRepository(err, "profile", actor.ID)
	}
	profile.FullName = in.FullName
	profile.AvatarURL = in.AvatarURL
	if err := s.profiles.UpdateProfile(ctx, profile); err != nil {
		return nil, apperrors.FromRepository(err, "profile", actor.ID)
	}
	return profile, nil
}

// ChangePassword verifies the current password before storing the new hash.
func (s *AuthService) ChangePassword(ctx context.Context, actor domain.Actor, in PasswordChangeInput) error {
	if err := validation.Struct(in); err != nil {
		return err
	}
	profile, err := s.profiles.GetByID(ctx, actor.ID)
	if err != nil {
		return apperrors.FromRepository(err, "profile", actor.ID)
	}
	if err := auth.ComparePassword(profile.PasswordHash, in.CurrentPassword); err != nil {
		return apperrors.NewFieldError("current_password", "is incorrect")
	}
	hash, err := auth.HashPassword(in.NewPassword, s.bcryptCost)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	if err := s.profiles.UpdatePassword(ctx, profile.ID, hash); err != nil {
		return apperrors.FromRepository(err, "profile", actor.ID)
	}
	return nil
}

// CreateUser creates a profile with a role. Used by the CLI to seed accounts.
func (s *AuthService) CreateUser(ctx context.Context, in CreateUserInput) (*domain.Profile, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.FullName = trimmedPtr(in.FullName)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	if _, err := s.profiles.GetByEmail(ctx, in.Email); err == nil {
		return nil, apperrors.NewConflict("email already registered", map[string]any{"email": in.Email})
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NewRemoteFailure(err)
	}

	hash, err := auth.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	profile := &domain.Profile{
		Email:        in.Email,
		FullName:     in.FullName,
		PasswordHash: hash,
	}
	if err := s.profiles.Create(ctx, profile); err != nil {
		return nil, apperrors.NewRemoteFailure(err)
	}
	if err := s.profiles.SetRole(ctx, profile.ID, in.Role); err != nil {
		return nil, apperrors.NewRemoteFailure(err)
	}
	return profile, nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}
