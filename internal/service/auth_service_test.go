package service

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/ops-desk/internal/auth"
	"github.com/spec-kit/ops-desk/internal/config"
	"github.com/spec-kit/ops-desk/internal/domain"
	apperrors "github.com/spec-kit/ops-desk/pkg/util/errorutil"
)

func newAuthService(profiles *mockProfileRepo) *AuthService {
	return NewAuthService(config.AuthConfig{
		JWTSecret:             "test-secret",
		AccessTokenTTLMinutes: 15,
		BcryptCost:            bcrypt.MinCost,
	}, profiles)
}

func storedProfile(t *testing.T, password string) *domain.Profile {
	t.Helper()
	hash, err := auth.HashPassword(password, bcrypt.MinCost)
	require.NoError(t, err)
	return &domain.Profile{ID: "p-1", Email: "ops@example.com", PasswordHash: hash}
}

func TestLoginIssuesTokenWithStoredRole(t *testing.T) {
	profiles := &mockProfileRepo{}
	profiles.On("GetByEmail", mock.Anything, "ops@example.com").Return(storedProfile(t, "hunter22"), nil)
	profiles.On("GetRole", mock.Anything, "p-1").Return(domain.RoleStaff, nil)
	svc := newAuthService(profiles)

	session, err := svc.Login(context.Background(), LoginInput{Email: " OPS@example.com ", Password: "hunter22"})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleStaff, session.Role)

	claims, err := svc.TokenManager().ParseToken(session.Token)
	require.NoError(t, err)
	assert.Equal(t, "p-1", claims.Subject)
	assert.Equal(t, domain.RoleStaff, claims.Role)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	profiles := &mockProfileRepo{}
	profiles.On("GetByEmail", mock.Anything, "ops@example.com").Return(storedProfile(t, "hunter22"), nil)
	profiles.On("GetByEmail", mock.Anything, "nobody@example.com").Return(nil, pgx.ErrNoRows)
	svc := newAuthService(profiles)

	_, err := svc.Login(context.Background(), LoginInput{Email: "ops@example.com", Password: "wrong"})
	assert.True(t, apperrors.IsCode(err, apperrors.CodeUnauthorized))
	_, err = svc.Login(context.Background(), LoginInput{Email: "nobody@example.com", Password: "wrong"})
	assert.True(t, apperrors.IsCode(err, apperrors.CodeUnauthorized))
}

func TestLoginWithoutRoleIsForbidden(t *testing.T) {
	profiles := &mockProfileRepo{}
	profiles.On("GetByEmail", mock.Anything, "ops@example.com").Return(storedProfile(t, "hunter22"), nil)
	profiles.On("GetRole", mock.Anything, "p-1").Return(domain.AppRole(""), pgx.ErrNoRows)

	_, err := newAuthService(profiles).Login(context.Background(), LoginInput{Email: "ops@example.com", Password: "hunter22"})
	assert.True(t, apperrors.IsCode(err, apperrors.CodeForbidden))
}

func TestCreateUserRejectsExistingEmail(t *testing.T) {
	profiles := &mockProfileRepo{}
	profiles.On("GetByEmail", mock.Anything, "ops@example.com").Return(storedProfile(t, "hunter22"), nil)

	_, err := newAuthService(profiles).CreateUser(context.Background(), CreateUserInput{
		Email: "ops@example.com", Password: "longenough", Role: domain.RoleAdmin,
	})
	assert.True(t, apperrors.IsCode(err, apperrors.CodeConflict))
	profiles.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateUserAssignsRole(t *testing.T) {
	profiles := &mockProfileRepo{}
	profiles.On("GetByEmail", mock.Anything, "new@example.com").Return(nil, pgx.ErrNoRows)
	profiles.On("Create", mock.Anything, mock.AnythingOfType("*domain.Profile")).Run(func(args mock.Arguments) {
		args.Get(1).(*domain.Profile).ID = "p-2"
	}).Return(nil)
	profiles.On("SetRole", mock.Anything, "p-2", domain.RoleAdmin).Return(nil)

	profile, err := newAuthService(profiles).CreateUser(context.Background(), CreateUserInput{
		Email: "New@Example.com", Password: "longenough", Role: domain.RoleAdmin,
	})
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", profile.Email)
	assert.NoError(t, auth.ComparePassword(profile.PasswordHash, "longenough"))
	profiles.AssertExpectations(t)
}

func TestCreateUserValidatesRole(t *testing.T) {
	_, err := newAuthService(&mockProfileRepo{}).CreateUser(context.Background(), CreateUserInput{
		Email: "new@example.com", Password: "longenough", Role: "owner",
	})
	domainErr := apperrors.ToDomainError(err)
	require.Equal(t, apperrors.CodeValidation, domainErr.Code)
	assert.Contains(t, domainErr.Details, "role")
}

func TestChangePasswordChecksCurrent(t *testing.T) {
	profiles := &mockProfileRepo{}
	profiles.On("GetByID", mock.Anything, "p-1").Return(storedProfile(t, "hunter22"), nil)
	profiles.On("UpdatePassword", mock.Anything, "p-1", mock.AnythingOfType("string")).Return(nil).Once()
	svc := newAuthService(profiles)
	actor := domain.Actor{ID: "p-1", Role: domain.RoleStaff}

	err := svc.ChangePassword(context.Background(), actor, PasswordChangeInput{CurrentPassword: "nope", NewPassword: "brandnew1"})
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))

	err = svc.ChangePassword(context.Background(), actor, PasswordChangeInput{CurrentPassword: "hunter22", NewPassword: "brandnew1"})
	require.NoError(t, err)
	profiles.AssertExpectations(t)
}
