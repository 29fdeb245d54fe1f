package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/ops-desk/internal/domain"
	apperrors "github.com/spec-kit/ops-desk/pkg/util/errorutil"
)

type mockProfiles struct {
	mock.Mock
}

func (m *mockProfiles) GetByID(ctx context.Context, id string) (*domain.Profile, error) {
	args := m.Called(ctx, id)
	if p, ok := args.Get(0).(*domain.Profile); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockProfiles) GetRole(ctx context.Context, profileID string) (domain.AppRole, error) {
	args := m.Called(ctx, profileID)
	return args.Get(0).(domain.AppRole), args.Error(1)
}

func newTestApp(tm *TokenManager, profiles ProfileLookup) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var domainErr *apperrors.DomainError
			if errors.As(err, &domainErr) {
				return c.Status(domainErr.HTTPStatus).SendString(domainErr.Code)
			}
			return c.Status(http.StatusInternalServerError).SendString(err.Error())
		},
	})
	mw := NewAuthMiddleware(tm, profiles)
	app.Post("/events", mw.Handle, RequireMutation(domain.EntityEvent, domain.OpUpdate), func(c *fiber.Ctx) error {
		return c.SendStatus(http.StatusNoContent)
	})
	app.Post("/tickets", mw.Handle, RequireMutation(domain.EntityTicket, domain.OpCreate), func(c *fiber.Ctx) error {
		principal, _ := PrincipalFromContext(c)
		return c.SendString(principal.Actor().Email)
	})
	return app
}

func TestAuthMiddlewareUsesStoredRole(t *testing.T) {
	tm := NewTokenManager("secret", 15)
	profiles := &mockProfiles{}
	profiles.On("GetByID", mock.Anything, "p1").Return(&domain.Profile{ID: "p1", Email: "staff@example.com"}, nil)
	profiles.On("GetRole", mock.Anything, "p1").Return(domain.RoleStaff, nil)
	app := newTestApp(tm, profiles)

	// The token claims admin but the stored role is staff.
	token, _, err := tm.GenerateToken("p1", "staff@example.com", domain.RoleAdmin)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/events", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	req = httptest.NewRequest(http.MethodPost, "/tickets", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAuthMiddlewareRejectsMissingToken(t *testing.T) {
	app := newTestApp(NewTokenManager("secret", 15), &mockProfiles{})

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/tickets", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req := httptest.NewRequest(http.MethodPost, "/tickets", nil)
	req.Header.Set("Authorization", "Basic abc")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAuthMiddlewareUnknownProfile(t *testing.T) {
	tm := NewTokenManager("secret", 15)
	profiles := &mockProfiles{}
	profiles.On("GetByID", mock.Anything, "ghost").Return(nil, pgx.ErrNoRows)
	app := newTestApp(tm, profiles)

	token, _, err := tm.GenerateToken("ghost", "", domain.RoleAdmin)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/tickets", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
