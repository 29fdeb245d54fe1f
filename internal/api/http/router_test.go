package http

import (
	"context"
	"encoding/json"
	"io"
	nethttp "net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/ops-desk/internal/api/http/handlers"
	"github.com/spec-kit/ops-desk/internal/auth"
	"github.com/spec-kit/ops-desk/internal/domain"
	"github.com/spec-kit/ops-desk/internal/observability"
	"github.com/spec-kit/ops-desk/internal/repository"
	"github.com/spec-kit/ops-desk/internal/service"
)

type fakeProfiles struct {
	roles map[string]domain.AppRole
}

func (f *fakeProfiles) GetByID(_ context.Context, id string) (*domain.Profile, error) {
	if _, ok := f.roles[id]; !ok {
		return nil, pgx.ErrNoRows
	}
	return &domain.Profile{ID: id, Email: id + "@example.com"}, nil
}

func (f *fakeProfiles) GetRole(_ context.Context, id string) (domain.AppRole, error) {
	role, ok := f.roles[id]
	if !ok {
		return "", pgx.ErrNoRows
	}
	return role, nil
}

type memoryEvents struct {
	mu   sync.Mutex
	rows map[string]domain.Event
}

func (m *memoryEvents) Create(_ context.Context, e *domain.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e.ID = uuid.NewString()
	m.rows[e.ID] = *e
	return nil
}

func (m *memoryEvents) Update(_ context.Context, e *domain.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[e.ID]; !ok {
		return pgx.ErrNoRows
	}
	m.rows[e.ID] = *e
	return nil
}

func (m *memoryEvents) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rows, id)
	return nil
}

func (m *memoryEvents) GetByID(_ context.Context, id string) (*domain.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.rows[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &e, nil
}

func (m *memoryEvents) List(context.Context, repository.EventFilter) ([]domain.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Event, 0, len(m.rows))
	for _, e := range m.rows {
		out = append(out, e)
	}
	return out, nil
}

func (m *memoryEvents) ListPayoutsDue(context.Context, time.Time) ([]domain.Event, error) {
	return nil, nil
}

func (m *memoryEvents) Totals(context.Context, time.Time) (repository.EventTotals, error) {
	return repository.EventTotals{}, nil
}

type testServer struct {
	app     *fiber.App
	tokens  *auth.TokenManager
	metrics *observability.Metrics
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	tokens := auth.NewTokenManager("router-secret", 15)
	profiles := &fakeProfiles{roles: map[string]domain.AppRole{
		"admin": domain.RoleAdmin,
		"staff": domain.RoleStaff,
	}}
	metrics := observability.NewMetrics()
	eventService := service.NewEventService(service.EventDependencies{
		EventRepo: &memoryEvents{rows: map[string]domain.Event{}},
	})

	app := NewApp("ops-desk-test", RouteConfig{
		Health:         handlers.NewHealthHandler("ops-desk", "test", nil, nil, metrics),
		Auth:           handlers.NewAuthHandler(nil),
		Events:         handlers.NewEventsHandler(eventService),
		Tickets:        handlers.NewTicketsHandler(nil),
		Articles:       handlers.NewArticlesHandler(nil),
		Audit:          handlers.NewAuditHandler(nil),
		Dashboard:      handlers.NewDashboardHandler(nil),
		AuthMiddleware: auth.NewAuthMiddleware(tokens, profiles),
	}, AppDeps{Logger: zap.NewNop(), Metrics: metrics, Timeout: 5 * time.Second})
	return &testServer{app: app, tokens: tokens, metrics: metrics}
}

func (s *testServer) do(t *testing.T, method, path, profileID, body string) (int, map[string]any, nethttp.Header) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if profileID != "" {
		token, _, err := s.tokens.GenerateToken(profileID, profileID+"@example.com", domain.RoleAdmin)
		require.NoError(t, err)
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var decoded map[string]any
	if len(raw) > 0 && strings.HasPrefix(resp.Header.Get(fiber.HeaderContentType), fiber.MIMEApplicationJSON) {
		require.NoError(t, json.Unmarshal(raw, &decoded))
	}
	return resp.StatusCode, decoded, resp.Header
}

func errorCode(body map[string]any) string {
	errBody, _ := body["error"].(map[string]any)
	code, _ := errBody["code"].(string)
	return code
}

const validEventBody = `{
	"name": "Summer Fest",
	"gateway": "Groovoo Stripe",
	"event_date": "2025-02-14",
	"gross_sale": 45000.00,
	"service_fee": "2700.00",
	"gateway_fee": 900
}`

func TestLiveEndpointSetsRequestID(t *testing.T) {
	s := newTestServer(t)
	status, body, header := s.do(t, fiber.MethodGet, "/health/live", "", "")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "alive", body["status"])
	assert.NotEmpty(t, header.Get(observability.RequestIDHeader))
}

func TestProtectedRouteRequiresToken(t *testing.T) {
	s := newTestServer(t)
	status, body, _ := s.do(t, fiber.MethodGet, "/events", "", "")
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Equal(t, "UNAUTHORIZED", errorCode(body))
}

func TestStaffCannotCreateEvent(t *testing.T) {
	s := newTestServer(t)
	status, body, _ := s.do(t, fiber.MethodPost, "/events", "staff", validEventBody)
	assert.Equal(t, fiber.StatusForbidden, status)
	assert.Equal(t, "FORBIDDEN", errorCode(body))
	assert.Equal(t, int64(1), s.metrics.Snapshot().Errors["POST /events FORBIDDEN"])
}

func TestAdminCreatesEventWithDerivedFields(t *testing.T) {
	s := newTestServer(t)
	status, body, _ := s.do(t, fiber.MethodPost, "/events", "admin", validEventBody)
	require.Equal(t, fiber.StatusCreated, status)

	data := body["data"].(map[string]any)
	assert.Equal(t, "2025-02-19", data["payout_date"])
	assert.Equal(t, "Available", data["status"])
	assert.InDelta(t, 41400.00, data["net_sale"], 0.001)
	assert.InDelta(t, 41400.00, data["total_payout"], 0.001)
	assert.Equal(t, "$41,400.00", data["total_payout_display"])

	status, body, _ = s.do(t, fiber.MethodGet, "/events/"+data["id"].(string), "staff", "")
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "Summer Fest", body["data"].(map[string]any)["name"])
}

func TestEventValidationDetails(t *testing.T) {
	s := newTestServer(t)
	status, body, _ := s.do(t, fiber.MethodPost, "/events", "admin", `{"name":"","gateway":"Cash","event_date":"14/02/2025"}`)
	require.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_FAILED", errorCode(body))

	details := body["error"].(map[string]any)["details"].(map[string]any)
	assert.Contains(t, details, "name")
	assert.Contains(t, details, "gateway")
	assert.Contains(t, details, "event_date")
}

func TestMissingEventIsNotFound(t *testing.T) {
	s := newTestServer(t)
	status, body, _ := s.do(t, fiber.MethodGet, "/events/nope", "admin", "")
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", errorCode(body))
}

func TestMalformedIDsAreNotFound(t *testing.T) {
	s := newTestServer(t)
	cases := []struct {
		method, path string
	}{
		{fiber.MethodGet, "/events/abc"},
		{fiber.MethodGet, "/events/" + uuid.NewString()},
		{fiber.MethodPut, "/events/abc"},
		{fiber.MethodDelete, "/events/abc"},
		{fiber.MethodGet, "/tickets/abc"},
		{fiber.MethodGet, "/tickets/abc/backlog.md"},
		{fiber.MethodGet, "/articles/abc"},
	}
	for _, tc := range cases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			status, body, _ := s.do(t, tc.method, tc.path, "admin", validEventBody)
			assert.Equal(t, fiber.StatusNotFound, status)
			assert.Equal(t, "NOT_FOUND", errorCode(body))
		})
	}
}

func TestMalformedAssigneeFilterIsFieldError(t *testing.T) {
	s := newTestServer(t)
	status, body, _ := s.do(t, fiber.MethodGet, "/tickets?assignee_id=abc", "staff", "")
	require.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_FAILED", errorCode(body))
	assert.Contains(t, body["error"].(map[string]any)["details"], "assignee_id")
}

func TestUnknownRouteUsesErrorEnvelope(t *testing.T) {
	s := newTestServer(t)
	status, body, _ := s.do(t, fiber.MethodGet, "/does-not-exist", "", "")
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", errorCode(body))
}

func TestStaffDeleteTicketIsForbiddenAtTheEdge(t *testing.T) {
	s := newTestServer(t)
	status, body, _ := s.do(t, fiber.MethodDelete, "/tickets/tk-1", "staff", "")
	assert.Equal(t, fiber.StatusForbidden, status)
	assert.Equal(t, "FORBIDDEN", errorCode(body))
}

func TestPreviewNeedsNoMutationRights(t *testing.T) {
	s := newTestServer(t)
	status, body, _ := s.do(t, fiber.MethodPost, "/events/preview", "staff",
		`{"event_date":"2025-12-31","gross_sale":100,"service_fee":10,"gateway_fee":5}`)
	require.Equal(t, fiber.StatusOK, status)
	data := body["data"].(map[string]any)
	assert.Equal(t, "2026-01-05", data["payout_date"])
	assert.InDelta(t, 85.0, data["net_sale"], 0.001)
}
