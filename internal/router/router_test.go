package router

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/raw-dani/pos-only/internal/apierror"
	"github.com/raw-dani/pos-only/internal/config"
	"github.com/raw-dani/pos-only/internal/dto"
	"github.com/raw-dani/pos-only/internal/rbac"
	"github.com/raw-dani/pos-only/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() { gin.SetMode(gin.TestMode) }

type stubAuth struct{ service.AuthService }

var tokens = map[string]rbac.Role{
	"admin-token":   rbac.RoleAdmin,
	"manager-token": rbac.RoleManager,
	"cashier-token": rbac.RoleCashier,
}

func (stubAuth) Verify(_ context.Context, token string) (*service.Identity, error) {
	role, ok := tokens[token]
	if !ok {
		return nil, apierror.Unauthenticated("invalid or expired token")
	}
	return &service.Identity{UserID: uuid.New(), Username: strings.TrimSuffix(token, "-token"), Role: role}, nil
}

type stubSettings struct {
	service.SettingService
	updates int
	getErr  error
}

func (s *stubSettings) Get(context.Context) (*dto.SettingResponse, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	return &dto.SettingResponse{StoreName: "Toko"}, nil
}

func (s *stubSettings) Update(context.Context, dto.UpdateSettingRequest) (*dto.SettingResponse, error) {
	s.updates++
	return &dto.SettingResponse{StoreName: "Toko Baru"}, nil
}

type stubMethods struct{ service.PaymentMethodService }

func (stubMethods) ListActive(context.Context) ([]dto.PaymentMethodResponse, error) {
	return []dto.PaymentMethodResponse{}, nil
}

type stubUsers struct{ service.UserService }

func (stubUsers) List(context.Context) ([]dto.UserResponse, error) {
	return []dto.UserResponse{}, nil
}

func newTestEngine(settings *stubSettings) *gin.Engine {
	svcs := &Services{
		Auth:           stubAuth{},
		Settings:       settings,
		PaymentMethods: stubMethods{},
		Users:          stubUsers{},
	}
	return New(&config.Config{Env: "test"}, svcs, nil, nil, nil)
}

func call(r http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestSettingsUpdate_CashierForbidden(t *testing.T) {
	settings := &stubSettings{}
	r := newTestEngine(settings)

	w := call(r, http.MethodPut, "/api/settings", "cashier-token", `{"storeName":"Hacked"}`)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "settings:update")
	assert.Zero(t, settings.updates)

	w = call(r, http.MethodPut, "/api/settings", "admin-token", `{"storeName":"Toko Baru"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 1, settings.updates)
}

func TestProtectedRoutesRequireBearer(t *testing.T) {
	r := newTestEngine(&stubSettings{})

	for _, path := range []string{"/api/settings", "/api/products", "/api/invoices", "/api/reports/sales", "/api/auth/me"} {
		w := call(r, http.MethodGet, path, "", "")
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)

		w = call(r, http.MethodGet, path, "forged", "")
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}
}

func TestPaymentMethodList_OpenToCashiers(t *testing.T) {
	r := newTestEngine(&stubSettings{})

	w := call(r, http.MethodGet, "/api/payment-methods", "cashier-token", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = call(r, http.MethodPost, "/api/payment-methods", "cashier-token", `{"name":"Debit","type":"transfer"}`)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestUsers_AdminOnly(t *testing.T) {
	r := newTestEngine(&stubSettings{})

	w := call(r, http.MethodGet, "/api/users", "manager-token", "")
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = call(r, http.MethodGet, "/api/users", "admin-token", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestStorageErrorsAreSanitized(t *testing.T) {
	r := newTestEngine(&stubSettings{getErr: errors.New("load setting: dial tcp 10.0.0.5:5432: connection refused")})

	w := call(r, http.MethodGet, "/api/settings", "admin-token", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"internal server error"}`, w.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	r := newTestEngine(&stubSettings{})

	call(r, http.MethodGet, "/api/settings", "admin-token", "")
	w := call(r, http.MethodGet, "/metrics", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "http_requests_total")
}
