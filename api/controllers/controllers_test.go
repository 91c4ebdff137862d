package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/ogsoda/delivery-backend/api/middleware"
	"github.com/ogsoda/delivery-backend/internal/admin"
	"github.com/ogsoda/delivery-backend/internal/auth"
	"github.com/ogsoda/delivery-backend/internal/customers"
	"github.com/ogsoda/delivery-backend/internal/orders"
	"github.com/ogsoda/delivery-backend/internal/users"
	"github.com/ogsoda/delivery-backend/pkg/enums"
	pkgerrors "github.com/ogsoda/delivery-backend/pkg/errors"
	"github.com/ogsoda/delivery-backend/pkg/pagination"
	"github.com/ogsoda/delivery-backend/pkg/types"
)

type errorEnvelope struct {
	Error struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorEnvelope {
	t.Helper()
	var env errorEnvelope
	if err := json.NewDecoder(rec.Body).Decode(&env); err != nil {
		t.Fatalf("decode error envelope: %v", err)
	}
	return env
}

func TestHealthHealthy(t *testing.T) {
	rec := httptest.NewRecorder()
	Health(nil, stubPinger{}, stubPinger{}, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	var env struct {
		Data healthStatus `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.Data.Status != "healthy" || env.Data.Database != "connected" {
		t.Fatalf("unexpected body %+v", env.Data)
	}
}

func TestHealthDatabaseDown(t *testing.T) {
	rec := httptest.NewRecorder()
	Health(nil, stubPinger{err: errors.New("refused")}, nil, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 got %d", rec.Code)
	}
	var env struct {
		Data healthStatus `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.Data.Status != "unhealthy" || env.Data.Database != "disconnected" {
		t.Fatalf("unexpected body %+v", env.Data)
	}
}

func TestCustomerCreateReturnsCreated(t *testing.T) {
	svc := &stubCustomerService{created: &customers.CustomerDTO{ID: 3, ShopName: "Corner", Phone: "555"}}
	body := `{"shop_name":"Corner","owner_name":"Ann","phone":"555","address":"1 Main"}`
	req := httptest.NewRequest(http.MethodPost, "/customers", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()

	CustomerCreate(svc, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.lastCreate.ShopName != "Corner" {
		t.Fatalf("expected request forwarded, got %+v", svc.lastCreate)
	}
}

func TestCustomerCreateValidation(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/customers", bytes.NewBufferString(`{"shop_name":"Corner"}`))
	rec := httptest.NewRecorder()

	CustomerCreate(&stubCustomerService{}, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
	if env := decodeError(t, rec); env.Error.Code != string(pkgerrors.CodeValidation) {
		t.Fatalf("unexpected code %s", env.Error.Code)
	}
}

func TestCustomerGetNotFound(t *testing.T) {
	svc := &stubCustomerService{err: pkgerrors.New(pkgerrors.CodeNotFound, "Customer not found")}
	req := withURLParam(httptest.NewRequest(http.MethodGet, "/customers/9", nil), "id", "9")
	rec := httptest.NewRecorder()

	CustomerGet(svc, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", rec.Code)
	}
	if env := decodeError(t, rec); env.Error.Message != "Customer not found" {
		t.Fatalf("unexpected message %q", env.Error.Message)
	}
}

func TestCustomerGetRejectsBadID(t *testing.T) {
	req := withURLParam(httptest.NewRequest(http.MethodGet, "/customers/abc", nil), "id", "abc")
	rec := httptest.NewRecorder()

	CustomerGet(&stubCustomerService{}, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestCustomerDeleteReturnsMessage(t *testing.T) {
	req := withURLParam(httptest.NewRequest(http.MethodDelete, "/customers/4", nil), "id", "4")
	rec := httptest.NewRecorder()

	CustomerDelete(&stubCustomerService{}, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	var env types.Envelope[types.Message]
	if err := json.NewDecoder(rec.Body).Decode(&env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.Data.Message != customers.DeletedMessage {
		t.Fatalf("unexpected message %q", env.Data.Message)
	}
}

func TestOrderAgentSummaryInvalidRole(t *testing.T) {
	agg := stubAggregator{agentErr: &orders.RoleMismatchError{UserID: 5, Actual: enums.UserRoleCustomer, Required: enums.UserRoleAgent}}
	req := withURLParam(httptest.NewRequest(http.MethodGet, "/orders/agent/5/summary", nil), "user_id", "5")
	rec := httptest.NewRecorder()

	OrderAgentSummary(agg, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
	env := decodeError(t, rec)
	if env.Error.Code != string(pkgerrors.CodeInvalidRole) {
		t.Fatalf("expected INVALID_ROLE got %s", env.Error.Code)
	}
	if env.Error.Details["role"] != "customer" {
		t.Fatalf("expected role detail, got %v", env.Error.Details)
	}
}

func TestOrderAgentSummarySuccess(t *testing.T) {
	agg := stubAggregator{agent: &orders.AgentSummary{TotalOrders: 2, TotalTraysOutside: 7}}
	req := withURLParam(httptest.NewRequest(http.MethodGet, "/orders/agent/5/summary", nil), "user_id", "5")
	rec := httptest.NewRecorder()

	OrderAgentSummary(agg, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	var env struct {
		Data map[string]int64 `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.Data["total_orders"] != 2 || env.Data["total_trays_outside"] != 7 {
		t.Fatalf("unexpected summary %v", env.Data)
	}
}

func TestOrderDateSummaryParsesTimestamp(t *testing.T) {
	agg := &recordingAggregator{}
	req := httptest.NewRequest(http.MethodGet, "/orders/summary/by-date?timestamp=2024-03-05T10:30:00", nil)
	rec := httptest.NewRecorder()

	OrderDateSummary(agg, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	want := time.Date(2024, 3, 5, 10, 30, 0, 0, time.UTC)
	if !agg.ts.Equal(want) {
		t.Fatalf("expected %v got %v", want, agg.ts)
	}
}

func TestOrderDateSummaryRequiresTimestamp(t *testing.T) {
	rec := httptest.NewRecorder()
	OrderDateSummary(&recordingAggregator{}, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/orders/summary/by-date", nil))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestUserPasswordHashForwardsQuery(t *testing.T) {
	svc := &stubUserService{hash: &users.PasswordHashResponse{ID: 1, PasswordHash: "$2a$12$x", Note: users.PasswordHashNote}}
	req := httptest.NewRequest(http.MethodGet, "/users/password-hash?user_id=1&email=%20a@b.c%20", nil)
	rec := httptest.NewRecorder()

	UserPasswordHash(svc, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if svc.lastQuery.UserID == nil || *svc.lastQuery.UserID != 1 {
		t.Fatalf("expected user id forwarded, got %+v", svc.lastQuery)
	}
	if svc.lastQuery.Email != "a@b.c" {
		t.Fatalf("expected trimmed email, got %q", svc.lastQuery.Email)
	}
}

func TestUserListByRoleForwardsRole(t *testing.T) {
	svc := &stubUserService{}
	req := withURLParam(httptest.NewRequest(http.MethodGet, "/users/role/Agent", nil), "role", "Agent")
	rec := httptest.NewRecorder()

	UserListByRole(svc, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if svc.lastRole != "Agent" {
		t.Fatalf("expected raw role forwarded, got %q", svc.lastRole)
	}
}

func TestAuthMeUsesContextUser(t *testing.T) {
	svc := &stubAuthService{me: &users.UserDTO{ID: 8, Name: "Agent"}}
	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req = req.WithContext(middleware.WithIdentity(req.Context(), 8, enums.UserRoleAgent, "access"))
	rec := httptest.NewRecorder()

	AuthMe(svc, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if svc.meID != 8 {
		t.Fatalf("expected lookup for user 8, got %d", svc.meID)
	}
}

func TestAuthLogoutRevokesSession(t *testing.T) {
	svc := &stubAuthService{}
	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	req = req.WithContext(middleware.WithIdentity(req.Context(), 8, enums.UserRoleAgent, "access-1"))
	rec := httptest.NewRecorder()

	AuthLogout(svc, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if svc.revoked != "access-1" {
		t.Fatalf("expected access-1 revoked, got %q", svc.revoked)
	}
}

func TestAuthRefreshPassesBearerToken(t *testing.T) {
	svc := &stubAuthService{token: &auth.TokenResponse{AccessToken: "new"}}
	req := httptest.NewRequest(http.MethodPost, "/auth/refresh", bytes.NewBufferString(`{"refresh_token":"r1"}`))
	req.Header.Set("Authorization", "Bearer old")
	rec := httptest.NewRecorder()

	AuthRefresh(svc, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.refresh.AccessToken != "old" || svc.refresh.RefreshToken != "r1" {
		t.Fatalf("unexpected refresh request %+v", svc.refresh)
	}
}

func TestAuthLoginUnauthorized(t *testing.T) {
	svc := &stubAuthService{err: pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")}
	req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewBufferString(`{"identifier":"a@b.c","password":"x"}`))
	rec := httptest.NewRecorder()

	AuthLogin(svc, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rec.Code)
	}
}

func TestAdminMetrics(t *testing.T) {
	svc := stubAdminService{dashboard: &admin.Dashboard{TotalCustomers: 4, TotalOrders: 9, PaymentStatusSummary: map[string]int64{"paid": 6}}}
	rec := httptest.NewRecorder()

	AdminMetrics(svc, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	var env struct {
		Data admin.Dashboard `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.Data.TotalOrders != 9 || env.Data.PaymentStatusSummary["paid"] != 6 {
		t.Fatalf("unexpected dashboard %+v", env.Data)
	}
}

type stubPinger struct{ err error }

func (s stubPinger) Ping(context.Context) error { return s.err }

type stubCustomerService struct {
	created    *customers.CustomerDTO
	lastCreate customers.CreateCustomerRequest
	err        error
}

func (s *stubCustomerService) Create(_ context.Context, req customers.CreateCustomerRequest) (*customers.CustomerDTO, error) {
	s.lastCreate = req
	return s.created, s.err
}

func (s *stubCustomerService) List(context.Context, pagination.Params) ([]customers.CustomerDTO, error) {
	return nil, s.err
}

func (s *stubCustomerService) Get(_ context.Context, id int64) (*customers.CustomerDTO, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &customers.CustomerDTO{ID: id}, nil
}

func (s *stubCustomerService) Update(_ context.Context, id int64, _ customers.UpdateCustomerRequest) (*customers.CustomerDTO, error) {
	return &customers.CustomerDTO{ID: id}, s.err
}

func (s *stubCustomerService) Delete(context.Context, int64) error { return s.err }

func (s *stubCustomerService) Exists(context.Context, int64) (bool, error) { return s.err == nil, nil }

func (s *stubCustomerService) Count(context.Context) (int64, error) { return 0, s.err }

type stubAggregator struct {
	agent    *orders.AgentSummary
	agentErr error
}

func (s stubAggregator) SummaryByAgent(context.Context, int64) (*orders.AgentSummary, error) {
	return s.agent, s.agentErr
}

func (s stubAggregator) SummaryByDate(context.Context, time.Time) (*orders.DailySummary, error) {
	return &orders.DailySummary{}, nil
}

func (s stubAggregator) PaymentStatusSummary(context.Context) ([]orders.PaymentStatusCount, error) {
	return nil, nil
}

type recordingAggregator struct {
	stubAggregator
	ts time.Time
}

func (r *recordingAggregator) SummaryByDate(_ context.Context, ts time.Time) (*orders.DailySummary, error) {
	r.ts = ts
	return &orders.DailySummary{}, nil
}

type stubUserService struct {
	hash      *users.PasswordHashResponse
	lastQuery users.PasswordHashQuery
	lastRole  string
}

func (s *stubUserService) List(context.Context, pagination.Params) ([]users.UserDTO, error) {
	return nil, nil
}

func (s *stubUserService) ListExcludingPowerAdmin(context.Context, pagination.Params) ([]users.UserDTO, error) {
	return nil, nil
}

func (s *stubUserService) ListByRole(_ context.Context, role string, _ pagination.Params) ([]users.UserDTO, error) {
	s.lastRole = role
	return []users.UserDTO{}, nil
}

func (s *stubUserService) Get(_ context.Context, id int64) (*users.UserDTO, error) {
	return &users.UserDTO{ID: id}, nil
}

func (s *stubUserService) Create(context.Context, users.CreateUserRequest) (*users.UserDTO, error) {
	return &users.UserDTO{ID: 1}, nil
}

func (s *stubUserService) Update(_ context.Context, id int64, _ users.UpdateUserRequest) (*users.UserDTO, error) {
	return &users.UserDTO{ID: id}, nil
}

func (s *stubUserService) Delete(context.Context, int64) error { return nil }

func (s *stubUserService) PasswordHash(_ context.Context, query users.PasswordHashQuery) (*users.PasswordHashResponse, error) {
	s.lastQuery = query
	return s.hash, nil
}

type stubAuthService struct {
	token   *auth.TokenResponse
	me      *users.UserDTO
	err     error
	meID    int64
	revoked string
	refresh auth.RefreshRequest
}

func (s *stubAuthService) Login(context.Context, auth.LoginRequest) (*auth.TokenResponse, error) {
	return s.token, s.err
}

func (s *stubAuthService) Refresh(_ context.Context, req auth.RefreshRequest) (*auth.TokenResponse, error) {
	s.refresh = req
	return s.token, s.err
}

func (s *stubAuthService) Logout(_ context.Context, accessID string) error {
	s.revoked = accessID
	return s.err
}

func (s *stubAuthService) Me(_ context.Context, userID int64) (*users.UserDTO, error) {
	s.meID = userID
	return s.me, s.err
}

type stubAdminService struct {
	dashboard *admin.Dashboard
}

func (s stubAdminService) Dashboard(context.Context) (*admin.Dashboard, error) {
	return s.dashboard, nil
}
