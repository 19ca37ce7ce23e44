package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/hospital-api/internal/middleware"
	"github.com/jwalitptl/hospital-api/internal/model"
	"github.com/jwalitptl/hospital-api/internal/service/account"
	"github.com/jwalitptl/hospital-api/internal/service/appointment"
	"github.com/jwalitptl/hospital-api/internal/service/audit"
	authsvc "github.com/jwalitptl/hospital-api/internal/service/auth"
	"github.com/jwalitptl/hospital-api/internal/service/billing"
	"github.com/jwalitptl/hospital-api/internal/service/dashboard"
	"github.com/jwalitptl/hospital-api/internal/service/inventory"
	"github.com/jwalitptl/hospital-api/internal/service/prescription"
	"github.com/jwalitptl/hospital-api/internal/session"
	"github.com/jwalitptl/hospital-api/internal/testutil"
	"github.com/jwalitptl/hospital-api/pkg/auth"
)

type envelope struct {
	Status   string            `json:"status"`
	Message  string            `json:"message"`
	Data     json.RawMessage   `json:"data"`
	Errors   map[string]string `json:"errors"`
	Redirect string            `json:"redirect"`
}

type testServer struct {
	t      *testing.T
	engine *gin.Engine
	f      *testutil.Fixture
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	f := testutil.NewFixture(t)
	jwtSvc := auth.NewJWTService("test-secret", "hospital-api", time.Hour)

	r := NewRouter(Services{
		Auth:          authsvc.NewService(f.Store, jwtSvc, session.NewMemoryStore(time.Hour), f.Hasher),
		Accounts:      account.NewService(f.Store, f.Hasher),
		Appointments:  appointment.NewService(f.Store),
		Prescriptions: prescription.NewService(f.Store),
		Billing:       billing.NewService(f.Store),
		Inventory:     inventory.NewService(f.Store),
		Dashboard:     dashboard.NewService(f.Store),
		Audit:         audit.NewService(f.Store.Audit()),
	}, f.Store, RouterConfig{
		Mode:          gin.TestMode,
		CORS:          middleware.CORSConfig{AllowOrigins: []string{"*"}},
		Security:      middleware.DefaultSecurityConfig(),
		SizeLimit:     middleware.DefaultSizeLimitConfig(),
		ExposeMetrics: true,
	})
	return &testServer{t: t, engine: r.Engine(), f: f}
}

func (s *testServer) do(method, path, token string, body interface{}) (int, envelope) {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w.Code, env
}

func (s *testServer) login(username string) string {
	s.t.Helper()
	code, env := s.do(http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"username": username,
		"password": testutil.Password,
	})
	require.Equal(s.t, http.StatusOK, code, env.Message)

	var resp model.LoginResponse
	require.NoError(s.t, json.Unmarshal(env.Data, &resp))
	return resp.AccessToken
}

func decode[T any](t *testing.T, env envelope) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(env.Data, &v))
	return v
}

func TestAliceBobScenario(t *testing.T) {
	s := newTestServer(t)
	alice := s.login("alice")
	bob := s.login("bob")

	code, env := s.do(http.MethodPost, "/api/v1/appointments", alice, gin.H{
		"doctor_id": s.f.Bob.ProfileID.String(),
		"date":      "2024-07-01T10:00",
	})
	require.Equal(t, http.StatusCreated, code, env.Message)
	apt := decode[model.Appointment](t, env)
	assert.Equal(t, model.AppointmentStatusScheduled, apt.Status)

	for _, step := range []struct {
		action, newDate string
		want            model.AppointmentStatus
	}{
		{"Accept", "", model.AppointmentStatusAccepted},
		{"Reschedule", "2024-07-02T09:00", model.AppointmentStatusRescheduled},
		{"Complete", "", model.AppointmentStatusCompleted},
	} {
		code, env = s.do(http.MethodPost, "/api/v1/appointments/manage", bob, gin.H{
			"appointment_id": apt.ID.String(),
			"action":         step.action,
			"new_date":       step.newDate,
		})
		require.Equal(t, http.StatusOK, code, env.Message)
		assert.Equal(t, step.want, decode[model.Appointment](t, env).Status)
	}

	code, env = s.do(http.MethodPost, "/api/v1/patients/"+s.f.Alice.ProfileID.String()+"/prescriptions", bob, gin.H{
		"action":   "create",
		"medicine": "Aspirin",
		"dosage":   "100mg",
		"duration": "7 days",
	})
	require.Equal(t, http.StatusCreated, code, env.Message)
	rx := decode[model.Prescription](t, env)

	code, env = s.do(http.MethodPost, "/api/v1/prescriptions/"+rx.ID.String()+"/bills", bob, gin.H{"amount": "120.50"})
	require.Equal(t, http.StatusCreated, code, env.Message)
	bill := decode[model.Billing](t, env)
	assert.Equal(t, "Bill generated for Alice Smith by Dr. Bob Brown", bill.Description)

	code, env = s.do(http.MethodGet, "/api/v1/bills", alice, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, decode[[]model.BillingView](t, env), 1)

	code, env = s.do(http.MethodGet, "/api/v1/prescriptions", alice, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, decode[[]model.PrescriptionView](t, env), 1)

	code, _ = s.do(http.MethodDelete, "/api/v1/appointments/"+apt.ID.String(), bob, nil)
	assert.Equal(t, http.StatusOK, code)
}

func TestStaffDeletesForeignPrescription(t *testing.T) {
	s := newTestServer(t)
	rx := s.f.Prescription(t, s.f.Alice, s.f.Bob)

	carol := s.login("carol")
	code, env := s.do(http.MethodDelete, "/api/v1/prescriptions/"+rx.ID.String(), carol, nil)
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "/api/v1/dashboard/patient", env.Redirect)

	sam := s.login("sam")
	code, _ = s.do(http.MethodDelete, "/api/v1/prescriptions/"+rx.ID.String(), sam, nil)
	assert.Equal(t, http.StatusOK, code)

	code, _ = s.do(http.MethodDelete, "/api/v1/prescriptions/"+rx.ID.String(), sam, nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestDeletedAccountsLoseTheirSessions(t *testing.T) {
	s := newTestServer(t)
	eve := s.f.AddStaff(t, "eve", "Eve", "Black")
	apt := s.f.Appointment(t, s.f.Alice, s.f.Bob, model.AppointmentStatusScheduled)

	eveToken := s.login("eve")
	daveToken := s.login("dave")
	sam := s.login("sam")

	code, env := s.do(http.MethodDelete, "/api/v1/staff/"+eve.ProfileID.String(), sam, nil)
	require.Equal(t, http.StatusOK, code, env.Message)
	assert.Equal(t, "staff member deleted", env.Message)
	assert.Equal(t, "/api/v1/dashboard/staff", env.Redirect)

	code, env = s.do(http.MethodDelete, "/api/v1/appointments/"+apt.ID.String(), eveToken, nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, model.HomePath, env.Redirect)
	code, _ = s.do(http.MethodGet, "/api/v1/inventory", eveToken, nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, env = s.do(http.MethodDelete, "/api/v1/doctors/"+s.f.Dave.ProfileID.String(), sam, nil)
	require.Equal(t, http.StatusOK, code, env.Message)
	assert.Equal(t, "doctor deleted", env.Message)

	code, _ = s.do(http.MethodGet, "/api/v1/appointments/manage", daveToken, nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, _ = s.do(http.MethodGet, "/api/v1/inventory", sam, nil)
	assert.Equal(t, http.StatusOK, code)
}

func TestProtectedRoutesRequireSession(t *testing.T) {
	s := newTestServer(t)

	code, env := s.do(http.MethodGet, "/api/v1/dashboard", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, model.HomePath, env.Redirect)

	code, _ = s.do(http.MethodGet, "/api/v1/dashboard", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	token := s.login("alice")
	code, _ = s.do(http.MethodPost, "/api/v1/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, code)

	code, _ = s.do(http.MethodGet, "/api/v1/dashboard", token, nil)
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestRoleGatesRedirectToOwnDashboard(t *testing.T) {
	s := newTestServer(t)
	alice := s.login("alice")

	code, env := s.do(http.MethodGet, "/api/v1/inventory", alice, nil)
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "/api/v1/dashboard/patient", env.Redirect)

	code, env = s.do(http.MethodGet, "/api/v1/dashboard/staff", alice, nil)
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "/api/v1/dashboard/patient", env.Redirect)

	code, _ = s.do(http.MethodGet, "/api/v1/dashboard", alice, nil)
	assert.Equal(t, http.StatusOK, code)
}

func TestRegisterReportsFieldErrors(t *testing.T) {
	s := newTestServer(t)

	code, env := s.do(http.MethodPost, "/api/v1/auth/register/patient", "", gin.H{
		"username":         "erin",
		"email":            "erin@hospital.test",
		"password":         "password123",
		"password_confirm": "password321",
		"dob":              "1990-02-30",
		"phone":            "555-0100",
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, env.Errors, "password_confirm")

	code, env = s.do(http.MethodPost, "/api/v1/auth/register/janitor", "", gin.H{})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, env.Errors, "role")
}

func TestRegisterThenLogin(t *testing.T) {
	s := newTestServer(t)

	code, env := s.do(http.MethodPost, "/api/v1/auth/register/patient", "", gin.H{
		"username":         "erin",
		"first_name":       "Erin",
		"last_name":        "Gray",
		"email":            "erin@hospital.test",
		"password":         "password123",
		"password_confirm": "password123",
		"dob":              "1990-02-14",
		"gender":           "F",
		"address":          "1 Main St",
		"phone":            "555-0100",
	})
	require.Equal(t, http.StatusCreated, code, env.Message)
	assert.Equal(t, model.RolePatient, decode[model.AccountCreated](t, env).Role)

	code, env = s.do(http.MethodPost, "/api/v1/auth/login", "", gin.H{"username": "erin", "password": "password123"})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "/api/v1/dashboard/patient", env.Redirect)
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t)

	code, _ := s.do(http.MethodGet, "/api/v1/health/ready", "", nil)
	assert.Equal(t, http.StatusOK, code)

	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "hms_api_http_requests_total")
}

func TestStaffReadsAuditLog(t *testing.T) {
	s := newTestServer(t)
	s.login("alice")
	sam := s.login("sam")

	code, env := s.do(http.MethodGet, "/api/v1/audit-logs?entity_type=identity", sam, nil)
	require.Equal(t, http.StatusOK, code, env.Message)
	logs := decode[[]model.AuditLog](t, env)
	require.NotEmpty(t, logs)
	for _, l := range logs {
		assert.Equal(t, model.AuditEntityIdentity, l.EntityType)
	}

	code, env = s.do(http.MethodGet, "/api/v1/audit-logs?limit=0", sam, nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, env.Errors, "limit")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/audit-logs/export", nil)
	req.Header.Set("Authorization", "Bearer "+sam)
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), "login")

	alice := s.login("alice")
	code, _ = s.do(http.MethodGet, "/api/v1/audit-logs", alice, nil)
	assert.Equal(t, http.StatusForbidden, code)
}
