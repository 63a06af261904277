package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/charlesng35/fitcentre/internal/api"
	"github.com/charlesng35/fitcentre/internal/app"
	iauth "github.com/charlesng35/fitcentre/internal/auth"
	sharedtestutil "github.com/charlesng35/fitcentre/internal/database/testutil"
	"github.com/charlesng35/fitcentre/internal/middleware"
	"github.com/charlesng35/fitcentre/internal/models"
	"github.com/charlesng35/fitcentre/internal/services"
	"github.com/charlesng35/fitcentre/pkg/crypto"
	"github.com/charlesng35/fitcentre/pkg/mail"
)

// DefaultPassword is the password given to accounts created by the helpers.
const DefaultPassword = "password123"

// Env encapsulates a fully-wired API instance backed by an in-memory database for handler tests.
type Env struct {
	T      *testing.T
	DB     *gorm.DB
	Router *gin.Engine
	JWT    *iauth.JWTService
	Mailer *Mailer
	Clock  *Clock
}

// EnvOption customises the router configuration before it is built.
type EnvOption func(*app.Config)

// WithOTPRateLimit enables the OTP endpoint limiter.
func WithOTPRateLimit(requests int, window time.Duration) EnvOption {
	return func(cfg *app.Config) {
		cfg.RateLimit.OTPRequests = requests
		cfg.RateLimit.OTPWindow = window
	}
}

// NewEnv provisions a fresh handler test environment with migrations and seed data applied.
func NewEnv(t *testing.T, opts ...EnvOption) *Env {
	t.Helper()

	gin.SetMode(gin.TestMode)

	db := sharedtestutil.MustOpenTestDB(t, sharedtestutil.WithSeedData())

	cfg := &app.Config{
		Auth: app.AuthConfig{
			JWT: app.JWTSettings{
				Secret: "test-suite-super-secret-key-32-bytes!!",
				Issuer: "test-suite",
				TTL:    24 * time.Hour,
			},
			Reset: app.ResetSettings{BaseURL: "https://admin.fitcentre.test"},
		},
	}
	for _, opt := range opts {
		opt(cfg)
	}

	jwtSvc, err := iauth.NewJWTService(cfg.Auth.JWTServiceConfig())
	require.NoError(t, err)

	mailer := &Mailer{}
	clock := &Clock{now: time.Now().UTC()}

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	router, err := api.NewRouter(api.Dependencies{
		DB:               db,
		JWT:              jwtSvc,
		Mailer:           mailer,
		Config:           cfg,
		RateStore:        middleware.NewMemoryRateStore(ctx),
		LifecycleOptions: []services.LifecycleOption{services.WithLifecycleClock(clock.Now)},
	})
	require.NoError(t, err)

	return &Env{
		T:      t,
		DB:     db,
		Router: router,
		JWT:    jwtSvc,
		Mailer: mailer,
		Clock:  clock,
	}
}

// CreateAdmin inserts a verified admin portal account holding the named role.
// An empty role name leaves the account without a role.
func (e *Env) CreateAdmin(email, phone, roleName string) *models.Account {
	e.T.Helper()

	account := e.createAccount(email, phone, models.PlatformAdminPortal, true)
	if roleName != "" {
		var role models.Role
		require.NoError(e.T, e.DB.Take(&role, "name = ?", roleName).Error)
		require.NoError(e.T, e.DB.Model(account).Update("role_id", role.ID).Error)
		account.RoleID = &role.ID
	}
	return account
}

// CreateConsumer inserts a consumer app account.
func (e *Env) CreateConsumer(email, phone string, verified bool) *models.Account {
	e.T.Helper()
	return e.createAccount(email, phone, models.PlatformConsumerApp, verified)
}

func (e *Env) createAccount(email, phone string, platform models.Platform, verified bool) *models.Account {
	e.T.Helper()

	hashed, err := crypto.HashPassword(DefaultPassword)
	require.NoError(e.T, err)

	account := &models.Account{
		FullName:    "Test " + platform.String(),
		Email:       email,
		PhoneNumber: phone,
		Password:    &hashed,
		IsVerified:  verified,
		Platform:    platform,
	}
	require.NoError(e.T, e.DB.Create(account).Error)
	return account
}

// Reload fetches the current state of an account.
func (e *Env) Reload(id string) models.Account {
	e.T.Helper()
	var account models.Account
	require.NoError(e.T, e.DB.Take(&account, "id = ?", id).Error)
	return account
}

// AdminLoginResult mirrors the admin login payload.
type AdminLoginResult struct {
	Token       string          `json:"token"`
	ID          string          `json:"id"`
	Email       string          `json:"email"`
	Platform    models.Platform `json:"platform"`
	Role        string          `json:"role"`
	Permissions []string        `json:"permissions"`
}

// AdminLogin authenticates an admin portal account and returns the login payload.
func (e *Env) AdminLogin(email string) AdminLoginResult {
	e.T.Helper()

	w := e.Request(http.MethodPost, "/api/admin/auth/login", map[string]string{
		"email":    email,
		"password": DefaultPassword,
	}, "")
	require.Equal(e.T, http.StatusOK, w.Code, w.Body.String())

	var result AdminLoginResult
	DecodeInto(e.T, DecodeResponse(e.T, w).Data, &result)
	require.NotEmpty(e.T, result.Token)
	return result
}

// ConsumerToken runs the consumer login and OTP verification flow and returns the bearer token.
func (e *Env) ConsumerToken(email string) string {
	e.T.Helper()

	w := e.Request(http.MethodPost, "/api/auth/login", map[string]string{
		"email":    email,
		"password": DefaultPassword,
	}, "")
	require.Equal(e.T, http.StatusOK, w.Code, w.Body.String())

	w = e.Request(http.MethodPost, "/api/auth/verify-otp", map[string]string{
		"email":    email,
		"otp_code": e.Mailer.LastCode(e.T),
	}, "")
	require.Equal(e.T, http.StatusOK, w.Code, w.Body.String())

	var result struct {
		Token string `json:"token"`
	}
	DecodeInto(e.T, DecodeResponse(e.T, w).Data, &result)
	require.NotEmpty(e.T, result.Token)
	return result.Token
}

// APIResponse represents the canonical API envelope returned by handlers.
type APIResponse struct {
	Success    bool            `json:"success"`
	StatusCode int             `json:"status_code"`
	Message    string          `json:"message"`
	Data       json.RawMessage `json:"data"`
}

// FieldError mirrors a validation detail entry.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Page mirrors a paginated payload.
type Page[T any] struct {
	Items      []T   `json:"items"`
	Page       int   `json:"page"`
	PerPage    int   `json:"per_page"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// DecodeResponse parses the standard API response object from a recorder.
func DecodeResponse(t *testing.T, w *httptest.ResponseRecorder) APIResponse {
	t.Helper()
	var resp APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	require.Equal(t, w.Code, resp.StatusCode, w.Body.String())
	return resp
}

// DecodeInto unmarshals the data payload into the provided destination.
func DecodeInto[T any](t *testing.T, raw json.RawMessage, dest *T) {
	t.Helper()
	if dest == nil {
		t.Fatal("destination must not be nil")
	}
	require.NoError(t, json.Unmarshal(raw, dest))
}

// Request executes an HTTP request against the test router, applying JSON encoding and auth headers automatically.
func (e *Env) Request(method, path string, body any, token string) *httptest.ResponseRecorder {
	e.T.Helper()

	var buf *bytes.Buffer
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(e.T, err)
		buf = bytes.NewBuffer(data)
	} else {
		buf = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequest(method, path, buf)
	require.NoError(e.T, err)

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.Router.ServeHTTP(w, req)
	return w
}

var (
	codePattern  = regexp.MustCompile(`\b(\d{6})\b`)
	tokenPattern = regexp.MustCompile(`token=([0-9a-f]{64})`)
)

// Mailer records outgoing messages instead of delivering them.
type Mailer struct {
	mu       sync.Mutex
	messages []mail.Message
	Err      error
}

// Send implements mail.Mailer.
func (m *Mailer) Send(_ context.Context, msg mail.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.messages = append(m.messages, msg)
	return nil
}

// Count returns how many messages were sent.
func (m *Mailer) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.messages)
}

// Last returns the most recent message.
func (m *Mailer) Last(t *testing.T) mail.Message {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	require.NotEmpty(t, m.messages, "no email was sent")
	return m.messages[len(m.messages)-1]
}

// LastCode extracts the six digit code from the most recent message.
func (m *Mailer) LastCode(t *testing.T) string {
	t.Helper()
	msg := m.Last(t)
	match := codePattern.FindStringSubmatch(msg.TextBody)
	require.Len(t, match, 2, "no code in %q", msg.TextBody)
	return match[1]
}

// LastToken extracts the reset token from the most recent reset link.
func (m *Mailer) LastToken(t *testing.T) string {
	t.Helper()
	msg := m.Last(t)
	match := tokenPattern.FindStringSubmatch(msg.TextBody)
	require.Len(t, match, 2, "no token in %q", msg.TextBody)
	return match[1]
}

// Clock is a manually advanced time source for the credential lifecycle.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

// Now returns the current fake time.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward.
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
