package services

import (
	"context"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	iauth "github.com/charlesng35/fitcentre/internal/auth"
	"github.com/charlesng35/fitcentre/internal/models"
	"github.com/charlesng35/fitcentre/internal/permissions"
	"github.com/charlesng35/fitcentre/pkg/crypto"
	"github.com/charlesng35/fitcentre/pkg/mail"
)

type captureMailer struct {
	mu       sync.Mutex
	messages []mail.Message
	err      error
}

func (m *captureMailer) Send(_ context.Context, msg mail.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.messages = append(m.messages, msg)
	return nil
}

func (m *captureMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.messages)
}

func (m *captureMailer) last(t *testing.T) mail.Message {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	require.NotEmpty(t, m.messages, "no email was sent")
	return m.messages[len(m.messages)-1]
}

var (
	codePattern  = regexp.MustCompile(`\b(\d{6})\b`)
	tokenPattern = regexp.MustCompile(`token=([0-9a-f]{64})`)
)

func mailedCode(t *testing.T, msg mail.Message) string {
	t.Helper()
	match := codePattern.FindStringSubmatch(msg.TextBody)
	require.Len(t, match, 2, "no code in %q", msg.TextBody)
	return match[1]
}

func mailedToken(t *testing.T, msg mail.Message) string {
	t.Helper()
	match := tokenPattern.FindStringSubmatch(msg.TextBody)
	require.Len(t, match, 2, "no token in %q", msg.TextBody)
	return match[1]
}

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func createAccount(t *testing.T, db *gorm.DB, account models.Account, password string) *models.Account {
	t.Helper()
	if password != "" {
		hash, err := crypto.HashPassword(password)
		require.NoError(t, err)
		account.Password = &hash
	}
	if account.FullName == "" {
		account.FullName = "Test Member"
	}
	require.NoError(t, db.Create(&account).Error)
	return &account
}

func createConsumer(t *testing.T, db *gorm.DB, email, phone string, verified bool) *models.Account {
	t.Helper()
	return createAccount(t, db, models.Account{
		Email:       email,
		PhoneNumber: phone,
		IsVerified:  verified,
		Platform:    models.PlatformConsumerApp,
	}, "password123")
}

func createAdmin(t *testing.T, db *gorm.DB, email, phone, roleName string) *models.Account {
	t.Helper()
	account := models.Account{
		Email:       email,
		PhoneNumber: phone,
		IsVerified:  true,
		Platform:    models.PlatformAdminPortal,
	}
	if roleName != "" {
		var role models.Role
		require.NoError(t, db.Take(&role, "name = ?", roleName).Error)
		account.RoleID = &role.ID
	}
	return createAccount(t, db, account, "password123")
}

func permissionIDs(t *testing.T, db *gorm.DB, keys ...string) []string {
	t.Helper()
	found, missing, err := permissions.LoadByKeys(context.Background(), db, keys)
	require.NoError(t, err)
	require.Empty(t, missing)
	ids := make([]string, len(found))
	for i, perm := range found {
		ids[i] = perm.ID
	}
	return ids
}

func newTestJWT(t *testing.T) *iauth.JWTService {
	t.Helper()
	svc, err := iauth.NewJWTService(iauth.JWTConfig{Secret: "test-secret", Issuer: "fitcentre-test"})
	require.NoError(t, err)
	return svc
}

func reload(t *testing.T, db *gorm.DB, id string) *models.Account {
	t.Helper()
	var account models.Account
	require.NoError(t, db.Take(&account, "id = ?", id).Error)
	return &account
}
