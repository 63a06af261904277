package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	iauth "github.com/charlesng35/fitcentre/internal/auth"
	"github.com/charlesng35/fitcentre/internal/database/testutil"
	"github.com/charlesng35/fitcentre/internal/models"
	"github.com/charlesng35/fitcentre/internal/permissions"
	apperrors "github.com/charlesng35/fitcentre/pkg/errors"
)

type authFixture struct {
	svc    *AuthService
	jwt    *iauth.JWTService
	db     *gorm.DB
	mailer *captureMailer
}

func newAuthFixture(t *testing.T) authFixture {
	t.Helper()
	db := testutil.MustOpenTestDB(t, testutil.WithSeedData())
	mailer := &captureMailer{}

	lifecycle, err := NewLifecycleService(db, mailer)
	require.NoError(t, err)
	resolver, err := permissions.NewResolver(db)
	require.NoError(t, err)
	jwt := newTestJWT(t)

	svc, err := NewAuthService(db, jwt, resolver, lifecycle)
	require.NoError(t, err)
	return authFixture{svc: svc, jwt: jwt, db: db, mailer: mailer}
}

func TestAdminLoginIssuesTokenWithPermissions(t *testing.T) {
	f := newAuthFixture(t)
	admin := createAdmin(t, f.db, "sales@example.com", "+254700000001", permissions.RoleSales)

	session, err := f.svc.AdminLogin(context.Background(), "Sales@Example.com", "password123")
	require.NoError(t, err)
	require.Equal(t, admin.ID, session.Account.ID)
	require.Equal(t, []string{permissions.AdsList, permissions.AdsView}, session.Permissions)
	require.NotNil(t, session.Account.LastLoginAt)
	require.NotNil(t, session.Account.Role)
	require.Equal(t, permissions.RoleSales, session.Account.Role.Name)

	claims, err := f.jwt.ValidateAccessToken(session.Token)
	require.NoError(t, err)
	require.Equal(t, admin.ID, claims.AccountID)
	require.Equal(t, models.PlatformAdminPortal, claims.Platform)
	require.Equal(t, "sales@example.com", claims.Email)
}

func TestAdminLoginFailures(t *testing.T) {
	f := newAuthFixture(t)
	createAdmin(t, f.db, "staff@example.com", "+254700000001", "")
	createConsumer(t, f.db, "member@example.com", "+254700000002", true)
	ctx := context.Background()

	_, err := f.svc.AdminLogin(ctx, "ghost@example.com", "password123")
	require.ErrorIs(t, err, ErrAdminEmailNotFound)

	_, err = f.svc.AdminLogin(ctx, "member@example.com", "password123")
	require.ErrorIs(t, err, apperrors.ErrPlatformMismatch)

	_, err = f.svc.AdminLogin(ctx, "staff@example.com", "nope")
	require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	session, err := f.svc.AdminLogin(ctx, "staff@example.com", "password123")
	require.NoError(t, err)
	require.Empty(t, session.Permissions)
}

func TestRegisterCreatesPendingConsumer(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	account, err := f.svc.Register(ctx, RegisterInput{
		Salutation:  "Ms",
		FullName:    "Jane Member",
		PhoneNumber: "+254700000010",
		Email:       "Jane@Example.com",
		Password:    "secret-pass",
	})
	require.NoError(t, err)
	require.Equal(t, "jane@example.com", account.Email)
	require.Equal(t, models.PlatformConsumerApp, account.Platform)
	require.False(t, account.IsVerified)
	require.Nil(t, account.RoleID)
	require.Equal(t, 1, f.mailer.count())

	stored := reload(t, f.db, account.ID)
	require.Equal(t, models.AccountOTPPending, stored.State())
	require.Equal(t, mailedCode(t, f.mailer.last(t)), *stored.OTPCode)
}

func TestRegisterRefreshesUnverifiedAccount(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	first, err := f.svc.Register(ctx, RegisterInput{FullName: "Jane", PhoneNumber: "+254700000010", Email: "jane@example.com"})
	require.NoError(t, err)

	second, err := f.svc.Register(ctx, RegisterInput{FullName: "Jane Doe", PhoneNumber: "+254700000011", Email: "jane@example.com"})
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)
	require.Equal(t, 2, f.mailer.count())

	stored := reload(t, f.db, first.ID)
	require.Equal(t, "Jane Doe", stored.FullName)
	require.Equal(t, "+254700000011", stored.PhoneNumber)

	var count int64
	require.NoError(t, f.db.Model(&models.Account{}).Where("email = ?", "jane@example.com").Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestRegisterRejectsExistingAccounts(t *testing.T) {
	f := newAuthFixture(t)
	createAdmin(t, f.db, "staff@example.com", "+254700000001", "")
	createConsumer(t, f.db, "member@example.com", "+254700000002", true)
	ctx := context.Background()

	_, err := f.svc.Register(ctx, RegisterInput{FullName: "Staff", PhoneNumber: "+254700000003", Email: "staff@example.com"})
	require.ErrorIs(t, err, ErrUseAdminPortal)

	_, err = f.svc.Register(ctx, RegisterInput{FullName: "Member", PhoneNumber: "+254700000004", Email: "member@example.com"})
	require.ErrorIs(t, err, ErrEmailRegistered)

	_, err = f.svc.Register(ctx, RegisterInput{FullName: "Other", PhoneNumber: "+254700000002", Email: "other@example.com"})
	require.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestConsumerLoginAndVerify(t *testing.T) {
	f := newAuthFixture(t)
	member := createConsumer(t, f.db, "member@example.com", "+254700000001", true)
	ctx := context.Background()

	require.ErrorIs(t, f.svc.ConsumerLogin(ctx, "member@example.com", "wrong", ""), apperrors.ErrInvalidCredentials)
	require.ErrorIs(t, f.svc.ConsumerLogin(ctx, "ghost@example.com", "password123", ""), apperrors.ErrInvalidCredentials)
	require.Zero(t, f.mailer.count())

	require.NoError(t, f.svc.ConsumerLogin(ctx, "member@example.com", "password123", "fcm-device-token"))
	stored := reload(t, f.db, member.ID)
	require.NotNil(t, stored.FCMToken)
	require.Equal(t, "fcm-device-token", *stored.FCMToken)

	session, err := f.svc.VerifyLoginOTP(ctx, "member@example.com", mailedCode(t, f.mailer.last(t)))
	require.NoError(t, err)
	require.Equal(t, "member@example.com", session.Account.Email)

	claims, err := f.jwt.ValidateAccessToken(session.Token)
	require.NoError(t, err)
	require.Equal(t, member.ID, claims.AccountID)
	require.Equal(t, models.PlatformConsumerApp, claims.Platform)

	require.NoError(t, f.svc.Logout(ctx, member.ID))
	require.Nil(t, reload(t, f.db, member.ID).FCMToken)
}

func TestConsumerLoginRejectsAdminAndUnverified(t *testing.T) {
	f := newAuthFixture(t)
	createAdmin(t, f.db, "staff@example.com", "+254700000001", "")
	createConsumer(t, f.db, "pending@example.com", "+254700000002", false)
	ctx := context.Background()

	require.ErrorIs(t, f.svc.ConsumerLogin(ctx, "staff@example.com", "password123", ""), ErrUseAdminPortal)
	require.ErrorIs(t, f.svc.ConsumerLogin(ctx, "pending@example.com", "password123", ""), apperrors.ErrAccountNotVerified)
}

func TestVerifyLoginOTPRejectsBadCode(t *testing.T) {
	f := newAuthFixture(t)
	createConsumer(t, f.db, "member@example.com", "+254700000001", true)
	ctx := context.Background()

	require.NoError(t, f.svc.ConsumerLogin(ctx, "member@example.com", "password123", ""))
	code := mailedCode(t, f.mailer.last(t))
	wrong := "123456"
	if code == wrong {
		wrong = "654321"
	}

	_, err := f.svc.VerifyLoginOTP(ctx, "member@example.com", wrong)
	require.ErrorIs(t, err, apperrors.ErrInvalidOTP)
}

func TestOTPLoginRejectsAdminAccounts(t *testing.T) {
	f := newAuthFixture(t)
	admin := createAdmin(t, f.db, "root@example.com", "+254700000001", permissions.RoleSuperAdmin)
	ctx := context.Background()

	require.ErrorIs(t, f.svc.lifecycle.RequestOTP(ctx, "root@example.com"), ErrUseAdminPortal)
	require.Zero(t, f.mailer.count())

	code := "246810"
	require.NoError(t, f.db.Model(admin).Updates(map[string]any{"otp_code": code, "otp_sent_at": time.Now()}).Error)

	session, err := f.svc.VerifyLoginOTP(ctx, "root@example.com", code)
	require.ErrorIs(t, err, ErrUseAdminPortal)
	require.Nil(t, session)
	require.NotNil(t, reload(t, f.db, admin.ID).OTPCode)
}
