package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	iauth "github.com/charlesng35/fitcentre/internal/auth"
	"github.com/charlesng35/fitcentre/internal/models"
	"github.com/charlesng35/fitcentre/internal/permissions"
	"github.com/charlesng35/fitcentre/pkg/crypto"
	apperrors "github.com/charlesng35/fitcentre/pkg/errors"
	"github.com/charlesng35/fitcentre/pkg/logger"
	"github.com/charlesng35/fitcentre/pkg/metrics"
)

// AdminSession is returned by a successful admin portal login.
type AdminSession struct {
	Token       string
	Account     *models.Account
	Permissions []string
}

// ConsumerSession is returned once a consumer verifies their login OTP.
type ConsumerSession struct {
	Token   string
	Account *models.Account
}

// RegisterInput describes a consumer registration.
type RegisterInput struct {
	Salutation  string
	FullName    string
	PhoneNumber string
	Email       string
	Username    string
	Password    string
}

// AuthService implements the admin portal and consumer app sign-in flows.
type AuthService struct {
	db        *gorm.DB
	jwt       *iauth.JWTService
	resolver  *permissions.Resolver
	lifecycle *LifecycleService
	now       func() time.Time
}

// NewAuthService constructs an AuthService.
func NewAuthService(db *gorm.DB, jwt *iauth.JWTService, resolver *permissions.Resolver, lifecycle *LifecycleService) (*AuthService, error) {
	switch {
	case db == nil:
		return nil, errors.New("auth service: db is required")
	case jwt == nil:
		return nil, errors.New("auth service: jwt service is required")
	case resolver == nil:
		return nil, errors.New("auth service: permission resolver is required")
	case lifecycle == nil:
		return nil, errors.New("auth service: lifecycle service is required")
	}
	return &AuthService{
		db:        db,
		jwt:       jwt,
		resolver:  resolver,
		lifecycle: lifecycle,
		now:       time.Now,
	}, nil
}

// AdminLogin authenticates an admin portal account with email and password and
// returns a token together with the account's resolved permissions.
func (s *AuthService) AdminLogin(ctx context.Context, email, password string) (*AdminSession, error) {
	ctx = ensureContext(ctx)

	var account models.Account
	err := s.db.WithContext(ctx).
		Preload("Role").
		Take(&account, "email = ?", normaliseEmail(email)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		metrics.AuthAttempts.WithLabelValues("admin_login", "unknown_email").Inc()
		return nil, ErrAdminEmailNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("auth service: load account: %w", err)
	}

	if !account.IsAdmin() {
		metrics.AuthAttempts.WithLabelValues("admin_login", "platform_mismatch").Inc()
		return nil, apperrors.ErrPlatformMismatch
	}
	if !account.HasPassword() || !crypto.VerifyPassword(*account.Password, password) {
		metrics.AuthAttempts.WithLabelValues("admin_login", "invalid_credentials").Inc()
		return nil, apperrors.ErrInvalidCredentials
	}

	token, err := s.issueToken(&account)
	if err != nil {
		return nil, err
	}

	set, err := s.resolver.Resolve(ctx, account.ID)
	if err != nil {
		return nil, fmt.Errorf("auth service: resolve permissions: %w", err)
	}

	s.touchLastLogin(ctx, &account)
	metrics.AuthAttempts.WithLabelValues("admin_login", "success").Inc()

	return &AdminSession{
		Token:       token,
		Account:     &account,
		Permissions: set.Sorted(),
	}, nil
}

// Register creates a consumer account and mails an OTP. An unverified account
// with the same email is updated and receives a fresh OTP instead.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*models.Account, error) {
	ctx = ensureContext(ctx)

	email := normaliseEmail(input.Email)
	fullName := strings.TrimSpace(input.FullName)
	phone := strings.TrimSpace(input.PhoneNumber)
	if email == "" || fullName == "" || phone == "" {
		return nil, apperrors.NewBadRequest("full name, phone number and email are required")
	}

	var passwordHash *string
	if input.Password != "" {
		hash, err := crypto.HashPassword(input.Password)
		if err != nil {
			return nil, fmt.Errorf("auth service: hash password: %w", err)
		}
		passwordHash = &hash
	}

	var account models.Account
	err := s.db.WithContext(ctx).Take(&account, "email = ?", email).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		account = models.Account{
			Salutation:  strings.TrimSpace(input.Salutation),
			FullName:    fullName,
			Email:       email,
			PhoneNumber: phone,
			Username:    optionalString(input.Username),
			Password:    passwordHash,
			Platform:    models.PlatformConsumerApp,
		}
		if err := s.db.WithContext(ctx).Create(&account).Error; err != nil {
			if isUniqueConstraintError(err) {
				return nil, apperrors.ErrConflict.WithMessage("Phone number or username is already in use.")
			}
			return nil, fmt.Errorf("auth service: create account: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("auth service: load account: %w", err)
	case account.IsAdmin():
		return nil, ErrUseAdminPortal
	case account.IsVerified:
		return nil, ErrEmailRegistered
	default:
		updates := map[string]any{
			"salutation":   strings.TrimSpace(input.Salutation),
			"full_name":    fullName,
			"phone_number": phone,
			"username":     optionalString(input.Username),
		}
		if passwordHash != nil {
			updates["password_hash"] = *passwordHash
		}
		if err := s.db.WithContext(ctx).Model(&account).Updates(updates).Error; err != nil {
			if isUniqueConstraintError(err) {
				return nil, apperrors.ErrConflict.WithMessage("Phone number or username is already in use.")
			}
			return nil, fmt.Errorf("auth service: update pending account: %w", err)
		}
	}

	if err := s.lifecycle.issueOTP(ctx, &account); err != nil {
		return nil, err
	}

	logger.WithModule("auth").Info("consumer registration pending verification",
		zap.String("account_id", account.ID),
		zap.String("email", logger.MaskEmail(email)),
	)
	return &account, nil
}

// ConsumerLogin checks the consumer's password, stores the push token when one
// is supplied and mails a login OTP. No token is issued until VerifyLoginOTP.
func (s *AuthService) ConsumerLogin(ctx context.Context, email, password, fcmToken string) error {
	ctx = ensureContext(ctx)

	var account models.Account
	err := s.db.WithContext(ctx).Take(&account, "email = ?", normaliseEmail(email)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		metrics.AuthAttempts.WithLabelValues("consumer_login", "unknown_email").Inc()
		return apperrors.ErrInvalidCredentials
	}
	if err != nil {
		return fmt.Errorf("auth service: load account: %w", err)
	}

	if account.IsAdmin() {
		metrics.AuthAttempts.WithLabelValues("consumer_login", "platform_mismatch").Inc()
		return ErrUseAdminPortal
	}
	if !account.IsVerified {
		metrics.AuthAttempts.WithLabelValues("consumer_login", "unverified").Inc()
		return apperrors.ErrAccountNotVerified
	}
	if !account.HasPassword() || !crypto.VerifyPassword(*account.Password, password) {
		metrics.AuthAttempts.WithLabelValues("consumer_login", "invalid_credentials").Inc()
		return apperrors.ErrInvalidCredentials
	}

	if token := optionalString(fcmToken); token != nil {
		if err := s.db.WithContext(ctx).Model(&account).Update("fcm_token", *token).Error; err != nil {
			return fmt.Errorf("auth service: store push token: %w", err)
		}
	}

	metrics.AuthAttempts.WithLabelValues("consumer_login", "otp_sent").Inc()
	return s.lifecycle.issueOTP(ctx, &account)
}

// VerifyLoginOTP consumes the emailed OTP and issues an access token.
func (s *AuthService) VerifyLoginOTP(ctx context.Context, email, code string) (*ConsumerSession, error) {
	ctx = ensureContext(ctx)

	account, err := s.lifecycle.VerifyOTP(ctx, email, code)
	if err != nil {
		metrics.AuthAttempts.WithLabelValues("verify_otp", "rejected").Inc()
		return nil, err
	}

	token, err := s.issueToken(account)
	if err != nil {
		return nil, err
	}

	s.touchLastLogin(ctx, account)
	metrics.AuthAttempts.WithLabelValues("verify_otp", "success").Inc()
	return &ConsumerSession{Token: token, Account: account}, nil
}

// Logout forgets the push notification token of the account.
func (s *AuthService) Logout(ctx context.Context, accountID string) error {
	ctx = ensureContext(ctx)

	result := s.db.WithContext(ctx).
		Model(&models.Account{}).
		Where("id = ?", accountID).
		Update("fcm_token", nil)
	if result.Error != nil {
		return fmt.Errorf("auth service: clear push token: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrAccountNotFound
	}
	return nil
}

func (s *AuthService) issueToken(account *models.Account) (string, error) {
	token, err := s.jwt.GenerateAccessToken(iauth.AccessTokenInput{
		AccountID: account.ID,
		Email:     account.Email,
		Platform:  account.Platform,
	})
	if err != nil {
		return "", fmt.Errorf("auth service: issue token: %w", err)
	}
	return token, nil
}

func (s *AuthService) touchLastLogin(ctx context.Context, account *models.Account) {
	now := s.now()
	if err := s.db.WithContext(ctx).
		Model(&models.Account{}).
		Where("id = ?", account.ID).
		Update("last_login_at", now).Error; err != nil {
		logger.WithModule("auth").Warn("failed to record last login",
			zap.String("account_id", account.ID),
			zap.Error(err),
		)
		return
	}
	account.LastLoginAt = &now
}
