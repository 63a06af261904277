package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/charlesng35/fitcentre/internal/models"
	"github.com/charlesng35/fitcentre/pkg/crypto"
	apperrors "github.com/charlesng35/fitcentre/pkg/errors"
	"github.com/charlesng35/fitcentre/pkg/logger"
	"github.com/charlesng35/fitcentre/pkg/mail"
	"github.com/charlesng35/fitcentre/pkg/metrics"
)

const (
	// OTPDigits is the length of every emailed code.
	OTPDigits = 6
	// DefaultOTPTTL is how long an emailed code stays valid (180000ms).
	DefaultOTPTTL = 3 * time.Minute
	// DefaultResetLinkTTL bounds the admin portal reset link.
	DefaultResetLinkTTL = time.Hour
	// DefaultResetTokenTTL bounds the token handed out after a reset OTP is verified.
	DefaultResetTokenTTL = 3 * time.Minute

	resetTokenBytes = 32
)

const (
	purposeVerify    = "verify"
	purposeResetOTP  = "reset_otp"
	purposeResetLink = "reset_link"
)

// LifecycleOption customises the LifecycleService.
type LifecycleOption func(*LifecycleService)

// WithLifecycleClock injects a custom time source.
func WithLifecycleClock(clock func() time.Time) LifecycleOption {
	return func(s *LifecycleService) {
		if clock != nil {
			s.now = clock
		}
	}
}

// WithOTPTTL overrides the validity window of emailed codes.
func WithOTPTTL(d time.Duration) LifecycleOption {
	return func(s *LifecycleService) {
		if d > 0 {
			s.otpTTL = d
		}
	}
}

// WithResetLinkTTL overrides the lifetime of admin reset links.
func WithResetLinkTTL(d time.Duration) LifecycleOption {
	return func(s *LifecycleService) {
		if d > 0 {
			s.resetLinkTTL = d
		}
	}
}

// WithResetTokenTTL overrides the lifetime of consumer reset tokens.
func WithResetTokenTTL(d time.Duration) LifecycleOption {
	return func(s *LifecycleService) {
		if d > 0 {
			s.resetTokenTTL = d
		}
	}
}

// WithResetBaseURL sets the admin portal URL used in reset links.
func WithResetBaseURL(base string) LifecycleOption {
	return func(s *LifecycleService) {
		s.baseURL = strings.TrimRight(strings.TrimSpace(base), "/")
	}
}

// LifecycleService issues, verifies and clears the single-use credentials
// stored on an account: the login/registration OTP, the reset OTP and the
// reset token. Each credential is consumed with a conditional update so a
// code or token can succeed at most once.
type LifecycleService struct {
	db            *gorm.DB
	mailer        mail.Mailer
	otpTTL        time.Duration
	resetLinkTTL  time.Duration
	resetTokenTTL time.Duration
	baseURL       string
	now           func() time.Time
}

// NewLifecycleService constructs a LifecycleService.
func NewLifecycleService(db *gorm.DB, mailer mail.Mailer, opts ...LifecycleOption) (*LifecycleService, error) {
	if db == nil {
		return nil, errors.New("lifecycle service: db is required")
	}

	svc := &LifecycleService{
		db:            db,
		mailer:        mailer,
		otpTTL:        DefaultOTPTTL,
		resetLinkTTL:  DefaultResetLinkTTL,
		resetTokenTTL: DefaultResetTokenTTL,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// OTPTTL returns the configured OTP validity window.
func (s *LifecycleService) OTPTTL() time.Duration {
	return s.otpTTL
}

// RequestOTP generates a fresh code for a consumer account, replacing any
// previous one, and mails it. Admin portal accounts never sign in by OTP.
func (s *LifecycleService) RequestOTP(ctx context.Context, email string) error {
	ctx = ensureContext(ctx)

	account, err := s.findByEmail(ctx, email)
	if err != nil {
		return err
	}
	if account.IsAdmin() {
		return ErrUseAdminPortal
	}
	return s.issueOTP(ctx, account)
}

func (s *LifecycleService) issueOTP(ctx context.Context, account *models.Account) error {
	code, err := crypto.GenerateNumericCode(OTPDigits)
	if err != nil {
		return fmt.Errorf("lifecycle service: generate otp: %w", err)
	}

	now := s.now()
	if err := s.db.WithContext(ctx).
		Model(&models.Account{}).
		Where("id = ?", account.ID).
		Updates(map[string]any{"otp_code": code, "otp_sent_at": now}).Error; err != nil {
		return fmt.Errorf("lifecycle service: store otp: %w", err)
	}
	account.OTPCode = &code
	account.OTPSentAt = &now

	msg, err := mail.OTPMessage(account.Email, account.FullName, code, s.otpTTL)
	if err != nil {
		return fmt.Errorf("lifecycle service: render otp email: %w", err)
	}
	return s.deliver(ctx, purposeVerify, msg)
}

// VerifyOTP checks the code against the stored one. A correct, unexpired code
// marks the account verified and is cleared in the same statement.
func (s *LifecycleService) VerifyOTP(ctx context.Context, email, code string) (*models.Account, error) {
	ctx = ensureContext(ctx)

	account, err := s.findByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if account.IsAdmin() {
		return nil, ErrUseAdminPortal
	}

	code = strings.TrimSpace(code)
	if err := s.checkCode(account.OTPCode, account.OTPSentAt, code); err != nil {
		return nil, err
	}

	result := s.db.WithContext(ctx).
		Model(&models.Account{}).
		Where("id = ? AND otp_code = ?", account.ID, code).
		Updates(map[string]any{
			"otp_code":    nil,
			"otp_sent_at": nil,
			"is_verified": true,
		})
	if result.Error != nil {
		return nil, fmt.Errorf("lifecycle service: consume otp: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		// consumed concurrently
		return nil, apperrors.ErrInvalidOTP
	}

	account.OTPCode = nil
	account.OTPSentAt = nil
	account.IsVerified = true
	return account, nil
}

// RequestPasswordResetOTP mails a reset code to a consumer account.
func (s *LifecycleService) RequestPasswordResetOTP(ctx context.Context, email string) error {
	ctx = ensureContext(ctx)

	account, err := s.findByEmail(ctx, email)
	if err != nil {
		return err
	}

	code, err := crypto.GenerateNumericCode(OTPDigits)
	if err != nil {
		return fmt.Errorf("lifecycle service: generate reset otp: %w", err)
	}

	now := s.now()
	if err := s.db.WithContext(ctx).
		Model(&models.Account{}).
		Where("id = ?", account.ID).
		Updates(map[string]any{"reset_otp_code": code, "reset_otp_sent_at": now}).Error; err != nil {
		return fmt.Errorf("lifecycle service: store reset otp: %w", err)
	}

	msg, err := mail.ResetOTPMessage(account.Email, account.FullName, code, s.otpTTL)
	if err != nil {
		return fmt.Errorf("lifecycle service: render reset otp email: %w", err)
	}
	return s.deliver(ctx, purposeResetOTP, msg)
}

// VerifyResetOTP consumes the reset code and returns an opaque reset token
// valid for the reset token TTL.
func (s *LifecycleService) VerifyResetOTP(ctx context.Context, email, code string) (string, error) {
	ctx = ensureContext(ctx)

	account, err := s.findByEmail(ctx, email)
	if err != nil {
		return "", err
	}

	code = strings.TrimSpace(code)
	if err := s.checkCode(account.ResetOTPCode, account.ResetOTPSentAt, code); err != nil {
		return "", err
	}

	token, err := crypto.GenerateHexToken(resetTokenBytes)
	if err != nil {
		return "", fmt.Errorf("lifecycle service: generate reset token: %w", err)
	}

	result := s.db.WithContext(ctx).
		Model(&models.Account{}).
		Where("id = ? AND reset_otp_code = ?", account.ID, code).
		Updates(map[string]any{
			"reset_otp_code":         nil,
			"reset_otp_sent_at":      nil,
			"reset_token":            crypto.HashToken(token),
			"reset_token_expires_at": s.now().Add(s.resetTokenTTL),
		})
	if result.Error != nil {
		return "", fmt.Errorf("lifecycle service: consume reset otp: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return "", apperrors.ErrInvalidOTP
	}

	return token, nil
}

// RequestPasswordResetLink mails an admin portal account a one hour reset link.
func (s *LifecycleService) RequestPasswordResetLink(ctx context.Context, email string) error {
	ctx = ensureContext(ctx)

	account, err := s.findByEmail(ctx, email)
	if errors.Is(err, ErrAccountNotFound) {
		return ErrAdminEmailNotFound
	}
	if err != nil {
		return err
	}
	if !account.IsAdmin() {
		return apperrors.ErrPlatformMismatch
	}

	token, err := crypto.GenerateHexToken(resetTokenBytes)
	if err != nil {
		return fmt.Errorf("lifecycle service: generate reset token: %w", err)
	}

	if err := s.db.WithContext(ctx).
		Model(&models.Account{}).
		Where("id = ?", account.ID).
		Updates(map[string]any{
			"reset_token":            crypto.HashToken(token),
			"reset_token_expires_at": s.now().Add(s.resetLinkTTL),
		}).Error; err != nil {
		return fmt.Errorf("lifecycle service: store reset token: %w", err)
	}

	msg, err := mail.ResetLinkMessage(account.Email, account.FullName, s.resetLink(token), s.resetLinkTTL)
	if err != nil {
		return fmt.Errorf("lifecycle service: render reset link email: %w", err)
	}
	if err := s.deliver(ctx, purposeResetLink, msg); err != nil {
		return apperrors.ErrOTPUndelivered.WithMessage("Error sending password reset email.").WithInternal(err)
	}
	return nil
}

// ResetPassword sets a new password using a reset token. The token must belong
// to an account on platform (PlatformUnknown skips the check) and is cleared
// together with the password update.
func (s *LifecycleService) ResetPassword(ctx context.Context, token, password string, platform models.Platform) error {
	ctx = ensureContext(ctx)

	token = strings.TrimSpace(token)
	if token == "" {
		return apperrors.ErrInvalidOrExpiredToken
	}
	if password == "" {
		return apperrors.NewBadRequest("password is required")
	}

	digest := crypto.HashToken(token)

	var account models.Account
	err := s.db.WithContext(ctx).Take(&account, "reset_token = ?", digest).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.ErrInvalidOrExpiredToken
	}
	if err != nil {
		return fmt.Errorf("lifecycle service: load reset token: %w", err)
	}

	if platform != models.PlatformUnknown && account.Platform != platform {
		return apperrors.ErrInvalidOrExpiredToken
	}
	if account.ResetTokenExpiresAt == nil || !s.now().Before(*account.ResetTokenExpiresAt) {
		return apperrors.ErrInvalidOrExpiredToken
	}

	hash, err := crypto.HashPassword(password)
	if err != nil {
		return fmt.Errorf("lifecycle service: hash password: %w", err)
	}

	result := s.db.WithContext(ctx).
		Model(&models.Account{}).
		Where("id = ? AND reset_token = ?", account.ID, digest).
		Updates(map[string]any{
			"password_hash":          hash,
			"reset_token":            nil,
			"reset_token_expires_at": nil,
		})
	if result.Error != nil {
		return fmt.Errorf("lifecycle service: update password: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrInvalidOrExpiredToken
	}

	if msg, err := mail.PasswordChangedMessage(account.Email, account.FullName); err == nil {
		if err := s.send(ctx, msg); err != nil {
			logger.WithModule("lifecycle").Warn("password changed email not sent",
				zap.String("email", logger.MaskEmail(account.Email)),
				zap.Error(err),
			)
		}
	}
	return nil
}

// ChangePassword replaces the password of an authenticated account.
func (s *LifecycleService) ChangePassword(ctx context.Context, accountID, oldPassword, newPassword string) error {
	ctx = ensureContext(ctx)

	var account models.Account
	err := s.db.WithContext(ctx).Take(&account, "id = ?", accountID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrAccountNotFound
	}
	if err != nil {
		return fmt.Errorf("lifecycle service: load account: %w", err)
	}

	if !account.HasPassword() || !crypto.VerifyPassword(*account.Password, oldPassword) {
		return apperrors.ErrInvalidOldPassword
	}
	if newPassword == oldPassword {
		return apperrors.ErrPasswordUnchanged
	}
	if newPassword == "" {
		return apperrors.NewBadRequest("new password is required")
	}

	hash, err := crypto.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("lifecycle service: hash password: %w", err)
	}
	if err := s.db.WithContext(ctx).
		Model(&account).
		Update("password_hash", hash).Error; err != nil {
		return fmt.Errorf("lifecycle service: update password: %w", err)
	}
	return nil
}

// checkCode applies the shared OTP rules: mismatch wins over expiry, and a code
// is still valid when exactly otpTTL has elapsed.
func (s *LifecycleService) checkCode(stored *string, sentAt *time.Time, code string) error {
	if stored == nil || code == "" || !crypto.EqualSecret(*stored, code) {
		return apperrors.ErrInvalidOTP
	}
	if sentAt == nil || s.now().Sub(*sentAt) > s.otpTTL {
		return apperrors.ErrOTPExpired
	}
	return nil
}

func (s *LifecycleService) findByEmail(ctx context.Context, email string) (*models.Account, error) {
	email = normaliseEmail(email)
	if email == "" {
		return nil, apperrors.NewBadRequest("email is required")
	}

	var account models.Account
	err := s.db.WithContext(ctx).Take(&account, "email = ?", email).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lifecycle service: load account: %w", err)
	}
	return &account, nil
}

func (s *LifecycleService) resetLink(token string) string {
	return s.baseURL + "/reset-password?token=" + url.QueryEscape(token)
}

// deliver sends an OTP style message; failures surface as ErrOTPUndelivered.
func (s *LifecycleService) deliver(ctx context.Context, purpose string, msg mail.Message) error {
	if err := s.send(ctx, msg); err != nil {
		metrics.OTPIssued.WithLabelValues(purpose, "undelivered").Inc()
		logger.WithModule("lifecycle").Error("otp email failed",
			zap.String("purpose", purpose),
			zap.Strings("to", maskAll(msg.To)),
			zap.Error(err),
		)
		return apperrors.ErrOTPUndelivered.WithInternal(err)
	}
	metrics.OTPIssued.WithLabelValues(purpose, "sent").Inc()
	return nil
}

func (s *LifecycleService) send(ctx context.Context, msg mail.Message) error {
	if s.mailer == nil {
		return nil
	}
	err := s.mailer.Send(ctx, msg)
	if errors.Is(err, mail.ErrSMTPDisabled) {
		logger.WithModule("lifecycle").Warn("smtp disabled, email not sent",
			zap.String("subject", msg.Subject),
			zap.Strings("to", maskAll(msg.To)),
		)
		return nil
	}
	return err
}

func maskAll(addresses []string) []string {
	out := make([]string, len(addresses))
	for i, address := range addresses {
		out[i] = logger.MaskEmail(address)
	}
	return out
}
