package security

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/charlesng35/fitcentre/internal/app"
	"github.com/charlesng35/fitcentre/internal/models"
	"github.com/charlesng35/fitcentre/internal/permissions"
)

// CheckStatus captures the outcome of a security audit check.
type CheckStatus string

const (
	StatusPass CheckStatus = "pass"
	StatusWarn CheckStatus = "warn"
	StatusFail CheckStatus = "fail"
)

// Check contains the result of a single audit verification.
type Check struct {
	ID          string      `json:"id"`
	Status      CheckStatus `json:"status"`
	Message     string      `json:"message"`
	Remediation string      `json:"remediation,omitempty"`
	Details     any         `json:"details,omitempty"`
}

// Result aggregates all checks with a status summary.
type Result struct {
	CheckedAt time.Time      `json:"checked_at"`
	Checks    []Check        `json:"checks"`
	Summary   map[string]int `json:"summary"`
}

// AuditService evaluates the account and configuration controls that keep the
// admin portal and the OTP flows safe.
type AuditService struct {
	db  *gorm.DB
	cfg *app.Config
	now func() time.Time
}

// NewAuditService constructs the audit service. Missing inputs degrade the
// affected checks to warnings.
func NewAuditService(db *gorm.DB, cfg *app.Config) *AuditService {
	return &AuditService{db: db, cfg: cfg, now: time.Now}
}

// WithClock overrides the clock used in results.
func (s *AuditService) WithClock(clock func() time.Time) {
	if clock != nil {
		s.now = clock
	}
}

// Run executes all audit checks.
func (s *AuditService) Run(ctx context.Context) Result {
	if ctx == nil {
		ctx = context.Background()
	}

	checks := []Check{
		s.checkSuperAdmin(ctx),
		s.checkJWTSecret(),
		s.checkEmailDelivery(),
		s.checkResetLink(),
		s.checkOTPRateLimit(),
	}

	summary := map[string]int{
		string(StatusPass): 0,
		string(StatusWarn): 0,
		string(StatusFail): 0,
	}
	for _, check := range checks {
		summary[string(check.Status)]++
	}

	return Result{CheckedAt: s.now().UTC(), Checks: checks, Summary: summary}
}

func (s *AuditService) missingConfig(id string) Check {
	return Check{
		ID:          id,
		Status:      StatusWarn,
		Message:     "Configuration not loaded.",
		Remediation: "Load configuration before running the security audit.",
	}
}

func (s *AuditService) checkSuperAdmin(ctx context.Context) Check {
	const id = "super_admin_present"
	if s.db == nil {
		return Check{
			ID:          id,
			Status:      StatusWarn,
			Message:     "Database unavailable, unable to confirm a Super Admin exists.",
			Remediation: "Ensure database connectivity before running the audit.",
		}
	}

	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.Account{}).
		Joins("JOIN roles ON roles.id = accounts.role_id").
		Where("roles.name = ? AND accounts.platform = ? AND accounts.is_verified = ?",
			permissions.RoleSuperAdmin, models.PlatformAdminPortal, true).
		Count(&count).Error
	if err != nil {
		return Check{
			ID:          id,
			Status:      StatusWarn,
			Message:     fmt.Sprintf("Could not count Super Admin accounts: %v", err),
			Remediation: "Retry after resolving database errors.",
		}
	}

	if count == 0 {
		return Check{
			ID:          id,
			Status:      StatusFail,
			Message:     "No verified Super Admin account found.",
			Remediation: "Set bootstrap.email and bootstrap.password to seed one on start-up.",
		}
	}
	return Check{ID: id, Status: StatusPass, Message: "Super Admin present.", Details: map[string]any{"count": count}}
}

func (s *AuditService) checkJWTSecret() Check {
	const id = "jwt_secret_strength"
	if s.cfg == nil {
		return s.missingConfig(id)
	}

	length := len(strings.TrimSpace(s.cfg.Auth.JWT.Secret))
	switch {
	case length < 32:
		return Check{
			ID:          id,
			Status:      StatusFail,
			Message:     fmt.Sprintf("JWT signing secret is too short (%d bytes).", length),
			Remediation: "Use a randomly generated secret of at least 32 bytes.",
		}
	case length < 48:
		return Check{
			ID:          id,
			Status:      StatusWarn,
			Message:     fmt.Sprintf("JWT signing secret is %d bytes. Consider 48 or more.", length),
			Remediation: "Increase the length of FITCENTRE_AUTH_JWT_SECRET.",
			Details:     map[string]any{"length": length},
		}
	default:
		return Check{
			ID:      id,
			Status:  StatusPass,
			Message: fmt.Sprintf("JWT signing secret length is %d bytes.", length),
			Details: map[string]any{"length": length},
		}
	}
}

func (s *AuditService) checkEmailDelivery() Check {
	const id = "email_delivery"
	if s.cfg == nil {
		return s.missingConfig(id)
	}

	smtp := s.cfg.Email.SMTP
	if !smtp.Enabled {
		return Check{
			ID:          id,
			Status:      StatusWarn,
			Message:     "SMTP is disabled, OTP and reset emails are not delivered.",
			Remediation: "Enable email.smtp and configure a relay.",
		}
	}

	encryption := strings.ToLower(strings.TrimSpace(smtp.Encryption))
	if encryption == "" || encryption == "none" {
		return Check{
			ID:          id,
			Status:      StatusWarn,
			Message:     "SMTP connection is unencrypted, codes travel in clear text.",
			Remediation: "Set email.smtp.encryption to starttls or ssl.",
		}
	}
	return Check{ID: id, Status: StatusPass, Message: "SMTP delivery encrypted.", Details: map[string]any{"encryption": encryption}}
}

func (s *AuditService) checkResetLink() Check {
	const id = "reset_link_https"
	if s.cfg == nil {
		return s.missingConfig(id)
	}

	parsed, err := url.Parse(strings.TrimSpace(s.cfg.Auth.Reset.BaseURL))
	if err != nil || parsed.Host == "" {
		return Check{
			ID:          id,
			Status:      StatusFail,
			Message:     "Password reset base URL is not a valid absolute URL.",
			Remediation: "Set auth.reset.base_url to the admin portal address.",
		}
	}
	if parsed.Scheme != "https" {
		return Check{
			ID:          id,
			Status:      StatusWarn,
			Message:     fmt.Sprintf("Password reset links use %s.", parsed.Scheme),
			Remediation: "Serve the admin portal over https so reset tokens are not exposed.",
		}
	}
	return Check{ID: id, Status: StatusPass, Message: "Password reset links use https."}
}

func (s *AuditService) checkOTPRateLimit() Check {
	const id = "otp_rate_limit"
	if s.cfg == nil {
		return s.missingConfig(id)
	}

	limit := s.cfg.RateLimit.OTPRequests
	if limit <= 0 {
		return Check{
			ID:          id,
			Status:      StatusWarn,
			Message:     "OTP endpoints are not rate limited.",
			Remediation: "Set rate_limit.otp_requests to bound code guessing and mail volume.",
		}
	}
	return Check{
		ID:      id,
		Status:  StatusPass,
		Message: fmt.Sprintf("OTP endpoints allow %d requests per %s.", limit, s.cfg.RateLimit.OTPWindow),
	}
}
