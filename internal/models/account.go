package models

import "time"

// AccountState is derived from the single-use credential fields of an Account.
type AccountState string

const (
	AccountUnverified   AccountState = "unverified"
	AccountOTPPending   AccountState = "otp_pending"
	AccountVerified     AccountState = "verified"
	AccountResetPending AccountState = "reset_pending"
)

// Account is a person on either platform. Email and phone number are unique
// across both platforms; only admin portal accounts normally carry a role.
type Account struct {
	BaseModel

	Salutation  string  `gorm:"size:16" json:"salutation,omitempty"`
	FullName    string  `gorm:"size:100;not null" json:"full_name"`
	Email       string  `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PhoneNumber string  `gorm:"size:20;uniqueIndex;not null" json:"phone_number"`
	Username    *string `gorm:"size:30;uniqueIndex" json:"username,omitempty"`
	Password    *string `gorm:"column:password_hash" json:"-"`

	IsVerified bool     `gorm:"not null" json:"is_verified"`
	Platform   Platform `gorm:"not null;index" json:"platform"`

	RoleID *string `gorm:"type:uuid;index" json:"role_id,omitempty"`
	Role   *Role   `json:"role,omitempty"`

	OTPCode        *string    `gorm:"size:12" json:"-"`
	OTPSentAt      *time.Time `json:"-"`
	ResetOTPCode   *string    `gorm:"size:12" json:"-"`
	ResetOTPSentAt *time.Time `json:"-"`
	// ResetToken holds the SHA-256 digest, never the token itself.
	ResetToken          *string    `gorm:"size:64;index" json:"-"`
	ResetTokenExpiresAt *time.Time `json:"-"`

	FCMToken    *string    `gorm:"column:fcm_token" json:"-"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
}

// HasPassword reports whether a password hash has been set.
func (a *Account) HasPassword() bool {
	return a.Password != nil && *a.Password != ""
}

// IsAdmin reports whether the account belongs to the admin portal.
func (a *Account) IsAdmin() bool {
	return a.Platform == PlatformAdminPortal
}

// State derives the lifecycle state from the outstanding credentials.
func (a *Account) State() AccountState {
	switch {
	case a.ResetOTPCode != nil || a.ResetToken != nil:
		return AccountResetPending
	case a.OTPCode != nil:
		return AccountOTPPending
	case a.IsVerified:
		return AccountVerified
	default:
		return AccountUnverified
	}
}
