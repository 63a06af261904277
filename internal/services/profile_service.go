package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/charlesng35/fitcentre/internal/models"
	apperrors "github.com/charlesng35/fitcentre/pkg/errors"
)

// UpdateProfileInput enumerates the self-service profile fields. Nil fields
// are left untouched.
type UpdateProfileInput struct {
	Salutation  *string
	FullName    *string
	Email       *string
	Username    *string
	PhoneNumber *string
}

// ProfileService reads and updates the signed-in account's own profile.
type ProfileService struct {
	db *gorm.DB
}

// NewProfileService constructs a ProfileService.
func NewProfileService(db *gorm.DB) (*ProfileService, error) {
	if db == nil {
		return nil, errors.New("profile service: db is required")
	}
	return &ProfileService{db: db}, nil
}

// Get returns the account with its role.
func (s *ProfileService) Get(ctx context.Context, accountID string) (*models.Account, error) {
	ctx = ensureContext(ctx)

	var account models.Account
	err := s.db.WithContext(ctx).Preload("Role").Take(&account, "id = ?", accountID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("profile service: load account: %w", err)
	}
	return &account, nil
}

// Update applies the provided fields after checking that email, username and
// phone number stay unique.
func (s *ProfileService) Update(ctx context.Context, accountID string, input UpdateProfileInput) (*models.Account, error) {
	ctx = ensureContext(ctx)

	account, err := s.Get(ctx, accountID)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if input.Salutation != nil {
		updates["salutation"] = strings.TrimSpace(*input.Salutation)
	}
	if input.FullName != nil {
		name := strings.TrimSpace(*input.FullName)
		if name == "" {
			return nil, apperrors.NewBadRequest("full name cannot be empty")
		}
		updates["full_name"] = name
	}
	if input.Email != nil {
		email := normaliseEmail(*input.Email)
		if email == "" {
			return nil, apperrors.NewBadRequest("email cannot be empty")
		}
		if email != account.Email {
			if err := s.ensureUnique(ctx, account.ID, "email", email, "Email is already in use."); err != nil {
				return nil, err
			}
			updates["email"] = email
		}
	}
	if input.Username != nil {
		username := optionalString(*input.Username)
		if username != nil {
			if err := s.ensureUnique(ctx, account.ID, "username", *username, "Username is already in use."); err != nil {
				return nil, err
			}
		}
		updates["username"] = username
	}
	if input.PhoneNumber != nil {
		phone := strings.TrimSpace(*input.PhoneNumber)
		if phone == "" {
			return nil, apperrors.NewBadRequest("phone number cannot be empty")
		}
		if phone != account.PhoneNumber {
			if err := s.ensureUnique(ctx, account.ID, "phone_number", phone, "Phone number is already in use."); err != nil {
				return nil, err
			}
			updates["phone_number"] = phone
		}
	}

	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(account).Updates(updates).Error; err != nil {
			if isUniqueConstraintError(err) {
				return nil, apperrors.ErrConflict
			}
			return nil, fmt.Errorf("profile service: update profile: %w", err)
		}
	}

	return s.Get(ctx, accountID)
}

func (s *ProfileService) ensureUnique(ctx context.Context, accountID, column, value, message string) error {
	var count int64
	if err := s.db.WithContext(ctx).
		Model(&models.Account{}).
		Where(column+" = ? AND id <> ?", value, accountID).
		Count(&count).Error; err != nil {
		return fmt.Errorf("profile service: check %s: %w", column, err)
	}
	if count > 0 {
		return apperrors.ErrConflict.WithMessage(message)
	}
	return nil
}
