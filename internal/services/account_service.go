package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/charlesng35/fitcentre/internal/models"
	"github.com/charlesng35/fitcentre/pkg/crypto"
	apperrors "github.com/charlesng35/fitcentre/pkg/errors"
)

// CreateStaffInput describes a new admin portal account.
type CreateStaffInput struct {
	Salutation  string
	FullName    string
	Email       string
	PhoneNumber string
	Username    string
	Password    string
	RoleID      string
}

// ListAccountsOptions controls pagination of staff accounts.
type ListAccountsOptions struct {
	Page    int
	PerPage int
	Query   string
}

// AccountService manages admin portal (staff) accounts.
type AccountService struct {
	db *gorm.DB
}

// NewAccountService constructs an AccountService.
func NewAccountService(db *gorm.DB) (*AccountService, error) {
	if db == nil {
		return nil, errors.New("account service: db is required")
	}
	return &AccountService{db: db}, nil
}

// CreateStaff provisions a verified admin portal account with a password and
// an optional role.
func (s *AccountService) CreateStaff(ctx context.Context, input CreateStaffInput) (*models.Account, error) {
	ctx = ensureContext(ctx)

	email := normaliseEmail(input.Email)
	fullName := strings.TrimSpace(input.FullName)
	phone := strings.TrimSpace(input.PhoneNumber)
	if email == "" || fullName == "" || phone == "" {
		return nil, apperrors.NewBadRequest("full name, phone number and email are required")
	}
	if input.Password == "" {
		return nil, apperrors.NewBadRequest("password is required")
	}

	hash, err := crypto.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("account service: hash password: %w", err)
	}

	account := &models.Account{
		Salutation:  strings.TrimSpace(input.Salutation),
		FullName:    fullName,
		Email:       email,
		PhoneNumber: phone,
		Username:    optionalString(input.Username),
		Password:    &hash,
		IsVerified:  true,
		Platform:    models.PlatformAdminPortal,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if roleID := strings.TrimSpace(input.RoleID); roleID != "" {
			if err := ensureRoleExists(tx, roleID); err != nil {
				return err
			}
			account.RoleID = &roleID
		}
		if err := tx.Create(account).Error; err != nil {
			if isUniqueConstraintError(err) {
				return apperrors.ErrConflict.WithMessage("Email, phone number or username is already in use.")
			}
			return fmt.Errorf("account service: create account: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.get(ctx, account.ID)
}

// List returns a page of admin portal accounts with their roles.
func (s *AccountService) List(ctx context.Context, opts ListAccountsOptions) ([]models.Account, int64, error) {
	ctx = ensureContext(ctx)
	page, perPage := normalisePage(opts.Page, opts.PerPage)

	query := s.db.WithContext(ctx).
		Model(&models.Account{}).
		Where("platform = ?", models.PlatformAdminPortal)
	if q := strings.TrimSpace(opts.Query); q != "" {
		pattern := "%" + strings.ToLower(q) + "%"
		query = query.Where("LOWER(full_name) LIKE ? OR LOWER(email) LIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("account service: count accounts: %w", err)
	}

	var accounts []models.Account
	if err := query.
		Order("created_at DESC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Preload("Role").
		Find(&accounts).Error; err != nil {
		return nil, 0, fmt.Errorf("account service: list accounts: %w", err)
	}
	return accounts, total, nil
}

// AssignRole sets the role of an admin portal account. An empty roleID
// removes the role, leaving the account with no permissions.
func (s *AccountService) AssignRole(ctx context.Context, accountID, roleID string) (*models.Account, error) {
	ctx = ensureContext(ctx)
	roleID = strings.TrimSpace(roleID)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var account models.Account
		if err := tx.Take(&account, "id = ?", accountID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrAccountNotFound
			}
			return fmt.Errorf("account service: load account: %w", err)
		}
		if !account.IsAdmin() {
			return apperrors.NewBadRequest("roles can only be assigned to admin portal accounts")
		}

		var value any
		if roleID != "" {
			if err := ensureRoleExists(tx, roleID); err != nil {
				return err
			}
			value = roleID
		}
		if err := tx.Model(&account).Update("role_id", value).Error; err != nil {
			return fmt.Errorf("account service: assign role: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.get(ctx, accountID)
}

func (s *AccountService) get(ctx context.Context, id string) (*models.Account, error) {
	var account models.Account
	err := s.db.WithContext(ctx).Preload("Role").Take(&account, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("account service: load account: %w", err)
	}
	return &account, nil
}

func ensureRoleExists(tx *gorm.DB, roleID string) error {
	var count int64
	if err := tx.Model(&models.Role{}).Where("id = ?", roleID).Count(&count).Error; err != nil {
		return fmt.Errorf("load role: %w", err)
	}
	if count == 0 {
		return ErrRoleNotFound
	}
	return nil
}
