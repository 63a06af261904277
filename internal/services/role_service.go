package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/charlesng35/fitcentre/internal/models"
	"github.com/charlesng35/fitcentre/internal/permissions"
	apperrors "github.com/charlesng35/fitcentre/pkg/errors"
)

// CreateRoleInput describes a new role and the permission ids it holds.
type CreateRoleInput struct {
	Name          string
	PermissionIDs []string
}

// UpdateRoleInput holds the mutable role attributes. A non-nil PermissionIDs
// replaces the whole permission set, an empty slice clears it.
type UpdateRoleInput struct {
	Name          *string
	PermissionIDs *[]string
}

// ListRolesOptions controls pagination and filtering of roles.
type ListRolesOptions struct {
	Page    int
	PerPage int
	Name    string
}

// RoleName is the compact projection used by role pickers.
type RoleName struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// RoleService manages roles and their permission sets.
type RoleService struct {
	db *gorm.DB
}

// NewRoleService constructs a RoleService.
func NewRoleService(db *gorm.DB) (*RoleService, error) {
	if db == nil {
		return nil, errors.New("role service: db is required")
	}
	return &RoleService{db: db}, nil
}

// ListPermissions returns the persisted permission catalogue.
func (s *RoleService) ListPermissions(ctx context.Context) ([]models.Permission, error) {
	ctx = ensureContext(ctx)

	var perms []models.Permission
	if err := s.db.WithContext(ctx).
		Order("group_name ASC").
		Order("name ASC").
		Find(&perms).Error; err != nil {
		return nil, fmt.Errorf("role service: list permissions: %w", err)
	}
	return perms, nil
}

// Create inserts a role with its permission set in one transaction.
func (s *RoleService) Create(ctx context.Context, input CreateRoleInput) (*models.Role, error) {
	ctx = ensureContext(ctx)

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.NewBadRequest("role name is required")
	}

	role := &models.Role{Name: name}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(role).Error; err != nil {
			if isUniqueConstraintError(err) {
				return apperrors.ErrConflict.WithMessage("Role name already exists")
			}
			return fmt.Errorf("role service: create role: %w", err)
		}
		return replacePermissions(tx, role, input.PermissionIDs)
	})
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, role.ID)
}

// Get loads a role with its permissions.
func (s *RoleService) Get(ctx context.Context, id string) (*models.Role, error) {
	ctx = ensureContext(ctx)

	var role models.Role
	err := s.db.WithContext(ctx).
		Preload("Permissions", func(db *gorm.DB) *gorm.DB {
			return db.Order("group_name ASC").Order("name ASC")
		}).
		Take(&role, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRoleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("role service: load role: %w", err)
	}
	return &role, nil
}

// List returns a page of roles, optionally filtered by a name fragment.
func (s *RoleService) List(ctx context.Context, opts ListRolesOptions) ([]models.Role, int64, error) {
	ctx = ensureContext(ctx)
	page, perPage := normalisePage(opts.Page, opts.PerPage)

	query := s.db.WithContext(ctx).Model(&models.Role{})
	if name := strings.TrimSpace(opts.Name); name != "" {
		query = query.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(name)+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("role service: count roles: %w", err)
	}

	var roles []models.Role
	if err := query.
		Order("created_at DESC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Preload("Permissions").
		Find(&roles).Error; err != nil {
		return nil, 0, fmt.Errorf("role service: list roles: %w", err)
	}
	return roles, total, nil
}

// Names lists every role id and name ordered by name.
func (s *RoleService) Names(ctx context.Context) ([]RoleName, error) {
	ctx = ensureContext(ctx)

	var names []RoleName
	if err := s.db.WithContext(ctx).
		Model(&models.Role{}).
		Select("id", "name").
		Order("name ASC").
		Scan(&names).Error; err != nil {
		return nil, fmt.Errorf("role service: list role names: %w", err)
	}
	return names, nil
}

// Update renames a role and/or replaces its permission set atomically.
func (s *RoleService) Update(ctx context.Context, id string, input UpdateRoleInput) (*models.Role, error) {
	ctx = ensureContext(ctx)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var role models.Role
		if err := tx.Take(&role, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRoleNotFound
			}
			return fmt.Errorf("role service: load role: %w", err)
		}

		if input.Name != nil {
			name := strings.TrimSpace(*input.Name)
			if name == "" {
				return apperrors.NewBadRequest("role name cannot be empty")
			}
			if name != role.Name {
				if role.Name == permissions.RoleSuperAdmin {
					return ErrRoleImmutable
				}
				if err := tx.Model(&role).Update("name", name).Error; err != nil {
					if isUniqueConstraintError(err) {
						return apperrors.ErrConflict.WithMessage("Role name already exists")
					}
					return fmt.Errorf("role service: rename role: %w", err)
				}
			}
		}

		if input.PermissionIDs != nil {
			return replacePermissions(tx, &role, *input.PermissionIDs)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, id)
}

// Delete removes a role, its permission links and detaches its accounts.
func (s *RoleService) Delete(ctx context.Context, id string) error {
	ctx = ensureContext(ctx)

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var role models.Role
		if err := tx.Take(&role, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRoleNotFound
			}
			return fmt.Errorf("role service: load role: %w", err)
		}
		if role.Name == permissions.RoleSuperAdmin {
			return ErrRoleImmutable
		}

		if err := tx.Model(&role).Association("Permissions").Clear(); err != nil {
			return fmt.Errorf("role service: clear role permissions: %w", err)
		}
		if err := tx.Model(&models.Account{}).
			Where("role_id = ?", role.ID).
			Update("role_id", nil).Error; err != nil {
			return fmt.Errorf("role service: detach accounts: %w", err)
		}
		if err := tx.Delete(&role).Error; err != nil {
			return fmt.Errorf("role service: delete role: %w", err)
		}
		return nil
	})
}

func replacePermissions(tx *gorm.DB, role *models.Role, permissionIDs []string) error {
	ids := normaliseIDs(permissionIDs)
	if len(ids) == 0 {
		if err := tx.Model(role).Association("Permissions").Clear(); err != nil {
			return fmt.Errorf("role service: clear permissions: %w", err)
		}
		return nil
	}

	var perms []models.Permission
	if err := tx.Where("id IN ?", ids).Find(&perms).Error; err != nil {
		return fmt.Errorf("role service: load permissions: %w", err)
	}
	if len(perms) != len(ids) {
		return apperrors.NewBadRequest("one or more permissions do not exist")
	}

	if err := tx.Model(role).Association("Permissions").Replace(perms); err != nil {
		return fmt.Errorf("role service: replace permissions: %w", err)
	}
	return nil
}
