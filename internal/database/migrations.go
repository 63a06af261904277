package database

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/charlesng35/fitcentre/internal/models"
	"github.com/charlesng35/fitcentre/internal/permissions"
	"github.com/charlesng35/fitcentre/pkg/crypto"
)

// AutoMigrate creates or updates the database schema for all models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Role{},
		&models.Permission{},
		&models.Account{},
		&models.Advertisement{},
		&models.WorkoutLog{},
		&models.CacheEntry{},
	)
}

// BootstrapAdmin describes the optional super admin account created on first start.
type BootstrapAdmin struct {
	Email       string
	Password    string
	FullName    string
	Username    string
	PhoneNumber string
}

type seedConfig struct {
	admin *BootstrapAdmin
}

// SeedOption customises SeedData.
type SeedOption func(*seedConfig)

// WithBootstrapAdmin creates a verified Super Admin account when the email is unused.
func WithBootstrapAdmin(admin BootstrapAdmin) SeedOption {
	return func(cfg *seedConfig) {
		if strings.TrimSpace(admin.Email) != "" && admin.Password != "" {
			cfg.admin = &admin
		}
	}
}

// SeedData syncs the permission catalogue and creates the default roles.
// Grants are only applied to roles created by this call, except Super Admin
// which always receives any permission it is missing.
func SeedData(db *gorm.DB, opts ...SeedOption) error {
	cfg := seedConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	ctx := context.Background()
	if err := permissions.Sync(ctx, db); err != nil {
		return err
	}

	for name, keys := range permissions.DefaultRoleGrants() {
		var role models.Role
		created := false
		err := db.Take(&role, "name = ?", name).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			role = models.Role{Name: name}
			if err := db.Create(&role).Error; err != nil {
				return fmt.Errorf("seed role %s: %w", name, err)
			}
			created = true
		case err != nil:
			return fmt.Errorf("seed role %s: %w", name, err)
		}
		if !created && name != permissions.RoleSuperAdmin {
			continue
		}
		if err := grantMissing(ctx, db, &role, keys); err != nil {
			return fmt.Errorf("seed grants for %s: %w", name, err)
		}
	}

	if cfg.admin != nil {
		if err := seedBootstrapAdmin(db, *cfg.admin); err != nil {
			return fmt.Errorf("seed bootstrap admin: %w", err)
		}
	}
	return nil
}

func grantMissing(ctx context.Context, db *gorm.DB, role *models.Role, keys []string) error {
	perms, _, err := permissions.LoadByKeys(ctx, db, keys)
	if err != nil {
		return err
	}

	var existing []models.Permission
	if err := db.Model(role).Association("Permissions").Find(&existing); err != nil {
		return err
	}
	current := make(map[string]struct{}, len(existing))
	for _, perm := range existing {
		current[perm.ID] = struct{}{}
	}

	toAttach := make([]models.Permission, 0, len(perms))
	for _, perm := range perms {
		if _, ok := current[perm.ID]; !ok {
			toAttach = append(toAttach, perm)
		}
	}
	if len(toAttach) == 0 {
		return nil
	}
	return db.Model(role).Association("Permissions").Append(toAttach)
}

func seedBootstrapAdmin(db *gorm.DB, admin BootstrapAdmin) error {
	email := strings.ToLower(strings.TrimSpace(admin.Email))

	var existing models.Account
	err := db.Take(&existing, "email = ?", email).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	var role models.Role
	if err := db.Take(&role, "name = ?", permissions.RoleSuperAdmin).Error; err != nil {
		return err
	}

	hash, err := crypto.HashPassword(admin.Password)
	if err != nil {
		return err
	}

	account := models.Account{
		FullName:    defaultString(admin.FullName, "Super Admin"),
		Email:       email,
		PhoneNumber: defaultString(admin.PhoneNumber, "+10000000000"),
		Password:    &hash,
		IsVerified:  true,
		Platform:    models.PlatformAdminPortal,
		RoleID:      &role.ID,
	}
	if username := strings.TrimSpace(admin.Username); username != "" {
		account.Username = &username
	}
	return db.Create(&account).Error
}

func defaultString(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return strings.TrimSpace(value)
}
