package database

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/charlesng35/fitcentre/internal/models"
	"github.com/charlesng35/fitcentre/internal/permissions"
	"github.com/charlesng35/fitcentre/pkg/crypto"
)

func TestOpenSQLiteMemory(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, db.Exec("SELECT 1").Error)
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open(Config{Driver: "oracle"})
	require.ErrorContains(t, err, "unsupported database driver")
}

func TestAutoMigrateAndSeedData(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, AutoMigrateAndSeed(db))

	var roles []models.Role
	require.NoError(t, db.Preload("Permissions").Order("name").Find(&roles).Error)
	require.Len(t, roles, 4)

	byName := map[string]models.Role{}
	for _, role := range roles {
		byName[role.Name] = role
	}
	require.Len(t, byName[permissions.RoleSuperAdmin].Permissions, len(permissions.GetAll()))
	require.Len(t, byName[permissions.RoleSales].Permissions, 2)

	var permissionCount int64
	require.NoError(t, db.Model(&models.Permission{}).Count(&permissionCount).Error)
	require.EqualValues(t, len(permissions.GetAll()), permissionCount)
}

func TestSeedDoesNotRestoreRevokedGrants(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, AutoMigrateAndSeed(db))

	var sales models.Role
	require.NoError(t, db.Take(&sales, "name = ?", permissions.RoleSales).Error)
	require.NoError(t, db.Model(&sales).Association("Permissions").Clear())

	require.NoError(t, SeedData(db))

	count := db.Model(&sales).Association("Permissions").Count()
	require.Zero(t, count)
}

func TestSeedBootstrapAdmin(t *testing.T) {
	db := openTestDB(t)
	opt := WithBootstrapAdmin(BootstrapAdmin{Email: "Root@Example.com", Password: "SuperAdmin@1234", Username: "root"})
	require.NoError(t, AutoMigrateAndSeed(db, opt))
	require.NoError(t, SeedData(db, opt))

	var accounts []models.Account
	require.NoError(t, db.Preload("Role").Find(&accounts).Error)
	require.Len(t, accounts, 1)

	admin := accounts[0]
	require.Equal(t, "root@example.com", admin.Email)
	require.Equal(t, models.PlatformAdminPortal, admin.Platform)
	require.True(t, admin.IsVerified)
	require.NotNil(t, admin.Role)
	require.Equal(t, permissions.RoleSuperAdmin, admin.Role.Name)
	require.True(t, crypto.VerifyPassword(*admin.Password, "SuperAdmin@1234"))
}

func TestWithBootstrapAdminIgnoresIncompleteInput(t *testing.T) {
	cfg := seedConfig{}
	WithBootstrapAdmin(BootstrapAdmin{Email: "admin@example.com"})(&cfg)
	require.Nil(t, cfg.admin)
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := Open(Config{Driver: "sqlite", DSN: "file:" + uuid.NewString() + "?mode=memory&cache=shared&_foreign_keys=1"})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	return db
}
