package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/charlesng35/fitcentre/internal/database/testutil"
	"github.com/charlesng35/fitcentre/internal/models"
	"github.com/charlesng35/fitcentre/internal/permissions"
	apperrors "github.com/charlesng35/fitcentre/pkg/errors"
)

func newRoleFixture(t *testing.T) (*RoleService, *gorm.DB) {
	t.Helper()
	db := testutil.MustOpenTestDB(t, testutil.WithSeedData())
	svc, err := NewRoleService(db)
	require.NoError(t, err)
	return svc, db
}

func roleKeys(role *models.Role) []string {
	keys := make([]string, 0, len(role.Permissions))
	for _, perm := range role.Permissions {
		keys = append(keys, perm.Key())
	}
	return keys
}

func TestRoleServiceCreateAndReplace(t *testing.T) {
	svc, db := newRoleFixture(t)
	ctx := context.Background()

	role, err := svc.Create(ctx, CreateRoleInput{
		Name:          "Front Desk",
		PermissionIDs: permissionIDs(t, db, permissions.AdsList, permissions.AdsView),
	})
	require.NoError(t, err)
	require.ElementsMatch(t, []string{permissions.AdsList, permissions.AdsView}, roleKeys(role))

	replacement := permissionIDs(t, db, permissions.RolesList)
	updated, err := svc.Update(ctx, role.ID, UpdateRoleInput{PermissionIDs: &replacement})
	require.NoError(t, err)
	require.Equal(t, []string{permissions.RolesList}, roleKeys(updated))
	require.Equal(t, "Front Desk", updated.Name)

	empty := []string{}
	updated, err = svc.Update(ctx, role.ID, UpdateRoleInput{PermissionIDs: &empty})
	require.NoError(t, err)
	require.Empty(t, updated.Permissions)

	name := "Reception"
	updated, err = svc.Update(ctx, role.ID, UpdateRoleInput{Name: &name})
	require.NoError(t, err)
	require.Equal(t, "Reception", updated.Name)
}

func TestRoleServiceRejectsInvalidInput(t *testing.T) {
	svc, db := newRoleFixture(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateRoleInput{Name: "  "})
	require.ErrorIs(t, err, apperrors.ErrBadRequest)

	_, err = svc.Create(ctx, CreateRoleInput{Name: permissions.RoleMarketing})
	require.ErrorIs(t, err, apperrors.ErrConflict)

	_, err = svc.Create(ctx, CreateRoleInput{Name: "Ghost Perms", PermissionIDs: []string{"missing-id"}})
	require.ErrorIs(t, err, apperrors.ErrBadRequest)

	var count int64
	require.NoError(t, db.Model(&models.Role{}).Where("name = ?", "Ghost Perms").Count(&count).Error)
	require.Zero(t, count, "failed create must roll back")

	_, err = svc.Get(ctx, "missing")
	require.ErrorIs(t, err, ErrRoleNotFound)
}

func TestRoleServiceFailedReplaceKeepsPreviousSet(t *testing.T) {
	svc, db := newRoleFixture(t)
	ctx := context.Background()

	role, err := svc.Create(ctx, CreateRoleInput{Name: "Coach", PermissionIDs: permissionIDs(t, db, permissions.AdsList)})
	require.NoError(t, err)

	name := "Head Coach"
	bad := append(permissionIDs(t, db, permissions.AdsView), "missing-id")
	_, err = svc.Update(ctx, role.ID, UpdateRoleInput{Name: &name, PermissionIDs: &bad})
	require.ErrorIs(t, err, apperrors.ErrBadRequest)

	current, err := svc.Get(ctx, role.ID)
	require.NoError(t, err)
	require.Equal(t, "Coach", current.Name)
	require.Equal(t, []string{permissions.AdsList}, roleKeys(current))
}

func TestRoleServiceDeleteDetachesAccounts(t *testing.T) {
	svc, db := newRoleFixture(t)
	ctx := context.Background()

	var marketing models.Role
	require.NoError(t, db.Take(&marketing, "name = ?", permissions.RoleMarketing).Error)
	staff := createAdmin(t, db, "marketing@example.com", "+254700000001", permissions.RoleMarketing)

	require.NoError(t, svc.Delete(ctx, marketing.ID))

	require.Nil(t, reload(t, db, staff.ID).RoleID)

	var links int64
	require.NoError(t, db.Table("role_permissions").Where("role_id = ?", marketing.ID).Count(&links).Error)
	require.Zero(t, links)

	require.ErrorIs(t, svc.Delete(ctx, marketing.ID), ErrRoleNotFound)

	resolver, err := permissions.NewResolver(db)
	require.NoError(t, err)
	set, err := resolver.Resolve(ctx, staff.ID)
	require.NoError(t, err)
	require.Empty(t, set)
}

func TestRoleServiceProtectsSuperAdmin(t *testing.T) {
	svc, db := newRoleFixture(t)
	ctx := context.Background()

	var superAdmin models.Role
	require.NoError(t, db.Take(&superAdmin, "name = ?", permissions.RoleSuperAdmin).Error)

	require.ErrorIs(t, svc.Delete(ctx, superAdmin.ID), ErrRoleImmutable)

	name := "Root"
	_, err := svc.Update(ctx, superAdmin.ID, UpdateRoleInput{Name: &name})
	require.ErrorIs(t, err, ErrRoleImmutable)
}

func TestRoleServiceListAndNames(t *testing.T) {
	svc, _ := newRoleFixture(t)
	ctx := context.Background()

	roles, total, err := svc.List(ctx, ListRolesOptions{Page: 1, PerPage: 2})
	require.NoError(t, err)
	require.EqualValues(t, 4, total)
	require.Len(t, roles, 2)

	roles, total, err = svc.List(ctx, ListRolesOptions{Name: "admin"})
	require.NoError(t, err)
	require.EqualValues(t, 2, total)
	require.Len(t, roles, 2)

	names, err := svc.Names(ctx)
	require.NoError(t, err)
	require.Len(t, names, 4)
	require.Equal(t, permissions.RoleAdmin, names[0].Name)
	require.NotEmpty(t, names[0].ID)

	perms, err := svc.ListPermissions(ctx)
	require.NoError(t, err)
	require.Len(t, perms, len(permissions.GetAll()))
	require.Equal(t, permissions.GroupAds, perms[0].Group)
}
