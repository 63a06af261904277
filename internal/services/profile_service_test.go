package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/charlesng35/fitcentre/internal/database/testutil"
	apperrors "github.com/charlesng35/fitcentre/pkg/errors"
)

func strPtr(value string) *string { return &value }

func TestProfileServiceUpdate(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	svc, err := NewProfileService(db)
	require.NoError(t, err)
	ctx := context.Background()

	staff := createAdmin(t, db, "staff@example.com", "+254700000001", "")
	createAdmin(t, db, "other@example.com", "+254700000002", "")

	updated, err := svc.Update(ctx, staff.ID, UpdateProfileInput{
		Salutation: strPtr("Dr"),
		FullName:   strPtr(" Dana Staff "),
		Email:      strPtr("Dana@Example.com"),
		Username:   strPtr("dana"),
	})
	require.NoError(t, err)
	require.Equal(t, "Dr", updated.Salutation)
	require.Equal(t, "Dana Staff", updated.FullName)
	require.Equal(t, "dana@example.com", updated.Email)
	require.NotNil(t, updated.Username)
	require.Equal(t, "dana", *updated.Username)

	_, err = svc.Update(ctx, staff.ID, UpdateProfileInput{Email: strPtr("other@example.com")})
	require.ErrorIs(t, err, apperrors.ErrConflict)

	_, err = svc.Update(ctx, staff.ID, UpdateProfileInput{PhoneNumber: strPtr("+254700000002")})
	require.ErrorIs(t, err, apperrors.ErrConflict)

	_, err = svc.Update(ctx, staff.ID, UpdateProfileInput{FullName: strPtr("")})
	require.ErrorIs(t, err, apperrors.ErrBadRequest)

	same, err := svc.Update(ctx, staff.ID, UpdateProfileInput{Email: strPtr("dana@example.com")})
	require.NoError(t, err)
	require.Equal(t, "dana@example.com", same.Email)

	_, err = svc.Get(ctx, "missing")
	require.ErrorIs(t, err, ErrAccountNotFound)
}
