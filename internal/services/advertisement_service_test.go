package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/charlesng35/fitcentre/internal/database/testutil"
	"github.com/charlesng35/fitcentre/internal/models"
	apperrors "github.com/charlesng35/fitcentre/pkg/errors"
)

func adType(value models.AdvertisementType) *models.AdvertisementType { return &value }
func intPtr(value int) *int                                          { return &value }

func TestAdvertisementServiceLifecycle(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	svc, err := NewAdvertisementService(db)
	require.NoError(t, err)
	ctx := context.Background()

	yoga, err := svc.Create(ctx, AdvertisementInput{Title: strPtr("Yoga"), Type: adType(models.AdvertisementClasses)})
	require.NoError(t, err)
	require.Equal(t, 1, yoga.Sequence)
	require.Equal(t, models.AdvertisementActive, yoga.Status)

	plan, err := svc.Create(ctx, AdvertisementInput{Title: strPtr("Gold Plan"), Type: adType(models.AdvertisementMembershipPlan)})
	require.NoError(t, err)
	require.Equal(t, 2, plan.Sequence)

	promo, err := svc.Create(ctx, AdvertisementInput{
		Title:        strPtr("Summer Promo"),
		Type:         adType(models.AdvertisementURL),
		RedirectLink: strPtr("https://example.com/summer"),
		Sequence:     intPtr(0),
		Status:       intPtr(models.AdvertisementInactive),
	})
	require.NoError(t, err)
	require.Equal(t, 0, promo.Sequence)

	active, err := svc.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, active, 2)
	require.Equal(t, "Yoga", active[0].Title)

	promo, err = svc.Update(ctx, promo.ID, AdvertisementInput{Status: intPtr(models.AdvertisementActive)})
	require.NoError(t, err)
	active, err = svc.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, active, 3)
	require.Equal(t, promo.ID, active[0].ID)

	ads, total, err := svc.List(ctx, ListAdvertisementsOptions{Filters: AdvertisementFilters{Type: models.AdvertisementClasses}})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Equal(t, yoga.ID, ads[0].ID)

	ads, total, err = svc.List(ctx, ListAdvertisementsOptions{Filters: AdvertisementFilters{Title: "plan"}})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Equal(t, plan.ID, ads[0].ID)

	require.NoError(t, svc.Delete(ctx, plan.ID))
	require.ErrorIs(t, svc.Delete(ctx, plan.ID), ErrAdvertisementNotFound)
	_, err = svc.Get(ctx, plan.ID)
	require.ErrorIs(t, err, ErrAdvertisementNotFound)
}

func TestAdvertisementServiceValidation(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	svc, err := NewAdvertisementService(db)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = svc.Create(ctx, AdvertisementInput{Type: adType(models.AdvertisementClasses)})
	require.ErrorIs(t, err, apperrors.ErrBadRequest)

	_, err = svc.Create(ctx, AdvertisementInput{Title: strPtr("Bad"), Type: adType("banner")})
	require.ErrorIs(t, err, apperrors.ErrBadRequest)

	_, err = svc.Create(ctx, AdvertisementInput{Title: strPtr("Link"), Type: adType(models.AdvertisementURL)})
	require.ErrorIs(t, err, apperrors.ErrBadRequest)

	_, err = svc.Create(ctx, AdvertisementInput{Title: strPtr("Status"), Type: adType(models.AdvertisementClasses), Status: intPtr(4)})
	require.ErrorIs(t, err, apperrors.ErrBadRequest)
}
