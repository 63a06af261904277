package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestBaseModelBeforeCreateGeneratesID(t *testing.T) {
	var base BaseModel
	require.NoError(t, base.BeforeCreate(nil))
	require.NotEmpty(t, base.ID)

	kept := BaseModel{ID: "fixed"}
	require.NoError(t, kept.BeforeCreate(nil))
	require.Equal(t, "fixed", kept.ID)
}

func TestEmbeddedModelsUseBaseBeforeCreate(t *testing.T) {
	cases := []struct {
		name  string
		model func() *BaseModel
	}{
		{"account", func() *BaseModel { a := &Account{}; return &a.BaseModel }},
		{"role", func() *BaseModel { r := &Role{}; return &r.BaseModel }},
		{"permission", func() *BaseModel { p := &Permission{}; return &p.BaseModel }},
		{"advertisement", func() *BaseModel { a := &Advertisement{}; return &a.BaseModel }},
		{"workout_log", func() *BaseModel { w := &WorkoutLog{}; return &w.BaseModel }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			model := tc.model()
			require.NoError(t, model.BeforeCreate(nil))
			require.NotEmpty(t, model.ID)
		})
	}
}

func TestPermissionKey(t *testing.T) {
	p := Permission{Group: "Ads Management", Name: "List"}
	require.Equal(t, "Ads Management-List", p.Key())
}

func TestPlatform(t *testing.T) {
	p, err := ParsePlatform(2)
	require.NoError(t, err)
	require.Equal(t, PlatformAdminPortal, p)
	require.Equal(t, "admin_portal", p.String())

	_, err = ParsePlatform(3)
	require.Error(t, err)
	require.False(t, PlatformUnknown.Valid())
}

func TestAccountState(t *testing.T) {
	code := "123456"
	now := time.Now()

	acc := Account{}
	require.Equal(t, AccountUnverified, acc.State())

	acc.OTPCode, acc.OTPSentAt = &code, &now
	require.Equal(t, AccountOTPPending, acc.State())

	acc.OTPCode, acc.OTPSentAt = nil, nil
	acc.IsVerified = true
	require.Equal(t, AccountVerified, acc.State())

	acc.ResetOTPCode = &code
	require.Equal(t, AccountResetPending, acc.State())

	acc.ResetOTPCode = nil
	hash := "digest"
	acc.ResetToken = &hash
	require.Equal(t, AccountResetPending, acc.State())
}

func TestAdvertisementTypeValid(t *testing.T) {
	require.True(t, AdvertisementMembershipPlan.Valid())
	require.False(t, AdvertisementType("banner").Valid())
}
