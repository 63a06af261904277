package app

import (
	"github.com/charlesng35/fitcentre/internal/auth"
	"github.com/charlesng35/fitcentre/internal/services"
)

// JWTServiceConfig converts AuthConfig into the parameters expected by the JWT service.
func (c AuthConfig) JWTServiceConfig() auth.JWTConfig {
	ttl := c.JWT.TTL
	if ttl <= 0 {
		ttl = auth.DefaultAccessTokenTTL
	}

	return auth.JWTConfig{
		Secret:         c.JWT.Secret,
		Issuer:         c.JWT.Issuer,
		AccessTokenTTL: ttl,
	}
}

// LifecycleOptions converts the OTP and reset settings into LifecycleService options.
// Zero durations keep the service defaults.
func (c AuthConfig) LifecycleOptions() []services.LifecycleOption {
	return []services.LifecycleOption{
		services.WithOTPTTL(c.OTP.TTL),
		services.WithResetLinkTTL(c.Reset.LinkTTL),
		services.WithResetTokenTTL(c.Reset.TokenTTL),
		services.WithResetBaseURL(c.Reset.BaseURL),
	}
}
