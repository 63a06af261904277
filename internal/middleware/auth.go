package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	iauth "github.com/charlesng35/fitcentre/internal/auth"
	"github.com/charlesng35/fitcentre/internal/models"
	"github.com/charlesng35/fitcentre/pkg/errors"
	"github.com/charlesng35/fitcentre/pkg/response"
)

const (
	CtxClaimsKey    = "authClaims"
	CtxAccountIDKey = "accountID"
	CtxPlatformKey  = "platform"
)

// TokenValidator is the part of the token issuer the gate depends on.
type TokenValidator interface {
	ValidateAccessToken(token string) (*iauth.Claims, error)
}

// Auth requires a valid "Authorization: Bearer <token>" header. Missing,
// malformed, expired or forged tokens all yield 401.
func Auth(jwt TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			c.Header("WWW-Authenticate", "Bearer")
			response.Error(c, errors.ErrUnauthorized)
			c.Abort()
			return
		}

		claims, err := jwt.ValidateAccessToken(token)
		if err != nil {
			c.Header("WWW-Authenticate", `Bearer error="invalid_token"`)
			response.Error(c, errors.ErrUnauthorized.WithInternal(err))
			c.Abort()
			return
		}

		c.Set(CtxClaimsKey, claims)
		c.Set(CtxAccountIDKey, claims.AccountID)
		c.Set(CtxPlatformKey, claims.Platform)

		c.Next()
	}
}

// ClaimsFromContext returns the claims stored by Auth.
func ClaimsFromContext(c *gin.Context) (*iauth.Claims, bool) {
	v, ok := c.Get(CtxClaimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*iauth.Claims)
	return claims, ok && claims != nil
}

// RequirePlatform rejects tokens issued to accounts of another platform with
// 403. It must run after Auth.
func RequirePlatform(platform models.Platform) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := ClaimsFromContext(c)
		if !ok {
			response.Error(c, errors.ErrUnauthorized)
			c.Abort()
			return
		}
		if claims.Platform != platform {
			response.Error(c, errors.ErrForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	header = strings.TrimSpace(header)
	if len(header) < 8 || !strings.EqualFold(header[:7], "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(header[7:])
	return token, token != ""
}
