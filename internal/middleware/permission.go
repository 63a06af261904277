package middleware

import (
	"context"
	stdErrors "errors"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/charlesng35/fitcentre/internal/permissions"
	"github.com/charlesng35/fitcentre/pkg/errors"
	"github.com/charlesng35/fitcentre/pkg/logger"
	"github.com/charlesng35/fitcentre/pkg/metrics"
	"github.com/charlesng35/fitcentre/pkg/response"
)

// PermissionResolver resolves an account's flattened permission set.
type PermissionResolver interface {
	Resolve(ctx context.Context, accountID string) (permissions.Set, error)
}

// RequirePermissions lets the request through only when the authenticated
// account holds every one of required. It must run after Auth.
func RequirePermissions(resolver PermissionResolver, required ...string) gin.HandlerFunc {
	label := strings.Join(required, ",")

	return func(c *gin.Context) {
		accountID := c.GetString(CtxAccountIDKey)
		if accountID == "" {
			response.Error(c, errors.ErrUnauthorized)
			c.Abort()
			return
		}

		set, err := resolver.Resolve(c.Request.Context(), accountID)
		if stdErrors.Is(err, permissions.ErrAccountNotFound) {
			metrics.PermissionChecks.WithLabelValues(label, "deny").Inc()
			response.Error(c, errors.ErrUnauthorized)
			c.Abort()
			return
		}
		if err != nil {
			metrics.PermissionChecks.WithLabelValues(label, "error").Inc()
			logger.WithModule("authz").Error("permission resolution failed",
				zap.String("account_id", accountID),
				zap.Error(err),
			)
			response.Error(c, errors.ErrInternalServer.WithInternal(err))
			c.Abort()
			return
		}

		if missing := set.Missing(required...); len(missing) > 0 {
			metrics.PermissionChecks.WithLabelValues(label, "deny").Inc()
			logger.WithModule("authz").Debug("permission denied",
				zap.String("account_id", accountID),
				zap.Strings("missing", missing),
			)
			response.Error(c, errors.ErrForbidden)
			c.Abort()
			return
		}

		metrics.PermissionChecks.WithLabelValues(label, "allow").Inc()
		c.Next()
	}
}
