package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/charlesng35/fitcentre/internal/middleware"
	"github.com/charlesng35/fitcentre/pkg/errors"
	"github.com/charlesng35/fitcentre/pkg/response"
)

// requestContext safely returns the request context with a background fallback for tests.
func requestContext(c *gin.Context) context.Context {
	if c == nil {
		return context.Background()
	}
	if req := c.Request; req != nil {
		return req.Context()
	}
	return context.Background()
}

// currentAccountID returns the authenticated account id or writes a 401.
func currentAccountID(c *gin.Context) (string, bool) {
	id := c.GetString(middleware.CtxAccountIDKey)
	if id == "" {
		response.Error(c, errors.ErrUnauthorized)
		return "", false
	}
	return id, true
}
