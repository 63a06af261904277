package api

import (
	"github.com/gin-gonic/gin"

	"github.com/charlesng35/fitcentre/internal/handlers"
)

type authRouteDeps struct {
	Handler     *handlers.AuthHandler
	RequireAuth gin.HandlerFunc
	OTPLimit    gin.HandlerFunc
}

func registerAuthRoutes(engine *gin.Engine, deps authRouteDeps) {
	adminAuth := engine.Group("/api/admin/auth")
	{
		adminAuth.POST("/login", deps.Handler.AdminLogin)
		adminAuth.POST("/forgot-password", deps.OTPLimit, deps.Handler.AdminForgotPassword)
		adminAuth.POST("/reset-password", deps.Handler.AdminResetPassword)
	}

	auth := engine.Group("/api/auth")
	{
		auth.POST("/register", deps.OTPLimit, deps.Handler.Register)
		auth.POST("/login", deps.OTPLimit, deps.Handler.Login)
		auth.POST("/verify-otp", deps.Handler.VerifyOTP)
		auth.POST("/resend-otp", deps.OTPLimit, deps.Handler.ResendOTP)
		auth.POST("/forgot-password", deps.OTPLimit, deps.Handler.ForgotPassword)
		auth.POST("/verify-reset-otp", deps.Handler.VerifyResetOTP)
		auth.POST("/reset-password", deps.Handler.ResetPassword)

		auth.POST("/change-password", deps.RequireAuth, deps.Handler.ChangePassword)
		auth.POST("/logout", deps.RequireAuth, deps.Handler.Logout)
	}
}
