package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/charlesng35/fitcentre/internal/models"
	"github.com/charlesng35/fitcentre/internal/services"
	"github.com/charlesng35/fitcentre/pkg/response"
)

// AuthHandler serves the admin portal and consumer app authentication flows.
type AuthHandler struct {
	auth      *services.AuthService
	lifecycle *services.LifecycleService
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(auth *services.AuthService, lifecycle *services.LifecycleService) (*AuthHandler, error) {
	if auth == nil || lifecycle == nil {
		return nil, errors.New("auth handler: services are required")
	}
	return &AuthHandler{auth: auth, lifecycle: lifecycle}, nil
}

type adminLoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type adminLoginResponse struct {
	Token       string          `json:"token"`
	ID          string          `json:"id"`
	Username    *string         `json:"username"`
	FullName    string          `json:"full_name"`
	Email       string          `json:"email"`
	PhoneNumber string          `json:"phone_number"`
	Platform    models.Platform `json:"platform"`
	Role        string          `json:"role,omitempty"`
	Permissions []string        `json:"permissions"`
}

type emailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type resetPasswordRequest struct {
	Token           string `json:"token" validate:"required"`
	Password        string `json:"password" validate:"required,min=8,max=72"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=Password"`
}

type registerRequest struct {
	Salutation  string `json:"salutation" validate:"omitempty,max=16"`
	FullName    string `json:"full_name" validate:"required,min=2,max=100"`
	PhoneNumber string `json:"phone_number" validate:"required,phone"`
	Email       string `json:"email" validate:"required,email"`
	Username    string `json:"username" validate:"omitempty,min=3,max=30,username"`
	Password    string `json:"password" validate:"omitempty,min=8,max=72"`
}

type consumerLoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	FCMToken string `json:"fcm_token" validate:"omitempty,max=512"`
}

type verifyOTPRequest struct {
	Email   string `json:"email" validate:"required,email"`
	OTPCode string `json:"otp_code" validate:"required,len=6,numeric"`
}

type verifyResetOTPRequest struct {
	Email        string `json:"email" validate:"required,email"`
	ResetOTPCode string `json:"reset_otp_code" validate:"required,len=6,numeric"`
}

type changePasswordRequest struct {
	OldPassword     string `json:"old_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8,max=72"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=NewPassword"`
}

// POST /api/admin/auth/login
func (h *AuthHandler) AdminLogin(c *gin.Context) {
	var req adminLoginRequest
	if !bindAndValidate(c, &req) {
		return
	}

	session, err := h.auth.AdminLogin(requestContext(c), req.Email, req.Password)
	if err != nil {
		response.Error(c, err)
		return
	}

	account := session.Account
	payload := adminLoginResponse{
		Token:       session.Token,
		ID:          account.ID,
		Username:    account.Username,
		FullName:    account.FullName,
		Email:       account.Email,
		PhoneNumber: account.PhoneNumber,
		Platform:    account.Platform,
		Permissions: session.Permissions,
	}
	if account.Role != nil {
		payload.Role = account.Role.Name
	}
	response.Success(c, http.StatusOK, "Login successful", payload)
}

// POST /api/admin/auth/forgot-password
func (h *AuthHandler) AdminForgotPassword(c *gin.Context) {
	var req emailRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if err := h.lifecycle.RequestPasswordResetLink(requestContext(c), req.Email); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Password reset link sent to your email", nil)
}

// POST /api/admin/auth/reset-password
func (h *AuthHandler) AdminResetPassword(c *gin.Context) {
	h.resetPassword(c, models.PlatformAdminPortal)
}

// POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if !bindAndValidate(c, &req) {
		return
	}

	account, err := h.auth.Register(requestContext(c), services.RegisterInput{
		Salutation:  req.Salutation,
		FullName:    req.FullName,
		PhoneNumber: req.PhoneNumber,
		Email:       req.Email,
		Username:    req.Username,
		Password:    req.Password,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, "OTP sent to your email", gin.H{"email": account.Email})
}

// POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req consumerLoginRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if err := h.auth.ConsumerLogin(requestContext(c), req.Email, req.Password, req.FCMToken); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, "OTP sent to your email", gin.H{"email": req.Email})
}

// POST /api/auth/verify-otp
func (h *AuthHandler) VerifyOTP(c *gin.Context) {
	var req verifyOTPRequest
	if !bindAndValidate(c, &req) {
		return
	}

	session, err := h.auth.VerifyLoginOTP(requestContext(c), req.Email, req.OTPCode)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, "OTP verified successfully", gin.H{
		"token": session.Token,
		"email": session.Account.Email,
	})
}

// POST /api/auth/resend-otp
func (h *AuthHandler) ResendOTP(c *gin.Context) {
	var req emailRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if err := h.lifecycle.RequestOTP(requestContext(c), req.Email); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, "OTP sent to your email", nil)
}

// POST /api/auth/forgot-password
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req emailRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if err := h.lifecycle.RequestPasswordResetOTP(requestContext(c), req.Email); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Password reset OTP sent to your email", nil)
}

// POST /api/auth/verify-reset-otp
func (h *AuthHandler) VerifyResetOTP(c *gin.Context) {
	var req verifyResetOTPRequest
	if !bindAndValidate(c, &req) {
		return
	}

	token, err := h.lifecycle.VerifyResetOTP(requestContext(c), req.Email, req.ResetOTPCode)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, "OTP verified successfully", gin.H{
		"email":       req.Email,
		"reset_token": token,
	})
}

// POST /api/auth/reset-password
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	h.resetPassword(c, models.PlatformConsumerApp)
}

func (h *AuthHandler) resetPassword(c *gin.Context, platform models.Platform) {
	var req resetPasswordRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if err := h.lifecycle.ResetPassword(requestContext(c), req.Token, req.Password, platform); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Password reset successfully", nil)
}

// POST /api/auth/change-password
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	accountID, ok := currentAccountID(c)
	if !ok {
		return
	}

	var req changePasswordRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if err := h.lifecycle.ChangePassword(requestContext(c), accountID, req.OldPassword, req.NewPassword); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Password changed successfully", nil)
}

// POST /api/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	accountID, ok := currentAccountID(c)
	if !ok {
		return
	}
	if err := h.auth.Logout(requestContext(c), accountID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Logged out successfully", nil)
}
