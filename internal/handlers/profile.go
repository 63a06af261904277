package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/charlesng35/fitcentre/internal/permissions"
	"github.com/charlesng35/fitcentre/internal/services"
	appErrors "github.com/charlesng35/fitcentre/pkg/errors"
	"github.com/charlesng35/fitcentre/pkg/response"
)

// ProfileHandler exposes the signed-in account's own profile and permissions.
type ProfileHandler struct {
	svc      *services.ProfileService
	resolver *permissions.Resolver
}

// NewProfileHandler constructs a ProfileHandler.
func NewProfileHandler(svc *services.ProfileService, resolver *permissions.Resolver) (*ProfileHandler, error) {
	if svc == nil || resolver == nil {
		return nil, errors.New("profile handler: dependencies are required")
	}
	return &ProfileHandler{svc: svc, resolver: resolver}, nil
}

type updateProfileRequest struct {
	Salutation  *string `json:"salutation" validate:"omitempty,max=16"`
	FullName    *string `json:"full_name" validate:"omitempty,min=2,max=100"`
	Email       *string `json:"email" validate:"omitempty,email"`
	Username    *string `json:"username" validate:"omitempty,min=3,max=30,username"`
	PhoneNumber *string `json:"phone_number" validate:"omitempty,phone"`
}

// GET /api/profile, GET /api/admin/profile
func (h *ProfileHandler) Get(c *gin.Context) {
	accountID, ok := currentAccountID(c)
	if !ok {
		return
	}

	account, err := h.svc.Get(requestContext(c), accountID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Profile fetched successfully", account)
}

// PATCH /api/profile, PATCH /api/admin/profile
func (h *ProfileHandler) Update(c *gin.Context) {
	accountID, ok := currentAccountID(c)
	if !ok {
		return
	}

	var req updateProfileRequest
	if !bindAndValidate(c, &req) {
		return
	}

	account, err := h.svc.Update(requestContext(c), accountID, services.UpdateProfileInput{
		Salutation:  req.Salutation,
		FullName:    req.FullName,
		Email:       req.Email,
		Username:    req.Username,
		PhoneNumber: req.PhoneNumber,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Profile updated successfully", account)
}

// GET /api/permissions/my
func (h *ProfileHandler) MyPermissions(c *gin.Context) {
	accountID, ok := currentAccountID(c)
	if !ok {
		return
	}

	set, err := h.resolver.Resolve(requestContext(c), accountID)
	if errors.Is(err, permissions.ErrAccountNotFound) {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Permissions fetched successfully", gin.H{"permissions": set.Sorted()})
}
