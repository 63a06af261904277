package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/charlesng35/fitcentre/internal/services"
	"github.com/charlesng35/fitcentre/pkg/response"
)

// AccountHandler manages admin portal staff accounts.
type AccountHandler struct {
	svc *services.AccountService
}

func NewAccountHandler(svc *services.AccountService) (*AccountHandler, error) {
	if svc == nil {
		return nil, errors.New("account handler: service is required")
	}
	return &AccountHandler{svc: svc}, nil
}

type createStaffRequest struct {
	Salutation  string `json:"salutation" validate:"omitempty,max=16"`
	FullName    string `json:"full_name" validate:"required,min=2,max=100"`
	Email       string `json:"email" validate:"required,email"`
	PhoneNumber string `json:"phone_number" validate:"required,phone"`
	Username    string `json:"username" validate:"omitempty,min=3,max=30,username"`
	Password    string `json:"password" validate:"required,min=8,max=72"`
	RoleID      string `json:"role_id" validate:"omitempty"`
}

type assignRoleRequest struct {
	RoleID string `json:"role_id"`
}

// GET /api/admin/accounts
func (h *AccountHandler) List(c *gin.Context) {
	page, perPage := pagination(c)
	accounts, total, err := h.svc.List(requestContext(c), services.ListAccountsOptions{
		Page:    page,
		PerPage: perPage,
		Query:   c.Query("q"),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Users fetched successfully", response.NewPage(accounts, page, perPage, total))
}

// POST /api/admin/accounts
func (h *AccountHandler) Create(c *gin.Context) {
	var req createStaffRequest
	if !bindAndValidate(c, &req) {
		return
	}

	account, err := h.svc.CreateStaff(requestContext(c), services.CreateStaffInput{
		Salutation:  req.Salutation,
		FullName:    req.FullName,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		Username:    req.Username,
		Password:    req.Password,
		RoleID:      req.RoleID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, "User created successfully", account)
}

// PUT /api/admin/accounts/:id/role
func (h *AccountHandler) AssignRole(c *gin.Context) {
	var req assignRoleRequest
	if !bindAndValidate(c, &req) {
		return
	}

	account, err := h.svc.AssignRole(requestContext(c), c.Param("id"), req.RoleID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Role assigned successfully", account)
}
