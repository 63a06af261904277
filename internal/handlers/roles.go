package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/charlesng35/fitcentre/internal/services"
	"github.com/charlesng35/fitcentre/pkg/response"
)

type RoleHandler struct {
	svc *services.RoleService
}

func NewRoleHandler(svc *services.RoleService) (*RoleHandler, error) {
	if svc == nil {
		return nil, errors.New("role handler: service is required")
	}
	return &RoleHandler{svc: svc}, nil
}

type createRoleRequest struct {
	Name          string   `json:"name" validate:"required,min=2,max=64"`
	PermissionIDs []string `json:"permission_ids" validate:"omitempty,dive,required"`
}

type updateRoleRequest struct {
	Name          *string   `json:"name" validate:"omitempty,min=2,max=64"`
	PermissionIDs *[]string `json:"permission_ids" validate:"omitempty,dive,required"`
}

// GET /api/admin/permissions
func (h *RoleHandler) ListPermissions(c *gin.Context) {
	perms, err := h.svc.ListPermissions(requestContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Permissions fetched successfully", perms)
}

// GET /api/admin/roles
func (h *RoleHandler) List(c *gin.Context) {
	page, perPage := pagination(c)
	roles, total, err := h.svc.List(requestContext(c), services.ListRolesOptions{
		Page:    page,
		PerPage: perPage,
		Name:    c.Query("name"),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Roles fetched successfully", response.NewPage(roles, page, perPage, total))
}

// GET /api/admin/roles/names
func (h *RoleHandler) Names(c *gin.Context) {
	names, err := h.svc.Names(requestContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Role names fetched successfully", names)
}

// GET /api/admin/roles/:id
func (h *RoleHandler) Get(c *gin.Context) {
	role, err := h.svc.Get(requestContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Role fetched successfully", role)
}

// POST /api/admin/roles
func (h *RoleHandler) Create(c *gin.Context) {
	var req createRoleRequest
	if !bindAndValidate(c, &req) {
		return
	}

	role, err := h.svc.Create(requestContext(c), services.CreateRoleInput{
		Name:          req.Name,
		PermissionIDs: req.PermissionIDs,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, "Role created successfully", role)
}

// PATCH /api/admin/roles/:id
func (h *RoleHandler) Update(c *gin.Context) {
	var req updateRoleRequest
	if !bindAndValidate(c, &req) {
		return
	}

	role, err := h.svc.Update(requestContext(c), c.Param("id"), services.UpdateRoleInput{
		Name:          req.Name,
		PermissionIDs: req.PermissionIDs,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Role updated successfully", role)
}

// DELETE /api/admin/roles/:id
func (h *RoleHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(requestContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Role deleted successfully", nil)
}
