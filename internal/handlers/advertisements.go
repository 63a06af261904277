package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/charlesng35/fitcentre/internal/models"
	"github.com/charlesng35/fitcentre/internal/services"
	appErrors "github.com/charlesng35/fitcentre/pkg/errors"
	"github.com/charlesng35/fitcentre/pkg/response"
)

// AdvertisementHandler serves the admin advertisement CRUD and the public banner feed.
type AdvertisementHandler struct {
	svc *services.AdvertisementService
}

func NewAdvertisementHandler(svc *services.AdvertisementService) (*AdvertisementHandler, error) {
	if svc == nil {
		return nil, errors.New("advertisement handler: service is required")
	}
	return &AdvertisementHandler{svc: svc}, nil
}

type advertisementRequest struct {
	Title        *string `json:"title" validate:"omitempty,min=1,max=150"`
	Description  *string `json:"description" validate:"omitempty,max=2000"`
	Image        *string `json:"image" validate:"omitempty,url,max=512"`
	Type         *string `json:"type" validate:"omitempty,oneof=classes membership_plan url"`
	RedirectLink *string `json:"redirect_link" validate:"omitempty,max=512"`
	Sequence     *int    `json:"sequence" validate:"omitempty,min=0"`
	Status       *int    `json:"status" validate:"omitempty,oneof=0 1"`
}

func (r advertisementRequest) input() services.AdvertisementInput {
	input := services.AdvertisementInput{
		Title:        r.Title,
		Description:  r.Description,
		ImageURL:     r.Image,
		RedirectLink: r.RedirectLink,
		Sequence:     r.Sequence,
		Status:       r.Status,
	}
	if r.Type != nil {
		t := models.AdvertisementType(*r.Type)
		input.Type = &t
	}
	return input
}

// GET /api/admin/ads
func (h *AdvertisementHandler) List(c *gin.Context) {
	page, perPage := pagination(c)

	filters := services.AdvertisementFilters{
		Title: c.Query("title"),
		Type:  models.AdvertisementType(strings.TrimSpace(c.Query("type"))),
	}
	if raw := strings.TrimSpace(c.Query("status")); raw != "" {
		status, err := strconv.Atoi(raw)
		if err != nil {
			response.Error(c, appErrors.NewBadRequest("status must be 0 or 1"))
			return
		}
		filters.Status = &status
	}

	ads, total, err := h.svc.List(requestContext(c), services.ListAdvertisementsOptions{
		Page:    page,
		PerPage: perPage,
		Filters: filters,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Ads fetched successfully", response.NewPage(ads, page, perPage, total))
}

// GET /api/ads
func (h *AdvertisementHandler) ListActive(c *gin.Context) {
	ads, err := h.svc.ListActive(requestContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Ads fetched successfully", ads)
}

// GET /api/admin/ads/:id
func (h *AdvertisementHandler) Get(c *gin.Context) {
	ad, err := h.svc.Get(requestContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Ad fetched successfully", ad)
}

// POST /api/admin/ads
func (h *AdvertisementHandler) Create(c *gin.Context) {
	var req advertisementRequest
	if !bindAndValidate(c, &req) {
		return
	}

	ad, err := h.svc.Create(requestContext(c), req.input())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, "Ad created successfully", ad)
}

// PATCH /api/admin/ads/:id
func (h *AdvertisementHandler) Update(c *gin.Context) {
	var req advertisementRequest
	if !bindAndValidate(c, &req) {
		return
	}

	ad, err := h.svc.Update(requestContext(c), c.Param("id"), req.input())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Ad updated successfully", ad)
}

// DELETE /api/admin/ads/:id
func (h *AdvertisementHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(requestContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Ad deleted successfully", nil)
}
