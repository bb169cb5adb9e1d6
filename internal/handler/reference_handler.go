package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/course-timetable-api/internal/dto"
	"github.com/noah-isme/course-timetable-api/internal/models"
	appErrors "github.com/noah-isme/course-timetable-api/pkg/errors"
	"github.com/noah-isme/course-timetable-api/pkg/response"
)

type referenceService interface {
	List(ctx context.Context, kind models.ReferenceKind, filter models.ReferenceFilter) ([]models.ReferenceItem, *models.Pagination, error)
	Create(ctx context.Context, kind models.ReferenceKind, req dto.ReferenceRequest) (*models.ReferenceItem, error)
	Update(ctx context.Context, kind models.ReferenceKind, id int64, req dto.ReferenceRequest) (*models.ReferenceItem, error)
	Delete(ctx context.Context, kind models.ReferenceKind, id int64) error
	Affected(ctx context.Context, kind models.ReferenceKind, id int64) (*models.AffectedReport, error)
}

// ReferenceHandler exposes the lookup tables (terms, codes, days, ...).
type ReferenceHandler struct {
	service referenceService
}

// NewReferenceHandler constructs a ReferenceHandler.
func NewReferenceHandler(svc referenceService) *ReferenceHandler {
	return &ReferenceHandler{service: svc}
}

// Kinds godoc
// @Summary Reference kinds
// @Tags References
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /references [get]
func (h *ReferenceHandler) Kinds(c *gin.Context) {
	response.JSON(c, http.StatusOK, models.ReferenceKinds, nil)
}

// List godoc
// @Summary List reference items
// @Tags References
// @Produce json
// @Param kind path string true "terms, codes, numbers, sections, times, days, years, program-names or program-levels"
// @Param search query string false "Name contains"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Param sort query string false "name, created_at or id"
// @Param order query string false "asc or desc"
// @Success 200 {object} response.Envelope
// @Router /references/{kind} [get]
func (h *ReferenceHandler) List(c *gin.Context) {
	filter := models.ReferenceFilter{
		Search:    strings.TrimSpace(c.Query("search")),
		SortBy:    c.Query("sort"),
		SortOrder: c.Query("order"),
	}
	filter.Page, filter.PageSize = pageParams(c)

	items, pagination, err := h.service.List(c.Request.Context(), kindParam(c), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, pagination)
}

// Create godoc
// @Summary Create reference item
// @Tags References
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param kind path string true "Reference kind"
// @Param payload body dto.ReferenceRequest true "Item payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /references/{kind} [post]
func (h *ReferenceHandler) Create(c *gin.Context) {
	var req dto.ReferenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Validation(err, "invalid payload"))
		return
	}
	item, err := h.service.Create(c.Request.Context(), kindParam(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, item)
}

// Update godoc
// @Summary Rename reference item
// @Tags References
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param kind path string true "Reference kind"
// @Param id path int true "Item ID"
// @Param payload body dto.ReferenceRequest true "Item payload"
// @Success 200 {object} response.Envelope
// @Router /references/{kind}/{id} [put]
func (h *ReferenceHandler) Update(c *gin.Context) {
	id, err := int64Param(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.ReferenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Validation(err, "invalid payload"))
		return
	}
	item, err := h.service.Update(c.Request.Context(), kindParam(c), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// Delete godoc
// @Summary Delete reference item
// @Tags References
// @Security BearerAuth
// @Param kind path string true "Reference kind"
// @Param id path int true "Item ID"
// @Success 204
// @Router /references/{kind}/{id} [delete]
func (h *ReferenceHandler) Delete(c *gin.Context) {
	id, err := int64Param(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.service.Delete(c.Request.Context(), kindParam(c), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Affected godoc
// @Summary Preview what an edit or delete touches
// @Tags References
// @Produce json
// @Security BearerAuth
// @Param kind path string true "Reference kind"
// @Param id path int true "Item ID"
// @Success 200 {object} response.Envelope{data=models.AffectedReport}
// @Router /references/{kind}/{id}/affected [get]
func (h *ReferenceHandler) Affected(c *gin.Context) {
	id, err := int64Param(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	report, err := h.service.Affected(c.Request.Context(), kindParam(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}

func kindParam(c *gin.Context) models.ReferenceKind {
	return models.ReferenceKind(strings.ToLower(c.Param("kind")))
}
