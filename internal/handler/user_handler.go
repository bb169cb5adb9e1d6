package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/course-timetable-api/internal/models"
	appErrors "github.com/noah-isme/course-timetable-api/pkg/errors"
	"github.com/noah-isme/course-timetable-api/pkg/response"
)

type staffService interface {
	List(ctx context.Context, filter models.UserFilter) ([]models.User, *models.Pagination, error)
	SetRole(ctx context.Context, change models.RoleChange) (*models.User, error)
}

// UserHandler exposes staff account administration.
type UserHandler struct {
	service staffService
}

// NewUserHandler constructs a UserHandler.
func NewUserHandler(svc staffService) *UserHandler {
	return &UserHandler{service: svc}
}

// List godoc
// @Summary List staff accounts
// @Tags Staff
// @Produce json
// @Security BearerAuth
// @Param role query string false "STAFF or SUPERUSER"
// @Param active query bool false "Filter by active state"
// @Param search query string false "Search username or display name"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Param sort query string false "username, last_login, created_at or role"
// @Param order query string false "asc or desc"
// @Success 200 {object} response.Envelope
// @Router /staff [get]
func (h *UserHandler) List(c *gin.Context) {
	var filter models.UserFilter
	if role := models.UserRole(strings.ToUpper(c.Query("role"))); role.Valid() {
		filter.Role = &role
	}
	switch c.Query("active") {
	case "true":
		v := true
		filter.Active = &v
	case "false":
		v := false
		filter.Active = &v
	}
	filter.Search = strings.TrimSpace(c.Query("search"))
	filter.Page, filter.PageSize = pageParams(c)
	filter.SortBy = c.Query("sort")
	filter.SortOrder = c.Query("order")

	users, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, users, pagination)
}

// SetRole godoc
// @Summary Change a staff member's role
// @Tags Staff
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Param payload body models.UpdateRoleRequest true "Role payload"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /staff/{id}/role [put]
func (h *UserHandler) SetRole(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req models.UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Validation(err, "invalid role payload"))
		return
	}

	change := models.RoleChange{UserID: c.Param("id"), Role: req.Role, ActorID: claims.UserID}
	change.IP, change.UserAgent = clientOf(c)

	user, err := h.service.SetRole(c.Request.Context(), change)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, user, nil)
}
