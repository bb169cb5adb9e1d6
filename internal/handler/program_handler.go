package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/course-timetable-api/internal/dto"
	"github.com/noah-isme/course-timetable-api/internal/models"
	appErrors "github.com/noah-isme/course-timetable-api/pkg/errors"
	"github.com/noah-isme/course-timetable-api/pkg/response"
)

type programService interface {
	List(ctx context.Context) ([]models.Program, error)
	Create(ctx context.Context, req dto.ProgramRequest) (*models.Program, error)
	Requirements(ctx context.Context, name, level string) (*models.Requirements, error)
	Attach(ctx context.Context, req models.RequirementChange) (*dto.RequirementChangeResponse, error)
	Detach(ctx context.Context, req models.RequirementChange) (*dto.RequirementChangeResponse, error)
}

// ProgramHandler exposes programs and their course requirements.
type ProgramHandler struct {
	service programService
}

// NewProgramHandler constructs a ProgramHandler.
func NewProgramHandler(svc programService) *ProgramHandler {
	return &ProgramHandler{service: svc}
}

// List godoc
// @Summary List programs
// @Tags Programs
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /programs [get]
func (h *ProgramHandler) List(c *gin.Context) {
	programs, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	if programs == nil {
		programs = []models.Program{}
	}
	response.JSON(c, http.StatusOK, programs, nil)
}

// Create godoc
// @Summary Create program
// @Tags Programs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.ProgramRequest true "Program payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /programs [post]
func (h *ProgramHandler) Create(c *gin.Context) {
	var req dto.ProgramRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Validation(err, "invalid payload"))
		return
	}
	program, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, program)
}

// Requirements godoc
// @Summary Courses required by a program
// @Tags Programs
// @Produce json
// @Param program query string true "Program name"
// @Param level query string true "Year level"
// @Success 200 {object} response.Envelope{data=models.Requirements}
// @Failure 404 {object} response.Envelope
// @Router /requirements [get]
func (h *ProgramHandler) Requirements(c *gin.Context) {
	reqs, err := h.service.Requirements(c.Request.Context(), c.Query("program"), c.Query("level"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, reqs, nil)
}

// Attach godoc
// @Summary Require a course in a program
// @Description Attaches every section of the code and number
// @Tags Programs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body models.RequirementChange true "Requirement"
// @Success 200 {object} response.Envelope{data=dto.RequirementChangeResponse}
// @Failure 409 {object} response.Envelope
// @Router /requirements/attach [post]
func (h *ProgramHandler) Attach(c *gin.Context) {
	h.change(c, h.service.Attach)
}

// Detach godoc
// @Summary Stop requiring a course in a program
// @Tags Programs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body models.RequirementChange true "Requirement"
// @Success 200 {object} response.Envelope{data=dto.RequirementChangeResponse}
// @Failure 404 {object} response.Envelope
// @Router /requirements/detach [post]
func (h *ProgramHandler) Detach(c *gin.Context) {
	h.change(c, h.service.Detach)
}

func (h *ProgramHandler) change(c *gin.Context, apply func(context.Context, models.RequirementChange) (*dto.RequirementChangeResponse, error)) {
	var req models.RequirementChange
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Validation(err, "invalid payload"))
		return
	}
	res, err := apply(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res, nil)
}
