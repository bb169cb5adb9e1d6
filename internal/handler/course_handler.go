package handler

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/course-timetable-api/internal/dto"
	"github.com/noah-isme/course-timetable-api/internal/models"
	appErrors "github.com/noah-isme/course-timetable-api/pkg/errors"
	"github.com/noah-isme/course-timetable-api/pkg/response"
)

type courseService interface {
	List(ctx context.Context, filter models.CourseFilter) ([]models.Course, *models.Pagination, error)
	Get(ctx context.Context, id int64) (*models.Course, error)
	Create(ctx context.Context, req dto.CourseRequest) (*models.Course, error)
	Update(ctx context.Context, id int64, req dto.CourseRequest) (*models.Course, error)
	Delete(ctx context.Context, id int64) error
}

type courseExporter interface {
	WriteCoursesCSV(ctx context.Context, w io.Writer, filter models.CourseFilter) error
}

// CourseHandler exposes course offering endpoints.
type CourseHandler struct {
	courses  courseService
	exporter courseExporter
}

// NewCourseHandler constructs a CourseHandler.
func NewCourseHandler(courses courseService, exporter courseExporter) *CourseHandler {
	return &CourseHandler{courses: courses, exporter: exporter}
}

// List godoc
// @Summary List courses
// @Tags Courses
// @Produce json
// @Param code query string false "Code contains"
// @Param number query string false "Number contains"
// @Param section query string false "Section contains"
// @Param term query []string false "Term, repeatable" collectionFormat(multi)
// @Param year query []string false "Academic year, repeatable" collectionFormat(multi)
// @Param day query []string false "Day label, repeatable" collectionFormat(multi)
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Param sort query string false "Sort field"
// @Param order query string false "asc or desc"
// @Success 200 {object} response.Envelope
// @Router /courses [get]
func (h *CourseHandler) List(c *gin.Context) {
	filter := courseFilter(c)
	filter.Page, filter.PageSize = pageParams(c)

	courses, pagination, err := h.courses.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, courses, pagination)
}

// ExportCSV godoc
// @Summary Export courses as CSV
// @Description Same filters as the course list, without pagination
// @Tags Courses
// @Produce text/csv
// @Success 200 {file} file
// @Router /courses/export.csv [get]
func (h *CourseHandler) ExportCSV(c *gin.Context) {
	filter := courseFilter(c)
	response.Stream(c, "courses.csv", "text/csv; charset=utf-8", func(w io.Writer) error {
		return h.exporter.WriteCoursesCSV(c.Request.Context(), w, filter)
	})
}

// Get godoc
// @Summary Get course
// @Tags Courses
// @Produce json
// @Param id path int true "Course ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /courses/{id} [get]
func (h *CourseHandler) Get(c *gin.Context) {
	id, err := int64Param(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	course, err := h.courses.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, course, nil)
}

// Create godoc
// @Summary Create course
// @Tags Courses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.CourseRequest true "Course payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /courses [post]
func (h *CourseHandler) Create(c *gin.Context) {
	var req dto.CourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Validation(err, "invalid payload"))
		return
	}
	course, err := h.courses.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, course)
}

// Update godoc
// @Summary Update course
// @Tags Courses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Param payload body dto.CourseRequest true "Course payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /courses/{id} [put]
func (h *CourseHandler) Update(c *gin.Context) {
	id, err := int64Param(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.CourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Validation(err, "invalid payload"))
		return
	}
	course, err := h.courses.Update(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, course, nil)
}

// Delete godoc
// @Summary Delete course
// @Tags Courses
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Router /courses/{id} [delete]
func (h *CourseHandler) Delete(c *gin.Context) {
	id, err := int64Param(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.courses.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

func courseFilter(c *gin.Context) models.CourseFilter {
	return models.CourseFilter{
		Code:      strings.TrimSpace(c.Query("code")),
		Number:    strings.TrimSpace(c.Query("number")),
		Section:   strings.TrimSpace(c.Query("section")),
		Terms:     queryList(c, "term"),
		Years:     queryList(c, "year"),
		Days:      queryList(c, "day"),
		SortBy:    c.Query("sort"),
		SortOrder: c.Query("order"),
	}
}
