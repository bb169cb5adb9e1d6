package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/course-timetable-api/internal/dto"
	"github.com/noah-isme/course-timetable-api/internal/middleware"
	"github.com/noah-isme/course-timetable-api/internal/models"
	"github.com/noah-isme/course-timetable-api/internal/timetable"
	appErrors "github.com/noah-isme/course-timetable-api/pkg/errors"
	"github.com/noah-isme/course-timetable-api/pkg/response"
)

type timetableService interface {
	Calendar(ctx context.Context, q models.TimetableQuery) (*timetable.Calendar, error)
	Years(ctx context.Context) ([]string, error)
	Codes(ctx context.Context) ([]string, error)
	Terms(ctx context.Context, year string) ([]string, error)
	Numbers(ctx context.Context, code string) ([]string, error)
	Programs(ctx context.Context) ([]string, error)
	Levels(ctx context.Context, program string) ([]string, error)
}

type calendarExporter interface {
	CalendarPDF(ctx context.Context, q models.TimetableQuery) ([]byte, error)
}

// TimetableHandler serves the weekly calendar and the option lists that feed its filters.
type TimetableHandler struct {
	service         timetableService
	exporter        calendarExporter
	pixelsPerMinute int
}

// NewTimetableHandler constructs a TimetableHandler.
func NewTimetableHandler(svc timetableService, exporter calendarExporter, pixelsPerMinute int) *TimetableHandler {
	return &TimetableHandler{service: svc, exporter: exporter, pixelsPerMinute: pixelsPerMinute}
}

// Calendar godoc
// @Summary Weekly calendar
// @Description Lay out the courses of one academic year and one or more terms
// @Tags Timetable
// @Produce json
// @Param year query string true "Academic year"
// @Param term query []string true "Term, repeatable" collectionFormat(multi)
// @Param course_filters query string false "JSON array of {code, numbers}"
// @Param program query string false "Program name"
// @Param level query string false "Program year level"
// @Success 200 {object} response.Envelope{data=dto.CalendarResponse}
// @Failure 400 {object} response.Envelope
// @Router /timetable [get]
func (h *TimetableHandler) Calendar(c *gin.Context) {
	q, err := parseTimetableQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	cal, err := h.service.Calendar(c.Request.Context(), q)
	if err != nil {
		response.Error(c, err)
		return
	}
	if cal.Swept {
		middleware.SetMeta(c, "sweep", true)
	}
	response.JSON(c, http.StatusOK, dto.NewCalendarResponse(cal, h.pixelsPerMinute), nil, middleware.ExtractMeta(c))
}

// ExportPDF godoc
// @Summary Weekly calendar as PDF
// @Tags Timetable
// @Produce application/pdf
// @Param year query string true "Academic year"
// @Param term query []string true "Term, repeatable" collectionFormat(multi)
// @Param course_filters query string false "JSON array of {code, numbers}"
// @Param program query string false "Program name"
// @Param level query string false "Program year level"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /timetable/export.pdf [get]
func (h *TimetableHandler) ExportPDF(c *gin.Context) {
	q, err := parseTimetableQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	payload, err := h.exporter.CalendarPDF(c.Request.Context(), q)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, fmt.Sprintf("timetable-%s.pdf", sanitizeFilename(q.Year)), "application/pdf", payload)
}

// Years godoc
// @Summary Academic years that have courses
// @Tags Timetable
// @Produce json
// @Success 200 {object} response.Envelope{data=dto.OptionsResponse}
// @Router /timetable/options/years [get]
func (h *TimetableHandler) Years(c *gin.Context) {
	h.options(c, func(ctx context.Context) ([]string, error) { return h.service.Years(ctx) })
}

// Codes godoc
// @Summary Course codes
// @Tags Timetable
// @Produce json
// @Success 200 {object} response.Envelope{data=dto.OptionsResponse}
// @Router /timetable/options/codes [get]
func (h *TimetableHandler) Codes(c *gin.Context) {
	h.options(c, func(ctx context.Context) ([]string, error) { return h.service.Codes(ctx) })
}

// Terms godoc
// @Summary Terms offered in a year
// @Tags Timetable
// @Produce json
// @Param year query string false "Academic year"
// @Success 200 {object} response.Envelope{data=dto.OptionsResponse}
// @Router /timetable/options/terms [get]
func (h *TimetableHandler) Terms(c *gin.Context) {
	year := strings.TrimSpace(c.Query("year"))
	h.options(c, func(ctx context.Context) ([]string, error) { return h.service.Terms(ctx, year) })
}

// Numbers godoc
// @Summary Course numbers for a code
// @Tags Timetable
// @Produce json
// @Param code query string false "Course code"
// @Success 200 {object} response.Envelope{data=dto.OptionsResponse}
// @Router /timetable/options/numbers [get]
func (h *TimetableHandler) Numbers(c *gin.Context) {
	code := strings.TrimSpace(c.Query("code"))
	h.options(c, func(ctx context.Context) ([]string, error) { return h.service.Numbers(ctx, code) })
}

// Programs godoc
// @Summary Program names
// @Tags Timetable
// @Produce json
// @Success 200 {object} response.Envelope{data=dto.OptionsResponse}
// @Router /timetable/options/programs [get]
func (h *TimetableHandler) Programs(c *gin.Context) {
	h.options(c, func(ctx context.Context) ([]string, error) { return h.service.Programs(ctx) })
}

// Levels godoc
// @Summary Year levels of a program
// @Tags Timetable
// @Produce json
// @Param program query string false "Program name"
// @Success 200 {object} response.Envelope{data=dto.OptionsResponse}
// @Router /timetable/options/levels [get]
func (h *TimetableHandler) Levels(c *gin.Context) {
	program := strings.TrimSpace(c.Query("program"))
	h.options(c, func(ctx context.Context) ([]string, error) { return h.service.Levels(ctx, program) })
}

func (h *TimetableHandler) options(c *gin.Context, load func(context.Context) ([]string, error)) {
	values, err := load(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	if values == nil {
		values = []string{}
	}
	response.JSON(c, http.StatusOK, dto.OptionsResponse{Options: values}, nil)
}

// parseTimetableQuery reads year, repeated term, course_filters, program and
// level. Course numbers may be sent as strings or JSON numbers. Blank course
// filter entries are dropped; malformed JSON is rejected.
func parseTimetableQuery(c *gin.Context) (models.TimetableQuery, error) {
	q := models.TimetableQuery{
		Year:    strings.TrimSpace(c.Query("year")),
		Terms:   queryList(c, "term"),
		Program: strings.TrimSpace(c.Query("program")),
		Level:   strings.TrimSpace(c.Query("level")),
	}

	raw := strings.TrimSpace(c.Query("course_filters"))
	if raw == "" {
		return q, nil
	}
	var groups []struct {
		Code    string        `json:"code"`
		Numbers []interface{} `json:"numbers"`
	}
	if err := json.Unmarshal([]byte(raw), &groups); err != nil {
		return q, appErrors.Validation(err, "course_filters must be a JSON array of {code, numbers}")
	}
	for _, g := range groups {
		code := strings.ToUpper(strings.TrimSpace(g.Code))
		var numbers []string
		for _, v := range g.Numbers {
			if v == nil {
				continue
			}
			if n := strings.TrimSpace(fmt.Sprint(v)); n != "" {
				numbers = append(numbers, n)
			}
		}
		if code == "" && len(numbers) == 0 {
			continue
		}
		q.Courses = append(q.Courses, models.CourseGroupFilter{Code: code, Numbers: numbers})
	}
	return q, nil
}

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "all"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, raw)
}
