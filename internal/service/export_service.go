package service

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/course-timetable-api/internal/models"
	"github.com/noah-isme/course-timetable-api/internal/timetable"
	appErrors "github.com/noah-isme/course-timetable-api/pkg/errors"
	"github.com/noah-isme/course-timetable-api/pkg/export"
)

type exportCourseLister interface {
	ListAll(ctx context.Context, filter models.CourseFilter) ([]models.Course, error)
}

type calendarBuilder interface {
	Calendar(ctx context.Context, q models.TimetableQuery) (*timetable.Calendar, error)
}

type csvWriter interface {
	Write(w io.Writer, data export.Dataset) error
}

type pdfRenderer interface {
	Render(title, subtitle string, sections ...export.Section) ([]byte, error)
}

// ExportService renders course lists and calendars for download.
type ExportService struct {
	courses  exportCourseLister
	calendar calendarBuilder
	csv      csvWriter
	pdf      pdfRenderer
	logger   *zap.Logger
}

// NewExportService constructs an ExportService. Nil renderers fall back to pkg/export.
func NewExportService(courses exportCourseLister, calendar calendarBuilder, logger *zap.Logger, csv csvWriter, pdf pdfRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{courses: courses, calendar: calendar, csv: csv, pdf: pdf, logger: logger}
}

// CourseHeaders are the CSV columns of a course export.
var CourseHeaders = []string{"ID", "Code", "Number", "Section", "Term", "Academic Year", "Day", "Start", "End"}

// WriteCoursesCSV streams every course matching filter to w.
func (s *ExportService) WriteCoursesCSV(ctx context.Context, w io.Writer, filter models.CourseFilter) error {
	courses, err := s.courses.ListAll(ctx, filter)
	if err != nil {
		return appErrors.FromError(err)
	}
	if err := s.csv.Write(w, CourseDataset(courses)); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
	}
	return nil
}

// CalendarPDF builds the calendar for q and renders it with its exclusion list.
func (s *ExportService) CalendarPDF(ctx context.Context, q models.TimetableQuery) ([]byte, error) {
	cal, err := s.calendar.Calendar(ctx, q)
	if err != nil {
		return nil, err
	}

	title := fmt.Sprintf("Timetable %s", q.Year)
	subtitle := fmt.Sprintf("Terms %s, %s to %s", strings.Join(q.Terms, ", "), cal.Window.Start, cal.Window.End)
	if q.Program != "" {
		subtitle = fmt.Sprintf("%s, program %s %s", subtitle, q.Program, q.Level)
	}

	payload, err := s.pdf.Render(title, subtitle, CalendarSections(cal)...)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
	}
	s.logger.Debug("calendar pdf rendered",
		zap.String("year", q.Year),
		zap.Int("occurrences", len(cal.Occurrences)),
		zap.Int("bytes", len(payload)),
	)
	return payload, nil
}

// CourseDataset flattens courses into export rows. Missing references render empty.
func CourseDataset(courses []models.Course) export.Dataset {
	rows := make([][]string, 0, len(courses))
	for _, c := range courses {
		rows = append(rows, []string{
			strconv.FormatInt(c.ID, 10),
			deref(c.Code),
			deref(c.Number),
			deref(c.Section),
			deref(c.Term),
			deref(c.AcademicYear),
			deref(c.Day),
			deref(c.StartTime),
			deref(c.EndTime),
		})
	}
	return export.Dataset{Headers: CourseHeaders, Rows: rows}
}

// CalendarSections lays a calendar out as one table per weekday plus the
// excluded records.
func CalendarSections(cal *timetable.Calendar) []export.Section {
	headers := []string{"Time", "Course", "Section", "Term", "Width %", "Z", "Overlaps"}
	widths := []float64{2, 3, 1.5, 1, 1, 1, 1}

	sections := make([]export.Section, 0, len(cal.Days)+1)
	for _, day := range cal.Days {
		var rows [][]string
		for _, occ := range cal.Occurrences {
			layout, ok := occ.Layout[day]
			if !ok {
				continue
			}
			overlaps := ""
			if layout.Overlaps {
				overlaps = "yes"
			}
			rows = append(rows, []string{
				fmt.Sprintf("%s-%s", occ.Start, occ.End),
				fmt.Sprintf("%s %s", occ.Code, occ.Number),
				occ.Section,
				occ.Term,
				strconv.FormatFloat(layout.WidthPct, 'f', 2, 64),
				strconv.Itoa(layout.ZOrder),
				overlaps,
			})
		}
		sections = append(sections, export.Section{
			Title:  day.LongName(),
			Widths: widths,
			Data:   export.Dataset{Headers: headers, Rows: rows},
			Empty:  "No courses.",
		})
	}

	invalid := make([][]string, 0, len(cal.Invalid))
	for _, inv := range cal.Invalid {
		invalid = append(invalid, []string{
			fmt.Sprintf("%s %s %s", deref(inv.Course.Code), deref(inv.Course.Number), deref(inv.Course.Section)),
			deref(inv.Course.DayLabel),
			fmt.Sprintf("%s-%s", deref(inv.Course.StartLabel), deref(inv.Course.EndLabel)),
			string(inv.Reason),
		})
	}
	sections = append(sections, export.Section{
		Title:  "Not shown on the calendar",
		Widths: []float64{3, 2, 2, 2},
		Data:   export.Dataset{Headers: []string{"Course", "Day", "Time", "Reason"}, Rows: invalid},
		Empty:  "None.",
	})
	return sections
}

func deref(ptr *string) string {
	if ptr == nil {
		return ""
	}
	return *ptr
}
