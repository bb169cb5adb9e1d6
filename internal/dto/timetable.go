package dto

import (
	"github.com/noah-isme/course-timetable-api/internal/timetable"
)

// CalendarEntry is one course card as drawn on one weekday column.
type CalendarEntry struct {
	ID              int64    `json:"id"`
	Code            string   `json:"code"`
	Number          string   `json:"number"`
	Section         string   `json:"section"`
	Term            string   `json:"term"`
	AcademicYear    string   `json:"academicYear"`
	Start           string   `json:"start"`
	End             string   `json:"end"`
	DurationMinutes int      `json:"durationMinutes"`
	HeightPx        int      `json:"heightPx"`
	OffsetTopPx     int      `json:"offsetTopPx"`
	DayNames        []string `json:"dayNames"`
	// Clipped marks a card cut short by the display window. Geometry
	// covers the visible part only.
	Clipped  bool    `json:"clipped"`
	Overlaps bool    `json:"overlaps"`
	WidthPct float64 `json:"widthPct"`
	ZOrder   int     `json:"zOrder"`
}

// DayLayoutEntry is the stacking result for one occurrence on one weekday.
type DayLayoutEntry struct {
	Overlaps bool    `json:"overlaps"`
	WidthPct float64 `json:"widthPct"`
	ZOrder   int     `json:"zOrder"`
}

// OccurrenceEntry lists a valid occurrence with its layout on every day it
// meets, whether or not any of it falls inside the display window.
type OccurrenceEntry struct {
	ID           int64                     `json:"id"`
	Code         string                    `json:"code"`
	Number       string                    `json:"number"`
	Section      string                    `json:"section"`
	Term         string                    `json:"term"`
	AcademicYear string                    `json:"academicYear"`
	Start        string                    `json:"start"`
	End          string                    `json:"end"`
	DayNames     []string                  `json:"dayNames"`
	Visible      bool                      `json:"visible"`
	Layout       map[string]DayLayoutEntry `json:"layout"`
}

// CalendarCell groups the cards anchored in one hour row for one day.
type CalendarCell struct {
	Day     string          `json:"day"`
	Entries []CalendarEntry `json:"entries"`
}

// CalendarRow is one hour of the grid.
type CalendarRow struct {
	Label string         `json:"label"`
	Cells []CalendarCell `json:"cells"`
}

// InvalidCourseEntry surfaces a record that could not be laid out.
type InvalidCourseEntry struct {
	ID           int64   `json:"id"`
	Code         *string `json:"code"`
	Number       *string `json:"number"`
	Section      *string `json:"section"`
	Term         *string `json:"term"`
	AcademicYear *string `json:"academicYear"`
	Day          *string `json:"day"`
	Start        *string `json:"start"`
	End          *string `json:"end"`
	Reason       string  `json:"reason"`
	Detail       string  `json:"detail,omitempty"`
}

// CalendarResponse is the payload of the timetable endpoint.
type CalendarResponse struct {
	WindowStart  string               `json:"windowStart"`
	WindowEnd    string               `json:"windowEnd"`
	Days         []string             `json:"days"`
	HourLabels   []string             `json:"hourLabels"`
	Rows         []CalendarRow        `json:"rows"`
	Occurrences  []OccurrenceEntry    `json:"occurrences"`
	ValidCount   int                  `json:"validCount"`
	InvalidCount int                  `json:"invalidCount"`
	Invalid      []InvalidCourseEntry `json:"invalid"`
}

// NewCalendarResponse flattens a built calendar. pixelsPerMinute scales card geometry.
func NewCalendarResponse(cal *timetable.Calendar, pixelsPerMinute int) CalendarResponse {
	if pixelsPerMinute <= 0 {
		pixelsPerMinute = 1
	}

	resp := CalendarResponse{
		WindowStart:  cal.Window.Start.String(),
		WindowEnd:    cal.Window.End.String(),
		Days:         make([]string, 0, len(cal.Days)),
		HourLabels:   cal.Window.HourLabels(),
		Rows:         make([]CalendarRow, 0, len(cal.Rows)),
		Occurrences:  make([]OccurrenceEntry, 0, len(cal.Occurrences)),
		ValidCount:   len(cal.Occurrences),
		InvalidCount: len(cal.Invalid),
		Invalid:      make([]InvalidCourseEntry, 0, len(cal.Invalid)),
	}
	for _, day := range cal.Days {
		resp.Days = append(resp.Days, day.String())
	}

	for _, row := range cal.Rows {
		out := CalendarRow{Label: row.Label, Cells: make([]CalendarCell, 0, len(cal.Days))}
		for _, day := range cal.Days {
			cell := CalendarCell{Day: day.String(), Entries: []CalendarEntry{}}
			for _, occ := range row.Cells[day] {
				cell.Entries = append(cell.Entries, newCalendarEntry(occ, day, cal.Window, pixelsPerMinute))
			}
			out.Cells = append(out.Cells, cell)
		}
		resp.Rows = append(resp.Rows, out)
	}

	for _, occ := range cal.Occurrences {
		resp.Occurrences = append(resp.Occurrences, newOccurrenceEntry(occ, cal.Window))
	}

	for _, inv := range cal.Invalid {
		resp.Invalid = append(resp.Invalid, InvalidCourseEntry{
			ID:           int64(inv.Course.ID),
			Code:         inv.Course.Code,
			Number:       inv.Course.Number,
			Section:      inv.Course.Section,
			Term:         inv.Course.Term,
			AcademicYear: inv.Course.AcademicYear,
			Day:          inv.Course.DayLabel,
			Start:        inv.Course.StartLabel,
			End:          inv.Course.EndLabel,
			Reason:       string(inv.Reason),
			Detail:       inv.Detail,
		})
	}

	return resp
}

func newCalendarEntry(occ *timetable.Occurrence, day timetable.Weekday, window timetable.Window, pxPerMin int) CalendarEntry {
	layout := occ.Layout[day]
	start, end, _ := window.Clip(occ.Start, occ.End)
	return CalendarEntry{
		ID:              int64(occ.ID),
		Code:            occ.Code,
		Number:          occ.Number,
		Section:         occ.Section,
		Term:            occ.Term,
		AcademicYear:    occ.AcademicYear,
		Start:           occ.Start.String(),
		End:             occ.End.String(),
		DurationMinutes: occ.DurationMinutes(),
		HeightPx:        int(end-start) * pxPerMin,
		OffsetTopPx:     start.Minute() * pxPerMin,
		DayNames:        occ.DayNames(),
		Clipped:         start != occ.Start || end != occ.End,
		Overlaps:        layout.Overlaps,
		WidthPct:        layout.WidthPct,
		ZOrder:          layout.ZOrder,
	}
}

func newOccurrenceEntry(occ *timetable.Occurrence, window timetable.Window) OccurrenceEntry {
	_, _, visible := window.Clip(occ.Start, occ.End)
	layout := make(map[string]DayLayoutEntry, len(occ.Layout))
	for day, l := range occ.Layout {
		layout[day.String()] = DayLayoutEntry{Overlaps: l.Overlaps, WidthPct: l.WidthPct, ZOrder: l.ZOrder}
	}
	return OccurrenceEntry{
		ID:           int64(occ.ID),
		Code:         occ.Code,
		Number:       occ.Number,
		Section:      occ.Section,
		Term:         occ.Term,
		AcademicYear: occ.AcademicYear,
		Start:        occ.Start.String(),
		End:          occ.End.String(),
		DayNames:     occ.DayNames(),
		Visible:      visible,
		Layout:       layout,
	}
}

// OptionsResponse wraps a dropdown option list.
type OptionsResponse struct {
	Options []string `json:"options"`
}
