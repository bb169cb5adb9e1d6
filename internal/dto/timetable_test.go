package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/course-timetable-api/internal/timetable"
)

func str(v string) *string { return &v }

func raw(id int, day, start, end string) timetable.RawCourse {
	return timetable.RawCourse{
		ID:           timetable.OccurrenceID(id),
		Code:         str("CPSC"),
		Number:       str("110"),
		Section:      str("101"),
		Term:         str("W1"),
		AcademicYear: str("2024"),
		DayLabel:     str(day),
		StartLabel:   str(start),
		EndLabel:     str(end),
	}
}

func buildCalendar(t *testing.T, records ...timetable.RawCourse) *timetable.Calendar {
	t.Helper()
	engine, err := timetable.NewEngine(timetable.EngineConfig{Window: timetable.DefaultWindow})
	require.NoError(t, err)
	return engine.Build(records)
}

func entriesFor(resp CalendarResponse, id int64) map[string]CalendarEntry {
	out := make(map[string]CalendarEntry)
	for _, row := range resp.Rows {
		for _, cell := range row.Cells {
			for _, e := range cell.Entries {
				if e.ID == id {
					out[row.Label] = e
				}
			}
		}
	}
	return out
}

func TestCalendarResponseKeepsEveryValidOccurrence(t *testing.T) {
	cal := buildCalendar(t,
		raw(1, "Mon", "21:00", "22:00"),
		raw(2, "Mon", "07:30", "09:00"),
	)

	resp := NewCalendarResponse(cal, 1)

	assert.Equal(t, 2, resp.ValidCount)
	require.Len(t, resp.Occurrences, 2)

	byID := make(map[int64]OccurrenceEntry)
	for _, occ := range resp.Occurrences {
		byID[occ.ID] = occ
	}

	late := byID[1]
	assert.False(t, late.Visible)
	assert.Equal(t, "21:00", late.Start)
	assert.Equal(t, DayLayoutEntry{Overlaps: false, WidthPct: 100, ZOrder: 100}, late.Layout["Mon"])
	assert.Empty(t, entriesFor(resp, 1))

	early := byID[2]
	assert.True(t, early.Visible)
	assert.Equal(t, []string{"Mon"}, early.DayNames)
	assert.Contains(t, early.Layout, "Mon")
}

func TestCalendarEntryGeometryIsClippedToWindow(t *testing.T) {
	cal := buildCalendar(t,
		raw(2, "Mon", "07:30", "09:00"),
		raw(3, "Tue", "20:30", "21:30"),
		raw(4, "Wed", "09:15", "10:00"),
	)

	resp := NewCalendarResponse(cal, 2)

	early := entriesFor(resp, 2)
	require.Contains(t, early, "08:00")
	assert.True(t, early["08:00"].Clipped)
	assert.Equal(t, 0, early["08:00"].OffsetTopPx)
	assert.Equal(t, 120, early["08:00"].HeightPx)
	assert.Equal(t, 90, early["08:00"].DurationMinutes)
	assert.Equal(t, "07:30", early["08:00"].Start)

	late := entriesFor(resp, 3)
	require.Contains(t, late, "20:00")
	assert.True(t, late["20:00"].Clipped)
	assert.Equal(t, 60, late["20:00"].OffsetTopPx)
	assert.Equal(t, 60, late["20:00"].HeightPx)

	inside := entriesFor(resp, 4)
	require.Contains(t, inside, "09:00")
	assert.False(t, inside["09:00"].Clipped)
	assert.Equal(t, 30, inside["09:00"].OffsetTopPx)
	assert.Equal(t, 90, inside["09:00"].HeightPx)
}

func TestCalendarResponseEmptyListsAreNotNull(t *testing.T) {
	resp := NewCalendarResponse(buildCalendar(t), 0)

	assert.NotNil(t, resp.Occurrences)
	assert.NotNil(t, resp.Invalid)
	assert.Len(t, resp.Rows, 13)
	assert.Zero(t, resp.ValidCount)
}
