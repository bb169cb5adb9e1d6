package timetable

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func rawCourse(id int64, day, start, end string) RawCourse {
	rec := RawCourse{
		ID:           OccurrenceID(id),
		Code:         strPtr("CPSC"),
		Number:       strPtr("110"),
		Section:      strPtr("101"),
		Term:         strPtr("W1"),
		AcademicYear: strPtr("2024"),
	}
	if day != "" {
		rec.DayLabel = strPtr(day)
	}
	if start != "" {
		rec.StartLabel = strPtr(start)
	}
	if end != "" {
		rec.EndLabel = strPtr(end)
	}
	return rec
}

func TestNormalizeExpandsDayLabel(t *testing.T) {
	p := Normalize([]RawCourse{rawCourse(1, "Mon_Wed_Fri", "09:00", "10:00")})

	require.Len(t, p.Valid, 1)
	assert.Empty(t, p.Invalid)
	assert.Equal(t, []Weekday{Monday, Wednesday, Friday}, p.Valid[0].Days)
	assert.Equal(t, "CPSC", p.Valid[0].Code)
}

func TestNormalizeAcceptsLongAndLegacyForms(t *testing.T) {
	cases := map[string][]Weekday{
		"Monday_Wednesday":      {Monday, Wednesday},
		"Tues_Thurs":            {Tuesday, Thursday},
		"Fri, mon":              {Monday, Friday},
		"Wed_Mon":               {Monday, Wednesday},
		"Mon_Mon_Monday":        {Monday},
		"Tue/Thu":               {Tuesday, Thursday},
		"Monday Tuesday Friday": {Monday, Tuesday, Friday},
	}
	for label, want := range cases {
		p := Normalize([]RawCourse{rawCourse(1, label, "09:00", "10:00")})
		require.Len(t, p.Valid, 1, label)
		assert.Equal(t, want, p.Valid[0].Days, label)
	}
}

func TestNormalizeTruncatesSeconds(t *testing.T) {
	p := Normalize([]RawCourse{rawCourse(1, "Mon", "09:00:00", "10:30:59")})

	require.Len(t, p.Valid, 1)
	assert.Equal(t, MustParseTimeLabel("09:00"), p.Valid[0].Start)
	assert.Equal(t, MustParseTimeLabel("10:30"), p.Valid[0].End)
}

func TestNormalizeRoutesIncompleteRecordsToInvalid(t *testing.T) {
	missingIdentity := rawCourse(5, "Mon", "09:00", "10:00")
	missingIdentity.Section = nil

	records := []RawCourse{
		rawCourse(1, "Mon", "09:00", ""),
		rawCourse(2, "", "09:00", "10:00"),
		rawCourse(3, "Mon", "", "10:00"),
		rawCourse(4, "Mon_Sat", "09:00", "10:00"),
		missingIdentity,
		rawCourse(6, "Mon", "9am", "10:00"),
		rawCourse(7, "Mon", "11:00", "10:00"),
		rawCourse(8, "   ", "09:00", "10:00"),
	}

	p := Normalize(records)

	assert.Empty(t, p.Valid)
	require.Len(t, p.Invalid, len(records))
	reasons := make(map[OccurrenceID]InvalidReason)
	for _, inv := range p.Invalid {
		reasons[inv.Course.ID] = inv.Reason
	}
	assert.Equal(t, ReasonMissingTime, reasons[1])
	assert.Equal(t, ReasonMissingDay, reasons[2])
	assert.Equal(t, ReasonMissingTime, reasons[3])
	assert.Equal(t, ReasonUnknownDay, reasons[4])
	assert.Equal(t, ReasonMissingIdentity, reasons[5])
	assert.Equal(t, ReasonMalformedTime, reasons[6])
	assert.Equal(t, ReasonInvertedTime, reasons[7])
	assert.Equal(t, ReasonMissingDay, reasons[8])
}

func TestNormalizeKeepsInvalidRecordUnchanged(t *testing.T) {
	rec := rawCourse(9, "Mon_Sat", "09:00", "10:00")

	p := Normalize([]RawCourse{rec})

	require.Len(t, p.Invalid, 1)
	assert.Equal(t, rec, p.Invalid[0].Course)
	assert.Equal(t, "Sat", p.Invalid[0].Detail)
}

func TestNormalizeMixedBatchKeepsValidRecords(t *testing.T) {
	p := Normalize([]RawCourse{
		rawCourse(1, "Mon", "09:00", "10:00"),
		rawCourse(2, "Tue", "09:00", ""),
		rawCourse(3, "Thu", "14:00", "15:30"),
	})

	require.Len(t, p.Valid, 2)
	require.Len(t, p.Invalid, 1)
	assert.Equal(t, OccurrenceID(2), p.Invalid[0].Course.ID)
}

func TestParseTimeLabel(t *testing.T) {
	got, err := ParseTimeLabel("08:05")
	require.NoError(t, err)
	assert.Equal(t, 8*60+5, got.Minutes())
	assert.Equal(t, "08:05", got.String())

	for _, bad := range []string{"", "8:00", "24:00", "12:60", "12", "12:00:61", "aa:bb", "12:00:00:00"} {
		_, err := ParseTimeLabel(bad)
		assert.Error(t, err, bad)
	}
}

func TestCanonicalDayLabel(t *testing.T) {
	assert.Equal(t, "Mon_Wed_Fri", CanonicalDayLabel([]Weekday{Friday, Monday, Wednesday, Monday}))
	assert.Equal(t, "", CanonicalDayLabel(nil))

	days, unknown := ParseDayLabel("Thurs_Tues_Xyz")
	assert.Equal(t, []Weekday{Tuesday, Thursday}, days)
	assert.Equal(t, []string{"Xyz"}, unknown)
}
