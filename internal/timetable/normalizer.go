package timetable

import "strings"

// OccurrenceID is the stable, orderable identity of a course record.
type OccurrenceID int64

// RawCourse is a course row as read from storage. Any field may be absent.
type RawCourse struct {
	ID           OccurrenceID `json:"id"`
	Code         *string      `json:"code"`
	Number       *string      `json:"number"`
	Section      *string      `json:"section"`
	Term         *string      `json:"term"`
	AcademicYear *string      `json:"academic_year"`
	DayLabel     *string      `json:"day_label"`
	StartLabel   *string      `json:"start_label"`
	EndLabel     *string      `json:"end_label"`
}

// Identity carries the five descriptive attributes a record needs to be laid out.
type Identity struct {
	Code         string `json:"code"`
	Number       string `json:"number"`
	Section      string `json:"section"`
	Term         string `json:"term"`
	AcademicYear string `json:"academic_year"`
}

// Occurrence is a valid course meeting expanded to its weekday set.
type Occurrence struct {
	ID OccurrenceID
	Identity
	Days   []Weekday
	Start  TimeLabel
	End    TimeLabel
	Layout map[Weekday]DayLayout
}

// DurationMinutes is End minus Start.
func (o *Occurrence) DurationMinutes() int {
	return int(o.End - o.Start)
}

// OffsetTopMinutes is how far past the hour the occurrence starts.
func (o *Occurrence) OffsetTopMinutes() int {
	return o.Start.Minute()
}

// DayNames renders the day set in canonical short form.
func (o *Occurrence) DayNames() []string {
	names := make([]string, len(o.Days))
	for i, d := range o.Days {
		names[i] = d.String()
	}
	return names
}

// InvalidReason classifies why a record was excluded from layout.
type InvalidReason string

const (
	ReasonMissingIdentity InvalidReason = "missing_identity"
	ReasonMissingDay      InvalidReason = "missing_day"
	ReasonMissingTime     InvalidReason = "missing_time"
	ReasonUnknownDay      InvalidReason = "unknown_day"
	ReasonMalformedTime   InvalidReason = "malformed_time"
	ReasonInvertedTime    InvalidReason = "inverted_time"
)

// InvalidCourse keeps the untouched raw record next to the exclusion reason.
type InvalidCourse struct {
	Course RawCourse     `json:"course"`
	Reason InvalidReason `json:"reason"`
	Detail string        `json:"detail,omitempty"`
}

// Partition is the normalizer output.
type Partition struct {
	Valid   []*Occurrence
	Invalid []InvalidCourse
}

// Normalize splits records into layout-eligible occurrences and excluded rows.
// It never fails; every data problem lands in Invalid.
func Normalize(records []RawCourse) Partition {
	var p Partition
	for _, rec := range records {
		occ, invalid := normalizeOne(rec)
		if invalid != nil {
			p.Invalid = append(p.Invalid, *invalid)
			continue
		}
		p.Valid = append(p.Valid, occ)
	}
	return p
}

func normalizeOne(rec RawCourse) (*Occurrence, *InvalidCourse) {
	reject := func(reason InvalidReason, detail string) (*Occurrence, *InvalidCourse) {
		return nil, &InvalidCourse{Course: rec, Reason: reason, Detail: detail}
	}

	if missing := missingIdentity(rec); len(missing) > 0 {
		return reject(ReasonMissingIdentity, strings.Join(missing, ","))
	}
	if rec.DayLabel == nil || strings.TrimSpace(*rec.DayLabel) == "" {
		return reject(ReasonMissingDay, "")
	}
	if rec.StartLabel == nil || rec.EndLabel == nil ||
		strings.TrimSpace(*rec.StartLabel) == "" || strings.TrimSpace(*rec.EndLabel) == "" {
		return reject(ReasonMissingTime, "")
	}

	days, unknown := ParseDayLabel(*rec.DayLabel)
	if len(unknown) > 0 {
		return reject(ReasonUnknownDay, strings.Join(unknown, ","))
	}
	if len(days) == 0 {
		return reject(ReasonMissingDay, "")
	}

	start, err := ParseTimeLabel(*rec.StartLabel)
	if err != nil {
		return reject(ReasonMalformedTime, err.Error())
	}
	end, err := ParseTimeLabel(*rec.EndLabel)
	if err != nil {
		return reject(ReasonMalformedTime, err.Error())
	}
	if start >= end {
		return reject(ReasonInvertedTime, start.String()+"-"+end.String())
	}

	return &Occurrence{
		ID: rec.ID,
		Identity: Identity{
			Code:         *rec.Code,
			Number:       *rec.Number,
			Section:      *rec.Section,
			Term:         *rec.Term,
			AcademicYear: *rec.AcademicYear,
		},
		Days:  days,
		Start: start,
		End:   end,
	}, nil
}

func missingIdentity(rec RawCourse) []string {
	var missing []string
	fields := []struct {
		name  string
		value *string
	}{
		{"code", rec.Code},
		{"number", rec.Number},
		{"section", rec.Section},
		{"term", rec.Term},
		{"academic_year", rec.AcademicYear},
	}
	for _, f := range fields {
		if f.value == nil {
			missing = append(missing, f.name)
		}
	}
	return missing
}
