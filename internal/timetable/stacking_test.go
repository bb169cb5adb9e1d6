package timetable

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func occ(id int64, start, end string, days ...Weekday) *Occurrence {
	return &Occurrence{
		ID:    OccurrenceID(id),
		Days:  days,
		Start: MustParseTimeLabel(start),
		End:   MustParseTimeLabel(end),
	}
}

func TestStackSingleOccurrence(t *testing.T) {
	a := occ(1, "09:00", "10:00", Monday)

	layouts := Stack([]*Occurrence{a}, DefaultWidthDecay)

	got := layouts[a.ID][Monday]
	assert.False(t, got.Overlaps)
	assert.Equal(t, 100.0, got.WidthPct)
	assert.Equal(t, 100, got.ZOrder)
}

func TestStackNestedPair(t *testing.T) {
	a := occ(1, "09:00", "10:30", Monday)
	b := occ(2, "09:30", "10:00", Monday)

	layouts := Stack([]*Occurrence{b, a}, DefaultWidthDecay)

	assert.Equal(t, DayLayout{Overlaps: false, WidthPct: 100, ZOrder: 100, Predecessors: 0}, layouts[a.ID][Monday])
	assert.Equal(t, DayLayout{Overlaps: true, WidthPct: 90, ZOrder: 101, Predecessors: 1}, layouts[b.ID][Monday])
}

func TestStackCascadeOfThree(t *testing.T) {
	a := occ(1, "09:00", "11:00", Monday)
	b := occ(2, "09:15", "10:00", Monday)
	c := occ(3, "09:30", "09:45", Monday)

	layouts := Stack([]*Occurrence{c, a, b}, DefaultWidthDecay)

	assert.Equal(t, 0, layouts[a.ID][Monday].Predecessors)
	assert.Equal(t, 100.0, layouts[a.ID][Monday].WidthPct)
	assert.Equal(t, 1, layouts[b.ID][Monday].Predecessors)
	assert.Equal(t, 90.0, layouts[b.ID][Monday].WidthPct)
	assert.Equal(t, 2, layouts[c.ID][Monday].Predecessors)
	assert.Equal(t, 81.0, layouts[c.ID][Monday].WidthPct)
	assert.Equal(t, 102, layouts[c.ID][Monday].ZOrder)
}

func TestStackDaysAreIndependent(t *testing.T) {
	a := occ(1, "09:00", "10:00", Monday, Wednesday, Friday)
	clash := occ(2, "08:30", "09:30", Monday)

	layouts := Stack([]*Occurrence{a, clash}, DefaultWidthDecay)

	require.Len(t, layouts[a.ID], 3)
	assert.True(t, layouts[a.ID][Monday].Overlaps)
	assert.Equal(t, 90.0, layouts[a.ID][Monday].WidthPct)
	assert.False(t, layouts[a.ID][Wednesday].Overlaps)
	assert.Equal(t, 100.0, layouts[a.ID][Wednesday].WidthPct)
	assert.False(t, layouts[a.ID][Friday].Overlaps)
	_, onTuesday := layouts[a.ID][Tuesday]
	assert.False(t, onTuesday)
}

func TestStackBackToBackDoesNotOverlap(t *testing.T) {
	a := occ(1, "09:00", "10:00", Tuesday)
	b := occ(2, "10:00", "11:00", Tuesday)

	layouts := Stack([]*Occurrence{a, b}, DefaultWidthDecay)

	assert.Equal(t, 0, layouts[a.ID][Tuesday].Predecessors)
	assert.Equal(t, 0, layouts[b.ID][Tuesday].Predecessors)
}

func TestStackSameStartBreaksTieByID(t *testing.T) {
	a := occ(7, "13:00", "14:00", Thursday)
	b := occ(3, "13:00", "14:00", Thursday)

	layouts := Stack([]*Occurrence{a, b}, DefaultWidthDecay)

	assert.Equal(t, 0, layouts[b.ID][Thursday].Predecessors)
	assert.Equal(t, 1, layouts[a.ID][Thursday].Predecessors)
}

func TestStackEarlierFinishedEntryIsNotCounted(t *testing.T) {
	// a ends before c starts even though b, which started during a, is still running.
	a := occ(1, "09:00", "09:30", Monday)
	b := occ(2, "09:10", "11:00", Monday)
	c := occ(3, "10:00", "10:30", Monday)

	layouts := Stack([]*Occurrence{a, b, c}, DefaultWidthDecay)

	assert.Equal(t, 1, layouts[b.ID][Monday].Predecessors)
	assert.Equal(t, 1, layouts[c.ID][Monday].Predecessors)
}

func TestWidthPctRounding(t *testing.T) {
	assert.Equal(t, 100.0, WidthPct(0, 0.9))
	assert.Equal(t, 72.9, WidthPct(3, 0.9))
	assert.Equal(t, 65.61, WidthPct(4, 0.9))
	assert.Equal(t, 59.05, WidthPct(5, 0.9))
	assert.Equal(t, 50.0, WidthPct(1, 0.5))
}

func TestStackEmptyInput(t *testing.T) {
	assert.Empty(t, Stack(nil, DefaultWidthDecay))
	assert.Empty(t, StackSweep(nil, DefaultWidthDecay))
}
