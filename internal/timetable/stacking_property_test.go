package timetable

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randomOccurrences(rng *rand.Rand, n int) []*Occurrence {
	out := make([]*Occurrence, n)
	for i := range out {
		start := TimeLabel(7*60 + rng.Intn(14*60))
		end := start + TimeLabel(rng.Intn(180)+1)
		var days []Weekday
		for _, d := range Weekdays {
			if rng.Intn(2) == 0 {
				days = append(days, d)
			}
		}
		if len(days) == 0 {
			days = []Weekday{Weekdays[rng.Intn(len(Weekdays))]}
		}
		out[i] = &Occurrence{ID: OccurrenceID(rng.Intn(1000)*100 + i), Days: days, Start: start, End: end}
	}
	return out
}

// TestStack_Invariants_WidthMatchesPredecessorCount checks that every
// assigned layout is fully determined by its predecessor count.
func TestStack_Invariants_WidthMatchesPredecessorCount(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for trial := 0; trial < 200; trial++ {
		occs := randomOccurrences(rng, rng.Intn(30)+1)
		layouts := Stack(occs, DefaultWidthDecay)

		for _, o := range occs {
			require.Len(t, layouts[o.ID], len(o.Days), "trial %d: one layout per recurring day", trial)
			for day, l := range layouts[o.ID] {
				assert.Equal(t, WidthPct(l.Predecessors, DefaultWidthDecay), l.WidthPct,
					"trial %d id %d %s", trial, o.ID, day)
				assert.Equal(t, l.Predecessors > 0, l.Overlaps)
				assert.Equal(t, BaseZOrder+l.Predecessors, l.ZOrder)
			}
		}
	}
}

// TestStack_Invariants_SweepMatchesScan checks the sweep-line variant
// against the quadratic scan.
func TestStack_Invariants_SweepMatchesScan(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for trial := 0; trial < 200; trial++ {
		occs := randomOccurrences(rng, rng.Intn(60)+1)
		assert.Equal(t, Stack(occs, DefaultWidthDecay), StackSweep(occs, DefaultWidthDecay), "trial %d", trial)
	}
}

// TestStack_Invariants_Deterministic checks that input order never changes the result.
func TestStack_Invariants_Deterministic(t *testing.T) {
	rng := rand.New(rand.NewSource(99))

	for trial := 0; trial < 200; trial++ {
		occs := randomOccurrences(rng, rng.Intn(25)+1)
		shuffled := append([]*Occurrence(nil), occs...)
		rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

		assert.Equal(t, Stack(occs, DefaultWidthDecay), Stack(shuffled, DefaultWidthDecay), "trial %d", trial)
	}
}

// TestStack_Invariants_GridAgreesWithPredecessors cross-checks stacking
// against the placement grid: at an occurrence's start minute, the cell
// holds the occurrence itself, its predecessors, and same-minute entries
// ordered after it.
func TestStack_Invariants_GridAgreesWithPredecessors(t *testing.T) {
	rng := rand.New(rand.NewSource(3))

	for trial := 0; trial < 100; trial++ {
		occs := randomOccurrences(rng, rng.Intn(20)+1)
		grid, err := NewGrid(DefaultWindow)
		require.NoError(t, err)
		grid.Place(occs)
		layouts := Stack(occs, DefaultWidthDecay)

		for _, o := range occs {
			if !DefaultWindow.Contains(o.Start) {
				continue
			}
			for _, day := range o.Days {
				later := 0
				for _, other := range occs {
					if other.ID > o.ID && other.Start == o.Start && containsDay(other.Days, day) {
						later++
					}
				}
				assert.Equal(t, layouts[o.ID][day].Predecessors+1+later, grid.ActiveAt(day, o.Start),
					"trial %d id %d %s", trial, o.ID, day)
			}
		}
	}
}

func containsDay(days []Weekday, day Weekday) bool {
	for _, d := range days {
		if d == day {
			return true
		}
	}
	return false
}
