package timetable

import (
	"container/heap"
	"math"
	"sort"
)

// DefaultWidthDecay shrinks a card by 10% per running predecessor.
const DefaultWidthDecay = 0.9

// BaseZOrder is the z-index of a card with no predecessors.
const BaseZOrder = 100

// DayLayout is the render state of one occurrence on one day.
type DayLayout struct {
	Overlaps     bool    `json:"overlaps"`
	WidthPct     float64 `json:"width_pct"`
	ZOrder       int     `json:"z_order"`
	Predecessors int     `json:"predecessors"`
}

// Layouts maps each occurrence to its per-day render state.
type Layouts map[OccurrenceID]map[Weekday]DayLayout

// NewDayLayout derives width, overlap flag, and z-order from a predecessor count.
func NewDayLayout(predecessors int, decay float64) DayLayout {
	return DayLayout{
		Overlaps:     predecessors > 0,
		WidthPct:     WidthPct(predecessors, decay),
		ZOrder:       BaseZOrder + predecessors,
		Predecessors: predecessors,
	}
}

// WidthPct is round(100 * decay^k, 2).
func WidthPct(k int, decay float64) float64 {
	return math.Round(100*math.Pow(decay, float64(k))*100) / 100
}

// byDay groups occurrences per weekday and sorts each group by (start, id).
func byDay(occurrences []*Occurrence) map[Weekday][]*Occurrence {
	groups := make(map[Weekday][]*Occurrence)
	for _, occ := range occurrences {
		for _, day := range occ.Days {
			if !day.Valid() {
				continue
			}
			groups[day] = append(groups[day], occ)
		}
	}
	for _, list := range groups {
		sortByStart(list)
	}
	return groups
}

func sortByStart(list []*Occurrence) {
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].Start != list[j].Start {
			return list[i].Start < list[j].Start
		}
		return list[i].ID < list[j].ID
	})
}

// Stack assigns every occurrence a layout per day using the quadratic
// predecessor scan: a predecessor is an earlier entry p in (start, id) order
// with p.Start <= start < p.End.
func Stack(occurrences []*Occurrence, decay float64) Layouts {
	out := make(Layouts, len(occurrences))
	for day, list := range byDay(occurrences) {
		for idx, cur := range list {
			k := 0
			for _, prev := range list[:idx] {
				if prev.Start <= cur.Start && cur.Start < prev.End {
					k++
				}
			}
			assign(out, cur.ID, day, NewDayLayout(k, decay))
		}
	}
	return out
}

// StackSweep produces the same layouts as Stack in O(n log n) per day by
// keeping a min-heap of the end minutes of entries already walked.
func StackSweep(occurrences []*Occurrence, decay float64) Layouts {
	out := make(Layouts, len(occurrences))
	for day, list := range byDay(occurrences) {
		active := &endHeap{}
		for _, cur := range list {
			// Every entry walked so far starts at or before cur; it is a
			// predecessor iff it is still running at cur.Start.
			for active.Len() > 0 && (*active)[0] <= cur.Start {
				heap.Pop(active)
			}
			assign(out, cur.ID, day, NewDayLayout(active.Len(), decay))
			heap.Push(active, cur.End)
		}
	}
	return out
}

func assign(out Layouts, id OccurrenceID, day Weekday, layout DayLayout) {
	perDay, ok := out[id]
	if !ok {
		perDay = make(map[Weekday]DayLayout)
		out[id] = perDay
	}
	perDay[day] = layout
}

type endHeap []TimeLabel

func (h endHeap) Len() int            { return len(h) }
func (h endHeap) Less(i, j int) bool  { return h[i] < h[j] }
func (h endHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *endHeap) Push(x interface{}) { *h = append(*h, x.(TimeLabel)) }
func (h *endHeap) Pop() interface{} {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}
