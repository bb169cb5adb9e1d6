package timetable

import "errors"

// ErrInvalidWindow is returned when a display window does not start before it ends.
var ErrInvalidWindow = errors.New("timetable window start must be before end")

// Window is the half-open daily display range [Start, End).
type Window struct {
	Start TimeLabel
	End   TimeLabel
}

// DefaultWindow covers 08:00 to 21:00.
var DefaultWindow = Window{Start: 8 * 60, End: 21 * 60}

// Validate rejects empty, inverted, or out-of-day windows.
func (w Window) Validate() error {
	if w.Start < 0 || w.End > MinutesPerDay || w.Start >= w.End {
		return ErrInvalidWindow
	}
	return nil
}

// Contains reports whether minute t falls inside the window.
func (w Window) Contains(t TimeLabel) bool {
	return t >= w.Start && t < w.End
}

// Clip narrows [start, end) to the window. ok is false when nothing remains.
func (w Window) Clip(start, end TimeLabel) (TimeLabel, TimeLabel, bool) {
	if start < w.Start {
		start = w.Start
	}
	if end > w.End {
		end = w.End
	}
	return start, end, start < end
}

// HourLabels returns "HH:00" for every hour that begins inside the window,
// plus the hour containing Start when Start is not on the hour.
func (w Window) HourLabels() []string {
	var labels []string
	for h := w.Start.Hour(); TimeLabel(h*60) < w.End; h++ {
		labels = append(labels, TimeLabel(h*60).String())
	}
	return labels
}

// Grid is the per-day, per-minute placement map over a window.
type Grid struct {
	window Window
	cells  map[GridKey][]*Occurrence
	placed map[OccurrenceID]struct{}
}

// NewGrid builds an empty grid with one cell per weekday and minute in the window.
func NewGrid(window Window) (*Grid, error) {
	if err := window.Validate(); err != nil {
		return nil, err
	}
	size := len(Weekdays) * int(window.End-window.Start)
	g := &Grid{
		window: window,
		cells:  make(map[GridKey][]*Occurrence, size),
		placed: make(map[OccurrenceID]struct{}),
	}
	for _, day := range Weekdays {
		for t := window.Start; t < window.End; t++ {
			g.cells[GridKey{Day: day, Minute: t}] = []*Occurrence{}
		}
	}
	return g, nil
}

// Window returns the grid's display window.
func (g *Grid) Window() Window {
	return g.window
}

// Len returns the number of addressable cells.
func (g *Grid) Len() int {
	return len(g.cells)
}

// Keys lists every cell key in canonical day order then ascending minute.
func (g *Grid) Keys() []GridKey {
	keys := make([]GridKey, 0, len(g.cells))
	for _, day := range Weekdays {
		for t := g.window.Start; t < g.window.End; t++ {
			keys = append(keys, GridKey{Day: day, Minute: t})
		}
	}
	return keys
}

// GridKey addresses one cell.
type GridKey struct {
	Day    Weekday
	Minute TimeLabel
}

// Place stamps each occurrence into every cell its days and [Start, End)
// interval cover, clipped to the window. An occurrence already placed is skipped.
func (g *Grid) Place(occurrences []*Occurrence) {
	for _, occ := range occurrences {
		if occ == nil {
			continue
		}
		if _, done := g.placed[occ.ID]; done {
			continue
		}
		g.placed[occ.ID] = struct{}{}

		start, end, ok := g.window.Clip(occ.Start, occ.End)
		if !ok {
			continue
		}
		for _, day := range occ.Days {
			if !day.Valid() {
				continue
			}
			for t := start; t < end; t++ {
				key := GridKey{Day: day, Minute: t}
				g.cells[key] = append(g.cells[key], occ)
			}
		}
	}
}

// Cell returns the occurrences stamped at (day, t) in placement order.
// Minutes outside the window return nil.
func (g *Grid) Cell(day Weekday, t TimeLabel) []*Occurrence {
	return g.cells[GridKey{Day: day, Minute: t}]
}

// ActiveAt reports how many occurrences are running at (day, t).
func (g *Grid) ActiveAt(day Weekday, t TimeLabel) int {
	return len(g.cells[GridKey{Day: day, Minute: t}])
}

// Anchored returns occurrences whose first visible minute on day is t. Used
// to place each card once in the row where it begins.
func (g *Grid) Anchored(day Weekday, t TimeLabel) []*Occurrence {
	var out []*Occurrence
	for _, occ := range g.cells[GridKey{Day: day, Minute: t}] {
		first := occ.Start
		if first < g.window.Start {
			first = g.window.Start
		}
		if first == t {
			out = append(out, occ)
		}
	}
	return out
}
