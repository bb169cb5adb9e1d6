package timetable

import "fmt"

// EngineConfig holds the deploy-time layout constants.
type EngineConfig struct {
	Window Window
	// WidthDecay is applied once per running predecessor. Zero means DefaultWidthDecay.
	WidthDecay float64
	// SweepThreshold switches a build to StackSweep when any day holds more
	// occurrences than this. Zero keeps the quadratic scan.
	SweepThreshold int
}

// Engine turns raw course records into a laid-out weekly calendar. It holds
// no per-request state and is safe for concurrent use.
type Engine struct {
	cfg EngineConfig
}

// NewEngine validates the configuration. A bad window is a deployment error.
func NewEngine(cfg EngineConfig) (*Engine, error) {
	if err := cfg.Window.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s-%s", err, cfg.Window.Start, cfg.Window.End)
	}
	if cfg.WidthDecay == 0 {
		cfg.WidthDecay = DefaultWidthDecay
	}
	if cfg.WidthDecay < 0 || cfg.WidthDecay > 1 {
		return nil, fmt.Errorf("width decay %v outside (0, 1]", cfg.WidthDecay)
	}
	return &Engine{cfg: cfg}, nil
}

// Config returns the effective configuration.
func (e *Engine) Config() EngineConfig {
	return e.cfg
}

// HourRow lists, per day, the occurrences whose card begins within one hour.
type HourRow struct {
	Label string
	Cells map[Weekday][]*Occurrence
}

// Calendar is the request-scoped result of a build.
type Calendar struct {
	Window      Window
	Days        []Weekday
	Rows        []HourRow
	Occurrences []*Occurrence
	Invalid     []InvalidCourse
	Grid        *Grid
	Swept       bool
}

// Empty reports whether nothing could be laid out.
func (c *Calendar) Empty() bool {
	return len(c.Occurrences) == 0
}

// Build runs normalize, place, and stack over records. It never fails for
// data-shaped problems.
func (e *Engine) Build(records []RawCourse) *Calendar {
	part := Normalize(records)

	// The window was validated in NewEngine.
	grid, _ := NewGrid(e.cfg.Window)
	grid.Place(part.Valid)

	var layouts Layouts
	swept := e.useSweep(part.Valid)
	if swept {
		layouts = StackSweep(part.Valid, e.cfg.WidthDecay)
	} else {
		layouts = Stack(part.Valid, e.cfg.WidthDecay)
	}
	for _, occ := range part.Valid {
		occ.Layout = layouts[occ.ID]
	}

	ordered := make([]*Occurrence, len(part.Valid))
	copy(ordered, part.Valid)
	sortByStart(ordered)

	return &Calendar{
		Window:      e.cfg.Window,
		Days:        append([]Weekday(nil), Weekdays...),
		Rows:        e.rows(grid),
		Occurrences: ordered,
		Invalid:     part.Invalid,
		Grid:        grid,
		Swept:       swept,
	}
}

func (e *Engine) useSweep(valid []*Occurrence) bool {
	if e.cfg.SweepThreshold <= 0 {
		return false
	}
	counts := make(map[Weekday]int)
	for _, occ := range valid {
		for _, day := range occ.Days {
			counts[day]++
			if counts[day] > e.cfg.SweepThreshold {
				return true
			}
		}
	}
	return false
}

func (e *Engine) rows(grid *Grid) []HourRow {
	w := e.cfg.Window
	var rows []HourRow
	for _, label := range w.HourLabels() {
		hourStart := MustParseTimeLabel(label)
		row := HourRow{Label: label, Cells: make(map[Weekday][]*Occurrence)}
		for _, day := range Weekdays {
			var cell []*Occurrence
			for t := hourStart; t < hourStart+60; t++ {
				if !w.Contains(t) {
					continue
				}
				cell = append(cell, grid.Anchored(day, t)...)
			}
			sortByStart(cell)
			row.Cells[day] = cell
		}
		rows = append(rows, row)
	}
	return rows
}
