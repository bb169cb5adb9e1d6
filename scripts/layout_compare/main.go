// Command layout_compare fetches the same calendar queries from two
// deployments and reports every card whose placement differs.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/noah-isme/course-timetable-api/internal/dto"
)

type target struct {
	Query    string `json:"query"`
	Critical bool   `json:"critical"`
}

type config struct {
	Targets []target `json:"targets"`
}

type cardKey struct {
	ID  int64
	Day string
}

type card struct {
	Row      string
	Start    string
	End      string
	WidthPct float64
	ZOrder   int
	Overlaps bool
}

type comparison struct {
	Target        target
	BaseStatus    int
	CandStatus    int
	Diffs         []string
	Error         error
	DurationBase  time.Duration
	DurationCand  time.Duration
	InvalidCounts [2]int
}

type options struct {
	baseURL     string
	candURL     string
	token       string
	targetsPath string
	timeout     time.Duration
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var opts options
	cmd := &cobra.Command{
		Use:           "layout_compare",
		Short:         "Compare calendar layouts served by two deployments",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.OutOrStdout(), opts)
		},
	}
	cmd.Flags().StringVar(&opts.baseURL, "base", "http://localhost:8080/api/v1", "Reference deployment API root")
	cmd.Flags().StringVar(&opts.candURL, "candidate", "http://localhost:8081/api/v1", "Candidate deployment API root")
	cmd.Flags().StringVar(&opts.token, "token", os.Getenv("TIMETABLE_TOKEN"), "Bearer token accepted by both deployments")
	cmd.Flags().StringVar(&opts.targetsPath, "targets", filepath.Join("scripts", "layout_compare", "targets.json"), "Path to JSON targets file")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 10*time.Second, "HTTP client timeout")
	return cmd
}

func run(out io.Writer, opts options) error {
	targets, err := loadTargets(opts.targetsPath)
	if err != nil {
		return fmt.Errorf("load targets: %w", err)
	}

	client := &http.Client{Timeout: opts.timeout}
	var (
		results      []comparison
		breaking     int
		optionalDiff int
	)
	for _, t := range targets {
		res := compareTarget(client, opts.baseURL, opts.candURL, opts.token, t)
		if res.Error != nil || res.BaseStatus != res.CandStatus || len(res.Diffs) > 0 {
			if t.Critical {
				breaking++
			} else {
				optionalDiff++
			}
		}
		results = append(results, res)
	}

	printReport(out, results)
	fmt.Fprintf(out, "Breaking diffs: %d, Optional diffs: %d\n", breaking, optionalDiff)
	if breaking > 0 {
		return fmt.Errorf("%d critical targets differ", breaking)
	}
	return nil
}

func loadTargets(path string) ([]target, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	if len(cfg.Targets) == 0 {
		return nil, fmt.Errorf("no targets defined in %s", path)
	}
	return cfg.Targets, nil
}

func compareTarget(client *http.Client, baseURL, candURL, token string, tgt target) comparison {
	res := comparison{Target: tgt}

	base, status, dur, err := fetchCalendar(client, baseURL, token, tgt.Query)
	res.BaseStatus, res.DurationBase = status, dur
	if err != nil {
		res.Error = fmt.Errorf("base: %w", err)
		return res
	}
	cand, status, dur, err := fetchCalendar(client, candURL, token, tgt.Query)
	res.CandStatus, res.DurationCand = status, dur
	if err != nil {
		res.Error = fmt.Errorf("candidate: %w", err)
		return res
	}
	if base == nil || cand == nil {
		return res
	}

	res.InvalidCounts = [2]int{base.InvalidCount, cand.InvalidCount}
	res.Diffs = diffCalendars(base, cand)
	return res
}

func fetchCalendar(client *http.Client, root, token, query string) (*dto.CalendarResponse, int, time.Duration, error) {
	url := strings.TrimRight(root, "/") + "/timetable?" + strings.TrimPrefix(query, "?")
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, 0, err
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		return nil, 0, 0, err
	}
	defer resp.Body.Close()
	elapsed := time.Since(start)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, elapsed, fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, resp.StatusCode, elapsed, nil
	}

	var envelope struct {
		Data dto.CalendarResponse `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, resp.StatusCode, elapsed, fmt.Errorf("decode calendar: %w", err)
	}
	return &envelope.Data, resp.StatusCode, elapsed, nil
}

func indexCards(cal *dto.CalendarResponse) map[cardKey]card {
	out := make(map[cardKey]card)
	for _, row := range cal.Rows {
		for _, cell := range row.Cells {
			for _, e := range cell.Entries {
				out[cardKey{ID: e.ID, Day: cell.Day}] = card{
					Row:      row.Label,
					Start:    e.Start,
					End:      e.End,
					WidthPct: e.WidthPct,
					ZOrder:   e.ZOrder,
					Overlaps: e.Overlaps,
				}
			}
		}
	}
	// Occurrences outside the window have a layout but no row.
	for _, occ := range cal.Occurrences {
		for day, l := range occ.Layout {
			key := cardKey{ID: occ.ID, Day: day}
			if _, ok := out[key]; ok {
				continue
			}
			out[key] = card{
				Start:    occ.Start,
				End:      occ.End,
				WidthPct: l.WidthPct,
				ZOrder:   l.ZOrder,
				Overlaps: l.Overlaps,
			}
		}
	}
	return out
}

// diffCalendars ignores response meta such as timings and the sweep flag.
func diffCalendars(base, cand *dto.CalendarResponse) []string {
	var diffs []string
	if base.WindowStart != cand.WindowStart || base.WindowEnd != cand.WindowEnd {
		diffs = append(diffs, fmt.Sprintf("window %s-%s vs %s-%s", base.WindowStart, base.WindowEnd, cand.WindowStart, cand.WindowEnd))
	}

	left, right := indexCards(base), indexCards(cand)
	keys := make([]cardKey, 0, len(left)+len(right))
	for k := range left {
		keys = append(keys, k)
	}
	for k := range right {
		if _, ok := left[k]; !ok {
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Day != keys[j].Day {
			return keys[i].Day < keys[j].Day
		}
		return keys[i].ID < keys[j].ID
	})

	for _, k := range keys {
		l, inLeft := left[k]
		r, inRight := right[k]
		switch {
		case !inRight:
			diffs = append(diffs, fmt.Sprintf("course %d %s missing from candidate", k.ID, k.Day))
		case !inLeft:
			diffs = append(diffs, fmt.Sprintf("course %d %s only in candidate", k.ID, k.Day))
		case l != r:
			diffs = append(diffs, fmt.Sprintf("course %d %s: %+v vs %+v", k.ID, k.Day, l, r))
		}
	}
	if base.InvalidCount != cand.InvalidCount {
		diffs = append(diffs, fmt.Sprintf("invalid count %d vs %d", base.InvalidCount, cand.InvalidCount))
	}
	return diffs
}

func printReport(out io.Writer, results []comparison) {
	fmt.Fprintln(out, "Layout Compare Report")
	fmt.Fprintln(out, "=====================")
	for _, res := range results {
		status := "OK"
		switch {
		case res.Error != nil:
			status = "ERROR"
		case res.BaseStatus != res.CandStatus || len(res.Diffs) > 0:
			status = "DIFF"
		}
		fmt.Fprintf(out, "[%s] /timetable?%s\n", status, res.Target.Query)
		fmt.Fprintf(out, "  Base: %d (%s) | Candidate: %d (%s)\n", res.BaseStatus, res.DurationBase, res.CandStatus, res.DurationCand)
		if res.Error != nil {
			fmt.Fprintf(out, "  Error: %v\n", res.Error)
			continue
		}
		for _, d := range res.Diffs {
			fmt.Fprintf(out, "  - %s\n", d)
		}
	}
}
