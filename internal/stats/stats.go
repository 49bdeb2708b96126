// Package stats aggregates practice records and renders reports.
package stats

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/verte-zerg/tuihanzi/internal/catalog"
	"github.com/verte-zerg/tuihanzi/internal/model"
)

// Aggregate groups records by character, most practiced first.
func Aggregate(records []model.PracticeRecord) []model.CharAggregate {
	byChar := map[string]*model.CharAggregate{}
	for _, rec := range records {
		agg, ok := byChar[rec.Character]
		if !ok {
			agg = &model.CharAggregate{Character: rec.Character, Level: rec.Level}
			byChar[rec.Character] = agg
		}
		agg.Completions++
		agg.Strokes += rec.Strokes
		agg.Commits += rec.Commits
		agg.Undos += rec.Undos
		agg.DurationMs += rec.Duration().Milliseconds()
		if rec.EndedAt.After(agg.LastAt) {
			agg.LastAt = rec.EndedAt
			agg.Level = rec.Level
		}
	}
	out := make([]model.CharAggregate, 0, len(byChar))
	for _, agg := range byChar {
		out = append(out, *agg)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Completions == out[j].Completions {
			return out[i].Character < out[j].Character
		}
		return out[i].Completions > out[j].Completions
	})
	return out
}

// AvgSeconds returns the mean time per completion.
func AvgSeconds(agg model.CharAggregate) float64 {
	if agg.Completions == 0 {
		return 0
	}
	return float64(agg.DurationMs) / 1000 / float64(agg.Completions)
}

// Efficiency is guide strokes per committed stroke. 1 means no stroke was
// taken back.
func Efficiency(strokes, commits int) float64 {
	if commits <= 0 {
		return 0
	}
	return float64(strokes) / float64(commits)
}

// MovingAverage smooths values with a trailing window.
func MovingAverage(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	if window < 1 {
		window = 1
	}
	prefix := make([]float64, len(values)+1)
	for i, v := range values {
		prefix[i+1] = prefix[i] + v
	}
	for i := range values {
		start := max(0, i+1-window)
		out[i] = (prefix[i+1] - prefix[start]) / float64(i+1-start)
	}
	return out
}

// Summary is the headline numbers for a set of records.
type Summary struct {
	Completions int
	Distinct    int
	AvgSeconds  float64
	BestSeconds float64
	Efficiency  float64
	Undos       int
}

// Summarize computes headline numbers.
func Summarize(records []model.PracticeRecord) Summary {
	var s Summary
	if len(records) == 0 {
		return s
	}
	chars := map[string]struct{}{}
	var total time.Duration
	var strokes, commits int
	for i, rec := range records {
		chars[rec.Character] = struct{}{}
		d := rec.Duration()
		total += d
		if secs := d.Seconds(); i == 0 || secs < s.BestSeconds {
			s.BestSeconds = secs
		}
		strokes += rec.Strokes
		commits += rec.Commits
		s.Undos += rec.Undos
	}
	s.Completions = len(records)
	s.Distinct = len(chars)
	s.AvgSeconds = total.Seconds() / float64(len(records))
	s.Efficiency = Efficiency(strokes, commits)
	return s
}

// RenderSummary prints headline numbers.
func RenderSummary(w io.Writer, records []model.PracticeRecord) error {
	if len(records) == 0 {
		_, err := fmt.Fprintln(w, "No practice records found.")
		return err
	}
	s := Summarize(records)
	lines := []string{
		"Summary",
		fmt.Sprintf("Characters written: %d", s.Completions),
		fmt.Sprintf("Distinct characters: %d", s.Distinct),
		fmt.Sprintf("Avg time: %.1fs", s.AvgSeconds),
		fmt.Sprintf("Best time: %.1fs", s.BestSeconds),
		fmt.Sprintf("Stroke efficiency: %.1f%%", s.Efficiency*100),
		fmt.Sprintf("Undos: %d", s.Undos),
		"",
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderTrend plots time per character and stroke efficiency over records.
func RenderTrend(w io.Writer, records []model.PracticeRecord, window, totalWidth, height int, useColor bool) error {
	if len(records) == 0 {
		return nil
	}
	secs := make([]float64, len(records))
	eff := make([]float64, len(records))
	for i, rec := range records {
		secs[i] = rec.Duration().Seconds()
		eff[i] = Efficiency(rec.Strokes, rec.Commits) * 100
	}
	width := 0
	if totalWidth > 0 {
		width = PlotWidthFor(totalWidth)
	}
	return PlotSeriesWithColor(w, "Progress", []Series{
		{Name: "Seconds", Values: MovingAverage(secs, window)},
		{Name: "Efficiency", Values: MovingAverage(eff, window)},
	}, width, height, useColor)
}

// CharRows formats aggregates as table rows.
func CharRows(aggs []model.CharAggregate) [][]string {
	rows := make([][]string, 0, len(aggs))
	for _, agg := range aggs {
		rows = append(rows, []string{
			agg.Character,
			catalog.LevelLabel(agg.Level),
			fmt.Sprintf("%d", agg.Completions),
			fmt.Sprintf("%.1f", AvgSeconds(agg)),
			fmt.Sprintf("%.1f%%", Efficiency(agg.Strokes, agg.Commits)*100),
			fmt.Sprintf("%d", agg.Undos),
		})
	}
	return rows
}

// CharHeaders are the column titles for CharRows.
var CharHeaders = []string{"Char", "Level", "Written", "Avg Time (s)", "Efficiency", "Undos"}

// RenderCharTable prints per-character aggregates.
func RenderCharTable(w io.Writer, aggs []model.CharAggregate) error {
	if len(aggs) == 0 {
		_, err := fmt.Fprintln(w, "No character stats found.")
		return err
	}
	if _, err := fmt.Fprintln(w, "Per-Character"); err != nil {
		return err
	}
	rightAlign := map[int]bool{2: true, 3: true, 4: true, 5: true}
	for _, line := range formatTable(CharHeaders, CharRows(aggs), rightAlign) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}
