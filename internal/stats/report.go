package stats

import (
	"context"
	"io"

	"github.com/verte-zerg/tuihanzi/internal/model"
)

// RecordLister reads practice records.
type RecordLister interface {
	ListRecords(ctx context.Context, cfg model.StatsConfig) ([]model.PracticeRecord, error)
}

// Report contains precomputed data for stats rendering.
type Report struct {
	Records []model.PracticeRecord
	Chars   []model.CharAggregate
	Summary Summary
}

// BuildReport loads and prepares data for stats rendering.
func BuildReport(ctx context.Context, st RecordLister, cfg model.StatsConfig) (Report, error) {
	records, err := st.ListRecords(ctx, cfg)
	if err != nil {
		return Report{}, err
	}
	return Report{
		Records: records,
		Chars:   Aggregate(records),
		Summary: Summarize(records),
	}, nil
}

// Write prints the full text report.
func (r Report) Write(w io.Writer, window, width int, useColor bool) error {
	if err := RenderSummary(w, r.Records); err != nil {
		return err
	}
	if err := RenderTrend(w, r.Records, window, width, defaultPlotHeight, useColor); err != nil {
		return err
	}
	return RenderCharTable(w, r.Chars)
}
