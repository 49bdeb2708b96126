package stats

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/verte-zerg/tuihanzi/internal/model"
	"github.com/verte-zerg/tuihanzi/internal/store"
)

func TestBuildReport(t *testing.T) {
	dir := t.TempDir()
	st, err := store.Open(filepath.Join(dir, "tuihanzi.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})

	ctx := context.Background()
	base := time.Unix(0, 0).UTC()
	chars := []string{"一", "二", "一"}
	for i, ch := range chars {
		rec := record(ch, 1, 1, 0, 5, base.Add(time.Duration(i)*time.Minute))
		if _, err := st.InsertRecord(ctx, rec); err != nil {
			t.Fatalf("insert record: %v", err)
		}
	}

	report, err := BuildReport(ctx, st, model.StatsConfig{Last: 2})
	if err != nil {
		t.Fatalf("build report: %v", err)
	}
	if len(report.Records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(report.Records))
	}
	if report.Records[0].Character != "二" || report.Records[1].Character != "一" {
		t.Fatalf("unexpected records: %+v", report.Records)
	}
	if len(report.Chars) != 2 || report.Summary.Completions != 2 {
		t.Fatalf("unexpected aggregates: %+v %+v", report.Chars, report.Summary)
	}

	var buf bytes.Buffer
	if err := report.Write(&buf, 2, 60, false); err != nil {
		t.Fatalf("write report: %v", err)
	}
	for _, want := range []string{"Summary", "Progress", "Per-Character"} {
		if !strings.Contains(buf.String(), want) {
			t.Fatalf("expected %q in report", want)
		}
	}
}
