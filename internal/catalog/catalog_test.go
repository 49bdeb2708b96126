package catalog

import (
	"os"
	"path/filepath"
	"testing"
)

func testCatalog() *Catalog {
	return New(map[string][]string{
		"grade01": {"一", "二", "三"},
		"grade02": {},
		"extra":   {" 你 ", ""},
	})
}

func TestLevelsSorted(t *testing.T) {
	levels := testCatalog().Levels()
	want := []string{"extra", "grade01", "grade02"}
	if len(levels) != len(want) {
		t.Fatalf("expected %d levels, got %v", len(want), levels)
	}
	for i := range want {
		if levels[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, levels)
		}
	}
}

func TestCharactersForTrimsBlanks(t *testing.T) {
	chars := testCatalog().CharactersFor("extra")
	if len(chars) != 1 || chars[0] != "你" {
		t.Fatalf("unexpected characters: %q", chars)
	}
	if got := testCatalog().CharactersFor("missing"); len(got) != 0 {
		t.Fatalf("expected empty list for unknown level, got %q", got)
	}
}

func TestNavigateStaysInRange(t *testing.T) {
	c := testCatalog()
	for _, level := range []string{"grade01", "extra"} {
		n := c.Len(level)
		for start := 0; start < n; start++ {
			for delta := -5; delta <= 5; delta++ {
				got := c.Navigate(level, start, delta)
				if got < 0 || got > n-1 {
					t.Fatalf("navigate(%s, %d, %d) = %d out of range", level, start, delta, got)
				}
			}
		}
	}
	if got := c.Navigate("grade01", 1, 1); got != 2 {
		t.Fatalf("expected 2, got %d", got)
	}
	if got := c.Navigate("grade01", 2, 1); got != 2 {
		t.Fatalf("expected clamp at 2, got %d", got)
	}
}

func TestNavigateEmptyLevelIsNoop(t *testing.T) {
	c := testCatalog()
	for _, level := range []string{"grade02", "missing"} {
		for _, idx := range []int{0, 3} {
			if got := c.Navigate(level, idx, 1); got != idx {
				t.Fatalf("expected no-op on empty %s, got %d", level, got)
			}
		}
	}
	if _, ok := c.Entry("grade02", 0); ok {
		t.Fatalf("expected no entry for empty level")
	}
}

func TestEntryClamps(t *testing.T) {
	entry, ok := testCatalog().Entry("grade01", 10)
	if !ok || entry.Character != "三" || entry.Index != 2 {
		t.Fatalf("unexpected entry: %+v", entry)
	}
}

func TestNextLevelWraps(t *testing.T) {
	c := testCatalog()
	if got := c.NextLevel("grade02", 1); got != "extra" {
		t.Fatalf("expected wrap to extra, got %s", got)
	}
	if got := c.NextLevel("extra", -1); got != "grade02" {
		t.Fatalf("expected wrap to grade02, got %s", got)
	}
	if got := c.NextLevel("unknown", 1); got != "extra" {
		t.Fatalf("expected first level for unknown input, got %s", got)
	}
}

func TestLevelLabel(t *testing.T) {
	cases := map[string]string{
		"grade01": "小学一年级",
		"grade06": "小学六年级",
		"grade12": "小学12年级",
		"extra":   "extra",
	}
	for in, want := range cases {
		if got := LevelLabel(in); got != want {
			t.Fatalf("LevelLabel(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestDefaultCatalog(t *testing.T) {
	c := Default()
	levels := c.Levels()
	if len(levels) == 0 || levels[0] != "grade01" {
		t.Fatalf("unexpected default levels: %v", levels)
	}
	if c.Len("grade01") == 0 {
		t.Fatalf("expected characters in grade01")
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chars.json")
	if err := os.WriteFile(path, []byte(`{"a":["山","水"]}`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	c, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Len("a") != 2 {
		t.Fatalf("expected 2 characters")
	}
	if err := os.WriteFile(path, []byte(`[1,2]`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected decode error")
	}
}
