package progress

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/verte-zerg/tuihanzi/internal/catalog"
	"github.com/verte-zerg/tuihanzi/internal/store"
)

type memKV struct {
	data   map[string][]byte
	getErr error
	setErr error
}

func newMemKV() *memKV {
	return &memKV{data: map[string][]byte{}}
}

func (m *memKV) Get(_ context.Context, key string) ([]byte, bool, error) {
	if m.getErr != nil {
		return nil, false, m.getErr
	}
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memKV) Set(_ context.Context, key string, value []byte) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.data[key] = value
	return nil
}

func testLevels() *catalog.Catalog {
	return catalog.New(map[string][]string{
		"grade01": {"一", "二", "三"},
		"grade02": {"春", "冬"},
	})
}

func TestRoundTrip(t *testing.T) {
	kv := newMemKV()
	ctx := context.Background()
	NewStore(kv, nil).Save(ctx, "grade02", 1)

	got := NewStore(kv, nil).Load(ctx, testLevels())
	if got.Level != "grade02" || got.Index != 1 {
		t.Fatalf("unexpected progress: %+v", got)
	}
}

func TestRoundTripSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "p.db")
	ctx := context.Background()
	st, err := store.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	NewStore(st, nil).Save(ctx, "grade01", 2)
	if err := st.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	st, err = store.Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer func() {
		_ = st.Close()
	}()
	got := NewStore(st, nil).Load(ctx, testLevels())
	if got.Level != "grade01" || got.Index != 2 {
		t.Fatalf("unexpected progress: %+v", got)
	}
}

func TestLoadFallsBackToDefaults(t *testing.T) {
	ctx := context.Background()
	cases := map[string][]byte{
		"corrupt":       []byte("{not json"),
		"wrong shape":   []byte(`[1,2,3]`),
		"missing level": []byte(`{"index":2}`),
		"unknown level": []byte(`{"grade":"grade09","index":1}`),
		"binary":        {0xff, 0x00, 0x13},
	}
	for name, raw := range cases {
		kv := newMemKV()
		kv.data[Key] = raw
		got := NewStore(kv, nil).Load(ctx, testLevels())
		if got.Level != "grade01" || got.Index != 0 {
			t.Fatalf("%s: expected defaults, got %+v", name, got)
		}
	}

	got := NewStore(newMemKV(), nil).Load(ctx, testLevels())
	if got.Level != "grade01" || got.Index != 0 {
		t.Fatalf("absent: expected defaults, got %+v", got)
	}

	failing := newMemKV()
	failing.getErr = errors.New("disk gone")
	got = NewStore(failing, nil).Load(ctx, testLevels())
	if got.Level != "grade01" || got.Index != 0 {
		t.Fatalf("read error: expected defaults, got %+v", got)
	}
}

func TestLoadClampsIndex(t *testing.T) {
	kv := newMemKV()
	kv.data[Key] = []byte(`{"grade":"grade02","index":40}`)
	got := NewStore(kv, nil).Load(context.Background(), testLevels())
	if got.Level != "grade02" || got.Index != 1 {
		t.Fatalf("expected clamped index, got %+v", got)
	}
}

func TestSaveFailureIsSilent(t *testing.T) {
	kv := newMemKV()
	kv.setErr = errors.New("read-only")
	NewStore(kv, nil).Save(context.Background(), "grade01", 1)
	NewStore(nil, nil).Save(context.Background(), "grade01", 1)
}

func TestDecodeReportsCorrupt(t *testing.T) {
	if _, err := Decode([]byte("nope")); !errors.Is(err, ErrCorrupt) {
		t.Fatalf("expected ErrCorrupt, got %v", err)
	}
}
