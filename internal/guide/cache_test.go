package guide

import (
	"context"
	"errors"
	"testing"
)

func TestCachedProviderMemoizesSuccess(t *testing.T) {
	calls := 0
	next := ProviderFunc(func(_ context.Context, character string) (*Path, error) {
		calls++
		if character == "x" {
			return nil, errors.New("boom")
		}
		return fakePath(character, 2), nil
	})
	cp, err := NewCachedProvider(next, 4)
	if err != nil {
		t.Fatalf("new cache: %v", err)
	}
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if _, err := cp.Load(ctx, "二"); err != nil {
			t.Fatalf("load: %v", err)
		}
	}
	if calls != 1 {
		t.Fatalf("expected one upstream call, got %d", calls)
	}
	for i := 0; i < 2; i++ {
		if _, err := cp.Load(ctx, "x"); err == nil {
			t.Fatalf("expected error")
		}
	}
	if calls != 3 {
		t.Fatalf("expected failures to bypass cache, got %d calls", calls)
	}
	if cp.Len() != 1 {
		t.Fatalf("expected 1 cached entry, got %d", cp.Len())
	}
}
