package dedupe

import (
	"context"
	"testing"
	"time"
)

func TestMemoryFirstSeen(t *testing.T) {
	m := NewMemory(8, time.Minute)
	ctx := context.Background()

	first, err := m.FirstSeen(ctx, "e1")
	if err != nil || !first {
		t.Fatalf("expected first sighting, got %v (%v)", first, err)
	}
	first, _ = m.FirstSeen(ctx, "e1")
	if first {
		t.Fatal("expected duplicate on second sighting")
	}
	if first, _ := m.FirstSeen(ctx, "e2"); !first {
		t.Fatal("expected e2 to be new")
	}
}
