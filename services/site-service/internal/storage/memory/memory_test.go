package memory

import (
	"context"
	"testing"
	"time"

	"github.com/websitekoning/koning-api/services/site-service/internal/model"
)

func TestCountOverlappingIsStrict(t *testing.T) {
	s := New()
	ctx := context.Background()
	start := time.Date(2026, 1, 26, 11, 0, 0, 0, time.UTC)
	if _, err := s.Insert(ctx, &model.Appointment{Name: "A", Start: start, End: start.Add(30 * time.Minute)}); err != nil {
		t.Fatalf("insert: %v", err)
	}

	cases := []struct {
		name     string
		from, to time.Time
		want     int
	}{
		{"inside", start.Add(10 * time.Minute), start.Add(20 * time.Minute), 1},
		{"touching after", start.Add(30 * time.Minute), start.Add(60 * time.Minute), 0},
		{"touching before", start.Add(-30 * time.Minute), start, 0},
		{"covering", start.Add(-time.Hour), start.Add(time.Hour), 1},
	}
	for _, tc := range cases {
		got, err := s.CountOverlapping(ctx, tc.from, tc.to)
		if err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		if got != tc.want {
			t.Fatalf("%s: expected %d, got %d", tc.name, tc.want, got)
		}
	}
}

func TestListRecentNewestFirst(t *testing.T) {
	s := New()
	ctx := context.Background()
	for _, name := range []string{"first", "second", "third"} {
		if _, err := s.Stores().Leads.Insert(ctx, &model.Lead{Name: name}); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}
	leads, err := s.Stores().Leads.ListRecent(ctx, 2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(leads) != 2 || leads[0].Name != "third" || leads[1].Name != "second" {
		t.Fatalf("unexpected order: %+v", leads)
	}
	if leads[0].ID == "" || leads[0].ID == leads[1].ID {
		t.Fatalf("expected distinct ids, got %q and %q", leads[0].ID, leads[1].ID)
	}
}

func TestSeedIfEmptyRunsOnce(t *testing.T) {
	content := New().Stores().Content
	ctx := context.Background()
	posts := []model.BlogPost{{Title: "a"}, {Title: "b"}}
	testimonials := []model.Testimonial{{Author: "c", Quote: "q", Rating: 5}}

	n, err := content.SeedIfEmpty(ctx, posts, testimonials)
	if err != nil || n != 3 {
		t.Fatalf("expected 3 rows seeded, got %d (%v)", n, err)
	}
	n, err = content.SeedIfEmpty(ctx, posts, testimonials)
	if err != nil || n != 0 {
		t.Fatalf("expected second seed to be a no-op, got %d (%v)", n, err)
	}
	got, _ := content.ListPosts(ctx, 0)
	if len(got) != 2 || got[0].Author != model.DefaultAuthor {
		t.Fatalf("unexpected posts: %+v", got)
	}
}
