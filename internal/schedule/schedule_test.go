package schedule

import (
	"context"
	"testing"
	"time"
)

func TestAdd_InvalidSpec(t *testing.T) {
	r := New(context.Background())
	if _, err := r.Add("not a schedule", func(context.Context) {}); err == nil {
		t.Fatal("expected error for invalid spec")
	}
}

func TestAdd_RequiresSecondsField(t *testing.T) {
	r := New(context.Background())

	// Five fields are rejected; the seconds field is mandatory.
	if _, err := r.Add("0 17 * * *", func(context.Context) {}); err == nil {
		t.Error("expected error for five-field spec")
	}
	if _, err := r.Add("0 0 17 * * *", func(context.Context) {}); err != nil {
		t.Errorf("Add() error = %v", err)
	}

	entries := r.Entries()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if next := entries[0].Schedule.Next(time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)); next.Hour() != 17 {
		t.Errorf("next fire = %v, want 17:00", next)
	}
}

func TestRunner_FiresWithBaseContext(t *testing.T) {
	type key struct{}
	base := context.WithValue(context.Background(), key{}, "run")

	r := New(base)
	got := make(chan any, 1)
	if _, err := r.Add("@every 1s", func(ctx context.Context) {
		select {
		case got <- ctx.Value(key{}):
		default:
		}
	}); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	r.Start()
	defer r.Stop()

	select {
	case v := <-got:
		if v != "run" {
			t.Errorf("job context value = %v, want run", v)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("job did not fire")
	}
}
