package supervisor

import (
	"context"
	"testing"
	"time"

	"github.com/wingmate/wingmate/internal/config"
)

func anySpec() config.FieldSpec { return config.FieldSpec{Kind: config.Any} }

func TestCronRunnerIsDue(t *testing.T) {
	t.Run("matches every tick when all fields are Any", func(t *testing.T) {
		r := &CronRunner{Entry: config.CrontabEntry{
			Minute: anySpec(), Hour: anySpec(), DayOfMonth: anySpec(), Month: anySpec(), DayOfWeek: anySpec(),
		}}

		now := time.Date(2026, 7, 30, 10, 15, 0, 0, time.UTC)
		if !r.isDue(now) {
			t.Fatal("expected match")
		}
	})

	t.Run("enforces a minimum 60s inter-fire interval", func(t *testing.T) {
		r := &CronRunner{Entry: config.CrontabEntry{
			Minute: anySpec(), Hour: anySpec(), DayOfMonth: anySpec(), Month: anySpec(), DayOfWeek: anySpec(),
		}}

		t1 := time.Date(2026, 7, 30, 10, 15, 0, 0, time.UTC)
		if !r.isDue(t1) {
			t.Fatal("expected first fire to match")
		}

		t2 := t1.Add(30 * time.Second)
		if r.isDue(t2) {
			t.Fatal("expected no second fire within 60s of the first")
		}

		t3 := t1.Add(61 * time.Second)
		if !r.isDue(t3) {
			t.Fatal("expected a fire once 61s have elapsed")
		}
	})

	t.Run("month is part of the match conjunction", func(t *testing.T) {
		r := &CronRunner{Entry: config.CrontabEntry{
			Minute: anySpec(), Hour: anySpec(), DayOfMonth: anySpec(),
			Month:     config.FieldSpec{Kind: config.Exact, Exact: 12}, // December
			DayOfWeek: anySpec(),
		}}

		july := time.Date(2026, 7, 30, 10, 15, 0, 0, time.UTC)
		if r.isDue(july) {
			t.Fatal("expected no match in July when month is pinned to December")
		}

		december := time.Date(2026, 12, 30, 10, 15, 0, 0, time.UTC)
		if !r.isDue(december) {
			t.Fatal("expected match in December")
		}
	})

	t.Run("weekday mapping is Sunday=0", func(t *testing.T) {
		r := &CronRunner{Entry: config.CrontabEntry{
			Minute: anySpec(), Hour: anySpec(), DayOfMonth: anySpec(), Month: anySpec(),
			DayOfWeek: config.FieldSpec{Kind: config.Exact, Exact: 0},
		}}

		// 2026-08-02 is a Sunday.
		sunday := time.Date(2026, 8, 2, 9, 0, 0, 0, time.UTC)
		if !r.isDue(sunday) {
			t.Fatal("expected match on Sunday when day-of-week is Exact(0)")
		}

		monday := time.Date(2026, 8, 3, 9, 0, 0, 0, time.UTC)
		if r.isDue(monday) {
			t.Fatal("expected no match on Monday when day-of-week is Exact(0)")
		}
	})
}

func TestCronRunnerRunRejectsClashingConfig(t *testing.T) {
	exact := config.FieldSpec{Kind: config.Exact, Exact: 1}
	entry := config.CrontabEntry{
		Minute: anySpec(), Hour: anySpec(),
		DayOfMonth: exact, Month: anySpec(), DayOfWeek: exact,
		Command: "/bin/true",
	}

	if err := entry.Validate(); err == nil {
		t.Fatal("expected Validate to reject clashing dom/dow")
	}

	// run must reject the entry at task start and return without waiting
	// for servicesCancel.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	r := &CronRunner{Entry: entry}
	done := make(chan struct{})
	go func() {
		r.run(ctx, testLogger())
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(1 * time.Second):
		t.Fatal("expected run to return immediately for a clashing entry")
	}
}

func TestSplitCommand(t *testing.T) {
	t.Run("splits on ASCII space and drops empty segments", func(t *testing.T) {
		got := splitCommand("/usr/bin/foo  --bar   baz")
		want := []string{"/usr/bin/foo", "--bar", "baz"}
		if len(got) != len(want) {
			t.Fatalf("expected %v, got %v", want, got)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("expected %v, got %v", want, got)
			}
		}
	})
}
