package clock_test

import (
	"testing"
	"time"

	"github.com/everyio/tasktracker/internal/infra/clock"
)

func TestFakeClock(t *testing.T) {
	t.Parallel()

	start := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	c := clock.Fake(start)

	if got := c.Now(); !got.Equal(start) {
		t.Fatalf("Now() = %v, want %v", got, start)
	}

	c.Advance(90 * time.Second)

	if got, want := c.Now(), start.Add(90*time.Second); !got.Equal(want) {
		t.Errorf("Now() after Advance = %v, want %v", got, want)
	}

	later := start.Add(24 * time.Hour)
	c.Set(later)

	if got := c.Now(); !got.Equal(later) {
		t.Errorf("Now() after Set = %v, want %v", got, later)
	}
}

func TestRealClock(t *testing.T) {
	t.Parallel()

	now := clock.Real().Now()

	if now.Location() != time.UTC {
		t.Errorf("Now() location = %v, want UTC", now.Location())
	}
	if now.Nanosecond()%int(time.Millisecond) != 0 {
		t.Errorf("Now() = %v, want millisecond precision", now)
	}
}
