package rate

import (
	"testing"
	"time"

	"github.com/WatchBeam/clock"
)

func TestIntervalFromBudget(t *testing.T) {
	cases := []struct {
		perMinute int
		want      time.Duration
	}{
		{60, time.Second},
		{5, 12 * time.Second},
		{120, 500 * time.Millisecond},
		{0, 0},
		{-1, 0},
	}
	for _, tc := range cases {
		if got := NewPacer(tc.perMinute).Interval(); got != tc.want {
			t.Fatalf("interval for %d/min = %v, want %v", tc.perMinute, got, tc.want)
		}
	}
}

func TestWaitNoBudgetReturnsImmediately(t *testing.T) {
	mock := clock.NewMockClock()
	p := NewPacerWithClock(0, mock)

	done := make(chan struct{})
	go func() {
		p.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Wait with zero budget should not block")
	}
}

func TestWaitBlocksForInterval(t *testing.T) {
	mock := clock.NewMockClock()
	p := NewPacerWithClock(60, mock)

	done := make(chan struct{})
	go func() {
		p.Wait()
		close(done)
	}()

	// Give the waiter a moment to register its timer, then advance
	// the mock clock past one interval.
	time.Sleep(10 * time.Millisecond)
	select {
	case <-done:
		t.Fatal("Wait returned before the clock advanced")
	default:
	}

	mock.AddTime(time.Second)
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Wait did not return after the interval elapsed")
	}
}
