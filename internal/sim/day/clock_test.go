package day

import "testing"

func TestClock_WrapDoesNotAdvanceDay(t *testing.T) {
	k := NewClock(10, 0.5)
	if k.Day != 1 || !approx(k.TimeOfDay, 0.5) {
		t.Fatalf("start: day=%d tod=%v", k.Day, k.TimeOfDay)
	}

	// Step well past a full cycle; the day counter must not move.
	for i := 0; i < 25; i++ {
		k.Advance()
	}
	if k.Day != 1 {
		t.Fatalf("wrap advanced day: %d", k.Day)
	}
	if k.TimeOfDay < 0 || k.TimeOfDay >= 1 {
		t.Fatalf("time_of_day out of range: %v", k.TimeOfDay)
	}
}

func TestClock_SleepAdvancesDayAndResetsMorning(t *testing.T) {
	k := NewClock(10, 0.28)
	for i := 0; i < 7; i++ {
		k.Advance()
	}
	k.Sleep()
	if k.Day != 2 {
		t.Fatalf("day=%d, want 2", k.Day)
	}
	if !approx(k.TimeOfDay, 0.28) {
		t.Fatalf("tod=%v, want 0.28", k.TimeOfDay)
	}
	k.Sleep()
	if k.Day != 3 {
		t.Fatalf("day=%d, want 3", k.Day)
	}
}
