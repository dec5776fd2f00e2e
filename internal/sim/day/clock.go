package day

// Clock advances a time-of-day value and a day counter. Wrapping past 1.0
// never advances the day on its own; only Sleep does, and the phase director
// gates when Sleep may be called.
type Clock struct {
	Day       int
	TimeOfDay float64 // 0..1

	dayTicks    int
	morningTime float64
}

func NewClock(dayTicks int, morningTime float64) Clock {
	return Clock{
		Day:         1,
		TimeOfDay:   morningTime,
		dayTicks:    dayTicks,
		morningTime: morningTime,
	}
}

// Advance moves time-of-day forward by one tick, wrapping within the same day.
func (k *Clock) Advance() {
	k.TimeOfDay += 1.0 / float64(k.dayTicks)
	for k.TimeOfDay >= 1.0 {
		k.TimeOfDay -= 1.0
	}
}

// Sleep rolls over to the next day's morning.
func (k *Clock) Sleep() {
	k.Day++
	k.TimeOfDay = k.morningTime
}
