package clock

import "sync"

// Simulated is a Source driven explicitly by its owner. It stands in for a
// game's time-of-day state machine: the host advances it every frame and
// jumps it forward for sleep or fast-forward.
type Simulated struct {
	mu       sync.RWMutex
	minute   int // absolute week-minute
	ready    bool
	watchers []func(WeekDay)
}

// NewSimulated returns a ready clock set to start.
func NewSimulated(start Reading) *Simulated {
	return &Simulated{minute: start.WeekMinute(), ready: true}
}

// Ready implements Source.
func (c *Simulated) Ready() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.ready
}

// Hour implements Source. It is 0 while the clock is not ready.
func (c *Simulated) Hour() int {
	r, _ := c.Reading()
	return r.Hour
}

// Minute implements Source. It is 0 while the clock is not ready.
func (c *Simulated) Minute() int {
	r, _ := c.Reading()
	return r.Minute
}

// Day implements Source. It is 0 while the clock is not ready.
func (c *Simulated) Day() WeekDay {
	r, _ := c.Reading()
	return r.Day
}

// Now returns the current reading regardless of readiness.
func (c *Simulated) Now() Reading {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return FromWeekMinute(c.minute)
}

// SetReady toggles readiness, as a scene load would.
func (c *Simulated) SetReady(ready bool) {
	c.mu.Lock()
	c.ready = ready
	c.mu.Unlock()
}

// OnDayChanged implements DayNotifier.
func (c *Simulated) OnDayChanged(fn func(WeekDay)) {
	c.mu.Lock()
	c.watchers = append(c.watchers, fn)
	c.mu.Unlock()
}

// Advance moves the clock forward by n minutes. Watchers hear about every
// midnight crossed, in order. Non-positive n is ignored.
func (c *Simulated) Advance(n int) {
	if n <= 0 {
		return
	}
	c.mu.Lock()
	from := c.minute
	c.minute = WrapWeek(from + n)
	watchers := append([]func(WeekDay){}, c.watchers...)
	c.mu.Unlock()

	crossings := (from%MinutesPerDay + n) / MinutesPerDay
	day := FromWeekMinute(from).Day
	for i := 0; i < crossings; i++ {
		day = day.Next()
		for _, fn := range watchers {
			fn(day)
		}
	}
}

// Set moves the clock to r. A change of day notifies watchers once.
func (c *Simulated) Set(r Reading) {
	c.mu.Lock()
	prev := FromWeekMinute(c.minute).Day
	c.minute = r.WeekMinute()
	watchers := append([]func(WeekDay){}, c.watchers...)
	c.mu.Unlock()

	if r.Day != prev {
		for _, fn := range watchers {
			fn(r.Day)
		}
	}
}

// Reading returns the current reading in one consistent read; ok is false
// while the clock is not ready.
func (c *Simulated) Reading() (Reading, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.ready {
		return Reading{}, false
	}
	return FromWeekMinute(c.minute), true
}
