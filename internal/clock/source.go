package clock

// Source is the host's simulation clock. Reads made while Ready reports
// false may return zero values and must not be trusted.
type Source interface {
	Ready() bool
	Hour() int
	Minute() int
	Day() WeekDay
}

// DayNotifier is implemented by sources that can announce day changes.
// The scheduler never depends on it; hosts use it for their own effects.
type DayNotifier interface {
	OnDayChanged(fn func(WeekDay))
}

// atomicReader is implemented by sources that can return all three fields
// from a single observation.
type atomicReader interface {
	Reading() (Reading, bool)
}

// Read takes one Reading from src. ok is false while the source is not
// ready or returns an out-of-range value.
func Read(src Source) (r Reading, ok bool) {
	if src == nil {
		return Reading{}, false
	}
	if a, isAtomic := src.(atomicReader); isAtomic {
		r, ok = a.Reading()
		return r, ok && r.Valid()
	}
	if !src.Ready() {
		return Reading{}, false
	}
	r = Reading{Hour: src.Hour(), Minute: src.Minute(), Day: src.Day()}
	if !r.Valid() {
		return Reading{}, false
	}
	return r, true
}
