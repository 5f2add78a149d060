package clock

import "fmt"

const (
	MinutesPerHour = 60
	MinutesPerDay  = 24 * MinutesPerHour
	// MinutesPerWeek is the length of the wrapping week: 10080.
	MinutesPerWeek = DaysPerWeek * MinutesPerDay
)

// Reading is one observation of the in-game clock.
type Reading struct {
	Hour   int
	Minute int
	Day    WeekDay
}

// At builds a Reading.
func At(day WeekDay, hour, minute int) Reading {
	return Reading{Hour: hour, Minute: minute, Day: day}
}

// Valid reports whether every field is in range.
func (r Reading) Valid() bool {
	return r.Day.Valid() && validHour(r.Hour) && validMinute(r.Minute)
}

// WeekMinute returns the absolute week-minute of r.
func (r Reading) WeekMinute() int {
	return MinutesSinceWeekStart(r.Day, r.Hour, r.Minute)
}

// Add returns the reading n minutes later, wrapping across the week.
// Negative n moves backwards.
func (r Reading) Add(n int) Reading {
	return FromWeekMinute(r.WeekMinute() + n)
}

// Since returns how many minutes r lies after prev, moving forward through
// the wrapping week. The result is in [0, MinutesPerWeek).
func (r Reading) Since(prev Reading) int {
	return ForwardDistance(prev.WeekMinute(), r.WeekMinute())
}

// SameTime reports whether r and o carry the same hour and minute.
func (r Reading) SameTime(o Reading) bool {
	return r.Hour == o.Hour && r.Minute == o.Minute
}

// Time renders the hour and minute as HH:MM.
func (r Reading) Time() string {
	return FormatTime(r.Hour, r.Minute)
}

func (r Reading) String() string {
	return fmt.Sprintf("%s %s", r.Day, r.Time())
}

// MinutesSinceWeekStart encodes a (day, hour, minute) triple as minutes after
// Monday 00:00. Invalid days count as Monday.
func MinutesSinceWeekStart(day WeekDay, hour, minute int) int {
	idx := day.Index()
	if idx < 0 {
		idx = 0
	}
	return idx*MinutesPerDay + hour*MinutesPerHour + minute
}

// FromWeekMinute decodes an absolute week-minute. Values outside the week
// are wrapped first.
func FromWeekMinute(m int) Reading {
	m = WrapWeek(m)
	day, _ := DayFromIndex(m / MinutesPerDay)
	m %= MinutesPerDay
	return Reading{Hour: m / MinutesPerHour, Minute: m % MinutesPerHour, Day: day}
}

// WrapWeek folds m into [0, MinutesPerWeek).
func WrapWeek(m int) int {
	m %= MinutesPerWeek
	if m < 0 {
		m += MinutesPerWeek
	}
	return m
}

// ForwardDistance is the number of minutes from week-minute from to
// week-minute to, adding one week when to lies before from.
func ForwardDistance(from, to int) int {
	d := to - from
	if d < 0 {
		d += MinutesPerWeek
	}
	return d
}

// FormatTime renders HH:MM.
func FormatTime(hour, minute int) string {
	return fmt.Sprintf("%02d:%02d", hour, minute)
}

func validHour(h int) bool   { return h >= 0 && h <= 23 }
func validMinute(m int) bool { return m >= 0 && m <= 59 }
