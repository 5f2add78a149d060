// Package clock models the in-game weekly clock consumed by the scheduler:
// weekday bitsets, immutable readings, week-minute arithmetic and the
// Source interface a host implements to expose its simulation clock.
package clock

import (
	"math/bits"
	"strings"
)

// WeekDay is a single day of the in-game week. Every day is its own bit so
// that several days combine into a Days set with bitwise OR.
type WeekDay uint8

const (
	Monday WeekDay = 1 << iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

// DaysPerWeek is the number of days in the in-game week.
const DaysPerWeek = 7

var dayNames = [DaysPerWeek]string{
	"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday",
}

// Valid reports whether d is exactly one of the seven days.
func (d WeekDay) Valid() bool {
	return d != 0 && d <= Sunday && bits.OnesCount8(uint8(d)) == 1
}

// Index maps Monday to 0 through Sunday to 6. Invalid days return -1.
func (d WeekDay) Index() int {
	if !d.Valid() {
		return -1
	}
	return bits.TrailingZeros8(uint8(d))
}

// IsWeekend reports whether d is Saturday or Sunday.
func (d WeekDay) IsWeekend() bool {
	return d == Saturday || d == Sunday
}

// Next returns the following day, wrapping Sunday to Monday.
func (d WeekDay) Next() WeekDay {
	if d == Sunday {
		return Monday
	}
	return d << 1
}

func (d WeekDay) String() string {
	if i := d.Index(); i >= 0 {
		return dayNames[i]
	}
	return "Invalid"
}

// DayFromIndex is the inverse of WeekDay.Index. ok is false outside 0..6.
func DayFromIndex(i int) (d WeekDay, ok bool) {
	if i < 0 || i >= DaysPerWeek {
		return 0, false
	}
	return WeekDay(1 << i), true
}

// Days is a set of weekdays.
type Days uint8

const (
	// Week is Monday through Friday.
	Week = Days(Monday | Tuesday | Wednesday | Thursday | Friday)
	// Weekend is Saturday and Sunday.
	Weekend = Days(Saturday | Sunday)
	// All is every day of the week.
	All = Week | Weekend
)

// DaysOf builds a set from individual days.
func DaysOf(days ...WeekDay) Days {
	var s Days
	for _, d := range days {
		s |= Days(d)
	}
	return s & All
}

// Has reports whether d belongs to the set.
func (s Days) Has(d WeekDay) bool {
	return d.Valid() && s&Days(d) != 0
}

// Empty reports whether the set holds no valid day.
func (s Days) Empty() bool {
	return s&All == 0
}

// Len returns the number of days in the set.
func (s Days) Len() int {
	return bits.OnesCount8(uint8(s & All))
}

// First returns the earliest day of the set in Monday..Sunday order.
// ok is false for an empty set.
func (s Days) First() (WeekDay, bool) {
	if s.Empty() {
		return 0, false
	}
	return WeekDay(1 << bits.TrailingZeros8(uint8(s&All))), true
}

// Each calls fn for every day of the set, Monday first.
func (s Days) Each(fn func(WeekDay)) {
	for i := 0; i < DaysPerWeek; i++ {
		d := WeekDay(1 << i)
		if s.Has(d) {
			fn(d)
		}
	}
}

func (s Days) String() string {
	switch s & All {
	case 0:
		return "None"
	case All:
		return "All"
	case Week:
		return "Week"
	case Weekend:
		return "Weekend"
	}
	names := make([]string, 0, s.Len())
	s.Each(func(d WeekDay) { names = append(names, d.String()) })
	return strings.Join(names, "|")
}
