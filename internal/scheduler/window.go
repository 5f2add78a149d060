package scheduler

import (
	"cmp"
	"slices"

	"github.com/aatumaykin/gametime/internal/clock"
)

// instance is one day-specific occurrence of an action inside a window.
type instance struct {
	act *action
	at  clock.Reading
	// offset is the distance in minutes from the window start; instances
	// fire in ascending offset order.
	offset int
}

// missed reports whether an action scheduled at week-minute actionAbs falls
// in the window (sinceAbs, nowAbs]. Both ends are pushed one week forward
// when they lie before sinceAbs, so windows crossing Sunday midnight work.
func missed(sinceAbs, nowAbs, actionAbs int) bool {
	if nowAbs < sinceAbs {
		nowAbs += clock.MinutesPerWeek
	}
	if actionAbs < sinceAbs {
		actionAbs += clock.MinutesPerWeek
	}
	return sinceAbs < actionAbs && actionAbs <= nowAbs
}

// instancesBetween lists every occurrence of every action in (since, now],
// once per matching day of the action's mask, in firing order. A window
// shorter than a week holds at most one occurrence per day.
func instancesBetween(actions []*action, since, now clock.Reading) []instance {
	sinceAbs := since.WeekMinute()
	nowAbs := now.WeekMinute()
	if sinceAbs == nowAbs {
		return nil
	}

	var out []instance
	for _, a := range actions {
		a.days.Each(func(d clock.WeekDay) {
			abs := clock.MinutesSinceWeekStart(d, a.hour, a.minute)
			if !missed(sinceAbs, nowAbs, abs) {
				return
			}
			out = append(out, instance{
				act:    a,
				at:     clock.At(d, a.hour, a.minute),
				offset: clock.ForwardDistance(sinceAbs, abs),
			})
		})
	}

	// Stable: equal offsets keep list order.
	slices.SortStableFunc(out, func(x, y instance) int {
		return cmp.Compare(x.offset, y.offset)
	})
	return out
}

// isTimeSkip reports whether moving from prev to now covers more than one
// natural step of the host clock.
func isTimeSkip(prev, now clock.Reading, naturalStep int) bool {
	return now.Since(prev) > naturalStep
}
