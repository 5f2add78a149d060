package scheduler

import (
	"cmp"
	"errors"
	"fmt"
	"slices"

	"github.com/aatumaykin/gametime/internal/clock"
	"github.com/google/uuid"
)

var (
	ErrInvalidHour   = errors.New("hour must be between 0 and 23")
	ErrInvalidMinute = errors.New("minute must be between 0 and 59")
	ErrNoDays        = errors.New("day set is empty")
	ErrNilCallback   = errors.New("callback is nil")
)

// Handle identifies one registration. The zero Handle matches nothing.
type Handle struct {
	id uuid.UUID
}

func newHandle() Handle {
	return Handle{id: uuid.New()}
}

// IsZero reports whether h was never returned by Schedule.
func (h Handle) IsZero() bool {
	return h.id == uuid.Nil
}

func (h Handle) String() string {
	return h.id.String()
}

// Firing describes one invocation handed to a Callback.
type Firing struct {
	Handle Handle
	Name   string
	// At is the scheduled instance: the day the window belongs to and the
	// action's hour and minute.
	At clock.Reading
	// Missed is true when the instance was replayed by backfill or resume
	// instead of being observed on time.
	Missed bool
	// Late is how many minutes after At the callback actually ran.
	Late int
}

// Callback is invoked on the tick goroutine. It must not call Tick.
// Returned errors and panics are logged and never stop other callbacks.
type Callback func(Firing) error

// Func adapts a plain function to a Callback.
func Func(fn func()) Callback {
	if fn == nil {
		return nil
	}
	return func(Firing) error {
		fn()
		return nil
	}
}

// ActionSpec is a registration request.
type ActionSpec struct {
	Name     string
	Hour     int
	Minute   int
	Days     clock.Days
	Repeat   bool
	Callback Callback
}

// Validate checks ranges and required fields.
func (a ActionSpec) Validate() error {
	if a.Hour < 0 || a.Hour > 23 {
		return fmt.Errorf("%w: got %d", ErrInvalidHour, a.Hour)
	}
	if a.Minute < 0 || a.Minute > 59 {
		return fmt.Errorf("%w: got %d", ErrInvalidMinute, a.Minute)
	}
	if a.Days.Empty() {
		return ErrNoDays
	}
	if a.Callback == nil {
		return ErrNilCallback
	}
	return nil
}

// ActionInfo is a read-only view of a registration.
type ActionInfo struct {
	Handle Handle
	Name   string
	Hour   int
	Minute int
	Days   clock.Days
	Repeat bool
}

type action struct {
	handle     Handle
	name       string
	hour       int
	minute     int
	days       clock.Days
	repeat     bool
	fn         Callback
	registered bool
}

func (a *action) info() ActionInfo {
	return ActionInfo{
		Handle: a.handle,
		Name:   a.name,
		Hour:   a.hour,
		Minute: a.minute,
		Days:   a.days,
		Repeat: a.repeat,
	}
}

// label is what logs show for an action.
func (a *action) label() string {
	if a.name != "" {
		return a.name
	}
	return a.handle.String()
}

// sortKey orders actions by earliest day (Monday first), then hour, then minute.
func (a *action) sortKey() int {
	first, _ := a.days.First()
	return clock.MinutesSinceWeekStart(first, a.hour, a.minute)
}

// sortActions keeps registration order among equal keys.
func sortActions(list []*action) {
	slices.SortStableFunc(list, func(x, y *action) int {
		return cmp.Compare(x.sortKey(), y.sortKey())
	})
}
