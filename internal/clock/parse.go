package clock

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/wasilibs/go-re2"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

var (
	ErrInvalidTime = errors.New("invalid time")
	ErrUnknownDay  = errors.New("unknown day")
)

var timePattern = re2.MustCompile(`^\s*(\d{1,2}):(\d{2})\s*$`)

// dayAliases maps folded spellings to day sets.
var dayAliases = map[string]Days{
	"monday": Days(Monday), "mon": Days(Monday),
	"tuesday": Days(Tuesday), "tue": Days(Tuesday), "tues": Days(Tuesday),
	"wednesday": Days(Wednesday), "wed": Days(Wednesday),
	"thursday": Days(Thursday), "thu": Days(Thursday), "thurs": Days(Thursday),
	"friday": Days(Friday), "fri": Days(Friday),
	"saturday": Days(Saturday), "sat": Days(Saturday),
	"sunday": Days(Sunday), "sun": Days(Sunday),
	"week": Week, "weekdays": Week, "workdays": Week,
	"weekend": Weekend, "weekends": Weekend,
	"all": All, "daily": All, "everyday": All,
}

// ParseTime parses "H:MM" or "HH:MM" into an hour and a minute.
func ParseTime(s string) (hour, minute int, err error) {
	m := timePattern.FindStringSubmatch(s)
	if m == nil {
		return 0, 0, fmt.Errorf("%w: %q (expected HH:MM)", ErrInvalidTime, s)
	}
	hour, _ = strconv.Atoi(m[1])
	minute, _ = strconv.Atoi(m[2])
	if !validHour(hour) || !validMinute(minute) {
		return 0, 0, fmt.Errorf("%w: %q out of range", ErrInvalidTime, s)
	}
	return hour, minute, nil
}

// ParseDay parses a single day name such as "Monday" or "tue".
func ParseDay(s string) (WeekDay, error) {
	set, err := ParseDays(s)
	if err != nil {
		return 0, err
	}
	if set.Len() != 1 {
		return 0, fmt.Errorf("%w: %q names more than one day", ErrUnknownDay, s)
	}
	d, _ := set.First()
	return d, nil
}

// ParseDays parses a day set. Names may be joined with '|', ',' or '+':
// "Monday|Friday", "weekend", "mon,wed,fri", "all".
func ParseDays(s string) (Days, error) {
	var set Days
	parts := strings.FieldsFunc(s, func(r rune) bool {
		return r == '|' || r == ',' || r == '+'
	})
	for _, p := range parts {
		key := foldName(p)
		if key == "" {
			continue
		}
		d, ok := dayAliases[key]
		if !ok {
			if hint := suggestDay(key); hint != "" {
				return 0, fmt.Errorf("%w: %q (did you mean %q?)", ErrUnknownDay, strings.TrimSpace(p), hint)
			}
			return 0, fmt.Errorf("%w: %q", ErrUnknownDay, strings.TrimSpace(p))
		}
		set |= d
	}
	if set.Empty() {
		return 0, fmt.Errorf("%w: empty day set %q", ErrUnknownDay, s)
	}
	return set, nil
}

func foldName(s string) string {
	// Casers are stateful, so each call gets its own.
	return cases.Fold().String(norm.NFKC.String(strings.TrimSpace(s)))
}

// suggestDay returns the closest full day name within two edits, if any.
func suggestDay(key string) string {
	best, bestDist := "", 3
	for _, name := range dayNames {
		dist := levenshtein.ComputeDistance(key, foldName(name))
		if dist < bestDist {
			best, bestDist = name, dist
		}
	}
	return best
}
