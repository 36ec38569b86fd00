// Package anchor defines the coarse time-bucket key the resonance cache and
// analytics share. The string shape "uid|period|tz|dateLabel" is a persisted
// and logged contract: field order and delimiter must not change.
package anchor

import (
	"fmt"
	"strings"
	"time"
)

// Period is the granularity of an anchor bucket.
type Period string

const (
	PeriodDay   Period = "day"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
	PeriodYear  Period = "year"
)

// Delimiter separates the four key fields.
const Delimiter = "|"

// Label layouts per period. Week labels are ISO 8601 (yyyy-Www).
const (
	dayLayout   = "2006-01-02"
	monthLayout = "2006-01"
	yearLayout  = "2006"
)

// Key identifies one (user, period, timezone, date) bucket.
type Key struct {
	UID    string
	Period Period
	TZ     string
	Label  string
}

// New builds the key for the bucket containing t in the given location.
// The UID must not contain the delimiter character.
func New(uid string, period Period, loc *time.Location, t time.Time) Key {
	if loc == nil {
		loc = time.UTC
	}
	local := t.In(loc)

	var label string
	switch period {
	case PeriodWeek:
		year, week := local.ISOWeek()
		label = fmt.Sprintf("%04d-W%02d", year, week)
	case PeriodMonth:
		label = local.Format(monthLayout)
	case PeriodYear:
		label = local.Format(yearLayout)
	default:
		label = local.Format(dayLayout)
	}

	return Key{UID: uid, Period: period, TZ: loc.String(), Label: label}
}

// String renders the wire form "uid|period|tz|dateLabel".
func (k Key) String() string {
	return strings.Join([]string{k.UID, string(k.Period), k.TZ, k.Label}, Delimiter)
}

// Parse reconstructs a Key from its wire form. A malformed key is an
// integration error and fails loudly: every field is validated, including
// the label round-trip against the period and timezone.
func Parse(s string) (Key, error) {
	parts := strings.Split(s, Delimiter)
	if len(parts) != 4 {
		return Key{}, fmt.Errorf("anchor key %q: want 4 fields, got %d", s, len(parts))
	}

	k := Key{UID: parts[0], Period: Period(parts[1]), TZ: parts[2], Label: parts[3]}
	if k.UID == "" {
		return Key{}, fmt.Errorf("anchor key %q: empty uid", s)
	}
	switch k.Period {
	case PeriodDay, PeriodWeek, PeriodMonth, PeriodYear:
	default:
		return Key{}, fmt.Errorf("anchor key %q: unknown period %q", s, parts[1])
	}
	if _, err := time.LoadLocation(k.TZ); err != nil {
		return Key{}, fmt.Errorf("anchor key %q: bad timezone: %w", s, err)
	}
	if _, err := k.Start(); err != nil {
		return Key{}, fmt.Errorf("anchor key %q: %w", s, err)
	}

	return k, nil
}

// Start resolves the label back to the first instant of the bucket in the
// key's timezone. ISO week labels resolve to that week's Monday.
func (k Key) Start() (time.Time, error) {
	loc, err := time.LoadLocation(k.TZ)
	if err != nil {
		return time.Time{}, fmt.Errorf("bad timezone %q: %w", k.TZ, err)
	}

	switch k.Period {
	case PeriodDay:
		return time.ParseInLocation(dayLayout, k.Label, loc)
	case PeriodMonth:
		return time.ParseInLocation(monthLayout, k.Label, loc)
	case PeriodYear:
		return time.ParseInLocation(yearLayout, k.Label, loc)
	case PeriodWeek:
		return parseISOWeek(k.Label, loc)
	default:
		return time.Time{}, fmt.Errorf("unknown period %q", k.Period)
	}
}

// End resolves the first instant of the following bucket, the exclusive
// upper bound of this one.
func (k Key) End() (time.Time, error) {
	start, err := k.Start()
	if err != nil {
		return time.Time{}, err
	}
	switch k.Period {
	case PeriodWeek:
		return start.AddDate(0, 0, 7), nil
	case PeriodMonth:
		return start.AddDate(0, 1, 0), nil
	case PeriodYear:
		return start.AddDate(1, 0, 0), nil
	default:
		return start.AddDate(0, 0, 1), nil
	}
}

// parseISOWeek resolves "yyyy-Www" to the Monday of that ISO week.
func parseISOWeek(label string, loc *time.Location) (time.Time, error) {
	var year, week int
	if _, err := fmt.Sscanf(label, "%4d-W%2d", &year, &week); err != nil {
		return time.Time{}, fmt.Errorf("bad week label %q: %w", label, err)
	}
	// Sscanf tolerates trailing input; only the exact canonical form is a
	// valid label.
	if fmt.Sprintf("%04d-W%02d", year, week) != label {
		return time.Time{}, fmt.Errorf("bad week label %q: not canonical yyyy-Www", label)
	}
	if week < 1 || week > 53 {
		return time.Time{}, fmt.Errorf("bad week label %q: week %d out of range", label, week)
	}

	// January 4 always falls in ISO week 1 of its year.
	jan4 := time.Date(year, time.January, 4, 0, 0, 0, 0, loc)
	weekday := int(jan4.Weekday())
	if weekday == 0 {
		weekday = 7 // Sunday
	}
	week1Monday := jan4.AddDate(0, 0, 1-weekday)

	monday := week1Monday.AddDate(0, 0, (week-1)*7)
	if y, w := monday.ISOWeek(); y != year || w != week {
		return time.Time{}, fmt.Errorf("bad week label %q: no such ISO week", label)
	}
	return monday, nil
}
