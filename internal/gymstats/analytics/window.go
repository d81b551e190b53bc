package analytics

import (
	"time"
)

const (
	dateLayout          = "2006-01-02"
	localDateTimeLayout = "2006-01-02T15:04:05.999999999"
)

// Window is an inclusive time range [Start, End].
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// WeekWindow returns the Sunday-start calendar week that contains now minus
// offset weeks (0 = current week, 1 = previous, ...), in now's location.
// End is Saturday 23:59:59.999.
func WeekWindow(now time.Time, offset int) Window {
	ref := now.AddDate(0, 0, -7*offset)
	start := startOfDay(ref).AddDate(0, 0, -int(ref.Weekday()))
	return Window{
		Start: start,
		End:   endOfDay(start.AddDate(0, 0, 6)),
	}
}

// MondayWeekStart returns midnight of the Monday of the week containing now.
// Routine planning uses Monday-start weeks, unlike the Sunday-start
// weeks used by adherence and the weekly challenge.
func MondayWeekStart(now time.Time) time.Time {
	daysSinceMonday := (int(now.Weekday()) + 6) % 7
	return startOfDay(now).AddDate(0, 0, -daysSinceMonday)
}

// DatePart returns the calendar date (YYYY-MM-DD) of an encoded timestamp
// without any time zone conversion. The whole timestamp must parse, malformed
// ones give an empty string.
func DatePart(ts string) string {
	if _, ok := ParseTimestamp(ts, time.UTC); !ok {
		return ""
	}
	return ts[:len(dateLayout)]
}

// ParseTimestamp parses an encoded record timestamp. Timestamps without a zone
// are read in loc, bare dates are read as UTC midnight.
func ParseTimestamp(ts string, loc *time.Location) (time.Time, bool) {
	if t, err := time.Parse(time.RFC3339Nano, ts); err == nil {
		return t, true
	}
	if t, err := time.ParseInLocation(localDateTimeLayout, ts, loc); err == nil {
		return t, true
	}
	if t, err := time.Parse(dateLayout, ts); err == nil {
		return t, true
	}
	return time.Time{}, false
}

func FormatDate(t time.Time) string {
	return t.Format(dateLayout)
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(999*time.Millisecond), t.Location())
}
