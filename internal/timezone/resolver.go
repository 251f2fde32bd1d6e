// Package timezone resolves IANA zone identifiers to offset rules and does
// the wall-clock arithmetic the display needs: converting API timestamps
// into local HH:MM strings, breaking instants into civil fields, and
// formatting durations between event timestamps.
package timezone

import (
	"errors"
	"fmt"
	"time"
)

// ErrZoneNotFound is returned when a zone identifier is not in the table.
var ErrZoneNotFound = errors.New("timezone: zone not found")

// civilLayout is the naive timestamp shape the APIs send, e.g.
// "2026-01-20T19:14:59.289Z". Fractional seconds and any Z/offset suffix
// are ignored.
const civilLayout = "2006-01-02T15:04:05"

// Civil is a timezone-naive calendar breakdown of an instant.
type Civil struct {
	Year    int
	Month   time.Month
	Day     int
	Hour    int
	Minute  int
	Second  int
	Weekday int // Sunday = 0
}

// OffsetRuleFor returns the offset rule for a zone identifier.
func OffsetRuleFor(zoneID string) (Rule, error) {
	r, ok := zoneTable[zoneID]
	if !ok {
		return Rule{}, fmt.Errorf("%w: %q", ErrZoneNotFound, zoneID)
	}
	return r, nil
}

// ConvertCivilToZone parses a naive civil timestamp, reinterprets it as
// UTC, applies the zone's offset rule and returns the local wall clock as
// zero-padded 24-hour "HH:MM".
func ConvertCivilToZone(zoneID, civilTimestamp string) (string, error) {
	rule, err := OffsetRuleFor(zoneID)
	if err != nil {
		return "", err
	}
	instant, err := parseCivil(civilTimestamp)
	if err != nil {
		return "", err
	}
	local := instant.Add(time.Duration(rule.OffsetAt(instant)) * time.Minute)
	return fmt.Sprintf("%02d:%02d", local.Hour(), local.Minute()), nil
}

// ConvertInstantToLocal applies the zone's rule to an absolute instant and
// returns the local civil breakdown.
func ConvertInstantToLocal(zoneID string, instant time.Time) (Civil, error) {
	rule, err := OffsetRuleFor(zoneID)
	if err != nil {
		return Civil{}, err
	}
	utc := instant.UTC()
	local := utc.Add(time.Duration(rule.OffsetAt(utc)) * time.Minute)
	return Civil{
		Year:    local.Year(),
		Month:   local.Month(),
		Day:     local.Day(),
		Hour:    local.Hour(),
		Minute:  local.Minute(),
		Second:  local.Second(),
		Weekday: Weekday(local.Year(), int(local.Month()), local.Day()),
	}, nil
}

// DurationBetween returns the whole-hours-and-minutes span between two
// naive civil timestamps, formatted as "<n> min", "<n> hour(s)" or
// "<n> h <m> min" depending on which components are non-zero.
func DurationBetween(from, to string) (string, error) {
	start, err := parseCivil(from)
	if err != nil {
		return "", err
	}
	end, err := parseCivil(to)
	if err != nil {
		return "", err
	}
	total := int(end.Sub(start).Minutes())
	if total < 0 {
		return "", fmt.Errorf("timezone: end %q is before start %q", to, from)
	}
	hours, mins := total/60, total%60
	switch {
	case hours == 0:
		return fmt.Sprintf("%d min", mins), nil
	case mins == 0 && hours == 1:
		return "1 hour", nil
	case mins == 0:
		return fmt.Sprintf("%d hours", hours), nil
	default:
		return fmt.Sprintf("%d h %d min", hours, mins), nil
	}
}

// OffsetAt picks the zone's offset, in minutes east of UTC, for the given
// instant. DST transitions are evaluated against standard local time, which
// is exact everywhere outside the transition hour itself.
func (r Rule) OffsetAt(instant time.Time) int {
	if r.DstStart.Month == 0 {
		return r.StdOffset
	}
	local := instant.Add(time.Duration(r.StdOffset) * time.Minute)
	if r.dstActive(local) {
		return r.DstOffset
	}
	return r.StdOffset
}

func (r Rule) dstActive(local time.Time) bool {
	start := r.DstStart.instantIn(local.Year())
	end := r.DstEnd.instantIn(local.Year())
	if start.Before(end) {
		// Northern hemisphere: one DST window inside the year.
		return !local.Before(start) && local.Before(end)
	}
	// Southern hemisphere: DST spans the new year.
	return !local.Before(start) || local.Before(end)
}

// instantIn resolves the transition to its civil date in the given year.
func (t Transition) instantIn(year int) time.Time {
	day := nthWeekdayOfMonth(year, t.Month, t.Week, t.Weekday)
	return time.Date(year, t.Month, day, t.Hour, 0, 0, 0, time.UTC)
}

// nthWeekdayOfMonth returns the day of month of the week-th occurrence
// (5 = last) of the given weekday, Sunday = 0.
func nthWeekdayOfMonth(year int, month time.Month, week, weekday int) int {
	first := Weekday(year, int(month), 1)
	day := 1 + (weekday-first+7)%7
	if week == 5 {
		last := daysInMonth(year, month)
		for day+7 <= last {
			day += 7
		}
		return day
	}
	return day + 7*(week-1)
}

func daysInMonth(year int, month time.Month) int {
	switch month {
	case time.April, time.June, time.September, time.November:
		return 30
	case time.February:
		if isLeap(year) {
			return 29
		}
		return 28
	default:
		return 31
	}
}

func isLeap(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// OffsetSuffix renders an offset in minutes east of UTC as an RFC 3339
// numeric suffix, e.g. "+09:00" or "-05:00". Zero renders as "Z".
func OffsetSuffix(minutes int) string {
	if minutes == 0 {
		return "Z"
	}
	sign := "+"
	if minutes < 0 {
		sign = "-"
		minutes = -minutes
	}
	return fmt.Sprintf("%s%02d:%02d", sign, minutes/60, minutes%60)
}

// Weekday computes the day of week for a proleptic Gregorian date,
// zero-indexed on Sunday. Deliberately raw arithmetic rather than a
// time.Time round trip so rendered day names cannot drift with platform
// calendar quirks.
func Weekday(year, month, day int) int {
	offsets := [12]int{0, 3, 2, 5, 0, 3, 5, 1, 4, 6, 2, 4}
	if month < 3 {
		year--
	}
	return (year + year/4 - year/100 + year/400 + offsets[month-1] + day) % 7
}

var weekdayShort = [7]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

var weekdayLong = [7]string{
	"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday",
}

var monthShort = [12]string{
	"Jan", "Feb", "Mar", "Apr", "May", "Jun",
	"Jul", "Aug", "Sep", "Oct", "Nov", "Dec",
}

// WeekdayShortName returns the three-letter day name for a Sunday=0 index.
func WeekdayShortName(weekday int) string {
	return weekdayShort[((weekday%7)+7)%7]
}

// HeaderDate formats a civil date the way the display header shows it,
// e.g. "Monday, 1 Jan 2024".
func (c Civil) HeaderDate() string {
	return fmt.Sprintf("%s, %d %s %d",
		weekdayLong[((c.Weekday%7)+7)%7], c.Day, monthShort[c.Month-1], c.Year)
}

// Clock formats the civil time as zero-padded 24-hour "HH:MM".
func (c Civil) Clock() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

func parseCivil(s string) (time.Time, error) {
	if len(s) < len(civilLayout) {
		return time.Time{}, fmt.Errorf("timezone: invalid civil timestamp %q", s)
	}
	t, err := time.Parse(civilLayout, s[:len(civilLayout)])
	if err != nil {
		return time.Time{}, fmt.Errorf("timezone: invalid civil timestamp %q: %w", s, err)
	}
	return t, nil
}
