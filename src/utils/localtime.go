package utils

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/arslanhfz7-dot/taxi-reserve/src/config"
	"github.com/arslanhfz7-dot/taxi-reserve/src/types"
)

// Inputs arrive from the datetime picker without an offset and mean wall-clock
// time in the Madrid/Barcelona zone. Everything funnels into one resolution
// path: parse the five components, decide standard (+1) vs summer (+2) from the
// explicit DST boundaries, and return the UTC instant. Inputs that already
// carry a zone are taken as absolute and never reinterpreted.

var (
	zoneSuffix  = regexp.MustCompile(`(Z|[+-]\d{2}:?\d{2})$`)
	epochMillis = regexp.MustCompile(`^\d{11,}$`)
)

var localLayouts = []string{
	config.TIME_INPUT_FORMAT,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02 15:04:05",
	config.TIME_INPUT_FORMAT_EU,
	"02/01/2006 15:04",
}

var absoluteLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04:05Z0700",
	"2006-01-02T15:04Z0700",
}

// lastSunday returns the day-of-month of the last Sunday of the given month.
func lastSunday(year int, month time.Month) int {
	end := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC)
	return end.Day() - int(end.Weekday())
}

// MadridOffsetHours reports the UTC offset (1 or 2) in effect for a civil
// wall-clock moment. Summer time runs from 02:00 on the last Sunday of March
// (inclusive) until 03:00 on the last Sunday of October (exclusive). Moments
// inside the spring-forward gap do not exist on a wall clock; they sit past
// the inclusive 02:00 start boundary, so they resolve with the summer offset.
func MadridOffsetHours(year int, month time.Month, day, hour, min int) int {
	key := ((int(month)*100+day)*100+hour)*100 + min
	start := ((int(time.March)*100+lastSunday(year, time.March))*100 + 2) * 100
	end := ((int(time.October)*100+lastSunday(year, time.October))*100 + 3) * 100
	if key >= start && key < end {
		return 2
	}
	return 1
}

// ParseLocalDateTime resolves a date-time string into a UTC instant.
func ParseLocalDateTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: empty date-time", types.ErrInvalidInput)
	}
	if epochMillis.MatchString(s) {
		ms, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: bad epoch value %q", types.ErrInvalidInput, s)
		}
		return time.UnixMilli(ms).UTC(), nil
	}
	if zoneSuffix.MatchString(s) {
		for _, layout := range absoluteLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t.UTC(), nil
			}
		}
		return time.Time{}, fmt.Errorf("%w: unrecognized date-time %q", types.ErrInvalidInput, s)
	}
	for _, layout := range localLayouts {
		local, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		offset := MadridOffsetHours(local.Year(), local.Month(), local.Day(), local.Hour(), local.Minute())
		return time.Date(local.Year(), local.Month(), local.Day(), local.Hour()-offset, local.Minute(), local.Second(), 0, time.UTC), nil
	}
	return time.Time{}, fmt.Errorf("%w: unrecognized date-time %q", types.ErrInvalidInput, s)
}

// madridOffsetAt is the instant-side inverse of MadridOffsetHours: the DST
// start and end both happen at 01:00 UTC on their transition Sundays.
func madridOffsetAt(t time.Time) int {
	u := t.UTC()
	start := time.Date(u.Year(), time.March, lastSunday(u.Year(), time.March), 1, 0, 0, 0, time.UTC)
	end := time.Date(u.Year(), time.October, lastSunday(u.Year(), time.October), 1, 0, 0, 0, time.UTC)
	if !u.Before(start) && u.Before(end) {
		return 2
	}
	return 1
}

// FormatMadrid renders a UTC instant as Madrid wall-clock text for emails and
// previews.
func FormatMadrid(t time.Time) string {
	off := madridOffsetAt(t)
	return t.UTC().Add(time.Duration(off) * time.Hour).Format(config.TIME_DISPLAY_FORMAT)
}

// RelTimeFromNow gives a short relative label like "in 2h 15m" or "5m ago".
func RelTimeFromNow(t, now time.Time) string {
	diff := t.Sub(now)
	abs := diff
	if abs < 0 {
		abs = -abs
	}
	mins := int(abs.Round(time.Minute) / time.Minute)
	hrs := mins / 60
	rem := mins % 60
	var label string
	if hrs >= 1 {
		label = fmt.Sprintf("%dh", hrs)
		if rem > 0 {
			label = fmt.Sprintf("%dh %dm", hrs, rem)
		}
	} else {
		label = fmt.Sprintf("%dm", mins)
	}
	if diff >= 0 {
		return "in " + label
	}
	return label + " ago"
}
