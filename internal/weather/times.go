// Package weather joins surface observations onto flight rows by airport
// and nearest quarter hour. Observation stations are airport codes; both
// the observation timestamp and the flight's local clock times are rounded
// to the nearest 15 minutes before matching.
package weather

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// quarter is the rounding bucket shared by observations and flight times.
const quarter = 15 * time.Minute

// RoundToQuarter rounds t to the nearest 15-minute boundary, measured from
// midnight of t's day. 23:53 rolls forward into the next day's 00:00.
func RoundToQuarter(t time.Time) time.Time {
	base := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	secs := t.Sub(base)
	rounded := ((secs + quarter/2) / quarter) * quarter
	return base.Add(rounded)
}

var (
	clockRe  = regexp.MustCompile(`(\d{1,2}):?(\d{2})`)
	digitsRe = regexp.MustCompile(`\d+`)
)

// ParseClock extracts an hour and minute from the loose clock formats the
// reporting files carry: "0730", "730", "7:30", "0730.0". 24:00 is folded
// to 00:00. ok=false for empty or out-of-range values.
func ParseClock(s string) (hour, minute int, ok bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, 0, false
	}
	if m := clockRe.FindStringSubmatch(s); m != nil {
		h, _ := strconv.Atoi(m[1])
		mnt, _ := strconv.Atoi(m[2])
		return checkClock(h, mnt)
	}
	if d := digitsRe.FindString(s); d != "" {
		for len(d) < 4 {
			d = "0" + d
		}
		h, _ := strconv.Atoi(d[:2])
		mnt, _ := strconv.Atoi(d[2:])
		return checkClock(h, mnt)
	}
	return 0, 0, false
}

func checkClock(h, m int) (int, int, bool) {
	if h == 24 && m == 0 {
		return 0, 0, true
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, 0, false
	}
	return h, m, true
}

// dateLayouts covers the formats seen across the reporting extracts.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	"2006/1/2",
	"2006/01/02",
	"1/2/2006",
	"01/02/2006",
	"1/2/2006 15:04",
}

// ParseDate parses a flight date in any of the known extract formats.
// Bare digit strings are tried as Unix epochs in ns, ms, then s.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	if digitsOnly(s) {
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return time.Time{}, false
		}
		for _, unit := range []time.Duration{time.Nanosecond, time.Millisecond, time.Second} {
			t := time.Unix(0, n*int64(unit)).UTC()
			if t.Year() >= 1980 && t.Year() <= 2100 {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

func digitsOnly(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}
