package meeting

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	monthDayPattern  = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})$`)
	yearMonthDayFull = regexp.MustCompile(`^(\d{4})/(\d{1,2})/(\d{1,2})$`)
)

// ParseDeadline normalizes a human-entered deadline into an absolute
// date. It accepts:
//
//   - "MM/DD" — interpreted in now's year
//   - "YYYY/MM/DD" — four-digit year only
//   - "来週" — one week from now
//   - "今週中" — the next Friday, inclusive of today
//
// Anything else, including empty input, returns nil. Absence of a
// result is the error signal; ParseDeadline never fails.
func ParseDeadline(text string, now time.Time) *time.Time {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	switch text {
	case "来週":
		d := now.AddDate(0, 0, 7)
		return &d
	case "今週中":
		d := nextFriday(now)
		return &d
	}

	if m := yearMonthDayFull.FindStringSubmatch(text); m != nil {
		year, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		day, _ := strconv.Atoi(m[3])
		return makeDate(year, month, day)
	}

	if m := monthDayPattern.FindStringSubmatch(text); m != nil {
		month, _ := strconv.Atoi(m[1])
		day, _ := strconv.Atoi(m[2])
		return makeDate(now.Year(), month, day)
	}

	return nil
}

// makeDate validates the day against the month before constructing the
// date. time.Date normalizes overflow (Feb 30 -> Mar 2), so a changed
// month or day after construction means the input was invalid.
func makeDate(year, month, day int) *time.Time {
	if month < 1 || month > 12 || day < 1 {
		return nil
	}
	d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if d.Year() != year || int(d.Month()) != month || d.Day() != day {
		return nil
	}
	return &d
}

// nextFriday returns the upcoming Friday, counting today as a candidate.
func nextFriday(now time.Time) time.Time {
	offset := (int(time.Friday) - int(now.Weekday()) + 7) % 7
	d := now.AddDate(0, 0, offset)
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, now.Location())
}
