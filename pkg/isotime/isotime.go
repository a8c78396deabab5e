// Package isotime parses ISO-8601 calendar and week dates, optionally followed by a
// time of day and a UTC offset. Both the extended (2024-01-02T10:30) and the basic
// (20240102T1030) forms are accepted. Values without an offset are read as UTC.
package isotime

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalid is wrapped by every parse failure
var ErrInvalid = errors.New("invalid ISO-8601 value")

type clock struct {
	hour, minute, second, nsec int
}

// Parse reads a date (YYYY-MM-DD, YYYYMMDD, YYYY-Www[-D], YYYYWww[D]) with an optional
// time part separated by 'T' or a space: HH, HH:MM, HH:MM:SS[.fff], HHMM, HHMMSS[.fff],
// then an optional Z, ±HH, ±HHMM or ±HH:MM offset.
func Parse(value string) (time.Time, error) {
	s := strings.TrimSpace(value)

	date, n, err := parseDate(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w %q: %v", ErrInvalid, value, err)
	}
	if n == len(s) {
		return date, nil
	}

	switch s[n] {
	case 'T', 't', ' ':
	default:
		return time.Time{}, fmt.Errorf("%w %q: unexpected %q after date", ErrInvalid, value, s[n])
	}

	c, rest, err := parseClock(s[n+1:], true)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w %q: %v", ErrInvalid, value, err)
	}
	loc, err := parseOffset(rest)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w %q: %v", ErrInvalid, value, err)
	}

	y, m, d := date.Date()
	return time.Date(y, m, d, c.hour, c.minute, c.second, c.nsec, loc), nil
}

// number reads exactly width digits at pos
func number(s string, pos, width int) (int, bool) {
	if pos+width > len(s) {
		return 0, false
	}
	n := 0
	for i := pos; i < pos+width; i++ {
		if !isDigit(s[i]) {
			return 0, false
		}
		n = n*10 + int(s[i]-'0')
	}
	return n, true
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

// parseDate returns the date at midnight UTC and the number of bytes consumed
func parseDate(s string) (time.Time, int, error) {
	year, ok := number(s, 0, 4)
	if !ok || year == 0 {
		return time.Time{}, 0, errors.New("year must be four digits from 0001")
	}
	pos := 4
	extended := pos < len(s) && s[pos] == '-'
	if extended {
		pos++
	}

	if pos < len(s) && s[pos] == 'W' {
		return parseWeekDate(s, year, pos+1, extended)
	}

	month, ok := number(s, pos, 2)
	if !ok {
		return time.Time{}, 0, errors.New("month must be two digits")
	}
	pos += 2
	if extended {
		if pos >= len(s) || s[pos] != '-' {
			return time.Time{}, 0, errors.New("expected '-' before day")
		}
		pos++
	}
	day, ok := number(s, pos, 2)
	if !ok {
		return time.Time{}, 0, errors.New("day must be two digits")
	}
	pos += 2

	if month < 1 || month > 12 {
		return time.Time{}, 0, fmt.Errorf("month %d out of range", month)
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if day < 1 || t.Day() != day {
		return time.Time{}, 0, fmt.Errorf("day %d out of range", day)
	}
	return t, pos, nil
}

// parseWeekDate reads ww[-D] or wwD starting after the 'W'; the weekday defaults to Monday
func parseWeekDate(s string, year, pos int, extended bool) (time.Time, int, error) {
	week, ok := number(s, pos, 2)
	if !ok {
		return time.Time{}, 0, errors.New("week must be two digits")
	}
	pos += 2

	weekday := 1
	switch {
	case extended && pos < len(s) && s[pos] == '-':
		if weekday, ok = number(s, pos+1, 1); !ok {
			return time.Time{}, 0, errors.New("weekday must be one digit")
		}
		pos += 2
	case !extended && pos < len(s) && isDigit(s[pos]):
		weekday = int(s[pos] - '0')
		pos++
	}

	if week < 1 || week > weeksInYear(year) {
		return time.Time{}, 0, fmt.Errorf("week %d out of range", week)
	}
	if weekday < 1 || weekday > 7 {
		return time.Time{}, 0, fmt.Errorf("weekday %d out of range", weekday)
	}

	// week 1 is the week holding January 4th
	jan4 := time.Date(year, time.January, 4, 0, 0, 0, 0, time.UTC)
	offset := (int(jan4.Weekday()) + 6) % 7
	monday := jan4.AddDate(0, 0, -offset)
	return monday.AddDate(0, 0, (week-1)*7+weekday-1), pos, nil
}

// weeksInYear is 53 when January 1st is a Thursday, or a Wednesday in a leap year
func weeksInYear(year int) int {
	jan1 := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC).Weekday()
	leap := time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC).YearDay() == 366
	if jan1 == time.Thursday || (leap && jan1 == time.Wednesday) {
		return 53
	}
	return 52
}

// parseClock reads HH[:MM[:SS[.f]]] or HH[MM[SS[.f]]] and returns the unread rest.
// Separators must be used consistently.
func parseClock(s string, allowFraction bool) (clock, string, error) {
	var c clock
	parts := [3]int{}

	h, ok := number(s, 0, 2)
	if !ok {
		return c, "", errors.New("hour must be two digits")
	}
	parts[0] = h
	pos, count := 2, 1
	extended := pos < len(s) && s[pos] == ':'

	for count < 3 {
		if extended {
			if pos >= len(s) || s[pos] != ':' {
				break
			}
			pos++
		} else if pos >= len(s) || !isDigit(s[pos]) {
			break
		}
		v, ok := number(s, pos, 2)
		if !ok {
			return c, "", errors.New("time components must be two digits")
		}
		parts[count] = v
		pos += 2
		count++
	}

	if count == 3 && allowFraction && pos < len(s) && (s[pos] == '.' || s[pos] == ',') {
		pos++
		start := pos
		for pos < len(s) && isDigit(s[pos]) {
			pos++
		}
		digits := s[start:pos]
		if digits == "" {
			return c, "", errors.New("fraction must have digits")
		}
		if len(digits) > 9 {
			digits = digits[:9]
		}
		for _, d := range digits {
			c.nsec = c.nsec*10 + int(d-'0')
		}
		for i := len(digits); i < 9; i++ {
			c.nsec *= 10
		}
	}

	c.hour, c.minute, c.second = parts[0], parts[1], parts[2]
	if c.hour > 23 || c.minute > 59 || c.second > 59 {
		return c, "", fmt.Errorf("time %02d:%02d:%02d out of range", c.hour, c.minute, c.second)
	}
	return c, s[pos:], nil
}

// parseOffset reads what follows the time: nothing, Z, or a signed offset
func parseOffset(s string) (*time.Location, error) {
	switch {
	case s == "", s == "Z", s == "z":
		return time.UTC, nil
	case s[0] != '+' && s[0] != '-':
		return nil, fmt.Errorf("unexpected %q after time", s)
	}

	c, rest, err := parseClock(s[1:], false)
	if err != nil {
		return nil, fmt.Errorf("offset: %v", err)
	}
	if rest != "" {
		return nil, fmt.Errorf("unexpected %q after offset", rest)
	}
	seconds := c.hour*3600 + c.minute*60 + c.second
	if s[0] == '-' {
		seconds = -seconds
	}
	return time.FixedZone("", seconds), nil
}
