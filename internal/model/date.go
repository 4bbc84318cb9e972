package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the on-disk calendar date format.
const DateLayout = "2006-01-02"

// ErrInvalidDate is returned for strings that are not a YYYY-MM-DD calendar date.
var ErrInvalidDate = errors.New("invalid date")

// ParseDate splits s on '-' and builds a wall-clock time in loc at the given
// hour. Going through time.Parse would pin the date to UTC and can shift the
// day once rendered in local time, so dates are always constructed from
// their components.
func ParseDate(s string, loc *time.Location, hour int) (time.Time, error) {
	parts := strings.Split(strings.TrimSpace(s), "-")
	if len(parts) != 3 || len(parts[0]) != 4 || len(parts[1]) != 2 || len(parts[2]) != 2 {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}

	var nums [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
		}
		nums[i] = n
	}

	year, month, day := nums[0], nums[1], nums[2]
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}

	t := time.Date(year, time.Month(month), day, hour, 0, 0, 0, loc)
	if t.Day() != day {
		// 2023-02-30 and friends roll into the next month
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return t, nil
}

// IsValidDate reports whether s is a well-formed calendar date.
func IsValidDate(s string) bool {
	_, err := ParseDate(s, time.UTC, 12)
	return err == nil
}

// FormatDate serializes the calendar part of t as zero-padded YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return fmt.Sprintf("%04d-%02d-%02d", t.Year(), int(t.Month()), t.Day())
}
