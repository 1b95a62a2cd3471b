package schedule

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the calendar-date format used throughout override keys
// and resolved schedules.
const DateLayout = "2006-01-02"

// LibraryIndexBase is the first slot index reserved for library
// insertions. Original-plan indices stay in 0..10, so the two ranges
// never collide within a date.
const LibraryIndexBase = 100

// FormatKey builds the stable "<date>:<index>" override key.
func FormatKey(date string, index int) string {
	return fmt.Sprintf("%s:%d", date, index)
}

// ParseKey splits an override key into its date and index parts.
func ParseKey(key string) (date string, index int, err error) {
	i := strings.LastIndex(key, ":")
	if i < 0 {
		return "", 0, fmt.Errorf("override key %q: missing index separator", key)
	}
	date = key[:i]
	if _, err = time.Parse(DateLayout, date); err != nil {
		return "", 0, fmt.Errorf("override key %q: bad date: %w", key, err)
	}
	index, err = strconv.Atoi(key[i+1:])
	if err != nil || index < 0 {
		return "", 0, fmt.Errorf("override key %q: bad index", key)
	}
	return date, index, nil
}

// KeyDate returns just the date part of a key, or "" for a malformed
// key.
func KeyDate(key string) string {
	d, _, err := ParseKey(key)
	if err != nil {
		return ""
	}
	return d
}
