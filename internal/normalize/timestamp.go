package normalize

import (
	"time"

	"github.com/araddon/dateparse"
)

// ParseTimestamp parses a feed timestamp permissively (the same library
// gofeed itself leans on internally for RSS/Atom date formats), then
// localizes naive timestamps to UTC and converts the result to UTC.
func ParseTimestamp(value string) (time.Time, bool) {
	if value == "" {
		return time.Time{}, false
	}
	t, err := dateparse.ParseIn(value, time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return t.UTC(), true
}
