package logstore

import (
	"fmt"
	"strings"
	"time"
)

// TimestampLayout is ISO-8601 with microsecond precision and no offset
// suffix. Entry timestamps are always UTC.
const TimestampLayout = "2006-01-02T15:04:05.000000"

var ErrBadLine = errorString("bad log line")

type errorString string

func (e errorString) Error() string { return string(e) }

// Entry is one accepted log record. Immutable once built; it exists only to
// produce a single formatted line.
type Entry struct {
	Time     time.Time
	ClientID string
	Category string
	Message  string
}

// Format renders the entry as one log line, without the trailing newline.
func (e Entry) Format() string {
	return e.Time.UTC().Format(TimestampLayout) + " | " + e.ClientID + " | " + e.Category + " | " + e.Message
}

// ParseLine is the inverse of Format. The message field keeps any further
// " | " separators.
func ParseLine(line string) (Entry, error) {
	parts := strings.SplitN(line, " | ", 4)
	if len(parts) != 4 {
		return Entry{}, ErrBadLine
	}
	ts, err := time.Parse(TimestampLayout, parts[0])
	if err != nil {
		return Entry{}, fmt.Errorf("parse timestamp: %w", err)
	}
	return Entry{
		Time:     ts,
		ClientID: parts[1],
		Category: parts[2],
		Message:  parts[3],
	}, nil
}
