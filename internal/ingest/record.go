package ingest

import "strings"

var (
	ErrTooFewFields = errorString("too few fields")
	ErrEmptyField   = errorString("empty field")
)

type errorString string

func (e errorString) Error() string { return string(e) }

// Record is one parsed wire line: the first three |-delimited segments,
// trimmed. Anything past the third segment is discarded.
type Record struct {
	ClientID string
	Category string
	Message  string
}

func ParseRecord(line string) (Record, error) {
	parts := strings.Split(line, "|")
	if len(parts) < 3 {
		return Record{}, ErrTooFewFields
	}
	rec := Record{
		ClientID: strings.TrimSpace(parts[0]),
		Category: strings.TrimSpace(parts[1]),
		Message:  strings.TrimSpace(parts[2]),
	}
	if rec.ClientID == "" || rec.Category == "" || rec.Message == "" {
		return Record{}, ErrEmptyField
	}
	return rec, nil
}
