package ingest

import "testing"

func TestParseRecord(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		want    Record
		wantErr error
	}{
		{"plain", "c1|INFO|hello", Record{ClientID: "c1", Category: "INFO", Message: "hello"}, nil},
		{"trims whitespace", "  c1 | INFO |  hello  ", Record{ClientID: "c1", Category: "INFO", Message: "hello"}, nil},
		{"extra segments dropped", "c1 | CAT | hello | extra|stuff", Record{ClientID: "c1", Category: "CAT", Message: "hello"}, nil},
		{"two segments", "a|b", Record{}, ErrTooFewFields},
		{"no delimiter", "just text", Record{}, ErrTooFewFields},
		{"empty client", " | CAT | hello", Record{}, ErrEmptyField},
		{"empty category", "c1 |  | hello", Record{}, ErrEmptyField},
		{"empty message", "c1 | CAT |   | tail", Record{}, ErrEmptyField},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRecord(tt.line)
			if err != tt.wantErr {
				t.Fatalf("ParseRecord(%q) error = %v, want %v", tt.line, err, tt.wantErr)
			}
			if got != tt.want {
				t.Fatalf("ParseRecord(%q) = %+v, want %+v", tt.line, got, tt.want)
			}
		})
	}
}
