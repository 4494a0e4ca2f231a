package logstore

import (
	"fmt"
	"os"
	"sync"
)

// FileSink appends entries to a single file kept open for the sink's
// lifetime. One mutex serializes appends so lines from concurrent
// connections never interleave.
type FileSink struct {
	mu sync.Mutex
	f  *os.File
}

func NewFileSink(path string) (*FileSink, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return &FileSink{f: f}, nil
}

func (s *FileSink) Append(e Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.f.WriteString(e.Format() + "\n"); err != nil {
		return fmt.Errorf("append log entry: %w", err)
	}
	return nil
}

func (s *FileSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.f.Close()
}
