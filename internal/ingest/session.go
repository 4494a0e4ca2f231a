package ingest

import (
	"bufio"
	"fmt"
	"io"
	"net"
	"strings"
	"time"

	"github.com/loghive/loghive/internal/logstore"
)

const (
	categoryConnected    = "CONNECTED"
	categoryDisconnected = "DISCONNECTED"
)

// handleConn owns one client connection from accept to close. Exactly one
// CONNECTED and one DISCONNECTED marker per connection, whatever happens in
// between.
func (s *Server) handleConn(conn net.Conn) {
	defer func() {
		_ = conn.Close()
	}()

	ActiveConnections.Inc()
	defer ActiveConnections.Dec()

	// Markers start from the transport peer address. Message records carry a
	// self-reported client ID instead, and the disconnect marker follows the
	// last ID that made it to the rate limiter, accepted or not.
	clientID := conn.RemoteAddr().String()

	s.appendMarker(clientID, categoryConnected, "Client has connected.")
	defer func() {
		s.appendMarker(clientID, categoryDisconnected, "Client has disconnected.")
		s.logger.Info("client disconnected", "client", clientID)
	}()

	reader := bufio.NewReader(conn)
	for {
		if s.cfg.IdleTimeout > 0 {
			_ = conn.SetReadDeadline(time.Now().Add(s.cfg.IdleTimeout))
		}
		line, err := readLine(reader)
		if err != nil {
			if err != io.EOF {
				s.logger.Warn("read failed", "client", clientID, "error", err)
			}
			return
		}
		line = strings.TrimSpace(line)
		if line == "" {
			// An explicitly empty line ends the session, like EOF.
			return
		}

		rec, err := ParseRecord(line)
		if err != nil {
			reason := "malformed"
			if err == ErrEmptyField {
				reason = "empty_field"
			}
			DroppedLines.WithLabelValues(reason).Inc()
			s.logger.Warn("invalid log line", "client", clientID, "error", err)
			continue
		}

		clientID = rec.ClientID

		if !s.limiter.Allow(rec.ClientID) {
			DroppedLines.WithLabelValues("rate_limited").Inc()
			s.logger.Warn("rate limit exceeded", "client", rec.ClientID)
			continue
		}

		entry := logstore.Entry{
			Time:     time.Now().UTC(),
			ClientID: rec.ClientID,
			Category: rec.Category,
			Message:  rec.Message,
		}
		start := time.Now()
		if err := s.sink.Append(entry); err != nil {
			s.logger.Error("append failed", "client", rec.ClientID, "error", err)
			return
		}
		AppendDuration.Observe(time.Since(start).Seconds())
		EntriesWritten.Inc()
	}
}

// appendMarker writes a lifecycle entry. Marker failures are logged and
// swallowed so the disconnect path always runs to completion.
func (s *Server) appendMarker(clientID, category, message string) {
	entry := logstore.Entry{
		Time:     time.Now().UTC(),
		ClientID: clientID,
		Category: category,
		Message:  message,
	}
	if err := s.sink.Append(entry); err != nil {
		s.logger.Error("marker append failed", "client", clientID, "category", category, "error", err)
	}
}

func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err == nil {
		return strings.TrimRight(line, "\r\n"), nil
	}
	if err == io.EOF && line != "" {
		// last line without newline
		return strings.TrimRight(line, "\r\n"), nil
	}
	if err == io.EOF {
		return "", io.EOF
	}
	return "", fmt.Errorf("read: %w", err)
}
