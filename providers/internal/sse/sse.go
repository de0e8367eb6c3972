// Package sse parses server-sent event streams from provider streaming endpoints.
package sse

import (
	"bufio"
	"io"
	"strings"
)

// Event is a single server-sent event.
type Event struct {
	// Type is the value of the "event" field, or "" for the default type.
	Type string

	// Data is the payload. Multiple data lines in one event are joined
	// with newlines.
	Data string
}

// Scanner reads events from an SSE stream. Events are delimited by blank
// lines; "data" and "event" fields are collected, comment lines and
// unknown fields are skipped.
//
// The loop mirrors bufio.Scanner: call Next until it returns false, then
// check Err to distinguish a clean end of stream from a read failure.
type Scanner struct {
	r     *bufio.Reader
	event Event
	err   error
}

// NewScanner returns a Scanner reading from r.
func NewScanner(r io.Reader) *Scanner {
	return &Scanner{r: bufio.NewReaderSize(r, 64*1024)}
}

// Next advances to the next event. It returns false when the stream ends
// or a read fails.
func (s *Scanner) Next() bool {
	if s.err != nil {
		return false
	}

	var eventType string
	var data []string

	for {
		raw, err := s.r.ReadString('\n')
		if raw != "" {
			line := strings.TrimRight(raw, "\r\n")
			switch {
			case line == "":
				if len(data) > 0 {
					s.event = Event{Type: eventType, Data: strings.Join(data, "\n")}
					return true
				}
				eventType = ""
			case strings.HasPrefix(line, ":"):
				// Comment, skip.
			default:
				field, value, found := strings.Cut(line, ":")
				if found {
					// One leading space after the colon is part of the
					// field syntax, not the value.
					value = strings.TrimPrefix(value, " ")
				}
				switch field {
				case "data":
					data = append(data, value)
				case "event":
					eventType = value
				}
			}
		}
		if err != nil {
			s.err = err
			// A stream cut off mid-event still yields what arrived;
			// the error surfaces on the following Next.
			if len(data) > 0 {
				s.event = Event{Type: eventType, Data: strings.Join(data, "\n")}
				return true
			}
			return false
		}
	}
}

// Event returns the event parsed by the last successful Next.
func (s *Scanner) Event() Event {
	return s.event
}

// Err returns the error that ended the scan, or nil if the stream ended
// with a clean EOF.
func (s *Scanner) Err() error {
	if s.err == io.EOF {
		return nil
	}
	return s.err
}
