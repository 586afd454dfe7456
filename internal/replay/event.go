package replay

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

type EventType string

const (
	EventCapabilities EventType = "capabilities"
	EventMotion       EventType = "motion"
	EventTouchStart   EventType = "touchstart"
	EventTouchEnd     EventType = "touchend"
	EventTouchCancel  EventType = "touchcancel"
	EventMouseDown    EventType = "mousedown"
	EventMouseUp      EventType = "mouseup"
	EventMouseLeave   EventType = "mouseleave"
	EventContextMenu  EventType = "contextmenu"
	EventResize       EventType = "resize"
	EventLink         EventType = "link"
)

// Event is one line of a recording. Fields not used by a type are ignored.
type Event struct {
	Type EventType `json:"type"`
	At   int64     `json:"at"` // epoch ms

	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`

	Button int    `json:"button"`
	Target string `json:"target"`

	Width        float64 `json:"width"`
	Height       float64 `json:"height"`
	WindowWidth  float64 `json:"windowWidth"`
	WindowHeight float64 `json:"windowHeight"`

	URL   string `json:"url"`
	Title string `json:"title"`

	// capabilities
	Motion   *bool `json:"motion"`
	Viewport *bool `json:"viewport"`
}

// ParseError reports a recording line that could not be decoded.
type ParseError struct {
	Line int
	Err  error
}

func (e *ParseError) Error() string { return fmt.Sprintf("line %d: %v", e.Line, e.Err) }

func (e *ParseError) Unwrap() error { return e.Err }

// ReadEvents decodes a JSON-lines recording. Blank lines and lines starting
// with '#' are skipped. Undecodable lines are returned as ParseErrors without
// stopping the read.
func ReadEvents(r io.Reader) ([]Event, []error, error) {
	var events []Event
	var bad []error

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	n := 0
	for sc.Scan() {
		n++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		var ev Event
		if err := json.Unmarshal([]byte(line), &ev); err != nil {
			bad = append(bad, &ParseError{Line: n, Err: err})
			continue
		}
		if ev.Type == "" {
			bad = append(bad, &ParseError{Line: n, Err: fmt.Errorf("missing type")})
			continue
		}
		events = append(events, ev)
	}
	if err := sc.Err(); err != nil {
		return nil, nil, fmt.Errorf("read recording: %w", err)
	}
	return events, bad, nil
}
