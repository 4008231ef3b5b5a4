// Copyright 2025 Terramate GmbH
// SPDX-License-Identifier: MPL-2.0

// Package progress reports the phases of a goal execution as structured
// events, independently of the raw command log.
package progress

import (
	"regexp"
	"time"
)

// Phase of a goal execution.
type Phase int

// Phases in lifecycle order.
const (
	Init Phase = iota + 1
	WorkspaceSelect
	Plan
	Apply
	Destroy
)

var phaseNames = map[Phase]string{
	Init:            "tfinit",
	WorkspaceSelect: "tfworkspaceselect",
	Plan:            "tfplan",
	Apply:           "tfapply",
	Destroy:         "tfdestroy",
}

var phaseLabels = map[Phase]string{
	Init:            "Initializing",
	WorkspaceSelect: "Selecting Workspace",
	Plan:            "Running Plan",
	Apply:           "Running Apply",
	Destroy:         "Running Destroy",
}

var markerRe = regexp.MustCompile(`phase:([a-z]+)`)

// String returns the phase name (eg.: tfplan).
func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return "unknown"
}

// Label returns the human readable label of the phase.
func (p Phase) Label() string {
	return phaseLabels[p]
}

// Marker returns the text marker of the phase (eg.: phase:tfplan), as
// understood by ParseMarker.
func (p Phase) Marker() string {
	return "phase:" + p.String()
}

// ParseMarker finds a phase marker in a log line.
// It returns false if the line has no known marker.
func ParseMarker(line string) (Phase, bool) {
	m := markerRe.FindStringSubmatch(line)
	if m == nil {
		return 0, false
	}
	for p, name := range phaseNames {
		if name == m[1] {
			return p, true
		}
	}
	return 0, false
}

// Event is emitted when a phase starts.
type Event struct {
	Phase Phase
	Time  time.Time
}

// Stream is a stream of progress events.
// A nil Stream discards all events.
type Stream chan Event

// NewStream creates a new stream.
func NewStream(buffsize int) Stream {
	return make(Stream, buffsize)
}

// Send sends the event on this stream without blocking. Returns false if the
// stream is full or nil and the event was dropped.
func (s Stream) Send(event Event) bool {
	if s == nil {
		return false
	}
	select {
	case s <- event:
		return true
	default:
		return false
	}
}

// Emit sends an event for phase p timestamped now.
func (s Stream) Emit(p Phase) bool {
	return s.Send(Event{Phase: p, Time: time.Now()})
}

// Close the stream. Must not be called more than once, and Send must not
// be called after it.
func (s Stream) Close() {
	if s != nil {
		close(s)
	}
}
