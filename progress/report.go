// Copyright 2025 Terramate GmbH
// SPDX-License-Identifier: MPL-2.0

package progress

import (
	"bufio"
	"io"
	"time"

	"github.com/ipcrmdemo/ipcrmdemo-sdm-sub000/printer"
)

// Report prints the label of each event read from events until the
// channel is closed.
func Report(events <-chan Event, p *printer.Printer) {
	for ev := range events {
		p.Progressln(ev.Phase.Label(), ev.Time)
	}
}

// ScanMarkers reads a raw log with embedded phase markers and sends an
// event for each marker found. Sends block, so events must be consumed
// concurrently unless the channel buffer is large enough.
// It returns when r is exhausted. The event time is the time the marker
// line was read.
func ScanMarkers(r io.Reader, events chan<- Event) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if p, ok := ParseMarker(scanner.Text()); ok {
			events <- Event{Phase: p, Time: time.Now()}
		}
	}
	return scanner.Err()
}
