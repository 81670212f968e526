package export

import (
	"bytes"
	"fmt"
	"strings"
	"time"
)

// Event is one calendar entry for the ICS exporter.
type Event struct {
	UID         string
	Summary     string
	Description string
	Start       time.Time
	End         time.Time
}

// ICSExporter renders events as an RFC 5545 calendar.
type ICSExporter struct {
	ProdID string
}

// NewICSExporter constructs an ICS exporter.
func NewICSExporter() *ICSExporter {
	return &ICSExporter{ProdID: "-//quest-planner//EN"}
}

const icsTimeLayout = "20060102T150405Z"

// Render produces the calendar bytes for the given events.
func (e *ICSExporter) Render(name string, events []Event) ([]byte, error) {
	if name == "" {
		return nil, fmt.Errorf("ics requires a calendar name")
	}
	buf := &bytes.Buffer{}
	write := func(line string) {
		buf.WriteString(line)
		buf.WriteString("\r\n")
	}

	write("BEGIN:VCALENDAR")
	write("VERSION:2.0")
	write("PRODID:" + e.ProdID)
	write("X-WR-CALNAME:" + escapeICS(name))
	for _, ev := range events {
		write("BEGIN:VEVENT")
		write("UID:" + ev.UID)
		write("DTSTAMP:" + time.Now().UTC().Format(icsTimeLayout))
		write("DTSTART:" + ev.Start.UTC().Format(icsTimeLayout))
		write("DTEND:" + ev.End.UTC().Format(icsTimeLayout))
		write("SUMMARY:" + escapeICS(ev.Summary))
		if ev.Description != "" {
			write("DESCRIPTION:" + escapeICS(ev.Description))
		}
		write("END:VEVENT")
	}
	write("END:VCALENDAR")
	return buf.Bytes(), nil
}

func escapeICS(s string) string {
	r := strings.NewReplacer("\\", "\\\\", ";", "\\;", ",", "\\,", "\n", "\\n")
	return r.Replace(s)
}
