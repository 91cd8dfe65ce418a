package report

import (
	"strings"
	"time"
)

const (
	DateLayout  = "02.01.2006"
	ClockLayout = "15:04"
)

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999-07:00",
	"2006-01-02T15:04-07:00",
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Timestamp is the report time. Fallback is set when the record carried no
// usable timestamp and the generation clock was used instead.
type Timestamp struct {
	Time     time.Time
	Fallback bool
}

// Date formats the day part for display.
func (t Timestamp) Date() string { return t.Time.Format(DateLayout) }

// Clock formats the time of day for display.
func (t Timestamp) Clock() string { return t.Time.Format(ClockLayout) }

// ParseTimestamp reads an ISO-8601 timestamp. A trailing "Z" is read as
// "+00:00". Naive timestamps are taken as UTC. When loc is non-nil the parsed
// time is converted to it; otherwise the source offset is kept. Absent or
// unparsable input falls back to now().
func ParseTimestamp(raw string, now func() time.Time, loc *time.Location) Timestamp {
	raw = strings.TrimSpace(raw)
	if strings.HasSuffix(raw, "Z") || strings.HasSuffix(raw, "z") {
		raw = raw[:len(raw)-1] + "+00:00"
	}
	if raw != "" {
		for _, layout := range timestampLayouts {
			t, err := time.Parse(layout, raw)
			if err != nil {
				continue
			}
			if loc != nil {
				t = t.In(loc)
			}
			return Timestamp{Time: t}
		}
	}
	t := now()
	if loc != nil {
		t = t.In(loc)
	}
	return Timestamp{Time: t, Fallback: true}
}
