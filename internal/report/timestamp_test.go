package report

import (
	"testing"
	"time"
)

func TestParseTimestamp(t *testing.T) {
	oslo := time.FixedZone("CET", 3600)
	tests := []struct {
		name      string
		raw       string
		loc       *time.Location
		wantDate  string
		wantClock string
		fallback  bool
	}{
		{name: "zulu", raw: "2024-03-01T14:30:00Z", wantDate: "01.03.2024", wantClock: "14:30"},
		{name: "fraction", raw: "2024-03-01T14:30:00.123Z", wantDate: "01.03.2024", wantClock: "14:30"},
		{name: "offset kept", raw: "2024-03-01T23:45:00+02:00", wantDate: "01.03.2024", wantClock: "23:45"},
		{name: "naive", raw: "2024-03-01T06:05:00", wantDate: "01.03.2024", wantClock: "06:05"},
		{name: "date only", raw: "2024-03-01", wantDate: "01.03.2024", wantClock: "00:00"},
		{name: "converted", raw: "2024-03-01T23:30:00Z", loc: oslo, wantDate: "02.03.2024", wantClock: "00:30"},
		{name: "empty", raw: "", wantDate: "07.06.2025", wantClock: "08:09", fallback: true},
		{name: "garbage", raw: "tomorrow at noon", wantDate: "07.06.2025", wantClock: "08:09", fallback: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ts := ParseTimestamp(tc.raw, fixedClock, tc.loc)
			if ts.Date() != tc.wantDate || ts.Clock() != tc.wantClock || ts.Fallback != tc.fallback {
				t.Fatalf("got %s %s fallback=%v", ts.Date(), ts.Clock(), ts.Fallback)
			}
		})
	}
}
