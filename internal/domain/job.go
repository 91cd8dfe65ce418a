package domain

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Slot names a fixed photo position in the report.
type Slot string

const (
	SlotBefore Slot = "before"
	SlotDuring Slot = "during"
	SlotDetail Slot = "detail"
	SlotAfter  Slot = "after"
)

// FixedSlots is the rendering and attachment order of the fixed photo slots.
var FixedSlots = [4]Slot{SlotBefore, SlotDuring, SlotDetail, SlotAfter}

var slotAliases = map[string]Slot{
	"before":          SlotBefore,
	"before-work":     SlotBefore,
	"during":          SlotDuring,
	"in-progress":     SlotDuring,
	"detail":          SlotDetail,
	"close-up-detail": SlotDetail,
	"after":           SlotAfter,
	"after-work":      SlotAfter,
}

// ParseSlot resolves a photo key to a fixed slot. ok is false for extra keys.
func ParseSlot(key string) (Slot, bool) {
	s, ok := slotAliases[strings.ToLower(strings.TrimSpace(key))]
	return s, ok
}

// Company identifies the company issuing the report.
type Company struct {
	Name        string `json:"name" yaml:"name"`
	OrgNr       string `json:"orgNr" yaml:"org_nr"`
	Phone       string `json:"phone" yaml:"phone"`
	Email       string `json:"email" yaml:"email"`
	OfficeEmail string `json:"office_email" yaml:"office_email"`
}

// IsZero reports whether no company field is set.
func (c Company) IsZero() bool {
	return c == Company{}
}

// Person is a technician or customer reference.
type Person struct {
	Name  string `json:"name"`
	Phone string `json:"phone,omitempty"`
}

// Location is either a free-form address or a coordinate pair.
type Location struct {
	Lat     *float64 `json:"lat,omitempty"`
	Lng     *float64 `json:"lng,omitempty"`
	Address string   `json:"address,omitempty"`
}

// HasCoordinates reports whether both coordinates are present.
func (l *Location) HasCoordinates() bool {
	return l != nil && l.Lat != nil && l.Lng != nil
}

// Trip carries the optional driving data of a visit. Times are epoch
// milliseconds as sent by the mobile client.
type Trip struct {
	StartTime  *float64 `json:"startTime,omitempty"`
	EndTime    *float64 `json:"endTime,omitempty"`
	DistanceKm *float64 `json:"distanceKm,omitempty"`
}

// IsEmpty reports whether no trip field is present.
func (t *Trip) IsEmpty() bool {
	return t == nil || (t.StartTime == nil && t.EndTime == nil && t.DistanceKm == nil)
}

// AnswerSet holds the checklist answers. A nil answer is unknown, never "no".
type AnswerSet struct {
	Completed *bool `json:"completed"`
	Materials *bool `json:"materials"`
	Followup  *bool `json:"followup"`
}

// JobRecord is one completed service visit as submitted by a technician.
type JobRecord struct {
	ID          string    `json:"id"`
	Timestamp   string    `json:"timestamp"`
	Company     Company   `json:"company"`
	Technician  Person    `json:"plumber"`
	Customer    *Person   `json:"customer,omitempty"`
	Description string    `json:"description"`
	Materials   []string  `json:"materials"`
	Photos      PhotoSet  `json:"photos"`
	Answers     AnswerSet `json:"answers"`
	Notes       string    `json:"notes"`
	Location    *Location `json:"location,omitempty"`
	Trip        *Trip     `json:"trip,omitempty"`
}

// Validate checks the fields the report cannot be produced without.
func (r *JobRecord) Validate() error {
	if r == nil {
		return ErrInvalidRecord
	}
	if strings.TrimSpace(r.ID) == "" {
		return ErrMissingID
	}
	return nil
}

// DecodeJobRecord parses a submission body. Unknown fields are ignored.
func DecodeJobRecord(data []byte) (*JobRecord, error) {
	var rec JobRecord
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&rec); err != nil {
		return nil, err
	}
	return &rec, nil
}
