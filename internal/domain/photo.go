package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// PayloadKind tags how a photo arrived in the submission.
type PayloadKind uint8

const (
	// PayloadRaw is a bare encoded-image string.
	PayloadRaw PayloadKind = iota + 1
	// PayloadWrapped is an object carrying the encoded string in "data".
	PayloadWrapped
	// PayloadMalformed is any other JSON shape.
	PayloadMalformed
)

// PhotoPayload is the variant form of one submitted photo.
type PhotoPayload struct {
	Kind PayloadKind
	Data string
}

// RawPhoto returns a payload for a bare encoded string.
func RawPhoto(data string) *PhotoPayload {
	return &PhotoPayload{Kind: PayloadRaw, Data: data}
}

// WrappedPhoto returns a payload for a {"data": ...} object.
func WrappedPhoto(data string) *PhotoPayload {
	return &PhotoPayload{Kind: PayloadWrapped, Data: data}
}

// Encoded returns the encoded image string. ok is false when the payload is
// absent, malformed or empty.
func (p *PhotoPayload) Encoded() (string, bool) {
	if p == nil {
		return "", false
	}
	switch p.Kind {
	case PayloadRaw, PayloadWrapped:
		return p.Data, p.Data != ""
	default:
		return "", false
	}
}

// Captured reports whether the technician supplied anything for the photo.
// Malformed payloads count as captured; they fail later, at decode time.
func (p *PhotoPayload) Captured() bool {
	if p == nil {
		return false
	}
	if p.Kind == PayloadMalformed {
		return true
	}
	return p.Data != ""
}

// UnmarshalJSON resolves the payload variant. It never fails: shapes that are
// neither a string nor an object with a string "data" field become malformed.
func (p *PhotoPayload) UnmarshalJSON(b []byte) error {
	*p = PhotoPayload{Kind: PayloadMalformed}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*p = PhotoPayload{Kind: PayloadRaw, Data: s}
		return nil
	}
	var wrapper struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(b, &wrapper); err != nil || len(wrapper.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(wrapper.Data, &s); err == nil {
		*p = PhotoPayload{Kind: PayloadWrapped, Data: s}
	}
	return nil
}

// ExtraPhoto is a photo outside the fixed slots, kept in submission order.
type ExtraPhoto struct {
	Key     string
	Payload *PhotoPayload
}

// PhotoSet maps the fixed slots to their payloads and keeps extras in order.
type PhotoSet struct {
	Fixed map[Slot]*PhotoPayload
	Extra []ExtraPhoto
}

// Get returns the payload for a fixed slot, or nil.
func (s PhotoSet) Get(slot Slot) *PhotoPayload {
	if s.Fixed == nil {
		return nil
	}
	return s.Fixed[slot]
}

// Set assigns a fixed slot.
func (s *PhotoSet) Set(slot Slot, p *PhotoPayload) {
	if s.Fixed == nil {
		s.Fixed = make(map[Slot]*PhotoPayload, len(FixedSlots))
	}
	s.Fixed[slot] = p
}

// AddExtra appends an extra photo.
func (s *PhotoSet) AddExtra(key string, p *PhotoPayload) {
	s.Extra = append(s.Extra, ExtraPhoto{Key: key, Payload: p})
}

// UnmarshalJSON walks the photos object in key order so extras keep the
// order they were submitted in. Extras may also come as an "extra" array.
// A photos value that is not an object is treated as an empty set.
func (s *PhotoSet) UnmarshalJSON(b []byte) error {
	*s = PhotoSet{}
	dec := json.NewDecoder(bytes.NewReader(b))
	tok, err := dec.Token()
	if err != nil {
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil
	}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("photos: %w", err)
		}
		key, _ := keyTok.(string)
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("photos: %s: %w", key, err)
		}
		if isNull(raw) {
			continue
		}
		if slot, ok := ParseSlot(key); ok {
			s.Set(slot, decodePayload(raw))
			continue
		}
		if key == "extra" && bytes.HasPrefix(bytes.TrimSpace(raw), []byte("[")) {
			var items []json.RawMessage
			if err := json.Unmarshal(raw, &items); err != nil {
				continue
			}
			for i, item := range items {
				if isNull(item) {
					continue
				}
				s.AddExtra(fmt.Sprintf("extra%d", i+1), decodePayload(item))
			}
			continue
		}
		s.AddExtra(key, decodePayload(raw))
	}
	return nil
}

func decodePayload(raw json.RawMessage) *PhotoPayload {
	var p PhotoPayload
	_ = p.UnmarshalJSON(raw)
	return &p
}

func isNull(raw json.RawMessage) bool {
	t := bytes.TrimSpace(raw)
	return len(t) == 0 || bytes.Equal(t, []byte("null"))
}
