// Package attachment derives the file list sent with a report.
package attachment

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"fieldreport/internal/domain"
	"fieldreport/internal/photo"
	"fieldreport/pkg/zip"
)

// Mode selects whether photos travel with the report.
type Mode string

const (
	ModeNone       Mode = "none"
	ModeIndividual Mode = "individual"
	ModeZip        Mode = "zip"
)

// ParseMode reads a mode name. Empty means ModeNone.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return ModeNone, nil
	case ModeNone, ModeIndividual, ModeZip:
		return m, nil
	default:
		return "", fmt.Errorf("attachment: unknown mode %q", s)
	}
}

const (
	pdfContentType = "application/pdf"
	zipContentType = "application/zip"
)

// Assembler builds attachment sets.
type Assembler struct {
	mode   Mode
	logger zerolog.Logger
}

// NewAssembler creates an Assembler. An unknown mode behaves like ModeNone.
func NewAssembler(mode Mode, logger zerolog.Logger) *Assembler {
	if _, err := ParseMode(string(mode)); err != nil {
		mode = ModeNone
	}
	if mode == "" {
		mode = ModeNone
	}
	return &Assembler{mode: mode, logger: logger}
}

// Mode returns the configured mode.
func (a *Assembler) Mode() Mode { return a.mode }

// Assemble returns the document followed by the photos the mode asks for.
// Photos are decoded again from the record, without resizing; one that fails
// to decode is logged and left out.
func (a *Assembler) Assemble(rec *domain.JobRecord, doc *domain.DocumentArtifact) domain.AttachmentSet {
	var set domain.AttachmentSet
	if doc != nil {
		set = append(set, domain.Attachment{Filename: doc.Filename, ContentType: pdfContentType, Data: doc.Data})
	}
	if rec == nil || a.mode == ModeNone {
		return set
	}

	photos := a.photos(rec)
	switch a.mode {
	case ModeIndividual:
		set = append(set, photos...)
	case ModeZip:
		if len(photos) == 0 {
			break
		}
		entries := make([]zip.Entry, len(photos))
		for i, p := range photos {
			entries[i] = zip.Entry{Name: p.Filename, Data: p.Data}
		}
		data, err := zip.Archive(entries)
		if err != nil {
			a.logger.Warn().Str("job_id", rec.ID).Err(err).Msg("photo archive failed")
			break
		}
		set = append(set, domain.Attachment{
			Filename:    "bilder_" + domain.SafeFilenamePart(rec.ID) + ".zip",
			ContentType: zipContentType,
			Data:        data,
		})
	}
	return set
}

func (a *Assembler) photos(rec *domain.JobRecord) []domain.Attachment {
	var out []domain.Attachment
	add := func(key string, p *domain.PhotoPayload) {
		raw, err := photo.Decode(p)
		if err != nil {
			if !errors.Is(err, photo.ErrAbsent) {
				a.logger.Warn().Str("job_id", rec.ID).Str("slot", key).Err(err).Msg("photo attachment skipped")
			}
			return
		}
		out = append(out, domain.Attachment{
			Filename:    fmt.Sprintf("foto_%d_%s.%s", len(out)+1, domain.SafeFilenamePart(key), raw.Extension()),
			ContentType: raw.ContentType(),
			Data:        raw.Data,
		})
	}
	for _, slot := range domain.FixedSlots {
		add(string(slot), rec.Photos.Get(slot))
	}
	for _, extra := range rec.Photos.Extra {
		add(extra.Key, extra.Payload)
	}
	return out
}
