package report

import (
	"fmt"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"fieldreport/internal/domain"
	"fieldreport/internal/photo"
)

const reportNumberLength = 16

// Builder turns job records into layouts.
type Builder struct {
	normalizer     *photo.Normalizer
	defaultCompany domain.Company
	defaultLocale  string
	displayLoc     *time.Location
	tripLoc        *time.Location
	now            func() time.Time
	logger         zerolog.Logger
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithDefaultCompany sets the company used when a record names none.
func WithDefaultCompany(c domain.Company) BuilderOption {
	return func(b *Builder) { b.defaultCompany = c }
}

// WithLocale sets the fallback report language.
func WithLocale(locale string) BuilderOption {
	return func(b *Builder) { b.defaultLocale = NegotiateLocale(locale, DefaultLocale) }
}

// WithDisplayLocation converts parsed timestamps and trip times to loc.
func WithDisplayLocation(loc *time.Location) BuilderOption {
	return func(b *Builder) {
		b.displayLoc = loc
		if loc != nil {
			b.tripLoc = loc
		}
	}
}

// WithClock replaces the wall clock used for missing timestamps.
func WithClock(now func() time.Time) BuilderOption {
	return func(b *Builder) {
		if now != nil {
			b.now = now
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(l zerolog.Logger) BuilderOption {
	return func(b *Builder) { b.logger = l }
}

// NewBuilder creates a Builder. A nil normalizer gets the default bounds.
func NewBuilder(n *photo.Normalizer, opts ...BuilderOption) *Builder {
	if n == nil {
		n = photo.NewNormalizer(photo.Options{})
	}
	b := &Builder{
		normalizer:    n,
		defaultLocale: DefaultLocale,
		tripLoc:       time.UTC,
		now:           time.Now,
		logger:        zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build lays out a record. locale may be empty to use the builder default.
// Only a nil record or a missing identifier is an error; every other gap in
// the record degrades to a placeholder or an omitted section.
func (b *Builder) Build(rec *domain.JobRecord, locale string) (*Layout, error) {
	if err := rec.Validate(); err != nil {
		return nil, err
	}
	labels := LabelsFor(NegotiateLocale(locale, b.defaultLocale))
	ts := ParseTimestamp(rec.Timestamp, b.now, b.displayLoc)
	if ts.Fallback {
		b.logger.Debug().Str("job_id", rec.ID).Str("timestamp", rec.Timestamp).Msg("timestamp missing or unparsable, using generation time")
	}
	company := rec.Company
	if company.IsZero() {
		company = b.defaultCompany
	}

	l := &Layout{
		JobID:     rec.ID,
		Filename:  domain.ReportFilename(rec.ID),
		Timestamp: ts,
		Labels:    labels,
		Company:   company,
	}
	add := func(blk Block) {
		if blk != nil {
			l.Blocks = append(l.Blocks, blk)
		}
	}

	add(&HeaderBlock{
		Company:  orDefault(company.Name, labels.Company),
		OrgNr:    fmt.Sprintf("%s: %s", labels.OrgNr, orDefault(company.OrgNr, labels.Missing)),
		Title:    labels.Title,
		Subtitle: labels.Subtitle,
	})
	add(&InfoBlock{
		ReportNumber: truncateRunes(strings.TrimSpace(rec.ID), reportNumberLength),
		Date:         ts.Date(),
		Clock:        ts.Clock(),
		Technician:   orDefault(rec.Technician.Name, labels.Missing),
		Fallback:     ts.Fallback,
	})
	add(siteBlock(rec, labels))
	add(textBlock(KindDescription, labels.Description, rec.Description))
	add(b.tripBlock(rec.Trip, labels))
	add(textBlock(KindMaterials, labels.Materials, joinMaterials(rec.Materials)))
	add(statusBlock(rec.Answers, labels))
	add(b.photoBlock(rec, labels))
	add(textBlock(KindNotes, labels.Notes, rec.Notes))
	add(&FooterBlock{Text: fmt.Sprintf(labels.FooterFormat, company.Name, company.Phone)})
	return l, nil
}

func siteBlock(rec *domain.JobRecord, labels *Labels) *SiteBlock {
	blk := &SiteBlock{Location: labels.NoLocation}
	if rec.Customer != nil {
		blk.Customer = strings.TrimSpace(rec.Customer.Name)
	}
	loc := rec.Location
	switch {
	case loc != nil && strings.TrimSpace(loc.Address) != "":
		blk.Location = strings.TrimSpace(loc.Address)
		blk.Available = true
	case loc.HasCoordinates():
		blk.Location = fmt.Sprintf("%s: %.5f, %.5f", labels.GPS, *loc.Lat, *loc.Lng)
		blk.Available = true
	}
	return blk
}

func textBlock(kind BlockKind, heading, body string) Block {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil
	}
	return &TextBlock{kind: kind, Heading: heading, Body: body}
}

func (b *Builder) tripBlock(trip *domain.Trip, labels *Labels) Block {
	if trip.IsEmpty() {
		return nil
	}
	blk := &TripBlock{Heading: labels.Trip}
	if trip.StartTime != nil {
		blk.Fields = append(blk.Fields, Field{Label: labels.TripStart, Value: b.epochClock(*trip.StartTime)})
	}
	if trip.EndTime != nil {
		blk.Fields = append(blk.Fields, Field{Label: labels.TripEnd, Value: b.epochClock(*trip.EndTime)})
	}
	if trip.DistanceKm != nil {
		blk.Fields = append(blk.Fields, Field{Label: labels.TripDistance, Value: fmt.Sprintf("%.1f km", *trip.DistanceKm)})
	}
	return blk
}

func (b *Builder) epochClock(ms float64) string {
	if math.IsNaN(ms) || math.IsInf(ms, 0) {
		return "-"
	}
	return time.UnixMilli(int64(ms)).In(b.tripLoc).Format(ClockLayout)
}

func joinMaterials(items []string) string {
	names := make([]string, 0, len(items))
	for _, item := range items {
		if s := strings.TrimSpace(item); s != "" {
			names = append(names, s)
		}
	}
	return strings.Join(names, ", ")
}

func statusBlock(a domain.AnswerSet, labels *Labels) *StatusBlock {
	answers := [3]Answer{AnswerOf(a.Completed), AnswerOf(a.Materials), AnswerOf(a.Followup)}
	blk := &StatusBlock{
		Heading: labels.Status,
		Columns: [2]string{labels.Checkpoint, labels.Result},
	}
	for i, ans := range answers {
		blk.Rows = append(blk.Rows, StatusRow{
			Label:  labels.Checklist[i],
			Answer: ans,
			Text:   labels.AnswerText(ans),
		})
	}
	return blk
}

func (b *Builder) photoBlock(rec *domain.JobRecord, labels *Labels) *PhotoBlock {
	blk := &PhotoBlock{Heading: labels.Photos}
	for _, slot := range domain.FixedSlots {
		res := b.normalizer.Normalize(string(slot), rec.Photos.Get(slot))
		cell := PhotoCell{
			Key:   string(slot),
			Label: labels.PhotoLabels[slot],
			Hint:  labels.PhotoHints[slot],
			Image: res.Image,
		}
		if !res.Available() {
			cell.Placeholder = labels.PhotoBroken
			if res.Absent() {
				cell.Placeholder = labels.PhotoAbsent
			}
		}
		blk.Cells = append(blk.Cells, cell)
	}
	for _, extra := range rec.Photos.Extra {
		res := b.normalizer.Normalize(extra.Key, extra.Payload)
		if !res.Available() {
			continue
		}
		blk.Cells = append(blk.Cells, PhotoCell{Key: extra.Key, Image: res.Image, Extra: true})
	}
	return blk
}

func orDefault(s, def string) string {
	if s = strings.TrimSpace(s); s != "" {
		return s
	}
	return def
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
