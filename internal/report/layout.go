// Package report assembles a job record into a sequence of layout blocks and
// renders those blocks onto fixed A4 pages.
//
// Building and rendering are separate steps: Builder produces a Layout that
// can be inspected without touching the PDF writer, and Renderer paginates
// a Layout into a domain.DocumentArtifact.
package report

import (
	"fieldreport/internal/domain"
	"fieldreport/internal/photo"
)

// BlockKind names a layout block.
type BlockKind string

const (
	KindHeader      BlockKind = "header"
	KindInfo        BlockKind = "info"
	KindSite        BlockKind = "site"
	KindDescription BlockKind = "description"
	KindTrip        BlockKind = "trip"
	KindMaterials   BlockKind = "materials"
	KindStatus      BlockKind = "status"
	KindPhotos      BlockKind = "photos"
	KindNotes       BlockKind = "notes"
	KindFooter      BlockKind = "footer"
)

// Block is one section of the report.
type Block interface {
	Kind() BlockKind
}

// HeaderBlock is the company banner.
type HeaderBlock struct {
	Company  string
	OrgNr    string
	Title    string
	Subtitle string
}

// InfoBlock carries report number, date and technician.
type InfoBlock struct {
	ReportNumber string
	Date         string
	Clock        string
	Technician   string
	Fallback     bool
}

// SiteBlock describes where the work was done.
type SiteBlock struct {
	Customer  string
	Location  string
	Available bool
}

// TextBlock is a titled free-text section.
type TextBlock struct {
	kind    BlockKind
	Heading string
	Body    string
}

// Field is one label/value row.
type Field struct {
	Label string
	Value string
}

// TripBlock lists the present trip fields.
type TripBlock struct {
	Heading string
	Fields  []Field
}

// StatusRow is one checklist item.
type StatusRow struct {
	Label  string
	Answer Answer
	Text   string
}

// StatusBlock is the checklist table.
type StatusBlock struct {
	Heading string
	Columns [2]string
	Rows    []StatusRow
}

// PhotoCell is one position of the photo grid. Image is nil for
// placeholders, in which case Placeholder holds the stand-in text.
type PhotoCell struct {
	Key         string
	Label       string
	Hint        string
	Image       *photo.Image
	Placeholder string
	Extra       bool
}

// Available reports whether the cell shows a photo.
func (c PhotoCell) Available() bool { return c.Image != nil }

// Caption is the text printed under a fixed-slot cell.
func (c PhotoCell) Caption() string {
	if c.Extra {
		return ""
	}
	return c.Label + " - " + c.Hint
}

// PhotoBlock is the photo grid. The first four cells are always the fixed
// slots; extras follow.
type PhotoBlock struct {
	Heading string
	Cells   []PhotoCell
}

// Rows groups the cells two per row. Fixed and extra cells never share a row.
func (b *PhotoBlock) Rows() [][]PhotoCell {
	var fixed, extra []PhotoCell
	for _, c := range b.Cells {
		if c.Extra {
			extra = append(extra, c)
		} else {
			fixed = append(fixed, c)
		}
	}
	return append(pairs(fixed), pairs(extra)...)
}

func pairs(cells []PhotoCell) [][]PhotoCell {
	var rows [][]PhotoCell
	for i := 0; i < len(cells); i += 2 {
		end := i + 2
		if end > len(cells) {
			end = len(cells)
		}
		rows = append(rows, cells[i:end])
	}
	return rows
}

// FooterBlock is the closing attribution line.
type FooterBlock struct {
	Text string
}

func (*HeaderBlock) Kind() BlockKind { return KindHeader }
func (*InfoBlock) Kind() BlockKind   { return KindInfo }
func (*SiteBlock) Kind() BlockKind   { return KindSite }
func (b *TextBlock) Kind() BlockKind { return b.kind }
func (*TripBlock) Kind() BlockKind   { return KindTrip }
func (*StatusBlock) Kind() BlockKind { return KindStatus }
func (*PhotoBlock) Kind() BlockKind  { return KindPhotos }
func (*FooterBlock) Kind() BlockKind { return KindFooter }

// Layout is the ordered block sequence of one report.
type Layout struct {
	JobID     string
	Filename  string
	Timestamp Timestamp
	Labels    *Labels

	// Company is the identity the report is issued under: the record's own,
	// or the builder default when the record names none.
	Company domain.Company
	Blocks  []Block
}

// Kinds lists the block kinds in order.
func (l *Layout) Kinds() []BlockKind {
	kinds := make([]BlockKind, len(l.Blocks))
	for i, b := range l.Blocks {
		kinds[i] = b.Kind()
	}
	return kinds
}

// Find returns the first block of the given kind, or nil.
func (l *Layout) Find(kind BlockKind) Block {
	for _, b := range l.Blocks {
		if b.Kind() == kind {
			return b
		}
	}
	return nil
}
