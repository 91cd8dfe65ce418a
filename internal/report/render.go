package report

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/rs/zerolog"
	"golang.org/x/text/cases"

	"fieldreport/internal/domain"
)

// Page geometry in millimetres. Every page is A4 portrait with equal margins.
const (
	PageWidth    = 210.0
	PageHeight   = 297.0
	Margin       = 15.0
	ContentWidth = PageWidth - 2*Margin

	photoBoxWidth  = 85.0
	photoBoxHeight = 55.0
	captionHeight  = 5.0
	lineHeight     = 5.0
	rowHeight      = 7.0
	sectionGap     = 4.0
)

type rgb struct{ r, g, b int }

var (
	colorBrand  = rgb{44, 82, 130}
	colorPanel  = rgb{247, 250, 252}
	colorBorder = rgb{226, 232, 240}
	colorGrid   = rgb{203, 213, 224}
	colorMuted  = rgb{102, 102, 102}
	colorText   = rgb{26, 32, 44}
	colorCell   = rgb{250, 250, 250}
	colorYes    = rgb{47, 133, 90}
	colorNo     = rgb{197, 48, 48}
)

// Renderer paginates layouts into PDF documents.
type Renderer struct {
	compress bool
	logger   zerolog.Logger
}

// NewRenderer creates a Renderer.
func NewRenderer(logger zerolog.Logger) *Renderer {
	return &Renderer{compress: true, logger: logger}
}

// unit is the smallest piece of content that is never split across pages.
type unit struct {
	height float64
	// keep pulls the following unit onto the same page, e.g. a heading.
	keep bool
	draw func(y float64)
}

type document struct {
	pdf    *fpdf.Fpdf
	text   *winAnsi
	labels *Labels
	upper  cases.Caser
	images int
}

// Render produces the PDF for l. Output is byte-identical for identical
// layouts: the creation date is the report timestamp and the catalog is
// sorted.
func (r *Renderer) Render(l *Layout) (*domain.DocumentArtifact, error) {
	if l == nil {
		return nil, fmt.Errorf("%w: nil layout", domain.ErrRender)
	}
	labels := l.Labels
	if labels == nil {
		labels = LabelsFor(DefaultLocale)
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(Margin, Margin, Margin)
	pdf.SetAutoPageBreak(false, Margin)
	pdf.SetCompression(r.compress)
	pdf.SetCatalogSort(true)
	stamp := l.Timestamp.Time
	if stamp.IsZero() {
		stamp = time.Unix(0, 0).UTC()
	}
	pdf.SetCreationDate(stamp)
	pdf.SetModificationDate(stamp)
	pdf.SetTitle(labels.Title+" "+l.JobID, true)
	pdf.SetCreator("fieldreport", true)
	pdf.AliasNbPages("")

	doc := &document{pdf: pdf, text: newWinAnsi(), labels: labels, upper: cases.Upper(labels.Tag)}
	pdf.SetFooterFunc(doc.pageFooter)
	pdf.AddPage()

	var units []unit
	for _, blk := range l.Blocks {
		units = append(units, doc.units(blk)...)
	}
	pages := doc.paginate(units)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrRender, err)
	}
	r.logger.Debug().
		Str("job_id", l.JobID).
		Int("blocks", len(l.Blocks)).
		Int("pages", pages).
		Int("bytes", buf.Len()).
		Msg("report rendered")
	return &domain.DocumentArtifact{Filename: l.Filename, Data: buf.Bytes(), Pages: pages}, nil
}

// paginate places units top to bottom, starting a new page whenever a unit
// does not fit together with the chain of units it is kept with. A unit
// taller than a whole page is placed at the top of a fresh page and allowed
// to overflow.
func (d *document) paginate(units []unit) int {
	limit := PageHeight - Margin
	y := Margin
	for i, u := range units {
		need := u.height
		for j := i; units[j].keep && j+1 < len(units); j++ {
			need += units[j+1].height
		}
		if y+need > limit && y > Margin {
			d.pdf.AddPage()
			y = Margin
		}
		u.draw(y)
		y += u.height
	}
	return d.pdf.PageNo()
}

func (d *document) pageFooter() {
	d.pdf.SetY(-10)
	d.font("", 7, colorMuted)
	d.pdf.CellFormat(0, 4, d.text.String(fmt.Sprintf("%s %d / {nb}", d.labels.Page, d.pdf.PageNo())), "", 0, "R", false, 0, "")
}

func (d *document) units(blk Block) []unit {
	switch b := blk.(type) {
	case *HeaderBlock:
		return d.headerUnits(b)
	case *InfoBlock:
		return []unit{d.panel(
			[2]Field{{Label: d.labels.ReportNumber, Value: b.ReportNumber}, {Label: d.labels.DateTime, Value: fmt.Sprintf("%s %s %s", b.Date, d.labels.TimeJoiner, b.Clock)}},
			[2]Field{{Label: d.labels.PerformedBy, Value: b.Technician}},
		)}
	case *SiteBlock:
		right := [2]Field{}
		if b.Customer != "" {
			right[0] = Field{Label: d.labels.Customer, Value: b.Customer}
		}
		return []unit{d.panel([2]Field{{Label: d.labels.Workplace, Value: b.Location}}, right)}
	case *TextBlock:
		return d.textUnits(b.Heading, b.Body)
	case *TripBlock:
		return d.tripUnits(b)
	case *StatusBlock:
		return d.statusUnits(b)
	case *PhotoBlock:
		return d.photoUnits(b)
	case *FooterBlock:
		return d.footerUnits(b)
	default:
		return nil
	}
}

func (d *document) font(style string, size float64, c rgb) {
	d.pdf.SetFont("Helvetica", style, size)
	d.pdf.SetTextColor(c.r, c.g, c.b)
}

func (d *document) fill(c rgb) { d.pdf.SetFillColor(c.r, c.g, c.b) }

func (d *document) stroke(c rgb) { d.pdf.SetDrawColor(c.r, c.g, c.b) }

func (d *document) cell(x, y, w, h float64, txt, align string) {
	d.pdf.SetXY(x, y)
	d.pdf.CellFormat(w, h, d.text.String(txt), "", 0, align, false, 0, "")
}

// wrap splits txt into lines fitting w at the current font.
func (d *document) wrap(txt string, w float64) []string {
	var lines []string
	for _, para := range strings.Split(txt, "\n") {
		enc := d.text.String(para)
		if strings.TrimSpace(enc) == "" {
			lines = append(lines, "")
			continue
		}
		for _, line := range d.pdf.SplitLines([]byte(enc), w) {
			lines = append(lines, string(line))
		}
	}
	return lines
}

func (d *document) spacer(h float64) unit {
	return unit{height: h, draw: func(float64) {}}
}

func (d *document) headerUnits(b *HeaderBlock) []unit {
	half := ContentWidth / 2
	top := unit{height: 14, draw: func(y float64) {
		d.font("B", 13, colorText)
		d.cell(Margin, y, half, 7, b.Company, "L")
		d.font("B", 13, colorBrand)
		d.cell(Margin+half, y, half, 7, b.Title, "R")
		d.font("", 9, colorMuted)
		d.cell(Margin, y+7, half, 5, b.OrgNr, "L")
		d.cell(Margin+half, y+7, half, 5, b.Subtitle, "R")
	}}
	bar := unit{height: 6 + sectionGap, draw: func(y float64) {
		d.fill(colorBrand)
		d.pdf.Rect(Margin, y, ContentWidth, 6, "F")
	}}
	top.keep = true
	return []unit{top, bar}
}

// panel draws the two-column boxed label/value panel used by the info and
// site blocks. Empty fields are skipped.
func (d *document) panel(left, right [2]Field) unit {
	count := func(fs [2]Field) int {
		n := 0
		for _, f := range fs {
			if f.Label != "" {
				n++
			}
		}
		return n
	}
	rows := count(left)
	if r := count(right); r > rows {
		rows = r
	}
	const pad, fieldHeight = 4.0, 10.0
	h := 2*pad + float64(rows)*fieldHeight
	return unit{height: h + sectionGap, draw: func(y float64) {
		d.fill(colorPanel)
		d.stroke(colorBorder)
		d.pdf.SetLineWidth(0.3)
		d.pdf.Rect(Margin, y, ContentWidth, h, "FD")
		colW := ContentWidth/2 - pad
		for col, fields := range [2][2]Field{left, right} {
			x := Margin + pad + float64(col)*ContentWidth/2
			fy := y + pad
			for _, f := range fields {
				if f.Label == "" {
					continue
				}
				d.font("", 7.5, colorMuted)
				d.cell(x, fy, colW, 4, d.upper.String(f.Label), "L")
				d.font("B", 10, colorText)
				d.cell(x, fy+4, colW, 5, f.Value, "L")
				fy += fieldHeight
			}
		}
	}}
}

func (d *document) heading(txt string) unit {
	return unit{height: 8, keep: true, draw: func(y float64) {
		d.font("B", 11, colorBrand)
		d.cell(Margin, y+1, ContentWidth, 6, d.upper.String(txt), "L")
	}}
}

func (d *document) textUnits(heading, body string) []unit {
	units := []unit{d.heading(heading)}
	d.font("", 10, colorText)
	lines := d.wrap(body, ContentWidth)
	for _, line := range lines {
		line := line
		units = append(units, unit{height: lineHeight, draw: func(y float64) {
			d.font("", 10, colorText)
			d.pdf.SetXY(Margin, y)
			d.pdf.CellFormat(ContentWidth, lineHeight, line, "", 0, "L", false, 0, "")
		}})
	}
	return append(units, d.spacer(sectionGap))
}

func (d *document) tripUnits(b *TripBlock) []unit {
	units := []unit{d.heading(b.Heading)}
	labelW := ContentWidth * 0.35
	for _, f := range b.Fields {
		f := f
		units = append(units, unit{height: rowHeight, draw: func(y float64) {
			d.stroke(colorGrid)
			d.pdf.SetLineWidth(0.2)
			d.pdf.Rect(Margin, y, ContentWidth, rowHeight, "D")
			d.font("B", 9, colorText)
			d.cell(Margin+2, y, labelW-2, rowHeight, f.Label, "L")
			d.font("", 9, colorText)
			d.cell(Margin+labelW, y, ContentWidth-labelW-2, rowHeight, f.Value, "L")
		}})
	}
	return append(units, d.spacer(sectionGap))
}

func (d *document) statusUnits(b *StatusBlock) []unit {
	labelW := ContentWidth * 0.6
	resultW := ContentWidth - labelW
	header := unit{height: rowHeight, keep: true, draw: func(y float64) {
		d.fill(colorBrand)
		d.stroke(colorGrid)
		d.pdf.SetLineWidth(0.2)
		d.pdf.Rect(Margin, y, ContentWidth, rowHeight, "FD")
		d.font("B", 9, rgb{255, 255, 255})
		d.cell(Margin+2, y, labelW-2, rowHeight, d.upper.String(b.Columns[0]), "L")
		d.cell(Margin+labelW, y, resultW, rowHeight, d.upper.String(b.Columns[1]), "C")
	}}
	units := []unit{d.heading(b.Heading), header}
	for _, row := range b.Rows {
		row := row
		units = append(units, unit{height: rowHeight, draw: func(y float64) {
			d.stroke(colorGrid)
			d.pdf.SetLineWidth(0.2)
			d.pdf.Rect(Margin, y, labelW, rowHeight, "D")
			d.pdf.Rect(Margin+labelW, y, resultW, rowHeight, "D")
			d.font("", 9, colorText)
			d.cell(Margin+2, y, labelW-2, rowHeight, row.Label, "L")
			d.answerMark(Margin+labelW+resultW/2-12, y+rowHeight/2, row.Answer)
			d.font("B", 9, answerColor(row.Answer))
			d.cell(Margin+labelW+resultW/2-8, y, resultW/2+8, rowHeight, row.Text, "L")
		}})
	}
	return append(units, d.spacer(sectionGap))
}

func answerColor(a Answer) rgb {
	switch a {
	case AnswerYes:
		return colorYes
	case AnswerNo:
		return colorNo
	default:
		return colorMuted
	}
}

// answerMark draws a check, a cross or a dash centred on (cx, cy). The core
// fonts have no check mark glyph, so the symbol is drawn as vector lines.
func (d *document) answerMark(cx, cy float64, a Answer) {
	d.stroke(answerColor(a))
	d.pdf.SetLineWidth(0.5)
	switch a {
	case AnswerYes:
		d.pdf.Line(cx-1.5, cy, cx-0.5, cy+1.2)
		d.pdf.Line(cx-0.5, cy+1.2, cx+1.6, cy-1.4)
	case AnswerNo:
		d.pdf.Line(cx-1.3, cy-1.3, cx+1.3, cy+1.3)
		d.pdf.Line(cx-1.3, cy+1.3, cx+1.3, cy-1.3)
	default:
		d.pdf.Line(cx-1.5, cy, cx+1.5, cy)
	}
}

func (d *document) photoUnits(b *PhotoBlock) []unit {
	units := []unit{d.heading(b.Heading)}
	half := ContentWidth / 2
	for _, row := range b.Rows() {
		row := row
		captioned := !row[0].Extra
		h := photoBoxHeight + 4
		if captioned {
			h += captionHeight
		}
		units = append(units, unit{height: h, draw: func(y float64) {
			d.fill(colorCell)
			d.stroke(colorBrand)
			d.pdf.SetLineWidth(0.3)
			d.pdf.Rect(Margin, y, ContentWidth, h, "FD")
			for i, c := range row {
				x := Margin + float64(i)*half
				box := x + (half-photoBoxWidth)/2
				if c.Available() {
					d.image(c, box, y+2)
				} else {
					d.placeholder(c, box, y+2)
				}
				if captioned {
					d.font("B", 8, colorText)
					d.cell(x, y+2+photoBoxHeight+1, half, captionHeight, c.Caption(), "C")
				}
			}
		}})
	}
	return append(units, d.spacer(sectionGap))
}

func (d *document) image(c PhotoCell, x, y float64) {
	d.images++
	name := fmt.Sprintf("photo-%03d-%s", d.images, c.Key)
	opts := fpdf.ImageOptions{ImageType: "JPG"}
	info := d.pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(c.Image.Data))
	if info == nil || d.pdf.Err() {
		return
	}
	w, h := fitBox(float64(c.Image.Width), float64(c.Image.Height), photoBoxWidth, photoBoxHeight)
	d.pdf.ImageOptions(name, x+(photoBoxWidth-w)/2, y+(photoBoxHeight-h)/2, w, h, false, opts, 0, "")
}

func (d *document) placeholder(c PhotoCell, x, y float64) {
	d.stroke(colorGrid)
	d.pdf.SetLineWidth(0.3)
	d.pdf.SetDashPattern([]float64{1.5, 1.5}, 0)
	d.pdf.Rect(x, y, photoBoxWidth, photoBoxHeight, "D")
	d.pdf.SetDashPattern([]float64{}, 0)
	mid := y + photoBoxHeight/2
	d.font("B", 10, colorMuted)
	d.cell(x, mid-6, photoBoxWidth, 6, c.Label, "C")
	d.font("", 9, colorMuted)
	d.cell(x, mid, photoBoxWidth, 6, c.Placeholder, "C")
}

// fitBox scales (w, h) to fit inside (maxW, maxH) keeping the aspect ratio.
func fitBox(w, h, maxW, maxH float64) (float64, float64) {
	if w <= 0 || h <= 0 {
		return maxW, maxH
	}
	scale := maxW / w
	if s := maxH / h; s < scale {
		scale = s
	}
	return w * scale, h * scale
}

func (d *document) footerUnits(b *FooterBlock) []unit {
	d.font("", 7, colorMuted)
	lines := d.wrap(b.Text, ContentWidth)
	h := 2 + 2 + float64(len(lines))*3.5
	return []unit{d.spacer(sectionGap), {height: h, draw: func(y float64) {
		d.fill(colorBrand)
		d.pdf.Rect(Margin, y, ContentWidth, 2, "F")
		d.font("", 7, colorMuted)
		for i, line := range lines {
			d.pdf.SetXY(Margin, y+4+float64(i)*3.5)
			d.pdf.CellFormat(ContentWidth, 3.5, line, "", 0, "C", false, 0, "")
		}
	}}}
}
