package report

import (
	"bytes"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/png"
	"reflect"
	"strings"
	"testing"
	"time"

	"fieldreport/internal/domain"
)

func testPhoto(t *testing.T, w, h int) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(3 * x), G: uint8(2 * y), B: 90, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png encode: %v", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

func fixedClock() time.Time {
	return time.Date(2025, 6, 7, 8, 9, 0, 0, time.UTC)
}

func newTestBuilder(opts ...BuilderOption) *Builder {
	return NewBuilder(nil, append([]BuilderOption{WithClock(fixedClock)}, opts...)...)
}

func scenarioRecord(t *testing.T) *domain.JobRecord {
	t.Helper()
	rec := &domain.JobRecord{
		ID:         "J-100",
		Timestamp:  "2024-03-01T14:30:00Z",
		Company:    domain.Company{Name: "VVS Eksempel AS", OrgNr: "987 654 321", Phone: "+47 22 33 44 55"},
		Technician: domain.Person{Name: "Ola Nordmann"},
	}
	rec.Photos.Set(domain.SlotBefore, domain.RawPhoto(testPhoto(t, 64, 48)))
	return rec
}

func TestBuildScenario(t *testing.T) {
	l, err := newTestBuilder().Build(scenarioRecord(t), "")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	want := []BlockKind{KindHeader, KindInfo, KindSite, KindStatus, KindPhotos, KindFooter}
	if got := l.Kinds(); !reflect.DeepEqual(got, want) {
		t.Fatalf("kinds = %v, want %v", got, want)
	}

	info := l.Find(KindInfo).(*InfoBlock)
	if info.Date != "01.03.2024" || info.Clock != "14:30" || info.Fallback {
		t.Fatalf("info = %+v", info)
	}
	if info.ReportNumber != "J-100" || info.Technician != "Ola Nordmann" {
		t.Fatalf("info = %+v", info)
	}

	status := l.Find(KindStatus).(*StatusBlock)
	if len(status.Rows) != 3 {
		t.Fatalf("status rows = %d", len(status.Rows))
	}
	for _, row := range status.Rows {
		if row.Answer != AnswerUnknown || row.Text != "UKJENT" {
			t.Fatalf("row %q = %v %q, want unknown", row.Label, row.Answer, row.Text)
		}
	}

	photos := l.Find(KindPhotos).(*PhotoBlock)
	if len(photos.Cells) != 4 {
		t.Fatalf("cells = %d, want 4", len(photos.Cells))
	}
	if !photos.Cells[0].Available() || photos.Cells[0].Key != "before" {
		t.Fatalf("before cell = %+v", photos.Cells[0])
	}
	for _, c := range photos.Cells[1:] {
		if c.Available() || c.Placeholder != "(Ikke tatt)" || c.Label == "" {
			t.Fatalf("cell %s = %+v, want labelled placeholder", c.Key, c)
		}
	}

	header := l.Find(KindHeader).(*HeaderBlock)
	if header.Company != "VVS Eksempel AS" || header.OrgNr != "Org.nr: 987 654 321" || header.Title != "SERVICERAPPORT" {
		t.Fatalf("header = %+v", header)
	}
	footer := l.Find(KindFooter).(*FooterBlock)
	if !strings.Contains(footer.Text, "VVS Eksempel AS") || !strings.Contains(footer.Text, "+47 22 33 44 55") {
		t.Fatalf("footer = %q", footer.Text)
	}
	if l.Filename != "rapport_J-100.pdf" {
		t.Fatalf("filename = %q", l.Filename)
	}
}

func TestBuildTimestampFallback(t *testing.T) {
	for _, ts := range []string{"", "yesterday", "2024-13-45T99:00:00Z"} {
		rec := scenarioRecord(t)
		rec.Timestamp = ts
		l, err := newTestBuilder().Build(rec, "")
		if err != nil {
			t.Fatalf("Build(%q): %v", ts, err)
		}
		info := l.Find(KindInfo).(*InfoBlock)
		if !info.Fallback || !l.Timestamp.Fallback {
			t.Fatalf("timestamp %q should fall back", ts)
		}
		if info.Date != "07.06.2025" || info.Clock != "08:09" {
			t.Fatalf("fallback time = %s %s", info.Date, info.Clock)
		}
	}
}

func TestBuildOptionalSections(t *testing.T) {
	dist := 12.345
	yes, no := true, false
	rec := scenarioRecord(t)
	rec.Description = "Byttet blandebatteri"
	rec.Materials = []string{"Rør 15mm", " ", "Pakning"}
	rec.Notes = "Kunden var fornøyd"
	rec.Trip = &domain.Trip{DistanceKm: &dist}
	rec.Answers = domain.AnswerSet{Completed: &yes, Materials: &no}

	l, err := newTestBuilder().Build(rec, "")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	want := []BlockKind{KindHeader, KindInfo, KindSite, KindDescription, KindTrip, KindMaterials, KindStatus, KindPhotos, KindNotes, KindFooter}
	if got := l.Kinds(); !reflect.DeepEqual(got, want) {
		t.Fatalf("kinds = %v, want %v", got, want)
	}
	if m := l.Find(KindMaterials).(*TextBlock); m.Body != "Rør 15mm, Pakning" {
		t.Fatalf("materials = %q", m.Body)
	}
	trip := l.Find(KindTrip).(*TripBlock)
	if len(trip.Fields) != 1 || trip.Fields[0].Value != "12.3 km" {
		t.Fatalf("trip = %+v", trip.Fields)
	}
	status := l.Find(KindStatus).(*StatusBlock)
	got := []Answer{status.Rows[0].Answer, status.Rows[1].Answer, status.Rows[2].Answer}
	if !reflect.DeepEqual(got, []Answer{AnswerYes, AnswerNo, AnswerUnknown}) {
		t.Fatalf("answers = %v", got)
	}
}

func TestBuildBlankSectionsSuppressed(t *testing.T) {
	rec := scenarioRecord(t)
	rec.Description = "   "
	rec.Materials = []string{"", "  "}
	rec.Notes = "\n"
	rec.Trip = &domain.Trip{}
	l, err := newTestBuilder().Build(rec, "")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	for _, kind := range []BlockKind{KindDescription, KindMaterials, KindNotes, KindTrip} {
		if l.Find(kind) != nil {
			t.Fatalf("%s block should be omitted", kind)
		}
	}
}

func TestBuildTripTimes(t *testing.T) {
	start := float64(time.Date(2024, 3, 1, 7, 5, 0, 0, time.UTC).UnixMilli())
	end := float64(time.Date(2024, 3, 1, 7, 50, 0, 0, time.UTC).UnixMilli())
	rec := scenarioRecord(t)
	rec.Trip = &domain.Trip{StartTime: &start, EndTime: &end}
	l, err := newTestBuilder().Build(rec, "")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	trip := l.Find(KindTrip).(*TripBlock)
	want := []Field{{Label: "Start", Value: "07:05"}, {Label: "Slutt", Value: "07:50"}}
	if !reflect.DeepEqual(trip.Fields, want) {
		t.Fatalf("trip = %+v", trip.Fields)
	}
}

func TestBuildLocation(t *testing.T) {
	lat, lng := 59.913868, 10.752245
	tests := []struct {
		name string
		loc  *domain.Location
		want string
	}{
		{name: "address preferred", loc: &domain.Location{Lat: &lat, Lng: &lng, Address: "Storgata 1, Oslo"}, want: "Storgata 1, Oslo"},
		{name: "coordinates", loc: &domain.Location{Lat: &lat, Lng: &lng}, want: "GPS: 59.91387, 10.75225"},
		{name: "half coordinates", loc: &domain.Location{Lat: &lat}, want: "Ikke tilgjengelig"},
		{name: "none", loc: nil, want: "Ikke tilgjengelig"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := scenarioRecord(t)
			rec.Location = tc.loc
			l, err := newTestBuilder().Build(rec, "")
			if err != nil {
				t.Fatalf("Build: %v", err)
			}
			if got := l.Find(KindSite).(*SiteBlock).Location; got != tc.want {
				t.Fatalf("location = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestBuildPhotoGrid(t *testing.T) {
	rec := scenarioRecord(t)
	rec.Photos.Set(domain.SlotDetail, domain.RawPhoto("not base64 at all"))
	rec.Photos.Set(domain.SlotAfter, &domain.PhotoPayload{Kind: domain.PayloadMalformed})
	rec.Photos.AddExtra("roof", domain.WrappedPhoto(testPhoto(t, 30, 30)))
	rec.Photos.AddExtra("broken", domain.RawPhoto("####"))
	rec.Photos.AddExtra("attic", domain.RawPhoto(testPhoto(t, 20, 40)))

	l, err := newTestBuilder().Build(rec, "")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	photos := l.Find(KindPhotos).(*PhotoBlock)
	if len(photos.Cells) != 6 {
		t.Fatalf("cells = %d, want 4 fixed + 2 valid extras", len(photos.Cells))
	}
	if c := photos.Cells[2]; c.Available() || c.Placeholder != "(Ikke tilgjengelig)" {
		t.Fatalf("detail cell = %+v", c)
	}
	if c := photos.Cells[3]; c.Available() || c.Placeholder != "(Ikke tilgjengelig)" {
		t.Fatalf("after cell = %+v", c)
	}
	if photos.Cells[4].Key != "roof" || photos.Cells[5].Key != "attic" || !photos.Cells[4].Extra {
		t.Fatalf("extras = %+v %+v", photos.Cells[4], photos.Cells[5])
	}
	if photos.Cells[4].Caption() != "" || photos.Cells[0].Caption() != "FØR - Utgangspunkt" {
		t.Fatalf("captions = %q %q", photos.Cells[4].Caption(), photos.Cells[0].Caption())
	}
	rows := photos.Rows()
	if len(rows) != 3 || len(rows[0]) != 2 || len(rows[1]) != 2 || len(rows[2]) != 2 {
		t.Fatalf("rows = %d", len(rows))
	}
}

func TestBuildRejectsMissingID(t *testing.T) {
	if _, err := newTestBuilder().Build(&domain.JobRecord{}, ""); !errors.Is(err, domain.ErrMissingID) {
		t.Fatalf("err = %v", err)
	}
	if _, err := newTestBuilder().Build(nil, ""); !errors.Is(err, domain.ErrInvalidRecord) {
		t.Fatalf("err = %v", err)
	}
}

func TestBuildTruncatesReportNumber(t *testing.T) {
	rec := scenarioRecord(t)
	rec.ID = "øøøøøøøøøø-1234567890"
	l, err := newTestBuilder().Build(rec, "")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if got := l.Find(KindInfo).(*InfoBlock).ReportNumber; got != "øøøøøøøøøø-12345" {
		t.Fatalf("report number = %q", got)
	}
}

func TestBuildDefaultsAndLocale(t *testing.T) {
	rec := scenarioRecord(t)
	rec.Company = domain.Company{}
	rec.Technician = domain.Person{}
	b := newTestBuilder(WithDefaultCompany(domain.Company{Name: "Default Rør AS", Phone: "123"}))

	l, err := b.Build(rec, "en-GB,en;q=0.8")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if l.Labels.Locale != "en" {
		t.Fatalf("locale = %q", l.Labels.Locale)
	}
	header := l.Find(KindHeader).(*HeaderBlock)
	if header.Company != "Default Rør AS" || header.OrgNr != "Reg. no: N/A" || header.Title != "SERVICE REPORT" {
		t.Fatalf("header = %+v", header)
	}
	if got := l.Find(KindInfo).(*InfoBlock).Technician; got != "N/A" {
		t.Fatalf("technician = %q", got)
	}
	if got := l.Find(KindStatus).(*StatusBlock).Rows[0].Text; got != "UNKNOWN" {
		t.Fatalf("status text = %q", got)
	}
}

func TestBuildIsIdempotent(t *testing.T) {
	b := newTestBuilder()
	first, err := b.Build(scenarioRecord(t), "")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	second, err := b.Build(scenarioRecord(t), "")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("layouts differ for identical input")
	}
}
