package report

import (
	"strings"

	"golang.org/x/text/language"

	"fieldreport/internal/domain"
)

// Labels is the fixed text catalog of one report language.
type Labels struct {
	Locale string
	Tag    language.Tag

	Title    string
	Subtitle string
	OrgNr    string
	Company  string
	Missing  string

	ReportNumber string
	DateTime     string
	TimeJoiner   string
	PerformedBy  string
	Workplace    string
	Customer     string
	GPS          string
	NoLocation   string

	Description  string
	Trip         string
	TripStart    string
	TripEnd      string
	TripDistance string
	Materials    string
	Notes        string

	Status     string
	Checkpoint string
	Result     string
	Checklist  [3]string
	Yes        string
	No         string
	Unknown    string

	Photos       string
	PhotoLabels  map[domain.Slot]string
	PhotoHints   map[domain.Slot]string
	PhotoAbsent  string
	PhotoBroken  string
	ExtraPhotos  string
	FooterFormat string
	Page         string

	Received    string
	MailSubject string
	MailIntro   string
	MailOutro   string
	MailSign    string
	Technician  string
	Timestamp   string
}

var norwegian = Labels{
	Locale: "nb",
	Tag:    language.MustParse("nb"),

	Title:    "SERVICERAPPORT",
	Subtitle: "Dokumentasjon av utført arbeid",
	OrgNr:    "Org.nr",
	Company:  "Firma",
	Missing:  "N/A",

	ReportNumber: "Rapportnummer",
	DateTime:     "Dato / tid",
	TimeJoiner:   "kl.",
	PerformedBy:  "Utført av",
	Workplace:    "Arbeidssted",
	Customer:     "Kunde",
	GPS:          "GPS",
	NoLocation:   "Ikke tilgjengelig",

	Description:  "Beskrivelse av arbeid",
	Trip:         "Kjøring",
	TripStart:    "Start",
	TripEnd:      "Slutt",
	TripDistance: "Distanse",
	Materials:    "Materialer",
	Notes:        "Notater",

	Status:     "Status",
	Checkpoint: "Kontrollpunkt",
	Result:     "Resultat",
	Checklist:  [3]string{"Arbeid fullført", "Materialer byttet", "Oppfølging påkrevd"},
	Yes:        "JA",
	No:         "NEI",
	Unknown:    "UKJENT",

	Photos: "Fotodokumentasjon",
	PhotoLabels: map[domain.Slot]string{
		domain.SlotBefore: "FØR",
		domain.SlotDuring: "ÅPENT",
		domain.SlotDetail: "DETALJ",
		domain.SlotAfter:  "ETTER",
	},
	PhotoHints: map[domain.Slot]string{
		domain.SlotBefore: "Utgangspunkt",
		domain.SlotDuring: "Under arbeid",
		domain.SlotDetail: "Viktig info",
		domain.SlotAfter:  "Ferdig resultat",
	},
	PhotoAbsent:  "(Ikke tatt)",
	PhotoBroken:  "(Ikke tilgjengelig)",
	ExtraPhotos:  "Flere bilder",
	FooterFormat: "Dokumentasjon i henhold til TEK17 §4-1 (FDV) | %s | %s",
	Page:         "Side",

	Received:    "Jobb mottatt og behandlet",
	MailSubject: "Jobbrapport",
	MailIntro:   "Ny jobbrapport mottatt.",
	MailOutro:   "Se vedlagt PDF for detaljer og bilder.",
	MailSign:    "Automatisk generert av Pipeline V0",
	Technician:  "Rørlegger",
	Timestamp:   "Tidspunkt",
}

var english = Labels{
	Locale: "en",
	Tag:    language.English,

	Title:    "SERVICE REPORT",
	Subtitle: "Documentation of completed work",
	OrgNr:    "Reg. no",
	Company:  "Company",
	Missing:  "N/A",

	ReportNumber: "Report number",
	DateTime:     "Date / time",
	TimeJoiner:   "at",
	PerformedBy:  "Performed by",
	Workplace:    "Work site",
	Customer:     "Customer",
	GPS:          "GPS",
	NoLocation:   "Not available",

	Description:  "Work description",
	Trip:         "Travel",
	TripStart:    "Start",
	TripEnd:      "End",
	TripDistance: "Distance",
	Materials:    "Materials",
	Notes:        "Notes",

	Status:     "Status",
	Checkpoint: "Checkpoint",
	Result:     "Result",
	Checklist:  [3]string{"Work completed", "Materials replaced", "Follow-up required"},
	Yes:        "YES",
	No:         "NO",
	Unknown:    "UNKNOWN",

	Photos: "Photo documentation",
	PhotoLabels: map[domain.Slot]string{
		domain.SlotBefore: "BEFORE",
		domain.SlotDuring: "OPENED",
		domain.SlotDetail: "DETAIL",
		domain.SlotAfter:  "AFTER",
	},
	PhotoHints: map[domain.Slot]string{
		domain.SlotBefore: "Starting point",
		domain.SlotDuring: "Work in progress",
		domain.SlotDetail: "Important detail",
		domain.SlotAfter:  "Finished result",
	},
	PhotoAbsent:  "(Not taken)",
	PhotoBroken:  "(Not available)",
	ExtraPhotos:  "More photos",
	FooterFormat: "Documentation according to TEK17 §4-1 (FDV) | %s | %s",
	Page:         "Page",

	Received:    "Job received and processed",
	MailSubject: "Job report",
	MailIntro:   "A new job report was received.",
	MailOutro:   "See the attached PDF for details and photos.",
	MailSign:    "Generated automatically by Pipeline V0",
	Technician:  "Technician",
	Timestamp:   "Time",
}

var (
	catalogs = map[string]*Labels{"nb": &norwegian, "en": &english}
	matcher  = language.NewMatcher([]language.Tag{norwegian.Tag, english.Tag})
)

// DefaultLocale is used when nothing else matches.
const DefaultLocale = "nb"

// LabelsFor returns the catalog for a locale, falling back to Norwegian.
func LabelsFor(locale string) *Labels {
	if l, ok := catalogs[NegotiateLocale(locale, DefaultLocale)]; ok {
		return l
	}
	return &norwegian
}

// NegotiateLocale matches an Accept-Language style preference list against the
// supported catalogs. An empty or unparsable preference yields fallback.
func NegotiateLocale(preference, fallback string) string {
	if _, ok := catalogs[fallback]; !ok {
		fallback = DefaultLocale
	}
	preference = strings.TrimSpace(preference)
	if preference == "" {
		return fallback
	}
	tags, _, err := language.ParseAcceptLanguage(preference)
	if err != nil || len(tags) == 0 {
		return fallback
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return fallback
	}
	if idx == 1 {
		return "en"
	}
	return "nb"
}

// Answer is the ternary state of one checklist item.
type Answer int

const (
	AnswerUnknown Answer = iota
	AnswerYes
	AnswerNo
)

// AnswerOf maps an optional boolean without coercing nil to "no".
func AnswerOf(v *bool) Answer {
	switch {
	case v == nil:
		return AnswerUnknown
	case *v:
		return AnswerYes
	default:
		return AnswerNo
	}
}

// AnswerText returns the label of an answer.
func (l *Labels) AnswerText(a Answer) string {
	switch a {
	case AnswerYes:
		return l.Yes
	case AnswerNo:
		return l.No
	default:
		return l.Unknown
	}
}
