package report

import "testing"

func TestNegotiateLocale(t *testing.T) {
	tests := []struct {
		pref, fallback, want string
	}{
		{pref: "", fallback: "nb", want: "nb"},
		{pref: "", fallback: "en", want: "en"},
		{pref: "", fallback: "de", want: "nb"},
		{pref: "en-US,en;q=0.9", fallback: "nb", want: "en"},
		{pref: "nb-NO", fallback: "en", want: "nb"},
		{pref: "ja", fallback: "en", want: "en"},
		{pref: ";;;", fallback: "nb", want: "nb"},
	}
	for _, tc := range tests {
		if got := NegotiateLocale(tc.pref, tc.fallback); got != tc.want {
			t.Errorf("NegotiateLocale(%q, %q) = %q, want %q", tc.pref, tc.fallback, got, tc.want)
		}
	}
}

func TestAnswerOf(t *testing.T) {
	yes, no := true, false
	l := LabelsFor("en")
	if got := l.AnswerText(AnswerOf(nil)); got != "UNKNOWN" {
		t.Fatalf("nil = %q", got)
	}
	if got := l.AnswerText(AnswerOf(&yes)); got != "YES" {
		t.Fatalf("true = %q", got)
	}
	if got := l.AnswerText(AnswerOf(&no)); got != "NO" {
		t.Fatalf("false = %q", got)
	}
}

func TestCatalogsCoverFixedSlots(t *testing.T) {
	for _, locale := range []string{"nb", "en"} {
		l := LabelsFor(locale)
		for _, slot := range []string{"before", "during", "detail", "after"} {
			found := false
			for k, v := range l.PhotoLabels {
				if string(k) == slot && v != "" && l.PhotoHints[k] != "" {
					found = true
				}
			}
			if !found {
				t.Errorf("%s: slot %s has no label", locale, slot)
			}
		}
	}
}
