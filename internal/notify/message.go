package notify

import (
	"fmt"
	"strings"

	"fieldreport/internal/domain"
	"fieldreport/internal/report"
)

// ReportMessage composes the email that carries a rendered report. Text comes
// from the layout's label catalog so the mail matches the document language.
func ReportMessage(rec *domain.JobRecord, l *report.Layout, to string, attachments domain.AttachmentSet) Message {
	labels := l.Labels
	if labels == nil {
		labels = report.LabelsFor(report.DefaultLocale)
	}
	tech := strings.TrimSpace(rec.Technician.Name)
	if tech == "" {
		tech = labels.Missing
	}
	company := strings.TrimSpace(l.Company.Name)
	if company == "" {
		company = labels.Missing
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n", labels.MailIntro)
	fmt.Fprintf(&b, "%s: %s\n", labels.Technician, tech)
	fmt.Fprintf(&b, "%s: %s %s\n", labels.Timestamp, l.Timestamp.Time.Format("2006-01-02"), l.Timestamp.Clock())
	fmt.Fprintf(&b, "%s: %s\n\n", labels.Company, company)
	fmt.Fprintf(&b, "%s:\n", labels.Status)
	answers := [3]*bool{rec.Answers.Completed, rec.Answers.Materials, rec.Answers.Followup}
	for i, a := range answers {
		fmt.Fprintf(&b, "- %s: %s\n", labels.Checklist[i], labels.AnswerText(report.AnswerOf(a)))
	}
	fmt.Fprintf(&b, "\n%s\n\n---\n%s\n", labels.MailOutro, labels.MailSign)

	return Message{
		To:          to,
		Subject:     fmt.Sprintf("%s - %s - %s", labels.MailSubject, tech, l.Timestamp.Time.Format("20060102")),
		Body:        b.String(),
		Attachments: attachments,
	}
}
