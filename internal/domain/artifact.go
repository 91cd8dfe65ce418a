package domain

import (
	"regexp"
	"strings"
)

// DocumentArtifact is the rendered report. It is never mutated after creation.
type DocumentArtifact struct {
	Filename string
	Data     []byte
	Pages    int
}

// Attachment is one file of an outgoing message.
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// AttachmentSet is the ordered list of files sent with a report.
type AttachmentSet []Attachment

// Filenames returns the attachment names in order.
func (s AttachmentSet) Filenames() []string {
	names := make([]string, len(s))
	for i, a := range s {
		names[i] = a.Filename
	}
	return names
}

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// SafeFilenamePart reduces a job identifier to a file-system friendly token.
func SafeFilenamePart(id string) string {
	cleaned := unsafeFilenameChars.ReplaceAllString(strings.TrimSpace(id), "_")
	cleaned = strings.Trim(cleaned, "._")
	if cleaned == "" {
		return "unknown"
	}
	if len(cleaned) > 64 {
		cleaned = cleaned[:64]
	}
	return cleaned
}

// ReportFilename is the suggested filename of a job's PDF.
func ReportFilename(jobID string) string {
	return "rapport_" + SafeFilenamePart(jobID) + ".pdf"
}
