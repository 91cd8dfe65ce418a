package domain

import (
	"context"
	"time"
)

// Submission is the persisted trace of one processed job record.
type Submission struct {
	ID             string
	JobID          string
	ReceivedAt     time.Time
	RecordJSON     []byte
	ReportKey      string
	DeliveryStatus DeliveryStatus
	DeliveryReason string
	Recipient      string
	Country        string
}

// SubmissionRepository stores processed submissions.
type SubmissionRepository interface {
	Create(ctx context.Context, s *Submission) error
	GetByJobID(ctx context.Context, jobID string) (*Submission, error)
}
