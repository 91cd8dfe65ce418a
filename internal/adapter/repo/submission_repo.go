package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"fieldreport/internal/domain"
	"fieldreport/internal/infra"
	"fieldreport/internal/sqlinline"
)

// SubmissionRepositoryPG implements domain.SubmissionRepository on the
// marker-tagged SQL runner.
type SubmissionRepositoryPG struct {
	sql infra.SQLExecutor
	now func() time.Time
}

// NewSubmissionRepository creates a submission repository.
func NewSubmissionRepository(sql infra.SQLExecutor) *SubmissionRepositoryPG {
	return &SubmissionRepositoryPG{sql: sql, now: time.Now}
}

// EnsureSchema creates the tables used by the service when they are missing.
func (r *SubmissionRepositoryPG) EnsureSchema(ctx context.Context) error {
	if _, err := r.sql.Exec(ctx, sqlinline.QEnsureSchema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// Create inserts a submission. ID and ReceivedAt are filled in when empty.
func (r *SubmissionRepositoryPG) Create(ctx context.Context, s *domain.Submission) error {
	if s == nil || s.JobID == "" {
		return domain.ErrMissingID
	}
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.ReceivedAt.IsZero() {
		s.ReceivedAt = r.now().UTC()
	}
	_, err := r.sql.Exec(ctx, sqlinline.QInsertSubmission,
		s.ID,
		s.JobID,
		s.ReceivedAt,
		nullableBytes(s.RecordJSON),
		s.ReportKey,
		string(s.DeliveryStatus),
		s.DeliveryReason,
		s.Recipient,
		s.Country,
	)
	if err != nil {
		return fmt.Errorf("insert submission %s: %w", s.JobID, err)
	}
	return nil
}

// GetByJobID returns the most recent submission for a job.
func (r *SubmissionRepositoryPG) GetByJobID(ctx context.Context, jobID string) (*domain.Submission, error) {
	row := r.sql.QueryRow(ctx, sqlinline.QSelectLatestSubmission, jobID)
	var (
		s      domain.Submission
		status string
	)
	if err := row.Scan(
		&s.ID,
		&s.JobID,
		&s.ReceivedAt,
		&s.RecordJSON,
		&s.ReportKey,
		&status,
		&s.DeliveryReason,
		&s.Recipient,
		&s.Country,
	); err != nil {
		if infra.IsNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	s.DeliveryStatus = domain.DeliveryStatus(status)
	return &s, nil
}

func nullableBytes(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	return b
}

var _ domain.SubmissionRepository = (*SubmissionRepositoryPG)(nil)
