package repo

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"fieldreport/internal/domain"
	"fieldreport/internal/sqlinline"
)

type stubExecutor struct {
	queries []string
	args    [][]any
	err     error
	row     pgx.Row
}

func (s *stubExecutor) Exec(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error) {
	s.queries = append(s.queries, query)
	s.args = append(s.args, args)
	return pgconn.NewCommandTag("INSERT 0 1"), s.err
}

func (s *stubExecutor) QueryRow(ctx context.Context, query string, args ...any) pgx.Row {
	s.queries = append(s.queries, query)
	s.args = append(s.args, args)
	return s.row
}

func (s *stubExecutor) Query(ctx context.Context, query string, args ...any) (pgx.Rows, error) {
	return nil, errors.New("not implemented")
}

type stubRow struct {
	values []any
	err    error
}

func (r stubRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	if len(dest) != len(r.values) {
		return errors.New("dest count mismatch")
	}
	for i, v := range r.values {
		switch d := dest[i].(type) {
		case *string:
			*d = v.(string)
		case *time.Time:
			*d = v.(time.Time)
		case *[]byte:
			*d = v.([]byte)
		default:
			return errors.New("unsupported dest")
		}
	}
	return nil
}

func TestCreateSubmission(t *testing.T) {
	exec := &stubExecutor{}
	repo := NewSubmissionRepository(exec)
	fixed := time.Date(2024, 3, 1, 14, 31, 0, 0, time.UTC)
	repo.now = func() time.Time { return fixed }

	sub := &domain.Submission{
		JobID:          "J-100",
		RecordJSON:     []byte(`{"id":"J-100"}`),
		ReportKey:      "rapport_J-100.pdf",
		DeliveryStatus: domain.DeliverySkipped,
	}
	if err := repo.Create(context.Background(), sub); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if sub.ID == "" || !sub.ReceivedAt.Equal(fixed) {
		t.Fatalf("defaults not applied: %+v", sub)
	}
	if len(exec.queries) != 1 || exec.queries[0] != sqlinline.QInsertSubmission {
		t.Fatalf("unexpected query: %v", exec.queries)
	}
	if !strings.HasPrefix(exec.queries[0], "--sql ") {
		t.Fatal("query is not marker-tagged")
	}
	args := exec.args[0]
	if len(args) != 9 || args[1] != "J-100" || args[5] != "skipped" {
		t.Fatalf("args = %v", args)
	}
}

func TestCreateSubmissionRequiresJobID(t *testing.T) {
	repo := NewSubmissionRepository(&stubExecutor{})
	if err := repo.Create(context.Background(), &domain.Submission{}); !errors.Is(err, domain.ErrMissingID) {
		t.Fatalf("err = %v", err)
	}
}

func TestCreateSubmissionWrapsErrors(t *testing.T) {
	boom := errors.New("connection reset")
	repo := NewSubmissionRepository(&stubExecutor{err: boom})
	err := repo.Create(context.Background(), &domain.Submission{JobID: "J-1"})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
}

func TestGetByJobID(t *testing.T) {
	received := time.Date(2024, 3, 1, 14, 31, 0, 0, time.UTC)
	exec := &stubExecutor{row: stubRow{values: []any{
		"6f1f6c1e-0000-4000-8000-000000000001", "J-100", received, []byte(`{}`),
		"rapport_J-100.pdf", "sent", "", "office@example.com", "NO",
	}}}
	sub, err := NewSubmissionRepository(exec).GetByJobID(context.Background(), "J-100")
	if err != nil {
		t.Fatalf("GetByJobID: %v", err)
	}
	if sub.DeliveryStatus != domain.DeliverySent || sub.Country != "NO" || !sub.ReceivedAt.Equal(received) {
		t.Fatalf("submission = %+v", sub)
	}
	if exec.args[0][0] != "J-100" {
		t.Fatalf("args = %v", exec.args[0])
	}
}

func TestGetByJobIDNotFound(t *testing.T) {
	exec := &stubExecutor{row: stubRow{err: pgx.ErrNoRows}}
	if _, err := NewSubmissionRepository(exec).GetByJobID(context.Background(), "nope"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v", err)
	}
}

func TestEnsureSchema(t *testing.T) {
	exec := &stubExecutor{}
	if err := NewSubmissionRepository(exec).EnsureSchema(context.Background()); err != nil {
		t.Fatalf("EnsureSchema: %v", err)
	}
	if exec.queries[0] != sqlinline.QEnsureSchema {
		t.Fatal("schema statement not executed")
	}
}
