package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/wneessen/go-mail"

	"fieldreport/internal/domain"
	"fieldreport/internal/middleware"
	"fieldreport/internal/notify"
	"fieldreport/internal/pipeline"
	"fieldreport/internal/storage"
)

type stubSubmissions struct {
	mu    sync.Mutex
	items []*domain.Submission
	err   error
}

func (s *stubSubmissions) Create(_ context.Context, sub *domain.Submission) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	sub.ID = "sub-1"
	s.items = append(s.items, sub)
	return nil
}

func (s *stubSubmissions) GetByJobID(_ context.Context, jobID string) (*domain.Submission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.items) - 1; i >= 0; i-- {
		if s.items[i].JobID == jobID {
			return s.items[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

var received = time.Date(2024, 3, 1, 14, 30, 5, 0, time.UTC)

func newTestApp(t *testing.T, subs domain.SubmissionRepository) *App {
	t.Helper()
	store, err := storage.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	p := pipeline.New(pipeline.Config{Logger: zerolog.Nop()})
	app := NewApp(p, store, subs, zerolog.Nop())
	app.Now = func() time.Time { return received }
	return app
}

const submission = `{
	"id": "J-100",
	"timestamp": "2024-03-01T14:30:00Z",
	"plumber": {"name": "Ola Nordmann"},
	"description": "Replaced valve",
	"photos": {"before": "", "after": "bm90LWFuLWltYWdl"},
	"answers": {"completed": true, "materials": false}
}`

func TestSubmitProducesReport(t *testing.T) {
	subs := &stubSubmissions{}
	app := newTestApp(t, subs)

	req := httptest.NewRequest(http.MethodPost, "/api/submit", strings.NewReader(submission))
	ctx := context.WithValue(req.Context(), middleware.CountryKey, "NO")
	rr := httptest.NewRecorder()
	app.Submit(rr, req.WithContext(ctx))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", rr.Code, rr.Body.String())
	}
	var resp submitResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Success || !resp.PDFGenerated || resp.EmailSent {
		t.Fatalf("response = %+v", resp)
	}
	if resp.Delivery.Status != domain.DeliverySkipped {
		t.Fatalf("delivery = %+v", resp.Delivery)
	}
	if resp.Message != "Jobb mottatt og behandlet" {
		t.Fatalf("message = %q", resp.Message)
	}
	if resp.Report != "rapport_J-100_20240301_143005.pdf" {
		t.Fatalf("report key = %q", resp.Report)
	}

	data, err := os.ReadFile(filepath.Join(app.Store.BasePath(), resp.Report))
	if err != nil || !strings.HasPrefix(string(data), "%PDF") {
		t.Fatalf("stored report: %v", err)
	}
	record, err := os.ReadFile(filepath.Join(app.Store.BasePath(), "job_J-100_20240301_143005.json"))
	if err != nil {
		t.Fatalf("stored record: %v", err)
	}
	if strings.Contains(string(record), "bm90LWFuLWltYWdl") {
		t.Fatalf("photo data leaked into stored record")
	}

	if len(subs.items) != 1 {
		t.Fatalf("submissions = %d", len(subs.items))
	}
	got := subs.items[0]
	if got.JobID != "J-100" || got.Country != "NO" || got.DeliveryStatus != domain.DeliverySkipped || got.ReportKey != resp.Report {
		t.Fatalf("submission = %+v", got)
	}
}

func TestSubmitRejectsBadRequests(t *testing.T) {
	tests := []struct {
		name string
		body string
		max  int64
		want int
	}{
		{name: "invalid json", body: `{"id":`, want: http.StatusBadRequest},
		{name: "missing id", body: `{"timestamp":"2024-03-01T14:30:00Z"}`, want: http.StatusBadRequest},
		{name: "blank id", body: `{"id":"   "}`, want: http.StatusBadRequest},
		{name: "too large", body: submission, max: 16, want: http.StatusRequestEntityTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			subs := &stubSubmissions{}
			app := newTestApp(t, subs)
			if tt.max > 0 {
				app.MaxBodyBytes = tt.max
			}
			rr := httptest.NewRecorder()
			app.Submit(rr, httptest.NewRequest(http.MethodPost, "/api/submit", strings.NewReader(tt.body)))
			if rr.Code != tt.want {
				t.Fatalf("status = %d, want %d", rr.Code, tt.want)
			}
			var resp errorResponse
			if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil || resp.Success || resp.Error == "" {
				t.Fatalf("error body = %s", rr.Body.String())
			}
			if len(subs.items) != 0 {
				t.Fatalf("rejected request was recorded")
			}
		})
	}
}

func TestSubmitWithoutDatabase(t *testing.T) {
	app := newTestApp(t, nil)
	rr := httptest.NewRecorder()
	app.Submit(rr, httptest.NewRequest(http.MethodPost, "/api/submit", strings.NewReader(submission)))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestSubmitRecordFailureDoesNotFailRequest(t *testing.T) {
	app := newTestApp(t, &stubSubmissions{err: context.DeadlineExceeded})
	rr := httptest.NewRecorder()
	app.Submit(rr, httptest.NewRequest(http.MethodPost, "/api/submit", strings.NewReader(submission)))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
}

func TestSubmitEnglishLocale(t *testing.T) {
	app := newTestApp(t, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/submit", strings.NewReader(submission))
	req = req.WithContext(context.WithValue(req.Context(), middleware.LocaleKey, "en"))
	rr := httptest.NewRecorder()
	app.Submit(rr, req)

	var resp submitResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Message != "Job received and processed" {
		t.Fatalf("message = %q", resp.Message)
	}
}

func TestStatus(t *testing.T) {
	app := newTestApp(t, nil)
	app.SMTPConfigured = true
	rr := httptest.NewRecorder()
	app.Status(rr, httptest.NewRequest(http.MethodGet, "/api/status", nil))

	var body map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["status"] != "ok" || body["version"] != Version || body["smtp_configured"] != true || body["database"] != false {
		t.Fatalf("status body = %v", body)
	}
}

func TestHealth(t *testing.T) {
	app := newTestApp(t, nil)
	rr := httptest.NewRecorder()
	app.Health(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rr.Code != http.StatusOK || strings.TrimSpace(rr.Body.String()) != `{"healthy":true}` {
		t.Fatalf("health = %d %s", rr.Code, rr.Body.String())
	}
}

func TestSubmissionLookup(t *testing.T) {
	subs := &stubSubmissions{}
	_ = subs.Create(context.Background(), &domain.Submission{
		JobID:          "J-7",
		ReceivedAt:     received,
		ReportKey:      "rapport_J-7_20240301_143005.pdf",
		DeliveryStatus: domain.DeliveryFailed,
		DeliveryReason: "dial tcp: refused",
	})

	tests := []struct {
		name string
		repo domain.SubmissionRepository
		job  string
		want int
	}{
		{name: "found", repo: subs, job: "J-7", want: http.StatusOK},
		{name: "unknown job", repo: subs, job: "J-8", want: http.StatusNotFound},
		{name: "no database", repo: nil, job: "J-7", want: http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp(t, tt.repo)
			r := chi.NewRouter()
			r.Get("/api/submissions/{jobID}", app.Submission)

			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/submissions/"+tt.job, nil))
			if rr.Code != tt.want {
				t.Fatalf("status = %d, want %d", rr.Code, tt.want)
			}
			if tt.want != http.StatusOK {
				return
			}
			var resp submissionResponse
			if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if resp.Delivery != domain.DeliveryFailed || resp.Reason == "" || resp.Report == "" {
				t.Fatalf("submission = %+v", resp)
			}
		})
	}
}

func TestSubmitCompletesAfterClientCancel(t *testing.T) {
	subs := &stubSubmissions{}
	app := newTestApp(t, subs)
	mailer := notify.NewMailer(notify.Config{Username: "bot@example.com", Password: "secret"}, zerolog.Nop(),
		notify.WithSendFunc(func(ctx context.Context, _ *mail.Msg) error {
			return ctx.Err()
		}))
	app.Pipeline = pipeline.New(pipeline.Config{
		Dispatcher:       mailer,
		DefaultRecipient: "office@example.com",
		Logger:           zerolog.Nop(),
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodPost, "/api/submit", strings.NewReader(submission)).WithContext(ctx)
	rr := httptest.NewRecorder()
	app.Submit(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", rr.Code, rr.Body.String())
	}
	var resp submitResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.EmailSent || resp.Delivery.Status != domain.DeliverySent {
		t.Fatalf("delivery = %+v", resp.Delivery)
	}
	if _, err := os.Stat(filepath.Join(app.Store.BasePath(), resp.Report)); err != nil {
		t.Fatalf("report not stored: %v", err)
	}
	if len(subs.items) != 1 {
		t.Fatalf("submissions = %d", len(subs.items))
	}
}
