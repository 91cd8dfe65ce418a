package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"fieldreport/internal/domain"
	"fieldreport/internal/middleware"
	"fieldreport/internal/pipeline"
	"fieldreport/internal/storage"
)

// Version is reported by the status endpoint.
const Version = "1.0.0"

// App carries the dependencies shared by every handler. It is built once at
// start and not modified afterwards.
type App struct {
	Pipeline       *pipeline.Pipeline
	Store          *storage.FileStore
	Submissions    domain.SubmissionRepository
	Logger         zerolog.Logger
	SMTPConfigured bool
	MaxBodyBytes   int64
	Now            func() time.Time
}

// NewApp wires an App. submissions may be nil when no database is configured.
func NewApp(p *pipeline.Pipeline, store *storage.FileStore, submissions domain.SubmissionRepository, logger zerolog.Logger) *App {
	return &App{
		Pipeline:     p,
		Store:        store,
		Submissions:  submissions,
		Logger:       logger,
		MaxBodyBytes: 25 << 20,
		Now:          time.Now,
	}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func (a *App) error(w http.ResponseWriter, code int, msg string) {
	a.json(w, code, errorResponse{Success: false, Error: msg})
}

func (a *App) log(r *http.Request) *zerolog.Logger {
	if l := middleware.LoggerFromContext(r.Context()); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return &a.Logger
}
