package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"fieldreport/internal/domain"
)

func (a *App) Status(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]any{
		"status":          "ok",
		"version":         Version,
		"smtp_configured": a.SMTPConfigured,
		"database":        a.Submissions != nil,
	})
}

type submissionResponse struct {
	JobID      string                `json:"job_id"`
	ReceivedAt time.Time             `json:"received_at"`
	Report     string                `json:"report"`
	Delivery   domain.DeliveryStatus `json:"delivery"`
	Reason     string                `json:"reason,omitempty"`
	Recipient  string                `json:"recipient,omitempty"`
	Country    string                `json:"country,omitempty"`
}

// Submission returns the latest recorded submission of a job.
func (a *App) Submission(w http.ResponseWriter, r *http.Request) {
	if a.Submissions == nil {
		a.error(w, http.StatusServiceUnavailable, "submission history requires a database")
		return
	}
	sub, err := a.Submissions.GetByJobID(r.Context(), chi.URLParam(r, "jobID"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusNotFound, "submission not found")
			return
		}
		a.log(r).Error().Err(err).Msg("loading submission failed")
		a.error(w, http.StatusInternalServerError, "failed to load submission")
		return
	}
	a.json(w, http.StatusOK, submissionResponse{
		JobID:      sub.JobID,
		ReceivedAt: sub.ReceivedAt,
		Report:     sub.ReportKey,
		Delivery:   sub.DeliveryStatus,
		Reason:     sub.DeliveryReason,
		Recipient:  sub.Recipient,
		Country:    sub.Country,
	})
}
