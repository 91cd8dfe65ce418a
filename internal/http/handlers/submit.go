package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"fieldreport/internal/domain"
	"fieldreport/internal/middleware"
	"fieldreport/internal/pipeline"
)

type submitResponse struct {
	Success      bool                   `json:"success"`
	JobID        string                 `json:"job_id"`
	PDFGenerated bool                   `json:"pdf_generated"`
	EmailSent    bool                   `json:"email_sent"`
	Delivery     domain.DeliveryOutcome `json:"delivery"`
	Report       string                 `json:"report,omitempty"`
	Pages        int                    `json:"pages"`
	Message      string                 `json:"message"`
}

// Submit accepts one job record, renders and stores its report, then makes
// the single delivery attempt. The response separates "document produced"
// from "email sent".
func (a *App) Submit(w http.ResponseWriter, r *http.Request) {
	log := a.log(r)
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, a.MaxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			a.error(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		a.error(w, http.StatusBadRequest, "failed to read request body")
		return
	}

	rec, err := domain.DecodeJobRecord(body)
	if err != nil {
		log.Warn().Err(err).Msg("invalid submission payload")
		a.error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	if err := rec.Validate(); err != nil {
		a.error(w, http.StatusBadRequest, err.Error())
		return
	}
	log.Info().Str("job_id", rec.ID).Int("bytes", len(body)).Msg("job received")

	res, err := a.Pipeline.Prepare(rec, pipeline.Options{Locale: middleware.LocaleFromContext(r.Context())})
	if err != nil {
		log.Error().Err(err).Str("job_id", rec.ID).Msg("report generation failed")
		a.error(w, http.StatusInternalServerError, err.Error())
		return
	}

	// Once the report exists the submission runs to completion, even if the
	// client goes away.
	ctx := context.WithoutCancel(r.Context())
	received := a.Now()
	redacted, err := domain.RedactRecord(body)
	if err != nil {
		log.Warn().Err(err).Str("job_id", rec.ID).Msg("redaction failed, record not stored")
		redacted = nil
	}
	var reportKey string
	if a.Store != nil {
		keys, err := a.Store.SaveReport(ctx, rec.ID, received, res.Artifact.Data, redacted)
		if err != nil {
			log.Error().Err(err).Str("job_id", rec.ID).Msg("saving report failed")
			a.error(w, http.StatusInternalServerError, "failed to store report")
			return
		}
		reportKey = keys.Report
		log.Info().Str("job_id", rec.ID).Str("report", keys.Report).Str("record", keys.Record).Msg("report saved")
	}

	res.Delivery = a.Pipeline.Deliver(ctx, rec, res)

	if a.Submissions != nil {
		sub := &domain.Submission{
			JobID:          rec.ID,
			ReceivedAt:     received,
			RecordJSON:     redacted,
			ReportKey:      reportKey,
			DeliveryStatus: res.Delivery.Status,
			DeliveryReason: res.Delivery.Reason,
			Recipient:      res.Delivery.Recipient,
			Country:        middleware.CountryFromContext(r.Context()),
		}
		if err := a.Submissions.Create(ctx, sub); err != nil {
			log.Error().Err(err).Str("job_id", rec.ID).Msg("recording submission failed")
		}
	}

	a.json(w, http.StatusOK, submitResponse{
		Success:      true,
		JobID:        rec.ID,
		PDFGenerated: true,
		EmailSent:    res.Delivery.Sent(),
		Delivery:     res.Delivery,
		Report:       reportKey,
		Pages:        res.Artifact.Pages,
		Message:      res.Layout.Labels.Received,
	})
}
