// Package pipeline runs one job record through layout, rendering, attachment
// assembly and delivery.
package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"fieldreport/internal/attachment"
	"fieldreport/internal/domain"
	"fieldreport/internal/notify"
	"fieldreport/internal/report"
)

// Dispatcher delivers a message. notify.Mailer satisfies it.
type Dispatcher interface {
	Send(ctx context.Context, msg notify.Message) domain.DeliveryOutcome
}

// Pipeline wires the report stages together. Every stage is read-only after
// construction, so one Pipeline serves all requests.
type Pipeline struct {
	builder          *report.Builder
	renderer         *report.Renderer
	assembler        *attachment.Assembler
	dispatcher       Dispatcher
	defaultRecipient string
	logger           zerolog.Logger
}

// Config collects the stages of a Pipeline.
type Config struct {
	Builder          *report.Builder
	Renderer         *report.Renderer
	Assembler        *attachment.Assembler
	Dispatcher       Dispatcher
	DefaultRecipient string
	Logger           zerolog.Logger
}

// New creates a Pipeline. Missing stages get their defaults; a missing
// dispatcher means delivery is always skipped.
func New(cfg Config) *Pipeline {
	p := &Pipeline{
		builder:          cfg.Builder,
		renderer:         cfg.Renderer,
		assembler:        cfg.Assembler,
		dispatcher:       cfg.Dispatcher,
		defaultRecipient: strings.TrimSpace(cfg.DefaultRecipient),
		logger:           cfg.Logger,
	}
	if p.builder == nil {
		p.builder = report.NewBuilder(nil, report.WithLogger(cfg.Logger))
	}
	if p.renderer == nil {
		p.renderer = report.NewRenderer(cfg.Logger)
	}
	if p.assembler == nil {
		p.assembler = attachment.NewAssembler(attachment.ModeNone, cfg.Logger)
	}
	return p
}

// Options adjust a single run.
type Options struct {
	// Locale is an Accept-Language style preference; empty uses the default.
	Locale string
	// SkipDelivery renders without sending.
	SkipDelivery bool
}

// Result is the outcome of one run. Artifact is always set when err is nil;
// Delivery reports the dispatch independently.
type Result struct {
	Artifact    *domain.DocumentArtifact
	Layout      *report.Layout
	Attachments domain.AttachmentSet
	Delivery    domain.DeliveryOutcome
}

// Process prepares the report and dispatches it. Only layout and rendering
// errors are returned; delivery problems are part of the Result.
func (p *Pipeline) Process(ctx context.Context, rec *domain.JobRecord, opts Options) (*Result, error) {
	res, err := p.Prepare(rec, opts)
	if err != nil {
		return nil, err
	}
	if opts.SkipDelivery {
		res.Delivery = domain.Skipped("delivery disabled")
		return res, nil
	}
	res.Delivery = p.Deliver(ctx, rec, res)
	return res, nil
}

// Prepare builds, renders and assembles attachments without sending.
func (p *Pipeline) Prepare(rec *domain.JobRecord, opts Options) (*Result, error) {
	layout, err := p.builder.Build(rec, opts.Locale)
	if err != nil {
		return nil, fmt.Errorf("build layout: %w", err)
	}
	doc, err := p.renderer.Render(layout)
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", rec.ID, err)
	}
	p.logger.Info().
		Str("job_id", rec.ID).
		Int("pages", doc.Pages).
		Int("bytes", len(doc.Data)).
		Bool("timestamp_fallback", layout.Timestamp.Fallback).
		Msg("report generated")

	return &Result{
		Artifact:    doc,
		Layout:      layout,
		Attachments: p.assembler.Assemble(rec, doc),
	}, nil
}

// Deliver makes the single dispatch attempt for a prepared result.
func (p *Pipeline) Deliver(ctx context.Context, rec *domain.JobRecord, res *Result) domain.DeliveryOutcome {
	if p.dispatcher == nil {
		return domain.Skipped("no dispatcher")
	}
	recipient := p.Recipient(rec)
	msg := notify.ReportMessage(rec, res.Layout, recipient, res.Attachments)
	out := p.dispatcher.Send(ctx, msg)
	p.logger.Info().
		Str("job_id", rec.ID).
		Str("delivery", string(out.Status)).
		Str("recipient", recipient).
		Int("attachments", len(res.Attachments)).
		Msg("report dispatched")
	return out
}

// Recipient returns the company's office address, or the configured default.
func (p *Pipeline) Recipient(rec *domain.JobRecord) string {
	if rec != nil {
		if to := strings.TrimSpace(rec.Company.OfficeEmail); to != "" {
			return to
		}
	}
	return p.defaultRecipient
}
