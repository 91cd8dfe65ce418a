// Package service assembles the report stages from configuration. Both the
// HTTP server and the command line tool start from here.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"fieldreport/internal/adapter/repo"
	"fieldreport/internal/attachment"
	"fieldreport/internal/infra"
	"fieldreport/internal/infra/credentials"
	"fieldreport/internal/notify"
	"fieldreport/internal/photo"
	"fieldreport/internal/pipeline"
	"fieldreport/internal/report"
)

// MailConfig maps the environment SMTP settings onto the mailer's.
func MailConfig(c infra.SMTPConfig) notify.Config {
	return notify.Config{
		Host:     c.Host,
		Port:     c.Port,
		Username: c.User,
		Password: c.Password,
		From:     c.From,
		Timeout:  c.Timeout,
	}
}

// NewPipeline builds the normalizer, builder, renderer, assembler and mailer
// for cfg. opts are passed to the mailer.
func NewPipeline(cfg *infra.Config, logger zerolog.Logger, opts ...notify.Option) *pipeline.Pipeline {
	normalizer := photo.NewNormalizer(photo.Options{Logger: &logger})
	builder := report.NewBuilder(normalizer,
		report.WithDefaultCompany(cfg.Company),
		report.WithLocale(cfg.ReportLocale),
		report.WithDisplayLocation(cfg.ReportTimezone),
		report.WithLogger(logger),
	)
	return pipeline.New(pipeline.Config{
		Builder:          builder,
		Renderer:         report.NewRenderer(logger),
		Assembler:        attachment.NewAssembler(cfg.AttachPhotos, logger),
		Dispatcher:       notify.NewMailer(MailConfig(cfg.SMTP), logger, opts...),
		DefaultRecipient: cfg.DefaultOfficeEmail,
		Logger:           logger,
	})
}

// Database bundles the optional PostgreSQL-backed stores.
type Database struct {
	Pool        *pgxpool.Pool
	Submissions *repo.SubmissionRepositoryPG
	Credentials *credentials.Store
}

// OpenDatabase connects, ensures the schema and returns the stores. It
// returns infra.ErrDatabaseDisabled when no DATABASE_URL is set.
func OpenDatabase(ctx context.Context, cfg *infra.Config, logger zerolog.Logger) (*Database, error) {
	pool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		return nil, err
	}
	runner := infra.NewSQLRunner(pool, logger)
	submissions := repo.NewSubmissionRepository(runner)
	if err := submissions.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return &Database{
		Pool:        pool,
		Submissions: submissions,
		Credentials: credentials.NewStore(runner),
	}, nil
}

// Close releases the pool.
func (d *Database) Close() {
	if d != nil && d.Pool != nil {
		d.Pool.Close()
	}
}

// ApplyStoredSMTPPassword fills the SMTP password from the credentials store
// when the environment leaves it empty.
func ApplyStoredSMTPPassword(ctx context.Context, cfg *infra.Config, store *credentials.Store) error {
	if cfg.SMTP.Password != "" || store == nil {
		return nil
	}
	password, err := store.SMTPPassword(ctx)
	if err != nil {
		return fmt.Errorf("load smtp password: %w", err)
	}
	cfg.SMTP.Password = password
	return nil
}

// IsDisabled reports whether err only means the database is not configured.
func IsDisabled(err error) bool {
	return errors.Is(err, infra.ErrDatabaseDisabled)
}
