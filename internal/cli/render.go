package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"fieldreport/internal/domain"
	"fieldreport/internal/pipeline"
	"fieldreport/internal/service"
)

type renderOpts struct {
	output string
	locale string
	send   bool
	to     string
}

func newRenderCmd() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render [record.json]",
		Short: "Render a job record to PDF, optionally emailing it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output PDF path (default: rapport_<id>.pdf next to the record)")
	cmd.Flags().StringVar(&opts.locale, "locale", "", "report language, e.g. nb or en")
	cmd.Flags().BoolVar(&opts.send, "send", false, "email the report using the SMTP settings")
	cmd.Flags().StringVar(&opts.to, "to", "", "recipient, overriding the record's office email")
	return cmd
}

func runRender(cmd *cobra.Command, path string, opts renderOpts) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read record: %w", err)
	}
	rec, err := domain.DecodeJobRecord(raw)
	if err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	if err := rec.Validate(); err != nil {
		return err
	}
	if to := strings.TrimSpace(opts.to); to != "" {
		rec.Company.OfficeEmail = to
	}

	cfg := configFrom(cmd)
	p := service.NewPipeline(cfg, loggerFrom(cmd))
	res, err := p.Process(cmd.Context(), rec, pipeline.Options{Locale: opts.locale, SkipDelivery: !opts.send})
	if err != nil {
		return err
	}

	output := opts.output
	if output == "" {
		output = filepath.Join(filepath.Dir(path), res.Artifact.Filename)
	}
	if err := os.WriteFile(output, res.Artifact.Data, 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "report:   %s (%d pages, %d bytes)\n", output, res.Artifact.Pages, len(res.Artifact.Data))
	fmt.Fprintf(out, "delivery: %s", res.Delivery.Status)
	if res.Delivery.Recipient != "" {
		fmt.Fprintf(out, " to %s", res.Delivery.Recipient)
	}
	if res.Delivery.Reason != "" {
		fmt.Fprintf(out, " (%s)", res.Delivery.Reason)
	}
	fmt.Fprintln(out)
	if res.Delivery.Status == domain.DeliveryFailed {
		return fmt.Errorf("delivery failed: %s", res.Delivery.Reason)
	}
	return nil
}
