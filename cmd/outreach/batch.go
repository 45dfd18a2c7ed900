package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/outreach/internal/batch"
	"github.com/dmitrymomot/outreach/internal/dispatch"
)

func newBatchCmd(cfgPath func() string) *cobra.Command {
	var opts batch.Options

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Send to every contact that has not received its template yet",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := loadConfig(cfgPath())
			if err != nil {
				return err
			}
			a, err := newApp(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			defer func() { _ = a.close(context.Background()) }()

			runner, err := batch.NewRunner(a.contacts, a.dispatcher, a.subjects,
				batch.WithLogger(log),
				batch.WithLocation(a.location),
			)
			if err != nil {
				return err
			}

			report, err := runner.Run(cmd.Context(), opts)
			if err != nil {
				return err
			}
			printBatchReport(cmd.OutOrStdout(), report)
			if report.Failed > 0 {
				return fmt.Errorf("batch finished with %d failures", report.Failed)
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.BoolVar(&opts.UseAI, "ai", false, "personalise notes and subjects with AI")
	f.BoolVar(&opts.ScheduledOnly, "schedule", false, "only contacts whose send date and time have arrived")
	f.BoolVar(&opts.DryRun, "dry-run", false, "render and report without sending")
	f.IntVar(&opts.Concurrency, "concurrency", 1, "parallel sends")
	return cmd
}

func printBatchReport(w io.Writer, r batch.Report) {
	for _, res := range r.Results {
		switch res.Outcome {
		case dispatch.OutcomeSent:
			fmt.Fprintf(w, "sent      %s  %s\n", res.Recipient, res.Subject)
		case dispatch.OutcomeDryRun:
			fmt.Fprintf(w, "dry-run   %s  %q\n", res.Recipient, res.Subject)
		case dispatch.OutcomeSkipped:
			fmt.Fprintf(w, "skipped   %s  %s (%s)\n", res.Recipient, res.Template, res.Reason)
		case dispatch.OutcomeFailed:
			fmt.Fprintf(w, "failed    %s  %s (%s: %s)\n", res.Recipient, res.Template, res.Reason, res.Error())
		}
	}
	fmt.Fprintf(w, "\n%d contacts: %d sent, %d dry-run, %d skipped, %d failed, %d incomplete, %d not due\n",
		r.Total, r.Sent, r.DryRun, r.Skipped, r.Failed, r.Incomplete, r.NotDue)
}
