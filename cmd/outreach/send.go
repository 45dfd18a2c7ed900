package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/outreach/internal/contact"
	"github.com/dmitrymomot/outreach/internal/dispatch"
	"github.com/dmitrymomot/outreach/pkg/logger"
	"github.com/dmitrymomot/outreach/pkg/mailer"
)

const previewChars = 800

var errCancelled = errors.New("send cancelled")

type sendFlags struct {
	to, name, template, note string
	ai, yes, dryRun          bool
}

func newSendCmd(cfgPath func() string) *cobra.Command {
	var f sendFlags

	cmd := &cobra.Command{
		Use:   "send",
		Short: "Send one template to one address",
		Long: "Render a template for a single recipient, show a preview and send it after confirmation.\n" +
			"The send is recorded in the send log but never checked against it.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := loadConfig(cfgPath())
			if err != nil {
				return err
			}
			ctx := logger.WithEntryPoint(cmd.Context(), "cli")

			a, err := newApp(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer func() { _ = a.close(context.Background()) }()

			out := cmd.OutOrStdout()
			if f.template == "" {
				return listTemplates(ctx, out, a)
			}

			req := dispatch.Request{
				Contact: contact.Contact{
					FirstName: f.name,
					Email:     f.to,
					Template:  f.template,
					Note:      f.note,
				},
				Subjects: a.subjects,
				UseAI:    f.ai,
			}

			msg, res := a.dispatcher.Prepare(ctx, req)
			if res.Err != nil {
				return res.Err
			}
			printPreview(out, msg, mailer.Recipient(cfg.Mail.SenderName, cfg.Mail.SenderEmail))

			if f.dryRun {
				return nil
			}
			if !f.yes {
				ok, err := confirm(cmd.InOrStdin(), out, "Send this email? (y/N): ")
				if err != nil {
					return err
				}
				if !ok {
					return errCancelled
				}
			}

			// Reuse the previewed subject and body so AI output is not regenerated.
			req.Subject = msg.Subject
			req.OverrideHTML = msg.HTML
			req.UseAI = false

			res = a.dispatcher.Dispatch(ctx, req)
			if res.Err != nil {
				return res.Err
			}
			fmt.Fprintf(out, "Email sent to %s\n", res.Recipient)
			return nil
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&f.to, "to", "", "recipient email address")
	fl.StringVar(&f.name, "name", "", "recipient first name")
	fl.StringVarP(&f.template, "template", "t", "", "template file name; omit to list templates")
	fl.StringVar(&f.note, "note", "", "personal note for the {{personalNote}} placeholder")
	fl.BoolVar(&f.ai, "ai", false, "personalise the note and subject with AI")
	fl.BoolVarP(&f.yes, "yes", "y", false, "send without asking for confirmation")
	fl.BoolVar(&f.dryRun, "dry-run", false, "show the preview only")
	return cmd
}

func listTemplates(ctx context.Context, w io.Writer, a *app) error {
	list, err := a.templates.List(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, "Available templates:")
	for i, t := range list {
		fmt.Fprintf(w, "%2d. %s (%s)\n", i+1, t.Name, t.Label)
	}
	fmt.Fprintln(w, "\nPass one with --template.")
	return nil
}

func printPreview(w io.Writer, msg dispatch.Message, from string) {
	body := msg.HTML
	truncated := len(body) > previewChars
	if truncated {
		body = body[:previewChars]
	}

	fmt.Fprintln(w, "Preview")
	fmt.Fprintln(w, strings.Repeat("-", 36))
	fmt.Fprintf(w, "To: %s\nFrom: %s\nSubject: %s\n", msg.Recipient, from, msg.Subject)
	fmt.Fprintln(w, strings.Repeat("-", 36))
	fmt.Fprintln(w, body)
	if truncated {
		fmt.Fprintln(w, "... (truncated)")
	}
	fmt.Fprintln(w)
}

func confirm(in io.Reader, out io.Writer, prompt string) (bool, error) {
	fmt.Fprint(out, prompt)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}
	return strings.EqualFold(strings.TrimSpace(line), "y"), nil
}
