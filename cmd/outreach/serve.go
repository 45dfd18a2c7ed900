package main

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/outreach/internal/httpapi"
	"github.com/dmitrymomot/outreach/internal/scheduler"
	"github.com/dmitrymomot/outreach/internal/server"
)

func newServeCmd(cfgPath func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the background scheduler",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := loadConfig(cfgPath())
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			a, err := newApp(ctx, cfg, log)
			if err != nil {
				return err
			}

			var startup, shutdown []server.Hook
			if cfg.Scheduler.Enabled {
				sched, err := scheduler.New(a.contacts, a.dispatcher,
					scheduler.WithInterval(cfg.Scheduler.Interval),
					scheduler.WithConcurrency(cfg.Scheduler.Concurrency),
					scheduler.WithLocation(a.location),
					scheduler.WithAI(cfg.Scheduler.UseAI),
					scheduler.WithLogger(log),
				)
				if err != nil {
					_ = a.close(context.Background())
					return err
				}
				startup = append(startup, sched.StartFunc())
				shutdown = append(shutdown, sched.Shutdown())
				a.readiness["scheduler"] = scheduler.Healthcheck(sched)
			} else {
				log.InfoContext(ctx, "scheduler disabled")
			}

			api := httpapi.New(httpapi.Deps{
				Contacts:      a.contacts,
				Templates:     a.templates,
				Ledger:        a.ledger,
				Dispatcher:    a.dispatcher,
				Logger:        log,
				Ready:         a.readiness,
				TestRecipient: cfg.Mail.TestRecipient,
			})

			log.InfoContext(ctx, "starting outreach",
				slog.String("mail_provider", cfg.Mail.Provider),
				slog.String("template_source", cfg.Templates.Source),
				slog.Bool("redis", a.redis != nil),
			)

			return server.Run(ctx, server.Config{
				Addr:            cfg.Server.Addr,
				Handler:         api,
				Logger:          log,
				ReadTimeout:     cfg.Server.ReadTimeout,
				WriteTimeout:    cfg.Server.WriteTimeout,
				ShutdownTimeout: cfg.Server.ShutdownTimeout,
				StartupHooks:    startup,
				ShutdownHooks:   append(shutdown, a.shutdownHooks()...),
			})
		},
	}
}
