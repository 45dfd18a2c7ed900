// Package logger builds the service's slog loggers.
//
// Output is JSON on stdout. A [LogHandlerDecorator] injects attributes
// pulled from the context on every call, so a dispatch logged deep inside the
// pipeline still carries the pass, request and entry point that started it:
//
//	log := logger.New(slog.LevelInfo, logger.DefaultExtractors()...)
//	ctx := logger.WithPassID(ctx, passID)
//	log.InfoContext(ctx, "email sent", slog.String("template", name))
//	// {"level":"INFO","msg":"email sent","template":"final_check.html","pass_id":"..."}
//
// [NewWithSentry] additionally forwards warnings and errors to Sentry when a
// DSN is configured and falls back to stdout only otherwise. Call the hook
// returned by [Shutdown] before exit to flush pending events.
//
// [NewNope] discards everything and is the default for library types that
// accept an optional logger.
package logger
