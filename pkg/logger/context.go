package logger

import (
	"context"
	"log/slog"
)

type ctxKey int

const (
	passIDKey ctxKey = iota
	requestIDKey
	entryPointKey
)

// WithPassID tags ctx with the id of the scheduler pass or batch run.
func WithPassID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, passIDKey, id)
}

// WithRequestID tags ctx with an HTTP request id.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// WithEntryPoint tags ctx with the adapter that started a dispatch
// (api, batch, scheduler, cli).
func WithEntryPoint(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, entryPointKey, name)
}

// EntryPoint returns the entry point stored in ctx, if any.
func EntryPoint(ctx context.Context) string {
	v, _ := ctx.Value(entryPointKey).(string)
	return v
}

// PassIDExtractor adds pass_id to records logged with a tagged context.
func PassIDExtractor() ContextExtractor {
	return stringExtractor(passIDKey, "pass_id")
}

// RequestIDExtractor adds request_id to records logged with a tagged context.
func RequestIDExtractor() ContextExtractor {
	return stringExtractor(requestIDKey, "request_id")
}

// EntryPointExtractor adds entry_point to records logged with a tagged context.
func EntryPointExtractor() ContextExtractor {
	return stringExtractor(entryPointKey, "entry_point")
}

// DefaultExtractors returns every extractor this package defines.
func DefaultExtractors() []ContextExtractor {
	return []ContextExtractor{PassIDExtractor(), RequestIDExtractor(), EntryPointExtractor()}
}

func stringExtractor(key ctxKey, attr string) ContextExtractor {
	return func(ctx context.Context) (slog.Attr, bool) {
		if v, ok := ctx.Value(key).(string); ok && v != "" {
			return slog.String(attr, v), true
		}
		return slog.Attr{}, false
	}
}
