// Package rewrite personalises notes and subject lines with an LLM.
//
// Callers must treat every error as recoverable: the send pipeline falls
// back to an empty note or the original subject and still delivers.
package rewrite

import (
	"context"
	"errors"
)

var (
	ErrRewriteFailed = errors.New("rewrite: failed")
	ErrDisabled      = errors.New("rewrite: not configured")
	ErrEmptyResult   = errors.New("rewrite: empty completion")
)

// Rewriter turns a contact note into a personal paragraph and tailors a
// subject line to the same note.
type Rewriter interface {
	RewriteNote(ctx context.Context, note string) (string, error)
	RewriteSubject(ctx context.Context, subject, note string) (string, error)
}

// Disabled is the Rewriter used when no API key is configured.
type Disabled struct{}

func (Disabled) RewriteNote(context.Context, string) (string, error) {
	return "", ErrDisabled
}

func (Disabled) RewriteSubject(context.Context, string, string) (string, error) {
	return "", ErrDisabled
}
