package ledger

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Entry records one successful delivery. Entries are never modified.
type Entry struct {
	SentAt      time.Time `json:"timestamp"`
	Recipient   string    `json:"email"`
	Template    string    `json:"template"`
	Subject     string    `json:"subject,omitempty"`
	DisplayName string    `json:"firstName,omitempty"`
	ID          uuid.UUID `json:"id"`
}

// NewEntry builds an entry with a fresh id.
func NewEntry(recipient, template string, sentAt time.Time) Entry {
	return Entry{
		ID:        uuid.New(),
		Recipient: strings.TrimSpace(recipient),
		Template:  strings.TrimSpace(template),
		SentAt:    sentAt,
	}
}

// Ledger is the append-only send history.
//
// Append must be durable before it returns nil. Timestamps never decrease in
// append order: an entry older than the newest stored one is recorded with the
// newest timestamp instead.
type Ledger interface {
	Append(ctx context.Context, e Entry) (Entry, error)
	// WasSent reports whether the pair was ever sent.
	WasSent(ctx context.Context, recipient, template string) (bool, error)
	// WasSentSince reports whether the pair was sent at or after since.
	WasSentSince(ctx context.Context, recipient, template string, since time.Time) (bool, error)
	// LastSent returns the newest timestamp for the pair.
	LastSent(ctx context.Context, recipient, template string) (time.Time, bool, error)
	// List returns up to limit entries, newest first. limit <= 0 means all.
	List(ctx context.Context, limit int) ([]Entry, error)
}

func key(recipient, template string) string {
	return strings.TrimSpace(recipient) + "|" + strings.TrimSpace(template)
}

func validate(e Entry) error {
	if strings.TrimSpace(e.Recipient) == "" || strings.TrimSpace(e.Template) == "" || e.SentAt.IsZero() {
		return ErrInvalidEntry
	}
	return nil
}
