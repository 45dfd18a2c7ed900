package dispatch

import (
	"time"

	"github.com/dmitrymomot/outreach/internal/contact"
	"github.com/dmitrymomot/outreach/pkg/mailer"
)

// DedupMode selects which send-history check guards a dispatch.
type DedupMode int

const (
	// DedupNone always sends. Explicit user actions use it.
	DedupNone DedupMode = iota
	// DedupLifetime skips pairs that were ever sent.
	DedupLifetime
	// DedupSince skips pairs sent at or after Dedup.Since.
	DedupSince
)

// NoteMode selects what fills the {{personalNote}} placeholder.
type NoteMode int

const (
	// NoteRaw renders the contact note as written unless AI rewrites it.
	NoteRaw NoteMode = iota
	// NoteAIOnly renders only an AI rewrite of the note; without one the
	// placeholder is blank. Batch runs use it so CRM notes stay internal.
	NoteAIOnly
)

// Dedup is the history check for a request.
type Dedup struct {
	Since time.Time
	Mode  DedupMode
}

// Lifetime returns a lifetime dedup.
func Lifetime() Dedup { return Dedup{Mode: DedupLifetime} }

// Since returns a windowed dedup starting at t.
func Since(t time.Time) Dedup { return Dedup{Mode: DedupSince, Since: t} }

// Request describes one send.
type Request struct {
	// Subjects picks the subject. Nil means mailer.DerivedSubjects.
	Subjects mailer.SubjectPolicy
	Dedup    Dedup

	Contact contact.Contact
	// Template overrides Contact.Template.
	Template string
	// OverrideHTML is sent verbatim instead of the rendered template.
	OverrideHTML string
	// To overrides the recipient address.
	To string
	// Subject fixes the subject, bypassing Subjects and AI rewriting.
	Subject string
	Note    NoteMode

	UseAI  bool
	DryRun bool
	// NoRecord skips the ledger append. Test sends use it.
	NoRecord bool
}

func (r Request) template() string {
	if r.Template != "" {
		return r.Template
	}
	return r.Contact.Template
}

func (r Request) recipient() string {
	if r.To != "" {
		return r.To
	}
	return r.Contact.Email
}
