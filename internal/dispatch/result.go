package dispatch

import (
	"github.com/dmitrymomot/outreach/internal/ledger"
)

// Outcome is what a dispatch did.
type Outcome string

const (
	OutcomeSent    Outcome = "sent"
	OutcomeDryRun  Outcome = "dry_run"
	OutcomeSkipped Outcome = "skipped"
	OutcomeFailed  Outcome = "failed"
)

// Reason explains a skip or failure.
type Reason string

const (
	ReasonNone                Reason = ""
	ReasonIncompleteContact   Reason = "incomplete_contact"
	ReasonTemplateNotFound    Reason = "template_not_found"
	ReasonTemplateUnavailable Reason = "template_unavailable"
	ReasonMissingSubject      Reason = "missing_subject"
	ReasonTransport           Reason = "transport_error"
	ReasonLedgerWrite         Reason = "ledger_write"
	ReasonLedgerRead          Reason = "ledger_read"
	ReasonAlreadySent         Reason = "already_sent"
	ReasonInFlight            Reason = "in_flight"
	ReasonClaim               Reason = "claim_failed"
)

// Result reports the outcome of one dispatch.
//
// Sent is true whenever the transport accepted the email, including the
// ReasonLedgerWrite failure where the send happened but was not recorded.
type Result struct {
	Err       error         `json:"-"`
	Entry     *ledger.Entry `json:"entry,omitempty"`
	Outcome   Outcome       `json:"outcome"`
	Reason    Reason        `json:"reason,omitempty"`
	Recipient string        `json:"recipient"`
	Template  string        `json:"template"`
	Subject   string        `json:"subject,omitempty"`
	HTML      string        `json:"-"`
	ContactID int64         `json:"contactId"`
	Sent      bool          `json:"sent"`
}

// OK reports whether the dispatch finished without error. Skips are OK.
func (r Result) OK() bool {
	return r.Err == nil
}

// Error returns the failure detail, or "".
func (r Result) Error() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}

func (r Result) fail(reason Reason, err error) Result {
	r.Outcome = OutcomeFailed
	r.Reason = reason
	r.Err = err
	return r
}

func (r Result) skip(reason Reason) Result {
	r.Outcome = OutcomeSkipped
	r.Reason = reason
	return r
}
