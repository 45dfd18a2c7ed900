// Package dispatch sends one outreach email end to end.
//
// A dispatch validates the contact, loads and renders its template, picks a
// subject, optionally rewrites the note and subject with AI, hands the email
// to the transport and records the delivery in the ledger. Every entry point
// (scheduler, batch, HTTP API and CLI) goes through the same Dispatcher.
//
// Sends for one (recipient, template) pair are serialized by a Claimer, and
// the dedup check runs while the claim is held. Two entry points racing on the
// same contact therefore produce at most one email.
//
//	d := dispatch.New(templates, sender, sendLedger,
//		dispatch.WithFrom("Noah", "noah@example.com"),
//		dispatch.WithRewriter(rw),
//	)
//	res := d.Dispatch(ctx, dispatch.Request{
//		Contact:  c,
//		Subjects: subjects,
//		Dedup:    dispatch.Lifetime(),
//	})
package dispatch
