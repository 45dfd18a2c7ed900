// Package ledger is the append-only history of delivered emails.
//
// The send pipeline appends exactly one [Entry] after each successful
// delivery and consults the ledger before sending: batch runs skip any
// (recipient, template) pair that was ever sent ([Ledger.WasSent]); the
// scheduler skips pairs sent since the start of the contact's current send
// date ([Ledger.WasSentSince]), so moving the date forward re-arms the
// contact.
//
// [Postgres] is the durable implementation. [Cached] fronts it with a
// [RedisCache] or [MemoryCache] for the hot dedup checks; [Memory] serves tests.
package ledger
