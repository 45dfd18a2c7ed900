// Package contact holds the contact model and its stores.
//
// A contact is read-only to the send pipeline: the scheduler and batch
// runner only list contacts, and deleting a contact never touches the send
// log. [Repository] stores contacts in PostgreSQL; [Memory] keeps them in
// process for tests and local runs.
package contact
