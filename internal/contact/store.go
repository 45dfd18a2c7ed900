package contact

import (
	"context"

	"github.com/dmitrymomot/outreach/pkg/schedule"
)

// Store is the contact persistence used by the HTTP API and the send
// adapters. Repository and Memory implement it.
type Store interface {
	List(ctx context.Context, f Filter) ([]Contact, error)
	ListScheduled(ctx context.Context) ([]Contact, error)
	ListDue(ctx context.Context, today schedule.Date) ([]Contact, error)
	Get(ctx context.Context, id int64) (Contact, error)
	Create(ctx context.Context, c Contact) (Contact, error)
	Update(ctx context.Context, id int64, p Patch) (Contact, error)
	Delete(ctx context.Context, id int64) error
}

var (
	_ Store = (*Repository)(nil)
	_ Store = (*Memory)(nil)
)
