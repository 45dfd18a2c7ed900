package ledger

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
)

// DBTX is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Postgres stores the ledger in the send_log table.
type Postgres struct {
	db DBTX
}

func NewPostgres(db DBTX) *Postgres {
	return &Postgres{db: db}
}

func (p *Postgres) Append(ctx context.Context, e Entry) (Entry, error) {
	if err := validate(e); err != nil {
		return Entry{}, err
	}
	e.Recipient = strings.TrimSpace(e.Recipient)
	e.Template = strings.TrimSpace(e.Template)

	// Clamp to the newest stored timestamp so sent_at never goes backwards
	// in insertion order, even with skewed clocks across processes.
	row := p.db.QueryRow(ctx, `INSERT INTO send_log (id, recipient, template, sent_at, subject, display_name)
		VALUES ($1, $2, $3,
			GREATEST($4::timestamptz, COALESCE((SELECT max(sent_at) FROM send_log), $4::timestamptz)),
			$5, $6)
		RETURNING sent_at`,
		e.ID, e.Recipient, e.Template, e.SentAt, e.Subject, e.DisplayName)

	if err := row.Scan(&e.SentAt); err != nil {
		return Entry{}, errors.Join(ErrWrite, err)
	}
	return e, nil
}

func (p *Postgres) WasSent(ctx context.Context, recipient, template string) (bool, error) {
	var ok bool
	err := p.db.QueryRow(ctx, `SELECT EXISTS (
			SELECT 1 FROM send_log WHERE recipient = $1 AND template = $2
		)`, strings.TrimSpace(recipient), strings.TrimSpace(template)).Scan(&ok)
	if err != nil {
		return false, errors.Join(ErrRead, err)
	}
	return ok, nil
}

func (p *Postgres) WasSentSince(ctx context.Context, recipient, template string, since time.Time) (bool, error) {
	var ok bool
	err := p.db.QueryRow(ctx, `SELECT EXISTS (
			SELECT 1 FROM send_log WHERE recipient = $1 AND template = $2 AND sent_at >= $3
		)`, strings.TrimSpace(recipient), strings.TrimSpace(template), since).Scan(&ok)
	if err != nil {
		return false, errors.Join(ErrRead, err)
	}
	return ok, nil
}

func (p *Postgres) LastSent(ctx context.Context, recipient, template string) (time.Time, bool, error) {
	var ts pgtype.Timestamptz
	err := p.db.QueryRow(ctx, `SELECT max(sent_at) FROM send_log WHERE recipient = $1 AND template = $2`,
		strings.TrimSpace(recipient), strings.TrimSpace(template)).Scan(&ts)
	if err != nil {
		return time.Time{}, false, errors.Join(ErrRead, err)
	}
	if !ts.Valid {
		return time.Time{}, false, nil
	}
	return ts.Time, true, nil
}

func (p *Postgres) List(ctx context.Context, limit int) ([]Entry, error) {
	q := `SELECT id, recipient, template, sent_at, subject, display_name
		FROM send_log ORDER BY sent_at DESC, id`
	var args []any
	if limit > 0 {
		q += ` LIMIT $1`
		args = append(args, limit)
	}

	rows, err := p.db.Query(ctx, q, args...)
	if err != nil {
		return nil, errors.Join(ErrRead, err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Entry, error) {
		var e Entry
		err := row.Scan(&e.ID, &e.Recipient, &e.Template, &e.SentAt, &e.Subject, &e.DisplayName)
		return e, err
	})
	if err != nil {
		return nil, errors.Join(ErrRead, err)
	}
	return out, nil
}
