package contact

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/dmitrymomot/outreach/pkg/schedule"
)

// DBTX is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Filter narrows List. Zero fields match everything.
type Filter struct {
	Date   *schedule.Date
	Time   *schedule.Clock
	Status Status
}

// Repository stores contacts in PostgreSQL.
type Repository struct {
	db DBTX
}

// NewRepository creates a repository over db.
func NewRepository(db DBTX) *Repository {
	return &Repository{db: db}
}

const contactColumns = `id, first_name, email, template, note, send_date, send_time, status`

// List returns contacts matching f ordered by id.
func (r *Repository) List(ctx context.Context, f Filter) ([]Contact, error) {
	var (
		where []string
		args  []any
	)
	if f.Status != "" {
		args = append(args, string(f.Status))
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if f.Date != nil {
		args = append(args, pgDate(f.Date))
		where = append(where, fmt.Sprintf("send_date = $%d", len(args)))
	}
	if f.Time != nil {
		args = append(args, pgTime(f.Time))
		where = append(where, fmt.Sprintf("send_time = $%d", len(args)))
	}

	q := `SELECT ` + contactColumns + ` FROM contacts`
	if len(where) > 0 {
		q += ` WHERE ` + strings.Join(where, " AND ")
	}
	q += ` ORDER BY id`

	return r.query(ctx, q, args...)
}

// ListScheduled returns contacts with a send date or a send time.
func (r *Repository) ListScheduled(ctx context.Context) ([]Contact, error) {
	return r.query(ctx, `SELECT `+contactColumns+` FROM contacts
		WHERE send_date IS NOT NULL OR send_time IS NOT NULL
		ORDER BY id`)
}

// ListDue returns contacts with no send date or a send date on or before today.
func (r *Repository) ListDue(ctx context.Context, today schedule.Date) ([]Contact, error) {
	return r.query(ctx, `SELECT `+contactColumns+` FROM contacts
		WHERE send_date IS NULL OR send_date <= $1
		ORDER BY id`, pgDate(&today))
}

// Get returns one contact or ErrNotFound.
func (r *Repository) Get(ctx context.Context, id int64) (Contact, error) {
	row := r.db.QueryRow(ctx, `SELECT `+contactColumns+` FROM contacts WHERE id = $1`, id)
	c, err := scanContact(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Contact{}, ErrNotFound
		}
		return Contact{}, errors.Join(ErrQuery, err)
	}
	return c, nil
}

// Create inserts c and returns it with its new id.
func (r *Repository) Create(ctx context.Context, c Contact) (Contact, error) {
	c = c.Normalized()
	if c.Status == "" {
		c.Status = StatusNotContacted
	}
	if !c.Status.Valid() {
		return Contact{}, ErrInvalidStatus
	}

	row := r.db.QueryRow(ctx, `INSERT INTO contacts (first_name, email, template, note, send_date, send_time, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`,
		c.FirstName, c.Email, c.Template, c.Note, pgDate(c.SendDate), pgTime(c.SendTime), string(c.Status))
	if err := row.Scan(&c.ID); err != nil {
		return Contact{}, errors.Join(ErrQuery, err)
	}
	return c, nil
}

// Update applies p to the contact with the given id and returns the result.
func (r *Repository) Update(ctx context.Context, id int64, p Patch) (Contact, error) {
	if p.Empty() {
		return Contact{}, ErrEmptyPatch
	}
	if err := p.Validate(); err != nil {
		return Contact{}, err
	}

	var (
		set  []string
		args []any
	)
	add := func(col string, v any) {
		args = append(args, v)
		set = append(set, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if p.FirstName != nil {
		add("first_name", strings.TrimSpace(*p.FirstName))
	}
	if p.Email != nil {
		add("email", strings.TrimSpace(*p.Email))
	}
	if p.Template != nil {
		add("template", strings.TrimSpace(*p.Template))
	}
	if p.Note != nil {
		add("note", strings.TrimSpace(*p.Note))
	}
	if p.Status != nil {
		add("status", string(*p.Status))
	}
	if p.SendDate.Set {
		add("send_date", pgDate(p.SendDate.Value))
	}
	if p.SendTime.Set {
		add("send_time", pgTime(p.SendTime.Value))
	}
	set = append(set, "updated_at = now()")
	args = append(args, id)

	q := fmt.Sprintf(`UPDATE contacts SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(set, ", "), len(args), contactColumns)

	c, err := scanContact(r.db.QueryRow(ctx, q, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Contact{}, ErrNotFound
		}
		return Contact{}, errors.Join(ErrQuery, err)
	}
	return c, nil
}

// Delete removes a contact. The send log is left untouched.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM contacts WHERE id = $1`, id)
	if err != nil {
		return errors.Join(ErrQuery, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) query(ctx context.Context, q string, args ...any) ([]Contact, error) {
	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, errors.Join(ErrQuery, err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Contact, error) {
		return scanContact(row)
	})
	if err != nil {
		return nil, errors.Join(ErrQuery, err)
	}
	return out, nil
}

func scanContact(row pgx.Row) (Contact, error) {
	var (
		c      Contact
		date   pgtype.Date
		clock  pgtype.Time
		status string
	)
	if err := row.Scan(&c.ID, &c.FirstName, &c.Email, &c.Template, &c.Note, &date, &clock, &status); err != nil {
		return Contact{}, err
	}
	c.Status = Status(status)
	c.SendDate = fromPgDate(date)
	c.SendTime = fromPgTime(clock)
	return c, nil
}

func pgDate(d *schedule.Date) pgtype.Date {
	if d == nil {
		return pgtype.Date{}
	}
	return pgtype.Date{Time: d.In(time.UTC), Valid: true}
}

func fromPgDate(d pgtype.Date) *schedule.Date {
	if !d.Valid {
		return nil
	}
	v := schedule.DateOf(d.Time.UTC())
	return &v
}

func pgTime(c *schedule.Clock) pgtype.Time {
	if c == nil {
		return pgtype.Time{}
	}
	us := (int64(c.Hour)*3600 + int64(c.Minute)*60) * int64(time.Second/time.Microsecond)
	return pgtype.Time{Microseconds: us, Valid: true}
}

func fromPgTime(t pgtype.Time) *schedule.Clock {
	if !t.Valid {
		return nil
	}
	d := time.Duration(t.Microseconds) * time.Microsecond
	return &schedule.Clock{Hour: int(d / time.Hour), Minute: int(d % time.Hour / time.Minute)}
}
