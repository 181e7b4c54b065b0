package announcements

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/odyssey-erp/odyssey-ats/internal/platform/db"
	"github.com/odyssey-erp/odyssey-ats/internal/shared"
)

// ErrNotFound is returned when an announcement does not exist.
var ErrNotFound = &shared.Error{Kind: shared.ErrNotFound, Message: "Announcement not found"}

// Repository persists announcements.
type Repository interface {
	List(ctx context.Context) ([]Announcement, error)
	Get(ctx context.Context, id int64) (*Announcement, error)
	Create(ctx context.Context, a *Announcement) error
	Update(ctx context.Context, id int64, updates map[string]interface{}) error
	Delete(ctx context.Context, id int64) error
}

type dbtx interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

type repository struct {
	db dbtx
}

// NewRepository returns a pgx backed Repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool}
}

const columns = `id, title, message, priority, created_by, created_at`

func scan(row pgx.Row) (*Announcement, error) {
	var a Announcement
	if err := row.Scan(&a.ID, &a.Title, &a.Message, &a.Priority, &a.CreatedBy, &a.CreatedAt); err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *repository) List(ctx context.Context) ([]Announcement, error) {
	rows, err := r.db.Query(ctx, `SELECT `+columns+` FROM announcements ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]Announcement, 0)
	for rows.Next() {
		a, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (*Announcement, error) {
	a, err := scan(r.db.QueryRow(ctx, `SELECT `+columns+` FROM announcements WHERE id = $1`, id))
	if db.IsNoRows(err) {
		return nil, ErrNotFound
	}
	return a, err
}

func (r *repository) Create(ctx context.Context, a *Announcement) error {
	return r.db.QueryRow(ctx, `INSERT INTO announcements (title, message, priority, created_by)
		VALUES ($1, $2, $3, $4) RETURNING id, created_at`,
		a.Title, a.Message, a.Priority, a.CreatedBy).Scan(&a.ID, &a.CreatedAt)
}

func (r *repository) Update(ctx context.Context, id int64, updates map[string]interface{}) error {
	query, args := db.BuildUpdate("announcements", id, updates, time.Now().UTC())
	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM announcements WHERE id = $1`, id)
	return err
}

var _ Repository = (*repository)(nil)
