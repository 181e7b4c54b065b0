package timeentries

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/odyssey-erp/odyssey-ats/internal/platform/db"
)

// Repository persists time entries.
type Repository interface {
	List(ctx context.Context, f Filter) ([]Entry, error)
	FindOpen(ctx context.Context, userID int64) (*Entry, error)
	ListOpen(ctx context.Context, userID int64) ([]Entry, error)
	Create(ctx context.Context, e *Entry) error
	Close(ctx context.Context, id int64, out time.Time, hours float64) error
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

const entryColumns = `id, user_id, user_name, to_char(work_date, 'YYYY-MM-DD'), clock_in_time, clock_out_time, total_hours, status`

func scanEntry(row pgx.Row) (*Entry, error) {
	var e Entry
	if err := row.Scan(&e.ID, &e.UserID, &e.UserName, &e.WorkDate, &e.ClockInTime, &e.ClockOutTime, &e.TotalHours, &e.Status); err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *repository) List(ctx context.Context, f Filter) ([]Entry, error) {
	var (
		where []string
		args  []interface{}
	)
	if f.UserID > 0 {
		args = append(args, f.UserID)
		where = append(where, fmt.Sprintf("user_id = $%d", len(args)))
	}
	if f.Date != "" {
		args = append(args, f.Date)
		where = append(where, fmt.Sprintf("work_date = $%d::date", len(args)))
	}
	query := `SELECT ` + entryColumns + ` FROM time_entries`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY clock_in_time DESC, id DESC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]Entry, 0)
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}

// FindOpen returns the user's latest open entry or nil.
func (r *repository) FindOpen(ctx context.Context, userID int64) (*Entry, error) {
	e, err := scanEntry(r.db.QueryRow(ctx, `SELECT `+entryColumns+` FROM time_entries
		WHERE user_id = $1 AND status = $2 ORDER BY clock_in_time DESC LIMIT 1`, userID, StatusClockedIn))
	if db.IsNoRows(err) {
		return nil, nil
	}
	return e, err
}

// ListOpen returns every open entry of the user, newest first.
func (r *repository) ListOpen(ctx context.Context, userID int64) ([]Entry, error) {
	rows, err := r.db.Query(ctx, `SELECT `+entryColumns+` FROM time_entries
		WHERE user_id = $1 AND status = $2 ORDER BY clock_in_time DESC`, userID, StatusClockedIn)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]Entry, 0, 1)
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}

// Create inserts an open entry. A unique index allows one open entry per
// user per work date.
func (r *repository) Create(ctx context.Context, e *Entry) error {
	err := r.db.QueryRow(ctx, `INSERT INTO time_entries (user_id, user_name, work_date, clock_in_time, status)
		VALUES ($1, $2, $3::date, $4, $5) RETURNING id`,
		e.UserID, e.UserName, e.WorkDate, e.ClockInTime, e.Status).Scan(&e.ID)
	if db.IsUniqueViolation(err) {
		return ErrAlreadyClockedIn
	}
	return err
}

func (r *repository) Close(ctx context.Context, id int64, out time.Time, hours float64) error {
	tag, err := r.db.Exec(ctx, `UPDATE time_entries SET clock_out_time = $1, total_hours = $2, status = $3
		WHERE id = $4 AND status = $5`, out, hours, StatusClockedOut, id, StatusClockedIn)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotClockedIn
	}
	return nil
}

var _ Repository = (*repository)(nil)
