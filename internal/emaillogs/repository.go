package emaillogs

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/odyssey-erp/odyssey-ats/internal/platform/db"
	"github.com/odyssey-erp/odyssey-ats/internal/shared"
)

// ErrNotFound is returned when a log row does not exist.
var ErrNotFound = &shared.Error{Kind: shared.ErrNotFound, Message: "Email log not found"}

// Repository persists email logs.
type Repository interface {
	List(ctx context.Context) ([]Log, error)
	Get(ctx context.Context, id int64) (*Log, error)
	Create(ctx context.Context, l *Log) error
	SetStatus(ctx context.Context, id int64, status, errMsg string) error
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

const logColumns = `id, recipient_email, recipient_name, subject, message, status, sent_by, error, sent_at`

func scanLog(row pgx.Row) (*Log, error) {
	var l Log
	if err := row.Scan(&l.ID, &l.RecipientEmail, &l.RecipientName, &l.Subject, &l.Message, &l.Status,
		&l.SentBy, &l.Error, &l.SentAt); err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *repository) List(ctx context.Context) ([]Log, error) {
	rows, err := r.db.Query(ctx, `SELECT `+logColumns+` FROM email_logs ORDER BY sent_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]Log, 0)
	for rows.Next() {
		l, err := scanLog(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *l)
	}
	return out, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (*Log, error) {
	l, err := scanLog(r.db.QueryRow(ctx, `SELECT `+logColumns+` FROM email_logs WHERE id = $1`, id))
	if db.IsNoRows(err) {
		return nil, ErrNotFound
	}
	return l, err
}

func (r *repository) Create(ctx context.Context, l *Log) error {
	return r.db.QueryRow(ctx, `INSERT INTO email_logs (recipient_email, recipient_name, subject, message, status, sent_by, error)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, sent_at`,
		l.RecipientEmail, l.RecipientName, l.Subject, l.Message, l.Status, l.SentBy, l.Error,
	).Scan(&l.ID, &l.SentAt)
}

func (r *repository) SetStatus(ctx context.Context, id int64, status, errMsg string) error {
	tag, err := r.db.Exec(ctx, `UPDATE email_logs SET status = $1, error = $2, sent_at = NOW() WHERE id = $3`, status, errMsg, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

var _ Repository = (*repository)(nil)
