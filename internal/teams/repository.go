package teams

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/odyssey-erp/odyssey-ats/internal/platform/db"
	"github.com/odyssey-erp/odyssey-ats/internal/shared"
)

var (
	// ErrNotFound is returned when a team does not exist.
	ErrNotFound = &shared.Error{Kind: shared.ErrNotFound, Message: "Team not found"}
	// ErrUserNotFound is returned when a member id does not match a user.
	ErrUserNotFound = &shared.Error{Kind: shared.ErrNotFound, Message: "User not found"}
)

// Repository persists teams and their membership.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error
	List(ctx context.Context) ([]Team, error)
	Get(ctx context.Context, id int64) (*Team, error)
	Create(ctx context.Context, t *Team) error
	Update(ctx context.Context, id int64, updates map[string]interface{}) error
	Delete(ctx context.Context, id int64) error
	SetUserTeam(ctx context.Context, userID int64, teamID *int64) error
	ClearMembers(ctx context.Context, teamID int64) error
}

type dbtx interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

type repository struct {
	db   dbtx
	pool *pgxpool.Pool
}

// NewRepository returns a pgx backed Repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool, pool: pool}
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &repository{db: tx, pool: r.pool})
	})
}

const teamSelect = `SELECT t.id, t.name, t.description, t.leader_id, t.created_at,
	COALESCE(array_agg(u.id ORDER BY u.id) FILTER (WHERE u.id IS NOT NULL), '{}')
	FROM teams t LEFT JOIN users u ON u.team_id = t.id`

func scanTeam(row pgx.Row) (*Team, error) {
	var t Team
	if err := row.Scan(&t.ID, &t.Name, &t.Description, &t.LeaderID, &t.CreatedAt, &t.MemberIDs); err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *repository) List(ctx context.Context) ([]Team, error) {
	rows, err := r.db.Query(ctx, teamSelect+` GROUP BY t.id ORDER BY t.name, t.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]Team, 0)
	for rows.Next() {
		t, err := scanTeam(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (*Team, error) {
	t, err := scanTeam(r.db.QueryRow(ctx, teamSelect+` WHERE t.id = $1 GROUP BY t.id`, id))
	if db.IsNoRows(err) {
		return nil, ErrNotFound
	}
	return t, err
}

func (r *repository) Create(ctx context.Context, t *Team) error {
	t.MemberIDs = []int64{}
	return r.db.QueryRow(ctx, `INSERT INTO teams (name, description, leader_id) VALUES ($1, $2, $3) RETURNING id, created_at`,
		t.Name, t.Description, t.LeaderID).Scan(&t.ID, &t.CreatedAt)
}

func (r *repository) Update(ctx context.Context, id int64, updates map[string]interface{}) error {
	query, args := db.BuildUpdate("teams", id, updates, time.Now().UTC())
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
	_, err := r.db.Exec(ctx, `DELETE FROM teams WHERE id = $1`, id)
	return err
}

func (r *repository) SetUserTeam(ctx context.Context, userID int64, teamID *int64) error {
	tag, err := r.db.Exec(ctx, `UPDATE users SET team_id = $1, updated_at = NOW() WHERE id = $2`, teamID, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *repository) ClearMembers(ctx context.Context, teamID int64) error {
	_, err := r.db.Exec(ctx, `UPDATE users SET team_id = NULL, updated_at = NOW() WHERE team_id = $1`, teamID)
	return err
}

var _ Repository = (*repository)(nil)
