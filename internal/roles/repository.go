package roles

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/odyssey-erp/odyssey-ats/internal/platform/db"
	"github.com/odyssey-erp/odyssey-ats/internal/rbac"
	"github.com/odyssey-erp/odyssey-ats/internal/shared"
)

// Repository persists roles.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error
	List(ctx context.Context) ([]rbac.Role, error)
	Get(ctx context.Context, id string) (rbac.Role, error)
	FindByKey(ctx context.Context, key string) (rbac.Role, error)
	Create(ctx context.Context, role rbac.Role) error
	Update(ctx context.Context, role rbac.Role) error
	Delete(ctx context.Context, id string) error
	UpsertSystem(ctx context.Context, role rbac.Role) error
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

const roleColumns = `id, name, description, is_system, permissions, created_at, created_by, updated_at`

func scanRole(row pgx.Row) (rbac.Role, error) {
	var (
		role  rbac.Role
		perms []byte
	)
	if err := row.Scan(&role.ID, &role.Name, &role.Description, &role.IsSystem, &perms,
		&role.CreatedAt, &role.CreatedBy, &role.UpdatedAt); err != nil {
		return rbac.Role{}, err
	}
	role.Permissions = rbac.Permissions{}
	if len(perms) > 0 {
		if err := json.Unmarshal(perms, &role.Permissions); err != nil {
			return rbac.Role{}, fmt.Errorf("decode permissions for role %s: %w", role.ID, err)
		}
	}
	return role, nil
}

func (r *repository) List(ctx context.Context) ([]rbac.Role, error) {
	rows, err := r.db.Query(ctx, `SELECT `+roleColumns+` FROM roles ORDER BY is_system DESC, created_at DESC, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]rbac.Role, 0)
	for rows.Next() {
		role, err := scanRole(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, role)
	}
	return out, rows.Err()
}

func (r *repository) Get(ctx context.Context, id string) (rbac.Role, error) {
	role, err := scanRole(r.db.QueryRow(ctx, `SELECT `+roleColumns+` FROM roles WHERE id = $1`, id))
	if err != nil {
		if db.IsNoRows(err) {
			return rbac.Role{}, fmt.Errorf("role %s: %w", id, shared.ErrNotFound)
		}
		return rbac.Role{}, err
	}
	return role, nil
}

// FindByKey matches an exact id first, then a case-insensitive name.
func (r *repository) FindByKey(ctx context.Context, key string) (rbac.Role, error) {
	role, err := scanRole(r.db.QueryRow(ctx, `SELECT `+roleColumns+` FROM roles
		WHERE id = $1 OR lower(name) = lower($1)
		ORDER BY (id = $1) DESC, is_system DESC, created_at
		LIMIT 1`, key))
	if err != nil {
		if db.IsNoRows(err) {
			return rbac.Role{}, fmt.Errorf("role %s: %w", key, shared.ErrNotFound)
		}
		return rbac.Role{}, err
	}
	return role, nil
}

func (r *repository) Create(ctx context.Context, role rbac.Role) error {
	perms, err := json.Marshal(role.Permissions)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `INSERT INTO roles (id, name, description, is_system, permissions, created_at, created_by, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		role.ID, role.Name, role.Description, role.IsSystem, perms, role.CreatedAt, role.CreatedBy, role.UpdatedAt)
	if db.IsUniqueViolation(err) {
		return fmt.Errorf("role %s: %w", role.ID, shared.ErrAlreadyExists)
	}
	return err
}

// Update rewrites a custom role. System rows are never matched.
func (r *repository) Update(ctx context.Context, role rbac.Role) error {
	perms, err := json.Marshal(role.Permissions)
	if err != nil {
		return err
	}
	tag, err := r.db.Exec(ctx, `UPDATE roles SET name = $2, description = $3, permissions = $4, updated_at = $5
		WHERE id = $1 AND NOT is_system`,
		role.ID, role.Name, role.Description, perms, role.UpdatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("role %s: %w", role.ID, shared.ErrNotFound)
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM roles WHERE id = $1 AND NOT is_system`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("role %s: %w", id, shared.ErrNotFound)
	}
	return nil
}

// UpsertSystem inserts or refreshes a built in role.
func (r *repository) UpsertSystem(ctx context.Context, role rbac.Role) error {
	perms, err := json.Marshal(role.Permissions)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	_, err = r.db.Exec(ctx, `INSERT INTO roles (id, name, description, is_system, permissions, created_at, created_by, updated_at)
		VALUES ($1, $2, $3, TRUE, $4, $5, $6, $5)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, description = EXCLUDED.description,
			is_system = TRUE, permissions = EXCLUDED.permissions, updated_at = EXCLUDED.updated_at`,
		role.ID, role.Name, role.Description, perms, now, role.CreatedBy)
	return err
}
