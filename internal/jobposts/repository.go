package jobposts

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
	// ErrNotFound is returned when a job does not exist.
	ErrNotFound = &shared.Error{Kind: shared.ErrNotFound, Message: "Job not found"}
	// ErrJobCodeTaken is returned when another job already uses the code.
	ErrJobCodeTaken = &shared.Error{Kind: shared.ErrAlreadyExists, Message: "Job code already exists"}
)

// Repository persists jobs.
type Repository interface {
	List(ctx context.Context) ([]Job, error)
	ListCreatedSince(ctx context.Context, since time.Time) ([]Job, error)
	Get(ctx context.Context, id int64) (*Job, error)
	Create(ctx context.Context, j *Job) error
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

const jobColumns = `id, job_code, title, client, client_spoc, skill, work_location, job_category, open_positions,
	team_lead, principal_consultant, budget, description, requirements, salary_range, status, created_by,
	created_at, updated_at`

func scanJob(row pgx.Row) (*Job, error) {
	var j Job
	if err := row.Scan(&j.ID, &j.JobCode, &j.Title, &j.Client, &j.ClientSpoc, &j.Skill, &j.WorkLocation,
		&j.JobCategory, &j.OpenPositions, &j.TeamLead, &j.PrincipalConsultant, &j.Budget, &j.Description,
		&j.Requirements, &j.SalaryRange, &j.Status, &j.CreatedBy, &j.CreatedAt, &j.UpdatedAt); err != nil {
		return nil, err
	}
	return &j, nil
}

func (r *repository) collect(ctx context.Context, query string, args ...interface{}) ([]Job, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]Job, 0)
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *j)
	}
	return out, rows.Err()
}

func (r *repository) List(ctx context.Context) ([]Job, error) {
	return r.collect(ctx, `SELECT `+jobColumns+` FROM jobs ORDER BY created_at DESC, id DESC`)
}

func (r *repository) ListCreatedSince(ctx context.Context, since time.Time) ([]Job, error) {
	return r.collect(ctx, `SELECT `+jobColumns+` FROM jobs WHERE created_at >= $1 ORDER BY created_at DESC, id DESC`, since)
}

func (r *repository) Get(ctx context.Context, id int64) (*Job, error) {
	j, err := scanJob(r.db.QueryRow(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = $1`, id))
	if db.IsNoRows(err) {
		return nil, ErrNotFound
	}
	return j, err
}

func (r *repository) Create(ctx context.Context, j *Job) error {
	err := r.db.QueryRow(ctx, `INSERT INTO jobs (job_code, title, client, client_spoc, skill, work_location,
			job_category, open_positions, team_lead, principal_consultant, budget, description, requirements,
			salary_range, status, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING id, created_at, updated_at`,
		j.JobCode, j.Title, j.Client, j.ClientSpoc, j.Skill, j.WorkLocation, j.JobCategory, j.OpenPositions,
		j.TeamLead, j.PrincipalConsultant, j.Budget, j.Description, j.Requirements, j.SalaryRange, j.Status,
		j.CreatedBy,
	).Scan(&j.ID, &j.CreatedAt, &j.UpdatedAt)
	if db.IsUniqueViolation(err) {
		return ErrJobCodeTaken
	}
	return err
}

func (r *repository) Update(ctx context.Context, id int64, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	query, args := db.BuildUpdate("jobs", id, updates, time.Now().UTC())
	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return ErrJobCodeTaken
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the job. Unknown ids are not an error.
func (r *repository) Delete(ctx context.Context, id int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM jobs WHERE id = $1`, id)
	return err
}

var _ Repository = (*repository)(nil)
