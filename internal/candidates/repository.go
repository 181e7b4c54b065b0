package candidates

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/odyssey-erp/odyssey-ats/internal/platform/db"
	"github.com/odyssey-erp/odyssey-ats/internal/shared"
)

// ErrNotFound is returned when a candidate does not exist.
var ErrNotFound = &shared.Error{Kind: shared.ErrNotFound, Message: "Candidate not found"}

// Repository persists candidates.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error
	List(ctx context.Context) ([]Candidate, error)
	Search(ctx context.Context, term string) ([]Candidate, error)
	Get(ctx context.Context, id int64) (*Candidate, error)
	Create(ctx context.Context, c *Candidate) error
	Save(ctx context.Context, c *Candidate) error
	SetInterviewID(ctx context.Context, id int64, interviewID *int64) error
	Delete(ctx context.Context, id int64) error
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

const candidateColumns = `id, date, job_code, job_category, client, client_name, client_spoc, skill, source,
	current_location, work_location, location, name, mobile, email, status, status1, education,
	total_ex, rex, cctc, ectc, notice, current_company, remarks, recruiter, am, interview_id,
	created_at, updated_at`

func scanCandidate(row pgx.Row) (*Candidate, error) {
	var c Candidate
	err := row.Scan(&c.ID, &c.Date, &c.JobCode, &c.JobCategory, &c.Client, &c.ClientName, &c.ClientSpoc,
		&c.Skill, &c.Source, &c.CurrentLocation, &c.WorkLocation, &c.Location, &c.Name, &c.Mobile, &c.Email,
		&c.Status, &c.Status1, &c.Education, &c.TotalEx, &c.Rex, &c.CCTC, &c.ECTC, &c.Notice,
		&c.CurrentCompany, &c.Remarks, &c.Recruiter, &c.AM, &c.InterviewID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *repository) collect(ctx context.Context, query string, args ...interface{}) ([]Candidate, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Candidate, 0)
	for rows.Next() {
		c, err := scanCandidate(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

func (r *repository) List(ctx context.Context) ([]Candidate, error) {
	return r.collect(ctx, `SELECT `+candidateColumns+` FROM candidates ORDER BY created_at DESC, id DESC`)
}

func (r *repository) Search(ctx context.Context, term string) ([]Candidate, error) {
	return r.collect(ctx, `SELECT `+candidateColumns+` FROM candidates
		WHERE name ILIKE $1 OR email ILIKE $1 OR skill ILIKE $1 OR current_company ILIKE $1
		ORDER BY created_at DESC, id DESC`, "%"+escapeLike(term)+"%")
}

func (r *repository) Get(ctx context.Context, id int64) (*Candidate, error) {
	c, err := scanCandidate(r.db.QueryRow(ctx, `SELECT `+candidateColumns+` FROM candidates WHERE id = $1`, id))
	if db.IsNoRows(err) {
		return nil, ErrNotFound
	}
	return c, err
}

func (r *repository) Create(ctx context.Context, c *Candidate) error {
	return r.db.QueryRow(ctx, `INSERT INTO candidates (date, job_code, job_category, client, client_name,
			client_spoc, skill, source, current_location, work_location, location, name, mobile, email,
			status, status1, education, total_ex, rex, cctc, ectc, notice, current_company, remarks,
			recruiter, am, interview_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19,
			$20, $21, $22, $23, $24, $25, $26, $27)
		RETURNING id, created_at, updated_at`,
		c.Date, c.JobCode, c.JobCategory, c.Client, c.ClientName, c.ClientSpoc, c.Skill, c.Source,
		c.CurrentLocation, c.WorkLocation, c.Location, c.Name, c.Mobile, c.Email, c.Status, c.Status1,
		c.Education, c.TotalEx, c.Rex, c.CCTC, c.ECTC, c.Notice, c.CurrentCompany, c.Remarks,
		c.Recruiter, c.AM, c.InterviewID,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
}

// Save writes every column of c back to its row.
func (r *repository) Save(ctx context.Context, c *Candidate) error {
	err := r.db.QueryRow(ctx, `UPDATE candidates SET date = $2, job_code = $3, job_category = $4, client = $5,
			client_name = $6, client_spoc = $7, skill = $8, source = $9, current_location = $10,
			work_location = $11, location = $12, name = $13, mobile = $14, email = $15, status = $16,
			status1 = $17, education = $18, total_ex = $19, rex = $20, cctc = $21, ectc = $22, notice = $23,
			current_company = $24, remarks = $25, recruiter = $26, am = $27, interview_id = $28,
			updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`,
		c.ID, c.Date, c.JobCode, c.JobCategory, c.Client, c.ClientName, c.ClientSpoc, c.Skill, c.Source,
		c.CurrentLocation, c.WorkLocation, c.Location, c.Name, c.Mobile, c.Email, c.Status, c.Status1,
		c.Education, c.TotalEx, c.Rex, c.CCTC, c.ECTC, c.Notice, c.CurrentCompany, c.Remarks,
		c.Recruiter, c.AM, c.InterviewID,
	).Scan(&c.UpdatedAt)
	if db.IsNoRows(err) {
		return ErrNotFound
	}
	return err
}

func (r *repository) SetInterviewID(ctx context.Context, id int64, interviewID *int64) error {
	tag, err := r.db.Exec(ctx, `UPDATE candidates SET interview_id = $2, updated_at = NOW() WHERE id = $1`, id, interviewID)
	if err != nil {
		return fmt.Errorf("link interview: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the candidate. Unknown ids are not an error.
func (r *repository) Delete(ctx context.Context, id int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM candidates WHERE id = $1`, id)
	return err
}

func escapeLike(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if r == '%' || r == '_' || r == '\\' {
			out = append(out, '\\')
		}
		out = append(out, r)
	}
	return string(out)
}

var _ Repository = (*repository)(nil)
