package interviews

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/odyssey-erp/odyssey-ats/internal/platform/db"
	"github.com/odyssey-erp/odyssey-ats/internal/shared"
)

// ErrNotFound is returned when an interview does not exist.
var ErrNotFound = &shared.Error{Kind: shared.ErrNotFound, Message: "Interview not found"}

// Repository persists interviews.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error
	List(ctx context.Context) ([]Interview, error)
	ListByDate(ctx context.Context, date string) ([]Interview, error)
	Get(ctx context.Context, id int64) (*Interview, error)
	FindByCandidate(ctx context.Context, candidateID int64) (*Interview, error)
	Create(ctx context.Context, iv *Interview) error
	Save(ctx context.Context, iv *Interview) error
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

const interviewColumns = `id, candidate_id, candidate_name, candidate_email, candidate_mobile, job_code, client,
	location, skill, COALESCE(to_char(interview_date, 'YYYY-MM-DD'), ''), interview_time, interview_type,
	interviewer, status, result, score, feedback, notes, recruiter, scheduled_by, created_at, updated_at`

const orderNewest = ` ORDER BY interview_date DESC NULLS LAST, interview_time DESC, id DESC`

// candidate_id is nulled when the candidate is deleted; such interviews read
// back with CandidateID 0.
func scanInterview(row pgx.Row) (*Interview, error) {
	var iv Interview
	var candidateID pgtype.Int8
	err := row.Scan(&iv.ID, &candidateID, &iv.CandidateName, &iv.CandidateEmail, &iv.CandidateMobile,
		&iv.JobCode, &iv.Client, &iv.Location, &iv.Skill, &iv.InterviewDate, &iv.InterviewTime,
		&iv.InterviewType, &iv.Interviewer, &iv.Status, &iv.Result, &iv.Score, &iv.Feedback, &iv.Notes,
		&iv.Recruiter, &iv.ScheduledBy, &iv.CreatedAt, &iv.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if candidateID.Valid {
		iv.CandidateID = candidateID.Int64
	}
	return &iv, nil
}

func candidateRef(id int64) pgtype.Int8 {
	return pgtype.Int8{Int64: id, Valid: id > 0}
}

func (r *repository) collect(ctx context.Context, query string, args ...interface{}) ([]Interview, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]Interview, 0)
	for rows.Next() {
		iv, err := scanInterview(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *iv)
	}
	return out, rows.Err()
}

func (r *repository) List(ctx context.Context) ([]Interview, error) {
	return r.collect(ctx, `SELECT `+interviewColumns+` FROM interviews`+orderNewest)
}

// ListByDate returns the interviews held on date (YYYY-MM-DD).
func (r *repository) ListByDate(ctx context.Context, date string) ([]Interview, error) {
	return r.collect(ctx, `SELECT `+interviewColumns+` FROM interviews WHERE interview_date = $1::date
		ORDER BY interview_time, id`, date)
}

func (r *repository) Get(ctx context.Context, id int64) (*Interview, error) {
	iv, err := scanInterview(r.db.QueryRow(ctx, `SELECT `+interviewColumns+` FROM interviews WHERE id = $1`, id))
	if db.IsNoRows(err) {
		return nil, ErrNotFound
	}
	return iv, err
}

func (r *repository) FindByCandidate(ctx context.Context, candidateID int64) (*Interview, error) {
	iv, err := scanInterview(r.db.QueryRow(ctx, `SELECT `+interviewColumns+` FROM interviews
		WHERE candidate_id = $1 ORDER BY id LIMIT 1`, candidateID))
	if db.IsNoRows(err) {
		return nil, ErrNotFound
	}
	return iv, err
}

func (r *repository) Create(ctx context.Context, iv *Interview) error {
	return r.db.QueryRow(ctx, `INSERT INTO interviews (candidate_id, candidate_name, candidate_email,
			candidate_mobile, job_code, client, location, skill, interview_date, interview_time, interview_type,
			interviewer, status, result, score, feedback, notes, recruiter, scheduled_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NULLIF($9, '')::date, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
		RETURNING id, created_at, updated_at`,
		candidateRef(iv.CandidateID), iv.CandidateName, iv.CandidateEmail, iv.CandidateMobile, iv.JobCode, iv.Client,
		iv.Location, iv.Skill, iv.InterviewDate, iv.InterviewTime, iv.InterviewType, iv.Interviewer,
		iv.Status, iv.Result, iv.Score, iv.Feedback, iv.Notes, iv.Recruiter, iv.ScheduledBy,
	).Scan(&iv.ID, &iv.CreatedAt, &iv.UpdatedAt)
}

func (r *repository) Save(ctx context.Context, iv *Interview) error {
	err := r.db.QueryRow(ctx, `UPDATE interviews SET candidate_id = $2, candidate_name = $3, candidate_email = $4,
			candidate_mobile = $5, job_code = $6, client = $7, location = $8, skill = $9,
			interview_date = NULLIF($10, '')::date, interview_time = $11, interview_type = $12, interviewer = $13,
			status = $14, result = $15, score = $16, feedback = $17, notes = $18, recruiter = $19,
			scheduled_by = $20, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`,
		iv.ID, candidateRef(iv.CandidateID), iv.CandidateName, iv.CandidateEmail, iv.CandidateMobile, iv.JobCode, iv.Client,
		iv.Location, iv.Skill, iv.InterviewDate, iv.InterviewTime, iv.InterviewType, iv.Interviewer,
		iv.Status, iv.Result, iv.Score, iv.Feedback, iv.Notes, iv.Recruiter, iv.ScheduledBy,
	).Scan(&iv.UpdatedAt)
	if db.IsNoRows(err) {
		return ErrNotFound
	}
	return err
}

// Delete removes an interview. Unknown ids are not an error.
func (r *repository) Delete(ctx context.Context, id int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM interviews WHERE id = $1`, id)
	return err
}

var _ Repository = (*repository)(nil)
