package reports

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Counter groups rows of an entity by status.
type Counter interface {
	CountByStatus(ctx context.Context, entity Entity) ([]StatusCount, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository returns a Postgres backed Counter.
func NewRepository(pool *pgxpool.Pool) Counter {
	return &repository{pool: pool}
}

func (r *repository) CountByStatus(ctx context.Context, entity Entity) ([]StatusCount, error) {
	switch entity {
	case EntityCandidates, EntityJobs, EntityInterviews:
	default:
		return nil, fmt.Errorf("reports: unknown entity %q", entity)
	}
	query := fmt.Sprintf(`SELECT COALESCE(NULLIF(TRIM(status), ''), 'Unknown') AS status, COUNT(*)
FROM %s GROUP BY 1 ORDER BY 2 DESC, 1`, entity)
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []StatusCount
	for rows.Next() {
		var c StatusCount
		if err := rows.Scan(&c.Status, &c.Count); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func lower(s string) string { return strings.ToLower(strings.TrimSpace(s)) }
