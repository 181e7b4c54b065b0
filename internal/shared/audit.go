package shared

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

// Execer is the subset of pgx used for single statement writes.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Activity represents a record stored in activity_logs.
type Activity struct {
	ActorID  int64
	Action   string
	Entity   string
	EntityID string
	Meta     map[string]any
	At       time.Time
}

// ActivityRecorder records best effort activity entries.
type ActivityRecorder interface {
	Record(ctx context.Context, entry Activity)
}

// ActivityLogger writes records into activity_logs.
type ActivityLogger struct {
	db     Execer
	logger *slog.Logger
}

// NewActivityLogger returns a new ActivityLogger.
func NewActivityLogger(db Execer, logger *slog.Logger) *ActivityLogger {
	return &ActivityLogger{db: db, logger: logger}
}

// Record persists the entry. Failures are logged and swallowed so that the
// triggering request still succeeds.
func (l *ActivityLogger) Record(ctx context.Context, entry Activity) {
	if l == nil || l.db == nil {
		return
	}
	if err := l.insert(ctx, entry); err != nil && l.logger != nil {
		l.logger.Warn("activity log write failed",
			slog.String("action", entry.Action),
			slog.String("entity", entry.Entity),
			slog.String("entity_id", entry.EntityID),
			slog.Any("error", err))
	}
}

func (l *ActivityLogger) insert(ctx context.Context, entry Activity) error {
	if entry.Action == "" || entry.Entity == "" || entry.EntityID == "" {
		return errors.New("activity log requires action/entity/entity_id")
	}
	if entry.ActorID == 0 {
		entry.ActorID = ActorID(ctx)
	}
	if entry.At.IsZero() {
		entry.At = time.Now().UTC()
	}
	metaJSON, err := json.Marshal(entry.Meta)
	if err != nil {
		return err
	}
	var actor *int64
	if entry.ActorID > 0 {
		actor = &entry.ActorID
	}
	_, err = l.db.Exec(ctx, `INSERT INTO activity_logs (actor_id, action, entity, entity_id, meta, occurred_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		actor, entry.Action, entry.Entity, entry.EntityID, metaJSON, entry.At)
	return err
}
