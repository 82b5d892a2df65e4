package out

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"feedvault/internal/modules/feed/domain"
	apperrors "feedvault/internal/platform/errors"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements both ActivityStore and TokenStore on one connection.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	store := &SQLiteStore{db: db}
	if err := store.ensureSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func (s *SQLiteStore) ensureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS activities (
  id TEXT PRIMARY KEY,
  student_id TEXT NOT NULL,
  event_date TEXT NOT NULL,
  action_type TEXT,
  json TEXT NOT NULL,
  processed INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS activities_student_id ON activities (student_id);
CREATE INDEX IF NOT EXISTS activities_processed ON activities (processed);
CREATE TABLE IF NOT EXISTS auth_tokens (
  login TEXT PRIMARY KEY,
  token TEXT NOT NULL
);
`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) InsertActivity(ctx context.Context, studentID string, activity domain.Activity) (bool, error) {
	const stmt = `
INSERT INTO activities (id, student_id, event_date, action_type, json, processed)
VALUES (?, ?, ?, ?, ?, 0)
ON CONFLICT(id) DO NOTHING;
`
	res, err := s.db.ExecContext(ctx, stmt,
		activity.ID,
		studentID,
		activity.EventDate,
		activity.ActionType,
		string(activity.Payload),
	)
	if err != nil {
		return false, fmt.Errorf("insert activity %s: %w", activity.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert activity %s: %w", activity.ID, err)
	}
	return n > 0, nil
}

func (s *SQLiteStore) ListUnprocessedActivities(ctx context.Context) ([]domain.Activity, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, student_id, event_date, action_type, json FROM activities WHERE processed = 0`)
	if err != nil {
		return nil, fmt.Errorf("select unprocessed activities: %w", err)
	}
	defer rows.Close()
	var out []domain.Activity
	for rows.Next() {
		var (
			a          domain.Activity
			actionType sql.NullString
			payload    string
		)
		if err := rows.Scan(&a.ID, &a.StudentID, &a.EventDate, &actionType, &payload); err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		a.ActionType = actionType.String
		a.Payload = []byte(payload)
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate activities: %w", err)
	}
	return out, nil
}

func (s *SQLiteStore) MarkProcessed(ctx context.Context, activityID string) error {
	if _, err := s.db.ExecContext(ctx, `UPDATE activities SET processed = 1 WHERE id = ?`, activityID); err != nil {
		return fmt.Errorf("mark activity %s processed: %w", activityID, err)
	}
	return nil
}

func (s *SQLiteStore) DeleteActivities(ctx context.Context, studentID string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM activities WHERE student_id = ?`, studentID)
	if err != nil {
		return 0, fmt.Errorf("delete activities for %s: %w", studentID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete activities for %s: %w", studentID, err)
	}
	return n, nil
}

func (s *SQLiteStore) GetToken(ctx context.Context, login string) (string, error) {
	var token string
	err := s.db.QueryRowContext(ctx, `SELECT token FROM auth_tokens WHERE login = ?`, login).Scan(&token)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%w: token for %s", apperrors.ErrNotFound, login)
	}
	if err != nil {
		return "", fmt.Errorf("select token: %w", err)
	}
	return token, nil
}

func (s *SQLiteStore) SetToken(ctx context.Context, login, token string) error {
	const stmt = `
INSERT INTO auth_tokens (login, token) VALUES (?, ?)
ON CONFLICT(login) DO UPDATE SET token=excluded.token;
`
	if _, err := s.db.ExecContext(ctx, stmt, login, token); err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	return nil
}
