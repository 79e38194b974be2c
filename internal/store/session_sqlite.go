package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"artify/internal/entity"

	_ "modernc.org/sqlite"
)

var ErrNotFound = errors.New("store: not found")

// SessionSQLite keeps at most one signed-in session in a local SQLite file.
type SessionSQLite struct {
	db *sql.DB
}

// OpenSessionSQLite opens (and creates if needed) the database at path.
// ":memory:" is accepted for tests.
func OpenSessionSQLite(ctx context.Context, path string) (*SessionSQLite, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, fmt.Errorf("create state dir: %w", err)
		}
	}
	// modernc.org/sqlite registers as "sqlite".
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// Each :memory: connection is its own database.
	db.SetMaxOpenConns(1)

	const schema = `
	CREATE TABLE IF NOT EXISTS sessions (
		id           INTEGER PRIMARY KEY CHECK (id = 1),
		email        TEXT NOT NULL,
		display_name TEXT NOT NULL DEFAULT '',
		photo_url    TEXT NOT NULL DEFAULT '',
		provider     TEXT NOT NULL,
		id_token     TEXT NOT NULL,
		expires_at   INTEGER NOT NULL,
		created_at   INTEGER NOT NULL
	);`
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create sessions table: %w", err)
	}
	return &SessionSQLite{db: db}, nil
}

func (r *SessionSQLite) Close() error {
	return r.db.Close()
}

// Save replaces the stored session.
func (r *SessionSQLite) Save(ctx context.Context, s entity.StoredSession) error {
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now()
	}
	const query = `
	INSERT INTO sessions (id, email, display_name, photo_url, provider, id_token, expires_at, created_at)
	VALUES (1, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (id) DO UPDATE SET
		email = excluded.email,
		display_name = excluded.display_name,
		photo_url = excluded.photo_url,
		provider = excluded.provider,
		id_token = excluded.id_token,
		expires_at = excluded.expires_at,
		created_at = excluded.created_at
	`
	_, err := r.db.ExecContext(ctx, query,
		s.Email,
		s.DisplayName,
		s.PhotoURL,
		s.Provider,
		s.IDToken,
		s.ExpiresAt.Unix(),
		s.CreatedAt.Unix(),
	)
	return err
}

// Get returns the stored session if it has not expired.
func (r *SessionSQLite) Get(ctx context.Context) (entity.StoredSession, error) {
	const query = `
	SELECT email, display_name, photo_url, provider, id_token, expires_at, created_at
	FROM sessions
	WHERE id = 1 AND expires_at > ?
	`
	var (
		s                    entity.StoredSession
		expiresAt, createdAt int64
	)
	err := r.db.QueryRowContext(ctx, query, time.Now().Unix()).Scan(
		&s.Email,
		&s.DisplayName,
		&s.PhotoURL,
		&s.Provider,
		&s.IDToken,
		&expiresAt,
		&createdAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return entity.StoredSession{}, ErrNotFound
		}
		return entity.StoredSession{}, err
	}
	s.ExpiresAt = time.Unix(expiresAt, 0)
	s.CreatedAt = time.Unix(createdAt, 0)
	return s, nil
}

func (r *SessionSQLite) Delete(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM sessions`)
	return err
}

// CleanupExpired drops a stored session that can no longer be restored.
func (r *SessionSQLite) CleanupExpired(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at <= ?`, time.Now().Unix())
	return err
}
