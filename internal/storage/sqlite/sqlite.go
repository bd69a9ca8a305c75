package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ManojKumarVadiithya/Movie-Review/internal/storage"

	_ "modernc.org/sqlite"
)

// SqliteDB is the durable client-side state file. It plays the role the
// browser's localStorage played for this app: a handful of key-value
// entries that survive restarts.
type SqliteDB struct {
	Conn *sql.DB
}

const (
	keyToken = "token"
	keyUser  = "user"
)

func New(storagePath string) (*SqliteDB, error) {
	dir := filepath.Dir(storagePath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	db, err := sql.Open("sqlite", storagePath+"?_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS client_state (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)
	`)
	if err != nil {
		return nil, err
	}
	return &SqliteDB{Conn: db}, nil
}

func (db *SqliteDB) Close() error {
	return db.Conn.Close()
}

// SaveSession writes the token and the serialized user in one transaction,
// so readers never observe one without the other.
func (db *SqliteDB) SaveSession(ctx context.Context, token string, user string) error {
	tx, err := db.Conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	const upsert = `
		INSERT INTO client_state (key, value) VALUES (?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value`
	if _, err := tx.ExecContext(ctx, upsert, keyToken, token); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, upsert, keyUser, user); err != nil {
		return err
	}
	return tx.Commit()
}

// LoadSession returns the stored token and serialized user. Absence of
// either entry is storage.ErrNotFound.
func (db *SqliteDB) LoadSession(ctx context.Context) (token string, user string, err error) {
	get := func(key string) (string, error) {
		var value string
		err := db.Conn.QueryRowContext(ctx, "SELECT value FROM client_state WHERE key = ?", key).Scan(&value)
		if errors.Is(err, sql.ErrNoRows) {
			return "", storage.ErrNotFound
		}
		return value, err
	}
	if token, err = get(keyToken); err != nil {
		return "", "", err
	}
	if user, err = get(keyUser); err != nil {
		return "", "", err
	}
	return token, user, nil
}

// ClearSession removes both entries in one transaction. Clearing an
// already empty store is not an error.
func (db *SqliteDB) ClearSession(ctx context.Context) error {
	tx, err := db.Conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if _, err := tx.ExecContext(ctx, "DELETE FROM client_state WHERE key IN (?, ?)", keyToken, keyUser); err != nil {
		return err
	}
	return tx.Commit()
}
