// Package sqlite implements the repository interfaces using SQLite as the
// storage backend.
//
// WHY modernc.org/sqlite INSTEAD OF github.com/mattn/go-sqlite3?
// mattn/go-sqlite3 uses CGo, which needs a C compiler and makes
// cross-compilation painful. modernc.org/sqlite is a pure Go translation of
// the SQLite sources — works everywhere Go works.
//
// All four repositories share one *DB: the tables are small and the cascade
// rules (user → snippets → bookmarks, language → detach) live in the schema,
// so splitting the connection per entity would buy nothing.
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"

	// Side-effect import: registers the "sqlite" driver with database/sql.
	sqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// DB wraps a sql.DB connection pool and exposes one repository per entity.
// The repositories share the pool; the lifecycle (New/Close) belongs to DB.
type DB struct {
	conn *sql.DB

	Users     *UserRepo
	Languages *LanguageRepo
	Snippets  *SnippetRepo
	Bookmarks *BookmarkRepo
}

// New opens (or creates) the SQLite database at dbPath and runs migrations.
// Use ":memory:" for tests.
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// SQLite allows one writer at a time, and the PRAGMAs below apply per
	// connection. A single pooled connection keeps both consistent (and
	// makes ":memory:" behave: every handle would otherwise get its own
	// empty database).
	conn.SetMaxOpenConns(1)

	// Force an immediate connection so a bad path surfaces here, not on the
	// first query.
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL lets reads proceed while a write is in progress — necessary for a
	// web server where requests hit the database concurrently.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	// Foreign keys are OFF by default in SQLite. The cascade and SET NULL
	// rules below do nothing without this.
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
	}

	db := &DB{conn: conn}
	db.Users = &UserRepo{conn: conn}
	db.Languages = &LanguageRepo{conn: conn}
	db.Snippets = &SnippetRepo{conn: conn}
	db.Bookmarks = &BookmarkRepo{conn: conn}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the database connection pool. Always defer this next to New.
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate creates the schema. CREATE TABLE IF NOT EXISTS keeps it safe to
// run on every start.
//
// The referential rules are the heart of the data model:
//   - snippets.user_id      ON DELETE CASCADE   (delete user → delete snippets)
//   - snippets.language_id  ON DELETE SET NULL  (delete language → detach)
//   - bookmarks.user_id     ON DELETE CASCADE
//   - bookmarks.snippet_id  ON DELETE CASCADE
//   - UNIQUE(user_id, snippet_id) on bookmarks — at most one row per pair;
//     the bookmark toggle treats this constraint as authoritative under
//     concurrency.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id            TEXT PRIMARY KEY,
			username      TEXT NOT NULL UNIQUE,
			email         TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL DEFAULT '',
			role          TEXT NOT NULL DEFAULT 'user',
			github_id     INTEGER UNIQUE,
			created_at    DATETIME NOT NULL,
			updated_at    DATETIME NOT NULL
		);

		CREATE TABLE IF NOT EXISTS languages (
			id         TEXT PRIMARY KEY,
			name       TEXT NOT NULL UNIQUE,
			color_code TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS snippets (
			id           TEXT PRIMARY KEY,
			title        TEXT NOT NULL,
			code_content TEXT NOT NULL,
			description  TEXT NOT NULL DEFAULT '',
			language_id  TEXT REFERENCES languages(id) ON DELETE SET NULL,
			user_id      TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			created_at   DATETIME NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_snippets_created_at ON snippets(created_at);
		CREATE INDEX IF NOT EXISTS idx_snippets_user_id ON snippets(user_id);

		CREATE TABLE IF NOT EXISTS bookmarks (
			id            TEXT PRIMARY KEY,
			user_id       TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			snippet_id    TEXT NOT NULL REFERENCES snippets(id) ON DELETE CASCADE,
			bookmarked_at DATETIME NOT NULL,
			UNIQUE (user_id, snippet_id)
		);
	`)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}

	return nil
}

// isUniqueViolation reports whether err is a SQLite UNIQUE constraint
// failure. The driver exposes the extended result code on its typed error,
// so this works without string matching.
func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	if errors.As(err, &se) {
		code := se.Code()
		return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE ||
			code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
	}
	return false
}
