package db

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"
)

// Open connects to the database at path and applies the schema. Local paths
// go through modernc.org/sqlite; libsql:// and wss:// URLs through libSQL.
// The caller owns the returned handle and must close it.
func Open(ctx context.Context, path string) (*sql.DB, error) {
	driver, dsn := driverFor(path)
	if driver == "sqlite" {
		if err := ensureDir(path); err != nil {
			return nil, err
		}
	}

	conn, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Debug().Str("driver", driver).Msg("database connection successful")

	if err := migrate(ctx, conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Info().Msg("migrations completed successfully")
	return conn, nil
}

func ensureDir(path string) error {
	dir := filepath.Dir(localPath(path))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create data directory %s: %w", dir, err)
	}
	return nil
}

func driverFor(path string) (driver, dsn string) {
	if strings.HasPrefix(path, "libsql://") || strings.HasPrefix(path, "wss://") {
		return "libsql", path
	}
	return "sqlite", FormatDSN(path)
}

// FormatDSN turns a file path into a modernc.org/sqlite DSN with the pragmas
// the repositories rely on.
func FormatDSN(path string) string {
	path = localPath(path)

	// See: https://pkg.go.dev/modernc.org/sqlite#pkg-overview
	params := url.Values{}
	params.Set("mode", "rwc")
	params.Set("_time_format", "sqlite")
	params.Set("_pragma", "foreign_keys(1)")
	params.Add("_pragma", "journal_mode(WAL)")
	params.Add("_pragma", "synchronous(NORMAL)")
	params.Add("_pragma", "busy_timeout(5000)")
	// BEGIN IMMEDIATE: transactions take the write lock up front.
	params.Set("_txlock", "immediate")

	return "file:" + path + "?" + params.Encode()
}

func localPath(path string) string {
	if path == "" {
		path = "linkhub.db"
	}
	path = strings.TrimPrefix(path, "file:")
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	return path
}

func migrate(ctx context.Context, db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS links (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		url TEXT NOT NULL,
		description TEXT,
		icon TEXT,
		is_active INTEGER NOT NULL DEFAULT 1,
		sort_order INTEGER NOT NULL DEFAULT 0,
		category TEXT NOT NULL DEFAULT 'link' CHECK (category IN ('link', 'project')),
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS admin_auth (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT NOT NULL UNIQUE DEFAULT 'admin',
		password_hash TEXT NOT NULL,
		salt TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_links_category_order ON links(category, sort_order);
	CREATE INDEX IF NOT EXISTS idx_links_active ON links(is_active);
	`

	_, err := db.ExecContext(ctx, schema)
	return err
}
