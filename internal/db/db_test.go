package db

import (
	"context"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatDSN(t *testing.T) {
	for _, in := range []string{"data/app.db", "file:data/app.db", "file:data/app.db?mode=ro"} {
		dsn := FormatDSN(in)
		require.True(t, strings.HasPrefix(dsn, "file:data/app.db?"), dsn)

		q, err := url.ParseQuery(strings.SplitN(dsn, "?", 2)[1])
		require.NoError(t, err)
		assert.Equal(t, "rwc", q.Get("mode"))
		assert.Equal(t, "immediate", q.Get("_txlock"))
		assert.Contains(t, q["_pragma"], "journal_mode(WAL)")
		assert.Contains(t, q["_pragma"], "busy_timeout(5000)")
	}
}

func TestDriverFor(t *testing.T) {
	driver, dsn := driverFor("libsql://hub.turso.io?authToken=x")
	assert.Equal(t, "libsql", driver)
	assert.Equal(t, "libsql://hub.turso.io?authToken=x", dsn)

	driver, _ = driverFor("linkhub.db")
	assert.Equal(t, "sqlite", driver)
}

func TestOpenCreatesSchema(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "dir", "hub.db")

	conn, err := Open(ctx, path)
	require.NoError(t, err)
	defer conn.Close()

	var mode string
	require.NoError(t, conn.QueryRowContext(ctx, "PRAGMA journal_mode").Scan(&mode))
	assert.Equal(t, "wal", mode)

	for _, table := range []string{"links", "admin_auth"} {
		var name string
		err := conn.QueryRowContext(ctx, "SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?", table).Scan(&name)
		require.NoError(t, err, table)
	}

	_, err = conn.ExecContext(ctx, `INSERT INTO links (id, title, url, category, created_at, updated_at)
		VALUES ('1', 't', 'u', 'bogus', '', '')`)
	assert.Error(t, err)

	// Reopening runs the idempotent migration again.
	again, err := Open(ctx, path)
	require.NoError(t, err)
	again.Close()
}
