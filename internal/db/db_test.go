package db

import (
	"context"
	"errors"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDialect(t *testing.T) {
	for driver, want := range map[string]Dialect{
		"postgres":   Postgres,
		"PostgreSQL": Postgres,
		"sqlite":     SQLite,
		"sqlite3":    SQLite,
	} {
		got, err := ParseDialect(driver)
		require.NoError(t, err, driver)
		assert.Equal(t, want, got)
	}

	_, err := ParseDialect("mysql")
	assert.Error(t, err)
}

func TestRebind(t *testing.T) {
	query := "INSERT INTO oncall (username, mxid, timezone) VALUES ($1, $2, $3)"

	assert.Equal(t, query, Rebind(Postgres, query))
	assert.Equal(t, "INSERT INTO oncall (username, mxid, timezone) VALUES (?, ?, ?)", Rebind(SQLite, query))
	assert.Equal(t, "SELECT '$' || x FROM t WHERE a = ?", Rebind(SQLite, "SELECT '$' || x FROM t WHERE a = $1"))
}

func TestIsUniqueViolation(t *testing.T) {
	assert.False(t, IsUniqueViolation(nil))
	assert.False(t, IsUniqueViolation(errors.New("boom")))
	assert.True(t, IsUniqueViolation(&pq.Error{Code: "23505"}))
	assert.False(t, IsUniqueViolation(&pq.Error{Code: "23503"}))
	assert.True(t, IsUniqueViolation(errors.New("constraint failed: UNIQUE constraint failed: oncall.username (1555)")))
}

func TestOpenAndMigrateSQLite(t *testing.T) {
	conn, err := Open(context.Background(), SQLite, ":memory:")
	require.NoError(t, err)
	defer func() { _ = conn.Close() }()

	require.NoError(t, Migrate(conn, SQLite))
	// a second run is a no-op
	require.NoError(t, Migrate(conn, SQLite))

	var count int
	require.NoError(t, conn.QueryRow("SELECT COUNT(*) FROM oncall").Scan(&count))
	assert.Equal(t, 0, count)
	require.NoError(t, conn.QueryRow("SELECT COUNT(*) FROM cookies").Scan(&count))
	assert.Equal(t, 0, count)
}
