package repo

import (
	"context"
	"database/sql"
	"fmt"

	"Zodbot/internal/core/cookies"
	"Zodbot/internal/db"
)

type sqlCookieRepo struct {
	conn    *sql.DB
	dialect db.Dialect
}

// NewCookieRepository creates a cookie repository
func NewCookieRepository(conn *sql.DB, dialect db.Dialect) cookies.Repository {
	return &sqlCookieRepo{conn: conn, dialect: dialect}
}

func (r *sqlCookieRepo) Create(ctx context.Context, cookie cookies.Cookie) error {
	query := db.Rebind(r.dialect, `
		INSERT INTO cookies (from_user, to_user, fedora_release, value, given_at)
		VALUES ($1, $2, $3, 1, $4)`)

	_, err := r.conn.ExecContext(ctx, query, cookie.From, cookie.To, cookie.Release, cookie.GivenAt.UTC())
	if err != nil {
		if db.IsUniqueViolation(err) {
			return cookies.ErrDuplicateCookie
		}
		return fmt.Errorf("failed to store cookie: %w", err)
	}
	return nil
}

// Tally groups received cookies by release. Release versions are numeric
// strings, so ordering by length then value gives oldest first.
func (r *sqlCookieRepo) Tally(ctx context.Context, username string) (cookies.Tally, error) {
	query := db.Rebind(r.dialect, `
		SELECT fedora_release, SUM(value)
		FROM cookies
		WHERE to_user = $1
		GROUP BY fedora_release
		ORDER BY LENGTH(fedora_release), fedora_release`)

	tally := cookies.Tally{Username: username}
	rows, err := r.conn.QueryContext(ctx, query, username)
	if err != nil {
		return tally, fmt.Errorf("failed to query cookies: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var rc cookies.ReleaseCount
		if err := rows.Scan(&rc.Release, &rc.Count); err != nil {
			return tally, fmt.Errorf("failed to scan cookie count: %w", err)
		}
		tally.ByRelease = append(tally.ByRelease, rc)
		tally.Total += rc.Count
	}
	if err := rows.Err(); err != nil {
		return tally, fmt.Errorf("failed to iterate cookies: %w", err)
	}
	return tally, nil
}
