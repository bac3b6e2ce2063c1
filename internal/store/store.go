// Package store persists saved transcripts and shared summaries in a
// relational database. SQLite (modernc) is the default; PostgreSQL is
// reached through pgx's database/sql driver. Uniqueness of a transcript per
// (user, video) and of a summary per video is enforced by unique indexes,
// so concurrent writers need no coordination beyond the insert itself.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Store is safe for concurrent use.
type Store struct {
	db     *sql.DB
	driver string
}

// Open connects to the database and creates the schema on first use. For
// SQLite, dsn is a file path; for PostgreSQL it is a connection URL.
func Open(driver, dsn string) (*Store, error) {
	var (
		db  *sql.DB
		err error
	)
	switch driver {
	case "", DriverSQLite:
		driver = DriverSQLite
		db, err = sql.Open("sqlite", sqliteDSN(dsn))
		if err == nil {
			// One writer at a time; busy_timeout covers other processes.
			db.SetMaxOpenConns(1)
		}
	case DriverPostgres:
		db, err = sql.Open("pgx", dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	s := &Store{db: db, driver: driver}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func sqliteDSN(path string) string {
	if path == ":memory:" || strings.HasPrefix(path, "file:") {
		return path
	}
	return "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping verifies the connection, for health checks.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) migrate() error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS transcripts (
			id             TEXT PRIMARY KEY,
			user_id        TEXT NOT NULL,
			video_id       TEXT NOT NULL,
			video_url      TEXT NOT NULL,
			video_title    TEXT NOT NULL,
			thumbnail_url  TEXT,
			video_duration INTEGER,
			segments       TEXT NOT NULL,
			saved_at       TEXT NOT NULL
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS transcript_user_video_idx ON transcripts (user_id, video_id)`,
		`CREATE INDEX IF NOT EXISTS transcript_user_saved_idx ON transcripts (user_id, saved_at)`,
		`CREATE TABLE IF NOT EXISTS summaries (
			id         TEXT PRIMARY KEY,
			video_id   TEXT NOT NULL,
			bullets    TEXT NOT NULL,
			paragraph  TEXT NOT NULL,
			created_at TEXT NOT NULL
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS summary_video_idx ON summaries (video_id)`,
	}
	for _, stmt := range schema {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// rebind rewrites ? placeholders to $n for PostgreSQL. Queries in this
// package never contain a literal question mark.
func (s *Store) rebind(query string) string {
	if s.driver != DriverPostgres {
		return query
	}
	var sb strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			sb.WriteByte('$')
			sb.WriteString(strconv.Itoa(n))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
