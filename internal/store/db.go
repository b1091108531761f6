package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// Supported drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "pgx"
)

// DB implements every store interface on top of a single sqlx connection.
type DB struct {
	db     *sqlx.DB
	driver string
	now    func() time.Time
}

var (
	_ UserStore   = (*DB)(nil)
	_ ClientStore = (*DB)(nil)
	_ DraftStore  = (*DB)(nil)
	_ AuditStore  = (*DB)(nil)
)

// Open connects to the configured backend and applies migrations. For SQLite
// an empty dsn means an in-memory database, which is what the tests use.
func Open(driver, dsn string) (*DB, error) {
	switch driver {
	case DriverSQLite:
		if dsn == "" {
			dsn = ":memory:"
		}
		if !strings.Contains(dsn, "?") {
			dsn += "?_journal_mode=WAL&_busy_timeout=5000"
		}
	case DriverPostgres:
		if dsn == "" {
			return nil, errors.New("store: postgres requires a dsn")
		}
	default:
		return nil, fmt.Errorf("store: unsupported driver %q", driver)
	}

	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", driver, err)
	}

	if driver == DriverSQLite {
		// SQLite allows a single writer; serialize access through one conn.
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(10)
		db.SetConnMaxLifetime(15 * time.Minute)
		db.SetConnMaxIdleTime(5 * time.Minute)
	}

	s := &DB{db: db, driver: driver, now: time.Now}
	if err := s.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: migrate: %w", err)
	}
	return s, nil
}

// Close closes the underlying connection pool.
func (s *DB) Close() error { return s.db.Close() }

// SQLDB exposes the raw handle for readiness probes.
func (s *DB) SQLDB() *sql.DB { return s.db.DB }

func (s *DB) migrate(ctx context.Context) error {
	serial := "integer primary key autoincrement"
	timestampType := "datetime"
	if s.driver == DriverPostgres {
		serial = "bigserial primary key"
		timestampType = "timestamptz"
	}

	stmts := []string{
		fmt.Sprintf(`create table if not exists users (
			id %s,
			email text not null unique,
			full_name text not null,
			role text not null,
			active boolean not null default true
		)`, serial),
		fmt.Sprintf(`create table if not exists clients (
			id %s,
			full_name text not null,
			display_name text not null default '',
			email text not null default '',
			details text not null default '',
			active boolean not null default true,
			location text not null default ''
		)`, serial),
		fmt.Sprintf(`create table if not exists drafts (
			id %s,
			full_name text not null,
			display_name text not null default '',
			email text not null,
			details text not null default '',
			active boolean not null default true,
			location text not null default '',
			created_by_email text not null,
			created_by_name text not null default '',
			created_at %s not null,
			updated_at %s not null
		)`, serial, timestampType, timestampType),
		fmt.Sprintf(`create table if not exists audit_logs (
			id %s,
			action text not null,
			entity_type text not null,
			entity_id bigint not null,
			actor_email text not null,
			actor_name text not null default '',
			timestamp %s not null
		)`, serial, timestampType),
		`create index if not exists idx_drafts_owner on drafts (created_by_email)`,
		`create index if not exists idx_audit_ts on audit_logs (timestamp)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// insert runs an insert statement and returns the generated id, papering over
// the LastInsertId vs RETURNING split between the two backends.
func (s *DB) insert(ctx context.Context, query string, args ...any) (int64, error) {
	if s.driver == DriverPostgres {
		var id int64
		err := s.db.QueryRowxContext(ctx, s.db.Rebind(query+" returning id"), args...).Scan(&id)
		return id, err
	}
	res, err := s.db.ExecContext(ctx, s.db.Rebind(query), args...)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}
