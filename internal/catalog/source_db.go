package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

const (
	DriverPostgres = "pgx"
	DriverSQLite   = "sqlite"

	pingTimeout  = 1 * time.Second
	queryTimeout = 3 * time.Second

	pgUndefinedTable = "42P01"
)

var ErrMissingTable = errors.New("movies table does not exist")

// SQLSource reads movies from a "movies" table through database/sql. It works
// with the Postgres (pgx) and SQLite drivers.
type SQLSource struct {
	db     *sql.DB
	driver string
}

func NewSQLSource(db *sql.DB, driver string) *SQLSource {
	return &SQLSource{db: db, driver: driver}
}

// OpenSQLSource opens dsn with driver and checks the connection.
func OpenSQLSource(ctx context.Context, driver, dsn string) (*SQLSource, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}

	s := NewSQLSource(db, driver)
	if err := s.Ping(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}
	return s, nil
}

func (s *SQLSource) Name() string { return "sql:" + s.driver }

func (s *SQLSource) Close() error { return s.db.Close() }

func (s *SQLSource) Ping(ctx context.Context) error {
	return withTimeout(ctx, pingTimeout, func(ctx context.Context) error {
		return s.db.PingContext(ctx)
	})
}

func (s *SQLSource) Movies(ctx context.Context) ([]Movie, error) {
	var out []Movie

	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		rows, err := s.db.QueryContext(ctx, `
			SELECT id, movie_name, director, year, genre, description, duration, imdb_rating
			FROM movies
			ORDER BY id ASC
		`)
		if err != nil {
			return err
		}
		defer rows.Close()

		out = make([]Movie, 0, 16)
		for rows.Next() {
			var m Movie
			if err := rows.Scan(&m.ID, &m.Title, &m.Director, &m.Year, &m.Genre,
				&m.Description, &m.Duration, &m.Rating); err != nil {
				return err
			}
			out = append(out, m)
		}
		return rows.Err()
	})

	if isUndefinedTable(err) {
		return nil, fmt.Errorf("%w: %v", ErrMissingTable, err)
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

func withTimeout(parent context.Context, d time.Duration, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(parent, d)
	defer cancel()
	return fn(ctx)
}

func isUndefinedTable(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUndefinedTable
	}
	// modernc sqlite only reports this in the message
	return strings.Contains(err.Error(), "no such table")
}
