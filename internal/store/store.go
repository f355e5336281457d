// Package store persists the dataset to a SQLite table and runs queries against it.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/cleared-dev/bankcap/internal/config"
	"github.com/cleared-dev/bankcap/internal/model"
)

const driverName = "sqlite"

// Options configures Open.
type Options struct {
	Path     string
	ReadOnly bool // open with mode=ro; the file must exist
}

// Store wraps a single SQLite connection.
type Store struct {
	db   *sql.DB
	path string
}

// Result is a fully materialized query result.
type Result struct {
	Columns []string
	Rows    [][]any
}

// Open connects to the database file, creating it (and its directory) unless ReadOnly.
func Open(ctx context.Context, opts Options) (*Store, error) {
	dsn := opts.Path
	if opts.ReadOnly {
		if _, err := os.Stat(opts.Path); err != nil {
			return nil, fmt.Errorf("%w: opening %s: %w", model.ErrStorage, opts.Path, err)
		}
		dsn = "file:" + opts.Path + "?mode=ro"
	} else if err := os.MkdirAll(filepath.Dir(opts.Path), 0o755); err != nil {
		return nil, fmt.Errorf("%w: creating database dir: %w", model.ErrStorage, err)
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: opening %s: %w", model.ErrStorage, opts.Path, err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: connecting to %s: %w", model.ErrStorage, opts.Path, err)
	}
	return &Store{db: db, path: opts.Path}, nil
}

// Close releases the connection.
func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("%w: closing %s: %w", model.ErrStorage, s.path, err)
	}
	return nil
}

// LoadToTable replaces table with records. Any existing table of that name is
// dropped; rows are inserted in slice order inside one transaction.
func (s *Store) LoadToTable(ctx context.Context, records []model.EnrichedRecord, table string) (err error) {
	if !config.ValidIdentifier(table) {
		return fmt.Errorf("%w: invalid table name %q", model.ErrStorage, table)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: beginning transaction: %w", model.ErrStorage, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DROP TABLE IF EXISTS "`+table+`"`); err != nil {
		return fmt.Errorf("%w: dropping %s: %w", model.ErrStorage, table, err)
	}
	if _, err = tx.ExecContext(ctx, createTableSQL(table)); err != nil {
		return fmt.Errorf("%w: creating %s: %w", model.ErrStorage, table, err)
	}

	stmt, err := tx.PrepareContext(ctx, insertSQL(table))
	if err != nil {
		return fmt.Errorf("%w: preparing insert: %w", model.ErrStorage, err)
	}
	defer stmt.Close()

	for i, rec := range records {
		_, err = stmt.ExecContext(ctx,
			rec.Name,
			rec.MarketCapUSD.InexactFloat64(),
			rec.MarketCapGBP.InexactFloat64(),
			rec.MarketCapEUR.InexactFloat64(),
			rec.MarketCapINR.InexactFloat64(),
		)
		if err != nil {
			return fmt.Errorf("%w: inserting row %d (%s): %w", model.ErrStorage, i, rec.Name, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("%w: committing %s: %w", model.ErrStorage, table, err)
	}
	return nil
}

// Query runs a statement and returns every row.
func (s *Store) Query(ctx context.Context, query string) (*Result, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", model.ErrQuery, query, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("%w: reading columns: %w", model.ErrQuery, err)
	}

	res := &Result{Columns: cols}
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("%w: scanning row %d: %w", model.ErrQuery, len(res.Rows), err)
		}
		for i, v := range vals {
			if b, ok := v.([]byte); ok {
				vals[i] = string(b)
			}
		}
		res.Rows = append(res.Rows, vals)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", model.ErrQuery, query, err)
	}
	return res, nil
}

// RowCount returns the number of rows in table.
func (s *Store) RowCount(ctx context.Context, table string) (int, error) {
	if !config.ValidIdentifier(table) {
		return 0, fmt.Errorf("%w: invalid table name %q", model.ErrQuery, table)
	}
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM "`+table+`"`).Scan(&n); err != nil {
		return 0, fmt.Errorf("%w: counting %s: %w", model.ErrQuery, table, err)
	}
	return n, nil
}

func createTableSQL(table string) string {
	cols := make([]string, len(model.Columns))
	for i, c := range model.Columns {
		typ := "REAL"
		if c == model.ColName {
			typ = "TEXT"
		}
		cols[i] = fmt.Sprintf(`"%s" %s`, c, typ)
	}
	return fmt.Sprintf(`CREATE TABLE "%s" (%s)`, table, strings.Join(cols, ", "))
}

func insertSQL(table string) string {
	quoted := make([]string, len(model.Columns))
	for i, c := range model.Columns {
		quoted[i] = `"` + c + `"`
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(model.Columns)), ", ")
	return fmt.Sprintf(`INSERT INTO "%s" (%s) VALUES (%s)`, table, strings.Join(quoted, ", "), placeholders)
}
