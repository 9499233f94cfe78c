package localstore

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"

	"github.com/nanofi/nanofi/internal/dbx"
	"github.com/nanofi/nanofi/internal/localstore/migrations"

	_ "modernc.org/sqlite"
)

// MemoryPath opens a private in-memory SQLite profile.
const MemoryPath = ":memory:"

// Store is an opened SQLite profile. It embeds the repository bound to the
// whole database, so a Store is itself a Storage.
type Store struct {
	*SQLiteRepository
	db   *sql.DB
	path string
}

// Open opens (creating if needed) the profile at path and applies pending
// migrations.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("open local storage %s: %w", path, err)
	}
	if path == MemoryPath {
		// every pooled connection would otherwise get its own empty database
		db.SetMaxOpenConns(1)
	}

	if err := RunMigrations(ctx, db, migrations.FS); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate local storage %s: %w", path, err)
	}

	return &Store{SQLiteRepository: NewSQLiteRepository(db), db: db, path: path}, nil
}

// RunMigrations applies every pending goose migration found in fsys.
func RunMigrations(ctx context.Context, db *sql.DB, fsys fs.FS) error {
	p, err := goose.NewProvider(goose.DialectSQLite3, db, fsys)
	if err != nil {
		return fmt.Errorf("init migration provider: %w", err)
	}
	if _, err := p.Up(ctx); err != nil {
		return err
	}
	return nil
}

// WithTx applies fn's writes atomically.
func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context, repo Repository) error) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return fn(ctx, NewSQLiteRepository(tx))
	})
}

// Path returns the profile path the store was opened with.
func (s *Store) Path() string {
	return s.path
}

// IsFile reports whether the profile lives on disk (and can be watched).
func (s *Store) IsFile() bool {
	return s.path != MemoryPath
}

func (s *Store) Close() error {
	return s.db.Close()
}

func dsn(path string) string {
	if path == MemoryPath {
		return path
	}
	return "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
}
