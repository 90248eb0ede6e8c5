// Package store persists mirrored todos and ideas for the backup service in
// a local SQLite database (modernc.org/sqlite, no cgo).
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/lifetrack/internal/backup/store/migrations"
	"github.com/dmitrijs2005/lifetrack/internal/filex"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

// DriverName is the database/sql driver registered by modernc.org/sqlite.
const DriverName = "sqlite"

// timeLayout has a fixed width so that ORDER BY on the text column sorts
// chronologically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// Store groups the backup repositories.
type Store struct {
	db    *sql.DB
	Todos *TodoRepository
	Ideas *IdeaRepository
}

func New(db *sql.DB) *Store {
	return &Store{
		db:    db,
		Todos: NewTodoRepository(db),
		Ideas: NewIdeaRepository(db),
	}
}

func (s *Store) Close() error {
	return s.db.Close()
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// Migrate applies the embedded migrations.
func Migrate(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return err
	}
	if err := gooseUpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("migrate backup store: %w", err)
	}
	return nil
}

// Open opens the SQLite database at dsn and applies migrations. Writes are
// serialized through a single connection.
func Open(ctx context.Context, dsn string) (*Store, error) {
	if err := filex.EnsureSQLiteDir(dsn); err != nil {
		return nil, fmt.Errorf("open backup store: %w", err)
	}
	db, err := sql.Open(DriverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open backup store: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping backup store: %w", err)
	}
	if err := Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return New(db), nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(timeLayout, s)
}

func encodeTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("encode tags: %w", err)
	}
	return string(b), nil
}

func decodeTags(s string) ([]string, error) {
	tags := []string{}
	if s == "" {
		return tags, nil
	}
	if err := json.Unmarshal([]byte(s), &tags); err != nil {
		return nil, fmt.Errorf("decode tags: %w", err)
	}
	return tags, nil
}

// likePattern escapes LIKE wildcards in kw and wraps it in %...%.
func likePattern(kw string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.ToLower(kw)) + "%"
}

type scanner interface {
	Scan(dest ...any) error
}
