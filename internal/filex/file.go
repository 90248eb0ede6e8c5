// Package filex holds filesystem helpers for on-disk databases.
package filex

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// EnsureDir creates dir and its parents with owner-and-group access.
// An empty dir or "." is a no-op.
func EnsureDir(dir string) error {
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o770); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}
	return nil
}

// SQLitePath returns the file path a SQLite DSN points at, or "" for
// in-memory databases. Both "file:path?opts" and bare paths are accepted.
func SQLitePath(dsn string) string {
	p := strings.TrimPrefix(dsn, "file:")
	if i := strings.IndexByte(p, '?'); i >= 0 {
		if strings.Contains(p[i:], "mode=memory") {
			return ""
		}
		p = p[:i]
	}
	if p == "" || p == ":memory:" {
		return ""
	}
	return p
}

// EnsureSQLiteDir creates the directory holding the database file of dsn.
func EnsureSQLiteDir(dsn string) error {
	p := SQLitePath(dsn)
	if p == "" {
		return nil
	}
	return EnsureDir(filepath.Dir(p))
}
