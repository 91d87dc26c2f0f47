// Package findingcache implements the optional on-disk cache extension
// point described in spec §6: a cache keyed on (analyzer name, content
// hash) with a configurable invalidation horizon. The executor is never
// required to use one — a nil *Cache means "no caching."
package findingcache

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	_ "modernc.org/sqlite"

	"github.com/codelintio/codelint/pkg/issue"
)

// DefaultHorizon is how long a cached entry remains valid before a GC
// sweep evicts it, per spec §6.
const DefaultHorizon = 7 * 24 * time.Hour

// Cache is a thin wrapper over a local sqlite database. Safe for
// concurrent use — sqlite serializes writers internally and the driver
// is pure Go (no cgo), matching the project's single-binary deployment.
type Cache struct {
	db *sql.DB
}

// Open creates or attaches to the sqlite database at path and ensures
// the schema exists.
func Open(path string) (*Cache, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("findingcache: open: %w", err)
	}
	db.SetMaxOpenConns(1) // sqlite has no useful concurrent-writer story here

	const schema = `
CREATE TABLE IF NOT EXISTS findings (
	analyzer     TEXT NOT NULL,
	content_hash TEXT NOT NULL,
	issues_json  BLOB NOT NULL,
	cached_at    INTEGER NOT NULL,
	PRIMARY KEY (analyzer, content_hash)
);`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("findingcache: migrate: %w", err)
	}
	return &Cache{db: db}, nil
}

func (c *Cache) Close() error {
	return c.db.Close()
}

// Get returns the cached issue list for (analyzer, contentHash), if
// present and not older than horizon.
func (c *Cache) Get(ctx context.Context, analyzerName, contentHash string, horizon time.Duration) ([]issue.Issue, bool, error) {
	row := c.db.QueryRowContext(ctx,
		`SELECT issues_json, cached_at FROM findings WHERE analyzer = ? AND content_hash = ?`,
		analyzerName, contentHash)

	var blob []byte
	var cachedAt int64
	if err := row.Scan(&blob, &cachedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("findingcache: get: %w", err)
	}

	if horizon > 0 && time.Since(time.Unix(cachedAt, 0)) > horizon {
		return nil, false, nil
	}

	var issues []issue.Issue
	if err := json.Unmarshal(blob, &issues); err != nil {
		return nil, false, fmt.Errorf("findingcache: decode: %w", err)
	}
	return issues, true, nil
}

// Put upserts the issue list for (analyzer, contentHash).
func (c *Cache) Put(ctx context.Context, analyzerName, contentHash string, issues []issue.Issue) error {
	blob, err := json.Marshal(issues)
	if err != nil {
		return fmt.Errorf("findingcache: encode: %w", err)
	}
	_, err = c.db.ExecContext(ctx,
		`INSERT INTO findings (analyzer, content_hash, issues_json, cached_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT (analyzer, content_hash) DO UPDATE SET issues_json = excluded.issues_json, cached_at = excluded.cached_at`,
		analyzerName, contentHash, blob, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("findingcache: put: %w", err)
	}
	return nil
}

// GC deletes entries older than horizon and returns how many were
// removed.
func (c *Cache) GC(ctx context.Context, horizon time.Duration) (int64, error) {
	// cached_at has whole-second resolution; round the cutoff up so an
	// entry is deleted exactly when Get would treat it as stale.
	at := time.Now().Add(-horizon)
	cutoff := at.Unix()
	if at.Nanosecond() > 0 {
		cutoff++
	}
	res, err := c.db.ExecContext(ctx, `DELETE FROM findings WHERE cached_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("findingcache: gc: %w", err)
	}
	return res.RowsAffected()
}

// HashFile computes the content hash used as the cache key's second
// component.
func HashFile(absPath string) (string, error) {
	f, err := os.Open(absPath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
