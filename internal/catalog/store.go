// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package catalog keeps a SQLite ledger of conversions: which source was
// turned into which output, the content hashes of both, and how many items
// the output holds. The pipelines consult it to skip unchanged inputs.
package catalog

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/casemap/pkg/types"
)

const (
	dbFile = "casemap.db"

	// historyLimit bounds the rows kept per (kind, source).
	historyLimit = 20
)

// Store manages the catalog database.
type Store struct {
	db  *sql.DB
	dir string
	now func() time.Time
}

// Open opens or creates the catalog at cfg.Dir/casemap.db and ensures the
// schema exists.
func Open(cfg types.CatalogConfig) (*Store, error) {
	dir := cfg.Dir
	if dir == "" {
		dir = types.DefaultConfig().Catalog.Dir
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating catalog directory: %w", err)
	}

	dbPath := filepath.Join(dir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db, dir: dir, now: time.Now}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Dir returns the directory holding the database.
func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS conversions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			kind TEXT NOT NULL,
			source TEXT NOT NULL,
			source_hash TEXT NOT NULL,
			output TEXT NOT NULL,
			output_hash TEXT NOT NULL,
			settings TEXT NOT NULL DEFAULT '',
			items INTEGER NOT NULL DEFAULT 0,
			converted_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_conversions_source ON conversions(kind, source)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	// Catalogs created before settings were tracked lack the column.
	_, err := s.db.Exec(`ALTER TABLE conversions ADD COLUMN settings TEXT NOT NULL DEFAULT ''`)
	if err != nil && !strings.Contains(err.Error(), "duplicate column name") {
		return fmt.Errorf("adding settings column: %w", err)
	}
	return nil
}

// Record stores a successful conversion. ConvertedAt defaults to now.
// Older rows for the same source beyond the history limit are dropped.
func (s *Store) Record(ctx context.Context, rec types.ConversionRecord) error {
	if rec.Kind == "" || rec.Source == "" {
		return fmt.Errorf("recording conversion: kind and source are required")
	}
	if rec.ConvertedAt.IsZero() {
		rec.ConvertedAt = s.now()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO conversions (kind, source, source_hash, output, output_hash, settings, items, converted_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		string(rec.Kind), rec.Source, rec.SourceHash, rec.Output, rec.OutputHash, rec.Settings, rec.Items,
		rec.ConvertedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("inserting conversion for %s: %w", rec.Source, err)
	}

	_, err = tx.ExecContext(ctx,
		`DELETE FROM conversions WHERE kind = ? AND source = ? AND id NOT IN (
			SELECT id FROM conversions WHERE kind = ? AND source = ? ORDER BY id DESC LIMIT ?
		)`,
		string(rec.Kind), rec.Source, string(rec.Kind), rec.Source, historyLimit,
	)
	if err != nil {
		return fmt.Errorf("trimming history for %s: %w", rec.Source, err)
	}

	return tx.Commit()
}

// Latest returns the most recent record for source, or nil when none exists.
func (s *Store) Latest(ctx context.Context, kind types.ConversionKind, source string) (*types.ConversionRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT kind, source, source_hash, output, output_hash, settings, items, converted_at
		 FROM conversions WHERE kind = ? AND source = ? ORDER BY id DESC LIMIT 1`,
		string(kind), source,
	)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading latest conversion for %s: %w", source, err)
	}
	return rec, nil
}

// Unchanged reports whether want would reproduce the last conversion of
// want.Source: same input bytes, same output path, same settings, and the
// recorded output still on disk with its recorded hash. Only Kind, Source,
// SourceHash, Output and Settings of want are consulted.
func (s *Store) Unchanged(ctx context.Context, want types.ConversionRecord) (bool, error) {
	rec, err := s.Latest(ctx, want.Kind, want.Source)
	if err != nil || rec == nil {
		return false, err
	}
	if rec.SourceHash != want.SourceHash ||
		filepath.Clean(rec.Output) != filepath.Clean(want.Output) ||
		rec.Settings != want.Settings {
		return false, nil
	}
	outHash, err := HashFile(rec.Output)
	if err != nil {
		// A missing or unreadable output means the conversion must run again.
		return false, nil
	}
	return outHash == rec.OutputHash, nil
}

// List returns the latest record per source, ordered by kind then source.
// An empty kind lists both pipelines.
func (s *Store) List(ctx context.Context, kind types.ConversionKind) ([]types.ConversionRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT kind, source, source_hash, output, output_hash, settings, items, converted_at
		 FROM conversions c
		 WHERE id = (SELECT MAX(id) FROM conversions WHERE kind = c.kind AND source = c.source)
		   AND (? = '' OR kind = ?)
		 ORDER BY kind, source`,
		string(kind), string(kind),
	)
	if err != nil {
		return nil, fmt.Errorf("listing conversions: %w", err)
	}
	defer rows.Close()

	var out []types.ConversionRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning conversion: %w", err)
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (*types.ConversionRecord, error) {
	var (
		rec       types.ConversionRecord
		kind      string
		converted string
	)
	if err := row.Scan(&kind, &rec.Source, &rec.SourceHash, &rec.Output, &rec.OutputHash, &rec.Settings, &rec.Items, &converted); err != nil {
		return nil, err
	}
	rec.Kind = types.ConversionKind(kind)
	t, err := time.Parse(time.RFC3339Nano, converted)
	if err != nil {
		return nil, fmt.Errorf("parsing converted_at %q: %w", converted, err)
	}
	rec.ConvertedAt = t
	return &rec, nil
}

// HashFile returns the hex sha256 of the file at path.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hashing %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// HashBytes returns the hex sha256 of data.
func HashBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
