package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/brandlink/engine/internal/models"
	"github.com/brandlink/engine/pkg/utils"
	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS document_snapshots (
	name       TEXT PRIMARY KEY,
	body       TEXT NOT NULL,
	checksum   TEXT NOT NULL,
	version    INTEGER NOT NULL DEFAULT 0,
	updated_at TEXT NOT NULL
)`

// SQLiteBackend stores the document as one row of an embedded SQLite
// database. Each save replaces the row inside a transaction, so a crash never
// leaves a half-written document behind.
type SQLiteBackend struct {
	db   *sql.DB
	name string
}

// NewSQLiteBackend opens (or creates) the database file at path.
func NewSQLiteBackend(ctx context.Context, path, name string) (*SQLiteBackend, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// A single connection serializes writers at the driver level too.
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create snapshot table: %w", err)
	}
	return &SQLiteBackend{db: db, name: name}, nil
}

func (b *SQLiteBackend) Name() string { return "sqlite" }

func (b *SQLiteBackend) Load(ctx context.Context) (*models.Document, error) {
	var body, checksum string
	err := b.db.QueryRowContext(ctx,
		`SELECT body, checksum FROM document_snapshots WHERE name = ?`, b.name,
	).Scan(&body, &checksum)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select snapshot: %w", err)
	}
	return decode([]byte(body), checksum)
}

func (b *SQLiteBackend) Save(ctx context.Context, doc *models.Document) error {
	body, err := encode(doc)
	if err != nil {
		return err
	}
	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO document_snapshots (name, body, checksum, version, updated_at)
		VALUES (?, ?, ?, 1, ?)
		ON CONFLICT(name) DO UPDATE SET
			body = excluded.body,
			checksum = excluded.checksum,
			version = document_snapshots.version + 1,
			updated_at = excluded.updated_at`,
		b.name, string(body), utils.ChecksumHex(body), time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("upsert snapshot: %w", err)
	}
	return tx.Commit()
}

// Quarantine renames the current row so a fresh document can take its place.
func (b *SQLiteBackend) Quarantine(ctx context.Context) (string, error) {
	target := fmt.Sprintf("%s.corrupt-%d", b.name, time.Now().Unix())
	if _, err := b.db.ExecContext(ctx,
		`UPDATE document_snapshots SET name = ? WHERE name = ?`, target, b.name,
	); err != nil {
		return "", fmt.Errorf("quarantine snapshot: %w", err)
	}
	return target, nil
}

func (b *SQLiteBackend) Close() error { return b.db.Close() }
