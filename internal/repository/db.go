// Package repository persists extracted records in a local sqlite store
// and answers the aggregation queries the reporting layer needs.
// Deduplication is content-hash based with a path fallback.
package repository

import (
	"crypto/md5"
	"database/sql"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS acts (
	id                INTEGER PRIMARY KEY AUTOINCREMENT,
	company           TEXT    NOT NULL,
	counterparty      TEXT    NOT NULL,
	period            TEXT    NOT NULL,
	amount            REAL    NOT NULL,
	energy_volume     REAL,
	cost_without_vat  REAL,
	price_without_vat REAL,
	act_number        TEXT,
	act_date          TEXT,
	contract_number   TEXT,
	pdf_path          TEXT    NOT NULL,
	file_hash         TEXT,
	file_size         INTEGER,
	created_at        TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_acts_company_period ON acts(company, period);
CREATE INDEX IF NOT EXISTS idx_acts_file_hash ON acts(file_hash);

CREATE TABLE IF NOT EXISTS payments (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	company      TEXT    NOT NULL,
	counterparty TEXT    NOT NULL,
	period       TEXT    NOT NULL,
	amount       REAL    NOT NULL,
	payment_date TEXT,
	purpose      TEXT,
	pdf_path     TEXT    NOT NULL,
	file_hash    TEXT,
	file_size    INTEGER,
	created_at   TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_payments_company_period ON payments(company, period);
CREATE INDEX IF NOT EXISTS idx_payments_file_hash ON payments(file_hash);
`

// Open opens (creating if needed) the sqlite database at path and applies
// the schema.
func Open(path string, logger *slog.Logger) (*sql.DB, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// sqlite serializes writes; a single connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("applying schema: %w", err)
	}
	logger.Debug("database ready", "path", path)
	return db, nil
}

// FileMeta identifies the source file of a stored record.
type FileMeta struct {
	Path string
	Hash string
	Size int64
}

// HashFile computes the content hash and size used for deduplication.
func HashFile(path string) (FileMeta, error) {
	f, err := os.Open(path)
	if err != nil {
		return FileMeta{}, err
	}
	defer func() {
		_ = f.Close()
	}()

	h := md5.New()
	size, err := io.Copy(h, f)
	if err != nil {
		return FileMeta{}, err
	}
	return FileMeta{
		Path: path,
		Hash: hex.EncodeToString(h.Sum(nil)),
		Size: size,
	}, nil
}
