// Package store provides the SQLite-backed persistence of the gateway: the
// cross-user translation cache, the correction store consumed by the
// feedback resolver, per-user provider credentials, and the usage ledger.
package store

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"codeberg.org/snonux/lingo/internal/feedback"
)

const schema = `
CREATE TABLE IF NOT EXISTS public_cache (
	hash            TEXT PRIMARY KEY,
	source_text     TEXT NOT NULL,
	target_language TEXT NOT NULL,
	translation     TEXT NOT NULL,
	pronunciation   TEXT NOT NULL DEFAULT '',
	created_at      TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS corrections (
	hash            TEXT PRIMARY KEY,
	source_text     TEXT NOT NULL,
	target_language TEXT NOT NULL,
	user_id         TEXT NOT NULL DEFAULT '',
	original_output TEXT NOT NULL DEFAULT '',
	corrected_text  TEXT NOT NULL,
	created_at      TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_corrections_lang_user
	ON corrections (target_language, user_id, created_at DESC);

CREATE TABLE IF NOT EXISTS user_keys (
	user_id  TEXT NOT NULL,
	provider TEXT NOT NULL,
	api_key  TEXT NOT NULL,
	PRIMARY KEY (user_id, provider)
);

CREATE TABLE IF NOT EXISTS usage (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id    TEXT NOT NULL DEFAULT '',
	kind       TEXT NOT NULL,
	count      INTEGER NOT NULL,
	cost       REAL NOT NULL,
	provider   TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL
);
`

// Store wraps the SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and applies the schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func cacheHash(text, targetLanguage string) string {
	h := sha256.Sum256([]byte(text + "\x00" + targetLanguage))
	return hex.EncodeToString(h[:])
}

// GetPublicCache returns the cached translation for (text, language).
// found is false on a miss.
func (s *Store) GetPublicCache(ctx context.Context, text, targetLanguage string) (translation, pronunciation string, found bool, err error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT translation, pronunciation FROM public_cache WHERE hash = ?`,
		cacheHash(text, targetLanguage))

	if err := row.Scan(&translation, &pronunciation); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", "", false, nil
		}
		return "", "", false, fmt.Errorf("public cache lookup failed: %w", err)
	}
	return translation, pronunciation, true, nil
}

// SetPublicCache stores a translation in the cross-user cache.
func (s *Store) SetPublicCache(ctx context.Context, text, targetLanguage, translation, pronunciation string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO public_cache
		 (hash, source_text, target_language, translation, pronunciation, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		cacheHash(text, targetLanguage), text, targetLanguage, translation, pronunciation, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("public cache write failed: %w", err)
	}
	return nil
}

// GetCorrection implements feedback.Store.
func (s *Store) GetCorrection(ctx context.Context, hash string) (*feedback.Record, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT hash, source_text, target_language, user_id, original_output, corrected_text, created_at
		 FROM corrections WHERE hash = ?`, hash)

	var rec feedback.Record
	err := row.Scan(&rec.Hash, &rec.SourceText, &rec.TargetLanguage, &rec.UserID,
		&rec.OriginalOutput, &rec.CorrectedText, &rec.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("correction lookup failed: %w", err)
	}
	return &rec, nil
}

// RecentCorrections implements feedback.Store.
func (s *Store) RecentCorrections(ctx context.Context, targetLanguage, userID string, limit int) ([]feedback.Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT hash, source_text, target_language, user_id, original_output, corrected_text, created_at
		 FROM corrections
		 WHERE target_language = ? AND user_id = ?
		 ORDER BY created_at DESC LIMIT ?`,
		targetLanguage, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("recent corrections query failed: %w", err)
	}
	defer rows.Close()

	var records []feedback.Record
	for rows.Next() {
		var rec feedback.Record
		if err := rows.Scan(&rec.Hash, &rec.SourceText, &rec.TargetLanguage, &rec.UserID,
			&rec.OriginalOutput, &rec.CorrectedText, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("correction scan failed: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// SaveCorrection implements feedback.Store.
func (s *Store) SaveCorrection(ctx context.Context, rec *feedback.Record) error {
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO corrections
		 (hash, source_text, target_language, user_id, original_output, corrected_text, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.Hash, rec.SourceText, rec.TargetLanguage, rec.UserID,
		rec.OriginalOutput, rec.CorrectedText, createdAt)
	if err != nil {
		return fmt.Errorf("correction write failed: %w", err)
	}
	return nil
}

// UserAPIKey returns the stored credential for (user, provider), or "".
func (s *Store) UserAPIKey(ctx context.Context, userID, provider string) (string, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT api_key FROM user_keys WHERE user_id = ? AND provider = ?`, userID, provider)

	var key string
	if err := row.Scan(&key); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("user key lookup failed: %w", err)
	}
	return key, nil
}

// SetUserAPIKey stores a per-user provider credential.
func (s *Store) SetUserAPIKey(ctx context.Context, userID, provider, apiKey string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO user_keys (user_id, provider, api_key) VALUES (?, ?, ?)`,
		userID, provider, apiKey)
	if err != nil {
		return fmt.Errorf("user key write failed: %w", err)
	}
	return nil
}

// Track appends a usage record to the ledger.
func (s *Store) Track(ctx context.Context, userID, kind string, count int, cost float64, provider string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO usage (user_id, kind, count, cost, provider, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		userID, kind, count, cost, provider, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("usage write failed: %w", err)
	}
	return nil
}
