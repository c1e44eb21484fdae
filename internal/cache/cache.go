// Package cache persists per-segment source checksums and translated texts
// in SQLite. Lookups happen at two levels: by (document, key, lang) against
// the stored source checksum, and by bare checksum across documents so
// repeated boilerplate segments translate only once.
package cache

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
	_ "modernc.org/sqlite"
)

type Cache struct {
	db *sql.DB
}

func New(dbPath string) (*Cache, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	c := &Cache{db: db}
	if err := c.migrate(); err != nil {
		return nil, fmt.Errorf("failed to migrate: %w", err)
	}

	return c, nil
}

func (c *Cache) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS segments (
		document TEXT NOT NULL,
		key TEXT NOT NULL,
		checksum TEXT NOT NULL,
		source_text TEXT NOT NULL,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (document, key)
	);

	CREATE TABLE IF NOT EXISTS translations (
		document TEXT NOT NULL,
		key TEXT NOT NULL,
		lang TEXT NOT NULL,
		checksum TEXT NOT NULL,
		translated_text TEXT NOT NULL,
		engine TEXT,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (document, key, lang)
	);

	CREATE INDEX IF NOT EXISTS idx_translations_checksum ON translations(checksum, lang);

	CREATE TABLE IF NOT EXISTS terms (
		term TEXT NOT NULL PRIMARY KEY,
		preferred TEXT NOT NULL DEFAULT '',
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	`

	_, err := c.db.Exec(schema)
	return err
}

func (c *Cache) Close() error {
	return c.db.Close()
}

// Checksum returns the cache key for a segment body: the hex SHA-256 of the
// NFC-normalized, whitespace-trimmed text, so cosmetic edits do not
// invalidate translations.
func Checksum(text string) string {
	normalized := norm.NFC.String(strings.TrimSpace(text))
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])
}

// Checksums returns the stored source checksum for every cached segment of
// a document, keyed by segment key.
func (c *Cache) Checksums(ctx context.Context, document string) (map[string]string, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT key, checksum FROM segments WHERE document = ?`, document)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sums := make(map[string]string)
	for rows.Next() {
		var key, checksum string
		if err := rows.Scan(&key, &checksum); err != nil {
			return nil, err
		}
		sums[key] = checksum
	}
	return sums, rows.Err()
}

// UpsertSegment records the current source text and checksum of a segment.
func (c *Cache) UpsertSegment(ctx context.Context, document, key, sourceText string) error {
	_, err := c.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO segments (document, key, checksum, source_text, updated_at) VALUES (?, ?, ?, ?, ?)`,
		document, key, Checksum(sourceText), sourceText, time.Now())
	return err
}

// UpsertTranslation records a translated segment together with the checksum
// of the source it was produced from.
func (c *Cache) UpsertTranslation(ctx context.Context, document, key, lang, checksum, translatedText, engine string) error {
	_, err := c.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO translations (document, key, lang, checksum, translated_text, engine, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		document, key, lang, checksum, translatedText, engine, time.Now())
	return err
}

// Translation is a row from the translations table.
type Translation struct {
	Document string
	Key      string
	Lang     string
	Checksum string
	Text     string
	Engine   string
}

// Translation returns the cached translation for a segment of a document,
// if any. Callers compare its Checksum against the live source checksum.
func (c *Cache) Translation(ctx context.Context, document, key, lang string) (Translation, bool, error) {
	t := Translation{Document: document, Key: key, Lang: lang}
	var engine sql.NullString
	err := c.db.QueryRowContext(ctx,
		`SELECT checksum, translated_text, engine FROM translations WHERE document = ? AND key = ? AND lang = ?`,
		document, key, lang).Scan(&t.Checksum, &t.Text, &engine)
	if err == sql.ErrNoRows {
		return Translation{}, false, nil
	}
	if err != nil {
		return Translation{}, false, err
	}
	t.Engine = engine.String
	return t, true, nil
}

// TranslationByChecksum returns any stored translation of a source text
// with the given checksum into lang, regardless of which document or
// segment it came from.
func (c *Cache) TranslationByChecksum(ctx context.Context, checksum, lang string) (string, bool, error) {
	var text string
	err := c.db.QueryRowContext(ctx,
		`SELECT translated_text FROM translations WHERE checksum = ? AND lang = ? LIMIT 1`,
		checksum, lang).Scan(&text)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return text, true, nil
}

// List returns all cached translations for a document ordered by key.
func (c *Cache) List(ctx context.Context, document string) ([]Translation, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT document, key, lang, checksum, translated_text, engine FROM translations WHERE document = ? ORDER BY key, lang`,
		document)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []Translation
	for rows.Next() {
		var t Translation
		var engine sql.NullString
		if err := rows.Scan(&t.Document, &t.Key, &t.Lang, &t.Checksum, &t.Text, &engine); err != nil {
			return nil, err
		}
		t.Engine = engine.String
		results = append(results, t)
	}
	return results, rows.Err()
}

// Stats summarises cache contents.
type Stats struct {
	Documents    int
	Segments     int
	Translations int
	Languages    int
}

func (c *Cache) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{}
	err := c.db.QueryRowContext(ctx,
		`SELECT COUNT(DISTINCT document), COUNT(*) FROM segments`).Scan(&stats.Documents, &stats.Segments)
	if err != nil {
		return nil, err
	}
	err = c.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COUNT(DISTINCT lang) FROM translations`).Scan(&stats.Translations, &stats.Languages)
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// Term is a do-not-translate glossary entry. An empty Preferred means the
// term is kept verbatim in every target language.
type Term struct {
	Term      string
	Preferred string
}

// UpsertTerm adds or updates a do-not-translate term.
func (c *Cache) UpsertTerm(ctx context.Context, term, preferred string) error {
	_, err := c.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO terms (term, preferred, updated_at) VALUES (?, ?, ?)`,
		term, preferred, time.Now())
	return err
}

// DeleteTerm removes a do-not-translate term. Reports whether a row existed.
func (c *Cache) DeleteTerm(ctx context.Context, term string) (bool, error) {
	res, err := c.db.ExecContext(ctx, `DELETE FROM terms WHERE term = ?`, term)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// Terms returns all do-not-translate terms ordered alphabetically.
func (c *Cache) Terms(ctx context.Context) ([]Term, error) {
	rows, err := c.db.QueryContext(ctx, `SELECT term, preferred FROM terms ORDER BY term`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var terms []Term
	for rows.Next() {
		var t Term
		if err := rows.Scan(&t.Term, &t.Preferred); err != nil {
			return nil, err
		}
		terms = append(terms, t)
	}
	return terms, rows.Err()
}

// Clear removes all cached rows for a document; pass an empty document to
// clear everything. Returns the number of translation rows removed.
func (c *Cache) Clear(ctx context.Context, document string) (int64, error) {
	var res sql.Result
	var err error
	if document == "" {
		if _, err = c.db.ExecContext(ctx, `DELETE FROM segments`); err != nil {
			return 0, err
		}
		res, err = c.db.ExecContext(ctx, `DELETE FROM translations`)
	} else {
		if _, err = c.db.ExecContext(ctx, `DELETE FROM segments WHERE document = ?`, document); err != nil {
			return 0, err
		}
		res, err = c.db.ExecContext(ctx, `DELETE FROM translations WHERE document = ?`, document)
	}
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
