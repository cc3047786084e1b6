package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/eletrohub/backend/internal/domain"
)

// DB is the sqlite-backed implementation of the product catalog, the
// correction memory, the failed-search log and the synonym overlay.
type DB struct {
	conn *sql.DB
}

// Open opens (creating if needed) the database at path and ensures the
// schema exists.
func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if _, err := conn.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		_ = conn.Close()
		return nil, err
	}

	db := &DB{conn: conn}
	if err := db.init(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return db, nil
}

func (d *DB) Close() error {
	return d.conn.Close()
}

func (d *DB) init() error {
	schema := `
CREATE TABLE IF NOT EXISTS products (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  brand TEXT,
  category TEXT,
  sankhya_code INTEGER UNIQUE,
  price REAL NOT NULL DEFAULT 0,
  unit TEXT,
  is_available INTEGER NOT NULL DEFAULT 1,
  popularity_index REAL NOT NULL DEFAULT 0,
  updated_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  last_seen_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_products_name ON products(name);
CREATE INDEX IF NOT EXISTS idx_products_sankhya_code ON products(sankhya_code);

CREATE TABLE IF NOT EXISTS corrections (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  original_text TEXT NOT NULL,
  description TEXT,
  model_tag TEXT,
  suggested_product_id TEXT,
  corrected_product_id TEXT,
  correction_type TEXT NOT NULL,
  created_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_corrections_original_text ON corrections(original_text);

CREATE TABLE IF NOT EXISTS failed_searches (
  id TEXT PRIMARY KEY,
  query TEXT NOT NULL,
  created_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS search_synonyms (
  term TEXT PRIMARY KEY,
  synonyms_json TEXT NOT NULL,
  approved INTEGER NOT NULL DEFAULT 0,
  updated_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`
	_, err := d.conn.Exec(schema)
	return err
}

const productColumns = `id, name, brand, category, sankhya_code, price, unit, is_available, popularity_index, updated_at`

func (d *DB) GetByID(ctx context.Context, id string) (*domain.ProductRecord, error) {
	row := d.conn.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products WHERE id = ?`, id)
	return scanProduct(row)
}

func (d *DB) GetByCode(ctx context.Context, code int64) (*domain.ProductRecord, error) {
	row := d.conn.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products WHERE sankhya_code = ?`, code)
	return scanProduct(row)
}

// SearchAllTerms: every term must appear in the name (case-insensitive),
// availability required, first row wins.
func (d *DB) SearchAllTerms(ctx context.Context, terms []string) (*domain.ProductRecord, error) {
	if len(terms) == 0 {
		return nil, nil
	}

	where := []string{"is_available = 1"}
	args := make([]any, 0, len(terms))
	for _, term := range terms {
		where = append(where, "instr(upper(name), upper(?)) > 0")
		args = append(args, term)
	}

	query := `SELECT ` + productColumns + ` FROM products WHERE ` +
		strings.Join(where, " AND ") + ` ORDER BY name ASC LIMIT 1`
	row := d.conn.QueryRowContext(ctx, query, args...)
	return scanProduct(row)
}

// SearchAnyTerms: at least one term in the name, availability required,
// capped at limit rows.
func (d *DB) SearchAnyTerms(ctx context.Context, terms []string, limit int) ([]domain.ProductRecord, error) {
	if len(terms) == 0 {
		return nil, nil
	}
	if limit <= 0 {
		limit = 10
	}

	conditions := make([]string, 0, len(terms))
	args := make([]any, 0, len(terms)+1)
	for _, term := range terms {
		conditions = append(conditions, "instr(upper(name), upper(?)) > 0")
		args = append(args, term)
	}
	args = append(args, limit)

	query := `SELECT ` + productColumns + ` FROM products WHERE is_available = 1 AND (` +
		strings.Join(conditions, " OR ") + `) ORDER BY name ASC LIMIT ?`

	rows, err := d.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanProducts(rows)
}

func (d *DB) ListAvailable(ctx context.Context) ([]domain.ProductRecord, error) {
	rows, err := d.conn.QueryContext(ctx,
		`SELECT `+productColumns+` FROM products WHERE is_available = 1 ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanProducts(rows)
}

func (d *DB) Upsert(ctx context.Context, products []domain.ProductRecord, seenAt time.Time) error {
	tx, err := d.conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO products (
  id, name, brand, category, sankhya_code, price, unit, is_available, popularity_index, updated_at, last_seen_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
  name=excluded.name,
  brand=excluded.brand,
  category=excluded.category,
  sankhya_code=excluded.sankhya_code,
  price=excluded.price,
  unit=excluded.unit,
  is_available=excluded.is_available,
  popularity_index=excluded.popularity_index,
  updated_at=excluded.updated_at,
  last_seen_at=excluded.last_seen_at
`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	stamp := seenAt.UTC().Format(time.RFC3339)
	for _, p := range products {
		id := p.ID
		if id == "" {
			id = uuid.NewString()
		}
		if _, err := stmt.ExecContext(ctx,
			id, p.Name, p.Brand, p.Category, p.SankhyaCode, p.Price, p.Unit,
			boolToInt(p.IsAvailable), p.PopularityIndex, stamp, stamp,
		); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (d *DB) DisableUnseen(ctx context.Context, seenAt time.Time) (int64, error) {
	stamp := seenAt.UTC().Format(time.RFC3339)
	result, err := d.conn.ExecContext(ctx,
		`UPDATE products SET is_available = 0 WHERE is_available = 1 AND last_seen_at < ?`, stamp)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (d *DB) Append(ctx context.Context, c domain.Correction) error {
	createdAt := c.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err := d.conn.ExecContext(ctx, `
INSERT INTO corrections (original_text, description, model_tag, suggested_product_id, corrected_product_id, correction_type, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
`, c.OriginalText, nullable(c.Description), nullable(c.ModelTag),
		nullable(c.SuggestedProductID), nullable(c.CorrectedProductID),
		c.CorrectionType, createdAt.Format(time.RFC3339Nano))
	return err
}

// LatestFixed: newest FIXED entry with a corrected product for the text.
// "Latest wins" is resolved here at read time, never at write time.
func (d *DB) LatestFixed(ctx context.Context, normalizedText string) (*domain.Correction, error) {
	var (
		c         domain.Correction
		desc      sql.NullString
		modelTag  sql.NullString
		suggested sql.NullString
		corrected sql.NullString
		createdAt string
	)
	err := d.conn.QueryRowContext(ctx, `
SELECT id, original_text, description, model_tag, suggested_product_id, corrected_product_id, correction_type, created_at
FROM corrections
WHERE original_text = ? AND correction_type = ? AND corrected_product_id IS NOT NULL
ORDER BY created_at DESC, id DESC
LIMIT 1
`, normalizedText, domain.CorrectionFixed).Scan(
		&c.ID, &c.OriginalText, &desc, &modelTag, &suggested, &corrected, &c.CorrectionType, &createdAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	c.Description = desc.String
	c.ModelTag = modelTag.String
	c.SuggestedProductID = suggested.String
	c.CorrectedProductID = corrected.String
	if t, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
		c.CreatedAt = t
	}
	return &c, nil
}

func (d *DB) LogFailedSearch(ctx context.Context, query string) error {
	_, err := d.conn.ExecContext(ctx,
		`INSERT INTO failed_searches (id, query, created_at) VALUES (?, ?, ?)`,
		uuid.NewString(), query, time.Now().UTC().Format(time.RFC3339Nano))
	return err
}

func (d *DB) ListFailedSearches(ctx context.Context, limit int) ([]domain.FailedSearch, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := d.conn.QueryContext(ctx,
		`SELECT id, query, created_at FROM failed_searches ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.FailedSearch
	for rows.Next() {
		var fs domain.FailedSearch
		var createdAt string
		if err := rows.Scan(&fs.ID, &fs.Query, &createdAt); err != nil {
			return nil, err
		}
		if t, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
			fs.CreatedAt = t
		}
		out = append(out, fs)
	}
	return out, rows.Err()
}

// ApprovedSynonyms loads the synonym overlay merged over the static table
// at startup.
func (d *DB) ApprovedSynonyms(ctx context.Context) (map[string][]string, error) {
	rows, err := d.conn.QueryContext(ctx,
		`SELECT term, synonyms_json FROM search_synonyms WHERE approved = 1`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	overlay := map[string][]string{}
	for rows.Next() {
		var term, synonymsJSON string
		if err := rows.Scan(&term, &synonymsJSON); err != nil {
			return nil, err
		}
		var synonyms []string
		if err := json.Unmarshal([]byte(synonymsJSON), &synonyms); err != nil {
			return nil, fmt.Errorf("invalid synonyms for term %q: %w", term, err)
		}
		overlay[term] = synonyms
	}
	return overlay, rows.Err()
}

// SaveSynonym upserts an approved synonym row. Picked up on next start.
func (d *DB) SaveSynonym(ctx context.Context, term string, synonyms []string) error {
	synonymsJSON, err := json.Marshal(synonyms)
	if err != nil {
		return err
	}
	_, err = d.conn.ExecContext(ctx, `
INSERT INTO search_synonyms (term, synonyms_json, approved, updated_at)
VALUES (?, ?, 1, CURRENT_TIMESTAMP)
ON CONFLICT(term) DO UPDATE SET synonyms_json = excluded.synonyms_json, approved = 1, updated_at = CURRENT_TIMESTAMP
`, term, string(synonymsJSON))
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*domain.ProductRecord, error) {
	var (
		p         domain.ProductRecord
		brand     sql.NullString
		category  sql.NullString
		code      sql.NullInt64
		unit      sql.NullString
		available int
		updatedAt string
	)
	err := row.Scan(&p.ID, &p.Name, &brand, &category, &code, &p.Price, &unit, &available, &p.PopularityIndex, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	p.Brand = brand.String
	p.Category = category.String
	p.Unit = unit.String
	p.IsAvailable = available != 0
	if code.Valid {
		c := code.Int64
		p.SankhyaCode = &c
	}
	if t, err := time.Parse(time.RFC3339, updatedAt); err == nil {
		p.UpdatedAt = t
	}
	return &p, nil
}

func scanProducts(rows *sql.Rows) ([]domain.ProductRecord, error) {
	var out []domain.ProductRecord
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
