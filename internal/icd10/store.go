package icd10

import (
	"context"
	"encoding/binary"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/lc2/ambispeech/internal/common"
)

const schema = `
CREATE TABLE IF NOT EXISTS icd10_codes (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	code        TEXT NOT NULL,
	description TEXT NOT NULL,
	vector      BLOB
);
CREATE INDEX IF NOT EXISTS idx_icd10_code ON icd10_codes(code);
`

// Store wraps the SQLite table holding the reference corpus and its
// persisted embedding vectors.
type Store struct {
	db *sqlx.DB
}

type entryRow struct {
	ID          int64  `db:"id"`
	Code        string `db:"code"`
	Description string `db:"description"`
	Vector      []byte `db:"vector"`
}

// Open connects to the corpus database at path and migrates the schema.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("icd10: store path required")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve store path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return nil, fmt.Errorf("prepare store directory: %w", err)
	}
	db, err := sqlx.Connect("sqlite3", abs)
	if err != nil {
		return nil, fmt.Errorf("open corpus store: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate corpus store: %w", err)
	}
	common.Logger().Info("icd10: corpus store opened", "path", abs)
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Count returns the number of corpus rows.
func (s *Store) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM icd10_codes`); err != nil {
		return 0, fmt.Errorf("count corpus rows: %w", err)
	}
	return count, nil
}

// ImportCSV loads code/description pairs from a semicolon-separated file. A
// header row is skipped when its first column is not code-shaped.
func (s *Store) ImportCSV(ctx context.Context, path string) (int, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return 0, fmt.Errorf("open corpus csv: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.Comma = ';'
	reader.FieldsPerRecord = -1

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin corpus import: %w", err)
	}
	defer tx.Rollback()

	imported := 0
	first := true
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("read corpus csv: %w", err)
		}
		if len(record) < 2 {
			continue
		}
		code := strings.TrimSpace(record[0])
		description := strings.TrimSpace(record[1])
		if first {
			first = false
			if strings.EqualFold(code, "code") || strings.Contains(strings.ToLower(code), "schl") {
				continue
			}
		}
		if code == "" || description == "" {
			continue
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO icd10_codes (code, description) VALUES (?, ?)`, code, description); err != nil {
			return 0, fmt.Errorf("insert corpus row: %w", err)
		}
		imported++
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit corpus import: %w", err)
	}
	common.Logger().Info("icd10: corpus imported", "path", path, "rows", imported)
	return imported, nil
}

// Vectorize embeds descriptions for rows without a stored vector and writes
// the vectors back, batchSize rows per embedding call.
func (s *Store) Vectorize(ctx context.Context, embedder Embedder, batchSize int) (int, error) {
	if embedder == nil {
		return 0, errors.New("icd10: no embedder configured")
	}
	if batchSize < 1 {
		batchSize = 64
	}
	logger := common.Logger()
	vectorized := 0
	for {
		var rows []entryRow
		err := s.db.SelectContext(ctx, &rows,
			`SELECT id, code, description FROM icd10_codes WHERE vector IS NULL OR LENGTH(vector) = 0 ORDER BY id LIMIT ?`, batchSize)
		if err != nil {
			return vectorized, fmt.Errorf("select unvectorized rows: %w", err)
		}
		if len(rows) == 0 {
			break
		}
		texts := make([]string, len(rows))
		for i, row := range rows {
			texts[i] = row.Description
		}
		vectors, err := embedder.Embed(ctx, texts)
		if err != nil {
			return vectorized, fmt.Errorf("embed corpus batch: %w", err)
		}
		if len(vectors) != len(rows) {
			return vectorized, fmt.Errorf("embedder returned %d vectors for %d rows", len(vectors), len(rows))
		}
		for i, row := range rows {
			encoded := encodeVector(vectors[i])
			if len(encoded) == 0 {
				return vectorized, fmt.Errorf("embedder returned empty vector for %q", row.Code)
			}
			if _, err := s.db.ExecContext(ctx,
				`UPDATE icd10_codes SET vector = ? WHERE id = ?`, encoded, row.ID); err != nil {
				return vectorized, fmt.Errorf("store corpus vector: %w", err)
			}
			vectorized++
		}
	}
	if vectorized > 0 {
		logger.Info("icd10: corpus vectorized", "rows", vectorized)
	}
	return vectorized, nil
}

// Entries loads the full corpus. Rows without a vector are included with a
// nil vector; they score zero in searches until vectorized.
func (s *Store) Entries(ctx context.Context) ([]ReferenceEntry, error) {
	var rows []entryRow
	if err := s.db.SelectContext(ctx, &rows,
		`SELECT id, code, description, vector FROM icd10_codes ORDER BY id`); err != nil {
		return nil, fmt.Errorf("load corpus: %w", err)
	}
	entries := make([]ReferenceEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, ReferenceEntry{
			Code:        row.Code,
			Description: row.Description,
			Vector:      decodeVector(row.Vector),
		})
	}
	return entries, nil
}

func encodeVector(vec []float32) []byte {
	if len(vec) == 0 {
		return nil
	}
	buf := make([]byte, 4*len(vec))
	for i, v := range vec {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(v))
	}
	return buf
}

func decodeVector(data []byte) []float32 {
	if len(data) < 4 {
		return nil
	}
	vec := make([]float32, len(data)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[4*i:]))
	}
	return vec
}
