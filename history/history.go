// Package history persists a lightweight log of past analyses so shell users
// can compare deck iterations across sessions. It sits entirely outside the
// engine; the engine never touches storage.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/pmarche/keeper/mulligan"
)

const schema = `
CREATE TABLE IF NOT EXISTS analyses (
    id               INTEGER PRIMARY KEY AUTOINCREMENT,
    created_at       DATETIME NOT NULL,
    deck_hash        TEXT     NOT NULL,
    deck             TEXT     NOT NULL,
    expected_success REAL     NOT NULL,
    keep_prob        REAL     NOT NULL,
    avg_mulligans    REAL     NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_analyses_at ON analyses(created_at DESC);
`

// Row is one stored analysis summary.
type Row struct {
	ID              int64
	CreatedAt       time.Time
	DeckHash        string
	Deck            string
	ExpectedSuccess float64
	KeepProb        float64
	AvgMulligans    float64
}

type Store struct {
	db *sql.DB
}

// Open creates or opens the history database at path, applying the schema.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating history dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening history db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("applying history schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Record stores the summary of one analysis.
func (s *Store) Record(deck mulligan.Deck, res *mulligan.Result) error {
	_, err := s.db.Exec(`
		INSERT INTO analyses
		  (created_at, deck_hash, deck, expected_success, keep_prob, avg_mulligans)
		VALUES (?, ?, ?, ?, ?, ?)`,
		time.Now().UTC(), fmt.Sprintf("%016x", deck.Hash()), deck.String(),
		res.ExpectedSuccess, res.KeepProb, res.AvgMulligans)
	return err
}

// Recent returns the most recent analyses, newest first.
func (s *Store) Recent(limit int) ([]Row, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(`
		SELECT id, created_at, deck_hash, deck, expected_success, keep_prob, avg_mulligans
		FROM analyses ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		var r Row
		if err := rows.Scan(&r.ID, &r.CreatedAt, &r.DeckHash, &r.Deck,
			&r.ExpectedSuccess, &r.KeepProb, &r.AvgMulligans); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
