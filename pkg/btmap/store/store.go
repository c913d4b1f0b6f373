// Package store persists extraction runs to a SQLite database.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/ukaji3/btmap-go/pkg/btmap/diagnostic"
	"github.com/ukaji3/btmap-go/pkg/btmap/models"
)

const schema = `
CREATE TABLE IF NOT EXISTS placements (
	run_id TEXT NOT NULL,
	seq INTEGER NOT NULL,
	eforms_notice TEXT NOT NULL,
	sf_notice TEXT NOT NULL,
	bt_id TEXT NOT NULL,
	level TEXT NOT NULL,
	element TEXT NOT NULL,
	fields_json TEXT NOT NULL,
	PRIMARY KEY (run_id, seq)
);
CREATE INDEX IF NOT EXISTS idx_placements_bt ON placements(bt_id);
CREATE INDEX IF NOT EXISTS idx_placements_notice ON placements(eforms_notice);

CREATE TABLE IF NOT EXISTS diagnostics (
	run_id TEXT NOT NULL,
	seq INTEGER NOT NULL,
	severity TEXT NOT NULL,
	code TEXT NOT NULL,
	sheet TEXT NOT NULL,
	bt_id TEXT NOT NULL,
	message TEXT NOT NULL,
	PRIMARY KEY (run_id, seq)
);
`

// Store wraps a SQLite database holding placements and diagnostics.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at path.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveCorpus writes every record of the corpus under runID.
func (s *Store) SaveCorpus(ctx context.Context, runID string, c *models.Corpus) error {
	return s.inTx(ctx, `INSERT INTO placements
		(run_id, seq, eforms_notice, sf_notice, bt_id, level, element, fields_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		func(stmt *sql.Stmt) error {
			for i, rec := range c.Records {
				fields, err := json.Marshal(rec.Fields)
				if err != nil {
					return err
				}
				if _, err := stmt.ExecContext(ctx, runID, i,
					rec.Get(models.ColumnEformsNotice),
					rec.Get(models.ColumnSFNotice),
					rec.Get(models.ColumnID),
					rec.Get(models.ColumnLevel),
					rec.Get(models.ColumnElement),
					string(fields),
				); err != nil {
					return err
				}
			}
			return nil
		})
}

// SaveDiagnostics writes all diagnostics under runID.
func (s *Store) SaveDiagnostics(ctx context.Context, runID string, d *diagnostic.Diagnostics) error {
	return s.inTx(ctx, `INSERT INTO diagnostics
		(run_id, seq, severity, code, sheet, bt_id, message)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		func(stmt *sql.Stmt) error {
			for i, item := range d.All() {
				if _, err := stmt.ExecContext(ctx, runID, i,
					item.Severity.String(),
					item.Code,
					item.Context.Sheet,
					item.Context.ID,
					item.Message,
				); err != nil {
					return err
				}
			}
			return nil
		})
}

// CountPlacements returns the number of placements stored for runID.
func (s *Store) CountPlacements(ctx context.Context, runID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM placements WHERE run_id = ?`, runID).Scan(&n)
	return n, err
}

// RunIDs returns the run identifiers that stored placements, oldest first.
func (s *Store) RunIDs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id FROM placements GROUP BY run_id ORDER BY MIN(rowid)`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// PlacementsByBT returns the level and element of each placement of a BT, in corpus order.
func (s *Store) PlacementsByBT(ctx context.Context, runID, bt string) ([][2]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT level, element FROM placements WHERE run_id = ? AND bt_id = ? ORDER BY seq`, runID, bt)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out [][2]string
	for rows.Next() {
		var p [2]string
		if err := rows.Scan(&p[0], &p[1]); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Store) inTx(ctx context.Context, query string, fn func(*sql.Stmt) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	if err := fn(stmt); err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to insert: %w", err)
	}
	return tx.Commit()
}
