package store

import (
	"context"
	"database/sql"
	"fmt"
)

type migration struct {
	version int
	name    string
	up      func(ctx context.Context, tx *sql.Tx) error
}

// migrations run in order; each step is safe to re-run against a schema that
// already has what it adds, so databases created before user_version was
// tracked upgrade cleanly.
var migrations = []migration{
	{1, "candidates table", createCandidates},
	{2, "candidate file and source columns", addCandidateFileColumns},
	{3, "users table", createUsers},
	{4, "candidate indexes", createCandidateIndexes},
}

// SchemaVersion is the user_version a fully migrated database reports.
var SchemaVersion = migrations[len(migrations)-1].version

func migrate(ctx context.Context, db *sql.DB) (from, to int, err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, 0, err
	}
	defer func() { _ = tx.Rollback() }()

	if err := tx.QueryRowContext(ctx, `PRAGMA user_version;`).Scan(&from); err != nil {
		return 0, 0, fmt.Errorf("read schema version: %w", err)
	}
	to = from

	for _, m := range migrations {
		if m.version <= from {
			continue
		}
		if err := m.up(ctx, tx); err != nil {
			return from, to, fmt.Errorf("migration %d (%s): %w", m.version, m.name, err)
		}
		to = m.version
	}
	if to == from {
		return from, to, tx.Commit()
	}

	// PRAGMA does not take bound parameters.
	if _, err := tx.ExecContext(ctx, fmt.Sprintf(`PRAGMA user_version = %d;`, to)); err != nil {
		return from, to, fmt.Errorf("write schema version: %w", err)
	}
	return from, to, tx.Commit()
}

func createCandidates(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS candidates (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  nom_complet TEXT NOT NULL,
  poste_demande TEXT NOT NULL,
  email TEXT NOT NULL UNIQUE,
  telephone TEXT,
  date_candidature TEXT NOT NULL,
  statut TEXT NOT NULL,
  priorite TEXT,
  notes TEXT,
  date_creation TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
`)
	return err
}

func addCandidateFileColumns(ctx context.Context, tx *sql.Tx) error {
	for _, col := range []string{"cv_path", "attachments", "photo_path", "source"} {
		ok, err := columnExists(ctx, tx, "candidates", col)
		if err != nil {
			return err
		}
		if ok {
			continue
		}
		if _, err := tx.ExecContext(ctx, fmt.Sprintf(`ALTER TABLE candidates ADD COLUMN %s TEXT;`, col)); err != nil {
			return fmt.Errorf("add column %s: %w", col, err)
		}
	}
	return nil
}

func createUsers(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS users (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  username TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL,
  role TEXT NOT NULL DEFAULT 'user' CHECK (role IN ('admin', 'user'))
);
`)
	return err
}

func createCandidateIndexes(ctx context.Context, tx *sql.Tx) error {
	if _, err := tx.ExecContext(ctx, `
CREATE INDEX IF NOT EXISTS idx_candidates_statut
ON candidates(statut);
`); err != nil {
		return err
	}
	_, err := tx.ExecContext(ctx, `
CREATE INDEX IF NOT EXISTS idx_candidates_date_creation
ON candidates(date_creation);
`)
	return err
}

func columnExists(ctx context.Context, q interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}, table, col string) (bool, error) {
	query := fmt.Sprintf(`
SELECT 1
FROM pragma_table_info('%s')
WHERE name = ?
LIMIT 1;
`, table)

	var one int
	err := q.QueryRowContext(ctx, query, col).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
