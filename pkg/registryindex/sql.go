package registryindex

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/marcoevans693-eng/adamos-v0/pkg/artifacts"
)

// dialect captures the statements that differ between sqlite and
// postgres: the placeholder style, and how to upsert-ignore a duplicate
// (artifact_id, kind) pair.
type dialect struct {
	createTable string
	upsertIgnore string
	existsQuery  string
}

var sqliteDialect = dialect{
	createTable: `CREATE TABLE IF NOT EXISTS registry_index (
		artifact_id TEXT NOT NULL,
		kind TEXT NOT NULL,
		PRIMARY KEY (artifact_id, kind)
	)`,
	upsertIgnore: `INSERT OR IGNORE INTO registry_index (artifact_id, kind) VALUES (?, ?)`,
	existsQuery:  `SELECT EXISTS(SELECT 1 FROM registry_index WHERE artifact_id = ? AND kind = ?)`,
}

var postgresDialect = dialect{
	createTable: `CREATE TABLE IF NOT EXISTS registry_index (
		artifact_id TEXT NOT NULL,
		kind TEXT NOT NULL,
		PRIMARY KEY (artifact_id, kind)
	)`,
	upsertIgnore: `INSERT INTO registry_index (artifact_id, kind) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
	existsQuery:  `SELECT EXISTS(SELECT 1 FROM registry_index WHERE artifact_id = $1 AND kind = $2)`,
}

// SQLIndex backs Index with a database/sql connection, sharing one
// implementation between the sqlite (modernc.org/sqlite, single-process
// deployments) and postgres (github.com/lib/pq, multi-process deployments)
// drivers — they differ only in placeholder style and upsert syntax.
type SQLIndex struct {
	db *sql.DB
	d  dialect
}

// NewSQLiteIndex returns a SQL-backed index over db, migrating its schema.
// db must already be opened against the modernc.org/sqlite driver.
func NewSQLiteIndex(db *sql.DB) (*SQLIndex, error) {
	return newSQLIndex(db, sqliteDialect)
}

// NewPostgresIndex returns a SQL-backed index over db, migrating its
// schema. db must already be opened against the github.com/lib/pq driver.
func NewPostgresIndex(db *sql.DB) (*SQLIndex, error) {
	return newSQLIndex(db, postgresDialect)
}

func newSQLIndex(db *sql.DB, d dialect) (*SQLIndex, error) {
	if _, err := db.ExecContext(context.Background(), d.createTable); err != nil {
		return nil, fmt.Errorf("registryindex: migrating schema: %w", err)
	}
	return &SQLIndex{db: db, d: d}, nil
}

func (s *SQLIndex) Contains(artifactID string, kind artifacts.Kind) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(context.Background(), s.d.existsQuery, artifactID, string(kind)).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

func (s *SQLIndex) Record(artifactID string, kind artifacts.Kind) error {
	_, err := s.db.ExecContext(context.Background(), s.d.upsertIgnore, artifactID, string(kind))
	return err
}
