package store

import "fmt"

// currentSchemaVersion is the latest schema version.
const currentSchemaVersion = 1

// Migrate runs forward migrations to bring the database schema up to date.
func (db *DB) Migrate() error {
	if _, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER NOT NULL
		)
	`); err != nil {
		return fmt.Errorf("creating schema_version table: %w", err)
	}

	version := 0
	row := db.conn.QueryRow("SELECT version FROM schema_version LIMIT 1")
	if err := row.Scan(&version); err != nil {
		// No rows means version 0 (fresh database).
		version = 0
	}

	if version < 1 {
		if err := db.migrateV1(); err != nil {
			return fmt.Errorf("migration v1: %w", err)
		}
	}
	return nil
}

// SchemaVersion returns the applied schema version.
func (db *DB) SchemaVersion() (int, error) {
	var v int
	err := db.conn.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&v)
	return v, err
}

// migrateV1 creates all initial tables and indexes.
func (db *DB) migrateV1() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS sheets (
			id             TEXT PRIMARY KEY,
			name           TEXT NOT NULL,
			parent_name    TEXT,
			latest_version INTEGER NOT NULL,
			count_records  INTEGER NOT NULL,
			fetched_at     TEXT NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS deltas (
			sheet_id   TEXT NOT NULL REFERENCES sheets(id),
			version    INTEGER NOT NULL,
			user_name  TEXT NOT NULL,
			app        TEXT,
			timestamp  TEXT NOT NULL,
			value_json TEXT NOT NULL,
			PRIMARY KEY (sheet_id, version)
		)`,

		`CREATE TABLE IF NOT EXISTS households (
			sheet_id     TEXT NOT NULL REFERENCES sheets(id),
			rec_id       TEXT NOT NULL,
			household_id TEXT NOT NULL,
			PRIMARY KEY (sheet_id, rec_id)
		)`,

		`CREATE TABLE IF NOT EXISTS syncs (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			sheet_id   TEXT NOT NULL REFERENCES sheets(id),
			synced_at  TEXT NOT NULL,
			command    TEXT NOT NULL,
			added      INTEGER NOT NULL,
			to_version INTEGER NOT NULL
		)`,

		// Indexes.
		`CREATE INDEX IF NOT EXISTS idx_deltas_user ON deltas(sheet_id, user_name)`,
		`CREATE INDEX IF NOT EXISTS idx_syncs_sheet ON syncs(sheet_id)`,
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("executing %q: %w", stmt[:40], err)
		}
	}

	if _, err := tx.Exec("DELETE FROM schema_version"); err != nil {
		return err
	}
	if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", currentSchemaVersion); err != nil {
		return err
	}
	return tx.Commit()
}
