package store

import (
	"database/sql"
	"time"
)

// UpsertSheet stores or replaces a sheet header.
func (db *DB) UpsertSheet(s Sheet) error {
	if s.FetchedAt.IsZero() {
		s.FetchedAt = time.Now()
	}
	_, err := db.conn.Exec(
		`INSERT INTO sheets (id, name, parent_name, latest_version, count_records, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			parent_name = excluded.parent_name,
			latest_version = excluded.latest_version,
			count_records = excluded.count_records,
			fetched_at = excluded.fetched_at`,
		s.ID, s.Name, s.ParentName, s.LatestVersion, s.CountRecords,
		s.FetchedAt.UTC().Format(time.RFC3339),
	)
	return err
}

// GetSheet returns the cached sheet header, or nil if it is not cached.
func (db *DB) GetSheet(id string) (*Sheet, error) {
	row := db.conn.QueryRow(
		"SELECT id, name, parent_name, latest_version, count_records, fetched_at FROM sheets WHERE id = ?", id)
	var s Sheet
	var parent sql.NullString
	var fetchedAt string
	err := row.Scan(&s.ID, &s.Name, &parent, &s.LatestVersion, &s.CountRecords, &fetchedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	s.ParentName = parent.String
	s.FetchedAt, _ = time.Parse(time.RFC3339, fetchedAt)
	return &s, nil
}

// RecordSync logs one refresh of a sheet.
func (db *DB) RecordSync(sheetID, command string, added, toVersion int) (int64, error) {
	result, err := db.conn.Exec(
		"INSERT INTO syncs (sheet_id, synced_at, command, added, to_version) VALUES (?, ?, ?, ?, ?)",
		sheetID, time.Now().UTC().Format(time.RFC3339), command, added, toVersion,
	)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// LatestSync returns the most recent sync of a sheet, or nil if none exist.
func (db *DB) LatestSync(sheetID string) (*Sync, error) {
	row := db.conn.QueryRow(
		`SELECT id, sheet_id, synced_at, command, added, to_version
		FROM syncs WHERE sheet_id = ? ORDER BY id DESC LIMIT 1`, sheetID)
	var s Sync
	var syncedAt string
	err := row.Scan(&s.ID, &s.SheetID, &syncedAt, &s.Command, &s.Added, &s.ToVersion)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	s.SyncedAt, _ = time.Parse(time.RFC3339, syncedAt)
	return &s, nil
}
