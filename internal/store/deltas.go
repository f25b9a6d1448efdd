package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/blackwell-systems/deltalens/internal/analyze"
)

// InsertDeltas caches deltas for a sheet. Versions already cached are left
// untouched. It returns how many rows were new.
func (db *DB) InsertDeltas(sheetID string, deltas []analyze.Delta) (int, error) {
	tx, err := db.conn.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(
		`INSERT OR IGNORE INTO deltas (sheet_id, version, user_name, app, timestamp, value_json)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	added := 0
	for _, d := range deltas {
		value, err := json.Marshal(d.Value)
		if err != nil {
			return 0, fmt.Errorf("encoding delta %d: %w", d.Version, err)
		}
		res, err := stmt.Exec(sheetID, d.Version, d.User, d.App,
			d.Timestamp.UTC().Format(time.RFC3339Nano), string(value))
		if err != nil {
			return 0, fmt.Errorf("inserting delta %d: %w", d.Version, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			added++
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return added, nil
}

// ListDeltas returns every cached delta for a sheet in version order.
func (db *DB) ListDeltas(sheetID string) ([]analyze.Delta, error) {
	rows, err := db.conn.Query(
		`SELECT version, user_name, app, timestamp, value_json
		FROM deltas WHERE sheet_id = ? ORDER BY version`, sheetID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []analyze.Delta
	for rows.Next() {
		var d analyze.Delta
		var app sql.NullString
		var ts, value string
		if err := rows.Scan(&d.Version, &d.User, &app, &ts, &value); err != nil {
			return nil, err
		}
		d.App = app.String
		d.Timestamp, _ = time.Parse(time.RFC3339Nano, ts)
		if err := json.Unmarshal([]byte(value), &d.Value); err != nil {
			return nil, fmt.Errorf("decoding delta %d: %w", d.Version, err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// MaxVersion returns the highest cached version for a sheet, or 0.
func (db *DB) MaxVersion(sheetID string) (int, error) {
	var v int
	err := db.conn.QueryRow(
		"SELECT COALESCE(MAX(version), 0) FROM deltas WHERE sheet_id = ?", sheetID).Scan(&v)
	return v, err
}

// ReplaceHouseholds swaps the cached household index for a sheet.
func (db *DB) ReplaceHouseholds(sheetID string, index analyze.HouseholdIndex) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM households WHERE sheet_id = ?", sheetID); err != nil {
		return err
	}
	for rec, hh := range index {
		if _, err := tx.Exec(
			"INSERT INTO households (sheet_id, rec_id, household_id) VALUES (?, ?, ?)",
			sheetID, rec, hh); err != nil {
			return fmt.Errorf("inserting household for %s: %w", rec, err)
		}
	}
	return tx.Commit()
}

// Households returns the cached household index for a sheet.
func (db *DB) Households(sheetID string) (analyze.HouseholdIndex, error) {
	rows, err := db.conn.Query(
		"SELECT rec_id, household_id FROM households WHERE sheet_id = ?", sheetID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := analyze.HouseholdIndex{}
	for rows.Next() {
		var rec, hh string
		if err := rows.Scan(&rec, &hh); err != nil {
			return nil, err
		}
		out[rec] = hh
	}
	return out, rows.Err()
}
