// Package store provides the SQLite cache of sheet info, deltas and the
// household index.
package store

import "time"

// Sheet is the cached header of a sheet.
type Sheet struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	ParentName    string    `json:"parent_name,omitempty"`
	LatestVersion int       `json:"latest_version"`
	CountRecords  int       `json:"count_records"`
	FetchedAt     time.Time `json:"fetched_at"`
}

// Sync records one refresh of the cache.
type Sync struct {
	ID        int64     `json:"id"`
	SheetID   string    `json:"sheet_id"`
	SyncedAt  time.Time `json:"synced_at"`
	Command   string    `json:"command"`
	Added     int       `json:"added"`
	ToVersion int       `json:"to_version"`
}
