package analyze

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// ColumnRecID is the column that names the records a delta edits.
const ColumnRecID = "RecId"

// Well-known metadata columns written by the collecting app.
const (
	ColumnLat          = "XLat"
	ColumnLong         = "XLong"
	ColumnLastModified = "XLastModified"
)

// ErrVersionNotFound is returned when a delta version is not in the changelist.
var ErrVersionNotFound = errors.New("version not found")

// Contents is a columnar sheet fragment: column name to one value per record.
// Row i of every column belongs to the record RecId[i].
type Contents map[string][]string

// Columns returns the column names in sorted order.
func (c Contents) Columns() []string {
	names := make([]string, 0, len(c))
	for name := range c {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Rows returns the number of records in the fragment.
func (c Contents) Rows() int {
	if ids, ok := c[ColumnRecID]; ok {
		return len(ids)
	}
	n := 0
	for _, vals := range c {
		if len(vals) > n {
			n = len(vals)
		}
	}
	return n
}

// At returns the value of column at row i, or "" when absent.
func (c Contents) At(column string, i int) string {
	vals := c[column]
	if i < 0 || i >= len(vals) {
		return ""
	}
	return vals[i]
}

// IsMetadataColumn reports whether a column is bookkeeping rather than an
// answer: the RecId column and any column starting with "X".
func IsMetadataColumn(name string) bool {
	return name == ColumnRecID || strings.HasPrefix(name, "X")
}

// Delta is one uploaded edit. Versions are unique within a sheet.
type Delta struct {
	Version   int       `json:"Version" yaml:"version"`
	User      string    `json:"User" yaml:"user"`
	App       string    `json:"App" yaml:"app"`
	Timestamp time.Time `json:"Timestamp" yaml:"timestamp"`
	Value     Contents  `json:"Value" yaml:"value"`
}

// Changelist is the full, immutable log of deltas ordered by version.
type Changelist struct {
	deltas    []Delta
	byVersion map[int]int
}

// NewChangelist builds a changelist from deltas in any order. When a version
// appears more than once the first occurrence wins.
func NewChangelist(deltas []Delta) *Changelist {
	sorted := make([]Delta, len(deltas))
	copy(sorted, deltas)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Version < sorted[j].Version
	})

	cl := &Changelist{byVersion: make(map[int]int, len(sorted))}
	for _, d := range sorted {
		if _, dup := cl.byVersion[d.Version]; dup {
			continue
		}
		cl.byVersion[d.Version] = len(cl.deltas)
		cl.deltas = append(cl.deltas, d)
	}
	return cl
}

// Len returns the number of deltas.
func (cl *Changelist) Len() int {
	return len(cl.deltas)
}

// Deltas returns the deltas in version order. Callers must not modify them.
func (cl *Changelist) Deltas() []Delta {
	return cl.deltas
}

// MaxVersion returns the highest version, or 0 for an empty changelist.
func (cl *Changelist) MaxVersion() int {
	if len(cl.deltas) == 0 {
		return 0
	}
	return cl.deltas[len(cl.deltas)-1].Version
}

// Get returns the delta with the given version.
func (cl *Changelist) Get(version int) (Delta, error) {
	idx, ok := cl.byVersion[version]
	if !ok {
		return Delta{}, fmt.Errorf("delta %d: %w", version, ErrVersionNotFound)
	}
	return cl.deltas[idx], nil
}

// EachRaw calls fn for every delta in version order.
func (cl *Changelist) EachRaw(fn func(Delta)) {
	for _, d := range cl.deltas {
		fn(d)
	}
}

// ApplyFilter returns the deltas matching f. Local-day matching uses loc.
func (cl *Changelist) ApplyFilter(f Filter, loc *time.Location) *Changelist {
	var kept []Delta
	for _, d := range cl.deltas {
		if f.matches(d.Version, d.User, d.App, d.Timestamp, loc) {
			kept = append(kept, d)
		}
	}
	return NewChangelist(kept)
}

// Normalize expands every delta into one event per edited record.
func (cl *Changelist) Normalize() []NormDelta {
	var out []NormDelta
	for _, d := range cl.deltas {
		out = append(out, normalizeDelta(d)...)
	}
	return out
}

func normalizeDelta(d Delta) []NormDelta {
	columns := d.Value.Columns()
	n := d.Value.Rows()
	out := make([]NormDelta, 0, n)
	for i := 0; i < n; i++ {
		nd := NormDelta{
			Version:   d.Version,
			Index:     i,
			User:      d.User,
			App:       d.App,
			RecID:     d.Value.At(ColumnRecID, i),
			Timestamp: d.Timestamp,
		}
		if ts := d.Value.At(ColumnLastModified, i); ts != "" {
			if t, err := time.Parse(time.RFC3339Nano, ts); err == nil {
				nd.Timestamp = t
			}
		}
		nd.Loc = parseLoc(d.Value.At(ColumnLat, i), d.Value.At(ColumnLong, i))
		for _, col := range columns {
			if IsMetadataColumn(col) {
				continue
			}
			nd.Columns = append(nd.Columns, ColumnValue{Name: col, Value: d.Value.At(col, i)})
		}
		out = append(out, nd)
	}
	return out
}

func parseLoc(lat, long string) GeoPoint {
	if lat == "" || long == "" {
		return GeoPoint{}
	}
	la, err1 := strconv.ParseFloat(lat, 64)
	lo, err2 := strconv.ParseFloat(long, 64)
	if err1 != nil || err2 != nil {
		return GeoPoint{}
	}
	return GeoPoint{Lat: la, Long: lo}
}

// Flattened is a changelist collapsed to one row per record holding the
// latest non-empty value of each column.
type Flattened struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// FlattenByRecID collapses the changelist to the latest value per record and
// column. Column 0 is RecId; other columns and records keep first-seen order.
func (cl *Changelist) FlattenByRecID() Flattened {
	colIdx := map[string]int{ColumnRecID: 0}
	columns := []string{ColumnRecID}
	recIdx := make(map[string]int)
	var rows []map[int]string

	for _, d := range cl.deltas {
		ids := d.Value[ColumnRecID]
		for i, id := range ids {
			if id == "" {
				continue
			}
			r, ok := recIdx[id]
			if !ok {
				r = len(rows)
				recIdx[id] = r
				rows = append(rows, map[int]string{0: id})
			}
			for _, col := range d.Value.Columns() {
				if col == ColumnRecID {
					continue
				}
				v := d.Value.At(col, i)
				if v == "" {
					continue
				}
				c, ok := colIdx[col]
				if !ok {
					c = len(columns)
					colIdx[col] = c
					columns = append(columns, col)
				}
				rows[r][c] = v
			}
		}
	}

	out := Flattened{Columns: columns, Rows: make([][]string, len(rows))}
	for r, vals := range rows {
		row := make([]string, len(columns))
		for c, v := range vals {
			row[c] = v
		}
		out.Rows[r] = row
	}
	return out
}
