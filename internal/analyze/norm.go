package analyze

import (
	"sort"
	"strings"
	"time"
)

// ColumnValue is one answered column of a normalized event.
type ColumnValue struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// NormDelta is one record's slice of a delta: who edited which record, when,
// where, and the non-metadata column values.
type NormDelta struct {
	Version   int           `json:"version"`
	Index     int           `json:"index"`
	User      string        `json:"user"`
	App       string        `json:"app"`
	RecID     string        `json:"rec_id"`
	Timestamp time.Time     `json:"timestamp"`
	Loc       GeoPoint      `json:"loc"`
	Columns   []ColumnValue `json:"columns"`
}

// Each calls fn for every non-metadata column in column order.
func (n NormDelta) Each(fn func(column, value string)) {
	for _, c := range n.Columns {
		fn(c.Name, c.Value)
	}
}

// NormChangeList is an ordered list of normalized events, sorted by
// timestamp then version then row index.
type NormChangeList struct {
	items []NormDelta
}

// NewNormChangeList sorts items into event order.
func NewNormChangeList(items []NormDelta) *NormChangeList {
	sorted := make([]NormDelta, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if !a.Timestamp.Equal(b.Timestamp) {
			return a.Timestamp.Before(b.Timestamp)
		}
		if a.Version != b.Version {
			return a.Version < b.Version
		}
		return a.Index < b.Index
	})
	return &NormChangeList{items: sorted}
}

// Len returns the number of events.
func (l *NormChangeList) Len() int {
	return len(l.items)
}

// Items returns the events in order. Callers must not modify them.
func (l *NormChangeList) Items() []NormDelta {
	return l.items
}

// Each calls fn for every event in order.
func (l *NormChangeList) Each(fn func(NormDelta)) {
	for _, item := range l.items {
		fn(item)
	}
}

// ApplyFilter returns the events matching f. Local-day matching uses loc.
func (l *NormChangeList) ApplyFilter(f Filter, loc *time.Location) *NormChangeList {
	var kept []NormDelta
	for _, item := range l.items {
		if f.matches(item.Version, item.User, item.App, item.Timestamp, loc) {
			kept = append(kept, item)
		}
	}
	return &NormChangeList{items: kept}
}

// Users returns the distinct users in sorted order. Users differing only in
// case are one user, named by their first spelling, as filters match them.
func (l *NormChangeList) Users() []string {
	seen := make(map[string]bool)
	var users []string
	for _, item := range l.items {
		k := userKey(item.User)
		if !seen[k] {
			seen[k] = true
			users = append(users, item.User)
		}
	}
	sort.SliceStable(users, func(i, j int) bool {
		ki, kj := userKey(users[i]), userKey(users[j])
		if ki != kj {
			return ki < kj
		}
		return users[i] < users[j]
	})
	return users
}

func userKey(user string) string {
	return strings.ToLower(user)
}

// UserList pairs a user with their own events.
type UserList struct {
	User string
	List *NormChangeList
}

// ByUser splits the list per user, in Users() order.
func (l *NormChangeList) ByUser() []UserList {
	buckets := make(map[string][]NormDelta)
	for _, item := range l.items {
		k := userKey(item.User)
		buckets[k] = append(buckets[k], item)
	}
	users := l.Users()
	out := make([]UserList, 0, len(users))
	for _, u := range users {
		out = append(out, UserList{User: u, List: &NormChangeList{items: buckets[userKey(u)]}})
	}
	return out
}

// Clusters groups the events into bursts of activity. A new cluster starts
// whenever the gap to the previous event exceeds maxGap. Call it on a
// single user's list.
func (l *NormChangeList) Clusters(maxGap time.Duration) []Cluster {
	var out []Cluster
	var cur *Cluster
	var prev time.Time
	for _, item := range l.items {
		if cur == nil || item.Timestamp.Sub(prev) > maxGap {
			out = append(out, Cluster{User: item.User})
			cur = &out[len(out)-1]
		}
		cur.add(item)
		prev = item.Timestamp
	}
	return out
}
