package report

import (
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/blackwell-systems/deltalens/internal/analyze"
)

// DailyAggregate is active time accumulated for a set of users over a time
// range. The zero value is the identity for Merge, so one type serves as a
// (user, day) cell, a row or column total and the grand total.
type DailyAggregate struct {
	users    []string
	Range    analyze.TimeRange
	Duration time.Duration
}

// NewDailyAggregate returns an empty cell for user on the local day holding t.
func NewDailyAggregate(user string, t time.Time, loc *time.Location) DailyAggregate {
	return DailyAggregate{
		users: []string{user},
		Range: analyze.LocalDay(t, loc),
	}
}

// Build adds a cluster's active time.
func (a DailyAggregate) Build(c analyze.Cluster) DailyAggregate {
	a.Duration += c.Duration()
	return a
}

// Merge combines two aggregates: users and ranges are unioned and durations
// summed. Merge is commutative and associative.
func (a DailyAggregate) Merge(b DailyAggregate) DailyAggregate {
	return DailyAggregate{
		users:    unionSorted(a.users, b.users),
		Range:    a.Range.Union(b.Range),
		Duration: a.Duration + b.Duration,
	}
}

// Users returns the users covered, sorted.
func (a DailyAggregate) Users() []string {
	return a.users
}

// Seconds returns the accumulated active seconds.
func (a DailyAggregate) Seconds() float64 {
	return a.Duration.Seconds()
}

// Minutes rounds the accumulated seconds to whole minutes, half away from
// zero.
func (a DailyAggregate) Minutes() int {
	return int(math.Round(a.Seconds() / 60))
}

func (a DailyAggregate) String() string {
	return strconv.Itoa(a.Minutes())
}

// Mode returns the session list behind this aggregate, narrowed to its user
// when it covers exactly one.
func (a DailyAggregate) Mode() Mode {
	f := analyze.Filter{}
	if len(a.users) == 1 {
		f = f.WithUser(a.users[0])
	}
	return ShowSessionList{Filter: f.WithTimeRange(a.Range)}
}

// Cell returns the aggregate as a clickable minutes cell.
func (a DailyAggregate) Cell() Cell {
	return Clickable(a, a.Mode)
}

// MergeAll folds Merge over aggs starting from the identity.
func MergeAll(aggs ...DailyAggregate) DailyAggregate {
	var out DailyAggregate
	for _, a := range aggs {
		out = out.Merge(a)
	}
	return out
}

func unionSorted(a, b []string) []string {
	if len(b) == 0 {
		return a
	}
	if len(a) == 0 {
		return b
	}
	seen := make(map[string]bool, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, s := range append(append([]string(nil), a...), b...) {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return out
}

// DailyGrid is the (user, local day) table behind the daily report.
type DailyGrid struct {
	Users []string
	Days  []string
	cells map[string]map[string]DailyAggregate
}

// BuildDailyGrid buckets every user's clusters by the local calendar day of
// the cluster start.
func BuildDailyGrid(list *analyze.NormChangeList, gap time.Duration, loc *time.Location) *DailyGrid {
	g := &DailyGrid{cells: make(map[string]map[string]DailyAggregate)}
	days := make(map[string]bool)
	for _, ul := range list.ByUser() {
		for _, c := range ul.List.Clusters(gap) {
			local := analyze.LocalDay(c.Range.Start, loc)
			day := strconv.Itoa(analyze.SortableDay(local.Start))

			row, ok := g.cells[ul.User]
			if !ok {
				row = make(map[string]DailyAggregate)
				g.cells[ul.User] = row
				g.Users = append(g.Users, ul.User)
			}
			cell, ok := row[day]
			if !ok {
				cell = NewDailyAggregate(ul.User, c.Range.Start, loc)
			}
			row[day] = cell.Build(c)
			days[day] = true
		}
	}
	for d := range days {
		g.Days = append(g.Days, d)
	}
	sort.Strings(g.Days)
	return g
}

// Cell returns the aggregate for (user, day) and whether one exists.
func (g *DailyGrid) Cell(user, day string) (DailyAggregate, bool) {
	a, ok := g.cells[user][day]
	return a, ok
}

// UserTotal folds a user's cells.
func (g *DailyGrid) UserTotal(user string) DailyAggregate {
	var cells []DailyAggregate
	for _, day := range g.Days {
		if a, ok := g.Cell(user, day); ok {
			cells = append(cells, a)
		}
	}
	return MergeAll(cells...)
}

// DayTotal folds a day's cells across users.
func (g *DailyGrid) DayTotal(day string) DailyAggregate {
	var cells []DailyAggregate
	for _, user := range g.Users {
		if a, ok := g.Cell(user, day); ok {
			cells = append(cells, a)
		}
	}
	return MergeAll(cells...)
}

// GrandTotal folds every user's total.
func (g *DailyGrid) GrandTotal() DailyAggregate {
	totals := make([]DailyAggregate, 0, len(g.Users))
	for _, user := range g.Users {
		totals = append(totals, g.UserTotal(user))
	}
	return MergeAll(totals...)
}
