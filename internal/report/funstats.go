package report

import (
	"time"

	"github.com/dustin/go-humanize"

	"github.com/blackwell-systems/deltalens/internal/analyze"
)

// FunStats are headline totals across every user and session.
type FunStats struct {
	Users      int           `json:"users"`
	Sessions   int           `json:"sessions"`
	Active     time.Duration `json:"active"`
	DistanceKM float64       `json:"distance_km"`
	Contacts   int           `json:"contacts"`
	Households int           `json:"households"`
	Days       int           `json:"days"`
	Tidbits    int           `json:"tidbits"`
}

// BuildFunStats sums the stats in one pass over users, clusters and events.
func BuildFunStats(list *analyze.NormChangeList, h analyze.Householder, gap time.Duration, loc *time.Location) FunStats {
	var s FunStats
	days := make(map[int]int)
	for _, ul := range list.ByUser() {
		s.Users++
		for _, c := range ul.List.Clusters(gap) {
			s.Sessions++
			s.Active += c.Duration()
			s.DistanceKM += c.TotalDistKM()
			s.Contacts += c.UniqueCount()
			s.Households += c.UniqueHouseholdCount(h)
			days[analyze.SortableDay(analyze.LocalDay(c.Range.Start, loc).Start)]++
			for _, item := range c.Items {
				item.Each(func(_, value string) {
					if value != "" {
						s.Tidbits++
					}
				})
			}
		}
	}
	s.Days = len(days)
	return s
}

func (s FunStats) render(root *Element) {
	tw := NewTableWriter(root, "Name", "Value")
	add := func(name, value string) {
		tw.WriteRow(NewRow().Set("Name", name).Set("Value", value))
	}
	add("Users", humanize.Comma(int64(s.Users)))
	add("Sessions", humanize.Comma(int64(s.Sessions)))
	add("Active time", analyze.PrettyDuration(s.Active))
	add("Distance walked (km)", humanize.FormatFloat("#,###.##", s.DistanceKM))
	add("Contacts", humanize.Comma(int64(s.Contacts)))
	add("Households", humanize.Comma(int64(s.Households)))
	add("Days active", humanize.Comma(int64(s.Days)))
	add("Tidbits collected", humanize.Comma(int64(s.Tidbits)))
	tw.AddDownload("stats.csv")
}
