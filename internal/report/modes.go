package report

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/blackwell-systems/deltalens/internal/analyze"
)

const localTimeLayout = "2006-01-02 15:04:05"

// ShowDelta shows one raw delta.
type ShowDelta struct {
	Version int
}

func (ShowDelta) Kind() Kind { return KindDelta }

func (m ShowDelta) Hash() string {
	return fmt.Sprintf("show=delta;ver=%d", m.Version)
}

func (ShowDelta) Description() string {
	return "This is an advanced view. It shows an individual piece of information (a 'delta') uploaded by the mobile clients. " +
		"Each delta is given a unique version number, and may edit one or more RecIds."
}

func (m ShowDelta) Render(ctx *Context) error {
	d, err := ctx.Data.Changelist.Get(m.Version)
	if err != nil {
		return err
	}
	b, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding delta %d: %w", m.Version, err)
	}
	ctx.Element.AddPre(string(b))
	return nil
}

// ShowDeltaRange lists raw deltas.
type ShowDeltaRange struct {
	Filter analyze.Filter
}

func (ShowDeltaRange) Kind() Kind { return KindDeltaRange }
func (m ShowDeltaRange) Hash() string { return filteredHash(KindDeltaRange, m.Filter) }
func (m ShowDeltaRange) filter() analyze.Filter { return m.Filter }

func (ShowDeltaRange) Description() string {
	return "This is an advanced view and shows a specific range of 'deltas'. You can use this to drill into specific activity for sessions."
}

func (m ShowDeltaRange) Render(ctx *Context) error {
	f := m.Filter
	ctx.Element.AddButton("View data by RecId", func() Mode { return ShowFlattenByRecID{Filter: f} })

	cl := ctx.Data.Changelist.ApplyFilter(f, ctx.Data.Location)
	drawUsers(ctx.Map, analyze.NewNormChangeList(cl.Normalize()), ctx.Data.ClusterGap)

	tw := NewTableWriter(ctx.Element, "Version", "User", "LocalTime", "App", "Contents")
	var encErr error
	cl.EachRaw(func(d analyze.Delta) {
		contents, err := json.Marshal(d.Value)
		if err != nil && encErr == nil {
			encErr = fmt.Errorf("encoding delta %d: %w", d.Version, err)
		}
		ver := d.Version
		tw.WriteRow(NewRow().
			Set("Version", Clickable(ver, func() Mode { return ShowDelta{Version: ver} })).
			Set("User", d.User).
			Set("LocalTime", d.Timestamp.In(ctx.Data.Location).Format(localTimeLayout)).
			Set("App", d.App).
			Set("Contents", string(contents)))
	})
	tw.AddDownload("deltarange.csv")
	return encErr
}

// ShowNDeltaRange shows normalized events with a per-question summary.
type ShowNDeltaRange struct {
	Filter analyze.Filter
}

func (ShowNDeltaRange) Kind() Kind { return KindNDeltaRange }
func (m ShowNDeltaRange) Hash() string { return filteredHash(KindNDeltaRange, m.Filter) }
func (m ShowNDeltaRange) filter() analyze.Filter { return m.Filter }

func (ShowNDeltaRange) Description() string {
	return "This is an advanced view and shows a specific range of updates. " +
		"You can use this to drill into specific activity for sessions."
}

func (m ShowNDeltaRange) Render(ctx *Context) error {
	list := ctx.Data.Norm.ApplyFilter(m.Filter, ctx.Data.Location)
	drawUsers(ctx.Map, list, ctx.Data.ClusterGap)

	voters := make(map[string]bool)
	households := make(map[string]bool)
	var span analyze.TimeRange
	list.Each(func(item analyze.NormDelta) {
		if item.RecID != "" {
			voters[item.RecID] = true
		}
		if hh := ctx.Data.Households.HouseholdID(item.RecID); hh != "" {
			households[hh] = true
		}
		span = span.ExpandToInclude(item.Timestamp)
	})
	total := "0"
	if !span.IsEmpty() {
		total = span.Pretty()
	}

	ctx.Element.AddHeading("Response Summary")
	ctx.Element.AddText(fmt.Sprintf("%d total voters. %d households. %s total time.", len(voters), len(households), total))
	renderHistogram(ctx.Element, BuildHistogram(list))

	ctx.Element.AddHeading("Individual Answers")
	tw := NewTableWriter(ctx.Element, "Version", "RecId", "HouseholdId", "User", "LocalTime", "App", "Contents")
	list.Each(func(item analyze.NormDelta) {
		var contents strings.Builder
		item.Each(func(column, value string) {
			contents.WriteString(column + "=" + value + "; ")
		})
		ver := item.Version
		tw.WriteRow(NewRow().
			Set("Version", Clickable(fmt.Sprintf("%d-%d", item.Version, item.Index), func() Mode { return ShowDelta{Version: ver} })).
			Set("RecId", item.RecID).
			Set("HouseholdId", ctx.Data.Households.HouseholdID(item.RecID)).
			Set("User", item.User).
			Set("LocalTime", item.Timestamp.In(ctx.Data.Location).Format(localTimeLayout)).
			Set("App", item.App).
			Set("Contents", contents.String()))
	})
	tw.AddDownload("ndeltarange.csv")
	return nil
}

// SessionColumns is the session list column order.
var SessionColumns = []string{
	"User", "VoterCount", "VerStart", "Color", "DayNumber", "Day", "StartTime", "EndTime",
	"TotalMinutes", "TotalDuration", "Distance", "HouseholdCount", "GapDistanceKM", "GapTimeMinutes",
}

// ShowSessionList lists each user's sessions with the gaps between them.
type ShowSessionList struct {
	Filter analyze.Filter
}

func (ShowSessionList) Kind() Kind { return KindSessions }
func (m ShowSessionList) Hash() string { return filteredHash(KindSessions, m.Filter) }
func (m ShowSessionList) filter() analyze.Filter { return m.Filter }

func (ShowSessionList) Description() string {
	return "This shows 'sessions' - which are continuous periods of active usage where the user is submitting results."
}

func (m ShowSessionList) Render(ctx *Context) error {
	loc := ctx.Data.Location
	list := ctx.Data.Norm.ApplyFilter(m.Filter, loc)
	tw := NewTableWriter(ctx.Element, SessionColumns...)

	var voters, households, minutes int
	var distance float64
	for i, ul := range list.ByUser() {
		color := UserColor(i)
		clusters := ul.List.Clusters(ctx.Data.ClusterGap)
		gaps := SessionGaps(clusters)
		for j, c := range clusters {
			user, span := ul.User, c.Range
			drill := func() Mode {
				return ShowNDeltaRange{Filter: analyze.Filter{}.WithUser(user).WithTimeRange(span)}
			}
			glyph := ctx.Map.AddCluster(c, color, drill)

			day := analyze.RoundToUTCDay(span.Start)
			row := NewRow().
				Set("User", user).
				Set("VoterCount", c.UniqueCount()).
				Set("VerStart", Clickable(c.Items[0].Version, drill)).
				Set("Color", ColorValue(color, glyph)).
				Set("DayNumber", analyze.SortableDay(day)).
				Set("Day", day.Format("Mon Jan 02 2006")).
				Set("StartTime", span.Start.In(loc).Format("15:04:05")).
				Set("EndTime", span.End.In(loc).Format("15:04:05")).
				Set("TotalMinutes", int(math.Round(span.Duration().Seconds()/60))).
				Set("TotalDuration", span.Pretty()).
				Set("Distance", round2(c.TotalDistKM())).
				Set("HouseholdCount", c.UniqueHouseholdCount(ctx.Data.Households)).
				Set("GapDistanceKM", round2(gaps[j].DistanceKM)).
				Set("GapTimeMinutes", gaps[j].Minutes)

			voters += c.UniqueCount()
			households += c.UniqueHouseholdCount(ctx.Data.Households)
			distance += c.TotalDistKM()
			minutes += int(math.Round(span.Duration().Seconds() / 60))
			tw.WriteRow(row)
		}
	}

	tw.WriteRow(NewRow().
		Set("User", "Total").
		Set("VoterCount", voters).
		Set("HouseholdCount", households).
		Set("Distance", round2(distance)).
		Set("TotalMinutes", minutes).
		Set("TotalDuration", analyze.PrettyDuration(time.Duration(minutes)*time.Minute)))
	tw.AddDownload("sessions.csv")
	return nil
}

// ShowDailyReport shows active minutes per user per local day.
type ShowDailyReport struct {
	Filter analyze.Filter
}

func (ShowDailyReport) Kind() Kind { return KindDaily }
func (m ShowDailyReport) Hash() string { return filteredHash(KindDaily, m.Filter) }
func (m ShowDailyReport) filter() analyze.Filter { return m.Filter }

func (ShowDailyReport) Description() string {
	return "This shows 'active' usage (in minutes) per day for each user. Active usage is a span of consecutively uploading data. " +
		"Days are in YYYYMMDD format for easy sorting."
}

func (m ShowDailyReport) Render(ctx *Context) error {
	list := ctx.Data.Norm.ApplyFilter(m.Filter, ctx.Data.Location)
	grid := BuildDailyGrid(list, ctx.Data.ClusterGap, ctx.Data.Location)

	columns := append(append([]string{"User"}, grid.Days...), "Total")
	tw := NewTableWriter(ctx.Element, columns...)

	for _, user := range grid.Users {
		row := NewRow().Set("User", user)
		for _, day := range grid.Days {
			if a, ok := grid.Cell(user, day); ok {
				row.Set(day, a.Cell())
			}
		}
		row.Set("Total", grid.UserTotal(user).Cell())
		tw.WriteRow(row)
	}

	total := NewRow().Set("User", "TOTAL")
	for _, day := range grid.Days {
		total.Set(day, grid.DayTotal(day).Cell())
	}
	total.Set("Total", grid.GrandTotal().Cell())
	tw.WriteRow(total)
	tw.AddDownload("daily.csv")
	return nil
}

// ShowAnswerSummary shows the answer histogram for every question.
type ShowAnswerSummary struct {
	Filter analyze.Filter
}

func (ShowAnswerSummary) Kind() Kind { return KindAnswerSummary }
func (m ShowAnswerSummary) Hash() string { return filteredHash(KindAnswerSummary, m.Filter) }
func (m ShowAnswerSummary) filter() analyze.Filter { return m.Filter }

func (ShowAnswerSummary) Description() string {
	return "This shows how often each answer was given, per question."
}

func (m ShowAnswerSummary) Render(ctx *Context) error {
	list := ctx.Data.Norm.ApplyFilter(m.Filter, ctx.Data.Location)
	ctx.Element.AddHeading("Response Summary")
	renderHistogram(ctx.Element, BuildHistogram(list))
	return nil
}

// ShowFlattenByRecID shows the latest value per record and column.
type ShowFlattenByRecID struct {
	Filter analyze.Filter
}

func (ShowFlattenByRecID) Kind() Kind { return KindByRecID }
func (m ShowFlattenByRecID) Hash() string { return filteredHash(KindByRecID, m.Filter) }
func (m ShowFlattenByRecID) filter() analyze.Filter { return m.Filter }

func (ShowFlattenByRecID) Description() string {
	return "This shows the information uploaded per each RecId."
}

func (m ShowFlattenByRecID) Render(ctx *Context) error {
	cl := ctx.Data.Changelist.ApplyFilter(m.Filter, ctx.Data.Location)
	drawUsers(ctx.Map, analyze.NewNormChangeList(cl.Normalize()), ctx.Data.ClusterGap)

	flat := cl.FlattenByRecID()
	tw := NewTableWriter(ctx.Element, flat.Columns...)
	for _, vals := range flat.Rows {
		row := NewRow()
		for i, col := range flat.Columns {
			row.Set(col, vals[i])
		}
		tw.WriteRow(row)
	}
	tw.AddDownload("byrecid.csv")
	return nil
}

// ShowFunStats shows headline totals.
type ShowFunStats struct {
	Filter analyze.Filter
}

func (ShowFunStats) Kind() Kind { return KindStats }
func (m ShowFunStats) Hash() string { return filteredHash(KindStats, m.Filter) }
func (m ShowFunStats) filter() analyze.Filter { return m.Filter }

func (ShowFunStats) Description() string {
	return "This shows fun totals across all users: time spent, distance walked, people and households reached."
}

func (m ShowFunStats) Render(ctx *Context) error {
	list := ctx.Data.Norm.ApplyFilter(m.Filter, ctx.Data.Location)
	BuildFunStats(list, ctx.Data.Households, ctx.Data.ClusterGap, ctx.Data.Location).render(ctx.Element)
	return nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
