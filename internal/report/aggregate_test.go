package report

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blackwell-systems/deltalens/internal/analyze"
)

// fixtureClusters returns bob's three sessions in time order.
func fixtureClusters() []analyze.Cluster {
	data := fixtureData()
	for _, ul := range data.Norm.ByUser() {
		if ul.User == "bob@x.com" {
			return ul.List.Clusters(data.ClusterGap)
		}
	}
	return nil
}

func TestDailyAggregate_MergeLaws(t *testing.T) {
	clusters := fixtureClusters()
	require.Len(t, clusters, 3)

	x := NewDailyAggregate("bob@x.com", clusters[0].Range.Start, pst).Build(clusters[0])
	y := NewDailyAggregate("amy@x.com", clusters[1].Range.Start, pst).Build(clusters[1])
	z := NewDailyAggregate("bob@x.com", clusters[2].Range.Start, pst).Build(clusters[2])

	left := x.Merge(y).Merge(z)
	right := x.Merge(y.Merge(z))
	rotated := z.Merge(x.Merge(y))

	for _, got := range []DailyAggregate{right, rotated} {
		assert.Equal(t, left.Duration, got.Duration)
		assert.Equal(t, left.Users(), got.Users())
		assert.True(t, left.Range.Start.Equal(got.Range.Start))
		assert.True(t, left.Range.End.Equal(got.Range.End))
	}
	assert.Equal(t, x.Merge(y).Duration, y.Merge(x).Duration)
	assert.Equal(t, []string{"amy@x.com", "bob@x.com"}, left.Users())

	var identity DailyAggregate
	assert.Equal(t, x, x.Merge(identity))
	assert.Equal(t, x, identity.Merge(x))
}

func TestDailyAggregate_Minutes(t *testing.T) {
	a := DailyAggregate{Duration: 89 * time.Second}
	assert.Equal(t, 1, a.Minutes())
	a.Duration = 90 * time.Second
	assert.Equal(t, 2, a.Minutes())
	assert.Equal(t, "2", a.String())

	// Rounding happens only when read, never on the accumulated seconds.
	sum := MergeAll(
		DailyAggregate{Duration: 20 * time.Second},
		DailyAggregate{Duration: 20 * time.Second},
		DailyAggregate{Duration: 20 * time.Second},
	)
	assert.Equal(t, 1, sum.Minutes())
}

func TestDailyAggregate_ModeNarrowsToSingleUser(t *testing.T) {
	day := analyze.LocalDay(base, pst)
	one := NewDailyAggregate("bob@x.com", base, pst)
	m, ok := one.Mode().(ShowSessionList)
	require.True(t, ok)
	assert.Equal(t, "bob@x.com", m.Filter.User)
	assert.True(t, m.Filter.Start.Equal(day.Start))

	both := one.Merge(NewDailyAggregate("amy@x.com", base, pst))
	m, ok = both.Mode().(ShowSessionList)
	require.True(t, ok)
	assert.Empty(t, m.Filter.User)
}

func TestDailyGrid_GrandTotalIsSumOfCells(t *testing.T) {
	data := fixtureData()
	grid := BuildDailyGrid(data.Norm, data.ClusterGap, pst)

	assert.Equal(t, []string{"20240105", "20240106"}, grid.Days)

	var sum time.Duration
	for _, u := range grid.Users {
		for _, d := range grid.Days {
			if a, ok := grid.Cell(u, d); ok {
				sum += a.Duration
			}
		}
	}
	assert.Equal(t, sum, grid.GrandTotal().Duration)
	assert.Equal(t, 27*time.Minute, sum)

	var byDay time.Duration
	for _, d := range grid.Days {
		byDay += grid.DayTotal(d).Duration
	}
	assert.Equal(t, sum, byDay)
}

func TestHistogram_CountsSumToTotal(t *testing.T) {
	h := BuildHistogram(fixtureData().Norm)

	party := h.Get("Party")
	require.NotNil(t, party)
	sum := 0
	for _, a := range party.Answers() {
		sum += a.Count
	}
	assert.Equal(t, party.Total(), sum)
	assert.Equal(t, 6, party.Total())

	answers := party.Answers()
	assert.Equal(t, Answer{Value: "D", Count: 4}, answers[0])
	// R and I tie at one; first seen comes first.
	assert.Equal(t, "R", answers[1].Value)
	assert.Equal(t, "I", answers[2].Value)

	assert.Equal(t, "66.7", party.Percent(4).StringFixed(1))
	assert.Nil(t, h.Get("Support"), "empty answers are not counted")
}

func TestSessionGaps(t *testing.T) {
	clusters := fixtureClusters()
	gaps := SessionGaps(clusters)
	require.Len(t, gaps, 3)

	assert.True(t, math.IsNaN(gaps[0].DistanceKM))
	assert.True(t, math.IsNaN(gaps[0].Minutes))

	assert.False(t, math.IsNaN(gaps[1].DistanceKM))
	assert.Equal(t, 55.0, gaps[1].Minutes)
	assert.InDelta(t, analyze.DistanceKM(clusters[0].GeoEnd, clusters[1].GeoStart), gaps[1].DistanceKM, 1e-9)

	assert.Equal(t, float64(23*60), gaps[2].Minutes)
}

func TestSessionGaps_MissingLocationIsNaN(t *testing.T) {
	c1 := analyze.Cluster{Range: analyze.NewTimeRange(base, base.Add(time.Minute))}
	c2 := analyze.Cluster{Range: analyze.NewTimeRange(base.Add(time.Hour), base.Add(time.Hour)), GeoStart: analyze.GeoPoint{Lat: 1, Long: 1}}
	gaps := SessionGaps([]analyze.Cluster{c1, c2})
	assert.True(t, math.IsNaN(gaps[1].DistanceKM))
	assert.Equal(t, 59.0, gaps[1].Minutes)
}

func TestFunStats(t *testing.T) {
	data := fixtureData()
	s := BuildFunStats(data.Norm, data.Households, data.ClusterGap, pst)
	assert.Equal(t, 2, s.Users)
	assert.Equal(t, 4, s.Sessions)
	assert.Equal(t, 27*time.Minute, s.Active)
	assert.Equal(t, 7, s.Contacts)
	assert.Equal(t, 3, s.Households)
	assert.Equal(t, 2, s.Days)
	assert.Equal(t, 6, s.Tidbits)
	assert.Greater(t, s.DistanceKM, 0.0)
}
