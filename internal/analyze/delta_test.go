package analyze

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2024, 1, 5, 17, 0, 0, 0, time.UTC)

func sampleDeltas() []Delta {
	return []Delta{
		{
			Version: 3, User: "amy@x.com", App: "survey", Timestamp: t0.Add(40 * time.Minute),
			Value: Contents{
				"RecId": {"r2"},
				"Party": {"R"},
			},
		},
		{
			Version: 1, User: "bob@x.com", App: "survey", Timestamp: t0,
			Value: Contents{
				"RecId":   {"r1", "r2"},
				"Party":   {"D", ""},
				"Comment": {"hi", "no answer"},
				"XLat":    {"47.6", "47.61"},
				"XLong":   {"-122.3", "-122.31"},
			},
		},
		{
			Version: 2, User: "bob@x.com", App: "survey", Timestamp: t0.Add(5 * time.Minute),
			Value: Contents{
				"RecId":         {"r1"},
				"Party":         {"I"},
				"XLastModified": {"2024-01-05T17:03:00Z"},
			},
		},
	}
}

func TestChangelist_SortedAndIndexed(t *testing.T) {
	cl := NewChangelist(sampleDeltas())
	require.Equal(t, 3, cl.Len())
	assert.Equal(t, 1, cl.Deltas()[0].Version)
	assert.Equal(t, 3, cl.MaxVersion())

	d, err := cl.Get(2)
	require.NoError(t, err)
	assert.Equal(t, "bob@x.com", d.User)

	_, err = cl.Get(45)
	assert.True(t, errors.Is(err, ErrVersionNotFound))
}

func TestChangelist_DuplicateVersionKeepsFirst(t *testing.T) {
	cl := NewChangelist([]Delta{{Version: 1, User: "a"}, {Version: 1, User: "b"}})
	require.Equal(t, 1, cl.Len())
	assert.Equal(t, "a", cl.Deltas()[0].User)
}

func TestChangelist_ApplyFilter(t *testing.T) {
	cl := NewChangelist(sampleDeltas())
	got := cl.ApplyFilter(Filter{User: "bob@x.com"}, time.UTC)
	assert.Equal(t, 2, got.Len())
	assert.Equal(t, 2, got.MaxVersion())
}

func TestNormalize(t *testing.T) {
	norm := NewChangelist(sampleDeltas()).Normalize()
	require.Len(t, norm, 4)

	first := norm[0]
	assert.Equal(t, "r1", first.RecID)
	assert.Equal(t, 0, first.Index)
	assert.True(t, first.Loc.Valid())
	assert.Equal(t, []ColumnValue{{"Comment", "hi"}, {"Party", "D"}}, first.Columns)

	// XLastModified overrides the delta timestamp.
	third := norm[2]
	assert.Equal(t, 2, third.Version)
	assert.True(t, third.Timestamp.Equal(t0.Add(3*time.Minute)))
	assert.False(t, third.Loc.Valid())

	var cols []string
	first.Each(func(c, _ string) { cols = append(cols, c) })
	assert.Equal(t, []string{"Comment", "Party"}, cols)
}

func TestFlattenByRecID(t *testing.T) {
	flat := NewChangelist(sampleDeltas()).FlattenByRecID()
	require.NotEmpty(t, flat.Columns)
	assert.Equal(t, ColumnRecID, flat.Columns[0])
	require.Len(t, flat.Rows, 2)

	col := func(name string) int {
		for i, c := range flat.Columns {
			if c == name {
				return i
			}
		}
		t.Fatalf("column %s missing", name)
		return -1
	}
	// r1: D then I; r2: empty then R. Latest non-empty wins.
	assert.Equal(t, "r1", flat.Rows[0][0])
	assert.Equal(t, "I", flat.Rows[0][col("Party")])
	assert.Equal(t, "R", flat.Rows[1][col("Party")])
	assert.Equal(t, "no answer", flat.Rows[1][col("Comment")])
	for _, row := range flat.Rows {
		assert.Len(t, row, len(flat.Columns))
	}
}

func TestNormChangeList_OrderUsersClusters(t *testing.T) {
	list := NewNormChangeList(NewChangelist(sampleDeltas()).Normalize())
	assert.Equal(t, []string{"amy@x.com", "bob@x.com"}, list.Users())

	items := list.Items()
	for i := 1; i < len(items); i++ {
		assert.False(t, items[i].Timestamp.Before(items[i-1].Timestamp))
	}

	byUser := list.ByUser()
	require.Len(t, byUser, 2)
	assert.Equal(t, "bob@x.com", byUser[1].User)
	assert.Equal(t, 3, byUser[1].List.Len())

	clusters := byUser[1].List.Clusters(2 * time.Minute)
	// bob: 17:00, 17:00, 17:03 -> gap of 3m splits.
	require.Len(t, clusters, 2)
	assert.Equal(t, 2, clusters[0].UniqueCount())
	assert.Equal(t, time.Duration(0), clusters[0].Duration())

	one := byUser[1].List.Clusters(15 * time.Minute)
	require.Len(t, one, 1)
	assert.Equal(t, 3*time.Minute, one[0].Duration())
	assert.Equal(t, GeoPoint{47.6, -122.3}, one[0].GeoStart)
	assert.Equal(t, GeoPoint{47.61, -122.31}, one[0].GeoEnd)
	assert.InDelta(t, DistanceKM(one[0].GeoStart, one[0].GeoEnd), one[0].TotalDistKM(), 1e-9)

	hh := HouseholdIndex{"r1": "h1", "r2": "h1"}
	assert.Equal(t, 1, one[0].UniqueHouseholdCount(hh))
	assert.Equal(t, 0, one[0].UniqueHouseholdCount(nil))
}

func TestDistanceKM(t *testing.T) {
	seattle := GeoPoint{47.6062, -122.3321}
	portland := GeoPoint{45.5152, -122.6784}
	assert.InDelta(t, 234.0, DistanceKM(seattle, portland), 1.5)
	assert.True(t, math.IsNaN(DistanceKM(seattle, GeoPoint{})))
}

func TestLocalDayVersusUTCDay(t *testing.T) {
	loc := time.FixedZone("PST", -8*3600)
	ts := time.Date(2024, 1, 6, 3, 0, 0, 0, time.UTC)

	day := LocalDay(ts, loc)
	assert.Equal(t, 20240105, SortableDay(day.Start))
	assert.True(t, day.Contains(ts))
	assert.Equal(t, 24*time.Hour-time.Millisecond, day.Duration())

	assert.Equal(t, time.Date(2024, 1, 6, 0, 0, 0, 0, time.UTC), RoundToUTCDay(ts))
}

func TestTimeRange_UnionIdentity(t *testing.T) {
	r := NewTimeRange(t0.Add(time.Hour), t0)
	assert.Equal(t, r, r.Union(TimeRange{}))
	assert.Equal(t, r, TimeRange{}.Union(r))
	assert.Equal(t, "1h 0m", r.Pretty())
	assert.Equal(t, "12m 5s", PrettyDuration(12*time.Minute+5*time.Second))
}

func TestNormChangeList_UsersFoldCase(t *testing.T) {
	items := []NormDelta{
		{Version: 1, User: "Bob@x.com", RecID: "r1", Timestamp: t0},
		{Version: 2, User: "bob@x.com", RecID: "r2", Timestamp: t0.Add(time.Minute)},
		{Version: 3, User: "amy@x.com", RecID: "r3", Timestamp: t0.Add(2 * time.Minute)},
		{Version: 4, User: "BOB@X.COM", RecID: "r4", Timestamp: t0.Add(3 * time.Minute)},
	}
	list := NewNormChangeList(items)
	for range 5 {
		assert.Equal(t, []string{"amy@x.com", "Bob@x.com"}, list.Users())
	}

	byUser := list.ByUser()
	require.Len(t, byUser, 2)
	assert.Equal(t, "Bob@x.com", byUser[1].User)
	assert.Equal(t, 3, byUser[1].List.Len())

	narrowed := list.ApplyFilter(Filter{User: "bob@x.com"}, time.UTC)
	assert.Equal(t, byUser[1].List.Len(), narrowed.Len(), "grouping and filtering agree on case")
}
