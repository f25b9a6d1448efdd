package view

import (
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blackwell-systems/deltalens/internal/analyze"
	"github.com/blackwell-systems/deltalens/internal/report"
)

var pst = time.FixedZone("PST", -8*3600)

func testData() *report.Data {
	base := time.Date(2024, 1, 5, 17, 0, 0, 0, time.UTC)
	mk := func(ver int, user string, d time.Duration, rec string) analyze.Delta {
		return analyze.Delta{
			Version: ver, User: user, App: "canvass", Timestamp: base.Add(d),
			Value: analyze.Contents{"RecId": {rec}, "Party": {"D"}},
		}
	}
	cl := analyze.NewChangelist([]analyze.Delta{
		mk(1, "bob@x.com", 0, "r1"),
		mk(2, "bob@x.com", 5*time.Minute, "r2"),
		mk(3, "amy@x.com", time.Hour, "r3"),
	})
	return report.NewData(cl, analyze.HouseholdIndex{"r1": "h1"}, pst, 15*time.Minute)
}

func TestMemoryPort_History(t *testing.T) {
	p := NewMemoryPort("")
	var seen []string
	p.OnChange(func(h string) { seen = append(seen, h) })

	p.Set("show=daily")
	p.Set("show=daily")
	p.Set("show=sessions")
	assert.Equal(t, 2, p.Pending())
	assert.Empty(t, seen, "Set must not deliver inline")

	assert.Equal(t, 2, p.Pump())
	assert.Equal(t, []string{"show=daily", "show=sessions"}, seen)

	require.True(t, p.Back())
	assert.Equal(t, "show=daily", p.Current())
	require.True(t, p.Forward())
	assert.False(t, p.Forward())
	p.Pump()
	assert.Equal(t, []string{"show=daily", "show=sessions", "show=daily", "show=sessions"}, seen)

	// A new Set after Back drops the forward entries.
	p.Back()
	p.Set("show=stats")
	assert.False(t, p.Forward())
}

func TestController_EmptyHashDefaultsToDaily(t *testing.T) {
	port := NewMemoryPort("")
	c := NewController(port, testData(), zerolog.Nop())
	renders := 0
	c.OnRender(func(*Snapshot, error) { renders++ })

	c.Start()
	assert.Nil(t, c.Snapshot(), "empty start only sets the location")
	assert.Equal(t, report.DefaultHash, port.Current())

	port.Pump()
	require.NotNil(t, c.Snapshot())
	assert.Equal(t, "show=daily", c.Snapshot().Hash)
	assert.Equal(t, 1, renders)
	assert.NoError(t, c.Err())
}

func TestController_ClickNavigatesThroughPort(t *testing.T) {
	port := NewMemoryPort("show=daily")
	c := NewController(port, testData(), zerolog.Nop())
	c.Start()
	require.NotNil(t, c.Snapshot())

	links := c.Snapshot().Root.Links()
	require.NotEmpty(t, links)
	c.Activate(links[0])

	assert.Equal(t, "show=daily", c.Snapshot().Hash, "navigation must not render synchronously")
	assert.Equal(t, report.KindSessions, mustParse(t, port.Current()).Kind())

	port.Pump()
	assert.Equal(t, report.KindSessions, c.Snapshot().Mode.Kind())

	port.Back()
	port.Pump()
	assert.Equal(t, "show=daily", c.Snapshot().Hash)
}

func TestController_ErrorKeepsPreviousReport(t *testing.T) {
	port := NewMemoryPort("show=sessions")
	c := NewController(port, testData(), zerolog.Nop())
	c.Start()
	prev := c.Snapshot()
	require.NotNil(t, prev)

	var gotErr error
	c.OnRender(func(_ *Snapshot, err error) { gotErr = err })

	port.Set("show=unknown")
	port.Pump()
	assert.True(t, errors.Is(c.Err(), report.ErrUnknownMode))
	assert.Same(t, prev, c.Snapshot())
	assert.Equal(t, c.Err(), gotErr)

	port.Set("show=delta;ver=99")
	port.Pump()
	assert.True(t, errors.Is(c.Err(), analyze.ErrVersionNotFound))
	assert.Same(t, prev, c.Snapshot())

	port.Set("show=daily")
	port.Pump()
	assert.NoError(t, c.Err())
}

func TestMemoryPort_ListenerAddedWhileDelivering(t *testing.T) {
	p := NewMemoryPort("")
	var late []string
	p.OnChange(func(h string) {
		if h == "show=daily" {
			p.OnChange(func(h string) { late = append(late, h) })
			p.Set("show=stats")
		}
	})
	p.Set("show=daily")
	assert.Equal(t, 2, p.Pump())
	assert.Equal(t, []string{"show=stats"}, late, "a listener added mid-delivery sees only later changes")
}

func TestController_NavigatePercentUser(t *testing.T) {
	for _, user := range []string{"50%off@x.com", "a%41b@x.com"} {
		port := NewMemoryPort("show=daily")
		c := NewController(port, testData(), zerolog.Nop())
		c.Start()

		want := report.ShowSessionList{Filter: analyze.Filter{User: user}}
		c.Navigate(want)
		port.Pump()
		require.NoError(t, c.Err(), user)
		assert.Equal(t, want, c.Snapshot().Mode)
		assert.Equal(t, user, c.Snapshot().Controls.User)
	}
}

func TestBuild_DecodesHash(t *testing.T) {
	snap, err := Build(testData(), "#show=sessions;user=bob%40x.com")
	require.NoError(t, err)
	assert.Equal(t, "show=sessions;user=bob@x.com", snap.Hash)
	assert.Equal(t, snap.Mode.Description(), snap.Description)
	assert.NotEmpty(t, snap.Root.Tables())

	_, err = Build(testData(), "#show=daily;user=%zz")
	assert.ErrorIs(t, err, report.ErrMalformedHash)
}

func TestControlsFor(t *testing.T) {
	c := ControlsFor(report.ShowDelta{Version: 45}, pst)
	assert.True(t, c.ShowVersion)
	assert.False(t, c.ShowUsers)
	assert.Equal(t, "45", c.Ver)

	start := time.Date(2024, 1, 5, 17, 0, 0, 0, time.UTC)
	m := report.ShowSessionList{Filter: analyze.Filter{User: "bob@x.com", Start: start}}
	c = ControlsFor(m, pst)
	assert.True(t, c.ShowUsers)
	assert.True(t, c.ShowTimeRange)
	assert.Equal(t, "bob@x.com", c.User)
	assert.Equal(t, "2024-01-05T09:00", c.UTCStart)
	assert.Empty(t, c.UTCEnd)
}

func TestFilterForm_Hash(t *testing.T) {
	f := FilterForm{Mode: "sessions", User: "bob@x.com", UTCStart: "2024-01-05T09:00"}
	h, err := f.Hash(pst)
	require.NoError(t, err)
	assert.Equal(t, "show=sessions;user=bob@x.com;dateutcstart=2024-01-05T17:00:00.000Z", h)

	m := mustParse(t, h)
	assert.Equal(t, "bob@x.com", report.FilterOf(m).User)

	_, err = FilterForm{Mode: "daily", UTCEnd: "soon"}.Hash(pst)
	assert.ErrorIs(t, err, analyze.ErrInvalidFilter)

	h, err = FilterForm{}.Hash(pst)
	require.NoError(t, err)
	assert.Equal(t, "show=daily", h)
}

func mustParse(t *testing.T, hash string) report.Mode {
	t.Helper()
	m, err := report.Parse(hash)
	require.NoError(t, err)
	return m
}
