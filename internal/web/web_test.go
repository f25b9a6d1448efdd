package web

import (
	"encoding/json"
	"html/template"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blackwell-systems/deltalens/internal/analyze"
	"github.com/blackwell-systems/deltalens/internal/report"
	"github.com/blackwell-systems/deltalens/internal/sheet"
)

var pst = time.FixedZone("PST", -8*3600)

func testDeltas() []analyze.Delta {
	base := time.Date(2024, 1, 5, 17, 0, 0, 0, time.UTC)
	mk := func(ver int, user string, d time.Duration, rec, lat, long string) analyze.Delta {
		return analyze.Delta{
			Version: ver, User: user, App: "canvass", Timestamp: base.Add(d),
			Value: analyze.Contents{"RecId": {rec}, "Party": {"D"}, "XLat": {lat}, "XLong": {long}},
		}
	}
	return []analyze.Delta{
		mk(1, "bob@x.com", 0, "r1", "47.60", "-122.33"),
		mk(2, "bob@x.com", 5*time.Minute, "r2", "47.61", "-122.32"),
		mk(3, "amy@x.com", time.Hour, "r3", "47.62", "-122.30"),
	}
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	data := report.NewData(analyze.NewChangelist(testDeltas()), analyze.HouseholdIndex{"r1": "h1"}, pst, 15*time.Minute)
	s, err := NewServer(data, Options{Info: sheet.Info{ID: "s1", Name: "Precinct 12", LatestVersion: 3}}, zerolog.Nop())
	require.NoError(t, err)
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)
	return srv
}

func getView(t *testing.T, srv *httptest.Server, hash string) (int, viewResponse) {
	t.Helper()
	resp, err := http.Get(srv.URL + "/api/view?hash=" + url.QueryEscape(hash))
	require.NoError(t, err)
	defer resp.Body.Close()
	var v viewResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return resp.StatusCode, v
}

func TestView_Daily(t *testing.T) {
	srv := newTestServer(t)
	status, v := getView(t, srv, "#show=daily")
	require.Equal(t, http.StatusOK, status, v.Error)

	assert.Equal(t, "show=daily", v.Hash)
	assert.Equal(t, report.KindDaily, v.Kind)
	assert.Equal(t, report.KindDaily, v.Controls.Mode)
	assert.Contains(t, v.HTML, "<table>")
	assert.Contains(t, v.HTML, "TOTAL")
	assert.Contains(t, v.HTML, `href="#show=sessions`)
	assert.Contains(t, v.HTML, "/api/csv?hash=show%3ddaily")
	assert.Equal(t, []string{"daily.csv"}, v.Downloads)
}

func TestView_FilteredLinksSurviveEscaping(t *testing.T) {
	srv := newTestServer(t)
	_, daily := getView(t, srv, "show=daily")
	assert.NotContains(t, daily.HTML, "ZgotmplZ")
	assert.Contains(t, daily.HTML, `href="#show=sessions;user=bob@x.com;dateutcstart=`)

	_, sessions := getView(t, srv, "show=sessions")
	assert.NotContains(t, sessions.HTML, "ZgotmplZ")
	assert.Contains(t, sessions.HTML, `href="#show=ndeltarange;user=bob@x.com;dateutcstart=`)
}

func TestView_EscapedUserRoundTrips(t *testing.T) {
	srv := newTestServer(t)
	status, v := getView(t, srv, "show=sessions;user=50%25off@x.com")
	require.Equal(t, http.StatusOK, status, v.Error)
	assert.Equal(t, "show=sessions;user=50%25off@x.com", v.Hash)
	assert.Equal(t, "50%off@x.com", v.Controls.User)
}

func TestView_SessionsDrawsMap(t *testing.T) {
	srv := newTestServer(t)
	status, v := getView(t, srv, "show=sessions;user=bob@x.com")
	require.Equal(t, http.StatusOK, status, v.Error)
	assert.Contains(t, v.HTML, "<svg")
	assert.Contains(t, v.HTML, `id="glyph-0"`)
	assert.Contains(t, v.HTML, `data-glyph="0"`)
	assert.True(t, v.Controls.ShowUsers)
	assert.Equal(t, "bob@x.com", v.Controls.User)
}

func TestView_Errors(t *testing.T) {
	srv := newTestServer(t)
	tests := []struct {
		hash   string
		status int
		substr string
	}{
		{"show=unknown", http.StatusBadRequest, "unknown"},
		{"show=delta", http.StatusBadRequest, "ver"},
		{"show=delta;ver=99", http.StatusNotFound, "99"},
		{"show=daily;dateutcstart=yesterday", http.StatusBadRequest, "dateutcstart"},
	}
	for _, tc := range tests {
		t.Run(tc.hash, func(t *testing.T) {
			status, v := getView(t, srv, tc.hash)
			assert.Equal(t, tc.status, status)
			assert.Contains(t, v.Error, tc.substr)
			assert.Empty(t, v.HTML, "no partial report on error")
		})
	}
}

func TestCSV_Attachment(t *testing.T) {
	srv := newTestServer(t)
	resp, err := http.Get(srv.URL + "/api/csv?table=0&hash=" + url.QueryEscape("show=daily"))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, `attachment; filename="daily.csv"`, resp.Header.Get("Content-Disposition"))
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(body), "User,20240105,Total\n"), string(body))

	resp2, err := http.Get(srv.URL + "/api/csv?table=7&hash=show=daily")
	require.NoError(t, err)
	resp2.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp2.StatusCode)
}

func TestFilter(t *testing.T) {
	srv := newTestServer(t)
	q := url.Values{"mode": {"sessions"}, "user": {"bob@x.com"}, "utcstart": {"2024-01-05T09:00"}}
	resp, err := http.Get(srv.URL + "/api/filter?" + q.Encode())
	require.NoError(t, err)
	defer resp.Body.Close()
	var got map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, "show=sessions;user=bob@x.com;dateutcstart=2024-01-05T17:00:00.000Z", got["hash"])

	resp2, err := http.Get(srv.URL + "/api/filter?mode=bogus")
	require.NoError(t, err)
	resp2.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp2.StatusCode)
}

func TestShell(t *testing.T) {
	srv := newTestServer(t)
	resp, err := http.Get(srv.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-Id"))
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	body := string(raw)
	assert.Contains(t, body, "Precinct 12")
	assert.Contains(t, body, `<option value="answersummary">`)
	assert.Contains(t, body, "hashchange")

	resp2, err := http.Get(srv.URL + "/nope")
	require.NoError(t, err)
	resp2.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp2.StatusCode)
}

func TestProjectMap(t *testing.T) {
	assert.Nil(t, projectMap(report.NewMapLayer(), "show=daily"))

	norm := analyze.NewNormChangeList(analyze.NewChangelist(testDeltas()).Normalize())
	m := report.NewMapLayer()
	for _, c := range norm.Clusters(15 * time.Minute) {
		m.AddCluster(c, "#1f77b4", nil)
	}
	v := projectMap(m, "show=sessions")
	require.NotNil(t, v)
	require.Len(t, v.Paths, 2)
	assert.False(t, v.Paths[0].Single)
	assert.True(t, v.Paths[1].Single)
	assert.Equal(t, template.URL("#show=sessions"), v.Paths[0].Href)
	for _, pair := range strings.Fields(v.Paths[0].Points) {
		assert.Regexp(t, `^\d+\.\d,\d+\.\d$`, pair)
	}
}
