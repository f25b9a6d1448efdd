package view

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/blackwell-systems/deltalens/internal/analyze"
	"github.com/blackwell-systems/deltalens/internal/report"
)

// InputLayout is the local date-time form used by filter inputs.
const InputLayout = "2006-01-02T15:04"

// Controls is the filter form state for a report: which inputs are shown
// and the values read back from its hash.
type Controls struct {
	Mode          report.Kind `json:"mode"`
	ShowVersion   bool        `json:"show_version"`
	ShowUsers     bool        `json:"show_users"`
	ShowTimeRange bool        `json:"show_time_range"`
	Ver           string      `json:"ver"`
	User          string      `json:"user"`
	UTCStart      string      `json:"utc_start"`
	UTCEnd        string      `json:"utc_end"`
}

// ControlsFor derives the form state from m's own filter. Times are shown
// in loc.
func ControlsFor(m report.Mode, loc *time.Location) Controls {
	c := Controls{Mode: m.Kind()}
	if d, ok := report.LookupDescriptor(m.Kind()); ok {
		c.ShowVersion = d.UsesVersion
		c.ShowUsers = d.UsesUsers
		c.ShowTimeRange = d.UsesTimeRange
	}

	f := report.FilterOf(m)
	if d, ok := m.(report.ShowDelta); ok {
		c.Ver = strconv.Itoa(d.Version)
	} else if f.VerStart != 0 {
		c.Ver = strconv.Itoa(f.VerStart)
	}
	c.User = f.User
	c.UTCStart = localInput(f.Start, loc)
	c.UTCEnd = localInput(f.End, loc)
	return c
}

func localInput(t time.Time, loc *time.Location) string {
	if t.IsZero() {
		return ""
	}
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(InputLayout)
}

// FilterForm is what a user typed into the filter inputs.
type FilterForm struct {
	Mode     string `json:"mode"`
	Ver      string `json:"ver"`
	User     string `json:"user"`
	UTCStart string `json:"utc_start"`
	UTCEnd   string `json:"utc_end"`
}

// Hash builds the hash the form describes. Dates are read in loc, either in
// InputLayout or RFC 3339, and written as UTC.
func (f FilterForm) Hash(loc *time.Location) (string, error) {
	mode := strings.TrimSpace(f.Mode)
	if mode == "" {
		mode = string(report.KindDaily)
	}
	x := "show=" + mode
	appendX := func(name, val string) {
		if val = strings.TrimSpace(val); val != "" {
			x += ";" + name + "=" + val
		}
	}
	appendX(analyze.KeyVer, f.Ver)
	appendX(analyze.KeyUser, analyze.EscapeValue(strings.TrimSpace(f.User)))

	for _, d := range []struct{ name, val string }{
		{analyze.KeyDateUTCStart, f.UTCStart},
		{analyze.KeyDateUTCEnd, f.UTCEnd},
	} {
		v := strings.TrimSpace(d.val)
		if v == "" {
			continue
		}
		t, err := parseInput(v, loc)
		if err != nil {
			return "", fmt.Errorf("%s: %w", d.name, err)
		}
		x += ";" + d.name + "=" + t.UTC().Format(analyze.TimestampFormat)
	}
	return x, nil
}

func parseInput(v string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	if t, err := time.ParseInLocation(InputLayout, v, loc); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("%w: unreadable date %q", analyze.ErrInvalidFilter, v)
}
