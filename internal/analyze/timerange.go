package analyze

import (
	"fmt"
	"time"
)

// TimeRange is an inclusive [Start, End] span. The zero value is empty.
type TimeRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// NewTimeRange returns the range covering a and b in either order.
func NewTimeRange(a, b time.Time) TimeRange {
	if b.Before(a) {
		a, b = b, a
	}
	return TimeRange{Start: a, End: b}
}

// IsEmpty reports whether the range has never been set.
func (r TimeRange) IsEmpty() bool {
	return r.Start.IsZero() && r.End.IsZero()
}

// Union returns the smallest range covering both r and o. An empty range is
// the identity.
func (r TimeRange) Union(o TimeRange) TimeRange {
	if r.IsEmpty() {
		return o
	}
	if o.IsEmpty() {
		return r
	}
	out := r
	if o.Start.Before(out.Start) {
		out.Start = o.Start
	}
	if o.End.After(out.End) {
		out.End = o.End
	}
	return out
}

// ExpandToInclude returns r grown to cover t.
func (r TimeRange) ExpandToInclude(t time.Time) TimeRange {
	return r.Union(TimeRange{Start: t, End: t})
}

// Contains reports whether t falls inside the range, bounds included.
func (r TimeRange) Contains(t time.Time) bool {
	if r.IsEmpty() {
		return false
	}
	return !t.Before(r.Start) && !t.After(r.End)
}

// Duration returns End - Start.
func (r TimeRange) Duration() time.Duration {
	if r.IsEmpty() {
		return 0
	}
	return r.End.Sub(r.Start)
}

// Pretty returns the duration in a short human form, e.g. "1h 5m".
func (r TimeRange) Pretty() string {
	return PrettyDuration(r.Duration())
}

// PrettyDuration formats d as "45s", "12m 5s" or "2h 3m".
func PrettyDuration(d time.Duration) string {
	if d < 0 {
		d = -d
	}
	secs := int64(d.Round(time.Second) / time.Second)
	switch {
	case secs < 60:
		return fmt.Sprintf("%ds", secs)
	case secs < 3600:
		return fmt.Sprintf("%dm %ds", secs/60, secs%60)
	default:
		return fmt.Sprintf("%dh %dm", secs/3600, (secs%3600)/60)
	}
}

// RoundToUTCDay truncates t to midnight UTC. Session list day labels use
// this; local-day reports use LocalDay instead.
func RoundToUTCDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// LocalDay returns the calendar day containing t in loc, from local
// midnight to the last millisecond before the next local midnight.
func LocalDay(t time.Time, loc *time.Location) TimeRange {
	if loc == nil {
		loc = time.Local
	}
	l := t.In(loc)
	start := time.Date(l.Year(), l.Month(), l.Day(), 0, 0, 0, 0, loc)
	end := start.AddDate(0, 0, 1).Add(-time.Millisecond)
	return TimeRange{Start: start, End: end}
}

// SortableDay returns t's calendar date in its own zone as YYYYMMDD.
func SortableDay(t time.Time) int {
	return t.Year()*10000 + int(t.Month())*100 + t.Day()
}
