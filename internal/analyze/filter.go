package analyze

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Filter keys in the order String emits them.
const (
	KeyUser         = "user"
	KeyVer          = "ver"
	KeyVerEnd       = "verend"
	KeyDateUTCStart = "dateutcstart"
	KeyDateUTCEnd   = "dateutcend"
	KeyDay          = "day"
	KeyApp          = "app"
)

// TimestampFormat is the UTC millisecond form used in filter strings.
const TimestampFormat = "2006-01-02T15:04:05.000Z07:00"

// ErrInvalidFilter is returned when a filter key has an unusable value.
var ErrInvalidFilter = errors.New("invalid filter value")

// Filter narrows a changelist. Zero fields are unset. Version bounds are
// inclusive; Start and End are UTC instants; Day is a local YYYYMMDD.
type Filter struct {
	User     string    `json:"user,omitempty"`
	VerStart int       `json:"ver,omitempty"`
	VerEnd   int       `json:"verend,omitempty"`
	Start    time.Time `json:"dateutcstart,omitempty"`
	End      time.Time `json:"dateutcend,omitempty"`
	Day      int       `json:"day,omitempty"`
	App      string    `json:"app,omitempty"`
}

// ParseFilter reads a filter from a key string. Keys may appear in any order
// and casing; keys that are not filter keys are ignored.
func ParseFilter(s string) (Filter, error) {
	keys, err := ParseKeys(s)
	if err != nil {
		return Filter{}, err
	}
	return FilterFromKeys(keys)
}

// FilterFromKeys builds a filter from already parsed keys.
func FilterFromKeys(keys map[string]string) (Filter, error) {
	var f Filter
	var err error
	if f.User, err = stringKey(keys, KeyUser); err != nil {
		return Filter{}, err
	}
	if f.App, err = stringKey(keys, KeyApp); err != nil {
		return Filter{}, err
	}
	if f.VerStart, err = intKey(keys, KeyVer); err != nil {
		return Filter{}, err
	}
	if f.VerEnd, err = intKey(keys, KeyVerEnd); err != nil {
		return Filter{}, err
	}
	if f.Day, err = intKey(keys, KeyDay); err != nil {
		return Filter{}, err
	}
	if f.Start, err = timeKey(keys, KeyDateUTCStart); err != nil {
		return Filter{}, err
	}
	if f.End, err = timeKey(keys, KeyDateUTCEnd); err != nil {
		return Filter{}, err
	}
	return f, nil
}

func stringKey(keys map[string]string, key string) (string, error) {
	v, err := UnescapeValue(keys[key])
	if err != nil {
		return "", fmt.Errorf("%w: %s=%q", ErrInvalidFilter, key, keys[key])
	}
	return v, nil
}

func intKey(keys map[string]string, key string) (int, error) {
	v, ok := keys[key]
	if !ok || v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q", ErrInvalidFilter, key, v)
	}
	return n, nil
}

func timeKey(keys map[string]string, key string) (time.Time, error) {
	v, ok := keys[key]
	if !ok || v == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s=%q", ErrInvalidFilter, key, v)
	}
	return t.UTC(), nil
}

// String serializes the set fields as ";key=value" pairs with no leading
// separator; text values go through EscapeValue. ParseFilter(f.String())
// reproduces f.
func (f Filter) String() string {
	var parts []string
	add := func(k, v string) {
		parts = append(parts, k+"="+v)
	}
	if f.User != "" {
		add(KeyUser, EscapeValue(f.User))
	}
	if f.VerStart != 0 {
		add(KeyVer, strconv.Itoa(f.VerStart))
	}
	if f.VerEnd != 0 {
		add(KeyVerEnd, strconv.Itoa(f.VerEnd))
	}
	if !f.Start.IsZero() {
		add(KeyDateUTCStart, f.Start.UTC().Format(TimestampFormat))
	}
	if !f.End.IsZero() {
		add(KeyDateUTCEnd, f.End.UTC().Format(TimestampFormat))
	}
	if f.Day != 0 {
		add(KeyDay, strconv.Itoa(f.Day))
	}
	if f.App != "" {
		add(KeyApp, EscapeValue(f.App))
	}
	return strings.Join(parts, ";")
}

// IsZero reports whether no field is set.
func (f Filter) IsZero() bool {
	return f.String() == ""
}

// Equal reports whether f and o select the same data.
func (f Filter) Equal(o Filter) bool {
	return f.String() == o.String()
}

// WithUser returns a copy of f restricted to user.
func (f Filter) WithUser(user string) Filter {
	f.User = user
	return f
}

// WithTimeRange returns a copy of f restricted to r. Bounds are widened to
// whole milliseconds so the filter survives a String round trip.
func (f Filter) WithTimeRange(r TimeRange) Filter {
	if r.IsEmpty() {
		f.Start, f.End = time.Time{}, time.Time{}
		return f
	}
	f.Start = r.Start.UTC().Truncate(time.Millisecond)
	end := r.End.UTC()
	if t := end.Truncate(time.Millisecond); t.Before(end) {
		end = t.Add(time.Millisecond)
	}
	f.End = end
	return f
}

func (f Filter) matches(version int, user, app string, ts time.Time, loc *time.Location) bool {
	if f.User != "" && userKey(f.User) != userKey(user) {
		return false
	}
	if f.App != "" && !strings.EqualFold(f.App, app) {
		return false
	}
	if f.VerStart != 0 && version < f.VerStart {
		return false
	}
	if f.VerEnd != 0 && version > f.VerEnd {
		return false
	}
	if !f.Start.IsZero() && ts.Before(f.Start) {
		return false
	}
	if !f.End.IsZero() && ts.After(f.End) {
		return false
	}
	if f.Day != 0 {
		if loc == nil {
			loc = time.Local
		}
		if SortableDay(ts.In(loc)) != f.Day {
			return false
		}
	}
	return true
}
