package report

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/blackwell-systems/deltalens/internal/analyze"
)

// Kind names a report in the location hash.
type Kind string

// Report kinds, as written after "show=".
const (
	KindDelta         Kind = "delta"
	KindDeltaRange    Kind = "deltarange"
	KindNDeltaRange   Kind = "ndeltarange"
	KindSessions      Kind = "sessions"
	KindDaily         Kind = "daily"
	KindAnswerSummary Kind = "answersummary"
	KindByRecID       Kind = "byrecid"
	KindStats         Kind = "stats"
)

// DefaultHash is shown when the location is empty.
const DefaultHash = "show=daily"

var (
	// ErrUnknownMode is returned for a show= value with no report.
	ErrUnknownMode = errors.New("unknown mode")
	// ErrMalformedHash is returned when a hash cannot be read.
	ErrMalformedHash = errors.New("malformed hash")
)

// ParseError reports a hash that could not be turned into a Mode.
type ParseError struct {
	Hash string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %q: %v", e.Hash, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Mode is a fully serializable report: it holds only what it needs to
// rebuild its output, so Parse(m.Hash()) renders the same report as m.
type Mode interface {
	Kind() Kind
	Hash() string
	Description() string
	Render(ctx *Context) error
}

// Data is the loaded, read-only dataset every report draws from.
type Data struct {
	Changelist *analyze.Changelist
	Norm       *analyze.NormChangeList
	Households analyze.Householder
	Location   *time.Location
	ClusterGap time.Duration
}

// DefaultClusterGap splits sessions when no gap is configured.
const DefaultClusterGap = 15 * time.Minute

// NewData normalizes cl once for all reports. A nil loc means time.Local.
func NewData(cl *analyze.Changelist, households analyze.Householder, loc *time.Location, gap time.Duration) *Data {
	if cl == nil {
		cl = analyze.NewChangelist(nil)
	}
	if households == nil {
		households = analyze.HouseholdIndex{}
	}
	if loc == nil {
		loc = time.Local
	}
	if gap <= 0 {
		gap = DefaultClusterGap
	}
	return &Data{
		Changelist: cl,
		Norm:       analyze.NewNormChangeList(cl.Normalize()),
		Households: households,
		Location:   loc,
		ClusterGap: gap,
	}
}

// Context is what a report renders into.
type Context struct {
	Data    *Data
	Element *Element
	Map     *MapLayer
	// Next receives the Mode produced by an activated cell.
	Next func(Mode)
}

// NewContext returns a context with an empty page and map.
func NewContext(data *Data, next func(Mode)) *Context {
	return &Context{
		Data:    data,
		Element: NewElement(),
		Map:     NewMapLayer(),
		Next:    next,
	}
}

// Activate runs cell's action through Next.
func (c *Context) Activate(cell Cell) {
	cell.Activate(c.Next)
}

// Parse reads a hash such as "show=sessions;user=bob@x.com". The leading
// "#" must already be removed.
func Parse(hash string) (Mode, error) {
	keys, err := analyze.ParseKeys(hash)
	if err != nil {
		return nil, &ParseError{Hash: hash, Err: fmt.Errorf("%w: %w", ErrMalformedHash, err)}
	}
	show, ok := keys["show"]
	if !ok || show == "" {
		return nil, &ParseError{Hash: hash, Err: fmt.Errorf("%w: missing show", ErrMalformedHash)}
	}

	kind := Kind(strings.ToLower(show))
	if kind == KindDelta {
		ver, err := strconv.Atoi(keys[analyze.KeyVer])
		if err != nil {
			return nil, &ParseError{Hash: hash, Err: fmt.Errorf("%w: delta needs an integer ver", ErrMalformedHash)}
		}
		return ShowDelta{Version: ver}, nil
	}
	if _, ok := LookupDescriptor(kind); !ok {
		return nil, &ParseError{Hash: hash, Err: fmt.Errorf("%w: %s", ErrUnknownMode, show)}
	}

	f, err := analyze.FilterFromKeys(keys)
	if err != nil {
		return nil, &ParseError{Hash: hash, Err: fmt.Errorf("%w: %w", ErrMalformedHash, err)}
	}
	return newFiltered(kind, f), nil
}

func newFiltered(kind Kind, f analyze.Filter) Mode {
	switch kind {
	case KindDeltaRange:
		return ShowDeltaRange{Filter: f}
	case KindNDeltaRange:
		return ShowNDeltaRange{Filter: f}
	case KindSessions:
		return ShowSessionList{Filter: f}
	case KindDaily:
		return ShowDailyReport{Filter: f}
	case KindAnswerSummary:
		return ShowAnswerSummary{Filter: f}
	case KindByRecID:
		return ShowFlattenByRecID{Filter: f}
	case KindStats:
		return ShowFunStats{Filter: f}
	}
	return nil
}

// FilterOf returns the filter a Mode carries. ShowDelta has none.
func FilterOf(m Mode) analyze.Filter {
	if fm, ok := m.(interface{ filter() analyze.Filter }); ok {
		return fm.filter()
	}
	return analyze.Filter{}
}

func filteredHash(kind Kind, f analyze.Filter) string {
	h := "show=" + string(kind)
	if s := f.String(); s != "" {
		h += ";" + s
	}
	return h
}

// Descriptor describes a report for menus and filter forms.
type Descriptor struct {
	Name          Kind   `json:"name"`
	Description   string `json:"description"`
	UsesVersion   bool   `json:"uses_version"`
	UsesUsers     bool   `json:"uses_users"`
	UsesTimeRange bool   `json:"uses_time_range"`
}

func descriptor(name Kind, descr string) Descriptor {
	return Descriptor{
		Name:          name,
		Description:   descr,
		UsesVersion:   name == KindDelta,
		UsesUsers:     name != KindDelta,
		UsesTimeRange: name != KindDelta,
	}
}

var descriptors = []Descriptor{
	descriptor(KindDaily, "Show a daily report for all users"),
	descriptor(KindSessions, "Show active sessions for users"),
	descriptor(KindNDeltaRange, "Show individual results"),
	descriptor(KindAnswerSummary, "Show a summary of answers per question"),
	descriptor(KindStats, "Show overall statistics"),
	descriptor(KindDelta, "Show single raw delta"),
	descriptor(KindDeltaRange, "Show range of raw deltas"),
	descriptor(KindByRecID, "Show deltas grouped by RecId"),
}

// Descriptors returns every report in menu order.
func Descriptors() []Descriptor {
	return append([]Descriptor(nil), descriptors...)
}

// LookupDescriptor finds a report by name.
func LookupDescriptor(name Kind) (Descriptor, bool) {
	for _, d := range descriptors {
		if d.Name == name {
			return d, true
		}
	}
	return Descriptor{}, false
}
