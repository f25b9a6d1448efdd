package sheet

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/blackwell-systems/deltalens/internal/analyze"
	"github.com/blackwell-systems/deltalens/internal/store"
)

// ErrNoCache is returned by Refresh when the loader has no cache to refresh.
var ErrNoCache = errors.New("delta cache disabled")

// Result is everything the viewer needs, resident in memory.
type Result struct {
	Info       Info
	Households analyze.HouseholdIndex
	Changelist *analyze.Changelist
	// Added counts deltas fetched from the source this load.
	Added    int
	LoadedAt time.Time
}

// Loader runs the startup sequence: sheet info, then the household index,
// then the delta log. Each step starts only after the previous one finished.
type Loader struct {
	Source Source
	// Cache is optional. With it, only deltas newer than the cached maximum
	// are fetched.
	Cache *store.DB
	Log   zerolog.Logger
	// Progress receives one human-readable line per step.
	Progress func(msg string)
}

// NewLoader returns a loader with a no-op logger.
func NewLoader(src Source, cache *store.DB) *Loader {
	return &Loader{Source: src, Cache: cache, Log: zerolog.Nop()}
}

func (l *Loader) progress(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	l.Log.Info().Msg(msg)
	if l.Progress != nil {
		l.Progress(msg)
	}
}

// Load fetches the full data set.
func (l *Loader) Load(ctx context.Context) (*Result, error) {
	l.progress("Loading sheet info")
	info, err := l.Source.Info(ctx)
	if err != nil {
		return nil, err
	}
	l.Log.Debug().Str("sheet", info.ID).Int("latest_version", info.LatestVersion).Msg("sheet info")

	l.progress("Loading households")
	households, err := l.Source.Households(ctx)
	if err != nil {
		return nil, err
	}

	var cached []analyze.Delta
	start := 0
	if l.Cache != nil {
		if cached, err = l.Cache.ListDeltas(info.ID); err != nil {
			return nil, fmt.Errorf("reading cached deltas: %w", err)
		}
		if start, err = l.Cache.MaxVersion(info.ID); err != nil {
			return nil, fmt.Errorf("reading cached version: %w", err)
		}
	}

	l.progress("Loading changes after version %d", start)
	fresh, err := l.Source.Deltas(ctx, start)
	if err != nil {
		return nil, err
	}

	if l.Cache != nil {
		if err := l.persist(info, households, fresh); err != nil {
			return nil, err
		}
	}

	all := append(cached, fresh...)
	cl := analyze.NewChangelist(all)
	l.progress("Loaded %d changes (%d new)", cl.Len(), len(fresh))

	return &Result{
		Info:       info,
		Households: households,
		Changelist: cl,
		Added:      len(fresh),
		LoadedAt:   time.Now(),
	}, nil
}

// Refresh appends deltas newer than the cached maximum to the cache and
// returns how many were added and the resulting maximum version.
func (l *Loader) Refresh(ctx context.Context, command string) (added, maxVersion int, err error) {
	if l.Cache == nil {
		return 0, 0, ErrNoCache
	}
	info, err := l.Source.Info(ctx)
	if err != nil {
		return 0, 0, err
	}
	start, err := l.Cache.MaxVersion(info.ID)
	if err != nil {
		return 0, 0, fmt.Errorf("reading cached version: %w", err)
	}
	households, err := l.Source.Households(ctx)
	if err != nil {
		return 0, 0, err
	}
	fresh, err := l.Source.Deltas(ctx, start)
	if err != nil {
		return 0, 0, err
	}
	if err := l.persist(info, households, fresh); err != nil {
		return 0, 0, err
	}

	maxVersion = start
	for _, d := range fresh {
		if d.Version > maxVersion {
			maxVersion = d.Version
		}
	}
	if _, err := l.Cache.RecordSync(info.ID, command, len(fresh), maxVersion); err != nil {
		return 0, 0, fmt.Errorf("recording sync: %w", err)
	}
	l.Log.Debug().Str("sheet", info.ID).Int("added", len(fresh)).Int("version", maxVersion).Msg("refreshed cache")
	return len(fresh), maxVersion, nil
}

func (l *Loader) persist(info Info, households analyze.HouseholdIndex, fresh []analyze.Delta) error {
	if err := l.Cache.UpsertSheet(store.Sheet{
		ID:            info.ID,
		Name:          info.Name,
		ParentName:    info.ParentName,
		LatestVersion: info.LatestVersion,
		CountRecords:  info.CountRecords,
	}); err != nil {
		return fmt.Errorf("caching sheet: %w", err)
	}
	if err := l.Cache.ReplaceHouseholds(info.ID, households); err != nil {
		return fmt.Errorf("caching households: %w", err)
	}
	if _, err := l.Cache.InsertDeltas(info.ID, fresh); err != nil {
		return fmt.Errorf("caching deltas: %w", err)
	}
	return nil
}
