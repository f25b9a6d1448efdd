package report

import (
	"math"
	"time"

	"github.com/blackwell-systems/deltalens/internal/analyze"
)

// SessionGap is the distance and time between a session and the one before
// it. Both are NaN for a user's first session.
type SessionGap struct {
	DistanceKM float64
	Minutes    float64
}

type gapState struct {
	started  bool
	lastLoc  analyze.GeoPoint
	lastTime time.Time
}

func (s gapState) step(c analyze.Cluster) (SessionGap, gapState) {
	gap := SessionGap{DistanceKM: math.NaN(), Minutes: math.NaN()}
	if s.started {
		gap.DistanceKM = analyze.DistanceKM(s.lastLoc, c.GeoStart)
		gap.Minutes = math.Round(c.Range.Start.Sub(s.lastTime).Seconds() / 60)
	}
	return gap, gapState{started: true, lastLoc: c.GeoEnd, lastTime: c.Range.End}
}

// SessionGaps folds over one user's time-ordered clusters.
func SessionGaps(clusters []analyze.Cluster) []SessionGap {
	out := make([]SessionGap, 0, len(clusters))
	var st gapState
	for _, c := range clusters {
		var g SessionGap
		g, st = st.step(c)
		out = append(out, g)
	}
	return out
}
