package analyze

import (
	"math"
	"time"
)

// Cluster is a contiguous burst of activity by one user.
type Cluster struct {
	User     string      `json:"user"`
	Range    TimeRange   `json:"range"`
	GeoStart GeoPoint    `json:"geo_start"`
	GeoEnd   GeoPoint    `json:"geo_end"`
	Items    []NormDelta `json:"-"`
}

func (c *Cluster) add(item NormDelta) {
	c.Items = append(c.Items, item)
	c.Range = c.Range.ExpandToInclude(item.Timestamp)
	if item.Loc.Valid() {
		if !c.GeoStart.Valid() {
			c.GeoStart = item.Loc
		}
		c.GeoEnd = item.Loc
	}
}

// Duration returns the time between the first and last event.
func (c Cluster) Duration() time.Duration {
	return c.Range.Duration()
}

// UniqueCount returns the number of distinct records touched.
func (c Cluster) UniqueCount() int {
	seen := make(map[string]bool)
	for _, item := range c.Items {
		if item.RecID != "" {
			seen[item.RecID] = true
		}
	}
	return len(seen)
}

// UniqueHouseholdCount returns the number of distinct households touched.
// Records with no known household are not counted.
func (c Cluster) UniqueHouseholdCount(h Householder) int {
	if h == nil {
		return 0
	}
	seen := make(map[string]bool)
	for _, item := range c.Items {
		if hh := h.HouseholdID(item.RecID); hh != "" {
			seen[hh] = true
		}
	}
	return len(seen)
}

// TotalDistKM sums the distance walked between consecutive located events.
func (c Cluster) TotalDistKM() float64 {
	var total float64
	var last GeoPoint
	for _, item := range c.Items {
		if !item.Loc.Valid() {
			continue
		}
		if last.Valid() {
			if d := DistanceKM(last, item.Loc); !math.IsNaN(d) {
				total += d
			}
		}
		last = item.Loc
	}
	return total
}

// Path returns the located points in event order.
func (c Cluster) Path() []GeoPoint {
	var path []GeoPoint
	for _, item := range c.Items {
		if item.Loc.Valid() {
			path = append(path, item.Loc)
		}
	}
	return path
}
