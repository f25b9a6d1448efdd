package analyze

import "math"

const earthRadiusKM = 6371.0

// GeoPoint is a latitude/longitude pair in degrees. The zero point means
// "no location recorded".
type GeoPoint struct {
	Lat  float64 `json:"lat"`
	Long float64 `json:"long"`
}

// Valid reports whether the point carries a recorded location.
func (p GeoPoint) Valid() bool {
	return !(p.Lat == 0 && p.Long == 0) && !math.IsNaN(p.Lat) && !math.IsNaN(p.Long)
}

// DistanceKM returns the great-circle distance between a and b using the
// haversine formula. It returns NaN when either point is missing.
func DistanceKM(a, b GeoPoint) float64 {
	if !a.Valid() || !b.Valid() {
		return math.NaN()
	}
	dLat := deg2rad(b.Lat - a.Lat)
	dLon := deg2rad(b.Long - a.Long)
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(deg2rad(a.Lat))*math.Cos(deg2rad(b.Lat))*math.Sin(dLon/2)*math.Sin(dLon/2)
	return earthRadiusKM * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

func deg2rad(d float64) float64 {
	return d * math.Pi / 180
}
