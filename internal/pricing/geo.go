package pricing

import "math"

const (
	earthRadiusMeters = 6378137.0
	sqMetersPerAcre   = 4046.8564224
)

// LatLng is a WGS84 vertex of a landscape boundary polygon.
type LatLng struct {
	Lat float64 `json:"lat" yaml:"lat"`
	Lng float64 `json:"lng" yaml:"lng"`
}

// AcresFromBoundary derives acreage from a landscape area's boundary polygon
// using the spherical-excess approximation. Pricing never reads the boundary;
// callers use this to fill Size when only a drawn polygon is available.
func (a Area) AcresFromBoundary() float64 {
	n := len(a.Boundary)
	if n < 3 {
		return 0
	}
	var sum float64
	for i := 0; i < n; i++ {
		p1, p2 := a.Boundary[i], a.Boundary[(i+1)%n]
		lng1, lng2 := p1.Lng*math.Pi/180, p2.Lng*math.Pi/180
		lat1, lat2 := p1.Lat*math.Pi/180, p2.Lat*math.Pi/180
		sum += (lng2 - lng1) * (2 + math.Sin(lat1) + math.Sin(lat2))
	}
	sqMeters := math.Abs(sum * earthRadiusMeters * earthRadiusMeters / 2)
	return sqMeters / sqMetersPerAcre
}
