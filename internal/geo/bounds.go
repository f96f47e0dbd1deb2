package geo

import (
	"fmt"
	"math"
)

// Kilometers per degree used for the degrees-to-kilometers conversion.
// Longitude degrees shrink with cos(latitude); latitude degrees are
// treated as constant.
const (
	kmPerDegreeLongitudeAtEquator = 111.320
	kmPerDegreeLatitude           = 110.574
)

// Bounds is an axis-aligned latitude/longitude rectangle in degrees.
type Bounds struct {
	North float64 `json:"north" yaml:"north"`
	South float64 `json:"south" yaml:"south"`
	East  float64 `json:"east" yaml:"east"`
	West  float64 `json:"west" yaml:"west"`
}

// Normalize returns b with North >= South and East >= West.
func (b Bounds) Normalize() Bounds {
	if b.North < b.South {
		b.North, b.South = b.South, b.North
	}
	if b.East < b.West {
		b.East, b.West = b.West, b.East
	}
	return b
}

// Validate reports whether b is a non-degenerate rectangle after normalization.
func (b Bounds) Validate() error {
	for _, v := range []float64{b.North, b.South, b.East, b.West} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: bounds contain a non-finite coordinate", ErrConfiguration)
		}
	}
	n := b.Normalize()
	if n.North == n.South || n.East == n.West {
		return fmt.Errorf("%w: bounds %s have zero area", ErrConfiguration, b)
	}
	return nil
}

// MidLatitude returns the latitude halfway between South and North.
func (b Bounds) MidLatitude() float64 {
	return 0.5 * (b.South + b.North)
}

// SizeKm returns the width and height of b in kilometers, measured at its
// own mid-latitude.
func (b Bounds) SizeKm() (width, height float64) {
	kmLon, kmLat := KmPerDegree(b.MidLatitude())
	return math.Abs(b.East-b.West) * kmLon, math.Abs(b.North-b.South) * kmLat
}

// Contains reports whether the point lies inside b, edges included.
func (b Bounds) Contains(lat, lng float64) bool {
	n := b.Normalize()
	return lat >= n.South && lat <= n.North && lng >= n.West && lng <= n.East
}

// String implements fmt.Stringer.
func (b Bounds) String() string {
	return fmt.Sprintf("[N %g S %g E %g W %g]", b.North, b.South, b.East, b.West)
}

// KmPerDegree returns the kilometers per degree of longitude and latitude
// at the given latitude.
func KmPerDegree(latDeg float64) (kmLon, kmLat float64) {
	latRad := latDeg * math.Pi / 180
	return kmPerDegreeLongitudeAtEquator * math.Cos(latRad), kmPerDegreeLatitude
}
