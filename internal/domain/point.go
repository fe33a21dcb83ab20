package domain

import (
	"math"
	"strconv"
	"strings"
)

// EarthRadiusMeters is the equatorial radius used for great-circle distances.
const EarthRadiusMeters = 6378137.00

// Immutable geographic point (latitude, longitude) in degrees.
// The zero value is not a validated point; use NewPoint.
type Point struct {
	lat float64
	lon float64
}

// NewPoint validates the pair against the open intervals (-90, 90) and (-180, 180).
func NewPoint(lat, lon float64) (Point, error) {
	if math.IsNaN(lat) || math.IsNaN(lon) || math.IsInf(lat, 0) || math.IsInf(lon, 0) {
		return Point{}, locationErrorf("latitude and longitude must be numeric")
	}
	if !(-90 < lat && lat < 90) {
		return Point{}, locationErrorf("latitude out of range: %v", lat)
	}
	if !(-180 < lon && lon < 180) {
		return Point{}, locationErrorf("longitude out of range: %v", lon)
	}
	return Point{lat: lat, lon: lon}, nil
}

// ParsePoint coerces textual coordinates (form fields, CSV cells) before validation.
func ParsePoint(lat, lon string) (Point, error) {
	la, err := strconv.ParseFloat(strings.TrimSpace(lat), 64)
	if err != nil {
		return Point{}, locationErrorf("latitude and longitude must be numeric")
	}
	lo, err := strconv.ParseFloat(strings.TrimSpace(lon), 64)
	if err != nil {
		return Point{}, locationErrorf("latitude and longitude must be numeric")
	}
	return NewPoint(la, lo)
}

func (p Point) Latitude() float64  { return p.lat }
func (p Point) Longitude() float64 { return p.lon }

// DistanceTo returns the great-circle distance in meters using the spherical
// law of cosines, rounded half-up to millimeters.
func (p Point) DistanceTo(other Point) float64 {
	if p.lat == other.lat && p.lon == other.lon {
		return 0
	}

	lat1 := toRadians(p.lat)
	lon1 := toRadians(p.lon)
	lat2 := toRadians(other.lat)
	lon2 := toRadians(other.lon)

	cosAngle := math.Sin(lat1)*math.Sin(lat2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Cos(lon2-lon1)
	// Floating error can push the cosine just outside acos' domain.
	cosAngle = math.Max(-1, math.Min(1, cosAngle))

	return RoundHalfUp(EarthRadiusMeters*math.Acos(cosAngle), 3)
}

func toRadians(deg float64) float64 {
	return deg * (math.Pi / 180.0)
}
