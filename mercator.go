package maplayers

import "math"

const (
	// MaxMercatorLatitude is the latitude beyond which the Web-Mercator
	// projection is clamped.
	MaxMercatorLatitude = 85.051129

	// EarthRadiusMeters is the equatorial radius of the WGS84 sphere
	// approximation used for meter/degree conversions.
	EarthRadiusMeters = 6378137.0

	deg2rad = math.Pi / 180.0
	rad2deg = 180.0 / math.Pi
)

// finiteOr returns value when it is finite, fallback otherwise.
func finiteOr(value, fallback float64) float64 {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return fallback
	}
	return value
}

func isFinite(value float64) bool {
	return !math.IsNaN(value) && !math.IsInf(value, 0)
}

func clamp(value, min, max float64) float64 {
	return math.Max(math.Min(value, max), min)
}

// mercatorXFromLng maps longitude in degrees to normalized world X in [0, 1].
func mercatorXFromLng(lng float64) float64 {
	return (180.0 + lng) / 360.0
}

// mercatorYFromLat maps latitude in degrees to normalized world Y in [0, 1].
// Latitude is clamped to ±MaxMercatorLatitude first.
func mercatorYFromLat(lat float64) float64 {
	constrained := clamp(lat, -MaxMercatorLatitude, MaxMercatorLatitude)
	radians := constrained * deg2rad
	return (180.0 - (180.0/math.Pi)*math.Log(math.Tan(math.Pi/4.0+radians/2.0))) / 360.0
}

// circumferenceAtLatitude returns the circumference in meters of the circle
// of latitude at the given latitude in degrees.
func circumferenceAtLatitude(latDeg float64) float64 {
	return 2.0 * math.Pi * EarthRadiusMeters * math.Cos(latDeg*deg2rad)
}

// mercatorZFromAltitude converts an altitude in meters to normalized world
// Z at the given latitude. Zero at the poles where the circumference
// degenerates.
func mercatorZFromAltitude(altitude, latDeg float64) float64 {
	circumference := circumferenceAtLatitude(latDeg)
	if circumference == 0.0 {
		return 0.0
	}
	return altitude / circumference
}

func lngFromMercatorX(x float64) float64 {
	return x*360.0 - 180.0
}

func latFromMercatorY(y float64) float64 {
	y2 := 180.0 - y*360.0
	return (360.0/math.Pi)*math.Atan(math.Exp((y2*math.Pi)/180.0)) - 90.0
}

// FromLngLat converts a geographic location to the normalized
// world-Mercator space. Non-finite components fall back to zero and
// latitude is clamped to the representable Mercator range, so the
// conversion never fails.
func FromLngLat(loc LngLat) Mercator {
	lng := finiteOr(loc.Lng, 0.0)
	lat := clamp(finiteOr(loc.Lat, 0.0), -MaxMercatorLatitude, MaxMercatorLatitude)
	altitude := finiteOr(loc.Elevation, 0.0)

	return Mercator{
		X: mercatorXFromLng(lng),
		Y: mercatorYFromLat(lat),
		Z: mercatorZFromAltitude(altitude, lat),
	}
}

// ToLngLat converts a normalized world-Mercator coordinate back to a
// geographic location. The inverse of FromLngLat away from the latitude
// clamp; elevation is recovered at the resulting latitude.
func ToLngLat(m Mercator) LngLat {
	lat := latFromMercatorY(m.Y)
	return LngLat{
		Lng:       lngFromMercatorX(m.X),
		Lat:       lat,
		Elevation: m.Z * circumferenceAtLatitude(lat),
	}
}
