package geospatial

const (
	// EarthRadiusMiles is the mean radius used to turn a distance into radians.
	EarthRadiusMiles = 3963.0
	// MetersPerMile converts statute miles to meters.
	MetersPerMile = 1609.344
)

// AngularRadius converts a distance in miles to radians on the Earth's surface.
func AngularRadius(miles float64) float64 {
	return miles / EarthRadiusMiles
}

// ArcMeters converts an angular radius back to meters along the surface,
// using the same Earth radius as AngularRadius.
func ArcMeters(radians float64) float64 {
	return radians * EarthRadiusMiles * MetersPerMile
}
