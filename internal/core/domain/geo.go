package domain

// GeoPoint represents a geographic coordinate (WGS 84).
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Location is a GeoJSON point plus the address parts returned by the geocoder.
// Coordinates are [longitude, latitude].
type Location struct {
	Type             string    `json:"type"`
	Coordinates      []float64 `json:"coordinates"`
	FormattedAddress string    `json:"formattedAddress,omitempty"`
	Street           string    `json:"street,omitempty"`
	City             string    `json:"city,omitempty"`
	State            string    `json:"state,omitempty"`
	Zipcode          string    `json:"zipcode,omitempty"`
	Country          string    `json:"country,omitempty"`
}

// NewLocation builds a Point location from a geocoder result.
func NewLocation(r GeoResult) *Location {
	return &Location{
		Type:             "Point",
		Coordinates:      []float64{r.Longitude, r.Latitude},
		FormattedAddress: r.FormattedAddress,
		Street:           r.Street,
		City:             r.City,
		State:            r.StateCode,
		Zipcode:          r.Zipcode,
		Country:          r.CountryCode,
	}
}

// Point returns the location as a GeoPoint.
func (l *Location) Point() GeoPoint {
	if l == nil || len(l.Coordinates) < 2 {
		return GeoPoint{}
	}
	return GeoPoint{Lat: l.Coordinates[1], Lon: l.Coordinates[0]}
}

// GeoResult is one candidate returned by a geocoding provider.
type GeoResult struct {
	Latitude         float64 `json:"latitude"`
	Longitude        float64 `json:"longitude"`
	FormattedAddress string  `json:"formattedAddress"`
	Street           string  `json:"streetName"`
	City             string  `json:"city"`
	StateCode        string  `json:"stateCode"`
	Zipcode          string  `json:"zipcode"`
	CountryCode      string  `json:"countryCode"`
}

// SphereRegion is a spherical cap: every point within Radius radians of Center.
type SphereRegion struct {
	Center GeoPoint
	Radius float64
}
