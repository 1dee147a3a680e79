package telemetry

// Span and instrumentation names.
const (
	TracerName = "github.com/samirrijal/devcamper"

	SpanBootcampList   = "bootcamps.list"
	SpanBootcampRadius = "bootcamps.within_radius"
	SpanGeocode        = "geocoder.geocode"
)
