package domain

// Geo represents a WGS-84 latitude/longitude coordinate pair.
type Geo struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// CoordinateLookup resolves a location name to map coordinates. Unknown
// locations return false; callers skip or default the marker.
type CoordinateLookup interface {
	Coordinates(city string) (Geo, bool)
}
