package gmaps

// Raw response shapes for the Google Maps web service JSON APIs.
// Only the fields the gateway reads are declared.

// PlacesResponse is the shared envelope of the Text Search and Nearby
// Search endpoints.
type PlacesResponse struct {
	Results      []PlaceResult `json:"results"`
	Status       string        `json:"status"`
	ErrorMessage string        `json:"error_message,omitempty"`
}

// PlaceResult is a single place record as returned by the provider.
type PlaceResult struct {
	Name             string        `json:"name"`
	PlaceID          string        `json:"place_id"`
	FormattedAddress string        `json:"formatted_address,omitempty"`
	Vicinity         string        `json:"vicinity,omitempty"`
	Geometry         *Geometry     `json:"geometry,omitempty"`
	Rating           float64       `json:"rating,omitempty"`
	UserRatingsTotal int           `json:"user_ratings_total,omitempty"`
	PriceLevel       *int          `json:"price_level,omitempty"`
	Types            []string      `json:"types,omitempty"`
	OpeningHours     *OpeningHours `json:"opening_hours,omitempty"`
	Photos           []Photo       `json:"photos,omitempty"`
	Phone            string        `json:"formatted_phone_number,omitempty"`
	Website          string        `json:"website,omitempty"`
}

// Geometry holds the coordinate block of a place record.
type Geometry struct {
	Location *LatLng `json:"location,omitempty"`
}

// LatLng is a raw provider coordinate pair.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// OpeningHours carries the open-now flag. The pointer keeps the
// distinction between "closed" and "not reported".
type OpeningHours struct {
	OpenNow *bool `json:"open_now,omitempty"`
}

// Photo is a place photo reference.
type Photo struct {
	PhotoReference string `json:"photo_reference"`
	Width          int    `json:"width"`
	Height         int    `json:"height"`
}

// DirectionsResponse is the envelope of the Directions endpoint.
type DirectionsResponse struct {
	Routes       []RouteResult `json:"routes"`
	Status       string        `json:"status"`
	ErrorMessage string        `json:"error_message,omitempty"`
}

// RouteResult is one alternative route.
type RouteResult struct {
	Summary          string   `json:"summary"`
	Legs             []Leg    `json:"legs"`
	OverviewPolyline Polyline `json:"overview_polyline"`
}

// Leg is a single leg of a route. Queries here are always
// origin-to-destination, so responses carry exactly one leg.
type Leg struct {
	Distance     TextValue    `json:"distance"`
	Duration     TextValue    `json:"duration"`
	StartAddress string       `json:"start_address"`
	EndAddress   string       `json:"end_address"`
	Steps        []StepResult `json:"steps"`
}

// StepResult is a raw navigation step. HTMLInstructions carries markup
// the normalizer strips.
type StepResult struct {
	HTMLInstructions string    `json:"html_instructions"`
	Distance         TextValue `json:"distance"`
	Duration         TextValue `json:"duration"`
	Maneuver         string    `json:"maneuver,omitempty"`
}

// TextValue is the provider's dual human/machine measurement form.
type TextValue struct {
	Text  string `json:"text"`
	Value int    `json:"value"`
}

// Polyline wraps an encoded overview polyline.
type Polyline struct {
	Points string `json:"points"`
}

// GeocodeResponse is the envelope of the Geocoding endpoint.
type GeocodeResponse struct {
	Results      []GeocodeResult `json:"results"`
	Status       string          `json:"status"`
	ErrorMessage string          `json:"error_message,omitempty"`
}

// GeocodeResult is a single geocoded address.
type GeocodeResult struct {
	FormattedAddress string    `json:"formatted_address"`
	Geometry         *Geometry `json:"geometry,omitempty"`
	PlaceID          string    `json:"place_id,omitempty"`
}
