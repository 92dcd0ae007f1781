package google

// API status values. See https://developers.google.com/maps/documentation/places/web-service/search-text
const (
	StatusOK           = "OK"
	StatusZeroResults  = "ZERO_RESULTS"
	StatusInvalid      = "INVALID_REQUEST"
	StatusOverLimit    = "OVER_QUERY_LIMIT"
	StatusDenied       = "REQUEST_DENIED"
	StatusUnknownError = "UNKNOWN_ERROR"
	StatusNotFound     = "NOT_FOUND"
)

// Business status values reported for a place.
const (
	BusinessOperational       = "OPERATIONAL"
	BusinessClosedTemporarily = "CLOSED_TEMPORARILY"
	BusinessClosedPermanently = "CLOSED_PERMANENTLY"
)

type SearchResult struct {
	PlaceID string `json:"place_id"`
	Name    string `json:"name"`
}

type TextSearchResponse struct {
	Results       []SearchResult `json:"results"`
	NextPageToken string         `json:"next_page_token"`
	Status        string         `json:"status"`
	ErrorMessage  string         `json:"error_message"`
}

type LatLng struct {
	Lat *float64 `json:"lat"`
	Lng *float64 `json:"lng"`
}

type Geometry struct {
	Location LatLng `json:"location"`
}

type AddressComponent struct {
	LongName  string   `json:"long_name"`
	ShortName string   `json:"short_name"`
	Types     []string `json:"types"`
}

func (c AddressComponent) HasType(t string) bool {

	for _, other := range c.Types {

		if other == t {
			return true
		}
	}

	return false
}

type PlaceDetails struct {
	Name                 string             `json:"name"`
	FormattedAddress     string             `json:"formatted_address"`
	Geometry             Geometry           `json:"geometry"`
	AddressComponents    []AddressComponent `json:"address_components"`
	FormattedPhoneNumber string             `json:"formatted_phone_number"`
	Website              string             `json:"website"`
	URL                  string             `json:"url"`
}

type DetailsResponse struct {
	Result       PlaceDetails `json:"result"`
	Status       string       `json:"status"`
	ErrorMessage string       `json:"error_message"`
}

type Candidate struct {
	BusinessStatus string `json:"business_status"`
}

type FindPlaceResponse struct {
	Candidates   []Candidate `json:"candidates"`
	Status       string      `json:"status"`
	ErrorMessage string      `json:"error_message"`
}
