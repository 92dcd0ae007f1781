package fetcher

import (
	"github.com/whosonfirst/go-poi-directory"
	"github.com/whosonfirst/go-poi-directory/google"
)

// ParseAddressComponents extracts the city, state and ZIP code from a place's address components.
// The state is the short name (for example "OH"). Later components win if a type repeats.
func ParseAddressComponents(components []google.AddressComponent) (city string, state string, zip_code string) {

	for _, c := range components {

		switch {
		case c.HasType("locality"):
			city = c.LongName
		case c.HasType("administrative_area_level_1"):
			state = c.ShortName
		case c.HasType("postal_code"):
			zip_code = c.LongName
		}
	}

	return city, state, zip_code
}

// NewPlace flattens place details into a directory record labelled with 'category'. The mailing
// address, contact person and email are not provided by the API and are left empty.
func NewPlace(category string, details *google.PlaceDetails) *directory.Place {

	city, state, zip_code := ParseAddressComponents(details.AddressComponents)

	return &directory.Place{
		Name:          details.Name,
		Category:      category,
		FullAddress:   details.FormattedAddress,
		Latitude:      details.Geometry.Location.Lat,
		Longitude:     details.Geometry.Location.Lng,
		City:          city,
		State:         state,
		ZipCode:       zip_code,
		PhoneNumber:   details.FormattedPhoneNumber,
		Website:       details.Website,
		GoogleMapsURL: details.URL,
	}
}
