package directory

import (
	"fmt"
	"strconv"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// name,category,full_address,latitude,longitude,city,state,zip_code,phone_number,website,google_maps_url,mailing_address,contact_person,email
// Grandpa's Cheese Barn,tourist_attraction,"4390 OH-250, Ashland, OH 44805, USA",40.8734,-82.2631,Ashland,OH,44805,(419) 281-3202,https://grandpascheesebarn.com/,https://maps.google.com/?cid=...,,,

// PlaceFieldnames is the column set of a places CSV file, in schema order.
var PlaceFieldnames = []string{
	"name",
	"category",
	"full_address",
	"latitude",
	"longitude",
	"city",
	"state",
	"zip_code",
	"phone_number",
	"website",
	"google_maps_url",
	"mailing_address",
	"contact_person",
	"email",
}

type Place struct {
	Name           string   `json:"name"`
	Category       string   `json:"category"`
	FullAddress    string   `json:"full_address"`
	Latitude       *float64 `json:"latitude,omitempty"`
	Longitude      *float64 `json:"longitude,omitempty"`
	City           string   `json:"city"`
	State          string   `json:"state"`
	ZipCode        string   `json:"zip_code"`
	PhoneNumber    string   `json:"phone_number"`
	Website        string   `json:"website"`
	GoogleMapsURL  string   `json:"google_maps_url"`
	MailingAddress string   `json:"mailing_address"`
	ContactPerson  string   `json:"contact_person"`
	Email          string   `json:"email"`
}

func (pl *Place) String() string {
	return fmt.Sprintf("%s (%s)", pl.Name, pl.Category)
}

// HasCoordinates reports whether both latitude and longitude are known.
func (pl *Place) HasCoordinates() bool {
	return pl.Latitude != nil && pl.Longitude != nil
}

// Point returns the place's location as an orb.Point. The second return value is false
// if the place has no coordinates.
func (pl *Place) Point() (orb.Point, bool) {

	if !pl.HasCoordinates() {
		return orb.Point{}, false
	}

	return orb.Point{*pl.Longitude, *pl.Latitude}, true
}

// AsRow returns 'pl' as a CSV row keyed by the names in `PlaceFieldnames`. Unknown coordinates
// are written as empty strings.
func (pl *Place) AsRow() map[string]string {

	str_coord := func(v *float64) string {

		if v == nil {
			return ""
		}

		return strconv.FormatFloat(*v, 'f', -1, 64)
	}

	return map[string]string{
		"name":            pl.Name,
		"category":        pl.Category,
		"full_address":    pl.FullAddress,
		"latitude":        str_coord(pl.Latitude),
		"longitude":       str_coord(pl.Longitude),
		"city":            pl.City,
		"state":           pl.State,
		"zip_code":        pl.ZipCode,
		"phone_number":    pl.PhoneNumber,
		"website":         pl.Website,
		"google_maps_url": pl.GoogleMapsURL,
		"mailing_address": pl.MailingAddress,
		"contact_person":  pl.ContactPerson,
		"email":           pl.Email,
	}
}

// NewPlaceFromRow derives a Place from a CSV row. Missing columns are treated as empty values and
// coordinates that fail to parse are left unset.
func NewPlaceFromRow(row map[string]string) *Place {

	parse_coord := func(str_v string) *float64 {

		if str_v == "" {
			return nil
		}

		v, err := strconv.ParseFloat(str_v, 64)

		if err != nil {
			return nil
		}

		return &v
	}

	return &Place{
		Name:           row["name"],
		Category:       row["category"],
		FullAddress:    row["full_address"],
		Latitude:       parse_coord(row["latitude"]),
		Longitude:      parse_coord(row["longitude"]),
		City:           row["city"],
		State:          row["state"],
		ZipCode:        row["zip_code"],
		PhoneNumber:    row["phone_number"],
		Website:        row["website"],
		GoogleMapsURL:  row["google_maps_url"],
		MailingAddress: row["mailing_address"],
		ContactPerson:  row["contact_person"],
		Email:          row["email"],
	}
}

// AsFeature returns 'pl' as a GeoJSON point feature. Places without coordinates are placed at (0, 0).
func (pl *Place) AsFeature() *geojson.Feature {

	pt, _ := pl.Point()
	f := geojson.NewFeature(pt)

	for k, v := range pl.AsRow() {

		switch k {
		case "latitude", "longitude":
			continue
		}

		if v == "" {
			continue
		}

		f.Properties[k] = v
	}

	return f
}
