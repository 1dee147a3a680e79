package geocoder

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/samirrijal/devcamper/internal/core/domain"
)

// mapquest talks to the MapQuest Geocoding API v1.
type mapquest struct{}

func (mapquest) name() string           { return "mapquest" }
func (mapquest) defaultBaseURL() string { return "https://www.mapquestapi.com" }

func (mapquest) requestURL(base, apiKey, address string) string {
	return withQuery(base, "/geocoding/v1/address", url.Values{
		"key":      {apiKey},
		"location": {address},
	})
}

type mapquestResponse struct {
	Info struct {
		StatusCode int      `json:"statuscode"`
		Messages   []string `json:"messages"`
	} `json:"info"`
	Results []struct {
		Locations []struct {
			Street     string `json:"street"`
			AdminArea5 string `json:"adminArea5"` // city
			AdminArea3 string `json:"adminArea3"` // state
			AdminArea1 string `json:"adminArea1"` // country
			PostalCode string `json:"postalCode"`
			LatLng     struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"latLng"`
		} `json:"locations"`
	} `json:"results"`
}

func (mapquest) decode(body []byte) ([]domain.GeoResult, error) {
	var r mapquestResponse
	if err := json.Unmarshal(body, &r); err != nil {
		return nil, err
	}
	if r.Info.StatusCode != 0 {
		return nil, fmt.Errorf("status %d: %s", r.Info.StatusCode, strings.Join(r.Info.Messages, "; "))
	}

	var out []domain.GeoResult
	for _, res := range r.Results {
		for _, loc := range res.Locations {
			out = append(out, domain.GeoResult{
				Latitude:         loc.LatLng.Lat,
				Longitude:        loc.LatLng.Lng,
				FormattedAddress: joinNonEmpty(loc.Street, loc.AdminArea5, strings.TrimSpace(loc.AdminArea3+" "+loc.PostalCode), loc.AdminArea1),
				Street:           loc.Street,
				City:             loc.AdminArea5,
				StateCode:        loc.AdminArea3,
				Zipcode:          loc.PostalCode,
				CountryCode:      loc.AdminArea1,
			})
		}
	}
	return out, nil
}

// opencage talks to the OpenCage Geocoding API v1.
type opencage struct{}

func (opencage) name() string           { return "opencage" }
func (opencage) defaultBaseURL() string { return "https://api.opencagedata.com" }

func (opencage) requestURL(base, apiKey, address string) string {
	return withQuery(base, "/geocode/v1/json", url.Values{
		"q":              {address},
		"key":            {apiKey},
		"no_annotations": {"1"},
	})
}

type opencageResponse struct {
	Status struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"status"`
	Results []struct {
		Formatted string `json:"formatted"`
		Geometry  struct {
			Lat float64 `json:"lat"`
			Lng float64 `json:"lng"`
		} `json:"geometry"`
		Components struct {
			HouseNumber string `json:"house_number"`
			Road        string `json:"road"`
			City        string `json:"city"`
			Town        string `json:"town"`
			Village     string `json:"village"`
			StateCode   string `json:"state_code"`
			Postcode    string `json:"postcode"`
			CountryCode string `json:"country_code"`
		} `json:"components"`
	} `json:"results"`
}

func (opencage) decode(body []byte) ([]domain.GeoResult, error) {
	var r opencageResponse
	if err := json.Unmarshal(body, &r); err != nil {
		return nil, err
	}
	if r.Status.Code != 0 && r.Status.Code != 200 {
		return nil, fmt.Errorf("status %d: %s", r.Status.Code, r.Status.Message)
	}

	out := make([]domain.GeoResult, 0, len(r.Results))
	for _, res := range r.Results {
		c := res.Components
		city := c.City
		if city == "" {
			city = c.Town
		}
		if city == "" {
			city = c.Village
		}
		out = append(out, domain.GeoResult{
			Latitude:         res.Geometry.Lat,
			Longitude:        res.Geometry.Lng,
			FormattedAddress: res.Formatted,
			Street:           strings.TrimSpace(c.HouseNumber + " " + c.Road),
			City:             city,
			StateCode:        c.StateCode,
			Zipcode:          c.Postcode,
			CountryCode:      strings.ToUpper(c.CountryCode),
		})
	}
	return out, nil
}

func joinNonEmpty(parts ...string) string {
	var out []string
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, ", ")
}
