package controllerImp

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"farmtech/entities"
	"farmtech/pkg/geo"
	"farmtech/pkg/ranking"
)

// parseFilters reads the listing query. Empty values are absent; anything
// present but malformed is an error rather than silently ignored.
func parseFilters(c echo.Context) (ranking.Filters, error) {
	var f ranking.Filters
	q := func(k string) string { return strings.TrimSpace(c.QueryParam(k)) }

	if v := q("type"); v != "" {
		t, err := entities.ParseResourceType(v)
		if err != nil {
			return f, errors.New("Invalid resource type")
		}
		f.Type = &t
	}
	if v := q("serviceType"); v != "" {
		t, err := entities.ParseServiceType(v)
		if err != nil {
			return f, errors.New("Invalid service type")
		}
		f.ServiceType = &t
	}

	var err error
	if f.MinPrice, err = optFloat(q("minPrice"), "minPrice"); err != nil {
		return f, err
	}
	if f.MaxPrice, err = optFloat(q("maxPrice"), "maxPrice"); err != nil {
		return f, err
	}
	if f.SortBy, err = ranking.ParseSortBy(q("sortBy")); err != nil {
		return f, err
	}

	lat, err := optFloat(q("lat"), "lat")
	if err != nil {
		return f, err
	}
	lng, err := optFloat(q("lng"), "lng")
	if err != nil {
		return f, err
	}
	switch {
	case lat != nil && lng != nil:
		if *lat < -90 || *lat > 90 || *lng < -180 || *lng > 180 {
			return f, errors.New("lat/lng out of range")
		}
		f.QueryPoint = &geo.Point{Lat: *lat, Lng: *lng}
	case lat != nil || lng != nil:
		return f, errors.New("lat and lng must be given together")
	}
	return f, nil
}

func optFloat(s, name string) (*float64, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, errors.New(name + " must be a number")
	}
	return &v, nil
}
