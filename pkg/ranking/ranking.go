// Package ranking filters and orders marketplace listings for a farmer.
//
// Rank is a pure function over an in-memory snapshot: it never touches the
// store, keeps no state between calls and is safe for concurrent use.
package ranking

import (
	"fmt"
	"sort"

	"farmtech/entities"
	"farmtech/pkg/geo"
)

type SortBy string

const (
	SortNearest       SortBy = "nearest"
	SortLowestPrice   SortBy = "lowest_price"
	SortHighestRating SortBy = "highest_rating"
)

func ParseSortBy(s string) (SortBy, error) {
	switch v := SortBy(s); v {
	case "":
		return SortNearest, nil
	case SortNearest, SortLowestPrice, SortHighestRating:
		return v, nil
	}
	return "", fmt.Errorf("sortBy must be one of nearest, lowest_price, highest_rating")
}

// Filters narrows a listing set. Nil fields are absent.
type Filters struct {
	Type        *entities.ResourceType
	ServiceType *entities.ServiceType
	MinPrice    *float64
	MaxPrice    *float64
	SortBy      SortBy
	QueryPoint  *geo.Point
}

// Ranked is a listing annotated with its derived price and distance.
// DistanceKm is nil when no query point was supplied.
type Ranked struct {
	entities.Resource
	EffectivePrice float64  `json:"effectivePrice"`
	DistanceKm     *float64 `json:"distanceKm"`
}

// Rank keeps available listings that pass every filter and orders them by
// f.SortBy. Ties keep their input order.
func Rank(listings []entities.Resource, f Filters) []Ranked {
	out := make([]Ranked, 0, len(listings))
	for _, r := range listings {
		if !passes(r, f) {
			continue
		}
		rk := Ranked{Resource: r, EffectivePrice: r.EffectivePrice()}
		if f.QueryPoint != nil {
			d := geo.Haversine(*f.QueryPoint, geo.Point{Lat: r.Location.Latitude, Lng: r.Location.Longitude})
			rk.DistanceKm = &d
		}
		out = append(out, rk)
	}

	switch f.SortBy {
	case SortNearest, "":
		if f.QueryPoint != nil {
			sort.SliceStable(out, func(i, j int) bool { return *out[i].DistanceKm < *out[j].DistanceKm })
		}
	case SortLowestPrice:
		sort.SliceStable(out, func(i, j int) bool { return out[i].EffectivePrice < out[j].EffectivePrice })
	case SortHighestRating:
		sort.SliceStable(out, func(i, j int) bool { return out[i].RatingAverage > out[j].RatingAverage })
	}
	return out
}

func passes(r entities.Resource, f Filters) bool {
	if !r.IsAvailable {
		return false
	}
	if f.Type != nil && r.Type != *f.Type {
		return false
	}
	if f.ServiceType != nil && r.ServiceType != *f.ServiceType {
		return false
	}
	// bounds apply to each listing's own unit; per_hour and per_acre
	// prices are never converted into each other
	price := r.EffectivePrice()
	if f.MinPrice != nil && price < *f.MinPrice {
		return false
	}
	if f.MaxPrice != nil && price > *f.MaxPrice {
		return false
	}
	return true
}
