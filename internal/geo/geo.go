// Package geo implements the nearby-shop search: great-circle distances and
// the radius / delivery-range filter applied to shop listings.
package geo

import (
	"math"
	"sort"
	"strings"

	"grocery/internal/models"
)

const earthRadiusKm = 6371.0

const (
	DefaultRadiusKm = 10.0
	MinRadiusKm     = 1.0
	MaxRadiusKm     = 50.0
)

// Sort orders accepted by Nearby.
const (
	SortDistance = "distance"
	SortRating   = "rating"
	SortName     = "name"
)

// Point is a WGS84 coordinate in degrees.
type Point struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Valid reports whether p is a finite coordinate inside the WGS84 bounds.
// NaN fails every comparison, so it is checked first.
func (p Point) Valid() bool {
	for _, v := range []float64{p.Latitude, p.Longitude} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return p.Latitude >= -90 && p.Latitude <= 90 && p.Longitude >= -180 && p.Longitude <= 180
}

// Distance returns the haversine distance between two coordinates in
// kilometres, rounded to two decimals.
func Distance(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRadians(lat2 - lat1)
	dLon := toRadians(lon2 - lon1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(lat1))*math.Cos(toRadians(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return math.Round(earthRadiusKm*c*100) / 100
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

// ClampRadius returns r bounded to [MinRadiusKm, MaxRadiusKm]; zero or a
// negative value selects DefaultRadiusKm.
func ClampRadius(r float64) float64 {
	if r <= 0 || math.IsNaN(r) {
		return DefaultRadiusKm
	}
	return math.Max(MinRadiusKm, math.Min(MaxRadiusKm, r))
}

// Candidate is a shop considered by Nearby together with its rating.
type Candidate struct {
	Shop   models.Shop
	Rating models.RatingSummary
}

// ShopDistance is a search hit.
type ShopDistance struct {
	models.Shop
	DistanceKm  float64 `json:"distance_km"`
	Rating      float64 `json:"rating"`
	ReviewCount int     `json:"review_count"`
}

// Query holds the search parameters. Radius is clamped by Nearby.
type Query struct {
	RadiusKm float64
	Search   string
	SortBy   string
}

// Nearby filters candidates to the shops that are within the search radius
// and whose own delivery range reaches the origin, then sorts them.
func Nearby(origin Point, candidates []Candidate, q Query) []ShopDistance {
	radius := ClampRadius(q.RadiusKm)
	needle := strings.ToLower(strings.TrimSpace(q.Search))

	results := make([]ShopDistance, 0, len(candidates))
	for _, cand := range candidates {
		shop := cand.Shop
		d := Distance(origin.Latitude, origin.Longitude, shop.Latitude, shop.Longitude)
		deliveryRange := shop.DeliveryRangeKm
		if deliveryRange <= 0 {
			deliveryRange = models.DefaultDeliveryRangeKm
		}
		if math.IsNaN(d) || d > radius || d > deliveryRange {
			continue
		}
		if needle != "" &&
			!strings.Contains(strings.ToLower(shop.Name), needle) &&
			!strings.Contains(strings.ToLower(shop.Description), needle) {
			continue
		}
		results = append(results, ShopDistance{
			Shop:        shop,
			DistanceKm:  d,
			Rating:      cand.Rating.Average,
			ReviewCount: cand.Rating.ReviewCount,
		})
	}

	switch q.SortBy {
	case SortRating:
		sort.SliceStable(results, func(i, j int) bool { return results[i].Rating > results[j].Rating })
	case SortName:
		sort.SliceStable(results, func(i, j int) bool {
			return strings.ToLower(results[i].Name) < strings.ToLower(results[j].Name)
		})
	default:
		sort.SliceStable(results, func(i, j int) bool { return results[i].DistanceKm < results[j].DistanceKm })
	}
	return results
}

// AverageRating rounds the mean of ratings to one decimal. It returns 0 for
// no ratings.
func AverageRating(ratings []int) float64 {
	if len(ratings) == 0 {
		return 0
	}
	sum := 0
	for _, r := range ratings {
		sum += r
	}
	return RoundRating(float64(sum) / float64(len(ratings)))
}

// RoundRating rounds an average rating to one decimal.
func RoundRating(avg float64) float64 {
	return math.Round(avg*10) / 10
}
