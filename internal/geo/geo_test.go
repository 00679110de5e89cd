package geo

import (
	"math"
	"testing"

	"grocery/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var colombo = Point{Latitude: 6.9271, Longitude: 79.8612}

func TestDistance(t *testing.T) {
	assert.Equal(t, 0.0, Distance(6.9271, 79.8612, 6.9271, 79.8612))

	// Colombo Fort to Kandy is roughly 94 km as the crow flies.
	d := Distance(6.9271, 79.8612, 7.2906, 80.6337)
	assert.InDelta(t, 94.0, d, 2.0)

	// One hundredth of a degree of latitude is about 1.11 km.
	assert.Equal(t, 1.11, Distance(0, 0, 0.01, 0))
	assert.Equal(t, Distance(1, 2, 3, 4), Distance(3, 4, 1, 2))
}

func TestClampRadius(t *testing.T) {
	assert.Equal(t, DefaultRadiusKm, ClampRadius(0))
	assert.Equal(t, DefaultRadiusKm, ClampRadius(-3))
	assert.Equal(t, MinRadiusKm, ClampRadius(0.2))
	assert.Equal(t, MaxRadiusKm, ClampRadius(120))
	assert.Equal(t, 7.5, ClampRadius(7.5))
}

func TestPointValid(t *testing.T) {
	assert.True(t, colombo.Valid())
	assert.True(t, Point{Latitude: -90, Longitude: 180}.Valid())
	assert.False(t, Point{Latitude: 91, Longitude: 0}.Valid())
	assert.False(t, Point{Latitude: 0, Longitude: -181}.Valid())
	assert.False(t, Point{Latitude: math.NaN(), Longitude: 79.86}.Valid())
	assert.False(t, Point{Latitude: 6.9, Longitude: math.Inf(1)}.Valid())
}

func TestNearbySkipsUndefinedDistance(t *testing.T) {
	candidates := []Candidate{{Shop: shopAt("ny", "New York Deli", 40, -70, 5)}}
	results := Nearby(Point{Latitude: math.NaN(), Longitude: 0}, candidates, Query{RadiusKm: 1})
	assert.Empty(t, results)
}

func shopAt(id, name string, lat, lon, deliveryRange float64) models.Shop {
	return models.Shop{ID: id, Name: name, Latitude: lat, Longitude: lon, DeliveryRangeKm: deliveryRange}
}

func TestNearbyFiltersByRadiusAndDeliveryRange(t *testing.T) {
	// Distances from the origin: near ~1.1 km, far-range ~7.8 km,
	// short-range ~3.3 km and default-range ~4.4 km.
	candidates := []Candidate{
		{Shop: shopAt("near", "Near Mart", 6.9371, 79.8612, 5)},
		{Shop: shopAt("far-range", "Far Range", 6.9971, 79.8612, 10)},
		{Shop: shopAt("short-range", "Short", 6.9571, 79.8612, 2)},
		{Shop: shopAt("default-range", "Default", 6.9671, 79.8612, 0)},
		{Shop: shopAt("too-far", "Too Far", 7.2906, 80.6337, 100)},
	}

	results := Nearby(colombo, candidates, Query{RadiusKm: 10})

	ids := make([]string, 0, len(results))
	for _, r := range results {
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []string{"near", "default-range", "far-range"}, ids)
}

func TestNearbyRespectsSmallRadius(t *testing.T) {
	candidates := []Candidate{
		{Shop: shopAt("a", "A", 6.9371, 79.8612, 5)},
		{Shop: shopAt("b", "B", 6.9671, 79.8612, 5)},
	}
	results := Nearby(colombo, candidates, Query{RadiusKm: 2})
	require.Len(t, results, 1)
	assert.Equal(t, "a", results[0].ID)
}

func TestNearbySearchMatchesNameOrDescription(t *testing.T) {
	fresh := shopAt("1", "Fresh Greens", 6.93, 79.86, 5)
	bakery := shopAt("2", "Corner Store", 6.93, 79.86, 5)
	bakery.Description = "Bread and BAKED goods"
	other := shopAt("3", "Hardware", 6.93, 79.86, 5)

	candidates := []Candidate{{Shop: fresh}, {Shop: bakery}, {Shop: other}}

	results := Nearby(colombo, candidates, Query{Search: "green"})
	require.Len(t, results, 1)
	assert.Equal(t, "1", results[0].ID)

	results = Nearby(colombo, candidates, Query{Search: "baked"})
	require.Len(t, results, 1)
	assert.Equal(t, "2", results[0].ID)
}

func TestNearbySorting(t *testing.T) {
	candidates := []Candidate{
		{Shop: shopAt("1", "beta", 6.94, 79.8612, 5), Rating: models.RatingSummary{Average: 3.5, ReviewCount: 2}},
		{Shop: shopAt("2", "Alpha", 6.96, 79.8612, 5), Rating: models.RatingSummary{Average: 4.8, ReviewCount: 5}},
		{Shop: shopAt("3", "gamma", 6.93, 79.8612, 5)},
	}

	byDistance := Nearby(colombo, candidates, Query{})
	assert.Equal(t, "3", byDistance[0].ID)
	assert.Equal(t, "2", byDistance[2].ID)

	byRating := Nearby(colombo, candidates, Query{SortBy: SortRating})
	assert.Equal(t, "2", byRating[0].ID)
	assert.Equal(t, 4.8, byRating[0].Rating)
	assert.Equal(t, 5, byRating[0].ReviewCount)
	assert.Equal(t, "3", byRating[2].ID)

	byName := Nearby(colombo, candidates, Query{SortBy: SortName})
	assert.Equal(t, []string{"Alpha", "beta", "gamma"}, []string{byName[0].Name, byName[1].Name, byName[2].Name})
}

func TestAverageRating(t *testing.T) {
	assert.Equal(t, 0.0, AverageRating(nil))
	assert.Equal(t, 4.0, AverageRating([]int{4}))
	assert.Equal(t, 4.3, AverageRating([]int{5, 4, 4}))
	assert.Equal(t, 3.7, AverageRating([]int{5, 5, 1}))
}
