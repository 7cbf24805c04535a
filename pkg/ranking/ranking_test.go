package ranking

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"farmtech/entities"
	"farmtech/pkg/geo"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func listing(id string, unit entities.PricingUnit, price float64, lat, lng, rating float64) entities.Resource {
	r := entities.Resource{
		ID:            id,
		ProviderID:    "p1",
		Type:          entities.ResourceTractor,
		ServiceType:   entities.ServicePloughing,
		Location:      entities.Location{Village: "v-" + id, Latitude: lat, Longitude: lng},
		Phone:         "9999999999",
		IsAvailable:   true,
		RatingAverage: rating,
	}
	r.SetPrice(unit, price)
	return r
}

func ids(rs []Ranked) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.ID
	}
	return out
}

func ptr[T any](v T) *T { return &v }

var pune = geo.Point{Lat: 18.5204, Lng: 73.8567}

func fixture() []entities.Resource {
	far := listing("far", entities.PerHour, 300, 19.0760, 72.8777, 4.0)   // Mumbai
	near := listing("near", entities.PerAcre, 800, 18.5300, 73.8500, 3.5) // next door
	mid := listing("mid", entities.PerHour, 500, 18.7300, 73.6700, 4.8)   // ~30 km
	busy := listing("busy", entities.PerHour, 100, 18.5204, 73.8567, 5.0) // same spot, unavailable
	busy.IsAvailable = false
	labour := listing("labour", entities.PerAcre, 450, 18.4000, 73.9000, 4.2)
	labour.Type = entities.ResourceLabour
	labour.ServiceType = entities.ServiceSowing
	return []entities.Resource{far, near, mid, busy, labour}
}

func TestRank_NearestWithQueryPoint(t *testing.T) {
	got := Rank(fixture(), Filters{SortBy: SortNearest, QueryPoint: &pune})

	if diff := cmp.Diff([]string{"near", "labour", "mid", "far"}, ids(got)); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
	for i := 1; i < len(got); i++ {
		require.NotNil(t, got[i].DistanceKm)
		assert.LessOrEqual(t, *got[i-1].DistanceKm, *got[i].DistanceKm)
	}
}

func TestRank_NearestWithoutQueryPointKeepsInputOrder(t *testing.T) {
	got := Rank(fixture(), Filters{SortBy: SortNearest})

	assert.Equal(t, []string{"far", "near", "mid", "labour"}, ids(got))
	for _, r := range got {
		assert.Nil(t, r.DistanceKm, "distance must be absent, not zero")
	}
}

func TestRank_LowestPriceIsNonDecreasing(t *testing.T) {
	got := Rank(fixture(), Filters{SortBy: SortLowestPrice})

	assert.Equal(t, []string{"far", "labour", "mid", "near"}, ids(got))
	for i := 1; i < len(got); i++ {
		assert.LessOrEqual(t, got[i-1].EffectivePrice, got[i].EffectivePrice)
	}
}

func TestRank_HighestRating(t *testing.T) {
	got := Rank(fixture(), Filters{SortBy: SortHighestRating})
	assert.Equal(t, []string{"mid", "labour", "far", "near"}, ids(got))
}

func TestRank_TiesKeepInputOrder(t *testing.T) {
	in := []entities.Resource{
		listing("a", entities.PerHour, 200, 0, 0, 4),
		listing("b", entities.PerAcre, 200, 0, 0, 4),
		listing("c", entities.PerHour, 200, 0, 0, 4),
	}
	assert.Equal(t, []string{"a", "b", "c"}, ids(Rank(in, Filters{SortBy: SortLowestPrice})))
	assert.Equal(t, []string{"a", "b", "c"}, ids(Rank(in, Filters{SortBy: SortHighestRating})))
}

func TestRank_AvailabilityIsAbsolute(t *testing.T) {
	filters := []Filters{
		{SortBy: SortNearest, QueryPoint: &pune},
		{SortBy: SortLowestPrice, MaxPrice: ptr(100.0)},
		{SortBy: SortHighestRating, Type: ptr(entities.ResourceTractor)},
	}
	for _, f := range filters {
		for _, r := range Rank(fixture(), f) {
			assert.True(t, r.IsAvailable)
			assert.NotEqual(t, "busy", r.ID)
		}
	}
}

func TestRank_EqualityFilters(t *testing.T) {
	got := Rank(fixture(), Filters{Type: ptr(entities.ResourceLabour)})
	assert.Equal(t, []string{"labour"}, ids(got))

	got = Rank(fixture(), Filters{ServiceType: ptr(entities.ServicePloughing)})
	assert.Equal(t, []string{"far", "near", "mid"}, ids(got))

	got = Rank(fixture(), Filters{Type: ptr(entities.ResourceLabour), ServiceType: ptr(entities.ServicePloughing)})
	assert.Empty(t, got)
}

func TestRank_PriceRangeIsUnitLocal(t *testing.T) {
	in := []entities.Resource{
		listing("acre500", entities.PerAcre, 500, 0, 0, 4),
		listing("hour500", entities.PerHour, 500, 0, 0, 4),
		listing("hour900", entities.PerHour, 900, 0, 0, 4),
	}

	got := Rank(in, Filters{MaxPrice: ptr(500.0)})
	assert.Equal(t, []string{"acre500", "hour500"}, ids(got))

	got = Rank(in, Filters{MinPrice: ptr(500.0), MaxPrice: ptr(500.0)})
	assert.Equal(t, []string{"acre500", "hour500"}, ids(got))

	got = Rank(in, Filters{MinPrice: ptr(600.0)})
	assert.Equal(t, []string{"hour900"}, ids(got))
}

func TestRank_AnnotatesEffectivePrice(t *testing.T) {
	got := Rank(fixture(), Filters{})
	prices := map[string]float64{}
	for _, r := range got {
		prices[r.ID] = r.EffectivePrice
	}
	assert.Equal(t, map[string]float64{"far": 300, "near": 800, "mid": 500, "labour": 450}, prices)
}

func TestRank_DoesNotMutateInput(t *testing.T) {
	in := fixture()
	before := ids(Rank(in, Filters{}))
	_ = Rank(in, Filters{SortBy: SortLowestPrice, QueryPoint: &pune})
	assert.Equal(t, before, ids(Rank(in, Filters{})))
}

func TestParseSortBy(t *testing.T) {
	s, err := ParseSortBy("")
	require.NoError(t, err)
	assert.Equal(t, SortNearest, s)

	s, err = ParseSortBy("highest_rating")
	require.NoError(t, err)
	assert.Equal(t, SortHighestRating, s)

	_, err = ParseSortBy("cheapest")
	assert.Error(t, err)
}
