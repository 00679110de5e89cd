package services_test

import (
	"context"
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"grocery/internal/geo"
	"grocery/internal/models"
	"grocery/internal/services"
	"grocery/pkg/cache"
)

var colombo = geo.Point{Latitude: 6.9271, Longitude: 79.8612}

type shopMocks struct {
	shops    *MockShopRepository
	reviews  *MockReviewRepository
	products *MockShopProductRepository
	orders   *MockOrderRepository
	cache    *cache.Memory
}

func newShopService() (*services.ShopService, *shopMocks) {
	m := &shopMocks{
		shops:    new(MockShopRepository),
		reviews:  new(MockReviewRepository),
		products: new(MockShopProductRepository),
		orders:   new(MockOrderRepository),
		cache:    cache.NewMemory(),
	}
	return services.NewShopService(m.shops, m.reviews, m.products, m.orders, m.cache, colombo, geo.DefaultRadiusKm), m
}

func TestCreateShop(t *testing.T) {
	svc, m := newShopService()
	m.shops.On("GetByOwner", "owner-1").Return(nil, notFound()).Once()
	m.shops.On("Create", mock.AnythingOfType("*models.Shop")).Return(nil)

	shop, err := svc.CreateShop(context.Background(), "owner-1", services.ShopInput{Name: " Fresh Mart ", Latitude: 6.9, Longitude: 79.8})
	require.NoError(t, err)
	assert.Equal(t, "Fresh Mart", shop.Name)
	assert.Equal(t, models.DefaultDeliveryRangeKm, shop.DeliveryRangeKm)
	assert.True(t, shop.IsActive)
	assert.False(t, shop.IsApproved)

	m.shops.On("GetByOwner", "owner-1").Return(shop, nil).Once()
	_, err = svc.CreateShop(context.Background(), "owner-1", services.ShopInput{Name: "Second"})
	assert.ErrorIs(t, err, services.ErrConflict)
}

func TestCreateShop_Validation(t *testing.T) {
	svc, _ := newShopService()
	negative := -1.0

	_, err := svc.CreateShop(context.Background(), "owner-1", services.ShopInput{Name: "  "})
	assert.ErrorIs(t, err, services.ErrValidation)

	_, err = svc.CreateShop(context.Background(), "owner-1", services.ShopInput{Name: "Shop", Latitude: 91})
	assert.ErrorIs(t, err, services.ErrValidation)

	_, err = svc.CreateShop(context.Background(), "owner-1", services.ShopInput{Name: "Shop", DeliveryRangeKm: &negative})
	assert.ErrorIs(t, err, services.ErrValidation)
}

func TestNearby_ServesCachedSnapshot(t *testing.T) {
	svc, m := newShopService()
	shops := []models.Shop{
		{ID: "near", Name: "Near Grocer", Latitude: 6.93, Longitude: 79.86, DeliveryRangeKm: 5, IsActive: true, IsApproved: true},
		{ID: "far", Name: "Kandy Stores", Latitude: 7.2906, Longitude: 80.6337, DeliveryRangeKm: 5, IsActive: true, IsApproved: true},
	}
	m.shops.On("ListVisible").Return(shops, nil).Once()
	m.reviews.On("Summaries", mock.Anything).Return(map[string]models.RatingSummary{
		"near": {ShopID: "near", Average: 4.25, ReviewCount: 4},
	}, nil).Once()

	first, err := svc.Nearby(context.Background(), services.NearbyQuery{})
	require.NoError(t, err)
	require.Len(t, first.Shops, 1)
	assert.Equal(t, "near", first.Shops[0].ID)
	assert.Equal(t, 4.3, first.Shops[0].Rating)
	assert.Equal(t, colombo, first.Origin)
	assert.Equal(t, geo.DefaultRadiusKm, first.RadiusKm)

	lat, lon := 7.29, 80.63
	second, err := svc.Nearby(context.Background(), services.NearbyQuery{Latitude: &lat, Longitude: &lon, RadiusKm: 100})
	require.NoError(t, err)
	assert.Equal(t, geo.MaxRadiusKm, second.RadiusKm)
	require.Len(t, second.Shops, 1)
	assert.Equal(t, "far", second.Shops[0].ID)

	m.shops.AssertNumberOfCalls(t, "ListVisible", 1)
}

func TestNearby_InvalidCoordinates(t *testing.T) {
	svc, _ := newShopService()
	lat, lon := 95.0, 0.0
	_, err := svc.Nearby(context.Background(), services.NearbyQuery{Latitude: &lat, Longitude: &lon})
	assert.ErrorIs(t, err, services.ErrValidation)
}

func TestNearby_RejectsNonFiniteCoordinates(t *testing.T) {
	svc, m := newShopService()
	lon := 79.86
	for _, lat := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		lat := lat
		_, err := svc.Nearby(context.Background(), services.NearbyQuery{Latitude: &lat, Longitude: &lon})
		assert.ErrorIs(t, err, services.ErrValidation)
	}
	m.shops.AssertNotCalled(t, "ListVisible")
}

func TestNearby_NegativeRadiusUsesConfiguredDefault(t *testing.T) {
	m := &shopMocks{
		shops:    new(MockShopRepository),
		reviews:  new(MockReviewRepository),
		products: new(MockShopProductRepository),
		orders:   new(MockOrderRepository),
		cache:    cache.NewMemory(),
	}
	svc := services.NewShopService(m.shops, m.reviews, m.products, m.orders, m.cache, colombo, 7)
	m.shops.On("ListVisible").Return([]models.Shop{}, nil)
	m.reviews.On("Summaries", mock.Anything).Return(map[string]models.RatingSummary{}, nil)

	res, err := svc.Nearby(context.Background(), services.NearbyQuery{RadiusKm: -4})
	require.NoError(t, err)
	assert.Equal(t, 7.0, res.RadiusKm)

	res, err = svc.Nearby(context.Background(), services.NearbyQuery{})
	require.NoError(t, err)
	assert.Equal(t, 7.0, res.RadiusKm)
}

func TestSetStatus_InvalidatesListing(t *testing.T) {
	svc, m := newShopService()
	ctx := context.Background()
	require.NoError(t, m.cache.Set(ctx, "shops:visible", "[]", 0))

	shop := &models.Shop{ID: "shop-1", IsActive: true}
	m.shops.On("GetByID", "shop-1").Return(shop, nil)
	m.shops.On("Update", shop).Return(nil)

	updated, err := svc.SetStatus(ctx, "shop-1", services.ShopApprove)
	require.NoError(t, err)
	assert.True(t, updated.IsApproved)

	_, err = m.cache.Get(ctx, "shops:visible")
	assert.ErrorIs(t, err, cache.ErrMiss)

	updated, err = svc.SetStatus(ctx, "shop-1", services.ShopReject)
	require.NoError(t, err)
	assert.False(t, updated.IsApproved)
	assert.False(t, updated.IsActive)

	_, err = svc.SetStatus(ctx, "shop-1", "close")
	assert.ErrorIs(t, err, services.ErrValidation)
}

func TestGetShop_HidesUnapproved(t *testing.T) {
	svc, m := newShopService()
	m.shops.On("GetByID", "pending").Return(&models.Shop{ID: "pending", IsActive: true}, nil)
	m.shops.On("GetByID", "open").Return(&models.Shop{ID: "open", IsActive: true, IsApproved: true}, nil)
	m.reviews.On("Summaries", []string{"open"}).Return(map[string]models.RatingSummary{
		"open": {ShopID: "open", Average: 3.66, ReviewCount: 3},
	}, nil)

	_, err := svc.GetShop("pending")
	assert.ErrorIs(t, err, services.ErrNotFound)

	detail, err := svc.GetShop("open")
	require.NoError(t, err)
	assert.Equal(t, 3.7, detail.Rating)
	assert.Equal(t, 3, detail.ReviewCount)
}

func TestDashboard(t *testing.T) {
	svc, m := newShopService()
	m.shops.On("GetByOwner", "owner-1").Return(&models.Shop{ID: "shop-1", OwnerID: "owner-1"}, nil)
	m.products.On("CountByShop", "shop-1").Return(int64(7), nil)
	m.orders.On("ListByShop", "shop-1", []models.OrderStatus(nil)).Return([]models.Order{
		{ID: "a", Status: models.StatusPending, TotalAmount: decimal.NewFromInt(100)},
		{ID: "b", Status: models.StatusCompleted, TotalAmount: decimal.RequireFromString("50.50")},
	}, nil)

	d, err := svc.Dashboard("owner-1")
	require.NoError(t, err)
	assert.Equal(t, int64(7), d.ProductCount)
	assert.Equal(t, 2, d.OrderCount)
	assert.Equal(t, 1, d.PendingOrders)
	assert.Equal(t, "150.50", d.Revenue.StringFixed(2))
	assert.Len(t, d.RecentOrders, 2)
}
