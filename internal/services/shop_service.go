package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"grocery/internal/geo"
	"grocery/internal/models"
	"grocery/internal/repositories"
	"grocery/pkg/cache"
)

const (
	listingCacheKey = "shops:visible"
	listingCacheTTL = 30 * time.Second
)

// invalidateListing drops the cached shop snapshot after shop or review writes.
func invalidateListing(ctx context.Context, store cache.Store) {
	if store == nil {
		return
	}
	if err := store.Delete(ctx, listingCacheKey); err != nil {
		log.Warn().Err(err).Msg("failed to invalidate shop listing cache")
	}
}

// ShopInput carries the editable fields of a shop.
type ShopInput struct {
	Name            string
	Description     string
	Address         string
	Latitude        float64
	Longitude       float64
	DeliveryRangeKm *float64
	IsActive        *bool
}

func (in ShopInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return fmt.Errorf("%w: shop name is required", ErrValidation)
	}
	if in.Latitude < -90 || in.Latitude > 90 {
		return fmt.Errorf("%w: latitude must be between -90 and 90", ErrValidation)
	}
	if in.Longitude < -180 || in.Longitude > 180 {
		return fmt.Errorf("%w: longitude must be between -180 and 180", ErrValidation)
	}
	if in.DeliveryRangeKm != nil && *in.DeliveryRangeKm < 0 {
		return fmt.Errorf("%w: delivery range cannot be negative", ErrValidation)
	}
	return nil
}

// ShopDetail is a shop with its rating.
type ShopDetail struct {
	models.Shop
	Rating      float64 `json:"rating"`
	ReviewCount int     `json:"review_count"`
}

// NearbyQuery holds the consumer's search. Nil coordinates select the default location.
type NearbyQuery struct {
	Latitude  *float64
	Longitude *float64
	RadiusKm  float64
	Search    string
	SortBy    string
}

// NearbyResult is the answer to a nearby search.
type NearbyResult struct {
	Origin   geo.Point          `json:"origin"`
	RadiusKm float64            `json:"radius_km"`
	Shops    []geo.ShopDistance `json:"shops"`
}

// ShopDashboard summarises a shop for its owner.
type ShopDashboard struct {
	Shop          *models.Shop    `json:"shop"`
	ProductCount  int64           `json:"product_count"`
	OrderCount    int             `json:"order_count"`
	PendingOrders int             `json:"pending_orders"`
	Revenue       decimal.Decimal `json:"revenue"`
	RecentOrders  []models.Order  `json:"recent_orders"`
}

// ProductSales is one row of the top products report.
type ProductSales struct {
	ShopProductID string          `json:"shop_product_id"`
	Name          string          `json:"name"`
	Quantity      int             `json:"quantity"`
	Revenue       decimal.Decimal `json:"revenue"`
}

// ShopReport covers the finished orders of a shop.
type ShopReport struct {
	TotalOrders  int             `json:"total_orders"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
	TodayOrders  int             `json:"today_orders"`
	TodayRevenue decimal.Decimal `json:"today_revenue"`
	TopProducts  []ProductSales  `json:"top_products"`
}

// ShopAction is an administrator decision about a shop.
type ShopAction string

const (
	ShopApprove    ShopAction = "approve"
	ShopReject     ShopAction = "reject"
	ShopActivate   ShopAction = "activate"
	ShopDeactivate ShopAction = "deactivate"
)

// ShopService handles shops, the nearby search and shop reporting.
type ShopService struct {
	shopRepo        repositories.ShopRepository
	reviewRepo      repositories.ReviewRepository
	shopProductRepo repositories.ShopProductRepository
	orderRepo       repositories.OrderRepository
	cache           cache.Store
	defaultOrigin   geo.Point
	defaultRadiusKm float64
	now             func() time.Time
}

// NewShopService creates a new ShopService.
func NewShopService(
	shopRepo repositories.ShopRepository,
	reviewRepo repositories.ReviewRepository,
	shopProductRepo repositories.ShopProductRepository,
	orderRepo repositories.OrderRepository,
	store cache.Store,
	defaultOrigin geo.Point,
	defaultRadiusKm float64,
) *ShopService {
	return &ShopService{
		shopRepo:        shopRepo,
		reviewRepo:      reviewRepo,
		shopProductRepo: shopProductRepo,
		orderRepo:       orderRepo,
		cache:           store,
		defaultOrigin:   defaultOrigin,
		defaultRadiusKm: defaultRadiusKm,
		now:             time.Now,
	}
}

// CreateShop opens the owner's shop. It starts active and awaits approval.
func (s *ShopService) CreateShop(ctx context.Context, ownerID string, in ShopInput) (*models.Shop, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	if _, err := s.shopRepo.GetByOwner(ownerID); err == nil {
		return nil, fmt.Errorf("%w: you already have a shop", ErrConflict)
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, err
	}

	shop := &models.Shop{
		OwnerID:         ownerID,
		Name:            strings.TrimSpace(in.Name),
		Description:     in.Description,
		Address:         in.Address,
		Latitude:        in.Latitude,
		Longitude:       in.Longitude,
		DeliveryRangeKm: models.DefaultDeliveryRangeKm,
		IsActive:        true,
		IsApproved:      false,
	}
	if in.DeliveryRangeKm != nil {
		shop.DeliveryRangeKm = *in.DeliveryRangeKm
	}
	if err := s.shopRepo.Create(shop); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, fmt.Errorf("%w: you already have a shop", ErrConflict)
		}
		return nil, err
	}
	invalidateListing(ctx, s.cache)
	log.Info().Str("shop_id", shop.ID).Str("owner_id", ownerID).Msg("shop created")
	return shop, nil
}

// GetOwnShop returns the shop of ownerID.
func (s *ShopService) GetOwnShop(ownerID string) (*models.Shop, error) {
	return s.shopRepo.GetByOwner(ownerID)
}

// UpdateSettings edits the owner's shop.
func (s *ShopService) UpdateSettings(ctx context.Context, ownerID string, in ShopInput) (*models.Shop, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	shop, err := s.shopRepo.GetByOwner(ownerID)
	if err != nil {
		return nil, err
	}
	shop.Name = strings.TrimSpace(in.Name)
	shop.Description = in.Description
	shop.Address = in.Address
	shop.Latitude = in.Latitude
	shop.Longitude = in.Longitude
	if in.DeliveryRangeKm != nil {
		shop.DeliveryRangeKm = *in.DeliveryRangeKm
	}
	if in.IsActive != nil {
		shop.IsActive = *in.IsActive
	}
	if err := s.shopRepo.Update(shop); err != nil {
		return nil, err
	}
	invalidateListing(ctx, s.cache)
	return shop, nil
}

// GetShop returns a shop visible to consumers, with its rating.
func (s *ShopService) GetShop(id string) (*ShopDetail, error) {
	shop, err := s.shopRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if !shop.IsActive || !shop.IsApproved {
		return nil, fmt.Errorf("shop with ID %s %w", id, ErrNotFound)
	}
	summaries, err := s.reviewRepo.Summaries(id)
	if err != nil {
		return nil, err
	}
	summary := summaries[id]
	return &ShopDetail{Shop: *shop, Rating: geo.RoundRating(summary.Average), ReviewCount: summary.ReviewCount}, nil
}

// ListReviews returns a shop's reviews, newest first.
func (s *ShopService) ListReviews(shopID string) ([]models.Review, error) {
	if _, err := s.GetShop(shopID); err != nil {
		return nil, err
	}
	return s.reviewRepo.ListByShop(shopID)
}

// Nearby runs the geographic search over the visible shops.
func (s *ShopService) Nearby(ctx context.Context, q NearbyQuery) (*NearbyResult, error) {
	origin := s.defaultOrigin
	if q.Latitude != nil && q.Longitude != nil {
		origin = geo.Point{Latitude: *q.Latitude, Longitude: *q.Longitude}
	}
	if !origin.Valid() {
		return nil, fmt.Errorf("%w: coordinates out of range", ErrValidation)
	}
	radius := q.RadiusKm
	if radius <= 0 || math.IsNaN(radius) {
		radius = s.defaultRadiusKm
	}
	radius = geo.ClampRadius(radius)

	candidates, err := s.candidates(ctx)
	if err != nil {
		return nil, err
	}
	shops := geo.Nearby(origin, candidates, geo.Query{RadiusKm: radius, Search: q.Search, SortBy: q.SortBy})
	return &NearbyResult{Origin: origin, RadiusKm: radius, Shops: shops}, nil
}

// candidates returns the visible shops with rounded ratings, served from
// the cache when a fresh snapshot exists.
func (s *ShopService) candidates(ctx context.Context) ([]geo.Candidate, error) {
	if s.cache != nil {
		if raw, err := s.cache.Get(ctx, listingCacheKey); err == nil {
			var cached []geo.Candidate
			if err := json.Unmarshal([]byte(raw), &cached); err == nil {
				return cached, nil
			}
		} else if !errors.Is(err, cache.ErrMiss) {
			log.Warn().Err(err).Msg("shop listing cache unavailable")
		}
	}

	shops, err := s.shopRepo.ListVisible()
	if err != nil {
		return nil, err
	}
	summaries, err := s.reviewRepo.Summaries()
	if err != nil {
		return nil, err
	}
	candidates := make([]geo.Candidate, 0, len(shops))
	for _, shop := range shops {
		summary := summaries[shop.ID]
		summary.ShopID = shop.ID
		summary.Average = geo.RoundRating(summary.Average)
		candidates = append(candidates, geo.Candidate{Shop: shop, Rating: summary})
	}

	if s.cache != nil {
		if raw, err := json.Marshal(candidates); err == nil {
			if err := s.cache.Set(ctx, listingCacheKey, string(raw), listingCacheTTL); err != nil {
				log.Warn().Err(err).Msg("failed to cache shop listing")
			}
		}
	}
	return candidates, nil
}

// Dashboard summarises the owner's shop over all of its orders.
func (s *ShopService) Dashboard(ownerID string) (*ShopDashboard, error) {
	shop, err := s.shopRepo.GetByOwner(ownerID)
	if err != nil {
		return nil, err
	}
	productCount, err := s.shopProductRepo.CountByShop(shop.ID)
	if err != nil {
		return nil, err
	}
	orders, err := s.orderRepo.ListByShop(shop.ID)
	if err != nil {
		return nil, err
	}

	d := &ShopDashboard{Shop: shop, ProductCount: productCount, OrderCount: len(orders), Revenue: decimal.Zero}
	for _, o := range orders {
		d.Revenue = d.Revenue.Add(o.TotalAmount)
		if o.Status == models.StatusPending {
			d.PendingOrders++
		}
	}
	if len(orders) > 5 {
		orders = orders[:5]
	}
	d.RecentOrders = orders
	return d, nil
}

// Reports aggregates the shop's completed and delivered orders.
func (s *ShopService) Reports(ownerID string) (*ShopReport, error) {
	shop, err := s.shopRepo.GetByOwner(ownerID)
	if err != nil {
		return nil, err
	}
	orders, err := s.orderRepo.ListByShop(shop.ID, models.StatusCompleted, models.StatusDelivered)
	if err != nil {
		return nil, err
	}
	return buildReport(orders, s.now()), nil
}

func buildReport(orders []models.Order, now time.Time) *ShopReport {
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	report := &ShopReport{TotalRevenue: decimal.Zero, TodayRevenue: decimal.Zero}
	sales := make(map[string]*ProductSales)

	for _, o := range orders {
		report.TotalOrders++
		report.TotalRevenue = report.TotalRevenue.Add(o.TotalAmount)
		if !o.CreatedAt.Before(startOfDay) {
			report.TodayOrders++
			report.TodayRevenue = report.TodayRevenue.Add(o.TotalAmount)
		}
		for _, item := range o.Items {
			row, ok := sales[item.ShopProductID]
			if !ok {
				row = &ProductSales{ShopProductID: item.ShopProductID, Revenue: decimal.Zero}
				if item.ShopProduct != nil && item.ShopProduct.GlobalProduct != nil {
					row.Name = item.ShopProduct.GlobalProduct.Name
				}
				sales[item.ShopProductID] = row
			}
			row.Quantity += item.Quantity
			row.Revenue = row.Revenue.Add(item.Subtotal)
		}
	}

	report.TopProducts = make([]ProductSales, 0, len(sales))
	for _, row := range sales {
		report.TopProducts = append(report.TopProducts, *row)
	}
	sort.Slice(report.TopProducts, func(i, j int) bool {
		a, b := report.TopProducts[i], report.TopProducts[j]
		if !a.Revenue.Equal(b.Revenue) {
			return a.Revenue.GreaterThan(b.Revenue)
		}
		return a.Name < b.Name
	})
	if len(report.TopProducts) > 5 {
		report.TopProducts = report.TopProducts[:5]
	}
	return report
}

// ListShops lists shops for administrators.
func (s *ShopService) ListShops(approved *bool) ([]models.Shop, error) {
	return s.shopRepo.List(approved)
}

// SetStatus applies an administrator action to a shop.
func (s *ShopService) SetStatus(ctx context.Context, shopID string, action ShopAction) (*models.Shop, error) {
	shop, err := s.shopRepo.GetByID(shopID)
	if err != nil {
		return nil, err
	}
	switch action {
	case ShopApprove:
		shop.IsApproved = true
	case ShopReject:
		shop.IsApproved = false
		shop.IsActive = false
	case ShopActivate:
		shop.IsActive = true
	case ShopDeactivate:
		shop.IsActive = false
	default:
		return nil, fmt.Errorf("%w: invalid action %q", ErrValidation, action)
	}
	if err := s.shopRepo.Update(shop); err != nil {
		return nil, err
	}
	invalidateListing(ctx, s.cache)
	log.Info().Str("shop_id", shop.ID).Str("action", string(action)).Msg("shop status changed")
	return shop, nil
}
