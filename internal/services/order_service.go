package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"grocery/internal/events"
	"grocery/internal/geo"
	"grocery/internal/models"
	"grocery/internal/orderflow"
	"grocery/internal/repositories"
	"grocery/pkg/cache"
)

const (
	// MaxCartItems bounds the number of lines in one order.
	MaxCartItems = 50

	idempotencyTTL = 24 * time.Hour
)

// CartItem is one requested line of an order.
type CartItem struct {
	ShopProductID string
	Quantity      int
}

// CheckoutInput is a consumer or guest checkout.
type CheckoutInput struct {
	ShopID            string
	OrderType         models.OrderType
	DeliveryAddress   string
	DeliveryLatitude  *float64
	DeliveryLongitude *float64
	PaymentMethod     string
	GuestName         string
	GuestEmail        string
	GuestPhone        string
	Items             []CartItem
}

// POSInput is a walk-in sale recorded at the shop counter.
type POSInput struct {
	PaymentMethod string
	CustomerName  string
	CustomerPhone string
	Items         []CartItem
}

// OrderService handles checkout, point of sale and the order lifecycle.
type OrderService struct {
	orderRepo       repositories.OrderRepository
	shopRepo        repositories.ShopRepository
	shopProductRepo repositories.ShopProductRepository
	userRepo        repositories.UserRepository
	reviewRepo      repositories.ReviewRepository
	cache           cache.Store
	publisher       events.Publisher
	now             func() time.Time
}

// NewOrderService creates a new OrderService. publisher may be nil.
func NewOrderService(
	orderRepo repositories.OrderRepository,
	shopRepo repositories.ShopRepository,
	shopProductRepo repositories.ShopProductRepository,
	userRepo repositories.UserRepository,
	reviewRepo repositories.ReviewRepository,
	store cache.Store,
	publisher events.Publisher,
) *OrderService {
	return &OrderService{
		orderRepo:       orderRepo,
		shopRepo:        shopRepo,
		shopProductRepo: shopProductRepo,
		userRepo:        userRepo,
		reviewRepo:      reviewRepo,
		cache:           store,
		publisher:       publisher,
		now:             time.Now,
	}
}

// mergeItems validates the cart and folds repeated products into one line.
func mergeItems(items []CartItem) ([]CartItem, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: cart is empty", ErrValidation)
	}
	if len(items) > MaxCartItems {
		return nil, fmt.Errorf("%w: at most %d items per order", ErrValidation, MaxCartItems)
	}
	merged := make([]CartItem, 0, len(items))
	index := make(map[string]int, len(items))
	for _, item := range items {
		if item.ShopProductID == "" || item.Quantity < 1 {
			return nil, fmt.Errorf("%w: every item needs a product and a quantity of at least 1", ErrValidation)
		}
		if i, ok := index[item.ShopProductID]; ok {
			merged[i].Quantity += item.Quantity
			continue
		}
		index[item.ShopProductID] = len(merged)
		merged = append(merged, item)
	}
	return merged, nil
}

// priceItems loads the shop's products and builds order lines at the
// current shop prices.
func (s *OrderService) priceItems(shopID string, items []CartItem) ([]models.OrderItem, decimal.Decimal, error) {
	ids := make([]string, len(items))
	for i, item := range items {
		ids[i] = item.ShopProductID
	}
	products, err := s.shopProductRepo.FindForShop(shopID, ids)
	if err != nil {
		return nil, decimal.Zero, err
	}
	byID := make(map[string]models.ShopProduct, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	total := decimal.Zero
	lines := make([]models.OrderItem, 0, len(items))
	for _, item := range items {
		p, ok := byID[item.ShopProductID]
		if !ok {
			return nil, decimal.Zero, fmt.Errorf("%w: product %s is not sold by this shop", ErrValidation, item.ShopProductID)
		}
		if !p.IsAvailable {
			return nil, decimal.Zero, fmt.Errorf("%w: %s is not available", ErrValidation, productName(p))
		}
		if p.StockQuantity < item.Quantity {
			return nil, decimal.Zero, fmt.Errorf("%w: only %d of %s left", ErrInsufficientStock, p.StockQuantity, productName(p))
		}
		subtotal := p.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
		lines = append(lines, models.OrderItem{
			ShopProductID: p.ID,
			Quantity:      item.Quantity,
			UnitPrice:     p.Price,
			Subtotal:      subtotal,
		})
		total = total.Add(subtotal)
	}
	return lines, total, nil
}

func productName(p models.ShopProduct) string {
	if p.GlobalProduct != nil {
		return p.GlobalProduct.Name
	}
	return p.ID
}

// idempotencyCacheKey scopes a client key to the consumer, or to the guest's
// email, so different callers never collide.
func idempotencyCacheKey(user *models.User, guestEmail, key string) string {
	owner := "guest:" + strings.ToLower(strings.TrimSpace(guestEmail))
	if user != nil {
		owner = "user:" + user.ID
	}
	return "idempotency:" + owner + ":" + key
}

// Checkout places a delivery or pickup order for a consumer, or for a guest
// when user is nil. A non-empty idempotencyKey seen in the last 24 hours is
// rejected with ErrDuplicateRequest.
func (s *OrderService) Checkout(ctx context.Context, user *models.User, in CheckoutInput, idempotencyKey string) (*models.Order, error) {
	if user != nil && user.Role != models.RoleConsumer {
		return nil, fmt.Errorf("%w: only consumers can place orders", ErrForbidden)
	}
	if in.OrderType != models.OrderDelivery && in.OrderType != models.OrderPickup {
		return nil, fmt.Errorf("%w: order type must be delivery or pickup", ErrValidation)
	}
	if in.OrderType == models.OrderDelivery && strings.TrimSpace(in.DeliveryAddress) == "" {
		return nil, fmt.Errorf("%w: delivery address is required", ErrValidation)
	}
	if user == nil && (strings.TrimSpace(in.GuestName) == "" || strings.TrimSpace(in.GuestEmail) == "" || strings.TrimSpace(in.GuestPhone) == "") {
		return nil, fmt.Errorf("%w: guests must give a name, email and phone", ErrValidation)
	}
	items, err := mergeItems(in.Items)
	if err != nil {
		return nil, err
	}

	shop, err := s.shopRepo.GetByID(in.ShopID)
	if err != nil {
		return nil, err
	}
	if !shop.IsActive || !shop.IsApproved {
		return nil, fmt.Errorf("%w: shop is not accepting orders", ErrValidation)
	}
	if in.OrderType == models.OrderDelivery {
		if shop.DeliveryRangeKm <= 0 {
			return nil, fmt.Errorf("%w: shop does not deliver", ErrValidation)
		}
		if in.DeliveryLatitude != nil && in.DeliveryLongitude != nil {
			d := geo.Distance(shop.Latitude, shop.Longitude, *in.DeliveryLatitude, *in.DeliveryLongitude)
			if d > shop.DeliveryRangeKm {
				return nil, fmt.Errorf("%w: address is %.2f km away, shop delivers within %.2f km", ErrValidation, d, shop.DeliveryRangeKm)
			}
		}
	}

	lines, total, err := s.priceItems(shop.ID, items)
	if err != nil {
		return nil, err
	}

	idemKey := ""
	if idempotencyKey != "" && s.cache != nil {
		idemKey = idempotencyCacheKey(user, in.GuestEmail, idempotencyKey)
		ok, err := s.cache.SetNX(ctx, idemKey, "1", idempotencyTTL)
		if err != nil {
			return nil, fmt.Errorf("failed to check idempotency key: %w", err)
		}
		if !ok {
			return nil, fmt.Errorf("%w: idempotency key already used", ErrDuplicateRequest)
		}
	}

	order := &models.Order{
		ShopID:            shop.ID,
		OrderType:         in.OrderType,
		Status:            models.StatusPending,
		TotalAmount:       total,
		PaymentMethod:     in.PaymentMethod,
		DeliveryLatitude:  in.DeliveryLatitude,
		DeliveryLongitude: in.DeliveryLongitude,
		Items:             lines,
	}
	if in.OrderType == models.OrderDelivery {
		order.DeliveryAddress = strings.TrimSpace(in.DeliveryAddress)
	}
	if user != nil {
		consumerID := user.ID
		order.ConsumerID = &consumerID
	} else {
		order.GuestName = strings.TrimSpace(in.GuestName)
		order.GuestEmail = strings.TrimSpace(in.GuestEmail)
		order.GuestPhone = strings.TrimSpace(in.GuestPhone)
	}

	if err := s.orderRepo.Place(order); err != nil {
		if idemKey != "" {
			if delErr := s.cache.Delete(ctx, idemKey); delErr != nil {
				log.Warn().Err(delErr).Msg("failed to release idempotency key")
			}
		}
		return nil, err
	}

	log.Info().Str("order_id", order.ID).Str("shop_id", shop.ID).Str("total", total.StringFixed(2)).Msg("order placed")
	s.publish(ctx, events.OrderCreated, order)
	return order, nil
}

// CreatePOSOrder records a walk-in sale that is completed immediately.
func (s *OrderService) CreatePOSOrder(ctx context.Context, ownerID string, in POSInput) (*models.Order, error) {
	if in.PaymentMethod != "cash" && in.PaymentMethod != "card" {
		return nil, fmt.Errorf("%w: payment method must be cash or card", ErrValidation)
	}
	items, err := mergeItems(in.Items)
	if err != nil {
		return nil, err
	}
	shop, err := s.shopRepo.GetByOwner(ownerID)
	if err != nil {
		return nil, err
	}
	lines, total, err := s.priceItems(shop.ID, items)
	if err != nil {
		return nil, err
	}

	now := s.now()
	order := &models.Order{
		ShopID:        shop.ID,
		OrderType:     models.OrderWalkIn,
		Status:        models.StatusCompleted,
		TotalAmount:   total,
		PaymentMethod: in.PaymentMethod,
		GuestName:     strings.TrimSpace(in.CustomerName),
		GuestPhone:    strings.TrimSpace(in.CustomerPhone),
		Items:         lines,
		CompletedAt:   &now,
	}
	if err := s.orderRepo.Place(order); err != nil {
		return nil, err
	}

	log.Info().Str("order_id", order.ID).Str("shop_id", shop.ID).Msg("walk-in sale recorded")
	s.publish(ctx, events.OrderCreated, order)
	return order, nil
}

// ListConsumerOrders returns the consumer's orders, newest first.
func (s *OrderService) ListConsumerOrders(consumerID string) ([]models.Order, error) {
	return s.orderRepo.ListByConsumer(consumerID)
}

// GetOrder returns an order the caller may see. user is nil for guests.
func (s *OrderService) GetOrder(user *models.User, id string) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if !canViewOrder(user, order) {
		return nil, fmt.Errorf("%w: you cannot view this order", ErrForbidden)
	}
	return order, nil
}

// canViewOrder lets through the order's consumer, its shop owner, the
// assigned delivery partner and administrators. Guest orders are readable
// by anyone holding the order ID.
func canViewOrder(user *models.User, order *models.Order) bool {
	if order.ConsumerID == nil && order.OrderType != models.OrderWalkIn && user == nil {
		return true
	}
	if user == nil {
		return false
	}
	switch user.Role {
	case models.RoleAdmin:
		return true
	case models.RoleConsumer:
		return order.ConsumerID != nil && *order.ConsumerID == user.ID
	case models.RoleShopOwner:
		return order.Shop != nil && order.Shop.OwnerID == user.ID
	case models.RoleDeliveryPartner:
		return order.AssignedDeliveryPartnerID != nil && *order.AssignedDeliveryPartnerID == user.ID
	}
	return false
}

// ListShopOrders returns the owner's shop orders, optionally with one status.
func (s *OrderService) ListShopOrders(ownerID string, status models.OrderStatus) ([]models.Order, error) {
	shop, err := s.shopRepo.GetByOwner(ownerID)
	if err != nil {
		return nil, err
	}
	if status == "" {
		return s.orderRepo.ListByShop(shop.ID)
	}
	if !orderflow.Valid(status) {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, status)
	}
	return s.orderRepo.ListByShop(shop.ID, status)
}

func (s *OrderService) ownedOrder(ownerID, orderID string) (*models.Order, error) {
	shop, err := s.shopRepo.GetByOwner(ownerID)
	if err != nil {
		return nil, err
	}
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order.ShopID != shop.ID {
		return nil, fmt.Errorf("%w: order belongs to another shop", ErrForbidden)
	}
	return order, nil
}

// UpdateStatus moves one of the owner's orders along the status flow.
func (s *OrderService) UpdateStatus(ctx context.Context, ownerID, orderID string, to models.OrderStatus) (*models.Order, error) {
	if !orderflow.Valid(to) {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, to)
	}
	order, err := s.ownedOrder(ownerID, orderID)
	if err != nil {
		return nil, err
	}
	if !orderflow.CanTransition(order.Status, to, order.OrderType) {
		return nil, fmt.Errorf("%w: %s order cannot go from %s to %s", ErrInvalidTransition, order.OrderType, order.Status, to)
	}
	return s.transition(ctx, order, to)
}

func (s *OrderService) transition(ctx context.Context, order *models.Order, to models.OrderStatus) (*models.Order, error) {
	var completedAt *time.Time
	if to.Finished() {
		now := s.now()
		completedAt = &now
	}
	if err := s.orderRepo.TransitionStatus(order.ID, order.Status, to, completedAt); err != nil {
		if errors.Is(err, repositories.ErrStaleState) {
			return nil, fmt.Errorf("%w: order was updated concurrently", ErrConflict)
		}
		return nil, err
	}
	log.Info().Str("order_id", order.ID).Str("from", string(order.Status)).Str("to", string(to)).Msg("order status changed")
	order.Status = to
	if completedAt != nil {
		order.CompletedAt = completedAt
	}
	s.publish(ctx, events.OrderStatusChanged, order)
	return order, nil
}

// AssignDeliveryPartner hands a ready delivery order to an active partner.
func (s *OrderService) AssignDeliveryPartner(ctx context.Context, ownerID, orderID, partnerID string) (*models.Order, error) {
	order, err := s.ownedOrder(ownerID, orderID)
	if err != nil {
		return nil, err
	}
	if order.OrderType != models.OrderDelivery || order.Status != models.StatusReady {
		return nil, fmt.Errorf("%w: only ready delivery orders can be assigned", ErrInvalidTransition)
	}
	partner, err := s.userRepo.GetByID(partnerID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: delivery partner not found", ErrValidation)
		}
		return nil, err
	}
	if partner.Role != models.RoleDeliveryPartner || !partner.IsActive {
		return nil, fmt.Errorf("%w: user is not an active delivery partner", ErrValidation)
	}

	if err := s.orderRepo.AssignDeliveryPartner(order.ID, partner.ID); err != nil {
		if errors.Is(err, repositories.ErrStaleState) {
			return nil, fmt.Errorf("%w: order was updated concurrently", ErrConflict)
		}
		return nil, err
	}
	order.Status = models.StatusOutForDelivery
	order.AssignedDeliveryPartnerID = &partner.ID
	log.Info().Str("order_id", order.ID).Str("partner_id", partner.ID).Msg("delivery partner assigned")
	s.publish(ctx, events.OrderStatusChanged, order)
	return order, nil
}

// ListAssignedOrders returns the orders of a delivery partner.
func (s *OrderService) ListAssignedOrders(partnerID string) ([]models.Order, error) {
	return s.orderRepo.ListByDeliveryPartner(partnerID)
}

// MarkDelivered completes an order the partner is carrying.
func (s *OrderService) MarkDelivered(ctx context.Context, partnerID, orderID string) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order.AssignedDeliveryPartnerID == nil || *order.AssignedDeliveryPartnerID != partnerID {
		return nil, fmt.Errorf("%w: order is not assigned to you", ErrForbidden)
	}
	if order.Status != models.StatusOutForDelivery {
		return nil, fmt.Errorf("%w: order is %s", ErrInvalidTransition, order.Status)
	}
	return s.transition(ctx, order, models.StatusDelivered)
}

// SubmitReview rates the shop of a finished order. One review per order.
func (s *OrderService) SubmitReview(ctx context.Context, consumerID, orderID string, rating int, text string) (*models.Review, error) {
	if rating < 1 || rating > 5 {
		return nil, fmt.Errorf("%w: rating must be between 1 and 5", ErrValidation)
	}
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order.ConsumerID == nil || *order.ConsumerID != consumerID {
		return nil, fmt.Errorf("%w: you can only review your own orders", ErrForbidden)
	}
	if !order.Status.Finished() {
		return nil, fmt.Errorf("%w: only completed or delivered orders can be reviewed", ErrValidation)
	}
	exists, err := s.reviewRepo.ExistsForOrder(orderID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: order already reviewed", ErrConflict)
	}

	review := &models.Review{
		ShopID:     order.ShopID,
		ConsumerID: consumerID,
		OrderID:    orderID,
		Rating:     rating,
		ReviewText: strings.TrimSpace(text),
	}
	if err := s.reviewRepo.Create(review); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, fmt.Errorf("%w: order already reviewed", ErrConflict)
		}
		return nil, err
	}
	invalidateListing(ctx, s.cache)
	return review, nil
}

func (s *OrderService) publish(ctx context.Context, eventType string, order *models.Order) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, events.NewOrderEvent(eventType, order)); err != nil {
		log.Warn().Err(err).Str("order_id", order.ID).Str("event", eventType).Msg("failed to publish order event")
	}
}
