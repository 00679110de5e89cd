package repositories

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"grocery/internal/models"
)

// GORMOrderRepository is a GORM implementation of OrderRepository.
type GORMOrderRepository struct {
	db *gorm.DB
}

// NewGORMOrderRepository creates a new GORMOrderRepository.
func NewGORMOrderRepository(db *gorm.DB) *GORMOrderRepository {
	return &GORMOrderRepository{db: db}
}

// Place writes the order, its items and the stock decrements atomically.
func (r *GORMOrderRepository) Place(order *models.Order) error {
	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		for i := range order.Items {
			item := &order.Items[i]
			res := tx.Model(&models.ShopProduct{}).
				Where("id = ? AND shop_id = ? AND is_available = ? AND stock_quantity >= ?",
					item.ShopProductID, order.ShopID, true, item.Quantity).
				UpdateColumn("stock_quantity", gorm.Expr("stock_quantity - ?", item.Quantity))
			if res.Error != nil {
				return fmt.Errorf("failed to decrement stock of %s: %w", item.ShopProductID, res.Error)
			}
			if res.RowsAffected == 0 {
				return fmt.Errorf("shop product %s: %w", item.ShopProductID, ErrInsufficientStock)
			}
			if item.ID == "" {
				item.ID = uuid.New().String()
			}
			item.OrderID = order.ID
		}

		if err := tx.Omit(clause.Associations).Create(order).Error; err != nil {
			return createErr(err, "order")
		}
		if len(order.Items) > 0 {
			if err := tx.Omit(clause.Associations).Create(&order.Items).Error; err != nil {
				return createErr(err, "order items")
			}
		}
		return nil
	})
}

func (r *GORMOrderRepository) withDetails() *gorm.DB {
	return r.db.Preload("Shop").Preload("Items.ShopProduct.GlobalProduct")
}

// GetByID retrieves an order with its shop and items.
func (r *GORMOrderRepository) GetByID(id string) (*models.Order, error) {
	var order models.Order
	if err := r.withDetails().First(&order, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "order", id)
	}
	return &order, nil
}

// ListByConsumer returns a consumer's orders, newest first.
func (r *GORMOrderRepository) ListByConsumer(consumerID string) ([]models.Order, error) {
	var orders []models.Order
	err := r.withDetails().Where("consumer_id = ?", consumerID).Order("created_at DESC").Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list consumer orders: %w", err)
	}
	return orders, nil
}

// ListByShop returns a shop's orders newest first, optionally limited to statuses.
func (r *GORMOrderRepository) ListByShop(shopID string, statuses ...models.OrderStatus) ([]models.Order, error) {
	var orders []models.Order
	q := r.db.Preload("Items.ShopProduct.GlobalProduct").Where("shop_id = ?", shopID)
	if len(statuses) > 0 {
		q = q.Where("status IN ?", statuses)
	}
	if err := q.Order("created_at DESC").Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to list shop orders: %w", err)
	}
	return orders, nil
}

// ListByDeliveryPartner returns the orders assigned to a partner, newest first.
func (r *GORMOrderRepository) ListByDeliveryPartner(partnerID string) ([]models.Order, error) {
	var orders []models.Order
	err := r.withDetails().Where("assigned_delivery_partner_id = ?", partnerID).
		Order("created_at DESC").Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list assigned orders: %w", err)
	}
	return orders, nil
}

// TransitionStatus performs a compare-and-set on the order status.
func (r *GORMOrderRepository) TransitionStatus(id string, from, to models.OrderStatus, completedAt *time.Time) error {
	updates := map[string]interface{}{"status": to}
	if completedAt != nil {
		updates["completed_at"] = *completedAt
	}
	return r.guardedUpdate(id, from, updates)
}

// AssignDeliveryPartner hands a ready order to a delivery partner.
func (r *GORMOrderRepository) AssignDeliveryPartner(id, partnerID string) error {
	return r.guardedUpdate(id, models.StatusReady, map[string]interface{}{
		"assigned_delivery_partner_id": partnerID,
		"status":                       models.StatusOutForDelivery,
	})
}

func (r *GORMOrderRepository) guardedUpdate(id string, from models.OrderStatus, updates map[string]interface{}) error {
	res := r.db.Model(&models.Order{}).Where("id = ? AND status = ?", id, from).Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("failed to update order %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("order %s is no longer %s: %w", id, from, ErrStaleState)
	}
	return nil
}

// Count returns the number of orders.
func (r *GORMOrderRepository) Count() (int64, error) {
	var n int64
	if err := r.db.Model(&models.Order{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count orders: %w", err)
	}
	return n, nil
}

// GORMInvoiceRepository is a GORM implementation of InvoiceRepository.
type GORMInvoiceRepository struct {
	db *gorm.DB
}

// NewGORMInvoiceRepository creates a new GORMInvoiceRepository.
func NewGORMInvoiceRepository(db *gorm.DB) *GORMInvoiceRepository {
	return &GORMInvoiceRepository{db: db}
}

// Create stores an invoice.
func (r *GORMInvoiceRepository) Create(invoice *models.Invoice) error {
	if invoice.ID == "" {
		invoice.ID = uuid.New().String()
	}
	if err := r.db.Create(invoice).Error; err != nil {
		return createErr(err, "invoice")
	}
	return nil
}

// GetByOrderID retrieves the invoice of an order.
func (r *GORMInvoiceRepository) GetByOrderID(orderID string) (*models.Invoice, error) {
	var invoice models.Invoice
	if err := r.db.First(&invoice, "order_id = ?", orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("invoice for order %s %w", orderID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get invoice: %w", err)
	}
	return &invoice, nil
}
