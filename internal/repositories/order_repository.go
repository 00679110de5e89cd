package repositories

import (
	"time"

	"grocery/internal/models"
)

// OrderRepository defines the interface for order data access.
type OrderRepository interface {
	// Place decrements stock for every item and writes the order with its
	// items in one transaction. A decrement that cannot be satisfied rolls
	// everything back with ErrInsufficientStock.
	Place(order *models.Order) error
	GetByID(id string) (*models.Order, error)
	ListByConsumer(consumerID string) ([]models.Order, error)
	ListByShop(shopID string, statuses ...models.OrderStatus) ([]models.Order, error)
	ListByDeliveryPartner(partnerID string) ([]models.Order, error)
	// TransitionStatus moves the order from one status to another. An order
	// that is no longer in status from yields ErrStaleState.
	TransitionStatus(id string, from, to models.OrderStatus, completedAt *time.Time) error
	// AssignDeliveryPartner sets the partner and moves a ready order out for delivery.
	AssignDeliveryPartner(id, partnerID string) error
	Count() (int64, error)
}

// InvoiceRepository defines the interface for invoice data access.
type InvoiceRepository interface {
	// Create fails with ErrDuplicate when the order already has an invoice.
	Create(invoice *models.Invoice) error
	GetByOrderID(orderID string) (*models.Invoice, error)
}
