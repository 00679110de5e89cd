package models

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Prices go over the wire as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	StatusPending        OrderStatus = "pending"
	StatusConfirmed      OrderStatus = "confirmed"
	StatusPreparing      OrderStatus = "preparing"
	StatusReady          OrderStatus = "ready"
	StatusOutForDelivery OrderStatus = "out_for_delivery"
	StatusDelivered      OrderStatus = "delivered"
	StatusCompleted      OrderStatus = "completed"
	StatusCancelled      OrderStatus = "cancelled"
)

// Finished reports whether the order was handed over to the customer.
func (s OrderStatus) Finished() bool {
	return s == StatusCompleted || s == StatusDelivered
}

// OrderType tells how the goods reach the customer.
type OrderType string

const (
	OrderDelivery OrderType = "delivery"
	OrderPickup   OrderType = "pickup"
	OrderWalkIn   OrderType = "walk_in"
)

// Order is a consumer, guest or walk-in purchase from one shop.
type Order struct {
	ID                        string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	ConsumerID                *string         `json:"consumer_id" gorm:"type:varchar(36);index"`
	ShopID                    string          `json:"shop_id" gorm:"type:varchar(36);index;not null"`
	Shop                      *Shop           `json:"shop,omitempty" gorm:"foreignKey:ShopID"`
	OrderType                 OrderType       `json:"order_type" gorm:"type:varchar(20);not null"`
	Status                    OrderStatus     `json:"status" gorm:"type:varchar(30);index;not null"`
	TotalAmount               decimal.Decimal `json:"total_amount" gorm:"type:decimal(10,2);not null"`
	PaymentMethod             string          `json:"payment_method,omitempty" gorm:"type:varchar(20)"`
	DeliveryAddress           string          `json:"delivery_address,omitempty" gorm:"type:varchar(500)"`
	DeliveryLatitude          *float64        `json:"delivery_latitude,omitempty"`
	DeliveryLongitude         *float64        `json:"delivery_longitude,omitempty"`
	GuestName                 string          `json:"guest_name,omitempty" gorm:"type:varchar(150)"`
	GuestEmail                string          `json:"guest_email,omitempty" gorm:"type:varchar(255)"`
	GuestPhone                string          `json:"guest_phone,omitempty" gorm:"type:varchar(30)"`
	AssignedDeliveryPartnerID *string         `json:"assigned_delivery_partner_id" gorm:"type:varchar(36);index"`
	Items                     []OrderItem     `json:"items" gorm:"foreignKey:OrderID"`
	CompletedAt               *time.Time      `json:"completed_at"`
	CreatedAt                 time.Time       `json:"created_at"`
	UpdatedAt                 time.Time       `json:"updated_at"`
}

// OrderItem is one line of an order; the unit price is captured at purchase time.
type OrderItem struct {
	ID            string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	OrderID       string          `json:"order_id" gorm:"type:varchar(36);index;not null"`
	ShopProductID string          `json:"shop_product_id" gorm:"type:varchar(36);index;not null"`
	ShopProduct   *ShopProduct    `json:"shop_product,omitempty" gorm:"foreignKey:ShopProductID"`
	Quantity      int             `json:"quantity" gorm:"not null"`
	UnitPrice     decimal.Decimal `json:"unit_price" gorm:"type:decimal(10,2);not null"`
	Subtotal      decimal.Decimal `json:"subtotal" gorm:"type:decimal(10,2);not null"`
}

// Invoice is issued once per finished order.
type Invoice struct {
	ID            string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	OrderID       string    `json:"order_id" gorm:"type:varchar(36);uniqueIndex;not null"`
	InvoiceNumber string    `json:"invoice_number" gorm:"type:varchar(40);uniqueIndex;not null"`
	IssuedAt      time.Time `json:"issued_at"`
}

// All lists every persisted model, in migration order.
func All() []interface{} {
	return []interface{}{
		&User{}, &Address{}, &Shop{}, &Review{},
		&GlobalProduct{}, &ShopProduct{}, &ProductRequest{},
		&Order{}, &OrderItem{}, &Invoice{},
	}
}
