package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductRequestStatus is the review state of a product request.
type ProductRequestStatus string

const (
	RequestPending  ProductRequestStatus = "pending"
	RequestApproved ProductRequestStatus = "approved"
	RequestRejected ProductRequestStatus = "rejected"
)

// GlobalProduct is a catalog entry any shop can list once approved.
type GlobalProduct struct {
	ID          string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name        string    `json:"name" gorm:"type:varchar(150);not null"`
	Description string    `json:"description" gorm:"type:text"`
	Category    string    `json:"category" gorm:"type:varchar(100);index;not null"`
	BaseUnit    string    `json:"base_unit" gorm:"type:varchar(30);not null"`
	ImageURL    string    `json:"image_url" gorm:"type:varchar(500)"`
	IsApproved  bool      `json:"is_approved" gorm:"index"`
	CreatedBy   string    `json:"created_by" gorm:"type:varchar(36)"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ShopProduct is a shop's own listing of a global product.
type ShopProduct struct {
	ID              string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	ShopID          string          `json:"shop_id" gorm:"type:varchar(36);uniqueIndex:idx_shop_global_product;not null"`
	GlobalProductID string          `json:"global_product_id" gorm:"type:varchar(36);uniqueIndex:idx_shop_global_product;not null"`
	GlobalProduct   *GlobalProduct  `json:"global_product,omitempty" gorm:"foreignKey:GlobalProductID"`
	Price           decimal.Decimal `json:"price" gorm:"type:decimal(10,2);not null"`
	StockQuantity   int             `json:"stock_quantity" gorm:"not null"`
	IsAvailable     bool            `json:"is_available"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// ProductRequest asks an administrator to add a product to the global catalog.
type ProductRequest struct {
	ID          string               `json:"id" gorm:"primaryKey;type:varchar(36)"`
	ShopID      string               `json:"shop_id" gorm:"type:varchar(36);index;not null"`
	Shop        *Shop                `json:"shop,omitempty" gorm:"foreignKey:ShopID"`
	ProductName string               `json:"product_name" gorm:"type:varchar(150);not null"`
	Description string               `json:"description" gorm:"type:text"`
	Category    string               `json:"category" gorm:"type:varchar(100)"`
	BaseUnit    string               `json:"base_unit" gorm:"type:varchar(30)"`
	Status      ProductRequestStatus `json:"status" gorm:"type:varchar(20);index;not null"`
	CreatedAt   time.Time            `json:"created_at"`
	UpdatedAt   time.Time            `json:"updated_at"`
}
