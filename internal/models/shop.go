package models

import "time"

// DefaultDeliveryRangeKm applies to shops that never set a delivery range.
const DefaultDeliveryRangeKm = 5.0

// Shop is a merchant storefront. Each shop owner has at most one.
type Shop struct {
	ID              string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	OwnerID         string    `json:"owner_id" gorm:"type:varchar(36);uniqueIndex;not null"`
	Owner           *User     `json:"owner,omitempty" gorm:"foreignKey:OwnerID"`
	Name            string    `json:"name" gorm:"type:varchar(150);not null"`
	Description     string    `json:"description" gorm:"type:text"`
	Address         string    `json:"address" gorm:"type:varchar(500)"`
	Latitude        float64   `json:"latitude"`
	Longitude       float64   `json:"longitude"`
	DeliveryRangeKm float64   `json:"delivery_range_km"`
	IsActive        bool      `json:"is_active" gorm:"index"`
	IsApproved      bool      `json:"is_approved" gorm:"index"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Review is a consumer's rating of a shop for one finished order.
type Review struct {
	ID         string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	ShopID     string    `json:"shop_id" gorm:"type:varchar(36);index;not null"`
	ConsumerID string    `json:"consumer_id" gorm:"type:varchar(36);index;not null"`
	OrderID    string    `json:"order_id" gorm:"type:varchar(36);uniqueIndex;not null"`
	Rating     int       `json:"rating" gorm:"not null"`
	ReviewText string    `json:"review_text" gorm:"type:text"`
	CreatedAt  time.Time `json:"created_at"`
}

// RatingSummary aggregates the reviews of one shop.
type RatingSummary struct {
	ShopID      string  `json:"shop_id"`
	Average     float64 `json:"rating"`
	ReviewCount int     `json:"review_count"`
}
