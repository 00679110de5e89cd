package models

import "time"

// Role identifies which part of the marketplace a user works in.
type Role string

const (
	RoleAdmin           Role = "admin"
	RoleShopOwner       Role = "shop_owner"
	RoleConsumer        Role = "consumer"
	RoleDeliveryPartner Role = "delivery_partner"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleShopOwner, RoleConsumer, RoleDeliveryPartner:
		return true
	}
	return false
}

// User represents an account of any role.
type User struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Email     string    `json:"email" gorm:"uniqueIndex;type:varchar(255);not null"`
	Password  string    `json:"-" gorm:"type:varchar(255);not null"` // bcrypt hash, never serialized
	FullName  string    `json:"full_name" gorm:"type:varchar(150)"`
	Phone     string    `json:"phone" gorm:"type:varchar(30)"`
	Role      Role      `json:"role" gorm:"type:varchar(30);index;not null"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Address is a saved delivery address of a consumer.
type Address struct {
	ID         string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	ConsumerID string    `json:"consumer_id" gorm:"type:varchar(36);index;not null"`
	Label      string    `json:"label" gorm:"type:varchar(60)"`
	Address    string    `json:"address" gorm:"type:varchar(500);not null"`
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	IsDefault  bool      `json:"is_default"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
