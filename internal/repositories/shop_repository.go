package repositories

import "grocery/internal/models"

// ShopRepository defines the interface for shop data access.
type ShopRepository interface {
	Create(shop *models.Shop) error
	GetByID(id string) (*models.Shop, error)
	GetByOwner(ownerID string) (*models.Shop, error)
	Update(shop *models.Shop) error
	// ListVisible returns the shops consumers may see: active and approved.
	ListVisible() ([]models.Shop, error)
	// List returns shops with their owners; approved filters when non-nil.
	List(approved *bool) ([]models.Shop, error)
	ListAwaitingApproval(limit int) ([]models.Shop, error)
	Count() (int64, error)
}

// ReviewRepository defines the interface for review data access.
type ReviewRepository interface {
	Create(review *models.Review) error
	ExistsForOrder(orderID string) (bool, error)
	ListByShop(shopID string) ([]models.Review, error)
	// Summaries returns the raw average rating and review count per shop.
	// With no IDs every reviewed shop is included.
	Summaries(shopIDs ...string) (map[string]models.RatingSummary, error)
}
