package repositories

import "grocery/internal/models"

// GlobalProductRepository defines the interface for global catalog access.
type GlobalProductRepository interface {
	Create(product *models.GlobalProduct) error
	GetByID(id string) (*models.GlobalProduct, error)
	Update(product *models.GlobalProduct) error
	List(approvedOnly bool) ([]models.GlobalProduct, error)
	Count() (int64, error)
}

// ShopProductRepository defines the interface for shop listings.
type ShopProductRepository interface {
	// Create fails with ErrDuplicate when the shop already lists the product.
	Create(product *models.ShopProduct) error
	GetByID(id string) (*models.ShopProduct, error)
	Update(product *models.ShopProduct) error
	ListByShop(shopID string) ([]models.ShopProduct, error)
	// ListAvailable returns in-stock, available products, optionally filtered
	// by category and a case-insensitive name search.
	ListAvailable(shopID, category, search string) ([]models.ShopProduct, error)
	Categories(shopID string) ([]string, error)
	Exists(shopID, globalProductID string) (bool, error)
	CountByShop(shopID string) (int64, error)
	// FindForShop returns the listed products of shopID among ids.
	FindForShop(shopID string, ids []string) ([]models.ShopProduct, error)
}

// ProductRequestRepository defines the interface for product requests.
type ProductRequestRepository interface {
	Create(req *models.ProductRequest) error
	GetByID(id string) (*models.ProductRequest, error)
	List(status models.ProductRequestStatus) ([]models.ProductRequest, error)
	ListByShop(shopID string) ([]models.ProductRequest, error)
	// Approve creates product and marks the pending request approved in one
	// transaction. A request that is no longer pending yields ErrStaleState.
	Approve(requestID string, product *models.GlobalProduct) error
	Reject(requestID string) error
	CountPending() (int64, error)
}
