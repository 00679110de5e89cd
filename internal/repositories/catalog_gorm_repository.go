package repositories

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"grocery/internal/models"
)

// GORMGlobalProductRepository is a GORM implementation of GlobalProductRepository.
type GORMGlobalProductRepository struct {
	db *gorm.DB
}

// NewGORMGlobalProductRepository creates a new GORMGlobalProductRepository.
func NewGORMGlobalProductRepository(db *gorm.DB) *GORMGlobalProductRepository {
	return &GORMGlobalProductRepository{db: db}
}

// Create creates a new global product.
func (r *GORMGlobalProductRepository) Create(product *models.GlobalProduct) error {
	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	if err := r.db.Create(product).Error; err != nil {
		return createErr(err, "global product")
	}
	return nil
}

// GetByID retrieves a global product by ID.
func (r *GORMGlobalProductRepository) GetByID(id string) (*models.GlobalProduct, error) {
	var product models.GlobalProduct
	if err := r.db.First(&product, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "global product", id)
	}
	return &product, nil
}

// Update saves every column of product.
func (r *GORMGlobalProductRepository) Update(product *models.GlobalProduct) error {
	if err := r.db.Save(product).Error; err != nil {
		return fmt.Errorf("failed to update global product: %w", err)
	}
	return nil
}

// List returns global products ordered by name.
func (r *GORMGlobalProductRepository) List(approvedOnly bool) ([]models.GlobalProduct, error) {
	var products []models.GlobalProduct
	q := r.db.Order("name ASC")
	if approvedOnly {
		q = q.Where("is_approved = ?", true)
	}
	if err := q.Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to list global products: %w", err)
	}
	return products, nil
}

// Count returns the number of global products.
func (r *GORMGlobalProductRepository) Count() (int64, error) {
	var n int64
	if err := r.db.Model(&models.GlobalProduct{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count global products: %w", err)
	}
	return n, nil
}

// GORMShopProductRepository is a GORM implementation of ShopProductRepository.
type GORMShopProductRepository struct {
	db *gorm.DB
}

// NewGORMShopProductRepository creates a new GORMShopProductRepository.
func NewGORMShopProductRepository(db *gorm.DB) *GORMShopProductRepository {
	return &GORMShopProductRepository{db: db}
}

// Create lists a global product in a shop.
func (r *GORMShopProductRepository) Create(product *models.ShopProduct) error {
	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	if err := r.db.Omit(clause.Associations).Create(product).Error; err != nil {
		return createErr(err, "shop product")
	}
	return nil
}

// GetByID retrieves a shop product with its global product.
func (r *GORMShopProductRepository) GetByID(id string) (*models.ShopProduct, error) {
	var product models.ShopProduct
	if err := r.db.Preload("GlobalProduct").First(&product, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "shop product", id)
	}
	return &product, nil
}

// Update writes price, stock and availability of product.
func (r *GORMShopProductRepository) Update(product *models.ShopProduct) error {
	err := r.db.Model(&models.ShopProduct{}).Where("id = ?", product.ID).Updates(map[string]interface{}{
		"price":          product.Price,
		"stock_quantity": product.StockQuantity,
		"is_available":   product.IsAvailable,
	}).Error
	if err != nil {
		return fmt.Errorf("failed to update shop product: %w", err)
	}
	return nil
}

// ListByShop returns every listing of a shop, newest first.
func (r *GORMShopProductRepository) ListByShop(shopID string) ([]models.ShopProduct, error) {
	var products []models.ShopProduct
	err := r.db.Preload("GlobalProduct").Where("shop_id = ?", shopID).
		Order("created_at DESC").Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list shop products: %w", err)
	}
	return products, nil
}

func (r *GORMShopProductRepository) available(shopID string) *gorm.DB {
	return r.db.Model(&models.ShopProduct{}).
		Joins("JOIN global_products ON global_products.id = shop_products.global_product_id").
		Where("shop_products.shop_id = ? AND shop_products.is_available = ? AND shop_products.stock_quantity > 0", shopID, true)
}

// ListAvailable returns the products a consumer can buy, ordered by name.
func (r *GORMShopProductRepository) ListAvailable(shopID, category, search string) ([]models.ShopProduct, error) {
	q := r.available(shopID).Preload("GlobalProduct")
	if category != "" {
		q = q.Where("global_products.category = ?", category)
	}
	if search = strings.TrimSpace(search); search != "" {
		q = q.Where("LOWER(global_products.name) LIKE ?", "%"+strings.ToLower(search)+"%")
	}

	var products []models.ShopProduct
	if err := q.Order("global_products.name ASC").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to list available products: %w", err)
	}
	return products, nil
}

// Categories returns the distinct categories of the shop's available products.
func (r *GORMShopProductRepository) Categories(shopID string) ([]string, error) {
	var categories []string
	err := r.available(shopID).Distinct().
		Order("global_products.category ASC").
		Pluck("global_products.category", &categories).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

// Exists reports whether the shop already lists globalProductID.
func (r *GORMShopProductRepository) Exists(shopID, globalProductID string) (bool, error) {
	var n int64
	err := r.db.Model(&models.ShopProduct{}).
		Where("shop_id = ? AND global_product_id = ?", shopID, globalProductID).Count(&n).Error
	if err != nil {
		return false, fmt.Errorf("failed to check shop product: %w", err)
	}
	return n > 0, nil
}

// CountByShop returns the number of listings of a shop.
func (r *GORMShopProductRepository) CountByShop(shopID string) (int64, error) {
	var n int64
	if err := r.db.Model(&models.ShopProduct{}).Where("shop_id = ?", shopID).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count shop products: %w", err)
	}
	return n, nil
}

// FindForShop returns the listings among ids that belong to shopID.
func (r *GORMShopProductRepository) FindForShop(shopID string, ids []string) ([]models.ShopProduct, error) {
	var products []models.ShopProduct
	if len(ids) == 0 {
		return products, nil
	}
	err := r.db.Preload("GlobalProduct").Where("shop_id = ? AND id IN ?", shopID, ids).Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load shop products: %w", err)
	}
	return products, nil
}

// GORMProductRequestRepository is a GORM implementation of ProductRequestRepository.
type GORMProductRequestRepository struct {
	db *gorm.DB
}

// NewGORMProductRequestRepository creates a new GORMProductRequestRepository.
func NewGORMProductRequestRepository(db *gorm.DB) *GORMProductRequestRepository {
	return &GORMProductRequestRepository{db: db}
}

// Create stores a new request.
func (r *GORMProductRequestRepository) Create(req *models.ProductRequest) error {
	if req.ID == "" {
		req.ID = uuid.New().String()
	}
	if err := r.db.Omit(clause.Associations).Create(req).Error; err != nil {
		return createErr(err, "product request")
	}
	return nil
}

// GetByID retrieves a request by ID.
func (r *GORMProductRequestRepository) GetByID(id string) (*models.ProductRequest, error) {
	var req models.ProductRequest
	if err := r.db.Preload("Shop").First(&req, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "product request", id)
	}
	return &req, nil
}

// List returns requests newest first, filtered by status when set.
func (r *GORMProductRequestRepository) List(status models.ProductRequestStatus) ([]models.ProductRequest, error) {
	var reqs []models.ProductRequest
	q := r.db.Preload("Shop").Order("created_at DESC")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if err := q.Find(&reqs).Error; err != nil {
		return nil, fmt.Errorf("failed to list product requests: %w", err)
	}
	return reqs, nil
}

// ListByShop returns a shop's own requests, newest first.
func (r *GORMProductRequestRepository) ListByShop(shopID string) ([]models.ProductRequest, error) {
	var reqs []models.ProductRequest
	if err := r.db.Where("shop_id = ?", shopID).Order("created_at DESC").Find(&reqs).Error; err != nil {
		return nil, fmt.Errorf("failed to list product requests: %w", err)
	}
	return reqs, nil
}

// Approve creates the global product and closes the request atomically.
func (r *GORMProductRequestRepository) Approve(requestID string, product *models.GlobalProduct) error {
	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := decide(tx, requestID, models.RequestApproved); err != nil {
			return err
		}
		if err := tx.Create(product).Error; err != nil {
			return createErr(err, "global product")
		}
		return nil
	})
}

// Reject closes a pending request.
func (r *GORMProductRequestRepository) Reject(requestID string) error {
	return decide(r.db, requestID, models.RequestRejected)
}

func decide(tx *gorm.DB, requestID string, status models.ProductRequestStatus) error {
	res := tx.Model(&models.ProductRequest{}).
		Where("id = ? AND status = ?", requestID, models.RequestPending).
		Update("status", status)
	if res.Error != nil {
		return fmt.Errorf("failed to update product request: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("product request %s is not pending: %w", requestID, ErrStaleState)
	}
	return nil
}

// CountPending returns the number of undecided requests.
func (r *GORMProductRequestRepository) CountPending() (int64, error) {
	var n int64
	err := r.db.Model(&models.ProductRequest{}).Where("status = ?", models.RequestPending).Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count product requests: %w", err)
	}
	return n, nil
}
