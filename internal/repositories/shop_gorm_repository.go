package repositories

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"grocery/internal/models"
)

// GORMShopRepository is a GORM implementation of ShopRepository.
type GORMShopRepository struct {
	db *gorm.DB
}

// NewGORMShopRepository creates a new GORMShopRepository.
func NewGORMShopRepository(db *gorm.DB) *GORMShopRepository {
	return &GORMShopRepository{db: db}
}

// Create creates a new shop.
func (r *GORMShopRepository) Create(shop *models.Shop) error {
	if shop.ID == "" {
		shop.ID = uuid.New().String()
	}
	if err := r.db.Omit(clause.Associations).Create(shop).Error; err != nil {
		return createErr(err, "shop")
	}
	return nil
}

// GetByID retrieves a shop by ID.
func (r *GORMShopRepository) GetByID(id string) (*models.Shop, error) {
	var shop models.Shop
	if err := r.db.First(&shop, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "shop", id)
	}
	return &shop, nil
}

// GetByOwner retrieves the shop owned by ownerID.
func (r *GORMShopRepository) GetByOwner(ownerID string) (*models.Shop, error) {
	var shop models.Shop
	if err := r.db.First(&shop, "owner_id = ?", ownerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("shop for owner %s %w", ownerID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get shop by owner: %w", err)
	}
	return &shop, nil
}

// Update saves every column of shop, including zero values.
func (r *GORMShopRepository) Update(shop *models.Shop) error {
	if err := r.db.Omit(clause.Associations).Save(shop).Error; err != nil {
		return fmt.Errorf("failed to update shop: %w", err)
	}
	return nil
}

// ListVisible returns active, approved shops.
func (r *GORMShopRepository) ListVisible() ([]models.Shop, error) {
	var shops []models.Shop
	if err := r.db.Where("is_active = ? AND is_approved = ?", true, true).Find(&shops).Error; err != nil {
		return nil, fmt.Errorf("failed to list visible shops: %w", err)
	}
	return shops, nil
}

// List returns shops newest first with their owners.
func (r *GORMShopRepository) List(approved *bool) ([]models.Shop, error) {
	var shops []models.Shop
	q := r.db.Preload("Owner").Order("created_at DESC")
	if approved != nil {
		q = q.Where("is_approved = ?", *approved)
	}
	if err := q.Find(&shops).Error; err != nil {
		return nil, fmt.Errorf("failed to list shops: %w", err)
	}
	return shops, nil
}

// ListAwaitingApproval returns up to limit unapproved shops, newest first.
func (r *GORMShopRepository) ListAwaitingApproval(limit int) ([]models.Shop, error) {
	var shops []models.Shop
	err := r.db.Preload("Owner").Where("is_approved = ?", false).
		Order("created_at DESC").Limit(limit).Find(&shops).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list shops awaiting approval: %w", err)
	}
	return shops, nil
}

// Count returns the number of shops.
func (r *GORMShopRepository) Count() (int64, error) {
	var n int64
	if err := r.db.Model(&models.Shop{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count shops: %w", err)
	}
	return n, nil
}

// GORMReviewRepository is a GORM implementation of ReviewRepository.
type GORMReviewRepository struct {
	db *gorm.DB
}

// NewGORMReviewRepository creates a new GORMReviewRepository.
func NewGORMReviewRepository(db *gorm.DB) *GORMReviewRepository {
	return &GORMReviewRepository{db: db}
}

// Create stores a review. A second review of the same order is ErrDuplicate.
func (r *GORMReviewRepository) Create(review *models.Review) error {
	if review.ID == "" {
		review.ID = uuid.New().String()
	}
	if err := r.db.Create(review).Error; err != nil {
		return createErr(err, "review")
	}
	return nil
}

// ExistsForOrder reports whether orderID was already reviewed.
func (r *GORMReviewRepository) ExistsForOrder(orderID string) (bool, error) {
	var n int64
	if err := r.db.Model(&models.Review{}).Where("order_id = ?", orderID).Count(&n).Error; err != nil {
		return false, fmt.Errorf("failed to check review: %w", err)
	}
	return n > 0, nil
}

// ListByShop returns the reviews of a shop, newest first.
func (r *GORMReviewRepository) ListByShop(shopID string) ([]models.Review, error) {
	var reviews []models.Review
	if err := r.db.Where("shop_id = ?", shopID).Order("created_at DESC").Find(&reviews).Error; err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	return reviews, nil
}

// Summaries aggregates ratings per shop.
func (r *GORMReviewRepository) Summaries(shopIDs ...string) (map[string]models.RatingSummary, error) {
	var rows []models.RatingSummary
	q := r.db.Model(&models.Review{}).
		Select("shop_id, AVG(rating) AS average, COUNT(*) AS review_count").
		Group("shop_id")
	if len(shopIDs) > 0 {
		q = q.Where("shop_id IN ?", shopIDs)
	}
	if err := q.Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to summarize reviews: %w", err)
	}

	out := make(map[string]models.RatingSummary, len(rows))
	for _, row := range rows {
		out[row.ShopID] = row
	}
	return out, nil
}
