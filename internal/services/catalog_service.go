package services

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"grocery/internal/models"
	"grocery/internal/repositories"
	"grocery/pkg/storage"
)

// ImageStore saves uploaded product images.
type ImageStore interface {
	Save(r io.Reader) (*storage.StoredImage, error)
}

// GlobalProductInput carries the fields of a global product.
type GlobalProductInput struct {
	Name        string
	Description string
	Category    string
	BaseUnit    string
}

func (in GlobalProductInput) validate() error {
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.Category) == "" || strings.TrimSpace(in.BaseUnit) == "" {
		return fmt.Errorf("%w: name, category and base unit are required", ErrValidation)
	}
	return nil
}

// ShopProductInput carries a shop's price and stock for a product.
type ShopProductInput struct {
	GlobalProductID string
	Price           decimal.Decimal
	StockQuantity   int
	IsAvailable     bool
}

func (in ShopProductInput) validate() error {
	if in.Price.IsNegative() {
		return fmt.Errorf("%w: price cannot be negative", ErrValidation)
	}
	if in.StockQuantity < 0 {
		return fmt.Errorf("%w: stock cannot be negative", ErrValidation)
	}
	return nil
}

// CatalogService handles the global catalog, product requests and shop listings.
type CatalogService struct {
	globalRepo      repositories.GlobalProductRepository
	shopProductRepo repositories.ShopProductRepository
	requestRepo     repositories.ProductRequestRepository
	shopRepo        repositories.ShopRepository
	images          ImageStore
}

// NewCatalogService creates a new CatalogService.
func NewCatalogService(
	globalRepo repositories.GlobalProductRepository,
	shopProductRepo repositories.ShopProductRepository,
	requestRepo repositories.ProductRequestRepository,
	shopRepo repositories.ShopRepository,
	images ImageStore,
) *CatalogService {
	return &CatalogService{
		globalRepo:      globalRepo,
		shopProductRepo: shopProductRepo,
		requestRepo:     requestRepo,
		shopRepo:        shopRepo,
		images:          images,
	}
}

// ListGlobalProducts returns the catalog; shop owners only see approved entries.
func (s *CatalogService) ListGlobalProducts(approvedOnly bool) ([]models.GlobalProduct, error) {
	return s.globalRepo.List(approvedOnly)
}

// CreateGlobalProduct adds an approved catalog entry. image may be nil.
func (s *CatalogService) CreateGlobalProduct(adminID string, in GlobalProductInput, image io.Reader) (*models.GlobalProduct, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	product := &models.GlobalProduct{
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Category:    strings.TrimSpace(in.Category),
		BaseUnit:    strings.TrimSpace(in.BaseUnit),
		IsApproved:  true,
		CreatedBy:   adminID,
	}
	if image != nil {
		stored, err := s.saveImage(image)
		if err != nil {
			return nil, err
		}
		product.ImageURL = stored.URL
	}
	if err := s.globalRepo.Create(product); err != nil {
		return nil, err
	}
	return product, nil
}

// UpdateGlobalProduct edits a catalog entry.
func (s *CatalogService) UpdateGlobalProduct(id string, in GlobalProductInput) (*models.GlobalProduct, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	product, err := s.globalRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	product.Name = strings.TrimSpace(in.Name)
	product.Description = in.Description
	product.Category = strings.TrimSpace(in.Category)
	product.BaseUnit = strings.TrimSpace(in.BaseUnit)
	if err := s.globalRepo.Update(product); err != nil {
		return nil, err
	}
	return product, nil
}

// ApproveGlobalProduct makes a catalog entry available to shops.
func (s *CatalogService) ApproveGlobalProduct(id string) (*models.GlobalProduct, error) {
	product, err := s.globalRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	product.IsApproved = true
	if err := s.globalRepo.Update(product); err != nil {
		return nil, err
	}
	return product, nil
}

// UploadProductImage replaces the image of a catalog entry.
func (s *CatalogService) UploadProductImage(id string, image io.Reader) (*models.GlobalProduct, error) {
	product, err := s.globalRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	stored, err := s.saveImage(image)
	if err != nil {
		return nil, err
	}
	product.ImageURL = stored.URL
	if err := s.globalRepo.Update(product); err != nil {
		return nil, err
	}
	return product, nil
}

func (s *CatalogService) saveImage(r io.Reader) (*storage.StoredImage, error) {
	if s.images == nil {
		return nil, fmt.Errorf("image storage is not configured")
	}
	stored, err := s.images.Save(r)
	if err != nil {
		if errors.Is(err, storage.ErrUnsupportedType) || errors.Is(err, storage.ErrTooLarge) {
			return nil, fmt.Errorf("%w: %v", ErrValidation, err)
		}
		return nil, err
	}
	return stored, nil
}

// SubmitProductRequest asks for a new catalog entry on behalf of the owner's shop.
func (s *CatalogService) SubmitProductRequest(ownerID string, in GlobalProductInput) (*models.ProductRequest, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, fmt.Errorf("%w: product name is required", ErrValidation)
	}
	shop, err := s.shopRepo.GetByOwner(ownerID)
	if err != nil {
		return nil, err
	}
	req := &models.ProductRequest{
		ShopID:      shop.ID,
		ProductName: strings.TrimSpace(in.Name),
		Description: in.Description,
		Category:    strings.TrimSpace(in.Category),
		BaseUnit:    strings.TrimSpace(in.BaseUnit),
		Status:      models.RequestPending,
	}
	if err := s.requestRepo.Create(req); err != nil {
		return nil, err
	}
	return req, nil
}

// ListProductRequests lists requests for administrators.
func (s *CatalogService) ListProductRequests(status models.ProductRequestStatus) ([]models.ProductRequest, error) {
	switch status {
	case "", models.RequestPending, models.RequestApproved, models.RequestRejected:
	default:
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, status)
	}
	return s.requestRepo.List(status)
}

// ListOwnProductRequests lists the requests of the owner's shop.
func (s *CatalogService) ListOwnProductRequests(ownerID string) ([]models.ProductRequest, error) {
	shop, err := s.shopRepo.GetByOwner(ownerID)
	if err != nil {
		return nil, err
	}
	return s.requestRepo.ListByShop(shop.ID)
}

// ApproveProductRequest turns a pending request into an approved catalog entry.
func (s *CatalogService) ApproveProductRequest(adminID, requestID string) (*models.GlobalProduct, error) {
	req, err := s.requestRepo.GetByID(requestID)
	if err != nil {
		return nil, err
	}
	if req.Status != models.RequestPending {
		return nil, fmt.Errorf("%w: request is already %s", ErrConflict, req.Status)
	}
	category, unit := req.Category, req.BaseUnit
	if category == "" {
		category = "Uncategorized"
	}
	if unit == "" {
		unit = "unit"
	}
	product := &models.GlobalProduct{
		Name:        req.ProductName,
		Description: req.Description,
		Category:    category,
		BaseUnit:    unit,
		IsApproved:  true,
		CreatedBy:   adminID,
	}
	if err := s.requestRepo.Approve(req.ID, product); err != nil {
		if errors.Is(err, repositories.ErrStaleState) {
			return nil, fmt.Errorf("%w: request was decided concurrently", ErrConflict)
		}
		return nil, err
	}
	log.Info().Str("request_id", req.ID).Str("product_id", product.ID).Msg("product request approved")
	return product, nil
}

// RejectProductRequest closes a pending request.
func (s *CatalogService) RejectProductRequest(requestID string) error {
	req, err := s.requestRepo.GetByID(requestID)
	if err != nil {
		return err
	}
	if req.Status != models.RequestPending {
		return fmt.Errorf("%w: request is already %s", ErrConflict, req.Status)
	}
	if err := s.requestRepo.Reject(req.ID); err != nil {
		if errors.Is(err, repositories.ErrStaleState) {
			return fmt.Errorf("%w: request was decided concurrently", ErrConflict)
		}
		return err
	}
	return nil
}

// AddShopProduct lists an approved catalog entry in the owner's shop.
func (s *CatalogService) AddShopProduct(ownerID string, in ShopProductInput) (*models.ShopProduct, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	shop, err := s.shopRepo.GetByOwner(ownerID)
	if err != nil {
		return nil, err
	}
	global, err := s.globalRepo.GetByID(in.GlobalProductID)
	if err != nil {
		return nil, err
	}
	if !global.IsApproved {
		return nil, fmt.Errorf("%w: product is not approved", ErrValidation)
	}

	exists, err := s.shopProductRepo.Exists(shop.ID, global.ID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: Product already added to shop", ErrValidation)
	}

	product := &models.ShopProduct{
		ShopID:          shop.ID,
		GlobalProductID: global.ID,
		Price:           in.Price,
		StockQuantity:   in.StockQuantity,
		IsAvailable:     in.IsAvailable,
	}
	if err := s.shopProductRepo.Create(product); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, fmt.Errorf("%w: Product already added to shop", ErrValidation)
		}
		return nil, err
	}
	product.GlobalProduct = global
	return product, nil
}

// UpdateShopProduct edits price, stock and availability of one of the owner's listings.
func (s *CatalogService) UpdateShopProduct(ownerID, id string, in ShopProductInput) (*models.ShopProduct, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	shop, err := s.shopRepo.GetByOwner(ownerID)
	if err != nil {
		return nil, err
	}
	product, err := s.shopProductRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if product.ShopID != shop.ID {
		return nil, fmt.Errorf("%w: product belongs to another shop", ErrForbidden)
	}
	product.Price = in.Price
	product.StockQuantity = in.StockQuantity
	product.IsAvailable = in.IsAvailable
	if err := s.shopProductRepo.Update(product); err != nil {
		return nil, err
	}
	return product, nil
}

// ListOwnShopProducts returns every listing of the owner's shop.
func (s *CatalogService) ListOwnShopProducts(ownerID string) ([]models.ShopProduct, error) {
	shop, err := s.shopRepo.GetByOwner(ownerID)
	if err != nil {
		return nil, err
	}
	return s.shopProductRepo.ListByShop(shop.ID)
}

// ListShopProducts returns what consumers can buy from a shop.
func (s *CatalogService) ListShopProducts(shopID, category, search string) ([]models.ShopProduct, error) {
	if err := s.ensureVisible(shopID); err != nil {
		return nil, err
	}
	return s.shopProductRepo.ListAvailable(shopID, category, search)
}

// ListShopCategories returns the categories of a shop's available products.
func (s *CatalogService) ListShopCategories(shopID string) ([]string, error) {
	if err := s.ensureVisible(shopID); err != nil {
		return nil, err
	}
	return s.shopProductRepo.Categories(shopID)
}

func (s *CatalogService) ensureVisible(shopID string) error {
	shop, err := s.shopRepo.GetByID(shopID)
	if err != nil {
		return err
	}
	if !shop.IsActive || !shop.IsApproved {
		return fmt.Errorf("shop with ID %s %w", shopID, ErrNotFound)
	}
	return nil
}
