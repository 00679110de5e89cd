package services_test

import (
	"context"
	"io"
	"time"

	"github.com/stretchr/testify/mock"

	"grocery/internal/events"
	"grocery/internal/models"
	"grocery/pkg/storage"
)

// MockUserRepository is a mock implementation of repositories.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(user *models.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByEmail(email string) (*models.User, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByID(id string) (*models.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) UpdateProfile(user *models.User) error {
	return m.Called(user).Error(0)
}

func (m *MockUserRepository) List(role models.Role) ([]models.User, error) {
	args := m.Called(role)
	return args.Get(0).([]models.User), args.Error(1)
}

func (m *MockUserRepository) SetActive(id string, active bool) error {
	return m.Called(id, active).Error(0)
}

func (m *MockUserRepository) Count() (int64, error) {
	args := m.Called()
	return args.Get(0).(int64), args.Error(1)
}

// MockShopRepository is a mock implementation of repositories.ShopRepository
type MockShopRepository struct {
	mock.Mock
}

func (m *MockShopRepository) Create(shop *models.Shop) error {
	return m.Called(shop).Error(0)
}

func (m *MockShopRepository) GetByID(id string) (*models.Shop, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Shop), args.Error(1)
}

func (m *MockShopRepository) GetByOwner(ownerID string) (*models.Shop, error) {
	args := m.Called(ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Shop), args.Error(1)
}

func (m *MockShopRepository) Update(shop *models.Shop) error {
	return m.Called(shop).Error(0)
}

func (m *MockShopRepository) ListVisible() ([]models.Shop, error) {
	args := m.Called()
	return args.Get(0).([]models.Shop), args.Error(1)
}

func (m *MockShopRepository) List(approved *bool) ([]models.Shop, error) {
	args := m.Called(approved)
	return args.Get(0).([]models.Shop), args.Error(1)
}

func (m *MockShopRepository) ListAwaitingApproval(limit int) ([]models.Shop, error) {
	args := m.Called(limit)
	return args.Get(0).([]models.Shop), args.Error(1)
}

func (m *MockShopRepository) Count() (int64, error) {
	args := m.Called()
	return args.Get(0).(int64), args.Error(1)
}

// MockReviewRepository is a mock implementation of repositories.ReviewRepository
type MockReviewRepository struct {
	mock.Mock
}

func (m *MockReviewRepository) Create(review *models.Review) error {
	return m.Called(review).Error(0)
}

func (m *MockReviewRepository) ExistsForOrder(orderID string) (bool, error) {
	args := m.Called(orderID)
	return args.Bool(0), args.Error(1)
}

func (m *MockReviewRepository) ListByShop(shopID string) ([]models.Review, error) {
	args := m.Called(shopID)
	return args.Get(0).([]models.Review), args.Error(1)
}

func (m *MockReviewRepository) Summaries(shopIDs ...string) (map[string]models.RatingSummary, error) {
	args := m.Called(shopIDs)
	return args.Get(0).(map[string]models.RatingSummary), args.Error(1)
}

// MockShopProductRepository is a mock implementation of repositories.ShopProductRepository
type MockShopProductRepository struct {
	mock.Mock
}

func (m *MockShopProductRepository) Create(product *models.ShopProduct) error {
	return m.Called(product).Error(0)
}

func (m *MockShopProductRepository) GetByID(id string) (*models.ShopProduct, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ShopProduct), args.Error(1)
}

func (m *MockShopProductRepository) Update(product *models.ShopProduct) error {
	return m.Called(product).Error(0)
}

func (m *MockShopProductRepository) ListByShop(shopID string) ([]models.ShopProduct, error) {
	args := m.Called(shopID)
	return args.Get(0).([]models.ShopProduct), args.Error(1)
}

func (m *MockShopProductRepository) ListAvailable(shopID, category, search string) ([]models.ShopProduct, error) {
	args := m.Called(shopID, category, search)
	return args.Get(0).([]models.ShopProduct), args.Error(1)
}

func (m *MockShopProductRepository) Categories(shopID string) ([]string, error) {
	args := m.Called(shopID)
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockShopProductRepository) Exists(shopID, globalProductID string) (bool, error) {
	args := m.Called(shopID, globalProductID)
	return args.Bool(0), args.Error(1)
}

func (m *MockShopProductRepository) CountByShop(shopID string) (int64, error) {
	args := m.Called(shopID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockShopProductRepository) FindForShop(shopID string, ids []string) ([]models.ShopProduct, error) {
	args := m.Called(shopID, ids)
	return args.Get(0).([]models.ShopProduct), args.Error(1)
}

// MockGlobalProductRepository is a mock implementation of repositories.GlobalProductRepository
type MockGlobalProductRepository struct {
	mock.Mock
}

func (m *MockGlobalProductRepository) Create(product *models.GlobalProduct) error {
	return m.Called(product).Error(0)
}

func (m *MockGlobalProductRepository) GetByID(id string) (*models.GlobalProduct, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GlobalProduct), args.Error(1)
}

func (m *MockGlobalProductRepository) Update(product *models.GlobalProduct) error {
	return m.Called(product).Error(0)
}

func (m *MockGlobalProductRepository) List(approvedOnly bool) ([]models.GlobalProduct, error) {
	args := m.Called(approvedOnly)
	return args.Get(0).([]models.GlobalProduct), args.Error(1)
}

func (m *MockGlobalProductRepository) Count() (int64, error) {
	args := m.Called()
	return args.Get(0).(int64), args.Error(1)
}

// MockProductRequestRepository is a mock implementation of repositories.ProductRequestRepository
type MockProductRequestRepository struct {
	mock.Mock
}

func (m *MockProductRequestRepository) Create(req *models.ProductRequest) error {
	return m.Called(req).Error(0)
}

func (m *MockProductRequestRepository) GetByID(id string) (*models.ProductRequest, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ProductRequest), args.Error(1)
}

func (m *MockProductRequestRepository) List(status models.ProductRequestStatus) ([]models.ProductRequest, error) {
	args := m.Called(status)
	return args.Get(0).([]models.ProductRequest), args.Error(1)
}

func (m *MockProductRequestRepository) ListByShop(shopID string) ([]models.ProductRequest, error) {
	args := m.Called(shopID)
	return args.Get(0).([]models.ProductRequest), args.Error(1)
}

func (m *MockProductRequestRepository) Approve(requestID string, product *models.GlobalProduct) error {
	return m.Called(requestID, product).Error(0)
}

func (m *MockProductRequestRepository) Reject(requestID string) error {
	return m.Called(requestID).Error(0)
}

func (m *MockProductRequestRepository) CountPending() (int64, error) {
	args := m.Called()
	return args.Get(0).(int64), args.Error(1)
}

// MockOrderRepository is a mock implementation of repositories.OrderRepository
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) Place(order *models.Order) error {
	return m.Called(order).Error(0)
}

func (m *MockOrderRepository) GetByID(id string) (*models.Order, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockOrderRepository) ListByConsumer(consumerID string) ([]models.Order, error) {
	args := m.Called(consumerID)
	return args.Get(0).([]models.Order), args.Error(1)
}

func (m *MockOrderRepository) ListByShop(shopID string, statuses ...models.OrderStatus) ([]models.Order, error) {
	args := m.Called(shopID, statuses)
	return args.Get(0).([]models.Order), args.Error(1)
}

func (m *MockOrderRepository) ListByDeliveryPartner(partnerID string) ([]models.Order, error) {
	args := m.Called(partnerID)
	return args.Get(0).([]models.Order), args.Error(1)
}

func (m *MockOrderRepository) TransitionStatus(id string, from, to models.OrderStatus, completedAt *time.Time) error {
	return m.Called(id, from, to, completedAt).Error(0)
}

func (m *MockOrderRepository) AssignDeliveryPartner(id, partnerID string) error {
	return m.Called(id, partnerID).Error(0)
}

func (m *MockOrderRepository) Count() (int64, error) {
	args := m.Called()
	return args.Get(0).(int64), args.Error(1)
}

// MockInvoiceRepository is a mock implementation of repositories.InvoiceRepository
type MockInvoiceRepository struct {
	mock.Mock
}

func (m *MockInvoiceRepository) Create(invoice *models.Invoice) error {
	return m.Called(invoice).Error(0)
}

func (m *MockInvoiceRepository) GetByOrderID(orderID string) (*models.Invoice, error) {
	args := m.Called(orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Invoice), args.Error(1)
}

// MockAddressRepository is a mock implementation of repositories.AddressRepository
type MockAddressRepository struct {
	mock.Mock
}

func (m *MockAddressRepository) Create(addr *models.Address) error {
	return m.Called(addr).Error(0)
}

func (m *MockAddressRepository) ListByConsumer(consumerID string) ([]models.Address, error) {
	args := m.Called(consumerID)
	return args.Get(0).([]models.Address), args.Error(1)
}

func (m *MockAddressRepository) Delete(id, consumerID string) error {
	return m.Called(id, consumerID).Error(0)
}

func (m *MockAddressRepository) SetDefault(id, consumerID string) error {
	return m.Called(id, consumerID).Error(0)
}

// MockPublisher records published events.
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, evt events.Event) error {
	return m.Called(ctx, evt).Error(0)
}

// MockImageStore is a mock implementation of services.ImageStore
type MockImageStore struct {
	mock.Mock
}

func (m *MockImageStore) Save(r io.Reader) (*storage.StoredImage, error) {
	args := m.Called(r)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.StoredImage), args.Error(1)
}
