package services

import (
	"grocery/internal/models"
	"grocery/internal/repositories"
)

const dashboardListLimit = 5

// AdminDashboard holds the platform totals shown to administrators.
type AdminDashboard struct {
	ShopCount       int64                   `json:"shop_count"`
	ProductCount    int64                   `json:"product_count"`
	OrderCount      int64                   `json:"order_count"`
	UserCount       int64                   `json:"user_count"`
	PendingRequests int64                   `json:"pending_request_count"`
	PendingShops    []models.Shop           `json:"pending_shops"`
	RecentRequests  []models.ProductRequest `json:"pending_requests"`
}

// AdminService builds the administrator dashboard.
type AdminService struct {
	shopRepo    repositories.ShopRepository
	globalRepo  repositories.GlobalProductRepository
	orderRepo   repositories.OrderRepository
	userRepo    repositories.UserRepository
	requestRepo repositories.ProductRequestRepository
}

// NewAdminService creates a new AdminService.
func NewAdminService(
	shopRepo repositories.ShopRepository,
	globalRepo repositories.GlobalProductRepository,
	orderRepo repositories.OrderRepository,
	userRepo repositories.UserRepository,
	requestRepo repositories.ProductRequestRepository,
) *AdminService {
	return &AdminService{
		shopRepo:    shopRepo,
		globalRepo:  globalRepo,
		orderRepo:   orderRepo,
		userRepo:    userRepo,
		requestRepo: requestRepo,
	}
}

// Dashboard collects the totals and the newest items awaiting a decision.
func (s *AdminService) Dashboard() (*AdminDashboard, error) {
	var (
		d   AdminDashboard
		err error
	)
	if d.ShopCount, err = s.shopRepo.Count(); err != nil {
		return nil, err
	}
	if d.ProductCount, err = s.globalRepo.Count(); err != nil {
		return nil, err
	}
	if d.OrderCount, err = s.orderRepo.Count(); err != nil {
		return nil, err
	}
	if d.UserCount, err = s.userRepo.Count(); err != nil {
		return nil, err
	}
	if d.PendingRequests, err = s.requestRepo.CountPending(); err != nil {
		return nil, err
	}
	if d.PendingShops, err = s.shopRepo.ListAwaitingApproval(dashboardListLimit); err != nil {
		return nil, err
	}
	requests, err := s.requestRepo.List(models.RequestPending)
	if err != nil {
		return nil, err
	}
	if len(requests) > dashboardListLimit {
		requests = requests[:dashboardListLimit]
	}
	d.RecentRequests = requests
	return &d, nil
}
