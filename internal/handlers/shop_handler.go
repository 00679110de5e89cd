package handlers

import (
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"grocery/internal/middleware"
	"grocery/internal/services"
)

// ShopHandler serves the public shop pages and the shop owner's own shop.
type ShopHandler struct {
	shopService    *services.ShopService
	catalogService *services.CatalogService
}

// NewShopHandler creates a new ShopHandler.
func NewShopHandler(shopService *services.ShopService, catalogService *services.CatalogService) *ShopHandler {
	return &ShopHandler{shopService: shopService, catalogService: catalogService}
}

// RegisterRoutes registers the shop routes.
func (h *ShopHandler) RegisterRoutes(r Routes) {
	shops := r.API.Group("/shops")
	shops.Get("/nearby", h.HandleNearby)
	shops.Get("/:id", h.HandleGetShop)
	shops.Get("/:id/products", h.HandleListProducts)
	shops.Get("/:id/categories", h.HandleListCategories)
	shops.Get("/:id/reviews", h.HandleListReviews)

	r.ShopOwner.Post("/shop", h.HandleCreateShop)
	r.ShopOwner.Get("/shop", h.HandleGetOwnShop)
	r.ShopOwner.Put("/settings", h.HandleUpdateSettings)
	r.ShopOwner.Get("/dashboard", h.HandleDashboard)
	r.ShopOwner.Get("/reports", h.HandleReports)
}

func optionalFloat(c *fiber.Ctx, keys ...string) (*float64, error) {
	for _, key := range keys {
		raw := c.Query(key)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %s must be a number", services.ErrValidation, key)
		}
		return &v, nil
	}
	return nil, nil
}

// HandleNearby answers GET /shops/nearby?lat=&lng=&radius=&q=&sort=.
func (h *ShopHandler) HandleNearby(c *fiber.Ctx) error {
	lat, err := optionalFloat(c, "lat", "latitude")
	if err != nil {
		return respondError(c, err, "Invalid search")
	}
	lng, err := optionalFloat(c, "lng", "lon", "longitude")
	if err != nil {
		return respondError(c, err, "Invalid search")
	}
	radius, err := optionalFloat(c, "radius")
	if err != nil {
		return respondError(c, err, "Invalid search")
	}

	q := services.NearbyQuery{
		Latitude:  lat,
		Longitude: lng,
		Search:    c.Query("q"),
		SortBy:    c.Query("sort"),
	}
	if radius != nil {
		q.RadiusKm = *radius
	}
	result, err := h.shopService.Nearby(c.UserContext(), q)
	if err != nil {
		return respondError(c, err, "Could not search shops")
	}
	return c.JSON(result)
}

// HandleGetShop returns one visible shop with its rating.
func (h *ShopHandler) HandleGetShop(c *fiber.Ctx) error {
	shop, err := h.shopService.GetShop(c.Params("id"))
	if err != nil {
		return respondError(c, err, "Could not retrieve shop")
	}
	return c.JSON(shop)
}

// HandleListProducts lists what a shop currently sells.
func (h *ShopHandler) HandleListProducts(c *fiber.Ctx) error {
	products, err := h.catalogService.ListShopProducts(c.Params("id"), c.Query("category"), c.Query("q"))
	if err != nil {
		return respondError(c, err, "Could not retrieve products")
	}
	return c.JSON(products)
}

// HandleListCategories lists the categories of a shop's products.
func (h *ShopHandler) HandleListCategories(c *fiber.Ctx) error {
	categories, err := h.catalogService.ListShopCategories(c.Params("id"))
	if err != nil {
		return respondError(c, err, "Could not retrieve categories")
	}
	return c.JSON(categories)
}

// HandleListReviews lists a shop's reviews.
func (h *ShopHandler) HandleListReviews(c *fiber.Ctx) error {
	reviews, err := h.shopService.ListReviews(c.Params("id"))
	if err != nil {
		return respondError(c, err, "Could not retrieve reviews")
	}
	return c.JSON(reviews)
}

type shopRequest struct {
	Name            string   `json:"name" validate:"required,max=150"`
	Description     string   `json:"description"`
	Address         string   `json:"address"`
	Latitude        float64  `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude       float64  `json:"longitude" validate:"gte=-180,lte=180"`
	DeliveryRangeKm *float64 `json:"delivery_range_km" validate:"omitempty,gte=0"`
	IsActive        *bool    `json:"is_active"`
}

func (r shopRequest) input() services.ShopInput {
	return services.ShopInput{
		Name:            r.Name,
		Description:     r.Description,
		Address:         r.Address,
		Latitude:        r.Latitude,
		Longitude:       r.Longitude,
		DeliveryRangeKm: r.DeliveryRangeKm,
		IsActive:        r.IsActive,
	}
}

// HandleCreateShop opens the owner's shop.
func (h *ShopHandler) HandleCreateShop(c *fiber.Ctx) error {
	var req shopRequest
	if err := parseBody(c, &req); err != nil {
		return badRequest(c, err)
	}
	shop, err := h.shopService.CreateShop(c.UserContext(), middleware.CurrentUser(c).ID, req.input())
	if err != nil {
		return respondError(c, err, "Could not create shop")
	}
	return c.Status(fiber.StatusCreated).JSON(shop)
}

// HandleGetOwnShop returns the owner's shop.
func (h *ShopHandler) HandleGetOwnShop(c *fiber.Ctx) error {
	shop, err := h.shopService.GetOwnShop(middleware.CurrentUser(c).ID)
	if err != nil {
		return respondError(c, err, "Could not retrieve shop")
	}
	return c.JSON(shop)
}

// HandleUpdateSettings edits the owner's shop.
func (h *ShopHandler) HandleUpdateSettings(c *fiber.Ctx) error {
	var req shopRequest
	if err := parseBody(c, &req); err != nil {
		return badRequest(c, err)
	}
	shop, err := h.shopService.UpdateSettings(c.UserContext(), middleware.CurrentUser(c).ID, req.input())
	if err != nil {
		return respondError(c, err, "Could not update shop")
	}
	return c.JSON(shop)
}

// HandleDashboard returns the owner's shop summary.
func (h *ShopHandler) HandleDashboard(c *fiber.Ctx) error {
	dashboard, err := h.shopService.Dashboard(middleware.CurrentUser(c).ID)
	if err != nil {
		return respondError(c, err, "Could not load dashboard")
	}
	return c.JSON(dashboard)
}

// HandleReports returns the sales report of the owner's shop.
func (h *ShopHandler) HandleReports(c *fiber.Ctx) error {
	report, err := h.shopService.Reports(middleware.CurrentUser(c).ID)
	if err != nil {
		return respondError(c, err, "Could not build report")
	}
	return c.JSON(report)
}
