package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"grocery/internal/middleware"
	"grocery/internal/models"
	"grocery/internal/services"
)

// AdminHandler serves the administrator dashboard, users and shops.
type AdminHandler struct {
	adminService *services.AdminService
	userService  *services.UserService
	shopService  *services.ShopService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(adminService *services.AdminService, userService *services.UserService, shopService *services.ShopService) *AdminHandler {
	return &AdminHandler{adminService: adminService, userService: userService, shopService: shopService}
}

// RegisterRoutes registers the admin routes.
func (h *AdminHandler) RegisterRoutes(r Routes) {
	r.Admin.Get("/dashboard", h.HandleDashboard)
	r.Admin.Get("/users", h.HandleListUsers)
	r.Admin.Put("/users/:id/toggle-active", h.HandleToggleActive)
	r.Admin.Get("/shops", h.HandleListShops)
	r.Admin.Put("/shops/:id/status", h.HandleShopStatus)
}

// HandleDashboard returns platform totals.
func (h *AdminHandler) HandleDashboard(c *fiber.Ctx) error {
	dashboard, err := h.adminService.Dashboard()
	if err != nil {
		return respondError(c, err, "Could not load dashboard")
	}
	return c.JSON(dashboard)
}

// HandleListUsers lists users, optionally by ?role=.
func (h *AdminHandler) HandleListUsers(c *fiber.Ctx) error {
	users, err := h.userService.ListUsers(models.Role(c.Query("role")))
	if err != nil {
		return respondError(c, err, "Could not retrieve users")
	}
	return c.JSON(users)
}

// HandleToggleActive activates or deactivates a user.
func (h *AdminHandler) HandleToggleActive(c *fiber.Ctx) error {
	user, err := h.userService.ToggleActive(middleware.CurrentUser(c).ID, c.Params("id"))
	if err != nil {
		return respondError(c, err, "Could not update user")
	}
	return c.JSON(user)
}

// HandleListShops lists shops, optionally by ?approved=true|false.
func (h *AdminHandler) HandleListShops(c *fiber.Ctx) error {
	var approved *bool
	if raw := c.Query("approved"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "approved must be true or false",
			})
		}
		approved = &v
	}
	shops, err := h.shopService.ListShops(approved)
	if err != nil {
		return respondError(c, err, "Could not retrieve shops")
	}
	return c.JSON(shops)
}

type shopStatusRequest struct {
	Action string `json:"action" validate:"required"`
}

// HandleShopStatus approves, rejects, activates or deactivates a shop.
func (h *AdminHandler) HandleShopStatus(c *fiber.Ctx) error {
	var req shopStatusRequest
	if err := parseBody(c, &req); err != nil {
		return badRequest(c, err)
	}
	shop, err := h.shopService.SetStatus(c.UserContext(), c.Params("id"), services.ShopAction(req.Action))
	if err != nil {
		return respondError(c, err, "Could not update shop")
	}
	return c.JSON(shop)
}
