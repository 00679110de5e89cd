package handlers

import (
	"github.com/gofiber/fiber/v2"

	"grocery/internal/access"
	"grocery/internal/middleware"
)

// NavigationHandler tells clients whether the caller may open a page.
type NavigationHandler struct{}

// NewNavigationHandler creates a new NavigationHandler.
func NewNavigationHandler() *NavigationHandler {
	return &NavigationHandler{}
}

// RegisterRoutes registers the navigation routes.
func (h *NavigationHandler) RegisterRoutes(r Routes) {
	r.API.Get("/navigation/resolve", r.Optional, h.HandleResolve)
}

// HandleResolve answers GET /navigation/resolve?path=/consumer/checkout.
func (h *NavigationHandler) HandleResolve(c *fiber.Ctx) error {
	path := c.Query("path", "/")
	return c.JSON(access.Resolve(path, middleware.CurrentUser(c)))
}
