package handlers

import (
	"github.com/gofiber/fiber/v2"

	"grocery/internal/middleware"
	"grocery/internal/models"
	"grocery/internal/services"
)

// ProfileHandler serves the caller's own profile and saved addresses.
type ProfileHandler struct {
	userService *services.UserService
}

// NewProfileHandler creates a new ProfileHandler.
func NewProfileHandler(userService *services.UserService) *ProfileHandler {
	return &ProfileHandler{userService: userService}
}

// RegisterRoutes registers the profile routes.
func (h *ProfileHandler) RegisterRoutes(r Routes) {
	me := r.API.Group("/me")
	me.Get("/", r.Auth, h.HandleGetProfile)
	me.Put("/", r.Auth, h.HandleUpdateProfile)

	me.Get("/addresses", r.Auth, r.Consumer, h.HandleListAddresses)
	me.Post("/addresses", r.Auth, r.Consumer, h.HandleAddAddress)
	me.Delete("/addresses/:id", r.Auth, r.Consumer, h.HandleDeleteAddress)
	me.Put("/addresses/:id/default", r.Auth, r.Consumer, h.HandleSetDefaultAddress)
}

// HandleGetProfile returns the authenticated user.
func (h *ProfileHandler) HandleGetProfile(c *fiber.Ctx) error {
	user, err := h.userService.GetProfile(middleware.CurrentUser(c).ID)
	if err != nil {
		return respondError(c, err, "Could not retrieve profile")
	}
	return c.JSON(user)
}

type profileRequest struct {
	FullName string `json:"full_name" validate:"required"`
	Phone    string `json:"phone"`
}

// HandleUpdateProfile changes the caller's name and phone number.
func (h *ProfileHandler) HandleUpdateProfile(c *fiber.Ctx) error {
	var req profileRequest
	if err := parseBody(c, &req); err != nil {
		return badRequest(c, err)
	}
	user, err := h.userService.UpdateProfile(middleware.CurrentUser(c).ID, req.FullName, req.Phone)
	if err != nil {
		return respondError(c, err, "Could not update profile")
	}
	return c.JSON(user)
}

// HandleListAddresses lists the consumer's addresses, default first.
func (h *ProfileHandler) HandleListAddresses(c *fiber.Ctx) error {
	addresses, err := h.userService.ListAddresses(middleware.CurrentUser(c).ID)
	if err != nil {
		return respondError(c, err, "Could not retrieve addresses")
	}
	return c.JSON(addresses)
}

type addressRequest struct {
	Label     string  `json:"label" validate:"max=60"`
	Address   string  `json:"address" validate:"required,max=500"`
	Latitude  float64 `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude float64 `json:"longitude" validate:"gte=-180,lte=180"`
	IsDefault bool    `json:"is_default"`
}

// HandleAddAddress saves a new address.
func (h *ProfileHandler) HandleAddAddress(c *fiber.Ctx) error {
	var req addressRequest
	if err := parseBody(c, &req); err != nil {
		return badRequest(c, err)
	}
	addr := &models.Address{
		Label:     req.Label,
		Address:   req.Address,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		IsDefault: req.IsDefault,
	}
	if err := h.userService.AddAddress(middleware.CurrentUser(c).ID, addr); err != nil {
		return respondError(c, err, "Could not save address")
	}
	return c.Status(fiber.StatusCreated).JSON(addr)
}

// HandleDeleteAddress removes one of the consumer's addresses.
func (h *ProfileHandler) HandleDeleteAddress(c *fiber.Ctx) error {
	if err := h.userService.DeleteAddress(middleware.CurrentUser(c).ID, c.Params("id")); err != nil {
		return respondError(c, err, "Could not delete address")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// HandleSetDefaultAddress makes an address the default one.
func (h *ProfileHandler) HandleSetDefaultAddress(c *fiber.Ctx) error {
	if err := h.userService.SetDefaultAddress(middleware.CurrentUser(c).ID, c.Params("id")); err != nil {
		return respondError(c, err, "Could not update address")
	}
	return c.JSON(fiber.Map{"message": "Default address updated"})
}
