package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"grocery/internal/access"
	"grocery/internal/models"
	"grocery/internal/services"
)

// AuthHandler handles HTTP requests for authentication.
type AuthHandler struct {
	authService *services.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// RegisterRoutes registers the authentication routes.
func (h *AuthHandler) RegisterRoutes(r Routes) {
	authRoutes := r.API.Group("/auth")
	authRoutes.Post("/register", r.Throttle, h.HandleRegister)
	authRoutes.Post("/login", r.Throttle, h.HandleLogin)
}

// RegisterRequest is the body of a sign-up. Administrators are created
// from the command line only.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	FullName string `json:"full_name" validate:"required"`
	Phone    string `json:"phone"`
	Role     string `json:"role" validate:"required,oneof=consumer shop_owner delivery_partner"`
}

// HandleRegister handles new user registration.
func (h *AuthHandler) HandleRegister(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := parseBody(c, &req); err != nil {
		return badRequest(c, err)
	}

	user := models.User{
		Email:    req.Email,
		Password: req.Password,
		FullName: strings.TrimSpace(req.FullName),
		Phone:    strings.TrimSpace(req.Phone),
		Role:     models.Role(req.Role),
	}
	if err := h.authService.RegisterUser(&user); err != nil {
		return respondError(c, err, "Registration failed")
	}

	log.Info().Str("user_id", user.ID).Str("role", string(user.Role)).Msg("user registered")
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":  "User registered successfully",
		"user":     user,
		"redirect": access.DashboardPath(user.Role),
	})
}

// LoginRequest represents the request body for login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Redirect string `json:"redirect"`
}

// HandleLogin handles user login and issues a JWT token.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var req LoginRequest
	if err := parseBody(c, &req); err != nil {
		return badRequest(c, err)
	}

	token, user, err := h.authService.LoginUser(req.Email, req.Password)
	if err != nil {
		log.Debug().Err(err).Str("email", req.Email).Msg("login failed")
		return respondError(c, err, "Authentication failed")
	}

	redirect := access.DashboardPath(user.Role)
	if isLocalPath(req.Redirect) {
		redirect = req.Redirect
	}
	return c.JSON(fiber.Map{
		"message":  "Login successful",
		"token":    token,
		"user":     user,
		"redirect": redirect,
	})
}

// isLocalPath accepts only same-site absolute paths as post-login targets.
func isLocalPath(p string) bool {
	return strings.HasPrefix(p, "/") && !strings.HasPrefix(p, "//") && !strings.Contains(p, `\`)
}
