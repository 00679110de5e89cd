package handlers

import "github.com/gofiber/fiber/v2"

// Routes are the route groups and guards handlers attach to. The role
// groups already run authentication and the matching role check.
type Routes struct {
	API       fiber.Router // /api/v1, public
	ShopOwner fiber.Router // /api/v1/shop-owner
	Admin     fiber.Router // /api/v1/admin
	Delivery  fiber.Router // /api/v1/delivery

	Auth     fiber.Handler // rejects guests
	Optional fiber.Handler // lets guests through
	Consumer fiber.Handler // consumers only; run after Auth
	Throttle fiber.Handler // per-IP rate limit for credential endpoints
}
