// Package server assembles repositories, services and handlers into the
// Fiber application.
package server

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
	"gorm.io/gorm"

	"grocery/internal/config"
	"grocery/internal/events"
	"grocery/internal/geo"
	"grocery/internal/handlers"
	"grocery/internal/middleware"
	"grocery/internal/models"
	"grocery/internal/repositories"
	"grocery/internal/services"
	"grocery/pkg/cache"
	"grocery/pkg/storage"
)

// bodyLimit leaves room for a full-size image plus form fields.
const bodyLimit = storage.MaxImageSize + 1<<20

// Options are the dependencies of a Server.
type Options struct {
	Config *config.Config
	DB     *gorm.DB
	Cache  cache.Store
	Images *storage.ImageStore
	Events events.Bus
	// AccessLog enables the request logger middleware.
	AccessLog bool
}

// Server is the HTTP application and the services behind it.
type Server struct {
	App *fiber.App

	Auth     *services.AuthService
	Users    *services.UserService
	Shops    *services.ShopService
	Catalog  *services.CatalogService
	Orders   *services.OrderService
	Invoices *services.InvoiceService
	Admin    *services.AdminService

	db  *gorm.DB
	bus events.Bus
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	if code == fiber.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.Path()).Msg("unhandled request error")
		return c.Status(code).JSON(fiber.Map{"message": "Internal server error"})
	}
	return c.Status(code).JSON(fiber.Map{"message": err.Error()})
}

// New wires every layer and registers the routes.
func New(opts Options) *Server {
	cfg := opts.Config

	userRepo := repositories.NewGORMUserRepository(opts.DB)
	addressRepo := repositories.NewGORMAddressRepository(opts.DB)
	shopRepo := repositories.NewGORMShopRepository(opts.DB)
	reviewRepo := repositories.NewGORMReviewRepository(opts.DB)
	globalRepo := repositories.NewGORMGlobalProductRepository(opts.DB)
	shopProductRepo := repositories.NewGORMShopProductRepository(opts.DB)
	requestRepo := repositories.NewGORMProductRequestRepository(opts.DB)
	orderRepo := repositories.NewGORMOrderRepository(opts.DB)
	invoiceRepo := repositories.NewGORMInvoiceRepository(opts.DB)

	var images services.ImageStore
	if opts.Images != nil {
		images = opts.Images
	}
	origin := geo.Point{Latitude: cfg.DefaultLatitude, Longitude: cfg.DefaultLongitude}

	s := &Server{
		Auth:     services.NewAuthService(userRepo, cfg.JWTSecret, cfg.JWTTTL),
		Users:    services.NewUserService(userRepo, addressRepo),
		Shops:    services.NewShopService(shopRepo, reviewRepo, shopProductRepo, orderRepo, opts.Cache, origin, cfg.DefaultSearchRadiusKm),
		Catalog:  services.NewCatalogService(globalRepo, shopProductRepo, requestRepo, shopRepo, images),
		Orders:   services.NewOrderService(orderRepo, shopRepo, shopProductRepo, userRepo, reviewRepo, opts.Cache, opts.Events),
		Invoices: services.NewInvoiceService(invoiceRepo, orderRepo),
		Admin:    services.NewAdminService(shopRepo, globalRepo, orderRepo, userRepo, requestRepo),
		db:       opts.DB,
		bus:      opts.Events,
	}

	app := fiber.New(fiber.Config{
		AppName:      "grocery",
		BodyLimit:    bodyLimit,
		ErrorHandler: errorHandler,
	})
	app.Use(recover.New())
	if opts.AccessLog {
		app.Use(logger.New())
	}

	app.Get("/health", s.handleHealth)
	if opts.Images != nil {
		handlers.NewMediaHandler(opts.Images).RegisterRoutes(app)
	}

	api := app.Group("/api/v1")
	auth := middleware.AuthRequired(s.Auth)
	routes := handlers.Routes{
		API:       api,
		ShopOwner: api.Group("/shop-owner", auth, middleware.RequireRole(models.RoleShopOwner)),
		Admin:     api.Group("/admin", auth, middleware.RequireRole(models.RoleAdmin)),
		Delivery:  api.Group("/delivery", auth, middleware.RequireRole(models.RoleDeliveryPartner)),
		Auth:      auth,
		Optional:  middleware.OptionalAuth(s.Auth),
		Consumer:  middleware.RequireRole(models.RoleConsumer),
		Throttle:  middleware.RateLimit(rate.Limit(cfg.AuthRateLimit), cfg.AuthRateBurst),
	}

	handlers.NewAuthHandler(s.Auth).RegisterRoutes(routes)
	handlers.NewProfileHandler(s.Users).RegisterRoutes(routes)
	handlers.NewNavigationHandler().RegisterRoutes(routes)
	handlers.NewShopHandler(s.Shops, s.Catalog).RegisterRoutes(routes)
	handlers.NewCatalogHandler(s.Catalog).RegisterRoutes(routes)
	handlers.NewOrderHandler(s.Orders, s.Invoices, s.Users).RegisterRoutes(routes)
	handlers.NewAdminHandler(s.Admin, s.Users, s.Shops).RegisterRoutes(routes)

	s.App = app
	return s
}

// StartConsumers subscribes the background order event handlers.
func (s *Server) StartConsumers(ctx context.Context) error {
	if s.bus == nil {
		return nil
	}
	return s.bus.Subscribe(ctx, s.Invoices.HandleOrderEvent)
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	sqlDB, err := s.db.DB()
	if err == nil {
		err = sqlDB.PingContext(c.UserContext())
	}
	if err != nil {
		log.Warn().Err(err).Msg("health check: database unreachable")
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status":   "degraded",
			"time":     time.Now().Format(time.RFC3339),
			"database": "unreachable",
		})
	}
	return c.JSON(fiber.Map{
		"status":   "healthy",
		"time":     time.Now().Format(time.RFC3339),
		"database": "connected",
	})
}
