package handlers

import (
	"github.com/gofiber/fiber/v2"

	"grocery/internal/middleware"
	"grocery/internal/models"
	"grocery/internal/services"
)

const idempotencyHeader = "Idempotency-Key"

// OrderHandler handles HTTP requests for orders.
type OrderHandler struct {
	orderService   *services.OrderService
	invoiceService *services.InvoiceService
	userService    *services.UserService
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(orderService *services.OrderService, invoiceService *services.InvoiceService, userService *services.UserService) *OrderHandler {
	return &OrderHandler{
		orderService:   orderService,
		invoiceService: invoiceService,
		userService:    userService,
	}
}

// RegisterRoutes registers the order routes.
func (h *OrderHandler) RegisterRoutes(r Routes) {
	orderRoutes := r.API.Group("/orders")
	orderRoutes.Post("/", r.Optional, h.HandleCheckout)
	orderRoutes.Get("/", r.Auth, r.Consumer, h.HandleListOrders)
	orderRoutes.Get("/:id", r.Optional, h.HandleGetOrder)
	orderRoutes.Get("/:id/invoice", r.Optional, h.HandleGetInvoice)
	orderRoutes.Post("/:id/review", r.Auth, r.Consumer, h.HandleReview)

	r.ShopOwner.Get("/orders", h.HandleListShopOrders)
	r.ShopOwner.Put("/orders/:id/status", h.HandleUpdateStatus)
	r.ShopOwner.Put("/orders/:id/assign", h.HandleAssignPartner)
	r.ShopOwner.Get("/delivery-partners", h.HandleListPartners)
	r.ShopOwner.Post("/pos/orders", h.HandleCreatePOSOrder)

	r.Delivery.Get("/orders", h.HandleListAssigned)
	r.Delivery.Put("/orders/:id/delivered", h.HandleMarkDelivered)
}

type cartItemRequest struct {
	ShopProductID string `json:"shop_product_id" validate:"required"`
	Quantity      int    `json:"quantity" validate:"gte=1"`
}

func cartItems(items []cartItemRequest) []services.CartItem {
	out := make([]services.CartItem, len(items))
	for i, item := range items {
		out[i] = services.CartItem{ShopProductID: item.ShopProductID, Quantity: item.Quantity}
	}
	return out
}

type checkoutRequest struct {
	ShopID            string            `json:"shop_id" validate:"required"`
	OrderType         string            `json:"order_type" validate:"required,oneof=delivery pickup"`
	DeliveryAddress   string            `json:"delivery_address" validate:"required_if=OrderType delivery,max=500"`
	DeliveryLatitude  *float64          `json:"delivery_latitude" validate:"omitempty,gte=-90,lte=90"`
	DeliveryLongitude *float64          `json:"delivery_longitude" validate:"omitempty,gte=-180,lte=180"`
	PaymentMethod     string            `json:"payment_method" validate:"max=30"`
	GuestName         string            `json:"guest_name" validate:"max=150"`
	GuestEmail        string            `json:"guest_email" validate:"omitempty,email"`
	GuestPhone        string            `json:"guest_phone" validate:"max=30"`
	Items             []cartItemRequest `json:"items" validate:"required,min=1,max=50,dive"`
}

// HandleCheckout places an order for the logged-in consumer or a guest.
func (h *OrderHandler) HandleCheckout(c *fiber.Ctx) error {
	var req checkoutRequest
	if err := parseBody(c, &req); err != nil {
		return badRequest(c, err)
	}
	paymentMethod := req.PaymentMethod
	if paymentMethod == "" {
		paymentMethod = "cash"
	}

	order, err := h.orderService.Checkout(c.UserContext(), middleware.CurrentUser(c), services.CheckoutInput{
		ShopID:            req.ShopID,
		OrderType:         models.OrderType(req.OrderType),
		DeliveryAddress:   req.DeliveryAddress,
		DeliveryLatitude:  req.DeliveryLatitude,
		DeliveryLongitude: req.DeliveryLongitude,
		PaymentMethod:     paymentMethod,
		GuestName:         req.GuestName,
		GuestEmail:        req.GuestEmail,
		GuestPhone:        req.GuestPhone,
		Items:             cartItems(req.Items),
	}, c.Get(idempotencyHeader))
	if err != nil {
		return respondError(c, err, "Could not place order")
	}
	return c.Status(fiber.StatusCreated).JSON(order)
}

// HandleListOrders lists the consumer's orders, newest first.
func (h *OrderHandler) HandleListOrders(c *fiber.Ctx) error {
	orders, err := h.orderService.ListConsumerOrders(middleware.CurrentUser(c).ID)
	if err != nil {
		return respondError(c, err, "Could not retrieve orders")
	}
	return c.JSON(orders)
}

// HandleGetOrder retrieves a single order by its ID.
func (h *OrderHandler) HandleGetOrder(c *fiber.Ctx) error {
	order, err := h.orderService.GetOrder(middleware.CurrentUser(c), c.Params("id"))
	if err != nil {
		return respondError(c, err, "Could not retrieve order")
	}
	return c.JSON(order)
}

// HandleGetInvoice returns the invoice of an order.
func (h *OrderHandler) HandleGetInvoice(c *fiber.Ctx) error {
	view, err := h.invoiceService.GetInvoice(middleware.CurrentUser(c), c.Params("id"))
	if err != nil {
		return respondError(c, err, "Could not retrieve invoice")
	}
	return c.JSON(view)
}

type reviewRequest struct {
	Rating     int    `json:"rating" validate:"required,min=1,max=5"`
	ReviewText string `json:"review_text" validate:"max=2000"`
}

// HandleReview rates the shop of a finished order.
func (h *OrderHandler) HandleReview(c *fiber.Ctx) error {
	var req reviewRequest
	if err := parseBody(c, &req); err != nil {
		return badRequest(c, err)
	}
	review, err := h.orderService.SubmitReview(c.UserContext(), middleware.CurrentUser(c).ID, c.Params("id"), req.Rating, req.ReviewText)
	if err != nil {
		return respondError(c, err, "Could not submit review")
	}
	return c.Status(fiber.StatusCreated).JSON(review)
}

// HandleListShopOrders lists the owner's shop orders, optionally by ?status=.
func (h *OrderHandler) HandleListShopOrders(c *fiber.Ctx) error {
	orders, err := h.orderService.ListShopOrders(middleware.CurrentUser(c).ID, models.OrderStatus(c.Query("status")))
	if err != nil {
		return respondError(c, err, "Could not retrieve orders")
	}
	return c.JSON(orders)
}

type statusRequest struct {
	Status string `json:"status" validate:"required"`
}

// HandleUpdateStatus updates the status of an existing order.
func (h *OrderHandler) HandleUpdateStatus(c *fiber.Ctx) error {
	var req statusRequest
	if err := parseBody(c, &req); err != nil {
		return badRequest(c, err)
	}
	order, err := h.orderService.UpdateStatus(c.UserContext(), middleware.CurrentUser(c).ID, c.Params("id"), models.OrderStatus(req.Status))
	if err != nil {
		return respondError(c, err, "Order update failed")
	}
	return c.JSON(order)
}

type assignRequest struct {
	DeliveryPartnerID string `json:"delivery_partner_id" validate:"required"`
}

// HandleAssignPartner hands a ready delivery order to a delivery partner.
func (h *OrderHandler) HandleAssignPartner(c *fiber.Ctx) error {
	var req assignRequest
	if err := parseBody(c, &req); err != nil {
		return badRequest(c, err)
	}
	order, err := h.orderService.AssignDeliveryPartner(c.UserContext(), middleware.CurrentUser(c).ID, c.Params("id"), req.DeliveryPartnerID)
	if err != nil {
		return respondError(c, err, "Could not assign delivery partner")
	}
	return c.JSON(order)
}

// HandleListPartners lists the active delivery partners.
func (h *OrderHandler) HandleListPartners(c *fiber.Ctx) error {
	partners, err := h.userService.ListDeliveryPartners()
	if err != nil {
		return respondError(c, err, "Could not retrieve delivery partners")
	}
	return c.JSON(partners)
}

type posRequest struct {
	PaymentMethod string            `json:"payment_method" validate:"required,oneof=cash card"`
	CustomerName  string            `json:"customer_name" validate:"max=150"`
	CustomerPhone string            `json:"customer_phone" validate:"max=30"`
	Items         []cartItemRequest `json:"items" validate:"required,min=1,max=50,dive"`
}

// HandleCreatePOSOrder records a walk-in sale.
func (h *OrderHandler) HandleCreatePOSOrder(c *fiber.Ctx) error {
	var req posRequest
	if err := parseBody(c, &req); err != nil {
		return badRequest(c, err)
	}
	order, err := h.orderService.CreatePOSOrder(c.UserContext(), middleware.CurrentUser(c).ID, services.POSInput{
		PaymentMethod: req.PaymentMethod,
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
		Items:         cartItems(req.Items),
	})
	if err != nil {
		return respondError(c, err, "Could not record sale")
	}
	return c.Status(fiber.StatusCreated).JSON(order)
}

// HandleListAssigned lists the delivery partner's orders.
func (h *OrderHandler) HandleListAssigned(c *fiber.Ctx) error {
	orders, err := h.orderService.ListAssignedOrders(middleware.CurrentUser(c).ID)
	if err != nil {
		return respondError(c, err, "Could not retrieve orders")
	}
	return c.JSON(orders)
}

// HandleMarkDelivered completes a delivery.
func (h *OrderHandler) HandleMarkDelivered(c *fiber.Ctx) error {
	order, err := h.orderService.MarkDelivered(c.UserContext(), middleware.CurrentUser(c).ID, c.Params("id"))
	if err != nil {
		return respondError(c, err, "Could not update order")
	}
	return c.JSON(order)
}
