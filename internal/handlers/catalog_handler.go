package handlers

import (
	"io"
	"mime/multipart"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"grocery/internal/middleware"
	"grocery/internal/models"
	"grocery/internal/services"
)

const imageFormField = "image"

// CatalogHandler serves the global catalog, product requests and shop listings.
type CatalogHandler struct {
	catalogService *services.CatalogService
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(catalogService *services.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

// RegisterRoutes registers the catalog routes.
func (h *CatalogHandler) RegisterRoutes(r Routes) {
	r.Admin.Get("/products", h.HandleListGlobalProducts)
	r.Admin.Post("/products", h.HandleCreateGlobalProduct)
	r.Admin.Put("/products/:id", h.HandleUpdateGlobalProduct)
	r.Admin.Put("/products/:id/approve", h.HandleApproveGlobalProduct)
	r.Admin.Post("/products/:id/image", h.HandleUploadImage)
	r.Admin.Get("/product-requests", h.HandleListProductRequests)
	r.Admin.Put("/product-requests/:id/approve", h.HandleApproveProductRequest)
	r.Admin.Put("/product-requests/:id/reject", h.HandleRejectProductRequest)

	r.ShopOwner.Get("/catalog", h.HandleBrowseCatalog)
	r.ShopOwner.Get("/products", h.HandleListOwnProducts)
	r.ShopOwner.Post("/products", h.HandleAddShopProduct)
	r.ShopOwner.Put("/products/:id", h.HandleUpdateShopProduct)
	r.ShopOwner.Get("/product-requests", h.HandleListOwnRequests)
	r.ShopOwner.Post("/product-requests", h.HandleSubmitRequest)
}

type globalProductRequest struct {
	Name        string `json:"name" form:"name" validate:"required,max=200"`
	Description string `json:"description" form:"description"`
	Category    string `json:"category" form:"category" validate:"required,max=100"`
	BaseUnit    string `json:"base_unit" form:"base_unit" validate:"required,max=50"`
}

func (r globalProductRequest) input() services.GlobalProductInput {
	return services.GlobalProductInput{
		Name:        r.Name,
		Description: r.Description,
		Category:    r.Category,
		BaseUnit:    r.BaseUnit,
	}
}

// formImage opens the image part of a multipart request. It returns a nil
// file when the request carries none.
func formImage(c *fiber.Ctx) (multipart.File, error) {
	header, err := c.FormFile(imageFormField)
	if err != nil {
		return nil, nil
	}
	return header.Open()
}

// HandleListGlobalProducts lists every catalog entry.
func (h *CatalogHandler) HandleListGlobalProducts(c *fiber.Ctx) error {
	products, err := h.catalogService.ListGlobalProducts(false)
	if err != nil {
		return respondError(c, err, "Could not retrieve products")
	}
	return c.JSON(products)
}

// HandleCreateGlobalProduct accepts JSON or a multipart form with an optional image.
func (h *CatalogHandler) HandleCreateGlobalProduct(c *fiber.Ctx) error {
	var req globalProductRequest
	if err := parseBody(c, &req); err != nil {
		return badRequest(c, err)
	}
	file, err := formImage(c)
	if err != nil {
		return badRequest(c, err)
	}
	var image io.Reader
	if file != nil {
		defer file.Close()
		image = file
	}

	product, err := h.catalogService.CreateGlobalProduct(middleware.CurrentUser(c).ID, req.input(), image)
	if err != nil {
		return respondError(c, err, "Could not create product")
	}
	return c.Status(fiber.StatusCreated).JSON(product)
}

// HandleUpdateGlobalProduct edits a catalog entry.
func (h *CatalogHandler) HandleUpdateGlobalProduct(c *fiber.Ctx) error {
	var req globalProductRequest
	if err := parseBody(c, &req); err != nil {
		return badRequest(c, err)
	}
	product, err := h.catalogService.UpdateGlobalProduct(c.Params("id"), req.input())
	if err != nil {
		return respondError(c, err, "Could not update product")
	}
	return c.JSON(product)
}

// HandleApproveGlobalProduct approves a catalog entry.
func (h *CatalogHandler) HandleApproveGlobalProduct(c *fiber.Ctx) error {
	product, err := h.catalogService.ApproveGlobalProduct(c.Params("id"))
	if err != nil {
		return respondError(c, err, "Could not approve product")
	}
	return c.JSON(product)
}

// HandleUploadImage replaces a catalog entry's image.
func (h *CatalogHandler) HandleUploadImage(c *fiber.Ctx) error {
	file, err := formImage(c)
	if err != nil {
		return badRequest(c, err)
	}
	if file == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "An image file is required",
		})
	}
	defer file.Close()

	product, err := h.catalogService.UploadProductImage(c.Params("id"), file)
	if err != nil {
		return respondError(c, err, "Could not upload image")
	}
	return c.JSON(product)
}

// HandleListProductRequests lists requests, optionally by ?status=.
func (h *CatalogHandler) HandleListProductRequests(c *fiber.Ctx) error {
	requests, err := h.catalogService.ListProductRequests(models.ProductRequestStatus(c.Query("status")))
	if err != nil {
		return respondError(c, err, "Could not retrieve product requests")
	}
	return c.JSON(requests)
}

// HandleApproveProductRequest creates the requested catalog entry.
func (h *CatalogHandler) HandleApproveProductRequest(c *fiber.Ctx) error {
	product, err := h.catalogService.ApproveProductRequest(middleware.CurrentUser(c).ID, c.Params("id"))
	if err != nil {
		return respondError(c, err, "Could not approve request")
	}
	return c.JSON(fiber.Map{
		"message": "Product request approved",
		"product": product,
	})
}

// HandleRejectProductRequest closes a request.
func (h *CatalogHandler) HandleRejectProductRequest(c *fiber.Ctx) error {
	if err := h.catalogService.RejectProductRequest(c.Params("id")); err != nil {
		return respondError(c, err, "Could not reject request")
	}
	return c.JSON(fiber.Map{"message": "Product request rejected"})
}

// HandleBrowseCatalog lists the approved catalog for shop owners.
func (h *CatalogHandler) HandleBrowseCatalog(c *fiber.Ctx) error {
	products, err := h.catalogService.ListGlobalProducts(true)
	if err != nil {
		return respondError(c, err, "Could not retrieve catalog")
	}
	return c.JSON(products)
}

// HandleListOwnProducts lists the owner's shop products.
func (h *CatalogHandler) HandleListOwnProducts(c *fiber.Ctx) error {
	products, err := h.catalogService.ListOwnShopProducts(middleware.CurrentUser(c).ID)
	if err != nil {
		return respondError(c, err, "Could not retrieve products")
	}
	return c.JSON(products)
}

type shopProductRequest struct {
	GlobalProductID string          `json:"global_product_id"`
	Price           decimal.Decimal `json:"price"`
	StockQuantity   int             `json:"stock_quantity" validate:"gte=0"`
	IsAvailable     *bool           `json:"is_available"`
}

func (r shopProductRequest) input() services.ShopProductInput {
	in := services.ShopProductInput{
		GlobalProductID: r.GlobalProductID,
		Price:           r.Price,
		StockQuantity:   r.StockQuantity,
		IsAvailable:     true,
	}
	if r.IsAvailable != nil {
		in.IsAvailable = *r.IsAvailable
	}
	return in
}

// HandleAddShopProduct lists a catalog entry in the owner's shop.
func (h *CatalogHandler) HandleAddShopProduct(c *fiber.Ctx) error {
	var req shopProductRequest
	if err := parseBody(c, &req); err != nil {
		return badRequest(c, err)
	}
	if req.GlobalProductID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"errors":  fiber.Map{"global_product_id": "Field 'global_product_id' failed on the 'required' tag"},
		})
	}
	product, err := h.catalogService.AddShopProduct(middleware.CurrentUser(c).ID, req.input())
	if err != nil {
		return respondError(c, err, "Could not add product")
	}
	return c.Status(fiber.StatusCreated).JSON(product)
}

// HandleUpdateShopProduct edits price, stock and availability.
func (h *CatalogHandler) HandleUpdateShopProduct(c *fiber.Ctx) error {
	var req shopProductRequest
	if err := parseBody(c, &req); err != nil {
		return badRequest(c, err)
	}
	product, err := h.catalogService.UpdateShopProduct(middleware.CurrentUser(c).ID, c.Params("id"), req.input())
	if err != nil {
		return respondError(c, err, "Could not update product")
	}
	return c.JSON(product)
}

// HandleListOwnRequests lists the owner's product requests.
func (h *CatalogHandler) HandleListOwnRequests(c *fiber.Ctx) error {
	requests, err := h.catalogService.ListOwnProductRequests(middleware.CurrentUser(c).ID)
	if err != nil {
		return respondError(c, err, "Could not retrieve product requests")
	}
	return c.JSON(requests)
}

type productRequestBody struct {
	ProductName string `json:"product_name" validate:"required,max=200"`
	Description string `json:"description"`
	Category    string `json:"category" validate:"max=100"`
	BaseUnit    string `json:"base_unit" validate:"max=50"`
}

// HandleSubmitRequest asks administrators for a new catalog entry.
func (h *CatalogHandler) HandleSubmitRequest(c *fiber.Ctx) error {
	var req productRequestBody
	if err := parseBody(c, &req); err != nil {
		return badRequest(c, err)
	}
	request, err := h.catalogService.SubmitProductRequest(middleware.CurrentUser(c).ID, services.GlobalProductInput{
		Name:        req.ProductName,
		Description: req.Description,
		Category:    req.Category,
		BaseUnit:    req.BaseUnit,
	})
	if err != nil {
		return respondError(c, err, "Could not submit request")
	}
	return c.Status(fiber.StatusCreated).JSON(request)
}
