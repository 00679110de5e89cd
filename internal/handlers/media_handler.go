package handlers

import (
	"errors"
	"os"

	"github.com/gofiber/fiber/v2"

	"grocery/pkg/storage"
)

// MediaStore reads stored uploads back.
type MediaStore interface {
	Open(p string) ([]byte, string, error)
}

// MediaHandler serves uploaded product images.
type MediaHandler struct {
	store MediaStore
}

// NewMediaHandler creates a new MediaHandler.
func NewMediaHandler(store MediaStore) *MediaHandler {
	return &MediaHandler{store: store}
}

// RegisterRoutes mounts /media/* on the application root.
func (h *MediaHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/media/*", h.HandleGet)
}

// HandleGet streams one stored file.
func (h *MediaHandler) HandleGet(c *fiber.Ctx) error {
	data, contentType, err := h.store.Open(c.Params("*"))
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrInvalidPath):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid media path"})
		case errors.Is(err, os.ErrNotExist):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Media not found"})
		}
		return respondError(c, err, "Could not read media")
	}
	c.Set(fiber.HeaderContentType, contentType)
	c.Set(fiber.HeaderCacheControl, "public, max-age=86400")
	return c.Send(data)
}
