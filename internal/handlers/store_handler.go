package handlers

import (
	"github.com/gofiber/fiber/v2"

	"storeapp/internal/middleware"
	"storeapp/internal/services"
)

// StoreHandler handles the public store views. Authentication is
// optional here; when a token is present the listings carry the caller's
// own ratings.
type StoreHandler struct {
	storeService *services.StoreService
}

// NewStoreHandler creates a new StoreHandler.
func NewStoreHandler(storeService *services.StoreService) *StoreHandler {
	return &StoreHandler{
		storeService: storeService,
	}
}

// RegisterRoutes registers the store routes with the Fiber app.
func (h *StoreHandler) RegisterRoutes(router fiber.Router) {
	storeRoutes := router.Group("/stores")
	storeRoutes.Get("/", h.HandleListStores)
	storeRoutes.Get("/:id", h.HandleGetStore)
}

func callerID(c *fiber.Ctx) string {
	if ident := middleware.Identity(c); ident != nil {
		return ident.UserID
	}
	return ""
}

// HandleListStores lists all stores with live aggregates, optionally
// filtered by a search term.
func (h *StoreHandler) HandleListStores(c *fiber.Ctx) error {
	stores, err := h.storeService.ListStores(c.Query("search"), callerID(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"stores":  stores,
	})
}

// HandleGetStore returns one store with aggregates and the caller's own
// rating when known.
func (h *StoreHandler) HandleGetStore(c *fiber.Ctx) error {
	store, err := h.storeService.GetStore(c.Params("id"), callerID(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{
		"success":    true,
		"store":      store,
		"userRating": store.UserRating,
	})
}
