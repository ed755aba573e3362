package handlers

import (
	"github.com/gofiber/fiber/v2"

	"storeapp/internal/middleware"
	"storeapp/internal/services"
)

// OwnerHandler handles the store-owner self-service routes. The store is
// resolved from the live owner_id relationship, with the token's store
// claim as fallback, so both paths agree for the same account.
type OwnerHandler struct {
	storeService *services.StoreService
}

// NewOwnerHandler creates a new OwnerHandler.
func NewOwnerHandler(storeService *services.StoreService) *OwnerHandler {
	return &OwnerHandler{
		storeService: storeService,
	}
}

// RegisterRoutes registers the store-owner routes on a router already
// scoped to the owner prefix and gated by AuthRequired +
// RequireStoreOwner.
func (h *OwnerHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/dashboard", h.HandleDashboard)
	router.Delete("/store", h.HandleDeleteStore)
}

// HandleDashboard returns the owner's store with aggregates and the
// users who rated it.
func (h *OwnerHandler) HandleDashboard(c *fiber.Ctx) error {
	ident := middleware.Identity(c)
	store, raters, err := h.storeService.OwnerDashboard(ident)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{
		"success":     true,
		"store":       store,
		"ratingUsers": raters,
	})
}

// HandleDeleteStore lets the owner delete their own store.
func (h *OwnerHandler) HandleDeleteStore(c *fiber.Ctx) error {
	ident := middleware.Identity(c)
	if err := h.storeService.DeleteOwnStore(ident); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Store deleted",
	})
}
