package handlers

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"storeapp/internal/middleware"
	"storeapp/internal/services"
)

// UserHandler handles account self-service for the logged-in user.
type UserHandler struct {
	authService *services.AuthService
	validate    *validator.Validate
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(authService *services.AuthService) *UserHandler {
	return &UserHandler{
		authService: authService,
		validate:    newValidator(),
	}
}

// RegisterRoutes registers the user routes; all require authentication.
func (h *UserHandler) RegisterRoutes(router fiber.Router) {
	userRoutes := router.Group("/users")
	userRoutes.Get("/profile", h.HandleProfile)
	userRoutes.Put("/change-password", h.HandleChangePassword)
}

// HandleProfile returns the calling user's account.
func (h *UserHandler) HandleProfile(c *fiber.Ctx) error {
	ident := middleware.Identity(c)
	user, err := h.authService.Profile(ident.UserID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"user":    user,
	})
}

// ChangePasswordRequest is the request body for a password change.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,password"`
}

// HandleChangePassword verifies the current password and replaces it.
func (h *UserHandler) HandleChangePassword(c *fiber.Ctx) error {
	var req ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid request body",
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return validationFail(c, err)
	}

	ident := middleware.Identity(c)
	if err := h.authService.ChangePassword(ident.UserID, req.CurrentPassword, req.NewPassword); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Password updated successfully",
	})
}
