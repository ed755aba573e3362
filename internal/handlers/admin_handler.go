package handlers

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"storeapp/internal/models"
	"storeapp/internal/repositories"
	"storeapp/internal/services"
)

// AdminHandler handles the administrator routes: platform stats, user
// and store management, and store provisioning.
type AdminHandler struct {
	adminService *services.AdminService
	storeService *services.StoreService
	validate     *validator.Validate
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(adminService *services.AdminService, storeService *services.StoreService) *AdminHandler {
	return &AdminHandler{
		adminService: adminService,
		storeService: storeService,
		validate:     newValidator(),
	}
}

// RegisterRoutes registers the admin routes on a router already scoped
// to the admin prefix and gated by AuthRequired + RequireAdmin.
func (h *AdminHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/dashboard", h.HandleDashboard)
	router.Get("/users", h.HandleListUsers)
	router.Get("/users/:id", h.HandleGetUser)
	router.Post("/users", h.HandleCreateUser)
	router.Delete("/users/:id", h.HandleDeleteUser)
	router.Get("/stores", h.HandleListStores)
	router.Post("/stores", h.HandleCreateStore)
	router.Delete("/stores/:id", h.HandleDeleteStore)
}

// HandleDashboard returns platform-wide totals.
func (h *AdminHandler) HandleDashboard(c *fiber.Ctx) error {
	stats, err := h.adminService.Stats()
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"stats":   stats,
	})
}

// HandleListUsers lists users with search, role filter, and sorting.
func (h *AdminHandler) HandleListUsers(c *fiber.Ctx) error {
	users, err := h.adminService.ListUsers(repositories.UserListFilter{
		Search:    c.Query("search"),
		Role:      c.Query("role"),
		SortBy:    c.Query("sortBy", "name"),
		SortOrder: c.Query("sortOrder", "ASC"),
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"users":   users,
	})
}

// HandleGetUser returns one user, with the owned store's rating for
// store owners.
func (h *AdminHandler) HandleGetUser(c *fiber.Ctx) error {
	user, err := h.adminService.GetUser(c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"user":    user,
	})
}

// CreateUserRequest is the request body for creating an account with an
// explicit role.
type CreateUserRequest struct {
	Name     string `json:"name" validate:"required,min=3,max=60"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,password"`
	Address  string `json:"address" validate:"omitempty,max=400"`
	Role     string `json:"role" validate:"omitempty,oneof=admin user store_owner"`
}

// HandleCreateUser adds a standalone account.
func (h *AdminHandler) HandleCreateUser(c *fiber.Ctx) error {
	var req CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid request body",
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return validationFail(c, err)
	}
	if req.Role == "" {
		req.Role = string(models.RoleUser)
	}

	user, err := h.adminService.CreateUser(req.Name, req.Email, req.Password, req.Address, models.Role(req.Role))
	if err != nil {
		logrus.Warnf("Admin create user failed for %s: %v", req.Email, err)
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "User added successfully",
		"userId":  user.ID,
	})
}

// HandleDeleteUser removes a user and cascades their ratings.
func (h *AdminHandler) HandleDeleteUser(c *fiber.Ctx) error {
	if err := h.adminService.DeleteUser(c.Params("id")); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "User deleted",
	})
}

// HandleListStores lists stores with aggregates and sorting.
func (h *AdminHandler) HandleListStores(c *fiber.Ctx) error {
	stores, err := h.adminService.ListStores(repositories.StoreListFilter{
		Search:    c.Query("search"),
		SortBy:    c.Query("sortBy", "name"),
		SortOrder: c.Query("sortOrder", "ASC"),
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"stores":  stores,
	})
}

// CreateStoreRequest is the request body for the store+owner
// provisioning flow.
type CreateStoreRequest struct {
	Name          string `json:"name" validate:"required,min=3,max=60"`
	Email         string `json:"email" validate:"required,email"`
	Address       string `json:"address" validate:"omitempty,max=400"`
	OwnerEmail    string `json:"ownerEmail" validate:"required,email"`
	OwnerPassword string `json:"ownerPassword" validate:"required,password"`
}

// HandleCreateStore provisions a store and its owner account atomically.
func (h *AdminHandler) HandleCreateStore(c *fiber.Ctx) error {
	var req CreateStoreRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid request body",
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return validationFail(c, err)
	}

	store, err := h.storeService.CreateStoreWithOwner(req.Name, req.Email, req.Address, req.OwnerEmail, req.OwnerPassword)
	if err != nil {
		logrus.Warnf("Store provisioning failed for %s: %v", req.Email, err)
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Store and owner added successfully",
		"storeId": store.ID,
	})
}

// HandleDeleteStore removes a store and cascades its ratings.
func (h *AdminHandler) HandleDeleteStore(c *fiber.Ctx) error {
	if err := h.storeService.DeleteStore(c.Params("id")); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Store deleted",
	})
}
