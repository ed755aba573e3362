package handlers

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"storeapp/internal/middleware"
	"storeapp/internal/services"
)

// RatingHandler handles rating submission and the caller's rating
// history.
type RatingHandler struct {
	ratingService *services.RatingService
	validate      *validator.Validate
}

// NewRatingHandler creates a new RatingHandler.
func NewRatingHandler(ratingService *services.RatingService) *RatingHandler {
	return &RatingHandler{
		ratingService: ratingService,
		validate:      newValidator(),
	}
}

// RegisterRoutes registers the rating routes; all require
// authentication.
func (h *RatingHandler) RegisterRoutes(router fiber.Router) {
	ratingRoutes := router.Group("/ratings")
	ratingRoutes.Post("/", h.HandleSubmitRating)
	ratingRoutes.Get("/my-ratings", h.HandleMyRatings)
}

// SubmitRatingRequest is the request body for a rating submission.
type SubmitRatingRequest struct {
	StoreID string `json:"storeId" validate:"required"`
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
}

// HandleSubmitRating upserts the caller's rating of a store: 201 when a
// new rating was created, 200 when an existing one was overwritten.
func (h *RatingHandler) HandleSubmitRating(c *fiber.Ctx) error {
	var req SubmitRatingRequest
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
	outcome, err := h.ratingService.SubmitRating(ident.UserID, req.StoreID, req.Rating)
	if err != nil {
		logrus.Debugf("Rating submission by %s failed: %v", ident.UserID, err)
		return fail(c, err)
	}

	if outcome == services.RatingUpdated {
		return c.JSON(fiber.Map{
			"success": true,
			"message": "Rating updated successfully",
		})
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Rating submitted successfully",
	})
}

// HandleMyRatings lists the caller's ratings, most recent first.
func (h *RatingHandler) HandleMyRatings(c *fiber.Ctx) error {
	ident := middleware.Identity(c)
	ratings, err := h.ratingService.ListMyRatings(ident.UserID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"ratings": ratings,
	})
}
