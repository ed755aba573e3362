package repositories

import "storeapp/internal/models"

// RatingRepository defines the interface for rating data access. The
// (user_id, store_id) uniqueness constraint at the storage layer is the
// serialization point for concurrent submissions; Create surfaces a
// duplicate-key violation so the caller can fall back to UpdateValue.
type RatingRepository interface {
	GetByUserAndStore(userID, storeID string) (*models.Rating, error)
	Create(rating *models.Rating) error
	// UpdateValue rewrites the value for the (user, store) pair in
	// place, preserving the rating's identity and bumping updated_at.
	UpdateValue(userID, storeID string, value int) error
	ListByUser(userID string) ([]models.UserRating, error)
	RatersForStore(storeID string) ([]models.StoreRater, error)
	Aggregates(storeID string) (*models.StoreAggregates, error)
	Count() (int64, error)
}
