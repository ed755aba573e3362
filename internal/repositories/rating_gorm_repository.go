package repositories

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"storeapp/internal/models"
)

// GORMRatingRepository is a GORM implementation of RatingRepository.
type GORMRatingRepository struct {
	db *gorm.DB
}

// NewGORMRatingRepository creates a new instance of GORMRatingRepository.
func NewGORMRatingRepository(db *gorm.DB) *GORMRatingRepository {
	return &GORMRatingRepository{
		db: db,
	}
}

// GetByUserAndStore retrieves the rating a user gave a store, if any.
func (r *GORMRatingRepository) GetByUserAndStore(userID, storeID string) (*models.Rating, error) {
	var rating models.Rating
	if err := r.db.First(&rating, "user_id = ? AND store_id = ?", userID, storeID).Error; err != nil {
		return nil, fmt.Errorf("failed to get rating for user %s and store %s: %w", userID, storeID, err)
	}
	return &rating, nil
}

// Create inserts a new rating row. A duplicate-key violation
// (gorm.ErrDuplicatedKey) means another submission won the race for this
// (user, store) pair; callers fall back to UpdateValue.
func (r *GORMRatingRepository) Create(rating *models.Rating) error {
	if rating.ID == "" {
		rating.ID = uuid.New().String()
	}
	if err := r.db.Create(rating).Error; err != nil {
		return fmt.Errorf("failed to create rating: %w", err)
	}
	return nil
}

// UpdateValue rewrites the stored value for the pair in place.
func (r *GORMRatingRepository) UpdateValue(userID, storeID string, value int) error {
	res := r.db.Model(&models.Rating{}).
		Where("user_id = ? AND store_id = ?", userID, storeID).
		Update("rating", value)
	if res.Error != nil {
		return fmt.Errorf("failed to update rating: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("rating for user %s and store %s not found: %w", userID, storeID, gorm.ErrRecordNotFound)
	}
	return nil
}

// ListByUser returns the user's ratings joined with store identity,
// most recent first.
func (r *GORMRatingRepository) ListByUser(userID string) ([]models.UserRating, error) {
	var ratings []models.UserRating
	err := r.db.Model(&models.Rating{}).
		Select(`ratings.id, ratings.rating AS value, ratings.created_at,
stores.id AS store_id, stores.name AS store_name, stores.address AS store_address`).
		Joins("JOIN stores ON stores.id = ratings.store_id").
		Where("ratings.user_id = ?", userID).
		Order("ratings.created_at DESC").
		Scan(&ratings).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list ratings for user %s: %w", userID, err)
	}
	return ratings, nil
}

// RatersForStore returns the users who rated a store, newest first.
func (r *GORMRatingRepository) RatersForStore(storeID string) ([]models.StoreRater, error) {
	var raters []models.StoreRater
	err := r.db.Model(&models.Rating{}).
		Select(`users.id AS user_id, users.name, users.email,
ratings.rating AS value, ratings.created_at`).
		Joins("JOIN users ON users.id = ratings.user_id").
		Where("ratings.store_id = ?", storeID).
		Order("ratings.created_at DESC").
		Scan(&raters).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list raters for store %s: %w", storeID, err)
	}
	return raters, nil
}

// Aggregates computes the store's average and count from the rating rows
// at read time. A store with no ratings yields average 0, count 0.
func (r *GORMRatingRepository) Aggregates(storeID string) (*models.StoreAggregates, error) {
	var agg models.StoreAggregates
	err := r.db.Model(&models.Rating{}).
		Select("COALESCE(AVG(rating), 0) AS average_rating, COUNT(id) AS total_ratings").
		Where("store_id = ?", storeID).
		Scan(&agg).Error
	if err != nil {
		return nil, fmt.Errorf("failed to compute aggregates for store %s: %w", storeID, err)
	}
	return &agg, nil
}

// Count returns the total number of ratings.
func (r *GORMRatingRepository) Count() (int64, error) {
	var count int64
	if err := r.db.Model(&models.Rating{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count ratings: %w", err)
	}
	return count, nil
}
