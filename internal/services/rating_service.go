package services

import (
	"errors"

	"gorm.io/gorm"

	"storeapp/internal/apperr"
	"storeapp/internal/models"
	"storeapp/internal/repositories"
	"storeapp/pkg/rabbitmq"
)

// Submission outcomes reported by SubmitRating.
const (
	RatingCreated = "created"
	RatingUpdated = "updated"
)

// RatingService enforces the one-rating-per-(user,store) invariant and
// computes live aggregates. Aggregates are derived from the rating rows
// on every read; there is no cache to go stale.
type RatingService struct {
	ratingRepo repositories.RatingRepository
	storeRepo  repositories.StoreRepository
	publisher  EventPublisher
}

// NewRatingService creates a new RatingService.
func NewRatingService(ratingRepo repositories.RatingRepository, storeRepo repositories.StoreRepository, publisher EventPublisher) *RatingService {
	return &RatingService{
		ratingRepo: ratingRepo,
		storeRepo:  storeRepo,
		publisher:  publisher,
	}
}

// SubmitRating records value as userID's rating of storeID, creating the
// row or overwriting the existing one. The existence check is a
// best-effort short-circuit; the storage-layer uniqueness constraint is
// what actually serializes concurrent submissions, so a duplicate-key
// error on insert means another submission won the race and we fall
// back to an update.
func (s *RatingService) SubmitRating(userID, storeID string, value int) (string, error) {
	if value < 1 || value > 5 {
		return "", apperr.New(apperr.KindValidation, "rating must be between 1 and 5")
	}

	if _, err := s.storeRepo.GetByID(storeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", apperr.New(apperr.KindNotFound, "store not found")
		}
		return "", apperr.Wrap(err, apperr.KindFatalStorage, "failed to look up store")
	}

	outcome := RatingCreated
	if _, err := s.ratingRepo.GetByUserAndStore(userID, storeID); err == nil {
		if err := s.ratingRepo.UpdateValue(userID, storeID, value); err != nil {
			return "", apperr.Wrap(err, apperr.KindFatalStorage, "failed to update rating")
		}
		outcome = RatingUpdated
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", apperr.Wrap(err, apperr.KindFatalStorage, "failed to look up rating")
	} else {
		rating := &models.Rating{UserID: userID, StoreID: storeID, Value: value}
		if err := s.ratingRepo.Create(rating); err != nil {
			if !errors.Is(err, gorm.ErrDuplicatedKey) {
				return "", apperr.Wrap(err, apperr.KindFatalStorage, "failed to create rating")
			}
			// Lost the insert race; the constraint serialized us.
			if err := s.ratingRepo.UpdateValue(userID, storeID, value); err != nil {
				return "", apperr.Wrap(err, apperr.KindFatalStorage, "failed to update rating")
			}
			outcome = RatingUpdated
		}
	}

	publishEvent(s.publisher, rabbitmq.RatingSubmittedKey, map[string]interface{}{
		"userId":  userID,
		"storeId": storeID,
		"rating":  value,
		"outcome": outcome,
	})
	return outcome, nil
}

// ComputeAggregates returns the store's average rating and rating count,
// consistent with the rating rows at read time.
func (s *RatingService) ComputeAggregates(storeID string) (*models.StoreAggregates, error) {
	if _, err := s.storeRepo.GetByID(storeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.KindNotFound, "store not found")
		}
		return nil, apperr.Wrap(err, apperr.KindFatalStorage, "failed to look up store")
	}
	agg, err := s.ratingRepo.Aggregates(storeID)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.KindFatalStorage, "failed to compute aggregates")
	}
	return agg, nil
}

// ListMyRatings returns all ratings by a user joined with store
// identity, most recent first.
func (s *RatingService) ListMyRatings(userID string) ([]models.UserRating, error) {
	ratings, err := s.ratingRepo.ListByUser(userID)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.KindFatalStorage, "failed to fetch ratings")
	}
	return ratings, nil
}

// StoreRaters returns the users who rated a store, newest first.
func (s *RatingService) StoreRaters(storeID string) ([]models.StoreRater, error) {
	raters, err := s.ratingRepo.RatersForStore(storeID)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.KindFatalStorage, "failed to fetch raters")
	}
	return raters, nil
}
