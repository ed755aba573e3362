package services

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"storeapp/internal/apperr"
	"storeapp/internal/models"
	"storeapp/internal/repositories"
	"storeapp/pkg/rabbitmq"
)

// DashboardStats are the platform-wide totals on the admin dashboard.
type DashboardStats struct {
	TotalUsers   int64 `json:"totalUsers"`
	TotalStores  int64 `json:"totalStores"`
	TotalRatings int64 `json:"totalRatings"`
}

// UserDetail is a user as the admin sees it; for store owners it carries
// the owned store's average rating.
type UserDetail struct {
	models.User
	StoreRating *float64 `json:"storeRating,omitempty"`
}

// AdminService backs the administrator views: platform stats, user and
// store management.
type AdminService struct {
	userRepo   repositories.UserRepository
	storeRepo  repositories.StoreRepository
	ratingRepo repositories.RatingRepository
	publisher  EventPublisher
}

// NewAdminService creates a new AdminService.
func NewAdminService(
	userRepo repositories.UserRepository,
	storeRepo repositories.StoreRepository,
	ratingRepo repositories.RatingRepository,
	publisher EventPublisher,
) *AdminService {
	return &AdminService{
		userRepo:   userRepo,
		storeRepo:  storeRepo,
		ratingRepo: ratingRepo,
		publisher:  publisher,
	}
}

// Stats returns total user, store, and rating counts.
func (s *AdminService) Stats() (*DashboardStats, error) {
	users, err := s.userRepo.Count()
	if err != nil {
		return nil, apperr.Wrap(err, apperr.KindFatalStorage, "failed to count users")
	}
	stores, err := s.storeRepo.Count()
	if err != nil {
		return nil, apperr.Wrap(err, apperr.KindFatalStorage, "failed to count stores")
	}
	ratings, err := s.ratingRepo.Count()
	if err != nil {
		return nil, apperr.Wrap(err, apperr.KindFatalStorage, "failed to count ratings")
	}
	return &DashboardStats{TotalUsers: users, TotalStores: stores, TotalRatings: ratings}, nil
}

// ListUsers returns users matching the filter, without password hashes.
func (s *AdminService) ListUsers(filter repositories.UserListFilter) ([]models.User, error) {
	users, err := s.userRepo.List(filter)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.KindFatalStorage, "failed to list users")
	}
	return users, nil
}

// GetUser returns one user; for a store owner with a linked store the
// store's average rating is attached.
func (s *AdminService) GetUser(id string) (*UserDetail, error) {
	user, err := s.userRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.KindNotFound, "user not found")
		}
		return nil, apperr.Wrap(err, apperr.KindFatalStorage, "failed to fetch user")
	}
	user.Password = ""

	detail := &UserDetail{User: *user}
	if user.Role == models.RoleStoreOwner && user.StoreID != nil {
		agg, err := s.ratingRepo.Aggregates(*user.StoreID)
		if err != nil {
			return nil, apperr.Wrap(err, apperr.KindFatalStorage, "failed to fetch store rating")
		}
		detail.StoreRating = &agg.AverageRating
	}
	return detail, nil
}

// CreateUser adds a standalone account with an explicit role. A single
// insert with an existence check; no cross-linkage, so no transaction.
func (s *AdminService) CreateUser(name, email, password, address string, role models.Role) (*models.User, error) {
	role = models.NormalizeRole(string(role))
	if _, err := s.userRepo.GetByEmail(email); err == nil {
		return nil, apperr.New(apperr.KindConflict, "user already exists with email %s", email)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.Wrap(err, apperr.KindFatalStorage, "failed to check existing user")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Name:     name,
		Email:    email,
		Password: string(hashed),
		Address:  address,
		Role:     role,
	}
	if err := s.userRepo.Create(user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.New(apperr.KindConflict, "user already exists with email %s", email)
		}
		return nil, apperr.Wrap(err, apperr.KindFatalStorage, "failed to create user")
	}
	user.Password = ""
	return user, nil
}

// ListStores returns stores with aggregates for the admin listing.
func (s *AdminService) ListStores(filter repositories.StoreListFilter) ([]models.StoreWithAggregates, error) {
	stores, err := s.storeRepo.List(filter)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.KindFatalStorage, "failed to list stores")
	}
	return stores, nil
}

// DeleteUser removes a user, cascading their ratings and clearing
// ownership on any store they owned.
func (s *AdminService) DeleteUser(id string) error {
	if err := s.userRepo.Delete(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.New(apperr.KindNotFound, "user not found")
		}
		return apperr.Wrap(err, apperr.KindFatalStorage, "failed to delete user")
	}
	publishEvent(s.publisher, rabbitmq.UserDeletedKey, map[string]interface{}{
		"userId": id,
	})
	return nil
}
