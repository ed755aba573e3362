package services

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"storeapp/internal/apperr"
	"storeapp/internal/models"
	"storeapp/internal/repositories"
	"storeapp/internal/retry"
	"storeapp/pkg/rabbitmq"
)

// StoreService handles store listings, the atomic store+owner
// provisioning flow, and store-owner self-service.
type StoreService struct {
	storeRepo  repositories.StoreRepository
	userRepo   repositories.UserRepository
	ratingRepo repositories.RatingRepository
	publisher  EventPublisher
	retryPol   retry.Policy
}

// NewStoreService creates a new StoreService.
func NewStoreService(
	storeRepo repositories.StoreRepository,
	userRepo repositories.UserRepository,
	ratingRepo repositories.RatingRepository,
	publisher EventPublisher,
	retryPol retry.Policy,
) *StoreService {
	return &StoreService{
		storeRepo:  storeRepo,
		userRepo:   userRepo,
		ratingRepo: ratingRepo,
		publisher:  publisher,
		retryPol:   retryPol,
	}
}

// ListStores returns all stores with aggregates, filtered by name,
// email, or address. When userID is set each row carries that user's own
// rating.
func (s *StoreService) ListStores(search, userID string) ([]models.StoreWithAggregates, error) {
	stores, err := s.storeRepo.List(repositories.StoreListFilter{
		Search: search,
		UserID: userID,
	})
	if err != nil {
		return nil, apperr.Wrap(err, apperr.KindFatalStorage, "failed to fetch stores")
	}
	return stores, nil
}

// GetStore returns one store with aggregates plus the requesting user's
// own rating, when present.
func (s *StoreService) GetStore(storeID, userID string) (*models.StoreWithAggregates, error) {
	store, err := s.storeRepo.GetWithAggregates(storeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.KindNotFound, "store not found")
		}
		return nil, apperr.Wrap(err, apperr.KindFatalStorage, "failed to fetch store")
	}
	if userID != "" {
		if rating, err := s.ratingRepo.GetByUserAndStore(userID, storeID); err == nil {
			store.UserRating = &rating.Value
		}
	}
	return store, nil
}

// CreateStoreWithOwner provisions a store together with its owner
// account. Preconditions (no store with that email, no user with the
// owner email) are checked before any mutation; the two inserts and the
// cross-link update then run in one transaction, retried as a whole on
// transient lock contention. The owner's password is hashed up front and
// the plaintext is never persisted or logged.
func (s *StoreService) CreateStoreWithOwner(storeName, storeEmail, address, ownerEmail, ownerPassword string) (*models.Store, error) {
	if _, err := s.storeRepo.GetByEmail(storeEmail); err == nil {
		return nil, apperr.New(apperr.KindConflict, "store already exists with email %s", storeEmail)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.Wrap(err, apperr.KindFatalStorage, "failed to check existing store")
	}
	if _, err := s.userRepo.GetByEmail(ownerEmail); err == nil {
		return nil, apperr.New(apperr.KindConflict, "owner email already exists")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.Wrap(err, apperr.KindFatalStorage, "failed to check existing owner")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(ownerPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash owner password: %w", err)
	}

	store := &models.Store{
		Name:    storeName,
		Email:   storeEmail,
		Address: address,
	}
	owner := &models.User{
		Name:     storeName,
		Email:    ownerEmail,
		Password: string(hashed),
		Address:  address,
	}

	err = s.retryPol.Do("store provisioning", func() error {
		return s.storeRepo.CreateWithOwner(store, owner)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.New(apperr.KindConflict, "store or owner email already exists")
		}
		return nil, apperr.Wrap(err, apperr.KindFatalStorage, "failed to provision store")
	}

	publishEvent(s.publisher, rabbitmq.StoreProvisionedKey, map[string]interface{}{
		"storeId": store.ID,
		"ownerId": owner.ID,
		"name":    store.Name,
	})
	return store, nil
}

// DeleteStore removes a store and cascades its ratings; the owner
// account survives with its store link cleared.
func (s *StoreService) DeleteStore(storeID string) error {
	if err := s.storeRepo.Delete(storeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.New(apperr.KindNotFound, "store not found")
		}
		return apperr.Wrap(err, apperr.KindFatalStorage, "failed to delete store")
	}
	publishEvent(s.publisher, rabbitmq.StoreDeletedKey, map[string]interface{}{
		"storeId": storeID,
	})
	return nil
}

// ResolveOwnerStore finds the store behind a store-owner session. The
// live owner_id relationship is the source of truth; the token's
// embedded store claim is consulted only when no row matches, covering
// tokens issued before the store existed.
func (s *StoreService) ResolveOwnerStore(ident *models.SessionIdentity) (*models.Store, error) {
	store, err := s.storeRepo.GetByOwnerID(ident.UserID)
	if err == nil {
		return store, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.Wrap(err, apperr.KindFatalStorage, "failed to look up owned store")
	}

	if ident.StoreID != "" {
		store, err := s.storeRepo.GetByID(ident.StoreID)
		if err == nil {
			// A stale claim must not resolve a store that has since been
			// linked to a different owner.
			if store.OwnerID == nil || *store.OwnerID == ident.UserID {
				return store, nil
			}
			return nil, apperr.New(apperr.KindNotFound, "no store linked to this account")
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Wrap(err, apperr.KindFatalStorage, "failed to look up claimed store")
		}
	}
	return nil, apperr.New(apperr.KindNotFound, "no store linked to this account")
}

// OwnerDashboard returns the owner's store with aggregates plus the
// users who rated it.
func (s *StoreService) OwnerDashboard(ident *models.SessionIdentity) (*models.StoreWithAggregates, []models.StoreRater, error) {
	store, err := s.ResolveOwnerStore(ident)
	if err != nil {
		return nil, nil, err
	}
	withAgg, err := s.storeRepo.GetWithAggregates(store.ID)
	if err != nil {
		return nil, nil, apperr.Wrap(err, apperr.KindFatalStorage, "failed to fetch store")
	}
	raters, err := s.ratingRepo.RatersForStore(store.ID)
	if err != nil {
		return nil, nil, apperr.Wrap(err, apperr.KindFatalStorage, "failed to fetch raters")
	}
	return withAgg, raters, nil
}

// DeleteOwnStore lets a store owner delete their own store, resolved the
// same way the dashboard resolves it.
func (s *StoreService) DeleteOwnStore(ident *models.SessionIdentity) error {
	store, err := s.ResolveOwnerStore(ident)
	if err != nil {
		return err
	}
	return s.DeleteStore(store.ID)
}
