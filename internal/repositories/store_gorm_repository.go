package repositories

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"storeapp/internal/models"
)

// GORMStoreRepository is a GORM implementation of StoreRepository.
type GORMStoreRepository struct {
	db *gorm.DB
}

// NewGORMStoreRepository creates a new instance of GORMStoreRepository.
func NewGORMStoreRepository(db *gorm.DB) *GORMStoreRepository {
	return &GORMStoreRepository{
		db: db,
	}
}

// Create creates a standalone store without an owner.
func (r *GORMStoreRepository) Create(store *models.Store) error {
	if store.ID == "" {
		store.ID = uuid.New().String()
	}
	if err := r.db.Create(store).Error; err != nil {
		return fmt.Errorf("failed to create store: %w", err)
	}
	return nil
}

// GetByID retrieves a single store by its ID.
func (r *GORMStoreRepository) GetByID(id string) (*models.Store, error) {
	var store models.Store
	if err := r.db.First(&store, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("failed to get store by ID %s: %w", id, err)
	}
	return &store, nil
}

// GetByEmail retrieves a single store by its email.
func (r *GORMStoreRepository) GetByEmail(email string) (*models.Store, error) {
	var store models.Store
	if err := r.db.First(&store, "email = ?", email).Error; err != nil {
		return nil, fmt.Errorf("failed to get store by email %s: %w", email, err)
	}
	return &store, nil
}

// GetByOwnerID retrieves the store owned by the given user. This is the
// live source of truth for owner flows; token claims are only a
// fallback.
func (r *GORMStoreRepository) GetByOwnerID(ownerID string) (*models.Store, error) {
	var store models.Store
	if err := r.db.First(&store, "owner_id = ?", ownerID).Error; err != nil {
		return nil, fmt.Errorf("failed to get store by owner %s: %w", ownerID, err)
	}
	return &store, nil
}

// storeSortColumns whitelists the sortable columns of store listings.
var storeSortColumns = map[string]bool{
	"name":           true,
	"email":          true,
	"average_rating": true,
	"created_at":     true,
}

const storeAggregateSelect = `stores.id, stores.name, stores.email, stores.address, stores.created_at,
COALESCE(AVG(ratings.rating), 0) AS average_rating,
COUNT(ratings.id) AS total_ratings`

// List retrieves stores with their aggregates, computed from the rating
// rows at query time. When filter.UserID is set each row also carries
// that user's own rating.
func (r *GORMStoreRepository) List(filter StoreListFilter) ([]models.StoreWithAggregates, error) {
	sel := storeAggregateSelect
	args := []interface{}{}
	if filter.UserID != "" {
		sel += ",\n(SELECT rating FROM ratings WHERE ratings.user_id = ? AND ratings.store_id = stores.id) AS user_rating"
		args = append(args, filter.UserID)
	}

	q := r.db.Model(&models.Store{}).
		Select(sel, args...).
		Joins("LEFT JOIN ratings ON ratings.store_id = stores.id").
		Group("stores.id, stores.name, stores.email, stores.address, stores.created_at")

	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		q = q.Where("stores.name LIKE ? OR stores.email LIKE ? OR stores.address LIKE ?", like, like, like)
	}

	sortColumn := "name"
	if storeSortColumns[filter.SortBy] {
		sortColumn = filter.SortBy
	}
	if sortColumn != "average_rating" {
		sortColumn = "stores." + sortColumn
	}
	order := "ASC"
	if filter.SortOrder == "desc" || filter.SortOrder == "DESC" {
		order = "DESC"
	}

	var stores []models.StoreWithAggregates
	if err := q.Order(sortColumn + " " + order).Scan(&stores).Error; err != nil {
		return nil, fmt.Errorf("failed to list stores: %w", err)
	}
	return stores, nil
}

// GetWithAggregates retrieves one store with its aggregates.
func (r *GORMStoreRepository) GetWithAggregates(id string) (*models.StoreWithAggregates, error) {
	var store models.StoreWithAggregates
	res := r.db.Model(&models.Store{}).
		Select(storeAggregateSelect).
		Joins("LEFT JOIN ratings ON ratings.store_id = stores.id").
		Where("stores.id = ?", id).
		Group("stores.id, stores.name, stores.email, stores.address, stores.created_at").
		Scan(&store)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to get store %s with aggregates: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("store with ID %s not found: %w", id, gorm.ErrRecordNotFound)
	}
	return &store, nil
}

// CreateWithOwner provisions a store together with its owner account:
// insert store, insert owner carrying store_id, then backfill
// store.owner_id. The transaction rolls back as a whole if any step
// fails, so a half-linked pair can never persist.
func (r *GORMStoreRepository) CreateWithOwner(store *models.Store, owner *models.User) error {
	if store.ID == "" {
		store.ID = uuid.New().String()
	}
	if owner.ID == "" {
		owner.ID = uuid.New().String()
	}
	owner.Role = models.RoleStoreOwner
	owner.StoreID = &store.ID

	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(store).Error; err != nil {
			return fmt.Errorf("failed to create store: %w", err)
		}
		if err := tx.Create(owner).Error; err != nil {
			return fmt.Errorf("failed to create store owner: %w", err)
		}
		if err := tx.Model(&models.Store{}).Where("id = ?", store.ID).
			Update("owner_id", owner.ID).Error; err != nil {
			return fmt.Errorf("failed to link store owner: %w", err)
		}
		store.OwnerID = &owner.ID
		return nil
	})
}

// Delete removes a store, cascading its ratings and clearing store_id on
// the owning user. The owner account survives unlinked.
func (r *GORMStoreRepository) Delete(id string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("store_id = ?", id).Delete(&models.Rating{}).Error; err != nil {
			return fmt.Errorf("failed to delete store ratings: %w", err)
		}
		if err := tx.Model(&models.User{}).Where("store_id = ?", id).
			Update("store_id", nil).Error; err != nil {
			return fmt.Errorf("failed to unlink store owner: %w", err)
		}
		res := tx.Delete(&models.Store{}, "id = ?", id)
		if res.Error != nil {
			return fmt.Errorf("failed to delete store: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("store with ID %s not found for deletion: %w", id, gorm.ErrRecordNotFound)
		}
		return nil
	})
}

// Count returns the total number of stores.
func (r *GORMStoreRepository) Count() (int64, error) {
	var count int64
	if err := r.db.Model(&models.Store{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count stores: %w", err)
	}
	return count, nil
}
