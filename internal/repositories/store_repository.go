package repositories

import "storeapp/internal/models"

// StoreListFilter narrows and orders store listings.
type StoreListFilter struct {
	Search    string
	SortBy    string
	SortOrder string
	// UserID, when set, attaches that user's own rating to each row.
	UserID string
}

// StoreRepository defines the interface for store data access, including
// the transactional store+owner provisioning.
type StoreRepository interface {
	Create(store *models.Store) error
	GetByID(id string) (*models.Store, error)
	GetByEmail(email string) (*models.Store, error)
	GetByOwnerID(ownerID string) (*models.Store, error)
	List(filter StoreListFilter) ([]models.StoreWithAggregates, error)
	GetWithAggregates(id string) (*models.StoreWithAggregates, error)
	// CreateWithOwner inserts the store and its owner account and
	// cross-links them in a single transaction. On any failure neither
	// row persists.
	CreateWithOwner(store *models.Store, owner *models.User) error
	// Delete removes the store, its ratings, and clears store_id on the
	// owning user, atomically.
	Delete(id string) error
	Count() (int64, error)
}
