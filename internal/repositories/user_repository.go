package repositories

import "storeapp/internal/models"

// UserListFilter narrows and orders the admin user listing.
type UserListFilter struct {
	Search    string
	Role      string
	SortBy    string
	SortOrder string
}

// UserRepository defines the interface for user data access.
type UserRepository interface {
	Create(user *models.User) error
	GetByEmail(email string) (*models.User, error)
	GetByID(id string) (*models.User, error)
	List(filter UserListFilter) ([]models.User, error)
	UpdatePassword(id string, passwordHash string) error
	// Delete removes the user, their ratings, and clears owner_id on any
	// store they owned, atomically.
	Delete(id string) error
	Count() (int64, error)
}
