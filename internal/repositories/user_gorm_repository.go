package repositories

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"storeapp/internal/models"
)

// GORMUserRepository is a GORM implementation of UserRepository.
type GORMUserRepository struct {
	db *gorm.DB
}

// NewGORMUserRepository creates a new instance of GORMUserRepository.
func NewGORMUserRepository(db *gorm.DB) *GORMUserRepository {
	return &GORMUserRepository{
		db: db,
	}
}

// Create creates a new user in the database.
func (r *GORMUserRepository) Create(user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if err := r.db.Create(user).Error; err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetByEmail retrieves a user by their email from the database.
func (r *GORMUserRepository) GetByEmail(email string) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, "email = ?", email).Error; err != nil {
		return nil, fmt.Errorf("failed to get user by email %s: %w", email, err)
	}
	return &user, nil
}

// GetByID retrieves a user by their ID from the database.
func (r *GORMUserRepository) GetByID(id string) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("failed to get user by ID %s: %w", id, err)
	}
	return &user, nil
}

// userSortColumns whitelists the admin listing's sortable columns.
var userSortColumns = map[string]bool{
	"name":       true,
	"email":      true,
	"role":       true,
	"created_at": true,
}

// List retrieves users matching the filter, excluding password hashes.
func (r *GORMUserRepository) List(filter UserListFilter) ([]models.User, error) {
	q := r.db.Model(&models.User{}).
		Select("id", "name", "email", "address", "role", "store_id", "created_at", "updated_at")

	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		q = q.Where("name LIKE ? OR email LIKE ? OR address LIKE ?", like, like, like)
	}
	if filter.Role != "" {
		q = q.Where("role = ?", filter.Role)
	}

	sortColumn := "name"
	if userSortColumns[filter.SortBy] {
		sortColumn = filter.SortBy
	}
	order := "ASC"
	if filter.SortOrder == "desc" || filter.SortOrder == "DESC" {
		order = "DESC"
	}

	var users []models.User
	if err := q.Order(sortColumn + " " + order).Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// UpdatePassword replaces the user's stored password hash.
func (r *GORMUserRepository) UpdatePassword(id string, passwordHash string) error {
	res := r.db.Model(&models.User{}).Where("id = ?", id).Update("password", passwordHash)
	if res.Error != nil {
		return fmt.Errorf("failed to update password: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("user with ID %s not found for password update: %w", id, gorm.ErrRecordNotFound)
	}
	return nil
}

// Delete removes a user, cascading their ratings and clearing owner_id
// on any store they owned. The store itself survives without an owner.
func (r *GORMUserRepository) Delete(id string) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", id).Delete(&models.Rating{}).Error; err != nil {
			return fmt.Errorf("failed to delete user ratings: %w", err)
		}
		if err := tx.Model(&models.Store{}).Where("owner_id = ?", id).
			Update("owner_id", nil).Error; err != nil {
			return fmt.Errorf("failed to clear store ownership: %w", err)
		}
		res := tx.Delete(&models.User{}, "id = ?", id)
		if res.Error != nil {
			return fmt.Errorf("failed to delete user: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("user with ID %s not found for deletion: %w", id, gorm.ErrRecordNotFound)
		}
		return nil
	})
	return err
}

// Count returns the total number of users.
func (r *GORMUserRepository) Count() (int64, error) {
	var count int64
	if err := r.db.Model(&models.User{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}
