package services_test

import (
	"github.com/stretchr/testify/mock"

	"storeapp/internal/models"
	"storeapp/internal/repositories"
)

// MockUserRepository is a mock implementation of repositories.UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(user *models.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByEmail(email string) (*models.User, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByID(id string) (*models.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) List(filter repositories.UserListFilter) ([]models.User, error) {
	args := m.Called(filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.User), args.Error(1)
}

func (m *MockUserRepository) UpdatePassword(id string, passwordHash string) error {
	args := m.Called(id, passwordHash)
	return args.Error(0)
}

func (m *MockUserRepository) Delete(id string) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockUserRepository) Count() (int64, error) {
	args := m.Called()
	return args.Get(0).(int64), args.Error(1)
}

// MockStoreRepository is a mock implementation of repositories.StoreRepository.
type MockStoreRepository struct {
	mock.Mock
}

func (m *MockStoreRepository) Create(store *models.Store) error {
	args := m.Called(store)
	return args.Error(0)
}

func (m *MockStoreRepository) GetByID(id string) (*models.Store, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Store), args.Error(1)
}

func (m *MockStoreRepository) GetByEmail(email string) (*models.Store, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Store), args.Error(1)
}

func (m *MockStoreRepository) GetByOwnerID(ownerID string) (*models.Store, error) {
	args := m.Called(ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Store), args.Error(1)
}

func (m *MockStoreRepository) List(filter repositories.StoreListFilter) ([]models.StoreWithAggregates, error) {
	args := m.Called(filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.StoreWithAggregates), args.Error(1)
}

func (m *MockStoreRepository) GetWithAggregates(id string) (*models.StoreWithAggregates, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.StoreWithAggregates), args.Error(1)
}

func (m *MockStoreRepository) CreateWithOwner(store *models.Store, owner *models.User) error {
	args := m.Called(store, owner)
	return args.Error(0)
}

func (m *MockStoreRepository) Delete(id string) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockStoreRepository) Count() (int64, error) {
	args := m.Called()
	return args.Get(0).(int64), args.Error(1)
}

// MockRatingRepository is a mock implementation of repositories.RatingRepository.
type MockRatingRepository struct {
	mock.Mock
}

func (m *MockRatingRepository) GetByUserAndStore(userID, storeID string) (*models.Rating, error) {
	args := m.Called(userID, storeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Rating), args.Error(1)
}

func (m *MockRatingRepository) Create(rating *models.Rating) error {
	args := m.Called(rating)
	return args.Error(0)
}

func (m *MockRatingRepository) UpdateValue(userID, storeID string, value int) error {
	args := m.Called(userID, storeID, value)
	return args.Error(0)
}

func (m *MockRatingRepository) ListByUser(userID string) ([]models.UserRating, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.UserRating), args.Error(1)
}

func (m *MockRatingRepository) RatersForStore(storeID string) ([]models.StoreRater, error) {
	args := m.Called(storeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.StoreRater), args.Error(1)
}

func (m *MockRatingRepository) Aggregates(storeID string) (*models.StoreAggregates, error) {
	args := m.Called(storeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.StoreAggregates), args.Error(1)
}

func (m *MockRatingRepository) Count() (int64, error) {
	args := m.Called()
	return args.Get(0).(int64), args.Error(1)
}

// MockPublisher is a mock implementation of services.EventPublisher.
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(routingKey string, body []byte) error {
	args := m.Called(routingKey, body)
	return args.Error(0)
}
