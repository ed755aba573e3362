package repositories_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"storeapp/internal/models"
	"storeapp/internal/repositories"
)

// setupDB opens a private in-memory database per test. TranslateError is
// on, as in production, so uniqueness violations surface as
// gorm.ErrDuplicatedKey.
func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("failed to open in-memory database: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Store{}, &models.Rating{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func seedUser(t *testing.T, repo repositories.UserRepository, name, email string) *models.User {
	t.Helper()
	user := &models.User{Name: name, Email: email, Password: "hash", Role: models.RoleUser}
	if err := repo.Create(user); err != nil {
		t.Fatalf("failed to seed user %s: %v", email, err)
	}
	return user
}

func seedStore(t *testing.T, repo repositories.StoreRepository, name, email string) *models.Store {
	t.Helper()
	store := &models.Store{Name: name, Email: email, Address: "1 Main St"}
	if err := repo.Create(store); err != nil {
		t.Fatalf("failed to seed store %s: %v", email, err)
	}
	return store
}

func TestRatingUniquenessConstraint(t *testing.T) {
	db := setupDB(t)
	userRepo := repositories.NewGORMUserRepository(db)
	storeRepo := repositories.NewGORMStoreRepository(db)
	ratingRepo := repositories.NewGORMRatingRepository(db)

	user := seedUser(t, userRepo, "Rater", "rater@example.com")
	store := seedStore(t, storeRepo, "Shop One", "shop1@example.com")

	err := ratingRepo.Create(&models.Rating{UserID: user.ID, StoreID: store.ID, Value: 3})
	assert.NoError(t, err)

	// A second insert for the same pair hits the constraint; this is
	// what the upsert fallback relies on.
	err = ratingRepo.Create(&models.Rating{UserID: user.ID, StoreID: store.ID, Value: 5})
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)

	// The update path rewrites the value in place, preserving identity.
	first, err := ratingRepo.GetByUserAndStore(user.ID, store.ID)
	assert.NoError(t, err)
	assert.NoError(t, ratingRepo.UpdateValue(user.ID, store.ID, 5))

	var count int64
	db.Model(&models.Rating{}).Where("user_id = ? AND store_id = ?", user.ID, store.ID).Count(&count)
	assert.Equal(t, int64(1), count)

	second, err := ratingRepo.GetByUserAndStore(user.ID, store.ID)
	assert.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 5, second.Value)
}

func TestAggregates(t *testing.T) {
	db := setupDB(t)
	userRepo := repositories.NewGORMUserRepository(db)
	storeRepo := repositories.NewGORMStoreRepository(db)
	ratingRepo := repositories.NewGORMRatingRepository(db)

	store := seedStore(t, storeRepo, "Rated Shop", "rated@example.com")
	empty := seedStore(t, storeRepo, "Empty Shop", "empty@example.com")

	for i, value := range []int{3, 4, 5} {
		user := seedUser(t, userRepo, fmt.Sprintf("User %d", i), fmt.Sprintf("user%d@example.com", i))
		assert.NoError(t, ratingRepo.Create(&models.Rating{UserID: user.ID, StoreID: store.ID, Value: value}))
	}

	agg, err := ratingRepo.Aggregates(store.ID)
	assert.NoError(t, err)
	assert.Equal(t, 4.0, agg.AverageRating)
	assert.Equal(t, int64(3), agg.TotalRatings)

	agg, err = ratingRepo.Aggregates(empty.ID)
	assert.NoError(t, err)
	assert.Equal(t, 0.0, agg.AverageRating)
	assert.Equal(t, int64(0), agg.TotalRatings)
}

func TestCreateWithOwnerLinksBothDirections(t *testing.T) {
	db := setupDB(t)
	userRepo := repositories.NewGORMUserRepository(db)
	storeRepo := repositories.NewGORMStoreRepository(db)

	store := &models.Store{Name: "Owned Shop", Email: "owned@example.com"}
	owner := &models.User{Name: "Owned Shop", Email: "owner@example.com", Password: "hash"}
	assert.NoError(t, storeRepo.CreateWithOwner(store, owner))

	gotStore, err := storeRepo.GetByID(store.ID)
	assert.NoError(t, err)
	gotOwner, err := userRepo.GetByID(owner.ID)
	assert.NoError(t, err)

	assert.Equal(t, models.RoleStoreOwner, gotOwner.Role)
	if assert.NotNil(t, gotStore.OwnerID) {
		assert.Equal(t, gotOwner.ID, *gotStore.OwnerID)
	}
	if assert.NotNil(t, gotOwner.StoreID) {
		assert.Equal(t, gotStore.ID, *gotOwner.StoreID)
	}

	// GetByOwnerID resolves the same store the claim would.
	byOwner, err := storeRepo.GetByOwnerID(owner.ID)
	assert.NoError(t, err)
	assert.Equal(t, store.ID, byOwner.ID)
}

func TestCreateWithOwnerRollsBackWhenOwnerInsertFails(t *testing.T) {
	db := setupDB(t)
	userRepo := repositories.NewGORMUserRepository(db)
	storeRepo := repositories.NewGORMStoreRepository(db)

	// Occupy the owner email so the second insert inside the
	// transaction fails after the store insert succeeded.
	seedUser(t, userRepo, "Existing", "clash@example.com")

	store := &models.Store{Name: "Doomed Shop", Email: "doomed@example.com"}
	owner := &models.User{Name: "Doomed Shop", Email: "clash@example.com", Password: "hash"}
	err := storeRepo.CreateWithOwner(store, owner)
	assert.Error(t, err)

	// The store insert was rolled back with it: zero store rows.
	var count int64
	db.Model(&models.Store{}).Where("email = ?", "doomed@example.com").Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestDeleteStoreCascades(t *testing.T) {
	db := setupDB(t)
	userRepo := repositories.NewGORMUserRepository(db)
	storeRepo := repositories.NewGORMStoreRepository(db)
	ratingRepo := repositories.NewGORMRatingRepository(db)

	store := &models.Store{Name: "Closing Shop", Email: "closing@example.com"}
	owner := &models.User{Name: "Closing Shop", Email: "closer@example.com", Password: "hash"}
	assert.NoError(t, storeRepo.CreateWithOwner(store, owner))

	rater := seedUser(t, userRepo, "Rater", "rater@example.com")
	assert.NoError(t, ratingRepo.Create(&models.Rating{UserID: rater.ID, StoreID: store.ID, Value: 4}))

	assert.NoError(t, storeRepo.Delete(store.ID))

	var ratingCount int64
	db.Model(&models.Rating{}).Where("store_id = ?", store.ID).Count(&ratingCount)
	assert.Equal(t, int64(0), ratingCount)

	// The owner account survives, unlinked.
	gotOwner, err := userRepo.GetByID(owner.ID)
	assert.NoError(t, err)
	assert.Nil(t, gotOwner.StoreID)
}

func TestDeleteUserCascades(t *testing.T) {
	db := setupDB(t)
	userRepo := repositories.NewGORMUserRepository(db)
	storeRepo := repositories.NewGORMStoreRepository(db)
	ratingRepo := repositories.NewGORMRatingRepository(db)

	store := &models.Store{Name: "Ownerless Shop", Email: "ownerless@example.com"}
	owner := &models.User{Name: "Ownerless Shop", Email: "leaving@example.com", Password: "hash"}
	assert.NoError(t, storeRepo.CreateWithOwner(store, owner))

	other := seedStore(t, storeRepo, "Other Shop", "other@example.com")
	assert.NoError(t, ratingRepo.Create(&models.Rating{UserID: owner.ID, StoreID: other.ID, Value: 2}))

	assert.NoError(t, userRepo.Delete(owner.ID))

	// Their ratings are gone.
	var ratingCount int64
	db.Model(&models.Rating{}).Where("user_id = ?", owner.ID).Count(&ratingCount)
	assert.Equal(t, int64(0), ratingCount)

	// The store they owned survives with owner_id cleared, not deleted.
	gotStore, err := storeRepo.GetByID(store.ID)
	assert.NoError(t, err)
	assert.Nil(t, gotStore.OwnerID)
}

func TestStoreListAggregatesAndUserRating(t *testing.T) {
	db := setupDB(t)
	userRepo := repositories.NewGORMUserRepository(db)
	storeRepo := repositories.NewGORMStoreRepository(db)
	ratingRepo := repositories.NewGORMRatingRepository(db)

	alpha := seedStore(t, storeRepo, "Alpha Shop", "alpha@example.com")
	beta := seedStore(t, storeRepo, "Beta Shop", "beta@example.com")

	alice := seedUser(t, userRepo, "Alice", "alice@example.com")
	bob := seedUser(t, userRepo, "Bob", "bob@example.com")
	assert.NoError(t, ratingRepo.Create(&models.Rating{UserID: alice.ID, StoreID: alpha.ID, Value: 5}))
	assert.NoError(t, ratingRepo.Create(&models.Rating{UserID: bob.ID, StoreID: alpha.ID, Value: 4}))
	assert.NoError(t, ratingRepo.Create(&models.Rating{UserID: bob.ID, StoreID: beta.ID, Value: 2}))

	stores, err := storeRepo.List(repositories.StoreListFilter{UserID: alice.ID})
	assert.NoError(t, err)
	if assert.Len(t, stores, 2) {
		// Default ordering is name ASC.
		assert.Equal(t, "Alpha Shop", stores[0].Name)
		assert.Equal(t, 4.5, stores[0].AverageRating)
		assert.Equal(t, int64(2), stores[0].TotalRatings)
		if assert.NotNil(t, stores[0].UserRating) {
			assert.Equal(t, 5, *stores[0].UserRating)
		}
		// Alice never rated Beta Shop.
		assert.Nil(t, stores[1].UserRating)
	}

	// Sorting by average rating descending puts Alpha first regardless
	// of name order.
	stores, err = storeRepo.List(repositories.StoreListFilter{SortBy: "average_rating", SortOrder: "DESC"})
	assert.NoError(t, err)
	if assert.Len(t, stores, 2) {
		assert.Equal(t, "Alpha Shop", stores[0].Name)
	}

	// Search filters by name or address.
	stores, err = storeRepo.List(repositories.StoreListFilter{Search: "Beta"})
	assert.NoError(t, err)
	if assert.Len(t, stores, 1) {
		assert.Equal(t, "Beta Shop", stores[0].Name)
	}

	// GetWithAggregates agrees with the listing.
	single, err := storeRepo.GetWithAggregates(alpha.ID)
	assert.NoError(t, err)
	assert.Equal(t, 4.5, single.AverageRating)

	_, err = storeRepo.GetWithAggregates("no-such-store")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRatingJoins(t *testing.T) {
	db := setupDB(t)
	userRepo := repositories.NewGORMUserRepository(db)
	storeRepo := repositories.NewGORMStoreRepository(db)
	ratingRepo := repositories.NewGORMRatingRepository(db)

	alice := seedUser(t, userRepo, "Alice", "alice@example.com")
	alpha := seedStore(t, storeRepo, "Alpha Shop", "alpha@example.com")
	beta := seedStore(t, storeRepo, "Beta Shop", "beta@example.com")

	// Explicit timestamps so the most-recent-first ordering is
	// deterministic.
	older := models.Rating{ID: "rating-old", UserID: alice.ID, StoreID: alpha.ID, Value: 3,
		CreatedAt: time.Now().Add(-time.Hour)}
	newer := models.Rating{ID: "rating-new", UserID: alice.ID, StoreID: beta.ID, Value: 5,
		CreatedAt: time.Now()}
	assert.NoError(t, db.Create(&older).Error)
	assert.NoError(t, db.Create(&newer).Error)

	ratings, err := ratingRepo.ListByUser(alice.ID)
	assert.NoError(t, err)
	if assert.Len(t, ratings, 2) {
		assert.Equal(t, "rating-new", ratings[0].ID)
		assert.Equal(t, "Beta Shop", ratings[0].StoreName)
		assert.Equal(t, 5, ratings[0].Value)
		assert.Equal(t, "rating-old", ratings[1].ID)
	}

	raters, err := ratingRepo.RatersForStore(alpha.ID)
	assert.NoError(t, err)
	if assert.Len(t, raters, 1) {
		assert.Equal(t, alice.ID, raters[0].UserID)
		assert.Equal(t, "Alice", raters[0].Name)
		assert.Equal(t, 3, raters[0].Value)
	}
}

func TestUserListFilter(t *testing.T) {
	db := setupDB(t)
	userRepo := repositories.NewGORMUserRepository(db)

	alice := &models.User{Name: "Alice", Email: "alice@example.com", Password: "hash", Role: models.RoleAdmin}
	assert.NoError(t, userRepo.Create(alice))
	bob := &models.User{Name: "Bob", Email: "bob@example.com", Password: "hash", Role: models.RoleUser}
	assert.NoError(t, userRepo.Create(bob))

	users, err := userRepo.List(repositories.UserListFilter{Role: "admin"})
	assert.NoError(t, err)
	if assert.Len(t, users, 1) {
		assert.Equal(t, "Alice", users[0].Name)
		// The listing never exposes password hashes.
		assert.Empty(t, users[0].Password)
	}

	users, err = userRepo.List(repositories.UserListFilter{Search: "bob@"})
	assert.NoError(t, err)
	if assert.Len(t, users, 1) {
		assert.Equal(t, "Bob", users[0].Name)
	}

	// Unknown sort columns fall back to the whitelist default instead
	// of reaching the database.
	users, err = userRepo.List(repositories.UserListFilter{SortBy: "password; DROP TABLE users"})
	assert.NoError(t, err)
	assert.Len(t, users, 2)
}
