package models

import "time"

// Rating is one user's rating of one store. The composite unique index
// on (user_id, store_id) is the invariant the upsert path relies on: a
// lost insert race surfaces as a duplicate-key error and falls back to
// an update.
type Rating struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID    string    `json:"user_id" gorm:"type:varchar(36);not null;uniqueIndex:idx_user_store"`
	StoreID   string    `json:"store_id" gorm:"type:varchar(36);not null;uniqueIndex:idx_user_store;index"`
	Value     int       `json:"rating" gorm:"column:rating;not null;check:rating >= 1 AND rating <= 5"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// UserRating is a rating joined with the rated store, for a user's
// "my ratings" listing.
type UserRating struct {
	ID           string    `json:"id"`
	Value        int       `json:"rating"`
	CreatedAt    time.Time `json:"created_at"`
	StoreID      string    `json:"store_id"`
	StoreName    string    `json:"store_name"`
	StoreAddress string    `json:"store_address"`
}

// StoreRater is a rating joined with the rating user, for the store
// owner's dashboard.
type StoreRater struct {
	UserID    string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Value     int       `json:"rating"`
	CreatedAt time.Time `json:"created_at"`
}

// StoreAggregates are the derived values for a store, computed from the
// rating rows at read time. Average is 0 when no ratings exist.
type StoreAggregates struct {
	AverageRating float64 `json:"average_rating"`
	TotalRatings  int64   `json:"total_ratings"`
}
