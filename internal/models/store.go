package models

import "time"

// Store represents a rateable store. OwnerID is nullable: a store may be
// created standalone by an admin, or jointly with its owner account via
// the provisioning flow. Deleting the owner clears OwnerID but keeps the
// store.
type Store struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Name      string    `json:"name" gorm:"type:varchar(60)" validate:"required,min=3,max=60"`
	Email     string    `json:"email" gorm:"uniqueIndex;type:varchar(255)" validate:"required,email"`
	Address   string    `json:"address" gorm:"type:varchar(400)" validate:"omitempty,max=400"`
	OwnerID   *string   `json:"owner_id" gorm:"type:varchar(36);index"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// StoreWithAggregates is a store row joined with its rating aggregates,
// computed at read time. UserRating carries the requesting user's own
// rating for the store when one exists.
type StoreWithAggregates struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	Address       string    `json:"address"`
	AverageRating float64   `json:"average_rating"`
	TotalRatings  int64     `json:"total_ratings"`
	UserRating    *int      `json:"user_rating,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}
