package models

import "time"

// User represents an account on the platform. A store_owner additionally
// carries a back-reference to the store it owns; that link is only ever
// written together with the store's owner_id, inside one transaction.
type User struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Name      string    `json:"name" gorm:"type:varchar(60)" validate:"required,min=3,max=60"`
	Email     string    `json:"email" gorm:"uniqueIndex;type:varchar(255)" validate:"required,email"`
	Password  string    `json:"-" gorm:"type:varchar(255)"` // bcrypt hash, never serialized
	Address   string    `json:"address" gorm:"type:varchar(400)" validate:"omitempty,max=400"`
	Role      Role      `json:"role" gorm:"type:varchar(20);default:user;index"`
	StoreID   *string   `json:"store_id" gorm:"type:varchar(36)"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}
