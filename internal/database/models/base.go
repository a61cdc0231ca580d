package models

import (
	"time"

	"gorm.io/gorm"
)

// Base model with auto-increment primary key and timestamps
type Base struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SoftDelete marks rows as deleted without removing them. Default GORM
// queries skip rows with a deleted_at value.
type SoftDelete struct {
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
