package models

import (
	"time"

	"gorm.io/gorm"
)

type Property struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	OwnerID uint   `gorm:"index;column:owner_id" json:"owner_id"`
	Name    string `gorm:"size:255" json:"name"`
	Address string `gorm:"size:255" json:"address"`

	Owner User `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
