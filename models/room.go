package models

import (
	"time"

	"gorm.io/gorm"
)

type Room struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	PropertyID uint   `gorm:"index;column:property_id" json:"property_id"`
	Name       string `gorm:"size:100" json:"name"`
	Desc       string `gorm:"type:text" json:"desc"`

	Property Property `gorm:"foreignKey:PropertyID" json:"property,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
