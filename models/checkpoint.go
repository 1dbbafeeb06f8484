package models

type Checkpoint struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	PropertyID uint   `gorm:"index;column:property_id" json:"property_id"`
	Name       string `gorm:"size:100" json:"name"`

	Property Property `gorm:"foreignKey:PropertyID" json:"property,omitempty"`
}
