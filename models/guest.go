package models

import "time"

// Guest is the identity record a booking is made for. NationalIDNumber is the
// lookup key for OCR/manual matching; the storage layer does not enforce
// uniqueness but matching treats it as unique.
type Guest struct {
	ID               uint   `gorm:"primaryKey" json:"id"`
	FullName         string `gorm:"size:255" json:"full_name"`
	NationalIDNumber string `gorm:"size:100;index;column:national_id_number" json:"national_id_number"`
	Phone            string `gorm:"size:50" json:"phone"`
	Email            string `gorm:"size:255" json:"email"`

	CreatedAt time.Time `json:"created_at"`
}
