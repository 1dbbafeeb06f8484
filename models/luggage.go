package models

import "time"

const (
	LuggagePending = "pending"
	LuggageBlocked = "blocked"
	LuggageExited  = "exited" // terminal
)

type Luggage struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	BookingID uint   `gorm:"index;column:booking_id" json:"booking_id"`
	Label     string `gorm:"size:255" json:"label"`
	Size      string `gorm:"size:20;default:medium" json:"size"`
	PhotoPath string `gorm:"size:255" json:"photo_path,omitempty"`
	QRToken   string `gorm:"uniqueIndex;size:64;column:qr_token" json:"qr_token"`
	Status    string `gorm:"size:20;default:pending" json:"status"`

	Booking Booking `gorm:"foreignKey:BookingID" json:"booking,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
