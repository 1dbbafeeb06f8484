package models

import (
	"time"
)

const (
	BookingBooked     = "booked"
	BookingCheckedIn  = "checked_in"
	BookingCheckedOut = "checked_out"
	BookingCancelled  = "cancelled"
)

type Booking struct {
	ID      uint `gorm:"primaryKey" json:"id"`
	GuestID uint `gorm:"index;column:guest_id" json:"guest_id"`
	RoomID  uint `gorm:"index;column:room_id" json:"room_id"`

	CheckIn  time.Time `gorm:"column:check_in" json:"check_in"`
	CheckOut time.Time `gorm:"column:check_out" json:"check_out"`
	Status   string    `gorm:"size:30;default:booked" json:"status"`

	GuestsCount  int    `gorm:"default:1" json:"guests_count"`
	OwnsVehicle  bool   `gorm:"default:false" json:"owns_vehicle"`
	VehiclePlate string `gorm:"size:50" json:"vehicle_plate"`

	// Opaque random token embedded in the entry QR. Nil until generated.
	QRToken *string `gorm:"uniqueIndex;size:64;column:qr_token" json:"qr_token,omitempty"`

	Guest Guest `gorm:"foreignKey:GuestID" json:"guest,omitempty"`
	Room  Room  `gorm:"foreignKey:RoomID" json:"room,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ActiveAt reports whether the booking admits entry at t: the stay interval
// contains t (inclusive on both ends) and the booking is not cancelled.
// Every scan path must use this predicate, never an ad hoc variant.
func (b *Booking) ActiveAt(t time.Time) bool {
	if b.Status == BookingCancelled {
		return false
	}
	return !t.Before(b.CheckIn) && !t.After(b.CheckOut)
}
