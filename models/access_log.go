package models

import "time"

const (
	DecisionAllow = "allow"
	DecisionDeny  = "deny"
)

// AccessLog is one immutable row per person-scan attempt. Guest/booking
// references are lookup-only and nullable: the row records that an attempt
// happened even when nothing resolved, and deleting a referenced entity must
// never cascade into the audit trail.
type AccessLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Timestamp time.Time `gorm:"index" json:"timestamp"`

	GuardID      uint  `gorm:"column:guard_id" json:"guard_id"`
	CheckpointID uint  `gorm:"column:checkpoint_id" json:"checkpoint_id"`
	GuestID      *uint `gorm:"column:guest_id" json:"guest_id,omitempty"`
	BookingID    *uint `gorm:"column:booking_id" json:"booking_id,omitempty"`

	NationalIDNumber string `gorm:"size:100;column:national_id_number" json:"national_id_number"`
	Decision         string `gorm:"size:20" json:"decision"`
	ImagePath        string `gorm:"size:255" json:"image_path,omitempty"`
	OCRText          string `gorm:"type:text;column:ocr_text" json:"ocr_text,omitempty"`
}
