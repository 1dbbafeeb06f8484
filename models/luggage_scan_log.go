package models

import "time"

// LuggageScanLog is one immutable row per luggage-scan attempt. LuggageID is 0
// when the scanned token matched nothing; the attempt is still recorded.
type LuggageScanLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Timestamp time.Time `gorm:"index" json:"timestamp"`

	GuardID      uint `gorm:"column:guard_id" json:"guard_id"`
	CheckpointID uint `gorm:"column:checkpoint_id" json:"checkpoint_id"`
	LuggageID    uint `gorm:"column:luggage_id" json:"luggage_id"`

	Decision string `gorm:"size:20" json:"decision"`
	Note     string `gorm:"size:255" json:"note"`
}
