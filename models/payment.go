package models

import (
	"time"

	"gorm.io/datatypes"
)

const (
	PaymentPending = "pending"
	PaymentPaid    = "paid"
	PaymentFailed  = "failed"
)

// Payment tracks one STK push attempt. CheckoutRequestID is the Daraja handle
// the asynchronous callback is matched on.
type Payment struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	UserID uint   `gorm:"index;column:user_id" json:"user_id"`
	Plan   string `gorm:"size:20" json:"plan"`
	Amount int    `json:"amount"`
	Phone  string `gorm:"size:20" json:"phone"`

	AccountReference  string `gorm:"size:64" json:"account_reference"`
	MerchantRequestID string `gorm:"size:64;column:merchant_request_id" json:"merchant_request_id"`
	CheckoutRequestID string `gorm:"size:64;index;column:checkout_request_id" json:"checkout_request_id"`

	Status           string         `gorm:"size:20;default:pending" json:"status"`
	ReceiptNumber    string         `gorm:"size:64" json:"receipt_number,omitempty"`
	CallbackMetadata datatypes.JSON `gorm:"column:callback_metadata" json:"callback_metadata,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
