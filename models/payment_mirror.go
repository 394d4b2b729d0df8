// models/payment_mirror.go
package models

import (
	"time"

	"gorm.io/gorm"
)

// PaymentMirror mirrors payment-order data from the payment service.
// Table name: payment_mirrors
// Order creation and signature verification happen in the payment service;
// we only poll settled state and reconcile submissions against it.
type PaymentMirror struct {
	ID           string     `gorm:"primaryKey;type:uuid;not null" json:"id"`
	OrderID      string     `gorm:"type:varchar(128);not null;uniqueIndex" json:"order_id"` // Primary lookup key
	UserID       string     `gorm:"type:uuid;not null;index" json:"user_id"`                // External user ID
	SubmissionID string     `gorm:"type:uuid;index" json:"submission_id"`
	Amount       float64    `gorm:"not null" json:"amount"`
	Currency     string     `gorm:"type:varchar(8);not null;default:'USD'" json:"currency"`
	Status       string     `gorm:"type:varchar(16);not null;index" json:"status"` // created | settled | failed | refunded
	SettledAt    *time.Time `json:"settled_at,omitempty"`
	CreatedAt    time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"not null" json:"updated_at"`

	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
