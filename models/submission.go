// models/submission.go
package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	SubmissionStatusDraft         = "draft"
	SubmissionStatusPendingReview = "pending_review"
	SubmissionStatusApproved      = "approved"
	SubmissionStatusRejected      = "rejected"
)

const (
	PaymentStatusUnpaid = "unpaid"
	PaymentStatusPaid   = "paid"
)

// Submission is one participant's competition entry for a tournament.
type Submission struct {
	ID           string `json:"id" gorm:"primaryKey"`
	TournamentID string `json:"tournament_id" gorm:"not null;index"`
	UserID       string `json:"user_id" gorm:"not null;index"` // external profile-service UUID

	Title       string `json:"title" gorm:"not null"`
	Description string `json:"description"`

	// 🖼️ Artwork media
	ArtworkURL      string `json:"artwork_url"`
	ArtworkFileName string `json:"artwork_file_name,omitempty"`

	// Denormalized from applicant_mirrors at registration time (safe copy)
	ApplicantName string     `json:"applicant_name"`
	DateOfBirth   *time.Time `json:"date_of_birth,omitempty"`

	// Score is nil until a juror scores the entry (0–10, two decimals).
	// Rank stays 0 until rank generation runs for the tournament.
	Score *float64 `json:"score,omitempty" gorm:"type:numeric(4,2)"`
	Rank  int      `json:"rank,omitempty" gorm:"default:0"`

	Status string `json:"status" gorm:"default:'draft'"` // draft | pending_review | approved | rejected

	// ✅ Payment metadata
	PaymentID     string     `json:"payment_id,omitempty"`
	PaymentAmount float64    `json:"payment_amount" gorm:"default:0"`
	PaymentStatus string     `json:"payment_status" gorm:"default:'unpaid'"` // unpaid | paid
	PaymentAt     *time.Time `json:"payment_at,omitempty"`

	// Certificate linkage — written only by the issuance run, atomically with
	// the certificate row. CertificateGenerated is the idempotency guard.
	CertificateURL         string     `json:"certificate_url,omitempty"`
	CertificateGenerated   bool       `json:"certificate_generated" gorm:"default:false"`
	CertificateGeneratedAt *time.Time `json:"certificate_generated_at,omitempty"`

	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}
