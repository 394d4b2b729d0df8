// models/certificate.go
package models

import (
	"time"
)

const (
	CertificateStatusActive  = "active"
	CertificateStatusRevoked = "revoked"
)

// Certificate is an issued document artifact tied 1:1 to a ranked submission.
// Created only by the issuance run; mutated only by admin revocation.
type Certificate struct {
	ID           string `json:"id" gorm:"primaryKey"`
	SubmissionID string `json:"submission_id" gorm:"not null;uniqueIndex"` // 1:1 with submission
	TournamentID string `json:"tournament_id" gorm:"not null;index"`
	UserID       string `json:"user_id" gorm:"index"`

	// Human-readable label, unique per (tournament, rank) per generation day.
	// NOT a primary key — re-runs on a different day would mint a different number.
	CertificateNumber string `json:"certificate_number" gorm:"not null"`

	FilePath  string    `json:"file_path"`
	FileURL   string    `json:"file_url"`
	IssueDate time.Time `json:"issue_date"`

	// Denormalized from the submission at issue time
	RecipientName string  `json:"recipient_name"`
	Score         float64 `json:"score"`
	Rank          int     `json:"rank"`

	Status        string     `json:"status" gorm:"default:'active'"` // active | revoked
	RevokedAt     *time.Time `json:"revoked_at,omitempty"`
	RevokedReason string     `json:"revoked_reason,omitempty"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}
