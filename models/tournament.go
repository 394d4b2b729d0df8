package models

import (
	"time"
)

// Tournament lifecycle phases derived from the three schedule timestamps.
// Never stored — always projected at read time.
const (
	TournamentPhaseComingSoon       = "coming_soon"
	TournamentPhaseOpen             = "open"
	TournamentPhaseSubmissionPeriod = "submission_period"
	TournamentPhaseClosed           = "closed"
	TournamentPhaseInvalid          = "invalid"
)

// Tournament represents one art competition.
type Tournament struct {
	ID          string  `json:"id" gorm:"primaryKey"`
	Title       string  `json:"title" gorm:"not null"`
	Description string  `json:"description"`
	Rules       string  `json:"rules"`
	Category    string  `json:"category"`
	EntryFee    float64 `json:"entry_fee" gorm:"default:0"`

	MainPhotoURL string `json:"main_photo_url"`

	// Schedule: registration_start ≤ registration_end ≤ submission_deadline
	RegistrationStart  *time.Time `json:"registration_start,omitempty"`
	RegistrationEnd    *time.Time `json:"registration_end,omitempty"`
	SubmissionDeadline *time.Time `json:"submission_deadline,omitempty"`
	ResultDate         *time.Time `json:"result_date,omitempty"`

	// Pipeline flags — rank generation must precede certificate issuance.
	RankGenerated           bool       `json:"rank_generated" gorm:"default:false"`
	RankGeneratedAt         *time.Time `json:"rank_generated_at,omitempty"`
	CertificatesGenerated   bool       `json:"certificates_generated" gorm:"default:false"`
	CertificatesGeneratedAt *time.Time `json:"certificates_generated_at,omitempty"`

	// 🎛️ Publishing state
	Status          string     `json:"status" gorm:"default:'draft'"` // draft | scheduled | published
	PublishSchedule *time.Time `json:"publish_schedule,omitempty"`
	PublishedAt     *time.Time `json:"published_at,omitempty" gorm:"index"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	// Calculated fields (not stored in DB)
	Phase            string `json:"phase,omitempty" gorm:"-"`
	SubmissionsCount int64  `json:"submissions_count,omitempty" gorm:"-"`
	ScoredCount      int64  `json:"scored_count,omitempty" gorm:"-"`
}
