package models

import (
	"time"

	"gorm.io/gorm"
)

// ApplicantMirror is a local snapshot of applicant profile data.
// Owned and managed solely by this service; populated by the applicant
// sync worker from the profile service. Submissions denormalize
// applicant_name and date_of_birth from here at registration time.
type ApplicantMirror struct {
	ID             string     `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	ExternalUserID string     `gorm:"uniqueIndex;not null" json:"external_user_id"` // profile service UUID
	FullName       string     `gorm:"index;not null" json:"full_name"`
	Email          string     `json:"email,omitempty"`
	DateOfBirth    *time.Time `json:"date_of_birth,omitempty"`
	Country        *string    `json:"country,omitempty"`
	AvatarURL      *string    `json:"avatar_url,omitempty"`
	CreatedAt      time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt      time.Time  `json:"updated_at" gorm:"autoUpdateTime"`

	// Local ban takes an applicant out of new registrations only.
	IsBanned bool `json:"is_banned" gorm:"default:false"`

	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
