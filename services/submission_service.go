// services/submission_service.go
package services

import (
	"errors"
	"fmt"
	"log"
	"math"
	"path/filepath"
	"time"

	"artistry-nu-platform/models"
	"artistry-nu-platform/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

type SubmissionService struct {
	DB *gorm.DB
}

func NewSubmissionService(db *gorm.DB) *SubmissionService {
	return &SubmissionService{DB: db}
}

// CreateSubmission registers one entry for a tournament. Applicant name and
// date of birth are denormalized from the applicant mirror so the ranking
// tie-break never depends on a cross-service call.
func (s *SubmissionService) CreateSubmission(c *fiber.Ctx) error {
	tournamentID := c.Params("id")
	userID, _ := c.Locals("user_id").(string)
	title := c.FormValue("title")

	if tournamentID == "" || userID == "" || title == "" {
		return c.Status(400).JSON(fiber.Map{"error": "tournament id, user context, and title are required"})
	}

	var tournament models.Tournament
	if err := s.DB.First(&tournament, "id = ?", tournamentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "tournament not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "DB error fetching tournament"})
	}

	// Registrations are only accepted while the tournament is open.
	phase := ProjectTournamentPhase(time.Now(), tournament.RegistrationStart, tournament.RegistrationEnd, tournament.SubmissionDeadline)
	if phase != models.TournamentPhaseOpen {
		return c.Status(403).JSON(fiber.Map{
			"error": "tournament is not open for registration",
			"phase": phase,
		})
	}

	var mirror models.ApplicantMirror
	if err := s.DB.Where("external_user_id = ?", userID).First(&mirror).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(400).JSON(fiber.Map{"error": "applicant profile not synced yet — try again shortly"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "DB error fetching applicant"})
	}
	if mirror.IsBanned {
		return c.Status(403).JSON(fiber.Map{"error": "applicant is not eligible for registration"})
	}

	// One entry per user per tournament
	var existing models.Submission
	if err := s.DB.Where("tournament_id = ? AND user_id = ?", tournamentID, userID).
		First(&existing).Error; err == nil {
		return c.Status(409).JSON(fiber.Map{
			"error":      "user already has a submission for this tournament",
			"submission": existing,
		})
	}

	// --- Handle artwork file → R2 (local uploads dir when R2 is disabled) ---
	var artworkURL, artworkFileName string
	if artwork, err := c.FormFile("artwork"); err == nil && artwork.Size > 0 {
		ext := filepath.Ext(artwork.Filename)
		if ext == "" {
			ext = ".jpg"
		}
		key := fmt.Sprintf("artworks/%s/%s-%s%s", tournamentID, slug.Make(title), uuid.NewString(), ext)
		if utils.R2Enabled() {
			url, err := utils.UploadFileToR2(artwork, key)
			if err != nil {
				return c.Status(500).JSON(fiber.Map{"error": "failed to upload artwork"})
			}
			artworkURL = url
		} else {
			dest := utils.GetUploadPath(key)
			if err := utils.SaveFile(artwork, dest); err != nil {
				return c.Status(500).JSON(fiber.Map{"error": "failed to store artwork"})
			}
			artworkURL = "/uploads/" + key
		}
		artworkFileName = artwork.Filename
	}

	sub := models.Submission{
		ID:              uuid.NewString(),
		TournamentID:    tournamentID,
		UserID:          userID,
		Title:           title,
		Description:     c.FormValue("description"),
		ArtworkURL:      artworkURL,
		ArtworkFileName: artworkFileName,
		ApplicantName:   mirror.FullName, // ✅ safe copy at registration time
		DateOfBirth:     mirror.DateOfBirth,
		Status:          models.SubmissionStatusDraft,
		PaymentStatus:   models.PaymentStatusUnpaid,
		PaymentAmount:   tournament.EntryFee,
	}
	if tournament.EntryFee == 0 {
		sub.PaymentStatus = models.PaymentStatusPaid
		now := time.Now()
		sub.PaymentAt = &now
	}

	if err := s.DB.Create(&sub).Error; err != nil {
		log.Printf("ERROR creating submission: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to create submission"})
	}
	return c.Status(201).JSON(sub)
}

// GetTournamentSubmissions lists entries for a tournament (admin view).
func (s *SubmissionService) GetTournamentSubmissions(c *fiber.Ctx) error {
	tournamentID := c.Params("id")
	var subs []models.Submission
	if err := s.DB.Where("tournament_id = ?", tournamentID).
		Order("created_at DESC").
		Find(&subs).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch submissions"})
	}
	return c.JSON(subs)
}

func (s *SubmissionService) GetSubmissionByID(c *fiber.Ctx) error {
	id := c.Params("id")
	var sub models.Submission
	if err := s.DB.First(&sub, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "submission not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "DB error"})
	}
	return c.JSON(sub)
}

// ScoreSubmission records a juror's score (admin action). Scores are
// 0–10 with two-decimal precision; scoring locks once ranks exist so the
// persisted ordering cannot drift from the scores it was derived from.
func (s *SubmissionService) ScoreSubmission(c *fiber.Ctx) error {
	id := c.Params("id")
	type Req struct {
		Score  *float64 `json:"score" validate:"required,gte=0,lte=10"`
		Status string   `json:"status" validate:"omitempty,oneof=pending_review approved rejected"`
	}
	var req Req
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON"})
	}
	if err := utils.ValidateStruct(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": utils.FormatValidationErrors(err)})
	}

	var sub models.Submission
	if err := s.DB.First(&sub, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "submission not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "DB error"})
	}

	var tournament models.Tournament
	if err := s.DB.First(&tournament, "id = ?", sub.TournamentID).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "DB error fetching tournament"})
	}
	if tournament.RankGenerated {
		return c.Status(409).JSON(fiber.Map{"error": "ranks already generated — scores are frozen"})
	}
	if sub.PaymentStatus != models.PaymentStatusPaid {
		return c.Status(400).JSON(fiber.Map{"error": "submission entry fee is unpaid"})
	}

	score := math.Round(*req.Score*100) / 100 // two-decimal precision
	updates := map[string]interface{}{
		"score": score,
	}
	if req.Status != "" {
		updates["status"] = req.Status
	} else {
		updates["status"] = models.SubmissionStatusApproved
	}
	if err := s.DB.Model(&sub).Updates(updates).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to record score"})
	}

	s.DB.First(&sub, "id = ?", id)
	return c.JSON(sub)
}

// ConfirmPayment marks an entry's fee as paid against a payment order.
// Normally the payment sync worker reconciles this; the endpoint covers
// manual confirmation by an admin.
func (s *SubmissionService) ConfirmPayment(c *fiber.Ctx) error {
	id := c.Params("id")
	type Req struct {
		PaymentID     string  `json:"payment_id" validate:"required"`
		PaymentAmount float64 `json:"payment_amount" validate:"gte=0"`
	}
	var req Req
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON"})
	}
	if err := utils.ValidateStruct(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": utils.FormatValidationErrors(err)})
	}

	var sub models.Submission
	if err := s.DB.First(&sub, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "submission not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "DB error"})
	}
	if sub.PaymentStatus == models.PaymentStatusPaid {
		return c.Status(400).JSON(fiber.Map{"error": "already paid"})
	}

	now := time.Now()
	updates := map[string]interface{}{
		"payment_id":     req.PaymentID,
		"payment_amount": req.PaymentAmount,
		"payment_status": models.PaymentStatusPaid,
		"payment_at":     &now,
	}
	if err := s.DB.Model(&sub).Updates(updates).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "payment confirmation failed"})
	}
	return c.JSON(fiber.Map{"message": "payment confirmed", "submission": sub})
}

// GetMySubmissions lists the calling user's entries across tournaments.
func (s *SubmissionService) GetMySubmissions(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	var subs []models.Submission
	if err := s.DB.Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&subs).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch submissions"})
	}
	return c.JSON(subs)
}
