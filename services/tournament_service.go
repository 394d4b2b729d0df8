// services/tournament_service.go
package services

import (
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"strconv"
	"time"

	"artistry-nu-platform/models"
	"artistry-nu-platform/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

type TournamentService struct {
	DB *gorm.DB
}

func NewTournamentService(db *gorm.DB) *TournamentService {
	return &TournamentService{DB: db}
}

// parseSchedule pulls the three-phase schedule out of the form and checks
// its ordering. All three may be absent on a draft; a present-but-broken
// timestamp is rejected rather than silently dropped.
func parseSchedule(c *fiber.Ctx) (regStart, regEnd, deadline, resultDate *time.Time, err error) {
	if regStart, err = utils.ParseTimePtr(c.FormValue("registration_start")); err != nil {
		return
	}
	if regEnd, err = utils.ParseTimePtr(c.FormValue("registration_end")); err != nil {
		return
	}
	if deadline, err = utils.ParseTimePtr(c.FormValue("submission_deadline")); err != nil {
		return
	}
	if resultDate, err = utils.ParseTimePtr(c.FormValue("result_date")); err != nil {
		return
	}
	if regStart != nil && regEnd != nil && regEnd.Before(*regStart) {
		err = errors.New("registration_end must not precede registration_start")
		return
	}
	if regEnd != nil && deadline != nil && deadline.Before(*regEnd) {
		err = errors.New("submission_deadline must not precede registration_end")
	}
	return
}

func (s *TournamentService) CreateTournament(c *fiber.Ctx) error {
	title := c.FormValue("title")
	if title == "" {
		return c.Status(400).JSON(fiber.Map{"error": "title is required"})
	}

	entryFee := 0.0
	if v := c.FormValue("entry_fee"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f < 0 {
			return c.Status(400).JSON(fiber.Map{"error": "entry_fee must be a non-negative number"})
		}
		entryFee = f
	}

	regStart, regEnd, deadline, resultDate, err := parseSchedule(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	var publishSchedule *time.Time
	if publishSchedule, err = utils.ParseTimePtr(c.FormValue("publish_schedule")); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid publish_schedule (use RFC3339)"})
	}

	// --- Handle main photo → R2 ---
	var mainPhotoURL string
	if mainPhoto, err := c.FormFile("main_photo"); err == nil && mainPhoto.Size > 0 {
		ext := filepath.Ext(mainPhoto.Filename)
		if ext == "" {
			ext = ".jpg"
		}
		key := fmt.Sprintf("tournaments/main/%s-%s%s", slug.Make(title), uuid.NewString(), ext)
		url, err := utils.UploadFileToR2(mainPhoto, key)
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": "failed to upload main photo"})
		}
		mainPhotoURL = url
	}

	tournament := &models.Tournament{
		ID:                 uuid.NewString(),
		Title:              title,
		Description:        c.FormValue("description"),
		Rules:              c.FormValue("rules"),
		Category:           c.FormValue("category"),
		EntryFee:           entryFee,
		MainPhotoURL:       mainPhotoURL,
		RegistrationStart:  regStart,
		RegistrationEnd:    regEnd,
		SubmissionDeadline: deadline,
		ResultDate:         resultDate,
		PublishSchedule:    publishSchedule,
		Status:             "draft", // Always start as draft
	}
	if publishSchedule != nil {
		tournament.Status = "scheduled"
	}

	if err := s.DB.Create(tournament).Error; err != nil {
		log.Printf("ERROR creating tournament: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "DB insert failed"})
	}

	ApplyPhase(tournament, time.Now())
	return c.Status(201).JSON(tournament)
}

// GetAllTournaments lists tournaments with the projected lifecycle phase
// stamped on every record.
func (s *TournamentService) GetAllTournaments(c *fiber.Ctx) error {
	var tournaments []models.Tournament
	if err := s.DB.Order("created_at DESC").Find(&tournaments).Error; err != nil {
		log.Printf("ERROR fetching tournaments: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch tournaments"})
	}
	now := time.Now()
	for i := range tournaments {
		ApplyPhase(&tournaments[i], now)
	}
	return c.JSON(tournaments)
}

// GetTournamentByID returns one tournament with projected phase and
// submission counts.
func (s *TournamentService) GetTournamentByID(c *fiber.Ctx) error {
	id := c.Params("id")
	var tournament models.Tournament
	if err := s.DB.First(&tournament, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "tournament not found"})
		}
		log.Printf("ERROR fetching tournament %s: %v", id, err)
		return c.Status(500).JSON(fiber.Map{"error": "DB error"})
	}

	var subsCount int64
	s.DB.Model(&models.Submission{}).
		Where("tournament_id = ?", id).
		Count(&subsCount)

	var scoredCount int64
	s.DB.Model(&models.Submission{}).
		Where("tournament_id = ? AND score IS NOT NULL", id).
		Count(&scoredCount)

	tournament.SubmissionsCount = subsCount
	tournament.ScoredCount = scoredCount
	ApplyPhase(&tournament, time.Now())
	return c.JSON(tournament)
}

// UpdateTournament updates schedule and descriptive fields. Schedule edits
// are refused once ranks exist so the pipeline's inputs stay stable.
func (s *TournamentService) UpdateTournament(c *fiber.Ctx) error {
	id := c.Params("id")
	var existing models.Tournament
	if err := s.DB.First(&existing, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "tournament not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "DB error"})
	}

	regStart, regEnd, deadline, resultDate, err := parseSchedule(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}
	scheduleChanged := regStart != nil || regEnd != nil || deadline != nil
	if scheduleChanged && existing.RankGenerated {
		return c.Status(409).JSON(fiber.Map{"error": "schedule is frozen once ranks are generated"})
	}

	updates := map[string]interface{}{}
	if v := c.FormValue("title"); v != "" {
		updates["title"] = v
	}
	if v := c.FormValue("description"); v != "" {
		updates["description"] = v
	}
	if v := c.FormValue("rules"); v != "" {
		updates["rules"] = v
	}
	if v := c.FormValue("category"); v != "" {
		updates["category"] = v
	}
	if v := c.FormValue("entry_fee"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 {
			updates["entry_fee"] = f
		}
	}
	if regStart != nil {
		updates["registration_start"] = regStart
	}
	if regEnd != nil {
		updates["registration_end"] = regEnd
	}
	if deadline != nil {
		updates["submission_deadline"] = deadline
	}
	if resultDate != nil {
		updates["result_date"] = resultDate
	}

	if mainPhoto, err := c.FormFile("main_photo"); err == nil && mainPhoto.Size > 0 {
		ext := filepath.Ext(mainPhoto.Filename)
		if ext == "" {
			ext = ".jpg"
		}
		key := fmt.Sprintf("tournaments/main/%s-%s%s", slug.Make(existing.Title), uuid.NewString(), ext)
		url, err := utils.UploadFileToR2(mainPhoto, key)
		if err != nil {
			log.Printf("ERROR: Failed to upload new main photo for tournament %s: %v", id, err)
			return c.Status(500).JSON(fiber.Map{"error": "failed to upload main photo"})
		}
		updates["main_photo_url"] = url
	}

	if len(updates) == 0 {
		return c.Status(400).JSON(fiber.Map{"error": "nothing to update"})
	}
	if err := s.DB.Model(&existing).Updates(updates).Error; err != nil {
		log.Printf("ERROR updating tournament %s: %v", id, err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to update tournament"})
	}

	s.DB.First(&existing, "id = ?", id)
	ApplyPhase(&existing, time.Now())
	return c.JSON(existing)
}

func (s *TournamentService) DeleteTournament(c *fiber.Ctx) error {
	id := c.Params("id")
	return s.DB.Transaction(func(tx *gorm.DB) error {
		// Delete in dependency order: certificates reference submissions,
		// submissions reference the tournament.
		if err := tx.Where("tournament_id = ?", id).Delete(&models.Certificate{}).Error; err != nil {
			return err
		}
		if err := tx.Where("tournament_id = ?", id).Delete(&models.Submission{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.Tournament{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return fiber.NewError(404, "tournament not found")
		}
		return nil
	})
}

// PublishNow makes a tournament publicly visible immediately.
func (s *TournamentService) PublishNow(c *fiber.Ctx) error {
	id := c.Params("id")
	now := time.Now()
	result := s.DB.Model(&models.Tournament{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":           "published",
			"published_at":     now,
			"publish_schedule": nil,
		})
	if result.Error != nil {
		return c.Status(500).JSON(fiber.Map{"error": "DB update failed"})
	}
	if result.RowsAffected == 0 {
		return c.Status(404).JSON(fiber.Map{"error": "tournament not found"})
	}
	return c.JSON(fiber.Map{"message": "tournament published"})
}

// SchedulePublish sets a future publish time picked up by the scheduler.
func (s *TournamentService) SchedulePublish(c *fiber.Ctx) error {
	id := c.Params("id")
	type Req struct {
		PublishAt string `json:"publish_at"`
	}
	var req Req
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON"})
	}
	at, err := utils.ParseTimePtr(req.PublishAt)
	if err != nil || at == nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid publish_at (use RFC3339)"})
	}
	if at.Before(time.Now()) {
		return c.Status(400).JSON(fiber.Map{"error": "publish_at must be in the future"})
	}
	result := s.DB.Model(&models.Tournament{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":           "scheduled",
			"publish_schedule": at,
		})
	if result.Error != nil {
		return c.Status(500).JSON(fiber.Map{"error": "DB update failed"})
	}
	if result.RowsAffected == 0 {
		return c.Status(404).JSON(fiber.Map{"error": "tournament not found"})
	}
	return c.JSON(fiber.Map{"message": "publish scheduled", "publish_at": at})
}

// CancelScheduledPublish reverts a scheduled tournament to draft.
func (s *TournamentService) CancelScheduledPublish(c *fiber.Ctx) error {
	id := c.Params("id")
	result := s.DB.Model(&models.Tournament{}).
		Where("id = ? AND status = 'scheduled'", id).
		Updates(map[string]interface{}{
			"status":           "draft",
			"publish_schedule": nil,
		})
	if result.Error != nil {
		return c.Status(500).JSON(fiber.Map{"error": "DB update failed"})
	}
	if result.RowsAffected == 0 {
		return c.Status(404).JSON(fiber.Map{"error": "no scheduled publish for tournament"})
	}
	return c.JSON(fiber.Map{"message": "scheduled publish cancelled"})
}
