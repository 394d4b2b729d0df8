// services/ranking_service.go
package services

import (
	"errors"
	"log"
	"time"

	"artistry-nu-platform/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type RankingService struct {
	DB *gorm.DB
}

func NewRankingService(db *gorm.DB) *RankingService {
	return &RankingService{DB: db}
}

// GenerateRanksForTournament runs the ranking engine over every scored
// submission of a tournament and persists the assigned ranks together with
// the tournament's rank_generated flag in one transaction.
//
// Re-running recomputes ranks from current scores, but only until
// certificates have been issued — after that the denormalized rank on each
// certificate must stay truthful, so the ordering is frozen.
func (s *RankingService) GenerateRanksForTournament(c *fiber.Ctx) error {
	tournamentID := c.Params("id")
	if tournamentID == "" {
		return c.Status(400).JSON(fiber.Map{"success": false, "message": "tournament id required in URL"})
	}

	var tournament models.Tournament
	if err := s.DB.First(&tournament, "id = ?", tournamentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"success": false, "message": "tournament not found"})
		}
		log.Printf("DB Error fetching tournament %s: %v", tournamentID, err)
		return c.Status(500).JSON(fiber.Map{"success": false, "message": "database error"})
	}

	if tournament.CertificatesGenerated {
		return c.Status(409).JSON(fiber.Map{
			"success": false,
			"message": "certificates already issued — ranks are frozen for this tournament",
		})
	}

	var submissions []models.Submission
	if err := s.DB.
		Where("tournament_id = ? AND score IS NOT NULL", tournamentID).
		Find(&submissions).Error; err != nil {
		log.Printf("DB Error fetching scored submissions for %s: %v", tournamentID, err)
		return c.Status(500).JSON(fiber.Map{"success": false, "message": "database error"})
	}
	if len(submissions) == 0 {
		return c.Status(400).JSON(fiber.Map{
			"success": false,
			"message": "no scored submissions for this tournament",
		})
	}

	ranked := RankSubmissions(submissions)

	now := time.Now()
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		for _, sub := range ranked {
			if err := tx.Model(&models.Submission{}).
				Where("id = ?", sub.ID).
				Update("rank", sub.Rank).Error; err != nil {
				return err
			}
		}
		return tx.Model(&models.Tournament{}).
			Where("id = ?", tournamentID).
			Updates(map[string]interface{}{
				"rank_generated":    true,
				"rank_generated_at": now,
			}).Error
	})
	if err != nil {
		log.Printf("❌ [RANKING] transaction failed for tournament %s: %v", tournamentID, err)
		return c.Status(500).JSON(fiber.Map{"success": false, "message": "failed to persist ranks"})
	}

	log.Printf("✅ [RANKING] ranked %d submission(s) for tournament %s", len(ranked), tournamentID)
	return c.JSON(fiber.Map{
		"success":      true,
		"message":      "ranks generated",
		"total_ranked": len(ranked),
	})
}

// GetTournamentRanking returns the ranked leaderboard for display.
func (s *RankingService) GetTournamentRanking(c *fiber.Ctx) error {
	tournamentID := c.Params("id")
	var submissions []models.Submission
	if err := s.DB.
		Where("tournament_id = ? AND score IS NOT NULL AND rank > 0", tournamentID).
		Order("rank ASC, applicant_name ASC").
		Find(&submissions).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch ranking"})
	}
	return c.JSON(submissions)
}
