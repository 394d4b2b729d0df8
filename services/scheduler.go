// services/scheduler.go
package services

import (
	"log"
	"time"

	"artistry-nu-platform/models"

	"github.com/go-co-op/gocron/v2"
)

func (s *TournamentService) StartPublishScheduler() {
	sched, _ := gocron.NewScheduler()
	sched.Start()

	// Every minute: publish scheduled tournaments whose time has come
	_, _ = sched.NewJob(
		gocron.DurationJob(1*time.Minute),
		gocron.NewTask(func() {
			var tournaments []models.Tournament
			now := time.Now()
			err := s.DB.Where("status = ? AND publish_schedule <= ?", "scheduled", now).
				Find(&tournaments).Error
			if err != nil {
				log.Printf("[Scheduler] DB error: %v", err)
				return
			}

			for _, t := range tournaments {
				t.Status = "published"
				t.PublishedAt = t.PublishSchedule
				t.PublishSchedule = nil
				if err := s.DB.Save(&t).Error; err != nil {
					log.Printf("[Scheduler] Failed to publish tournament %s: %v", t.ID, err)
				} else {
					log.Printf("✅ Auto-published tournament: %s", t.Title)
				}
			}
		}),
	)
}
