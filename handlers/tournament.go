package handlers

import (
	"artistry-nu-platform/middleware"
	"artistry-nu-platform/services"

	"github.com/gofiber/fiber/v2"
)

func SetupTournamentRoutes(app *fiber.App, tournamentService *services.TournamentService) {
	// 🔓 Public read paths — phase is projected onto every record
	app.Get("/tournaments", tournamentService.GetAllTournaments)
	app.Get("/tournaments/:id", tournamentService.GetTournamentByID)

	// 🔐 Authenticated + admin-only management
	secured := app.Group("/", middleware.UserContextMiddleware())
	admin := secured.Group("/admin", middleware.RequireAdmin())

	admin.Post("/tournaments", tournamentService.CreateTournament)
	admin.Put("/tournaments/:id", tournamentService.UpdateTournament)
	admin.Delete("/tournaments/:id", tournamentService.DeleteTournament)

	// Publish scheduling
	admin.Post("/tournaments/:id/publish/now", tournamentService.PublishNow)
	admin.Post("/tournaments/:id/publish/schedule", tournamentService.SchedulePublish)
	admin.Post("/tournaments/:id/publish/cancel", tournamentService.CancelScheduledPublish)
}
