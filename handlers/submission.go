package handlers

import (
	"artistry-nu-platform/middleware"
	"artistry-nu-platform/services"

	"github.com/gofiber/fiber/v2"
)

func SetupSubmissionRoutes(app *fiber.App, submissionService *services.SubmissionService) {
	secured := app.Group("/", middleware.UserContextMiddleware())

	// Participant actions
	secured.Post("/tournaments/:id/submissions", submissionService.CreateSubmission)
	secured.Get("/users/me/submissions", submissionService.GetMySubmissions)
	secured.Get("/submissions/:id", submissionService.GetSubmissionByID)

	// 🔒 Admin-only: jury scoring and payment administration
	admin := secured.Group("/admin", middleware.RequireAdmin())
	admin.Get("/tournaments/:id/submissions", submissionService.GetTournamentSubmissions)
	admin.Patch("/submissions/:id/score", submissionService.ScoreSubmission)
	admin.Post("/submissions/:id/payment/confirm", submissionService.ConfirmPayment)
}
