package handlers

import (
	"artistry-nu-platform/middleware"
	"artistry-nu-platform/services"

	"github.com/gofiber/fiber/v2"
)

// SetupCertificateRoutes wires the ranking → issuance pipeline endpoints.
// Both pipeline steps are admin-triggered; ranking must run before issuance.
func SetupCertificateRoutes(app *fiber.App, rankingService *services.RankingService, certificateService *services.CertificateService) {
	// 🔓 Public read paths
	app.Get("/tournaments/:id/ranking", rankingService.GetTournamentRanking)
	app.Get("/submissions/:id/certificate", certificateService.GetSubmissionCertificate)

	secured := app.Group("/", middleware.UserContextMiddleware())
	admin := secured.Group("/admin", middleware.RequireAdmin())

	// Pipeline: rank → certify
	admin.Post("/tournaments/:id/ranks", rankingService.GenerateRanksForTournament)
	admin.Post("/tournaments/:id/certificates", certificateService.GenerateCertificatesForTournament)

	admin.Get("/tournaments/:id/certificates", certificateService.GetTournamentCertificates)
	admin.Get("/certificates/:id/verify", certificateService.VerifyCertificateArtifact)
	admin.Post("/certificates/:id/revoke", certificateService.RevokeCertificate)
}
