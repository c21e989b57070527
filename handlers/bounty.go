// handlers/bounty.go
package handlers

import (
	"bounty-hunt-system/middleware"
	"bounty-hunt-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupBountyRoutes(app *fiber.App, instructions *services.InstructionService, queries *services.QueryService, uploads *services.UploadService) {
	// 🔓 Read routes
	app.Get("/bounties", queries.ListBounties)
	app.Get("/bounties/:address", queries.GetBounty)
	app.Get("/bounties/:address/submissions", queries.ListSubmissions)
	app.Get("/submissions/:address", queries.GetSubmission)

	// 🔐 Instruction routes — require a verified signer, attached per-route
	// so the check never leaks onto the read surface.
	signed := middleware.SignerContextMiddleware()

	app.Post("/bounties", signed, instructions.CreateBounty)
	app.Post("/bounties/:address/claim", signed, instructions.ClaimBounty)
	app.Post("/bounties/:address/submissions", signed, instructions.SubmitWork)
	app.Post("/bounties/:address/winner", signed, instructions.SelectWinner)

	// Artifact upload happens before submitWork; the returned URL is what
	// the hunter passes as submission_link.
	app.Post("/uploads/submissions", signed, uploads.UploadSubmissionArtifact)
}
