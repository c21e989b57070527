// handlers/profile.go
package handlers

import (
	"bounty-hunt-system/middleware"
	"bounty-hunt-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupProfileRoutes(app *fiber.App, instructions *services.InstructionService, queries *services.QueryService) {
	// 🔓 Read routes — no signer context, but still behind Gateway auth
	app.Get("/profiles/owner/:owner", queries.GetProfileByOwner)
	app.Get("/profiles/:address", queries.GetProfile)

	// 🔐 Instruction routes — require a verified signer. The check is
	// attached per-route: a Group on "/" would gate every route registered
	// after it, reads included.
	signed := middleware.SignerContextMiddleware()

	app.Post("/profiles", signed, instructions.InitUserProfile)
	app.Put("/profiles/:address", signed, instructions.EditProfile)
	app.Delete("/profiles/:address", signed, instructions.DeleteProfile)
}
