// handlers/account.go
package handlers

import (
	"bounty-hunt-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupAccountRoutes(app *fiber.App, queries *services.QueryService) {
	// 🔓 Raw record space reads — Gateway auth only
	app.Get("/accounts/:address", queries.GetAccount)
	app.Get("/wallets/:address", queries.GetWallet)
}
