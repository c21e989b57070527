// middleware/auth.go
package middleware

import (
	"log"

	"bounty-hunt-system/ledger"

	"github.com/gofiber/fiber/v2"
)

// SignerContextMiddleware extracts the verified signer identity set by the
// Gateway. Instruction routes are grouped behind it; read routes are not.
func SignerContextMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := c.Get("X-Signer-Address")
		if raw == "" {
			log.Printf("❌ [SIGNER_CTX] X-Signer-Address required but missing on %s", c.Path())
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "missing X-Signer-Address — instruction must come through gateway with a verified signer",
			})
		}

		if _, err := ledger.ParseAddress(raw); err != nil {
			log.Printf("❌ [SIGNER_CTX] Malformed signer address on %s: %v", c.Path(), err)
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "malformed X-Signer-Address",
			})
		}

		c.Locals("signer_address", raw)
		return c.Next()
	}
}
