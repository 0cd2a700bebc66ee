package middleware

import (
	"crypto/subtle"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// CronSecret guards scheduler-triggered routes with a shared secret passed either in the
// x-cron-secret header or the token query parameter.
func CronSecret(secret string, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if secret == "" {
			logger.Error("Cron secret is not configured")
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Missing env",
			})
		}

		provided := c.Get("x-cron-secret")
		if provided == "" {
			provided = c.Query("token")
		}

		if subtle.ConstantTimeCompare([]byte(provided), []byte(secret)) != 1 {
			logger.Warn("Rejected cron request", zap.String("path", c.Path()), zap.String("ip", c.IP()))
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Unauthorized",
			})
		}

		return c.Next()
	}
}
