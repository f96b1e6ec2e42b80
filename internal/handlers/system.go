package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/codebuildervaibhav/speech-insights/internal/logging"
)

// Version is reported by the health endpoint.
const Version = "1.1.0"

// Health reports that the server is up.
func Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "healthy",
		"version": Version,
	})
}

// Logs serves the buffered server log lines.
func Logs(buf *logging.Buffer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"logs": buf.Lines(),
		})
	}
}

// Metrics exposes a net/http handler, usually the Prometheus scrape
// endpoint, as a fiber route.
func Metrics(h http.Handler) fiber.Handler {
	return adaptor.HTTPHandler(h)
}
