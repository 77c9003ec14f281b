package httpserver

import (
	"github.com/labstack/echo/v4"

	"github.com/suniastar/twitch-api/internal/platform/correlation"
)

// correlationMiddleware tags every request with a fresh correlation ID. The
// webhook handler replaces it with the Twitch message ID once verified.
func correlationMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := correlation.WithID(c.Request().Context(), correlation.NewID())
		c.SetRequest(c.Request().WithContext(ctx))
		return next(c)
	}
}
