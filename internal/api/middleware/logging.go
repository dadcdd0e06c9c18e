package middleware

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// RequestLogging logs every HTTP request with its status and latency.
func RequestLogging(log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			start := time.Now()

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			status := c.Response().Status
			evt := log.Info()
			if status >= 500 {
				evt = log.Error()
			} else if status >= 400 {
				evt = log.Warn()
			}
			evt.Str("method", req.Method).
				Str("uri", req.RequestURI).
				Str("remote", c.RealIP()).
				Int("status", status).
				Dur("latency", time.Since(start)).
				Msg("http request")
			return nil
		}
	}
}
