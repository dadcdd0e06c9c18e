package middleware

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"StockLens/internal/metrics"
)

// Metrics counts requests per templated route so /api/stocks/:symbol stays one series.
func Metrics(rec *metrics.Recorder) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			rec.RecordRequest(route, c.Request().Method, strconv.Itoa(c.Response().Status), time.Since(start))
			return nil
		}
	}
}
