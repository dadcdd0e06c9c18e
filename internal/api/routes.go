package api

import "github.com/labstack/echo/v4"

// RegisterRoutes implements Handler.
func (h *Handlers) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", h.Health)

	g := e.Group("/api")
	g.GET("/themes", h.ListThemes)
	g.GET("/themes/:name", h.GetTheme)
	g.GET("/stocks/:symbol", h.GetStock)
	g.GET("/stocks/:symbol/visualization", h.GetVisualization)
	g.POST("/analysis", h.Analyze)
	g.POST("/analysis/upload", h.AnalyzeUpload)
	g.GET("/runs", h.ListRuns)
}

// Health reports liveness.
func (h *Handlers) Health(c echo.Context) error {
	return SuccessResponse(c, map[string]string{"state": "ok"})
}
