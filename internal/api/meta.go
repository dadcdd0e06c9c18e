package api

import (
	"github.com/labstack/echo/v4"

	"StockLens/internal/theme"
)

type ThemeRequest struct {
	Name string `param:"name" validate:"required"`
}

type RunsQuery struct {
	Limit int `query:"limit" default:"20" validate:"min=1,max=500"`
}

// ListThemes returns every theme with its palette and fonts.
func (h *Handlers) ListThemes(c echo.Context) error {
	names := theme.Names()
	rows := make([]*theme.Theme, 0, len(names))
	for _, n := range names {
		t, _ := theme.Lookup(n)
		rows = append(rows, t)
	}
	return ListResponse(c, rows, len(rows))
}

// GetTheme returns one theme by name or alias.
func (h *Handlers) GetTheme(c echo.Context) error {
	req := &ThemeRequest{}
	if verr := ReadAndValidateRequest(c, req); verr != nil {
		return BadRequestResponse(c, verr)
	}
	t, ok := theme.Lookup(req.Name)
	if !ok {
		return AppErrorResponse(c, NotFoundErrorf("theme %q not found", req.Name))
	}
	return SuccessResponse(c, t)
}

// ListRuns returns the most recent analysis runs, newest first.
func (h *Handlers) ListRuns(c echo.Context) error {
	req := &RunsQuery{}
	if verr := ReadAndValidateRequest(c, req); verr != nil {
		return BadRequestResponse(c, verr)
	}
	runs, err := h.svc.Recorder().RecentRuns(req.Limit)
	if err != nil {
		h.log.Error().Err(err).Msg("list runs")
		return AppErrorResponse(c, err)
	}
	return ListResponse(c, runs, len(runs))
}
