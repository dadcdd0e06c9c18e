package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"StockLens/internal/dataset"
	"StockLens/internal/model"
)

// StockQuery selects a price history.
type StockQuery struct {
	Symbol  string `param:"symbol" validate:"required,max=16"`
	Start   string `query:"start" validate:"omitempty,datetime=2006-01-02"`
	End     string `query:"end" validate:"omitempty,datetime=2006-01-02"`
	Refresh bool   `query:"refresh"`
	// Tail keeps only the last N rows; 0 keeps all.
	Tail int `query:"tail" validate:"min=0"`
	// Raw skips the indicator columns.
	Raw    bool   `query:"raw"`
	Format string `query:"format" default:"json" validate:"oneof=json csv"`
}

// VisualizationQuery selects a price history and optionally one view of its bundle.
type VisualizationQuery struct {
	Symbol  string `param:"symbol" validate:"required,max=16"`
	Start   string `query:"start" validate:"omitempty,datetime=2006-01-02"`
	End     string `query:"end" validate:"omitempty,datetime=2006-01-02"`
	Refresh bool   `query:"refresh"`
	View    string `query:"view"`
}

// StockResponse is a price history with or without indicators.
type StockResponse struct {
	Symbol    string       `json:"symbol"`
	Source    string       `json:"source"`
	FetchedAt time.Time    `json:"fetched_at"`
	Rows      int          `json:"rows"`
	Frame     *model.Frame `json:"frame"`
}

func (h *Handlers) load(c echo.Context, symbol, start, end string, refresh bool) (*model.PriceSeries, error) {
	from, to, aerr := h.dateRange(start, end)
	if aerr != nil {
		return nil, aerr
	}
	return h.svc.Collector().Load(c.Request().Context(), symbol, from, to, refresh)
}

// GetStock returns daily bars, by default with every indicator column.
func (h *Handlers) GetStock(c echo.Context) error {
	req := &StockQuery{}
	if verr := ReadAndValidateRequest(c, req); verr != nil {
		return BadRequestResponse(c, verr)
	}
	series, err := h.load(c, req.Symbol, req.Start, req.End, req.Refresh)
	if err != nil {
		return AppErrorResponse(c, err)
	}

	if req.Format == "csv" {
		bars := series.Bars
		if req.Tail > 0 && req.Tail < len(bars) {
			bars = bars[len(bars)-req.Tail:]
		}
		c.Response().Header().Set(echo.HeaderContentType, "text/csv; charset=utf-8")
		c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+series.Symbol+`.csv"`)
		c.Response().WriteHeader(http.StatusOK)
		return dataset.WriteCSV(c.Response(), bars)
	}

	frame := series.Frame()
	if !req.Raw {
		if frame, err = h.svc.Pipeline().Indicators(frame); err != nil {
			return AppErrorResponse(c, err)
		}
	}
	frame = frame.Tail(req.Tail)
	return SuccessResponse(c, &StockResponse{
		Symbol:    series.Symbol,
		Source:    series.Source,
		FetchedAt: series.FetchedAt,
		Rows:      frame.Len(),
		Frame:     frame,
	})
}

// GetVisualization returns the display views of a price history.
func (h *Handlers) GetVisualization(c echo.Context) error {
	req := &VisualizationQuery{}
	if verr := ReadAndValidateRequest(c, req); verr != nil {
		return BadRequestResponse(c, verr)
	}
	series, err := h.load(c, req.Symbol, req.Start, req.End, req.Refresh)
	if err != nil {
		return AppErrorResponse(c, err)
	}
	bundle, err := h.svc.Pipeline().Visualization(series.Frame())
	if err != nil {
		return AppErrorResponse(c, err)
	}

	switch req.View {
	case "":
		return SuccessResponse(c, bundle)
	case model.ViewCorrelation:
		return SuccessResponse(c, bundle.Correlation)
	}
	view, ok := bundle.View(req.View)
	if !ok {
		return AppErrorResponse(c, NotFoundErrorf("view %q not found", req.View))
	}
	return SuccessResponse(c, view)
}
