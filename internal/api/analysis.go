package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"StockLens/internal/analyzer"
	"StockLens/internal/dataset"
	"StockLens/internal/model"
)

// AnalysisParams are shared by JSON and upload analyses.
type AnalysisParams struct {
	Mode     string   `json:"mode" form:"mode" default:"regression" validate:"oneof=regression classification clustering"`
	Target   string   `json:"target" form:"target"`
	Features []string `json:"features" form:"features"`
	// Horizon defaults to the configured horizon when omitted; 0 predicts the same day.
	// Form posts carry it as a plain string, see AnalyzeUpload.
	Horizon      *int    `json:"horizon" form:"-" validate:"omitempty,min=0,max=250"`
	Threshold    float64 `json:"threshold" form:"threshold" validate:"gte=0,lt=1"`
	Indicators   bool    `json:"indicators" form:"indicators"`
	Clusters     int     `json:"clusters" form:"clusters" validate:"omitempty,min=2,max=20"`
	AutoClusters bool    `json:"auto_clusters" form:"auto_clusters"`
	Theme        string  `json:"theme" form:"theme"`
	// Visualization keeps the bundle in the reply.
	Visualization bool `json:"visualization" form:"visualization"`
}

// AnalysisRequest analyzes a downloaded price history.
type AnalysisRequest struct {
	Symbol  string `json:"symbol" validate:"required,max=16"`
	Start   string `json:"start" validate:"omitempty,datetime=2006-01-02"`
	End     string `json:"end" validate:"omitempty,datetime=2006-01-02"`
	Refresh bool   `json:"refresh"`
	AnalysisParams
}

// UploadRequest analyzes an uploaded CSV or XLSX file sent as multipart field "file".
type UploadRequest struct {
	AnalysisParams
}

func (h *Handlers) toRequest(p AnalysisParams) analyzer.Request {
	horizon := h.cfg.DefaultHorizon
	if p.Horizon != nil {
		horizon = *p.Horizon
	}
	return analyzer.Request{
		Mode:           model.AnalysisMode(p.Mode),
		Target:         p.Target,
		Features:       p.Features,
		Horizon:        horizon,
		Threshold:      p.Threshold,
		WithIndicators: p.Indicators,
		Clusters:       p.Clusters,
		AutoClusters:   p.AutoClusters,
		Theme:          p.Theme,
	}
}

func (h *Handlers) respond(c echo.Context, p AnalysisParams, req analyzer.Request) error {
	report, err := h.svc.Run(c.Request().Context(), req)
	if err != nil {
		return AppErrorResponse(c, err)
	}
	if !p.Visualization {
		report.Bundle = nil
	}
	return SuccessResponse(c, report)
}

// Analyze runs an analysis on downloaded prices.
func (h *Handlers) Analyze(c echo.Context) error {
	body := &AnalysisRequest{}
	if verr := ReadAndValidateRequest(c, body); verr != nil {
		return BadRequestResponse(c, verr)
	}
	from, to, aerr := h.dateRange(body.Start, body.End)
	if aerr != nil {
		return AppErrorResponse(c, aerr)
	}

	req := h.toRequest(body.AnalysisParams)
	req.Symbol = strings.ToUpper(body.Symbol)
	req.Start, req.End, req.ForceRefresh = from, to, body.Refresh
	return h.respond(c, body.AnalysisParams, req)
}

// AnalyzeUpload runs an analysis on an uploaded price file.
func (h *Handlers) AnalyzeUpload(c echo.Context) error {
	if c.Request().ContentLength > h.cfg.MaxUploadBytes {
		return AppErrorResponse(c, tooLarge(h.cfg.MaxUploadBytes))
	}
	body := &UploadRequest{}
	if v := c.FormValue("horizon"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return BadRequestResponse(c, []ValidationError{{
				Code: "ERR_NUMERIC", Field: "horizon", Message: "horizon must be an integer",
			}})
		}
		body.Horizon = &n
	}
	if verr := ReadAndValidateRequest(c, body); verr != nil {
		return BadRequestResponse(c, verr)
	}

	fh, err := c.FormFile("file")
	if err != nil {
		return AppErrorResponse(c, BadRequestErrorf("file", "multipart field \"file\" is required"))
	}
	if fh.Size > h.cfg.MaxUploadBytes {
		return AppErrorResponse(c, tooLarge(h.cfg.MaxUploadBytes))
	}
	f, err := fh.Open()
	if err != nil {
		return AppErrorResponse(c, fmt.Errorf("open upload: %w", err))
	}
	defer f.Close()

	series, err := dataset.Read(fh.Filename, f)
	if err != nil {
		return AppErrorResponse(c, err)
	}
	h.log.Debug().Str("file", fh.Filename).Int("rows", len(series.Bars)).Msg("upload parsed")

	req := h.toRequest(body.AnalysisParams)
	req.Upload = series
	req.Symbol = series.Symbol
	return h.respond(c, body.AnalysisParams, req)
}

func tooLarge(limit int64) *AppError {
	return NewAppError("ERR_TOO_LARGE", "file", fmt.Sprintf("upload exceeds %d bytes", limit), http.StatusRequestEntityTooLarge).
		WithParam("max", limit)
}
