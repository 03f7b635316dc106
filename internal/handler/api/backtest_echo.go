package api

import (
	"net/http"

	models "FactorBack/internal/domain/models"
	domrepo "FactorBack/internal/domain/repository"
	"FactorBack/internal/usecase"
	xhttp "FactorBack/pkg/http"
	xlogger "FactorBack/pkg/logger"

	"github.com/labstack/echo/v4"
)

// BacktestEchoHandler exposes backtest submission and retrieval.
type BacktestEchoHandler struct {
	logger *xlogger.Logger
	uc     *usecase.BacktestUseCase
	bars   domrepo.BarStore
	ws     *ProgressWSHandler
}

func NewBacktestEchoHandler(logger *xlogger.Logger, uc *usecase.BacktestUseCase, bars domrepo.BarStore, ws *ProgressWSHandler) *BacktestEchoHandler {
	return &BacktestEchoHandler{logger: logger, uc: uc, bars: bars, ws: ws}
}

func (h *BacktestEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.POST("/backtest", h.Run)
	g.GET("/backtest/:id", h.Result)
	g.GET("/strategies", h.Strategies)
	e.GET("/healthz", h.Health)
	if h.ws != nil {
		e.GET("/ws/backtest/:id", h.ws.Stream)
	}
}

func (h *BacktestEchoHandler) Run(c echo.Context) error {
	req := &models.RunBacktestRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	runID, err := h.uc.Submit(c.Request().Context(), req)
	if err != nil {
		switch err.(type) {
		case *models.ConfigurationError, *models.DataIntegrityError:
			return xhttp.BadRequestResponse(c, err.Error())
		}
		h.logger.Error("backtest submit error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}

	return xhttp.CreatedResponse(c, &models.RunBacktestResponse{
		RunID:   runID,
		Symbols: req.Symbols,
		Status:  models.RunQueued,
	})
}

func (h *BacktestEchoHandler) Result(c echo.Context) error {
	id := c.Param("id")
	res, ok := h.uc.Result(id)
	if !ok {
		return xhttp.NotFoundResponse(c, "unknown run id")
	}

	resp := &models.BacktestResultResponse{
		RunID:      res.ID,
		Symbols:    res.Symbols,
		StartedAt:  res.StartedAt,
		FinishedAt: res.FinishedAt,
		NumTrades:  len(res.Trades),
		Violations: res.Violations,
	}
	if res.Report != nil {
		resp.Metrics = res.Report.ToMap()
		resp.FinalEquity = res.Report.FinalEquity
	}
	if res.Status == models.RunFailed {
		return xhttp.DataResponse(c, http.StatusOK, map[string]interface{}{
			"run_id": res.ID,
			"status": res.Status,
			"error":  res.Err,
		})
	}
	if res.Status != models.RunDone {
		return xhttp.DataResponse(c, http.StatusOK, map[string]interface{}{
			"run_id": res.ID,
			"status": res.Status,
		})
	}
	if c.QueryParam("include") == "full" {
		resp.EquityCurve = res.EquityCurve
		resp.Trades = res.Trades
	}
	return xhttp.SuccessResponse(c, resp)
}

func (h *BacktestEchoHandler) Strategies(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.uc.Strategies())
}

func (h *BacktestEchoHandler) Health(c echo.Context) error {
	if err := h.bars.Health(c.Request().Context()); err != nil {
		return xhttp.DataResponse(c, http.StatusServiceUnavailable, map[string]string{
			"status": "degraded",
			"bars":   err.Error(),
		})
	}
	return xhttp.SuccessResponse(c, map[string]string{"status": "ok"})
}
