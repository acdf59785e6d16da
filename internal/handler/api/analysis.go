package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"FinScope/internal/domain/models"
	"FinScope/internal/service/ratelimit"
	"FinScope/internal/usecase"
	"FinScope/pkg/cache"
	xhttp "FinScope/pkg/http"
	xlogger "FinScope/pkg/logger"
	"FinScope/pkg/util"
)

// AnalysisHandler serves the analysis, signals, history and stored-analyses
// endpoints under /api.
type AnalysisHandler struct {
	logger   *xlogger.Logger
	analyzer *usecase.Analyzer
	signals  *usecase.SecondarySignalsUseCase
	history  *usecase.HistoryUseCase
	recent   *usecase.RecentAnalysesUseCase
	cache    cache.Service
	cacheTTL time.Duration
	limiter  *ratelimit.Limiter
}

// HandlerOption configures an AnalysisHandler.
type HandlerOption func(*AnalysisHandler)

// WithResponseCache caches analyze responses per ticker for ttl.
func WithResponseCache(c cache.Service, ttl time.Duration) HandlerOption {
	return func(h *AnalysisHandler) {
		h.cache = c
		h.cacheTTL = ttl
	}
}

// WithRateLimit limits /api requests per client IP.
func WithRateLimit(l *ratelimit.Limiter) HandlerOption {
	return func(h *AnalysisHandler) { h.limiter = l }
}

func NewAnalysisHandler(
	logger *xlogger.Logger,
	analyzer *usecase.Analyzer,
	signals *usecase.SecondarySignalsUseCase,
	history *usecase.HistoryUseCase,
	recent *usecase.RecentAnalysesUseCase,
	opts ...HandlerOption,
) *AnalysisHandler {
	h := &AnalysisHandler{
		logger:   logger,
		analyzer: analyzer,
		signals:  signals,
		history:  history,
		recent:   recent,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *AnalysisHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	if h.limiter != nil {
		g.Use(h.rateLimit)
	}
	g.GET("/analyze", h.Analyze)
	g.GET("/signals", h.Signals)
	g.GET("/history", h.History)
	g.GET("/analyses", h.Analyses)
}

func (h *AnalysisHandler) rateLimit(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !h.limiter.Allow(c.RealIP()) {
			return xhttp.AppErrorResponse(c, xhttp.TooManyRequestsError("too many requests, slow down"))
		}
		return next(c)
	}
}

func (h *AnalysisHandler) Analyze(c echo.Context) error {
	req := &models.AnalyzeRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	ctx := c.Request().Context()
	symbol := util.NormalizeTicker(req.Ticker)
	key := cache.Key("analysis", symbol)

	if h.cache != nil && !req.Refresh {
		if res, err := cache.GetJSON[models.AnalysisResult](ctx, h.cache, key); err == nil {
			c.Response().Header().Set("X-Cache", "HIT")
			return xhttp.SuccessResponse(c, res)
		}
	}

	res, err := h.analyzer.Analyze(usecase.WithTrigger(ctx, usecase.TriggerAPI), symbol)
	if err != nil {
		h.logger.Warn("analyze failed", xlogger.String("ticker", symbol), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, toAppError(err))
	}

	if h.cache != nil && h.cacheTTL > 0 {
		if err := cache.SetJSON(ctx, h.cache, key, res, h.cacheTTL); err != nil {
			h.logger.Warn("cache analysis", xlogger.String("ticker", symbol), xlogger.Error(err))
		}
	}
	c.Response().Header().Set("X-Cache", "MISS")
	return xhttp.SuccessResponse(c, res)
}

func (h *AnalysisHandler) Signals(c echo.Context) error {
	req := &models.SignalsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	res, err := h.signals.Get(c.Request().Context(), util.NormalizeTicker(req.Ticker))
	if err != nil {
		h.logger.Error("signals usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, toAppError(err))
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "private, max-age=60")
	return xhttp.SuccessResponse(c, res)
}

func (h *AnalysisHandler) History(c echo.Context) error {
	req := &models.HistoryRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	res, err := h.history.Get(c.Request().Context(), req.Ticker, req.Limit)
	if err != nil {
		return xhttp.AppErrorResponse(c, toAppError(err))
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *AnalysisHandler) Analyses(c echo.Context) error {
	req := &models.RecentAnalysesRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	rows, err := h.recent.Get(c.Request().Context(), req.Ticker, req.Limit)
	if err != nil {
		h.logger.Error("recent analyses error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, toAppError(err))
	}
	return xhttp.ListResponse(c, rows, int64(len(rows)))
}

// toAppError maps domain errors onto the API error envelope.
func toAppError(err error) error {
	var qerr *models.QuoteUnavailableError
	switch {
	case errors.As(err, &qerr):
		return xhttp.ServiceUnavailableError("QUOTE_UNAVAILABLE", fmt.Sprintf("no quote provider could price %s", qerr.Ticker)).
			WithParam("ticker", qerr.Ticker).
			WithParam("reason", qerr.Error()).
			WithError(err)
	case errors.Is(err, models.ErrInvalidTicker):
		return xhttp.NewAppError("INVALID_REQUEST", err.Error(), http.StatusBadRequest).WithField("ticker")
	case errors.Is(err, models.ErrNotConfigured):
		return xhttp.ServiceUnavailableError("STORE_DISABLED", "analysis storage is not configured")
	case errors.Is(err, context.DeadlineExceeded):
		return xhttp.GatewayTimeoutError("analysis timed out")
	}
	return xhttp.InternalError("internal error").WithError(err)
}
