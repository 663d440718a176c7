package api

import (
	"errors"
	"strconv"

	models "MarketPulse/internal/domain/models"
	"MarketPulse/internal/provider"
	"MarketPulse/internal/service/ratelimit"
	"MarketPulse/internal/usecase"
	xhttp "MarketPulse/pkg/http"
	xlogger "MarketPulse/pkg/logger"

	"github.com/labstack/echo/v4"
)

// Limits carries the per-bucket admission limits shared by the handlers.
type Limits struct {
	Quote         int
	History       int
	News          int
	Insight       int
	WindowSeconds int
}

// MarketHandler exposes the market data and insight endpoints.
type MarketHandler struct {
	logger    *xlogger.Logger
	limiter   *ratelimit.Limiter
	limits    Limits
	quotes    *usecase.QuoteUseCase
	history   *usecase.HistoryUseCase
	news      *usecase.NewsUseCase
	aggs      *usecase.AggregatesUseCase
	insight   *usecase.InsightUseCase
	sentiment *usecase.SentimentUseCase
	compare   *usecase.CompareUseCase
	health    func(echo.Context) error
}

func NewMarketHandler(
	logger *xlogger.Logger,
	limiter *ratelimit.Limiter,
	limits Limits,
	quotes *usecase.QuoteUseCase,
	history *usecase.HistoryUseCase,
	news *usecase.NewsUseCase,
	aggs *usecase.AggregatesUseCase,
	insight *usecase.InsightUseCase,
	sentiment *usecase.SentimentUseCase,
	compare *usecase.CompareUseCase,
) *MarketHandler {
	return &MarketHandler{
		logger:    logger,
		limiter:   limiter,
		limits:    limits,
		quotes:    quotes,
		history:   history,
		news:      news,
		aggs:      aggs,
		insight:   insight,
		sentiment: sentiment,
		compare:   compare,
	}
}

// SetHealthCheck installs the /healthz probe body.
func (h *MarketHandler) SetHealthCheck(fn func(echo.Context) error) { h.health = fn }

func (h *MarketHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/v1")
	g.GET("/quote", h.Quote)
	g.GET("/history", h.History)
	g.GET("/news", h.News)
	g.POST("/aggregates/recompute", h.Recompute)
	g.GET("/insight", h.Insight)
	g.GET("/sentiment", h.Sentiment)
	g.GET("/compare", h.Compare)
	e.GET("/healthz", h.Healthz)
}

// admit runs the sliding-window check for one bucket. A limiter backend
// failure fails open: serving without admission control beats serving 500s.
func (h *MarketHandler) admit(c echo.Context, bucket string, limit int) *xhttp.AppError {
	identity := ratelimit.ClientIdentity(c.Request().Header.Get("X-Forwarded-For"))
	d, err := h.limiter.Admit(c.Request().Context(), bucket, identity, limit, h.limits.WindowSeconds)
	if err != nil {
		h.logger.Warn("rate limiter unavailable",
			xlogger.String("bucket", bucket),
			xlogger.Error(err),
		)
		return nil
	}
	if !d.Allowed {
		c.Response().Header().Set("Retry-After", strconv.Itoa(d.RetryAfterSeconds))
		return xhttp.TooManyRequestsError("rate limit exceeded", d.RetryAfterSeconds)
	}
	return nil
}

func (h *MarketHandler) respondErr(c echo.Context, err error) error {
	switch {
	case errors.Is(err, usecase.ErrInvalidSymbol):
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError("invalid symbol"))
	case errors.Is(err, usecase.ErrNoData):
		return xhttp.AppErrorResponse(c, xhttp.NotFoundError("no data for symbol"))
	case provider.IsChainExhausted(err):
		h.logger.Error("all providers failed", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.BadGatewayError("all upstream providers failed"))
	default:
		h.logger.Error("usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
}

func (h *MarketHandler) Quote(c echo.Context) error {
	if appErr := h.admit(c, "quote", h.limits.Quote); appErr != nil {
		return xhttp.AppErrorResponse(c, appErr)
	}
	req := &models.QuoteRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	q, cached, err := h.quotes.GetQuote(c.Request().Context(), req.Symbol)
	if err != nil {
		return h.respondErr(c, err)
	}
	return xhttp.SuccessResponse(c, map[string]interface{}{
		"quote":  q,
		"cached": cached,
	})
}

func (h *MarketHandler) History(c echo.Context) error {
	if appErr := h.admit(c, "history", h.limits.History); appErr != nil {
		return xhttp.AppErrorResponse(c, appErr)
	}
	req := &models.HistoryRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	hist, cached, err := h.history.GetHistory(c.Request().Context(), *req)
	if err != nil {
		return h.respondErr(c, err)
	}
	return xhttp.SuccessResponse(c, map[string]interface{}{
		"history": hist,
		"cached":  cached,
	})
}

func (h *MarketHandler) News(c echo.Context) error {
	if appErr := h.admit(c, "news", h.limits.News); appErr != nil {
		return xhttp.AppErrorResponse(c, appErr)
	}
	req := &models.NewsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	items, cached, err := h.news.GetNews(c.Request().Context(), *req)
	if err != nil {
		return h.respondErr(c, err)
	}
	return xhttp.SuccessResponse(c, map[string]interface{}{
		"items":  items,
		"cached": cached,
	})
}

func (h *MarketHandler) Recompute(c echo.Context) error {
	if appErr := h.admit(c, "insight", h.limits.Insight); appErr != nil {
		return xhttp.AppErrorResponse(c, appErr)
	}
	req := &models.RecomputeRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	summary, err := h.aggs.Recompute(c.Request().Context(), req.Symbol, req.Range)
	if err != nil {
		return h.respondErr(c, err)
	}
	return xhttp.SuccessResponse(c, summary)
}

func (h *MarketHandler) Insight(c echo.Context) error {
	if appErr := h.admit(c, "insight", h.limits.Insight); appErr != nil {
		return xhttp.AppErrorResponse(c, appErr)
	}
	req := &models.InsightRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	ins, err := h.insight.GetInsight(c.Request().Context(), req.Symbol, req.Horizon)
	if err != nil {
		return h.respondErr(c, err)
	}
	return xhttp.SuccessResponse(c, ins)
}

func (h *MarketHandler) Sentiment(c echo.Context) error {
	if appErr := h.admit(c, "insight", h.limits.Insight); appErr != nil {
		return xhttp.AppErrorResponse(c, appErr)
	}
	req := &models.SentimentRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	s, err := h.sentiment.GetSentiment(c.Request().Context(), req.Symbol, req.Hours)
	if err != nil {
		return h.respondErr(c, err)
	}
	return xhttp.SuccessResponse(c, s)
}

func (h *MarketHandler) Compare(c echo.Context) error {
	if appErr := h.admit(c, "insight", h.limits.Insight); appErr != nil {
		return xhttp.AppErrorResponse(c, appErr)
	}
	req := &models.CompareRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.compare.Compare(c.Request().Context(), req.Symbols, req.Horizon)
	if err != nil {
		return h.respondErr(c, err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *MarketHandler) Healthz(c echo.Context) error {
	if h.health != nil {
		return h.health(c)
	}
	return xhttp.SuccessResponse(c, map[string]string{"status": "ok"})
}
