package http

import (
	"errors"
	"fmt"
	"net/http"

	"golang-stock-watchlist/internal/entity"
	"golang-stock-watchlist/internal/watcher/dto"
	"golang-stock-watchlist/internal/watcher/service"
	"golang-stock-watchlist/pkg/logger"

	"github.com/labstack/echo/v4"
)

// WatchlistHandler handles HTTP requests for the watchlist.
type WatchlistHandler struct {
	watchlistService service.WatchlistService
	logger           *logger.Logger
}

// NewWatchlistHandler creates a new WatchlistHandler.
func NewWatchlistHandler(watchlistService service.WatchlistService, logger *logger.Logger) *WatchlistHandler {
	return &WatchlistHandler{watchlistService: watchlistService, logger: logger}
}

// RegisterRoutes registers the watchlist routes to the Echo group.
func (h *WatchlistHandler) RegisterRoutes(g *echo.Group) {
	g.POST("", h.CreateWatchlist)
	g.GET("", h.ListWatchlist)
	g.GET("/:code", h.GetWatchlistDetail)
	g.DELETE("/:code", h.DeleteWatchlist)
}

// CreateWatchlist godoc
// @Summary Enroll a stock into the watchlist
// @Description Resolve a stock by display name or code and start watching it
// @Tags watchlist
// @Accept  json
// @Produce  json
// @Param   watchlist  body    dto.CreateWatchlistRequest   true    "Stock to enroll"
// @Success 201 {object} entity.Watchlist
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse
// @Router /watchlist [post]
func (h *WatchlistHandler) CreateWatchlist(c echo.Context) error {
	var req dto.CreateWatchlistRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request payload"})
	}
	if req.StockName == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "stock_name is required"})
	}

	entry, err := h.watchlistService.Enroll(c.Request().Context(), req.StockName)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrStockNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": fmt.Sprintf("unknown stock: %s", req.StockName)})
		case errors.Is(err, service.ErrAlreadyWatching):
			return c.JSON(http.StatusConflict, echo.Map{"error": fmt.Sprintf("already watching: %s", req.StockName)})
		case errors.Is(err, service.ErrQuoteUnavailable), errors.Is(err, service.ErrInvalidBaselinePrice):
			return c.JSON(http.StatusBadGateway, echo.Map{"error": "day-0 price unavailable"})
		default:
			h.logger.Error("Failed to enroll stock", logger.ErrorField(err))
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to enroll stock"})
		}
	}

	return c.JSON(http.StatusCreated, entry)
}

// ListWatchlist godoc
// @Summary List watchlist entries
// @Description List watchlist entries, optionally filtered by status
// @Tags watchlist
// @Produce  json
// @Param   status  query   string  false   "Lifecycle status filter"
// @Success 200 {array} entity.Watchlist
// @Failure 500 {object} dto.ErrorResponse
// @Router /watchlist [get]
func (h *WatchlistHandler) ListWatchlist(c echo.Context) error {
	status := entity.WatchStatus(c.QueryParam("status"))

	entries, err := h.watchlistService.List(c.Request().Context(), status)
	if err != nil {
		h.logger.Error("Failed to list watchlist", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to list watchlist"})
	}
	return c.JSON(http.StatusOK, entries)
}

// GetWatchlistDetail godoc
// @Summary Get one entry with its daily prices
// @Description Get the latest entry for a stock code plus its observations
// @Tags watchlist
// @Produce  json
// @Param   code  path    string  true    "Stock code"
// @Success 200 {object} dto.WatchlistDetailResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /watchlist/{code} [get]
func (h *WatchlistHandler) GetWatchlistDetail(c echo.Context) error {
	detail, err := h.watchlistService.Detail(c.Request().Context(), c.Param("code"))
	if err != nil {
		if errors.Is(err, service.ErrWatchlistNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "watchlist entry not found"})
		}
		h.logger.Error("Failed to get watchlist detail", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to get watchlist detail"})
	}
	return c.JSON(http.StatusOK, detail)
}

// DeleteWatchlist godoc
// @Summary Stop watching a stock
// @Description End observation of a watching entry manually
// @Tags watchlist
// @Produce  json
// @Param   code  path    string  true    "Stock code"
// @Success 200 {object} dto.MessageResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /watchlist/{code} [delete]
func (h *WatchlistHandler) DeleteWatchlist(c echo.Context) error {
	entry, err := h.watchlistService.Remove(c.Request().Context(), c.Param("code"))
	if err != nil {
		if errors.Is(err, service.ErrWatchlistNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "no watching entry for that code"})
		}
		h.logger.Error("Failed to remove watchlist entry", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to remove watchlist entry"})
	}
	return c.JSON(http.StatusOK, dto.MessageResponse{Message: fmt.Sprintf("%s 관찰 종료됨", entry.StockName)})
}
