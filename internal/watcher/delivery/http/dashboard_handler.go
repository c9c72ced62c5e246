package http

import (
	"errors"
	"net/http"
	"strconv"

	"golang-stock-watchlist/internal/entity"
	"golang-stock-watchlist/internal/watcher/dto"
	"golang-stock-watchlist/internal/watcher/repository"
	"golang-stock-watchlist/internal/watcher/service"
	"golang-stock-watchlist/pkg/logger"

	"github.com/labstack/echo/v4"
)

const defaultRunsLimit = 20

// DashboardHandler serves the dashboard aggregates and the finished-entry
// history.
type DashboardHandler struct {
	watchlistService service.WatchlistService
	runRepo          repository.DailyCheckRunRepository
	logger           *logger.Logger
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(watchlistService service.WatchlistService, runRepo repository.DailyCheckRunRepository, logger *logger.Logger) *DashboardHandler {
	return &DashboardHandler{watchlistService: watchlistService, runRepo: runRepo, logger: logger}
}

// RegisterRoutes registers the dashboard and history routes to the Echo group.
func (h *DashboardHandler) RegisterRoutes(api *echo.Group) {
	dashboard := api.Group("/dashboard")
	dashboard.GET("/summary", h.GetSummary)
	dashboard.GET("/history", h.GetHistory)
	dashboard.GET("/runs", h.GetRuns)
	api.DELETE("/history/:id", h.DeleteHistory)
}

// GetSummary godoc
// @Summary Dashboard summary
// @Description Lifecycle counts plus average peak rate and alert success rate
// @Tags dashboard
// @Produce  json
// @Success 200 {object} dto.DashboardSummary
// @Failure 500 {object} dto.ErrorResponse
// @Router /dashboard/summary [get]
func (h *DashboardHandler) GetSummary(c echo.Context) error {
	summary, err := h.watchlistService.DashboardSummary(c.Request().Context())
	if err != nil {
		h.logger.Error("Failed to build dashboard summary", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to build dashboard summary"})
	}
	return c.JSON(http.StatusOK, summary)
}

// GetHistory godoc
// @Summary Finished entries
// @Description Alerted and expired entries, newest first, optionally filtered by status
// @Tags dashboard
// @Produce  json
// @Param   status  query   string  false   "alerted or expired"
// @Success 200 {array} entity.Watchlist
// @Failure 500 {object} dto.ErrorResponse
// @Router /dashboard/history [get]
func (h *DashboardHandler) GetHistory(c echo.Context) error {
	status := entity.WatchStatus(c.QueryParam("status"))

	entries, err := h.watchlistService.History(c.Request().Context(), status)
	if err != nil {
		h.logger.Error("Failed to list history", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to list history"})
	}
	return c.JSON(http.StatusOK, entries)
}

// GetRuns godoc
// @Summary Recent evaluation runs
// @Description Audit trail of recent daily check runs, newest first
// @Tags dashboard
// @Produce  json
// @Param   limit  query   int  false   "Maximum runs to return"
// @Success 200 {array} entity.DailyCheckRun
// @Failure 500 {object} dto.ErrorResponse
// @Router /dashboard/runs [get]
func (h *DashboardHandler) GetRuns(c echo.Context) error {
	limit := defaultRunsLimit
	if raw := c.QueryParam("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	runs, err := h.runRepo.FindRecent(c.Request().Context(), limit)
	if err != nil {
		h.logger.Error("Failed to list runs", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to list runs"})
	}
	return c.JSON(http.StatusOK, runs)
}

// DeleteHistory godoc
// @Summary Delete a finished entry
// @Description Delete one finished entry and its daily price observations
// @Tags dashboard
// @Produce  json
// @Param   id  path    int  true    "Watchlist entry ID"
// @Success 200 {object} dto.MessageResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /history/{id} [delete]
func (h *DashboardHandler) DeleteHistory(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid history ID"})
	}

	entry, err := h.watchlistService.DeleteHistory(c.Request().Context(), uint(id))
	if err != nil {
		if errors.Is(err, service.ErrWatchlistNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "history entry not found"})
		}
		h.logger.Error("Failed to delete history entry", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to delete history entry"})
	}
	return c.JSON(http.StatusOK, dto.MessageResponse{Message: entry.StockName + " 기록 삭제됨"})
}
