// Package tracker provides the REST handlers of the plant tracker: logging
// plants, summaries, top plants, stats and badges.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Ramouth/BiomeQuest-sub000/internal/models"
	"github.com/Ramouth/BiomeQuest-sub000/internal/repository"
	"github.com/Ramouth/BiomeQuest-sub000/internal/service/badges"
	"github.com/Ramouth/BiomeQuest-sub000/internal/service/consumption"
	"github.com/Ramouth/BiomeQuest-sub000/internal/service/summary"
	"github.com/Ramouth/BiomeQuest-sub000/pkg/logger"
)

// LogService interface for recording plant logs.
type LogService interface {
	LogPlant(ctx context.Context, userID, plantID uint) (*consumption.LogResult, error)
}

// SummaryService interface for aggregation queries.
type SummaryService interface {
	Today() string
	Daily(ctx context.Context, userID uint, date string) (*summary.Daily, error)
	Weekly(ctx context.Context, userID uint, today string) (*summary.Period, error)
	Monthly(ctx context.Context, userID uint, today string) (*summary.Period, error)
	TopPlants(ctx context.Context, userID uint, limit int) ([]summary.TopPlant, error)
	Stats(ctx context.Context, userID uint) (*summary.Stats, error)
}

// BadgeService interface for badge reads.
type BadgeService interface {
	GetUserBadges(ctx context.Context, userID uint) ([]models.UserBadge, error)
	GetBadgeCatalog(ctx context.Context) ([]models.Badge, error)
}

// PlantCatalog interface for plant catalog reads.
type PlantCatalog interface {
	ListActive(ctx context.Context) ([]models.Plant, error)
}

// Handler handles tracker API requests.
type Handler struct {
	logService     LogService
	summaryService SummaryService
	badgeService   BadgeService
	plants         PlantCatalog
	log            *logger.Logger
}

// NewHandler creates a new tracker handler.
func NewHandler(
	logService *consumption.Service,
	summaryService *summary.Service,
	badgeService *badges.Service,
	plants *repository.PlantRepository,
	log *logger.Logger,
) *Handler {
	return NewHandlerWithInterfaces(logService, summaryService, badgeService, plants, log)
}

// NewHandlerWithInterfaces creates a new tracker handler with interface dependencies (useful for testing).
func NewHandlerWithInterfaces(
	logService LogService,
	summaryService SummaryService,
	badgeService BadgeService,
	plants PlantCatalog,
	log *logger.Logger,
) *Handler {
	return &Handler{
		logService:     logService,
		summaryService: summaryService,
		badgeService:   badgeService,
		plants:         plants,
		log:            log,
	}
}

// Register mounts the routes on rg.
func (h *Handler) Register(rg *gin.RouterGroup) {
	users := rg.Group("/users/:id")
	users.POST("/logs", h.LogPlant)
	users.GET("/summary/daily", h.GetDailySummary)
	users.GET("/summary/weekly", h.GetWeeklySummary)
	users.GET("/summary/monthly", h.GetMonthlySummary)
	users.GET("/top-plants", h.GetTopPlants)
	users.GET("/stats", h.GetUserStats)
	users.GET("/badges", h.GetUserBadges)

	rg.GET("/badges", h.GetBadgeCatalog)
	rg.GET("/plants", h.GetPlantCatalog)
}

// LogPlantRequest is the body of POST /users/:id/logs.
type LogPlantRequest struct {
	PlantID uint `json:"plant_id" binding:"required"`
}

// LogPlant records a plant log.
// POST /api/v1/users/:id/logs.
func (h *Handler) LogPlant(c *gin.Context) {
	userID, err := h.parseUserID(c)
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	var req LogPlantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errorResponse(c, http.StatusBadRequest, "plant_id is required")
		return
	}

	result, err := h.logService.LogPlant(c.Request.Context(), userID, req.PlantID)
	if err != nil {
		switch {
		case errors.Is(err, consumption.ErrUserNotFound):
			h.errorResponse(c, http.StatusNotFound, "user not found")
		case errors.Is(err, consumption.ErrPlantNotFound):
			h.errorResponse(c, http.StatusNotFound, "plant not found")
		default:
			h.log.Error().Err(err).Uint("user_id", userID).Uint("plant_id", req.PlantID).Msg("Failed to log plant")
			h.errorResponse(c, http.StatusInternalServerError, "failed to log plant, please retry")
		}
		return
	}

	c.JSON(http.StatusCreated, result)
}

// GetDailySummary returns one calendar day of logs.
// GET /api/v1/users/:id/summary/daily?date=2024-05-01.
func (h *Handler) GetDailySummary(c *gin.Context) {
	userID, err := h.parseUserID(c)
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	date := c.DefaultQuery("date", h.summaryService.Today())
	daily, err := h.summaryService.Daily(c.Request.Context(), userID, date)
	if err != nil {
		h.summaryError(c, err, userID, "daily")
		return
	}

	c.JSON(http.StatusOK, daily)
}

// GetWeeklySummary returns the last 7 days.
// GET /api/v1/users/:id/summary/weekly.
func (h *Handler) GetWeeklySummary(c *gin.Context) {
	userID, err := h.parseUserID(c)
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	week, err := h.summaryService.Weekly(c.Request.Context(), userID, h.summaryService.Today())
	if err != nil {
		h.summaryError(c, err, userID, "weekly")
		return
	}

	c.JSON(http.StatusOK, week)
}

// GetMonthlySummary returns the last 30 days.
// GET /api/v1/users/:id/summary/monthly.
func (h *Handler) GetMonthlySummary(c *gin.Context) {
	userID, err := h.parseUserID(c)
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	month, err := h.summaryService.Monthly(c.Request.Context(), userID, h.summaryService.Today())
	if err != nil {
		h.summaryError(c, err, userID, "monthly")
		return
	}

	c.JSON(http.StatusOK, month)
}

// GetTopPlants returns the most eaten plants.
// GET /api/v1/users/:id/top-plants?limit=5.
func (h *Handler) GetTopPlants(c *gin.Context) {
	userID, err := h.parseUserID(c)
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	limit, err := h.parseLimit(c, summary.DefaultTopPlantsLimit)
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	top, err := h.summaryService.TopPlants(c.Request.Context(), userID, limit)
	if err != nil {
		h.summaryError(c, err, userID, "top plants")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user_id":      userID,
		"plants":       top,
		"limit":        summary.ClampLimit(limit),
		"generated_at": time.Now().UTC(),
	})
}

// GetUserStats returns lifetime totals.
// GET /api/v1/users/:id/stats.
func (h *Handler) GetUserStats(c *gin.Context) {
	userID, err := h.parseUserID(c)
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	stats, err := h.summaryService.Stats(c.Request.Context(), userID)
	if err != nil {
		h.summaryError(c, err, userID, "stats")
		return
	}

	c.JSON(http.StatusOK, stats)
}

// GetUserBadges returns the badges a user unlocked.
// GET /api/v1/users/:id/badges.
func (h *Handler) GetUserBadges(c *gin.Context) {
	userID, err := h.parseUserID(c)
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	userBadges, err := h.badgeService.GetUserBadges(c.Request.Context(), userID)
	if err != nil {
		h.log.Error().Err(err).Uint("user_id", userID).Msg("Failed to get user badges")
		h.errorResponse(c, http.StatusInternalServerError, "Failed to retrieve user badges")
		return
	}
	if userBadges == nil {
		userBadges = []models.UserBadge{}
	}

	c.JSON(http.StatusOK, gin.H{
		"user_id":      userID,
		"badges":       userBadges,
		"total_badges": len(userBadges),
	})
}

// GetBadgeCatalog returns the active badges.
// GET /api/v1/badges.
func (h *Handler) GetBadgeCatalog(c *gin.Context) {
	catalog, err := h.badgeService.GetBadgeCatalog(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to get badge catalog")
		h.errorResponse(c, http.StatusInternalServerError, "Failed to retrieve badge catalog")
		return
	}
	if catalog == nil {
		catalog = []models.Badge{}
	}

	c.JSON(http.StatusOK, gin.H{
		"badges":       catalog,
		"total_badges": len(catalog),
	})
}

// GetPlantCatalog returns the active plants.
// GET /api/v1/plants.
func (h *Handler) GetPlantCatalog(c *gin.Context) {
	plants, err := h.plants.ListActive(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to get plant catalog")
		h.errorResponse(c, http.StatusInternalServerError, "Failed to retrieve plant catalog")
		return
	}
	if plants == nil {
		plants = []models.Plant{}
	}

	c.JSON(http.StatusOK, gin.H{
		"plants":       plants,
		"total_plants": len(plants),
	})
}

// Helper functions

// parseUserID extracts and validates the user ID from the URL parameter.
func (h *Handler) parseUserID(c *gin.Context) (uint, error) {
	idStr := c.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid user ID: %s", idStr)
	}
	return uint(id), nil
}

// parseLimit extracts and validates the limit query parameter.
// Out-of-range values are clamped by the service.
func (h *Handler) parseLimit(c *gin.Context, defaultLimit int) (int, error) {
	limitStr := c.Query("limit")
	if limitStr == "" {
		return defaultLimit, nil
	}

	limit, err := strconv.Atoi(limitStr)
	if err != nil {
		return 0, fmt.Errorf("invalid limit parameter: %s", limitStr)
	}

	return limit, nil
}

// summaryError maps a summary query error to a response.
func (h *Handler) summaryError(c *gin.Context, err error, userID uint, what string) {
	if errors.Is(err, summary.ErrInvalidDate) {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	h.log.Error().Err(err).Uint("user_id", userID).Str("query", what).Msg("Failed to get summary")
	h.errorResponse(c, http.StatusInternalServerError, fmt.Sprintf("Failed to retrieve %s", what))
}

// errorResponse sends a standardized error response.
func (h *Handler) errorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, gin.H{
		"error":     message,
		"timestamp": time.Now().UTC(),
	})
}
