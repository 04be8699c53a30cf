package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"dispatch/internal/domain"
	"dispatch/internal/redis"
	"dispatch/internal/repository"
)

// LogisticsHandler handles HTTP requests for the depot and timing settings.
type LogisticsHandler struct {
	logisticsRepo repository.LogisticsRepository
	cache         redis.LogisticsCacheInterface
}

// NewLogisticsHandler creates a new LogisticsHandler. cache may be nil.
func NewLogisticsHandler(logisticsRepo repository.LogisticsRepository, cache redis.LogisticsCacheInterface) *LogisticsHandler {
	return &LogisticsHandler{
		logisticsRepo: logisticsRepo,
		cache:         cache,
	}
}

// LogisticsResponse is the HTTP representation of the logistics settings.
type LogisticsResponse struct {
	DepotAddress           string `json:"depot_address"`
	LoadingSecondsPerItem  int    `json:"loading_seconds_per_item"`
	StopTimeMinutes        int    `json:"stop_time_minutes"`
	UnloadingPaidSeconds   int    `json:"unloading_paid_seconds"`
	UnloadingUnpaidSeconds int    `json:"unloading_unpaid_seconds"`
}

// UpdateLogisticsRequest is the HTTP request body for updating settings.
type UpdateLogisticsRequest struct {
	DepotAddress           string `json:"depot_address"`
	LoadingSecondsPerItem  int    `json:"loading_seconds_per_item"`
	StopTimeMinutes        int    `json:"stop_time_minutes"`
	UnloadingPaidSeconds   int    `json:"unloading_paid_seconds"`
	UnloadingUnpaidSeconds int    `json:"unloading_unpaid_seconds"`
}

// Get handles GET /v1/settings/logistics
func (h *LogisticsHandler) Get(c *gin.Context) {
	cfg, err := h.logisticsRepo.Get(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, LogisticsResponse{
		DepotAddress:           cfg.DepotAddress,
		LoadingSecondsPerItem:  cfg.LoadingSecondsPerItem,
		StopTimeMinutes:        cfg.StopTimeMinutes,
		UnloadingPaidSeconds:   cfg.UnloadingPaidSeconds,
		UnloadingUnpaidSeconds: cfg.UnloadingUnpaidSeconds,
	})
}

// Update handles PUT /v1/settings/logistics
func (h *LogisticsHandler) Update(c *gin.Context) {
	var req UpdateLogisticsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	if req.DepotAddress == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "depot_address is required"})
		return
	}

	cfg := &domain.LogisticsConfig{
		DepotAddress:           req.DepotAddress,
		LoadingSecondsPerItem:  req.LoadingSecondsPerItem,
		StopTimeMinutes:        req.StopTimeMinutes,
		UnloadingPaidSeconds:   req.UnloadingPaidSeconds,
		UnloadingUnpaidSeconds: req.UnloadingUnpaidSeconds,
	}

	if err := h.logisticsRepo.Update(c.Request.Context(), cfg); err != nil {
		respondError(c, err)
		return
	}

	if h.cache != nil {
		_ = h.cache.InvalidateLogistics(c.Request.Context())
	}

	respondJSON(c, http.StatusOK, LogisticsResponse{
		DepotAddress:           cfg.DepotAddress,
		LoadingSecondsPerItem:  cfg.LoadingSecondsPerItem,
		StopTimeMinutes:        cfg.StopTimeMinutes,
		UnloadingPaidSeconds:   cfg.UnloadingPaidSeconds,
		UnloadingUnpaidSeconds: cfg.UnloadingUnpaidSeconds,
	})
}
