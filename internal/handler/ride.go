package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"dispatch/internal/domain"
	"dispatch/internal/repository"
	"dispatch/internal/service"
)

// RideHandler handles HTTP requests for rides (the dispatch API).
type RideHandler struct {
	dispatchService *service.DispatchService
	rideRepo        repository.RideRepository
}

// NewRideHandler creates a new RideHandler.
func NewRideHandler(dispatchService *service.DispatchService, rideRepo repository.RideRepository) *RideHandler {
	return &RideHandler{
		dispatchService: dispatchService,
		rideRepo:        rideRepo,
	}
}

// CreateRideRequest is the HTTP request body for creating a ride.
type CreateRideRequest struct {
	DriverID      string   `json:"driver_id"`
	Date          string   `json:"date"`           // YYYY-MM-DD
	DepartureTime string   `json:"departure_time"` // HH:MM
	OrderIDs      []string `json:"order_ids"`
}

// AppendOrdersRequest is the HTTP request body for appending orders.
type AppendOrdersRequest struct {
	OrderIDs []string `json:"order_ids"`
}

// AdvanceStatusRequest is the HTTP request body for advancing ride status.
type AdvanceStatusRequest struct {
	Status string `json:"status"`
}

// SetDepartureRequest is the HTTP request body for changing departure time.
type SetDepartureRequest struct {
	DepartureTime string `json:"departure_time"` // HH:MM
}

// StepResponse is one stop in the HTTP representation of a ride.
type StepResponse struct {
	OrderID       string  `json:"order_id"`
	Type          string  `json:"type"`
	Address       string  `json:"address"`
	ArrivalTime   string  `json:"arrival_time"`
	DepartureTime string  `json:"departure_time"`
	DistanceKm    float64 `json:"distance_km"`
	Error         string  `json:"error,omitempty"`
	CustomerName  string  `json:"customer_name"`
	CustomerPhone string  `json:"customer_phone"`
	Note          string  `json:"note,omitempty"`
	IsPaid        bool    `json:"is_paid"`
	ItemsCount    int     `json:"items_count"`
}

// RideResponse is the HTTP representation of a ride.
type RideResponse struct {
	ID            string         `json:"id"`
	Date          string         `json:"date"`
	DriverID      string         `json:"driver_id"`
	Status        string         `json:"status"`
	DepartureTime string         `json:"departure_time"`
	OrderIDs      []string       `json:"order_ids"`
	Steps         []StepResponse `json:"steps"`
	Planned       bool           `json:"planned"` // steps computed
	Appended      bool           `json:"appended,omitempty"`
}

func toRideResponse(ride *domain.Ride) RideResponse {
	steps := make([]StepResponse, 0, len(ride.Steps))
	for _, s := range ride.Steps {
		steps = append(steps, StepResponse{
			OrderID:       s.OrderID,
			Type:          string(s.Type),
			Address:       s.Address,
			ArrivalTime:   s.ArrivalTime,
			DepartureTime: s.DepartureTime,
			DistanceKm:    s.DistanceKm,
			Error:         s.Error,
			CustomerName:  s.CustomerName,
			CustomerPhone: s.CustomerPhone,
			Note:          s.Note,
			IsPaid:        s.IsPaid,
			ItemsCount:    s.ItemsCount,
		})
	}

	return RideResponse{
		ID:            ride.ID,
		Date:          ride.Date,
		DriverID:      ride.DriverID,
		Status:        string(ride.Status),
		DepartureTime: ride.DepartureTime,
		OrderIDs:      ride.OrderIDs,
		Steps:         steps,
		Planned:       len(ride.Steps) > 0,
	}
}

// CreateRide handles POST /v1/rides
func (h *RideHandler) CreateRide(c *gin.Context) {
	var req CreateRideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	result, err := h.dispatchService.CreateRide(c.Request.Context(), service.CreateRideRequest{
		DriverID:      req.DriverID,
		Date:          req.Date,
		DepartureTime: req.DepartureTime,
		OrderIDs:      req.OrderIDs,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	response := toRideResponse(result.Ride)
	response.Appended = result.Appended

	code := http.StatusCreated
	if result.Appended {
		code = http.StatusOK
	}
	respondJSON(c, code, response)
}

// GetRide handles GET /v1/rides/:id
func (h *RideHandler) GetRide(c *gin.Context) {
	ride, err := h.dispatchService.GetRide(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toRideResponse(ride))
}

// GetAll handles GET /v1/rides
func (h *RideHandler) GetAll(c *gin.Context) {
	rides, err := h.rideRepo.GetAll(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]RideResponse, 0, len(rides))
	for _, r := range rides {
		response = append(response, toRideResponse(r))
	}

	c.JSON(http.StatusOK, response)
}

// AppendOrders handles POST /v1/rides/:id/orders
func (h *RideHandler) AppendOrders(c *gin.Context) {
	var req AppendOrdersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	ride, err := h.dispatchService.AppendOrders(c.Request.Context(), c.Param("id"), req.OrderIDs)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toRideResponse(ride))
}

// RemoveOrder handles DELETE /v1/rides/:id/orders/:orderId
func (h *RideHandler) RemoveOrder(c *gin.Context) {
	ride, err := h.dispatchService.RemoveOrder(c.Request.Context(), c.Param("id"), c.Param("orderId"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toRideResponse(ride))
}

// Recompute handles POST /v1/rides/:id/recompute
func (h *RideHandler) Recompute(c *gin.Context) {
	ride, err := h.dispatchService.ForceRecompute(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusAccepted, toRideResponse(ride))
}

// AdvanceStatus handles POST /v1/rides/:id/status
func (h *RideHandler) AdvanceStatus(c *gin.Context) {
	var req AdvanceStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	ride, err := h.dispatchService.AdvanceStatus(c.Request.Context(), c.Param("id"), domain.RideStatus(req.Status))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toRideResponse(ride))
}

// SetDeparture handles PUT /v1/rides/:id/departure
func (h *RideHandler) SetDeparture(c *gin.Context) {
	var req SetDepartureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	ride, err := h.dispatchService.SetDepartureTime(c.Request.Context(), c.Param("id"), req.DepartureTime)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toRideResponse(ride))
}
