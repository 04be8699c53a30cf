package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"dispatch/internal/service"
)

// OrderHandler handles HTTP requests for the order fields ride planning
// depends on.
type OrderHandler struct {
	orderService *service.OrderService
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(orderService *service.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

// UpdateAddressRequest is the HTTP request body for an address edit.
type UpdateAddressRequest struct {
	Street string `json:"street"`
	City   string `json:"city"`
	Zip    string `json:"zip"`
}

// OrderResponse is the HTTP representation of an order.
type OrderResponse struct {
	ID            string `json:"id"`
	CustomerName  string `json:"customer_name"`
	CustomerPhone string `json:"customer_phone"`
	Street        string `json:"street"`
	City          string `json:"city"`
	Zip           string `json:"zip"`
	Note          string `json:"note,omitempty"`
	IsPaid        bool   `json:"is_paid"`
	ItemsCount    int    `json:"items_count"`
}

// GetOrder handles GET /v1/orders/:id
func (h *OrderHandler) GetOrder(c *gin.Context) {
	order, err := h.orderService.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, OrderResponse{
		ID:            order.ID,
		CustomerName:  order.CustomerName,
		CustomerPhone: order.CustomerPhone,
		Street:        order.Street,
		City:          order.City,
		Zip:           order.Zip,
		Note:          order.Note,
		IsPaid:        order.IsPaid,
		ItemsCount:    order.ItemsCount,
	})
}

// UpdateAddress handles PUT /v1/orders/:id/address
func (h *OrderHandler) UpdateAddress(c *gin.Context) {
	var req UpdateAddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	err := h.orderService.UpdateAddress(c.Request.Context(), service.UpdateAddressRequest{
		OrderID: c.Param("id"),
		Street:  req.Street,
		City:    req.City,
		Zip:     req.Zip,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
