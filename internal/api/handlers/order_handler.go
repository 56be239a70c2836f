package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/teja-0311/Kisanmarket/internal/services"
)

// OrderHandler handles order and notification requests.
type OrderHandler struct {
	orderService        services.IOrderService
	notificationService services.INotificationService
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(orderService services.IOrderService, notificationService services.INotificationService) *OrderHandler {
	return &OrderHandler{orderService: orderService, notificationService: notificationService}
}

// PlaceOrder handles POST /api/orders
func (h *OrderHandler) PlaceOrder(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req struct {
		ProductID       string  `json:"productId" binding:"required"`
		FarmerID        string  `json:"farmerId" binding:"required"`
		Type            string  `json:"type" binding:"required"`
		NegotiatedPrice float64 `json:"negotiatedPrice"`
		Message         string  `json:"message"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	order, err := h.orderService.Place(c.Request.Context(), userID, services.PlaceOrderInput{
		ProductID:       req.ProductID,
		FarmerID:        req.FarmerID,
		Type:            req.Type,
		NegotiatedPrice: req.NegotiatedPrice,
		Message:         req.Message,
	})
	if err != nil {
		if errors.Is(err, services.ErrInvalidReference) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product, farmer or order type"})
			return
		}
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to place order"})
		return
	}

	c.JSON(http.StatusCreated, order)
}

// UpdateOrderStatus handles PUT /api/orders/:id/status
func (h *OrderHandler) UpdateOrderStatus(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	orderID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order ID format"})
		return
	}

	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	order, err := h.orderService.TransitionStatus(c.Request.Context(), userID, orderID, req.Status)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidStatus):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Order cannot move to that status"})
		case errors.Is(err, services.ErrUnauthorized):
			c.JSON(http.StatusForbidden, gin.H{"error": "Not your order"})
		case errors.Is(err, mongo.ErrNoDocuments):
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		default:
			_ = c.Error(err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update order"})
		}
		return
	}

	c.JSON(http.StatusOK, order)
}

// FarmerOrders handles GET /api/orders/farmer
func (h *OrderHandler) FarmerOrders(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	views, err := h.orderService.ListForFarmer(c.Request.Context(), userID)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch orders"})
		return
	}
	c.JSON(http.StatusOK, views)
}

// CustomerOrders handles GET /api/orders/customer
func (h *OrderHandler) CustomerOrders(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	views, err := h.orderService.ListForCustomer(c.Request.Context(), userID)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch orders"})
		return
	}
	c.JSON(http.StatusOK, views)
}

// Notifications handles GET /api/orders/notifications
func (h *OrderHandler) Notifications(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	notifications, err := h.notificationService.ListForUser(c.Request.Context(), userID)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch notifications"})
		return
	}
	c.JSON(http.StatusOK, notifications)
}
