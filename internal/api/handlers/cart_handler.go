package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/teja-0311/Kisanmarket/internal/services"
)

// CartHandler handles cart requests. Carts are addressed by phone
// number rather than account, matching the mobile client.
type CartHandler struct {
	cartService services.ICartService
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(cartService services.ICartService) *CartHandler {
	return &CartHandler{cartService: cartService}
}

// GetCart handles GET /api/cart/:phone
func (h *CartHandler) GetCart(c *gin.Context) {
	phone := c.Param("phone")
	if phone == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "phone is required"})
		return
	}

	cart, err := h.cartService.Fetch(c.Request.Context(), phone)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch cart"})
		return
	}
	c.JSON(http.StatusOK, cart)
}

// UpdateCart handles POST /api/cart/update. The supplied items replace
// the cart completely.
func (h *CartHandler) UpdateCart(c *gin.Context) {
	var req struct {
		Phone string                   `json:"phone" binding:"required"`
		Items []services.CartItemInput `json:"items"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	cart, err := h.cartService.Replace(c.Request.Context(), req.Phone, req.Items)
	if err != nil {
		if errors.Is(err, services.ErrInvalidReference) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID in cart items"})
			return
		}
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update cart"})
		return
	}
	c.JSON(http.StatusOK, cart)
}

// ClearCart handles DELETE /api/cart/clear/:phone
func (h *CartHandler) ClearCart(c *gin.Context) {
	phone := c.Param("phone")
	if phone == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "phone is required"})
		return
	}

	if err := h.cartService.Clear(c.Request.Context(), phone); err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to clear cart"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Cart cleared"})
}
