package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/teja-0311/Kisanmarket/internal/api/handlers"
	"github.com/teja-0311/Kisanmarket/internal/models"
	"github.com/teja-0311/Kisanmarket/internal/services"
)

func TestCartHandler_GetCart(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockCartSvc := new(MockCartService)
	handler := handlers.NewCartHandler(mockCartSvc)

	r := gin.New()
	r.GET("/api/cart/:phone", handler.GetCart)

	expected := &models.Cart{Phone: "9000000001", Items: []models.CartItem{}}
	mockCartSvc.On("Fetch", mock.Anything, "9000000001").Return(expected, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/cart/9000000001", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var respBody models.Cart
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &respBody))
	assert.Equal(t, "9000000001", respBody.Phone)
	assert.Empty(t, respBody.Items)
	mockCartSvc.AssertExpectations(t)
}

func TestCartHandler_UpdateCart(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockCartSvc := new(MockCartService)
	handler := handlers.NewCartHandler(mockCartSvc)

	r := gin.New()
	r.POST("/api/cart/update", handler.UpdateCart)

	productID := primitive.NewObjectID()
	items := []services.CartItemInput{{ProductID: productID.Hex(), CropName: "Wheat", CartQuantity: 2}}
	saved := &models.Cart{Phone: "9000000001", Items: []models.CartItem{
		{ProductID: productID, CropName: "Wheat", Quantity: 1, CartQuantity: 2},
	}}
	mockCartSvc.On("Replace", mock.Anything, "9000000001", items).Return(saved, nil)

	body, _ := json.Marshal(gin.H{"phone": "9000000001", "items": items})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/cart/update", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var respBody models.Cart
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &respBody))
	assert.Len(t, respBody.Items, 1)
	mockCartSvc.AssertExpectations(t)
}

func TestCartHandler_UpdateCart_InvalidProductID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockCartSvc := new(MockCartService)
	handler := handlers.NewCartHandler(mockCartSvc)

	r := gin.New()
	r.POST("/api/cart/update", handler.UpdateCart)

	items := []services.CartItemInput{{ProductID: "garbage"}}
	mockCartSvc.On("Replace", mock.Anything, "9000000001", items).Return(nil, services.ErrInvalidReference)

	body, _ := json.Marshal(gin.H{"phone": "9000000001", "items": items})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/cart/update", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockCartSvc.AssertExpectations(t)
}

func TestCartHandler_UpdateCart_MissingPhone(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockCartSvc := new(MockCartService)
	handler := handlers.NewCartHandler(mockCartSvc)

	r := gin.New()
	r.POST("/api/cart/update", handler.UpdateCart)

	body, _ := json.Marshal(gin.H{"items": []services.CartItemInput{}})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/cart/update", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockCartSvc.AssertNotCalled(t, "Replace")
}

func TestCartHandler_ClearCart(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockCartSvc := new(MockCartService)
	handler := handlers.NewCartHandler(mockCartSvc)

	r := gin.New()
	r.DELETE("/api/cart/clear/:phone", handler.ClearCart)

	mockCartSvc.On("Clear", mock.Anything, "9000000001").Return(nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("DELETE", "/api/cart/clear/9000000001", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	mockCartSvc.AssertExpectations(t)
}
