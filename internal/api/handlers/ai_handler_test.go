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

	"github.com/teja-0311/Kisanmarket/internal/api/handlers"
)

func TestAIHandler_Ask(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockAssistant := new(MockAssistant)
	handler := handlers.NewAIHandler(mockAssistant)

	r := gin.New()
	r.POST("/api/ai", handler.Ask)

	mockAssistant.On("Ask", mock.Anything, "Which crops suit the monsoon?", "Hindi").
		Return("Rice and maize are good monsoon crops.", nil)

	body, _ := json.Marshal(gin.H{"query": "Which crops suit the monsoon?", "language": "Hindi"})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/ai", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var respBody map[string]string
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &respBody))
	assert.Equal(t, "Rice and maize are good monsoon crops.", respBody["reply"])
	mockAssistant.AssertExpectations(t)
}

func TestAIHandler_Ask_MissingQuery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockAssistant := new(MockAssistant)
	handler := handlers.NewAIHandler(mockAssistant)

	r := gin.New()
	r.POST("/api/ai", handler.Ask)

	body, _ := json.Marshal(gin.H{"language": "Hindi"})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/ai", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockAssistant.AssertNotCalled(t, "Ask")
}
