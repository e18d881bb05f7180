package api

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type sampleRequest struct {
	Email string `json:"email" binding:"required,email"`
	Code  string `json:"code" binding:"required,len=6"`
}

func bindProbe() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/probe", func(c *gin.Context) {
		var req sampleRequest
		if !BindJSON(c, &req) {
			return
		}
		c.JSON(http.StatusOK, req)
	})
	return r
}

func TestBindJSON(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantInBody string
	}{
		{"valid body", `{"email":"ana@example.com","code":"123456"}`, http.StatusOK, "ana@example.com"},
		{"missing field", `{"email":"ana@example.com"}`, http.StatusBadRequest, "Code is required"},
		{"bad email", `{"email":"nope","code":"123456"}`, http.StatusBadRequest, "valid email address"},
		{"wrong length", `{"email":"ana@example.com","code":"123"}`, http.StatusBadRequest, "exactly 6 characters"},
		{"malformed json", `{"email":`, http.StatusBadRequest, "error"},
	}

	router := bindProbe()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/probe", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantInBody)
		})
	}
}
