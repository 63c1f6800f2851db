package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	chatwave_errors "chatwave/pkg/errors"
	"chatwave/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newErrorRouter(fail error) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(ErrorHandler(logger.New(logger.DevelopmentMode)))
	r.GET("/boom", func(c *gin.Context) {
		_ = c.Error(fail)
	})
	return r
}

func doRequest(t *testing.T, r *gin.Engine) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	r.ServeHTTP(w, req)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w, body
}

func TestErrorHandlerMapsSentinels(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{chatwave_errors.ErrUnauthorized, http.StatusUnauthorized, "UNAUTHORIZED"},
		{chatwave_errors.ErrForbidden, http.StatusForbidden, "FORBIDDEN"},
		{chatwave_errors.ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
		{chatwave_errors.ErrAlreadyExists, http.StatusConflict, "CONFLICT"},
		{chatwave_errors.ErrInvalidInput, http.StatusBadRequest, "INVALID_REQUEST"},
	}
	for _, tc := range cases {
		w, body := doRequest(t, newErrorRouter(tc.err))
		assert.Equal(t, tc.status, w.Code, tc.code)
		assert.Equal(t, tc.code, body["code"])
		assert.Equal(t, tc.err.Error(), body["error"])
		assert.Equal(t, false, body["success"])
	}
}

func TestErrorHandlerHidesInternalDetail(t *testing.T) {
	w, body := doRequest(t, newErrorRouter(errors.New("pq: connection refused")))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "INTERNAL_ERROR", body["code"])
	assert.Equal(t, "internal error", body["error"])
}

func TestErrorHandlerLeavesWrittenResponsesAlone(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(ErrorHandler(logger.New(logger.DevelopmentMode)))
	r.GET("/boom", func(c *gin.Context) {
		c.JSON(http.StatusTeapot, gin.H{"handled": true})
		_ = c.Error(chatwave_errors.ErrNotFound)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusTeapot, w.Code)
}
