package utils

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRequestID_PropagatesHeader(t *testing.T) {
	router := gin.New()
	router.Use(RequestID())
	var seen string
	router.GET("/ping", func(c *gin.Context) {
		seen = RequestIDFromContext(c.Request.Context())
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDHeader, "req-42")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, "req-42", seen)
	assert.Equal(t, "req-42", w.Header().Get(RequestIDHeader))
}

func TestRequestID_MintsWhenMissing(t *testing.T) {
	router := gin.New()
	router.Use(RequestID())
	router.GET("/ping", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

	assert.Len(t, w.Header().Get(RequestIDHeader), 36)
}

func TestLoggerMiddleware_LevelFollowsStatus(t *testing.T) {
	tests := []struct {
		status int
		level  string
	}{
		{http.StatusOK, "INFO"},
		{http.StatusNotFound, "WARN"},
		{http.StatusBadGateway, "ERROR"},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			var buf bytes.Buffer
			logger := newLogger(&buf, "production")

			router := gin.New()
			router.Use(RequestID(), LoggerMiddleware(logger))
			router.GET("/words/:word", func(c *gin.Context) { c.Status(tt.status) })

			req := httptest.NewRequest(http.MethodGet, "/words/resilient", nil)
			req.Header.Set(RequestIDHeader, "abc")
			router.ServeHTTP(httptest.NewRecorder(), req)

			var entry map[string]interface{}
			require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
			assert.Equal(t, tt.level, entry["level"])
			assert.Equal(t, "/words/resilient", entry["path"])
			assert.Equal(t, "/words/:word", entry["route"])
			assert.Equal(t, "abc", entry["request_id"])
			assert.Equal(t, float64(tt.status), entry["status_code"])
		})
	}
}

func TestToSlogLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "development")

	ToSlogLogger(logger).Info("hello", "word", "ubiquitous")
	assert.Contains(t, buf.String(), "word=ubiquitous")
}
