package middleware

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexmorbo/bttn-relay/pkg/logger"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func TestRequestIDGeneratesUUID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	_, router := gin.CreateTestContext(w)

	router.Use(RequestID())
	router.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, logger.GetRequestID(c.Request.Context()))
	})

	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

	requestID := w.Header().Get(RequestIDHeader)
	assert.Len(t, requestID, 36)
	assert.Equal(t, requestID, w.Body.String())
}

func TestRequestIDUsesExistingHeader(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/ping", nil)
	c.Request.Header.Set(RequestIDHeader, "bttn-press-42")

	RequestID()(c)

	assert.Equal(t, "bttn-press-42", w.Header().Get(RequestIDHeader))
	assert.Equal(t, "bttn-press-42", logger.GetRequestID(c.Request.Context()))
	assert.Equal(t, "bttn-press-42", c.GetString("request_id"))
}

func TestRequestIDReplacesOversizedHeader(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/ping", nil)
	c.Request.Header.Set(RequestIDHeader, strings.Repeat("x", maxRequestIDLength+1))

	RequestID()(c)

	assert.Len(t, w.Header().Get(RequestIDHeader), 36)
}

func TestLoggingDoesNotLeakTokens(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, nil))

	w := httptest.NewRecorder()
	_, router := gin.CreateTestContext(w)

	router.Use(RequestID())
	router.Use(Logging(log))
	router.GET("/call/:token", func(c *gin.Context) {
		c.Set(ButtonKey, "incident")
		c.String(http.StatusOK, "ok")
	})

	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/call/c2VjcmV0LXRva2Vu", nil))

	require.Equal(t, http.StatusOK, w.Code)
	out := buf.String()
	assert.Contains(t, out, `"route":"/call/:token"`)
	assert.Contains(t, out, `"button":"incident"`)
	assert.NotContains(t, out, "c2VjcmV0LXRva2Vu")
}

func TestLoggingLevelFollowsStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name   string
		status int
		level  string
	}{
		{"ok", http.StatusOK, `"level":"INFO"`},
		{"invalid request", http.StatusBadRequest, `"level":"WARN"`},
		{"throttled", http.StatusTooManyRequests, `"level":"WARN"`},
		{"internal error", http.StatusInternalServerError, `"level":"ERROR"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			log := slog.New(slog.NewJSONHandler(&buf, nil))

			w := httptest.NewRecorder()
			_, router := gin.CreateTestContext(w)

			router.Use(Logging(log))
			router.GET("/", func(c *gin.Context) {
				c.String(tt.status, "body")
			})

			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

			assert.Equal(t, tt.status, w.Code)
			assert.Contains(t, buf.String(), tt.level)
		})
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	_, router := gin.CreateTestContext(w)

	router.Use(Recovery(discardLogger()))
	router.GET("/:token", func(c *gin.Context) {
		panic("test panic")
	})

	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/abc", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Internal error", w.Body.String())
}

func TestRecoveryMiddlewareDoesNotAffectNormalRequests(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	_, router := gin.CreateTestContext(w)

	router.Use(Recovery(discardLogger()))
	router.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})

	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", w.Body.String())
}

func TestMetricsMiddlewareWithPressMethods(t *testing.T) {
	gin.SetMode(gin.TestMode)

	for _, method := range []string{http.MethodGet, http.MethodPost} {
		t.Run(method, func(t *testing.T) {
			w := httptest.NewRecorder()
			_, router := gin.CreateTestContext(w)

			router.Use(Metrics())
			router.Handle(method, "/:token", func(c *gin.Context) {
				c.String(http.StatusOK, "OK 1\n")
			})

			router.ServeHTTP(w, httptest.NewRequest(method, "/abc", nil))

			assert.Equal(t, http.StatusOK, w.Code)
		})
	}
}

func TestMetricsMiddlewareCountsThrottled(t *testing.T) {
	gin.SetMode(gin.TestMode)

	before := httpThrottled.Get()

	w := httptest.NewRecorder()
	_, router := gin.CreateTestContext(w)
	router.Use(Metrics())
	router.GET("/:token", func(c *gin.Context) {
		c.String(http.StatusTooManyRequests, "Too many requests")
	})

	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/abc", nil))

	assert.Equal(t, before+1, httpThrottled.Get())
}

func TestBodyLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name       string
		size       int
		wantStatus int
	}{
		{"empty", 0, http.StatusOK},
		{"within limit", 50, http.StatusOK},
		{"exactly at limit", 100, http.StatusOK},
		{"one byte over", 101, http.StatusRequestEntityTooLarge},
		{"far over", 4096, http.StatusRequestEntityTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			_, router := gin.CreateTestContext(w)

			router.Use(BodyLimit(100))
			router.POST("/", func(c *gin.Context) {
				body, err := io.ReadAll(c.Request.Body)
				if err != nil {
					c.String(http.StatusRequestEntityTooLarge, "body too large")
					return
				}
				c.String(http.StatusOK, string(body))
			})

			body := strings.Repeat("a", tt.size)
			router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body)))

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, body, w.Body.String())
			}
		})
	}
}

func TestAllMiddlewaresTogether(t *testing.T) {
	gin.SetMode(gin.TestMode)

	log := discardLogger()

	w := httptest.NewRecorder()
	_, router := gin.CreateTestContext(w)

	router.Use(Recovery(log))
	router.Use(RequestID())
	router.Use(BodyLimit(1 << 10))
	router.Use(Metrics())
	router.Use(Logging(log))

	router.POST("/:token", func(c *gin.Context) {
		c.String(http.StatusOK, "OK 1\n")
	})

	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/abc", strings.NewReader(`{"bttn":"pressed"}`)))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK 1\n", w.Body.String())
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
}
