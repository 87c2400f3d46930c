package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/VictoriaMetrics/metrics"
	"github.com/gin-gonic/gin"
)

var (
	httpRequestsInFlight int64

	httpThrottled = metrics.NewCounter(`http_requests_throttled_total`)
)

func init() {
	metrics.NewGauge(`http_requests_in_flight`, func() float64 {
		return float64(atomic.LoadInt64(&httpRequestsInFlight))
	})
}

// Metrics counts requests per route template. Token path segments are
// never used as label values.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		atomic.AddInt64(&httpRequestsInFlight, 1)
		defer atomic.AddInt64(&httpRequestsInFlight, -1)

		c.Next()

		duration := time.Since(start).Seconds()
		code := c.Writer.Status()
		if code == http.StatusTooManyRequests {
			httpThrottled.Inc()
		}

		route := c.FullPath()
		if route == "" {
			route = "unknown"
		}
		route = strings.ReplaceAll(route, `"`, `_`)
		method := strings.ReplaceAll(c.Request.Method, `"`, `_`)
		status := strconv.Itoa(code)

		labels := `handler="` + route + `",method="` + method + `",status="` + status + `"`

		metrics.GetOrCreateCounter(`http_requests_total{` + labels + `}`).Inc()
		metrics.GetOrCreateHistogram(`http_request_duration_seconds{handler="` + route + `",method="` + method + `"}`).Update(duration)
	}
}
