package metrics

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// requestInstruments groups the per-request HTTP instruments.
type requestInstruments struct {
	counter  metric.Int64Counter
	duration metric.Float64Histogram
}

// HTTPMetricsMiddleware records a count and duration for every request,
// labelled with method, route pattern and status code. Route patterns
// (e.g. /v1/secrets/:name) keep the label cardinality bounded regardless of
// the names callers use. Instrument creation failures degrade to a pass-through
// middleware rather than failing the router.
func HTTPMetricsMiddleware(meterProvider metric.MeterProvider, namespace string) gin.HandlerFunc {
	meter := meterProvider.Meter(namespace)

	counter, err := meter.Int64Counter(
		fmt.Sprintf("%s_http_requests_total", namespace),
		metric.WithDescription("Total number of HTTP requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	duration, err := meter.Float64Histogram(
		fmt.Sprintf("%s_http_request_duration_seconds", namespace),
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	instruments := &requestInstruments{
		counter:  counter,
		duration: duration,
	}

	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		elapsed := time.Since(start)
		attrs := []attribute.KeyValue{
			attribute.String("method", c.Request.Method),
			attribute.String("path", routeLabel(c.FullPath())),
			attribute.String("status_code", strconv.Itoa(c.Writer.Status())),
		}

		instruments.counter.Add(c.Request.Context(), 1, metric.WithAttributes(attrs...))
		instruments.duration.Record(c.Request.Context(), elapsed.Seconds(), metric.WithAttributes(attrs...))
	}
}

// routeLabel maps a request to its route pattern for labelling. Requests that
// matched no route share a single "unknown" label.
func routeLabel(fullPath string) string {
	if fullPath == "" {
		return "unknown"
	}
	return fullPath
}
