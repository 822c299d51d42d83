package common

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Context keys shared by handlers and the metrics middleware
const (
	RequestIDKey     = "request_id"
	RowsProcessedKey = "rows_processed"
)

// MetricsMiddleware tracks API performance metrics
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Generate request ID for tracing
		requestID := uuid.New().String()
		c.Set(RequestIDKey, requestID)
		c.Header("X-Request-ID", requestID)

		startTime := time.Now()

		c.Next()

		duration := time.Since(startTime)

		// Get rows processed (if set by handler)
		rowsProcessed := 0
		if rows, exists := c.Get(RowsProcessedKey); exists {
			if r, ok := rows.(int); ok {
				rowsProcessed = r
			}
		}

		errors := ""
		if len(c.Errors) > 0 {
			errors = c.Errors.String()
		}

		metric := ApiMetric{
			RequestID:     requestID,
			Endpoint:      c.FullPath(),
			Method:        c.Request.Method,
			StatusCode:    c.Writer.Status(),
			DurationMs:    int(duration.Milliseconds()),
			RowsProcessed: rowsProcessed,
			Errors:        errors,
			Timestamp:     startTime,
		}

		Logger().Info("request",
			zap.String("request_id", requestID),
			zap.String("method", metric.Method),
			zap.String("endpoint", metric.Endpoint),
			zap.Int("status", metric.StatusCode),
			zap.Duration("duration", duration),
			zap.Int("rows", rowsProcessed),
		)

		db := GetDB()
		if db == nil {
			return
		}
		// Save metric asynchronously
		go func() {
			if err := db.Create(&metric).Error; err != nil {
				Logger().Warn("failed to store metric", zap.String("request_id", requestID), zap.Error(err))
			}
		}()
	}
}
