package middleware

import (
	"fmt"
	"net/http"
	"time"

	"PushRelay/internal/metrics"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/wb-go/wbf/zlog"
)

const (
	// AllowHeaders заголовки, разрешенные для кросс-доменных запросов.
	AllowHeaders = "authorization, x-client-info, apikey, content-type"
	// AllowMethods методы, разрешенные для кросс-доменных запросов.
	AllowMethods = "GET, POST, OPTIONS"
)

// CORSHeadersMiddleware добавляет разрешающие CORS-заголовки к каждому ответу,
// включая ошибки и запросы без Origin.
func CORSHeadersMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Headers", AllowHeaders)
		c.Header("Access-Control-Allow-Methods", AllowMethods)
		c.Next()
	}
}

// RequestIDMiddleware добавляет уникальный ID для каждого запроса.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set("request_id", requestID)
		c.Header("X-Request-ID", requestID)
		c.Next()
	}
}

// RecoveryMiddleware превращает панику в ответ 500 с success=false.
func RecoveryMiddleware(m *metrics.RelayMetrics) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		m.RecordOutcome(metrics.OutcomeInternalError)
		zlog.Logger.Error().
			Str("request_id", c.GetString("request_id")).
			Str("panic", fmt.Sprint(recovered)).
			Msg("panic while handling request")
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"success":          false,
			"error":            "internal server error",
			"diagnosticDetail": fmt.Sprint(recovered),
		})
	})
}

// LoggingMiddleware логирует входящие HTTP запросы и ответы.
func LoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetString("request_id")
		if requestID == "" {
			requestID = "unknown"
		}

		zlog.Logger.Debug().
			Str("request_id", requestID).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Str("user_agent", c.Request.UserAgent()).
			Str("remote_addr", c.ClientIP()).
			Int64("content_length", c.Request.ContentLength).
			Msg("HTTP request started")

		c.Next()

		status := c.Writer.Status()
		level, msg := zerolog.InfoLevel, "HTTP request completed successfully"
		switch {
		case status >= 500:
			level, msg = zerolog.ErrorLevel, "HTTP request completed with error"
		case status >= 400:
			level, msg = zerolog.WarnLevel, "HTTP request completed with warning"
		}

		event := zlog.Logger.WithLevel(level).
			Str("request_id", requestID).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status_code", status).
			Int("response_size", c.Writer.Size()).
			Dur("duration", time.Since(start))
		if len(c.Errors) > 0 {
			event = event.Str("error", c.Errors.String())
		}
		event.Msg(msg)
	}
}
