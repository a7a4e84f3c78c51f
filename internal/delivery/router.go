// Package delivery собирает HTTP-маршруты релея.
package delivery

import (
	"net/http"
	"time"

	"PushRelay/internal/delivery/handlers"
	"PushRelay/internal/delivery/middleware"
	"PushRelay/internal/metrics"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// SendPath путь, под которым функция была доступна изначально.
const SendPath = "/send-push-notification"

// Setup регистрирует middleware и маршруты.
// metricsHandler может быть nil, тогда /metrics не публикуется.
func Setup(r gin.IRouter, h *handlers.Handler, m *metrics.RelayMetrics, metricsHandler http.Handler) {
	r.Use(middleware.RecoveryMiddleware(m))
	// Браузерный preflight (с заголовком Origin) завершается здесь же.
	r.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowHeaders: []string{"Authorization", "X-Client-Info", "Apikey", "Content-Type"},
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		MaxAge:       12 * time.Hour,
	}))
	r.Use(middleware.CORSHeadersMiddleware())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.LoggingMiddleware())

	for _, path := range []string{"/", SendPath} {
		r.POST(path, h.SendPushNotificationHandler)
		r.OPTIONS(path, h.PreflightHandler)
	}
	r.GET("/health", h.HealthHandler)
	if metricsHandler != nil {
		r.GET("/metrics", gin.WrapH(metricsHandler))
	}
}
