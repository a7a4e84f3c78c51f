package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	cfgman "PushRelay/internal/config"
	"PushRelay/internal/delivery"
	"PushRelay/internal/delivery/handlers"
	"PushRelay/internal/domain"
	"PushRelay/internal/metrics"
	"PushRelay/internal/sender/onesignal"
	"PushRelay/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/wb-go/wbf/ginext"
	"github.com/wb-go/wbf/zlog"
)

const shutdownTimeout = 10 * time.Second

// Application основная структура приложения.
type Application struct {
	config   *cfgman.Config
	server   *ginext.Engine
	registry *prometheus.Registry
	metrics  *metrics.RelayMetrics
	service  *service.RelayService
}

// New создает новое приложение.
func New() (*Application, error) {
	cfg, err := cfgman.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := initLogger(cfg.Logging.Level); err != nil {
		return nil, fmt.Errorf("failed to init logger: %w", err)
	}

	return &Application{config: cfg}, nil
}

// Run запускает приложение в зависимости от команды.
func (a *Application) Run() error {
	if len(os.Args) < 2 {
		a.printUsage()
		return fmt.Errorf("no command specified")
	}

	switch command := os.Args[1]; command {
	case "runserver":
		return a.runServer()
	case "health":
		return a.runHealthCheck()
	default:
		a.printUsage()
		return fmt.Errorf("unknown command: %s", command)
	}
}

// printUsage печатает инструкции по использованию.
func (a *Application) printUsage() {
	fmt.Println("PushRelay - пересылка push-уведомлений в OneSignal")
	fmt.Println()
	fmt.Println("Доступные команды:")
	fmt.Println("  runserver    - запуск HTTP сервера")
	fmt.Println("  health       - проверка конфигурации провайдера")
	fmt.Println()
	fmt.Println("Примеры:")
	fmt.Println("  <appname> runserver")
	fmt.Println("  <appname> health")
}

// runHealthCheck проверяет конфигурацию и печатает политику отправки.
func (a *Application) runHealthCheck() error {
	fmt.Println("Running health check...")

	if err := a.initServices(); err != nil {
		return fmt.Errorf("service check failed: %w", err)
	}
	p := a.config.Provider
	fmt.Printf("Dispatch policy: %s\n", a.service.Policy())
	fmt.Printf("Provider endpoint: %s\n", p.BaseURL)
	fmt.Printf("Provider app id: %q, api key: %q\n", p.AppID, p.MaskedAPIKey())
	if a.service.Dispatching() {
		fmt.Println("✅ Notifications will be sent to the push provider")
	} else {
		fmt.Println("⚠️  Notifications will only be logged")
	}
	return nil
}

// initLogger инициализирует логгер.
func initLogger(level string) error {
	zlog.Init()

	zerologLevel, err := zerolog.ParseLevel(level)
	if err != nil {
		return err
	}
	return zlog.SetLevel(zerologLevel.String())
}

// runServer запускает HTTP сервер до получения сигнала завершения.
func (a *Application) runServer() error {
	zlog.Logger.Info().Msg("Starting PushRelay server...")

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := a.initServices(); err != nil {
		return fmt.Errorf("failed to init services: %w", err)
	}
	a.setupHTTPServer()

	srv := &http.Server{
		Addr:              a.config.HTTP.GetConnectionString(),
		Handler:           a.server.Engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	zlog.Logger.Info().Str("address", srv.Addr).
		Str("policy", a.service.Policy().String()).
		Bool("dispatching", a.service.Dispatching()).
		Msg("HTTP server starting")
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("HTTP server error: %w", err)
	case <-ctx.Done():
		zlog.Logger.Info().Msg("Received shutdown signal")
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("HTTP server shutdown: %w", err)
	}
	zlog.Logger.Info().Msg("HTTP server stopped")
	return nil
}

// initServices создает метрики, отправщик и сервис пересылки.
func (a *Application) initServices() error {
	p := a.config.Provider
	policy := domain.DispatchPolicy(p.Policy)
	if !policy.IsValid() {
		return fmt.Errorf("%w: %q (use log_only, always or conditional)", domain.ErrInvalidPolicy, p.Policy)
	}

	a.registry = prometheus.NewRegistry()
	a.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m, err := metrics.NewRelayMetrics(a.registry)
	if err != nil {
		return err
	}
	a.metrics = m

	sender := onesignal.NewSender(onesignal.Config{
		BaseURL:    p.BaseURL,
		AppID:      p.AppID,
		APIKey:     p.APIKey,
		AuthScheme: p.AuthScheme,
		Addressing: p.Addressing,
		Locales:    p.LocaleList(),
		Timeout:    p.Timeout,
	})

	if policy == domain.PolicyAlways && !p.HasCredentials() {
		zlog.Logger.Warn().Msg("policy is 'always' but provider credentials are incomplete, provider will reject requests")
	}

	a.service, err = service.NewRelayService(sender, policy, p.HasCredentials(), service.WithMetrics(m))
	if err != nil {
		return err
	}
	return nil
}

// setupHTTPServer настраивает HTTP сервер.
func (a *Application) setupHTTPServer() {
	a.server = ginext.New(gin.ReleaseMode)
	h := handlers.NewHandlersSet(a.service, a.metrics)
	delivery.Setup(a.server.Engine, h, a.metrics, promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{}))
}
