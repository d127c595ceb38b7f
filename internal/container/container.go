package container

import (
	"context"
	"fmt"
	"net/http"

	"go-vision-proxy/internal/config"
	"go-vision-proxy/internal/i18n"
	"go-vision-proxy/internal/imaging"
	"go-vision-proxy/internal/logger"
	"go-vision-proxy/internal/observer"
	"go-vision-proxy/internal/provider"
	"go-vision-proxy/internal/service"
	"go-vision-proxy/internal/transport"
)

// Container holds all application dependencies
type Container struct {
	config          *config.Config
	publisher       *observer.EventPublisher
	metrics         *observer.MetricsObserver
	analysisService service.ImageAnalysisService
	promptService   service.PromptService
	handler         http.Handler
}

// NewContainer wires the dependency graph. A missing API key is not fatal:
// the AI routes answer with a configuration error instead.
func NewContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	var generator provider.Generator
	if cfg.AIConfigured() {
		gemini, err := provider.NewGeminiGenerator(ctx, cfg.APIKey())
		if err != nil {
			return nil, fmt.Errorf("failed to create gemini client: %w", err)
		}
		generator = gemini
	} else {
		logger.Warn("No GEMINI_API_KEY or GOOGLE_API_KEY set; AI routes will return a configuration error")
	}

	metrics := observer.NewMetricsObserver()
	publisher := observer.NewEventPublisher()
	publisher.Subscribe(observer.NewLoggingObserver(logger.Logger))
	publisher.Subscribe(metrics)

	configured := generator != nil
	analysisService := service.NewImageAnalysisService(generator, imaging.NewDecoder(), publisher, service.AnalysisSettings{
		Model:      cfg.AnalysisModel,
		Messages:   i18n.For(cfg.Locale),
		Configured: configured,
	})
	promptService := service.NewPromptService(generator, publisher, cfg.PromptModel, configured)

	handler := transport.NewHandler(transport.Services{
		Analysis: analysisService,
		Prompt:   promptService,
		Metrics:  metrics,
	}, cfg)

	return &Container{
		config:          cfg,
		publisher:       publisher,
		metrics:         metrics,
		analysisService: analysisService,
		promptService:   promptService,
		handler:         handler,
	}, nil
}

// Handler returns the HTTP handler
func (c *Container) Handler() http.Handler {
	return c.handler
}

// Config returns the configuration
func (c *Container) Config() *config.Config {
	return c.config
}

// Close waits for in-flight observer notifications.
func (c *Container) Close() {
	c.publisher.Wait()
}
