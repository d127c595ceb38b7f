package service

import (
	"context"
	"time"

	apperrors "go-vision-proxy/internal/errors"
	"go-vision-proxy/internal/observer"
	"go-vision-proxy/internal/provider"
	"go-vision-proxy/pkg/models"
)

const RoutePrompt = "/api/ai"

// PromptService forwards a free-form prompt to the model of the caller's choice
type PromptService interface {
	CheckConfigured(ctx context.Context) error
	Generate(ctx context.Context, req models.PromptRequest) (*models.PromptResponse, error)
}

type promptService struct {
	generator    provider.Generator
	publisher    observer.Subject
	defaultModel string
	configured   bool
}

func NewPromptService(generator provider.Generator, publisher observer.Subject, defaultModel string, configured bool) PromptService {
	return &promptService{
		generator:    generator,
		publisher:    publisher,
		defaultModel: defaultModel,
		configured:   configured,
	}
}

func (s *promptService) CheckConfigured(ctx context.Context) error {
	if !s.configured || s.generator == nil {
		err := apperrors.NewConfigError()
		notify(ctx, s.publisher, observer.RequestRejected, RoutePrompt, s.defaultModel, 0, err)
		return err
	}
	return nil
}

// Generate passes prompt, model and config through without validation;
// whatever the provider rejects comes back as a provider error.
func (s *promptService) Generate(ctx context.Context, req models.PromptRequest) (*models.PromptResponse, error) {
	if err := s.CheckConfigured(ctx); err != nil {
		return nil, err
	}

	model := s.defaultModel
	if req.Model != nil {
		model = *req.Model
	}

	cfg := req.Config
	if cfg == nil {
		cfg = map[string]any{}
	}

	start := time.Now()
	notify(ctx, s.publisher, observer.GenerationStarted, RoutePrompt, model, 0, nil)

	text, err := s.generator.Generate(ctx, provider.GenerateRequest{
		Model:  model,
		Prompt: req.Prompt,
		Config: cfg,
	})
	if err != nil {
		appErr := apperrors.NewProviderError(err)
		notify(ctx, s.publisher, observer.GenerationFailed, RoutePrompt, model, time.Since(start), appErr)
		return nil, appErr
	}

	notify(ctx, s.publisher, observer.GenerationCompleted, RoutePrompt, model, time.Since(start), nil)
	return &models.PromptResponse{Text: text}, nil
}
