package service

import (
	"context"
	"time"

	apperrors "go-vision-proxy/internal/errors"
	"go-vision-proxy/internal/i18n"
	"go-vision-proxy/internal/imaging"
	"go-vision-proxy/internal/logger"
	"go-vision-proxy/internal/observer"
	"go-vision-proxy/internal/provider"
	"go-vision-proxy/pkg/models"
)

const RouteAnalyze = "/analyze"

// ImageAnalysisService describes an uploaded image with the analysis model
type ImageAnalysisService interface {
	// CheckConfigured fails with a config error when no provider key is set
	// and records the rejection.
	CheckConfigured(ctx context.Context) error
	AnalyzeImage(ctx context.Context, req models.AnalysisRequest) (*models.AnalysisResponse, error)
}

type imageAnalysisService struct {
	generator  provider.Generator
	decoder    imaging.Decoder
	publisher  observer.Subject
	model      string
	messages   i18n.Messages
	configured bool
}

// AnalysisSettings carries the read-only values the service needs from config
type AnalysisSettings struct {
	Model      string
	Messages   i18n.Messages
	Configured bool
}

func NewImageAnalysisService(
	generator provider.Generator,
	decoder imaging.Decoder,
	publisher observer.Subject,
	settings AnalysisSettings,
) ImageAnalysisService {
	return &imageAnalysisService{
		generator:  generator,
		decoder:    decoder,
		publisher:  publisher,
		model:      settings.Model,
		messages:   settings.Messages,
		configured: settings.Configured,
	}
}

func (s *imageAnalysisService) CheckConfigured(ctx context.Context) error {
	if !s.configured || s.generator == nil {
		err := apperrors.NewConfigError()
		notify(ctx, s.publisher, observer.RequestRejected, RouteAnalyze, s.model, 0, err)
		return err
	}
	return nil
}

// AnalyzeImage decodes the upload and asks the model to describe it.
// Decode and provider failures both surface as provider errors.
func (s *imageAnalysisService) AnalyzeImage(ctx context.Context, req models.AnalysisRequest) (*models.AnalysisResponse, error) {
	if err := s.CheckConfigured(ctx); err != nil {
		return nil, err
	}
	if req.Image == nil {
		return nil, apperrors.NewValidationError(s.messages.NoImage, nil)
	}

	start := time.Now()
	notify(ctx, s.publisher, observer.GenerationStarted, RouteAnalyze, s.model, 0, nil)

	decoded, err := s.decoder.Decode(req.Image)
	if err != nil {
		appErr := apperrors.NewProviderError(err)
		notify(ctx, s.publisher, observer.GenerationFailed, RouteAnalyze, s.model, time.Since(start), appErr)
		return nil, appErr
	}

	instruction := s.messages.DefaultInstruction
	if req.Prompt != nil {
		instruction = *req.Prompt
	}

	logger.WithField("request_id", logger.RequestIDFromContext(ctx)).
		WithField("filename", req.Filename).
		WithField("format", decoded.Format).
		WithField("bytes", len(decoded.Payload.Data)).
		Debug("Sending image to provider")

	text, err := s.generator.Generate(ctx, provider.GenerateRequest{
		Model:  s.model,
		Prompt: instruction,
		Image:  decoded.Payload,
	})
	if err != nil {
		appErr := apperrors.NewProviderError(err)
		notify(ctx, s.publisher, observer.GenerationFailed, RouteAnalyze, s.model, time.Since(start), appErr)
		return nil, appErr
	}

	notify(ctx, s.publisher, observer.GenerationCompleted, RouteAnalyze, s.model, time.Since(start), nil)
	return &models.AnalysisResponse{Analysis: text, Status: models.StatusSuccess}, nil
}
