package provider

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go-vision-proxy/internal/logger"

	"github.com/sirupsen/logrus"
	"google.golang.org/genai"
)

// ErrNoCandidates is returned when the model answers with nothing to read.
var ErrNoCandidates = errors.New("response contains no candidates")

// contentGenerator is the slice of the genai SDK the adapter uses.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiGenerator implements Generator on top of the Gemini API.
type GeminiGenerator struct {
	models contentGenerator
}

// NewGeminiGenerator creates a client bound to apiKey.
func NewGeminiGenerator(ctx context.Context, apiKey string) (*GeminiGenerator, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &GeminiGenerator{models: client.Models}, nil
}

// Generate sends the prompt, then the image if any, as a single user turn.
// Errors from the API are returned unwrapped so callers can show them as-is.
func (g *GeminiGenerator) Generate(ctx context.Context, req GenerateRequest) (string, error) {
	cfg, err := decodeGenerationConfig(req.Config)
	if err != nil {
		return "", err
	}

	parts := []*genai.Part{genai.NewPartFromText(req.Prompt)}
	if req.Image != nil {
		parts = append(parts, genai.NewPartFromBytes(req.Image.Data, req.Image.MIMEType))
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	start := time.Now()
	result, err := g.models.GenerateContent(ctx, req.Model, contents, cfg)
	if err != nil {
		return "", err
	}

	text, err := responseText(result)
	if err != nil {
		return "", err
	}

	fields := logrus.Fields{
		"model":       req.Model,
		"has_image":   req.Image != nil,
		"duration_ms": time.Since(start).Milliseconds(),
	}
	if result.UsageMetadata != nil {
		fields["input_tokens"] = result.UsageMetadata.PromptTokenCount
		fields["output_tokens"] = result.UsageMetadata.CandidatesTokenCount
	}
	logger.WithFields(fields).Debug("llm call")

	return text, nil
}

func responseText(result *genai.GenerateContentResponse) (string, error) {
	if result == nil || len(result.Candidates) == 0 {
		if result != nil && result.PromptFeedback != nil && result.PromptFeedback.BlockReason != "" {
			return "", fmt.Errorf("prompt blocked: %s", result.PromptFeedback.BlockReason)
		}
		return "", ErrNoCandidates
	}
	candidate := result.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		if candidate.FinishReason != "" {
			return "", fmt.Errorf("response has no text (finish reason: %s)", candidate.FinishReason)
		}
		return "", ErrNoCandidates
	}
	return result.Text(), nil
}
