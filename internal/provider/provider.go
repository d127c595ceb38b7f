package provider

import "context"

// Image is an inline image payload ready for the model.
type Image struct {
	Data     []byte
	MIMEType string
}

// GenerateRequest is one single-shot generation call.
type GenerateRequest struct {
	Model  string
	Prompt string
	// Image is optional; when set it follows the prompt in the same turn.
	Image *Image
	// Config is forwarded to the model without interpretation.
	Config map[string]any
}

// Generator produces text from a prompt and an optional image.
type Generator interface {
	Generate(ctx context.Context, req GenerateRequest) (string, error)
}
