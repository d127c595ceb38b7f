package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// AnalysisRequest is an uploaded image plus an optional instruction
type AnalysisRequest struct {
	Image    []byte
	Filename string
	// Prompt is nil when the form field was not sent at all.
	Prompt *string
}

// AnalysisResponse is returned by POST /analyze
type AnalysisResponse struct {
	Analysis string `json:"analysis"`
	Status   string `json:"status"`
}

const StatusSuccess = "success"

// PromptRequest is the JSON body of POST /api/ai.
// Model is nil when absent or null; Config is forwarded untouched.
type PromptRequest struct {
	Prompt string         `json:"prompt"`
	Model  *string        `json:"model"`
	Config map[string]any `json:"config"`
}

// RawPromptRequest is the POST /api/ai body before its fields are typed.
// Any JSON object is accepted here; mistyped fields fail in Decode.
type RawPromptRequest map[string]json.RawMessage

// Decode types the known fields. Absent and null fields stay at their zero value.
func (r RawPromptRequest) Decode() (PromptRequest, error) {
	var req PromptRequest
	if err := decodeField(r, "prompt", &req.Prompt); err != nil {
		return PromptRequest{}, err
	}
	if err := decodeField(r, "model", &req.Model); err != nil {
		return PromptRequest{}, err
	}
	if err := decodeField(r, "config", &req.Config); err != nil {
		return PromptRequest{}, err
	}
	return req, nil
}

func decodeField(r RawPromptRequest, name string, dst any) error {
	raw, ok := r[name]
	if !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

// PromptResponse is returned by POST /api/ai
type PromptResponse struct {
	Text string `json:"text"`
}

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthResponse is returned by GET /health
type HealthResponse struct {
	Status       string                 `json:"status"`
	Version      string                 `json:"version"`
	Time         string                 `json:"time"`
	AIConfigured bool                   `json:"ai_configured"`
	Metrics      map[string]interface{} `json:"metrics,omitempty"`
}
