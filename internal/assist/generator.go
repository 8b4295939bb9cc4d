// Package assist offers optional AI help when cleaners write their profiles.
// Every operation degrades to a usable answer when the model is unavailable.
package assist

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// DefaultModel is the Gemini model used when none is configured
const DefaultModel = "gemini-3-flash-preview"

// ErrUnavailable is returned by generators that cannot serve requests
var ErrUnavailable = errors.New("text generation unavailable")

// Request is a single text generation call
type Request struct {
	SystemInstruction string
	Prompt            string
	Temperature       *float32

	// StringList asks for a JSON array of strings
	StringList bool
}

// Generator produces text for a prompt
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// GeminiGenerator calls the Gemini API
type GeminiGenerator struct {
	models *genai.Models
	model  string
}

// NewGeminiGenerator creates a generator authenticated with apiKey
func NewGeminiGenerator(ctx context.Context, apiKey, model string) (*GeminiGenerator, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("gemini: %w: missing API key", ErrUnavailable)
	}
	if model == "" {
		model = DefaultModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	return &GeminiGenerator{models: client.Models, model: model}, nil
}

// Generate implements Generator
func (g *GeminiGenerator) Generate(ctx context.Context, req Request) (string, error) {
	cfg := &genai.GenerateContentConfig{Temperature: req.Temperature}
	if req.SystemInstruction != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.SystemInstruction, genai.RoleUser)
	}
	if req.StringList {
		cfg.ResponseMIMEType = "application/json"
		cfg.ResponseSchema = &genai.Schema{
			Type:  genai.TypeArray,
			Items: &genai.Schema{Type: genai.TypeString},
		}
	}

	resp, err := g.models.GenerateContent(ctx, g.model, genai.Text(req.Prompt), cfg)
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	return resp.Text(), nil
}

// NoopGenerator is used when no API key is configured
type NoopGenerator struct{}

// Generate always fails with ErrUnavailable
func (NoopGenerator) Generate(ctx context.Context, req Request) (string, error) {
	return "", ErrUnavailable
}
