package ai

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

const geminiModel = "gemini-2.5-flash"

// contentSchema constrains Gemini answers to the three report sections.
var contentSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"brief": {
			Type:        genai.TypeString,
			Description: "Brief information summary about the activity (around 200 words).",
		},
		"objectives": {
			Type:        genai.TypeString,
			Description: "The key objectives of the activity (around 75 words).",
		},
		"benefits": {
			Type:        genai.TypeString,
			Description: "The expected benefits for the participating students (around 100 words).",
		},
	},
	Required: []string{"brief", "objectives", "benefits"},
}

type GeminiProvider struct {
	usageTracker
	client *genai.Client
}

func NewGeminiProvider(ctx context.Context, apiKey string, pricing RequestPricing) (*GeminiProvider, error) {
	return newGeminiProvider(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}, pricing)
}

func newGeminiProvider(ctx context.Context, cc *genai.ClientConfig, pricing RequestPricing) (*GeminiProvider, error) {
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	p := &GeminiProvider{client: client}
	p.pricing = pricing
	return p, nil
}

func (p *GeminiProvider) Name() string {
	return geminiModel
}

func (p *GeminiProvider) GenerateContent(ctx context.Context, req ContentRequest) (*GeneratedContent, error) {
	contents := []*genai.Content{
		{
			Role:  "user",
			Parts: []*genai.Part{{Text: buildContentPrompt(req)}},
		},
	}

	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   contentSchema,
	}

	var lastError error
	var lastResponse string

	for range maxRetries {
		result, err := p.client.Models.GenerateContent(ctx, geminiModel, contents, config)
		if err != nil {
			return nil, fmt.Errorf("gemini API error: %w", err)
		}

		if result.UsageMetadata != nil {
			p.track(int(result.UsageMetadata.PromptTokenCount), int(result.UsageMetadata.CandidatesTokenCount))
		}

		text := result.Text()
		if text == "" {
			return nil, errors.New("no response from Gemini")
		}
		lastResponse = text

		content, err := parseContent(text)
		if err != nil {
			lastError = err

			// Add model response and error feedback to contents for retry
			contents = append(contents,
				&genai.Content{
					Role:  "model",
					Parts: []*genai.Part{{Text: text}},
				},
				&genai.Content{
					Role:  "user",
					Parts: []*genai.Part{{Text: retryFeedback(err)}},
				},
			)
			continue
		}

		return content, nil
	}

	return nil, fmt.Errorf("failed to parse content JSON after %d attempts: %w (last response: %s)", maxRetries, lastError, lastResponse)
}
