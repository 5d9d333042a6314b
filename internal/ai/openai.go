package ai

import (
	"context"
	"errors"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const chatModel = openai.ChatModelGPT4_1Mini

// OpenAIProvider writes report content with OpenAI structured outputs.
type OpenAIProvider struct {
	usageTracker
	client *openai.Client
}

// NewOpenAIProvider creates a provider. Extra options are appended after the API key,
// e.g. option.WithBaseURL for a compatible server.
func NewOpenAIProvider(apiKey string, pricing RequestPricing, opts ...option.RequestOption) *OpenAIProvider {
	client := openai.NewClient(append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)...)
	p := &OpenAIProvider{client: &client}
	p.pricing = pricing
	return p
}

func (p *OpenAIProvider) Name() string {
	return chatModel
}

var contentResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
	OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
		JSONSchema: openai.ResponseFormatJSONSchemaJSONSchemaParam{
			Name:        "report_content",
			Description: openai.String("Narrative sections of an event report"),
			Schema:      contentJSONSchema,
			Strict:      openai.Bool(true),
		},
	},
}

func (p *OpenAIProvider) GenerateContent(ctx context.Context, req ContentRequest) (*GeneratedContent, error) {
	params := openai.ChatCompletionNewParams{
		Model: chatModel,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(buildContentPrompt(req)),
			openai.UserMessage("Write the report sections."),
		},
		ResponseFormat: contentResponseFormat,
		MaxTokens:      openai.Int(1500),
	}

	var lastError error
	var lastResponse string

	for range maxRetries {
		resp, err := p.client.Chat.Completions.New(ctx, params)
		if err != nil {
			return nil, fmt.Errorf("OpenAI API error: %w", err)
		}
		p.track(int(resp.Usage.PromptTokens), int(resp.Usage.CompletionTokens))

		if len(resp.Choices) == 0 {
			return nil, errors.New("no response from OpenAI")
		}
		answer := resp.Choices[0].Message.Content
		lastResponse = answer

		content, err := parseContent(answer)
		if err == nil {
			return content, nil
		}
		lastError = err
		params.Messages = append(params.Messages,
			openai.AssistantMessage(answer),
			openai.UserMessage(retryFeedback(err)),
		)
	}

	return nil, fmt.Errorf("failed to parse content JSON after %d attempts: %w (last response: %s)", maxRetries, lastError, lastResponse)
}
