package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultOllamaURL   = "http://localhost:11434"
	defaultOllamaModel = "llama3.2:3b"

	// Local models can be slow on first load.
	ollamaTimeout = 5 * time.Minute
)

// OllamaProvider writes report content with a model served by a local Ollama.
type OllamaProvider struct {
	usageTracker
	endpoint string
	model    string
	client   *http.Client
}

func NewOllamaProvider(baseURL, model string) *OllamaProvider {
	if baseURL == "" {
		baseURL = defaultOllamaURL
	}
	if model == "" {
		model = defaultOllamaModel
	}
	return &OllamaProvider{
		endpoint: strings.TrimSuffix(baseURL, "/") + "/api/chat",
		model:    model,
		client:   &http.Client{Timeout: ollamaTimeout},
	}
}

func (p *OllamaProvider) Name() string {
	return p.model
}

type chatTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaChatRequest struct {
	Model    string         `json:"model"`
	Messages []chatTurn     `json:"messages"`
	Stream   bool           `json:"stream"`
	Format   any            `json:"format,omitempty"`
	Options  map[string]any `json:"options,omitempty"`
}

type ollamaChatResponse struct {
	Message         chatTurn `json:"message"`
	Done            bool     `json:"done"`
	PromptEvalCount int      `json:"prompt_eval_count"`
	EvalCount       int      `json:"eval_count"`
}

func (p *OllamaProvider) GenerateContent(ctx context.Context, req ContentRequest) (*GeneratedContent, error) {
	turns := []chatTurn{
		{Role: "system", Content: buildContentPrompt(req)},
		{Role: "user", Content: "Write the report sections."},
	}

	var lastError error
	var lastResponse string

	for range maxRetries {
		answer, err := p.chat(ctx, turns)
		if err != nil {
			return nil, fmt.Errorf("ollama API error: %w", err)
		}
		lastResponse = answer

		content, err := parseContent(answer)
		if err == nil {
			return content, nil
		}
		lastError = err
		turns = append(turns,
			chatTurn{Role: "assistant", Content: answer},
			chatTurn{Role: "user", Content: retryFeedback(err)},
		)
	}

	return nil, fmt.Errorf("failed to parse content JSON after %d attempts: %w (last response: %s)", maxRetries, lastError, lastResponse)
}

// chat sends one non-streaming chat request and returns the assistant's text.
func (p *OllamaProvider) chat(ctx context.Context, turns []chatTurn) (string, error) {
	var body bytes.Buffer
	err := json.NewEncoder(&body).Encode(ollamaChatRequest{
		Model:    p.model,
		Messages: turns,
		Format:   contentJSONSchema,
		Options:  map[string]any{"num_predict": 1500, "temperature": 0.7},
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, &body)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return "", fmt.Errorf("API error (status %d): %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var out ollamaChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}
	// Ollama is free, but tokens are still counted for stats.
	p.track(out.PromptEvalCount, out.EvalCount)
	return out.Message.Content, nil
}
