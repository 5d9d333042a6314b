package ai

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
)

//go:embed prompts/report_content.txt
var reportContentPrompt string

// maxRetries bounds how often a provider is asked to fix an unusable answer.
const maxRetries = 3

// contentJSONSchema describes GeneratedContent for providers that accept a JSON schema.
var contentJSONSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"brief":      map[string]any{"type": "string"},
		"objectives": map[string]any{"type": "string"},
		"benefits":   map[string]any{"type": "string"},
	},
	"required":             []string{"brief", "objectives", "benefits"},
	"additionalProperties": false,
}

// buildContentPrompt fills the report content prompt. Shared by all providers.
func buildContentPrompt(req ContentRequest) string {
	return fmt.Sprintf(reportContentPrompt,
		strings.TrimSpace(req.EventTitle),
		strings.TrimSpace(req.Department),
		strings.TrimSpace(req.ResourcePersonName),
		req.Tone,
	)
}

// parseContent decodes a provider answer. Answers with an empty section are
// rejected with ErrMalformedContent.
func parseContent(text string) (*GeneratedContent, error) {
	var content GeneratedContent
	if err := json.Unmarshal([]byte(extractJSON(text)), &content); err != nil {
		return nil, fmt.Errorf("JSON parse error: %w", err)
	}
	if !content.Complete() {
		return nil, ErrMalformedContent
	}
	content.Brief = strings.TrimSpace(content.Brief)
	content.Objectives = strings.TrimSpace(content.Objectives)
	content.Benefits = strings.TrimSpace(content.Benefits)
	return &content, nil
}

// retryFeedback is sent back to the model after an unusable answer.
func retryFeedback(err error) string {
	return fmt.Sprintf("%v. Please fix the JSON and try again. It must contain non-empty \"brief\", \"objectives\" and \"benefits\" strings. Remember to escape quotes inside strings with backslash. Output ONLY valid JSON, no other text.", err)
}

// extractJSON attempts to extract JSON from a response that may contain extra text
func extractJSON(content string) string {
	// Try to find JSON object boundaries
	start := strings.Index(content, "{")
	if start == -1 {
		return content
	}

	// Find matching closing brace
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(content); i++ {
		c := content[i]
		switch {
		case escaped:
			escaped = false
		case c == '\\' && inString:
			escaped = true
		case c == '"':
			inString = !inString
		case c == '{' && !inString:
			depth++
		case c == '}' && !inString:
			depth--
			if depth == 0 {
				return content[start : i+1]
			}
		}
	}

	// If no matching brace found, return from start
	return content[start:]
}

// usageTracker accumulates token usage for a provider.
type usageTracker struct {
	mu      sync.Mutex
	usage   Usage
	pricing RequestPricing
}

func (t *usageTracker) track(inputTokens, outputTokens int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.usage.add(inputTokens, outputTokens, t.pricing)
}

// GetUsage returns a snapshot of the usage so far.
func (t *usageTracker) GetUsage() *Usage {
	t.mu.Lock()
	defer t.mu.Unlock()
	u := t.usage
	return &u
}

// ResetUsage clears the usage counters.
func (t *usageTracker) ResetUsage() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.usage = Usage{}
}
