package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Tone is the writing style requested for generated report content.
type Tone string

// Supported tones.
const (
	ToneProfessional Tone = "Professional"
	ToneAcademic     Tone = "Academic"
	ToneEnthusiastic Tone = "Enthusiastic"
	ToneConcise      Tone = "Concise"
)

// Tones lists the supported tones in menu order.
var Tones = []Tone{ToneProfessional, ToneAcademic, ToneEnthusiastic, ToneConcise}

// Errors returned by content generation.
var (
	ErrUnknownTone      = errors.New("unknown tone")
	ErrMissingEventInfo = errors.New("please fill in Event Title, Department, and Resource Person Name to generate content")
	ErrMalformedContent = errors.New("generated content is incomplete")
)

// ParseTone accepts a tone name case-insensitively. An empty name means Professional.
func ParseTone(s string) (Tone, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return ToneProfessional, nil
	}
	for _, t := range Tones {
		if strings.EqualFold(string(t), s) {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownTone, s)
}

// ContentRequest describes the event the narrative sections are written for.
type ContentRequest struct {
	EventTitle         string
	Department         string
	ResourcePersonName string
	Tone               Tone
}

// Validate checks that the event is described well enough to write about.
func (r ContentRequest) Validate() error {
	if strings.TrimSpace(r.EventTitle) == "" ||
		strings.TrimSpace(r.Department) == "" ||
		strings.TrimSpace(r.ResourcePersonName) == "" {
		return ErrMissingEventInfo
	}
	return nil
}

// GeneratedContent holds the three narrative sections of a report.
type GeneratedContent struct {
	Brief      string `json:"brief"`
	Objectives string `json:"objectives"`
	Benefits   string `json:"benefits"`
}

// Complete reports whether every section has text.
func (c *GeneratedContent) Complete() bool {
	return c != nil &&
		strings.TrimSpace(c.Brief) != "" &&
		strings.TrimSpace(c.Objectives) != "" &&
		strings.TrimSpace(c.Benefits) != ""
}

// Provider defines the interface for content generation backends.
type Provider interface {
	Name() string
	GenerateContent(ctx context.Context, req ContentRequest) (*GeneratedContent, error)

	// Usage tracking.
	GetUsage() *Usage
	ResetUsage()
}

// Usage tracks token usage and calculates cost.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalCost    float64 // in USD
}

// RequestPricing holds input/output prices per 1M tokens
type RequestPricing struct {
	Input  float64
	Output float64
}

func (u *Usage) add(inputTokens, outputTokens int, pricing RequestPricing) {
	u.InputTokens += inputTokens
	u.OutputTokens += outputTokens
	u.TotalCost += float64(inputTokens) / 1_000_000 * pricing.Input
	u.TotalCost += float64(outputTokens) / 1_000_000 * pricing.Output
}

// Generate validates the request, calls the provider and rejects incomplete answers.
// On any error the caller must leave its narrative fields untouched.
func Generate(ctx context.Context, p Provider, req ContentRequest) (*GeneratedContent, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if req.Tone == "" {
		req.Tone = ToneProfessional
	}
	content, err := p.GenerateContent(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p.Name(), err)
	}
	if !content.Complete() {
		return nil, ErrMalformedContent
	}
	return content, nil
}
