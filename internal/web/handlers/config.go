package handlers

import (
	"net/http"

	"github.com/kozaktomas/event-report/internal/ai"
	"github.com/kozaktomas/event-report/internal/config"
	"github.com/kozaktomas/event-report/internal/constants"
)

// ConfigHandler handles configuration endpoints
type ConfigHandler struct {
	config *config.Config
}

// NewConfigHandler creates a new config handler
func NewConfigHandler(cfg *config.Config) *ConfigHandler {
	return &ConfigHandler{
		config: cfg,
	}
}

// ConfigResponse represents the configuration response
type ConfigResponse struct {
	Providers       []ProviderInfo `json:"providers"`
	DefaultProvider string         `json:"default_provider"`
	Tones           []ai.Tone      `json:"tones"`
	MaxUploadMB     int            `json:"max_upload_mb"`
	OutputFileName  string         `json:"output_file_name"`
}

// ProviderInfo represents information about an AI provider
type ProviderInfo struct {
	Name      string `json:"name"`
	Available bool   `json:"available"`
}

// Get returns the available configuration
func (h *ConfigHandler) Get(w http.ResponseWriter, r *http.Request) {
	providers := []ProviderInfo{
		{
			Name:      "gemini",
			Available: h.config.Gemini.APIKey != "",
		},
		{
			Name:      "openai",
			Available: h.config.OpenAI.Token != "",
		},
		{
			Name:      "ollama",
			Available: true, // Always available (local)
		},
	}

	response := ConfigResponse{
		Providers:       providers,
		DefaultProvider: h.config.AI.Provider,
		Tones:           ai.Tones,
		MaxUploadMB:     h.config.Report.MaxUploadMB,
		OutputFileName:  constants.OutputFileName,
	}

	respondJSON(w, http.StatusOK, response)
}
