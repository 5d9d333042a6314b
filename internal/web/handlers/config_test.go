package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kozaktomas/event-report/internal/config"
	"github.com/kozaktomas/event-report/internal/constants"
)

func TestConfigHandler_Get(t *testing.T) {
	tests := []struct {
		name      string
		cfg       *config.Config
		available map[string]bool
	}{
		{
			name:      "no keys",
			cfg:       &config.Config{},
			available: map[string]bool{"gemini": false, "openai": false, "ollama": true},
		},
		{
			name: "gemini key",
			cfg: &config.Config{
				Gemini: config.GeminiConfig{APIKey: "gemini-api-key"},
			},
			available: map[string]bool{"gemini": true, "openai": false, "ollama": true},
		},
		{
			name: "openai token",
			cfg: &config.Config{
				OpenAI: config.OpenAIConfig{Token: "sk-test-token"},
			},
			available: map[string]bool{"gemini": false, "openai": true, "ollama": true},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tc.cfg.AI.Provider = "gemini"
			tc.cfg.Report.MaxUploadMB = 25
			handler := NewConfigHandler(tc.cfg)

			recorder := httptest.NewRecorder()
			handler.Get(recorder, httptest.NewRequest(http.MethodGet, "/api/v1/config", nil))

			assertStatusCode(t, recorder, http.StatusOK)
			assertContentType(t, recorder, "application/json")

			var result ConfigResponse
			parseJSONResponse(t, recorder, &result)

			if len(result.Providers) != len(tc.available) {
				t.Fatalf("expected %d providers, got %d", len(tc.available), len(result.Providers))
			}
			for _, p := range result.Providers {
				if p.Available != tc.available[p.Name] {
					t.Errorf("provider %s available = %v, want %v", p.Name, p.Available, tc.available[p.Name])
				}
			}
			if result.DefaultProvider != "gemini" {
				t.Errorf("default provider = %q", result.DefaultProvider)
			}
			if len(result.Tones) != 4 {
				t.Errorf("expected 4 tones, got %d", len(result.Tones))
			}
			if result.MaxUploadMB != 25 {
				t.Errorf("max upload = %d", result.MaxUploadMB)
			}
			if result.OutputFileName != constants.OutputFileName {
				t.Errorf("output file name = %q", result.OutputFileName)
			}
		})
	}
}
