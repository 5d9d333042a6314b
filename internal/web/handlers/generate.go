package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/kozaktomas/event-report/internal/ai"
	"github.com/kozaktomas/event-report/internal/report"
)

// GenerateRequest optionally selects the tone and the provider.
type GenerateRequest struct {
	Tone     string `json:"tone"`
	Provider string `json:"provider"`
}

// GenerateResponse returns the new state together with the provider's usage.
type GenerateResponse struct {
	State    StateResponse `json:"state"`
	Provider string        `json:"provider"`
	Usage    *ai.Usage     `json:"usage"`
}

// Generate writes the three narrative sections with an AI provider. Only one
// generation runs at a time. On any failure the narrative fields are left as they were.
func (h *ReportHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}

	if !h.generating.CompareAndSwap(false, true) {
		respondError(w, http.StatusConflict, "content generation already in progress")
		return
	}
	defer h.generating.Store(false)

	state := h.store.State()
	if state.Previewing {
		respondErr(w, report.ErrPreviewOpen)
		return
	}
	tone := state.Tone
	if req.Tone != "" {
		t, err := ai.ParseTone(req.Tone)
		if err != nil {
			respondErr(w, err)
			return
		}
		tone = t
	}

	creq := ai.ContentRequest{
		EventTitle:         state.Data.EventTitle,
		Department:         state.Data.Department,
		ResourcePersonName: state.Data.ResourcePersonName,
		Tone:               tone,
	}
	if err := creq.Validate(); err != nil {
		respondErr(w, err)
		return
	}

	provider, err := h.newProvider(r.Context(), req.Provider)
	if err != nil {
		respondError(w, http.StatusServiceUnavailable, err.Error())
		return
	}

	content, err := ai.Generate(r.Context(), provider, creq)
	if err != nil {
		log.Printf("Content generation failed: %s", sanitizeForLog(err.Error()))
		respondError(w, http.StatusBadGateway, "failed to generate content")
		return
	}

	// The chosen tone is kept only together with the content it produced.
	state, err = h.store.Dispatch(report.Batch{
		report.SetTone{Tone: string(tone)},
		report.ApplyGenerated{Content: content},
	})
	if err != nil {
		respondErr(w, err)
		return
	}

	usage := provider.GetUsage()
	log.Printf("Generated report content with %s (%d input, %d output tokens, $%.4f)",
		provider.Name(), usage.InputTokens, usage.OutputTokens, usage.TotalCost)

	respondJSON(w, http.StatusOK, GenerateResponse{
		State:    h.stateResponse(state),
		Provider: provider.Name(),
		Usage:    usage,
	})
}
