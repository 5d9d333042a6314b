package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync/atomic"

	"github.com/kozaktomas/event-report/internal/ai"
	"github.com/kozaktomas/event-report/internal/config"
	"github.com/kozaktomas/event-report/internal/crop"
	"github.com/kozaktomas/event-report/internal/export"
	"github.com/kozaktomas/event-report/internal/layout"
	"github.com/kozaktomas/event-report/internal/preview"
	"github.com/kozaktomas/event-report/internal/render"
	"github.com/kozaktomas/event-report/internal/report"
)

// ReportHandler serves the single in-memory report: form edits, attachments,
// previews, crop sessions, content generation, page previews and export.
type ReportHandler struct {
	config     *config.Config
	store      *report.Store
	decoder    *preview.Decoder
	editor     *crop.Editor
	fonts      *render.Fonts
	rasterizer *render.Rasterizer
	exporter   *export.Exporter

	// newProvider creates the content generation backend for one request.
	newProvider func(ctx context.Context, name string) (ai.Provider, error)
	generating  atomic.Bool
}

// NewReportHandler creates the report handler. Attachment previews follow every
// change of the store's files.
func NewReportHandler(cfg *config.Config, store *report.Store, decoder *preview.Decoder, editor *crop.Editor, fonts *render.Fonts) *ReportHandler {
	rasterizer := render.NewRasterizer(fonts)
	h := &ReportHandler{
		config:     cfg,
		store:      store,
		decoder:    decoder,
		editor:     editor,
		fonts:      fonts,
		rasterizer: rasterizer,
		exporter:   export.New(rasterizer),
		newProvider: func(ctx context.Context, name string) (ai.Provider, error) {
			return ai.NewProvider(ctx, cfg, name)
		},
	}
	store.Subscribe(func(f report.Files) {
		decoder.Sync(f.Keys())
	})
	decoder.Sync(store.State().Files.Keys())
	return h
}

// FileInfo describes one attachment without its content.
type FileInfo struct {
	Index    int    `json:"index"`
	Name     string `json:"name"`
	MIMEType string `json:"mime_type"`
	Size     int    `json:"size"`
	IsImage  bool   `json:"is_image"`
}

// StateResponse is the JSON view of the report state.
type StateResponse struct {
	Data       report.Data                `json:"data"`
	Tone       ai.Tone                    `json:"tone"`
	Previewing bool                       `json:"previewing"`
	Generating bool                       `json:"generating"`
	Exporting  bool                       `json:"exporting"`
	Files      map[report.Slot][]FileInfo `json:"files"`
}

func (h *ReportHandler) stateResponse(s report.State) StateResponse {
	files := make(map[report.Slot][]FileInfo, len(report.Slots))
	for _, slot := range report.Slots {
		list, _ := s.Files.List(slot)
		infos := make([]FileInfo, 0, len(list))
		for i, att := range list {
			infos = append(infos, FileInfo{
				Index:    i,
				Name:     att.Name,
				MIMEType: att.MIMEType,
				Size:     len(att.Data),
				IsImage:  att.IsImage(),
			})
		}
		files[slot] = infos
	}
	return StateResponse{
		Data:       s.Data,
		Tone:       s.Tone,
		Previewing: s.Previewing,
		Generating: h.generating.Load(),
		Exporting:  h.exporter.State() == export.StateExporting,
		Files:      files,
	}
}

func (h *ReportHandler) respondState(w http.ResponseWriter, status int, s report.State) {
	respondJSON(w, status, h.stateResponse(s))
}

// Get returns the current report state.
func (h *ReportHandler) Get(w http.ResponseWriter, r *http.Request) {
	h.respondState(w, http.StatusOK, h.store.State())
}

// UpdateFieldsRequest changes scalar fields. All changes apply together or not at all.
type UpdateFieldsRequest struct {
	Fields          map[string]string `json:"fields"`
	ShowExpenditure *bool             `json:"showExpenditure"`
	Tone            *string           `json:"tone"`
}

// UpdateFields applies a set of field changes as one undoable step.
func (h *ReportHandler) UpdateFields(w http.ResponseWriter, r *http.Request) {
	var req UpdateFieldsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}

	var batch report.Batch
	for name, value := range req.Fields {
		batch = append(batch, report.SetField{Field: report.Field(name), Value: value})
	}
	if req.ShowExpenditure != nil {
		batch = append(batch, report.SetShowExpenditure{Show: *req.ShowExpenditure})
	}
	if req.Tone != nil {
		batch = append(batch, report.SetTone{Tone: *req.Tone})
	}
	if len(batch) == 0 {
		respondError(w, http.StatusBadRequest, "no changes given")
		return
	}

	state, err := h.store.Dispatch(batch)
	if err != nil {
		respondErr(w, err)
		return
	}
	h.respondState(w, http.StatusOK, state)
}

// Undo restores the state before the last change.
func (h *ReportHandler) Undo(w http.ResponseWriter, r *http.Request) {
	state, err := h.store.Undo()
	if err != nil {
		respondErr(w, err)
		return
	}
	h.respondState(w, http.StatusOK, state)
}

// pages lays out the current report.
func (h *ReportHandler) pages(s report.State) []layout.Page {
	return layout.Build(s.Data, s.Files, h.fonts)
}

// requirePreview returns the state if the preview is open and the report still
// passes the validity gate. Otherwise it responds with 409 or 422.
func (h *ReportHandler) requirePreview(w http.ResponseWriter) (report.State, bool) {
	state := h.store.State()
	if !state.Previewing {
		respondError(w, http.StatusConflict, "preview is not open")
		return state, false
	}
	if err := report.Validate(state.Data, state.Files); err != nil {
		respondErr(w, err)
		return state, false
	}
	return state, true
}

// Close stops background previews.
func (h *ReportHandler) Close() {
	h.decoder.Close()
	if err := h.fonts.Close(); err != nil {
		log.Printf("Failed to close fonts: %v", err)
	}
}
