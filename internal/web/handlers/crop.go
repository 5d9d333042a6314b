package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/kozaktomas/event-report/internal/crop"
	"github.com/kozaktomas/event-report/internal/imaging"
	"github.com/kozaktomas/event-report/internal/report"
)

// CropSessionResponse describes the open crop session.
type CropSessionResponse struct {
	Slot   report.Slot `json:"slot"`
	Index  int         `json:"index"`
	Name   string      `json:"name"`
	Width  int         `json:"width"`
	Height int         `json:"height"`
	Aspect float64     `json:"aspect"`
}

func cropSessionResponse(s *crop.Session) (CropSessionResponse, error) {
	cfg, _, err := imaging.DecodeConfig(s.Source.Data)
	if err != nil {
		return CropSessionResponse{}, err
	}
	return CropSessionResponse{
		Slot:   s.Slot,
		Index:  s.Index,
		Name:   s.Source.Name,
		Width:  cfg.Width,
		Height: cfg.Height,
		Aspect: crop.DefaultAspect,
	}, nil
}

// OpenCrop starts a crop session for an image attachment. Only one session can be open.
func (h *ReportHandler) OpenCrop(w http.ResponseWriter, r *http.Request) {
	slot, index, err := slotAndIndex(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	state := h.store.State()
	if state.Previewing {
		respondErr(w, report.ErrPreviewOpen)
		return
	}
	att, err := state.Files.At(slot, index)
	if err != nil {
		respondErr(w, err)
		return
	}
	if !att.IsImage() {
		respondErr(w, crop.ErrNotImage)
		return
	}
	if _, _, err := imaging.DecodeConfig(att.Data); err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	session, err := h.editor.Open(slot, index, att)
	if err != nil {
		respondErr(w, err)
		return
	}

	resp, err := cropSessionResponse(session)
	if err != nil {
		session.Cancel()
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	respondJSON(w, http.StatusCreated, resp)
}

// GetCrop returns the open crop session.
func (h *ReportHandler) GetCrop(w http.ResponseWriter, r *http.Request) {
	session, ok := h.editor.Current()
	if !ok {
		respondErr(w, crop.ErrNoSession)
		return
	}
	resp, err := cropSessionResponse(session)
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

// FinalizeCropRequest selects the crop area either as an explicit region in
// source pixels or as the zoom and pan of the crop frame.
type FinalizeCropRequest struct {
	Region *crop.Region `json:"region"`
	Zoom   float64      `json:"zoom"`
	PanX   float64      `json:"panX"`
	PanY   float64      `json:"panY"`
	Aspect float64      `json:"aspect"`
}

// FinalizeCrop crops the session's image and replaces the attachment in place.
func (h *ReportHandler) FinalizeCrop(w http.ResponseWriter, r *http.Request) {
	var req FinalizeCropRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}

	session, ok := h.editor.Current()
	if !ok {
		respondErr(w, crop.ErrNoSession)
		return
	}

	current, err := h.store.State().Files.At(session.Slot, session.Index)
	if err != nil || current != session.Source {
		session.Cancel()
		respondError(w, http.StatusConflict, "file changed while cropping")
		return
	}

	region := crop.Region{}
	if req.Region != nil {
		region = *req.Region
	} else {
		cfg, _, err := imaging.DecodeConfig(session.Source.Data)
		if err != nil {
			session.Cancel()
			respondError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		region = crop.RegionFromView(cfg.Width, cfg.Height, req.Aspect, req.Zoom, req.PanX, req.PanY)
	}

	cropped, err := session.Finalize(region)
	if err != nil {
		respondErr(w, err)
		return
	}

	state, err := h.store.Dispatch(report.ReplaceFile{Slot: session.Slot, Index: session.Index, File: cropped})
	if err != nil {
		respondErr(w, err)
		return
	}
	h.respondState(w, http.StatusOK, state)
}

// CancelCrop closes the session and leaves the attachment unchanged.
func (h *ReportHandler) CancelCrop(w http.ResponseWriter, r *http.Request) {
	session, ok := h.editor.Current()
	if !ok {
		respondErr(w, crop.ErrNoSession)
		return
	}
	session.Cancel()
	w.WriteHeader(http.StatusNoContent)
}
