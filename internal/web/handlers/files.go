package handlers

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"

	"github.com/go-chi/chi/v5"

	"github.com/kozaktomas/event-report/internal/constants"
	"github.com/kozaktomas/event-report/internal/report"
)

// maxUploadBytes returns the configured request size limit.
func (h *ReportHandler) maxUploadBytes() int64 {
	if n := h.config.Report.MaxUploadBytes(); n > 0 {
		return n
	}
	return constants.MaxUploadSize
}

// parseUpload parses a multipart request and returns the files of one form field.
func (h *ReportHandler) parseUpload(w http.ResponseWriter, r *http.Request, field string) ([]*report.Attachment, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes())
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		respondError(w, http.StatusBadRequest, "failed to parse multipart form")
		return nil, false
	}
	defer r.MultipartForm.RemoveAll()

	headers := r.MultipartForm.File[field]
	if len(headers) == 0 {
		respondError(w, http.StatusBadRequest, "no files provided")
		return nil, false
	}

	atts := make([]*report.Attachment, 0, len(headers))
	for _, fh := range headers {
		att, err := readAttachment(fh)
		if err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return nil, false
		}
		atts = append(atts, att)
	}
	return atts, true
}

// readAttachment loads an uploaded file into memory.
func readAttachment(fh *multipart.FileHeader) (*report.Attachment, error) {
	file, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %s", fh.Filename)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %s", fh.Filename)
	}
	return report.NewAttachment(filepath.Base(fh.Filename), fh.Header.Get("Content-Type"), data), nil
}

// UploadFiles adds the multipart "files" to a slot. Sequence slots append in
// upload order; single slots keep the first file.
func (h *ReportHandler) UploadFiles(w http.ResponseWriter, r *http.Request) {
	slot, err := report.ParseSlot(chi.URLParam(r, "slot"))
	if err != nil {
		respondErr(w, err)
		return
	}

	atts, ok := h.parseUpload(w, r, "files")
	if !ok {
		return
	}

	state, err := h.store.Dispatch(report.AddFiles{Slot: slot, Files: atts})
	if err != nil {
		respondErr(w, err)
		return
	}
	h.respondState(w, http.StatusCreated, state)
}

// ReplaceFile swaps one attachment for the multipart "file".
func (h *ReportHandler) ReplaceFile(w http.ResponseWriter, r *http.Request) {
	slot, index, err := slotAndIndex(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	atts, ok := h.parseUpload(w, r, "file")
	if !ok {
		return
	}

	state, err := h.store.Dispatch(report.ReplaceFile{Slot: slot, Index: index, File: atts[0]})
	if err != nil {
		respondErr(w, err)
		return
	}
	h.respondState(w, http.StatusOK, state)
}

// DeleteFile removes one attachment. Later files of the slot move up.
func (h *ReportHandler) DeleteFile(w http.ResponseWriter, r *http.Request) {
	slot, index, err := slotAndIndex(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	state, err := h.store.Dispatch(report.RemoveFile{Slot: slot, Index: index})
	if err != nil {
		respondErr(w, err)
		return
	}
	h.respondState(w, http.StatusOK, state)
}

// PreviewResponse carries a displayable preview of an attachment.
type PreviewResponse struct {
	Ready bool   `json:"ready"`
	URI   string `json:"uri,omitempty"`
}

// Preview returns the data URI of an image attachment. While the preview is
// still being decoded it answers 202 and the client shows a placeholder.
// With ?wait=true it blocks until the decode has finished.
func (h *ReportHandler) Preview(w http.ResponseWriter, r *http.Request) {
	slot, index, err := slotAndIndex(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	att, err := h.store.State().Files.At(slot, index)
	if err != nil {
		respondErr(w, err)
		return
	}
	if !att.IsImage() {
		respondError(w, http.StatusUnsupportedMediaType, "preview is only available for images")
		return
	}

	key := report.Key(slot, index)
	h.decoder.Request(key, att)

	p := h.decoder.Get(key)
	if !p.Ready && r.URL.Query().Get("wait") == "true" {
		p, err = h.decoder.Wait(r.Context(), key)
		if err != nil {
			respondError(w, http.StatusServiceUnavailable, err.Error())
			return
		}
	}

	switch {
	case !p.Ready:
		respondJSON(w, http.StatusAccepted, PreviewResponse{Ready: false})
	case p.Err != nil:
		respondError(w, http.StatusUnprocessableEntity, p.Err.Error())
	default:
		respondJSON(w, http.StatusOK, PreviewResponse{Ready: true, URI: p.URI})
	}
}
